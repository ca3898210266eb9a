package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// collectProtoFiles uses DFS to parse root and every file it imports, root
// first. google/protobuf imports are skipped.
func (r *Registry) collectProtoFiles(root string) ([]*protoSource, error) {
	visited := make(map[string]struct{}) // to make sure we don't end up in a loop
	result := make([]*protoSource, 0)

	var dfs func(protoFile string) error
	dfs = func(protoFile string) error {
		if _, ok := visited[protoFile]; ok {
			return nil
		}
		visited[protoFile] = struct{}{}

		protoBytes, err := os.ReadFile(protoFile)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		parsedBody, err := protoparser.Parse(bytes.NewReader(protoBytes))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", protoFile, err)
		}
		result = append(result, &protoSource{
			path:  protoFile,
			pkg:   protoPackage(parsedBody),
			proto: parsedBody,
		})

		for _, body := range parsedBody.ProtoBody {
			imp, ok := body.(*protoparserparser.Import)
			if !ok {
				continue
			}
			importPath := strings.Trim(imp.Location, `"'`)
			if strings.HasPrefix(importPath, "google/protobuf/") {
				continue
			}
			fullImportPath, err := r.findIfProtoExists(importPath, filepath.Dir(protoFile))
			if err != nil {
				return err
			}
			if err := dfs(fullImportPath); err != nil {
				return err
			}
		}
		return nil
	}

	if err := dfs(root); err != nil {
		return nil, err
	}
	return result, nil
}

// findIfProtoExists looks for an import in the importing file's directory,
// then in each configured import path
func (r *Registry) findIfProtoExists(protoPath, importingDir string) (string, error) {
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("import %s is not a .proto file", protoPath)
	}

	dirs := append([]string{importingDir}, r.importPaths...)
	for _, dir := range dirs {
		fullPath := filepath.Join(dir, protoPath)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("import %s not found in %v", protoPath, dirs)
}

/*
getReferencedType resolves a type reference the way protoc does: a leading
dot means fully qualified, otherwise the name is tried in each enclosing scope
from the innermost outwards and finally as written.
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, error) {
	// check if fully qualifed prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// try resolving from inner entities up till the parent package
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	// check if the entity is referenced via its package name
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck drops one trailing component of prefix at a time and
// checks whether prefix + "." + typeName names a known entity
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]struct{}) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified type name: .%s", typeName)
}
