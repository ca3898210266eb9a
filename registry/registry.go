package registry

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/anirudhraja/kiwilite/schema"
)

// Registry stores named Kiwi schemas and indexes every definition they
// contain by its qualified name (package + "." + definition name). We look
// types up here when we need to parse or marshal a value by type name.
// A Registry is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	schemas      map[string]*schema.Schema // schema name -> schema
	types        map[string]typeRef        // qualified type name -> definition
	fingerprints map[uint64]string         // schema fingerprint -> schema name

	importPaths []string
	logger      *slog.Logger
}

type typeRef struct {
	schemaName string
	schema     *schema.Schema
	typeID     int32
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used to report schema loads. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithImportPaths adds directories searched for .proto imports after the
// importing file's own directory
func WithImportPaths(paths ...string) Option {
	return func(r *Registry) { r.importPaths = append(r.importPaths, paths...) }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		schemas:      make(map[string]*schema.Schema),
		types:        make(map[string]typeRef),
		fingerprints: make(map[uint64]string),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a schema under name. Registering a schema whose binary form
// and package match one already registered is a no-op, and reusing a name is
// an error. When two schemas define the same qualified type, lookups resolve
// to the one registered first.
func (r *Registry) Register(name string, s *schema.Schema) error {
	fp := s.Fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.fingerprints[fp]; ok && r.schemas[existing].Package == s.Package {
		r.logger.Debug("identical schema already registered", "schema", name, "existing", existing)
		return nil
	}
	if _, ok := r.schemas[name]; ok {
		return fmt.Errorf("schema %s is already registered", name)
	}

	r.schemas[name] = s
	r.fingerprints[fp] = name
	for _, def := range s.Defs {
		qualified := getFullName(s.Package, def.Name)
		// proto files that import each other share definitions; the first
		// schema to register a type keeps it
		if ref, ok := r.types[qualified]; ok {
			r.logger.Warn("type already registered", "type", qualified, "schema", name, "owner", ref.schemaName)
			continue
		}
		r.types[qualified] = typeRef{schemaName: name, schema: s, typeID: def.Index}
	}

	r.logger.Debug("registered schema", "schema", name, "package", s.Package, "definitions", len(s.Defs))
	return nil
}

// LoadSchema loads a schema file, or every schema file under a directory,
// and registers the results. The format follows the extension: .bkiwi for
// binary schemas, .proto, .json and .yaml/.yml for descriptors. Files with
// other extensions are skipped during directory walks. Schemas are named by
// their path relative to the walked directory, without extension.
func (r *Registry) LoadSchema(schemaPath string) error {
	// Check if the path exists
	info, err := os.Stat(schemaPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	// If it's a single file, process it directly
	if !info.IsDir() {
		if !isSchemaFile(schemaPath) {
			return fmt.Errorf("file %s is not a schema file", schemaPath)
		}
		return r.loadSingleFile(schemaPath, schemaName(filepath.Base(schemaPath)))
	}

	// If it's a directory, walk through it recursively
	err = filepath.WalkDir(schemaPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and unknown files
		if d.IsDir() || !isSchemaFile(path) {
			return nil
		}

		rel, err := filepath.Rel(schemaPath, path)
		if err != nil {
			return err
		}
		return r.loadSingleFile(path, schemaName(rel))
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

// loadSingleFile loads and registers one schema file
func (r *Registry) loadSingleFile(path, name string) error {
	s, err := r.LoadFile(path)
	if err != nil {
		return err
	}
	if err := r.Register(name, s); err != nil {
		return fmt.Errorf("failed to register %s: %w", path, err)
	}
	r.logger.Debug("loaded schema", "path", path, "schema", name)
	return nil
}

// LoadFile reads one schema file without registering it
func (r *Registry) LoadFile(path string) (*schema.Schema, error) {
	if strings.EqualFold(filepath.Ext(path), ".proto") {
		files, err := r.collectProtoFiles(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load proto file %s: %w", path, err)
		}
		return buildFromProtos(files)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var s *schema.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bkiwi":
		s, err = schema.Decode(content)
	case ".json":
		s, err = schema.LoadJSON(content)
	case ".yaml", ".yml":
		s, err = schema.LoadYAML(content)
	default:
		return nil, fmt.Errorf("file %s is not a schema file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schema file %s: %w", path, err)
	}
	return s, nil
}

// RegisterFileDescriptor converts a compiled proto file and registers it
// under its path without the .proto extension
func (r *Registry) RegisterFileDescriptor(fd protoreflect.FileDescriptor) error {
	s, err := FromFileDescriptor(fd)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", fd.Path(), err)
	}
	return r.Register(strings.TrimSuffix(fd.Path(), ".proto"), s)
}

// GetSchema retrieves a schema by the name it was registered under
func (r *Registry) GetSchema(name string) (*schema.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, exists := r.schemas[name]; exists {
		return s, nil
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}

// LookupType finds a definition by qualified name, or by a name that matches
// the end of exactly one qualified name ("Inner", "Outer.Inner")
func (r *Registry) LookupType(name string) (*schema.Schema, *schema.Def, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ref, exists := r.types[name]; exists {
		return ref.schema, ref.schema.Defs[ref.typeID], nil
	}

	// Try without package prefix
	var match *typeRef
	var matchName string
	for fullName, ref := range r.types {
		if !strings.HasSuffix(fullName, "."+name) {
			continue
		}
		if match != nil {
			return nil, nil, fmt.Errorf("type name %s is ambiguous: %s, %s", name, matchName, fullName)
		}
		ref := ref
		match, matchName = &ref, fullName
	}
	if match == nil {
		return nil, nil, fmt.Errorf("type not found: %s", name)
	}
	return match.schema, match.schema.Defs[match.typeID], nil
}

// ListSchemas returns all registered schema names, sorted
func (r *Registry) ListSchemas() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTypes returns all registered qualified type names, sorted
func (r *Registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bkiwi", ".proto", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func schemaName(rel string) string {
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
}
