package registry

import (
	"fmt"
	"io"
	"strconv"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/anirudhraja/kiwilite/schema"
)

// protoSource is one parsed .proto file
type protoSource struct {
	path  string
	pkg   string
	proto *protoparserparser.Proto
}

// ParseProto converts a single .proto source into a Schema. Messages become
// message definitions tagged by field number, enums become enum definitions,
// and nested types are flattened to "Outer.Inner". Imports are not followed;
// use Registry.LoadSchema for files that reference other files.
func ParseProto(r io.Reader) (*schema.Schema, error) {
	parsed, err := protoparser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proto: %w", err)
	}
	return buildFromProtos([]*protoSource{{pkg: protoPackage(parsed), proto: parsed}})
}

// buildFromProtos merges the definitions of every file into one schema named
// after the package of the first file
func buildFromProtos(files []*protoSource) (*schema.Schema, error) {
	var defs []*protoDef
	for _, f := range files {
		if err := collectBody(f.pkg, f.proto.ProtoBody, &defs); err != nil {
			if f.path != "" {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
			return nil, err
		}
	}

	entities := make(map[string]struct{}, len(defs))
	for _, pd := range defs {
		entities[pd.fullName] = struct{}{}
	}

	// Resolve relative type references now that every name is known
	for _, pd := range defs {
		for i := range pd.fields {
			pf := &pd.fields[i]
			if pd.kind == schema.DefEnum || isProtoScalar(pf.typeName) {
				continue
			}
			resolved, err := getReferencedType(pf.typeName, pd.fullName, entities)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", pd.fullName, pf.name, err)
			}
			pf.typeName = resolved
		}
	}

	return buildSchema(files[0].pkg, defs)
}

func collectBody(pkg string, body []protoparserparser.Visitee, out *[]*protoDef) error {
	for _, v := range body {
		switch b := v.(type) {
		case *protoparserparser.Message:
			if err := collectMessage(getFullName(pkg, b.MessageName), b, out); err != nil {
				return err
			}
		case *protoparserparser.Enum:
			if err := collectEnum(getFullName(pkg, b.EnumName), b, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectMessage(fullName string, msg *protoparserparser.Message, out *[]*protoDef) error {
	pd := &protoDef{fullName: fullName, kind: schema.DefMessage}
	*out = append(*out, pd)

	for _, v := range msg.MessageBody {
		switch b := v.(type) {
		case *protoparserparser.Field:
			number, err := strconv.ParseUint(b.FieldNumber, 0, 32)
			if err != nil {
				return fmt.Errorf("%s.%s: invalid field number %q", fullName, b.FieldName, b.FieldNumber)
			}
			pd.fields = append(pd.fields, protoField{
				name:     b.FieldName,
				typeName: b.Type,
				repeated: b.IsRepeated,
				value:    uint32(number),
			})
		case *protoparserparser.MapField:
			return fmt.Errorf("%s.%s: map fields are not supported", fullName, b.MapName)
		case *protoparserparser.Oneof:
			return fmt.Errorf("%s.%s: oneof is not supported", fullName, b.OneofName)
		case *protoparserparser.Message:
			if err := collectMessage(fullName+"."+b.MessageName, b, out); err != nil {
				return err
			}
		case *protoparserparser.Enum:
			if err := collectEnum(fullName+"."+b.EnumName, b, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectEnum(fullName string, enum *protoparserparser.Enum, out *[]*protoDef) error {
	pd := &protoDef{fullName: fullName, kind: schema.DefEnum}
	*out = append(*out, pd)

	for _, v := range enum.EnumBody {
		ef, ok := v.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		number, err := strconv.ParseInt(ef.Number, 0, 64)
		if err != nil || number < 0 || number > 1<<32-1 {
			return fmt.Errorf("%s.%s: enum value %q is not a valid uint", fullName, ef.Ident, ef.Number)
		}
		pd.fields = append(pd.fields, protoField{name: ef.Ident, value: uint32(number)})
	}
	return nil
}

func protoPackage(p *protoparserparser.Proto) string {
	for _, v := range p.ProtoBody {
		if pkg, ok := v.(*protoparserparser.Package); ok {
			return pkg.Name
		}
	}
	return ""
}

func isProtoScalar(typeName string) bool {
	if typeName == "bytes" || unsupportedScalars[typeName] {
		return true
	}
	_, ok := protoScalars[typeName]
	return ok
}
