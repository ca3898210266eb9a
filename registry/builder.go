package registry

import (
	"fmt"
	"strings"

	"github.com/anirudhraja/kiwilite/schema"
)

// protoDef is a message or enum collected from a proto source before its
// field types are resolved to Kiwi type ids
type protoDef struct {
	fullName string // pkg.Outer.Inner
	kind     schema.DefKind
	fields   []protoField
}

type protoField struct {
	name     string
	typeName string // proto scalar name, or the fully qualified name of a message/enum
	repeated bool
	value    uint32 // field number or enum value
}

// protoScalars maps the proto scalar types Kiwi can represent. bytes is
// special-cased as byte[].
var protoScalars = map[string]int32{
	"bool":     schema.TypeBool,
	"int32":    schema.TypeInt,
	"sint32":   schema.TypeInt,
	"sfixed32": schema.TypeInt,
	"uint32":   schema.TypeUint,
	"fixed32":  schema.TypeUint,
	"float":    schema.TypeFloat,
	"string":   schema.TypeString,
}

var unsupportedScalars = map[string]bool{
	"int64":    true,
	"uint64":   true,
	"sint64":   true,
	"fixed64":  true,
	"sfixed64": true,
	"double":   true,
}

// buildSchema turns collected definitions into a Schema. Definitions in pkg
// are named relative to it ("Outer.Inner"); definitions from other packages
// keep their fully qualified name.
func buildSchema(pkg string, defs []*protoDef) (*schema.Schema, error) {
	index := make(map[string]int32, len(defs))
	kiwiDefs := make([]*schema.Def, 0, len(defs))
	for i, pd := range defs {
		if _, dup := index[pd.fullName]; dup {
			return nil, fmt.Errorf("duplicate definition: %s", pd.fullName)
		}
		index[pd.fullName] = int32(i)
		kiwiDefs = append(kiwiDefs, &schema.Def{Name: relativeName(pkg, pd.fullName), Kind: pd.kind})
	}

	for i, pd := range defs {
		fields := make([]*schema.Field, 0, len(pd.fields))
		for _, pf := range pd.fields {
			f := &schema.Field{Name: pf.name, Value: pf.value, IsArray: pf.repeated}
			if pd.kind != schema.DefEnum {
				if err := resolveFieldType(f, pf, index); err != nil {
					return nil, fmt.Errorf("%s.%s: %w", pd.fullName, pf.name, err)
				}
			}
			fields = append(fields, f)
		}
		kiwiDefs[i].SetFields(fields)
	}

	s := schema.New(kiwiDefs...)
	s.Package = pkg
	return s, nil
}

func resolveFieldType(f *schema.Field, pf protoField, index map[string]int32) error {
	if pf.typeName == "bytes" {
		if pf.repeated {
			return fmt.Errorf("repeated bytes has no Kiwi equivalent")
		}
		f.TypeID = schema.TypeByte
		f.IsArray = true
		return nil
	}
	if id, ok := protoScalars[pf.typeName]; ok {
		f.TypeID = id
		return nil
	}
	if unsupportedScalars[pf.typeName] {
		return fmt.Errorf("unsupported scalar type %s", pf.typeName)
	}
	id, ok := index[pf.typeName]
	if !ok {
		return fmt.Errorf("type %s is not defined in the loaded files", pf.typeName)
	}
	f.TypeID = id
	return nil
}

func relativeName(pkg, fullName string) string {
	if pkg == "" {
		return fullName
	}
	if rest, ok := strings.CutPrefix(fullName, pkg+"."); ok {
		return rest
	}
	return fullName
}

func getFullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
