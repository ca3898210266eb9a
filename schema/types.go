package schema

import (
	"fmt"

	"github.com/anirudhraja/kiwilite/wire"
)

// Built-in type ids. Non-negative type ids index Schema.Defs.
const (
	TypeBool   int32 = -1
	TypeByte   int32 = -2
	TypeInt    int32 = -3
	TypeUint   int32 = -4
	TypeFloat  int32 = -5
	TypeString int32 = -6
)

var builtinNames = map[int32]string{
	TypeBool:   "bool",
	TypeByte:   "byte",
	TypeInt:    "int",
	TypeUint:   "uint",
	TypeFloat:  "float",
	TypeString: "string",
}

var builtinIDs = map[string]int32{
	"bool":   TypeBool,
	"byte":   TypeByte,
	"int":    TypeInt,
	"uint":   TypeUint,
	"float":  TypeFloat,
	"string": TypeString,
}

// IsBuiltin reports whether typeID names one of the six built-in types
func IsBuiltin(typeID int32) bool {
	return typeID >= TypeString && typeID <= TypeBool
}

// BuiltinName returns the schema-language name of a built-in type id
func BuiltinName(typeID int32) (string, bool) {
	name, ok := builtinNames[typeID]
	return name, ok
}

// DefKind represents the kind of a definition
type DefKind byte

const (
	DefEnum    DefKind = 0 // varuint holding one of the enum's field values
	DefStruct  DefKind = 1 // every field, in order, no tags
	DefMessage DefKind = 2 // (tag, value) pairs ended by a zero tag
)

func (k DefKind) String() string {
	switch k {
	case DefEnum:
		return "enum"
	case DefStruct:
		return "struct"
	case DefMessage:
		return "message"
	default:
		return fmt.Sprintf("DefKind(%d)", byte(k))
	}
}

// ParseDefKind parses the lower-case kind keyword
func ParseDefKind(s string) (DefKind, error) {
	switch s {
	case "enum":
		return DefEnum, nil
	case "struct":
		return DefStruct, nil
	case "message":
		return DefMessage, nil
	default:
		return 0, fmt.Errorf("%w: %q", wire.ErrInvalidDefKind, s)
	}
}

// Field represents a single member of a Def
type Field struct {
	Name    string `json:"name" yaml:"name"`         // "position"
	TypeID  int32  `json:"type_id" yaml:"type_id"`   // built-in constant or index into Schema.Defs
	IsArray bool   `json:"is_array" yaml:"is_array"` // declared as T[]
	Value   uint32 `json:"value" yaml:"value"`       // enum constant or message tag; unused for structs
}

// Def represents a single enum, struct or message definition
type Def struct {
	Name   string   `json:"name"`
	Index  int32    `json:"index"` // position in Schema.Defs
	Kind   DefKind  `json:"kind"`
	Fields []*Field `json:"fields"` // order matters for structs

	byValue map[uint32]int
	byName  map[string]int
}

// NewDef creates a definition and indexes its fields
func NewDef(name string, kind DefKind, fields []*Field) *Def {
	d := &Def{Name: name, Kind: kind}
	d.SetFields(fields)
	return d
}

// SetFields replaces the field list and rebuilds the lookup indices
func (d *Def) SetFields(fields []*Field) {
	d.Fields = fields
	d.byValue = make(map[uint32]int, len(fields))
	d.byName = make(map[string]int, len(fields))
	for i, f := range fields {
		d.byValue[f.Value] = i
		d.byName[f.Name] = i
	}
}

// Field retrieves a field by name
func (d *Def) Field(name string) (*Field, bool) {
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.Fields[i], true
}

// FieldByValue retrieves a field by its enum value or message tag
func (d *Def) FieldByValue(value uint32) (*Field, bool) {
	i, ok := d.byValue[value]
	if !ok {
		return nil, false
	}
	return d.Fields[i], true
}

// Schema holds an ordered list of definitions. Field type ids refer to
// definitions by position, so the order is part of the schema's identity.
// A Schema must not be modified once it is in use; it is then safe for
// concurrent readers.
type Schema struct {
	Package string
	Defs    []*Def

	byName map[string]int
}

// New creates a schema from defs, assigning each Def its position as Index
func New(defs ...*Def) *Schema {
	s := &Schema{
		Defs:   defs,
		byName: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		d.Index = int32(i)
		s.byName[d.Name] = i
	}
	return s
}

// Def retrieves a definition by name
func (s *Schema) Def(name string) (*Def, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.Defs[i], true
}

// DefAt retrieves the definition a non-builtin type id refers to
func (s *Schema) DefAt(typeID int32) (*Def, error) {
	if typeID < 0 || int(typeID) >= len(s.Defs) {
		return nil, fmt.Errorf("%w: %d (schema has %d definitions)", wire.ErrTypeIDOutOfRange, typeID, len(s.Defs))
	}
	return s.Defs[typeID], nil
}

// TypeID resolves a type name, built-in or defined, to its type id
func (s *Schema) TypeID(name string) (int32, bool) {
	if id, ok := builtinIDs[name]; ok {
		return id, true
	}
	if i, ok := s.byName[name]; ok {
		return int32(i), true
	}
	return 0, false
}

// TypeName returns the name of the type a type id refers to
func (s *Schema) TypeName(typeID int32) string {
	if name, ok := builtinNames[typeID]; ok {
		return name
	}
	if typeID >= 0 && int(typeID) < len(s.Defs) {
		return s.Defs[typeID].Name
	}
	return fmt.Sprintf("<type %d>", typeID)
}

// Equal reports whether two schemas have the same definitions and fields in
// the same order. Package is not compared: the binary form does not carry
// it, and Decode(s.Encode()) must equal s.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Defs) != len(other.Defs) {
		return false
	}
	for i, d := range s.Defs {
		o := other.Defs[i]
		if d.Name != o.Name || d.Index != o.Index || d.Kind != o.Kind || len(d.Fields) != len(o.Fields) {
			return false
		}
		for j, f := range d.Fields {
			if *f != *o.Fields[j] {
				return false
			}
		}
	}
	return true
}
