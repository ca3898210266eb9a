package schema

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Descriptor is the human-editable form of a Schema. Fields name their types
// instead of carrying numeric type ids, so definitions can be reordered or
// edited by hand.
type Descriptor struct {
	Package     string          `json:"package,omitempty" yaml:"package,omitempty"`
	Definitions []DefDescriptor `json:"definitions" yaml:"definitions"`
}

// DefDescriptor describes one definition
type DefDescriptor struct {
	Name   string            `json:"name" yaml:"name"`
	Kind   string            `json:"kind" yaml:"kind"` // enum, struct or message
	Fields []FieldDescriptor `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldDescriptor describes one field. Type may also be written with a
// trailing "[]" instead of setting Array.
type FieldDescriptor struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"` // empty for enum constants
	Array bool   `json:"array,omitempty" yaml:"array,omitempty"`
	Value uint32 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Descriptor converts the schema to its named form
func (s *Schema) Descriptor() *Descriptor {
	desc := &Descriptor{
		Package:     s.Package,
		Definitions: make([]DefDescriptor, 0, len(s.Defs)),
	}
	for _, def := range s.Defs {
		dd := DefDescriptor{
			Name:   def.Name,
			Kind:   def.Kind.String(),
			Fields: make([]FieldDescriptor, 0, len(def.Fields)),
		}
		for _, f := range def.Fields {
			fd := FieldDescriptor{Name: f.Name, Array: f.IsArray, Value: f.Value}
			if def.Kind != DefEnum {
				fd.Type = s.TypeName(f.TypeID)
			}
			dd.Fields = append(dd.Fields, fd)
		}
		desc.Definitions = append(desc.Definitions, dd)
	}
	return desc
}

// FromDescriptor builds a schema from its named form. Definitions keep their
// listed order, which fixes their type ids.
func FromDescriptor(desc *Descriptor) (*Schema, error) {
	defs := make([]*Def, 0, len(desc.Definitions))
	for _, dd := range desc.Definitions {
		kind, err := ParseDefKind(dd.Kind)
		if err != nil {
			return nil, fmt.Errorf("definition %q: %w", dd.Name, err)
		}
		defs = append(defs, &Def{Name: dd.Name, Kind: kind})
	}

	// names must be indexed before field types can be resolved
	s := New(defs...)
	s.Package = desc.Package

	for i, dd := range desc.Definitions {
		def := defs[i]
		fields := make([]*Field, 0, len(dd.Fields))
		for _, fd := range dd.Fields {
			f := &Field{Name: fd.Name, IsArray: fd.Array, Value: fd.Value}
			// enum constants carry type id 0
			if def.Kind != DefEnum {
				typeName, isArray := strings.CutSuffix(fd.Type, "[]")
				id, ok := s.TypeID(typeName)
				if !ok {
					return nil, fmt.Errorf("definition %q field %q: unknown type %q", def.Name, fd.Name, fd.Type)
				}
				f.TypeID = id
				f.IsArray = f.IsArray || isArray
			}
			fields = append(fields, f)
		}
		def.SetFields(fields)
	}

	return s, nil
}

// LoadJSON reads a JSON descriptor. Unknown keys are rejected.
func LoadJSON(data []byte) (*Schema, error) {
	var desc Descriptor
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON descriptor: %w", err)
	}
	return FromDescriptor(&desc)
}

// LoadYAML reads a YAML descriptor. Unknown keys are rejected.
func LoadYAML(data []byte) (*Schema, error) {
	var desc Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML descriptor: %w", err)
	}
	return FromDescriptor(&desc)
}

// MarshalJSON renders the schema as a JSON descriptor
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Descriptor())
}

// MarshalYAML returns the descriptor for yaml.Marshal
func (s *Schema) MarshalYAML() (interface{}, error) {
	return s.Descriptor(), nil
}
