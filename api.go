package kiwilite

import (
	"fmt"

	"github.com/anirudhraja/kiwilite/dynamic"
	"github.com/anirudhraja/kiwilite/registry"
	"github.com/anirudhraja/kiwilite/schema"
	"github.com/anirudhraja/kiwilite/wire"
)

// ===== SCHEMA-AWARE API =====

// Kiwi provides schema-driven Kiwi encoding and decoding without generated
// code. Types are addressed by name through the underlying registry.
type Kiwi struct {
	registry *registry.Registry
}

// New creates a new Kiwi instance backed by an empty registry
func New(opts ...registry.Option) *Kiwi {
	return &Kiwi{
		registry: registry.NewRegistry(opts...),
	}
}

// LoadSchema loads a schema file or a directory of schema files
func (k *Kiwi) LoadSchema(path string) error {
	return k.registry.LoadSchema(path)
}

// Register adds an already built schema under name
func (k *Kiwi) Register(name string, s *schema.Schema) error {
	return k.registry.Register(name, s)
}

// Parse decodes one value of the named type. The whole of data must be
// consumed.
func (k *Kiwi) Parse(data []byte, typeName string) (dynamic.Value, error) {
	s, def, err := k.registry.LookupType(typeName)
	if err != nil {
		return nil, err
	}

	d := wire.NewDecoder(data)
	v, err := dynamic.DecodeFrom(s, d, def.Index)
	if err != nil {
		return nil, err
	}
	if !d.Done() {
		return nil, fmt.Errorf("%d trailing bytes after %s", d.Remaining(), typeName)
	}
	return v, nil
}

// Marshal encodes v as the named type. Objects and enums must belong to that
// definition.
func (k *Kiwi) Marshal(v dynamic.Value, typeName string) ([]byte, error) {
	s, def, err := k.registry.LookupType(typeName)
	if err != nil {
		return nil, err
	}

	var got string
	switch tv := v.(type) {
	case *dynamic.Object:
		got = tv.Def
	case dynamic.Enum:
		got = tv.Def
	default:
		return nil, fmt.Errorf("%w: cannot marshal %s as %s", wire.ErrTypeMismatch, v.Kind(), typeName)
	}
	if got != def.Name {
		return nil, fmt.Errorf("%w: value of %s cannot be marshaled as %s", wire.ErrTypeMismatch, got, def.Name)
	}

	return dynamic.Encode(s, v)
}

// Skip walks one value of the named type without materializing it and
// returns the number of bytes it occupies
func (k *Kiwi) Skip(data []byte, typeName string) (int, error) {
	s, def, err := k.registry.LookupType(typeName)
	if err != nil {
		return 0, err
	}

	d := wire.NewDecoder(data)
	if err := s.Skip(d, def.Index); err != nil {
		return 0, err
	}
	return d.Pos(), nil
}

// ToJSON decodes data as the named type and renders it as JSON
func (k *Kiwi) ToJSON(data []byte, typeName string) ([]byte, error) {
	v, err := k.Parse(data, typeName)
	if err != nil {
		return nil, err
	}
	return dynamic.ToJSON(v)
}

// FromJSON reads a JSON document as the named type and encodes it
func (k *Kiwi) FromJSON(data []byte, typeName string) ([]byte, error) {
	s, def, err := k.registry.LookupType(typeName)
	if err != nil {
		return nil, err
	}

	v, err := dynamic.FromJSON(s, def.Index, data)
	if err != nil {
		return nil, err
	}
	return dynamic.Encode(s, v)
}

// ===== REGISTRY ACCESS =====

func (k *Kiwi) GetRegistry() *registry.Registry { return k.registry }
func (k *Kiwi) ListSchemas() []string           { return k.registry.ListSchemas() }
func (k *Kiwi) ListTypes() []string             { return k.registry.ListTypes() }
