package schema

import (
	"fmt"

	"github.com/anirudhraja/kiwilite/wire"
)

// Decode reads a binary schema. Type ids are not range-checked here; an
// out-of-range id only fails when a value of that type is decoded or skipped.
func Decode(data []byte) (*Schema, error) {
	return DecodeFrom(wire.NewDecoder(data))
}

// DecodeFrom reads a binary schema from the decoder's current position
func DecodeFrom(d *wire.Decoder) (*Schema, error) {
	count, err := d.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("failed to read definition count: %w", err)
	}

	// each def needs at least three bytes, so a larger count is truncated input
	defs := make([]*Def, 0, min(int(count), d.Remaining()/3))
	for i := uint32(0); i < count; i++ {
		def, err := decodeDef(d)
		if err != nil {
			return nil, fmt.Errorf("definition %d: %w", i, err)
		}
		defs = append(defs, def)
	}

	return New(defs...), nil
}

func decodeDef(d *wire.Decoder) (*Def, error) {
	name, err := d.ReadString()
	if err != nil {
		return nil, fmt.Errorf("failed to read name: %w", err)
	}

	kind, err := d.ReadByte()
	if err != nil {
		return nil, wire.WrapField(fmt.Errorf("failed to read kind: %w", err), name)
	}
	if kind > byte(DefMessage) {
		return nil, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrInvalidDefKind, kind), name)
	}

	fieldCount, err := d.ReadVarUint()
	if err != nil {
		return nil, wire.WrapField(fmt.Errorf("failed to read field count: %w", err), name)
	}

	fields := make([]*Field, 0, min(int(fieldCount), d.Remaining()/4))
	for j := uint32(0); j < fieldCount; j++ {
		field, err := decodeField(d)
		if err != nil {
			return nil, wire.WrapField(err, name)
		}
		fields = append(fields, field)
	}

	return NewDef(name, DefKind(kind), fields), nil
}

func decodeField(d *wire.Decoder) (*Field, error) {
	var f Field
	var err error

	if f.Name, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("failed to read field name: %w", err)
	}
	if f.TypeID, err = d.ReadVarInt(); err != nil {
		return nil, wire.WrapField(fmt.Errorf("failed to read type id: %w", err), f.Name)
	}
	if f.IsArray, err = d.ReadBool(); err != nil {
		return nil, wire.WrapField(fmt.Errorf("failed to read array flag: %w", err), f.Name)
	}
	if f.Value, err = d.ReadVarUint(); err != nil {
		return nil, wire.WrapField(fmt.Errorf("failed to read value: %w", err), f.Name)
	}

	return &f, nil
}

// Encode returns the binary form of the schema
func (s *Schema) Encode() []byte {
	e := wire.NewEncoder()
	s.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo appends the binary form of the schema to e
func (s *Schema) EncodeTo(e *wire.Encoder) {
	e.WriteVarUint(uint32(len(s.Defs)))
	for _, def := range s.Defs {
		e.WriteString(def.Name)
		_ = e.WriteByte(byte(def.Kind))
		e.WriteVarUint(uint32(len(def.Fields)))
		for _, f := range def.Fields {
			e.WriteString(f.Name)
			e.WriteVarInt(f.TypeID)
			e.WriteBool(f.IsArray)
			e.WriteVarUint(f.Value)
		}
	}
}
