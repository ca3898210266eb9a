package dynamic

import (
	"fmt"
	"strings"

	"github.com/anirudhraja/kiwilite/schema"
	"github.com/anirudhraja/kiwilite/wire"
)

// Encode returns the wire form of v. Enum and object values are resolved
// against s by definition name; fields of objects are checked against their
// declared types.
func Encode(s *schema.Schema, v Value) ([]byte, error) {
	e := wire.NewEncoder()
	if err := EncodeTo(s, e, v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// EncodeTo appends the wire form of v to e. On error e may hold a partial
// encoding.
func EncodeTo(s *schema.Schema, e *wire.Encoder, v Value) error {
	ve := &valueEncoder{schema: s, encoder: e}
	return ve.encode(v)
}

type valueEncoder struct {
	schema  *schema.Schema
	encoder *wire.Encoder
}

func (ve *valueEncoder) encode(v Value) error {
	e := ve.encoder

	switch t := v.(type) {
	case Bool:
		e.WriteBool(bool(t))
	case Byte:
		_ = e.WriteByte(byte(t))
	case Int:
		e.WriteVarInt(int32(t))
	case UInt:
		e.WriteVarUint(uint32(t))
	case Float:
		e.WriteVarFloat(float32(t))
	case String:
		if strings.IndexByte(string(t), 0) >= 0 {
			return fmt.Errorf("%w: string contains a NUL byte", wire.ErrTypeMismatch)
		}
		e.WriteString(string(t))
	case Array:
		e.WriteVarUint(uint32(len(t)))
		for i, item := range t {
			if err := ve.encode(item); err != nil {
				return wire.WrapField(err, fmt.Sprintf("[%d]", i))
			}
		}
	case Enum:
		return ve.encodeEnum(t)
	case *Object:
		if t == nil {
			return fmt.Errorf("%w: nil object", wire.ErrTypeMismatch)
		}
		return ve.encodeObject(t)
	default:
		return fmt.Errorf("%w: unsupported value %T", wire.ErrTypeMismatch, v)
	}

	return nil
}

func (ve *valueEncoder) encodeEnum(v Enum) error {
	def, ok := ve.schema.Def(v.Def)
	if !ok || def.Kind != schema.DefEnum {
		return fmt.Errorf("%w: enum %q", wire.ErrUnknownDef, v.Def)
	}
	f, ok := def.Field(v.Name)
	if !ok {
		return wire.WrapField(fmt.Errorf("%w: %q", wire.ErrUnknownField, v.Name), def.Name)
	}
	ve.encoder.WriteVarUint(f.Value)
	return nil
}

func (ve *valueEncoder) encodeObject(obj *Object) error {
	def, ok := ve.schema.Def(obj.Def)
	if !ok || def.Kind == schema.DefEnum {
		return fmt.Errorf("%w: %q", wire.ErrUnknownDef, obj.Def)
	}

	for name := range obj.Fields {
		if _, ok := def.Field(name); !ok {
			return wire.WrapField(fmt.Errorf("%w: %q", wire.ErrUnknownField, name), def.Name)
		}
	}

	for _, f := range def.Fields {
		v, present := obj.Fields[f.Name]
		if !present {
			if def.Kind == schema.DefStruct {
				return wire.WrapField(wire.WrapField(wire.ErrMissingField, f.Name), def.Name)
			}
			continue
		}

		if def.Kind == schema.DefMessage {
			ve.encoder.WriteVarUint(f.Value)
		}
		if err := ve.encodeField(f, v); err != nil {
			return wire.WrapField(wire.WrapField(err, f.Name), def.Name)
		}
	}

	if def.Kind == schema.DefMessage {
		ve.encoder.WriteVarUint(0)
	}
	return nil
}

func (ve *valueEncoder) encodeField(f *schema.Field, v Value) error {
	if !f.IsArray {
		if err := ve.checkType(f.TypeID, v); err != nil {
			return err
		}
		return ve.encode(v)
	}

	items, ok := v.(Array)
	if !ok {
		return fmt.Errorf("%w: want %s[], got %s", wire.ErrTypeMismatch, ve.schema.TypeName(f.TypeID), kindOf(v))
	}
	for i, item := range items {
		if err := ve.checkType(f.TypeID, item); err != nil {
			return wire.WrapField(err, fmt.Sprintf("[%d]", i))
		}
	}
	return ve.encode(items)
}

// checkType verifies that v can be written as a single value of typeID
func (ve *valueEncoder) checkType(typeID int32, v Value) error {
	var ok bool
	switch typeID {
	case schema.TypeBool:
		_, ok = v.(Bool)
	case schema.TypeByte:
		_, ok = v.(Byte)
	case schema.TypeInt:
		_, ok = v.(Int)
	case schema.TypeUint:
		_, ok = v.(UInt)
	case schema.TypeFloat:
		_, ok = v.(Float)
	case schema.TypeString:
		_, ok = v.(String)
	default:
		def, err := ve.schema.DefAt(typeID)
		if err != nil {
			return err
		}
		switch t := v.(type) {
		case Enum:
			ok = def.Kind == schema.DefEnum && t.Def == def.Name
		case *Object:
			ok = t != nil && def.Kind != schema.DefEnum && t.Def == def.Name
		}
	}

	if !ok {
		return fmt.Errorf("%w: want %s, got %s", wire.ErrTypeMismatch, ve.schema.TypeName(typeID), kindOf(v))
	}
	return nil
}

func kindOf(v Value) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case Enum:
		return "enum " + t.Def
	case *Object:
		if t == nil {
			return "nil object"
		}
		return "object " + t.Def
	default:
		return v.Kind().String()
	}
}
