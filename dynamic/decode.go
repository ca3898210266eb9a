package dynamic

import (
	"fmt"

	"github.com/anirudhraja/kiwilite/schema"
	"github.com/anirudhraja/kiwilite/wire"
)

// DecodeOptions controls optional decode behaviors
type DecodeOptions struct {
	// LossyStrings replaces invalid UTF-8 with U+FFFD instead of failing
	LossyStrings bool

	// MaxDepth bounds struct and message nesting. Zero uses the global
	// config.
	MaxDepth int
}

func defaultDecodeOptions() DecodeOptions {
	c := wire.GetConfig()
	return DecodeOptions{LossyStrings: c.LossyStrings, MaxDepth: c.DepthLimit()}
}

func newValueDecoder(s *schema.Schema, opts DecodeOptions) *valueDecoder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = wire.GetConfig().DepthLimit()
	}
	return &valueDecoder{schema: s, opts: opts}
}

// Decode reads one value of typeID from the start of data. Bytes after the
// value are ignored.
func Decode(s *schema.Schema, typeID int32, data []byte) (Value, error) {
	return DecodeWithOptions(s, typeID, data, defaultDecodeOptions())
}

// DecodeWithOptions is Decode with explicit options
func DecodeWithOptions(s *schema.Schema, typeID int32, data []byte, opts DecodeOptions) (Value, error) {
	dec := newValueDecoder(s, opts)
	return result(dec.decode(wire.NewDecoder(data), typeID))
}

// DecodeFrom reads one value of typeID at the decoder's position
func DecodeFrom(s *schema.Schema, d *wire.Decoder, typeID int32) (Value, error) {
	dec := newValueDecoder(s, defaultDecodeOptions())
	return result(dec.decode(d, typeID))
}

// DecodeField reads one value of field at the decoder's position. Array
// fields produce an Array.
func DecodeField(s *schema.Schema, d *wire.Decoder, field *schema.Field) (Value, error) {
	dec := newValueDecoder(s, defaultDecodeOptions())
	return result(dec.decodeField(d, field))
}

// result drops the partial value that accompanies a failed read
func result(v Value, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

type valueDecoder struct {
	schema *schema.Schema
	opts   DecodeOptions
	depth  int
}

func (vd *valueDecoder) decode(d *wire.Decoder, typeID int32) (Value, error) {
	switch typeID {
	case schema.TypeBool:
		v, err := d.ReadBool()
		return Bool(v), err
	case schema.TypeByte:
		v, err := d.ReadByte()
		return Byte(v), err
	case schema.TypeInt:
		v, err := d.ReadVarInt()
		return Int(v), err
	case schema.TypeUint:
		v, err := d.ReadVarUint()
		return UInt(v), err
	case schema.TypeFloat:
		v, err := d.ReadVarFloat()
		return Float(v), err
	case schema.TypeString:
		var v string
		var err error
		if vd.opts.LossyStrings {
			v, err = d.ReadStringLossy()
		} else {
			v, err = d.ReadString()
		}
		return String(v), err
	}

	def, err := vd.schema.DefAt(typeID)
	if err != nil {
		return nil, err
	}

	if def.Kind == schema.DefEnum {
		return vd.decodeEnum(d, def)
	}

	if vd.depth >= vd.opts.MaxDepth {
		return nil, wire.WrapField(fmt.Errorf("%w: limit %d", wire.ErrMaxDepthExceeded, vd.opts.MaxDepth), def.Name)
	}
	vd.depth++
	defer func() { vd.depth-- }()

	switch def.Kind {
	case schema.DefStruct:
		return vd.decodeStruct(d, def)
	case schema.DefMessage:
		return vd.decodeMessage(d, def)
	default:
		return nil, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrInvalidDefKind, def.Kind), def.Name)
	}
}

func (vd *valueDecoder) decodeEnum(d *wire.Decoder, def *schema.Def) (Value, error) {
	v, err := d.ReadVarUint()
	if err != nil {
		return nil, wire.WrapField(err, def.Name)
	}
	f, ok := def.FieldByValue(v)
	if !ok {
		return nil, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrUndefinedEnumValue, v), def.Name)
	}
	return Enum{Def: def.Name, Name: f.Name}, nil
}

func (vd *valueDecoder) decodeStruct(d *wire.Decoder, def *schema.Def) (Value, error) {
	obj := &Object{Def: def.Name, Fields: make(map[string]Value, len(def.Fields))}
	for _, f := range def.Fields {
		v, err := vd.decodeField(d, f)
		if err != nil {
			return nil, wire.WrapField(wire.WrapField(err, f.Name), def.Name)
		}
		obj.Fields[f.Name] = v
	}
	return obj, nil
}

func (vd *valueDecoder) decodeMessage(d *wire.Decoder, def *schema.Def) (Value, error) {
	obj := NewObject(def.Name)
	for {
		tag, err := d.ReadVarUint()
		if err != nil {
			return nil, wire.WrapField(fmt.Errorf("failed to read field tag: %w", err), def.Name)
		}
		if tag == 0 {
			return obj, nil
		}

		f, ok := def.FieldByValue(tag)
		if !ok {
			return nil, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrUnrecognizedFieldTag, tag), def.Name)
		}
		v, err := vd.decodeField(d, f)
		if err != nil {
			return nil, wire.WrapField(wire.WrapField(err, f.Name), def.Name)
		}
		// a repeated tag overwrites the earlier value
		obj.Fields[f.Name] = v
	}
}

func (vd *valueDecoder) decodeField(d *wire.Decoder, f *schema.Field) (Value, error) {
	if !f.IsArray {
		return vd.decode(d, f.TypeID)
	}

	if f.TypeID == schema.TypeByte {
		raw, err := d.ReadByteArrayRaw()
		if err != nil {
			return nil, err
		}
		return BytesValue(raw), nil
	}

	count, err := d.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("failed to read array length: %w", err)
	}

	// every element takes at least one byte
	items := make(Array, 0, min(int(count), d.Remaining()))
	for i := uint32(0); i < count; i++ {
		v, err := vd.decode(d, f.TypeID)
		if err != nil {
			return nil, wire.WrapField(err, fmt.Sprintf("[%d]", i))
		}
		items = append(items, v)
	}
	return items, nil
}
