package schema

import (
	"fmt"

	"github.com/anirudhraja/kiwilite/wire"
)

// SkipOptions controls how strictly Skip checks the data it passes over
type SkipOptions struct {
	// ValidateEnums fails on enum values the schema does not define. Turning
	// it off lets a reader step over values written with a newer schema.
	ValidateEnums bool

	// MaxDepth bounds struct and message nesting. Zero uses the global
	// config.
	MaxDepth int
}

func defaultSkipOptions() SkipOptions {
	c := wire.GetConfig()
	return SkipOptions{ValidateEnums: c.ValidateEnumsOnSkip, MaxDepth: c.DepthLimit()}
}

// Skip advances d past one value of typeID without materializing it. It
// consumes exactly the bytes a decode of the same type would.
func (s *Schema) Skip(d *wire.Decoder, typeID int32) error {
	return s.SkipWithOptions(d, typeID, defaultSkipOptions())
}

// SkipField advances d past one value of field, including array counts
func (s *Schema) SkipField(d *wire.Decoder, field *Field) error {
	return s.SkipFieldWithOptions(d, field, defaultSkipOptions())
}

// SkipWithOptions is Skip with explicit options
func (s *Schema) SkipWithOptions(d *wire.Decoder, typeID int32, opts SkipOptions) error {
	return newSkipper(s, opts).skip(d, typeID)
}

// SkipFieldWithOptions is SkipField with explicit options
func (s *Schema) SkipFieldWithOptions(d *wire.Decoder, field *Field, opts SkipOptions) error {
	return newSkipper(s, opts).skipField(d, field)
}

type skipper struct {
	schema *Schema
	opts   SkipOptions
	depth  int
}

func newSkipper(s *Schema, opts SkipOptions) *skipper {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = wire.GetConfig().DepthLimit()
	}
	return &skipper{schema: s, opts: opts}
}

func (sk *skipper) skip(d *wire.Decoder, typeID int32) error {
	switch typeID {
	case TypeBool:
		_, err := d.ReadBool()
		return err
	case TypeByte:
		_, err := d.ReadByte()
		return err
	case TypeInt, TypeUint:
		return wire.NewVarintDecoder(d).SkipVarint()
	case TypeFloat:
		return wire.NewFloatDecoder(d).SkipVarFloat()
	case TypeString:
		return wire.NewBytesDecoder(d).SkipString()
	}

	def, err := sk.schema.DefAt(typeID)
	if err != nil {
		return err
	}

	if def.Kind == DefEnum {
		v, err := d.ReadVarUint()
		if err != nil {
			return wire.WrapField(err, def.Name)
		}
		if _, ok := def.FieldByValue(v); !ok && sk.opts.ValidateEnums {
			return wire.WrapField(fmt.Errorf("%w: %d", wire.ErrUndefinedEnumValue, v), def.Name)
		}
		return nil
	}

	if sk.depth >= sk.opts.MaxDepth {
		return wire.WrapField(fmt.Errorf("%w: limit %d", wire.ErrMaxDepthExceeded, sk.opts.MaxDepth), def.Name)
	}
	sk.depth++
	defer func() { sk.depth-- }()

	switch def.Kind {
	case DefStruct:
		for _, f := range def.Fields {
			if err := sk.skipField(d, f); err != nil {
				return wire.WrapField(wire.WrapField(err, f.Name), def.Name)
			}
		}

	case DefMessage:
		for {
			tag, err := d.ReadVarUint()
			if err != nil {
				return wire.WrapField(err, def.Name)
			}
			if tag == 0 {
				break
			}
			f, ok := def.FieldByValue(tag)
			if !ok {
				return wire.WrapField(fmt.Errorf("%w: %d", wire.ErrUnrecognizedFieldTag, tag), def.Name)
			}
			if err := sk.skipField(d, f); err != nil {
				return wire.WrapField(wire.WrapField(err, f.Name), def.Name)
			}
		}

	default:
		return wire.WrapField(fmt.Errorf("%w: %d", wire.ErrInvalidDefKind, def.Kind), def.Name)
	}

	return nil
}

func (sk *skipper) skipField(d *wire.Decoder, field *Field) error {
	if !field.IsArray {
		return sk.skip(d, field.TypeID)
	}

	// byte[] is a single length-prefixed run
	if field.TypeID == TypeByte {
		return wire.NewBytesDecoder(d).SkipByteArray()
	}

	count, err := d.ReadVarUint()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if err := sk.skip(d, field.TypeID); err != nil {
			return err
		}
	}
	return nil
}
