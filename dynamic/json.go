package dynamic

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/anirudhraja/kiwilite/schema"
	"github.com/anirudhraja/kiwilite/wire"
)

// ToJSON renders v as JSON. Enums become their constant names, objects become
// JSON objects with sorted keys, and byte arrays become arrays of numbers.
// Non-finite floats are written as the strings "NaN", "Infinity" and
// "-Infinity".
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(toInterface(v))
}

// ToJSONIndent is ToJSON with indentation
func ToJSONIndent(v Value, indent string) ([]byte, error) {
	return json.MarshalIndent(toInterface(v), "", indent)
}

func toInterface(v Value) interface{} {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Byte:
		return uint8(t)
	case Int:
		return int32(t)
	case UInt:
		return uint32(t)
	case Float:
		f := float64(t)
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
		return float32(t)
	case String:
		return string(t)
	case Enum:
		return t.Name
	case Array:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = toInterface(item)
		}
		return out
	case *Object:
		if t == nil {
			return nil
		}
		out := make(map[string]interface{}, len(t.Fields))
		for name, field := range t.Fields {
			out[name] = toInterface(field)
		}
		return out
	default:
		return nil
	}
}

// FromJSON builds a value of typeID from JSON, using the schema to pick Kiwi
// types. Integer fields accept integral numbers in any notation and numeric
// strings; out-of-range numbers are rejected. In messages, null means the
// field is absent. Anything after the first JSON value is an error.
func FromJSON(s *schema.Schema, typeID int32, data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	var extra interface{}
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("failed to parse JSON: unexpected data after top-level value")
	}
	return fromInterface(s, typeID, raw)
}

func fromInterface(s *schema.Schema, typeID int32, raw interface{}) (Value, error) {
	switch typeID {
	case schema.TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, mismatch("bool", raw)
		}
		return Bool(b), nil

	case schema.TypeByte:
		u, err := coerceToUint64(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrTypeMismatch, err)
		}
		if u > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %d overflows byte", wire.ErrTypeMismatch, u)
		}
		return Byte(u), nil

	case schema.TypeInt:
		i, err := coerceToInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrTypeMismatch, err)
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d overflows int", wire.ErrTypeMismatch, i)
		}
		return Int(i), nil

	case schema.TypeUint:
		u, err := coerceToUint64(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrTypeMismatch, err)
		}
		if u > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d overflows uint", wire.ErrTypeMismatch, u)
		}
		return UInt(u), nil

	case schema.TypeFloat:
		f, err := coerceToFloat64(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", wire.ErrTypeMismatch, err)
		}
		// NaN and the infinities pass through; finite values must fit
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, fmt.Errorf("%w: %v overflows float", wire.ErrTypeMismatch, f)
		}
		return Float(f), nil

	case schema.TypeString:
		str, ok := raw.(string)
		if !ok {
			return nil, mismatch("string", raw)
		}
		return String(str), nil
	}

	def, err := s.DefAt(typeID)
	if err != nil {
		return nil, err
	}

	switch def.Kind {
	case schema.DefEnum:
		name, ok := raw.(string)
		if !ok {
			return nil, wire.WrapField(mismatch("enum name", raw), def.Name)
		}
		if _, ok := def.Field(name); !ok {
			return nil, wire.WrapField(fmt.Errorf("%w: %q", wire.ErrUndefinedEnumValue, name), def.Name)
		}
		return Enum{Def: def.Name, Name: name}, nil

	case schema.DefStruct, schema.DefMessage:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, wire.WrapField(mismatch("object", raw), def.Name)
		}
		return objectFromInterface(s, def, m)

	default:
		return nil, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrInvalidDefKind, def.Kind), def.Name)
	}
}

func objectFromInterface(s *schema.Schema, def *schema.Def, m map[string]interface{}) (Value, error) {
	obj := &Object{Def: def.Name, Fields: make(map[string]Value, len(m))}

	for name := range m {
		if _, ok := def.Field(name); !ok {
			return nil, wire.WrapField(fmt.Errorf("%w: %q", wire.ErrUnknownField, name), def.Name)
		}
	}

	for _, f := range def.Fields {
		raw, present := m[f.Name]
		if !present || raw == nil {
			if def.Kind == schema.DefStruct {
				return nil, wire.WrapField(wire.WrapField(wire.ErrMissingField, f.Name), def.Name)
			}
			continue
		}

		v, err := fieldFromInterface(s, f, raw)
		if err != nil {
			return nil, wire.WrapField(wire.WrapField(err, f.Name), def.Name)
		}
		obj.Fields[f.Name] = v
	}

	return obj, nil
}

func fieldFromInterface(s *schema.Schema, f *schema.Field, raw interface{}) (Value, error) {
	if !f.IsArray {
		return fromInterface(s, f.TypeID, raw)
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, mismatch("array", raw)
	}
	items := make(Array, 0, len(list))
	for i, item := range list {
		v, err := fromInterface(s, f.TypeID, item)
		if err != nil {
			return nil, wire.WrapField(err, fmt.Sprintf("[%d]", i))
		}
		items = append(items, v)
	}
	return items, nil
}

func mismatch(want string, raw interface{}) error {
	return fmt.Errorf("%w: want %s, got %T", wire.ErrTypeMismatch, want, raw)
}

// Helpers to coerce JSON inputs to integers (accept exponent/float forms if integral)
func coerceToInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		// Try integer first
		if iv, err := t.Int64(); err == nil {
			return iv, nil
		}
		// Fallback: parse as float and check integral
		return integralFloat(t.String())
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for integer field")
		}
		return int64(t), nil
	case string:
		// allow explicit integer strings
		if strings.ContainsAny(t, ".eE") {
			return integralFloat(t)
		}
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected integer-like, got %T", v)
	}
}

func coerceToUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case json.Number:
		if uv, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return uv, nil
		}
		i, err := integralFloat(t.String())
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, fmt.Errorf("negative numeric for unsigned field")
		}
		return uint64(i), nil
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integer numeric for unsigned field")
		}
		return uint64(t), nil
	case string:
		if strings.ContainsAny(t, ".eE") {
			i, err := integralFloat(t)
			if err != nil {
				return 0, err
			}
			if i < 0 {
				return 0, fmt.Errorf("negative numeric for unsigned field")
			}
			return uint64(i), nil
		}
		return strconv.ParseUint(t, 10, 64)
	default:
		return 0, fmt.Errorf("expected unsigned-integer-like, got %T", v)
	}
}

func integralFloat(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("non-integer numeric for integer field")
	}
	return int64(f), nil
}

func coerceToFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	case string:
		switch t {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
