// Package dynamic holds schema-driven Kiwi values: a tree of Value nodes that
// can be decoded from and encoded to bytes with only a *schema.Schema at hand.
package dynamic

import (
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the concrete type of a Value
type Kind uint8

const (
	KindBool Kind = iota
	KindByte
	KindInt
	KindUInt
	KindFloat
	KindString
	KindArray
	KindEnum
	KindObject
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindByte:   "byte",
	KindInt:    "int",
	KindUInt:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindArray:  "array",
	KindEnum:   "enum",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one node of a decoded Kiwi value tree. The concrete types are
// Bool, Byte, Int, UInt, Float, String, Array, Enum and *Object. Values own
// their data and never alias the buffer they were decoded from.
type Value interface {
	Kind() Kind
	String() string
}

type (
	Bool   bool
	Byte   byte
	Int    int32
	UInt   uint32
	Float  float32
	String string
	Array  []Value
)

// Enum is an enum constant, named by its definition and field name
type Enum struct {
	Def  string
	Name string
}

// Object is a struct or message instance. Decoded structs always carry every
// field; decoded messages carry only the fields present on the wire.
type Object struct {
	Def    string
	Fields map[string]Value
}

func (Bool) Kind() Kind    { return KindBool }
func (Byte) Kind() Kind    { return KindByte }
func (Int) Kind() Kind     { return KindInt }
func (UInt) Kind() Kind    { return KindUInt }
func (Float) Kind() Kind   { return KindFloat }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (Enum) Kind() Kind    { return KindEnum }
func (*Object) Kind() Kind { return KindObject }

func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }
func (v Byte) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v UInt) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }

// String quotes the value, so a String prints the way it would in source
func (v String) String() string { return strconv.Quote(string(v)) }

func (v Enum) String() string { return v.Def + "::" + v.Name }

func (v Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(valueString(item))
	}
	b.WriteByte(']')
	return b.String()
}

// String renders the object as "Def {a: 1, b: 2}" with keys sorted
func (o *Object) String() string {
	var b strings.Builder
	b.WriteString(o.Def)
	b.WriteString(" {")
	for i, name := range o.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(valueString(o.Fields[name]))
	}
	b.WriteByte('}')
	return b.String()
}

func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// NewObject creates an empty object of the named definition
func NewObject(def string) *Object {
	return &Object{Def: def, Fields: make(map[string]Value)}
}

// Get returns the named field, or nil if it is absent
func (o *Object) Get(name string) Value {
	return o.Fields[name]
}

// Lookup returns the named field and whether it is present
func (o *Object) Lookup(name string) (Value, bool) {
	v, ok := o.Fields[name]
	return v, ok
}

// Set stores a field, replacing any previous value
func (o *Object) Set(name string, v Value) {
	if o.Fields == nil {
		o.Fields = make(map[string]Value)
	}
	o.Fields[name] = v
}

// Remove deletes a field if it is present
func (o *Object) Remove(name string) {
	delete(o.Fields, name)
}

// Len returns the number of fields present
func (o *Object) Len() int {
	return len(o.Fields)
}

// Names returns the present field names in sorted order
func (o *Object) Names() []string {
	names := make([]string, 0, len(o.Fields))
	for name := range o.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Push appends an item
func (a *Array) Push(v Value) {
	*a = append(*a, v)
}

// Len returns the number of items
func (a Array) Len() int {
	return len(a)
}

// At returns item i, or nil when i is out of range
func (a Array) At(i int) Value {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Accessors that return the zero value when v has a different kind.

func AsBool(v Value) bool {
	b, _ := v.(Bool)
	return bool(b)
}

func AsByte(v Value) byte {
	b, _ := v.(Byte)
	return byte(b)
}

func AsInt(v Value) int32 {
	i, _ := v.(Int)
	return int32(i)
}

func AsUInt(v Value) uint32 {
	u, _ := v.(UInt)
	return uint32(u)
}

func AsFloat(v Value) float32 {
	f, _ := v.(Float)
	return float32(f)
}

func AsString(v Value) string {
	s, _ := v.(String)
	return string(s)
}

// AsBytes collects an Array of Byte values, as decoded from a byte[] field.
// It returns nil if v is not an array or holds anything other than bytes.
func AsBytes(v Value) []byte {
	a, ok := v.(Array)
	if !ok {
		return nil
	}
	out := make([]byte, len(a))
	for i, item := range a {
		b, ok := item.(Byte)
		if !ok {
			return nil
		}
		out[i] = byte(b)
	}
	return out
}

// BytesValue wraps raw bytes as an Array of Byte values
func BytesValue(data []byte) Array {
	a := make(Array, len(data))
	for i, b := range data {
		a[i] = Byte(b)
	}
	return a
}
