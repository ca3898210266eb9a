package schema

import (
	"testing"

	"github.com/anirudhraja/kiwilite/wire"
	"github.com/stretchr/testify/require"
)

// canonicalBytes is "message ABC { int[] xyz = 1; }"
var canonicalBytes = []byte{1, 65, 66, 67, 0, 2, 1, 120, 121, 122, 0, 5, 1, 1}

// testSchema covers every built-in type as a scalar and as an array, plus
// nested enums, structs and messages.
func testSchema() *Schema {
	return New(
		NewDef("Enum", DefEnum, []*Field{
			{Name: "FOO", TypeID: 0, Value: 100},
			{Name: "BAR", TypeID: 0, Value: 200},
		}),
		NewDef("Struct", DefStruct, []*Field{
			{Name: "v_enum", TypeID: 0, IsArray: true},
			{Name: "v_message", TypeID: 2},
		}),
		NewDef("Message", DefMessage, []*Field{
			{Name: "v_bool", TypeID: TypeBool, Value: 1},
			{Name: "v_byte", TypeID: TypeByte, Value: 2},
			{Name: "v_int", TypeID: TypeInt, Value: 3},
			{Name: "v_uint", TypeID: TypeUint, Value: 4},
			{Name: "v_float", TypeID: TypeFloat, Value: 5},
			{Name: "v_string", TypeID: TypeString, Value: 6},
			{Name: "v_enum", TypeID: 0, Value: 7},
			{Name: "v_struct", TypeID: 1, Value: 8},
			{Name: "v_message", TypeID: 2, Value: 9},
			{Name: "a_bool", TypeID: TypeBool, IsArray: true, Value: 10},
			{Name: "a_byte", TypeID: TypeByte, IsArray: true, Value: 11},
			{Name: "a_int", TypeID: TypeInt, IsArray: true, Value: 12},
			{Name: "a_uint", TypeID: TypeUint, IsArray: true, Value: 13},
			{Name: "a_float", TypeID: TypeFloat, IsArray: true, Value: 14},
			{Name: "a_string", TypeID: TypeString, IsArray: true, Value: 15},
			{Name: "a_enum", TypeID: 0, IsArray: true, Value: 16},
			{Name: "a_struct", TypeID: 1, IsArray: true, Value: 17},
			{Name: "a_message", TypeID: 2, IsArray: true, Value: 18},
		}),
	)
}

func TestSchemaDecodeCanonical(t *testing.T) {
	s, err := Decode(canonicalBytes)
	require.NoError(t, err)

	want := New(NewDef("ABC", DefMessage, []*Field{
		{Name: "xyz", TypeID: TypeInt, IsArray: true, Value: 1},
	}))
	require.True(t, s.Equal(want))

	def, ok := s.Def("ABC")
	require.True(t, ok)
	require.Equal(t, int32(0), def.Index)

	f, ok := def.FieldByValue(1)
	require.True(t, ok)
	require.Equal(t, "xyz", f.Name)

	require.Equal(t, canonicalBytes, s.Encode())
}

func TestSchemaRoundTrip(t *testing.T) {
	s := testSchema()
	data := s.Encode()

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.True(t, s.Equal(decoded))
	require.Equal(t, data, decoded.Encode())
}

func TestSchemaDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", []byte{}, wire.ErrBufferExhausted},
		{"truncated name", []byte{1, 65, 66}, wire.ErrBufferExhausted},
		{"invalid kind", []byte{1, 65, 0, 3, 0}, wire.ErrInvalidDefKind},
		{"truncated field", []byte{1, 65, 0, 2, 1, 120, 0, 5}, wire.ErrBufferExhausted},
		{"invalid array flag", []byte{1, 65, 0, 2, 1, 120, 0, 5, 2, 1}, wire.ErrInvalidBoolean},
		{"invalid utf-8 name", []byte{1, 0xff, 0, 2, 0}, wire.ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSchemaDecodeDefersTypeIDCheck(t *testing.T) {
	// field type 9 points past the single definition
	s, err := Decode([]byte{1, 65, 0, 2, 1, 120, 0, 18, 0, 1})
	require.NoError(t, err)
	require.Equal(t, int32(9), s.Defs[0].Fields[0].TypeID)

	err = s.Skip(wire.NewDecoder([]byte{1, 0}), 0)
	require.ErrorIs(t, err, wire.ErrTypeIDOutOfRange)
}

func TestSchemaLookups(t *testing.T) {
	s := testSchema()

	id, ok := s.TypeID("Message")
	require.True(t, ok)
	require.Equal(t, int32(2), id)

	id, ok = s.TypeID("float")
	require.True(t, ok)
	require.Equal(t, TypeFloat, id)

	_, ok = s.TypeID("Missing")
	require.False(t, ok)

	require.Equal(t, "string", s.TypeName(TypeString))
	require.Equal(t, "Struct", s.TypeName(1))
	require.Equal(t, "<type 7>", s.TypeName(7))

	_, err := s.DefAt(3)
	require.ErrorIs(t, err, wire.ErrTypeIDOutOfRange)
	_, err = s.DefAt(-1)
	require.ErrorIs(t, err, wire.ErrTypeIDOutOfRange)

	require.True(t, IsBuiltin(TypeString))
	require.False(t, IsBuiltin(0))
	require.False(t, IsBuiltin(-7))

	name, ok := BuiltinName(TypeUint)
	require.True(t, ok)
	require.Equal(t, "uint", name)
}

func TestDefKind(t *testing.T) {
	for _, k := range []DefKind{DefEnum, DefStruct, DefMessage} {
		parsed, err := ParseDefKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	require.Equal(t, "DefKind(7)", DefKind(7).String())

	_, err := ParseDefKind("union")
	require.ErrorIs(t, err, wire.ErrInvalidDefKind)
}

func TestSchemaEqual(t *testing.T) {
	var nilSchema *Schema
	require.True(t, nilSchema.Equal(nil))
	require.False(t, testSchema().Equal(nil))
	require.True(t, testSchema().Equal(testSchema()))

	changed := testSchema()
	changed.Defs[2].Fields[3].Value = 40
	require.False(t, testSchema().Equal(changed))

	// the binary form has no package, so it takes no part in equality
	renamed := testSchema()
	renamed.Package = "other"
	require.True(t, testSchema().Equal(renamed))

	decoded, err := Decode(renamed.Encode())
	require.NoError(t, err)
	require.Empty(t, decoded.Package)
	require.True(t, decoded.Equal(renamed))
}

func TestSetFieldsRebuildsIndex(t *testing.T) {
	def := NewDef("E", DefEnum, []*Field{{Name: "A", Value: 1}})
	def.SetFields([]*Field{{Name: "B", Value: 2}})

	_, ok := def.Field("A")
	require.False(t, ok)
	f, ok := def.FieldByValue(2)
	require.True(t, ok)
	require.Equal(t, "B", f.Name)
}
