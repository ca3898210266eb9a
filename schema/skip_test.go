package schema

import (
	"bytes"
	"testing"

	"github.com/anirudhraja/kiwilite/wire"
	"github.com/stretchr/testify/require"
)

// fullMessage sets most fields of Message, followed by one trailing byte
var fullMessage = []byte{
	1, 1, // v_bool
	2, 255, // v_byte
	3, 1, // v_int
	4, 1, // v_uint
	5, 126, 0, 0, 0, // v_float 0.5
	6, 97, 0, // v_string
	7, 100, // v_enum FOO
	8, 0, 0, // v_struct
	9, 0, // v_message
	10, 2, 0, 1, // a_bool
	11, 3, 1, 2, 3, // a_byte
	12, 2, 1, 2, // a_int
	14, 1, 0, // a_float
	15, 2, 0, 98, 0, // a_string
	16, 2, 100, 200, 1, // a_enum
	17, 1, 1, 100, 0, // a_struct
	18, 1, 6, 240, 159, 141, 149, 0, 0, // a_message
	0,
	99,
}

func TestSkipConsumesWholeValue(t *testing.T) {
	s := testSchema()

	d := wire.NewDecoder(fullMessage)
	require.NoError(t, s.Skip(d, 2))
	require.Equal(t, len(fullMessage)-1, d.Pos())
}

func TestSkipBuiltins(t *testing.T) {
	s := testSchema()

	tests := []struct {
		name   string
		typeID int32
		data   []byte
		n      int
	}{
		{"bool", TypeBool, []byte{1}, 1},
		{"byte", TypeByte, []byte{255}, 1},
		{"int", TypeInt, []byte{128, 1}, 2},
		{"uint", TypeUint, []byte{255, 255, 255, 255, 15}, 5},
		{"zero float", TypeFloat, []byte{0}, 1},
		{"float", TypeFloat, []byte{126, 0, 0, 0}, 4},
		{"string", TypeString, []byte{240, 159, 141, 149, 0}, 5},
		{"enum", 0, []byte{200, 1}, 2},
		{"empty struct", 1, []byte{0, 0}, 2},
		{"empty message", 2, []byte{0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := wire.NewDecoder(tt.data)
			require.NoError(t, s.Skip(d, tt.typeID))
			require.Equal(t, tt.n, d.Pos())
		})
	}
}

func TestSkipErrors(t *testing.T) {
	s := testSchema()

	tests := []struct {
		name   string
		typeID int32
		data   []byte
		want   error
	}{
		{"invalid bool", TypeBool, []byte{2}, wire.ErrInvalidBoolean},
		{"truncated varint", TypeUint, []byte{128}, wire.ErrBufferExhausted},
		{"truncated float", TypeFloat, []byte{126, 0}, wire.ErrBufferExhausted},
		{"unterminated string", TypeString, []byte{97, 98}, wire.ErrBufferExhausted},
		{"undefined enum", 0, []byte{0}, wire.ErrUndefinedEnumValue},
		{"unknown tag", 2, []byte{19, 0}, wire.ErrUnrecognizedFieldTag},
		{"missing terminator", 2, []byte{1, 1}, wire.ErrBufferExhausted},
		{"byte array too long", 2, []byte{11, 5, 1, 2, 0}, wire.ErrBufferExhausted},
		{"nested undefined enum", 1, []byte{1, 50, 0}, wire.ErrUndefinedEnumValue},
		{"out of range type", 3, []byte{0}, wire.ErrTypeIDOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Skip(wire.NewDecoder(tt.data), tt.typeID)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSkipErrorCarriesPath(t *testing.T) {
	s := testSchema()

	err := s.Skip(wire.NewDecoder([]byte{1, 50, 0}), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Struct.v_enum.Enum")
}

func TestSkipWithoutEnumValidation(t *testing.T) {
	s := testSchema()
	opts := SkipOptions{ValidateEnums: false}

	d := wire.NewDecoder([]byte{50})
	require.NoError(t, s.SkipWithOptions(d, 0, opts))
	require.True(t, d.Done())

	// unknown tags are still fatal; only enum values are relaxed
	err := s.SkipWithOptions(wire.NewDecoder([]byte{19, 0}), 2, opts)
	require.ErrorIs(t, err, wire.ErrUnrecognizedFieldTag)
}

func TestSkipFollowsGlobalConfig(t *testing.T) {
	prev := wire.GetConfig()
	t.Cleanup(func() { wire.SetConfig(prev) })

	s := testSchema()
	wire.SetConfig(wire.Config{ValidateEnumsOnSkip: false})
	require.NoError(t, s.Skip(wire.NewDecoder([]byte{50}), 0))

	wire.SetConfig(wire.Config{ValidateEnumsOnSkip: true})
	require.ErrorIs(t, s.Skip(wire.NewDecoder([]byte{50}), 0), wire.ErrUndefinedEnumValue)
}

func TestSkipNestingLimit(t *testing.T) {
	// message M { M m = 1; }: every 1 opens another level
	recursive := New(NewDef("M", DefMessage, []*Field{{Name: "m", TypeID: 0, Value: 1}}))
	deep := bytes.Repeat([]byte{1}, 8<<20)

	err := recursive.Skip(wire.NewDecoder(deep), 0)
	require.ErrorIs(t, err, wire.ErrMaxDepthExceeded)

	opts := SkipOptions{ValidateEnums: true, MaxDepth: 3}
	err = recursive.SkipWithOptions(wire.NewDecoder([]byte{1, 1, 0, 0, 0}), 0, opts)
	require.NoError(t, err)
	err = recursive.SkipWithOptions(wire.NewDecoder([]byte{1, 1, 1, 0, 0, 0, 0}), 0, opts)
	require.ErrorIs(t, err, wire.ErrMaxDepthExceeded)

	// a struct that contains itself reads no bytes per level
	self := New(NewDef("A", DefStruct, []*Field{{Name: "a", TypeID: 0}}))
	require.Error(t, self.Validate())
	require.ErrorIs(t, self.Skip(wire.NewDecoder([]byte{1, 2, 3}), 0), wire.ErrMaxDepthExceeded)
}

func TestSkipStringDoesNotValidateUTF8(t *testing.T) {
	s := testSchema()

	d := wire.NewDecoder([]byte{0xff, 0xfe, 0})
	require.NoError(t, s.Skip(d, TypeString))
	require.Equal(t, 3, d.Pos())
}

func TestSkipField(t *testing.T) {
	s := testSchema()
	msg, _ := s.Def("Message")

	aInt, _ := msg.Field("a_int")
	d := wire.NewDecoder([]byte{3, 2, 4, 6, 9})
	require.NoError(t, s.SkipField(d, aInt))
	require.Equal(t, 4, d.Pos())

	aByte, _ := msg.Field("a_byte")
	d = wire.NewDecoder([]byte{2, 7, 8})
	require.NoError(t, s.SkipField(d, aByte))
	require.True(t, d.Done())
}

func FuzzSkipNeverPanics(f *testing.F) {
	f.Add(fullMessage)
	f.Add([]byte{0})
	f.Add([]byte{17, 255, 255, 255, 255, 15})

	s := testSchema()
	f.Fuzz(func(t *testing.T, data []byte) {
		d := wire.NewDecoder(data)
		if err := s.Skip(d, 2); err == nil && d.Pos() > len(data) {
			t.Fatalf("skip moved past the input: pos %d, len %d", d.Pos(), len(data))
		}
	})
}
