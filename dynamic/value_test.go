package dynamic

import (
	"reflect"
	"testing"
)

func TestValueBasic(t *testing.T) {
	obj := NewObject("Obj")
	obj.Set("key1", String("value1"))
	obj.Set("key2", String("value2"))

	value := Array{
		Bool(true),
		Byte(255),
		Int(-1),
		UInt(1),
		Float(0.5),
		String("abc"),
		Enum{Def: "Foo", Name: "FOO"},
		obj,
	}

	if value.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", value.Len())
	}

	if !AsBool(value.At(0)) {
		t.Errorf("AsBool = false, want true")
	}
	if got := AsByte(value.At(1)); got != 255 {
		t.Errorf("AsByte = %d, want 255", got)
	}
	if got := AsInt(value.At(2)); got != -1 {
		t.Errorf("AsInt = %d, want -1", got)
	}
	if got := AsUInt(value.At(3)); got != 1 {
		t.Errorf("AsUInt = %d, want 1", got)
	}
	if got := AsFloat(value.At(4)); got != 0.5 {
		t.Errorf("AsFloat = %v, want 0.5", got)
	}
	if got := AsString(value.At(5)); got != "abc" {
		t.Errorf("AsString = %q, want abc", got)
	}
	if got := value.At(8); got != nil {
		t.Errorf("At(8) = %v, want nil", got)
	}

	// accessors of the wrong kind return zero values
	if AsInt(value.At(5)) != 0 || AsString(value.At(2)) != "" || AsBool(nil) {
		t.Errorf("mismatched accessors should return zero values")
	}

	want := `[true, 255, -1, 1, 0.5, "abc", Foo::FOO, Obj {key1: "value1", key2: "value2"}]`
	if got := value.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestValueKinds(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
		name  string
	}{
		{Bool(false), KindBool, "bool"},
		{Byte(0), KindByte, "byte"},
		{Int(0), KindInt, "int"},
		{UInt(0), KindUInt, "uint"},
		{Float(0), KindFloat, "float"},
		{String(""), KindString, "string"},
		{Array{}, KindArray, "array"},
		{Enum{}, KindEnum, "enum"},
		{NewObject("X"), KindObject, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestArrayPush(t *testing.T) {
	var value Array
	if value.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", value.Len())
	}

	value.Push(Int(123))
	value.Push(Int(456))

	if !reflect.DeepEqual(value, Array{Int(123), Int(456)}) {
		t.Errorf("got %v", value)
	}
}

func TestObjectSetAndRemove(t *testing.T) {
	obj := &Object{Def: "Foo"}
	if obj.Get("x") != nil {
		t.Fatalf("Get on an empty object should return nil")
	}

	obj.Set("x", Int(123))
	obj.Set("y", Int(456))
	obj.Set("x", Int(789))

	if got := obj.Get("x"); got != Int(789) {
		t.Errorf("x = %v, want 789", got)
	}
	if got := obj.Get("y"); got != Int(456) {
		t.Errorf("y = %v, want 456", got)
	}
	if !reflect.DeepEqual(obj.Names(), []string{"x", "y"}) {
		t.Errorf("Names() = %v", obj.Names())
	}

	obj.Remove("x")
	if _, ok := obj.Lookup("x"); ok {
		t.Errorf("x should be removed")
	}
	obj.Remove("y")
	if obj.Len() != 0 {
		t.Errorf("Len() = %d, want 0", obj.Len())
	}
}

func TestBytesHelpers(t *testing.T) {
	v := BytesValue([]byte{1, 2, 255})
	if !reflect.DeepEqual(v, Array{Byte(1), Byte(2), Byte(255)}) {
		t.Fatalf("BytesValue = %v", v)
	}
	if got := AsBytes(v); !reflect.DeepEqual(got, []byte{1, 2, 255}) {
		t.Errorf("AsBytes = %v", got)
	}
	if got := AsBytes(Array{Int(1)}); got != nil {
		t.Errorf("AsBytes of ints = %v, want nil", got)
	}
}
