package kiwilite

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/anirudhraja/kiwilite/dynamic"
	"github.com/anirudhraja/kiwilite/schema"
	"github.com/anirudhraja/kiwilite/wire"
)

// shapesSchema is
//
//	package demo;
//	enum Color { RED = 1; GREEN = 2; }
//	struct Point { float x; float y; }
//	message Shape { Color color = 1; Point[] points = 2; string label = 3; }
func shapesSchema() *schema.Schema {
	s := schema.New(
		schema.NewDef("Color", schema.DefEnum, []*schema.Field{
			{Name: "RED", Value: 1},
			{Name: "GREEN", Value: 2},
		}),
		schema.NewDef("Point", schema.DefStruct, []*schema.Field{
			{Name: "x", TypeID: schema.TypeFloat},
			{Name: "y", TypeID: schema.TypeFloat},
		}),
		schema.NewDef("Shape", schema.DefMessage, []*schema.Field{
			{Name: "color", TypeID: 0, Value: 1},
			{Name: "points", TypeID: 1, IsArray: true, Value: 2},
			{Name: "label", TypeID: schema.TypeString, Value: 3},
		}),
	)
	s.Package = "demo"
	return s
}

// shapeBytes encodes Shape {color: GREEN, points: [{x: 0.5, y: 0}], label: "a"}
var shapeBytes = []byte{1, 2, 2, 1, 126, 0, 0, 0, 0, 3, 97, 0, 0}

func shapeValue() *dynamic.Object {
	point := dynamic.NewObject("Point")
	point.Set("x", dynamic.Float(0.5))
	point.Set("y", dynamic.Float(0))

	shape := dynamic.NewObject("Shape")
	shape.Set("color", dynamic.Enum{Def: "Color", Name: "GREEN"})
	shape.Set("points", dynamic.Array{point})
	shape.Set("label", dynamic.String("a"))
	return shape
}

func newTestKiwi(t *testing.T) *Kiwi {
	t.Helper()
	k := New()
	if err := k.Register("shapes", shapesSchema()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return k
}

func TestKiwi_Parse(t *testing.T) {
	k := newTestKiwi(t)

	t.Run("message", func(t *testing.T) {
		result, err := k.Parse(shapeBytes, "Shape")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(result, dynamic.Value(shapeValue())) {
			t.Errorf("Parse() = %v, want %v", result, shapeValue())
		}
	})

	t.Run("qualified_name", func(t *testing.T) {
		result, err := k.Parse([]byte{1}, "demo.Color")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if result != (dynamic.Enum{Def: "Color", Name: "RED"}) {
			t.Errorf("Parse() = %v", result)
		}
	})

	t.Run("empty_message", func(t *testing.T) {
		result, err := k.Parse([]byte{0}, "Shape")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if obj := result.(*dynamic.Object); obj.Len() != 0 {
			t.Errorf("Expected no fields, got %v", obj)
		}
	})

	t.Run("trailing_bytes", func(t *testing.T) {
		_, err := k.Parse(append(append([]byte{}, shapeBytes...), 0), "Shape")
		if err == nil || !strings.Contains(err.Error(), "trailing bytes") {
			t.Errorf("Expected trailing bytes error, got: %v", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := k.Parse(shapeBytes[:5], "Shape")
		if !errors.Is(err, wire.ErrBufferExhausted) {
			t.Errorf("Expected ErrBufferExhausted, got: %v", err)
		}
	})

	t.Run("unknown_type", func(t *testing.T) {
		if _, err := k.Parse(shapeBytes, "Circle"); err == nil {
			t.Error("Expected error for unknown type")
		}
	})
}

func TestKiwi_Marshal(t *testing.T) {
	k := newTestKiwi(t)

	t.Run("message", func(t *testing.T) {
		data, err := k.Marshal(shapeValue(), "Shape")
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(data, shapeBytes) {
			t.Errorf("Marshal() = %v, want %v", data, shapeBytes)
		}
	})

	t.Run("enum", func(t *testing.T) {
		data, err := k.Marshal(dynamic.Enum{Def: "Color", Name: "GREEN"}, "Color")
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !bytes.Equal(data, []byte{2}) {
			t.Errorf("Marshal() = %v", data)
		}
	})

	t.Run("wrong_definition", func(t *testing.T) {
		_, err := k.Marshal(shapeValue(), "Point")
		if !errors.Is(err, wire.ErrTypeMismatch) {
			t.Errorf("Expected ErrTypeMismatch, got: %v", err)
		}
	})

	t.Run("scalar", func(t *testing.T) {
		_, err := k.Marshal(dynamic.Int(1), "Shape")
		if !errors.Is(err, wire.ErrTypeMismatch) {
			t.Errorf("Expected ErrTypeMismatch, got: %v", err)
		}
	})

	t.Run("missing_struct_field", func(t *testing.T) {
		point := dynamic.NewObject("Point")
		point.Set("x", dynamic.Float(1))
		_, err := k.Marshal(point, "Point")
		if !errors.Is(err, wire.ErrMissingField) {
			t.Errorf("Expected ErrMissingField, got: %v", err)
		}
	})
}

func TestKiwi_Skip(t *testing.T) {
	k := newTestKiwi(t)

	data := append(append([]byte{}, shapeBytes...), 9, 9, 9)
	n, err := k.Skip(data, "Shape")
	if err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if n != len(shapeBytes) {
		t.Errorf("Skip() = %d, want %d", n, len(shapeBytes))
	}

	if _, err := k.Skip([]byte{1, 9, 0}, "Shape"); !errors.Is(err, wire.ErrUndefinedEnumValue) {
		t.Errorf("Expected ErrUndefinedEnumValue, got: %v", err)
	}
}

func TestKiwi_JSON(t *testing.T) {
	k := newTestKiwi(t)

	jsonData, err := k.ToJSON(shapeBytes, "Shape")
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	want := `{"color":"GREEN","label":"a","points":[{"x":0.5,"y":0}]}`
	if string(jsonData) != want {
		t.Errorf("ToJSON() = %s, want %s", jsonData, want)
	}

	data, err := k.FromJSON(jsonData, "Shape")
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !bytes.Equal(data, shapeBytes) {
		t.Errorf("FromJSON() = %v, want %v", data, shapeBytes)
	}

	if _, err := k.FromJSON([]byte(`{"colour":"RED"}`), "Shape"); !errors.Is(err, wire.ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got: %v", err)
	}
}

func TestKiwi_LoadSchema(t *testing.T) {
	dir := t.TempDir()
	descriptor := `
package: demo
definitions:
  - name: Color
    kind: enum
    fields:
      - {name: RED, value: 1}
      - {name: GREEN, value: 2}
  - name: Point
    kind: struct
    fields:
      - {name: x, type: float}
      - {name: y, type: float}
  - name: Shape
    kind: message
    fields:
      - {name: color, type: Color, value: 1}
      - {name: points, type: "Point[]", value: 2}
      - {name: label, type: string, value: 3}
`
	if err := os.WriteFile(filepath.Join(dir, "shapes.yaml"), []byte(descriptor), 0o644); err != nil {
		t.Fatal(err)
	}

	k := New()
	if err := k.LoadSchema(dir); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	if got := k.ListSchemas(); !reflect.DeepEqual(got, []string{"shapes"}) {
		t.Errorf("ListSchemas() = %v", got)
	}
	if got := k.ListTypes(); !reflect.DeepEqual(got, []string{"demo.Color", "demo.Point", "demo.Shape"}) {
		t.Errorf("ListTypes() = %v", got)
	}

	s, err := k.GetRegistry().GetSchema("shapes")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equal(shapesSchema()) {
		t.Errorf("loaded schema differs:\n%s", s.Text())
	}

	result, err := k.Parse(shapeBytes, "Shape")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(result, dynamic.Value(shapeValue())) {
		t.Errorf("Parse() = %v", result)
	}
}
