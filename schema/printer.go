package schema

import (
	"strconv"
	"strings"
)

// Text renders the schema in the Kiwi IDL form, e.g.
//
//	package demo;
//
//	enum Color {
//	  RED = 1;
//	}
//
//	message Shape {
//	  Color color = 1;
//	  float[] points = 2;
//	}
func (s *Schema) Text() string {
	var b strings.Builder

	if s.Package != "" {
		b.WriteString("package ")
		b.WriteString(s.Package)
		b.WriteString(";\n")
	}

	for i, def := range s.Defs {
		if i > 0 || s.Package != "" {
			b.WriteByte('\n')
		}
		b.WriteString(def.Kind.String())
		b.WriteByte(' ')
		b.WriteString(def.Name)
		b.WriteString(" {\n")

		for _, f := range def.Fields {
			b.WriteString("  ")
			if def.Kind != DefEnum {
				b.WriteString(s.TypeName(f.TypeID))
				if f.IsArray {
					b.WriteString("[]")
				}
				b.WriteByte(' ')
			}
			b.WriteString(f.Name)
			if def.Kind != DefStruct {
				b.WriteString(" = ")
				b.WriteString(strconv.FormatUint(uint64(f.Value), 10))
			}
			b.WriteString(";\n")
		}

		b.WriteString("}\n")
	}

	return b.String()
}
