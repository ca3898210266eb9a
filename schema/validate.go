package schema

import (
	"errors"
	"fmt"

	"github.com/anirudhraja/kiwilite/wire"
)

// Validate checks the schema for problems that decoding only finds lazily or
// not at all: type ids outside the schema, repeated names, repeated enum
// values or message tags, message tag 0, which would read as the end of the
// message, and structs that contain themselves. All problems are reported
// together.
func (s *Schema) Validate() error {
	var errs []error

	defNames := make(map[string]bool, len(s.Defs))
	for _, def := range s.Defs {
		if defNames[def.Name] {
			errs = append(errs, fmt.Errorf("duplicate definition name %q", def.Name))
		}
		defNames[def.Name] = true

		if def.Kind > DefMessage {
			errs = append(errs, wire.WrapField(fmt.Errorf("%w: %d", wire.ErrInvalidDefKind, def.Kind), def.Name))
			continue
		}

		fieldNames := make(map[string]bool, len(def.Fields))
		values := make(map[uint32]string, len(def.Fields))
		for _, f := range def.Fields {
			if fieldNames[f.Name] {
				errs = append(errs, wire.WrapField(wire.WrapField(errors.New("duplicate field name"), f.Name), def.Name))
			}
			fieldNames[f.Name] = true

			if def.Kind != DefEnum && !IsBuiltin(f.TypeID) {
				if _, err := s.DefAt(f.TypeID); err != nil {
					errs = append(errs, wire.WrapField(wire.WrapField(err, f.Name), def.Name))
				}
			}

			if def.Kind == DefStruct {
				continue
			}
			if def.Kind == DefMessage && f.Value == 0 {
				errs = append(errs, wire.WrapField(wire.WrapField(errors.New("message field tag 0 is reserved"), f.Name), def.Name))
			}
			if other, ok := values[f.Value]; ok {
				errs = append(errs, wire.WrapField(wire.WrapField(fmt.Errorf("value %d already used by %q", f.Value, other), f.Name), def.Name))
			}
			values[f.Value] = f.Name
		}
	}

	errs = append(errs, s.structCycles()...)

	return errors.Join(errs...)
}

// structCycles finds structs that reach themselves through non-array struct
// fields. Every struct field is always present, so such a struct has no
// finite encoding. Arrays and messages can end the recursion and are not
// followed.
func (s *Schema) structCycles() []error {
	const (
		unvisited = iota
		visiting
		visited
	)

	var errs []error
	state := make([]int, len(s.Defs))

	var visit func(i int)
	visit = func(i int) {
		switch state[i] {
		case visiting:
			errs = append(errs, fmt.Errorf("recursive nesting of %q is not allowed", s.Defs[i].Name))
			return
		case visited:
			return
		}

		state[i] = visiting
		for _, f := range s.Defs[i].Fields {
			if f.IsArray || f.TypeID < 0 || int(f.TypeID) >= len(s.Defs) {
				continue
			}
			if s.Defs[f.TypeID].Kind == DefStruct {
				visit(int(f.TypeID))
			}
		}
		state[i] = visited
	}

	for i, def := range s.Defs {
		if def.Kind == DefStruct && state[i] == unvisited {
			visit(i)
		}
	}
	return errs
}
