package registry

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/anirudhraja/kiwilite/schema"
)

var kindScalars = map[protoreflect.Kind]string{
	protoreflect.BoolKind:     "bool",
	protoreflect.Int32Kind:    "int32",
	protoreflect.Sint32Kind:   "sint32",
	protoreflect.Sfixed32Kind: "sfixed32",
	protoreflect.Uint32Kind:   "uint32",
	protoreflect.Fixed32Kind:  "fixed32",
	protoreflect.FloatKind:    "float",
	protoreflect.StringKind:   "string",
	protoreflect.BytesKind:    "bytes",
	protoreflect.Int64Kind:    "int64",
	protoreflect.Sint64Kind:   "sint64",
	protoreflect.Sfixed64Kind: "sfixed64",
	protoreflect.Uint64Kind:   "uint64",
	protoreflect.Fixed64Kind:  "fixed64",
	protoreflect.DoubleKind:   "double",
}

// FromFileDescriptor converts a compiled proto file into a Schema using the
// same mapping as ParseProto. Fields may only reference messages and enums
// declared in the same file.
func FromFileDescriptor(fd protoreflect.FileDescriptor) (*schema.Schema, error) {
	var defs []*protoDef
	if err := collectEnumDescriptors(fd.Enums(), &defs); err != nil {
		return nil, err
	}
	if err := collectMessageDescriptors(fd.Messages(), &defs); err != nil {
		return nil, err
	}
	return buildSchema(string(fd.Package()), defs)
}

func collectMessageDescriptors(msgs protoreflect.MessageDescriptors, out *[]*protoDef) error {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if md.IsMapEntry() {
			continue
		}

		pd := &protoDef{fullName: string(md.FullName()), kind: schema.DefMessage}
		*out = append(*out, pd)

		fields := md.Fields()
		for j := 0; j < fields.Len(); j++ {
			fdesc := fields.Get(j)
			pf, err := fieldFromDescriptor(fdesc)
			if err != nil {
				return fmt.Errorf("%s: %w", fdesc.FullName(), err)
			}
			pd.fields = append(pd.fields, pf)
		}

		if err := collectEnumDescriptors(md.Enums(), out); err != nil {
			return err
		}
		if err := collectMessageDescriptors(md.Messages(), out); err != nil {
			return err
		}
	}
	return nil
}

func fieldFromDescriptor(fdesc protoreflect.FieldDescriptor) (protoField, error) {
	pf := protoField{
		name:     string(fdesc.Name()),
		repeated: fdesc.Cardinality() == protoreflect.Repeated,
		value:    uint32(fdesc.Number()),
	}

	switch {
	case fdesc.IsMap():
		return pf, fmt.Errorf("map fields are not supported")
	case fdesc.ContainingOneof() != nil && !fdesc.ContainingOneof().IsSynthetic():
		return pf, fmt.Errorf("oneof is not supported")
	}

	switch fdesc.Kind() {
	case protoreflect.MessageKind:
		pf.typeName = string(fdesc.Message().FullName())
	case protoreflect.EnumKind:
		pf.typeName = string(fdesc.Enum().FullName())
	default:
		name, ok := kindScalars[fdesc.Kind()]
		if !ok {
			return pf, fmt.Errorf("unsupported field kind %s", fdesc.Kind())
		}
		pf.typeName = name
	}
	return pf, nil
}

func collectEnumDescriptors(enums protoreflect.EnumDescriptors, out *[]*protoDef) error {
	for i := 0; i < enums.Len(); i++ {
		ed := enums.Get(i)
		pd := &protoDef{fullName: string(ed.FullName()), kind: schema.DefEnum}
		*out = append(*out, pd)

		values := ed.Values()
		for j := 0; j < values.Len(); j++ {
			v := values.Get(j)
			if v.Number() < 0 {
				return fmt.Errorf("%s: negative enum value %d", v.FullName(), v.Number())
			}
			pd.fields = append(pd.fields, protoField{name: string(v.Name()), value: uint32(v.Number())})
		}
	}
	return nil
}
