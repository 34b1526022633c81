package protomsg

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/goliatone/go-msgform/pkg/schema"
)

type descriptor struct {
	md protoreflect.MessageDescriptor
}

func (d descriptor) FullName() string {
	return string(d.md.FullName())
}

func (d descriptor) Name() string {
	return string(d.md.Name())
}

func (d descriptor) FieldCount() int {
	return d.md.Fields().Len()
}

func (d descriptor) Field(i int) schema.Field {
	return toField(d.md.Fields().Get(i))
}

func (d descriptor) FieldByName(name string) (schema.Field, bool) {
	fd := d.md.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return schema.Field{}, false
	}
	return toField(fd), true
}

func toField(fd protoreflect.FieldDescriptor) schema.Field {
	field := schema.Field{
		Name:     string(fd.Name()),
		Kind:     kindOf(fd),
		Repeated: fd.IsList(),
	}
	switch {
	case fd.Message() != nil:
		field.TypeName = string(fd.Message().FullName())
	case fd.Enum() != nil:
		field.TypeName = string(fd.Enum().FullName())
	}
	return field
}

// kindOf maps protobuf kinds onto schema kinds. Maps and bytes have no editor
// and report KindInvalid.
func kindOf(fd protoreflect.FieldDescriptor) schema.Kind {
	if fd.IsMap() {
		return schema.KindInvalid
	}
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		return schema.KindDouble
	case protoreflect.FloatKind:
		return schema.KindFloat
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return schema.KindInt32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return schema.KindInt64
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return schema.KindUint32
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return schema.KindUint64
	case protoreflect.BoolKind:
		return schema.KindBool
	case protoreflect.StringKind:
		return schema.KindString
	case protoreflect.EnumKind:
		return schema.KindEnum
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return schema.KindMessage
	default:
		return schema.KindInvalid
	}
}
