package protomsg

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/goliatone/go-msgform/pkg/schema"
)

// Message wraps a protoreflect.Message.
type Message struct {
	msg protoreflect.Message
}

var _ schema.Value = (*Message)(nil)

// Wrap adapts a protobuf message. It returns nil for a nil message.
func Wrap(m proto.Message) *Message {
	if m == nil {
		return nil
	}
	return WrapReflect(m.ProtoReflect())
}

// WrapReflect adapts a reflective message view.
func WrapReflect(m protoreflect.Message) *Message {
	if m == nil {
		return nil
	}
	return &Message{msg: m}
}

// Interface returns the underlying protobuf message.
func (m *Message) Interface() proto.Message {
	if m == nil || m.msg == nil {
		return nil
	}
	return m.msg.Interface()
}

// Reflect returns the reflective view backing m.
func (m *Message) Reflect() protoreflect.Message {
	if m == nil {
		return nil
	}
	return m.msg
}

// Descriptor implements schema.Value.
func (m *Message) Descriptor() schema.Descriptor {
	if m == nil || m.msg == nil {
		return nil
	}
	md := m.msg.Descriptor()
	if md == nil {
		return nil
	}
	return descriptor{md: md}
}

// Get implements schema.Value.
func (m *Message) Get(f schema.Field) (any, error) {
	fd, err := m.singular(f)
	if err != nil {
		return nil, err
	}
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		return nil, fmt.Errorf("%w: %s is a message", schema.ErrKindMismatch, f.Name)
	}
	return fromValue(fd, m.msg.Get(fd))
}

// Set implements schema.Value.
func (m *Message) Set(f schema.Field, v any) error {
	fd, err := m.singular(f)
	if err != nil {
		return err
	}
	value, err := toValue(fd, v)
	if err != nil {
		return fmt.Errorf("protomsg: set %s: %w", f.Name, err)
	}
	m.msg.Set(fd, value)
	return nil
}

// Len implements schema.Value.
func (m *Message) Len(f schema.Field) int {
	fd, err := m.list(f)
	if err != nil {
		return 0
	}
	return m.msg.Get(fd).List().Len()
}

// GetIndex implements schema.Value.
func (m *Message) GetIndex(f schema.Field, i int) (any, error) {
	fd, err := m.list(f)
	if err != nil {
		return nil, err
	}
	list := m.msg.Get(fd).List()
	if i < 0 || i >= list.Len() {
		return nil, fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, f.Name, i)
	}
	return fromValue(fd, list.Get(i))
}

// SetIndex implements schema.Value.
func (m *Message) SetIndex(f schema.Field, i int, v any) error {
	fd, err := m.list(f)
	if err != nil {
		return err
	}
	list := m.msg.Mutable(fd).List()
	if i < 0 || i >= list.Len() {
		return fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, f.Name, i)
	}
	value, err := toValue(fd, v)
	if err != nil {
		return fmt.Errorf("protomsg: set %s[%d]: %w", f.Name, i, err)
	}
	list.Set(i, value)
	return nil
}

// Append implements schema.Value.
func (m *Message) Append(f schema.Field) (int, error) {
	fd, err := m.list(f)
	if err != nil {
		return -1, err
	}
	list := m.msg.Mutable(fd).List()
	list.Append(list.NewElement())
	return list.Len() - 1, nil
}

// Nested implements schema.Value.
func (m *Message) Nested(f schema.Field) (schema.Value, error) {
	fd, err := m.message(f, false)
	if err != nil {
		return nil, err
	}
	return WrapReflect(m.msg.Get(fd).Message()), nil
}

// MutableNested implements schema.Value.
func (m *Message) MutableNested(f schema.Field) (schema.Value, error) {
	fd, err := m.message(f, false)
	if err != nil {
		return nil, err
	}
	return WrapReflect(m.msg.Mutable(fd).Message()), nil
}

// NestedIndex implements schema.Value.
func (m *Message) NestedIndex(f schema.Field, i int) (schema.Value, error) {
	fd, err := m.message(f, true)
	if err != nil {
		return nil, err
	}
	list := m.msg.Get(fd).List()
	if i < 0 || i >= list.Len() {
		return nil, fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, f.Name, i)
	}
	return WrapReflect(list.Get(i).Message()), nil
}

// MutableNestedIndex implements schema.Value.
func (m *Message) MutableNestedIndex(f schema.Field, i int) (schema.Value, error) {
	fd, err := m.message(f, true)
	if err != nil {
		return nil, err
	}
	list := m.msg.Mutable(fd).List()
	if i < 0 || i >= list.Len() {
		return nil, fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, f.Name, i)
	}
	return WrapReflect(list.Get(i).Message()), nil
}

// EnumValues implements schema.Value.
func (m *Message) EnumValues(f schema.Field) []string {
	fd, err := m.field(f)
	if err != nil || fd.Enum() == nil {
		return nil
	}
	values := fd.Enum().Values()
	out := make([]string, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		out = append(out, string(values.Get(i).Name()))
	}
	return out
}

// New implements schema.Value.
func (m *Message) New() schema.Value {
	if m == nil || m.msg == nil {
		return nil
	}
	return WrapReflect(m.msg.New())
}

// CopyFrom implements schema.Value.
func (m *Message) CopyFrom(src schema.Value) error {
	if m == nil || m.msg == nil {
		return fmt.Errorf("protomsg: copy into nil message")
	}
	other, ok := src.(*Message)
	if !ok || other == nil || other.msg == nil {
		return fmt.Errorf("%w: %T is not a protobuf message", schema.ErrTypeMismatch, src)
	}
	if m.msg.Descriptor().FullName() != other.msg.Descriptor().FullName() {
		return fmt.Errorf("%w: cannot copy %s into %s", schema.ErrTypeMismatch,
			other.msg.Descriptor().FullName(), m.msg.Descriptor().FullName())
	}
	if other == m {
		return nil
	}
	dst := m.msg.Interface()
	proto.Reset(dst)
	proto.Merge(dst, other.msg.Interface())
	return nil
}

// Clone implements schema.Value.
func (m *Message) Clone() schema.Value {
	if m == nil || m.msg == nil {
		return nil
	}
	return Wrap(proto.Clone(m.msg.Interface()))
}

func (m *Message) field(f schema.Field) (protoreflect.FieldDescriptor, error) {
	if m == nil || m.msg == nil {
		return nil, fmt.Errorf("protomsg: nil message")
	}
	fd := m.msg.Descriptor().Fields().ByName(protoreflect.Name(f.Name))
	if fd == nil {
		return nil, fmt.Errorf("%w: %s.%s", schema.ErrNoSuchField, m.msg.Descriptor().FullName(), f.Name)
	}
	return fd, nil
}

func (m *Message) singular(f schema.Field) (protoreflect.FieldDescriptor, error) {
	fd, err := m.field(f)
	if err != nil {
		return nil, err
	}
	if fd.IsList() || fd.IsMap() {
		return nil, fmt.Errorf("%w: %s is repeated", schema.ErrKindMismatch, f.Name)
	}
	return fd, nil
}

func (m *Message) list(f schema.Field) (protoreflect.FieldDescriptor, error) {
	fd, err := m.field(f)
	if err != nil {
		return nil, err
	}
	if !fd.IsList() {
		return nil, fmt.Errorf("%w: %s is not a list", schema.ErrKindMismatch, f.Name)
	}
	return fd, nil
}

func (m *Message) message(f schema.Field, repeated bool) (protoreflect.FieldDescriptor, error) {
	fd, err := m.field(f)
	if err != nil {
		return nil, err
	}
	if fd.Message() == nil || fd.IsMap() || fd.IsList() != repeated {
		return nil, fmt.Errorf("%w: %s is not a %s message field", schema.ErrKindMismatch, f.Name, cardinality(repeated))
	}
	return fd, nil
}

func cardinality(repeated bool) string {
	if repeated {
		return "repeated"
	}
	return "singular"
}

func fromValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		return v.Float(), nil
	case protoreflect.FloatKind:
		return float32(v.Float()), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int()), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int(), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint()), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint(), nil
	case protoreflect.BoolKind:
		return v.Bool(), nil
	case protoreflect.StringKind:
		return v.String(), nil
	case protoreflect.EnumKind:
		number := v.Enum()
		if ev := fd.Enum().Values().ByNumber(number); ev != nil {
			return string(ev.Name()), nil
		}
		return strconv.Itoa(int(number)), nil
	}
	return nil, fmt.Errorf("%w: unsupported protobuf kind %s", schema.ErrKindMismatch, fd.Kind())
}

func toValue(fd protoreflect.FieldDescriptor, in any) (protoreflect.Value, error) {
	kind := kindOf(fd)
	coerced, err := schema.Coerce(kind, in)
	if err != nil {
		return protoreflect.Value{}, err
	}
	switch kind {
	case schema.KindDouble:
		return protoreflect.ValueOfFloat64(coerced.(float64)), nil
	case schema.KindFloat:
		return protoreflect.ValueOfFloat32(coerced.(float32)), nil
	case schema.KindInt32:
		return protoreflect.ValueOfInt32(coerced.(int32)), nil
	case schema.KindInt64:
		return protoreflect.ValueOfInt64(coerced.(int64)), nil
	case schema.KindUint32:
		return protoreflect.ValueOfUint32(coerced.(uint32)), nil
	case schema.KindUint64:
		return protoreflect.ValueOfUint64(coerced.(uint64)), nil
	case schema.KindBool:
		return protoreflect.ValueOfBool(coerced.(bool)), nil
	case schema.KindString:
		return protoreflect.ValueOfString(coerced.(string)), nil
	case schema.KindEnum:
		name := coerced.(string)
		ev := fd.Enum().Values().ByName(protoreflect.Name(name))
		if ev == nil {
			return protoreflect.Value{}, fmt.Errorf("%w: %q in %s", schema.ErrUnknownEnum, name, fd.Enum().FullName())
		}
		return protoreflect.ValueOfEnum(ev.Number()), nil
	}
	return protoreflect.Value{}, fmt.Errorf("%w: unsupported protobuf kind %s", schema.ErrKindMismatch, fd.Kind())
}
