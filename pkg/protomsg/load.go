package protomsg

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ErrUnknownType is returned when a message name is not part of the loaded
// descriptor set.
var ErrUnknownType = errors.New("protomsg: unknown message type")

// LoadDescriptorSet parses a binary FileDescriptorSet (protoc
// --descriptor_set_out --include_imports) into a file registry.
func LoadDescriptorSet(raw []byte) (*protoregistry.Files, error) {
	if len(raw) == 0 {
		return nil, errors.New("protomsg: descriptor set is empty")
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("protomsg: decode descriptor set: %w", err)
	}
	return NewFiles(&set)
}

// NewFiles builds a file registry from a descriptor set.
func NewFiles(set *descriptorpb.FileDescriptorSet) (*protoregistry.Files, error) {
	if set == nil {
		return nil, errors.New("protomsg: descriptor set is nil")
	}
	files, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, fmt.Errorf("protomsg: build descriptors: %w", err)
	}
	return files, nil
}

// NewMessage creates an empty dynamic message of the named type.
func NewMessage(files *protoregistry.Files, name string) (*Message, error) {
	if files == nil {
		return nil, errors.New("protomsg: file registry is nil")
	}
	desc, err := files.FindDescriptorByName(protoreflect.FullName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a message", ErrUnknownType, name)
	}
	return Wrap(dynamicpb.NewMessage(md)), nil
}

// MessageNames lists every message type declared in files, nested ones
// included.
func MessageNames(files *protoregistry.Files) []string {
	if files == nil {
		return nil
	}
	var out []string
	var walk func(protoreflect.MessageDescriptors)
	walk = func(msgs protoreflect.MessageDescriptors) {
		for i := 0; i < msgs.Len(); i++ {
			md := msgs.Get(i)
			if md.IsMapEntry() {
				continue
			}
			out = append(out, string(md.FullName()))
			walk(md.Messages())
		}
	}
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		walk(fd.Messages())
		return true
	})
	return out
}

// UnmarshalJSON decodes protojson into m, replacing its content.
func UnmarshalJSON(m *Message, data []byte) error {
	if m == nil || m.msg == nil {
		return errors.New("protomsg: unmarshal into nil message")
	}
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, m.msg.Interface()); err != nil {
		return fmt.Errorf("protomsg: decode json: %w", err)
	}
	return nil
}

// MarshalJSON encodes m as indented protojson, keeping proto field names and
// zero values so every editable field is visible.
func MarshalJSON(m *Message) ([]byte, error) {
	if m == nil || m.msg == nil {
		return nil, errors.New("protomsg: marshal nil message")
	}
	opts := protojson.MarshalOptions{
		Multiline:       true,
		Indent:          "  ",
		UseProtoNames:   true,
		EmitUnpopulated: true,
	}
	data, err := opts.Marshal(m.msg.Interface())
	if err != nil {
		return nil, fmt.Errorf("protomsg: encode json: %w", err)
	}
	return data, nil
}
