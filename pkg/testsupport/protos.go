package testsupport

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/goliatone/go-msgform/pkg/protomsg"
)

// Package name of the fixture schema.
const Package = "test.msgs"

var (
	protoOnce  sync.Once
	protoFile  protoreflect.FileDescriptor
	protoFiles *protoregistry.Files
	protoErr   error
)

// FileDescriptorProto returns the fixture schema as a descriptor proto. The
// schema mirrors a small robotics message set: timestamps, headers, poses,
// colors, geometry, plugins and a message exercising every scalar kind.
// Theme.Color shares its short name with Color but not its shape.
func FileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("test/msgs.proto"),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{
			enum("Mode", "MODE_UNSPECIFIED", "MODE_AUTO", "MODE_MANUAL"),
			enum("GeometryType", "BOX", "CYLINDER", "SPHERE"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			message("Time",
				scalar("sec", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
				scalar("nsec", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			),
			message("Header",
				nested("stamp", 1, "Time"),
			),
			message("StringMsg",
				nested("header", 1, "Header"),
				scalar("data", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("Vector3d",
				scalar("x", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("y", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("z", 3, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			),
			message("Quaternion",
				scalar("x", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("y", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("z", 3, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("w", 4, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			),
			message("Pose",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				nested("position", 2, "Vector3d"),
				nested("orientation", 3, "Quaternion"),
			),
			message("Color",
				scalar("r", 1, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				scalar("g", 2, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				scalar("b", 3, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				scalar("a", 4, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
			),
			message("BoxGeom",
				nested("size", 1, "Vector3d"),
			),
			message("CylinderGeom",
				scalar("radius", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("length", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			),
			message("SphereGeom",
				scalar("radius", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			),
			message("Geometry",
				enumField("type", 1, "GeometryType"),
				nested("box", 2, "BoxGeom"),
				nested("cylinder", 3, "CylinderGeom"),
				nested("sphere", 4, "SphereGeom"),
			),
			message("Visual",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				nested("pose", 2, "Pose"),
				nested("geometry", 3, "Geometry"),
				nested("ambient", 4, "Color"),
				repeatedNested("waypoints", 5, "Vector3d"),
			),
			message("Plugin",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("filename", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("innerxml", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("Plugin_V",
				nested("header", 1, "Header"),
				repeatedNested("plugins", 2, "Plugin"),
			),
			message("Child",
				scalar("y", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("Example",
				scalar("x", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				nested("child", 2, "Child"),
			),
			message("Scalars",
				scalar("d", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				scalar("f", 2, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				scalar("i32", 3, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				scalar("i64", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64),
				scalar("u32", 5, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
				scalar("u64", 6, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
				scalar("b", 7, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
				scalar("s", 8, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				enumField("mode", 9, "Mode"),
				repeatedScalar("values", 10, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
				repeatedScalar("counts", 11, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				scalar("blob", 12, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
			),
			withNested(
				message("Theme",
					nested("accent", 1, "Theme.Color"),
					scalar("name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				),
				message("Color",
					scalar("hex", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				),
			),
		},
	}
}

// FileDescriptorSet wraps the fixture schema in a set, the format produced by
// `protoc --descriptor_set_out`.
func FileDescriptorSet() *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{FileDescriptorProto()},
	}
}

// Files returns a registry holding the fixture schema.
func Files() (*protoregistry.Files, error) {
	protoOnce.Do(func() {
		protoFile, protoErr = protodesc.NewFile(FileDescriptorProto(), new(protoregistry.Files))
		if protoErr != nil {
			protoErr = fmt.Errorf("testsupport: build fixture schema: %w", protoErr)
			return
		}
		protoFiles = new(protoregistry.Files)
		protoErr = protoFiles.RegisterFile(protoFile)
	})
	return protoFiles, protoErr
}

// Descriptor resolves a fixture message by short name ("Pose") or full name.
func Descriptor(name string) (protoreflect.MessageDescriptor, error) {
	if _, err := Files(); err != nil {
		return nil, err
	}
	md := protoFile.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		d, err := protoFiles.FindDescriptorByName(protoreflect.FullName(name))
		if err != nil {
			return nil, fmt.Errorf("testsupport: unknown message %q: %w", name, err)
		}
		var ok bool
		if md, ok = d.(protoreflect.MessageDescriptor); !ok {
			return nil, fmt.Errorf("testsupport: %q is not a message", name)
		}
	}
	return md, nil
}

// NewMessage returns an empty dynamic fixture message.
func NewMessage(name string) (*protomsg.Message, error) {
	md, err := Descriptor(name)
	if err != nil {
		return nil, err
	}
	return protomsg.Wrap(dynamicpb.NewMessage(md)), nil
}

// MustMessage is NewMessage for test setup; it panics on unknown names.
func MustMessage(name string) *protomsg.Message {
	msg, err := NewMessage(name)
	if err != nil {
		panic(err)
	}
	return msg
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func withNested(msg *descriptorpb.DescriptorProto, nestedTypes ...*descriptorpb.DescriptorProto) *descriptorpb.DescriptorProto {
	msg.NestedType = append(msg.NestedType, nestedTypes...)
	return msg
}

func enum(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	out := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, value := range values {
		out.Value = append(out.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(value),
			Number: proto.Int32(int32(i)),
		})
	}
	return out
}

func scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
}

func repeatedScalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	field := scalar(name, number, typ)
	field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return field
}

func nested(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	field := scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	field.TypeName = proto.String("." + Package + "." + typeName)
	return field
}

func repeatedNested(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	field := nested(name, number, typeName)
	field.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return field
}

func enumField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	field := scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_ENUM)
	field.TypeName = proto.String("." + Package + "." + typeName)
	return field
}
