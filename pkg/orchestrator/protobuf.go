package orchestrator

import (
	"context"
	"fmt"
	"path"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/goliatone/go-msgform/pkg/protomsg"
	"github.com/goliatone/go-msgform/pkg/schema"
)

// FormatProtobuf names the adapter reading binary FileDescriptorSets.
const FormatProtobuf = "protobuf"

var descriptorSetExtensions = map[string]bool{
	".pb":       true,
	".binpb":    true,
	".desc":     true,
	".protoset": true,
}

// ProtobufAdapter binds dynamic protobuf messages described by a
// FileDescriptorSet. Values travel as protojson.
type ProtobufAdapter struct{}

// Name implements Adapter.
func (ProtobufAdapter) Name() string { return FormatProtobuf }

// Detect matches descriptor set extensions, or any payload that decodes as a
// non-empty FileDescriptorSet.
func (ProtobufAdapter) Detect(src schema.Source, raw []byte) bool {
	if src != nil && descriptorSetExtensions[strings.ToLower(path.Ext(src.Location()))] {
		return true
	}
	if len(raw) == 0 {
		return false
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &set); err != nil {
		return false
	}
	for _, file := range set.GetFile() {
		if file.GetName() == "" {
			return false
		}
	}
	return len(set.GetFile()) > 0
}

// Bind implements Adapter.
func (ProtobufAdapter) Bind(ctx context.Context, doc schema.Document, typeName string) (Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := protomsg.LoadDescriptorSet(doc.Raw())
	if err != nil {
		return nil, err
	}
	if _, err := protomsg.NewMessage(files, typeName); err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(protomsg.MessageNames(files), ", "))
	}
	return &protoCodec{files: files, name: typeName}, nil
}

type protoCodec struct {
	files *protoregistry.Files
	name  string
}

func (c *protoCodec) TypeName() string { return c.name }

func (c *protoCodec) New() schema.Value {
	msg, err := protomsg.NewMessage(c.files, c.name)
	if err != nil {
		return nil
	}
	return msg
}

func (c *protoCodec) Decode(data []byte) (schema.Value, error) {
	msg, err := protomsg.NewMessage(c.files, c.name)
	if err != nil {
		return nil, err
	}
	if err := protomsg.UnmarshalJSON(msg, data); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *protoCodec) Encode(v schema.Value) ([]byte, error) {
	msg, ok := v.(*protomsg.Message)
	if !ok {
		return nil, fmt.Errorf("orchestrator: expected a protobuf message, got %T", v)
	}
	return protomsg.MarshalJSON(msg)
}
