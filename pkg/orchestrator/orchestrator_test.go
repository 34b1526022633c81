package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"

	"github.com/goliatone/go-msgform/pkg/orchestrator"
	"github.com/goliatone/go-msgform/pkg/protomsg"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/testsupport"
)

const robotDoc = "../openapi/testdata/robot.yaml"

func descriptorSetFile(t *testing.T) string {
	t.Helper()
	raw, err := proto.Marshal(testsupport.FileDescriptorSet())
	if err != nil {
		t.Fatalf("marshal descriptor set: %v", err)
	}
	path := filepath.Join(t.TempDir(), "msgs.protoset")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write descriptor set: %v", err)
	}
	return path
}

func TestOpenProtobufAppliesView(t *testing.T) {
	orch := orchestrator.New()

	binding, err := orch.Open(context.Background(), orchestrator.Request{
		Schema:    schema.SourceFromFile(descriptorSetFile(t)),
		Type:      testsupport.Package + ".Plugin_V",
		ValueData: []byte(`{"plugins":[{"name":"a","filename":"a.so"},{"name":"b"}]}`),
		View: orchestrator.View{
			Topic:     "/plugins",
			ExpandAll: true,
			Hidden:    []string{"header"},
			Locked:    []string{"plugins::name"},
		},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if binding.Format != orchestrator.FormatProtobuf {
		t.Fatalf("expected protobuf adapter, got %s", binding.Format)
	}

	m := binding.Widget
	if got := m.Topic(); got != "/plugins" {
		t.Fatalf("topic: got %q", got)
	}
	if !m.PropertyReadOnly("plugins::1::name") || m.PropertyReadOnly("plugins::1::filename") {
		t.Fatalf("locked family should only cover plugins::name")
	}
	if m.PropertyVisible("header") {
		t.Fatalf("header should be hidden")
	}
	if got, _ := m.PropertyValue("plugins::0::filename"); got != "a.so" {
		t.Fatalf("plugins::0::filename: got %v", got)
	}

	if !m.SetPropertyValue("plugins::1::filename", "b.so") {
		t.Fatalf("set plugins::1::filename failed")
	}
	out, err := binding.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	decoded, err := binding.Decode(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := testsupport.Get(t, decoded, "plugins::1::filename"); got != "b.so" {
		t.Fatalf("round trip lost the edit: %s", out)
	}
}

func TestOpenOpenAPIFromFiles(t *testing.T) {
	dir := t.TempDir()
	valuePath := filepath.Join(dir, "robot.yaml")
	if err := os.WriteFile(valuePath, []byte("name: arm\nid: 3\n"), 0o644); err != nil {
		t.Fatalf("write value: %v", err)
	}

	binding, err := orchestrator.New().Open(context.Background(), orchestrator.Request{
		Schema: schema.SourceFromFile(robotDoc),
		Type:   "Robot",
		Value:  schema.SourceFromFile(valuePath),
		View:   orchestrator.View{ReadOnly: true},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if binding.Format != orchestrator.FormatOpenAPI {
		t.Fatalf("expected openapi adapter, got %s", binding.Format)
	}
	if !binding.Widget.ReadOnly() {
		t.Fatalf("view read-only should cover the tree")
	}

	out, err := binding.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	if got["name"] != "arm" || got["id"] != 3.0 {
		t.Fatalf("unexpected value %s", out)
	}
}

func TestOpenPlainComposites(t *testing.T) {
	raw, err := proto.Marshal(testsupport.FileDescriptorSet())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := schema.MustNewDocument(schema.SourceFromFS("msgs.bin"), raw)

	binding, err := orchestrator.New().Open(context.Background(), orchestrator.Request{
		SchemaDocument: &doc,
		Type:           testsupport.Package + ".Visual",
		View:           orchestrator.View{PlainComposites: true, ExpandAll: true},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := binding.Widget.PropertyValue("pose::position::x"); !ok {
		t.Fatalf("plain composites should expose pose fields: %v", binding.Widget.Paths())
	}
}

func TestOpenErrors(t *testing.T) {
	raw, err := proto.Marshal(testsupport.FileDescriptorSet())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := schema.MustNewDocument(schema.SourceFromFS("msgs.bin"), raw)
	text := schema.MustNewDocument(schema.SourceFromFS("notes.txt"), []byte("just text"))

	tests := []struct {
		name string
		req  orchestrator.Request
		want string
	}{
		{name: "missing type", req: orchestrator.Request{SchemaDocument: &doc}, want: "type is required"},
		{name: "missing schema", req: orchestrator.Request{Type: "x"}, want: "schema source or document is required"},
		{name: "unknown type", req: orchestrator.Request{SchemaDocument: &doc, Type: "test.msgs.Nope"}, want: "available:"},
		{name: "undetectable", req: orchestrator.Request{SchemaDocument: &text, Type: "x"}, want: "unable to detect"},
		{name: "unknown format", req: orchestrator.Request{SchemaDocument: &doc, Type: "x", Format: "avro"}, want: `adapter "avro" not found`},
		{
			name: "bad value",
			req:  orchestrator.Request{SchemaDocument: &doc, Type: testsupport.Package + ".Example", ValueData: []byte(`{"x":"nope"}`)},
			want: "decode value",
		},
	}

	orch := orchestrator.New()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := orch.Open(context.Background(), tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	_, err = orch.Open(context.Background(), orchestrator.Request{SchemaDocument: &doc, Type: "test.msgs.Nope"})
	if !errors.Is(err, protomsg.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestAdapterDetection(t *testing.T) {
	raw, err := proto.Marshal(testsupport.FileDescriptorSet())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	yamlDoc, err := os.ReadFile(robotDoc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	reg := orchestrator.New().Adapters()
	names := func(adapters []orchestrator.Adapter) []string {
		var out []string
		for _, a := range adapters {
			out = append(out, a.Name())
		}
		return out
	}

	if diff := cmp.Diff([]string{"openapi", "protobuf"}, reg.List()); diff != "" {
		t.Fatalf("adapters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"protobuf"}, names(reg.Detect(schema.SourceFromFS("set.bin"), raw))); diff != "" {
		t.Fatalf("descriptor set detection (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"openapi"}, names(reg.Detect(schema.SourceFromFile(robotDoc), yamlDoc))); diff != "" {
		t.Fatalf("openapi detection (-want +got):\n%s", diff)
	}
	if got := reg.Detect(schema.SourceFromFS("x.txt"), []byte("hello")); len(got) != 0 {
		t.Fatalf("plain text should not match, got %v", names(got))
	}
	if err := reg.Register(orchestrator.ProtobufAdapter{}); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
}
