package protomsg_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"

	"github.com/goliatone/go-msgform/pkg/protomsg"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/testsupport"
)

func field(t *testing.T, v schema.Value, name string) schema.Field {
	t.Helper()
	f, ok := v.Descriptor().FieldByName(name)
	if !ok {
		t.Fatalf("field %s missing from %s", name, v.Descriptor().FullName())
	}
	return f
}

func TestDescriptorReportsFieldsInDeclarationOrder(t *testing.T) {
	msg := testsupport.MustMessage("Scalars")
	desc := msg.Descriptor()
	if desc.FullName() != "test.msgs.Scalars" || desc.Name() != "Scalars" {
		t.Fatalf("unexpected names %q / %q", desc.FullName(), desc.Name())
	}

	want := []schema.Field{
		{Name: "d", Kind: schema.KindDouble},
		{Name: "f", Kind: schema.KindFloat},
		{Name: "i32", Kind: schema.KindInt32},
		{Name: "i64", Kind: schema.KindInt64},
		{Name: "u32", Kind: schema.KindUint32},
		{Name: "u64", Kind: schema.KindUint64},
		{Name: "b", Kind: schema.KindBool},
		{Name: "s", Kind: schema.KindString},
		{Name: "mode", Kind: schema.KindEnum, TypeName: "test.msgs.Mode"},
		{Name: "values", Kind: schema.KindDouble, Repeated: true},
		{Name: "counts", Kind: schema.KindInt32, Repeated: true},
		{Name: "blob", Kind: schema.KindInvalid},
	}
	if diff := cmp.Diff(want, schema.Fields(desc)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	nested := testsupport.MustMessage("Plugin_V")
	plugins := field(t, nested, "plugins")
	if !plugins.Repeated || plugins.Kind != schema.KindMessage || plugins.TypeName != "test.msgs.Plugin" {
		t.Fatalf("unexpected plugins field %+v", plugins)
	}
}

func TestScalarSetGetRoundTrip(t *testing.T) {
	cases := []struct {
		field string
		in    any
		want  any
	}{
		{field: "d", in: 1.25, want: 1.25},
		{field: "f", in: 2.5, want: float32(2.5)},
		{field: "i32", in: -7, want: int32(-7)},
		{field: "i64", in: int64(1 << 40), want: int64(1 << 40)},
		{field: "u32", in: uint32(9), want: uint32(9)},
		{field: "u64", in: "18", want: uint64(18)},
		{field: "b", in: true, want: true},
		{field: "s", in: "hello", want: "hello"},
		{field: "mode", in: "MODE_MANUAL", want: "MODE_MANUAL"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.field, func(t *testing.T) {
			msg := testsupport.MustMessage("Scalars")
			f := field(t, msg, tc.field)
			if err := msg.Set(f, tc.in); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := msg.Get(f)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetRejectsIncompatibleValues(t *testing.T) {
	msg := testsupport.MustMessage("Scalars")

	if err := msg.Set(field(t, msg, "mode"), "MODE_BOGUS"); !errors.Is(err, schema.ErrUnknownEnum) {
		t.Fatalf("expected ErrUnknownEnum, got %v", err)
	}
	if err := msg.Set(field(t, msg, "b"), 3.5); !errors.Is(err, schema.ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
	if err := msg.Set(schema.Field{Name: "missing"}, 1); !errors.Is(err, schema.ErrNoSuchField) {
		t.Fatalf("expected ErrNoSuchField, got %v", err)
	}
	if _, err := msg.Get(field(t, msg, "values")); !errors.Is(err, schema.ErrKindMismatch) {
		t.Fatalf("expected repeated Get to fail, got %v", err)
	}
}

func TestRepeatedScalars(t *testing.T) {
	msg := testsupport.MustMessage("Scalars")
	values := field(t, msg, "values")

	for i := 0; i < 3; i++ {
		idx, err := msg.Append(values)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if idx != i {
			t.Fatalf("append index: want %d, got %d", i, idx)
		}
		if err := msg.SetIndex(values, idx, float64(i)+0.5); err != nil {
			t.Fatalf("set index: %v", err)
		}
	}
	if got := msg.Len(values); got != 3 {
		t.Fatalf("len: want 3, got %d", got)
	}
	got, err := msg.GetIndex(values, 2)
	if err != nil || got != 2.5 {
		t.Fatalf("get index: got %v (%v)", got, err)
	}
	if _, err := msg.GetIndex(values, 3); !errors.Is(err, schema.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if err := msg.SetIndex(values, -1, 1.0); !errors.Is(err, schema.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestNestedMessages(t *testing.T) {
	msg := testsupport.MustMessage("Plugin_V")
	header := field(t, msg, "header")
	plugins := field(t, msg, "plugins")

	view, err := msg.Nested(header)
	if err != nil {
		t.Fatalf("nested: %v", err)
	}
	if view.Descriptor().FullName() != "test.msgs.Header" {
		t.Fatalf("unexpected nested type %s", view.Descriptor().FullName())
	}

	if err := testsupport.Set(msg, "header::stamp::sec", 42); err != nil {
		t.Fatalf("set nested: %v", err)
	}
	if got := testsupport.Get(t, msg, "header::stamp::sec"); got != int64(42) {
		t.Fatalf("nested value: got %v", got)
	}

	if _, err := msg.Append(plugins); err != nil {
		t.Fatalf("append plugin: %v", err)
	}
	elem, err := msg.MutableNestedIndex(plugins, 0)
	if err != nil {
		t.Fatalf("mutable element: %v", err)
	}
	if err := elem.Set(field(t, elem, "name"), "physics"); err != nil {
		t.Fatalf("set element: %v", err)
	}
	if got := testsupport.Get(t, msg, "plugins::0::name"); got != "physics" {
		t.Fatalf("element value: got %v", got)
	}
	if _, err := msg.NestedIndex(plugins, 1); !errors.Is(err, schema.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := msg.Nested(plugins); !errors.Is(err, schema.ErrKindMismatch) {
		t.Fatalf("expected singular access on a list to fail, got %v", err)
	}
}

func TestEnumValues(t *testing.T) {
	msg := testsupport.MustMessage("Scalars")
	want := []string{"MODE_UNSPECIFIED", "MODE_AUTO", "MODE_MANUAL"}
	if diff := cmp.Diff(want, msg.EnumValues(field(t, msg, "mode"))); diff != "" {
		t.Fatalf("enum values mismatch (-want +got):\n%s", diff)
	}
	if got := msg.EnumValues(field(t, msg, "s")); got != nil {
		t.Fatalf("non-enum field should have no values, got %v", got)
	}
}

func TestCopyFromAndClone(t *testing.T) {
	src := testsupport.MustMessage("Example")
	testsupport.MustSet(t, src, map[string]any{"x": 1.0, "child::y": "a"})

	dst := src.New()
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if got := testsupport.Get(t, dst, "child::y"); got != "a" {
		t.Fatalf("copied value: got %v", got)
	}

	clone := src.Clone()
	testsupport.MustSet(t, clone, map[string]any{"child::y": "b"})
	if got := testsupport.Get(t, src, "child::y"); got != "a" {
		t.Fatalf("clone must not alias the source, got %v", got)
	}

	other := testsupport.MustMessage("StringMsg")
	if err := dst.CopyFrom(other); !errors.Is(err, schema.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if !proto.Equal(dst.(*protomsg.Message).Interface(), src.Interface()) {
		t.Fatalf("failed copy must leave the destination untouched")
	}
}
