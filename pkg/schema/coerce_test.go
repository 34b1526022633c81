package schema

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		in   any
		want any
	}{
		{name: "double from int", kind: KindDouble, in: 3, want: float64(3)},
		{name: "double from string", kind: KindDouble, in: " 1.5 ", want: 1.5},
		{name: "float narrows", kind: KindFloat, in: 0.25, want: float32(0.25)},
		{name: "int32 from float", kind: KindInt32, in: 7.9, want: int32(7)},
		{name: "int64 from string", kind: KindInt64, in: "-12", want: int64(-12)},
		{name: "int64 NaN", kind: KindInt64, in: math.NaN(), want: int64(0)},
		{name: "uint32 from int", kind: KindUint32, in: 4, want: uint32(4)},
		{name: "uint64 from string", kind: KindUint64, in: "99", want: uint64(99)},
		{name: "bool from string", kind: KindBool, in: "true", want: true},
		{name: "string passthrough", kind: KindString, in: "x", want: "x"},
		{name: "enum from stringer", kind: KindEnum, in: stringer("MODE_AUTO"), want: "MODE_AUTO"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.kind, tc.in)
			if err != nil {
				t.Fatalf("coerce: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceErrors(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		in   any
	}{
		{name: "int32 overflow", kind: KindInt32, in: int64(math.MaxInt32) + 1},
		{name: "negative unsigned", kind: KindUint32, in: -1},
		{name: "unsigned overflow", kind: KindUint32, in: uint64(math.MaxUint32) + 1},
		{name: "bad number", kind: KindDouble, in: "abc"},
		{name: "bool from number", kind: KindBool, in: 1},
		{name: "string from number", kind: KindString, in: 1},
		{name: "message kind", kind: KindMessage, in: "x"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Coerce(tc.kind, tc.in); err == nil {
				t.Fatalf("expected error for %v as %s", tc.in, tc.kind)
			}
		})
	}

	if _, err := Coerce(KindBool, 1); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestZero(t *testing.T) {
	if Zero(KindUint64) != uint64(0) || Zero(KindEnum) != "" || Zero(KindMessage) != nil {
		t.Fatalf("unexpected zero values")
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindFloat.IsFloat() || KindInt32.IsFloat() {
		t.Fatalf("IsFloat mismatch")
	}
	if !KindInt64.IsSigned() || !KindUint32.IsUnsigned() {
		t.Fatalf("integer predicates mismatch")
	}
	if KindMessage.IsScalar() || !KindEnum.IsScalar() {
		t.Fatalf("IsScalar mismatch")
	}
}
