package testsupport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/goliatone/go-msgform/pkg/protomsg"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/scope"
)

// Set writes value at a scoped path inside v, allocating nested messages and
// growing repeated fields as needed: Set(msg, "plugins::2::name", "p").
func Set(v schema.Value, path string, value any) error {
	if v == nil {
		return errors.New("testsupport: nil value")
	}
	segments := scope.Split(path)
	if len(segments) == 0 {
		return errors.New("testsupport: empty path")
	}

	current := v
	for i := 0; i < len(segments); i++ {
		desc := current.Descriptor()
		field, ok := desc.FieldByName(segments[i])
		if !ok {
			return fmt.Errorf("testsupport: %s has no field %q", desc.FullName(), segments[i])
		}
		last := i == len(segments)-1

		if !field.Repeated {
			if last {
				return current.Set(field, value)
			}
			next, err := current.MutableNested(field)
			if err != nil {
				return err
			}
			current = next
			continue
		}

		if last {
			return fmt.Errorf("testsupport: %s needs an element index", path)
		}
		i++
		idx, ok := scope.Index(segments[i])
		if !ok {
			return fmt.Errorf("testsupport: %q is not an index", segments[i])
		}
		for current.Len(field) <= idx {
			if _, err := current.Append(field); err != nil {
				return err
			}
		}
		if i == len(segments)-1 {
			return current.SetIndex(field, idx, value)
		}
		next, err := current.MutableNestedIndex(field, idx)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// MustSet applies Set for each entry, failing the test on the first error.
func MustSet(t testing.TB, v schema.Value, values map[string]any) {
	t.Helper()
	for path, value := range values {
		if err := Set(v, path, value); err != nil {
			t.Fatalf("set %s: %v", path, err)
		}
	}
}

// Truncate shortens a repeated field of a protobuf fixture to n elements.
func Truncate(t testing.TB, m *protomsg.Message, field string, n int) {
	t.Helper()

	msg := m.Reflect()
	fd := msg.Descriptor().Fields().ByName(protoreflect.Name(field))
	if fd == nil || !fd.IsList() {
		t.Fatalf("truncate: %s is not a repeated field", field)
	}
	list := msg.Mutable(fd).List()
	if n < list.Len() {
		list.Truncate(n)
	}
}

// Get reads the scalar at a scoped path, or fails the test.
func Get(t testing.TB, v schema.Value, path string) any {
	t.Helper()

	segments := scope.Split(path)
	current := v
	for i := 0; i < len(segments); i++ {
		field, ok := current.Descriptor().FieldByName(segments[i])
		if !ok {
			t.Fatalf("get %s: no field %q", path, segments[i])
		}
		last := i == len(segments)-1
		var (
			out any
			err error
		)
		switch {
		case !field.Repeated && last:
			out, err = current.Get(field)
		case !field.Repeated:
			current, err = current.Nested(field)
		default:
			i++
			idx, _ := scope.Index(segments[i])
			if i == len(segments)-1 {
				out, err = current.GetIndex(field, idx)
				last = true
			} else {
				current, err = current.NestedIndex(field, idx)
			}
		}
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		if last {
			return out
		}
	}
	t.Fatalf("get %s: path does not address a scalar", path)
	return nil
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Diff returns a cmp diff of want and got.
func Diff(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}
