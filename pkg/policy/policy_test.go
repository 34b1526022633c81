package policy

import (
	"testing"

	"github.com/goliatone/go-msgform/pkg/widgets"
)

func TestHiddenMatchesPathOrFamily(t *testing.T) {
	s := New()
	s.RecordHidden("plugins::name", true)
	s.RecordHidden("header::stamp", true)

	cases := map[string]bool{
		"plugins::0::name":     true,
		"plugins::12::name":    true,
		"plugins::0::filename": false,
		"header::stamp":        true,
		"header::stamp::sec":   false,
		"header":               false,
	}
	for path, want := range cases {
		if got := s.Hidden(path); got != want {
			t.Fatalf("Hidden(%q): want %v, got %v", path, want, got)
		}
	}

	s.RecordHidden("plugins::name", false)
	if s.Hidden("plugins::0::name") {
		t.Fatalf("erased entry should no longer hide")
	}
}

func TestReadOnlyMatchesPrefixes(t *testing.T) {
	s := New()
	s.RecordReadOnly("header", true)
	s.RecordReadOnly("plugins::name", true)

	cases := map[string]bool{
		"header":             true,
		"header::stamp::sec": true,
		"headers":            false,
		"plugins::3::name":   true,
		"plugins::3":         false,
		"data":               false,
	}
	for path, want := range cases {
		if got := s.ReadOnly(path); got != want {
			t.Fatalf("ReadOnly(%q): want %v, got %v", path, want, got)
		}
	}
	s.RecordReadOnly("header", false)
	if s.ReadOnly("header::stamp") {
		t.Fatalf("erased entry should no longer cover descendants")
	}
}

func TestApply(t *testing.T) {
	s := New()
	s.RecordReadOnly("data", true)
	s.RecordHidden("data", true)

	w := widgets.NewStringEditor("data")
	s.Apply("data", w)
	if !w.ReadOnly() || !w.Pinned() || w.Visible() {
		t.Fatalf("recorded overrides should pin read-only and hide")
	}

	s.SetTreeReadOnly(true)
	other := widgets.NewStringEditor("other")
	s.Apply("other", other)
	if !other.ReadOnly() || other.Pinned() || !other.Visible() {
		t.Fatalf("whole-tree read-only should apply without pinning")
	}

	var nilState *State
	nilState.Apply("x", other)
	if nilState.TreeReadOnly() || nilState.Hidden("x") || nilState.ReadOnly("x") {
		t.Fatalf("nil state should be inert")
	}
}
