// Package policy tracks read-only and visibility overrides independently of
// the widgets they target, so overrides recorded for paths that are not
// materialized yet apply when those widgets are created later.
package policy

import (
	"github.com/goliatone/go-msgform/pkg/scope"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// State holds the whole-tree read-only flag plus the hidden and read-only
// path sets. Recorded paths are either concrete ("plugins::0::name") or family
// names ("plugins::name").
type State struct {
	treeReadOnly bool
	hidden       map[string]struct{}
	readOnly     map[string]struct{}
}

// New returns an empty policy state.
func New() *State {
	return &State{
		hidden:   make(map[string]struct{}),
		readOnly: make(map[string]struct{}),
	}
}

// SetTreeReadOnly toggles the whole-tree read-only flag.
func (s *State) SetTreeReadOnly(readOnly bool) {
	if s == nil {
		return
	}
	s.treeReadOnly = readOnly
}

// TreeReadOnly reports the whole-tree flag.
func (s *State) TreeReadOnly() bool {
	return s != nil && s.treeReadOnly
}

// RecordHidden records or erases a hidden override for path.
func (s *State) RecordHidden(path string, hidden bool) {
	if s == nil {
		return
	}
	if hidden {
		s.hidden[path] = struct{}{}
		return
	}
	delete(s.hidden, path)
}

// RecordReadOnly records or erases a read-only override for path.
func (s *State) RecordReadOnly(path string, readOnly bool) {
	if s == nil {
		return
	}
	if readOnly {
		s.readOnly[path] = struct{}{}
		return
	}
	delete(s.readOnly, path)
}

// Hidden reports whether a widget materialized at path starts hidden: the
// path or its family name must equal a recorded entry.
func (s *State) Hidden(path string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.hidden[path]; ok {
		return true
	}
	_, ok := s.hidden[scope.FamilyName(path)]
	return ok
}

// ReadOnly reports whether a widget materialized at path starts read-only:
// the path or its family name must lie at or below a recorded entry.
func (s *State) ReadOnly(path string) bool {
	if s == nil || len(s.readOnly) == 0 {
		return false
	}
	family := scope.FamilyName(path)
	for recorded := range s.readOnly {
		if scope.HasPrefix(path, recorded) || scope.HasPrefix(family, recorded) {
			return true
		}
	}
	return false
}

// Apply initialises a freshly materialized widget. Whole-tree read-only is
// applied without pinning; a recorded read-only override pins the widget.
func (s *State) Apply(path string, w widgets.Widget) {
	if s == nil || w == nil {
		return
	}
	switch {
	case s.treeReadOnly:
		w.SetReadOnly(true, false)
	case s.ReadOnly(path):
		w.SetReadOnly(true, true)
	}
	w.SetVisible(!s.Hidden(path))
}
