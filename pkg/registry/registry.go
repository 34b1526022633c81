// Package registry maps scoped paths to live widgets. It owns the widget
// lifecycle: registration attaches a widget to its parent container, removal
// drops a whole subtree and queues the widgets for deferred destruction.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/scope"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

var (
	// ErrDuplicate is returned when a path already holds a different live
	// editor.
	ErrDuplicate = errors.New("registry: duplicate entry")
	// ErrNilWidget is returned when registering a nil widget.
	ErrNilWidget = errors.New("registry: nil widget")
	// ErrEmptyPath is returned when registering under an empty path.
	ErrEmptyPath = errors.New("registry: empty path")
)

// Registry is the sole owner of materialized widgets. It is not safe for
// concurrent use; the engine drives it from one event loop.
type Registry struct {
	entries map[string]widgets.Widget
	pending []widgets.Widget
	logger  *zap.Logger
}

// Option customises a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for duplicate and lifecycle diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]widgets.Widget),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register records w under path and appends it to parent when one is given.
// Registering the same widget twice is a no-op. A path already held by a
// container keeps the container; a path held by a different editor is
// reported as ErrDuplicate.
func (r *Registry) Register(path string, w widgets.Widget, parent widgets.Container) error {
	if r == nil {
		return errors.New("registry: nil registry")
	}
	if w == nil {
		return ErrNilWidget
	}
	if path == "" {
		return ErrEmptyPath
	}

	if existing, ok := r.entries[path]; ok {
		if existing == w {
			return nil
		}
		if _, isContainer := existing.(widgets.Container); isContainer {
			return nil
		}
		r.logger.Warn("internal error: duplicate entry in registry", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}

	r.entries[path] = w
	if parent != nil {
		parent.AppendChild(w)
	}
	return nil
}

// Lookup returns the widget registered at path.
func (r *Registry) Lookup(path string) (widgets.Widget, bool) {
	if r == nil {
		return nil, false
	}
	w, ok := r.entries[path]
	return w, ok
}

// Editor returns the editor registered at path.
func (r *Registry) Editor(path string) (widgets.Editor, bool) {
	w, ok := r.Lookup(path)
	if !ok {
		return nil, false
	}
	editor, ok := w.(widgets.Editor)
	return editor, ok
}

// Container returns the container registered at path.
func (r *Registry) Container(path string) (widgets.Container, bool) {
	w, ok := r.Lookup(path)
	if !ok {
		return nil, false
	}
	container, ok := w.(widgets.Container)
	return container, ok
}

// Remove drops the entry at path and every entry below it, detaches the
// widget from its parent and queues the subtree for destruction. It reports
// false when nothing is registered at path.
func (r *Registry) Remove(path string) bool {
	if r == nil {
		return false
	}
	root, ok := r.entries[path]
	if !ok {
		return false
	}

	removed := make([]string, 0, 1)
	for candidate := range r.entries {
		if scope.HasPrefix(candidate, path) {
			removed = append(removed, candidate)
		}
	}
	// Deepest first so children are queued before their parents.
	sort.Slice(removed, func(i, j int) bool {
		di, dj := scope.Depth(removed[i]), scope.Depth(removed[j])
		if di == dj {
			return removed[i] < removed[j]
		}
		return di > dj
	})

	if parent := root.Parent(); parent != nil {
		parent.RemoveChild(root)
	}
	for _, p := range removed {
		r.pending = append(r.pending, r.entries[p])
		delete(r.entries, p)
	}
	r.logger.Debug("removed widget subtree",
		zap.String("path", path),
		zap.Int("entries", len(removed)),
	)
	return true
}

// Count reports the number of registered widgets.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Paths lists registered paths in lexical order.
func (r *Registry) Paths() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.entries))
	for path := range r.entries {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Containers lists registered containers in path order.
func (r *Registry) Containers() []widgets.Container {
	if r == nil {
		return nil
	}
	var out []widgets.Container
	for _, path := range r.Paths() {
		if container, ok := r.entries[path].(widgets.Container); ok {
			out = append(out, container)
		}
	}
	return out
}

// Range calls fn for every entry in path order until fn returns false.
func (r *Registry) Range(fn func(path string, w widgets.Widget) bool) {
	if r == nil || fn == nil {
		return
	}
	for _, path := range r.Paths() {
		w, ok := r.entries[path]
		if !ok {
			continue
		}
		if !fn(path, w) {
			return
		}
	}
}

// Family returns the entries whose family name equals family, keyed by path.
func (r *Registry) Family(family string) map[string]widgets.Widget {
	out := make(map[string]widgets.Widget)
	r.Range(func(path string, w widgets.Widget) bool {
		if scope.FamilyName(path) == family {
			out[path] = w
		}
		return true
	})
	return out
}

// Pending reports how many removed widgets await destruction.
func (r *Registry) Pending() int {
	if r == nil {
		return 0
	}
	return len(r.pending)
}

// Flush destroys every queued widget and returns how many were processed.
// Call it once the current event has finished.
func (r *Registry) Flush() int {
	if r == nil || len(r.pending) == 0 {
		return 0
	}
	queue := r.pending
	r.pending = nil
	for _, w := range queue {
		if destroyer, ok := w.(widgets.Destroyer); ok {
			destroyer.Destroy()
		}
	}
	return len(queue)
}
