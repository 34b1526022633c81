package reconcile

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/scope"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// Pull writes the values of materialized widgets below base into value.
// Fields without a widget keep whatever value already holds. Collapsed
// containers are skipped: Reconcile does not refresh their children, so those
// widgets may be stale.
func (r *Reconciler) Pull(value schema.Value, base string) bool {
	if r == nil {
		return false
	}
	if value == nil {
		r.logger.Error("pull: nil value", zap.String("path", base))
		return false
	}
	desc := value.Descriptor()
	if desc == nil {
		r.logger.Error("pull: failed to get descriptor", zap.String("path", base))
		return false
	}

	for _, field := range schema.Fields(desc) {
		path := scope.Join(base, field.Name)
		w, ok := r.registry.Lookup(path)
		if !ok || field.Kind == schema.KindInvalid || collapsed(w) {
			continue
		}

		switch {
		case field.Repeated:
			r.pullRepeated(value, field, path)
		case field.Kind == schema.KindMessage:
			r.pullMessage(value, field, path, w)
		default:
			r.write(path, w, func(v any) error { return value.Set(field, v) })
		}
	}
	return true
}

// PullPath writes the single editor registered at path into value, whatever
// the expansion state of its ancestors. It reports false when path holds no
// editor or does not address a slot that exists in value.
func (r *Reconciler) PullPath(value schema.Value, path string) bool {
	if r == nil || value == nil {
		return false
	}
	w, ok := r.registry.Editor(path)
	if !ok {
		return false
	}

	segments := scope.Split(path)
	current := value
	for i := 0; i < len(segments); i++ {
		desc := current.Descriptor()
		if desc == nil {
			return false
		}
		field, ok := desc.FieldByName(segments[i])
		if !ok {
			return false
		}

		if !field.Repeated {
			if i == len(segments)-1 {
				return r.pullLeaf(field, path, w, func() (schema.Value, error) {
					return current.MutableNested(field)
				}, func(v any) error {
					return current.Set(field, v)
				})
			}
			next, err := current.MutableNested(field)
			if err != nil {
				return false
			}
			current = next
			continue
		}

		if i+1 >= len(segments) {
			return false
		}
		i++
		idx, ok := scope.Index(segments[i])
		if !ok || idx >= current.Len(field) {
			return false
		}
		if i == len(segments)-1 {
			return r.pullLeaf(field, path, w, func() (schema.Value, error) {
				return current.MutableNestedIndex(field, idx)
			}, func(v any) error {
				return current.SetIndex(field, idx, v)
			})
		}
		next, err := current.MutableNestedIndex(field, idx)
		if err != nil {
			return false
		}
		current = next
	}
	return false
}

func (r *Reconciler) pullLeaf(field schema.Field, path string, editor widgets.Editor,
	nested func() (schema.Value, error), set func(any) error) bool {
	if field.Kind != schema.KindMessage {
		return r.write(path, editor, set)
	}
	dst, err := nested()
	if err != nil {
		r.logger.Warn("write nested message", zap.String("path", path), zap.Error(err))
		return false
	}
	composite, ok := r.compositeOf(dst)
	if !ok {
		return false
	}
	if err := composite.Encode(dst, editor.Value()); err != nil {
		r.logger.Warn("encode composite", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func (r *Reconciler) pullMessage(value schema.Value, field schema.Field, path string, w widgets.Widget) {
	dst, err := value.MutableNested(field)
	if err != nil {
		r.logger.Warn("write nested message", zap.String("path", path), zap.Error(err))
		return
	}
	if composite, ok := r.compositeOf(dst); ok {
		editor, ok := w.(widgets.Editor)
		if !ok {
			return
		}
		if err := composite.Encode(dst, editor.Value()); err != nil {
			r.logger.Warn("encode composite", zap.String("path", path), zap.Error(err))
		}
		return
	}
	r.Pull(dst, path)
}

// pullRepeated scans element widgets by increasing index and stops at the
// first gap.
func (r *Reconciler) pullRepeated(value schema.Value, field schema.Field, path string) {
	for i := 0; ; i++ {
		elemPath := scope.JoinIndex(path, i)
		w, ok := r.registry.Lookup(elemPath)
		if !ok {
			return
		}
		for value.Len(field) <= i {
			if _, err := value.Append(field); err != nil {
				r.logger.Warn("append element", zap.String("path", elemPath), zap.Error(err))
				return
			}
		}

		if field.Kind != schema.KindMessage {
			r.write(elemPath, w, func(v any) error { return value.SetIndex(field, i, v) })
			continue
		}
		if collapsed(w) {
			continue
		}
		dst, err := value.MutableNestedIndex(field, i)
		if err != nil {
			r.logger.Warn("write element", zap.String("path", elemPath), zap.Error(err))
			continue
		}
		if composite, ok := r.compositeOf(dst); ok {
			editor, ok := w.(widgets.Editor)
			if !ok {
				continue
			}
			if err := composite.Encode(dst, editor.Value()); err != nil {
				r.logger.Warn("encode composite", zap.String("path", elemPath), zap.Error(err))
			}
			continue
		}
		r.Pull(dst, elemPath)
	}
}

func (r *Reconciler) write(path string, w widgets.Widget, set func(any) error) bool {
	editor, ok := w.(widgets.Editor)
	if !ok {
		return false
	}
	if err := set(editor.Value()); err != nil {
		r.logger.Warn("write field", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func collapsed(w widgets.Widget) bool {
	container, ok := w.(widgets.Container)
	return ok && !container.IsExpanded()
}
