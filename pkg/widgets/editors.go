package widgets

import (
	"github.com/goliatone/go-msgform/pkg/schema"
)

// ScalarEditor edits a single number, string, bool or enum value. The
// stored value always carries the Go type of its schema kind.
type ScalarEditor struct {
	base
	scalar    schema.Kind
	value     any
	options   []string
	listeners []func(any)
}

var (
	_ Editor    = (*ScalarEditor)(nil)
	_ Destroyer = (*ScalarEditor)(nil)
)

// NewNumberEditor returns an editor for one of the numeric kinds.
func NewNumberEditor(label string, kind schema.Kind) *ScalarEditor {
	return newScalarEditor(KindNumber, label, kind)
}

// NewStringEditor returns a free text editor.
func NewStringEditor(label string) *ScalarEditor {
	return newScalarEditor(KindString, label, schema.KindString)
}

// NewBoolEditor returns a checkbox style editor.
func NewBoolEditor(label string) *ScalarEditor {
	return newScalarEditor(KindBool, label, schema.KindBool)
}

// NewEnumEditor returns a drop-down editor. Options are fixed at creation.
func NewEnumEditor(label string, options []string) *ScalarEditor {
	editor := newScalarEditor(KindEnum, label, schema.KindEnum)
	editor.options = append([]string(nil), options...)
	if len(editor.options) > 0 {
		editor.value = editor.options[0]
	}
	return editor
}

func newScalarEditor(kind Kind, label string, scalar schema.Kind) *ScalarEditor {
	return &ScalarEditor{
		base:   newBase(kind, label),
		scalar: scalar,
		value:  schema.Zero(scalar),
	}
}

// ScalarKind returns the schema kind the editor stores.
func (e *ScalarEditor) ScalarKind() schema.Kind {
	if e == nil {
		return schema.KindInvalid
	}
	return e.scalar
}

// Options lists the legal values of an enum editor.
func (e *ScalarEditor) Options() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.options...)
}

// SetValue implements Editor.
func (e *ScalarEditor) SetValue(v any) bool {
	if e == nil {
		return false
	}
	coerced, err := schema.Coerce(e.scalar, v)
	if err != nil {
		return false
	}
	if e.scalar == schema.KindEnum && len(e.options) > 0 && !contains(e.options, coerced.(string)) {
		return false
	}
	e.value = coerced
	return true
}

// Value implements Editor.
func (e *ScalarEditor) Value() any {
	if e == nil {
		return nil
	}
	return e.value
}

// OnValueChanged implements Editor.
func (e *ScalarEditor) OnValueChanged(fn func(value any)) {
	if e == nil || fn == nil {
		return
	}
	e.listeners = append(e.listeners, fn)
}

// Input simulates a user edit: the value is stored and listeners fire when it
// changed. Read-only editors reject input.
func (e *ScalarEditor) Input(v any) bool {
	if e == nil || e.destroyed || EffectiveReadOnly(e) {
		return false
	}
	previous := e.value
	if !e.SetValue(v) {
		return false
	}
	if previous != e.value {
		notify(e.listeners, e.value)
	}
	return true
}

// Destroy implements Destroyer.
func (e *ScalarEditor) Destroy() {
	if e == nil {
		return
	}
	e.listeners = nil
	e.markDestroyed()
}

func notify(listeners []func(any), value any) {
	for _, fn := range listeners {
		fn(value)
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
