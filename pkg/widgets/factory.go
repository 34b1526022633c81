package widgets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-msgform/pkg/schema"
)

// ErrNoEditor is returned when no registered rule handles a field.
var ErrNoEditor = errors.New("widgets: no editor for field")

// Spec describes the slot an editor is created for.
type Spec struct {
	// Label is the caption shown next to the editor.
	Label string
	// Field is the schema field (element kind for repeated fields).
	Field schema.Field
	// Composite is set when the field's type has a fixed-shape editor.
	Composite Kind
	// Options lists the legal enum names.
	Options []string
	// Hint forces a specific editor kind when a rule for it exists.
	Hint Kind
}

// Matcher decides whether a rule should build the editor for spec.
type Matcher func(spec Spec) bool

// Constructor builds an editor for spec.
type Constructor func(spec Spec) Editor

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	build    Constructor
	order    int
}

// Factory selects and builds editors for schema fields based on explicit hints
// or registered matchers. Higher priority wins; ties fall back to registration
// order.
type Factory struct {
	mu        sync.RWMutex
	rules     []rule
	container func(label string) Container
}

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithContainerConstructor swaps the container implementation.
func WithContainerConstructor(fn func(label string) Container) FactoryOption {
	return func(f *Factory) {
		if fn != nil {
			f.container = fn
		}
	}
}

// NewFactory constructs a factory with the built-in editors registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		container: func(label string) Container { return NewCollapsible(label) },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.registerBuiltins()
	return f
}

// Register adds an editor rule. Registering the same kind twice keeps both
// rules; the latest one wins for explicit hints.
func (f *Factory) Register(kind Kind, priority int, match Matcher, build Constructor) {
	if f == nil || match == nil || build == nil {
		return
	}
	trimmed := Kind(strings.TrimSpace(string(kind)))
	if trimmed == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = append(f.rules, rule{
		kind:     trimmed,
		priority: priority,
		match:    match,
		build:    build,
		order:    len(f.rules),
	})
}

// Resolve returns the editor kind chosen for spec.
func (f *Factory) Resolve(spec Spec) (Kind, bool) {
	selected, ok := f.resolve(spec)
	if !ok {
		return "", false
	}
	return selected.kind, true
}

// NewEditor builds the editor chosen for spec.
func (f *Factory) NewEditor(spec Spec) (Editor, error) {
	selected, ok := f.resolve(spec)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoEditor, spec.Field.Name, spec.Field.Kind)
	}
	editor := selected.build(spec)
	if editor == nil {
		return nil, fmt.Errorf("%w: %s constructor returned nil", ErrNoEditor, selected.kind)
	}
	return editor, nil
}

// NewContainer builds a collapsed container.
func (f *Factory) NewContainer(label string) Container {
	if f == nil || f.container == nil {
		return NewCollapsible(label)
	}
	return f.container(label)
}

func (f *Factory) resolve(spec Spec) (rule, bool) {
	if f == nil {
		return rule{}, false
	}
	f.mu.RLock()
	if len(f.rules) == 0 {
		f.mu.RUnlock()
		return rule{}, false
	}
	rules := append([]rule(nil), f.rules...)
	f.mu.RUnlock()

	if hint := Kind(strings.TrimSpace(string(spec.Hint))); hint != "" {
		for i := len(rules) - 1; i >= 0; i-- {
			if rules[i].kind == hint {
				return rules[i], true
			}
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(spec) {
			return entry, true
		}
	}
	return rule{}, false
}

func (f *Factory) registerBuiltins() {
	composite := func(kind Kind, build func(label string) *CompositeEditor) {
		f.Register(kind, 100, func(spec Spec) bool {
			return spec.Composite == kind
		}, func(spec Spec) Editor {
			return build(spec.Label)
		})
	}
	composite(KindPose, NewPoseEditor)
	composite(KindVector3, NewVector3Editor)
	composite(KindColor, NewColorEditor)
	composite(KindGeometry, NewGeometryEditor)

	f.Register(KindBool, 90, func(spec Spec) bool {
		return spec.Field.Kind == schema.KindBool
	}, func(spec Spec) Editor {
		return NewBoolEditor(spec.Label)
	})

	f.Register(KindEnum, 80, func(spec Spec) bool {
		return spec.Field.Kind == schema.KindEnum
	}, func(spec Spec) Editor {
		return NewEnumEditor(spec.Label, spec.Options)
	})

	f.Register(KindString, 70, func(spec Spec) bool {
		return spec.Field.Kind == schema.KindString
	}, func(spec Spec) Editor {
		return NewStringEditor(spec.Label)
	})

	f.Register(KindNumber, 60, func(spec Spec) bool {
		k := spec.Field.Kind
		return k.IsFloat() || k.IsSigned() || k.IsUnsigned()
	}, func(spec Spec) Editor {
		return NewNumberEditor(spec.Label, spec.Field.Kind)
	})
}
