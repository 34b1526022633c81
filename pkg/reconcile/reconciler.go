// Package reconcile keeps a lazily materialized widget tree in agreement with
// a schema-described value. Reconcile walks the value and creates, updates or
// removes widgets; Pull walks the same shape and writes widget values back.
package reconcile

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/registry"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/scope"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// Hook is called once for every widget the reconciler materializes, after it
// has been registered and attached to its parent.
type Hook func(path string, w widgets.Widget)

// Reconciler owns no widgets itself; it drives the registry and factory it was
// built with.
type Reconciler struct {
	registry   *registry.Registry
	factory    *widgets.Factory
	logger     *zap.Logger
	composites map[string]Composite
	hook       Hook
}

// Option customises a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFactory swaps the editor factory.
func WithFactory(factory *widgets.Factory) Option {
	return func(r *Reconciler) {
		if factory != nil {
			r.factory = factory
		}
	}
}

// WithComposite registers a fixed-shape type. typeName is matched against the
// full type name first and the short name second; short-name matches also
// need the descriptor to declare composite.Fields.
func WithComposite(typeName string, composite Composite) Option {
	return func(r *Reconciler) {
		if typeName == "" || composite.Decode == nil || composite.Encode == nil {
			return
		}
		r.composites[typeName] = composite
	}
}

// WithoutDefaultComposites drops the built-in Pose, Vector3d, Color and
// Geometry editors so those types are walked field by field.
func WithoutDefaultComposites() Option {
	return func(r *Reconciler) {
		for name := range DefaultComposites() {
			delete(r.composites, name)
		}
	}
}

// WithHook sets the materialization hook.
func WithHook(hook Hook) Option {
	return func(r *Reconciler) {
		r.hook = hook
	}
}

// New returns a reconciler bound to reg.
func New(reg *registry.Registry, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry:   reg,
		factory:    widgets.NewFactory(),
		logger:     zap.NewNop(),
		composites: DefaultComposites(),
	}
	if r.registry == nil {
		r.registry = registry.New()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Registry returns the registry the reconciler writes to.
func (r *Reconciler) Registry() *registry.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// CompositeFor resolves the fixed-shape codec of a message type.
func (r *Reconciler) CompositeFor(desc schema.Descriptor) (Composite, bool) {
	if r == nil || desc == nil || desc.FullName() == "" {
		return Composite{}, false
	}
	typeName := desc.FullName()
	if composite, ok := r.composites[typeName]; ok && strings.Contains(typeName, ".") {
		return composite, true
	}
	short := typeName
	if idx := strings.LastIndex(typeName, "."); idx >= 0 {
		short = typeName[idx+1:]
	}
	composite, ok := r.composites[short]
	if !ok || !composite.Matches(desc) {
		return Composite{}, false
	}
	return composite, true
}

// compositeOf resolves the codec of a nested value.
func (r *Reconciler) compositeOf(v schema.Value) (Composite, bool) {
	if v == nil {
		return Composite{}, false
	}
	return r.CompositeFor(v.Descriptor())
}

// Reconcile brings the widgets below base in line with value. Nothing is
// materialized below a collapsed parent. It returns false when value has no
// usable descriptor.
func (r *Reconciler) Reconcile(value schema.Value, base string, parent widgets.Container) bool {
	if r == nil {
		return false
	}
	if parent != nil && !parent.IsExpanded() {
		return true
	}
	if value == nil {
		r.logger.Error("reconcile: nil value", zap.String("path", base))
		return false
	}
	desc := value.Descriptor()
	if desc == nil {
		r.logger.Error("reconcile: failed to get descriptor", zap.String("path", base))
		return false
	}

	if base != "" {
		if composite, ok := r.CompositeFor(desc); ok {
			r.reconcileComposite(value, composite, base, scope.Base(base), parent)
			return true
		}
	}

	for _, field := range schema.Fields(desc) {
		path := scope.Join(base, field.Name)
		switch {
		case field.Kind == schema.KindInvalid:
			r.logger.Warn("unhandled field type", zap.String("path", path))
		case field.Repeated:
			r.reconcileRepeated(value, field, path, parent)
		case field.Kind == schema.KindMessage:
			r.reconcileMessage(value, field, path, parent)
		default:
			r.reconcileScalar(value, field, path, parent)
		}
	}
	return true
}

func (r *Reconciler) reconcileMessage(value schema.Value, field schema.Field, path string, parent widgets.Container) {
	nested, err := value.Nested(field)
	if err != nil {
		r.logger.Warn("read nested message", zap.String("path", path), zap.Error(err))
		return
	}
	if composite, ok := r.compositeOf(nested); ok {
		r.reconcileComposite(nested, composite, path, field.Name, parent)
		return
	}
	container, ok := r.ensureContainer(path, field.Name, parent)
	if !ok {
		return
	}
	r.Reconcile(nested, path, container)
}

func (r *Reconciler) reconcileRepeated(value schema.Value, field schema.Field, path string, parent widgets.Container) {
	length := value.Len(field)
	container, ok := r.ensureContainer(path, field.Name, parent)
	if !ok || !container.IsExpanded() {
		return
	}

	for i := 0; i < length; i++ {
		elemPath := scope.JoinIndex(path, i)
		label := strconv.Itoa(i)

		if field.Kind != schema.KindMessage {
			raw, err := value.GetIndex(field, i)
			if err != nil {
				r.logger.Warn("read repeated element", zap.String("path", elemPath), zap.Error(err))
				continue
			}
			editor, ok := r.ensureEditor(elemPath, container, func() widgets.Spec {
				return widgets.Spec{Label: label, Field: field, Options: enumOptions(value, field)}
			})
			if ok {
				r.push(elemPath, editor, raw)
			}
			continue
		}

		elem, err := value.NestedIndex(field, i)
		if err != nil {
			r.logger.Warn("read repeated message", zap.String("path", elemPath), zap.Error(err))
			continue
		}
		if composite, ok := r.compositeOf(elem); ok {
			r.reconcileComposite(elem, composite, elemPath, label, container)
			continue
		}
		sub, exists := r.registry.Container(elemPath)
		if !exists {
			sub, ok = r.ensureContainer(elemPath, elementLabel(elem, i), container)
			if !ok {
				continue
			}
		}
		r.Reconcile(elem, elemPath, sub)
	}

	// Drop repetitions which disappeared.
	limit := container.ChildCount()
	for i := length; i < limit; i++ {
		r.remove(scope.JoinIndex(path, i))
	}
}

func (r *Reconciler) reconcileScalar(value schema.Value, field schema.Field, path string, parent widgets.Container) {
	raw, err := value.Get(field)
	if err != nil {
		r.logger.Warn("read field", zap.String("path", path), zap.Error(err))
		return
	}
	editor, ok := r.ensureEditor(path, parent, func() widgets.Spec {
		return widgets.Spec{Label: field.Name, Field: field, Options: enumOptions(value, field)}
	})
	if !ok {
		return
	}
	r.push(path, editor, raw)
}

func (r *Reconciler) reconcileComposite(value schema.Value, composite Composite, path, label string, parent widgets.Container) {
	decoded, err := composite.Decode(value)
	if err != nil {
		r.logger.Warn("decode composite", zap.String("path", path), zap.Error(err))
		return
	}
	editor, ok := r.ensureEditor(path, parent, func() widgets.Spec {
		return widgets.Spec{
			Label:     label,
			Field:     schema.Field{Name: label, Kind: schema.KindMessage, TypeName: schema.FullName(value)},
			Composite: composite.Kind,
		}
	})
	if !ok {
		return
	}
	if !editor.SetValue(decoded) {
		r.logger.Warn("composite editor rejected value", zap.String("path", path))
	}
}

func (r *Reconciler) ensureContainer(path, label string, parent widgets.Container) (widgets.Container, bool) {
	if w, ok := r.registry.Lookup(path); ok {
		if container, isContainer := w.(widgets.Container); isContainer {
			return container, true
		}
		r.remove(path)
	}
	container := r.factory.NewContainer(label)
	if !r.register(path, container, parent) {
		return nil, false
	}
	return container, true
}

func (r *Reconciler) ensureEditor(path string, parent widgets.Container, spec func() widgets.Spec) (widgets.Editor, bool) {
	if w, ok := r.registry.Lookup(path); ok {
		if editor, isEditor := w.(widgets.Editor); isEditor {
			return editor, true
		}
		r.remove(path)
	}
	editor, err := r.factory.NewEditor(spec())
	if err != nil {
		r.logger.Warn("unhandled field type", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if !r.register(path, editor, parent) {
		return nil, false
	}
	return editor, true
}

func (r *Reconciler) register(path string, w widgets.Widget, parent widgets.Container) bool {
	if err := r.registry.Register(path, w, parent); err != nil {
		r.logger.Warn("register widget", zap.String("path", path), zap.Error(err))
		return false
	}
	if r.hook != nil {
		r.hook(path, w)
	}
	return true
}

func (r *Reconciler) remove(path string) {
	r.registry.Remove(path)
}

func (r *Reconciler) push(path string, editor widgets.Editor, raw any) {
	if !editor.SetValue(finite(raw)) {
		r.logger.Warn("editor rejected value", zap.String("path", path), zap.Any("value", raw))
	}
}

func finite(raw any) any {
	switch typed := raw.(type) {
	case float64:
		if math.IsNaN(typed) {
			return float64(0)
		}
	case float32:
		if math.IsNaN(float64(typed)) {
			return float32(0)
		}
	}
	return raw
}

func enumOptions(value schema.Value, field schema.Field) []string {
	if field.Kind != schema.KindEnum {
		return nil
	}
	return value.EnumValues(field)
}

// elementLabel names a repeated message element after its non-empty string
// "name" field, falling back to the index.
func elementLabel(elem schema.Value, index int) string {
	label := strconv.Itoa(index)
	desc := elem.Descriptor()
	if desc == nil {
		return label
	}
	field, ok := desc.FieldByName("name")
	if !ok || field.Repeated || field.Kind != schema.KindString {
		return label
	}
	raw, err := elem.Get(field)
	if err != nil {
		return label
	}
	if name, ok := raw.(string); ok && name != "" {
		return name
	}
	return label
}
