package msgwidget

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/policy"
	"github.com/goliatone/go-msgform/pkg/reconcile"
	"github.com/goliatone/go-msgform/pkg/registry"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/scope"
	"github.com/goliatone/go-msgform/pkg/snapshot"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// ValueChangedFunc receives user edits keyed by scoped path.
type ValueChangedFunc func(path string, value any)

// MessageWidget binds one schema-described value to a lazily materialized
// widget tree. It is not safe for concurrent use; marshal calls onto a single
// goroutine (see the uiloop package).
type MessageWidget struct {
	value      schema.Value
	root       *widgets.Collapsible
	registry   *registry.Registry
	reconciler *reconcile.Reconciler
	policy     *policy.State
	logger     *zap.Logger
	topic      string
	listeners  []ValueChangedFunc
	valid      bool

	reconcileOpts []reconcile.Option
	batching      bool
	refreshing    bool
}

// Option customises a MessageWidget.
type Option func(*MessageWidget)

// WithLogger sets the diagnostic logger shared by the engine components.
func WithLogger(logger *zap.Logger) Option {
	return func(m *MessageWidget) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTopic sets the topic used to build property URIs.
func WithTopic(topic string) Option {
	return func(m *MessageWidget) {
		m.topic = topic
	}
}

// WithFactory swaps the editor factory.
func WithFactory(factory *widgets.Factory) Option {
	return func(m *MessageWidget) {
		m.reconcileOpts = append(m.reconcileOpts, reconcile.WithFactory(factory))
	}
}

// WithComposite registers a fixed-shape type edited by a single widget.
func WithComposite(typeName string, composite reconcile.Composite) Option {
	return func(m *MessageWidget) {
		m.reconcileOpts = append(m.reconcileOpts, reconcile.WithComposite(typeName, composite))
	}
}

// WithoutDefaultComposites walks Pose, Vector3d, Color and Geometry field by
// field instead of using their dedicated editors.
func WithoutDefaultComposites() Option {
	return func(m *MessageWidget) {
		m.reconcileOpts = append(m.reconcileOpts, reconcile.WithoutDefaultComposites())
	}
}

// WithReadOnly makes the whole tree read-only from the first reconcile.
func WithReadOnly(readOnly bool) Option {
	return func(m *MessageWidget) {
		m.policy.SetTreeReadOnly(readOnly)
	}
}

// New copies value and materializes its top level. A nil value yields an
// invalid widget; check Valid.
func New(value schema.Value, opts ...Option) *MessageWidget {
	m := &MessageWidget{
		root:   widgets.NewCollapsible(""),
		policy: policy.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.root.Toggle(true)
	m.registry = registry.New(registry.WithLogger(m.logger))

	reconcileOpts := append([]reconcile.Option{
		reconcile.WithLogger(m.logger),
		reconcile.WithHook(m.materialized),
	}, m.reconcileOpts...)
	m.reconciler = reconcile.New(m.registry, reconcileOpts...)

	if value == nil {
		m.logger.Error("null message")
		return m
	}
	if value.Descriptor() == nil {
		m.logger.Error("failed to get descriptor")
		return m
	}
	m.value = value.New()
	if err := m.value.CopyFrom(value); err != nil {
		m.logger.Error("copy message", zap.Error(err))
		m.value = nil
		return m
	}
	m.valid = m.reconciler.Reconcile(m.value, "", m.root)
	return m
}

// Valid reports whether the widget was built from a usable value.
func (m *MessageWidget) Valid() bool {
	return m != nil && m.valid
}

// Root returns the always-expanded container holding the top-level widgets.
func (m *MessageWidget) Root() widgets.Container {
	if m == nil {
		return nil
	}
	return m.root
}

// TypeName returns the full type name of the bound value.
func (m *MessageWidget) TypeName() string {
	if m == nil {
		return ""
	}
	return schema.FullName(m.value)
}

// UpdateFromValue replaces the bound value and reconciles the tree. It fails,
// leaving every widget untouched, when value has a different type.
func (m *MessageWidget) UpdateFromValue(value schema.Value) bool {
	if m == nil || m.value == nil {
		return false
	}
	if value == nil {
		m.logger.Error("null message")
		return false
	}
	if got, want := schema.FullName(value), schema.FullName(m.value); got != want {
		m.logger.Error("message type mismatch",
			zap.String("want", want),
			zap.String("got", got),
		)
		return false
	}
	if err := m.value.CopyFrom(value); err != nil {
		m.logger.Error("copy message", zap.Error(err))
		return false
	}
	return m.reconciler.Reconcile(m.value, "", m.root)
}

// CurrentValue returns a copy of the bound value with every materialized
// widget's value written into it.
func (m *MessageWidget) CurrentValue() schema.Value {
	if m == nil || m.value == nil {
		return nil
	}
	m.reconciler.Pull(m.value, "")
	return m.value.Clone()
}

// SetPropertyValue sets the editor at path. Paths without an editor, and
// editors whose slot no longer exists in the value, report false.
func (m *MessageWidget) SetPropertyValue(path string, value any) bool {
	if m == nil || m.value == nil {
		return false
	}
	editor, ok := m.registry.Editor(path)
	if !ok {
		m.logger.Warn("no property widget", zap.String("path", path))
		m.reconciler.Pull(m.value, "")
		return false
	}
	if !editor.SetValue(value) {
		m.logger.Warn("property rejected value", zap.String("path", path), zap.Any("value", value))
		return false
	}
	if !m.reconciler.PullPath(m.value, path) {
		m.logger.Warn("property not written back", zap.String("path", path))
		return false
	}
	return true
}

// PropertyValue returns the value held by the editor at path.
func (m *MessageWidget) PropertyValue(path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	editor, ok := m.registry.Editor(path)
	if !ok {
		return nil, false
	}
	return editor.Value(), true
}

// SetPropertyVisible records the visibility of path and applies it to the
// widget at path or, failing that, to every live widget of that family.
func (m *MessageWidget) SetPropertyVisible(path string, visible bool) bool {
	if m == nil {
		return false
	}
	m.policy.RecordHidden(path, !visible)
	return m.applyToPath(path, func(w widgets.Widget) {
		w.SetVisible(visible)
	})
}

// PropertyVisible reports whether the widget at path and all its ancestors
// are visible and expanded.
func (m *MessageWidget) PropertyVisible(path string) bool {
	w, ok := m.lookup(path)
	if !ok {
		return false
	}
	return widgets.EffectiveVisible(w)
}

// SetPropertyReadOnly records the read-only state of path and pins it on the
// widget at path or, failing that, on every live widget of that family.
func (m *MessageWidget) SetPropertyReadOnly(path string, readOnly bool) bool {
	if m == nil {
		return false
	}
	m.policy.RecordReadOnly(path, readOnly)
	return m.applyToPath(path, func(w widgets.Widget) {
		w.SetReadOnly(readOnly, true)
	})
}

// PropertyReadOnly reports whether the widget at path or an ancestor is
// read-only.
func (m *MessageWidget) PropertyReadOnly(path string) bool {
	w, ok := m.lookup(path)
	if !ok {
		return false
	}
	return widgets.EffectiveReadOnly(w)
}

// SetReadOnly toggles the whole tree. Widgets pinned by SetPropertyReadOnly
// keep their own state.
func (m *MessageWidget) SetReadOnly(readOnly bool) {
	if m == nil {
		return
	}
	m.policy.SetTreeReadOnly(readOnly)
	m.registry.Range(func(_ string, w widgets.Widget) bool {
		w.SetReadOnly(readOnly, false)
		return true
	})
}

// ReadOnly reports whether every materialized widget is read-only.
func (m *MessageWidget) ReadOnly() bool {
	if m == nil {
		return false
	}
	if m.registry.Count() == 0 {
		return m.policy.TreeReadOnly()
	}
	readOnly := true
	m.registry.Range(func(_ string, w widgets.Widget) bool {
		readOnly = w.ReadOnly()
		return readOnly
	})
	return readOnly
}

// ToggleAll expands or collapses every container, repeating until no new
// containers appear.
func (m *MessageWidget) ToggleAll(expand bool) {
	if m == nil || m.value == nil {
		return
	}
	m.batching = true
	defer func() { m.batching = false }()

	for {
		containers := m.registry.Containers()
		for _, container := range containers {
			container.Toggle(expand)
		}
		if expand {
			m.refresh()
		}
		if len(m.registry.Containers()) == len(containers) {
			return
		}
	}
}

// OnValueChanged registers a listener for user edits.
func (m *MessageWidget) OnValueChanged(fn ValueChangedFunc) {
	if m == nil || fn == nil {
		return
	}
	m.listeners = append(m.listeners, fn)
}

// PropertyWidgetByName returns the widget registered at path.
func (m *MessageWidget) PropertyWidgetByName(path string) (widgets.Widget, bool) {
	if m == nil {
		return nil, false
	}
	return m.registry.Lookup(path)
}

// PropertyWidgetCount reports the number of materialized widgets.
func (m *MessageWidget) PropertyWidgetCount() int {
	if m == nil {
		return 0
	}
	return m.registry.Count()
}

// Paths lists the materialized paths in lexical order.
func (m *MessageWidget) Paths() []string {
	if m == nil {
		return nil
	}
	return m.registry.Paths()
}

// Topic returns the topic used in property URIs.
func (m *MessageWidget) Topic() string {
	if m == nil {
		return ""
	}
	return m.topic
}

// SetTopic changes the topic and rewrites every property URI.
func (m *MessageWidget) SetTopic(topic string) {
	if m == nil {
		return
	}
	m.topic = topic
	m.registry.Range(func(path string, w widgets.Widget) bool {
		w.SetURI(scope.URI(topic, path))
		return true
	})
}

// ProcessDeferred destroys widgets removed since the last call. Call it after
// the current event has been handled.
func (m *MessageWidget) ProcessDeferred() int {
	if m == nil {
		return 0
	}
	return m.registry.Flush()
}

// Snapshot captures the current widget tree.
func (m *MessageWidget) Snapshot() snapshot.Node {
	if m == nil {
		return snapshot.Node{}
	}
	node := snapshot.Build(m.root, m.registry)
	node.Label = m.TypeName()
	return node
}

// materialized initialises every widget the reconciler creates.
func (m *MessageWidget) materialized(path string, w widgets.Widget) {
	m.policy.Apply(path, w)
	w.SetURI(scope.URI(m.topic, path))

	switch typed := w.(type) {
	case widgets.Editor:
		typed.OnValueChanged(func(value any) {
			m.valueChanged(path, value)
		})
	case widgets.Container:
		typed.OnToggled(func(expanded bool) {
			if expanded && !m.batching {
				m.refresh()
			}
		})
	}
}

// refresh reconciles from the root so newly expanded containers materialize
// their children. Edits are already in the bound value: every edit is written
// through as it happens.
func (m *MessageWidget) refresh() {
	if m.refreshing || m.value == nil {
		return
	}
	m.refreshing = true
	defer func() { m.refreshing = false }()

	m.reconciler.Reconcile(m.value, "", m.root)
}

func (m *MessageWidget) valueChanged(path string, value any) {
	if !m.reconciler.PullPath(m.value, path) {
		m.logger.Warn("property not written back", zap.String("path", path))
	}
	listeners := append([]ValueChangedFunc{}, m.listeners...)
	for _, fn := range listeners {
		fn(path, value)
	}
}

func (m *MessageWidget) lookup(path string) (widgets.Widget, bool) {
	if m == nil {
		return nil, false
	}
	w, ok := m.registry.Lookup(path)
	if !ok {
		m.logger.Warn("no property widget", zap.String("path", path))
		return nil, false
	}
	return w, true
}

func (m *MessageWidget) applyToPath(path string, apply func(widgets.Widget)) bool {
	if w, ok := m.registry.Lookup(path); ok {
		apply(w)
		return true
	}
	family := m.registry.Family(path)
	for _, w := range family {
		apply(w)
	}
	return len(family) > 0
}
