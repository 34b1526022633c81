package widgets

import "github.com/google/uuid"

// Kind identifies a widget implementation.
type Kind string

// Built-in widget kinds.
const (
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindBool      Kind = "bool"
	KindEnum      Kind = "enum"
	KindVector3   Kind = "vector3"
	KindPose      Kind = "pose"
	KindColor     Kind = "color"
	KindGeometry  Kind = "geometry"
	KindContainer Kind = "container"
)

// Widget is the capability shared by editors and containers.
type Widget interface {
	ID() string
	Kind() Kind
	Label() string
	SetLabel(label string)

	// URI is the drag-and-drop identifier of the property.
	URI() string
	SetURI(uri string)

	// SetReadOnly changes the widget's own read-only flag. An explicit call
	// pins the widget so later non-explicit calls leave it alone.
	SetReadOnly(readOnly, explicit bool)
	ReadOnly() bool
	Pinned() bool

	SetVisible(visible bool)
	Visible() bool

	Parent() Container
	SetParent(parent Container)
}

// Editor is a leaf widget holding one typed value.
type Editor interface {
	Widget
	// SetValue replaces the value without notifying listeners. It reports
	// false when the value cannot be represented by the editor.
	SetValue(v any) bool
	Value() any
	// OnValueChanged registers a listener for user edits.
	OnValueChanged(fn func(value any))
}

// Container groups child widgets and materializes them only while expanded.
type Container interface {
	Widget
	Toggle(expand bool)
	IsExpanded() bool
	AppendChild(child Widget)
	RemoveChild(child Widget) bool
	ChildCount() int
	Children() []Widget
	OnToggled(fn func(expanded bool))
}

// Destroyer is implemented by widgets that release resources when the
// registry drains its deferred destruction queue.
type Destroyer interface {
	Destroy()
}

// EffectiveReadOnly reports whether w or any ancestor is read-only.
func EffectiveReadOnly(w Widget) bool {
	if w == nil {
		return false
	}
	if w.ReadOnly() {
		return true
	}
	for parent := w.Parent(); parent != nil; parent = parent.Parent() {
		if parent.ReadOnly() {
			return true
		}
	}
	return false
}

// EffectiveVisible reports whether w and every ancestor are visible and every
// ancestor container is expanded.
func EffectiveVisible(w Widget) bool {
	if w == nil || !w.Visible() {
		return false
	}
	for parent := w.Parent(); parent != nil; parent = parent.Parent() {
		if !parent.Visible() || !parent.IsExpanded() {
			return false
		}
	}
	return true
}

// base carries the state shared by every widget. Widgets are owned by the
// engine's event loop and are not safe for concurrent use.
type base struct {
	id        string
	kind      Kind
	label     string
	uri       string
	readOnly  bool
	pinned    bool
	visible   bool
	parent    Container
	destroyed bool
}

func newBase(kind Kind, label string) base {
	return base{
		id:      uuid.NewString(),
		kind:    kind,
		label:   label,
		visible: true,
	}
}

func (b *base) ID() string {
	return b.id
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Label() string {
	return b.label
}

func (b *base) SetLabel(label string) {
	b.label = label
}

func (b *base) URI() string {
	return b.uri
}

func (b *base) SetURI(uri string) {
	b.uri = uri
}

func (b *base) SetReadOnly(readOnly, explicit bool) {
	if explicit {
		b.readOnly = readOnly
		b.pinned = true
		return
	}
	if !b.pinned {
		b.readOnly = readOnly
	}
}

func (b *base) ReadOnly() bool {
	return b.readOnly
}

func (b *base) Pinned() bool {
	return b.pinned
}

func (b *base) SetVisible(visible bool) {
	b.visible = visible
}

func (b *base) Visible() bool {
	return b.visible
}

func (b *base) Parent() Container {
	return b.parent
}

func (b *base) SetParent(parent Container) {
	b.parent = parent
}

// Destroyed reports whether Destroy ran.
func (b *base) Destroyed() bool {
	return b.destroyed
}

func (b *base) markDestroyed() {
	b.destroyed = true
	b.parent = nil
}
