package widgets

// Vector3 is a 3-D vector.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Quaternion is a rotation.
type Quaternion struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// Pose is a position plus orientation.
type Pose struct {
	Position    Vector3    `json:"position" yaml:"position"`
	Orientation Quaternion `json:"orientation" yaml:"orientation"`
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// Geometry is a primitive shape. Size applies to boxes, Radius to spheres and
// cylinders, Length to cylinders.
type Geometry struct {
	Type   string  `json:"type" yaml:"type"`
	Size   Vector3 `json:"size" yaml:"size"`
	Radius float64 `json:"radius" yaml:"radius"`
	Length float64 `json:"length" yaml:"length"`
}

// CompositeEditor edits a fixed-shape value (pose, vector, color, geometry)
// as a whole.
type CompositeEditor struct {
	base
	value     any
	accept    func(any) (any, bool)
	listeners []func(any)
}

var (
	_ Editor    = (*CompositeEditor)(nil)
	_ Destroyer = (*CompositeEditor)(nil)
)

// NewVector3Editor returns an editor holding a Vector3.
func NewVector3Editor(label string) *CompositeEditor {
	return newCompositeEditor(KindVector3, label, Vector3{}, func(v any) (any, bool) {
		switch typed := v.(type) {
		case Vector3:
			return typed, true
		case *Vector3:
			if typed != nil {
				return *typed, true
			}
		}
		return nil, false
	})
}

// NewPoseEditor returns an editor holding a Pose with an identity
// orientation.
func NewPoseEditor(label string) *CompositeEditor {
	initial := Pose{Orientation: Quaternion{W: 1}}
	return newCompositeEditor(KindPose, label, initial, func(v any) (any, bool) {
		switch typed := v.(type) {
		case Pose:
			return typed, true
		case *Pose:
			if typed != nil {
				return *typed, true
			}
		}
		return nil, false
	})
}

// NewColorEditor returns an editor holding a Color.
func NewColorEditor(label string) *CompositeEditor {
	return newCompositeEditor(KindColor, label, Color{}, func(v any) (any, bool) {
		switch typed := v.(type) {
		case Color:
			return clampColor(typed), true
		case *Color:
			if typed != nil {
				return clampColor(*typed), true
			}
		}
		return nil, false
	})
}

// NewGeometryEditor returns an editor holding a Geometry.
func NewGeometryEditor(label string) *CompositeEditor {
	return newCompositeEditor(KindGeometry, label, Geometry{}, func(v any) (any, bool) {
		switch typed := v.(type) {
		case Geometry:
			return typed, true
		case *Geometry:
			if typed != nil {
				return *typed, true
			}
		}
		return nil, false
	})
}

func newCompositeEditor(kind Kind, label string, initial any, accept func(any) (any, bool)) *CompositeEditor {
	return &CompositeEditor{
		base:   newBase(kind, label),
		value:  initial,
		accept: accept,
	}
}

// SetValue implements Editor.
func (e *CompositeEditor) SetValue(v any) bool {
	if e == nil || e.accept == nil {
		return false
	}
	value, ok := e.accept(v)
	if !ok {
		return false
	}
	e.value = value
	return true
}

// Value implements Editor.
func (e *CompositeEditor) Value() any {
	if e == nil {
		return nil
	}
	return e.value
}

// OnValueChanged implements Editor.
func (e *CompositeEditor) OnValueChanged(fn func(value any)) {
	if e == nil || fn == nil {
		return
	}
	e.listeners = append(e.listeners, fn)
}

// Input simulates a user edit of the whole composite value.
func (e *CompositeEditor) Input(v any) bool {
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
func (e *CompositeEditor) Destroy() {
	if e == nil {
		return
	}
	e.listeners = nil
	e.markDestroyed()
}

func clampColor(c Color) Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
