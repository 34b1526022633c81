package reconcile

import (
	"fmt"
	"math"

	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// Composite converts a fixed-shape message to and from the typed value of a
// single editor.
type Composite struct {
	Kind   widgets.Kind
	Decode func(v schema.Value) (any, error)
	Encode func(dst schema.Value, value any) error
	// Fields lists the fields a type must declare to match by short name.
	// Full-name matches skip the check.
	Fields []string
}

// Matches reports whether desc declares every field in Fields.
func (c Composite) Matches(desc schema.Descriptor) bool {
	if desc == nil {
		return false
	}
	for _, name := range c.Fields {
		if _, ok := desc.FieldByName(name); !ok {
			return false
		}
	}
	return true
}

// DefaultComposites returns the built-in codecs keyed by short type name.
func DefaultComposites() map[string]Composite {
	return map[string]Composite{
		"Pose": {
			Kind: widgets.KindPose, Decode: decodePose, Encode: encodePose,
			Fields: []string{"position", "orientation"},
		},
		"Vector3d": {
			Kind: widgets.KindVector3, Decode: decodeVector3, Encode: encodeVector3,
			Fields: []string{"x", "y", "z"},
		},
		"Color": {
			Kind: widgets.KindColor, Decode: decodeColor, Encode: encodeColor,
			Fields: []string{"r", "g", "b", "a"},
		},
		"Geometry": {
			Kind: widgets.KindGeometry, Decode: decodeGeometry, Encode: encodeGeometry,
			Fields: []string{"type", "box", "cylinder", "sphere"},
		},
	}
}

func decodeVector3(v schema.Value) (any, error) {
	return readVector3(v), nil
}

func encodeVector3(dst schema.Value, value any) error {
	vec, ok := value.(widgets.Vector3)
	if !ok {
		return fmt.Errorf("reconcile: expected Vector3, got %T", value)
	}
	return writeVector3(dst, vec)
}

func decodePose(v schema.Value) (any, error) {
	pose := widgets.Pose{
		Position:    readVector3(child(v, "position")),
		Orientation: widgets.Quaternion{W: 1},
	}
	if orientation := child(v, "orientation"); orientation != nil {
		pose.Orientation = widgets.Quaternion{
			X: number(orientation, "x"),
			Y: number(orientation, "y"),
			Z: number(orientation, "z"),
			W: number(orientation, "w"),
		}
	}
	return pose, nil
}

func encodePose(dst schema.Value, value any) error {
	pose, ok := value.(widgets.Pose)
	if !ok {
		return fmt.Errorf("reconcile: expected Pose, got %T", value)
	}
	position, err := mutableChild(dst, "position")
	if err != nil {
		return err
	}
	if err := writeVector3(position, pose.Position); err != nil {
		return err
	}
	orientation, err := mutableChild(dst, "orientation")
	if err != nil {
		return err
	}
	return setNumbers(orientation, map[string]float64{
		"x": pose.Orientation.X,
		"y": pose.Orientation.Y,
		"z": pose.Orientation.Z,
		"w": pose.Orientation.W,
	})
}

func decodeColor(v schema.Value) (any, error) {
	return widgets.Color{
		R: number(v, "r"),
		G: number(v, "g"),
		B: number(v, "b"),
		A: number(v, "a"),
	}, nil
}

func encodeColor(dst schema.Value, value any) error {
	color, ok := value.(widgets.Color)
	if !ok {
		return fmt.Errorf("reconcile: expected Color, got %T", value)
	}
	return setNumbers(dst, map[string]float64{"r": color.R, "g": color.G, "b": color.B, "a": color.A})
}

func decodeGeometry(v schema.Value) (any, error) {
	geometry := widgets.Geometry{Type: text(v, "type")}
	if box := child(v, "box"); box != nil {
		geometry.Size = readVector3(child(box, "size"))
	}
	switch geometry.Type {
	case "CYLINDER":
		if cylinder := child(v, "cylinder"); cylinder != nil {
			geometry.Radius = number(cylinder, "radius")
			geometry.Length = number(cylinder, "length")
		}
	case "SPHERE":
		if sphere := child(v, "sphere"); sphere != nil {
			geometry.Radius = number(sphere, "radius")
		}
	}
	return geometry, nil
}

func encodeGeometry(dst schema.Value, value any) error {
	geometry, ok := value.(widgets.Geometry)
	if !ok {
		return fmt.Errorf("reconcile: expected Geometry, got %T", value)
	}
	if geometry.Type != "" {
		if field, ok := dst.Descriptor().FieldByName("type"); ok {
			if err := dst.Set(field, geometry.Type); err != nil {
				return fmt.Errorf("reconcile: geometry type: %w", err)
			}
		}
	}
	switch geometry.Type {
	case "BOX":
		box, err := mutableChild(dst, "box")
		if err != nil {
			return err
		}
		size, err := mutableChild(box, "size")
		if err != nil {
			return err
		}
		return writeVector3(size, geometry.Size)
	case "CYLINDER":
		cylinder, err := mutableChild(dst, "cylinder")
		if err != nil {
			return err
		}
		return setNumbers(cylinder, map[string]float64{"radius": geometry.Radius, "length": geometry.Length})
	case "SPHERE":
		sphere, err := mutableChild(dst, "sphere")
		if err != nil {
			return err
		}
		return setNumbers(sphere, map[string]float64{"radius": geometry.Radius})
	}
	return nil
}

func readVector3(v schema.Value) widgets.Vector3 {
	if v == nil {
		return widgets.Vector3{}
	}
	return widgets.Vector3{X: number(v, "x"), Y: number(v, "y"), Z: number(v, "z")}
}

func writeVector3(dst schema.Value, vec widgets.Vector3) error {
	return setNumbers(dst, map[string]float64{"x": vec.X, "y": vec.Y, "z": vec.Z})
}

// number reads a numeric field as float64; missing fields and NaN read as 0.
func number(v schema.Value, name string) float64 {
	if v == nil || v.Descriptor() == nil {
		return 0
	}
	field, ok := v.Descriptor().FieldByName(name)
	if !ok || field.Repeated {
		return 0
	}
	raw, err := v.Get(field)
	if err != nil {
		return 0
	}
	coerced, err := schema.Coerce(schema.KindDouble, raw)
	if err != nil {
		return 0
	}
	f := coerced.(float64)
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func text(v schema.Value, name string) string {
	if v == nil || v.Descriptor() == nil {
		return ""
	}
	field, ok := v.Descriptor().FieldByName(name)
	if !ok || field.Repeated {
		return ""
	}
	raw, err := v.Get(field)
	if err != nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func child(v schema.Value, name string) schema.Value {
	if v == nil || v.Descriptor() == nil {
		return nil
	}
	field, ok := v.Descriptor().FieldByName(name)
	if !ok || field.Repeated || field.Kind != schema.KindMessage {
		return nil
	}
	nested, err := v.Nested(field)
	if err != nil {
		return nil
	}
	return nested
}

func mutableChild(v schema.Value, name string) (schema.Value, error) {
	field, ok := v.Descriptor().FieldByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", schema.ErrNoSuchField, v.Descriptor().FullName(), name)
	}
	return v.MutableNested(field)
}

// setNumbers writes the named numeric fields that exist on dst.
func setNumbers(dst schema.Value, values map[string]float64) error {
	desc := dst.Descriptor()
	for name, value := range values {
		field, ok := desc.FieldByName(name)
		if !ok {
			continue
		}
		if err := dst.Set(field, value); err != nil {
			return fmt.Errorf("reconcile: set %s.%s: %w", desc.FullName(), name, err)
		}
	}
	return nil
}
