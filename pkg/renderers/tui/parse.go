package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-msgform/pkg/widgets"
)

var geometryTypes = []string{"BOX", "CYLINDER", "SPHERE"}

var geometryHelp = map[string]string{
	"BOX":      "size x, y, z",
	"CYLINDER": "radius, length",
	"SPHERE":   "radius",
}

// parseFloats reads exactly n comma or space separated numbers.
func parseFloats(text string, n int) ([]float64, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", field)
		}
		out[i] = f
	}
	return out, nil
}

func parseVector(text string) (any, error) {
	v, err := parseFloats(text, 3)
	if err != nil {
		return nil, err
	}
	return widgets.Vector3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parsePose(text string) (any, error) {
	v, err := parseFloats(text, 7)
	if err != nil {
		return nil, err
	}
	return widgets.Pose{
		Position:    widgets.Vector3{X: v[0], Y: v[1], Z: v[2]},
		Orientation: widgets.Quaternion{X: v[3], Y: v[4], Z: v[5], W: v[6]},
	}, nil
}

func parseColor(text string) (any, error) {
	v, err := parseFloats(text, 4)
	if err != nil {
		return nil, err
	}
	return widgets.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func parseGeometry(kind, text string) (any, error) {
	switch kind {
	case "BOX":
		v, err := parseFloats(text, 3)
		if err != nil {
			return nil, err
		}
		return widgets.Geometry{Type: kind, Size: widgets.Vector3{X: v[0], Y: v[1], Z: v[2]}}, nil
	case "CYLINDER":
		v, err := parseFloats(text, 2)
		if err != nil {
			return nil, err
		}
		return widgets.Geometry{Type: kind, Radius: v[0], Length: v[1]}, nil
	case "SPHERE":
		v, err := parseFloats(text, 1)
		if err != nil {
			return nil, err
		}
		return widgets.Geometry{Type: kind, Radius: v[0]}, nil
	default:
		return nil, fmt.Errorf("unknown geometry type %q", kind)
	}
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strconv.Quote(typed)
	case widgets.Vector3:
		return "(" + formatVector(typed) + ")"
	case widgets.Pose:
		return "(" + formatPose(typed) + ")"
	case widgets.Color:
		return "rgba(" + formatColor(typed) + ")"
	case widgets.Geometry:
		if typed.Type == "" {
			return "(none)"
		}
		return strings.ToLower(typed.Type) + "(" + formatGeometry(typed) + ")"
	case float64:
		return num(typed)
	case float32:
		return strconv.FormatFloat(float64(typed), 'g', -1, 32)
	default:
		return fmt.Sprint(typed)
	}
}

func formatVector(v widgets.Vector3) string {
	return join(v.X, v.Y, v.Z)
}

func formatPose(p widgets.Pose) string {
	return join(p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W)
}

func formatColor(c widgets.Color) string {
	return join(c.R, c.G, c.B, c.A)
}

func formatGeometry(g widgets.Geometry) string {
	switch g.Type {
	case "BOX":
		return formatVector(g.Size)
	case "CYLINDER":
		return join(g.Radius, g.Length)
	case "SPHERE":
		return join(g.Radius)
	default:
		return ""
	}
}

func join(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = num(v)
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
