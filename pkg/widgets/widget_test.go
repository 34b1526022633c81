package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-msgform/pkg/schema"
)

func TestReadOnlyPinning(t *testing.T) {
	e := NewStringEditor("data")

	e.SetReadOnly(true, false)
	if !e.ReadOnly() || e.Pinned() {
		t.Fatalf("non-explicit read-only should apply without pinning")
	}

	e.SetReadOnly(false, true)
	if e.ReadOnly() || !e.Pinned() {
		t.Fatalf("explicit call should apply and pin")
	}

	e.SetReadOnly(true, false)
	if e.ReadOnly() {
		t.Fatalf("pinned widget must ignore non-explicit changes")
	}
}

func TestEffectiveStateFollowsAncestors(t *testing.T) {
	root := NewCollapsible("header")
	inner := NewCollapsible("stamp")
	leaf := NewNumberEditor("sec", schema.KindInt64)
	root.AppendChild(inner)
	inner.AppendChild(leaf)

	if EffectiveVisible(leaf) {
		t.Fatalf("leaf under collapsed containers should not be visible")
	}
	root.Toggle(true)
	inner.Toggle(true)
	if !EffectiveVisible(leaf) {
		t.Fatalf("leaf should be visible once every ancestor is expanded")
	}
	root.SetVisible(false)
	if EffectiveVisible(leaf) {
		t.Fatalf("hidden ancestor hides the leaf")
	}

	if EffectiveReadOnly(leaf) {
		t.Fatalf("leaf should start editable")
	}
	root.SetReadOnly(true, true)
	if !EffectiveReadOnly(leaf) || leaf.ReadOnly() {
		t.Fatalf("ancestor read-only should propagate without touching the leaf flag")
	}
	if EffectiveReadOnly(nil) || EffectiveVisible(nil) {
		t.Fatalf("nil widgets report false")
	}
}

func TestScalarEditorInput(t *testing.T) {
	e := NewNumberEditor("x", schema.KindDouble)
	var got []any
	e.OnValueChanged(func(v any) { got = append(got, v) })

	if !e.SetValue(2) || e.Value() != float64(2) {
		t.Fatalf("SetValue should coerce to float64, got %v", e.Value())
	}
	if len(got) != 0 {
		t.Fatalf("SetValue must not notify")
	}

	if !e.Input("3.5") {
		t.Fatalf("input should be accepted")
	}
	e.Input(3.5)
	if diff := cmp.Diff([]any{3.5}, got); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}

	if e.SetValue("abc") {
		t.Fatalf("unparsable input should be rejected")
	}

	e.SetReadOnly(true, true)
	if e.Input(9.0) {
		t.Fatalf("read-only editor must reject input")
	}
}

func TestEnumEditorRestrictsOptions(t *testing.T) {
	e := NewEnumEditor("mode", []string{"A", "B"})
	if e.Value() != "A" {
		t.Fatalf("enum should default to the first option, got %v", e.Value())
	}
	if e.SetValue("C") {
		t.Fatalf("unknown option must be rejected")
	}
	if !e.SetValue("B") || e.Value() != "B" {
		t.Fatalf("known option should be stored")
	}
	if diff := cmp.Diff([]string{"A", "B"}, e.Options()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeEditors(t *testing.T) {
	pose := NewPoseEditor("pose")
	if pose.Value().(Pose).Orientation.W != 1 {
		t.Fatalf("pose should start with identity orientation")
	}
	want := Pose{Position: Vector3{X: 1, Y: 2, Z: 3}, Orientation: Quaternion{W: 1}}
	if !pose.SetValue(&want) || pose.Value() != want {
		t.Fatalf("pose value mismatch: %v", pose.Value())
	}
	if pose.SetValue(Vector3{}) {
		t.Fatalf("pose editor must reject vectors")
	}

	color := NewColorEditor("ambient")
	color.SetValue(Color{R: 2, G: -1, B: 0.5, A: 1})
	if diff := cmp.Diff(Color{R: 1, G: 0, B: 0.5, A: 1}, color.Value()); diff != "" {
		t.Fatalf("color should clamp (-want +got):\n%s", diff)
	}

	var seen any
	geometry := NewGeometryEditor("geometry")
	geometry.OnValueChanged(func(v any) { seen = v })
	box := Geometry{Type: "BOX", Size: Vector3{X: 1, Y: 1, Z: 1}}
	if !geometry.Input(box) || seen != box {
		t.Fatalf("geometry input should notify, saw %v", seen)
	}
}

func TestCollapsibleChildren(t *testing.T) {
	a := NewCollapsible("a")
	b := NewCollapsible("b")
	leaf := NewBoolEditor("flag")

	var toggles []bool
	a.OnToggled(func(expanded bool) { toggles = append(toggles, expanded) })
	a.Toggle(true)
	a.Toggle(true)
	a.Toggle(false)
	if diff := cmp.Diff([]bool{true, false}, toggles); diff != "" {
		t.Fatalf("toggle notifications mismatch (-want +got):\n%s", diff)
	}

	a.AppendChild(leaf)
	a.AppendChild(leaf)
	if a.ChildCount() != 1 || leaf.Parent() != Container(a) {
		t.Fatalf("child should be attached exactly once")
	}
	b.AppendChild(leaf)
	if a.ChildCount() != 0 || b.ChildCount() != 1 || leaf.Parent() != Container(b) {
		t.Fatalf("re-parenting should detach from the previous container")
	}
	if !b.RemoveChild(leaf) || leaf.Parent() != nil || b.RemoveChild(leaf) {
		t.Fatalf("remove should detach once")
	}

	b.Destroy()
	if !b.Destroyed() {
		t.Fatalf("destroy should mark the container")
	}
	b.Toggle(true)
	if b.IsExpanded() {
		t.Fatalf("destroyed container must not toggle")
	}
}

func TestWidgetIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		id := NewStringEditor("s").ID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}
