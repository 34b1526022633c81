package msgwidget_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-msgform/pkg/msgwidget"
	"github.com/goliatone/go-msgform/pkg/protomsg"
	"github.com/goliatone/go-msgform/pkg/testsupport"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

func newMessage(t *testing.T, name string, values map[string]any) *protomsg.Message {
	t.Helper()
	msg := testsupport.MustMessage(name)
	testsupport.MustSet(t, msg, values)
	return msg
}

func container(t *testing.T, m *msgwidget.MessageWidget, path string) widgets.Container {
	t.Helper()
	w, ok := m.PropertyWidgetByName(path)
	if !ok {
		t.Fatalf("no widget at %s", path)
	}
	c, ok := w.(widgets.Container)
	if !ok {
		t.Fatalf("%s is a %s, not a container", path, w.Kind())
	}
	return c
}

func valuesByPath(m *msgwidget.MessageWidget) map[string]any {
	out := make(map[string]any)
	for _, path := range m.Paths() {
		if value, ok := m.PropertyValue(path); ok {
			out[path] = value
		}
	}
	return out
}

func idsByPath(m *msgwidget.MessageWidget) map[string]string {
	out := make(map[string]string)
	for _, path := range m.Paths() {
		w, _ := m.PropertyWidgetByName(path)
		out[path] = w.ID()
	}
	return out
}

func TestWorkedExample(t *testing.T) {
	msg := newMessage(t, "Example", map[string]any{"x": 1.0, "child::y": "a"})

	m := msgwidget.New(msg)
	if !m.Valid() {
		t.Fatalf("expected a valid widget")
	}
	if got := m.PropertyWidgetCount(); got != 2 {
		t.Fatalf("expected 2 top-level entries, got %d (%v)", got, m.Paths())
	}

	m.ToggleAll(true)
	if got := m.PropertyWidgetCount(); got != 3 {
		t.Fatalf("expected 3 entries after expanding, got %d (%v)", got, m.Paths())
	}

	if !m.SetPropertyValue("child::y", "b") {
		t.Fatalf("set child::y failed")
	}
	current := m.CurrentValue()
	if got := testsupport.Get(t, current, "child::y"); got != "b" {
		t.Fatalf("child.y: want b, got %v", got)
	}
	if got := testsupport.Get(t, current, "x"); got != 1.0 {
		t.Fatalf("x: want 1, got %v", got)
	}
	if got := testsupport.Get(t, msg, "child::y"); got != "a" {
		t.Fatalf("the caller's value must not be modified, got %v", got)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		path  string
		value any
	}{
		{path: "d", value: 2.5},
		{path: "f", value: float32(1.5)},
		{path: "i32", value: int32(-4)},
		{path: "i64", value: int64(1) << 40},
		{path: "u32", value: uint32(7)},
		{path: "u64", value: uint64(1) << 50},
		{path: "b", value: true},
		{path: "s", value: "text"},
		{path: "mode", value: "MODE_MANUAL"},
	}

	m := msgwidget.New(testsupport.MustMessage("Scalars"))
	for _, tc := range cases {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			if !m.SetPropertyValue(tc.path, tc.value) {
				t.Fatalf("set %s failed", tc.path)
			}
			got, ok := m.PropertyValue(tc.path)
			if !ok {
				t.Fatalf("no value at %s", tc.path)
			}
			if diff := cmp.Diff(tc.value, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.value, testsupport.Get(t, m.CurrentValue(), tc.path)); diff != "" {
				t.Fatalf("current value mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if m.SetPropertyValue("mode", "MODE_BOGUS") {
		t.Fatalf("unknown enum names must be rejected")
	}
}

func TestUpdateFromValueRejectsOtherTypes(t *testing.T) {
	m := msgwidget.New(newMessage(t, "StringMsg", map[string]any{"data": "keep"}))
	paths := m.Paths()
	ids := idsByPath(m)

	if m.UpdateFromValue(newMessage(t, "Example", map[string]any{"x": 2.0})) {
		t.Fatalf("a different type must be rejected")
	}
	if m.UpdateFromValue(nil) {
		t.Fatalf("nil must be rejected")
	}
	if diff := cmp.Diff(paths, m.Paths()); diff != "" {
		t.Fatalf("paths changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids, idsByPath(m)); diff != "" {
		t.Fatalf("widgets changed (-want +got):\n%s", diff)
	}
	if got, _ := m.PropertyValue("data"); got != "keep" {
		t.Fatalf("data changed to %v", got)
	}

	if !m.UpdateFromValue(newMessage(t, "StringMsg", map[string]any{"data": "next"})) {
		t.Fatalf("same type update failed")
	}
	if got, _ := m.PropertyValue("data"); got != "next" {
		t.Fatalf("data: want next, got %v", got)
	}
}

func TestCollapseAndExpandReproducesElements(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Scalars", map[string]any{
		"values::0": 1.0,
		"values::1": 2.0,
		"values::2": 3.0,
	}))
	m.ToggleAll(true)
	before := valuesByPath(m)
	ids := idsByPath(m)

	values := container(t, m, "values")
	values.Toggle(false)
	values.Toggle(true)

	if diff := cmp.Diff(before, valuesByPath(m)); diff != "" {
		t.Fatalf("values changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ids, idsByPath(m)); diff != "" {
		t.Fatalf("widgets changed (-want +got):\n%s", diff)
	}
}

func TestShrinkRemovesOnlyTrailingElements(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Scalars", map[string]any{
		"values::0": 1.0,
		"values::1": 2.0,
		"values::2": 3.0,
		"counts::0": 5,
	}))
	m.ToggleAll(true)

	count := m.PropertyWidgetCount()
	ids := idsByPath(m)
	doomed, _ := m.PropertyWidgetByName("values::2")

	if !m.UpdateFromValue(newMessage(t, "Scalars", map[string]any{"values::0": 9.0, "counts::0": 5})) {
		t.Fatalf("update failed")
	}
	if got := m.PropertyWidgetCount(); got != count-2 {
		t.Fatalf("expected exactly two removals: before=%d after=%d", count, got)
	}
	for path, id := range idsByPath(m) {
		if ids[path] != id {
			t.Fatalf("%s was recreated", path)
		}
	}
	if got, _ := m.PropertyValue("values::0"); got != 9.0 {
		t.Fatalf("values::0: want 9, got %v", got)
	}

	if doomed.(*widgets.ScalarEditor).Destroyed() {
		t.Fatalf("destruction must be deferred")
	}
	if got := m.ProcessDeferred(); got != 2 {
		t.Fatalf("expected 2 deferred widgets, got %d", got)
	}
	if !doomed.(*widgets.ScalarEditor).Destroyed() {
		t.Fatalf("removed widget should be destroyed after processing")
	}
}

func TestFamilyPolicyAppliesToNewElements(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Plugin_V", map[string]any{"plugins::0::name": "a"}))

	if m.SetPropertyReadOnly("plugins::name", true) {
		t.Fatalf("no live widget should be affected yet")
	}
	if m.SetPropertyVisible("plugins::filename", false) {
		t.Fatalf("no live widget should be affected yet")
	}

	m.ToggleAll(true)
	if !m.PropertyReadOnly("plugins::0::name") || !m.PropertyVisible("plugins::0::innerxml") {
		t.Fatalf("existing element should inherit the family policy")
	}

	m.UpdateFromValue(newMessage(t, "Plugin_V", map[string]any{
		"plugins::0::name": "a",
		"plugins::1::name": "b",
	}))
	m.ToggleAll(true)

	if !m.PropertyReadOnly("plugins::1::name") {
		t.Fatalf("new element name should be read-only")
	}
	if m.PropertyReadOnly("plugins::1::innerxml") {
		t.Fatalf("policy must stay on its family")
	}
	if m.PropertyVisible("plugins::1::filename") {
		t.Fatalf("new element filename should be hidden")
	}

	if !m.SetPropertyVisible("plugins::filename", true) {
		t.Fatalf("live family members should be affected")
	}
	if !m.PropertyVisible("plugins::1::filename") || !m.PropertyVisible("plugins::0::filename") {
		t.Fatalf("family members should be visible again")
	}
}

func TestToggleAllReachesFixedPoint(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("StringMsg"))
	m.ToggleAll(true)

	want := []string{"data", "header", "header::stamp", "header::stamp::nsec", "header::stamp::sec"}
	if diff := cmp.Diff(want, m.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	for _, path := range want {
		if !m.PropertyVisible(path) {
			t.Fatalf("%s should be visible", path)
		}
	}

	m.ToggleAll(false)
	if m.PropertyVisible("header::stamp::sec") {
		t.Fatalf("leaves under collapsed containers are not visible")
	}
	if !m.PropertyVisible("header") {
		t.Fatalf("top-level containers stay visible")
	}
	if m.PropertyWidgetCount() != len(want) {
		t.Fatalf("collapsing must not remove widgets")
	}
}

func TestStaleCollapsedElementsDoNotLeak(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Scalars", map[string]any{
		"values::0": 1.0,
		"values::1": 2.0,
		"values::2": 3.0,
	}))
	m.ToggleAll(true)
	values := container(t, m, "values")
	values.Toggle(false)

	m.UpdateFromValue(newMessage(t, "Scalars", map[string]any{"values::0": 4.0}))

	current := m.CurrentValue()
	field, _ := current.Descriptor().FieldByName("values")
	if got := current.Len(field); got != 1 {
		t.Fatalf("stale elements leaked: len=%d", got)
	}
	if got := testsupport.Get(t, current, "values::0"); got != 4.0 {
		t.Fatalf("values::0: want 4, got %v", got)
	}

	values.Toggle(true)
	if _, ok := m.PropertyWidgetByName("values::1"); ok {
		t.Fatalf("stale elements should be removed once expanded")
	}
	if got, _ := m.PropertyValue("values::0"); got != 4.0 {
		t.Fatalf("values::0 should be refreshed on expansion, got %v", got)
	}
}

func TestSetPropertyValueOnStaleElementFails(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := msgwidget.New(newMessage(t, "Scalars", map[string]any{
		"values::0": 1.0,
		"values::1": 2.0,
		"values::2": 3.0,
	}), msgwidget.WithLogger(zap.New(core)))
	m.ToggleAll(true)
	container(t, m, "values").Toggle(false)

	m.UpdateFromValue(newMessage(t, "Scalars", map[string]any{"values::0": 4.0}))

	if m.SetPropertyValue("values::2", 9.0) {
		t.Fatalf("stale elements have no slot to write to")
	}
	if logs.FilterMessage("property not written back").Len() != 1 {
		t.Fatalf("expected a write-back warning")
	}
	current := m.CurrentValue()
	field, _ := current.Descriptor().FieldByName("values")
	if got := current.Len(field); got != 1 {
		t.Fatalf("stale edit leaked: len=%d", got)
	}
	if !m.SetPropertyValue("values::0", 5.0) {
		t.Fatalf("live elements stay writable under a collapsed container")
	}
	if got := testsupport.Get(t, m.CurrentValue(), "values::0"); got != 5.0 {
		t.Fatalf("values::0: want 5, got %v", got)
	}
}

func TestSetPropertyValueUnderCollapsedContainer(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("StringMsg"))
	m.ToggleAll(true)
	m.ToggleAll(false)

	if !m.SetPropertyValue("header::stamp::sec", 42) {
		t.Fatalf("set failed")
	}
	if got := testsupport.Get(t, m.CurrentValue(), "header::stamp::sec"); got != int64(42) {
		t.Fatalf("edit under a collapsed container was lost: %v", got)
	}

	m.ToggleAll(true)
	if got, _ := m.PropertyValue("header::stamp::sec"); got != int64(42) {
		t.Fatalf("re-expanding must keep the edit, got %v", got)
	}
}

func TestWholeTreeReadOnly(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("StringMsg"))

	if !m.SetPropertyReadOnly("data", false) {
		t.Fatalf("data should be affected")
	}
	m.SetReadOnly(true)
	if !m.PropertyReadOnly("header") || m.PropertyReadOnly("data") {
		t.Fatalf("pinned widgets keep their state")
	}
	if m.ReadOnly() {
		t.Fatalf("not every widget is read-only")
	}

	m.ToggleAll(true)
	stamp, _ := m.PropertyWidgetByName("header::stamp")
	if !stamp.ReadOnly() {
		t.Fatalf("new widgets inherit whole-tree read-only")
	}

	m.SetPropertyReadOnly("data", true)
	if !m.ReadOnly() {
		t.Fatalf("every widget is read-only now")
	}

	m.SetReadOnly(false)
	if m.PropertyReadOnly("header::stamp::sec") {
		t.Fatalf("whole-tree read-only should be lifted")
	}
	if !m.PropertyReadOnly("data") {
		t.Fatalf("pinned widgets keep their state")
	}
}

func TestUserEditsNotifyAndWriteBack(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("StringMsg"))

	type change struct {
		Path  string
		Value any
	}
	var changes []change
	m.OnValueChanged(func(path string, value any) {
		changes = append(changes, change{Path: path, Value: value})
	})

	w, _ := m.PropertyWidgetByName("data")
	editor := w.(*widgets.ScalarEditor)
	if !editor.Input("typed") {
		t.Fatalf("input rejected")
	}
	if diff := cmp.Diff([]change{{Path: "data", Value: "typed"}}, changes); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	if got := testsupport.Get(t, m.CurrentValue(), "data"); got != "typed" {
		t.Fatalf("edit not written back: %v", got)
	}

	m.SetPropertyReadOnly("data", true)
	if editor.Input("again") {
		t.Fatalf("read-only editors reject input")
	}
}

func TestCompositeProperties(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("Visual"))

	pose := widgets.Pose{Position: widgets.Vector3{X: 1, Y: 2, Z: 3}, Orientation: widgets.Quaternion{W: 1}}
	if !m.SetPropertyValue("pose", pose) {
		t.Fatalf("set pose failed")
	}
	if m.SetPropertyValue("pose", "not a pose") {
		t.Fatalf("pose editor must reject other types")
	}
	current := m.CurrentValue()
	if got := testsupport.Get(t, current, "pose::position::y"); got != 2.0 {
		t.Fatalf("pose.position.y: want 2, got %v", got)
	}
	if got := testsupport.Get(t, current, "pose::orientation::w"); got != 1.0 {
		t.Fatalf("pose.orientation.w: want 1, got %v", got)
	}
}

func TestLookalikeCompositeNamesKeepTheirFields(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Theme", map[string]any{"accent::hex": "#000000"}))
	m.ToggleAll(true)

	if diff := cmp.Diff([]string{"accent", "accent::hex", "name"}, m.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if w, _ := m.PropertyWidgetByName("accent"); w.Kind() != widgets.KindContainer {
		t.Fatalf("accent should be a container, got %s", w.Kind())
	}
	if !m.SetPropertyValue("accent::hex", "#ff8800") {
		t.Fatalf("set accent::hex failed")
	}
	if got := testsupport.Get(t, m.CurrentValue(), "accent::hex"); got != "#ff8800" {
		t.Fatalf("accent::hex: want #ff8800, got %v", got)
	}
}

func TestAddressingErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := msgwidget.New(testsupport.MustMessage("StringMsg"), msgwidget.WithLogger(zap.New(core)))

	if m.SetPropertyValue("missing", 1) {
		t.Fatalf("missing paths report false")
	}
	if m.SetPropertyValue("header", "x") {
		t.Fatalf("containers hold no value")
	}
	if _, ok := m.PropertyValue("missing"); ok {
		t.Fatalf("missing paths have no value")
	}
	if m.PropertyVisible("missing") || m.PropertyReadOnly("missing") {
		t.Fatalf("missing paths report false")
	}
	if logs.FilterMessage("no property widget").Len() != 4 {
		t.Fatalf("expected one warning per lookup, got %d", logs.FilterMessage("no property widget").Len())
	}
}

func TestNilValue(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	m := msgwidget.New(nil, msgwidget.WithLogger(zap.New(core)))

	if m.Valid() {
		t.Fatalf("nil value must be invalid")
	}
	if m.UpdateFromValue(testsupport.MustMessage("StringMsg")) {
		t.Fatalf("an invalid widget cannot be updated")
	}
	if m.CurrentValue() != nil {
		t.Fatalf("an invalid widget has no value")
	}
	if logs.FilterMessage("null message").Len() != 1 {
		t.Fatalf("expected a null message error")
	}

	var nilWidget *msgwidget.MessageWidget
	if nilWidget.Valid() || nilWidget.PropertyWidgetCount() != 0 || nilWidget.SetPropertyValue("x", 1) {
		t.Fatalf("nil widget should be inert")
	}
}

func TestTopicURIs(t *testing.T) {
	m := msgwidget.New(testsupport.MustMessage("StringMsg"), msgwidget.WithTopic("/chatter"))
	m.ToggleAll(true)

	sec, _ := m.PropertyWidgetByName("header::stamp::sec")
	if got := sec.URI(); got != "/chatter?p=/header/stamp/sec" {
		t.Fatalf("uri: got %q", got)
	}

	m.SetTopic("/other")
	data, _ := m.PropertyWidgetByName("data")
	if got := data.URI(); got != "/other?p=/data" {
		t.Fatalf("uri after topic change: got %q", got)
	}
	if m.Topic() != "/other" {
		t.Fatalf("topic: got %q", m.Topic())
	}
}

func TestWithReadOnlyAndSnapshot(t *testing.T) {
	m := msgwidget.New(
		newMessage(t, "Example", map[string]any{"x": 1.0, "child::y": "a"}),
		msgwidget.WithReadOnly(true),
	)
	m.ToggleAll(true)
	if !m.ReadOnly() {
		t.Fatalf("every widget should start read-only")
	}

	snap := m.Snapshot()
	if snap.Label != "test.msgs.Example" || len(snap.Children) != 2 {
		t.Fatalf("unexpected root: %+v", snap)
	}
	node, ok := snap.Find("child::y")
	if !ok || node.Value != "a" || !node.ReadOnly {
		t.Fatalf("child::y node mismatch: %+v", node)
	}
}

func TestCurrentValueIsIndependentCopy(t *testing.T) {
	m := msgwidget.New(newMessage(t, "Example", map[string]any{"x": 1.0}))
	first := m.CurrentValue()
	if err := testsupport.Set(first, "x", 5.0); err != nil {
		t.Fatalf("set: %v", err)
	}
	second := m.CurrentValue()
	if got := testsupport.Get(t, second, "x"); got != 1.0 {
		t.Fatalf("returned values must not alias the engine copy, got %v", got)
	}
}
