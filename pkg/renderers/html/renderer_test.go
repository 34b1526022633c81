package html

import (
	"bytes"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-msgform/pkg/msgwidget"
	"github.com/goliatone/go-msgform/pkg/snapshot"
	"github.com/goliatone/go-msgform/pkg/testsupport"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

func visualSnapshot(t *testing.T) snapshot.Node {
	t.Helper()
	msg := testsupport.MustMessage("Visual")
	testsupport.MustSet(t, msg, map[string]any{
		"name":                     "<b>arm</b><script>alert(1)</script>",
		"pose::position::x":        1.0,
		"pose::position::y":        2.0,
		"pose::position::z":        3.0,
		"pose::orientation::w":     1.0,
		"waypoints::0::x":          0.5,
		"geometry::type":           "SPHERE",
		"geometry::sphere::radius": 2.0,
	})

	m := msgwidget.New(msg)
	m.ToggleAll(true)
	m.SetPropertyVisible("ambient", false)
	m.SetPropertyReadOnly("name", true)
	return m.Snapshot()
}

func render(t *testing.T, root snapshot.Node, opts ...Option) string {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, root); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestRenderSnapshot(t *testing.T) {
	out := render(t, visualSnapshot(t))

	for _, want := range []string{
		`<h2 class="msgform__title">test.msgs.Visual</h2>`,
		`data-path="pose"`,
		`position (1, 2, 3) orientation (0, 0, 0, 1)`,
		`sphere r=2`,
		`data-path="waypoints" data-uri="waypoints" style="padding-left: 0.00rem" data-expanded="true"`,
		`data-path="waypoints::0" data-uri="waypoints/0" style="padding-left: 1.25rem"`,
		`(0.5, 0, 0)`,
		`data-readonly="true">arm</output>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>") || strings.Contains(out, "alert") {
		t.Fatalf("markup from message data must be stripped:\n%s", out)
	}
	if !strings.Contains(out, `data-path="ambient" data-uri="ambient" style="padding-left: 0.00rem" hidden>`) {
		t.Fatalf("hidden widgets should carry the hidden attribute:\n%s", out)
	}
}

func TestRenderWithTheme(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
		Assets: theme.Assets{
			Prefix: "/assets/acme/",
			Files:  map[string]string{StylesheetAsset: "msgform.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}

	out := render(t, visualSnapshot(t), WithTheme(ThemeFromManifest(manifest, "dark")), WithTitle("Visual editor"))

	for _, want := range []string{
		`data-theme="acme" data-variant="dark" style="--brand: #654321; --radius: 4px"`,
		`<link rel="stylesheet" href="/assets/acme/msgform.css">`,
		`<h2 class="msgform__title">Visual editor</h2>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestThemeFromSelection(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "custom",
		Variant: "light",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#fff"},
		},
	}
	cfg := ThemeFromSelection(selection)
	if cfg.Theme != "custom" || cfg.Variant != "light" {
		t.Fatalf("unexpected theme %q/%q", cfg.Theme, cfg.Variant)
	}
	if cfg.CSSVars["--brand"] != "#fff" {
		t.Fatalf("css vars not derived from tokens: %v", cfg.CSSVars)
	}
	if cfg.AssetURL(StylesheetAsset) != "" {
		t.Fatalf("missing assets should resolve to an empty URL")
	}
	if ThemeFromSelection(nil) != nil {
		t.Fatalf("nil selection should yield no theme")
	}
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "float", value: 0.25, want: "0.25"},
		{name: "float32", value: float32(1.5), want: "1.5"},
		{name: "color", value: widgets.Color{R: 1, A: 0.5}, want: "rgba(1, 0, 0, 0.5)"},
		{name: "box", value: widgets.Geometry{Type: "BOX", Size: widgets.Vector3{X: 1, Y: 2, Z: 3}}, want: "box (1, 2, 3)"},
		{name: "cylinder", value: widgets.Geometry{Type: "CYLINDER", Radius: 1, Length: 4}, want: "cylinder r=1 l=4"},
		{name: "bool", value: true, want: "true"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := formatValue(tc.value); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRenderInlineTemplate(t *testing.T) {
	tpl := `<p>{{ title|sanitize|safe }}</p>{% for row in rows %}{% if not row.Hidden %}[{{ row.Path }}]{% endif %}{% endfor %}{{ theme.Name }}`
	manifest := &theme.Manifest{Name: "acme"}

	out := render(t, visualSnapshot(t),
		WithTemplate(tpl),
		WithTitle("<i>Visual</i> editor"),
		WithTheme(ThemeFromManifest(manifest, "")))

	if !strings.HasPrefix(out, "<p>Visual editor</p>[name][pose][geometry]") {
		t.Fatalf("unexpected inline output:\n%s", out)
	}
	if strings.Contains(out, "[ambient]") {
		t.Fatalf("hidden rows should be filtered by the template:\n%s", out)
	}
	if !strings.HasSuffix(out, "acme") {
		t.Fatalf("theme should be visible to inline templates:\n%s", out)
	}
}
