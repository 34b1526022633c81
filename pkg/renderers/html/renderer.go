package html

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-msgform/pkg/render/template"
	"github.com/goliatone/go-msgform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-msgform/pkg/snapshot"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

//go:embed templates/*.tpl
var embedded embed.FS

const snapshotTemplate = "snapshot"

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Option configures the renderer.
type Option func(*Renderer)

// WithEngine replaces the embedded templates. The engine must provide a
// "snapshot" template.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTheme sets the theme tokens and assets.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithTemplate renders content, a pongo2 template, instead of the embedded
// snapshot template. It sees the same title, rows and theme variables.
func WithTemplate(content string) Option {
	return func(r *Renderer) {
		r.inline = content
	}
}

// WithTitle overrides the heading, which defaults to the root label.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = title
	}
}

// Renderer turns snapshots into HTML.
type Renderer struct {
	engine template.TemplateRenderer
	theme  *theme.RendererConfig
	title  string
	inline string
}

// New builds a renderer over the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		templates, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: load templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(templates))
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		r.engine = engine
	}
	if err := r.engine.RegisterFilter("sanitize", sanitizeFilter); err != nil && !errors.Is(err, gotemplate.ErrFilterExists) {
		return nil, fmt.Errorf("html: %w", err)
	}
	if err := r.engine.GlobalContext(map[string]any{"theme": newThemeView(r.theme)}); err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the media type produced by Render.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes root as an HTML fragment.
func (r *Renderer) Render(w io.Writer, root snapshot.Node) error {
	if r == nil || r.engine == nil {
		return errors.New("html: renderer is nil")
	}
	title := r.title
	if title == "" {
		title = root.Label
	}
	data := map[string]any{
		"title": title,
		"rows":  rows(root),
	}
	var err error
	if r.inline != "" {
		_, err = r.engine.RenderString(r.inline, data, w)
	} else {
		_, err = r.engine.RenderTemplate(snapshotTemplate, data, w)
	}
	if err != nil {
		return fmt.Errorf("html: render snapshot: %w", err)
	}
	return nil
}

// row is one flattened widget. Label and Value are already sanitized.
type row struct {
	Depth        int
	Path         string
	URI          string
	Kind         string
	Label        string
	Value        string
	Options      []string
	ReadOnly     bool
	Hidden       bool
	Container    bool
	ExpandedAttr string
}

// rows flattens the tree below root. Children of hidden nodes are skipped.
func rows(root snapshot.Node) []row {
	var out []row
	for _, child := range root.Children {
		child.Walk(func(node snapshot.Node, depth int) bool {
			r := row{
				Depth:     depth,
				Path:      node.Path,
				URI:       node.URI,
				Kind:      string(node.Kind),
				Label:     sanitize(node.Label),
				ReadOnly:  node.ReadOnly,
				Hidden:    node.Hidden,
				Container: node.Kind == widgets.KindContainer,
				Options:   node.Options,
			}
			if r.Container {
				r.ExpandedAttr = strconv.FormatBool(node.Expanded)
			} else {
				r.Value = sanitize(formatValue(node.Value))
			}
			out = append(out, r)
			return !node.Hidden
		})
	}
	return out
}

func sanitizeFilter(input any, _ any) (any, error) {
	if input == nil {
		return "", nil
	}
	return sanitize(fmt.Sprint(input)), nil
}

func sanitize(text string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(text))
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case widgets.Vector3:
		return formatVector(v)
	case widgets.Pose:
		q := v.Orientation
		return fmt.Sprintf("position %s orientation (%s, %s, %s, %s)",
			formatVector(v.Position), num(q.X), num(q.Y), num(q.Z), num(q.W))
	case widgets.Color:
		return fmt.Sprintf("rgba(%s, %s, %s, %s)", num(v.R), num(v.G), num(v.B), num(v.A))
	case widgets.Geometry:
		return formatGeometry(v)
	case float64:
		return num(v)
	case float32:
		return num(float64(v))
	default:
		return fmt.Sprint(v)
	}
}

func formatVector(v widgets.Vector3) string {
	return fmt.Sprintf("(%s, %s, %s)", num(v.X), num(v.Y), num(v.Z))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatGeometry(g widgets.Geometry) string {
	switch g.Type {
	case "BOX":
		return "box " + formatVector(g.Size)
	case "CYLINDER":
		return fmt.Sprintf("cylinder r=%s l=%s", num(g.Radius), num(g.Length))
	case "SPHERE":
		return "sphere r=" + num(g.Radius)
	case "":
		return ""
	default:
		return strings.ToLower(g.Type)
	}
}
