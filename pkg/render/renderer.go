package render

import (
	"io"

	"github.com/goliatone/go-msgform/pkg/snapshot"
)

// Renderer writes a widget tree snapshot in one output format.
type Renderer interface {
	Name() string
	ContentType() string
	Render(w io.Writer, root snapshot.Node) error
}

type encoder struct {
	format      snapshot.Format
	contentType string
}

// YAML returns the renderer emitting snapshots as YAML documents.
func YAML() Renderer {
	return encoder{format: snapshot.FormatYAML, contentType: "application/yaml"}
}

// JSON returns the renderer emitting snapshots as indented JSON.
func JSON() Renderer {
	return encoder{format: snapshot.FormatJSON, contentType: "application/json"}
}

func (e encoder) Name() string        { return string(e.format) }
func (e encoder) ContentType() string { return e.contentType }

func (e encoder) Render(w io.Writer, root snapshot.Node) error {
	return snapshot.Encode(w, root, e.format)
}
