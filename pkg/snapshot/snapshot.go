// Package snapshot captures the materialized widget tree as plain data so it
// can be printed, rendered to HTML or compared in tests.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-msgform/pkg/registry"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// Node is one widget of the tree. Containers carry Children; editors carry
// Value and, for enums, Options.
type Node struct {
	Path     string       `json:"path,omitempty" yaml:"path,omitempty"`
	Label    string       `json:"label" yaml:"label"`
	Kind     widgets.Kind `json:"kind" yaml:"kind"`
	URI      string       `json:"uri,omitempty" yaml:"uri,omitempty"`
	Value    any          `json:"value,omitempty" yaml:"value,omitempty"`
	Options  []string     `json:"options,omitempty" yaml:"options,omitempty"`
	ReadOnly bool         `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Hidden   bool         `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Expanded bool         `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Children []Node       `json:"children,omitempty" yaml:"children,omitempty"`
}

// Format selects the encoding used by Encode.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("snapshot: unsupported format %q", raw)
	}
}

type optioner interface {
	Options() []string
}

// Build walks root in child order. Paths are resolved through reg; widgets
// that are attached but not registered keep an empty path.
func Build(root widgets.Container, reg *registry.Registry) Node {
	paths := make(map[widgets.Widget]string, reg.Count())
	reg.Range(func(path string, w widgets.Widget) bool {
		paths[w] = path
		return true
	})
	if root == nil {
		return Node{}
	}
	return build(root, paths)
}

func build(w widgets.Widget, paths map[widgets.Widget]string) Node {
	node := Node{
		Path:     paths[w],
		Label:    w.Label(),
		Kind:     w.Kind(),
		URI:      w.URI(),
		ReadOnly: w.ReadOnly(),
		Hidden:   !w.Visible(),
	}
	if editor, ok := w.(widgets.Editor); ok {
		node.Value = editor.Value()
		if opts, ok := w.(optioner); ok {
			node.Options = opts.Options()
		}
	}
	if container, ok := w.(widgets.Container); ok {
		node.Expanded = container.IsExpanded()
		for _, child := range container.Children() {
			node.Children = append(node.Children, build(child, paths))
		}
	}
	return node
}

// Find returns the node registered at path.
func (n Node) Find(path string) (Node, bool) {
	if n.Path == path && path != "" {
		return n, true
	}
	for _, child := range n.Children {
		if found, ok := child.Find(path); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n Node) Walk(fn func(node Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n Node) walk(fn func(node Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Encode writes n to w.
func Encode(w io.Writer, n Node, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("snapshot: encode json: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("snapshot: encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("snapshot: unsupported format %q", format)
	}
}

// Marshal returns the encoded form of n.
func Marshal(n Node, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, n, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
