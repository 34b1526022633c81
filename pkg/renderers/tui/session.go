package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/msgwidget"
	"github.com/goliatone/go-msgform/pkg/schema"
	"github.com/goliatone/go-msgform/pkg/snapshot"
	"github.com/goliatone/go-msgform/pkg/widgets"
)

// Menu actions listed after the properties.
const (
	ActionExpandAll   = "Expand all"
	ActionCollapseAll = "Collapse all"
	ActionDone        = "Done"
)

// Session edits a MessageWidget from the terminal. Every visible property is
// listed in a menu; picking a container toggles it, picking an editor prompts
// for a new value which is applied as a user edit.
type Session struct {
	widget   *msgwidget.MessageWidget
	driver   PromptDriver
	theme    Theme
	pageSize int
	logger   *zap.Logger
}

// inputEditor is an editor accepting user input. Input fires the editor's
// change listeners, unlike SetValue.
type inputEditor interface {
	widgets.Editor
	Input(v any) bool
}

type entry struct {
	path  string
	depth int
	node  snapshot.Node
}

// New returns a session over m using the survey driver unless overridden.
func New(m *msgwidget.MessageWidget, opts ...Option) *Session {
	s := &Session{
		widget:   m,
		pageSize: 15,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s
}

// Run shows the property menu until the user picks Done. Edits are applied
// as they are entered; read the result with MessageWidget.CurrentValue.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if !s.widget.Valid() {
		return ErrInvalidWidget
	}

	last := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries := s.entries()
		options := make([]string, 0, len(entries)+3)
		for _, e := range entries {
			options = append(options, describe(e))
		}
		options = append(options, ActionExpandAll, ActionCollapseAll, ActionDone)

		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      s.theme.PromptPrefix + s.widget.TypeName(),
			Options:      options,
			DefaultIndex: last,
			PageSize:     s.pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			if err := s.errorf(ctx, "invalid selection"); err != nil {
				return err
			}
			continue
		}
		last = idx

		if idx < len(entries) {
			if err := s.activate(ctx, entries[idx]); err != nil {
				return err
			}
			s.widget.ProcessDeferred()
			continue
		}
		switch options[idx] {
		case ActionExpandAll:
			s.widget.ToggleAll(true)
		case ActionCollapseAll:
			s.widget.ToggleAll(false)
		case ActionDone:
			s.widget.ProcessDeferred()
			return nil
		}
		s.widget.ProcessDeferred()
	}
}

// entries lists visible widgets depth first, descending only into expanded
// containers.
func (s *Session) entries() []entry {
	root := s.widget.Snapshot()
	var out []entry
	for _, child := range root.Children {
		child.Walk(func(node snapshot.Node, depth int) bool {
			if node.Hidden {
				return false
			}
			if node.Path != "" {
				out = append(out, entry{path: node.Path, depth: depth, node: node})
			}
			return node.Expanded
		})
	}
	return out
}

func (s *Session) activate(ctx context.Context, e entry) error {
	w, ok := s.widget.PropertyWidgetByName(e.path)
	if !ok {
		return s.errorf(ctx, "%s is no longer available", e.path)
	}
	if container, ok := w.(widgets.Container); ok {
		container.Toggle(!container.IsExpanded())
		return nil
	}
	if s.widget.PropertyReadOnly(e.path) {
		return s.infof(ctx, "%s is read-only", e.path)
	}
	editor, ok := w.(inputEditor)
	if !ok {
		return s.infof(ctx, "%s cannot be edited", e.path)
	}
	return s.edit(ctx, e.path, editor)
}

// edit prompts until the editor accepts a value.
func (s *Session) edit(ctx context.Context, path string, editor inputEditor) error {
	for {
		value, err := s.prompt(ctx, path, editor)
		if err != nil {
			var invalid *invalidInputError
			if errors.As(err, &invalid) {
				if err := s.errorf(ctx, "Invalid %s: %v", path, invalid.err); err != nil {
					return err
				}
				continue
			}
			return err
		}
		if !editor.Input(value) {
			if err := s.errorf(ctx, "Invalid %s: value rejected", path); err != nil {
				return err
			}
			continue
		}
		s.logger.Debug("property edited", zap.String("path", path), zap.Any("value", editor.Value()))
		return nil
	}
}

func (s *Session) prompt(ctx context.Context, path string, editor inputEditor) (any, error) {
	current := editor.Value()
	switch editor.Kind() {
	case widgets.KindBool:
		value, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: path, Default: value})
	case widgets.KindEnum:
		return s.promptEnum(ctx, path, editor)
	case widgets.KindNumber:
		kind := schema.KindDouble
		if scalar, ok := editor.(interface{ ScalarKind() schema.Kind }); ok {
			kind = scalar.ScalarKind()
		}
		parse := func(text string) (any, error) {
			return schema.Coerce(kind, strings.TrimSpace(text))
		}
		return s.promptParsed(ctx, path, fmt.Sprint(current), "", parse)
	case widgets.KindString:
		text, _ := current.(string)
		if strings.Contains(text, "\n") {
			return s.driver.TextArea(ctx, TextAreaConfig{Message: path, Default: text})
		}
		return s.driver.Input(ctx, InputConfig{Message: path, Default: text})
	case widgets.KindVector3:
		v, _ := current.(widgets.Vector3)
		return s.promptParsed(ctx, path, formatVector(v), "x, y, z", parseVector)
	case widgets.KindPose:
		p, _ := current.(widgets.Pose)
		return s.promptParsed(ctx, path, formatPose(p), "x, y, z, qx, qy, qz, qw", parsePose)
	case widgets.KindColor:
		c, _ := current.(widgets.Color)
		return s.promptParsed(ctx, path, formatColor(c), "r, g, b, a in [0, 1]", parseColor)
	case widgets.KindGeometry:
		g, _ := current.(widgets.Geometry)
		return s.promptGeometry(ctx, path, g)
	default:
		return nil, fmt.Errorf("tui: no prompt for %s widgets", editor.Kind())
	}
}

func (s *Session) promptEnum(ctx context.Context, path string, editor inputEditor) (any, error) {
	var options []string
	if enum, ok := editor.(interface{ Options() []string }); ok {
		options = enum.Options()
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("tui: %s has no options", path)
	}
	current, _ := editor.Value().(string)
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      path,
		Options:      options,
		DefaultIndex: indexOf(options, current),
		PageSize:     s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, &invalidInputError{err: errors.New("unknown option")}
	}
	return options[idx], nil
}

func (s *Session) promptGeometry(ctx context.Context, path string, current widgets.Geometry) (any, error) {
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      path,
		Options:      geometryTypes,
		DefaultIndex: indexOf(geometryTypes, current.Type),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(geometryTypes) {
		return nil, &invalidInputError{err: errors.New("unknown geometry type")}
	}
	kind := geometryTypes[idx]
	if kind != current.Type {
		current = widgets.Geometry{Type: kind}
	}
	return s.promptParsed(ctx, path+" "+strings.ToLower(kind), formatGeometry(current), geometryHelp[kind],
		func(text string) (any, error) { return parseGeometry(kind, text) })
}

// promptParsed asks for text and parses it. Parse failures are reported as
// invalid input so edit asks again.
func (s *Session) promptParsed(ctx context.Context, path, current, help string, parse func(string) (any, error)) (any, error) {
	text, err := s.driver.Input(ctx, InputConfig{
		Message: path,
		Default: current,
		Help:    help,
		Validator: func(text string) error {
			_, err := parse(text)
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	value, err := parse(text)
	if err != nil {
		return nil, &invalidInputError{err: err}
	}
	return value, nil
}

func (s *Session) infof(ctx context.Context, format string, args ...any) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+fmt.Sprintf(format, args...))
}

func (s *Session) errorf(ctx context.Context, format string, args ...any) error {
	return s.driver.Info(ctx, s.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

type invalidInputError struct {
	err error
}

func (e *invalidInputError) Error() string {
	return e.err.Error()
}

func (e *invalidInputError) Unwrap() error {
	return e.err
}

// describe renders one menu line: indentation, an expansion marker for
// containers, the path and the current value.
func describe(e entry) string {
	indent := strings.Repeat("  ", e.depth)
	var b strings.Builder
	b.WriteString(indent)
	if e.node.Kind == widgets.KindContainer {
		if e.node.Expanded {
			b.WriteString("[-] ")
		} else {
			b.WriteString("[+] ")
		}
		b.WriteString(e.path)
		return b.String()
	}
	b.WriteString(e.path)
	b.WriteString(" = ")
	b.WriteString(formatValue(e.node.Value))
	if e.node.ReadOnly {
		b.WriteString(" (read-only)")
	}
	return b.String()
}
