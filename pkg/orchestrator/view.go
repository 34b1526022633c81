package orchestrator

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/msgwidget"
)

// View is the initial presentation applied to a bound message.
type View struct {
	// Topic prefixes property URIs.
	Topic string
	// ExpandAll expands every container once the policy is applied.
	ExpandAll bool
	// ReadOnly makes the whole tree read-only.
	ReadOnly bool
	// Hidden lists paths or family names to hide.
	Hidden []string
	// Locked lists paths or family names to make read-only.
	Locked []string
	// PlainComposites walks poses, vectors, colors and geometries field by
	// field instead of using their single-widget editors.
	PlainComposites bool
}

func (v View) options(logger *zap.Logger) []msgwidget.Option {
	opts := []msgwidget.Option{
		msgwidget.WithLogger(logger),
		msgwidget.WithTopic(v.Topic),
		msgwidget.WithReadOnly(v.ReadOnly),
	}
	if v.PlainComposites {
		opts = append(opts, msgwidget.WithoutDefaultComposites())
	}
	return opts
}

// Apply records the hidden and locked entries on m and expands it when asked.
// Entries are recorded even when no widget matches yet, so they apply once
// the matching widgets materialize.
func (v View) Apply(m *msgwidget.MessageWidget) {
	for _, path := range v.Hidden {
		m.SetPropertyVisible(path, false)
	}
	for _, path := range v.Locked {
		m.SetPropertyReadOnly(path, true)
	}
	if v.ExpandAll {
		m.ToggleAll(true)
	}
}
