package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/internal/config"
	"github.com/goliatone/go-msgform/internal/loader"
	"github.com/goliatone/go-msgform/internal/logger"
	"github.com/goliatone/go-msgform/pkg/orchestrator"
	"github.com/goliatone/go-msgform/pkg/renderers/tui"
)

// app holds the flags and resources shared by every subcommand.
type app struct {
	configDir     string
	descriptorSet string
	openapiDoc    string
	typeName      string
	schemaName    string
	value         string
	allowHTTP     bool
	timeout       time.Duration

	topic     string
	expandAll bool
	readOnly  bool
	hidden    []string
	locked    []string
	plain     bool

	in     io.Reader
	out    io.Writer
	driver tui.PromptDriver

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(in io.Reader, out io.Writer, opts ...func(*app)) *cobra.Command {
	a := &app{in: in, out: out, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "msgform",
		Short: "Property editor for schema-described messages",
		Long: `msgform binds a protobuf message or an OpenAPI object to a tree of
property widgets. Containers expand on demand and edits are written back
into the message.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", ".", "directory holding msgform.yaml and .env")
	flags.StringVar(&a.descriptorSet, "descriptor-set", "", "binary FileDescriptorSet (path or URL)")
	flags.StringVar(&a.typeName, "type", "", "full protobuf message name")
	flags.StringVar(&a.openapiDoc, "openapi", "", "OpenAPI 3 document (path or URL)")
	flags.StringVar(&a.schemaName, "schema", "", "component schema name in the OpenAPI document")
	flags.StringVar(&a.value, "value", "", "initial value: protojson for protobuf, JSON or YAML for OpenAPI")
	flags.BoolVar(&a.allowHTTP, "allow-http", false, "allow http(s) locations")
	flags.DurationVar(&a.timeout, "timeout", 10*time.Second, "timeout for http(s) locations")
	flags.StringVar(&a.topic, "topic", "", "topic used in property URIs")
	flags.BoolVar(&a.expandAll, "expand-all", false, "expand every container")
	flags.BoolVar(&a.readOnly, "read-only", false, "make the whole tree read-only")
	flags.StringSliceVar(&a.hidden, "hide", nil, "paths or families to hide")
	flags.StringSliceVar(&a.locked, "lock", nil, "paths or families to make read-only")
	flags.BoolVar(&a.plain, "plain-composites", false, "edit poses, vectors, colors and geometries field by field")

	root.AddCommand(newInspectCmd(a), newEditCmd(a), newWatchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = log
	return nil
}

// view merges the configured view with the flags given on the command line.
func (a *app) view(cmd *cobra.Command) orchestrator.View {
	v := orchestrator.View{}
	if a.cfg != nil {
		v = orchestrator.View{
			Topic:           a.cfg.View.Topic,
			ExpandAll:       a.cfg.View.ExpandAll,
			ReadOnly:        a.cfg.View.ReadOnly,
			Hidden:          a.cfg.View.Hidden,
			Locked:          a.cfg.View.Locked,
			PlainComposites: !a.cfg.View.Composites,
		}
	}
	flags := cmd.Flags()
	if flags.Changed("topic") {
		v.Topic = a.topic
	}
	if flags.Changed("expand-all") {
		v.ExpandAll = a.expandAll
	}
	if flags.Changed("read-only") {
		v.ReadOnly = a.readOnly
	}
	if flags.Changed("plain-composites") {
		v.PlainComposites = a.plain
	}
	v.Hidden = append(append([]string(nil), v.Hidden...), a.hidden...)
	v.Locked = append(append([]string(nil), v.Locked...), a.locked...)
	return v
}

func (a *app) loader() *loader.Loader {
	opts := []loader.Option{loader.WithLogger(a.logger)}
	if a.allowHTTP {
		opts = append(opts, loader.WithHTTPFallback(a.timeout))
	}
	return loader.New(opts...)
}

func (a *app) request(cmd *cobra.Command) (orchestrator.Request, error) {
	req := orchestrator.Request{View: a.view(cmd)}

	var location string
	switch {
	case a.descriptorSet != "" && a.openapiDoc != "":
		return req, errors.New("use either --descriptor-set or --openapi")
	case a.descriptorSet != "":
		req.Format = orchestrator.FormatProtobuf
		req.Type = a.typeName
		location = a.descriptorSet
	case a.openapiDoc != "":
		req.Format = orchestrator.FormatOpenAPI
		req.Type = a.schemaName
		if req.Type == "" {
			req.Type = a.typeName
		}
		location = a.openapiDoc
	default:
		return req, errors.New("a schema is required: pass --descriptor-set or --openapi")
	}

	src, err := loader.Locate(location)
	if err != nil {
		return req, err
	}
	req.Schema = src
	if a.value != "" {
		if req.Value, err = loader.Locate(a.value); err != nil {
			return req, err
		}
	}
	return req, nil
}

// open binds the requested message.
func (a *app) open(ctx context.Context, cmd *cobra.Command) (*orchestrator.Binding, error) {
	req, err := a.request(cmd)
	if err != nil {
		return nil, err
	}
	orch := orchestrator.New(
		orchestrator.WithLoader(a.loader()),
		orchestrator.WithLogger(a.logger),
	)
	return orch.Open(ctx, req)
}
