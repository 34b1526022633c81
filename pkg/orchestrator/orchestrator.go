package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/internal/loader"
	"github.com/goliatone/go-msgform/pkg/msgwidget"
	"github.com/goliatone/go-msgform/pkg/schema"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the document loader.
func WithLoader(l *loader.Loader) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithAdapter registers an additional schema adapter.
func WithAdapter(adapter Adapter) Option {
	return func(o *Orchestrator) {
		o.extra = append(o.extra, adapter)
	}
}

// WithDefaultFormat names the adapter used when detection finds nothing.
func WithDefaultFormat(name string) Option {
	return func(o *Orchestrator) {
		o.defaultFormat = name
	}
}

// WithLogger sets the logger handed to the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from schema document to a bound
// MessageWidget. The protobuf and OpenAPI adapters are registered by default.
type Orchestrator struct {
	loader        *loader.Loader
	adapters      *AdapterRegistry
	extra         []Adapter
	defaultFormat string
	logger        *zap.Logger
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.loader == nil {
		o.loader = loader.New(loader.WithLogger(o.logger))
	}
	o.adapters = NewAdapterRegistry()
	o.adapters.MustRegister(ProtobufAdapter{})
	o.adapters.MustRegister(OpenAPIAdapter{})
	for _, adapter := range o.extra {
		if err := o.adapters.Register(adapter); err != nil && o.initialiseErr == nil {
			o.initialiseErr = err
		}
	}
	return o
}

// Adapters exposes the adapter registry.
func (o *Orchestrator) Adapters() *AdapterRegistry {
	return o.adapters
}

// Request describes the inputs required to bind a message.
type Request struct {
	// Format names the adapter. Empty means detect it from the schema
	// document.
	Format string

	// Schema identifies where the schema document lives. Optional when
	// SchemaDocument is supplied.
	Schema schema.Source

	// SchemaDocument bypasses the loader.
	SchemaDocument *schema.Document

	// Type is the message type (protobuf full name) or component name
	// (OpenAPI).
	Type string

	// Value optionally locates the initial value. ValueData takes precedence
	// when both are set.
	Value     schema.Source
	ValueData []byte

	// View is applied to the widget before it is returned.
	View View
}

// Binding is a bound message: the engine plus the codec of its type.
type Binding struct {
	Widget *msgwidget.MessageWidget
	Format string
	codec  Codec
}

// Decode parses data into a new value of the bound type.
func (b *Binding) Decode(data []byte) (schema.Value, error) {
	return b.codec.Decode(data)
}

// Encode serialises v in the adapter's wire format.
func (b *Binding) Encode(v schema.Value) ([]byte, error) {
	return b.codec.Encode(v)
}

// Current encodes the widget's current value.
func (b *Binding) Current() ([]byte, error) {
	current := b.Widget.CurrentValue()
	if current == nil {
		return nil, errors.New("orchestrator: widget holds no value")
	}
	return b.codec.Encode(current)
}

// Open executes the loader → adapter → engine sequence.
func (o *Orchestrator) Open(ctx context.Context, req Request) (*Binding, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Type) == "" {
		return nil, errors.New("orchestrator: type is required")
	}

	doc, err := o.schemaDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	adapter, err := o.resolveAdapter(req.Format, doc)
	if err != nil {
		return nil, err
	}
	codec, err := adapter.Bind(ctx, doc, req.Type)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: bind %s: %w", req.Type, err)
	}

	value, err := o.initialValue(ctx, req, codec)
	if err != nil {
		return nil, err
	}

	widget := msgwidget.New(value, req.View.options(o.logger)...)
	if !widget.Valid() {
		return nil, fmt.Errorf("orchestrator: %s could not be bound", req.Type)
	}
	req.View.Apply(widget)

	o.logger.Debug("message bound",
		zap.String("format", adapter.Name()),
		zap.String("type", widget.TypeName()),
		zap.Int("widgets", widget.PropertyWidgetCount()),
	)
	return &Binding{Widget: widget, Format: adapter.Name(), codec: codec}, nil
}

func (o *Orchestrator) schemaDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.SchemaDocument != nil {
		return *req.SchemaDocument, nil
	}
	if req.Schema == nil {
		return schema.Document{}, errors.New("orchestrator: schema source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Schema)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load schema: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) resolveAdapter(format string, doc schema.Document) (Adapter, error) {
	if format = strings.TrimSpace(format); format != "" {
		return o.adapters.Get(format)
	}
	matches := o.adapters.Detect(doc.Source(), doc.Raw())
	switch len(matches) {
	case 0:
		if o.defaultFormat == "" {
			return nil, errors.New("orchestrator: unable to detect schema format")
		}
		return o.adapters.Get(o.defaultFormat)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("orchestrator: multiple adapters matched schema (%s), specify format", adapterNames(matches))
	}
}

func (o *Orchestrator) initialValue(ctx context.Context, req Request, codec Codec) (schema.Value, error) {
	data := req.ValueData
	if data == nil && req.Value != nil {
		doc, err := o.loader.Load(ctx, req.Value)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load value: %w", err)
		}
		data = doc.Raw()
	}
	if data == nil {
		value := codec.New()
		if value == nil {
			return nil, fmt.Errorf("orchestrator: cannot create %s", codec.TypeName())
		}
		return value, nil
	}
	value, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode value: %w", err)
	}
	return value, nil
}
