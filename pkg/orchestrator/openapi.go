package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-msgform/pkg/openapi"
	"github.com/goliatone/go-msgform/pkg/schema"
)

// FormatOpenAPI names the adapter reading OpenAPI 3 documents.
const FormatOpenAPI = "openapi"

// OpenAPIAdapter binds object schemas from an OpenAPI document's components.
// Values travel as JSON or YAML.
type OpenAPIAdapter struct {
	// Options are passed to openapi.Parse.
	Options []openapi.ParseOption
}

// Name implements Adapter.
func (OpenAPIAdapter) Name() string { return FormatOpenAPI }

// Detect matches JSON or YAML documents carrying a top-level "openapi" key.
func (OpenAPIAdapter) Detect(_ schema.Source, raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var probe struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return strings.HasPrefix(probe.OpenAPI, "3.")
}

// Bind implements Adapter.
func (a OpenAPIAdapter) Bind(ctx context.Context, doc schema.Document, typeName string) (Codec, error) {
	spec, err := openapi.Parse(ctx, doc, a.Options...)
	if err != nil {
		return nil, err
	}
	if _, err := spec.Descriptor(typeName); err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(spec.Names(), ", "))
	}
	return &openapiCodec{spec: spec, name: typeName}, nil
}

type openapiCodec struct {
	spec *openapi.Spec
	name string
}

func (c *openapiCodec) TypeName() string { return c.name }

func (c *openapiCodec) New() schema.Value {
	v, err := c.spec.New(c.name)
	if err != nil {
		return nil
	}
	return v
}

func (c *openapiCodec) Decode(data []byte) (schema.Value, error) {
	v, err := c.spec.Decode(c.name, data)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *openapiCodec) Encode(v schema.Value) ([]byte, error) {
	value, ok := v.(*openapi.Value)
	if !ok {
		return nil, fmt.Errorf("orchestrator: expected an openapi value, got %T", v)
	}
	return json.MarshalIndent(value, "", "  ")
}
