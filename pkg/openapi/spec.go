package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-msgform/pkg/schema"
)

// ErrUnknownSchema is returned when a component name is not declared.
var ErrUnknownSchema = errors.New("openapi: unknown component schema")

type parseOptions struct {
	externalRefs bool
	validate     bool
}

// ParseOption customises Parse.
type ParseOption func(*parseOptions)

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs() ParseOption {
	return func(o *parseOptions) {
		o.externalRefs = true
	}
}

// WithoutValidation skips document validation.
func WithoutValidation() ParseOption {
	return func(o *parseOptions) {
		o.validate = false
	}
}

// Spec is a parsed OpenAPI document. Descriptors are built on first use and
// shared by every value of the same component.
type Spec struct {
	doc         *openapi3.T
	descriptors map[string]*descriptor
}

// Parse loads and validates an OpenAPI document.
func Parse(ctx context.Context, doc schema.Document, opts ...ParseOption) (*Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	options := parseOptions{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: options.externalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if options.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return &Spec{doc: spec, descriptors: make(map[string]*descriptor)}, nil
}

// Names lists the component schemas in lexical order.
func (s *Spec) Names() []string {
	if s == nil || s.doc == nil || s.doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(s.doc.Components.Schemas))
	for name := range s.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor returns the descriptor of an object component.
func (s *Spec) Descriptor(name string) (schema.Descriptor, error) {
	d, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// New returns an empty value of the named object component.
func (s *Spec) New(name string) (*Value, error) {
	d, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return newValue(d), nil
}

// Decode parses JSON or YAML data into a new value of the named component.
func (s *Spec) Decode(name string, data []byte) (*Value, error) {
	v, err := s.New(name)
	if err != nil {
		return nil, err
	}
	if err := v.Decode(data); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Spec) lookup(name string) (*descriptor, error) {
	if s == nil || s.doc == nil || s.doc.Components == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	ref, ok := s.doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	if !isObject(ref.Value) {
		return nil, fmt.Errorf("%w: %s is not an object schema", ErrUnknownSchema, name)
	}
	return s.build(name, ref.Value), nil
}

// build returns the cached descriptor for name, creating it on first use. The
// descriptor is cached before its fields are filled so recursive schemas
// terminate.
func (s *Spec) build(name string, sc *openapi3.Schema) *descriptor {
	if d, ok := s.descriptors[name]; ok {
		return d
	}
	d := &descriptor{
		fullName: name,
		byName:   make(map[string]int),
		nested:   make(map[string]*descriptor),
		enums:    make(map[string][]string),
		defaults: make(map[string]any),
	}
	s.descriptors[name] = d

	props := properties(sc)
	names := make([]string, 0, len(props))
	for prop := range props {
		names = append(names, prop)
	}
	sort.Strings(names)

	for _, prop := range names {
		s.addField(d, prop, props[prop])
	}
	return d
}

func (s *Spec) addField(d *descriptor, name string, ref *openapi3.SchemaRef) {
	field := schema.Field{Name: name}
	elem := ref
	if ref != nil && ref.Value != nil && typeOf(ref.Value) == openapi3.TypeArray {
		field.Repeated = true
		elem = ref.Value.Items
	}

	if elem == nil || elem.Value == nil {
		d.add(field)
		return
	}
	sc := elem.Value
	typeName := refName(elem.Ref)
	if typeName == "" {
		typeName = d.fullName + "." + name
	}

	switch typeOf(sc) {
	case openapi3.TypeObject:
		if !isObject(sc) {
			break
		}
		field.Kind = schema.KindMessage
		field.TypeName = typeName
		d.nested[name] = s.build(typeName, sc)
	case openapi3.TypeNumber:
		field.Kind = schema.KindDouble
		if sc.Format == "float" {
			field.Kind = schema.KindFloat
		}
	case openapi3.TypeInteger:
		switch sc.Format {
		case "int32":
			field.Kind = schema.KindInt32
		case "uint32":
			field.Kind = schema.KindUint32
		case "uint64":
			field.Kind = schema.KindUint64
		default:
			field.Kind = schema.KindInt64
		}
	case openapi3.TypeBoolean:
		field.Kind = schema.KindBool
	case openapi3.TypeString:
		switch {
		case len(sc.Enum) > 0:
			field.Kind = schema.KindEnum
			field.TypeName = typeName
			d.enums[name] = enumNames(sc.Enum)
		case sc.Format == "byte" || sc.Format == "binary":
		default:
			field.Kind = schema.KindString
		}
	}

	if field.Kind.IsScalar() && !field.Repeated && sc.Default != nil {
		if def, err := schema.Coerce(field.Kind, sc.Default); err == nil {
			d.defaults[name] = def
		}
	}
	d.add(field)
}

// typeOf reports the first non-null type of sc. Schemas without a type but
// with properties are treated as objects.
func typeOf(sc *openapi3.Schema) string {
	if sc.Type != nil {
		for _, typ := range sc.Type.Slice() {
			if typ != "null" {
				return typ
			}
		}
	}
	if len(sc.Properties) > 0 || len(sc.AllOf) > 0 {
		return openapi3.TypeObject
	}
	return ""
}

// isObject reports whether sc has editable properties. Objects that only
// declare additionalProperties are maps.
func isObject(sc *openapi3.Schema) bool {
	if typeOf(sc) != openapi3.TypeObject {
		return false
	}
	if len(properties(sc)) > 0 {
		return true
	}
	ap := sc.AdditionalProperties
	return ap.Schema == nil && (ap.Has == nil || !*ap.Has)
}

// properties merges the schema's own properties with those of allOf members.
func properties(sc *openapi3.Schema) openapi3.Schemas {
	if len(sc.AllOf) == 0 {
		return sc.Properties
	}
	merged := make(openapi3.Schemas, len(sc.Properties))
	for _, member := range sc.AllOf {
		if member == nil || member.Value == nil {
			continue
		}
		for name, prop := range properties(member.Value) {
			merged[name] = prop
		}
	}
	for name, prop := range sc.Properties {
		merged[name] = prop
	}
	return merged
}

func refName(ref string) string {
	if ref == "" {
		return ""
	}
	return ref[strings.LastIndex(ref, "/")+1:]
}

func enumNames(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}
