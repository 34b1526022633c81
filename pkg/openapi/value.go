package openapi

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-msgform/pkg/schema"
)

// Value is a JSON object described by an OpenAPI component schema. Scalars
// are stored already coerced to their kind, nested objects as *Value.
type Value struct {
	desc   *descriptor
	fields map[string]any
}

var _ schema.Value = (*Value)(nil)

func newValue(d *descriptor) *Value {
	return &Value{desc: d, fields: make(map[string]any)}
}

// Descriptor implements schema.Value.
func (v *Value) Descriptor() schema.Descriptor {
	if v == nil || v.desc == nil {
		return nil
	}
	return v.desc
}

// Get implements schema.Value.
func (v *Value) Get(f schema.Field) (any, error) {
	field, err := v.scalar(f, false)
	if err != nil {
		return nil, err
	}
	if current, ok := v.fields[field.Name]; ok {
		return current, nil
	}
	return v.desc.zero(field), nil
}

// Set implements schema.Value.
func (v *Value) Set(f schema.Field, in any) error {
	field, err := v.scalar(f, false)
	if err != nil {
		return err
	}
	coerced, err := v.coerce(field, in)
	if err != nil {
		return fmt.Errorf("openapi: set %s: %w", field.Name, err)
	}
	v.fields[field.Name] = coerced
	return nil
}

// Len implements schema.Value.
func (v *Value) Len(f schema.Field) int {
	field, err := v.field(f)
	if err != nil || !field.Repeated {
		return 0
	}
	switch list := v.fields[field.Name].(type) {
	case []any:
		return len(list)
	case []*Value:
		return len(list)
	}
	return 0
}

// GetIndex implements schema.Value.
func (v *Value) GetIndex(f schema.Field, i int) (any, error) {
	field, err := v.scalar(f, true)
	if err != nil {
		return nil, err
	}
	list, _ := v.fields[field.Name].([]any)
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, field.Name, i)
	}
	return list[i], nil
}

// SetIndex implements schema.Value.
func (v *Value) SetIndex(f schema.Field, i int, in any) error {
	field, err := v.scalar(f, true)
	if err != nil {
		return err
	}
	list, _ := v.fields[field.Name].([]any)
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, field.Name, i)
	}
	coerced, err := v.coerce(field, in)
	if err != nil {
		return fmt.Errorf("openapi: set %s[%d]: %w", field.Name, i, err)
	}
	list[i] = coerced
	return nil
}

// Append implements schema.Value.
func (v *Value) Append(f schema.Field) (int, error) {
	field, err := v.field(f)
	if err != nil {
		return -1, err
	}
	if !field.Repeated || field.Kind == schema.KindInvalid {
		return -1, fmt.Errorf("%w: %s is not a list", schema.ErrKindMismatch, field.Name)
	}
	if field.Kind == schema.KindMessage {
		list, _ := v.fields[field.Name].([]*Value)
		list = append(list, newValue(v.desc.nested[field.Name]))
		v.fields[field.Name] = list
		return len(list) - 1, nil
	}
	list, _ := v.fields[field.Name].([]any)
	list = append(list, v.elementZero(field))
	v.fields[field.Name] = list
	return len(list) - 1, nil
}

// Nested implements schema.Value. An unset object reads as an empty value
// that is not attached to v.
func (v *Value) Nested(f schema.Field) (schema.Value, error) {
	field, err := v.message(f, false)
	if err != nil {
		return nil, err
	}
	if nested, ok := v.fields[field.Name].(*Value); ok {
		return nested, nil
	}
	return newValue(v.desc.nested[field.Name]), nil
}

// MutableNested implements schema.Value.
func (v *Value) MutableNested(f schema.Field) (schema.Value, error) {
	field, err := v.message(f, false)
	if err != nil {
		return nil, err
	}
	if nested, ok := v.fields[field.Name].(*Value); ok {
		return nested, nil
	}
	nested := newValue(v.desc.nested[field.Name])
	v.fields[field.Name] = nested
	return nested, nil
}

// NestedIndex implements schema.Value.
func (v *Value) NestedIndex(f schema.Field, i int) (schema.Value, error) {
	return v.MutableNestedIndex(f, i)
}

// MutableNestedIndex implements schema.Value.
func (v *Value) MutableNestedIndex(f schema.Field, i int) (schema.Value, error) {
	field, err := v.message(f, true)
	if err != nil {
		return nil, err
	}
	list, _ := v.fields[field.Name].([]*Value)
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %s[%d]", schema.ErrOutOfRange, field.Name, i)
	}
	return list[i], nil
}

// EnumValues implements schema.Value.
func (v *Value) EnumValues(f schema.Field) []string {
	if v == nil || v.desc == nil {
		return nil
	}
	return slices.Clone(v.desc.enums[f.Name])
}

// New implements schema.Value.
func (v *Value) New() schema.Value {
	if v == nil || v.desc == nil {
		return nil
	}
	return newValue(v.desc)
}

// CopyFrom implements schema.Value.
func (v *Value) CopyFrom(src schema.Value) error {
	if v == nil || v.desc == nil {
		return fmt.Errorf("openapi: copy into nil value")
	}
	other, ok := src.(*Value)
	if !ok || other == nil || other.desc == nil {
		return fmt.Errorf("%w: %T is not an openapi value", schema.ErrTypeMismatch, src)
	}
	if other.desc.fullName != v.desc.fullName {
		return fmt.Errorf("%w: cannot copy %s into %s", schema.ErrTypeMismatch, other.desc.fullName, v.desc.fullName)
	}
	if other == v {
		return nil
	}
	v.fields = other.copyFields()
	return nil
}

// Clone implements schema.Value.
func (v *Value) Clone() schema.Value {
	if v == nil || v.desc == nil {
		return nil
	}
	return &Value{desc: v.desc, fields: v.copyFields()}
}

func (v *Value) copyFields() map[string]any {
	out := make(map[string]any, len(v.fields))
	for name, current := range v.fields {
		switch typed := current.(type) {
		case *Value:
			out[name] = typed.Clone()
		case []*Value:
			list := make([]*Value, len(typed))
			for i, elem := range typed {
				list[i] = elem.Clone().(*Value)
			}
			out[name] = list
		case []any:
			out[name] = slices.Clone(typed)
		default:
			out[name] = deepCopy(current)
		}
	}
	return out
}

// Decode replaces the content of v with a JSON or YAML document. Unknown
// properties are dropped; properties without an editor are kept verbatim.
func (v *Value) Decode(data []byte) error {
	if v == nil || v.desc == nil {
		return fmt.Errorf("openapi: decode into nil value")
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("openapi: decode %s: %w", v.desc.fullName, err)
	}
	fresh := newValue(v.desc)
	if err := fresh.assign(raw, v.desc.fullName); err != nil {
		return err
	}
	v.fields = fresh.fields
	return nil
}

// Interface returns v as plain maps, slices and scalars. Unset scalars are
// reported with the value they read as.
func (v *Value) Interface() map[string]any {
	if v == nil || v.desc == nil {
		return nil
	}
	out := make(map[string]any, len(v.desc.fields))
	for _, field := range v.desc.fields {
		current, set := v.fields[field.Name]
		switch {
		case field.Kind == schema.KindInvalid:
			if set {
				out[field.Name] = deepCopy(current)
			}
		case field.Repeated && field.Kind == schema.KindMessage:
			list, _ := current.([]*Value)
			if len(list) == 0 {
				continue
			}
			items := make([]any, len(list))
			for i, elem := range list {
				items[i] = elem.Interface()
			}
			out[field.Name] = items
		case field.Repeated:
			if list, _ := current.([]any); len(list) > 0 {
				out[field.Name] = slices.Clone(list)
			}
		case field.Kind == schema.KindMessage:
			if nested, ok := current.(*Value); ok {
				out[field.Name] = nested.Interface()
			}
		default:
			if !set {
				current = v.desc.zero(field)
			}
			out[field.Name] = current
		}
	}
	return out
}

// MarshalJSON encodes Interface. Non-finite numbers are written as 0.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(finite(v.Interface()))
}

func (v *Value) assign(raw map[string]any, path string) error {
	for name, in := range raw {
		field, ok := v.desc.FieldByName(name)
		if !ok || in == nil {
			continue
		}
		where := path + "." + name
		switch {
		case field.Kind == schema.KindInvalid:
			v.fields[name] = deepCopy(in)
		case field.Repeated:
			items, ok := in.([]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an array", schema.ErrKindMismatch, where)
			}
			if err := v.assignList(field, items, where); err != nil {
				return err
			}
		case field.Kind == schema.KindMessage:
			obj, ok := in.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an object", schema.ErrKindMismatch, where)
			}
			nested := newValue(v.desc.nested[name])
			if err := nested.assign(obj, where); err != nil {
				return err
			}
			v.fields[name] = nested
		default:
			coerced, err := v.coerce(field, in)
			if err != nil {
				return fmt.Errorf("openapi: decode %s: %w", where, err)
			}
			v.fields[name] = coerced
		}
	}
	return nil
}

func (v *Value) assignList(field schema.Field, items []any, where string) error {
	if field.Kind == schema.KindMessage {
		list := make([]*Value, 0, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s[%d] must be an object", schema.ErrKindMismatch, where, i)
			}
			elem := newValue(v.desc.nested[field.Name])
			if err := elem.assign(obj, fmt.Sprintf("%s[%d]", where, i)); err != nil {
				return err
			}
			list = append(list, elem)
		}
		v.fields[field.Name] = list
		return nil
	}
	list := make([]any, 0, len(items))
	for i, item := range items {
		coerced, err := v.coerce(field, item)
		if err != nil {
			return fmt.Errorf("openapi: decode %s[%d]: %w", where, i, err)
		}
		list = append(list, coerced)
	}
	v.fields[field.Name] = list
	return nil
}

func (v *Value) coerce(field schema.Field, in any) (any, error) {
	coerced, err := schema.Coerce(field.Kind, in)
	if err != nil {
		return nil, err
	}
	if field.Kind == schema.KindEnum && !slices.Contains(v.desc.enums[field.Name], coerced.(string)) {
		return nil, fmt.Errorf("%w: %q in %s", schema.ErrUnknownEnum, coerced, field.TypeName)
	}
	return coerced, nil
}

func (v *Value) elementZero(field schema.Field) any {
	if field.Kind == schema.KindEnum {
		if options := v.desc.enums[field.Name]; len(options) > 0 {
			return options[0]
		}
	}
	return schema.Zero(field.Kind)
}

func (v *Value) field(f schema.Field) (schema.Field, error) {
	if v == nil || v.desc == nil {
		return schema.Field{}, fmt.Errorf("openapi: nil value")
	}
	field, ok := v.desc.FieldByName(f.Name)
	if !ok {
		return schema.Field{}, fmt.Errorf("%w: %s.%s", schema.ErrNoSuchField, v.desc.fullName, f.Name)
	}
	return field, nil
}

func (v *Value) scalar(f schema.Field, repeated bool) (schema.Field, error) {
	field, err := v.field(f)
	if err != nil {
		return field, err
	}
	if field.Repeated != repeated || !field.Kind.IsScalar() {
		return field, fmt.Errorf("%w: %s is not a %s scalar field", schema.ErrKindMismatch, field.Name, cardinality(repeated))
	}
	return field, nil
}

func (v *Value) message(f schema.Field, repeated bool) (schema.Field, error) {
	field, err := v.field(f)
	if err != nil {
		return field, err
	}
	if field.Repeated != repeated || field.Kind != schema.KindMessage {
		return field, fmt.Errorf("%w: %s is not a %s message field", schema.ErrKindMismatch, field.Name, cardinality(repeated))
	}
	return field, nil
}

func cardinality(repeated bool) string {
	if repeated {
		return "repeated"
	}
	return "singular"
}

func deepCopy(in any) any {
	switch typed := in.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = deepCopy(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = deepCopy(v)
		}
		return out
	default:
		return in
	}
}

func finite(in any) any {
	switch typed := in.(type) {
	case map[string]any:
		for k, v := range typed {
			typed[k] = finite(v)
		}
		return typed
	case []any:
		for i, v := range typed {
			typed[i] = finite(v)
		}
		return typed
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return float64(0)
		}
	case float32:
		if math.IsNaN(float64(typed)) || math.IsInf(float64(typed), 0) {
			return float32(0)
		}
	}
	return in
}
