package openapi

import (
	"strings"

	"github.com/goliatone/go-msgform/pkg/schema"
)

type descriptor struct {
	fullName string
	fields   []schema.Field
	byName   map[string]int
	nested   map[string]*descriptor
	enums    map[string][]string
	defaults map[string]any
}

var _ schema.Descriptor = (*descriptor)(nil)

func (d *descriptor) add(f schema.Field) {
	d.byName[f.Name] = len(d.fields)
	d.fields = append(d.fields, f)
}

func (d *descriptor) FullName() string {
	return d.fullName
}

func (d *descriptor) Name() string {
	return d.fullName[strings.LastIndex(d.fullName, ".")+1:]
}

func (d *descriptor) FieldCount() int {
	return len(d.fields)
}

func (d *descriptor) Field(i int) schema.Field {
	if i < 0 || i >= len(d.fields) {
		return schema.Field{}
	}
	return d.fields[i]
}

func (d *descriptor) FieldByName(name string) (schema.Field, bool) {
	i, ok := d.byName[name]
	if !ok {
		return schema.Field{}, false
	}
	return d.fields[i], true
}

// zero is the value an unset scalar reads as: the schema default, the first
// enum option, or the kind's zero.
func (d *descriptor) zero(f schema.Field) any {
	if def, ok := d.defaults[f.Name]; ok && !f.Repeated {
		return def
	}
	if f.Kind == schema.KindEnum {
		if options := d.enums[f.Name]; len(options) > 0 {
			return options[0]
		}
	}
	return schema.Zero(f.Kind)
}
