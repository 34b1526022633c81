package schema

// Field is the static metadata of one field of a value's type. It is shared by
// every value of that type and never mutated.
type Field struct {
	// Name is the field name as declared by the schema.
	Name string
	// Kind is the element kind; for repeated fields it describes each element.
	Kind Kind
	// Repeated marks ordered sequences.
	Repeated bool
	// TypeName is the full type name of message and enum fields.
	TypeName string
}

// Descriptor describes the type of a Value. Fields are reported in
// declaration order.
type Descriptor interface {
	FullName() string
	Name() string
	FieldCount() int
	Field(i int) Field
	FieldByName(name string) (Field, bool)
}

// Value is a mutable, schema-described aggregate. Implementations exist per
// schema technology (protobuf, OpenAPI); the reconciler only talks to this
// contract.
//
// Scalar values travel as Go types matching their Kind: float64, float32,
// int32, int64, uint32, uint64, bool, string. Enum values travel as their
// symbolic name.
type Value interface {
	// Descriptor returns the value's type. A nil Descriptor is a structural
	// error.
	Descriptor() Descriptor

	// Get reads a singular scalar field.
	Get(f Field) (any, error)
	// Set writes a singular scalar field, coercing compatible inputs.
	Set(f Field, v any) error

	// Len reports the number of elements of a repeated field.
	Len(f Field) int
	// GetIndex reads one scalar element of a repeated field.
	GetIndex(f Field, i int) (any, error)
	// SetIndex writes one scalar element of a repeated field.
	SetIndex(f Field, i int, v any) error
	// Append adds a zero element to a repeated field and returns its index.
	Append(f Field) (int, error)

	// Nested returns a read view of a singular message field.
	Nested(f Field) (Value, error)
	// MutableNested returns a writable singular message field, allocating it
	// when unset.
	MutableNested(f Field) (Value, error)
	// NestedIndex returns a read view of one message element.
	NestedIndex(f Field, i int) (Value, error)
	// MutableNestedIndex returns one writable message element.
	MutableNestedIndex(f Field, i int) (Value, error)

	// EnumValues lists the legal symbolic names of an enum field.
	EnumValues(f Field) []string

	// New returns an empty value of the same type.
	New() Value
	// CopyFrom replaces the receiver's content with src. Both values must
	// share the same type.
	CopyFrom(src Value) error
	// Clone returns a deep copy.
	Clone() Value
}

// FullName returns the type identity of v, or "" when v or its descriptor is
// missing.
func FullName(v Value) string {
	if v == nil {
		return ""
	}
	desc := v.Descriptor()
	if desc == nil {
		return ""
	}
	return desc.FullName()
}

// Fields lists the descriptor's fields in declaration order.
func Fields(desc Descriptor) []Field {
	if desc == nil {
		return nil
	}
	out := make([]Field, 0, desc.FieldCount())
	for i := 0; i < desc.FieldCount(); i++ {
		out = append(out, desc.Field(i))
	}
	return out
}
