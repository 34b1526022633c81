package schema

import "errors"

var (
	// ErrNoSuchField is returned when a field is not part of the value's type.
	ErrNoSuchField = errors.New("schema: no such field")
	// ErrKindMismatch is returned when an accessor is used with a field of the
	// wrong cardinality or kind.
	ErrKindMismatch = errors.New("schema: kind mismatch")
	// ErrOutOfRange is returned for element indices outside a repeated field.
	ErrOutOfRange = errors.New("schema: index out of range")
	// ErrTypeMismatch is returned by CopyFrom when the source type differs.
	ErrTypeMismatch = errors.New("schema: type mismatch")
	// ErrUnknownEnum is returned when an enum name is not declared.
	ErrUnknownEnum = errors.New("schema: unknown enum value")
)
