package schema

// Kind enumerates the field types the reconciler understands. The set is closed:
// adapters map anything they cannot express onto KindInvalid and the walk
// skips it with a warning.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindDouble
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindBool
	KindString
	KindEnum
	KindMessage
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindDouble:  "double",
	KindFloat:   "float",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindBool:    "bool",
	KindString:  "string",
	KindEnum:    "enum",
	KindMessage: "message",
}

// String reports the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsFloat reports whether values of this kind may carry NaN.
func (k Kind) IsFloat() bool {
	return k == KindDouble || k == KindFloat
}

// IsSigned reports whether the kind is a signed integer.
func (k Kind) IsSigned() bool {
	return k == KindInt32 || k == KindInt64
}

// IsUnsigned reports whether the kind is an unsigned integer.
func (k Kind) IsUnsigned() bool {
	return k == KindUint32 || k == KindUint64
}

// IsScalar reports whether the kind maps onto a single leaf editor.
func (k Kind) IsScalar() bool {
	return k != KindInvalid && k != KindMessage
}
