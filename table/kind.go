package table

// Kind is the storage representation of a column. It is what the type
// checker compares against a rule's expected type.
type Kind int

const (
	// KindNull marks a column whose values are all missing, so no
	// representation could be inferred.
	KindNull Kind = iota
	KindString
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindDatetime
	// KindObject is the catch-all for mixed or opaque values.
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindString:   "string",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindDatetime: "datetime",
	KindObject:   "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// IsInteger reports whether k is one of the signed integer widths.
func (k Kind) IsInteger() bool {
	switch k { //nolint:exhaustive
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is a floating point width.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsNumeric is IsInteger || IsFloat.
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat()
}
