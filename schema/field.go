package schema

// Requiredness is a field's presence requirement.
type Requiredness int

const (
	// Default fields are written unconditionally but tolerated when absent.
	Default Requiredness = iota
	// Required fields must be present on the wire.
	Required
	// Optional fields are written only when explicitly set.
	Optional
)

// String returns the string representation of the requiredness.
func (r Requiredness) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return "default"
	}
}

// Field is a single member of a struct, exception, argument list, or result.
type Field struct {
	// ID is the wire field id. Unique within the owning struct; may be sparse
	// or negative. Negative ids are legal and used for synthetic fields.
	ID int16

	// Name is the declared field name.
	Name string `validate:"required"`

	// Type is the declared field type.
	Type Type

	// Requiredness is the field's presence requirement.
	Requiredness Requiredness

	// Default is the declared default value, if any.
	Default *ConstValue

	// Doc is the documentation comment, if any.
	Doc string
}

// ConstKind identifies the shape of a constant value.
type ConstKind int

const (
	// ConstInt is an integer literal.
	ConstInt ConstKind = iota
	// ConstDouble is a floating-point literal.
	ConstDouble
	// ConstString is a string or binary literal.
	ConstString
	// ConstIdentifier is a reference to an enum member. The resolver fills in
	// the member's ordinal value alongside the spelled reference.
	ConstIdentifier
	// ConstList is an ordered sequence of values, used for list and set
	// literals.
	ConstList
	// ConstMap is an ordered list of key-value pairs, used for map literals
	// and for struct literals (keys are field-name strings).
	ConstMap
)

// ConstValue is a literal value, shaped to mirror the type graph.
type ConstValue struct {
	ConstKind ConstKind

	// Int holds integer literals, booleans (0/1), and resolved enum ordinals.
	Int int64

	// Double holds floating-point literals.
	Double float64

	// Str holds string literals and enum-member reference spellings.
	Str string

	// List holds list and set literal elements in declaration order.
	List []*ConstValue

	// Entries holds map and struct literal pairs in declaration order.
	Entries []ConstEntry
}

// ConstEntry is one key-value pair of a map or struct literal.
type ConstEntry struct {
	Key   *ConstValue
	Value *ConstValue
}

// IntValue returns an integer constant.
func IntValue(v int64) *ConstValue {
	return &ConstValue{ConstKind: ConstInt, Int: v}
}

// DoubleValue returns a floating-point constant.
func DoubleValue(v float64) *ConstValue {
	return &ConstValue{ConstKind: ConstDouble, Double: v}
}

// StringValue returns a string constant.
func StringValue(v string) *ConstValue {
	return &ConstValue{ConstKind: ConstString, Str: v}
}

// EnumValue returns a resolved enum-member reference constant.
func EnumValue(ref string, ordinal int64) *ConstValue {
	return &ConstValue{ConstKind: ConstIdentifier, Str: ref, Int: ordinal}
}

// ListValue returns an ordered sequence constant.
func ListValue(elems ...*ConstValue) *ConstValue {
	return &ConstValue{ConstKind: ConstList, List: elems}
}

// MapValue returns an ordered pair-list constant.
func MapValue(entries ...ConstEntry) *ConstValue {
	return &ConstValue{ConstKind: ConstMap, Entries: entries}
}
