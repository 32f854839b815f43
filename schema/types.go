// Package schema defines the resolved schema model consumed by the code
// generator. The model is an immutable tree: an upstream parser/resolver
// produces it once, and generation never mutates it.
package schema

// Kind identifies the category of a type reference.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindByte
	KindI16
	KindI32
	KindI64
	KindDouble
	KindString
	KindBinary
	KindEnum
	KindStruct
	KindTypedef
	KindList
	KindSet
	KindMap
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindTypedef:
		return "typedef"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Type is the closed sum of all type references. Generators dispatch on the
// concrete type (or Kind) exhaustively, so adding a wire shape is a
// compile-time-checked, single-point change.
type Type interface {
	// Kind returns the type kind for switching.
	Kind() Kind

	// TypeName returns the declared name of the type.
	// Base and container types return their IDL spelling.
	TypeName() string

	// Ensure only types in this package can implement Type.
	sealed()
}

// BaseType is a built-in primitive type reference.
type BaseType struct {
	kind Kind
}

// Kind returns the base type's kind.
func (b *BaseType) Kind() Kind { return b.kind }

// TypeName returns the IDL spelling of the base type.
func (b *BaseType) TypeName() string { return b.kind.String() }

func (*BaseType) sealed() {}

// Convenience constructors for base type references.

// Void returns the void type, valid only as a function return type.
func Void() *BaseType { return &BaseType{kind: KindVoid} }

// Bool returns the bool type.
func Bool() *BaseType { return &BaseType{kind: KindBool} }

// Byte returns the signed 8-bit integer type.
func Byte() *BaseType { return &BaseType{kind: KindByte} }

// I16 returns the signed 16-bit integer type.
func I16() *BaseType { return &BaseType{kind: KindI16} }

// I32 returns the signed 32-bit integer type.
func I32() *BaseType { return &BaseType{kind: KindI32} }

// I64 returns the signed 64-bit integer type.
func I64() *BaseType { return &BaseType{kind: KindI64} }

// Double returns the 64-bit floating point type.
func Double() *BaseType { return &BaseType{kind: KindDouble} }

// String returns the text string type.
func String() *BaseType { return &BaseType{kind: KindString} }

// Binary returns the byte string type. Binary shares the source
// representation of string but carries a distinct wire tag.
func Binary() *BaseType { return &BaseType{kind: KindBinary} }

// ListType is an ordered collection type reference.
type ListType struct {
	Elem Type
}

// Kind returns KindList.
func (l *ListType) Kind() Kind { return KindList }

// TypeName returns the IDL spelling of the list type.
func (l *ListType) TypeName() string { return "list<" + l.Elem.TypeName() + ">" }

func (*ListType) sealed() {}

// SetType is an unordered unique-element collection type reference.
type SetType struct {
	Elem Type
}

// Kind returns KindSet.
func (s *SetType) Kind() Kind { return KindSet }

// TypeName returns the IDL spelling of the set type.
func (s *SetType) TypeName() string { return "set<" + s.Elem.TypeName() + ">" }

func (*SetType) sealed() {}

// MapType is a key-value mapping type reference.
type MapType struct {
	Key Type
	Val Type
}

// Kind returns KindMap.
func (m *MapType) Kind() Kind { return KindMap }

// TypeName returns the IDL spelling of the map type.
func (m *MapType) TypeName() string {
	return "map<" + m.Key.TypeName() + "," + m.Val.TypeName() + ">"
}

func (*MapType) sealed() {}

// TypedefDef is a named alias for another type. The declared name stays
// visible in generated signatures; codecs resolve through to the target.
type TypedefDef struct {
	Name string `validate:"required"`

	// Target is the aliased type. Chains are legal; TrueType resolves them.
	Target Type

	// Doc is the documentation comment, if any.
	Doc string
}

// Kind returns KindTypedef.
func (t *TypedefDef) Kind() Kind { return KindTypedef }

// TypeName returns the typedef's declared name.
func (t *TypedefDef) TypeName() string { return t.Name }

func (*TypedefDef) sealed() {}

// TrueType resolves typedef chains to the underlying type. All other types
// resolve to themselves.
func TrueType(t Type) Type {
	for {
		td, ok := t.(*TypedefDef)
		if !ok {
			return t
		}
		t = td.Target
	}
}
