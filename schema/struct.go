package schema

import "sort"

// StructKind distinguishes the four uses of the struct shape.
type StructKind int

const (
	// Plain is an ordinary data struct.
	Plain StructKind = iota
	// Exception is a struct thrown as a declared service exception.
	Exception
	// CallArgs is the synthetic argument struct of an RPC function.
	CallArgs
	// CallResult is the synthetic result struct of an RPC function, holding
	// the mutually-exclusive success value and declared exceptions.
	CallResult
)

// String returns the string representation of the struct kind.
func (k StructKind) String() string {
	switch k {
	case Exception:
		return "exception"
	case CallArgs:
		return "call-args"
	case CallResult:
		return "call-result"
	default:
		return "struct"
	}
}

// StructDef is a named struct or exception. Fields are kept in declaration
// order; SortedFields derives the by-id view used for layout.
type StructDef struct {
	Name string `validate:"required"`

	// StructKind records how the struct is used.
	StructKind StructKind

	// Fields in declaration order.
	Fields []*Field

	// Doc is the documentation comment, if any.
	Doc string
}

// Kind returns KindStruct.
func (s *StructDef) Kind() Kind { return KindStruct }

// TypeName returns the struct's declared name.
func (s *StructDef) TypeName() string { return s.Name }

func (*StructDef) sealed() {}

// IsException reports whether the struct is a declared exception.
func (s *StructDef) IsException() bool { return s.StructKind == Exception }

// SortedFields returns the fields sorted by ascending id. The receiver's
// declaration-order slice is left untouched.
func (s *StructDef) SortedFields() []*Field {
	sorted := make([]*Field, len(s.Fields))
	copy(sorted, s.Fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// FieldByName looks up a field by declared name. Returns nil if not found.
func (s *StructDef) FieldByName(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
