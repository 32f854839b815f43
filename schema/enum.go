package schema

// EnumDef is a named enumeration. Member values are logically unbounded
// 64-bit integers but are carried over the wire as 32-bit.
type EnumDef struct {
	Name string `validate:"required"`

	// Members in declaration order, with resolved values.
	Members []EnumMember

	// Doc is the documentation comment, if any.
	Doc string
}

// Kind returns KindEnum.
func (e *EnumDef) Kind() Kind { return KindEnum }

// TypeName returns the enum's declared name.
func (e *EnumDef) TypeName() string { return e.Name }

func (*EnumDef) sealed() {}

// EnumMember is a single enumeration member.
type EnumMember struct {
	Name string `validate:"required"`

	// Value is the member's resolved value.
	Value int64

	// Explicit records whether the value was spelled in the source, as
	// opposed to assigned by the previous+1 rule.
	Explicit bool
}

// ResolveEnumValues assigns values to members that did not spell one:
// each defaults to the previous member's value plus one, and the first
// defaults to zero. Members are returned in declaration order.
func ResolveEnumValues(members []EnumMember) []EnumMember {
	resolved := make([]EnumMember, len(members))
	value := int64(-1)
	for i, m := range members {
		if m.Explicit {
			value = m.Value
		} else {
			value++
			m.Value = value
		}
		resolved[i] = m
	}
	return resolved
}
