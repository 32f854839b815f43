package gen

import (
	"github.com/wiregen/wiregen/schema"
	"github.com/wiregen/wiregen/wire"
)

// Mapping classifies a declared type for code synthesis: the Go rendering of
// the declared (unresolved) type, the wire tag of its true type, and whether
// the rendering has a natural nil.
type Mapping struct {
	// Representation is the Go spelling of the declared type. Typedefs stay
	// visible here; codecs resolve through to the true type.
	Representation string

	// WireTag is the wire tag of the true type.
	WireTag wire.Type

	// TagExpr is the Go spelling of the wire tag constant.
	TagExpr string

	// Nilable reports whether the representation can be compared against
	// nil for presence. Enums are not nilable; they use the unset sentinel.
	Nilable bool
}

// mapType classifies a declared type. Void is rejected here because it is
// only legal as a function return type, which callers handle before mapping.
func mapType(t schema.Type) (Mapping, error) {
	repr, err := goType(t)
	if err != nil {
		return Mapping{}, err
	}
	tag, err := wireTag(t)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{
		Representation: repr,
		WireTag:        tag,
		TagExpr:        tagExpr(tag),
		Nilable:        isNilable(t),
	}, nil
}

// goType renders the declared type as a Go type expression. Typedef names
// are kept; struct references become pointers.
func goType(t schema.Type) (string, error) {
	switch tt := t.(type) {
	case *schema.BaseType:
		switch tt.Kind() {
		case schema.KindBool:
			return "bool", nil
		case schema.KindByte:
			return "int8", nil
		case schema.KindI16:
			return "int16", nil
		case schema.KindI32:
			return "int32", nil
		case schema.KindI64:
			return "int64", nil
		case schema.KindDouble:
			return "float64", nil
		case schema.KindString:
			return "string", nil
		case schema.KindBinary:
			return "[]byte", nil
		default:
			return "", unsupportedType("%s is not valid in a data position", tt.TypeName())
		}
	case *schema.EnumDef:
		return publicize(tt.Name), nil
	case *schema.StructDef:
		return "*" + publicize(tt.Name), nil
	case *schema.TypedefDef:
		if schema.TrueType(tt).Kind() == schema.KindStruct {
			return "*" + publicize(tt.Name), nil
		}
		return publicize(tt.Name), nil
	case *schema.ListType:
		elem, err := goType(tt.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case *schema.SetType:
		key, err := goKeyType(tt.Elem)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]bool", nil
	case *schema.MapType:
		key, err := goKeyType(tt.Key)
		if err != nil {
			return "", err
		}
		val, err := goType(tt.Val)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + val, nil
	default:
		return "", unsupportedType("unknown type %s", t.TypeName())
	}
}

// goKeyType renders a map or set key type. A key whose true type is itself a
// container is rejected; the check recurses so nested container keys are
// caught wherever they appear. Binary keys render as string because byte
// slices cannot key a Go map.
func goKeyType(t schema.Type) (string, error) {
	switch tt := schema.TrueType(t).(type) {
	case *schema.ListType, *schema.SetType, *schema.MapType:
		return "", invalidMapKey("%s cannot be a map or set key", t.TypeName())
	case *schema.BaseType:
		if tt.Kind() == schema.KindBinary {
			return "string", nil
		}
	}
	return goType(t)
}

// wireTag returns the wire tag of the declared type's true type.
func wireTag(t schema.Type) (wire.Type, error) {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		switch tt.Kind() {
		case schema.KindBool:
			return wire.BOOL, nil
		case schema.KindByte:
			return wire.BYTE, nil
		case schema.KindI16:
			return wire.I16, nil
		case schema.KindI32:
			return wire.I32, nil
		case schema.KindI64:
			return wire.I64, nil
		case schema.KindDouble:
			return wire.DOUBLE, nil
		case schema.KindString:
			return wire.STRING, nil
		case schema.KindBinary:
			return wire.BINARY, nil
		default:
			return wire.STOP, unsupportedType("%s has no wire tag", tt.TypeName())
		}
	case *schema.EnumDef:
		return wire.I32, nil
	case *schema.StructDef:
		return wire.STRUCT, nil
	case *schema.ListType:
		return wire.LIST, nil
	case *schema.SetType:
		return wire.SET, nil
	case *schema.MapType:
		return wire.MAP, nil
	default:
		return wire.STOP, unsupportedType("%s has no wire tag", t.TypeName())
	}
}

// tagExpr returns the generated-code spelling of a wire tag constant.
func tagExpr(tag wire.Type) string {
	return "wire." + tag.String()
}

// isNilable reports whether the Go representation of t can be nil. Enums use
// the unset sentinel instead; numerics, booleans, and strings compare
// against their default.
func isNilable(t schema.Type) bool {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		return tt.Kind() == schema.KindBinary
	case *schema.StructDef, *schema.ListType, *schema.SetType, *schema.MapType:
		return true
	default:
		return false
	}
}

// validateDataType rejects types that cannot appear in a data position and
// walks containers so nested key violations surface at generation time.
func validateDataType(t schema.Type) error {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		if tt.Kind() == schema.KindVoid {
			return unsupportedType("void is only valid as a function return type")
		}
	case *schema.ListType:
		return validateDataType(tt.Elem)
	case *schema.SetType:
		if _, err := goKeyType(tt.Elem); err != nil {
			return err
		}
		return validateDataType(tt.Elem)
	case *schema.MapType:
		if _, err := goKeyType(tt.Key); err != nil {
			return err
		}
		if err := validateDataType(tt.Key); err != nil {
			return err
		}
		return validateDataType(tt.Val)
	}
	return nil
}
