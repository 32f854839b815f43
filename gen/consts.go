package gen

import (
	"strconv"
	"strings"

	"github.com/wiregen/wiregen/schema"
)

// renderConstValue renders a literal value against a declared type, purely
// recursive on the true type. Struct literals fail with UnknownField when a
// key does not name a declared field; there are no partial structs.
func renderConstValue(t schema.Type, v *schema.ConstValue) (string, error) {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		return renderBaseValue(tt, v)
	case *schema.EnumDef:
		return renderEnumValue(tt, v), nil
	case *schema.StructDef:
		return renderStructValue(tt, v)
	case *schema.ListType:
		return renderListValue(tt, v)
	case *schema.SetType:
		return renderSetValue(tt, v)
	case *schema.MapType:
		return renderMapValue(tt, v)
	default:
		return "", unsupportedType("cannot render a constant of type %s", t.TypeName())
	}
}

func renderBaseValue(t *schema.BaseType, v *schema.ConstValue) (string, error) {
	switch t.Kind() {
	case schema.KindBool:
		if v.Int != 0 {
			return "true", nil
		}
		return "false", nil
	case schema.KindByte, schema.KindI16, schema.KindI32, schema.KindI64:
		return strconv.FormatInt(v.Int, 10), nil
	case schema.KindDouble:
		if v.ConstKind == schema.ConstInt {
			return strconv.FormatInt(v.Int, 10), nil
		}
		return strconv.FormatFloat(v.Double, 'g', -1, 64), nil
	case schema.KindString:
		return strconv.Quote(v.Str), nil
	case schema.KindBinary:
		return "[]byte(" + strconv.Quote(v.Str) + ")", nil
	default:
		return "", unsupportedType("%s is not valid in a constant", t.TypeName())
	}
}

// renderEnumValue renders an enum constant: member references become the
// generated member constant, bare integers cast the ordinal.
func renderEnumValue(t *schema.EnumDef, v *schema.ConstValue) string {
	name := publicize(t.Name)
	if v.ConstKind == schema.ConstIdentifier {
		member := v.Str
		if i := strings.LastIndexByte(member, '.'); i >= 0 {
			member = member[i+1:]
		}
		return name + "_" + member
	}
	return name + "(" + strconv.FormatInt(v.Int, 10) + ")"
}

func renderStructValue(t *schema.StructDef, v *schema.ConstValue) (string, error) {
	var b strings.Builder
	b.WriteString("&")
	b.WriteString(publicize(t.Name))
	b.WriteString("{")
	for i, entry := range v.Entries {
		field := t.FieldByName(entry.Key.Str)
		if field == nil {
			return "", unknownField("%s %s has no field %q",
				t.StructKind, t.Name, entry.Key.Str)
		}
		rendered, err := renderConstValue(field.Type, entry.Value)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(publicize(field.Name))
		b.WriteString(": ")
		b.WriteString(rendered)
	}
	b.WriteString("}")
	return b.String(), nil
}

func renderListValue(t *schema.ListType, v *schema.ConstValue) (string, error) {
	elem, err := goType(t.Elem)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("[]")
	b.WriteString(elem)
	b.WriteString("{")
	for i, ev := range v.List {
		rendered, err := renderConstValue(t.Elem, ev)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rendered)
	}
	b.WriteString("}")
	return b.String(), nil
}

// renderSetValue renders a set literal as a map-to-true literal over the
// ordered element list.
func renderSetValue(t *schema.SetType, v *schema.ConstValue) (string, error) {
	key, err := goKeyType(t.Elem)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("map[")
	b.WriteString(key)
	b.WriteString("]bool{")
	for i, ev := range v.List {
		rendered, err := renderConstValue(t.Elem, ev)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rendered)
		b.WriteString(": true")
	}
	b.WriteString("}")
	return b.String(), nil
}

// renderMapValue renders pairs in the literal's declaration order, not
// sorted by key.
func renderMapValue(t *schema.MapType, v *schema.ConstValue) (string, error) {
	key, err := goKeyType(t.Key)
	if err != nil {
		return "", err
	}
	val, err := goType(t.Val)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("map[")
	b.WriteString(key)
	b.WriteString("]")
	b.WriteString(val)
	b.WriteString("{")
	for i, entry := range v.Entries {
		kr, err := renderConstValue(t.Key, entry.Key)
		if err != nil {
			return "", err
		}
		vr, err := renderConstValue(t.Val, entry.Value)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kr)
		b.WriteString(": ")
		b.WriteString(vr)
	}
	b.WriteString("}")
	return b.String(), nil
}

// isCompositeConst reports whether a constant of this type needs a var plus
// an init assignment instead of a const declaration.
func isCompositeConst(t schema.Type) bool {
	switch schema.TrueType(t).(type) {
	case *schema.StructDef, *schema.ListType, *schema.SetType, *schema.MapType:
		return true
	case *schema.BaseType:
		return schema.TrueType(t).Kind() == schema.KindBinary
	default:
		return false
	}
}

// emitConsts renders the named-constants unit: const declarations for base
// and enum constants, var declarations plus one init block for composites.
func emitConsts(e *emitter, consts []*schema.Const) error {
	var composites []*schema.Const
	for _, c := range consts {
		if err := validateDataType(c.Type); err != nil {
			return err
		}
		if isCompositeConst(c.Type) {
			composites = append(composites, c)
			continue
		}
		repr, err := goType(c.Type)
		if err != nil {
			return err
		}
		rendered, err := renderConstValue(c.Type, c.Value)
		if err != nil {
			return err
		}
		e.pf("const %s %s = %s", publicize(c.Name), repr, rendered)
		e.blank()
	}
	if len(composites) == 0 {
		return nil
	}
	for _, c := range composites {
		repr, err := goType(c.Type)
		if err != nil {
			return err
		}
		e.pf("var %s %s", publicize(c.Name), repr)
	}
	e.blank()
	e.p("func init() {")
	e.in()
	for _, c := range composites {
		rendered, err := renderConstValue(c.Type, c.Value)
		if err != nil {
			return err
		}
		e.pf("%s = %s", publicize(c.Name), rendered)
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}
