package gen

import (
	"fmt"
	"strconv"

	"github.com/wiregen/wiregen/schema"
)

// primitiveOp is the protocol method pair and raw Go type for one scalar
// wire shape. Enums read and write through the I32 pair with a cast.
type primitiveOp struct {
	method  string
	rawRepr string
}

// primitiveFor returns the protocol accessor for a type whose true type is a
// scalar shape. Containers and structs recurse instead.
func primitiveFor(t schema.Type) (primitiveOp, bool) {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		switch tt.Kind() {
		case schema.KindBool:
			return primitiveOp{"Bool", "bool"}, true
		case schema.KindByte:
			return primitiveOp{"Byte", "int8"}, true
		case schema.KindI16:
			return primitiveOp{"I16", "int16"}, true
		case schema.KindI32:
			return primitiveOp{"I32", "int32"}, true
		case schema.KindI64:
			return primitiveOp{"I64", "int64"}, true
		case schema.KindDouble:
			return primitiveOp{"Double", "float64"}, true
		case schema.KindString:
			return primitiveOp{"String", "string"}, true
		case schema.KindBinary:
			return primitiveOp{"Binary", "[]byte"}, true
		}
	case *schema.EnumDef:
		return primitiveOp{"I32", "int32"}, true
	}
	return primitiveOp{}, false
}

// structCtx carries the per-struct emission state: the output emitter and a
// counter for unique temporary names inside reader bodies.
type structCtx struct {
	e   *emitter
	s   *schema.StructDef
	tmp int
}

func (c *structCtx) next() int {
	n := c.tmp
	c.tmp++
	return n
}

// errReturn renders a generated error return wrapping err with context.
func errReturn(context string) string {
	return fmt.Sprintf("return fmt.Errorf(%q, err)", context+": %w")
}

// emitStruct renders one struct declaration with its constructor, presence
// predicates, codec procedures, and string form.
func emitStruct(e *emitter, s *schema.StructDef) error {
	for _, f := range s.Fields {
		if err := validateDataType(f.Type); err != nil {
			return err
		}
	}
	c := &structCtx{e: e, s: s}
	if err := c.emitLayout(); err != nil {
		return err
	}
	if err := c.emitConstructor(); err != nil {
		return err
	}
	if err := c.emitPresence(); err != nil {
		return err
	}
	if err := c.emitRead(); err != nil {
		return err
	}
	if err := c.emitWrite(); err != nil {
		return err
	}
	c.emitString()
	return nil
}

// layoutFields returns the fields in layout order and whether gap
// bookkeeping applies. Sorted-by-id order with gap annotations is used when
// the lowest id is non-negative; a negative lowest id falls back to
// declaration order with no bookkeeping.
func layoutFields(s *schema.StructDef) ([]*schema.Field, bool) {
	sorted := s.SortedFields()
	if len(sorted) > 0 && sorted[0].ID < 0 {
		return s.Fields, false
	}
	return sorted, true
}

func (c *structCtx) emitLayout() error {
	e, s := c.e, c.s
	name := publicize(s.Name)
	emitDoc(e, s.Doc)
	e.pf("type %s struct {", name)
	e.in()
	fields, withGaps := layoutFields(s)
	nextID := 0
	for _, f := range fields {
		if withGaps {
			// Position 0 is reserved for call-result success and gets no
			// placeholder line.
			for ; nextID != int(f.ID); nextID++ {
				if nextID != 0 {
					e.pf("// unused field # %d", nextID)
				}
			}
			nextID = int(f.ID) + 1
		}
		m, err := mapType(f.Type)
		if err != nil {
			return err
		}
		emitDoc(e, f.Doc)
		tag := f.Name + "," + strconv.Itoa(int(f.ID))
		if f.Requiredness == schema.Required {
			tag += ",required"
		}
		e.pf("%s %s `wire:%q`", publicize(f.Name), m.Representation, tag)
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}

// isEnumField reports whether a field's true type is an enum, which makes it
// sentinel-tracked regardless of requiredness.
func isEnumField(f *schema.Field) bool {
	_, ok := schema.TrueType(f.Type).(*schema.EnumDef)
	return ok
}

func (c *structCtx) emitConstructor() error {
	e, s := c.e, c.s
	name := publicize(s.Name)
	type initLine struct{ field, value string }
	var inits []initLine
	for _, f := range s.Fields {
		switch {
		case f.Default != nil:
			rendered, err := renderConstValue(f.Type, f.Default)
			if err != nil {
				return err
			}
			inits = append(inits, initLine{publicize(f.Name), rendered})
		case isEnumField(f):
			inits = append(inits, initLine{publicize(f.Name), "math.MinInt32 - 1"})
		}
	}
	e.pf("func New%s() *%s {", name, name)
	e.in()
	if len(inits) == 0 {
		e.pf("return &%s{}", name)
	} else {
		e.pf("return &%s{", name)
		e.in()
		for _, init := range inits {
			e.pf("%s: %s,", init.field, init.value)
		}
		e.out()
		e.p("}")
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}

// hasNonEmptyDefault reports whether a container field declares a literal
// default with at least one element.
func hasNonEmptyDefault(f *schema.Field) bool {
	return f.Default != nil && (len(f.Default.List) > 0 || len(f.Default.Entries) > 0)
}

// presenceExpr renders the condition under which a field counts as set.
func presenceExpr(f *schema.Field) (string, error) {
	fpub := "p." + publicize(f.Name)
	switch tt := schema.TrueType(f.Type).(type) {
	case *schema.EnumDef:
		return fpub + " != math.MinInt32 - 1", nil
	case *schema.StructDef:
		return fpub + " != nil", nil
	case *schema.ListType, *schema.SetType, *schema.MapType:
		if hasNonEmptyDefault(f) {
			return fpub + " != nil", nil
		}
		return fpub + " != nil && len(" + fpub + ") > 0", nil
	case *schema.BaseType:
		if tt.Kind() == schema.KindBinary {
			return fpub + " != nil", nil
		}
		def := zeroLiteral(tt)
		if f.Default != nil {
			rendered, err := renderConstValue(f.Type, f.Default)
			if err != nil {
				return "", err
			}
			def = rendered
		}
		return fpub + " != " + def, nil
	default:
		return fpub + " != nil", nil
	}
}

func zeroLiteral(t *schema.BaseType) string {
	switch t.Kind() {
	case schema.KindBool:
		return "false"
	case schema.KindString:
		return `""`
	default:
		return "0"
	}
}

// emitPresence renders IsSet predicates for fields that are Optional or
// enum-typed.
func (c *structCtx) emitPresence() error {
	e, s := c.e, c.s
	name := publicize(s.Name)
	for _, f := range s.Fields {
		if f.Requiredness != schema.Optional && !isEnumField(f) {
			continue
		}
		expr, err := presenceExpr(f)
		if err != nil {
			return err
		}
		e.pf("func (p *%s) IsSet%s() bool {", name, publicize(f.Name))
		e.in()
		e.pf("return %s", expr)
		e.out()
		e.p("}")
		e.blank()
	}
	return nil
}

func (c *structCtx) emitRead() error {
	e, s := c.e, c.s
	name := publicize(s.Name)
	e.pf("func (p *%s) Read(iprot wire.Protocol) error {", name)
	e.in()
	e.p("if _, err := iprot.ReadStructBegin(); err != nil {")
	e.in()
	e.p(errReturn(s.Name + " read struct begin error"))
	e.out()
	e.p("}")
	e.p("for {")
	e.in()
	e.p("_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin()")
	e.p("if err != nil {")
	e.in()
	e.pf("return fmt.Errorf(%q, fieldID, err)", s.Name+" field %d read error: %w")
	e.out()
	e.p("}")
	e.p("if fieldTypeID == wire.STOP {")
	e.in()
	e.p("break")
	e.out()
	e.p("}")
	e.p("switch fieldID {")
	for _, f := range s.Fields {
		e.pf("case %d:", f.ID)
		e.in()
		e.pf("if err := p.readField%s(iprot); err != nil {", fieldIDSuffix(f.ID))
		e.in()
		e.p("return err")
		e.out()
		e.p("}")
		e.out()
	}
	e.p("default:")
	e.in()
	e.p("if err := iprot.Skip(fieldTypeID); err != nil {")
	e.in()
	e.pf("return fmt.Errorf(%q, fieldID, err)", s.Name+" field %d skip error: %w")
	e.out()
	e.p("}")
	e.out()
	e.p("}")
	e.p("if err := iprot.ReadFieldEnd(); err != nil {")
	e.in()
	e.p("return err")
	e.out()
	e.p("}")
	e.out()
	e.p("}")
	e.p("if err := iprot.ReadStructEnd(); err != nil {")
	e.in()
	e.p(errReturn(s.Name + " read struct end error"))
	e.out()
	e.p("}")
	e.p("return nil")
	e.out()
	e.p("}")
	e.blank()

	for _, f := range s.Fields {
		if err := c.emitFieldReader(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *structCtx) emitFieldReader(f *schema.Field) error {
	e := c.e
	name := publicize(c.s.Name)
	errCtx := fmt.Sprintf("%s field %d read error", c.s.Name, f.ID)
	e.pf("func (p *%s) readField%s(iprot wire.Protocol) error {", name, fieldIDSuffix(f.ID))
	e.in()
	m, err := mapType(f.Type)
	if err != nil {
		return err
	}
	if err := c.emitReadValue(f.Type, "p."+publicize(f.Name), m.Representation, errCtx); err != nil {
		return err
	}
	e.p("return nil")
	e.out()
	e.p("}")
	e.blank()
	return nil
}

// emitReadValue renders the statements that read one value of type t off the
// protocol and assign it to dst, recursing through containers and structs.
func (c *structCtx) emitReadValue(t schema.Type, dst, dstRepr, errCtx string) error {
	e := c.e
	if op, ok := primitiveFor(t); ok {
		n := c.next()
		e.pf("v%d, err := iprot.Read%s()", n, op.method)
		e.p("if err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		if dstRepr != op.rawRepr {
			e.pf("%s = %s(v%d)", dst, dstRepr, n)
		} else {
			e.pf("%s = v%d", dst, n)
		}
		return nil
	}
	switch tt := schema.TrueType(t).(type) {
	case *schema.StructDef:
		e.pf("%s = New%s()", dst, publicize(tt.Name))
		e.pf("if err := %s.Read(iprot); err != nil {", dst)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	case *schema.ListType:
		elemRepr, err := goType(tt.Elem)
		if err != nil {
			return err
		}
		n := c.next()
		e.pf("_, size%d, err := iprot.ReadListBegin()", n)
		e.p("if err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("list%d := make([]%s, 0, size%d)", n, elemRepr, n)
		e.pf("for i := 0; i < size%d; i++ {", n)
		e.in()
		en := c.next()
		e.pf("var elem%d %s", en, elemRepr)
		if err := c.emitReadValue(tt.Elem, fmt.Sprintf("elem%d", en), elemRepr, errCtx); err != nil {
			return err
		}
		e.pf("list%d = append(list%d, elem%d)", n, n, en)
		e.out()
		e.p("}")
		e.p("if err := iprot.ReadListEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("%s = list%d", dst, n)
		return nil
	case *schema.SetType:
		keyRepr, err := goKeyType(tt.Elem)
		if err != nil {
			return err
		}
		n := c.next()
		e.pf("_, size%d, err := iprot.ReadSetBegin()", n)
		e.p("if err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("set%d := make(map[%s]bool, size%d)", n, keyRepr, n)
		e.pf("for i := 0; i < size%d; i++ {", n)
		e.in()
		en := c.next()
		e.pf("var elem%d %s", en, keyRepr)
		if err := c.emitReadValue(tt.Elem, fmt.Sprintf("elem%d", en), keyRepr, errCtx); err != nil {
			return err
		}
		e.pf("set%d[elem%d] = true", n, en)
		e.out()
		e.p("}")
		e.p("if err := iprot.ReadSetEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("%s = set%d", dst, n)
		return nil
	case *schema.MapType:
		keyRepr, err := goKeyType(tt.Key)
		if err != nil {
			return err
		}
		valRepr, err := goType(tt.Val)
		if err != nil {
			return err
		}
		n := c.next()
		e.pf("_, _, size%d, err := iprot.ReadMapBegin()", n)
		e.p("if err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("m%d := make(map[%s]%s, size%d)", n, keyRepr, valRepr, n)
		e.pf("for i := 0; i < size%d; i++ {", n)
		e.in()
		kn := c.next()
		e.pf("var key%d %s", kn, keyRepr)
		if err := c.emitReadValue(tt.Key, fmt.Sprintf("key%d", kn), keyRepr, errCtx); err != nil {
			return err
		}
		vn := c.next()
		e.pf("var val%d %s", vn, valRepr)
		if err := c.emitReadValue(tt.Val, fmt.Sprintf("val%d", vn), valRepr, errCtx); err != nil {
			return err
		}
		e.pf("m%d[key%d] = val%d", n, kn, vn)
		e.out()
		e.p("}")
		e.p("if err := iprot.ReadMapEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		e.pf("%s = m%d", dst, n)
		return nil
	default:
		return unsupportedType("cannot read a value of type %s", t.TypeName())
	}
}

func (c *structCtx) emitWrite() error {
	e, s := c.e, c.s
	name := publicize(s.Name)
	e.pf("func (p *%s) Write(oprot wire.Protocol) error {", name)
	e.in()
	e.pf("if err := oprot.WriteStructBegin(%q); err != nil {", s.Name)
	e.in()
	e.p(errReturn(s.Name + " write struct begin error"))
	e.out()
	e.p("}")

	if s.StructKind == schema.CallResult {
		if err := c.emitResultSwitch(); err != nil {
			return err
		}
	} else {
		for _, f := range s.SortedFields() {
			e.pf("if err := p.writeField%s(oprot); err != nil {", fieldIDSuffix(f.ID))
			e.in()
			e.p("return err")
			e.out()
			e.p("}")
		}
	}

	e.p("if err := oprot.WriteFieldStop(); err != nil {")
	e.in()
	e.p(errReturn(s.Name + " write field stop error"))
	e.out()
	e.p("}")
	e.p("return oprot.WriteStructEnd()")
	e.out()
	e.p("}")
	e.blank()

	for _, f := range s.Fields {
		if err := c.emitFieldWriter(f); err != nil {
			return err
		}
	}
	return nil
}

// emitResultSwitch renders the mutually-exclusive result write: the success
// value is tested first, then the declared exceptions in reverse declaration
// order, and exactly the first populated field is written.
func (c *structCtx) emitResultSwitch() error {
	e, s := c.e, c.s
	var ordered []*schema.Field
	var exceptions []*schema.Field
	for _, f := range s.Fields {
		if f.ID == 0 {
			ordered = append(ordered, f)
		} else {
			exceptions = append(exceptions, f)
		}
	}
	for i := len(exceptions) - 1; i >= 0; i-- {
		ordered = append(ordered, exceptions[i])
	}
	if len(ordered) == 0 {
		return nil
	}
	e.p("switch {")
	for _, f := range ordered {
		var cond string
		if isNilable(f.Type) {
			cond = "p." + publicize(f.Name) + " != nil"
		} else {
			cond = "p.IsSet" + publicize(f.Name) + "()"
		}
		e.pf("case %s:", cond)
		e.in()
		e.pf("if err := p.writeField%s(oprot); err != nil {", fieldIDSuffix(f.ID))
		e.in()
		e.p("return err")
		e.out()
		e.p("}")
		e.out()
	}
	e.p("}")
	return nil
}

func (c *structCtx) emitFieldWriter(f *schema.Field) error {
	e := c.e
	name := publicize(c.s.Name)
	errCtx := fmt.Sprintf("%s field %d write error", c.s.Name, f.ID)
	m, err := mapType(f.Type)
	if err != nil {
		return err
	}
	e.pf("func (p *%s) writeField%s(oprot wire.Protocol) error {", name, fieldIDSuffix(f.ID))
	e.in()
	if m.Nilable {
		e.pf("if p.%s == nil {", publicize(f.Name))
		e.in()
		e.p("return nil")
		e.out()
		e.p("}")
	}
	if f.Requiredness == schema.Optional || isEnumField(f) {
		e.pf("if !p.IsSet%s() {", publicize(f.Name))
		e.in()
		e.p("return nil")
		e.out()
		e.p("}")
	}
	e.pf("if err := oprot.WriteFieldBegin(%q, %s, %d); err != nil {", f.Name, m.TagExpr, f.ID)
	e.in()
	e.p(errReturn(errCtx))
	e.out()
	e.p("}")
	if err := c.emitWriteValue(f.Type, "p."+publicize(f.Name), m.Representation, errCtx); err != nil {
		return err
	}
	e.p("if err := oprot.WriteFieldEnd(); err != nil {")
	e.in()
	e.p(errReturn(errCtx))
	e.out()
	e.p("}")
	e.p("return nil")
	e.out()
	e.p("}")
	e.blank()
	return nil
}

// emitWriteValue renders the statements that write one value of type t,
// mirroring emitReadValue.
func (c *structCtx) emitWriteValue(t schema.Type, src, srcRepr, errCtx string) error {
	e := c.e
	if op, ok := primitiveFor(t); ok {
		arg := src
		if srcRepr != op.rawRepr {
			arg = op.rawRepr + "(" + src + ")"
		}
		e.pf("if err := oprot.Write%s(%s); err != nil {", op.method, arg)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	}
	switch tt := schema.TrueType(t).(type) {
	case *schema.StructDef:
		e.pf("if err := %s.Write(oprot); err != nil {", src)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	case *schema.ListType:
		elemRepr, err := goType(tt.Elem)
		if err != nil {
			return err
		}
		tag, err := wireTag(tt.Elem)
		if err != nil {
			return err
		}
		e.pf("if err := oprot.WriteListBegin(%s, len(%s)); err != nil {", tagExpr(tag), src)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		n := c.next()
		e.pf("for _, v%d := range %s {", n, src)
		e.in()
		if err := c.emitWriteValue(tt.Elem, fmt.Sprintf("v%d", n), elemRepr, errCtx); err != nil {
			return err
		}
		e.out()
		e.p("}")
		e.p("if err := oprot.WriteListEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	case *schema.SetType:
		keyRepr, err := goKeyType(tt.Elem)
		if err != nil {
			return err
		}
		tag, err := wireTag(tt.Elem)
		if err != nil {
			return err
		}
		e.pf("if err := oprot.WriteSetBegin(%s, len(%s)); err != nil {", tagExpr(tag), src)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		n := c.next()
		e.pf("for v%d := range %s {", n, src)
		e.in()
		if err := c.emitWriteValue(tt.Elem, fmt.Sprintf("v%d", n), keyRepr, errCtx); err != nil {
			return err
		}
		e.out()
		e.p("}")
		e.p("if err := oprot.WriteSetEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	case *schema.MapType:
		keyRepr, err := goKeyType(tt.Key)
		if err != nil {
			return err
		}
		valRepr, err := goType(tt.Val)
		if err != nil {
			return err
		}
		ktag, err := wireTag(tt.Key)
		if err != nil {
			return err
		}
		vtag, err := wireTag(tt.Val)
		if err != nil {
			return err
		}
		e.pf("if err := oprot.WriteMapBegin(%s, %s, len(%s)); err != nil {",
			tagExpr(ktag), tagExpr(vtag), src)
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		kn := c.next()
		vn := c.next()
		e.pf("for k%d, v%d := range %s {", kn, vn, src)
		e.in()
		if err := c.emitWriteValue(tt.Key, fmt.Sprintf("k%d", kn), keyRepr, errCtx); err != nil {
			return err
		}
		if err := c.emitWriteValue(tt.Val, fmt.Sprintf("v%d", vn), valRepr, errCtx); err != nil {
			return err
		}
		e.out()
		e.p("}")
		e.p("if err := oprot.WriteMapEnd(); err != nil {")
		e.in()
		e.p(errReturn(errCtx))
		e.out()
		e.p("}")
		return nil
	default:
		return unsupportedType("cannot write a value of type %s", t.TypeName())
	}
}

func (c *structCtx) emitString() {
	e, s := c.e, c.s
	name := publicize(s.Name)
	e.pf("func (p *%s) String() string {", name)
	e.in()
	e.p("if p == nil {")
	e.in()
	e.p(`return "<nil>"`)
	e.out()
	e.p("}")
	e.pf("return fmt.Sprintf(%q, *p)", name+"(%+v)")
	e.out()
	e.p("}")
	e.blank()
	if s.IsException() {
		e.pf("func (p *%s) Error() string {", name)
		e.in()
		e.p("return p.String()")
		e.out()
		e.p("}")
		e.blank()
	}
}
