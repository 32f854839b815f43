package gen

import (
	"strings"

	"github.com/wiregen/wiregen/schema"
)

// emitDoc renders a documentation comment above a declaration.
func emitDoc(e *emitter, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		e.p(strings.TrimRight("// "+line, " "))
	}
}

// emitTypedef renders a typedef as a type alias so the declared name stays
// visible in signatures while the underlying codecs apply unchanged.
func emitTypedef(e *emitter, td *schema.TypedefDef) error {
	var target string
	switch tt := td.Target.(type) {
	case *schema.StructDef:
		target = publicize(tt.Name)
	case *schema.TypedefDef:
		target = publicize(tt.Name)
	case *schema.EnumDef:
		target = publicize(tt.Name)
	default:
		repr, err := goType(td.Target)
		if err != nil {
			return err
		}
		target = repr
	}
	name := publicize(td.Name)
	if name == target {
		return nil
	}
	emitDoc(e, td.Doc)
	e.pf("type %s = %s", name, target)
	e.blank()
	return nil
}

// emitEnum renders an enum declaration: the member constants, the String
// form, and the inverse FromString lookup. A value never assigned by
// FromString, one below the 32-bit range, doubles as the unset sentinel for
// enum-typed struct fields.
func emitEnum(e *emitter, def *schema.EnumDef) {
	name := publicize(def.Name)
	emitDoc(e, def.Doc)
	e.pf("type %s int64", name)
	e.blank()
	if len(def.Members) > 0 {
		e.p("const (")
		e.in()
		for _, m := range def.Members {
			e.pf("%s_%s %s = %d", name, m.Name, name, m.Value)
		}
		e.out()
		e.p(")")
		e.blank()
	}

	e.pf("func (p %s) String() string {", name)
	e.in()
	e.p("switch p {")
	seen := make(map[int64]bool)
	for _, m := range def.Members {
		// Aliased values share the first member's spelling.
		if seen[m.Value] {
			continue
		}
		seen[m.Value] = true
		e.pf("case %s_%s:", name, m.Name)
		e.in()
		e.pf("return %q", name+"_"+m.Name)
		e.out()
	}
	e.p("}")
	e.p("return \"<UNSET>\"")
	e.out()
	e.p("}")
	e.blank()

	e.pf("func %sFromString(s string) (%s, error) {", name, name)
	e.in()
	e.p("switch s {")
	for _, m := range def.Members {
		e.pf("case %q:", name+"_"+m.Name)
		e.in()
		e.pf("return %s_%s, nil", name, m.Name)
		e.out()
	}
	e.p("}")
	e.pf("return %s(math.MinInt32 - 1), fmt.Errorf(\"invalid %s enum value: %%q\", s)", name, name)
	e.out()
	e.p("}")
	e.blank()
}
