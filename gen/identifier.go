package gen

import (
	"strconv"
	"strings"
	"unicode"
)

// goReservedWords are identifiers that cannot be used as Go names.
var goReservedWords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// publicize renders a declared name as an exported Go identifier:
// snake_case segments become CamelCase.
func publicize(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// privatize renders a declared name as an unexported Go identifier, escaping
// reserved words with a trailing underscore.
func privatize(name string) string {
	var b strings.Builder
	upper := false
	first := true
	for _, r := range name {
		if r == '_' && !first {
			upper = true
			continue
		}
		switch {
		case first:
			b.WriteRune(unicode.ToLower(r))
		case upper:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		first = false
		upper = false
	}
	out := b.String()
	if goReservedWords[out] {
		return out + "_"
	}
	return out
}

// fieldIDSuffix derives the identifier suffix for a field id. Negative ids
// carry an underscore marker so readField_1 (id -1) and readField1 (id 1)
// stay distinct.
func fieldIDSuffix(id int16) string {
	if id < 0 {
		return "_" + strconv.Itoa(int(-id))
	}
	return strconv.Itoa(int(id))
}
