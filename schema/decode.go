package schema

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Interchange format for resolved schemas. The upstream resolver serializes
// its output as JSON or YAML in this shape; declarations must appear before
// any reference to them, which the resolver's topological ordering guarantees.

type fileSchema struct {
	Name     string        `json:"name" yaml:"name"`
	Typedefs []fileTypedef `json:"typedefs,omitempty" yaml:"typedefs,omitempty"`
	Enums    []fileEnum    `json:"enums,omitempty" yaml:"enums,omitempty"`
	Structs  []fileStruct  `json:"structs,omitempty" yaml:"structs,omitempty"`
	Consts   []fileConst   `json:"consts,omitempty" yaml:"consts,omitempty"`
	Services []fileService `json:"services,omitempty" yaml:"services,omitempty"`
}

type fileTypedef struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Doc  string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type fileEnum struct {
	Name    string           `json:"name" yaml:"name"`
	Members []fileEnumMember `json:"members" yaml:"members"`
	Doc     string           `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type fileEnumMember struct {
	Name  string `json:"name" yaml:"name"`
	Value *int64 `json:"value,omitempty" yaml:"value,omitempty"`
}

type fileStruct struct {
	Name      string      `json:"name" yaml:"name"`
	Exception bool        `json:"exception,omitempty" yaml:"exception,omitempty"`
	Fields    []fileField `json:"fields" yaml:"fields"`
	Doc       string      `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type fileField struct {
	ID           int16      `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Type         string     `json:"type" yaml:"type"`
	Requiredness string     `json:"requiredness,omitempty" yaml:"requiredness,omitempty"`
	Default      *fileValue `json:"default,omitempty" yaml:"default,omitempty"`
	Doc          string     `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type fileConst struct {
	Name  string     `json:"name" yaml:"name"`
	Type  string     `json:"type" yaml:"type"`
	Value *fileValue `json:"value" yaml:"value"`
}

// fileValue keeps literal shapes explicit so map and struct literals preserve
// declaration order, which plain JSON/YAML mappings would not.
type fileValue struct {
	Int    *int64           `json:"int,omitempty" yaml:"int,omitempty"`
	Double *float64         `json:"double,omitempty" yaml:"double,omitempty"`
	String *string          `json:"string,omitempty" yaml:"string,omitempty"`
	Enum   *fileEnumRef     `json:"enum,omitempty" yaml:"enum,omitempty"`
	List   []*fileValue     `json:"list,omitempty" yaml:"list,omitempty"`
	Map    []fileEntry      `json:"map,omitempty" yaml:"map,omitempty"`
	Fields []fileFieldValue `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type fileEnumRef struct {
	Ref   string `json:"ref" yaml:"ref"`
	Value int64  `json:"value" yaml:"value"`
}

type fileEntry struct {
	Key   *fileValue `json:"key" yaml:"key"`
	Value *fileValue `json:"value" yaml:"value"`
}

type fileFieldValue struct {
	Field string     `json:"field" yaml:"field"`
	Value *fileValue `json:"value" yaml:"value"`
}

type fileService struct {
	Name      string         `json:"name" yaml:"name"`
	Extends   string         `json:"extends,omitempty" yaml:"extends,omitempty"`
	Functions []fileFunction `json:"functions" yaml:"functions"`
	Doc       string         `json:"doc,omitempty" yaml:"doc,omitempty"`
}

type fileFunction struct {
	Name    string      `json:"name" yaml:"name"`
	Returns string      `json:"returns,omitempty" yaml:"returns,omitempty"`
	Args    []fileField `json:"args,omitempty" yaml:"args,omitempty"`
	Throws  []fileField `json:"throws,omitempty" yaml:"throws,omitempty"`
	Oneway  bool        `json:"oneway,omitempty" yaml:"oneway,omitempty"`
	Doc     string      `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// DecodeJSON builds a Schema from a JSON interchange document.
func DecodeJSON(data []byte) (*Schema, error) {
	var fs fileSchema
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to decode schema JSON: %w", err)
	}
	return buildSchema(&fs)
}

// DecodeYAML builds a Schema from a YAML interchange document.
func DecodeYAML(data []byte) (*Schema, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to decode schema YAML: %w", err)
	}
	return buildSchema(&fs)
}

func buildSchema(fs *fileSchema) (*Schema, error) {
	s := &Schema{Name: fs.Name}
	named := make(map[string]Type)

	for _, ft := range fs.Typedefs {
		target, err := parseTypeExpr(ft.Type, named)
		if err != nil {
			return nil, fmt.Errorf("typedef %s: %w", ft.Name, err)
		}
		td := &TypedefDef{Name: ft.Name, Target: target, Doc: ft.Doc}
		s.Typedefs = append(s.Typedefs, td)
		named[ft.Name] = td
	}

	for _, fe := range fs.Enums {
		members := make([]EnumMember, len(fe.Members))
		for i, fm := range fe.Members {
			members[i] = EnumMember{Name: fm.Name}
			if fm.Value != nil {
				members[i].Value = *fm.Value
				members[i].Explicit = true
			}
		}
		e := &EnumDef{Name: fe.Name, Members: ResolveEnumValues(members), Doc: fe.Doc}
		s.Enums = append(s.Enums, e)
		named[fe.Name] = e
	}

	for _, fsd := range fs.Structs {
		kind := Plain
		if fsd.Exception {
			kind = Exception
		}
		sd := &StructDef{Name: fsd.Name, StructKind: kind, Doc: fsd.Doc}
		// Register before fields so self-referential structs resolve.
		named[fsd.Name] = sd
		for _, ff := range fsd.Fields {
			f, err := buildField(ff, named)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", kind, fsd.Name, err)
			}
			sd.Fields = append(sd.Fields, f)
		}
		s.Structs = append(s.Structs, sd)
	}

	for _, fc := range fs.Consts {
		t, err := parseTypeExpr(fc.Type, named)
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", fc.Name, err)
		}
		s.Consts = append(s.Consts, &Const{Name: fc.Name, Type: t, Value: buildValue(fc.Value)})
	}

	services := make(map[string]*ServiceDef)
	for _, fsvc := range fs.Services {
		svc := &ServiceDef{Name: fsvc.Name, Doc: fsvc.Doc}
		if fsvc.Extends != "" {
			parent, ok := services[fsvc.Extends]
			if !ok {
				return nil, fmt.Errorf("service %s extends unknown service %s", fsvc.Name, fsvc.Extends)
			}
			svc.Parent = parent
		}
		for _, ffn := range fsvc.Functions {
			fn := &FunctionDef{Name: ffn.Name, Oneway: ffn.Oneway, Doc: ffn.Doc}
			if ffn.Returns == "" || ffn.Returns == "void" {
				fn.ReturnType = Void()
			} else {
				ret, err := parseTypeExpr(ffn.Returns, named)
				if err != nil {
					return nil, fmt.Errorf("service %s function %s: %w", fsvc.Name, ffn.Name, err)
				}
				fn.ReturnType = ret
			}
			for _, fa := range ffn.Args {
				f, err := buildField(fa, named)
				if err != nil {
					return nil, fmt.Errorf("service %s function %s: %w", fsvc.Name, ffn.Name, err)
				}
				fn.Args = append(fn.Args, f)
			}
			for _, fx := range ffn.Throws {
				f, err := buildField(fx, named)
				if err != nil {
					return nil, fmt.Errorf("service %s function %s: %w", fsvc.Name, ffn.Name, err)
				}
				fn.Exceptions = append(fn.Exceptions, f)
			}
			svc.Functions = append(svc.Functions, fn)
		}
		services[fsvc.Name] = svc
		s.Services = append(s.Services, svc)
	}

	return s, nil
}

func buildField(ff fileField, named map[string]Type) (*Field, error) {
	t, err := parseTypeExpr(ff.Type, named)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", ff.Name, err)
	}
	f := &Field{ID: ff.ID, Name: ff.Name, Type: t, Default: buildValue(ff.Default), Doc: ff.Doc}
	switch ff.Requiredness {
	case "required":
		f.Requiredness = Required
	case "optional":
		f.Requiredness = Optional
	case "", "default":
		f.Requiredness = Default
	default:
		return nil, fmt.Errorf("field %s: unknown requiredness %q", ff.Name, ff.Requiredness)
	}
	return f, nil
}

func buildValue(fv *fileValue) *ConstValue {
	if fv == nil {
		return nil
	}
	switch {
	case fv.Int != nil:
		return IntValue(*fv.Int)
	case fv.Double != nil:
		return DoubleValue(*fv.Double)
	case fv.String != nil:
		return StringValue(*fv.String)
	case fv.Enum != nil:
		return EnumValue(fv.Enum.Ref, fv.Enum.Value)
	case fv.List != nil:
		elems := make([]*ConstValue, len(fv.List))
		for i, e := range fv.List {
			elems[i] = buildValue(e)
		}
		return ListValue(elems...)
	case fv.Map != nil:
		entries := make([]ConstEntry, len(fv.Map))
		for i, e := range fv.Map {
			entries[i] = ConstEntry{Key: buildValue(e.Key), Value: buildValue(e.Value)}
		}
		return MapValue(entries...)
	case fv.Fields != nil:
		entries := make([]ConstEntry, len(fv.Fields))
		for i, e := range fv.Fields {
			entries[i] = ConstEntry{Key: StringValue(e.Field), Value: buildValue(e.Value)}
		}
		return MapValue(entries...)
	default:
		return nil
	}
}

// parseTypeExpr parses an interchange type expression: a base type name, a
// previously declared named type, or list<T>, set<T>, map<K,V>.
func parseTypeExpr(expr string, named map[string]Type) (Type, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "":
		return nil, fmt.Errorf("empty type expression")
	case "void":
		return Void(), nil
	case "bool":
		return Bool(), nil
	case "byte", "i8":
		return Byte(), nil
	case "i16":
		return I16(), nil
	case "i32":
		return I32(), nil
	case "i64":
		return I64(), nil
	case "double":
		return Double(), nil
	case "string":
		return String(), nil
	case "binary":
		return Binary(), nil
	}

	if inner, ok := containerArg(expr, "list"); ok {
		elem, err := parseTypeExpr(inner, named)
		if err != nil {
			return nil, err
		}
		return &ListType{Elem: elem}, nil
	}
	if inner, ok := containerArg(expr, "set"); ok {
		elem, err := parseTypeExpr(inner, named)
		if err != nil {
			return nil, err
		}
		return &SetType{Elem: elem}, nil
	}
	if inner, ok := containerArg(expr, "map"); ok {
		keyExpr, valExpr, err := splitMapArgs(inner)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, expr)
		}
		key, err := parseTypeExpr(keyExpr, named)
		if err != nil {
			return nil, err
		}
		val, err := parseTypeExpr(valExpr, named)
		if err != nil {
			return nil, err
		}
		return &MapType{Key: key, Val: val}, nil
	}

	if t, ok := named[expr]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}

// containerArg returns the bracketed argument of a container spelling like
// "list<i32>", or ok=false when expr is not that container.
func containerArg(expr, keyword string) (string, bool) {
	if !strings.HasPrefix(expr, keyword+"<") || !strings.HasSuffix(expr, ">") {
		return "", false
	}
	return expr[len(keyword)+1 : len(expr)-1], true
}

// splitMapArgs splits "K,V" at the top-level comma, respecting nested
// angle brackets.
func splitMapArgs(inner string) (string, string, error) {
	depth := 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				return inner[:i], inner[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("missing key/value separator")
}
