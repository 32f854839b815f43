package gen

import (
	"errors"
	"testing"

	"github.com/wiregen/wiregen/schema"
)

func TestRenderConstValue(t *testing.T) {
	color := &schema.EnumDef{
		Name:    "Color",
		Members: []schema.EnumMember{{Name: "RED", Value: 0}, {Name: "BLUE", Value: 5}},
	}
	point := &schema.StructDef{
		Name: "Point",
		Fields: []*schema.Field{
			{ID: 1, Name: "x", Type: schema.I32()},
			{ID: 2, Name: "y", Type: schema.I32()},
		},
	}
	tests := []struct {
		name  string
		typ   schema.Type
		value *schema.ConstValue
		want  string
	}{
		{"bool true", schema.Bool(), schema.IntValue(1), "true"},
		{"bool false", schema.Bool(), schema.IntValue(0), "false"},
		{"i32", schema.I32(), schema.IntValue(-7), "-7"},
		{"double from int", schema.Double(), schema.IntValue(4), "4"},
		{"double", schema.Double(), schema.DoubleValue(2.5), "2.5"},
		{"string", schema.String(), schema.StringValue("hi"), `"hi"`},
		{"binary", schema.Binary(), schema.StringValue("hi"), `[]byte("hi")`},
		{"enum member reference", color, schema.EnumValue("Color.BLUE", 5), "Color_BLUE"},
		{"enum bare ordinal", color, schema.IntValue(5), "Color(5)"},
		{
			"list",
			&schema.ListType{Elem: schema.I32()},
			schema.ListValue(schema.IntValue(1), schema.IntValue(2)),
			"[]int32{1, 2}",
		},
		{
			"set renders map to true",
			&schema.SetType{Elem: schema.String()},
			schema.ListValue(schema.StringValue("a"), schema.StringValue("b")),
			`map[string]bool{"a": true, "b": true}`,
		},
		{
			"map keeps literal order",
			&schema.MapType{Key: schema.String(), Val: schema.I32()},
			schema.MapValue(
				schema.ConstEntry{Key: schema.StringValue("z"), Value: schema.IntValue(1)},
				schema.ConstEntry{Key: schema.StringValue("a"), Value: schema.IntValue(2)},
			),
			`map[string]int32{"z": 1, "a": 2}`,
		},
		{
			"struct literal",
			point,
			schema.MapValue(
				schema.ConstEntry{Key: schema.StringValue("x"), Value: schema.IntValue(3)},
				schema.ConstEntry{Key: schema.StringValue("y"), Value: schema.IntValue(4)},
			),
			"&Point{X: 3, Y: 4}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderConstValue(tt.typ, tt.value)
			if err != nil {
				t.Fatalf("renderConstValue: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderConstValueUnknownField(t *testing.T) {
	point := &schema.StructDef{
		Name:   "Point",
		Fields: []*schema.Field{{ID: 1, Name: "x", Type: schema.I32()}},
	}
	_, err := renderConstValue(point, schema.MapValue(
		schema.ConstEntry{Key: schema.StringValue("z"), Value: schema.IntValue(9)},
	))
	if err == nil {
		t.Fatal("expected error for unknown struct literal field")
	}
	var genErr *Error
	if !errors.As(err, &genErr) || genErr.Code != CodeUnknownField {
		t.Fatalf("expected %s error, got %v", CodeUnknownField, err)
	}
}

func TestEmitConsts(t *testing.T) {
	consts := []*schema.Const{
		{Name: "max_retries", Type: schema.I32(), Value: schema.IntValue(5)},
		{Name: "greeting", Type: schema.String(), Value: schema.StringValue("hello")},
		{
			Name: "defaults",
			Type: &schema.MapType{Key: schema.String(), Val: schema.I64()},
			Value: schema.MapValue(
				schema.ConstEntry{Key: schema.StringValue("n"), Value: schema.IntValue(1)},
			),
		},
	}
	e := &emitter{}
	if err := emitConsts(e, consts); err != nil {
		t.Fatalf("emitConsts: %v", err)
	}
	src := e.String()
	checkContains(t, src, []string{
		"const MaxRetries int32 = 5",
		`const Greeting string = "hello"`,
		"var Defaults map[string]int64",
		"func init() {",
		`Defaults = map[string]int64{"n": 1}`,
	}, nil)
}
