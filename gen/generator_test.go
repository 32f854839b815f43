package gen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiregen/wiregen/schema"
	"github.com/wiregen/wiregen/sink"
)

func testSchema() *schema.Schema {
	color := &schema.EnumDef{
		Name:    "Color",
		Members: []schema.EnumMember{{Name: "RED", Value: 0}, {Name: "BLUE", Value: 5}},
	}
	person := &schema.StructDef{
		Name: "Person",
		Fields: []*schema.Field{
			{ID: 1, Name: "name", Type: schema.String(), Requiredness: schema.Required},
			{ID: 2, Name: "age", Type: schema.I32(), Requiredness: schema.Optional},
			{ID: 3, Name: "favorite", Type: color},
		},
	}
	return &schema.Schema{
		Name:    "demo",
		Enums:   []*schema.EnumDef{color},
		Structs: []*schema.StructDef{person},
		Consts: []*schema.Const{
			{Name: "max_age", Type: schema.I32(), Value: schema.IntValue(150)},
		},
		Services: []*schema.ServiceDef{
			{
				Name: "Registry",
				Functions: []*schema.FunctionDef{
					{
						Name:       "lookup",
						Args:       []*schema.Field{{ID: 1, Name: "name", Type: schema.String()}},
						ReturnType: person,
					},
					{
						Name:   "invalidate",
						Args:   []*schema.Field{{ID: 1, Name: "name", Type: schema.String()}},
						Oneway: true,
					},
				},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	out := sink.NewMemorySink()
	g := New(Config{EmitRemote: true})
	require.NoError(t, g.Generate(context.Background(), testSchema(), out))

	files := out.Files()
	for _, path := range []string{
		"demo_types.go",
		"demo_consts.go",
		"registry.go",
		"registry-remote/registry-remote.go",
	} {
		assert.Contains(t, files, path)
	}

	types := string(out.Get("demo_types.go"))
	assert.Contains(t, types, "package demo")
	assert.Contains(t, types, `"github.com/wiregen/wiregen/wire"`)
	assert.Contains(t, types, "type Color int64")
	assert.Contains(t, types, "type Person struct {")

	service := string(out.Get("registry.go"))
	assert.Contains(t, service, "type Registry interface {")
	assert.Contains(t, service, "Lookup(name string) (*Person, error)")
	assert.Contains(t, service, "type RegistryClient struct {")
	assert.Contains(t, service, "type RegistryProcessor struct {")
	assert.Contains(t, service, "func (p *RegistryClient) Invalidate(name string) error {")

	remote := string(out.Get("registry-remote/registry-remote.go"))
	assert.Contains(t, remote, "package main")
	assert.Contains(t, remote, `case "lookup":`)
	assert.Contains(t, remote, "demo.NewRegistryClient(trans, wire.NewBinaryProtocolFactory())")
}

func TestGenerateFormatted(t *testing.T) {
	out := sink.NewMemorySink()
	g := New(Config{Format: true})
	require.NoError(t, g.Generate(context.Background(), testSchema(), out))

	// goimports parses every unit, so a successful formatted pass is a
	// syntax check on the whole output, the oneway-bearing service unit
	// included. The oneway body shape itself is pinned in the servicegen
	// tests.
	types := string(out.Get("demo_types.go"))
	assert.True(t, strings.HasPrefix(types, "// Code generated by wiregen. DO NOT EDIT."))
	service := string(out.Get("registry.go"))
	assert.True(t, strings.HasPrefix(service, "// Code generated by wiregen. DO NOT EDIT."))
}

func TestGenerateInvalidSchemaFails(t *testing.T) {
	s := testSchema()
	s.Structs[0].Fields = append(s.Structs[0].Fields, &schema.Field{
		ID: 1, Name: "dup", Type: schema.String(),
	})
	out := sink.NewMemorySink()
	err := New(Config{}).Generate(context.Background(), s, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field id 1")
	assert.Empty(t, out.Files())
}

func TestGenerateAbortsWithoutPartialArtifacts(t *testing.T) {
	s := testSchema()
	s.Structs = append(s.Structs, &schema.StructDef{
		Name: "Bad",
		Fields: []*schema.Field{
			{ID: 1, Name: "m", Type: &schema.MapType{
				Key: &schema.ListType{Elem: schema.I32()},
				Val: schema.I32(),
			}},
		},
	})
	out := sink.NewMemorySink()
	err := New(Config{}).Generate(context.Background(), s, out)
	require.Error(t, err)
	assert.Empty(t, out.Files())
}
