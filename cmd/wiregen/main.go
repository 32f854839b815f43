package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/wiregen/wiregen/gen"
	"github.com/wiregen/wiregen/schema"
	"github.com/wiregen/wiregen/sink"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate Go source from a resolved schema."`
	Check   CheckCmd   `cmd:"" help:"Validate a schema without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type GenCmd struct {
	Schema   string `arg:"" help:"Resolved schema file (.json, .yaml, or .yml)."`
	Out      string `help:"Output directory for generated files." short:"o" default:"."`
	Package  string `help:"Override the generated package name." short:"p"`
	Import   string `help:"Import path of the generated package, used by remote drivers."`
	Remote   bool   `help:"Generate a remote CLI driver per service." short:"r"`
	NoFormat bool   `help:"Skip gofmt/goimports on the output."`
}

func (c *GenCmd) Run() error {
	s, err := loadSchema(c.Schema)
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	g := gen.New(gen.Config{
		PackageName:   c.Package,
		PackageImport: c.Import,
		Format:        !c.NoFormat,
		EmitRemote:    c.Remote,
	})
	return g.Generate(context.Background(), s, sink.NewFilesystemSink(outDir))
}

type CheckCmd struct {
	Schema string `arg:"" help:"Resolved schema file (.json, .yaml, or .yml)."`
}

func (c *CheckCmd) Run() error {
	s, err := loadSchema(c.Schema)
	if err != nil {
		return err
	}
	if errs := s.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "✗ %v\n", e)
		}
		return errors.New("schema validation failed")
	}

	functions := 0
	for _, svc := range s.Services {
		functions += len(svc.Functions)
	}
	fmt.Printf("✓ Program %s\n", s.Name)
	fmt.Printf("✓ %d typedefs, %d enums, %d structs, %d consts\n",
		len(s.Typedefs), len(s.Enums), len(s.Structs), len(s.Consts))
	fmt.Printf("✓ %d services, %d functions\n", len(s.Services), functions)
	return nil
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.DecodeYAML(data)
	default:
		return schema.DecodeJSON(data)
	}
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("wiregen"),
		kong.Description("Wiregen CLI for schema validation and Go code generation."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
