// Package gen implements the type-directed synthesis engine: it walks a
// resolved schema and renders Go source units containing data-type layouts
// with presence tracking, paired binary-protocol codecs, and client/server
// RPC dispatch code.
package gen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wiregen/wiregen/schema"
	"github.com/wiregen/wiregen/sink"
)

const defaultRuntimeImport = "github.com/wiregen/wiregen/wire"

// Config controls a generation pass.
type Config struct {
	// PackageName is the generated package name. Defaults to the schema
	// name, lowercased.
	PackageName string

	// PackageImport is the import path remote driver units use to reach
	// the generated package. Defaults to PackageName.
	PackageImport string

	// RuntimeImport is the import path of the wire runtime. The imported
	// package must be named wire.
	RuntimeImport string

	// Format runs goimports over every finished unit.
	Format bool

	// EmitRemote generates a command-line driver unit per service.
	EmitRemote bool
}

func applyConfigDefaults(cfg Config, s *schema.Schema) Config {
	if cfg.PackageName == "" {
		cfg.PackageName = strings.ToLower(s.Name)
	}
	if cfg.PackageImport == "" {
		cfg.PackageImport = cfg.PackageName
	}
	if cfg.RuntimeImport == "" {
		cfg.RuntimeImport = defaultRuntimeImport
	}
	return cfg
}

// Generator renders a schema into source units. Generation is pure and
// single-threaded: schema in, text out. A failed pass writes nothing.
type Generator struct {
	cfg Config
}

// New creates a generator with the given configuration.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

type unit struct {
	path string
	src  []byte
}

// newUnit starts a generated-package unit with the shared header.
func newUnit(cfg Config) *emitter {
	e := &emitter{}
	e.p("// Code generated by wiregen. DO NOT EDIT.")
	e.blank()
	e.pf("package %s", cfg.PackageName)
	e.blank()
	e.p("import (")
	e.in()
	e.p(`"fmt"`)
	e.p(`"math"`)
	e.blank()
	e.pf("%q", cfg.RuntimeImport)
	e.out()
	e.p(")")
	e.blank()
	e.p("// Guards against unused imports from the naive import list.")
	e.p("var _ = fmt.Printf")
	e.p("var _ = math.MinInt32")
	e.p("var _ = wire.STOP")
	e.blank()
	return e
}

// Generate renders every declaration of s and writes the finished units to
// out. The schema is validated first; generation-time errors abort the pass
// before anything is written, so a failure leaves no partial artifacts.
func (g *Generator) Generate(ctx context.Context, s *schema.Schema, out sink.OutputSink) error {
	if errs := s.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid schema %s: %w", s.Name, errors.Join(errs...))
	}
	cfg := applyConfigDefaults(g.cfg, s)
	program := strings.ToLower(s.Name)

	var units []unit

	e := newUnit(cfg)
	for _, td := range s.Typedefs {
		if err := emitTypedef(e, td); err != nil {
			return err
		}
	}
	for _, en := range s.Enums {
		emitEnum(e, en)
	}
	for _, sd := range s.Structs {
		if err := emitStruct(e, sd); err != nil {
			return err
		}
	}
	units = append(units, unit{path: program + "_types.go", src: e.bytes()})

	if len(s.Consts) > 0 {
		e := newUnit(cfg)
		if err := emitConsts(e, s.Consts); err != nil {
			return err
		}
		units = append(units, unit{path: program + "_consts.go", src: e.bytes()})
	}

	for _, svc := range s.Services {
		e := newUnit(cfg)
		if err := emitService(e, svc); err != nil {
			return err
		}
		units = append(units, unit{path: strings.ToLower(svc.Name) + ".go", src: e.bytes()})

		if cfg.EmitRemote {
			re := &emitter{}
			if err := emitRemote(re, svc, cfg.PackageName, cfg.PackageImport); err != nil {
				return err
			}
			name := strings.ToLower(svc.Name) + "-remote"
			units = append(units, unit{path: name + "/" + name + ".go", src: re.bytes()})
		}
	}

	if cfg.Format {
		out = sink.NewFormattingSink(out)
	}
	for _, u := range units {
		if err := out.WriteFile(ctx, u.path, u.src); err != nil {
			return fmt.Errorf("writing %s: %w", u.path, err)
		}
	}
	return nil
}
