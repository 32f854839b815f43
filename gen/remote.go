package gen

import (
	"fmt"
	"strings"

	"github.com/wiregen/wiregen/schema"
)

// remoteArgKind classifies how a command-line argument string becomes a call
// parameter value.
func remoteSupported(t schema.Type) bool {
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		return tt.Kind() != schema.KindVoid
	case *schema.EnumDef:
		return true
	default:
		return false
	}
}

// qualifiedRepr renders a declared type for use from the remote main
// package, qualifying generated names with the package name.
func qualifiedRepr(t schema.Type, pkg string) (string, error) {
	switch tt := t.(type) {
	case *schema.EnumDef:
		return pkg + "." + publicize(tt.Name), nil
	case *schema.TypedefDef:
		return pkg + "." + publicize(tt.Name), nil
	default:
		return goType(t)
	}
}

// emitRemote renders the standalone command-line invocation unit for one
// service: flag parsing, connection setup, and one dispatch case per
// function, inherited functions included.
func emitRemote(e *emitter, svc *schema.ServiceDef, pkg, pkgImport string) error {
	name := publicize(svc.Name)
	e.p("// Code generated by wiregen. DO NOT EDIT.")
	e.blank()
	e.p("package main")
	e.blank()
	e.p("import (")
	e.in()
	e.p(`"flag"`)
	e.p(`"fmt"`)
	e.p(`"os"`)
	e.p(`"strconv"`)
	e.blank()
	e.p(`"github.com/wiregen/wiregen/wire"`)
	e.blank()
	e.pf("%s %q", pkg, pkgImport)
	e.out()
	e.p(")")
	e.blank()
	e.p("var _ = strconv.Atoi")
	e.blank()

	fns := svc.AllFunctions()

	e.p("func Usage() {")
	e.in()
	e.p(`fmt.Fprintln(os.Stderr, "Usage of", os.Args[0], "[-h host:port] [-framed] function [arg...]:")`)
	e.p("flag.PrintDefaults()")
	e.p(`fmt.Fprintln(os.Stderr, "\nFunctions:")`)
	for _, fn := range fns {
		sig, err := signatureFor(fn)
		if err != nil {
			return err
		}
		e.pf("fmt.Fprintln(os.Stderr, %q)", "  "+fn.Name+sig)
	}
	e.p("os.Exit(0)")
	e.out()
	e.p("}")
	e.blank()

	e.p("func main() {")
	e.in()
	e.p("var hostPort string")
	e.p("var framed bool")
	e.p("flag.Usage = Usage")
	e.p(`flag.StringVar(&hostPort, "h", "localhost:9090", "host:port to connect to")`)
	e.p(`flag.BoolVar(&framed, "framed", true, "use the framed transport")`)
	e.p("flag.Parse()")
	e.p("args := flag.Args()")
	e.p("if len(args) == 0 {")
	e.in()
	e.p("Usage()")
	e.out()
	e.p("}")
	e.blank()
	e.p("sock := wire.NewSocket(hostPort)")
	e.p("if err := sock.Open(); err != nil {")
	e.in()
	e.p(`fmt.Fprintln(os.Stderr, "error opening", hostPort+":", err)`)
	e.p("os.Exit(1)")
	e.out()
	e.p("}")
	e.p("var trans wire.Transport = sock")
	e.p("if framed {")
	e.in()
	e.p("trans = wire.NewFramedTransport(trans)")
	e.out()
	e.p("}")
	e.p("defer trans.Close()")
	e.pf("client := %s.New%sClient(trans, wire.NewBinaryProtocolFactory())", pkg, name)
	e.blank()
	e.p("switch args[0] {")
	for _, fn := range fns {
		if err := emitRemoteCase(e, fn, pkg); err != nil {
			return err
		}
	}
	e.p("default:")
	e.in()
	e.p(`fmt.Fprintln(os.Stderr, "invalid function", args[0])`)
	e.p("os.Exit(1)")
	e.out()
	e.p("}")
	e.out()
	e.p("}")
	return nil
}

func emitRemoteCase(e *emitter, fn *schema.FunctionDef, pkg string) error {
	e.pf("case %q:", fn.Name)
	e.in()
	defer func() {
		e.out()
	}()

	for _, arg := range fn.Args {
		if !remoteSupported(arg.Type) {
			e.pf("fmt.Fprintln(os.Stderr, %q)",
				fn.Name+": argument "+arg.Name+" has a type the command line cannot express")
			e.p("os.Exit(1)")
			return nil
		}
	}
	e.pf("if len(args)-1 != %d {", len(fn.Args))
	e.in()
	e.pf("fmt.Fprintln(os.Stderr, %q)",
		fmt.Sprintf("%s requires %d argument(s)", fn.Name, len(fn.Args)))
	e.p("os.Exit(1)")
	e.out()
	e.p("}")

	var values []string
	for i, arg := range fn.Args {
		val := fmt.Sprintf("value%d", i)
		src := fmt.Sprintf("args[%d]", i+1)
		if err := emitRemoteParse(e, arg.Type, val, src, i, pkg); err != nil {
			return err
		}
		values = append(values, val)
	}
	argList := strings.Join(values, ", ")

	if fn.ReturnsVoid() {
		e.pf("if err := client.%s(%s); err != nil {", publicize(fn.Name), argList)
		e.in()
		e.pf("fmt.Fprintln(os.Stderr, %q, err)", fn.Name+" failed:")
		e.p("os.Exit(1)")
		e.out()
		e.p("}")
		e.p(`fmt.Println("OK")`)
	} else {
		e.pf("ret, err := client.%s(%s)", publicize(fn.Name), argList)
		e.p("if err != nil {")
		e.in()
		e.pf("fmt.Fprintln(os.Stderr, %q, err)", fn.Name+" failed:")
		e.p("os.Exit(1)")
		e.out()
		e.p("}")
		e.p("fmt.Println(ret)")
	}
	return nil
}

// emitRemoteParse renders the conversion of one positional argument string
// into the parameter's declared type.
func emitRemoteParse(e *emitter, t schema.Type, val, src string, n int, pkg string) error {
	fail := func() {
		e.p("if err != nil {")
		e.in()
		e.pf("fmt.Fprintln(os.Stderr, %q, err)", fmt.Sprintf("argument %d:", n+1))
		e.p("os.Exit(1)")
		e.out()
		e.p("}")
	}
	switch tt := schema.TrueType(t).(type) {
	case *schema.EnumDef:
		repr, err := qualifiedRepr(t, pkg)
		if err != nil {
			return err
		}
		e.pf("raw%d, err := strconv.ParseInt(%s, 10, 64)", n, src)
		fail()
		e.pf("%s := %s(raw%d)", val, repr, n)
		return nil
	case *schema.BaseType:
		switch tt.Kind() {
		case schema.KindString:
			e.pf("%s := %s", val, src)
		case schema.KindBinary:
			e.pf("%s := []byte(%s)", val, src)
		case schema.KindBool:
			e.pf("%s, err := strconv.ParseBool(%s)", val, src)
			fail()
		case schema.KindDouble:
			e.pf("%s, err := strconv.ParseFloat(%s, 64)", val, src)
			fail()
		case schema.KindByte, schema.KindI16, schema.KindI32, schema.KindI64:
			repr, err := qualifiedRepr(t, pkg)
			if err != nil {
				return err
			}
			e.pf("raw%d, err := strconv.ParseInt(%s, 10, 64)", n, src)
			fail()
			e.pf("%s := %s(raw%d)", val, repr, n)
		default:
			return unsupportedType("argument type %s", t.TypeName())
		}
		return nil
	default:
		return unsupportedType("argument type %s", t.TypeName())
	}
}
