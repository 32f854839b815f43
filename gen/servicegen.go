package gen

import (
	"fmt"
	"strings"

	"github.com/wiregen/wiregen/schema"
)

// argsStructFor builds the synthetic call-args struct for one function.
func argsStructFor(svc *schema.ServiceDef, fn *schema.FunctionDef) *schema.StructDef {
	return &schema.StructDef{
		Name:       svc.Name + "_" + fn.Name + "_args",
		StructKind: schema.CallArgs,
		Fields:     fn.Args,
	}
}

// resultStructFor builds the synthetic call-result struct for one function:
// the optional success value at field id 0, then the declared exceptions.
// Result machinery is generated even for oneway functions so the output
// shape stays stable across the oneway flag.
func resultStructFor(svc *schema.ServiceDef, fn *schema.FunctionDef) *schema.StructDef {
	var fields []*schema.Field
	if !fn.ReturnsVoid() {
		fields = append(fields, &schema.Field{
			ID:           0,
			Name:         "success",
			Type:         fn.ReturnType,
			Requiredness: schema.Optional,
		})
	}
	fields = append(fields, fn.Exceptions...)
	return &schema.StructDef{
		Name:       svc.Name + "_" + fn.Name + "_result",
		StructKind: schema.CallResult,
		Fields:     fields,
	}
}

// signatureFor renders a function's Go signature fragment after the name:
// parameter list and return types.
func signatureFor(fn *schema.FunctionDef) (string, error) {
	var params []string
	for _, arg := range fn.Args {
		repr, err := goType(arg.Type)
		if err != nil {
			return "", err
		}
		params = append(params, privatize(arg.Name)+" "+repr)
	}
	sig := "(" + strings.Join(params, ", ") + ")"
	if fn.ReturnsVoid() {
		return sig + " error", nil
	}
	repr, err := goType(fn.ReturnType)
	if err != nil {
		return "", err
	}
	return sig + " (" + repr + ", error)", nil
}

// zeroExpr renders the zero-equivalent literal for an early return of type t.
func zeroExpr(t schema.Type) string {
	if isNilable(t) {
		return "nil"
	}
	switch tt := schema.TrueType(t).(type) {
	case *schema.BaseType:
		return zeroLiteral(tt)
	default:
		return "0"
	}
}

// emitService renders one service unit: the handler interface, the synthetic
// call structs for the service's own functions, the client, and the server
// processor.
func emitService(e *emitter, svc *schema.ServiceDef) error {
	if err := emitServiceInterface(e, svc); err != nil {
		return err
	}
	for _, fn := range svc.Functions {
		if fn.Oneway && (!fn.ReturnsVoid() || len(fn.Exceptions) > 0) {
			return unsupportedType("oneway function %s.%s cannot return a value or throw",
				svc.Name, fn.Name)
		}
		if err := emitStruct(e, argsStructFor(svc, fn)); err != nil {
			return err
		}
		if err := emitStruct(e, resultStructFor(svc, fn)); err != nil {
			return err
		}
	}
	if err := emitClient(e, svc); err != nil {
		return err
	}
	return emitProcessor(e, svc)
}

func emitServiceInterface(e *emitter, svc *schema.ServiceDef) error {
	name := publicize(svc.Name)
	emitDoc(e, svc.Doc)
	e.pf("type %s interface {", name)
	e.in()
	if svc.Parent != nil {
		e.p(publicize(svc.Parent.Name))
		e.blank()
	}
	for _, fn := range svc.Functions {
		emitDoc(e, fn.Doc)
		sig, err := signatureFor(fn)
		if err != nil {
			return err
		}
		e.pf("%s%s", publicize(fn.Name), sig)
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}

func emitClient(e *emitter, svc *schema.ServiceDef) error {
	name := publicize(svc.Name)
	if svc.Parent != nil {
		parent := publicize(svc.Parent.Name)
		e.pf("type %sClient struct {", name)
		e.in()
		e.pf("*%sClient", parent)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sClient(t wire.Transport, f wire.ProtocolFactory) *%sClient {", name, name)
		e.in()
		e.pf("return &%sClient{%sClient: New%sClient(t, f)}", name, parent, parent)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sClientProtocol(t wire.Transport, iprot, oprot wire.Protocol) *%sClient {", name, name)
		e.in()
		e.pf("return &%sClient{%sClient: New%sClientProtocol(t, iprot, oprot)}", name, parent, parent)
		e.out()
		e.p("}")
		e.blank()
	} else {
		e.pf("type %sClient struct {", name)
		e.in()
		e.p("Transport wire.Transport")
		e.p("InputProtocol wire.Protocol")
		e.p("OutputProtocol wire.Protocol")
		e.p("SeqID int32")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sClient(t wire.Transport, f wire.ProtocolFactory) *%sClient {", name, name)
		e.in()
		e.p("return New" + name + "ClientProtocol(t, f.GetProtocol(t), f.GetProtocol(t))")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sClientProtocol(t wire.Transport, iprot, oprot wire.Protocol) *%sClient {", name, name)
		e.in()
		e.pf("return &%sClient{", name)
		e.in()
		e.p("Transport: t,")
		e.p("InputProtocol: iprot,")
		e.p("OutputProtocol: oprot,")
		e.out()
		e.p("}")
		e.out()
		e.p("}")
		e.blank()
	}

	for _, fn := range svc.Functions {
		if err := emitClientFunction(e, svc, fn); err != nil {
			return err
		}
	}
	return nil
}

func emitClientFunction(e *emitter, svc *schema.ServiceDef, fn *schema.FunctionDef) error {
	name := publicize(svc.Name)
	fname := publicize(fn.Name)
	sig, err := signatureFor(fn)
	if err != nil {
		return err
	}
	var callArgs []string
	for _, arg := range fn.Args {
		callArgs = append(callArgs, privatize(arg.Name))
	}
	argList := strings.Join(callArgs, ", ")

	emitDoc(e, fn.Doc)
	e.pf("func (p *%sClient) %s%s {", name, fname, sig)
	e.in()
	switch {
	case fn.Oneway:
		e.pf("return p.send%s(%s)", fname, argList)
	case fn.ReturnsVoid():
		e.pf("if err := p.send%s(%s); err != nil {", fname, argList)
		e.in()
		e.p("return err")
		e.out()
		e.p("}")
		e.pf("return p.recv%s()", fname)
	default:
		zero := zeroExpr(fn.ReturnType)
		e.pf("if err := p.send%s(%s); err != nil {", fname, argList)
		e.in()
		e.pf("return %s, err", zero)
		e.out()
		e.p("}")
		e.pf("return p.recv%s()", fname)
	}
	e.out()
	e.p("}")
	e.blank()

	if err := emitClientSend(e, svc, fn); err != nil {
		return err
	}
	if !fn.Oneway {
		if err := emitClientRecv(e, svc, fn); err != nil {
			return err
		}
	}
	return nil
}

func emitClientSend(e *emitter, svc *schema.ServiceDef, fn *schema.FunctionDef) error {
	name := publicize(svc.Name)
	fname := publicize(fn.Name)
	var params []string
	for _, arg := range fn.Args {
		repr, err := goType(arg.Type)
		if err != nil {
			return err
		}
		params = append(params, privatize(arg.Name)+" "+repr)
	}
	msgType := "wire.CALL"
	if fn.Oneway {
		msgType = "wire.ONEWAY"
	}
	argsType := publicize(svc.Name + "_" + fn.Name + "_args")

	e.pf("func (p *%sClient) send%s(%s) error {", name, fname, strings.Join(params, ", "))
	e.in()
	e.p("oprot := p.OutputProtocol")
	e.p("p.SeqID++")
	e.pf("if err := oprot.WriteMessageBegin(%q, %s, p.SeqID); err != nil {", fn.Name, msgType)
	e.in()
	e.p("return err")
	e.out()
	e.p("}")
	e.pf("args := New%s()", argsType)
	for _, arg := range fn.Args {
		e.pf("args.%s = %s", publicize(arg.Name), privatize(arg.Name))
	}
	e.p("if err := args.Write(oprot); err != nil {")
	e.in()
	e.p("return err")
	e.out()
	e.p("}")
	e.p("if err := oprot.WriteMessageEnd(); err != nil {")
	e.in()
	e.p("return err")
	e.out()
	e.p("}")
	e.p("return oprot.Flush()")
	e.out()
	e.p("}")
	e.blank()
	return nil
}

func emitClientRecv(e *emitter, svc *schema.ServiceDef, fn *schema.FunctionDef) error {
	name := publicize(svc.Name)
	fname := publicize(fn.Name)
	resultType := publicize(svc.Name + "_" + fn.Name + "_result")
	void := fn.ReturnsVoid()

	ret := " error"
	errRet := func(expr string) string { return "return " + expr }
	if !void {
		repr, err := goType(fn.ReturnType)
		if err != nil {
			return err
		}
		ret = " (" + repr + ", error)"
		zero := zeroExpr(fn.ReturnType)
		errRet = func(expr string) string { return "return " + zero + ", " + expr }
	}

	e.pf("func (p *%sClient) recv%s()%s {", name, fname, ret)
	e.in()
	e.p("iprot := p.InputProtocol")
	e.p("_, mTypeID, seqID, err := iprot.ReadMessageBegin()")
	e.p("if err != nil {")
	e.in()
	e.p(errRet("err"))
	e.out()
	e.p("}")
	e.p("if mTypeID == wire.EXCEPTION {")
	e.in()
	e.p(`exc := wire.NewApplicationException(wire.UNKNOWN_APPLICATION_EXCEPTION, "unknown exception")`)
	e.p("if err := exc.Read(iprot); err != nil {")
	e.in()
	e.p(errRet("err"))
	e.out()
	e.p("}")
	e.p("if err := iprot.ReadMessageEnd(); err != nil {")
	e.in()
	e.p(errRet("err"))
	e.out()
	e.p("}")
	e.p(errRet("exc"))
	e.out()
	e.p("}")
	e.p("if seqID != p.SeqID {")
	e.in()
	e.p(errRet(fmt.Sprintf("wire.NewApplicationException(wire.BAD_SEQUENCE_ID, %q)",
		fn.Name+": out of sequence response")))
	e.out()
	e.p("}")
	e.pf("result := New%s()", resultType)
	e.p("if err := result.Read(iprot); err != nil {")
	e.in()
	e.p(errRet("err"))
	e.out()
	e.p("}")
	e.p("if err := iprot.ReadMessageEnd(); err != nil {")
	e.in()
	e.p(errRet("err"))
	e.out()
	e.p("}")

	// Success is preferred over each declared exception in field order.
	if !void {
		if isNilable(fn.ReturnType) {
			e.p("if result.Success != nil {")
		} else {
			e.p("if result.IsSetSuccess() {")
		}
		e.in()
		e.p("return result.Success, nil")
		e.out()
		e.p("}")
	}
	for _, exc := range fn.Exceptions {
		e.pf("if result.%s != nil {", publicize(exc.Name))
		e.in()
		if void {
			e.pf("return result.%s", publicize(exc.Name))
		} else {
			e.pf("return result.Success, result.%s", publicize(exc.Name))
		}
		e.out()
		e.p("}")
	}
	if void {
		e.p("return nil")
	} else {
		e.p("return result.Success, nil")
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}

func emitProcessor(e *emitter, svc *schema.ServiceDef) error {
	name := publicize(svc.Name)
	if svc.Parent != nil {
		parent := publicize(svc.Parent.Name)
		e.pf("type %sProcessor struct {", name)
		e.in()
		e.pf("*%sProcessor", parent)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sProcessor(handler %s) *%sProcessor {", name, name, name)
		e.in()
		e.pf("return New%sProcessorListener(handler, wire.NopListener{})", name)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sProcessorListener(handler %s, listener wire.HandlerListener) *%sProcessor {",
			name, name, name)
		e.in()
		e.pf("p := &%sProcessor{%sProcessor: New%sProcessorListener(handler, listener)}",
			name, parent, parent)
		for _, fn := range svc.Functions {
			e.pf("p.AddToProcessorMap(%q, &%s{handler: handler, listener: listener})",
				fn.Name, processorFuncType(svc, fn))
		}
		e.p("return p")
		e.out()
		e.p("}")
		e.blank()
	} else {
		e.pf("type %sProcessor struct {", name)
		e.in()
		e.p("processorMap map[string]wire.ProcessorFunction")
		e.pf("handler %s", name)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sProcessor(handler %s) *%sProcessor {", name, name, name)
		e.in()
		e.pf("return New%sProcessorListener(handler, wire.NopListener{})", name)
		e.out()
		e.p("}")
		e.blank()
		e.pf("func New%sProcessorListener(handler %s, listener wire.HandlerListener) *%sProcessor {",
			name, name, name)
		e.in()
		e.pf("p := &%sProcessor{", name)
		e.in()
		e.p("processorMap: make(map[string]wire.ProcessorFunction),")
		e.p("handler: handler,")
		e.out()
		e.p("}")
		for _, fn := range svc.Functions {
			e.pf("p.AddToProcessorMap(%q, &%s{handler: handler, listener: listener})",
				fn.Name, processorFuncType(svc, fn))
		}
		e.p("return p")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func (p *%sProcessor) Receive(in, out wire.Protocol) (bool, error) {", name)
		e.in()
		e.p("return wire.Dispatch(p, in, out)")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func (p *%sProcessor) AddToProcessorMap(name string, fn wire.ProcessorFunction) {", name)
		e.in()
		e.p("p.processorMap[name] = fn")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func (p *%sProcessor) GetProcessorFunction(name string) (wire.ProcessorFunction, bool) {", name)
		e.in()
		e.p("fn, ok := p.processorMap[name]")
		e.p("return fn, ok")
		e.out()
		e.p("}")
		e.blank()
		e.pf("func (p *%sProcessor) ProcessorMap() map[string]wire.ProcessorFunction {", name)
		e.in()
		e.p("return p.processorMap")
		e.out()
		e.p("}")
		e.blank()
	}

	for _, fn := range svc.Functions {
		if err := emitProcessorFunction(e, svc, fn); err != nil {
			return err
		}
	}
	return nil
}

// processorFuncType names the unexported per-method processor function type.
func processorFuncType(svc *schema.ServiceDef, fn *schema.FunctionDef) string {
	return privatize(svc.Name) + "Processor" + publicize(fn.Name)
}

func emitProcessorFunction(e *emitter, svc *schema.ServiceDef, fn *schema.FunctionDef) error {
	name := publicize(svc.Name)
	typeName := processorFuncType(svc, fn)
	argsType := publicize(svc.Name + "_" + fn.Name + "_args")
	resultType := publicize(svc.Name + "_" + fn.Name + "_result")

	e.pf("type %s struct {", typeName)
	e.in()
	e.pf("handler %s", name)
	e.p("listener wire.HandlerListener")
	e.out()
	e.p("}")
	e.blank()

	e.pf("func (x *%s) Process(req wire.Request) (bool, error) {", typeName)
	e.in()
	// Oneway bodies never write a reply, so oprot must not be bound there.
	if fn.Oneway {
		e.p("iprot := req.Input()")
	} else {
		e.p("iprot, oprot := req.Input(), req.Output()")
	}
	e.pf("args := New%s()", argsType)
	e.p("if err := args.Read(iprot); err != nil {")
	e.in()
	e.p("iprot.ReadMessageEnd()")
	e.p("exc := wire.NewApplicationException(wire.PROTOCOL_ERROR, err.Error())")
	e.p("if werr := wire.ReplyException(req, exc); werr != nil {")
	e.in()
	e.p("return false, werr")
	e.out()
	e.p("}")
	e.p("return false, err")
	e.out()
	e.p("}")
	e.p("if err := iprot.ReadMessageEnd(); err != nil {")
	e.in()
	e.p("return false, err")
	e.out()
	e.p("}")
	e.blank()

	var argRefs []string
	for _, arg := range fn.Args {
		argRefs = append(argRefs, "args."+publicize(arg.Name))
	}
	preArgs := ""
	if len(argRefs) > 0 {
		preArgs = ", " + strings.Join(argRefs, ", ")
	}
	e.pf("x.listener.PreHandle(req%s)", preArgs)

	void := fn.ReturnsVoid()
	// Oneway calls write no reply; the result struct is only declared when
	// something assigns into it.
	if !fn.Oneway || len(fn.Exceptions) > 0 {
		e.pf("result := New%s()", resultType)
	}
	if !void {
		repr, err := goType(fn.ReturnType)
		if err != nil {
			return err
		}
		e.pf("var retval %s", repr)
	}
	e.p("var err2 error")
	e.p("func() {")
	e.in()
	e.p("defer func() {")
	e.in()
	e.p("if r := recover(); r != nil {")
	e.in()
	e.pf("err2 = fmt.Errorf(%q, r)", "handler panic: %v")
	e.out()
	e.p("}")
	e.out()
	e.p("}()")
	call := fmt.Sprintf("x.handler.%s(%s)", publicize(fn.Name), strings.Join(argRefs, ", "))
	if void {
		e.pf("err2 = %s", call)
	} else {
		e.pf("retval, err2 = %s", call)
	}
	e.out()
	e.p("}()")
	if void {
		e.p("x.listener.PostHandle(req)")
	} else {
		e.p("x.listener.PostHandle(req, retval)")
	}

	e.p("if err2 != nil {")
	e.in()
	if len(fn.Exceptions) > 0 {
		e.p("switch v := err2.(type) {")
		for _, exc := range fn.Exceptions {
			repr, err := goType(exc.Type)
			if err != nil {
				return err
			}
			e.pf("case %s:", repr)
			e.in()
			e.pf("result.%s = v", publicize(exc.Name))
			e.out()
		}
		e.p("default:")
		e.in()
		emitInternalErrorReply(e, fn)
		e.out()
		e.p("}")
	} else {
		emitInternalErrorReply(e, fn)
	}
	e.out()
	if !void {
		e.p("} else {")
		e.in()
		e.p("result.Success = retval")
		e.out()
	}
	e.p("}")
	e.p("x.listener.Completed(req, err2)")

	if fn.Oneway {
		e.p("return true, nil")
	} else {
		e.pf("if err := oprot.WriteMessageBegin(%q, wire.REPLY, req.SeqID()); err != nil {", fn.Name)
		e.in()
		e.p("return false, err")
		e.out()
		e.p("}")
		e.p("if err := result.Write(oprot); err != nil {")
		e.in()
		e.p("return false, err")
		e.out()
		e.p("}")
		e.p("if err := oprot.WriteMessageEnd(); err != nil {")
		e.in()
		e.p("return false, err")
		e.out()
		e.p("}")
		e.p("if err := oprot.Flush(); err != nil {")
		e.in()
		e.p("return false, err")
		e.out()
		e.p("}")
		e.p("return true, nil")
	}
	e.out()
	e.p("}")
	e.blank()
	return nil
}

// emitInternalErrorReply renders the INTERNAL_ERROR escape for handler
// failures that match no declared exception.
func emitInternalErrorReply(e *emitter, fn *schema.FunctionDef) {
	e.p("x.listener.Completed(req, err2)")
	if fn.Oneway {
		e.p("return true, err2")
	} else {
		e.pf("exc := wire.NewApplicationException(wire.INTERNAL_ERROR, %q+err2.Error())",
			"internal error processing "+fn.Name+": ")
		e.p("if werr := wire.ReplyException(req, exc); werr != nil {")
		e.in()
		e.p("return false, werr")
		e.out()
		e.p("}")
		e.p("return true, err2")
	}
}
