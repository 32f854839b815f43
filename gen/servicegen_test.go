package gen

import (
	"strings"
	"testing"

	"github.com/wiregen/wiregen/schema"
)

func testBaseService() *schema.ServiceDef {
	return &schema.ServiceDef{
		Name: "Base",
		Functions: []*schema.FunctionDef{
			{
				Name:       "ping",
				ReturnType: schema.Void(),
			},
		},
	}
}

func testDerivedService() *schema.ServiceDef {
	notFound := &schema.StructDef{
		Name:       "NotFoundEx",
		StructKind: schema.Exception,
		Fields: []*schema.Field{
			{ID: 1, Name: "message", Type: schema.String()},
		},
	}
	return &schema.ServiceDef{
		Name:   "Derived",
		Parent: testBaseService(),
		Functions: []*schema.FunctionDef{
			{
				Name:       "echo",
				Args:       []*schema.Field{{ID: 1, Name: "msg", Type: schema.String()}},
				ReturnType: schema.String(),
				Exceptions: []*schema.Field{{ID: 1, Name: "nfe", Type: notFound}},
			},
			{
				Name:   "fire",
				Oneway: true,
			},
		},
	}
}

func renderService(t *testing.T, svc *schema.ServiceDef) string {
	t.Helper()
	e := &emitter{}
	if err := emitService(e, svc); err != nil {
		t.Fatalf("emitService(%s): %v", svc.Name, err)
	}
	return e.String()
}

func TestEmitServiceInterface(t *testing.T) {
	src := renderService(t, testDerivedService())
	checkContains(t, src, []string{
		"type Derived interface {",
		"Base",
		"Echo(msg string) (string, error)",
		"Fire() error",
	}, nil)
}

func TestEmitClientSendRecv(t *testing.T) {
	src := renderService(t, testDerivedService())
	checkContains(t, src, []string{
		"type DerivedClient struct {",
		"*BaseClient",
		"func NewDerivedClient(t wire.Transport, f wire.ProtocolFactory) *DerivedClient {",
		"func (p *DerivedClient) sendEcho(msg string) error {",
		"p.SeqID++",
		`if err := oprot.WriteMessageBegin("echo", wire.CALL, p.SeqID); err != nil {`,
		"args := NewDerivedEchoArgs()",
		"args.Msg = msg",
		"return oprot.Flush()",
		"func (p *DerivedClient) recvEcho() (string, error) {",
		"if mTypeID == wire.EXCEPTION {",
		"wire.UNKNOWN_APPLICATION_EXCEPTION",
		"if seqID != p.SeqID {",
		"wire.BAD_SEQUENCE_ID",
		"result := NewDerivedEchoResult()",
		"if result.IsSetSuccess() {",
		"if result.Nfe != nil {",
		"return result.Success, result.Nfe",
	}, nil)
}

func TestEmitClientOneway(t *testing.T) {
	src := renderService(t, testDerivedService())
	checkContains(t, src, []string{
		"func (p *DerivedClient) Fire() error {",
		"return p.sendFire()",
		`if err := oprot.WriteMessageBegin("fire", wire.ONEWAY, p.SeqID); err != nil {`,
	}, []string{
		"recvFire",
	})
}

func TestEmitProcessor(t *testing.T) {
	src := renderService(t, testDerivedService())
	checkContains(t, src, []string{
		"type DerivedProcessor struct {",
		"*BaseProcessor",
		"p := &DerivedProcessor{BaseProcessor: NewBaseProcessorListener(handler, listener)}",
		`p.AddToProcessorMap("echo", &derivedProcessorEcho{handler: handler, listener: listener})`,
		"func (x *derivedProcessorEcho) Process(req wire.Request) (bool, error) {",
		"wire.PROTOCOL_ERROR",
		"x.listener.PreHandle(req, args.Msg)",
		"if r := recover(); r != nil {",
		"retval, err2 = x.handler.Echo(args.Msg)",
		"case *NotFoundEx:",
		"result.Nfe = v",
		"wire.INTERNAL_ERROR",
		`if err := oprot.WriteMessageBegin("echo", wire.REPLY, req.SeqID()); err != nil {`,
		"x.listener.Completed(req, err2)",
	}, nil)
}

func TestEmitProcessorRoot(t *testing.T) {
	src := renderService(t, testBaseService())
	checkContains(t, src, []string{
		"type BaseProcessor struct {",
		"processorMap map[string]wire.ProcessorFunction",
		"func (p *BaseProcessor) Receive(in, out wire.Protocol) (bool, error) {",
		"return wire.Dispatch(p, in, out)",
		"func (p *BaseProcessor) AddToProcessorMap(name string, fn wire.ProcessorFunction) {",
		"func (p *BaseProcessor) GetProcessorFunction(name string) (wire.ProcessorFunction, bool) {",
		"func (p *BaseProcessor) ProcessorMap() map[string]wire.ProcessorFunction {",
	}, nil)
}

func TestEmitProcessorOnewayWritesNoReply(t *testing.T) {
	src := renderService(t, testDerivedService())
	start := "func (x *derivedProcessorFire) Process"
	i := strings.Index(src, start)
	if i < 0 {
		t.Fatalf("missing %q", start)
	}
	body := src[i:]
	if j := strings.Index(body[1:], "\nfunc "); j >= 0 {
		body = body[:j+1]
	}
	checkContains(t, body, []string{
		"iprot := req.Input()",
		"err2 = x.handler.Fire()",
		"return true, nil",
	}, []string{
		"wire.REPLY",
		"oprot",
	})
}

func TestOnewayWithReturnRejected(t *testing.T) {
	svc := &schema.ServiceDef{
		Name: "Bad",
		Functions: []*schema.FunctionDef{
			{Name: "f", Oneway: true, ReturnType: schema.I32()},
		},
	}
	e := &emitter{}
	if err := emitService(e, svc); err == nil {
		t.Fatal("expected error for oneway function with a return value")
	}
}
