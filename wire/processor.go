package wire

import (
	"fmt"
	"io"
	"log/slog"
	"net"
)

// Request is one decoded message header plus the protocols for reading its
// payload and writing the reply.
type Request struct {
	name  string
	seqID int32
	in    Protocol
	out   Protocol
}

// NewRequest builds a request for the given method name and sequence id.
func NewRequest(name string, seqID int32, in, out Protocol) Request {
	return Request{name: name, seqID: seqID, in: in, out: out}
}

// Name returns the method name from the message header.
func (r Request) Name() string { return r.name }

// SeqID returns the sequence id from the message header.
func (r Request) SeqID() int32 { return r.seqID }

// Input returns the protocol positioned at the request payload.
func (r Request) Input() Protocol { return r.in }

// Output returns the protocol the reply is written to.
func (r Request) Output() Protocol { return r.out }

// ReadRequest reads the next message header from in and pairs it with out.
func ReadRequest(in, out Protocol) (Request, error) {
	name, _, seqID, err := in.ReadMessageBegin()
	if err != nil {
		return Request{}, err
	}
	return NewRequest(name, seqID, in, out), nil
}

// ProcessorFunction handles one method: it decodes the arguments, invokes
// the handler, and writes the reply. It reports whether the connection
// should keep serving and any transport-level failure.
type ProcessorFunction interface {
	Process(req Request) (bool, error)
}

// Processor dispatches requests to per-method processor functions. Generated
// service processors implement it; composition over a parent service seeds
// the map with the parent's entries.
type Processor interface {
	// Receive reads one message and dispatches it.
	Receive(in, out Protocol) (bool, error)

	// AddToProcessorMap registers a method handler.
	AddToProcessorMap(name string, fn ProcessorFunction)

	// GetProcessorFunction looks up the handler for a method name.
	GetProcessorFunction(name string) (ProcessorFunction, bool)

	// ProcessorMap exposes the registered handlers.
	ProcessorMap() map[string]ProcessorFunction
}

// HandlerListener observes handler invocations. Generated processor
// functions call PreHandle before invoking the handler, PostHandle after it
// returns, and Completed once the reply has been written.
type HandlerListener interface {
	PreHandle(req Request, args ...any)
	PostHandle(req Request, results ...any)
	Completed(req Request, err error)
}

// NopListener is a HandlerListener that does nothing.
type NopListener struct{}

func (NopListener) PreHandle(Request, ...any)  {}
func (NopListener) PostHandle(Request, ...any) {}
func (NopListener) Completed(Request, error)   {}

// ReplyUnknownMethod writes the EXCEPTION reply sent when no processor
// function is registered for the request's method, then drains the request
// payload.
func ReplyUnknownMethod(req Request) error {
	if err := req.Input().Skip(STRUCT); err != nil {
		return err
	}
	if err := req.Input().ReadMessageEnd(); err != nil {
		return err
	}
	return ReplyException(req, NewApplicationException(UNKNOWN_METHOD,
		fmt.Sprintf("unknown method %q", req.Name())))
}

// ReplyException writes exc as an EXCEPTION message for req and flushes.
func ReplyException(req Request, exc *ApplicationException) error {
	out := req.Output()
	if err := out.WriteMessageBegin(req.Name(), EXCEPTION, req.SeqID()); err != nil {
		return err
	}
	if err := exc.Write(out); err != nil {
		return err
	}
	if err := out.WriteMessageEnd(); err != nil {
		return err
	}
	return out.Flush()
}

// Dispatch reads one message from in and routes it through proc. An unknown
// method gets an UNKNOWN_METHOD reply and stops the connection.
func Dispatch(proc Processor, in, out Protocol) (bool, error) {
	req, err := ReadRequest(in, out)
	if err != nil {
		return false, err
	}
	fn, ok := proc.GetProcessorFunction(req.Name())
	if !ok {
		if err := ReplyUnknownMethod(req); err != nil {
			return false, err
		}
		return false, nil
	}
	return fn.Process(req)
}

// Server accepts TCP connections and serves each one with a processor over
// framed binary protocols.
type Server struct {
	proc    Processor
	factory ProtocolFactory
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger connection errors go to.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithProtocolFactory sets the protocol factory used for connections.
func WithProtocolFactory(factory ProtocolFactory) ServerOption {
	return func(s *Server) { s.factory = factory }
}

// NewServer creates a server for the given processor.
func NewServer(proc Processor, opts ...ServerOption) *Server {
	s := &Server{
		proc:    proc,
		factory: NewBinaryProtocolFactory(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections from ln until Accept fails. Each connection is
// served on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	trans := NewFramedTransport(&connTransport{conn: conn})
	defer trans.Close()

	prot := s.factory.GetProtocol(trans)
	for {
		ok, err := s.proc.Receive(prot, prot)
		if err != nil {
			if err != io.EOF {
				s.logger.Error("connection error",
					slog.String("remote", conn.RemoteAddr().String()),
					slog.String("error", err.Error()))
			}
			return
		}
		if !ok {
			return
		}
	}
}

// connTransport adapts an accepted net.Conn to the Transport interface.
type connTransport struct {
	conn net.Conn
}

func (t *connTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *connTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *connTransport) Flush() error                { return nil }
func (t *connTransport) Close() error                { return t.conn.Close() }
