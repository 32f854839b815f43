// Package wire implements the framed binary protocol and request plumbing
// that generated code compiles against: wire-tag constants, the Protocol
// interface and its binary implementation, transports, application
// exceptions, and server-side dispatch support.
package wire

// Type is the wire tag identifying a value's on-the-wire shape.
type Type int8

const (
	STOP   Type = 0
	VOID   Type = 1
	BOOL   Type = 2
	BYTE   Type = 3
	DOUBLE Type = 4
	I16    Type = 6
	I32    Type = 8
	I64    Type = 10
	STRING Type = 11
	STRUCT Type = 12
	MAP    Type = 13
	SET    Type = 14
	LIST   Type = 15
	BINARY Type = 18
)

// String returns the string representation of the wire tag.
func (t Type) String() string {
	switch t {
	case STOP:
		return "STOP"
	case VOID:
		return "VOID"
	case BOOL:
		return "BOOL"
	case BYTE:
		return "BYTE"
	case DOUBLE:
		return "DOUBLE"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case STRING:
		return "STRING"
	case STRUCT:
		return "STRUCT"
	case MAP:
		return "MAP"
	case SET:
		return "SET"
	case LIST:
		return "LIST"
	case BINARY:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// MessageType identifies the four message envelopes.
type MessageType int32

const (
	INVALID_MESSAGE_TYPE MessageType = 0
	CALL                 MessageType = 1
	REPLY                MessageType = 2
	EXCEPTION            MessageType = 3
	ONEWAY               MessageType = 4
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	switch t {
	case CALL:
		return "CALL"
	case REPLY:
		return "REPLY"
	case EXCEPTION:
		return "EXCEPTION"
	case ONEWAY:
		return "ONEWAY"
	default:
		return "INVALID"
	}
}
