package wire

import "fmt"

// ExceptionType is the machine-readable reason code carried by an
// ApplicationException.
type ExceptionType int32

const (
	UNKNOWN_APPLICATION_EXCEPTION ExceptionType = 0
	UNKNOWN_METHOD                ExceptionType = 1
	WRONG_MESSAGE_TYPE            ExceptionType = 2
	BAD_SEQUENCE_ID               ExceptionType = 4
	INTERNAL_ERROR                ExceptionType = 6
	PROTOCOL_ERROR                ExceptionType = 7
)

// String returns the string representation of the reason code.
func (t ExceptionType) String() string {
	switch t {
	case UNKNOWN_METHOD:
		return "UNKNOWN_METHOD"
	case WRONG_MESSAGE_TYPE:
		return "WRONG_MESSAGE_TYPE"
	case BAD_SEQUENCE_ID:
		return "BAD_SEQUENCE_ID"
	case INTERNAL_ERROR:
		return "INTERNAL_ERROR"
	case PROTOCOL_ERROR:
		return "PROTOCOL_ERROR"
	default:
		return "UNKNOWN_APPLICATION_EXCEPTION"
	}
}

// ApplicationException is a protocol-level error message, distinct from a
// declared business exception. It travels inside an EXCEPTION message as a
// two-field struct: message text at id 1, reason code at id 2.
type ApplicationException struct {
	message string
	typeID  ExceptionType
}

// NewApplicationException creates an application exception with the given
// reason code and message.
func NewApplicationException(typeID ExceptionType, message string) *ApplicationException {
	return &ApplicationException{message: message, typeID: typeID}
}

// TypeID returns the reason code.
func (e *ApplicationException) TypeID() ExceptionType { return e.typeID }

func (e *ApplicationException) Error() string {
	return fmt.Sprintf("%s: %s", e.typeID, e.message)
}

// Read decodes an application exception from the protocol, tolerating
// unknown fields the way every generated reader does.
func (e *ApplicationException) Read(iprot Protocol) error {
	if _, err := iprot.ReadStructBegin(); err != nil {
		return err
	}
	for {
		_, fieldType, fieldID, err := iprot.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fieldType == STOP {
			break
		}
		switch fieldID {
		case 1:
			if fieldType == STRING {
				if e.message, err = iprot.ReadString(); err != nil {
					return err
				}
			} else if err = iprot.Skip(fieldType); err != nil {
				return err
			}
		case 2:
			if fieldType == I32 {
				v, err := iprot.ReadI32()
				if err != nil {
					return err
				}
				e.typeID = ExceptionType(v)
			} else if err = iprot.Skip(fieldType); err != nil {
				return err
			}
		default:
			if err = iprot.Skip(fieldType); err != nil {
				return err
			}
		}
		if err = iprot.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd()
}

// Write encodes the application exception onto the protocol.
func (e *ApplicationException) Write(oprot Protocol) error {
	if err := oprot.WriteStructBegin("TApplicationException"); err != nil {
		return err
	}
	if len(e.message) > 0 {
		if err := oprot.WriteFieldBegin("message", STRING, 1); err != nil {
			return err
		}
		if err := oprot.WriteString(e.message); err != nil {
			return err
		}
		if err := oprot.WriteFieldEnd(); err != nil {
			return err
		}
	}
	if err := oprot.WriteFieldBegin("type", I32, 2); err != nil {
		return err
	}
	if err := oprot.WriteI32(int32(e.typeID)); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(); err != nil {
		return err
	}
	return oprot.WriteStructEnd()
}

// ProtocolError wraps a transport or framing failure encountered while
// encoding or decoding.
type ProtocolError struct {
	err error
}

// NewProtocolError wraps err as a protocol error.
func NewProtocolError(err error) *ProtocolError {
	return &ProtocolError{err: err}
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.err.Error()
}

// Unwrap returns the underlying failure.
func (e *ProtocolError) Unwrap() error { return e.err }
