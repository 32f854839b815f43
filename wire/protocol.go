package wire

import "fmt"

// Protocol is the codec surface generated code reads and writes through.
// A single Protocol is not safe for concurrent use; sequence-number
// correlation assumes one in-flight call per input/output pair.
type Protocol interface {
	WriteMessageBegin(name string, typeID MessageType, seqID int32) error
	WriteMessageEnd() error
	WriteStructBegin(name string) error
	WriteStructEnd() error
	WriteFieldBegin(name string, typeID Type, id int16) error
	WriteFieldEnd() error
	WriteFieldStop() error
	WriteMapBegin(keyType, valueType Type, size int) error
	WriteMapEnd() error
	WriteListBegin(elemType Type, size int) error
	WriteListEnd() error
	WriteSetBegin(elemType Type, size int) error
	WriteSetEnd() error
	WriteBool(v bool) error
	WriteByte(v int8) error
	WriteI16(v int16) error
	WriteI32(v int32) error
	WriteI64(v int64) error
	WriteDouble(v float64) error
	WriteString(v string) error
	WriteBinary(v []byte) error

	ReadMessageBegin() (name string, typeID MessageType, seqID int32, err error)
	ReadMessageEnd() error
	ReadStructBegin() (name string, err error)
	ReadStructEnd() error
	ReadFieldBegin() (name string, typeID Type, id int16, err error)
	ReadFieldEnd() error
	ReadMapBegin() (keyType, valueType Type, size int, err error)
	ReadMapEnd() error
	ReadListBegin() (elemType Type, size int, err error)
	ReadListEnd() error
	ReadSetBegin() (elemType Type, size int, err error)
	ReadSetEnd() error
	ReadBool() (bool, error)
	ReadByte() (int8, error)
	ReadI16() (int16, error)
	ReadI32() (int32, error)
	ReadI64() (int64, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)

	// Skip consumes a value of the given wire tag without decoding it.
	Skip(typeID Type) error

	// Flush pushes buffered output to the underlying transport.
	Flush() error
}

// SkipValue consumes one value of the given wire tag from the protocol.
// Protocol implementations delegate their Skip method here.
func SkipValue(p Protocol, typeID Type) error {
	switch typeID {
	case BOOL:
		_, err := p.ReadBool()
		return err
	case BYTE:
		_, err := p.ReadByte()
		return err
	case I16:
		_, err := p.ReadI16()
		return err
	case I32:
		_, err := p.ReadI32()
		return err
	case I64:
		_, err := p.ReadI64()
		return err
	case DOUBLE:
		_, err := p.ReadDouble()
		return err
	case STRING, BINARY:
		_, err := p.ReadBinary()
		return err
	case STRUCT:
		if _, err := p.ReadStructBegin(); err != nil {
			return err
		}
		for {
			_, fieldType, _, err := p.ReadFieldBegin()
			if err != nil {
				return err
			}
			if fieldType == STOP {
				break
			}
			if err := SkipValue(p, fieldType); err != nil {
				return err
			}
			if err := p.ReadFieldEnd(); err != nil {
				return err
			}
		}
		return p.ReadStructEnd()
	case MAP:
		keyType, valType, size, err := p.ReadMapBegin()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := SkipValue(p, keyType); err != nil {
				return err
			}
			if err := SkipValue(p, valType); err != nil {
				return err
			}
		}
		return p.ReadMapEnd()
	case SET:
		elemType, size, err := p.ReadSetBegin()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := SkipValue(p, elemType); err != nil {
				return err
			}
		}
		return p.ReadSetEnd()
	case LIST:
		elemType, size, err := p.ReadListBegin()
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := SkipValue(p, elemType); err != nil {
				return err
			}
		}
		return p.ReadListEnd()
	default:
		return NewProtocolError(fmt.Errorf("cannot skip unknown wire tag %d", typeID))
	}
}
