package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	versionMask = 0xffff0000
	version1    = 0x80010000
)

// BinaryProtocol is the framed binary codec. Message headers use the strict
// versioned encoding; all integers are big-endian; strings and binary are
// length-prefixed.
type BinaryProtocol struct {
	trans Transport
	buf   [8]byte
}

// NewBinaryProtocol creates a binary protocol over the given transport.
func NewBinaryProtocol(trans Transport) *BinaryProtocol {
	return &BinaryProtocol{trans: trans}
}

// ProtocolFactory builds protocols over transports; clients use one factory
// for both directions of a connection.
type ProtocolFactory interface {
	GetProtocol(trans Transport) Protocol
}

// BinaryProtocolFactory builds BinaryProtocols.
type BinaryProtocolFactory struct{}

// NewBinaryProtocolFactory creates a factory for binary protocols.
func NewBinaryProtocolFactory() *BinaryProtocolFactory {
	return &BinaryProtocolFactory{}
}

// GetProtocol returns a binary protocol over trans.
func (f *BinaryProtocolFactory) GetProtocol(trans Transport) Protocol {
	return NewBinaryProtocol(trans)
}

func (p *BinaryProtocol) WriteMessageBegin(name string, typeID MessageType, seqID int32) error {
	if err := p.WriteI32(int32(version1 | uint32(typeID))); err != nil {
		return err
	}
	if err := p.WriteString(name); err != nil {
		return err
	}
	return p.WriteI32(seqID)
}

func (p *BinaryProtocol) WriteMessageEnd() error { return nil }

func (p *BinaryProtocol) WriteStructBegin(name string) error { return nil }

func (p *BinaryProtocol) WriteStructEnd() error { return nil }

// wireType maps a declared type tag to its on-wire spelling. Binary shares
// the string shape, so the BINARY tag never reaches the wire; every header
// writer goes through here.
func wireType(typeID Type) Type {
	if typeID == BINARY {
		return STRING
	}
	return typeID
}

func (p *BinaryProtocol) WriteFieldBegin(name string, typeID Type, id int16) error {
	if err := p.WriteByte(int8(wireType(typeID))); err != nil {
		return err
	}
	return p.WriteI16(id)
}

func (p *BinaryProtocol) WriteFieldEnd() error { return nil }

func (p *BinaryProtocol) WriteFieldStop() error { return p.WriteByte(int8(STOP)) }

func (p *BinaryProtocol) WriteMapBegin(keyType, valueType Type, size int) error {
	if err := p.WriteByte(int8(wireType(keyType))); err != nil {
		return err
	}
	if err := p.WriteByte(int8(wireType(valueType))); err != nil {
		return err
	}
	return p.WriteI32(int32(size))
}

func (p *BinaryProtocol) WriteMapEnd() error { return nil }

func (p *BinaryProtocol) WriteListBegin(elemType Type, size int) error {
	if err := p.WriteByte(int8(wireType(elemType))); err != nil {
		return err
	}
	return p.WriteI32(int32(size))
}

func (p *BinaryProtocol) WriteListEnd() error { return nil }

func (p *BinaryProtocol) WriteSetBegin(elemType Type, size int) error {
	if err := p.WriteByte(int8(wireType(elemType))); err != nil {
		return err
	}
	return p.WriteI32(int32(size))
}

func (p *BinaryProtocol) WriteSetEnd() error { return nil }

func (p *BinaryProtocol) WriteBool(v bool) error {
	if v {
		return p.WriteByte(1)
	}
	return p.WriteByte(0)
}

func (p *BinaryProtocol) WriteByte(v int8) error {
	p.buf[0] = byte(v)
	_, err := p.trans.Write(p.buf[:1])
	return err
}

func (p *BinaryProtocol) WriteI16(v int16) error {
	binary.BigEndian.PutUint16(p.buf[:2], uint16(v))
	_, err := p.trans.Write(p.buf[:2])
	return err
}

func (p *BinaryProtocol) WriteI32(v int32) error {
	binary.BigEndian.PutUint32(p.buf[:4], uint32(v))
	_, err := p.trans.Write(p.buf[:4])
	return err
}

func (p *BinaryProtocol) WriteI64(v int64) error {
	binary.BigEndian.PutUint64(p.buf[:8], uint64(v))
	_, err := p.trans.Write(p.buf[:8])
	return err
}

func (p *BinaryProtocol) WriteDouble(v float64) error {
	return p.WriteI64(int64(math.Float64bits(v)))
}

func (p *BinaryProtocol) WriteString(v string) error {
	if err := p.WriteI32(int32(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(p.trans, v)
	return err
}

func (p *BinaryProtocol) WriteBinary(v []byte) error {
	if err := p.WriteI32(int32(len(v))); err != nil {
		return err
	}
	_, err := p.trans.Write(v)
	return err
}

func (p *BinaryProtocol) ReadMessageBegin() (string, MessageType, int32, error) {
	first, err := p.ReadI32()
	if err != nil {
		return "", INVALID_MESSAGE_TYPE, 0, err
	}
	if first >= 0 {
		return "", INVALID_MESSAGE_TYPE, 0,
			NewProtocolError(fmt.Errorf("unversioned message header"))
	}
	if uint32(first)&versionMask != version1 {
		return "", INVALID_MESSAGE_TYPE, 0,
			NewProtocolError(fmt.Errorf("bad message version %#x", uint32(first)&versionMask))
	}
	typeID := MessageType(first & 0xff)
	name, err := p.ReadString()
	if err != nil {
		return "", typeID, 0, err
	}
	seqID, err := p.ReadI32()
	if err != nil {
		return name, typeID, 0, err
	}
	return name, typeID, seqID, nil
}

func (p *BinaryProtocol) ReadMessageEnd() error { return nil }

func (p *BinaryProtocol) ReadStructBegin() (string, error) { return "", nil }

func (p *BinaryProtocol) ReadStructEnd() error { return nil }

func (p *BinaryProtocol) ReadFieldBegin() (string, Type, int16, error) {
	t, err := p.ReadByte()
	if err != nil {
		return "", STOP, 0, err
	}
	typeID := Type(t)
	if typeID == STOP {
		return "", STOP, 0, nil
	}
	id, err := p.ReadI16()
	if err != nil {
		return "", typeID, 0, err
	}
	return "", typeID, id, nil
}

func (p *BinaryProtocol) ReadFieldEnd() error { return nil }

func (p *BinaryProtocol) ReadMapBegin() (Type, Type, int, error) {
	k, err := p.ReadByte()
	if err != nil {
		return STOP, STOP, 0, err
	}
	v, err := p.ReadByte()
	if err != nil {
		return Type(k), STOP, 0, err
	}
	size, err := p.readSize()
	if err != nil {
		return Type(k), Type(v), 0, err
	}
	return Type(k), Type(v), size, nil
}

func (p *BinaryProtocol) ReadMapEnd() error { return nil }

func (p *BinaryProtocol) ReadListBegin() (Type, int, error) {
	t, err := p.ReadByte()
	if err != nil {
		return STOP, 0, err
	}
	size, err := p.readSize()
	if err != nil {
		return Type(t), 0, err
	}
	return Type(t), size, nil
}

func (p *BinaryProtocol) ReadListEnd() error { return nil }

func (p *BinaryProtocol) ReadSetBegin() (Type, int, error) {
	t, err := p.ReadByte()
	if err != nil {
		return STOP, 0, err
	}
	size, err := p.readSize()
	if err != nil {
		return Type(t), 0, err
	}
	return Type(t), size, nil
}

func (p *BinaryProtocol) ReadSetEnd() error { return nil }

func (p *BinaryProtocol) ReadBool() (bool, error) {
	v, err := p.ReadByte()
	return v == 1, err
}

func (p *BinaryProtocol) ReadByte() (int8, error) {
	if _, err := io.ReadFull(p.trans, p.buf[:1]); err != nil {
		return 0, err
	}
	return int8(p.buf[0]), nil
}

func (p *BinaryProtocol) ReadI16() (int16, error) {
	if _, err := io.ReadFull(p.trans, p.buf[:2]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(p.buf[:2])), nil
}

func (p *BinaryProtocol) ReadI32() (int32, error) {
	if _, err := io.ReadFull(p.trans, p.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(p.buf[:4])), nil
}

func (p *BinaryProtocol) ReadI64() (int64, error) {
	if _, err := io.ReadFull(p.trans, p.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(p.buf[:8])), nil
}

func (p *BinaryProtocol) ReadDouble() (float64, error) {
	v, err := p.ReadI64()
	return math.Float64frombits(uint64(v)), err
}

func (p *BinaryProtocol) ReadString() (string, error) {
	b, err := p.ReadBinary()
	return string(b), err
}

func (p *BinaryProtocol) ReadBinary() ([]byte, error) {
	size, err := p.readSize()
	if err != nil {
		return nil, err
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(p.trans, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *BinaryProtocol) readSize() (int, error) {
	v, err := p.ReadI32()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, NewProtocolError(fmt.Errorf("negative size %d", v))
	}
	return int(v), nil
}

func (p *BinaryProtocol) Skip(typeID Type) error {
	return SkipValue(p, typeID)
}

func (p *BinaryProtocol) Flush() error {
	return p.trans.Flush()
}
