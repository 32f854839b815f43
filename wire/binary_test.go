package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryProtocolPrimitives(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteBool(true))
	require.NoError(t, p.WriteByte(-3))
	require.NoError(t, p.WriteI16(-12345))
	require.NoError(t, p.WriteI32(1<<30))
	require.NoError(t, p.WriteI64(-1<<40))
	require.NoError(t, p.WriteDouble(3.25))
	require.NoError(t, p.WriteString("héllo"))
	require.NoError(t, p.WriteBinary([]byte{0x00, 0xff}))

	b, err := p.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	by, err := p.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, int8(-3), by)

	i16, err := p.ReadI16()
	require.NoError(t, err)
	assert.Equal(t, int16(-12345), i16)

	i32, err := p.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(1<<30), i32)

	i64, err := p.ReadI64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), i64)

	d, err := p.ReadDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.25, d)

	s, err := p.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	bin, err := p.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, bin)
}

func TestBinaryProtocolMessageHeader(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteMessageBegin("ping", CALL, 7))
	require.NoError(t, p.WriteMessageEnd())

	name, typeID, seqID, err := p.ReadMessageBegin()
	require.NoError(t, err)
	assert.Equal(t, "ping", name)
	assert.Equal(t, CALL, typeID)
	assert.Equal(t, int32(7), seqID)
}

func TestBinaryProtocolRejectsUnversionedHeader(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	// A non-negative leading i32 means the old unversioned header form.
	require.NoError(t, p.WriteI32(4))

	_, _, _, err := p.ReadMessageBegin()
	require.Error(t, err)
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestBinaryProtocolFieldHeaders(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteStructBegin("Pair"))
	require.NoError(t, p.WriteFieldBegin("key", STRING, 1))
	require.NoError(t, p.WriteString("k"))
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldBegin("blob", BINARY, 2))
	require.NoError(t, p.WriteBinary([]byte("v")))
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldStop())
	require.NoError(t, p.WriteStructEnd())

	_, err := p.ReadStructBegin()
	require.NoError(t, err)

	_, typeID, id, err := p.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, typeID)
	assert.Equal(t, int16(1), id)
	_, err = p.ReadString()
	require.NoError(t, err)
	require.NoError(t, p.ReadFieldEnd())

	// Binary is written with the string wire tag.
	_, typeID, id, err = p.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, typeID)
	assert.Equal(t, int16(2), id)
	_, err = p.ReadBinary()
	require.NoError(t, err)
	require.NoError(t, p.ReadFieldEnd())

	_, typeID, _, err = p.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, STOP, typeID)
}

func TestBinaryProtocolContainers(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteMapBegin(STRING, I32, 1))
	require.NoError(t, p.WriteString("one"))
	require.NoError(t, p.WriteI32(1))
	require.NoError(t, p.WriteMapEnd())

	require.NoError(t, p.WriteListBegin(I64, 2))
	require.NoError(t, p.WriteI64(10))
	require.NoError(t, p.WriteI64(20))
	require.NoError(t, p.WriteListEnd())

	kt, vt, size, err := p.ReadMapBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, kt)
	assert.Equal(t, I32, vt)
	assert.Equal(t, 1, size)
	_, err = p.ReadString()
	require.NoError(t, err)
	_, err = p.ReadI32()
	require.NoError(t, err)
	require.NoError(t, p.ReadMapEnd())

	et, size, err := p.ReadListBegin()
	require.NoError(t, err)
	assert.Equal(t, I64, et)
	assert.Equal(t, 2, size)
}

// Container headers share the field-header normalization: the BINARY tag
// never reaches the wire, readers see STRING everywhere.
func TestBinaryProtocolContainersNormalizeBinary(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteListBegin(BINARY, 1))
	require.NoError(t, p.WriteBinary([]byte("blob")))
	require.NoError(t, p.WriteListEnd())

	require.NoError(t, p.WriteSetBegin(BINARY, 1))
	require.NoError(t, p.WriteBinary([]byte("member")))
	require.NoError(t, p.WriteSetEnd())

	require.NoError(t, p.WriteMapBegin(BINARY, BINARY, 1))
	require.NoError(t, p.WriteBinary([]byte("k")))
	require.NoError(t, p.WriteBinary([]byte("v")))
	require.NoError(t, p.WriteMapEnd())

	et, size, err := p.ReadListBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, et)
	assert.Equal(t, 1, size)
	elem, err := p.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), elem)
	require.NoError(t, p.ReadListEnd())

	et, size, err = p.ReadSetBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, et)
	assert.Equal(t, 1, size)
	_, err = p.ReadBinary()
	require.NoError(t, err)
	require.NoError(t, p.ReadSetEnd())

	kt, vt, size, err := p.ReadMapBegin()
	require.NoError(t, err)
	assert.Equal(t, STRING, kt)
	assert.Equal(t, STRING, vt)
	assert.Equal(t, 1, size)
}

func TestBinaryProtocolNegativeSize(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteI32(-1))
	_, err := p.ReadBinary()
	require.Error(t, err)
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestSkipValue(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	// A struct with a nested map, then a sentinel i32 after it.
	require.NoError(t, p.WriteStructBegin("Outer"))
	require.NoError(t, p.WriteFieldBegin("m", MAP, 1))
	require.NoError(t, p.WriteMapBegin(I32, LIST, 1))
	require.NoError(t, p.WriteI32(5))
	require.NoError(t, p.WriteListBegin(STRING, 2))
	require.NoError(t, p.WriteString("a"))
	require.NoError(t, p.WriteString("b"))
	require.NoError(t, p.WriteListEnd())
	require.NoError(t, p.WriteMapEnd())
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldStop())
	require.NoError(t, p.WriteStructEnd())
	require.NoError(t, p.WriteI32(99))

	require.NoError(t, p.Skip(STRUCT))

	v, err := p.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(99), v)
}

func TestFramedTransportRoundTrip(t *testing.T) {
	inner := NewMemoryBuffer()
	framed := NewFramedTransport(inner)

	_, err := framed.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = framed.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, framed.Flush())

	// One frame: 4-byte length then the payload.
	assert.Equal(t, 4+11, inner.Len())
	assert.Equal(t, []byte{0, 0, 0, 11}, inner.Bytes()[:4])

	got := make([]byte, 11)
	_, err = framed.Read(got)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestApplicationExceptionRoundTrip(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	exc := NewApplicationException(UNKNOWN_METHOD, "no such method")
	require.NoError(t, exc.Write(p))

	var got ApplicationException
	require.NoError(t, got.Read(p))
	assert.Equal(t, UNKNOWN_METHOD, got.TypeID())
	assert.Equal(t, "UNKNOWN_METHOD: no such method", got.Error())
}

func TestApplicationExceptionReadSkipsUnknownFields(t *testing.T) {
	buf := NewMemoryBuffer()
	p := NewBinaryProtocol(buf)

	require.NoError(t, p.WriteStructBegin("TApplicationException"))
	require.NoError(t, p.WriteFieldBegin("message", STRING, 1))
	require.NoError(t, p.WriteString("boom"))
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldBegin("extra", I64, 9))
	require.NoError(t, p.WriteI64(42))
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldBegin("type", I32, 2))
	require.NoError(t, p.WriteI32(int32(INTERNAL_ERROR)))
	require.NoError(t, p.WriteFieldEnd())
	require.NoError(t, p.WriteFieldStop())
	require.NoError(t, p.WriteStructEnd())

	var got ApplicationException
	require.NoError(t, got.Read(p))
	assert.Equal(t, INTERNAL_ERROR, got.TypeID())
}
