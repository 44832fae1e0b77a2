package marshal

import (
	"bytes"
	"fmt"
)

// BytesSerializationContext is a stream serialization context backed by an
// in-memory buffer.
type BytesSerializationContext struct {
	StreamSerializationContext
	buf bytes.Buffer
}

// NewBytesSerializationContext returns an empty in-memory serialization
// context.
func NewBytesSerializationContext() *BytesSerializationContext {
	ctx := new(BytesSerializationContext)
	ctx.w = &ctx.buf
	return ctx
}

// Bytes returns the bytes serialized to date.
func (ctx *BytesSerializationContext) Bytes() []byte {
	return ctx.buf.Bytes()
}

// BytesDeserializationContext is a stream deserialization context backed
// by an in-memory buffer.
type BytesDeserializationContext struct {
	StreamDeserializationContext
	buf *bytes.Reader
}

// NewBytesDeserializationContext returns a deserialization context
// consuming buf.
func NewBytesDeserializationContext(buf []byte) *BytesDeserializationContext {
	ctx := &BytesDeserializationContext{buf: bytes.NewReader(buf)}
	ctx.r = ctx.buf
	return ctx
}

// Remaining returns the number of unconsumed bytes.
func (ctx *BytesDeserializationContext) Remaining() int {
	return ctx.buf.Len()
}

// ReadBytes rejects a claimed length beyond the unconsumed input before
// any of it is read.
func (ctx *BytesDeserializationContext) ReadBytes(field string) ([]byte, error) {
	length, err := ctx.ReadVaruint(field)
	if err != nil {
		return nil, err
	}
	if length > uint64(ctx.Remaining()) {
		return nil, fmt.Errorf("%w: field %q claims %d bytes, %d remain",
			ErrUnexpectedEnd, field, length, ctx.Remaining())
	}
	return ctx.ReadFixedBytes(field, int(length))
}

// ReadObject keeps nested objects reading through this context rather
// than the embedded stream context.
func (ctx *BytesDeserializationContext) ReadObject(field string, value Unmarshaler) error {
	return value.UnmarshalProof(ctx)
}

// Marshal serializes m to its canonical byte form.
func Marshal(m Marshaler) ([]byte, error) {
	ctx := NewBytesSerializationContext()
	if err := m.MarshalProof(ctx); err != nil {
		return nil, err
	}
	return ctx.Bytes(), nil
}

// Unmarshal deserializes u from buf. The object must consume the entire
// buffer; leftover bytes are an ErrTrailingBytes error.
func Unmarshal(buf []byte, u Unmarshaler) error {
	ctx := NewBytesDeserializationContext(buf)
	if err := u.UnmarshalProof(ctx); err != nil {
		return err
	}
	if n := ctx.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, n)
	}
	return nil
}
