package marshal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// StreamSerializationContext writes the canonical binary form to an
// unbounded byte sink. It is sequential mutable state and must not be
// shared across concurrent serialization passes.
type StreamSerializationContext struct {
	w io.Writer
}

var _ SerializationContext = (*StreamSerializationContext)(nil)

// NewStreamSerializationContext returns a serialization context writing
// to w.
func NewStreamSerializationContext(w io.Writer) *StreamSerializationContext {
	return &StreamSerializationContext{w: w}
}

// WriteVaruint writes value in unsigned LEB128 form: 7 value bits per
// byte, low groups first, high bit set iff more bytes follow. Zero is the
// single byte 0x00.
func (ctx *StreamSerializationContext) WriteVaruint(field string, value uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], value)
	_, err := ctx.w.Write(buf[:n])
	return err
}

func (ctx *StreamSerializationContext) WriteBytes(field string, value []byte) error {
	if err := ctx.WriteVaruint(field, uint64(len(value))); err != nil {
		return err
	}
	_, err := ctx.w.Write(value)
	return err
}

func (ctx *StreamSerializationContext) WriteFixedBytes(field string, value []byte, length int) error {
	if len(value) != length {
		return fmt.Errorf("%w: field %q is %d bytes, expected %d",
			ErrLengthMismatch, field, len(value), length)
	}
	_, err := ctx.w.Write(value)
	return err
}

func (ctx *StreamSerializationContext) WriteObject(field string, value Marshaler) error {
	return value.MarshalProof(ctx)
}

// StreamDeserializationContext reads the canonical binary form from a byte
// source. Like its writing counterpart it must not be shared across
// concurrent passes.
type StreamDeserializationContext struct {
	r io.Reader
}

var _ DeserializationContext = (*StreamDeserializationContext)(nil)

// NewStreamDeserializationContext returns a deserialization context
// reading from r.
func NewStreamDeserializationContext(r io.Reader) *StreamDeserializationContext {
	return &StreamDeserializationContext{r: r}
}

// read consumes exactly n bytes. The buffer grows as bytes arrive, so a
// claimed length far beyond what the source holds fails without the
// allocation ever happening.
func (ctx *StreamDeserializationContext) read(n int) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := buf.ReadFrom(io.LimitReader(ctx.r, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedEnd, err)
	}
	if copied < int64(n) {
		return nil, fmt.Errorf("%w: need %d more bytes",
			ErrUnexpectedEnd, int64(n)-copied)
	}
	return buf.Bytes(), nil
}

// ReadVaruint decodes an unsigned LEB128 integer, stopping at the first
// byte with the continuation bit clear.
func (ctx *StreamDeserializationContext) ReadVaruint(field string) (uint64, error) {
	var value uint64
	var shift uint
	for {
		b, err := ctx.read(1)
		if err != nil {
			return 0, err
		}
		if shift > 63 || (shift == 63 && b[0] > 1) {
			return 0, fmt.Errorf("%w: field %q", ErrVaruintOverflow, field)
		}
		value |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
}

func (ctx *StreamDeserializationContext) ReadBytes(field string) ([]byte, error) {
	length, err := ctx.ReadVaruint(field)
	if err != nil {
		return nil, err
	}
	if length > uint64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: field %q claims %d bytes",
			ErrUnexpectedEnd, field, length)
	}
	return ctx.ReadFixedBytes(field, int(length))
}

func (ctx *StreamDeserializationContext) ReadFixedBytes(field string, length int) ([]byte, error) {
	return ctx.read(length)
}

func (ctx *StreamDeserializationContext) ReadObject(field string, value Unmarshaler) error {
	return value.UnmarshalProof(ctx)
}
