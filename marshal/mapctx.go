package marshal

import (
	"encoding/hex"
	"fmt"
)

// MapSerializationContext serializes to a human-readable, JSON-compatible
// map from field name to value: varuint fields as uint64, byte fields as
// their lowercase hex encoding. Nested objects are not supported in this
// form; outer types must flatten them manually.
type MapSerializationContext struct {
	pairs map[string]interface{}
}

var _ SerializationContext = (*MapSerializationContext)(nil)

// NewMapSerializationContext returns an empty map serialization context.
func NewMapSerializationContext() *MapSerializationContext {
	return &MapSerializationContext{pairs: make(map[string]interface{})}
}

// Map returns the field name to value pairs serialized to date.
func (ctx *MapSerializationContext) Map() map[string]interface{} {
	return ctx.pairs
}

func (ctx *MapSerializationContext) set(field string, value interface{}) error {
	if _, dup := ctx.pairs[field]; dup {
		return fmt.Errorf("%w: %q", ErrFieldCollision, field)
	}
	ctx.pairs[field] = value
	return nil
}

func (ctx *MapSerializationContext) WriteVaruint(field string, value uint64) error {
	return ctx.set(field, value)
}

func (ctx *MapSerializationContext) WriteBytes(field string, value []byte) error {
	return ctx.set(field, hex.EncodeToString(value))
}

func (ctx *MapSerializationContext) WriteFixedBytes(field string, value []byte, length int) error {
	if len(value) != length {
		return fmt.Errorf("%w: field %q is %d bytes, expected %d",
			ErrLengthMismatch, field, len(value), length)
	}
	return ctx.set(field, hex.EncodeToString(value))
}

func (ctx *MapSerializationContext) WriteObject(field string, value Marshaler) error {
	return fmt.Errorf("%w: field %q", ErrMapObject, field)
}

// MapDeserializationContext deserializes the map form produced by
// MapSerializationContext. Round-tripping the map form reproduces the
// original mapping exactly.
type MapDeserializationContext struct {
	pairs map[string]interface{}
}

var _ DeserializationContext = (*MapDeserializationContext)(nil)

// NewMapDeserializationContext returns a deserialization context consuming
// pairs.
func NewMapDeserializationContext(pairs map[string]interface{}) *MapDeserializationContext {
	return &MapDeserializationContext{pairs: pairs}
}

func (ctx *MapDeserializationContext) get(field string) (interface{}, error) {
	v, ok := ctx.pairs[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldMissing, field)
	}
	return v, nil
}

func (ctx *MapDeserializationContext) ReadVaruint(field string) (uint64, error) {
	v, err := ctx.get(field)
	if err != nil {
		return 0, err
	}
	u, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("%w: field %q is %T, expected uint64",
			ErrFieldType, field, v)
	}
	return u, nil
}

func (ctx *MapDeserializationContext) readHex(field string) ([]byte, error) {
	v, err := ctx.get(field)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, expected hex string",
			ErrFieldType, field, v)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrFieldType, field, err)
	}
	return b, nil
}

func (ctx *MapDeserializationContext) ReadBytes(field string) ([]byte, error) {
	return ctx.readHex(field)
}

func (ctx *MapDeserializationContext) ReadFixedBytes(field string, length int) ([]byte, error) {
	b, err := ctx.readHex(field)
	if err != nil {
		return nil, err
	}
	if len(b) != length {
		return nil, fmt.Errorf("%w: field %q is %d bytes, expected %d",
			ErrLengthMismatch, field, len(b), length)
	}
	return b, nil
}

func (ctx *MapDeserializationContext) ReadObject(field string, value Unmarshaler) error {
	return fmt.Errorf("%w: field %q", ErrMapObject, field)
}

// MarshalMap serializes m to its map form.
func MarshalMap(m Marshaler) (map[string]interface{}, error) {
	ctx := NewMapSerializationContext()
	if err := m.MarshalProof(ctx); err != nil {
		return nil, err
	}
	return ctx.Map(), nil
}

// UnmarshalMap deserializes u from its map form.
func UnmarshalMap(pairs map[string]interface{}, u Unmarshaler) error {
	return u.UnmarshalProof(NewMapDeserializationContext(pairs))
}
