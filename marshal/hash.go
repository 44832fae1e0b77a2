package marshal

import (
	"fmt"
	"sync"

	"github.com/proofchains/go-proofmarshal/crypto"
)

// HashSerializationContext is the serialization context used to calculate
// commitment hashes. Serialization is never recursive in this context:
// when a nested object is written, its own 32-byte keyed hash is
// substituted for its full encoding. Byte and varuint fields are written
// inline as they are already leaf-level primitive data.
//
// Hashing is write-only; there is no deserializing counterpart.
type HashSerializationContext struct {
	BytesSerializationContext
}

// NewHashSerializationContext returns an empty hashing context.
func NewHashSerializationContext() *HashSerializationContext {
	ctx := new(HashSerializationContext)
	ctx.w = &ctx.buf
	return ctx
}

func (ctx *HashSerializationContext) WriteObject(field string, value Marshaler) error {
	h, err := ObjectHash(value)
	if err != nil {
		return err
	}
	return ctx.WriteFixedBytes(field, h, crypto.HashSizeByte)
}

// CalcHash computes m's commitment: the keyed hash of m's fields
// serialized against a fresh hashing context. If m carries an HMAC domain
// separation key the digest is HMAC-SHA-256 under that key, otherwise
// plain SHA-256.
//
// The computation is a pure function of m's fields; equal field values
// always yield equal hashes.
func CalcHash(m Marshaler) ([]byte, error) {
	ctx := NewHashSerializationContext()
	if err := m.MarshalProof(ctx); err != nil {
		return nil, err
	}
	if k, ok := m.(Keyed); ok {
		if key := k.HMACKey(); key != nil {
			return crypto.KeyedDigest(key, ctx.Bytes()), nil
		}
	}
	return crypto.UnkeyedDigest(ctx.Bytes()), nil
}

// ObjectHash returns m's commitment hash, preferring m's own memoized
// Hash over recomputing it.
func ObjectHash(m Marshaler) ([]byte, error) {
	if h, ok := m.(Hasher); ok {
		sum, err := h.Hash()
		if err != nil {
			return nil, err
		}
		if len(sum) != crypto.HashSizeByte {
			return nil, fmt.Errorf("%w: object hash is %d bytes",
				ErrLengthMismatch, len(sum))
		}
		return sum, nil
	}
	return CalcHash(m)
}

// HashCache memoizes a proof object's commitment hash. The zero value is
// ready for use. It is the one internally mutable cell an otherwise sealed
// proof value carries; the mutation is not externally observable since all
// computations of the hash yield the identical value.
//
// Proof types embed a HashCache and expose it as
//
//	func (x *Foo) Hash() ([]byte, error) { return x.cache.Hash(x) }
type HashCache struct {
	once sync.Once
	sum  []byte
	err  error
}

// Hash returns m's commitment hash, computing it on first access and
// returning the cached digest thereafter. Safe for concurrent use.
func (c *HashCache) Hash(m Marshaler) ([]byte, error) {
	c.once.Do(func() {
		c.sum, c.err = CalcHash(m)
	})
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte(nil), c.sum...), nil
}
