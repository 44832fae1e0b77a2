package marshal

// A SerializationContext is a single-use serialization sink.
// It allows multiple serialization targets to share the same type
// definitions, for instance bytes, hashing, and map forms.
//
// Field names are ignored by the binary backends; the map form keys its
// output by them.
type SerializationContext interface {
	// WriteVaruint writes a variable-length unsigned integer.
	WriteVaruint(field string, value uint64) error

	// WriteBytes writes a variable-length byte string, preceded by its
	// length as a varuint.
	WriteBytes(field string, value []byte) error

	// WriteFixedBytes writes a byte string whose length is statically
	// fixed by its type; no length prefix is written. It is an error if
	// len(value) != length.
	WriteFixedBytes(field string, value []byte, length int) error

	// WriteObject writes a nested proof object. Plain backends inline
	// the object's full encoding; the hashing backend substitutes the
	// object's 32-byte commitment instead.
	WriteObject(field string, value Marshaler) error
}

// A DeserializationContext is a single-use deserialization source.
// Reading past the end of the source is a fatal error for the decode in
// progress; there is no partial-result mode.
type DeserializationContext interface {
	// ReadVaruint reads a variable-length unsigned integer.
	ReadVaruint(field string) (uint64, error)

	// ReadBytes reads a length-prefixed variable-length byte string.
	ReadBytes(field string) ([]byte, error)

	// ReadFixedBytes reads exactly length raw bytes.
	ReadFixedBytes(field string, length int) ([]byte, error)

	// ReadObject reads a nested proof object in place.
	ReadObject(field string, value Unmarshaler) error
}

// Marshaler is the serialization half of the proof contract: one method
// that encodes the value's fields against a context, written once and
// reused unmodified across all backends.
//
// Implementations must be immutable after construction so that their
// encodings, and hence their hashes, are stable for the object's lifetime.
type Marshaler interface {
	MarshalProof(ctx SerializationContext) error
}

// Unmarshaler is the deserialization half of the proof contract. A type's
// UnmarshalProof must consume exactly the fields its MarshalProof writes,
// populating the value once; afterwards the value is sealed.
type Unmarshaler interface {
	UnmarshalProof(ctx DeserializationContext) error
}

// Keyed is implemented by proof types carrying an HMAC domain separation
// key. Distinct keys across types prevent cross-type hash confusion even
// over structurally identical encodings. A nil key degenerates to an
// unkeyed SHA-256 hash for tests and debugging only.
type Keyed interface {
	HMACKey() []byte
}

// Hasher is implemented by proof types that memoize their own commitment
// hash. The hashing backend prefers it over recomputing from scratch.
type Hasher interface {
	Hash() ([]byte, error)
}
