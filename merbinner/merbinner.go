package merbinner

import (
	"errors"
	"fmt"

	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/marshal"
	"github.com/proofchains/go-proofmarshal/utils"
)

// Node type tags on the wire, exactly one leading varuint byte per node.
const (
	EmptyNodeType uint64 = 0
	LeafNodeType  uint64 = 1
	InnerNodeType uint64 = 2
)

var (
	// ErrDuplicateKey indicates two entries sharing a key hash. Nothing
	// is silently overwritten; the operation in progress fails outright.
	ErrDuplicateKey = errors.New("[merbinner] duplicate key")

	// ErrUnknownNodeType indicates a decode encountering a node tag
	// other than empty, leaf or inner.
	ErrUnknownNodeType = errors.New("[merbinner] unknown node type")

	// ErrIncompleteConfig indicates a Config missing a required policy
	// function. This is a programming error, not bad input.
	ErrIncompleteConfig = errors.New("[merbinner] incomplete config")

	// ErrMaxDepth indicates a decode descending past any depth a real
	// key hash can reach.
	ErrMaxDepth = errors.New("[merbinner] tree exceeds maximum depth")
)

// maxDepth caps decode recursion. Inner nodes deeper than the key hash
// bit width cannot occur in a tree we would have encoded, so a buffer
// claiming such a chain is rejected rather than recursed into.
const maxDepth = 8 * crypto.HashSizeByte

// Config carries all per-tree policy: the key and value codecs, the key
// hash extraction used for bucketing, the sum policy, and the HMAC domain
// separation key. The codec and key hash functions are required; the sum
// fields default to the unsummed tree (all sums zero, no sum bytes on the
// wire).
//
// Trees sharing a Config commit to the same protocol; a Config is
// typically a package-level value of the concrete proof type using it.
type Config[K, V any] struct {
	// HMACKey is the domain separation key for node hashes. A nil key
	// degenerates to plain SHA-256 for tests and debugging only.
	HMACKey []byte

	SerializeKey     func(ctx marshal.SerializationContext, key K) error
	DeserializeKey   func(ctx marshal.DeserializationContext) (K, error)
	SerializeValue   func(ctx marshal.SerializationContext, value V) error
	DeserializeValue func(ctx marshal.DeserializationContext) (V, error)

	// KeyHash extracts the bucketing hash for a key. Its bits, MSB
	// first, choose the trie path; bit 1 routes left.
	KeyHash func(key K) ([]byte, error)

	// ValueSum extracts a value's sum contribution. nil means every
	// value contributes zero.
	ValueSum func(value V) uint64

	// SumIdentity is the sum of an empty node.
	SumIdentity uint64

	// CombineSum combines the sums of an inner node's sides. It must be
	// associative and commutative so the commitment is independent of
	// partition evaluation order. nil means integer addition.
	CombineSum func(a, b uint64) uint64

	// SerializeSum writes a sum under the hashing context. Sums are not
	// written in the plain encoding since they are re-derivable from
	// the values; they are committed while hashing so a future pruned
	// tree can recover them without the values themselves. nil means no
	// bytes are written and the tree is unsummed.
	SerializeSum func(ctx marshal.SerializationContext, sum uint64) error
}

// normalize validates cfg and returns a copy with the optional sum policy
// fields filled with their defaults.
func (cfg *Config[K, V]) normalize() (*Config[K, V], error) {
	switch {
	case cfg.SerializeKey == nil:
		return nil, fmt.Errorf("%w: SerializeKey", ErrIncompleteConfig)
	case cfg.DeserializeKey == nil:
		return nil, fmt.Errorf("%w: DeserializeKey", ErrIncompleteConfig)
	case cfg.SerializeValue == nil:
		return nil, fmt.Errorf("%w: SerializeValue", ErrIncompleteConfig)
	case cfg.DeserializeValue == nil:
		return nil, fmt.Errorf("%w: DeserializeValue", ErrIncompleteConfig)
	case cfg.KeyHash == nil:
		return nil, fmt.Errorf("%w: KeyHash", ErrIncompleteConfig)
	}

	c := *cfg
	if c.ValueSum == nil {
		c.ValueSum = func(V) uint64 { return 0 }
	}
	if c.CombineSum == nil {
		c.CombineSum = func(a, b uint64) uint64 { return a + b }
	}
	if c.SerializeSum == nil {
		c.SerializeSum = func(marshal.SerializationContext, uint64) error { return nil }
	}
	return &c, nil
}

// An Entry is one key-value pair held by a tree.
type Entry[K, V any] struct {
	Key   K
	Value V
}

type treeEntry[K, V any] struct {
	key     K
	value   V
	keyHash []byte
	sum     uint64
}

// Tree is a merbinner tree over a fixed set of entries. It is immutable
// after construction: the entry set is copied in, no mutators are
// exported, and the root hash is computed at most once and cached.
//
// A Tree is itself a proof value: it implements marshal.Marshaler against
// every serialization backend and substitutes child commitments for child
// encodings under the hashing backend.
type Tree[K, V any] struct {
	cfg     *Config[K, V]
	entries []treeEntry[K, V]
	index   map[string]int
	cache   marshal.HashCache
}

var _ marshal.Marshaler = (*Tree[uint64, uint64])(nil)
var _ marshal.Keyed = (*Tree[uint64, uint64])(nil)
var _ marshal.Hasher = (*Tree[uint64, uint64])(nil)

// NewTree builds a tree over the given entries. Two entries sharing a key
// hash make the mapping ambiguous and fail with ErrDuplicateKey.
func NewTree[K, V any](cfg *Config[K, V], entries []Entry[K, V]) (*Tree[K, V], error) {
	c, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	t := &Tree[K, V]{
		cfg:     c,
		entries: make([]treeEntry[K, V], 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := t.insert(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree[K, V]) insert(key K, value V) error {
	keyHash, err := t.cfg.KeyHash(key)
	if err != nil {
		return err
	}
	if _, dup := t.index[string(keyHash)]; dup {
		return fmt.Errorf("%w: key hash %x", ErrDuplicateKey, keyHash)
	}
	t.index[string(keyHash)] = len(t.entries)
	t.entries = append(t.entries, treeEntry[K, V]{
		key:     key,
		value:   value,
		keyHash: keyHash,
		sum:     t.cfg.ValueSum(value),
	})
	return nil
}

// Len returns the number of entries.
func (t *Tree[K, V]) Len() int {
	return len(t.entries)
}

// Get returns the value whose key has the given key hash.
func (t *Tree[K, V]) Get(keyHash []byte) (V, bool) {
	i, ok := t.index[string(keyHash)]
	if !ok {
		var zero V
		return zero, false
	}
	return t.entries[i].value, true
}

// Entries returns a copy of the tree's entries.
func (t *Tree[K, V]) Entries() []Entry[K, V] {
	es := make([]Entry[K, V], len(t.entries))
	for i, e := range t.entries {
		es[i] = Entry[K, V]{Key: e.key, Value: e.value}
	}
	return es
}

// Sum returns the aggregate sum over all values.
func (t *Tree[K, V]) Sum() uint64 {
	sum := t.cfg.SumIdentity
	for _, e := range t.entries {
		sum = t.cfg.CombineSum(sum, e.sum)
	}
	return sum
}

// HMACKey returns the tree's domain separation key.
func (t *Tree[K, V]) HMACKey() []byte {
	return t.cfg.HMACKey
}

// Hash returns the tree's root commitment, computing it on first access.
func (t *Tree[K, V]) Hash() ([]byte, error) {
	return t.cache.Hash(t)
}

func (t *Tree[K, V]) digest(b []byte) []byte {
	if t.cfg.HMACKey != nil {
		return crypto.KeyedDigest(t.cfg.HMACKey, b)
	}
	return crypto.UnkeyedDigest(b)
}

// MarshalProof serializes the tree recursively. Under a plain context
// child nodes are inlined; under the hashing context each side of an
// inner node is serialized into an independent fresh hashing context,
// keyed-hashed, and only the 32-byte digest plus that side's sum is
// written, which is what makes the root hash a Merkle commitment.
func (t *Tree[K, V]) MarshalProof(ctx marshal.SerializationContext) error {
	_, err := t.marshalNode(ctx, t.entries, 0)
	return err
}

func (t *Tree[K, V]) marshalNode(ctx marshal.SerializationContext, items []treeEntry[K, V], depth uint32) (uint64, error) {
	_, hashing := ctx.(*marshal.HashSerializationContext)

	switch len(items) {
	case 0:
		if err := ctx.WriteVaruint("type", EmptyNodeType); err != nil {
			return 0, err
		}
		return t.cfg.SumIdentity, nil

	case 1:
		if err := ctx.WriteVaruint("type", LeafNodeType); err != nil {
			return 0, err
		}
		e := items[0]
		if err := t.cfg.SerializeKey(ctx, e.key); err != nil {
			return 0, err
		}
		if err := t.cfg.SerializeValue(ctx, e.value); err != nil {
			return 0, err
		}
		if hashing {
			if err := t.cfg.SerializeSum(ctx, e.sum); err != nil {
				return 0, err
			}
		}
		return e.sum, nil

	default:
		if err := ctx.WriteVaruint("type", InnerNodeType); err != nil {
			return 0, err
		}
		left, right, err := partitionEntries(items, depth)
		if err != nil {
			return 0, err
		}

		leftSum, err := t.marshalChild(ctx, hashing, "left", left, depth+1)
		if err != nil {
			return 0, err
		}
		rightSum, err := t.marshalChild(ctx, hashing, "right", right, depth+1)
		if err != nil {
			return 0, err
		}
		return t.cfg.CombineSum(leftSum, rightSum), nil
	}
}

func (t *Tree[K, V]) marshalChild(ctx marshal.SerializationContext, hashing bool, field string, items []treeEntry[K, V], depth uint32) (uint64, error) {
	if !hashing {
		return t.marshalNode(ctx, items, depth)
	}

	sub := marshal.NewHashSerializationContext()
	sum, err := t.marshalNode(sub, items, depth)
	if err != nil {
		return 0, err
	}
	if err := ctx.WriteFixedBytes(field, t.digest(sub.Bytes()), crypto.HashSizeByte); err != nil {
		return 0, err
	}
	if err := t.cfg.SerializeSum(ctx, sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// partitionEntries splits items by the bit of each entry's key hash at
// position depth, MSB first; bit 1 routes left. Running out of key hash
// bits means two entries share a full prefix, which only distinct key
// hashes rule out.
func partitionEntries[K, V any](items []treeEntry[K, V], depth uint32) (left, right []treeEntry[K, V], err error) {
	for _, e := range items {
		if int(depth/8) >= len(e.keyHash) {
			return nil, nil, fmt.Errorf("%w: key hash exhausted at depth %d",
				ErrDuplicateKey, depth)
		}
		if utils.GetNthBit(e.keyHash, depth) {
			left = append(left, e)
		} else {
			right = append(right, e)
		}
	}
	return left, right, nil
}

// Unmarshal deserializes a tree from its canonical byte form. The tree
// must consume the entire buffer.
func Unmarshal[K, V any](cfg *Config[K, V], buf []byte) (*Tree[K, V], error) {
	ctx := marshal.NewBytesDeserializationContext(buf)
	t, err := UnmarshalFrom(cfg, ctx)
	if err != nil {
		return nil, err
	}
	if n := ctx.Remaining(); n != 0 {
		return nil, fmt.Errorf("%w: %d bytes left", marshal.ErrTrailingBytes, n)
	}
	return t, nil
}

// UnmarshalFrom deserializes a tree from a deserialization context. The
// decoded tree is sealed like any other: decoding populates the entry set
// once and nothing mutates it afterwards.
func UnmarshalFrom[K, V any](cfg *Config[K, V], ctx marshal.DeserializationContext) (*Tree[K, V], error) {
	c, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	t := &Tree[K, V]{
		cfg:   c,
		index: make(map[string]int),
	}
	if err := t.unmarshalNode(ctx, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree[K, V]) unmarshalNode(ctx marshal.DeserializationContext, depth uint32) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: inner node at depth %d", ErrMaxDepth, depth)
	}
	nodeType, err := ctx.ReadVaruint("type")
	if err != nil {
		return err
	}

	switch nodeType {
	case EmptyNodeType:
		return nil

	case LeafNodeType:
		key, err := t.cfg.DeserializeKey(ctx)
		if err != nil {
			return err
		}
		value, err := t.cfg.DeserializeValue(ctx)
		if err != nil {
			return err
		}
		return t.insert(key, value)

	case InnerNodeType:
		if err := t.unmarshalNode(ctx, depth+1); err != nil { // left
			return err
		}
		return t.unmarshalNode(ctx, depth+1) // right

	default:
		return fmt.Errorf("%w: %d", ErrUnknownNodeType, nodeType)
	}
}
