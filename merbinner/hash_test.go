package merbinner

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/marshal"
)

// cat is the identity "hash", making node payloads directly readable in
// vectors.
func cat(b []byte) []byte { return b }

func sha256Hash(b []byte) []byte {
	d := sha256.Sum256(b)
	return d[:]
}

func TestCalcHashVectors(t *testing.T) {
	tests := []struct {
		name     string
		entries  []HashedEntry
		hashFunc HashFunc
		want     []byte
	}{
		{
			"empty tree is the tagged empty node",
			nil,
			cat,
			x("00"),
		},
		{
			"single entry: tag, key hash, value hash",
			[]HashedEntry{
				{KeyHash: x("ff"), ValueHash: x("aa")},
			},
			cat,
			x("01ffaa"),
		},
		{
			"top bit splits entries, bit 1 left",
			[]HashedEntry{
				{KeyHash: x("00"), ValueHash: x("bb")},
				{KeyHash: x("80"), ValueHash: x("aa")},
			},
			cat,
			x("020180aa0100bb"),
		},
		{
			"shared top bit recurses with an empty right side",
			[]HashedEntry{
				{KeyHash: x("c0"), ValueHash: x("aa")},
				{KeyHash: x("80"), ValueHash: x("bb")},
			},
			cat,
			x("020201c0aa0180bb00"),
		},
		{
			"sha256 empty tree",
			nil,
			sha256Hash,
			sha256Hash(x("00")),
		},
		{
			"sha256 two entries",
			[]HashedEntry{
				{KeyHash: x("80"), ValueHash: x("aa")},
				{KeyHash: x("00"), ValueHash: x("bb")},
			},
			sha256Hash,
			sha256Hash(append(append([]byte{0x02},
				sha256Hash(x("0180aa"))...),
				sha256Hash(x("0100bb"))...)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalcHash(tt.entries, tt.hashFunc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalcSummedHashVectors(t *testing.T) {
	tests := []struct {
		name     string
		entries  []SummedHashedEntry
		hashFunc HashFunc
		want     []byte
		wantSum  uint64
	}{
		{
			"empty tree carries the identity sum",
			nil,
			cat,
			x("00"),
			0,
		},
		{
			"leaf commits its serialized sum",
			[]SummedHashedEntry{
				{KeyHash: x("ff"), ValueHash: x("aa"), Sum: 5},
			},
			cat,
			x("01ffaa0005"),
			5,
		},
		{
			"inner node commits both child sums",
			[]SummedHashedEntry{
				{KeyHash: x("80"), ValueHash: x("aa"), Sum: 3},
				{KeyHash: x("00"), ValueHash: x("bb"), Sum: 4},
			},
			cat,
			x("020180aa000300030100bb00040004"),
			7,
		},
		{
			"sha256 summed pair",
			[]SummedHashedEntry{
				{KeyHash: x("80"), ValueHash: x("aa"), Sum: 3},
				{KeyHash: x("00"), ValueHash: x("bb"), Sum: 4},
			},
			sha256Hash,
			sha256Hash(concat(
				[]byte{0x02},
				sha256Hash(x("0180aa0003")), x("0003"),
				sha256Hash(x("0100bb0004")), x("0004"))),
			7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sum, err := CalcSummedHash(tt.entries, tt.hashFunc, be16, nil, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSum, sum)
		})
	}
}

func concat(bs ...[]byte) []byte {
	var out []byte
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}

func TestUnsummedIsZeroSummed(t *testing.T) {
	entries := []HashedEntry{
		{KeyHash: x("80"), ValueHash: x("aa")},
		{KeyHash: x("40"), ValueHash: x("bb")},
		{KeyHash: x("00"), ValueHash: x("cc")},
	}
	summed := make([]SummedHashedEntry, len(entries))
	for i, e := range entries {
		summed[i] = SummedHashedEntry{KeyHash: e.KeyHash, ValueHash: e.ValueHash}
	}

	plain, err := CalcHash(entries, sha256Hash)
	require.NoError(t, err)
	withSums, sum, err := CalcSummedHash(summed, sha256Hash, nil, nil, 0)
	require.NoError(t, err)
	require.Equal(t, plain, withSums)
	require.Zero(t, sum)
}

func TestCalcHashDuplicateKeyHash(t *testing.T) {
	// identical key hashes exhaust the trie bits; the split must fail
	// cleanly instead of running off the end of the hash
	_, err := CalcHash([]HashedEntry{
		{KeyHash: x("ff"), ValueHash: x("aa")},
		{KeyHash: x("ff"), ValueHash: x("bb")},
	}, cat)
	require.ErrorIs(t, err, ErrDuplicateKey)

	_, _, err = CalcSummedHash([]SummedHashedEntry{
		{KeyHash: x("ff"), ValueHash: x("aa"), Sum: 1},
		{KeyHash: x("ff"), ValueHash: x("bb"), Sum: 2},
	}, cat, be16, nil, 0)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

// testValue is a proof object used as a tree value; its commitment, not
// its encoding, must appear in leaf hashes.
type testValue struct {
	data  []byte
	cache marshal.HashCache
}

func (v *testValue) HMACKey() []byte { return []byte("test value key") }

func (v *testValue) Hash() ([]byte, error) { return v.cache.Hash(v) }

func (v *testValue) MarshalProof(ctx marshal.SerializationContext) error {
	return ctx.WriteBytes("data", v.data)
}

func (v *testValue) UnmarshalProof(ctx marshal.DeserializationContext) error {
	data, err := ctx.ReadBytes("data")
	if err != nil {
		return err
	}
	v.data = data
	return nil
}

func objectConfig() *Config[[]byte, *testValue] {
	return &Config[[]byte, *testValue]{
		HMACKey: testHMACKey,
		SerializeKey: func(ctx marshal.SerializationContext, key []byte) error {
			return ctx.WriteFixedBytes("key", key, crypto.HashSizeByte)
		},
		DeserializeKey: func(ctx marshal.DeserializationContext) ([]byte, error) {
			return ctx.ReadFixedBytes("key", crypto.HashSizeByte)
		},
		SerializeValue: func(ctx marshal.SerializationContext, value *testValue) error {
			return ctx.WriteObject("value", value)
		},
		DeserializeValue: func(ctx marshal.DeserializationContext) (*testValue, error) {
			v := new(testValue)
			err := ctx.ReadObject("value", v)
			return v, err
		},
		KeyHash: func(key []byte) ([]byte, error) {
			return key, nil
		},
	}
}

func TestObjectValueSubstitution(t *testing.T) {
	keyA := crypto.UnkeyedDigest([]byte("a"))
	keyB := crypto.UnkeyedDigest([]byte("b"))
	valA := &testValue{data: []byte("value a")}
	valB := &testValue{data: []byte("value b")}

	tree, err := NewTree(objectConfig(), []Entry[[]byte, *testValue]{
		{Key: keyA, Value: valA},
		{Key: keyB, Value: valB},
	})
	require.NoError(t, err)

	treeHash, err := tree.Hash()
	require.NoError(t, err)

	// under the hashing context leaves carry the values' commitments,
	// so the hash-only path over (keyHash, valueHash) must agree
	hashA, err := valA.Hash()
	require.NoError(t, err)
	hashB, err := valB.Hash()
	require.NoError(t, err)

	standalone, err := CalcHash([]HashedEntry{
		{KeyHash: keyA, ValueHash: hashA},
		{KeyHash: keyB, ValueHash: hashB},
	}, func(b []byte) []byte {
		return crypto.KeyedDigest(testHMACKey, b)
	})
	require.NoError(t, err)
	assert.Equal(t, treeHash, standalone)

	// the plain encoding inlines values and round-trips
	buf, err := marshal.Marshal(tree)
	require.NoError(t, err)
	got, err := Unmarshal(objectConfig(), buf)
	require.NoError(t, err)

	gotVal, ok := got.Get(keyA)
	require.True(t, ok)
	assert.Equal(t, valA.data, gotVal.data)

	gotHash, err := got.Hash()
	require.NoError(t, err)
	assert.Equal(t, treeHash, gotHash)
}
