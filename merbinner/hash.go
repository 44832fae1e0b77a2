package merbinner

import (
	"fmt"

	"github.com/proofchains/go-proofmarshal/utils"
)

// A HashedEntry is a leaf known only by its key and value hashes.
type HashedEntry struct {
	KeyHash   []byte
	ValueHash []byte
}

// A SummedHashedEntry additionally carries the leaf's sum contribution.
type SummedHashedEntry struct {
	KeyHash   []byte
	ValueHash []byte
	Sum       uint64
}

// A HashFunc hashes one node's serialized payload. For production
// commitments this is the tree's keyed hash,
// func(b []byte) []byte { return crypto.KeyedDigest(key, b) }.
type HashFunc func([]byte) []byte

// A SumSerializeFunc returns a sum's wire form. nil-returning functions
// give the unsummed tree.
type SumSerializeFunc func(sum uint64) []byte

// CalcHash computes the unsummed merbinner tree commitment directly from
// pre-hashed leaves, without a materialized tree or access to the
// original keys and values. Entries whose key hashes collide, or whose
// key hashes are too short to tell two entries apart, are rejected with
// ErrDuplicateKey.
//
// The digest equals the root hash of a Tree over the corresponding
// entries whose hashing path produced the same leaf hashes.
func CalcHash(entries []HashedEntry, hashFunc HashFunc) ([]byte, error) {
	summed := make([]SummedHashedEntry, len(entries))
	for i, e := range entries {
		summed[i] = SummedHashedEntry{KeyHash: e.KeyHash, ValueHash: e.ValueHash}
	}
	digest, _, err := CalcSummedHash(summed, hashFunc, nil, nil, 0)
	return digest, err
}

// CalcSummedHash computes the summed merbinner tree commitment and total
// sum from pre-hashed leaves. serializeSum, combineSum and sumIdentity
// configure the sum monoid; nil serializeSum writes no sum bytes and nil
// combineSum means integer addition.
func CalcSummedHash(entries []SummedHashedEntry, hashFunc HashFunc,
	serializeSum SumSerializeFunc, combineSum func(a, b uint64) uint64,
	sumIdentity uint64) ([]byte, uint64, error) {

	if serializeSum == nil {
		serializeSum = func(uint64) []byte { return nil }
	}
	if combineSum == nil {
		combineSum = func(a, b uint64) uint64 { return a + b }
	}
	return calcNodeHash(entries, 0, hashFunc, serializeSum, combineSum, sumIdentity)
}

func calcNodeHash(entries []SummedHashedEntry, depth uint32, hashFunc HashFunc,
	serializeSum SumSerializeFunc, combineSum func(a, b uint64) uint64,
	sumIdentity uint64) ([]byte, uint64, error) {

	switch len(entries) {
	case 0:
		return hashFunc([]byte{byte(EmptyNodeType)}), sumIdentity, nil

	case 1:
		e := entries[0]
		msg := []byte{byte(LeafNodeType)}
		msg = append(msg, e.KeyHash...)
		msg = append(msg, e.ValueHash...)
		msg = append(msg, serializeSum(e.Sum)...)
		return hashFunc(msg), e.Sum, nil

	default:
		var left, right []SummedHashedEntry
		for _, e := range entries {
			if int(depth/8) >= len(e.KeyHash) {
				return nil, 0, fmt.Errorf("%w: key hash exhausted at depth %d",
					ErrDuplicateKey, depth)
			}
			if utils.GetNthBit(e.KeyHash, depth) {
				left = append(left, e)
			} else {
				right = append(right, e)
			}
		}

		leftHash, leftSum, err := calcNodeHash(left, depth+1,
			hashFunc, serializeSum, combineSum, sumIdentity)
		if err != nil {
			return nil, 0, err
		}
		rightHash, rightSum, err := calcNodeHash(right, depth+1,
			hashFunc, serializeSum, combineSum, sumIdentity)
		if err != nil {
			return nil, 0, err
		}

		msg := []byte{byte(InnerNodeType)}
		msg = append(msg, leftHash...)
		msg = append(msg, serializeSum(leftSum)...)
		msg = append(msg, rightHash...)
		msg = append(msg, serializeSum(rightSum)...)
		return hashFunc(msg), combineSum(leftSum, rightSum), nil
	}
}
