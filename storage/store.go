// Package storage implements content-addressed persistence of serialized
// proof objects: each proof is stored under its own commitment hash, so a
// record can always be checked against the key it was fetched by.
package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/proofchains/go-proofmarshal/crypto"
	"github.com/proofchains/go-proofmarshal/marshal"
	"github.com/proofchains/go-proofmarshal/storage/kv"
)

// ProofIdentifier is the db key prefix for proof records.
const ProofIdentifier = 'P'

var (
	// ErrHashMismatch indicates a stored record that does not decode to
	// an object with the hash it was stored under.
	ErrHashMismatch = errors.New("[storage] stored proof does not match its hash")
)

// A Proof is any value implementing both halves of the marshalling
// contract.
type Proof interface {
	marshal.Marshaler
	marshal.Unmarshaler
}

// Store is a content-addressed proof store over an abstract kv.DB.
type Store struct {
	db kv.DB
}

// NewStore returns a store backed by db.
func NewStore(db kv.DB) *Store {
	return &Store{db: db}
}

func proofKey(hash []byte) []byte {
	key := make([]byte, 0, 1+len(hash))
	key = append(key, ProofIdentifier)
	key = append(key, hash...)
	return key
}

// Put stores m's canonical encoding under its commitment hash, which is
// returned. Storing an already stored proof is a no-op rewrite of the
// identical record.
func (s *Store) Put(m marshal.Marshaler) ([]byte, error) {
	hashes, err := s.PutBatch(m)
	if err != nil {
		return nil, err
	}
	return hashes[0], nil
}

// PutBatch stores all passed proofs atomically and returns their
// commitment hashes in order.
func (s *Store) PutBatch(ms ...marshal.Marshaler) ([][]byte, error) {
	wb := s.db.NewBatch()
	hashes := make([][]byte, len(ms))
	for i, m := range ms {
		hash, err := marshal.ObjectHash(m)
		if err != nil {
			return nil, err
		}
		buf, err := marshal.Marshal(m)
		if err != nil {
			return nil, err
		}
		wb.Put(proofKey(hash), buf)
		hashes[i] = hash
	}
	if err := s.db.Write(wb); err != nil {
		return nil, err
	}
	return hashes, nil
}

// GetRaw returns the canonical encoding stored under hash, without
// decoding or verifying it.
func (s *Store) GetRaw(hash []byte) ([]byte, error) {
	return s.db.Get(proofKey(hash))
}

// Get decodes the proof stored under hash into p and verifies that p's
// recomputed commitment matches hash; a disagreement is an
// ErrHashMismatch. p must be of the type that was stored, since the hash
// is keyed by type.
func (s *Store) Get(hash []byte, p Proof) error {
	buf, err := s.GetRaw(hash)
	if err != nil {
		return err
	}
	if err := marshal.Unmarshal(buf, p); err != nil {
		return err
	}
	got, err := marshal.ObjectHash(p)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, hash) {
		return fmt.Errorf("%w: want %x, got %x", ErrHashMismatch, hash, got)
	}
	return nil
}

// Has reports whether a record is stored under hash.
func (s *Store) Has(hash []byte) (bool, error) {
	_, err := s.db.Get(proofKey(hash))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, s.db.ErrNotFound()) {
		return false, nil
	}
	return false, err
}

// Hashes returns the commitment hashes of every stored proof.
func (s *Store) Hashes() ([][]byte, error) {
	it := s.db.NewIterator(kv.BytesPrefix([]byte{ProofIdentifier}))
	defer it.Release()

	var hashes [][]byte
	for ok := it.First(); ok; ok = it.Next() {
		key := it.Key()
		if len(key) != 1+crypto.HashSizeByte {
			continue
		}
		hashes = append(hashes, append([]byte(nil), key[1:]...))
	}
	return hashes, it.Error()
}

// ErrNotFound returns the backing database's not-found sentinel.
func (s *Store) ErrNotFound() error {
	return s.db.ErrNotFound()
}
