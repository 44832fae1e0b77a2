package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/proofchains/go-proofmarshal/marshal"
	"github.com/proofchains/go-proofmarshal/storage/kv"
	"github.com/proofchains/go-proofmarshal/storage/kv/leveldbkv"
)

// storedProof is a minimal keyed proof fixture.
type storedProof struct {
	n     uint64
	data  []byte
	cache marshal.HashCache
}

func (p *storedProof) HMACKey() []byte { return []byte("stored proof key") }

func (p *storedProof) Hash() ([]byte, error) { return p.cache.Hash(p) }

func (p *storedProof) MarshalProof(ctx marshal.SerializationContext) error {
	if err := ctx.WriteVaruint("n", p.n); err != nil {
		return err
	}
	return ctx.WriteBytes("data", p.data)
}

func (p *storedProof) UnmarshalProof(ctx marshal.DeserializationContext) error {
	n, err := ctx.ReadVaruint("n")
	if err != nil {
		return err
	}
	data, err := ctx.ReadBytes("data")
	if err != nil {
		return err
	}
	p.n, p.data = n, data
	return nil
}

func newTestStore(t *testing.T) (*Store, kv.DB) {
	t.Helper()
	db, err := leveldbkv.OpenDB(filepath.Join(t.TempDir(), "proofs"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), db
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	orig := &storedProof{n: 7, data: []byte("proof body")}
	hash, err := store.Put(orig)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := store.Has(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Stored proof not found")
	}

	var got storedProof
	if err := store.Get(hash, &got); err != nil {
		t.Fatal(err)
	}
	if got.n != orig.n || !bytes.Equal(got.data, orig.data) {
		t.Error("Round-trip mismatch")
	}
}

func TestStoreNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	absent := make([]byte, 32)
	ok, err := store.Has(absent)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Has reported an absent proof")
	}

	var got storedProof
	err = store.Get(absent, &got)
	if !errors.Is(err, store.ErrNotFound()) {
		t.Error("expected not-found error, got", err)
	}
}

func TestStoreHashMismatch(t *testing.T) {
	store, db := newTestStore(t)

	orig := &storedProof{n: 7, data: []byte("proof body")}
	hash, err := store.Put(orig)
	if err != nil {
		t.Fatal(err)
	}

	// tamper with the stored record
	tampered := &storedProof{n: 8, data: []byte("proof body")}
	buf, err := marshal.Marshal(tampered)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Put(proofKey(hash), buf); err != nil {
		t.Fatal(err)
	}

	var got storedProof
	err = store.Get(hash, &got)
	if !errors.Is(err, ErrHashMismatch) {
		t.Error("expected ErrHashMismatch, got", err)
	}
}

func TestStoreBatch(t *testing.T) {
	store, _ := newTestStore(t)

	proofs := []marshal.Marshaler{
		&storedProof{n: 1, data: []byte("a")},
		&storedProof{n: 2, data: []byte("b")},
		&storedProof{n: 3, data: []byte("c")},
	}
	hashes, err := store.PutBatch(proofs...)
	if err != nil {
		t.Fatal(err)
	}
	if len(hashes) != len(proofs) {
		t.Fatal("Wrong hash count", len(hashes))
	}

	stored, err := store.Hashes()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != len(proofs) {
		t.Fatal("Wrong stored count", len(stored))
	}
	for _, want := range hashes {
		found := false
		for _, got := range stored {
			if bytes.Equal(want, got) {
				found = true
			}
		}
		if !found {
			t.Error("Hash missing from listing")
		}
	}
}
