package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

const (
	// HashSizeByte is the size of a commitment hash in bytes.
	HashSizeByte = 32
	// HashID identifies the used hash as a string.
	HashID = "HMAC-SHA256"
)

// KeyedDigest hashes all passed byte slices with HMAC-SHA-256 under the
// given domain separation key. The passed slices won't be mutated.
func KeyedDigest(key []byte, ms ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, m := range ms {
		mac.Write(m)
	}
	return mac.Sum(nil)
}

// UnkeyedDigest hashes all passed byte slices with plain SHA-256. It is the
// degenerate form of KeyedDigest for types without a domain separation key
// and is meant for tests and debugging only.
func UnkeyedDigest(ms ...[]byte) []byte {
	h := sha256.New()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

// MakeRand returns a random slice of bytes suitable for use as a domain
// separation key.
// It returns an error if there was a problem while generating
// the random slice.
// It is different from the 'standard' random byte generation as it
// hashes its output before returning it; by hashing the system's
// PRNG output before it leaves the process, we aim to make the
// random output less predictable (even if the system's PRNG isn't
// as unpredictable as desired).
// See https://trac.torproject.org/projects/tor/ticket/17694
func MakeRand() ([]byte, error) {
	r := make([]byte, HashSizeByte)
	if _, err := rand.Read(r); err != nil {
		return nil, err
	}
	// Do not directly reveal bytes from rand.Read to callers
	h := sha3.NewShake128()
	h.Write(r)
	ret := make([]byte, HashSizeByte)
	h.Read(ret)
	return ret, nil
}
