package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Uppercase Crockford Base32, the canonical ULID alphabet.
const ulidAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a 26-character ULID: 10 chars of 48-bit millisecond
// timestamp followed by 16 chars of 80-bit randomness. Used for request
// ids and storage keys, where the longer form and sortability matter
// more than brevity.
func NewULID() string {
	var out [26]byte

	ts := uint64(time.Now().UnixMilli())
	for i := 9; i >= 0; i-- {
		out[i] = ulidAlphabet[ts&0x1F]
		ts >>= 5
	}

	var random [10]byte
	if _, err := rand.Read(random[:]); err != nil {
		// Degraded but functional fallback
		binary.BigEndian.PutUint64(random[:8], uint64(time.Now().UnixNano()))
	}

	// Two 40-bit halves, 8 chars each.
	hi := uint64(random[0])<<32 | uint64(random[1])<<24 | uint64(random[2])<<16 | uint64(random[3])<<8 | uint64(random[4])
	lo := uint64(random[5])<<32 | uint64(random[6])<<24 | uint64(random[7])<<16 | uint64(random[8])<<8 | uint64(random[9])
	for i := 17; i >= 10; i-- {
		out[i] = ulidAlphabet[hi&0x1F]
		hi >>= 5
	}
	for i := 25; i >= 18; i-- {
		out[i] = ulidAlphabet[lo&0x1F]
		lo >>= 5
	}

	return string(out[:])
}
