// Package id generates sortable record identifiers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet, lowercased for record ids
// (excludes i, l, o, u to avoid confusion).
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// New generates a 15-character record id: 6 chars of millisecond
// timestamp followed by 9 random chars. Ids are lexicographically
// sortable by creation time and safe in URLs and filter expressions.
func New() string {
	ms := uint64(time.Now().UnixMilli())

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		// Degraded but functional fallback
		binary.BigEndian.PutUint64(randomBytes, uint64(time.Now().UnixNano()))
	}

	var out [15]byte

	// 30 bits of timestamp = 6 base32 chars (~34 years of range)
	ts := ms & 0x3FFFFFFF
	out[0] = alphabet[(ts>>25)&0x1F]
	out[1] = alphabet[(ts>>20)&0x1F]
	out[2] = alphabet[(ts>>15)&0x1F]
	out[3] = alphabet[(ts>>10)&0x1F]
	out[4] = alphabet[(ts>>5)&0x1F]
	out[5] = alphabet[ts&0x1F]

	// 45 random bits = 9 base32 chars from 6 random bytes
	out[6] = alphabet[(randomBytes[0]>>3)&0x1F]
	out[7] = alphabet[((randomBytes[0]&0x07)<<2)|((randomBytes[1]>>6)&0x03)]
	out[8] = alphabet[(randomBytes[1]>>1)&0x1F]
	out[9] = alphabet[((randomBytes[1]&0x01)<<4)|((randomBytes[2]>>4)&0x0F)]
	out[10] = alphabet[((randomBytes[2]&0x0F)<<1)|((randomBytes[3]>>7)&0x01)]
	out[11] = alphabet[(randomBytes[3]>>2)&0x1F]
	out[12] = alphabet[((randomBytes[3]&0x03)<<3)|((randomBytes[4]>>5)&0x07)]
	out[13] = alphabet[randomBytes[4]&0x1F]
	out[14] = alphabet[(randomBytes[5]>>3)&0x1F]

	return string(out[:])
}
