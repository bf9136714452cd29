// Package keystream implements the key schedule and XOR keystreams used by
// RGSS archives.
//
// Every key evolves through the same recurrence, key' = key*7 + 3 (mod 2^32).
// How often the recurrence is applied differs per use: once per table field
// (XP/VX only), once per filename byte (XP/VX), or once per four content bytes.
package keystream

import (
	"crypto/cipher"
	"encoding/binary"
)

// OlderSeed is the fixed initial table key of XP/VX archives.
const OlderSeed Key = 0xDEADCAFE

// Key is a 32-bit keystream key.
type Key uint32

// VXAceKey derives the VX Ace table key from the seed stored after the header.
func VXAceKey(seed uint32) Key {
	return Key(seed*9 + 3)
}

// Next returns the key that follows k in the recurrence.
func (k Key) Next() Key {
	return k*7 + 3
}

// Skip returns the key n steps after k. It runs in O(log n) by composing
// the affine step k -> 7k+3 with itself.
func (k Key) Skip(n uint64) Key {
	// (a, b) is the step raised to the current bit; (ra, rb) the product so far.
	a, b := Key(7), Key(3)
	ra, rb := Key(1), Key(0)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			ra, rb = a*ra, a*rb+b
		}
		a, b = a*a, a*b+b
	}
	return ra*k + rb
}

// Bytes returns the little-endian byte decomposition of k.
func (k Key) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(k))
	return b
}

// FieldCipher decrypts the 32-bit fields of an entry table.
//
// XP/VX tables advance the key after every field and every filename byte.
// VX Ace tables reuse one key for the whole table.
type FieldCipher struct {
	key     Key
	advance bool
}

// NewFieldCipher returns a cipher starting at key. When advance is false the
// key never changes.
func NewFieldCipher(key Key, advance bool) *FieldCipher {
	return &FieldCipher{key: key, advance: advance}
}

// Key returns the current key.
func (c *FieldCipher) Key() Key {
	return c.key
}

// DecryptInt32 decrypts one little-endian field.
func (c *FieldCipher) DecryptInt32(raw uint32) int32 {
	v := int32(raw) ^ int32(c.key) //nolint:gosec // bit reinterpretation is the format
	if c.advance {
		c.key = c.key.Next()
	}
	return v
}

// DecryptName decrypts an XP/VX filename in place: each byte is XORed with
// the low byte of the current key and the key advances after every byte.
func (c *FieldCipher) DecryptName(name []byte) {
	for i := range name {
		name[i] ^= byte(c.key)
		c.key = c.key.Next()
	}
}

// RepeatingXOR XORs src into dst with the four bytes of key repeated from
// phase zero. The key does not advance. VX Ace filenames use this stream.
func RepeatingXOR(dst, src []byte, key Key) {
	kb := key.Bytes()
	for i, b := range src {
		dst[i] = b ^ kb[i&3]
	}
}

// Stream is the content keystream: the four little-endian bytes of the key,
// with the key advancing each time all four have been used.
//
// A Stream is a value owned by one decryption; entries never share one.
type Stream struct {
	key Key
	kb  [4]byte
	pos int
}

var _ cipher.Stream = (*Stream)(nil)

// NewStream returns a keystream seeded with key.
func NewStream(key Key) *Stream {
	return &Stream{key: key, kb: key.Bytes()}
}

// NewStreamAt returns a keystream seeded with key and positioned at byte
// offset off of the content. off must not be negative.
func NewStreamAt(key Key, off int64) *Stream {
	key = key.Skip(uint64(off / 4)) //nolint:gosec // off is not negative
	return &Stream{key: key, kb: key.Bytes(), pos: int(off % 4)}
}

// XORKeyStream implements cipher.Stream. dst and src may overlap entirely.
func (s *Stream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("keystream: output smaller than input")
	}
	for i, b := range src {
		if s.pos == 4 {
			s.key = s.key.Next()
			s.kb = s.key.Bytes()
			s.pos = 0
		}
		dst[i] = b ^ s.kb[s.pos]
		s.pos++
	}
}

// Key returns the key currently supplying bytes.
func (s *Stream) Key() Key {
	return s.key
}
