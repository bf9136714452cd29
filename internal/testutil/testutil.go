// Package testutil builds encrypted archives for tests.
package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/meigma/rgssad/internal/keystream"
)

// File is one file to place in a test archive.
type File struct {
	// Name is the filename as stored in the table, typically with
	// backslash separators.
	Name string

	// Data is the plaintext content.
	Data []byte

	// Key seeds the content keystream in VX Ace archives. XP/VX archives
	// derive content keys from the table key and ignore it.
	Key uint32
}

// Header returns the eight header bytes for the given engine byte.
func Header(engine byte) []byte {
	return []byte{'R', 'G', 'S', 'S', 'A', 'D', 0, engine}
}

// EncryptContent encrypts plaintext with the content keystream seeded by key.
func EncryptContent(plain []byte, key uint32) []byte {
	out := make([]byte, len(plain))
	keystream.NewStream(keystream.Key(key)).XORKeyStream(out, plain)
	return out
}

// BuildOlder returns an XP/VX archive holding files in order.
func BuildOlder(files []File) []byte {
	var buf bytes.Buffer
	buf.Write(Header(1))

	key := keystream.OlderSeed
	putField := func(v uint32) {
		putUint32(&buf, v^uint32(key))
		key = key.Next()
	}
	for _, f := range files {
		putField(uint32(len(f.Name))) //nolint:gosec // test names are short
		for i := 0; i < len(f.Name); i++ {
			buf.WriteByte(f.Name[i] ^ byte(key))
			key = key.Next()
		}
		putField(uint32(len(f.Data))) //nolint:gosec // test data is small
		buf.Write(EncryptContent(f.Data, uint32(key)))
	}
	return buf.Bytes()
}

// BuildVXAce returns a VX Ace archive with the given seed holding files in
// order. Content follows the table in the same order.
func BuildVXAce(seed uint32, files []File) []byte {
	var buf bytes.Buffer
	buf.Write(Header(3))
	putUint32(&buf, seed)

	key := uint32(keystream.VXAceKey(seed))
	tableEnd := buf.Len() + 4 // terminator
	for _, f := range files {
		tableEnd += 16 + len(f.Name)
	}

	offset := tableEnd
	for _, f := range files {
		putUint32(&buf, uint32(offset)^key)      //nolint:gosec // test archives are small
		putUint32(&buf, uint32(len(f.Data))^key) //nolint:gosec // test data is small
		putUint32(&buf, f.Key^key)
		putUint32(&buf, uint32(len(f.Name))^key) //nolint:gosec // test names are short
		name := make([]byte, len(f.Name))
		keystream.RepeatingXOR(name, []byte(f.Name), keystream.Key(key))
		buf.Write(name)
		offset += len(f.Data)
	}
	putUint32(&buf, key) // zero offset

	for _, f := range files {
		buf.Write(EncryptContent(f.Data, f.Key))
	}
	return buf.Bytes()
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
