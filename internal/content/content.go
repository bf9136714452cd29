// Package content decrypts entry content.
//
// Decryption is a pure function of the archive buffer and the entry: every
// call builds its own keystream from the entry's key, so entries may be
// decrypted concurrently from one shared buffer.
package content

import (
	"bytes"
	"crypto/cipher"
	"io"

	"github.com/meigma/rgssad/internal/keystream"
	"github.com/meigma/rgssad/internal/rgsstype"
	"github.com/meigma/rgssad/internal/table"
)

// Entry is an alias for rgsstype.Entry.
type Entry = rgsstype.Entry

// Decrypt returns the plaintext of e. data is not modified.
func Decrypt(data []byte, e *Entry) ([]byte, error) {
	src, err := Slice(data, e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	keystream.NewStream(keystream.Key(e.Key)).XORKeyStream(out, src)
	return out, nil
}

// NewReader returns a reader that streams the plaintext of e.
func NewReader(data []byte, e *Entry) (io.Reader, error) {
	if err := table.ValidateEntry(e, len(data)); err != nil {
		return nil, err
	}
	section := io.NewSectionReader(bytes.NewReader(data), e.Offset, int64(e.Size))
	return &cipher.StreamReader{S: keystream.NewStream(keystream.Key(e.Key)), R: section}, nil
}

// Slice returns the encrypted bytes of e. The slice aliases data.
func Slice(data []byte, e *Entry) ([]byte, error) {
	if err := table.ValidateEntry(e, len(data)); err != nil {
		return nil, err
	}
	return data[e.Offset:e.End()], nil
}
