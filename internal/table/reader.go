package table

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/rgssad/internal/rgsstype"
)

// Reader is a bounds-checked cursor over an archive buffer.
// It never modifies the buffer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining returns the number of bytes after the cursor.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Bytes returns the next n bytes and advances the cursor. The returned slice
// aliases the buffer and must not be modified.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d exceeds archive length %d",
			rgsstype.ErrCorruption, n, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte returns the next byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 returns the next little-endian 32-bit value.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.Bytes(n)
	return err
}
