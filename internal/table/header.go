package table

import (
	"bytes"

	"github.com/meigma/rgssad/internal/rgsstype"
)

// Magic is the signature every archive starts with.
var Magic = [6]byte{'R', 'G', 'S', 'S', 'A', 'D'}

// HeaderSize is the length of the magic, separator, and engine byte.
const HeaderSize = 8

// ParseHeader validates the magic, skips the separator byte, and reads the
// engine byte. On success the cursor is at HeaderSize.
func ParseHeader(r *Reader) (rgsstype.Variant, error) {
	if r.Remaining() < len(Magic) {
		var found [6]byte
		copy(found[:], r.data[r.pos:])
		return 0, &rgsstype.HeaderError{Found: found}
	}
	magic, _ := r.Bytes(len(Magic)) //nolint:errcheck // length checked above
	if !bytes.Equal(magic, Magic[:]) {
		var found [6]byte
		copy(found[:], magic)
		return 0, &rgsstype.HeaderError{Found: found}
	}

	if err := r.Skip(1); err != nil {
		return 0, err
	}
	engine, err := r.Byte()
	if err != nil {
		return 0, err
	}

	switch v := rgsstype.Variant(engine); v {
	case rgsstype.VariantOlder, rgsstype.VariantVXAce:
		return v, nil
	default:
		return 0, &rgsstype.EngineError{Found: engine}
	}
}
