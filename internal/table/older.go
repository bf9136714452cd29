package table

import (
	"fmt"

	"github.com/meigma/rgssad/internal/keystream"
	"github.com/meigma/rgssad/internal/rgsstype"
)

// olderDecoder walks an XP/VX table. Each record is
//
//	nameLen int32 | name [nameLen]byte | size int32 | content [size]byte
//
// with one key advancing after every field and every name byte. The key left
// after the size field seeds the entry's content keystream. The table ends
// exactly at the end of the buffer.
type olderDecoder struct {
	r      *Reader
	cipher *keystream.FieldCipher
}

func newOlderDecoder(r *Reader) *olderDecoder {
	return &olderDecoder{
		r:      r,
		cipher: keystream.NewFieldCipher(keystream.OlderSeed, true),
	}
}

func (d *olderDecoder) Next() (Entry, bool, error) {
	if d.r.Remaining() == 0 {
		return Entry{}, false, nil
	}

	nameLen, err := d.int32()
	if err != nil {
		return Entry{}, false, err
	}
	if nameLen < 0 {
		return Entry{}, false, fmt.Errorf("%w: negative filename length %d", rgsstype.ErrCorruption, nameLen)
	}
	raw, err := d.r.Bytes(int(nameLen))
	if err != nil {
		return Entry{}, false, err
	}
	name := append([]byte(nil), raw...)
	d.cipher.DecryptName(name)

	size, err := d.int32()
	if err != nil {
		return Entry{}, false, err
	}
	if size < 0 {
		return Entry{}, false, fmt.Errorf("%w: negative size %d", rgsstype.ErrCorruption, size)
	}

	entry := Entry{
		Name:   name,
		Size:   size,
		Offset: int64(d.r.Pos()),
		Key:    uint32(d.cipher.Key()),
	}
	if err := d.r.Skip(int(size)); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (d *olderDecoder) int32() (int32, error) {
	raw, err := d.r.Uint32()
	if err != nil {
		return 0, err
	}
	return d.cipher.DecryptInt32(raw), nil
}
