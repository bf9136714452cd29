package table

import (
	"fmt"

	"github.com/meigma/rgssad/internal/keystream"
	"github.com/meigma/rgssad/internal/rgsstype"
)

// vxaceDecoder walks a VX Ace table. A raw seed follows the header; the table
// key is seed*9+3 and never advances. Each record is
//
//	offset int32 | size int32 | key uint32 | nameLen int32 | name [nameLen]byte
//
// and a decrypted offset of zero terminates the table. Names are XORed with
// the table key's bytes, restarting at phase zero for every name.
type vxaceDecoder struct {
	r      *Reader
	cipher *keystream.FieldCipher
	done   bool
}

func newVXAceDecoder(r *Reader) (*vxaceDecoder, error) {
	seed, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("read key seed: %w", err)
	}
	return &vxaceDecoder{
		r:      r,
		cipher: keystream.NewFieldCipher(keystream.VXAceKey(seed), false),
	}, nil
}

func (d *vxaceDecoder) Next() (Entry, bool, error) {
	if d.done {
		return Entry{}, false, nil
	}

	offset, err := d.int32()
	if err != nil {
		return Entry{}, false, err
	}
	if offset == 0 {
		d.done = true
		return Entry{}, false, nil
	}
	size, err := d.int32()
	if err != nil {
		return Entry{}, false, err
	}
	key, err := d.int32()
	if err != nil {
		return Entry{}, false, err
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
	name := make([]byte, len(raw))
	keystream.RepeatingXOR(name, raw, d.cipher.Key())

	return Entry{
		Name:   name,
		Size:   size,
		Offset: int64(uint32(offset)),
		Key:    uint32(key), //nolint:gosec // the key field is unsigned on disk
	}, true, nil
}

func (d *vxaceDecoder) int32() (int32, error) {
	raw, err := d.r.Uint32()
	if err != nil {
		return 0, err
	}
	return d.cipher.DecryptInt32(raw), nil
}
