// Package table decodes the header and entry table of an RGSS archive.
//
// The two archive layouts share the header but nothing else: XP/VX tables
// interleave entry records with content and advance the key after every
// field, while VX Ace tables are a contiguous block of records under one key,
// terminated by a zero offset. Each layout is a Decoder; callers never branch
// on the variant themselves.
package table

import (
	"fmt"

	"github.com/meigma/rgssad/internal/rgsstype"
	"github.com/meigma/rgssad/internal/sizing"
)

// Entry is an alias for rgsstype.Entry.
type Entry = rgsstype.Entry

// Decoder yields the entries of a table in archive order.
type Decoder interface {
	// Next decodes the next entry. ok is false once the table has ended.
	Next() (entry Entry, ok bool, err error)
}

// NewDecoder returns the decoder for v. The reader must be positioned just
// after the header.
func NewDecoder(r *Reader, v rgsstype.Variant) (Decoder, error) {
	switch v {
	case rgsstype.VariantOlder:
		return newOlderDecoder(r), nil
	case rgsstype.VariantVXAce:
		return newVXAceDecoder(r)
	default:
		return nil, &rgsstype.EngineError{Found: byte(v)}
	}
}

// Decode parses the header and the full entry table of data, and validates
// every entry's content range against the buffer.
func Decode(data []byte) (rgsstype.Variant, []Entry, error) {
	r := NewReader(data)
	variant, err := ParseHeader(r)
	if err != nil {
		return 0, nil, err
	}
	dec, err := NewDecoder(r, variant)
	if err != nil {
		return 0, nil, err
	}

	var entries []Entry
	for {
		entry, ok, err := dec.Next()
		if err != nil {
			return 0, nil, fmt.Errorf("entry %d: %w", len(entries), err)
		}
		if !ok {
			break
		}
		entry.Index = len(entries)
		entries = append(entries, entry)
	}

	if err := Validate(entries, len(data)); err != nil {
		return 0, nil, err
	}
	return variant, entries, nil
}

// Validate checks that every entry's content lies inside a buffer of length n.
func Validate(entries []Entry, n int) error {
	for i := range entries {
		if err := ValidateEntry(&entries[i], n); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEntry checks that e's content lies inside a buffer of length n.
func ValidateEntry(e *Entry, n int) error {
	if e.Size < 0 {
		return fmt.Errorf("%w: entry %d: negative size %d", rgsstype.ErrCorruption, e.Index, e.Size)
	}
	if e.Offset < 0 {
		return fmt.Errorf("%w: entry %d: negative offset %d", rgsstype.ErrCorruption, e.Index, e.Offset)
	}
	end, ok := sizing.AddInt64(e.Offset, int64(e.Size))
	if !ok || end > int64(n) {
		return fmt.Errorf("%w: entry %d: content [%d, %d) exceeds archive length %d",
			rgsstype.ErrCorruption, e.Index, e.Offset, e.Offset+int64(e.Size), n)
	}
	return nil
}
