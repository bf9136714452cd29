package rgssad

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/meigma/rgssad/internal/content"
	"github.com/meigma/rgssad/internal/index"
	"github.com/meigma/rgssad/internal/pathutil"
	"github.com/meigma/rgssad/internal/table"
)

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Archive is a decoded RGSS archive.
//
// The entry table is decoded once by Open; content is decrypted on demand.
// Archive is safe for concurrent use. The buffer passed to Open is retained
// and must not be modified while the Archive is in use.
type Archive struct {
	data     []byte
	variant  Variant
	entries  []*Entry
	idx      *index.Index
	encoding encoding.Encoding
	lossy    bool
	progress ProgressFunc
	logger   *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Open decodes the header and entry table of data.
//
// It returns a *HeaderError or *EngineError for an unrecognized header, and
// an error wrapping ErrCorruption when the table, a filename, or a content
// range is malformed. Open does not decrypt any content.
func Open(data []byte, opts ...Option) (*Archive, error) {
	a := &Archive{data: data}
	for _, opt := range opts {
		opt(a)
	}

	variant, decoded, err := table.Decode(data)
	if err != nil {
		return nil, err
	}
	a.variant = variant

	names := pathutil.NewNameDecoder(a.encoding, a.lossy)
	a.entries = make([]*Entry, len(decoded))
	var total uint64
	for i := range decoded {
		e := &decoded[i]
		path, err := names.Path(e.Name)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		e.Path = path
		a.entries[i] = e
		total += uint64(e.Size) //nolint:gosec // validated non-negative
	}
	a.idx = index.Build(a.entries)

	a.log().Debug("decoded archive",
		"variant", variant.String(),
		"entries", len(a.entries),
		"paths", a.idx.Len(),
		"bytes", total)
	if a.progress != nil {
		a.progress(ProgressEvent{
			Stage:      StageDecodingTable,
			BytesTotal: total,
			FilesDone:  len(a.entries),
			FilesTotal: len(a.entries),
		})
	}
	return a, nil
}

// Variant returns the archive layout.
func (a *Archive) Variant() Variant {
	return a.variant
}

// Len returns the number of entries in the table, counting repeated paths.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entries returns an iterator over all entries in archive order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.entries {
			if !yield(*e) {
				return
			}
		}
	}
}

// Entry returns the entry stored at path. When a path is repeated, the last
// entry in archive order is returned.
func (a *Archive) Entry(path string) (Entry, bool) {
	e, ok := a.idx.Lookup(path)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Decrypt returns the plaintext of e.
//
// e is normally obtained from Entries or Entry; it is validated against the
// archive buffer before decryption.
func (a *Archive) Decrypt(e Entry) ([]byte, error) {
	return content.Decrypt(a.data, &e)
}

// unique returns the entries that win for their path, in archive order.
func (a *Archive) unique() []*Entry {
	if a.idx.Len() == len(a.entries) {
		return a.entries
	}
	out := make([]*Entry, 0, a.idx.Len())
	for _, e := range a.entries {
		if winner, ok := a.idx.Lookup(e.Path); ok && winner == e {
			out = append(out, e)
		}
	}
	return out
}
