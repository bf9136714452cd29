package batch

import (
	"io"

	"github.com/meigma/rgssad/internal/rgsstype"
)

// Entry is an alias for rgsstype.Entry.
type Entry = rgsstype.Entry

// Sink receives decrypted file content during batch processing.
//
// Implementations determine where content is written (filesystem, export
// stream, digest table) and can filter which entries to process. A sink must
// also implement StreamSink or BufferedSink.
type Sink interface {
	// ShouldProcess returns false if this entry should be skipped.
	ShouldProcess(entry *Entry) bool
}

// StreamSink receives content through a writer.
type StreamSink interface {
	Sink

	// Writer returns a writer for the entry's content.
	// The caller writes the decrypted content, then calls Commit on success
	// or Discard on any error.
	Writer(entry *Entry) (Committer, error)
}

// BufferedSink receives each entry's content as one slice.
//
// Implementations should not mutate or retain the content slice beyond the call
// unless they own it; the processor allocates a new slice per entry.
type BufferedSink interface {
	Sink
	PutBuffered(entry *Entry, content []byte) error
}

// OrderedSink is a BufferedSink that must receive entries in archive order,
// one at a time. Decryption still runs in parallel.
type OrderedSink interface {
	BufferedSink
	Ordered()
}

// Committer is a writer that can be committed or discarded.
//
// Implementations should buffer or stage writes until Commit is called.
// For example, a file-based implementation might write to a temp file
// and rename it on Commit, or delete it on Discard.
type Committer interface {
	io.Writer

	// Commit finalizes the write, making content available.
	Commit() error

	// Discard aborts the write and cleans up any temporary resources.
	Discard() error
}
