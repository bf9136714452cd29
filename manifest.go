package rgssad

import (
	_ "crypto/sha256" // registers digest.Canonical

	"github.com/opencontainers/go-digest"

	"github.com/meigma/rgssad/internal/batch"
)

// ManifestEntry describes one entry's decrypted content.
type ManifestEntry struct {
	// Path is the slash-separated entry path.
	Path string `json:"path"`

	// Size is the content length in bytes.
	Size int64 `json:"size"`

	// Digest is the sha256 digest of the decrypted content.
	Digest digest.Digest `json:"digest"`
}

// Manifest decrypts every entry and returns its digest, in archive order.
// Repeated paths appear once per table entry.
func (a *Archive) Manifest() ([]ManifestEntry, error) {
	sink := &digestSink{out: make([]ManifestEntry, len(a.entries))}

	var opts []batch.ProcessorOption
	if a.logger != nil {
		opts = append(opts, batch.WithProcessorLogger(a.logger))
	}
	if a.progress != nil {
		opts = append(opts, batch.WithProcessorProgress(StageHashing, a.progress))
	}
	if _, err := batch.NewProcessor(a.data, opts...).Process(a.entries, sink); err != nil {
		return nil, err
	}
	return sink.out, nil
}

// digestSink records one digest per entry, indexed by table position.
// Workers write distinct elements of out.
type digestSink struct {
	out []ManifestEntry
}

func (s *digestSink) ShouldProcess(*Entry) bool {
	return true
}

func (s *digestSink) PutBuffered(entry *Entry, content []byte) error {
	s.out[entry.Index] = ManifestEntry{
		Path:   entry.Path,
		Size:   int64(len(content)),
		Digest: digest.Canonical.FromBytes(content),
	}
	return nil
}
