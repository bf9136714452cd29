package rgssad

import (
	"log/slog"

	"golang.org/x/text/encoding"
)

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithFilenameEncoding decodes stored filenames with enc instead of requiring
// UTF-8. Old XP archives often store Shift-JIS names; pass
// japanese.ShiftJIS from golang.org/x/text/encoding/japanese for those.
func WithFilenameEncoding(enc encoding.Encoding) Option {
	return func(a *Archive) {
		a.encoding = enc
	}
}

// WithLossyFilenames replaces invalid UTF-8 in filenames with U+FFFD instead
// of failing with ErrCorruption. It has no effect when a filename encoding is
// set.
func WithLossyFilenames(enabled bool) Option {
	return func(a *Archive) {
		a.lossy = enabled
	}
}

// WithProgress reports a StageDecodingTable event once the entry table is
// decoded, and StageHashing events while Manifest runs.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Archive) {
		a.progress = fn
	}
}
