package rgssad

import (
	"fmt"
	"os"

	"github.com/meigma/rgssad/internal/batch"
)

// Outcome reports how an extraction ended.
type Outcome uint8

const (
	// OutcomeExtracted means every entry was written.
	OutcomeExtracted Outcome = iota

	// OutcomeFilesExist means overwrite was disabled and at least one target
	// already existed, or the archive repeats a path. Nothing was written.
	OutcomeFilesExist
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeExtracted:
		return "extracted"
	case OutcomeFilesExist:
		return "files already exist"
	default:
		return "unknown"
	}
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	overwrite    bool
	directWrites bool
	workers      int
	progress     ProgressFunc
	stats        *ExtractStats
}

// ExtractStats reports what an extraction wrote.
type ExtractStats struct {
	// Files is the number of files written. A path repeated inside the
	// archive is written once.
	Files int

	// Bytes is the total plaintext size of the written files.
	Bytes uint64
}

// ExtractWithOverwrite allows replacing existing files.
//
// By default, extraction checks every target before writing anything and
// returns OutcomeFilesExist if one already exists. With overwrite enabled,
// a path repeated inside the archive is written once, from its last entry.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithWorkers sets the number of workers for parallel decryption.
// Values < 0 force serial processing. Zero uses automatic heuristics.
// Values > 0 force a specific worker count.
func ExtractWithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = n
	}
}

// ExtractWithProgress reports a StageExtracting event after each file is written.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(c *extractConfig) {
		c.progress = fn
	}
}

// ExtractWithStats stores the extraction's statistics in s when it
// completes. s is left zero when the extraction stops with OutcomeFilesExist
// or an error.
func ExtractWithStats(s *ExtractStats) ExtractOption {
	return func(c *extractConfig) {
		c.stats = s
	}
}

// ExtractWithDirectWrites writes straight to the final paths instead of
// staging each file in a temp file and renaming it. A failed extraction may
// then leave partial files behind.
func ExtractWithDirectWrites(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.directWrites = enabled
	}
}

// Extract decodes data and writes every entry below destDir.
// It is shorthand for Open followed by Archive.Extract.
func Extract(data []byte, destDir string, opts ...ExtractOption) (Outcome, error) {
	a, err := Open(data)
	if err != nil {
		return OutcomeExtracted, err
	}
	return a.Extract(destDir, opts...)
}

// Extract writes every entry below destDir, creating it and any parent
// directories as needed.
//
// Without ExtractWithOverwrite, collisions are all-or-nothing: targets are
// checked in archive order before any content is decrypted, and the first
// existing target stops the extraction with OutcomeFilesExist.
//
// Filesystem errors are returned wrapped with the entry path; files already
// committed at that point are left in place.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) (Outcome, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return OutcomeExtracted, fmt.Errorf("create destination %s: %w", destDir, err)
	}
	sink := batch.NewFileSink(destDir,
		batch.WithOverwrite(cfg.overwrite),
		batch.WithDirectWrites(cfg.directWrites),
	)

	entries := a.entries
	if cfg.overwrite {
		entries = a.unique()
	} else if collision, ok := a.firstCollision(sink); ok {
		a.log().Info("extraction target exists", "path", collision.Path, "target", sink.Target(collision))
		return OutcomeFilesExist, nil
	}

	procOpts := []batch.ProcessorOption{batch.WithWorkers(cfg.workers)}
	if cfg.progress != nil {
		procOpts = append(procOpts, batch.WithProcessorProgress(StageExtracting, cfg.progress))
	}
	if a.logger != nil {
		procOpts = append(procOpts, batch.WithProcessorLogger(a.logger))
	}
	stats, err := batch.NewProcessor(a.data, procOpts...).Process(entries, sink)
	if err != nil {
		return OutcomeExtracted, err
	}

	if cfg.stats != nil {
		*cfg.stats = ExtractStats{Files: stats.Processed, Bytes: stats.TotalBytes}
	}
	a.log().Debug("extracted archive",
		"dest", destDir,
		"files", stats.Processed,
		"bytes", stats.TotalBytes)
	return OutcomeExtracted, nil
}

// firstCollision returns the first entry, in archive order, whose target
// exists or whose path an earlier entry already claimed.
func (a *Archive) firstCollision(sink *batch.FileSink) (*Entry, bool) {
	seen := make(map[string]struct{}, len(a.entries))
	for _, e := range a.entries {
		if _, dup := seen[e.Path]; dup || sink.Exists(e) {
			return e, true
		}
		seen[e.Path] = struct{}{}
	}
	return nil, false
}
