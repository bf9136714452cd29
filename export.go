package rgssad

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/rgssad/internal/batch"
)

// ExportOption configures ExportTar.
type ExportOption func(*exportConfig)

type exportConfig struct {
	level    zstd.EncoderLevel
	workers  int
	progress ProgressFunc
}

// ExportWithLevel sets the zstd compression level (default: zstd.SpeedDefault).
func ExportWithLevel(level zstd.EncoderLevel) ExportOption {
	return func(c *exportConfig) {
		c.level = level
	}
}

// ExportWithWorkers sets the number of workers decrypting ahead of the writer.
// Values < 0 force serial processing. Zero uses automatic heuristics.
func ExportWithWorkers(n int) ExportOption {
	return func(c *exportConfig) {
		c.workers = n
	}
}

// ExportWithProgress reports a StageExporting event after each file is written.
func ExportWithProgress(fn ProgressFunc) ExportOption {
	return func(c *exportConfig) {
		c.progress = fn
	}
}

// ExportTar writes the decrypted archive to w as a zstd-compressed tar
// stream, one regular file per entry in archive order. Repeated paths are
// written once, from their last entry. w is not closed.
func (a *Archive) ExportTar(w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&cfg)
	}

	sink, err := batch.NewTarSink(w, batch.WithTarLevel(cfg.level))
	if err != nil {
		return err
	}

	procOpts := []batch.ProcessorOption{batch.WithWorkers(cfg.workers)}
	if cfg.progress != nil {
		procOpts = append(procOpts, batch.WithProcessorProgress(StageExporting, cfg.progress))
	}
	if a.logger != nil {
		procOpts = append(procOpts, batch.WithProcessorLogger(a.logger))
	}
	if _, err := batch.NewProcessor(a.data, procOpts...).Process(a.unique(), sink); err != nil {
		_ = sink.Close() //nolint:errcheck // already failing
		return err
	}
	return sink.Close()
}
