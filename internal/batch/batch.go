// Package batch decrypts archive entries and hands the plaintext to a sink,
// fanning the work out over a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meigma/rgssad/internal/content"
	"github.com/meigma/rgssad/internal/rgsstype"
	"github.com/meigma/rgssad/internal/sizing"
	"github.com/meigma/rgssad/internal/table"
)

const (
	// parallelMinAvgBytes is the minimum average entry size to use parallel processing.
	// Below this threshold, serial processing is more efficient due to reduced overhead.
	parallelMinAvgBytes = 16 << 10 // 16KB

	// orderedWindow bounds how many decrypted entries an ordered sink may
	// have waiting, per worker.
	orderedWindow = 2
)

// Processor decrypts entries from an archive buffer and writes them to a sink.
//
// The buffer is shared read-only between workers. Each entry is decrypted with
// its own keystream, so no state is shared between workers.
type Processor struct {
	data     []byte
	workers  int // 0 = auto, <0 = serial, >0 = fixed count
	stage    rgsstype.ProgressStage
	progress rgsstype.ProgressFunc
	logger   *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of workers for parallel processing.
// Values < 0 force serial processing. Zero uses automatic heuristics.
// Values > 0 force a specific worker count.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithProcessorProgress reports one event per processed entry under stage.
func WithProcessorProgress(stage rgsstype.ProgressStage, fn rgsstype.ProgressFunc) ProcessorOption {
	return func(p *Processor) {
		p.stage = stage
		p.progress = fn
	}
}

// WithProcessorLogger sets the logger for batch processing operations.
// If not set, logging is disabled.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a processor reading entry content from data.
func NewProcessor(data []byte, opts ...ProcessorOption) *Processor {
	p := &Processor{data: data}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process decrypts entries and writes the results to the sink.
//
// Entries are filtered through sink.ShouldProcess and validated against the
// buffer before any content is decrypted. Ordered sinks receive entries in
// the order given; other sinks receive them as workers finish.
//
// Processing stops on the first error encountered.
func (p *Processor) Process(entries []*Entry, sink Sink) (ProcessStats, error) {
	var stats ProcessStats
	if len(entries) == 0 {
		return stats, nil
	}

	toProcess := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		if sink.ShouldProcess(entry) {
			toProcess = append(toProcess, entry)
		} else {
			stats.Skipped++
			p.log().Debug("skipping entry", "path", entry.Path)
		}
	}
	if len(toProcess) == 0 {
		return stats, nil
	}

	var total uint64
	for _, entry := range toProcess {
		if err := table.ValidateEntry(entry, len(p.data)); err != nil {
			return stats, fmt.Errorf("batch: %s: %w", entry.Path, err)
		}
		total += uint64(entry.Size) //nolint:gosec // validated non-negative
	}

	run := &runState{total: total, files: len(toProcess)}
	workers := p.workerCount(toProcess)
	p.log().Debug("batch processing", "entries", len(toProcess), "workers", workers, "bytes", total)

	var err error
	if ordered, ok := sink.(OrderedSink); ok {
		err = p.processOrdered(toProcess, ordered, workers, run)
	} else if workers < 2 {
		err = p.processSerial(toProcess, sink, run)
	} else {
		err = p.processParallel(toProcess, sink, workers, run)
	}

	stats.Processed = int(run.filesDone.Load())
	stats.TotalBytes = run.bytesDone.Load()
	return stats, err
}

// runState tracks progress across workers.
type runState struct {
	total     uint64
	files     int
	filesDone atomic.Int64
	bytesDone atomic.Uint64
}

// done records a committed entry and reports progress.
func (p *Processor) done(entry *Entry, run *runState) {
	files := run.filesDone.Add(1)
	bytesDone := run.bytesDone.Add(uint64(entry.Size)) //nolint:gosec // validated non-negative
	if p.progress == nil {
		return
	}
	p.progress(rgsstype.ProgressEvent{
		Stage:      p.stage,
		Path:       entry.Path,
		BytesDone:  bytesDone,
		BytesTotal: run.total,
		FilesDone:  int(files),
		FilesTotal: run.files,
	})
}

// processSerial processes entries one at a time.
func (p *Processor) processSerial(entries []*Entry, sink Sink, run *runState) error {
	for _, entry := range entries {
		if err := p.processEntry(entry, sink); err != nil {
			return err
		}
		p.done(entry, run)
	}
	return nil
}

// processParallel processes entries concurrently; completion order is unspecified.
func (p *Processor) processParallel(entries []*Entry, sink Sink, workers int, run *runState) error {
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(workers)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.processEntry(entry, sink); err != nil {
				return err
			}
			p.done(entry, run)
			return nil
		})
	}
	return eg.Wait()
}

// decrypted holds one entry's plaintext waiting for its turn.
type decrypted struct {
	index int
	data  []byte
}

// processOrdered decrypts entries on workers and commits them in order.
// A semaphore bounds how far decryption may run ahead of the commit point.
//
//nolint:gocognit // producer/worker/consumer coordination
func (p *Processor) processOrdered(entries []*Entry, sink OrderedSink, workers int, run *runState) error {
	if workers < 1 {
		workers = 1
	}
	window := semaphore.NewWeighted(int64(workers * orderedWindow))
	tasks := make(chan int)
	ready := make(chan decrypted, workers)
	eg, ctx := errgroup.WithContext(context.Background())

	var workerWg sync.WaitGroup
	workerWg.Add(workers)
	for range workers {
		eg.Go(func() error {
			defer workerWg.Done()
			for i := range tasks {
				plain, err := content.Decrypt(p.data, entries[i])
				if err != nil {
					return fmt.Errorf("batch: %s: %w", entries[i].Path, err)
				}
				select {
				case ready <- decrypted{index: i, data: plain}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	eg.Go(func() error {
		defer close(tasks)
		for i := range entries {
			if err := window.Acquire(ctx, 1); err != nil {
				return err
			}
			select {
			case tasks <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	go func() {
		workerWg.Wait()
		close(ready)
	}()

	eg.Go(func() error {
		next := 0
		pending := make(map[int][]byte, workers)
		for next < len(entries) {
			select {
			case res, ok := <-ready:
				if !ok {
					if err := ctx.Err(); err != nil {
						return err
					}
					return errors.New("batch: decrypt pipeline ended unexpectedly")
				}
				pending[res.index] = res.data
				for {
					plain, ok := pending[next]
					if !ok {
						break
					}
					delete(pending, next)
					entry := entries[next]
					if err := sink.PutBuffered(entry, plain); err != nil {
						return fmt.Errorf("batch: %s: %w", entry.Path, err)
					}
					window.Release(1)
					p.done(entry, run)
					next++
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return eg.Wait()
}

// processEntry decrypts a single entry and writes it to the sink.
func (p *Processor) processEntry(entry *Entry, sink Sink) error {
	switch s := sink.(type) {
	case BufferedSink:
		plain, err := content.Decrypt(p.data, entry)
		if err != nil {
			return fmt.Errorf("batch: %s: %w", entry.Path, err)
		}
		if err := s.PutBuffered(entry, plain); err != nil {
			return fmt.Errorf("batch: %s: %w", entry.Path, err)
		}
		return nil
	case StreamSink:
		return p.streamEntry(entry, s)
	default:
		return fmt.Errorf("batch: unsupported sink %T", sink)
	}
}

// streamEntry decrypts entry through a Committer obtained from the sink.
func (p *Processor) streamEntry(entry *Entry, sink StreamSink) error {
	r, err := content.NewReader(p.data, entry)
	if err != nil {
		return fmt.Errorf("batch: %s: %w", entry.Path, err)
	}
	w, err := sink.Writer(entry)
	if err != nil {
		return fmt.Errorf("batch: %s: %w", entry.Path, err)
	}

	n, err := io.Copy(w, r)
	if err == nil && n != int64(entry.Size) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("batch: %s: %w", entry.Path, err)
	}

	if err := w.Commit(); err != nil {
		return fmt.Errorf("batch: %s: commit: %w", entry.Path, err)
	}
	return nil
}

// workerCount determines the number of workers to use for processing.
func (p *Processor) workerCount(entries []*Entry) int {
	if len(entries) < 2 {
		return 1
	}
	if p.workers < 0 {
		return 1
	}

	workers := p.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers < 2 {
			return 1
		}
		// Use size-based heuristic: only parallelize for larger entries
		var total uint64
		for _, entry := range entries {
			next, ok := sizing.AddUint64(total, uint64(entry.Size)) //nolint:gosec // validated non-negative
			if !ok {
				total = ^uint64(0)
				break
			}
			total = next
		}
		if total/uint64(len(entries)) < parallelMinAvgBytes {
			return 1
		}
	}

	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 2 {
		return 1
	}
	return workers
}
