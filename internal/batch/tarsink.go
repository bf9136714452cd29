package batch

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// TarSink writes entries to a zstd-compressed tar stream in archive order.
//
// Directories are not emitted; tar readers create them from file paths.
// Close must be called to flush the stream.
type TarSink struct {
	mu      sync.Mutex
	enc     *zstd.Encoder
	tw      *tar.Writer
	modTime time.Time
	closed  bool
}

// TarSinkOption configures a TarSink.
type TarSinkOption func(*tarSinkConfig)

type tarSinkConfig struct {
	level   zstd.EncoderLevel
	modTime time.Time
}

// WithTarLevel sets the zstd encoder level (default: zstd.SpeedDefault).
func WithTarLevel(level zstd.EncoderLevel) TarSinkOption {
	return func(c *tarSinkConfig) {
		c.level = level
	}
}

// WithTarModTime sets the modification time recorded for every file.
// The default is the Unix epoch, which keeps exports reproducible.
func WithTarModTime(t time.Time) TarSinkOption {
	return func(c *tarSinkConfig) {
		c.modTime = t
	}
}

// NewTarSink returns a sink writing a .tar.zst stream to w.
func NewTarSink(w io.Writer, opts ...TarSinkOption) (*TarSink, error) {
	cfg := tarSinkConfig{
		level:   zstd.SpeedDefault,
		modTime: time.Unix(0, 0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(cfg.level))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &TarSink{
		enc:     enc,
		tw:      tar.NewWriter(enc),
		modTime: cfg.modTime,
	}, nil
}

// ShouldProcess always returns true.
func (s *TarSink) ShouldProcess(*Entry) bool {
	return true
}

// Ordered marks TarSink as requiring archive order.
func (s *TarSink) Ordered() {}

// PutBuffered appends one file to the tar stream.
func (s *TarSink) PutBuffered(entry *Entry, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("batch: tar sink closed")
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     entry.Path,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  s.modTime,
		Format:   tar.FormatPAX,
	}
	if err := s.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write tar header: %w", err)
	}
	if _, err := s.tw.Write(content); err != nil {
		return fmt.Errorf("write tar content: %w", err)
	}
	return nil
}

// Close finishes the tar stream and flushes the zstd frame.
// It does not close the underlying writer.
func (s *TarSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.tw.Close(); err != nil {
		_ = s.enc.Close() //nolint:errcheck // already failing
		return fmt.Errorf("close tar: %w", err)
	}
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("close zstd: %w", err)
	}
	return nil
}
