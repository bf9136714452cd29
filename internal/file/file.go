// Package file provides fs.File and fs.FileInfo implementations for archive
// entries and the directories synthesized from their paths.
package file

import (
	"bytes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/meigma/rgssad/internal/content"
	"github.com/meigma/rgssad/internal/keystream"
	"github.com/meigma/rgssad/internal/pathutil"
	"github.com/meigma/rgssad/internal/rgsstype"
)

// Entry is an alias for rgsstype.Entry.
type Entry = rgsstype.Entry

// File implements fs.File for streaming decryption of one entry.
type File struct {
	data  []byte
	entry Entry

	r       io.Reader
	initErr error
	closed  bool
}

// Interface compliance.
var (
	_ fs.File     = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)

// Open returns a File reading entry's plaintext from the archive buffer.
// The range is validated on first read.
func Open(data []byte, entry *Entry) *File {
	return &File{data: data, entry: *entry}
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.entry.Path, Err: fs.ErrClosed}
	}
	if err := f.init(); err != nil {
		return 0, err
	}
	return f.r.Read(p)
}

// ReadAt implements io.ReaderAt. The keystream is repositioned for each call.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.entry.Path, Err: fs.ErrClosed}
	}
	if err := f.init(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "read", Path: f.entry.Path, Err: errors.New("negative offset")}
	}
	size := int64(f.entry.Size)
	if off >= size {
		return 0, io.EOF
	}

	n := len(p)
	if remaining := size - off; remaining < int64(n) {
		n = int(remaining)
	}
	start := f.entry.Offset + off
	s := keystream.NewStreamAt(keystream.Key(f.entry.Key), off)
	s.XORKeyStream(p[:n], f.data[start:start+int64(n)])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Stat returns file info.
func (f *File) Stat() (fs.FileInfo, error) {
	return NewInfo(&f.entry, pathutil.Base(f.entry.Path)), nil
}

// Close marks the file closed. Reads after Close fail.
func (f *File) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.entry.Path, Err: fs.ErrClosed}
	}
	f.closed = true
	return nil
}

func (f *File) init() error {
	if f.r != nil || f.initErr != nil {
		return f.initErr
	}
	src, err := content.Slice(f.data, &f.entry)
	if err != nil {
		f.initErr = fmt.Errorf("read %s: %w", f.entry.Path, err)
		return f.initErr
	}
	f.r = &cipher.StreamReader{
		S: keystream.NewStream(keystream.Key(f.entry.Key)),
		R: bytes.NewReader(src),
	}
	return nil
}

// Info implements fs.FileInfo for regular files.
type Info struct {
	entry Entry
	name  string
}

// NewInfo creates an Info from an entry.
func NewInfo(entry *Entry, name string) *Info {
	return &Info{entry: *entry, name: name}
}

func (fi *Info) Name() string       { return fi.name }
func (fi *Info) Size() int64        { return int64(fi.entry.Size) }
func (fi *Info) Mode() fs.FileMode  { return 0o444 }
func (fi *Info) ModTime() time.Time { return time.Time{} }
func (fi *Info) IsDir() bool        { return false }
func (fi *Info) Sys() any           { return &fi.entry }

// Entry returns the underlying archive entry.
func (fi *Info) Entry() *Entry {
	return &fi.entry
}

// DirInfo implements fs.FileInfo for synthetic directories.
type DirInfo struct {
	name string
}

// NewDirInfo creates a DirInfo with the given name.
func NewDirInfo(name string) *DirInfo {
	return &DirInfo{name: name}
}

func (di *DirInfo) Name() string       { return di.name }
func (di *DirInfo) Size() int64        { return 0 }
func (di *DirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di *DirInfo) ModTime() time.Time { return time.Time{} }
func (di *DirInfo) IsDir() bool        { return true }
func (di *DirInfo) Sys() any           { return nil }

// DirEntry implements fs.DirEntry by wrapping fs.FileInfo.
type DirEntry struct {
	info fs.FileInfo
}

// NewDirEntry creates a DirEntry wrapping the given FileInfo.
func NewDirEntry(info fs.FileInfo) *DirEntry {
	return &DirEntry{info: info}
}

func (de *DirEntry) Name() string               { return de.info.Name() }
func (de *DirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *DirEntry) Type() fs.FileMode          { return de.info.Mode().Type() }
func (de *DirEntry) Info() (fs.FileInfo, error) { return de.info, nil }
func (de *DirEntry) String() string             { return fs.FormatDirEntry(de) }
