package rgssad

import (
	"io"
	"io/fs"
	"iter"
	"slices"
	"strings"

	"github.com/meigma/rgssad/internal/content"
	"github.com/meigma/rgssad/internal/file"
	"github.com/meigma/rgssad/internal/pathutil"
)

// Open implements fs.FS.
//
// Open returns an fs.File that decrypts the named entry as it is read, or a
// directory synthesized from entry paths. The returned regular files also
// implement io.ReaderAt.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.idx.Lookup(name); ok {
		return file.Open(a.data, e), nil
	}
	if a.isDir(name) {
		return &openDir{a: a, name: name}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS.
//
// Stat returns file info without decrypting content. For directories (paths
// that are prefixes of other entries), Stat returns synthetic directory info.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.idx.Lookup(name); ok {
		return file.NewInfo(e, pathutil.Base(name)), nil
	}
	if a.isDir(name) {
		return file.NewDirInfo(pathutil.Base(name)), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
//
// ReadFile decrypts and returns the entire contents of the named file.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}

	e, ok := a.idx.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	plain, err := content.Decrypt(a.data, e)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return plain, nil
}

// ReadDir implements fs.ReadDirFS.
//
// ReadDir returns directory entries for the named directory, sorted by name.
// Directory entries are synthesized from file paths; the archive does not
// store directories.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	di := newDirIter(a, pathutil.DirPrefix(name))
	defer di.Close()

	entries := make([]fs.DirEntry, 0)
	for {
		entry, ok := di.Next()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	// Path order puts "b-c.txt" before directory "b"; callers expect name order.
	slices.SortFunc(entries, func(x, y fs.DirEntry) int {
		return strings.Compare(x.Name(), y.Name())
	})
	return entries, nil
}

// isDir reports whether name is a directory (has entries under it).
// The root is always a directory, even for an empty archive.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	for range a.idx.EntriesWithPrefix(name + "/") {
		return true
	}
	return false
}

// openDir implements fs.ReadDirFile for synthetic directories.
type openDir struct {
	a    *Archive
	name string
	iter *dirIter
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return file.NewDirInfo(pathutil.Base(d.name)), nil
}

func (d *openDir) Close() error {
	if d.iter != nil {
		d.iter.Close()
		d.iter = nil
	}
	return nil
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.iter == nil {
		d.iter = newDirIter(d.a, pathutil.DirPrefix(d.name))
	}

	if n <= 0 {
		entries := make([]fs.DirEntry, 0)
		for {
			entry, ok := d.iter.Next()
			if !ok {
				return entries, nil
			}
			entries = append(entries, entry)
		}
	}

	entries := make([]fs.DirEntry, 0, n)
	for len(entries) < n {
		entry, ok := d.iter.Next()
		if !ok {
			if len(entries) == 0 {
				return nil, io.EOF
			}
			return entries, nil
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// dirIter iterates over the children of a directory prefix, synthesizing
// one entry per subdirectory.
type dirIter struct {
	next   func() (*Entry, bool)
	stop   func()
	prefix string
	seen   map[string]struct{}
	done   bool
}

func newDirIter(a *Archive, prefix string) *dirIter {
	next, stop := iter.Pull(a.idx.EntriesWithPrefix(prefix))
	return &dirIter{
		next:   next,
		stop:   stop,
		prefix: prefix,
		seen:   make(map[string]struct{}),
	}
}

// Next returns the next child, each name once. Entries arrive sorted by path,
// so a file that shares its name with a directory ("Data" beside
// "Data/x") sorts first and shadows the directory, as it does in Open.
func (it *dirIter) Next() (fs.DirEntry, bool) {
	if it.done {
		return nil, false
	}
	for {
		e, ok := it.next()
		if !ok {
			it.Close()
			return nil, false
		}

		childName, implied, ok := pathutil.Child(e.Path, it.prefix)
		if !ok {
			continue
		}
		if _, dup := it.seen[childName]; dup {
			continue
		}
		it.seen[childName] = struct{}{}

		if implied {
			return file.NewDirEntry(file.NewDirInfo(childName)), true
		}
		return file.NewDirEntry(file.NewInfo(e, childName)), true
	}
}

// Close releases resources held by the iterator.
func (it *dirIter) Close() {
	if it.done {
		return
	}
	it.done = true
	if it.stop != nil {
		it.stop()
		it.stop = nil
	}
}
