// Package index provides path lookups over decoded archive entries.
package index

import (
	"cmp"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/meigma/rgssad/internal/rgsstype"
)

// Index provides access to archive entries by path.
//
// Entries are sorted by path, enabling O(log n) lookups and prefix scans for
// directory operations. When the archive stores the same path more than once,
// the entry that appears last in the table wins.
type Index struct {
	entries []*rgsstype.Entry
}

// Build creates an index over entries with resolved paths.
//
// The entries are retained by the index; callers must not modify them
// after calling Build.
func Build(entries []*rgsstype.Entry) *Index {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b *rgsstype.Entry) int {
		return cmp.Compare(a.Path, b.Path)
	})
	// Stable sort keeps table order within equal paths, so the last of a run wins.
	deduped := sorted[:0]
	for i, e := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Path == e.Path {
			continue
		}
		deduped = append(deduped, e)
	}
	return &Index{entries: slices.Clip(deduped)}
}

// Lookup returns the entry for the given path.
func (idx *Index) Lookup(path string) (*rgsstype.Entry, bool) {
	i, ok := slices.BinarySearchFunc(idx.entries, path, func(e *rgsstype.Entry, p string) int {
		return cmp.Compare(e.Path, p)
	})
	if !ok {
		return nil, false
	}
	return idx.entries[i], true
}

// Len returns the number of distinct paths in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns an iterator over all entries in path order.
func (idx *Index) Entries() iter.Seq[*rgsstype.Entry] {
	return func(yield func(*rgsstype.Entry) bool) {
		for _, e := range idx.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// EntriesWithPrefix returns an iterator over entries whose path starts with
// prefix, in path order.
func (idx *Index) EntriesWithPrefix(prefix string) iter.Seq[*rgsstype.Entry] {
	return func(yield func(*rgsstype.Entry) bool) {
		start := sort.Search(len(idx.entries), func(i int) bool {
			return idx.entries[i].Path >= prefix
		})
		for _, e := range idx.entries[start:] {
			if !strings.HasPrefix(e.Path, prefix) {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}
