package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rgssad/internal/rgsstype"
)

func entriesFor(paths ...string) []*rgsstype.Entry {
	entries := make([]*rgsstype.Entry, 0, len(paths))
	for i, p := range paths {
		entries = append(entries, &rgsstype.Entry{Index: i, Path: p, Offset: int64(i * 100)})
	}
	return entries
}

func TestIndexLookup(t *testing.T) {
	t.Parallel()

	idx := Build(entriesFor("Data/Map001.rvdata2", "Audio/BGM/Theme.ogg", "Data/Actors.rvdata2"))

	t.Run("existing path", func(t *testing.T) {
		t.Parallel()
		e, ok := idx.Lookup("Data/Actors.rvdata2")
		require.True(t, ok)
		assert.Equal(t, 2, e.Index)
	})

	t.Run("non-existing path", func(t *testing.T) {
		t.Parallel()
		_, ok := idx.Lookup("Data")
		assert.False(t, ok)
	})

	t.Run("all entries accessible", func(t *testing.T) {
		t.Parallel()
		for _, p := range []string{"Data/Map001.rvdata2", "Audio/BGM/Theme.ogg", "Data/Actors.rvdata2"} {
			e, ok := idx.Lookup(p)
			require.True(t, ok, p)
			assert.Equal(t, p, e.Path)
		}
	})
}

func TestIndexEntries(t *testing.T) {
	t.Parallel()

	idx := Build(entriesFor("c.txt", "a.txt", "b.txt"))

	var paths []string
	for e := range idx.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, paths, "entries should be sorted by path")
	assert.Equal(t, 3, idx.Len())
}

func TestIndexDuplicatesKeepLast(t *testing.T) {
	t.Parallel()

	idx := Build(entriesFor("a.txt", "b.txt", "a.txt", "a.txt"))

	assert.Equal(t, 2, idx.Len())
	e, ok := idx.Lookup("a.txt")
	require.True(t, ok)
	assert.Equal(t, 3, e.Index)
}

func TestIndexEntriesWithPrefix(t *testing.T) {
	t.Parallel()

	idx := Build(entriesFor(
		"Graphics/Pictures/title.png",
		"Graphics/Characters/hero.png",
		"Graphics/Characters/npc.png",
		"Data/System.rvdata2",
		"Graphics2/extra.png",
	))

	tests := []struct {
		name     string
		prefix   string
		expected []string
	}{
		{
			name:     "nested directory",
			prefix:   "Graphics/Characters/",
			expected: []string{"Graphics/Characters/hero.png", "Graphics/Characters/npc.png"},
		},
		{
			name:   "parent directory excludes sibling with shared prefix",
			prefix: "Graphics/",
			expected: []string{
				"Graphics/Characters/hero.png",
				"Graphics/Characters/npc.png",
				"Graphics/Pictures/title.png",
			},
		},
		{
			name:   "empty prefix matches all",
			prefix: "",
			expected: []string{
				"Data/System.rvdata2",
				"Graphics/Characters/hero.png",
				"Graphics/Characters/npc.png",
				"Graphics/Pictures/title.png",
				"Graphics2/extra.png",
			},
		},
		{
			name:     "no matches",
			prefix:   "Audio/",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for e := range idx.EntriesWithPrefix(tt.prefix) {
				got = append(got, e.Path)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIndexEmpty(t *testing.T) {
	t.Parallel()

	idx := Build(nil)
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Lookup("a")
	assert.False(t, ok)
	for range idx.EntriesWithPrefix("") {
		t.Fatal("unexpected entry")
	}
}
