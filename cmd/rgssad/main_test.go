package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rgssad/internal/testutil"
)

func writeArchive(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Game.rgss3a")
	data := testutil.BuildVXAce(0xABCD, []testutil.File{
		{Name: `Data\System.rvdata2`, Data: []byte("system"), Key: 1},
		{Name: `Graphics\Titles1\Book.png`, Data: []byte("png-bytes"), Key: 2},
	})
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// run executes the app in-process. Commands and flags are package-level
// values that cli mutates while parsing, so these tests do not run in parallel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"rgssad"}, args...))
	return stdout.String(), err
}

func TestExtractCommand(t *testing.T) {
	archive := writeArchive(t)
	out, err := run(t, "extract", "--out", filepath.Join(t.TempDir(), "game"), archive)
	require.NoError(t, err)
	assert.Contains(t, out, "extracted 2 files (VXAce)")
}

func TestExtractCommandCountsRepeatedPathOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Game.rgssad")
	data := testutil.BuildOlder([]testutil.File{
		{Name: `Data\Scripts.rxdata`, Data: []byte("old")},
		{Name: `Data\Scripts.rxdata`, Data: []byte("new")},
		{Name: `Data\Map001.rxdata`, Data: []byte("map")},
	})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := run(t, "extract", "--force", "--out", filepath.Join(t.TempDir(), "game"), path)
	require.NoError(t, err)
	assert.Contains(t, out, "extracted 2 files (XP/VX)")
}

func TestExtractCommandDefaultsToArchiveDir(t *testing.T) {
	archive := writeArchive(t)
	_, err := run(t, "extract", archive)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(filepath.Dir(archive), "Data", "System.rvdata2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("system"), got)
}

func TestListCommandJSON(t *testing.T) {
	archive := writeArchive(t)
	out, err := run(t, "list", "--digest", "--json", archive)
	require.NoError(t, err)

	var rows []listing
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Data/System.rvdata2", rows[0].Path)
	assert.Equal(t, int64(6), rows[0].Size)
	assert.Contains(t, rows[0].Digest, "sha256:")
}

func TestExportCommand(t *testing.T) {
	archive := writeArchive(t)
	out := filepath.Join(t.TempDir(), "game.tar.zst")
	_, err := run(t, "export", "--out", out, "--level", "fastest", archive)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestOpenArchiveErrors(t *testing.T) {
	_, err := run(t, "list")
	require.Error(t, err)

	_, err = run(t, "--encoding", "klingon", "list", writeArchive(t))
	require.ErrorContains(t, err, "unknown filename encoding")

	bad := filepath.Join(t.TempDir(), "bad.rgssad")
	require.NoError(t, os.WriteFile(bad, []byte("RGSSAB\x00\x01"), 0o644))
	_, err = run(t, "list", bad)
	require.ErrorContains(t, err, "invalid archive header")
}

func TestParseEncoding(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "shift_jis", "sjis", "euc-kr", "gbk", "big5"} {
		_, err := parseEncoding(name)
		assert.NoError(t, err, name)
	}
	_, err := parseEncoding("latin-9")
	assert.Error(t, err)
}
