package rgssad

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/rgssad/internal/testutil"
)

func assertTree(t *testing.T, dest string) {
	t.Helper()
	for _, f := range sampleFiles() {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(normalize(f.Name))))
		require.NoError(t, err, f.Name)
		assert.Equal(t, len(f.Data), len(got), f.Name)
		if len(f.Data) > 0 {
			assert.Equal(t, f.Data, got, f.Name)
		}
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	for name, data := range buildArchives() {
		for _, workers := range []int{-1, 0, 4} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				dest := filepath.Join(t.TempDir(), "out", "nested")
				outcome, err := Extract(data, dest, ExtractWithWorkers(workers))
				require.NoError(t, err)
				assert.Equal(t, OutcomeExtracted, outcome)
				assertTree(t, dest)
			})
		}
	}
}

func TestExtract_CollisionWritesNothing(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "Game.ini"), []byte("mine"), 0o644))

	outcome, err := Extract(buildArchives()["vxace"], dest)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFilesExist, outcome)
	assert.Equal(t, "files already exist", outcome.String())

	// Game.ini is the last entry; nothing before it may have been written.
	_, err = os.Stat(filepath.Join(dest, "Data"))
	assert.True(t, os.IsNotExist(err))
	got, err := os.ReadFile(filepath.Join(dest, "Game.ini"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mine"), got)
}

func TestExtract_Overwrite(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "Game.ini"), []byte("mine"), 0o644))

	outcome, err := Extract(buildArchives()["older"], dest, ExtractWithOverwrite(true))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtracted, outcome)
	assertTree(t, dest)
}

func TestExtract_SecondRunCollides(t *testing.T) {
	t.Parallel()

	a, err := Open(buildArchives()["older"])
	require.NoError(t, err)
	dest := t.TempDir()

	outcome, err := a.Extract(dest, ExtractWithDirectWrites(true))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtracted, outcome)

	outcome, err = a.Extract(dest)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFilesExist, outcome)
}

func TestExtract_RepeatedPath(t *testing.T) {
	t.Parallel()

	data := testutil.BuildOlder([]testutil.File{
		{Name: `Data\a.txt`, Data: []byte("first")},
		{Name: `Data\a.txt`, Data: []byte("second")},
	})

	dest := t.TempDir()
	outcome, err := Extract(data, dest)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFilesExist, outcome)
	_, err = os.Stat(filepath.Join(dest, "Data"))
	assert.True(t, os.IsNotExist(err))

	var stats ExtractStats
	outcome, err = Extract(data, dest, ExtractWithOverwrite(true), ExtractWithStats(&stats))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtracted, outcome)
	assert.Equal(t, ExtractStats{Files: 1, Bytes: 6}, stats)
	got, err := os.ReadFile(filepath.Join(dest, "Data", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestExtract_InvalidArchive(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out")
	_, err := Extract([]byte("RGSSAB\x00\x01"), dest)
	require.ErrorIs(t, err, ErrInvalidHeader)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "destination must not be created")
}

func TestExtract_Progress(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	_, err := Extract(buildArchives()["vxace"], t.TempDir(),
		ExtractWithWorkers(3),
		ExtractWithProgress(func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}),
	)
	require.NoError(t, err)

	require.Len(t, events, len(sampleFiles()))
	var maxDone int
	for _, e := range events {
		assert.Equal(t, StageExtracting, e.Stage)
		assert.Equal(t, len(sampleFiles()), e.FilesTotal)
		maxDone = max(maxDone, e.FilesDone)
	}
	assert.Equal(t, len(sampleFiles()), maxDone)
}

func TestExtract_DestinationIsFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(dest, nil, 0o644))

	_, err := Extract(buildArchives()["older"], dest)
	require.Error(t, err)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "extracted", OutcomeExtracted.String())
	assert.Equal(t, "files already exist", OutcomeFilesExist.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
