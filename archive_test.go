package rgssad

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/meigma/rgssad/internal/testutil"
)

// sampleFiles returns a small game-like tree with stored backslash names.
func sampleFiles() []testutil.File {
	return []testutil.File{
		{Name: `Data\Scripts.rvdata2`, Data: bytes.Repeat([]byte("script"), 100), Key: 0x11111111},
		{Name: `Data\Map001.rvdata2`, Data: []byte("map"), Key: 0x22222222},
		{Name: `Graphics\Titles\Title.png`, Data: []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3, 4}, Key: 0x33333333},
		{Name: `Audio\SE\empty.ogg`, Data: nil, Key: 0x44444444},
		{Name: `Game.ini`, Data: []byte("[Game]\nTitle=Test\n"), Key: 0x55555555},
	}
}

// buildArchives returns the sample tree in both layouts.
func buildArchives() map[string][]byte {
	files := sampleFiles()
	return map[string][]byte{
		"older": testutil.BuildOlder(files),
		"vxace": testutil.BuildVXAce(0x12345678, files),
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	wantVariant := map[string]Variant{"older": VariantOlder, "vxace": VariantVXAce}
	for name, data := range buildArchives() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a, err := Open(data)
			require.NoError(t, err)
			assert.Equal(t, wantVariant[name], a.Variant())
			assert.Equal(t, len(sampleFiles()), a.Len())

			var paths []string
			for e := range a.Entries() {
				paths = append(paths, e.Path)
			}
			assert.Equal(t, []string{
				"Data/Scripts.rvdata2",
				"Data/Map001.rvdata2",
				"Graphics/Titles/Title.png",
				"Audio/SE/empty.ogg",
				"Game.ini",
			}, paths, "entries keep archive order")

			for _, f := range sampleFiles() {
				e, ok := a.Entry(normalize(f.Name))
				require.True(t, ok, f.Name)
				assert.Equal(t, []byte(f.Name), e.Name)

				got, err := a.Decrypt(e)
				require.NoError(t, err)
				assert.Equal(t, len(f.Data), len(got))
				if len(f.Data) > 0 {
					assert.Equal(t, f.Data, got)
				}
			}
		})
	}
}

func normalize(name string) string {
	return string(bytes.ReplaceAll([]byte(name), []byte(`\`), []byte("/")))
}

func TestOpen_HeaderErrors(t *testing.T) {
	t.Parallel()

	t.Run("bad magic", func(t *testing.T) {
		t.Parallel()
		data := []byte("RGSSAB\x00\x01")
		_, err := Open(data)
		require.ErrorIs(t, err, ErrInvalidHeader)

		var he *HeaderError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, [6]byte{'R', 'G', 'S', 'S', 'A', 'B'}, he.Found)
	})

	t.Run("unknown engine", func(t *testing.T) {
		t.Parallel()
		_, err := Open(testutil.Header(2))
		require.ErrorIs(t, err, ErrInvalidEngine)

		var ee *EngineError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, byte(2), ee.Found)
	})

	t.Run("empty buffer", func(t *testing.T) {
		t.Parallel()
		_, err := Open(nil)
		require.ErrorIs(t, err, ErrInvalidHeader)
	})
}

func TestOpen_Corruption(t *testing.T) {
	t.Parallel()

	t.Run("truncated content", func(t *testing.T) {
		t.Parallel()
		data := testutil.BuildVXAce(7, sampleFiles())
		_, err := Open(data[:len(data)-1])
		require.ErrorIs(t, err, ErrCorruption)
	})

	t.Run("path traversal", func(t *testing.T) {
		t.Parallel()
		data := testutil.BuildOlder([]testutil.File{{Name: `..\..\evil.txt`, Data: []byte("x")}})
		_, err := Open(data)
		require.ErrorIs(t, err, ErrCorruption)
	})

	t.Run("absolute name", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{`\Windows\win.ini`, "/etc/passwd"} {
			data := testutil.BuildVXAce(3, []testutil.File{{Name: name, Data: []byte("x")}})
			_, err := Open(data)
			require.ErrorIs(t, err, ErrCorruption, name)
		}
	})

	t.Run("invalid utf-8 name", func(t *testing.T) {
		t.Parallel()
		data := testutil.BuildOlder([]testutil.File{{Name: "bad\xffname", Data: []byte("x")}})
		_, err := Open(data)
		require.ErrorIs(t, err, ErrCorruption)

		a, err := Open(data, WithLossyFilenames(true))
		require.NoError(t, err)
		_, ok := a.Entry("bad�name")
		assert.True(t, ok)
	})
}

func TestOpen_ShiftJISNames(t *testing.T) {
	t.Parallel()

	// "ソ" is 0x83 0x5C in Shift-JIS; the trailing byte is a backslash.
	name, err := japanese.ShiftJIS.NewEncoder().String(`Graphics\ソ.png`)
	require.NoError(t, err)
	data := testutil.BuildVXAce(99, []testutil.File{{Name: name, Data: []byte("png"), Key: 5}})

	a, err := Open(data, WithFilenameEncoding(japanese.ShiftJIS))
	require.NoError(t, err)

	got, err := a.ReadFile("Graphics/ソ.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
}

func TestOpen_EmptyArchives(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"older": testutil.BuildOlder(nil),
		"vxace": testutil.BuildVXAce(0, nil),
	} {
		a, err := Open(data)
		require.NoError(t, err, name)
		assert.Equal(t, 0, a.Len(), name)
	}
}

func TestOpen_Progress(t *testing.T) {
	t.Parallel()

	var events []ProgressEvent
	_, err := Open(buildArchives()["vxace"], WithProgress(func(e ProgressEvent) {
		events = append(events, e)
	}))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, StageDecodingTable, events[0].Stage)
	assert.Equal(t, len(sampleFiles()), events[0].FilesTotal)
}

func TestOpen_RepeatedPathLastWins(t *testing.T) {
	t.Parallel()

	data := testutil.BuildVXAce(3, []testutil.File{
		{Name: "a.txt", Data: []byte("first"), Key: 1},
		{Name: "b.txt", Data: []byte("b"), Key: 2},
		{Name: "a.txt", Data: []byte("second"), Key: 3},
	})
	a, err := Open(data)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Len())
	got, err := a.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}
