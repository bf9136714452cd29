package rgssad

import (
	"fmt"
	"io"
	"testing"

	"github.com/meigma/rgssad/internal/testutil"
)

var benchSinkBytes int

type benchCase struct {
	name      string
	fileCount int
	fileSize  int
}

var benchCases = []benchCase{
	{name: "files=64/size=64k", fileCount: 64, fileSize: 64 << 10},
	{name: "files=1024/size=4k", fileCount: 1024, fileSize: 4 << 10},
}

func benchFiles(c benchCase) []testutil.File {
	files := make([]testutil.File, c.fileCount)
	for i := range files {
		data := make([]byte, c.fileSize)
		for j := range data {
			data[j] = byte(i + j)
		}
		files[i] = testutil.File{
			Name: fmt.Sprintf(`Graphics\Dir%02d\file%04d.png`, i%16, i),
			Data: data,
			Key:  uint32(i)*2654435761 + 1, //nolint:gosec // test keys
		}
	}
	return files
}

func BenchmarkOpen(b *testing.B) {
	for _, c := range benchCases {
		older := testutil.BuildOlder(benchFiles(c))
		vxace := testutil.BuildVXAce(0x5EED, benchFiles(c))
		for name, data := range map[string][]byte{"older": older, "vxace": vxace} {
			b.Run(c.name+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					if _, err := Open(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkReadFile(b *testing.B) {
	for _, c := range benchCases {
		a, err := Open(testutil.BuildVXAce(0x5EED, benchFiles(c)))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(c.name, func(b *testing.B) {
			b.SetBytes(int64(c.fileSize))
			b.ReportAllocs()
			for b.Loop() {
				data, err := a.ReadFile("Graphics/Dir00/file0000.png")
				if err != nil {
					b.Fatal(err)
				}
				benchSinkBytes += len(data)
			}
		})
	}
}

func BenchmarkExtract(b *testing.B) {
	for _, c := range benchCases {
		a, err := Open(testutil.BuildVXAce(0x5EED, benchFiles(c)))
		if err != nil {
			b.Fatal(err)
		}
		for _, workers := range []int{-1, 0} {
			b.Run(fmt.Sprintf("%s/workers=%d", c.name, workers), func(b *testing.B) {
				b.SetBytes(int64(c.fileCount * c.fileSize))
				for b.Loop() {
					if _, err := a.Extract(b.TempDir(), ExtractWithWorkers(workers)); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkExportTar(b *testing.B) {
	c := benchCases[0]
	a, err := Open(testutil.BuildVXAce(0x5EED, benchFiles(c)))
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(c.fileCount * c.fileSize))
	for b.Loop() {
		if err := a.ExportTar(io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
