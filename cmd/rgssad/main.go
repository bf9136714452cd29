// Command rgssad extracts, lists, and exports RPG Maker RGSS archives.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/meigma/rgssad"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rgssad:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rgssad",
		Usage: "decrypt RPG Maker XP/VX/VX Ace archives",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output to stderr",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "filename encoding: utf-8, shift-jis, euc-kr, gbk, big5",
				Value: "utf-8",
			},
			&cli.BoolFlag{
				Name:  "lossy",
				Usage: "replace undecodable filename bytes instead of failing",
			},
		},
		Commands: []*cli.Command{
			&cmdExtract,
			&cmdList,
			&cmdExport,
		},
	}
}

var cmdExtract = cli.Command{
	Name:      "extract",
	Usage:     "Extract every file of an archive",
	ArgsUsage: "ARCHIVE",
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "destination directory (default: the archive's directory)",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "overwrite existing files",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "decryption workers (0 = automatic, -1 = serial)",
		},
	},
	Action: extractArchive,
}

var cmdList = cli.Command{
	Name:      "list",
	Usage:     "List the files of an archive",
	ArgsUsage: "ARCHIVE",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "digest",
			Usage: "decrypt every file and print its sha256 digest",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the listing as JSON",
		},
	},
	Action: listArchive,
}

var cmdExport = cli.Command{
	Name:      "export",
	Usage:     "Write the decrypted files as a .tar.zst stream",
	ArgsUsage: "ARCHIVE",
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:     "out",
			Aliases:  []string{"o"},
			Usage:    "output file, or - for stdout",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "level",
			Usage: "zstd level: fastest, default, better, best",
			Value: "default",
		},
	},
	Action: exportArchive,
}

func extractArchive(c *cli.Context) error {
	path, a, err := openArchive(c)
	if err != nil {
		return err
	}
	dest := c.Path("out")
	if dest == "" {
		dest = filepath.Dir(path)
	}

	var stats rgssad.ExtractStats
	outcome, err := a.Extract(dest,
		rgssad.ExtractWithOverwrite(c.Bool("force")),
		rgssad.ExtractWithWorkers(c.Int("workers")),
		rgssad.ExtractWithStats(&stats),
	)
	if err != nil {
		return err
	}
	if outcome == rgssad.OutcomeFilesExist {
		return cli.Exit(fmt.Sprintf("%s: files already exist in %s (use --force to overwrite)", path, dest), 2)
	}
	fmt.Fprintf(c.App.Writer, "extracted %d files (%s) to %s\n", stats.Files, a.Variant(), dest)
	return nil
}

type listing struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Digest string `json:"digest,omitempty"`
}

func listArchive(c *cli.Context) error {
	_, a, err := openArchive(c)
	if err != nil {
		return err
	}

	var rows []listing
	if c.Bool("digest") {
		manifest, err := a.Manifest()
		if err != nil {
			return err
		}
		for _, m := range manifest {
			rows = append(rows, listing{Path: m.Path, Size: m.Size, Digest: m.Digest.String()})
		}
	} else {
		for e := range a.Entries() {
			rows = append(rows, listing{Path: e.Path, Size: int64(e.Size)})
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	for _, r := range rows {
		if r.Digest != "" {
			fmt.Fprintf(c.App.Writer, "%10d  %s  %s\n", r.Size, r.Digest, r.Path)
		} else {
			fmt.Fprintf(c.App.Writer, "%10d  %s\n", r.Size, r.Path)
		}
	}
	return nil
}

func exportArchive(c *cli.Context) (err error) {
	_, a, err := openArchive(c)
	if err != nil {
		return err
	}
	level, err := parseLevel(c.String("level"))
	if err != nil {
		return err
	}

	out := c.Path("out")
	if out == "-" {
		return a.ExportTar(c.App.Writer, rgssad.ExportWithLevel(level))
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return a.ExportTar(f, rgssad.ExportWithLevel(level))
}

// openArchive reads and decodes the archive named by the first argument.
func openArchive(c *cli.Context) (string, *rgssad.Archive, error) {
	path := c.Args().First()
	if path == "" {
		return "", nil, errors.New("missing ARCHIVE argument")
	}
	enc, err := parseEncoding(c.String("encoding"))
	if err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	opts := []rgssad.Option{
		rgssad.WithLogger(newLogger(c)),
		rgssad.WithLossyFilenames(c.Bool("lossy")),
	}
	if enc != nil {
		opts = append(opts, rgssad.WithFilenameEncoding(enc))
	}
	a, err := rgssad.Open(data, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return path, a, nil
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

func parseEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "shift-jis", "shiftjis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	case "euc-kr", "cp949":
		return korean.EUCKR, nil
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "big5", "cp950":
		return traditionalchinese.Big5, nil
	default:
		return nil, fmt.Errorf("unknown filename encoding %q", name)
	}
}

func parseLevel(name string) (zstd.EncoderLevel, error) {
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return 0, fmt.Errorf("unknown zstd level %q", name)
	}
	return level, nil
}
