package pathutil

import (
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/meigma/rgssad/internal/rgsstype"
)

// NameDecoder turns stored filenames into slash-separated relative paths.
//
// By default names must be valid UTF-8. A legacy encoding (for example
// japanese.ShiftJIS for old XP archives) decodes names first; lossy mode
// replaces invalid sequences instead of failing.
type NameDecoder struct {
	enc   encoding.Encoding
	lossy bool
}

// NewNameDecoder returns a decoder. enc may be nil.
func NewNameDecoder(enc encoding.Encoding, lossy bool) *NameDecoder {
	return &NameDecoder{enc: enc, lossy: lossy}
}

// Path decodes name and returns it as a path accepted by fs.ValidPath.
// Names that are not valid text, that are absolute, or that escape the
// archive root return rgsstype.ErrCorruption.
func (d *NameDecoder) Path(name []byte) (string, error) {
	text, err := d.text(name)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(text, `\`) || strings.HasPrefix(text, "/") {
		return "", fmt.Errorf("%w: absolute filename %q", rgsstype.ErrCorruption, text)
	}
	p := Normalize(text)
	if p == "." || !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: unsafe filename %q", rgsstype.ErrCorruption, text)
	}
	return p, nil
}

func (d *NameDecoder) text(name []byte) (string, error) {
	if d.enc != nil {
		decoded, err := d.enc.NewDecoder().Bytes(name)
		if err != nil {
			return "", fmt.Errorf("%w: filename % x: %v", rgsstype.ErrCorruption, name, err)
		}
		return string(decoded), nil
	}
	if utf8.Valid(name) {
		return string(name), nil
	}
	if d.lossy {
		return strings.ToValidUTF8(string(name), string(utf8.RuneError)), nil
	}
	return "", fmt.Errorf("%w: filename % x is not valid UTF-8", rgsstype.ErrCorruption, name)
}

// Normalize converts an archive filename to fs.ValidPath form.
//
// It performs the following transformations:
//   - Converts backslashes to slashes: "Data\Map001.rvdata2" → "Data/Map001.rvdata2"
//   - Strips leading and trailing slashes
//   - Collapses consecutive slashes
//   - Converts an empty result to "."
//
// "." and ".." elements are preserved so that fs.ValidPath rejects them.
func Normalize(name string) string {
	p := strings.Trim(strings.ReplaceAll(name, `\`, "/"), "/")
	if p == "" {
		return "."
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}
