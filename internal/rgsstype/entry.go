// Package rgsstype holds the types shared by the archive decoding packages.
package rgsstype

// Variant identifies the archive layout selected by the header's engine byte.
type Variant uint8

// Archive layouts.
const (
	// VariantOlder is the RGSSAD/RGSS2A layout used by XP and VX (engine byte 1).
	VariantOlder Variant = 1

	// VariantVXAce is the RGSS3A layout used by VX Ace (engine byte 3).
	VariantVXAce Variant = 3
)

// String returns the engine family the variant belongs to.
func (v Variant) String() string {
	switch v {
	case VariantOlder:
		return "XP/VX"
	case VariantVXAce:
		return "VXAce"
	default:
		return "unknown"
	}
}

// Entry describes one file stored in the archive.
type Entry struct {
	// Index is the entry's position in the archive's entry table.
	Index int

	// Name is the decrypted filename exactly as stored in the table.
	Name []byte

	// Path is the slash-separated path resolved from Name.
	// Empty until the archive resolves filenames.
	Path string

	// Size is the number of content bytes. A negative value marks a corrupt table.
	Size int32

	// Offset is the absolute offset of the content within the archive.
	Offset int64

	// Key seeds the keystream that decrypts the content.
	Key uint32
}

// End returns the offset one past the last content byte.
func (e *Entry) End() int64 {
	return e.Offset + int64(e.Size)
}
