package rgsstype

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations.
var (
	// ErrInvalidHeader is returned when the archive does not start with the RGSSAD magic.
	ErrInvalidHeader = errors.New("rgssad: invalid archive header")

	// ErrInvalidEngine is returned when the header's engine byte is not a known variant.
	ErrInvalidEngine = errors.New("rgssad: invalid engine byte")

	// ErrCorruption is returned when the entry table or an entry's content
	// range does not fit the archive.
	ErrCorruption = errors.New("rgssad: corrupt archive")
)

// HeaderError reports the bytes found where the magic was expected.
type HeaderError struct {
	Found [6]byte
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: found %q (% x), expected \"RGSSAD\"", ErrInvalidHeader, e.Found[:], e.Found[:])
}

func (e *HeaderError) Unwrap() error {
	return ErrInvalidHeader
}

// EngineError reports an unrecognized engine byte.
type EngineError struct {
	Found byte
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: found %d, expected 1 for XP/VX or 3 for VX Ace", ErrInvalidEngine, e.Found)
}

func (e *EngineError) Unwrap() error {
	return ErrInvalidEngine
}
