package rgssad

import "github.com/meigma/rgssad/internal/rgsstype"

// Sentinel errors re-exported from internal/rgsstype.
var (
	// ErrInvalidHeader is returned when the archive does not start with "RGSSAD".
	ErrInvalidHeader = rgsstype.ErrInvalidHeader

	// ErrInvalidEngine is returned when the header's engine byte is neither
	// 1 (XP/VX) nor 3 (VX Ace).
	ErrInvalidEngine = rgsstype.ErrInvalidEngine

	// ErrCorruption is returned when the entry table, a filename, or an
	// entry's content range is malformed.
	ErrCorruption = rgsstype.ErrCorruption
)

type (
	// HeaderError carries the bytes found in place of the magic.
	// It unwraps to ErrInvalidHeader.
	HeaderError = rgsstype.HeaderError

	// EngineError carries the unrecognized engine byte.
	// It unwraps to ErrInvalidEngine.
	EngineError = rgsstype.EngineError
)
