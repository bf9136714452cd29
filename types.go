package rgssad

import "github.com/meigma/rgssad/internal/rgsstype"

// Re-export types from internal/rgsstype for public API.
type (
	// Entry describes one file stored in the archive.
	Entry = rgsstype.Entry

	// Variant identifies the archive layout.
	Variant = rgsstype.Variant

	// ProgressEvent represents a progress update during decoding, extraction,
	// hashing or export.
	ProgressEvent = rgsstype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = rgsstype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = rgsstype.ProgressFunc
)

// Re-export variant constants.
const (
	VariantOlder = rgsstype.VariantOlder
	VariantVXAce = rgsstype.VariantVXAce
)

// Re-export progress stage constants.
const (
	StageDecodingTable = rgsstype.StageDecodingTable
	StageExtracting    = rgsstype.StageExtracting
	StageHashing       = rgsstype.StageHashing
	StageExporting     = rgsstype.StageExporting
)
