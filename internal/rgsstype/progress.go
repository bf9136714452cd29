package rgsstype

// ProgressEvent represents a progress update during decoding or extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// BytesDone is the number of content bytes completed so far.
	BytesDone uint64

	// BytesTotal is the total content bytes for the operation.
	BytesTotal uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages.
const (
	// StageDecodingTable indicates the entry table has been decoded.
	StageDecodingTable ProgressStage = iota

	// StageExtracting indicates files are being decrypted to disk.
	StageExtracting

	// StageHashing indicates files are being decrypted and digested.
	StageHashing

	// StageExporting indicates files are being written to an export stream.
	StageExporting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageDecodingTable:
		return "decoding table"
	case StageExtracting:
		return "extracting"
	case StageHashing:
		return "hashing"
	case StageExporting:
		return "exporting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
