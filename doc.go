// Package rgssad decodes RPG Maker RGSS encrypted archives (.rgssad,
// .rgss2a, .rgss3a) and recovers the files they contain.
//
// Two layouts share the "RGSSAD" header: the XP/VX layout, whose entry table
// is interleaved with content and encrypted with an evolving key, and the
// VX Ace layout, whose table precedes the content and uses one fixed key.
// Every entry's content is XORed with a keystream seeded by a per-entry key.
//
// # Quick Start
//
// Extract an archive into a directory:
//
//	data, err := os.ReadFile("Game.rgss3a")
//	if err != nil {
//	    return err
//	}
//	outcome, err := rgssad.Extract(data, "./Game")
//	if err != nil {
//	    return err
//	}
//	if outcome == rgssad.OutcomeFilesExist {
//	    // nothing was written; retry with rgssad.ExtractWithOverwrite(true)
//	}
//
// Read files without touching disk:
//
//	archive, err := rgssad.Open(data)
//	if err != nil {
//	    return err
//	}
//	scripts, err := archive.ReadFile("Data/Scripts.rvdata2")
//
// [Archive] implements fs.FS, so it also works with fs.WalkDir, fs.Glob and
// http.FS.
//
// # Filenames
//
// Stored names use backslash separators and are converted to slash-separated
// paths. Names must be valid UTF-8 unless [WithFilenameEncoding] selects a
// legacy encoding such as japanese.ShiftJIS or [WithLossyFilenames] is set.
// Names that would escape the destination are rejected with [ErrCorruption].
package rgssad
