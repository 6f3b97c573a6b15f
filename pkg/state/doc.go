// Package state defines the persistence-facing contract used by go-prefs to
// read and write a single settings document.
//
// Responsibilities:
//   - Target only checks for, reads, and replaces one document at one location.
//   - The root prefs package owns encoding, decoding, and the recovery policy;
//     a Target never interprets the bytes it stores.
//
// Data flow:
//
//	prefs.Load  -> Target.Exists -> Target.Read  -> document.Decode
//	prefs.Save  -> document.Encode -> Target.Write
//
// Implementations:
//
//	FileTarget writes through an afero.Fs, so the same code path serves the
//	operating system file system and afero.NewMemMapFs in tests. Writes go to a
//	temporary sibling file that is synced, closed and renamed over the target,
//	which means a failed save leaves the previous document in place.
//
//	MemoryTarget keeps the document in memory and supports fault injection for
//	tests and examples.
//
// A Target does not lock. Two processes saving to the same location race and
// the last writer wins.
package state
