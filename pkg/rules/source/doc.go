// Package source supplies rule catalogues to the engine and keeps them
// fresh.
//
// A Source loads a catalogue and can watch for changes. FileSource reads
// YAML catalogue files (a single file or every .yaml/.yml file in a
// directory) and watches them with fsnotify; MemorySource serves a fixed
// in-memory catalogue for tests and embedded use.
//
// Provider wraps a Source, holds the current validated catalogue behind a
// read lock, and reloads it atomically when the source reports a change.
// A reload that produces an invalid catalogue is rejected and logged; the
// previous catalogue stays in effect, so a bad edit can never empty the
// rule set mid-flight.
package source
