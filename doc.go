// Package reportprep prepares the inputs of a client brokerage report.
//
// A run takes the security identifiers (ISINs) found in the client's broker
// report, validates and deduplicates them, and classifies each one against
// three reference catalogs:
//   - Equities and ETFs, checked first.
//   - Bonds.
//   - Structured products, whose term-sheets are copied next to the records.
//
// Identifiers found in no catalog are reported separately.
//
// The package also owns the lifecycle of the files it generates in the work
// folder. Before anything is written, every previous artifact (same client
// and period, same client with another period, or another client) is moved
// to the backup folder under a timestamped name. Nothing is ever deleted by
// a run, so the work folder always holds exactly one current set of files.
//
// All locations are injected through WorkspacePaths, usually built from a
// Config file, so the whole package can be pointed at temporary folders.
package reportprep
