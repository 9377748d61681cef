// package pipeline drives the archive-to-preview sequence for a single project.
//
// The core abstraction is Engine, which runs download → decode → validate →
// render for one project and publishes whole-record Project snapshots on a
// channel for non-blocking status reporting to CLI/UI layers. Every failure
// is caught at this boundary, logged as a single error-kind transcript line,
// and reflected as a terminal error status; nothing propagates up to crash
// the caller.
package pipeline
