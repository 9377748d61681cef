// Package archive decodes zip containers into in-memory file mappings and
// validates their structure.
//
// Decoding fans one goroutine out per entry and joins them all before
// returning: entries are independent, but a single entry failure fails the
// whole decode and no partial mapping is ever exposed. Validation only looks
// at path suffixes, never file contents, via a configurable [Policy].
package archive
