// Package ui implements the interactive dashboard using bubbletea's Elm architecture.
//
// The dashboard has two tabs:
//  1. [LoggerTab] : Write free-text session notes and browse recent history
//  2. [ProjectsTab] : Browse remote projects, run the preview pipeline, watch the transcript
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Pipeline snapshots flow through a channel from the Engine, providing
// non-blocking status reporting while runs for distinct projects proceed
// concurrently. Each snapshot replaces the whole Project record, so the UI
// never observes a half-updated project.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
