// Package models defines domain entities and persistence interfaces for the webdeck dashboard.
//
// The package contains two categories of types:
//
// 1. In-memory records owned by the UI and pipeline:
//   - [Project] : A remotely hosted zipped web project with run status and log transcript
//   - [VirtualFile] : A single decoded archive entry
//   - [DecodedArchive] : The path → VirtualFile mapping produced by one pipeline run
//   - [LogEntry] : A tagged (info/error) line in a project's run transcript
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Note] : Free-text session notes written from the logger tab
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
