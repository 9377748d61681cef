// Package repositories provides persistence layer implementations for the dashboard.
//
// NoteRepository implements models.Repository[*models.Note] with soft deletes
// and sequence generation, plus the upsert-by-session and recent-history
// queries the logger tab depends on. SessionRepository keeps the durable
// session id, and ListingRepository caches the last successful remote project
// listing for offline display.
package repositories
