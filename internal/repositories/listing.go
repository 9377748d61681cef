package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"webdeck/internal/services"
)

// ListingRepository caches the last successful remote project listing.
//
// When the remote source is unreachable the projects tab falls back to this
// cache and shows a stale-listing banner instead of an empty pane.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new [ListingRepository] with the given database connection
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Replace swaps the cached listing wholesale for the given projects.
func (r *ListingRepository) Replace(listings []services.ProjectListing) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM project_listings"); err != nil {
		return fmt.Errorf("failed to clear listing cache: %w", err)
	}

	now := time.Now()
	for _, listing := range listings {
		files, err := json.Marshal(listing.Files)
		if err != nil {
			return fmt.Errorf("failed to marshal file names: %w", err)
		}
		_, err = tx.Exec("INSERT INTO project_listings (project_id, files, fetched_at) VALUES (?, ?, ?)",
			listing.ID, string(files), now)
		if err != nil {
			return fmt.Errorf("failed to cache listing %s: %w", listing.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the cached listing and when it was fetched. An empty cache
// returns no listings and a zero time.
func (r *ListingRepository) Load() ([]services.ProjectListing, time.Time, error) {
	rows, err := r.db.Query("SELECT project_id, files, fetched_at FROM project_listings ORDER BY project_id ASC")
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query listing cache: %w", err)
	}
	defer rows.Close()

	var listings []services.ProjectListing
	var fetchedAt time.Time

	for rows.Next() {
		var (
			id      string
			files   string
			fetched time.Time
		)
		if err := rows.Scan(&id, &files, &fetched); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan cached listing: %w", err)
		}

		var names []string
		if err := json.Unmarshal([]byte(files), &names); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to unmarshal file names: %w", err)
		}

		listings = append(listings, services.ProjectListing{ID: id, Files: names})
		fetchedAt = fetched
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("row iteration error: %w", err)
	}

	return listings, fetchedAt, nil
}
