package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"webdeck/internal/models"
	"webdeck/internal/shared"
)

// NoteRepository implements [models.Repository] for [models.Note] persistence.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new [NoteRepository] with the given database connection
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a new note into the database with generated ID and sequence
func (r *NoteRepository) Create(note *models.Note) error {
	sequence, err := NextSequence(r.db, "notes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	note.SetID(id)
	note.SetSequence(sequence)

	if err := note.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO notes (id, sequence, session_id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, note.SessionID(), note.Body(), note.CreatedAt(), note.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// Get retrieves a note by ID, excluding soft-deleted notes
func (r *NoteRepository) Get(id string) (*models.Note, error) {
	query := `
		SELECT id, sequence, session_id, body, created_at, updated_at, deleted_at
		FROM notes
		WHERE id = ? AND deleted_at IS NULL
	`

	note, err := scanNote(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}

	return note, nil
}

// Update modifies an existing note in the database
func (r *NoteRepository) Update(note *models.Note) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	note.SetUpdatedAt(now)

	query := `
		UPDATE notes
		SET body = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, note.Body(), now, note.ID())
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("note not found or already deleted: %s", note.ID())
	}

	return nil
}

// Delete soft-deletes a note by ID
func (r *NoteRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE notes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("note not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all notes matching the given criteria, excluding soft-deleted notes
func (r *NoteRepository) List(criteria map[string]any) ([]*models.Note, error) {
	query := `
		SELECT id, sequence, session_id, body, created_at, updated_at, deleted_at
		FROM notes
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if sessionID, ok := criteria["session_id"].(string); ok && sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// UpsertBySession updates the session's existing note or inserts a new one.
//
// The logger tab saves the whole note body on every write; a session owns at
// most one live row.
func (r *NoteRepository) UpsertBySession(note *models.Note) error {
	existing, err := r.getBySession(note.SessionID())
	if err != nil {
		return err
	}

	if existing != nil {
		existing.SetBody(note.Body())
		if err := r.Update(existing); err != nil {
			return err
		}
		note.SetID(existing.ID())
		note.SetSequence(existing.Sequence())
		note.SetCreatedAt(existing.CreatedAt())
		note.SetUpdatedAt(existing.UpdatedAt())
		return nil
	}

	return r.Create(note)
}

// Recent retrieves the n most recent notes ordered by creation time descending.
func (r *NoteRepository) Recent(n int) ([]*models.Note, error) {
	if n <= 0 {
		n = 10
	}

	query := `
		SELECT id, sequence, session_id, body, created_at, updated_at, deleted_at
		FROM notes
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent notes: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// getBySession returns the live note for a session, or nil when absent.
func (r *NoteRepository) getBySession(sessionID string) (*models.Note, error) {
	query := `
		SELECT id, sequence, session_id, body, created_at, updated_at, deleted_at
		FROM notes
		WHERE session_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	note, err := scanNote(r.db.QueryRow(query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session note: %w", err)
	}

	return note, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote reads one notes row into a Note entity.
func scanNote(row rowScanner) (*models.Note, error) {
	var (
		id        string
		sequence  int
		sessionID string
		body      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &sessionID, &body, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	note := models.NewNote(sequence, sessionID, body)
	note.SetID(id)
	note.SetCreatedAt(createdAt)
	note.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		note.SetDeletedAt(&deletedAt.Time)
	}

	return note, nil
}

// collectNotes drains a result set into Note entities.
func collectNotes(rows *sql.Rows) ([]*models.Note, error) {
	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return notes, nil
}
