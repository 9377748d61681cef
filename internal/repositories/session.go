package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"webdeck/internal/shared"
)

const sessionKey = "session_id"

// SessionRepository persists the dashboard's session id in the kv table.
//
// The id is loaded exactly once at startup and passed explicitly to whatever
// needs it; nothing reads it ad hoc afterwards.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// LoadOrCreate returns the stored session id, generating and persisting a new
// one when none exists yet.
func (r *SessionRepository) LoadOrCreate() (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv WHERE key = ?", sessionKey).Scan(&value)
	if err == nil {
		return value, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to load session id: %w", err)
	}

	value = shared.GenerateID()
	_, err = r.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)", sessionKey, value, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}

	return value, nil
}

// Reset replaces the stored session id with a fresh one and returns it.
func (r *SessionRepository) Reset() (string, error) {
	value := shared.GenerateID()

	result, err := r.db.Exec("UPDATE kv SET value = ?, updated_at = ? WHERE key = ?", value, time.Now(), sessionKey)
	if err != nil {
		return "", fmt.Errorf("failed to reset session id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)", sessionKey, value, time.Now()); err != nil {
			return "", fmt.Errorf("failed to persist session id: %w", err)
		}
	}

	return value, nil
}
