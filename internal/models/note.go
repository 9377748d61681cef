package models

import (
	"fmt"
	"strings"
	"time"
)

// Note is a free-text entry written from the logger tab, scoped to a session id.
//
// Notes are upserted by session: saving again within the same session updates
// the existing row instead of inserting a new one.
type Note struct {
	id        string
	sequence  int
	sessionID string
	body      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewNote creates a Note for the given session with creation timestamps set to now.
func NewNote(sequence int, sessionID, body string) *Note {
	now := time.Now()
	return &Note{
		sequence:  sequence,
		sessionID: sessionID,
		body:      body,
		createdAt: now,
		updatedAt: now,
	}
}

func (n *Note) ID() string { return n.id }

func (n *Note) Sequence() int { return n.sequence }

func (n *Note) SessionID() string { return n.sessionID }

func (n *Note) Body() string { return n.body }

func (n *Note) CreatedAt() time.Time { return n.createdAt }

func (n *Note) UpdatedAt() time.Time { return n.updatedAt }

func (n *Note) DeletedAt() *time.Time { return n.deletedAt }

func (n *Note) SetID(id string) { n.id = id }

func (n *Note) SetSequence(seq int) { n.sequence = seq }

func (n *Note) SetBody(body string) { n.body = body }

func (n *Note) SetCreatedAt(t time.Time) { n.createdAt = t }

func (n *Note) SetUpdatedAt(t time.Time) { n.updatedAt = t }

func (n *Note) SetDeletedAt(t *time.Time) { n.deletedAt = t }

// Validate checks that the note has a session and a non-blank body.
func (n *Note) Validate() error {
	if n.sessionID == "" {
		return fmt.Errorf("note requires a session id")
	}
	if strings.TrimSpace(n.body) == "" {
		return fmt.Errorf("note body cannot be blank")
	}
	return nil
}
