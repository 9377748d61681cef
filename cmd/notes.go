package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"webdeck/internal/formatter"
	"webdeck/internal/models"
	"webdeck/internal/repositories"
	"webdeck/internal/shared"
)

// NotesAdd saves a note for the current session. A session keeps a single
// note, so adding again replaces the previous body.
func (r *Runner) NotesAdd(ctx context.Context, cmd *cli.Command) error {
	body := cmd.StringArg("body")
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: note body is required", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionID, err := repositories.NewSessionRepository(db).LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	note := models.NewNote(0, sessionID, body)
	if err := repositories.NewNoteRepository(db).UpsertBySession(note); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}

	r.logger.Info("note saved", "session", sessionID, "id", note.ID())
	r.writePlain("✓ note saved for session %s\n", sessionID)
	return nil
}

// NotesList shows recent notes, newest first.
func (r *Runner) NotesList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := repositories.NewNoteRepository(db).Recent(int(limit))
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		r.writePlain("no notes yet\n")
		return nil
	}

	for _, note := range notes {
		r.writePlain("%s  [%s]\n", note.CreatedAt().Format("2006-01-02 15:04"), note.SessionID())
		r.writePlain("  %s\n", note.Body())
	}
	return nil
}

// NotesExport writes recent notes in the requested format to a file or stdout.
func (r *Runner) NotesExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputPath := cmd.String("output")
	limit := cmd.Int("limit")

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := repositories.NewNoteRepository(db).Recent(int(limit))
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	data, err := formatter.Export(notes, format)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	if outputPath == "" {
		return r.writePlain("%s", string(data))
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	r.writePlain("✓ exported %d notes to %s\n", len(notes), outputPath)
	return nil
}

// NotesSession shows the durable session id, optionally rotating it first.
func (r *Runner) NotesSession(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := repositories.NewSessionRepository(db)

	var sessionID string
	if cmd.Bool("reset") {
		if sessionID, err = sessions.Reset(); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		r.logger.Info("session rotated", "session", sessionID)
	} else if sessionID, err = sessions.LoadOrCreate(); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	r.writePlain("%s\n", sessionID)
	return nil
}
