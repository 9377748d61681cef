package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"webdeck/internal/archive"
	"webdeck/internal/pipeline"
	"webdeck/internal/repositories"
	"webdeck/internal/server"
	"webdeck/internal/shared"
	"webdeck/internal/ui"
)

// Dash launches the interactive dashboard with the preview server running
// alongside it.
func (r *Runner) Dash(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sessionID, err := repositories.NewSessionRepository(db).LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	// Redirect logs to file to avoid interfering with dashboard rendering
	fileLogger, err := shared.NewFileLogger("./tmp/webdeck-dash.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	policy := archive.Policy{RequireManifest: r.config.Validation.RequireManifest}
	engine := pipeline.NewEngine(r.source, policy, r.store, fileLogger)

	srv := server.NewPreviewServer(r.previewAddr(), r.store, fileLogger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fileLogger.Error("preview server stopped", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	model := ui.NewModel(ctx, ui.Deps{
		Source:      r.source,
		Engine:      engine,
		Notes:       repositories.NewNoteRepository(db),
		Listings:    repositories.NewListingRepository(db),
		SessionID:   sessionID,
		PreviewAddr: r.previewAddr(),
		Logger:      fileLogger,
	})

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}
