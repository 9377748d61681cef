package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"webdeck/internal/models"
	"webdeck/internal/repositories"
	"webdeck/internal/server"
	"webdeck/internal/services"
	"webdeck/internal/shared"
)

// fetchListings asks the remote source for the project listing and caches it.
// When the source is unreachable it falls back to the last cached listing and
// returns a note describing how stale the data is.
func (r *Runner) fetchListings(ctx context.Context) ([]services.ProjectListing, string, error) {
	listings, err := r.source.List(ctx)
	if err == nil {
		if db, dbErr := r.openDB(); dbErr == nil {
			defer db.Close()
			if cacheErr := repositories.NewListingRepository(db).Replace(listings); cacheErr != nil {
				r.logger.Warn("could not cache project listing", "error", cacheErr)
			}
		}
		return listings, "", nil
	}

	r.logger.Warn("source unreachable, trying cached listing", "error", err)

	db, dbErr := r.openDB()
	if dbErr != nil {
		return nil, "", err
	}
	defer db.Close()

	cached, fetchedAt, cacheErr := repositories.NewListingRepository(db).Load()
	if cacheErr != nil || len(cached) == 0 {
		return nil, "", err
	}
	return cached, fmt.Sprintf("source unreachable, listing cached %s", fetchedAt.Format(time.RFC822)), nil
}

// ProjectsList prints the project listing from the remote source.
func (r *Runner) ProjectsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	listings, cachedNote, err := r.fetchListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if useJSON {
		return r.writeJSON(listings, pretty)
	}

	if cachedNote != "" {
		r.writePlain("! %s\n\n", cachedNote)
	}
	r.writePlain("%s (%d projects)\n", r.source.Name(), len(listings))
	for _, listing := range listings {
		r.writePlain("  %s (%d files)\n", listing.ID, len(listing.Files))
	}
	return nil
}

// ProjectsPreview runs the full pipeline for one project and prints the
// transcript. With --serve the preview server stays up afterwards.
func (r *Runner) ProjectsPreview(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	open := cmd.Bool("open")
	serve := cmd.Bool("serve") || open

	if id == "" {
		return fmt.Errorf("%w: project id is required", shared.ErrMissingArgument)
	}

	listings, cachedNote, err := r.fetchListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if cachedNote != "" {
		r.writePlain("! %s\n", cachedNote)
	}

	project, err := findProject(listings, id)
	if err != nil {
		return err
	}

	final, runErr := r.engine.Run(ctx, project, nil)
	r.printTranscript(final)
	if runErr != nil {
		return fmt.Errorf("pipeline failed for %s: %w", id, runErr)
	}

	url := server.PreviewURL(r.previewAddr(), final.Preview)
	r.writePlainln("✓ %s is %s at %s", final.ID, final.Status, url)

	if !serve {
		return nil
	}
	return r.servePreviews(open, url)
}

// ProjectsServe renders every listed project and serves the previews.
func (r *Runner) ProjectsServe(ctx context.Context, cmd *cli.Command) error {
	listings, cachedNote, err := r.fetchListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if cachedNote != "" {
		r.writePlain("! %s\n", cachedNote)
	}

	rendered := 0
	for _, listing := range listings {
		project := models.Project{ID: listing.ID, Files: listing.Files, Status: models.StatusAvailable}
		final, runErr := r.engine.Run(ctx, project, nil)
		if runErr != nil {
			r.writePlain("✗ %s: %v\n", listing.ID, runErr)
			continue
		}
		rendered++
		r.writePlain("✓ %s → %s\n", listing.ID, server.PreviewURL(r.previewAddr(), final.Preview))
	}

	if rendered == 0 {
		return fmt.Errorf("%w: no previews rendered", shared.ErrRender)
	}
	return r.servePreviews(false, "")
}

func (r *Runner) servePreviews(open bool, url string) error {
	srv := server.NewPreviewServer(r.previewAddr(), r.store, r.logger)
	r.writePlain("serving previews at http://%s (ctrl+c to stop)\n", r.previewAddr())

	if open && url != "" {
		go func() {
			time.Sleep(200 * time.Millisecond)
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}()
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server failed: %w", err)
	}
	return nil
}

func (r *Runner) printTranscript(p models.Project) {
	for _, entry := range p.Log {
		switch entry.Kind {
		case models.LogError:
			r.writePlain("✗ %s\n", entry.Text)
		default:
			r.writePlain("• %s\n", entry.Text)
		}
	}
}

func findProject(listings []services.ProjectListing, id string) (models.Project, error) {
	for _, listing := range listings {
		if listing.ID == id {
			return models.Project{ID: listing.ID, Files: listing.Files, Status: models.StatusAvailable}, nil
		}
	}
	return models.Project{}, fmt.Errorf("%w: %s", shared.ErrProjectNotFound, id)
}
