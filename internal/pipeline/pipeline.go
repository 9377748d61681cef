package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"webdeck/internal/archive"
	"webdeck/internal/models"
	"webdeck/internal/preview"
	"webdeck/internal/services"
	"webdeck/internal/shared"
)

// Engine orchestrates pipeline runs. Safe for concurrent runs of distinct
// projects: each run works on its own clone of the Project record and only
// ever publishes whole-record snapshots.
type Engine struct {
	source services.ProjectSource
	policy archive.Policy
	store  *preview.Store
	logger *log.Logger
}

// NewEngine creates an Engine with the provided collaborators.
func NewEngine(source services.ProjectSource, policy archive.Policy, store *preview.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		source: source,
		policy: policy,
		store:  store,
		logger: logger,
	}
}

// Store exposes the preview store backing this engine.
func (e *Engine) Store() *preview.Store {
	return e.store
}

// Run executes one end-to-end pipeline run for project and returns the final
// snapshot. The returned error mirrors the transcript's error line; the
// snapshot's status is authoritative either way.
//
// Snapshots go out on updates after every transition. Sends never block: a
// full or nil channel just drops the intermediate snapshot. The caller owns
// the live Project record and replaces it with each snapshot it receives.
func (e *Engine) Run(ctx context.Context, project models.Project, updates chan<- models.Project) (models.Project, error) {
	if e.source == nil {
		return project, fmt.Errorf("%w: project source not initialized", shared.ErrServiceUnavailable)
	}

	p := project.Clone()

	// Downloading/extracting/validating means a run is in flight. The UI
	// already refuses to start a second run; this keeps direct callers honest.
	if !p.Status.CanTransition(models.StatusDownloading) {
		return project, fmt.Errorf("%w: project %s is %s", shared.ErrRunInFlight, p.ID, p.Status)
	}

	// A new run resets the transcript and releases the previous preview.
	if p.Preview != "" {
		e.store.Release(p.Preview)
		p.Preview = ""
	}
	p.Log = nil
	p.Archive = nil

	fileName := p.ArchiveFile()
	if fileName == "" {
		return e.fail(p, updates, fmt.Errorf("%w: project %s declares no archive files", shared.ErrInvalidInput, p.ID))
	}

	p = e.advance(p, models.StatusDownloading, infoLine("downloading %s", fileName), updates)
	blob, err := e.source.Download(ctx, p.ID, fileName)
	if err != nil {
		return e.fail(p, updates, err)
	}

	p = e.advance(p, models.StatusExtracting, infoLine("received, extracting"), updates)
	decoded, err := archive.Decode(ctx, blob)
	if err != nil {
		return e.fail(p, updates, err)
	}

	p = e.advance(p, models.StatusValidating, infoLine("extracted %d entries", decoded.Len()), updates)
	if err := e.policy.Validate(decoded); err != nil {
		return e.fail(p, updates, fmt.Errorf("invalid structure: %w", err))
	}

	handle, err := e.store.Render(p.ID, decoded)
	if err != nil {
		return e.fail(p, updates, err)
	}

	p.Preview = handle
	p.Archive = decoded
	p = e.advance(p, models.StatusRunning, infoLine("rendering"), updates)

	e.logger.Info("pipeline run complete", "project", p.ID, "entries", decoded.Len())
	return p, nil
}

// advance moves the snapshot to the next status, appends a transcript line,
// and publishes the new snapshot.
func (e *Engine) advance(p models.Project, to models.Status, line models.LogEntry, updates chan<- models.Project) models.Project {
	p.Status = to
	p.Log = append(p.Log, line)
	e.send(p, updates)
	return p
}

// fail converts any step error into the terminal error snapshot: one
// error-kind transcript line, status error, preview detached.
func (e *Engine) fail(p models.Project, updates chan<- models.Project, err error) (models.Project, error) {
	p.Status = models.StatusError
	p.Preview = ""
	p.Archive = nil
	p.Log = append(p.Log, errorLine(err))
	e.send(p, updates)

	e.logger.Error("pipeline run failed", "project", p.ID, "err", err)
	return p, err
}

// send publishes a snapshot without blocking. A slow consumer misses
// intermediate snapshots but always gets the final one from Run's return.
func (e *Engine) send(p models.Project, updates chan<- models.Project) {
	if updates == nil {
		return
	}
	select {
	case updates <- p.Clone():
	default:
	}
}
