package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"webdeck/internal/archive"
	"webdeck/internal/models"
	"webdeck/internal/preview"
	"webdeck/internal/services"
	"webdeck/internal/shared"
)

type mockSource struct {
	name          string
	listings      []services.ProjectListing
	archives      map[string][]byte // keyed "projectID/fileName"
	listErr       error
	downloadErr   error
	downloadCalls int
}

func (m *mockSource) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockSource) List(ctx context.Context) ([]services.ProjectListing, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listings, nil
}

func (m *mockSource) Download(ctx context.Context, projectID, fileName string) ([]byte, error) {
	m.downloadCalls++
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	blob, ok := m.archives[projectID+"/"+fileName]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrProjectNotFound, projectID, fileName)
	}
	return blob, nil
}

func zipOf(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func newTestEngine(source *mockSource, policy archive.Policy) *Engine {
	return NewEngine(source, policy, preview.NewStore(), shared.NewLogger(nil))
}

func hasErrorLine(p models.Project) bool {
	for _, line := range p.Log {
		if line.Kind == models.LogError {
			return true
		}
	}
	return false
}

func TestEngineRun(t *testing.T) {
	t.Run("Well-Formed Archive Reaches Running", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{
				"index.html":   "<h1>hi</h1>",
				"package.json": "{}",
			}),
		}}
		engine := newTestEngine(source, archive.Policy{})

		project := models.Project{ID: "demo", Files: []string{"demo.zip"}}
		final, err := engine.Run(context.Background(), project, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if final.Status != models.StatusRunning {
			t.Errorf("expected running, got %s", final.Status)
		}
		if final.Preview == "" {
			t.Error("expected a preview handle")
		}
		if hasErrorLine(final) {
			t.Error("successful run should have no error lines")
		}

		doc, ok := engine.Store().Resolve(final.Preview)
		if !ok {
			t.Fatal("preview handle should resolve")
		}
		if doc.Content != "<h1>hi</h1>" {
			t.Errorf("preview content = %q, want <h1>hi</h1>", doc.Content)
		}
	})

	t.Run("Missing Entry Point Reaches Error", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{"readme.md": "hello"}),
		}}
		engine := newTestEngine(source, archive.Policy{})

		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, nil)
		if !errors.Is(err, shared.ErrMissingEntryPoint) {
			t.Errorf("expected ErrMissingEntryPoint, got %v", err)
		}

		if final.Status != models.StatusError {
			t.Errorf("expected error status, got %s", final.Status)
		}
		if final.Preview != "" {
			t.Error("no preview handle should be attached on error")
		}
		if !hasErrorLine(final) {
			t.Error("transcript should carry an error line")
		}
	})

	t.Run("Malformed Blob Fails At Decode", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": []byte("not a zip at all"),
		}}
		engine := newTestEngine(source, archive.Policy{})

		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, nil)
		if !errors.Is(err, shared.ErrArchiveDecode) {
			t.Errorf("expected ErrArchiveDecode, got %v", err)
		}
		if final.Status != models.StatusError {
			t.Errorf("expected error status, got %s", final.Status)
		}

		// Validation never ran: the last info line is the extraction start.
		last := final.Log[len(final.Log)-2]
		if last.Text != "received, extracting" {
			t.Errorf("unexpected transcript before failure: %q", last.Text)
		}
	})

	t.Run("Download Failure Reaches Error", func(t *testing.T) {
		source := &mockSource{downloadErr: fmt.Errorf("%w: connection refused", shared.ErrNetwork)}
		engine := newTestEngine(source, archive.Policy{})

		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, nil)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
		if final.Status != models.StatusError {
			t.Errorf("expected error status, got %s", final.Status)
		}
	})

	t.Run("Manifest Policy Enforced", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{"index.html": "<h1>hi</h1>"}),
		}}
		engine := newTestEngine(source, archive.Policy{RequireManifest: true})

		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, nil)
		if !errors.Is(err, shared.ErrMissingManifest) {
			t.Errorf("expected ErrMissingManifest, got %v", err)
		}
		if final.Status != models.StatusError {
			t.Errorf("expected error status, got %s", final.Status)
		}
	})

	t.Run("No Declared Files", func(t *testing.T) {
		engine := newTestEngine(&mockSource{}, archive.Policy{})

		final, err := engine.Run(context.Background(), models.Project{ID: "bare"}, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if final.Status != models.StatusError {
			t.Errorf("expected error status, got %s", final.Status)
		}
	})

	t.Run("Re-Run Is Idempotent", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{"index.html": "<h1>hi</h1>"}),
		}}
		engine := newTestEngine(source, archive.Policy{})
		project := models.Project{ID: "demo", Files: []string{"demo.zip"}}

		first, err := engine.Run(context.Background(), project, nil)
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		second, err := engine.Run(context.Background(), first, nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		if second.Status != first.Status {
			t.Errorf("terminal status changed across runs: %s vs %s", first.Status, second.Status)
		}
		if second.Preview == first.Preview {
			t.Error("re-run should issue a fresh handle")
		}

		firstDoc, _ := engine.Store().Resolve(first.Preview)
		if firstDoc.Content != "" {
			t.Error("first handle should be released by the re-run")
		}
		secondDoc, ok := engine.Store().Resolve(second.Preview)
		if !ok || secondDoc.Content != "<h1>hi</h1>" {
			t.Error("re-run handle should point at equivalent content")
		}
		if engine.Store().Len() != 1 {
			t.Errorf("handles should not accumulate, got %d", engine.Store().Len())
		}
	})

	t.Run("Re-Run After Error Resets Transcript", func(t *testing.T) {
		source := &mockSource{downloadErr: fmt.Errorf("%w: flaky", shared.ErrNetwork)}
		engine := newTestEngine(source, archive.Policy{})
		project := models.Project{ID: "demo", Files: []string{"demo.zip"}}

		failed, _ := engine.Run(context.Background(), project, nil)
		if failed.Status != models.StatusError {
			t.Fatalf("expected error status, got %s", failed.Status)
		}

		source.downloadErr = nil
		source.archives = map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{"index.html": "<h1>hi</h1>"}),
		}

		recovered, err := engine.Run(context.Background(), failed, nil)
		if err != nil {
			t.Fatalf("recovery run failed: %v", err)
		}
		if recovered.Status != models.StatusRunning {
			t.Errorf("expected running, got %s", recovered.Status)
		}
		if hasErrorLine(recovered) {
			t.Error("transcript should reset on re-run")
		}
	})

	t.Run("In-Flight Run Rejected", func(t *testing.T) {
		engine := newTestEngine(&mockSource{}, archive.Policy{})
		inFlight := models.Project{ID: "demo", Files: []string{"demo.zip"}, Status: models.StatusDownloading}

		_, err := engine.Run(context.Background(), inFlight, nil)
		if !errors.Is(err, shared.ErrRunInFlight) {
			t.Errorf("expected ErrRunInFlight, got %v", err)
		}
	})

	t.Run("Snapshots Cover The Status Sequence", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{"index.html": "<h1>hi</h1>"}),
		}}
		engine := newTestEngine(source, archive.Policy{})

		updates := make(chan models.Project, 16)
		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, updates)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		close(updates)

		var seen []models.Status
		for snap := range updates {
			seen = append(seen, snap.Status)
		}

		want := []models.Status{models.StatusDownloading, models.StatusExtracting, models.StatusValidating, models.StatusRunning}
		if len(seen) != len(want) {
			t.Fatalf("expected %d snapshots, got %d (%v)", len(want), len(seen), seen)
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Errorf("snapshot %d: expected %s, got %s", i, want[i], seen[i])
			}
		}
		if final.Status != models.StatusRunning {
			t.Errorf("final status should be running, got %s", final.Status)
		}
	})

	t.Run("Concurrent Runs For Distinct Projects", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"alpha/a.zip": zipOf(t, map[string]string{"index.html": "<p>alpha</p>"}),
			"beta/b.zip":  zipOf(t, map[string]string{"index.html": "<p>beta</p>"}),
		}}
		engine := newTestEngine(source, archive.Policy{})

		var wg sync.WaitGroup
		results := make([]models.Project, 2)
		projects := []models.Project{
			{ID: "alpha", Files: []string{"a.zip"}},
			{ID: "beta", Files: []string{"b.zip"}},
		}

		for i := range projects {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = engine.Run(context.Background(), projects[i], nil)
			}(i)
		}
		wg.Wait()

		for i, final := range results {
			if final.Status != models.StatusRunning {
				t.Errorf("project %s: expected running, got %s", projects[i].ID, final.Status)
			}
		}

		alphaDoc, _ := engine.Store().Resolve(results[0].Preview)
		betaDoc, _ := engine.Store().Resolve(results[1].Preview)
		if alphaDoc.Content != "<p>alpha</p>" || betaDoc.Content != "<p>beta</p>" {
			t.Error("concurrent runs should not cross project state")
		}
	})

	t.Run("Two Entry Points Pin Selection", func(t *testing.T) {
		source := &mockSource{archives: map[string][]byte{
			"demo/demo.zip": zipOf(t, map[string]string{
				"app/index.html": "<p>x</p>",
				"lib/index.html": "<p>y</p>",
			}),
		}}
		engine := newTestEngine(source, archive.Policy{})

		final, err := engine.Run(context.Background(), models.Project{ID: "demo", Files: []string{"demo.zip"}}, nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		doc, ok := engine.Store().Resolve(final.Preview)
		if !ok {
			t.Fatal("preview handle should resolve")
		}
		if doc.Path != "app/index.html" {
			t.Errorf("expected app/index.html to win the tie, got %s", doc.Path)
		}
		if doc.Content != "<p>x</p>" {
			t.Errorf("unexpected preview content: %s", doc.Content)
		}
	})
}
