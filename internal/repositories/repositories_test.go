package repositories

import (
	"database/sql"
	"testing"
	"time"

	"webdeck/internal/models"
	"webdeck/internal/services"
	"webdeck/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A pooled second connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNoteRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))
		note := models.NewNote(0, "session-1", "first note")

		if err := repo.Create(note); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}

		if note.ID() == "" {
			t.Error("note ID should be set after creation")
		}
		if note.Sequence() == 0 {
			t.Error("note sequence should be assigned")
		}
	})

	t.Run("Create Rejects Blank Body", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))

		if err := repo.Create(models.NewNote(0, "session-1", "   ")); err == nil {
			t.Error("expected validation error for blank body")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))
		note := models.NewNote(0, "session-1", "hello")

		if err := repo.Create(note); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}

		got, err := repo.Get(note.ID())
		if err != nil {
			t.Fatalf("failed to get note: %v", err)
		}
		if got.Body() != "hello" {
			t.Errorf("unexpected body: %s", got.Body())
		}
		if got.SessionID() != "session-1" {
			t.Errorf("unexpected session: %s", got.SessionID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))
		note := models.NewNote(0, "session-1", "before")

		if err := repo.Create(note); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}

		note.SetBody("after")
		if err := repo.Update(note); err != nil {
			t.Fatalf("failed to update note: %v", err)
		}

		got, err := repo.Get(note.ID())
		if err != nil {
			t.Fatalf("failed to get note: %v", err)
		}
		if got.Body() != "after" {
			t.Errorf("update did not persist, got %s", got.Body())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))
		note := models.NewNote(0, "session-1", "doomed")

		if err := repo.Create(note); err != nil {
			t.Fatalf("failed to create note: %v", err)
		}
		if err := repo.Delete(note.ID()); err != nil {
			t.Fatalf("failed to delete note: %v", err)
		}

		if _, err := repo.Get(note.ID()); err == nil {
			t.Error("soft-deleted note should not be retrievable")
		}
		if err := repo.Delete(note.ID()); err == nil {
			t.Error("double delete should fail")
		}
	})

	t.Run("UpsertBySession", func(t *testing.T) {
		repo := NewNoteRepository(setupTestDB(t))

		first := models.NewNote(0, "session-1", "v1")
		if err := repo.UpsertBySession(first); err != nil {
			t.Fatalf("initial upsert failed: %v", err)
		}

		second := models.NewNote(0, "session-1", "v2")
		if err := repo.UpsertBySession(second); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		if second.ID() != first.ID() {
			t.Error("upsert should reuse the session's existing row")
		}

		notes, err := repo.List(map[string]any{"session_id": "session-1"})
		if err != nil {
			t.Fatalf("failed to list notes: %v", err)
		}
		if len(notes) != 1 {
			t.Fatalf("expected 1 note for the session, got %d", len(notes))
		}
		if notes[0].Body() != "v2" {
			t.Errorf("expected updated body, got %s", notes[0].Body())
		}

		other := models.NewNote(0, "session-2", "different session")
		if err := repo.UpsertBySession(other); err != nil {
			t.Fatalf("upsert for other session failed: %v", err)
		}
		if other.ID() == first.ID() {
			t.Error("distinct sessions should get distinct rows")
		}
	})

	t.Run("Recent", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewNoteRepository(db)

		bodies := []string{"oldest", "middle", "newest"}
		for i, body := range bodies {
			note := models.NewNote(0, "session-"+body, body)
			note.SetCreatedAt(time.Now().Add(time.Duration(i) * time.Minute))
			if err := repo.Create(note); err != nil {
				t.Fatalf("failed to create note: %v", err)
			}
		}

		recent, err := repo.Recent(2)
		if err != nil {
			t.Fatalf("failed to list recent notes: %v", err)
		}

		if len(recent) != 2 {
			t.Fatalf("expected 2 notes, got %d", len(recent))
		}
		if recent[0].Body() != "newest" || recent[1].Body() != "middle" {
			t.Errorf("recent notes out of order: %s, %s", recent[0].Body(), recent[1].Body())
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("LoadOrCreate Is Stable", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		first, err := repo.LoadOrCreate()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if first == "" {
			t.Fatal("expected a generated session id")
		}

		second, err := repo.LoadOrCreate()
		if err != nil {
			t.Fatalf("failed to reload session: %v", err)
		}
		if second != first {
			t.Error("session id should survive reloads")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		first, err := repo.LoadOrCreate()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}

		fresh, err := repo.Reset()
		if err != nil {
			t.Fatalf("failed to reset session: %v", err)
		}
		if fresh == first {
			t.Error("reset should generate a new id")
		}

		current, err := repo.LoadOrCreate()
		if err != nil {
			t.Fatalf("failed to reload session: %v", err)
		}
		if current != fresh {
			t.Error("reset id should persist")
		}
	})
}

func TestListingRepository(t *testing.T) {
	t.Run("Replace And Load", func(t *testing.T) {
		repo := NewListingRepository(setupTestDB(t))

		listings := []services.ProjectListing{
			{ID: "alpha", Files: []string{"a.zip"}},
			{ID: "beta", Files: []string{"b.zip", "b2.zip"}},
		}
		if err := repo.Replace(listings); err != nil {
			t.Fatalf("failed to cache listings: %v", err)
		}

		got, fetchedAt, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load cache: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 cached listings, got %d", len(got))
		}
		if got[1].ID != "beta" || len(got[1].Files) != 2 {
			t.Errorf("unexpected cached listing: %+v", got[1])
		}
		if fetchedAt.IsZero() {
			t.Error("expected a fetch timestamp")
		}
	})

	t.Run("Replace Swaps Wholesale", func(t *testing.T) {
		repo := NewListingRepository(setupTestDB(t))

		if err := repo.Replace([]services.ProjectListing{{ID: "old", Files: []string{"old.zip"}}}); err != nil {
			t.Fatalf("failed to cache listings: %v", err)
		}
		if err := repo.Replace([]services.ProjectListing{{ID: "new", Files: []string{"new.zip"}}}); err != nil {
			t.Fatalf("failed to replace listings: %v", err)
		}

		got, _, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load cache: %v", err)
		}
		if len(got) != 1 || got[0].ID != "new" {
			t.Errorf("stale listings survived replace: %+v", got)
		}
	})

	t.Run("Empty Cache", func(t *testing.T) {
		repo := NewListingRepository(setupTestDB(t))

		got, fetchedAt, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load empty cache: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty cache, got %d listings", len(got))
		}
		if !fetchedAt.IsZero() {
			t.Error("empty cache should have zero fetch time")
		}
	})
}
