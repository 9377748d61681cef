package preview

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"webdeck/internal/models"
	"webdeck/internal/shared"
)

// Scheme prefixes every handle issued by a Store.
const Scheme = "preview://"

// Document is the rendered entry point behind a handle.
type Document struct {
	ProjectID string
	Path      string // archive path of the selected entry point
	Content   string
}

// Store owns the handle → document mapping for one process. Safe for
// concurrent use; independent project runs render into the same store.
type Store struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewStore creates an empty preview store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Render selects the archive's entry point and wraps it into a handle.
//
// A previous handle for the same project is released first, so re-runs do not
// accumulate documents. The archive is expected to have passed validation;
// a missing or empty entry point still fails with [shared.ErrRender].
func (s *Store) Render(projectID string, archive *models.DecodedArchive) (string, error) {
	path := EntryPoint(archive)
	if path == "" {
		return "", fmt.Errorf("%w: no entry point in archive", shared.ErrRender)
	}

	file := archive.Files[path]
	if file.Text == "" {
		return "", fmt.Errorf("%w: entry point %s is empty", shared.ErrRender, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, doc := range s.docs {
		if doc.ProjectID == projectID {
			delete(s.docs, id)
		}
	}

	id := shared.GenerateID()
	s.docs[id] = Document{ProjectID: projectID, Path: path, Content: file.Text}

	return Scheme + id, nil
}

// Resolve returns the document behind a handle, if the handle is still live.
func (s *Store) Resolve(handle string) (Document, bool) {
	id := strings.TrimPrefix(handle, Scheme)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	return doc, ok
}

// Release invalidates a handle. Releasing an unknown handle is a no-op.
func (s *Store) Release(handle string) {
	id := strings.TrimPrefix(handle, Scheme)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)
}

// Len returns the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.docs)
}

// EntryPoint picks the archive's entry point deterministically: among paths
// whose final segment is index.html (case-insensitive), the one with the
// fewest segments wins, ties broken lexicographically. Iteration order of the
// underlying map never decides the winner.
func EntryPoint(archive *models.DecodedArchive) string {
	if archive == nil {
		return ""
	}

	var candidates []string
	for path := range archive.Files {
		segments := strings.Split(path, "/")
		if strings.EqualFold(segments[len(segments)-1], "index.html") {
			candidates = append(candidates, path)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i], "/")
		dj := strings.Count(candidates[j], "/")
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})

	return candidates[0]
}
