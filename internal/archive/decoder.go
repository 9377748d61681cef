package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"webdeck/internal/models"
	"webdeck/internal/shared"
)

// Decode parses blob as a zip container and decodes every non-directory entry
// into a [models.DecodedArchive].
//
// Entries decode concurrently, one goroutine each, and Decode waits for all
// of them. If any entry fails the whole decode fails and nothing is returned.
func Decode(ctx context.Context, blob []byte) (*models.DecodedArchive, error) {
	reader, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArchiveDecode, err)
	}

	var mu sync.Mutex
	files := make(map[string]models.VirtualFile)

	g, ctx := errgroup.WithContext(ctx)

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			vf, err := decodeEntry(entry)
			if err != nil {
				return err
			}

			mu.Lock()
			files[vf.Path] = vf
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArchiveDecode, err)
	}

	return &models.DecodedArchive{Files: files}, nil
}

// decodeEntry reads one zip entry into a VirtualFile. Valid UTF-8 contents
// decode as text; anything else is kept as raw bytes.
func decodeEntry(entry *zip.File) (models.VirtualFile, error) {
	rc, err := entry.Open()
	if err != nil {
		return models.VirtualFile{}, fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return models.VirtualFile{}, fmt.Errorf("failed to read entry %s: %w", entry.Name, err)
	}

	vf := models.VirtualFile{Path: normalizePath(entry.Name)}
	if utf8.Valid(data) {
		vf.Text = string(data)
		vf.Kind = models.ContentText
	} else {
		vf.Data = data
		vf.Kind = models.ContentBinary
	}

	return vf, nil
}

// normalizePath cleans an archive entry name into a slash-separated relative path.
func normalizePath(name string) string {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(cleaned, "/")
}
