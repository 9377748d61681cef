package archive

import (
	"fmt"
	"strings"

	"webdeck/internal/models"
	"webdeck/internal/shared"
)

// Policy configures which structural checks run against a decoded archive.
//
// The entry-point check is always on. RequireManifest additionally demands a
// package.json somewhere in the tree; some project hosts guarantee one, some
// do not, so it is a setting rather than a rule.
type Policy struct {
	RequireManifest bool
}

// Validate checks the decoded paths for the required markers. It inspects
// path suffixes only, never file contents: deeply/nested/index.html passes,
// index.html.bak does not.
func (p Policy) Validate(archive *models.DecodedArchive) error {
	if archive.Len() == 0 {
		return fmt.Errorf("%w: archive is empty", shared.ErrMissingEntryPoint)
	}

	if !hasFinalSegment(archive, "index.html") {
		return fmt.Errorf("%w: checked %d paths", shared.ErrMissingEntryPoint, archive.Len())
	}

	if p.RequireManifest && !hasFinalSegment(archive, "package.json") {
		return fmt.Errorf("%w: checked %d paths", shared.ErrMissingManifest, archive.Len())
	}

	return nil
}

// hasFinalSegment reports whether any decoded path's last segment matches
// name case-insensitively.
func hasFinalSegment(archive *models.DecodedArchive, name string) bool {
	for path := range archive.Files {
		segments := strings.Split(path, "/")
		if strings.EqualFold(segments[len(segments)-1], name) {
			return true
		}
	}
	return false
}
