// package services defines interface ProjectSource for remote project hosts
package services

import (
	"context"
)

// ProjectSource defines the interface for hosts that expose zipped web projects.
type ProjectSource interface {
	// List retrieves all projects available on the source.
	List(ctx context.Context) ([]ProjectListing, error)

	// Download fetches the raw bytes of a named archive for a project.
	Download(ctx context.Context, projectID, fileName string) ([]byte, error)

	// Name returns the name of the source for display and logging.
	Name() string
}

// ProjectListing is the source's description of one project: an id plus the
// archive file names it declares, in the order the source reports them.
type ProjectListing struct {
	ID    string   `json:"id"`
	Files []string `json:"files"`
}
