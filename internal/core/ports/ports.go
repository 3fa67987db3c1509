package ports

import (
	"context"

	"github.com/kamal-hamza/upkg/internal/core/domain"
)

// ProjectRepository defines the port for discovering buildable projects
type ProjectRepository interface {
	// List returns every project under the assets root, sorted by name
	List(ctx context.Context) ([]domain.Project, error)

	// Get returns a single project by directory name
	Get(ctx context.Context, name string) (*domain.Project, error)
}

// RevisionSource defines the port for deriving the build tag
type RevisionSource interface {
	// ShortHash returns the current short revision, or an absent tag
	ShortHash(ctx context.Context) domain.BuildTag
}

// Reporter receives progress notifications while a package is assembled.
// Implementations must not influence the build.
type Reporter interface {
	ProjectStarted(project string)
	EntryAdded(project, logicalPath string)
	ProjectFinished(project, outputPath string, err error)
}
