package services

import (
	"context"
	"os/exec"

	"github.com/kamal-hamza/upkg/internal/core/domain"
	"github.com/kamal-hamza/upkg/internal/core/ports"
)

var _ ports.RevisionSource = (*GitService)(nil)

// GitService handles interactions with the git CLI
type GitService struct {
	workingDir string
	gitPath    string
}

// NewGitService creates a new instance of GitService
func NewGitService(workingDir string) *GitService {
	return &GitService{
		workingDir: workingDir,
		gitPath:    "git",
	}
}

// output runs a git command in the service's working directory and returns stdout
func (s *GitService) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, s.gitPath, args...)
	cmd.Dir = s.workingDir
	// Stderr is dropped; a missing repository is not worth printing
	cmd.Stderr = nil
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ShortHash returns the abbreviated HEAD revision as a build tag.
// Any failure (git not installed, not a repository, no commits) yields an
// absent tag instead of an error.
func (s *GitService) ShortHash(ctx context.Context) domain.BuildTag {
	out, err := s.output(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return domain.BuildTag{}
	}
	return domain.NewBuildTag(out)
}

// IsAvailable checks if the git binary can be found
func (s *GitService) IsAvailable() bool {
	_, err := exec.LookPath(s.gitPath)
	return err == nil
}
