package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamal-hamza/upkg/internal/core/domain"
	"github.com/kamal-hamza/upkg/internal/core/ports"
)

var _ ports.ProjectRepository = (*FileProjectRepository)(nil)

// FileProjectRepository discovers projects as the sub-directories of an assets root
type FileProjectRepository struct {
	assetsRoot  string
	versionFile string
	iconName    string
}

// NewFileProjectRepository creates a repository rooted at assetsRoot
func NewFileProjectRepository(assetsRoot, versionFile, iconName string) *FileProjectRepository {
	return &FileProjectRepository{
		assetsRoot:  assetsRoot,
		versionFile: versionFile,
		iconName:    iconName,
	}
}

// List returns every project directory, sorted by name.
// Plain files next to the projects (including their .meta sidecars) are ignored.
func (r *FileProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	entries, err := os.ReadDir(r.assetsRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets root: %w", err)
	}

	var projects []domain.Project
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		projects = append(projects, r.load(entry.Name()))
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// Get retrieves a project by directory name
func (r *FileProjectRepository) Get(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid project name: %q", name)
	}

	info, err := os.Stat(filepath.Join(r.assetsRoot, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project not found: %s", name)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project not found: %s", name)
	}

	p := r.load(name)
	return &p, nil
}

// load fills in what can be learned about a project without building it
func (r *FileProjectRepository) load(name string) domain.Project {
	root := filepath.Join(r.assetsRoot, name)
	p := domain.Project{Name: name, Root: root}

	if data, err := os.ReadFile(filepath.Join(root, r.versionFile)); err == nil {
		p.Version = strings.TrimSpace(string(data))
	}
	if info, err := os.Stat(filepath.Join(root, r.iconName)); err == nil && info.Mode().IsRegular() {
		p.HasIcon = true
	}
	return p
}
