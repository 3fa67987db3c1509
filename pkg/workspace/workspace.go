package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvRoot overrides the repository root when no flag is given.
const EnvRoot = "UPKG_ROOT"

// ConfigFileName is the per-repository configuration file.
const ConfigFileName = ".upkg.yaml"

// Workspace holds the resolved directories of an asset repository
type Workspace struct {
	RootPath   string
	AssetsPath string
	BuildsPath string
	ConfigPath string
}

// New resolves the repository root and returns a Workspace rooted there.
// An explicit root wins over UPKG_ROOT, which wins over the working directory.
func New(root string) (*Workspace, error) {
	rootPath, err := resolveRoot(root)
	if err != nil {
		return nil, fmt.Errorf("failed to determine repository root: %w", err)
	}

	return &Workspace{
		RootPath:   rootPath,
		ConfigPath: filepath.Join(rootPath, ConfigFileName),
	}, nil
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

// Configure sets the assets and builds directories. Relative paths are
// taken from the repository root; absolute paths are used as-is.
func (w *Workspace) Configure(assetsRoot, buildsDir string) {
	w.AssetsPath = w.resolve(assetsRoot)
	w.BuildsPath = w.resolve(buildsDir)
}

// UseConfigFile replaces the default configuration path
func (w *Workspace) UseConfigFile(path string) {
	if path != "" {
		w.ConfigPath = w.resolve(path)
	}
}

func (w *Workspace) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(w.RootPath, p)
}

// Initialize creates the builds directory if it doesn't exist
func (w *Workspace) Initialize() error {
	if err := os.MkdirAll(w.BuildsPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.BuildsPath, err)
	}
	return nil
}

// Exists checks if the assets root is present
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.AssetsPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ProjectPath returns the full path of a project directory
func (w *Workspace) ProjectPath(name string) string {
	return filepath.Join(w.AssetsPath, name)
}

// ProjectOf maps a path inside the assets root to the project that owns it.
// It returns false for paths outside any project, including regular files
// placed directly under the assets root.
func (w *Workspace) ProjectOf(path string) (string, bool) {
	rel, err := filepath.Rel(w.AssetsPath, path)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	project, _, nested := strings.Cut(rel, "/")
	if nested {
		return project, true
	}

	// A top-level entry is only a project when it is a directory
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return project, true
}
