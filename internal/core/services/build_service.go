package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/kamal-hamza/upkg/internal/adapters/archive"
	"github.com/kamal-hamza/upkg/internal/core/domain"
	"github.com/kamal-hamza/upkg/internal/core/ports"
	"github.com/kamal-hamza/upkg/internal/logging"
	"github.com/kamal-hamza/upkg/pkg/metadata"
)

// BuildOptions holds the naming conventions of a package build
type BuildOptions struct {
	MetaSuffix  string
	IconName    string
	VersionFile string
	Extension   string

	// PathRoot is the directory logical paths are relative to.
	// Empty means the project root.
	PathRoot string

	Compression archive.Level
}

// DefaultBuildOptions returns the Unity conventions
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MetaSuffix:  metadata.Suffix,
		IconName:    ".icon.png",
		VersionFile: "version.txt",
		Extension:   "unitypackage",
		Compression: archive.LevelDefault,
	}
}

// BuildService assembles .unitypackage archives from project directories
type BuildService struct {
	projects ports.ProjectRepository
	reporter ports.Reporter
	logger   *slog.Logger
	opts     BuildOptions
}

// NewBuildService creates a new build service. A nil reporter or logger disables that output.
func NewBuildService(projects ports.ProjectRepository, reporter ports.Reporter, logger *slog.Logger, opts BuildOptions) *BuildService {
	defaults := DefaultBuildOptions()
	if opts.MetaSuffix == "" {
		opts.MetaSuffix = defaults.MetaSuffix
	}
	if opts.IconName == "" {
		opts.IconName = defaults.IconName
	}
	if opts.VersionFile == "" {
		opts.VersionFile = defaults.VersionFile
	}
	if opts.Extension == "" {
		opts.Extension = defaults.Extension
	}
	if opts.Compression == "" {
		opts.Compression = defaults.Compression
	}
	if reporter == nil {
		reporter = nopReporter{}
	}

	return &BuildService{
		projects: projects,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "assembler"),
		opts:     opts,
	}
}

// BuildRequest represents a request to build one project
type BuildRequest struct {
	ProjectRoot string
	OutputDir   string
	BuildTag    domain.BuildTag
}

// BuildResponse represents the response from building a project
type BuildResponse struct {
	Project    string
	Version    string
	OutputPath string
	Entries    int
	Members    int
	Success    bool
	Error      error
}

// BuildAllRequest represents a request to build several projects
type BuildAllRequest struct {
	Projects   []string // Project names; empty means every project
	OutputDir  string
	BuildTag   domain.BuildTag
	MaxWorkers int // 1 or less builds sequentially
}

// BuildAllResponse represents the response from building several projects
type BuildAllResponse struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []BuildResponse
}

// BuildProgress represents the progress of a multi-project build
type BuildProgress struct {
	Current int
	Total   int
	Project string
	Success bool
	Error   error
}

// Execute builds one project into <OutputDir>/<name>.<version>.<ext>.
// The archive is written to a temporary file and renamed into place only
// after it is complete; on failure nothing is left behind.
func (s *BuildService) Execute(ctx context.Context, req BuildRequest) (*BuildResponse, error) {
	root := filepath.Clean(req.ProjectRoot)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	resp := &BuildResponse{Project: filepath.Base(root)}

	s.reporter.ProjectStarted(resp.Project)
	logger := s.logger.With(logging.String(logging.FieldProject, resp.Project))

	err := s.build(ctx, root, req, resp, logger)
	if err != nil {
		resp.Error = err
		logger.Error("package build failed", logging.Error(err))
	} else {
		resp.Success = true
		logger.Info("package built",
			logging.String("output", resp.OutputPath),
			logging.Int("entries", resp.Entries),
			logging.Int("members", resp.Members),
		)
	}

	s.reporter.ProjectFinished(resp.Project, resp.OutputPath, err)
	return resp, err
}

func (s *BuildService) build(ctx context.Context, root string, req BuildRequest, resp *BuildResponse, logger *slog.Logger) error {
	fail := func(path string, err error) error {
		return &domain.BuildError{Project: resp.Project, Path: path, Err: err}
	}

	// 1. Version
	version, err := s.readVersion(root)
	if err != nil {
		return fail(s.opts.VersionFile, err)
	}
	resp.Version = version

	// 2. Output location
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return fail("", fmt.Errorf("failed to create output directory: %w", err))
	}
	project := domain.Project{Name: resp.Project, Root: root, Version: version}
	outputPath := filepath.Join(req.OutputDir, project.PackageFileName(s.opts.Extension))

	lock := flock.New(outputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fail("", fmt.Errorf("acquire lock: %w", err))
	}
	if !locked {
		return fail("", domain.ErrBuildLocked)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	// 3. Temporary archive
	tmpPath := filepath.Join(req.OutputDir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(outputPath), uuid.NewString()))
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fail("", fmt.Errorf("failed to create package file: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	aw, err := archive.NewWriter(f, s.opts.Compression)
	if err != nil {
		return fail("", err)
	}

	// 4. Entries
	pathRoot := root
	if s.opts.PathRoot != "" {
		pathRoot = s.opts.PathRoot
	}
	asm := &assembly{
		service:  s,
		resolver: NewResolver(pathRoot, s.opts.MetaSuffix),
		writer:   aw,
		root:     root,
		project:  resp.Project,
		version:  version,
		tag:      req.BuildTag,
		seen:     make(map[string]string),
		logger:   logger,
	}
	if err := asm.run(ctx); err != nil {
		var ee *entryError
		if errors.As(err, &ee) {
			return fail(ee.path, ee.err)
		}
		return fail("", err)
	}
	resp.Entries = asm.entries

	// 5. Icon, unscoped at the archive root
	iconPath := filepath.Join(root, s.opts.IconName)
	if _, err := os.Stat(iconPath); err != nil {
		if os.IsNotExist(err) {
			return fail(s.opts.IconName, domain.ErrMissingIconFile)
		}
		return fail(s.opts.IconName, err)
	}
	if err := aw.WriteFile(s.opts.IconName, iconPath); err != nil {
		return fail(s.opts.IconName, err)
	}
	resp.Members = aw.Members()

	// 6. Flush and publish
	if err := ctx.Err(); err != nil {
		return fail("", err)
	}
	if err := aw.Close(); err != nil {
		return fail("", err)
	}
	if err := f.Sync(); err != nil {
		return fail("", fmt.Errorf("failed to sync package file: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return fail("", fmt.Errorf("failed to close package file: %w", err))
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return fail("", fmt.Errorf("failed to publish package: %w", err))
	}
	committed = true
	resp.OutputPath = outputPath

	logger.Debug("package published", logging.String(logging.FieldPath, outputPath))
	return nil
}

// readVersion reads the trimmed version string of a project
func (s *BuildService) readVersion(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, s.opts.VersionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrMissingVersionFile
		}
		return "", err
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("%w: file is empty", domain.ErrMissingVersionFile)
	}
	return version, nil
}

// entryError carries the logical path of the entry that failed
type entryError struct {
	path string
	err  error
}

func (e *entryError) Error() string { return e.path + ": " + e.err.Error() }
func (e *entryError) Unwrap() error { return e.err }

// assembly is the state of one single-pass walk over a project tree
type assembly struct {
	service  *BuildService
	resolver *Resolver
	writer   *archive.Writer
	root     string
	project  string
	version  string
	tag      domain.BuildTag
	seen     map[string]string // identifier -> logical path
	entries  int
	logger   *slog.Logger
}

func (a *assembly) run(ctx context.Context) error {
	opts := a.service.opts

	return filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == a.root {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if metadata.IsSidecar(name, opts.MetaSuffix) || name == opts.IconName {
			return nil
		}

		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		record, err := a.resolver.Resolve(path)
		if err != nil {
			return &entryError{path: rel, err: err}
		}

		if rel == opts.VersionFile {
			record = record.WithContent(domain.StampVersion(a.version, a.tag))
		}

		if prev, ok := a.seen[record.Identifier]; ok {
			return &entryError{
				path: rel,
				err:  fmt.Errorf("%w: %s is also used by %s", domain.ErrDuplicateIdentifier, record.Identifier, prev),
			}
		}
		a.seen[record.Identifier] = record.LogicalPath

		for _, blob := range record.Blobs() {
			if err := a.writer.WriteMember(record.MemberName(blob.Name), blob.Data); err != nil {
				return &entryError{path: rel, err: err}
			}
		}
		a.entries++

		a.service.reporter.EntryAdded(a.project, record.LogicalPath)
		a.logger.Debug("entry added",
			logging.String(logging.FieldPath, record.LogicalPath),
			logging.String("guid", record.Identifier),
			logging.Bool("directory", record.IsDirectory()),
		)
		return nil
	})
}

// ExecuteAll builds the requested projects, continuing past failures
func (s *BuildService) ExecuteAll(ctx context.Context, req BuildAllRequest) (*BuildAllResponse, error) {
	return s.ExecuteAllWithProgress(ctx, req, nil)
}

// ExecuteAllWithProgress builds the requested projects and reports progress.
// progressChan, when non-nil, is closed before returning.
func (s *BuildService) ExecuteAllWithProgress(ctx context.Context, req BuildAllRequest, progressChan chan<- BuildProgress) (*BuildAllResponse, error) {
	if progressChan != nil {
		defer close(progressChan)
	}

	projects, err := s.selectProjects(ctx, req.Projects)
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return &BuildAllResponse{
			Total:     0,
			Succeeded: 0,
			Failed:    0,
			Results:   []BuildResponse{},
		}, nil
	}

	var results []BuildResponse
	if req.MaxWorkers <= 1 {
		results = s.buildSequentially(ctx, projects, req, progressChan)
	} else {
		results = s.buildConcurrently(ctx, projects, req, progressChan)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Project < results[j].Project
	})

	// Aggregate results
	response := &BuildAllResponse{
		Total:   len(projects),
		Results: results,
	}
	for _, result := range results {
		if result.Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}

	return response, nil
}

// selectProjects resolves names to projects; no names selects all
func (s *BuildService) selectProjects(ctx context.Context, names []string) ([]domain.Project, error) {
	if len(names) == 0 {
		projects, err := s.projects.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		return projects, nil
	}

	projects := make([]domain.Project, 0, len(names))
	for _, name := range names {
		p, err := s.projects.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *BuildService) buildSequentially(ctx context.Context, projects []domain.Project, req BuildAllRequest, progressChan chan<- BuildProgress) []BuildResponse {
	results := make([]BuildResponse, 0, len(projects))
	for i, p := range projects {
		result := s.buildOne(ctx, p, req)
		results = append(results, result)
		sendProgress(progressChan, i+1, len(projects), result)
	}
	return results
}

// buildConcurrently builds projects using a worker pool.
// Each worker owns the archive of the project it is building.
func (s *BuildService) buildConcurrently(ctx context.Context, projects []domain.Project, req BuildAllRequest, progressChan chan<- BuildProgress) []BuildResponse {
	jobs := make(chan domain.Project, len(projects))
	results := make(chan BuildResponse, len(projects))

	maxWorkers := req.MaxWorkers
	if maxWorkers > len(projects) {
		maxWorkers = len(projects)
	}

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- s.buildOne(ctx, p, req)
			}
		}()
	}

	// Send jobs
	for _, p := range projects {
		jobs <- p
	}
	close(jobs)

	// Wait for all workers to finish
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and report progress
	var buildResults []BuildResponse
	current := 0
	for result := range results {
		buildResults = append(buildResults, result)
		current++
		sendProgress(progressChan, current, len(projects), result)
	}

	return buildResults
}

func (s *BuildService) buildOne(ctx context.Context, p domain.Project, req BuildAllRequest) BuildResponse {
	// Check if context is cancelled
	if err := ctx.Err(); err != nil {
		return BuildResponse{Project: p.Name, Error: err}
	}

	resp, _ := s.Execute(ctx, BuildRequest{
		ProjectRoot: p.Root,
		OutputDir:   req.OutputDir,
		BuildTag:    req.BuildTag,
	})
	return *resp
}

func sendProgress(progressChan chan<- BuildProgress, current, total int, result BuildResponse) {
	if progressChan == nil {
		return
	}
	progressChan <- BuildProgress{
		Current: current,
		Total:   total,
		Project: result.Project,
		Success: result.Success,
		Error:   result.Error,
	}
}

type nopReporter struct{}

func (nopReporter) ProjectStarted(string) {}

func (nopReporter) EntryAdded(string, string) {}

func (nopReporter) ProjectFinished(string, string, error) {}
