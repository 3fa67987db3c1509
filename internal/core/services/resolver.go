package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/upkg/internal/core/domain"
	"github.com/kamal-hamza/upkg/pkg/metadata"
)

// Resolver turns a filesystem entry and its sidecar into an AssetRecord
type Resolver struct {
	pathRoot   string
	metaSuffix string
}

// NewResolver creates a resolver whose logical paths are relative to pathRoot
func NewResolver(pathRoot, metaSuffix string) *Resolver {
	if metaSuffix == "" {
		metaSuffix = metadata.Suffix
	}
	return &Resolver{
		pathRoot:   filepath.Clean(pathRoot),
		metaSuffix: metaSuffix,
	}
}

// Resolve reads the entry at entryPath and its sidecar into a record.
// Directories yield a DirectoryEntry; regular files are read fully into memory.
func (r *Resolver) Resolve(entryPath string) (*domain.AssetRecord, error) {
	logicalPath, err := r.logicalPath(entryPath)
	if err != nil {
		return nil, err
	}

	// 1. Sidecar
	meta, err := os.ReadFile(metadata.PathFor(entryPath, r.metaSuffix))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMissingMetadata, err)
	}

	sidecar, err := metadata.ParseSidecar(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedMetadata, err)
	}

	// 2. Content
	info, err := os.Stat(entryPath)
	if err != nil {
		return nil, err
	}

	var entry domain.Entry
	switch {
	case info.IsDir():
		entry = domain.DirectoryEntry{}
	case info.Mode().IsRegular():
		content, err := os.ReadFile(entryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read asset: %w", err)
		}
		entry = domain.FileEntry{Content: content}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEntry, info.Mode().Type())
	}

	return &domain.AssetRecord{
		Identifier:  sidecar.Identifier(),
		LogicalPath: logicalPath,
		Meta:        meta,
		Entry:       entry,
	}, nil
}

// logicalPath returns entryPath relative to the path root, with forward slashes
func (r *Resolver) logicalPath(entryPath string) (string, error) {
	rel, err := filepath.Rel(r.pathRoot, filepath.Clean(entryPath))
	if err != nil {
		return "", fmt.Errorf("failed to compute logical path: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %s is not below %s", entryPath, r.pathRoot)
	}
	return filepath.ToSlash(rel), nil
}
