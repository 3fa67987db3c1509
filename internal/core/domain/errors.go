package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMetadata is returned when an entry has no readable sidecar.
	ErrMissingMetadata = errors.New("missing metadata sidecar")

	// ErrMalformedMetadata is returned when a sidecar cannot be parsed or has no guid.
	ErrMalformedMetadata = errors.New("malformed metadata sidecar")

	ErrMissingVersionFile = errors.New("missing version file")
	ErrMissingIconFile    = errors.New("missing icon file")

	// ErrDuplicateIdentifier is returned when two entries of one project share a guid.
	ErrDuplicateIdentifier = errors.New("duplicate asset identifier")

	// ErrUnsupportedEntry is returned for entries that are neither directories nor regular files.
	ErrUnsupportedEntry = errors.New("unsupported entry type")

	// ErrBuildLocked is returned when another build holds the output lock.
	ErrBuildLocked = errors.New("package is being built by another process")
)

// BuildError describes a failed project build
type BuildError struct {
	Project string
	Path    string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("build %s: %v", e.Project, e.Err)
	}
	return fmt.Sprintf("build %s: %s: %v", e.Project, e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
