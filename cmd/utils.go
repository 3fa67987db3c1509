package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/upkg/internal/core/domain"
	"github.com/kamal-hamza/upkg/internal/core/ports"
	"github.com/kamal-hamza/upkg/pkg/ui"
)

// resolvePathRoot makes a configured path root absolute against the
// repository root. Empty stays empty and means "the project root".
func resolvePathRoot(pathRoot string) string {
	if pathRoot == "" {
		return ""
	}
	if filepath.IsAbs(pathRoot) {
		return filepath.Clean(pathRoot)
	}
	return filepath.Join(appWorkspace.RootPath, pathRoot)
}

// resolveBuildTag picks the tag for this run: an explicit value, none, or
// the short hash of the repository HEAD.
func resolveBuildTag(ctx context.Context, source ports.RevisionSource, explicit string, disabled bool) domain.BuildTag {
	switch {
	case explicit != "":
		return domain.NewBuildTag(explicit)
	case disabled, source == nil:
		return domain.BuildTag{}
	default:
		return source.ShortHash(ctx)
	}
}

// relativeToRoot shortens a path for display when it is inside the repository
func relativeToRoot(path string) string {
	if appWorkspace == nil {
		return path
	}
	rel, err := filepath.Rel(appWorkspace.RootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// createProgressBar creates an ASCII progress bar
func createProgressBar(percentage float64, width int) string {
	filled := int(percentage / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return ui.StyleAccent.Render(bar)
}

// truncate shortens s to max runes, marking the cut with an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
