package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/internal/core/services"
	"github.com/kamal-hamza/upkg/internal/logging"
	"github.com/kamal-hamza/upkg/pkg/ui"
)

var (
	watchQuiet   bool
	watchInitial bool
	watchNoTag   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild packages when their assets change",
	Long: `Watch the assets root and rebuild a project's package whenever one of its
files is created, modified, renamed or deleted.

Changes are debounced (watch_debounce_ms in the config) so a burst of saves
produces a single rebuild. Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Only report failed rebuilds")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Build every project once before watching")
	watchCmd.Flags().BoolVar(&watchNoTag, "no-tag", false, "Do not append a build tag to the version file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.NewComponentLogger(appLogger, "watch")

	if err := requireAssetsRoot(); err != nil {
		return err
	}

	// Create file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, appWorkspace.AssetsPath); err != nil {
		return fmt.Errorf("failed to watch assets root: %w", err)
	}

	if !watchQuiet {
		fmt.Println(ui.FormatRocket("Watching for asset changes..."))
		fmt.Println(ui.FormatMuted("Watching: " + relativeToRoot(appWorkspace.AssetsPath)))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	if watchInitial {
		rebuild(ctx, nil)
	}

	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	// Event loop
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !(event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename)) {
				continue
			}

			// Editor swap files never end up in a package
			base := filepath.Base(event.Name)
			if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
				continue
			}

			// New directories need their own watch
			if event.Has(fsnotify.Create) {
				if err := watchTree(watcher, event.Name); err != nil {
					logger.Warn("failed to watch new path", logging.String(logging.FieldPath, event.Name), logging.Error(err))
				}
			}

			project, ok := appWorkspace.ProjectOf(event.Name)
			if !ok {
				continue
			}
			logger.Debug("change detected",
				logging.String(logging.FieldProject, project),
				logging.String(logging.FieldPath, event.Name),
				logging.String("op", event.Op.String()),
			)
			pending[project] = struct{}{}

			// Reset debounce timer
			timer.Reset(debounce)

		case <-timer.C:
			projects := make([]string, 0, len(pending))
			for name := range pending {
				projects = append(projects, name)
			}
			clear(pending)
			sort.Strings(projects)
			rebuild(ctx, existingProjects(ctx, projects))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", logging.Error(err))

		case <-ctx.Done():
			if !watchQuiet {
				fmt.Println()
				fmt.Println(ui.FormatMuted("Watcher stopped"))
			}
			return nil
		}
	}
}

// watchTree adds root and every directory below it to the watcher.
// fsnotify watches are not recursive.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Removed between the event and the walk
			if path == root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

// existingProjects drops projects whose directory has been removed
func existingProjects(ctx context.Context, names []string) []string {
	kept := names[:0]
	for _, name := range names {
		if _, err := projectRepo.Get(ctx, name); err == nil {
			kept = append(kept, name)
		}
	}
	return kept
}

// rebuild builds the named projects, or all of them when names is nil
func rebuild(ctx context.Context, names []string) {
	if names != nil && len(names) == 0 {
		return
	}

	tag := resolveBuildTag(ctx, revisionSource, "", watchNoTag)
	resp, err := buildService.ExecuteAll(ctx, services.BuildAllRequest{
		Projects:   names,
		OutputDir:  appWorkspace.BuildsPath,
		BuildTag:   tag,
		MaxWorkers: appConfig.MaxWorkers,
	})
	if err != nil {
		fmt.Println(ui.FormatError("Rebuild failed: " + err.Error()))
		return
	}

	stamp := time.Now().Format("15:04:05")
	for _, result := range resp.Results {
		if !result.Success {
			fmt.Println(ui.FormatError(fmt.Sprintf("[%s] %s: %v", stamp, result.Project, result.Error)))
			continue
		}
		if !watchQuiet {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("[%s] %s -> %s", stamp, result.Project, relativeToRoot(result.OutputPath))))
		}
	}
}
