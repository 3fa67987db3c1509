package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/internal/core/services"
	"github.com/kamal-hamza/upkg/pkg/ui"
)

var (
	buildJobs  int
	buildNoTag bool
	buildTag   string
	buildOut   string
	buildCopy  bool
	buildPick  bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:     "build [project...]",
	Short:   "Build .unitypackage archives",
	Aliases: []string{"b"},
	Long: `Build one .unitypackage per project directory under the assets root.

With no arguments every project is built. The short hash of the repository
HEAD is appended to the project's version.txt inside the package unless
--no-tag is given.

Examples:
  upkg build
  upkg build MyProject
  upkg build --pick
  upkg build --jobs 4 --out dist
  upkg build MyProject --tag release-1 --copy`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "Number of projects built concurrently (default from config)")
	buildCmd.Flags().BoolVar(&buildNoTag, "no-tag", false, "Do not append a build tag to the version file")
	buildCmd.Flags().StringVar(&buildTag, "tag", "", "Use this build tag instead of the git short hash")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default from config)")
	buildCmd.Flags().BoolVar(&buildCopy, "copy", false, "Copy the path of the last built package to the clipboard")
	buildCmd.Flags().BoolVarP(&buildPick, "pick", "p", false, "Choose projects interactively")
	buildCmd.MarkFlagsMutuallyExclusive("tag", "no-tag")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireAssetsRoot(); err != nil {
		return err
	}

	names := args
	if buildPick {
		picked, err := pickProjects(ctx)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
		names = picked
	}

	outputDir := appWorkspace.BuildsPath
	if buildOut != "" {
		abs, err := filepath.Abs(buildOut)
		if err != nil {
			return fmt.Errorf("invalid output directory: %w", err)
		}
		outputDir = abs
	}

	jobs := appConfig.MaxWorkers
	if cmd.Flags().Changed("jobs") {
		jobs = buildJobs
	}

	tag := resolveBuildTag(ctx, revisionSource, buildTag, buildNoTag)

	// Show build info
	fmt.Println(ui.FormatRocket("Building packages..."))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Assets", relativeToRoot(appWorkspace.AssetsPath)))
	fmt.Println(ui.RenderKeyValue("Output", relativeToRoot(outputDir)))
	fmt.Println(ui.RenderKeyValue("Build tag", tag.String()))
	fmt.Println(ui.RenderKeyValue("Workers", fmt.Sprintf("%d", max(jobs, 1))))
	fmt.Println()

	// Create progress channel
	progressChan := make(chan services.BuildProgress)

	// Execute build in goroutine
	resultChan := make(chan *services.BuildAllResponse, 1)
	errorChan := make(chan error, 1)

	go func() {
		req := services.BuildAllRequest{
			Projects:   names,
			OutputDir:  outputDir,
			BuildTag:   tag,
			MaxWorkers: jobs,
		}
		resp, err := buildService.ExecuteAllWithProgress(ctx, req, progressChan)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- resp
	}()

	// Display progress
	for progress := range progressChan {
		status := ui.FormatSuccess("")
		if !progress.Success {
			status = ui.FormatError("")
		}

		percentage := float64(progress.Current) / float64(progress.Total) * 100
		fmt.Printf("%s [%d/%d] %s %s\n",
			createProgressBar(percentage, 30),
			progress.Current,
			progress.Total,
			status,
			truncate(progress.Project, 40),
		)
	}

	// Wait for completion
	var response *services.BuildAllResponse
	select {
	case err := <-errorChan:
		fmt.Println(ui.FormatError("Build failed"))
		return err
	case response = <-resultChan:
	}

	if response.Total == 0 {
		fmt.Println(ui.FormatWarning("No projects found under " + relativeToRoot(appWorkspace.AssetsPath)))
		return nil
	}

	fmt.Println()
	fmt.Println(renderBuildSummary(response))

	fmt.Println(ui.RenderKeyValue("Total", fmt.Sprintf("%d", response.Total)))
	fmt.Println(ui.RenderKeyValue("Succeeded", ui.StyleSuccess.Render(fmt.Sprintf("%d", response.Succeeded))))
	if response.Failed > 0 {
		fmt.Println(ui.RenderKeyValue("Failed", ui.StyleError.Render(fmt.Sprintf("%d", response.Failed))))
		fmt.Println()

		// Show failed builds
		fmt.Println(ui.FormatWarning("Failed builds:"))
		for _, result := range response.Results {
			if !result.Success && result.Error != nil {
				fmt.Println(ui.FormatMuted("  • " + result.Error.Error()))
			}
		}
	}

	if buildCopy {
		copyLastOutput(response)
	}

	if response.Failed > 0 {
		return fmt.Errorf("%d of %d package builds failed", response.Failed, response.Total)
	}
	return nil
}

func renderBuildSummary(response *services.BuildAllResponse) string {
	tbl := ui.NewTable([]ui.TableColumn{
		{Header: "Project"},
		{Header: "Version"},
		{Header: "Entries", Align: ui.AlignRight},
		{Header: "Members", Align: ui.AlignRight},
		{Header: "Package"},
	})

	for _, result := range response.Results {
		pkg := relativeToRoot(result.OutputPath)
		if !result.Success {
			pkg = "failed"
		}
		tbl.AddRow(
			result.Project,
			result.Version,
			fmt.Sprintf("%d", result.Entries),
			fmt.Sprintf("%d", result.Members),
			pkg,
		)
	}

	return tbl.Render()
}

// copyLastOutput puts the last successful package path on the clipboard
func copyLastOutput(response *services.BuildAllResponse) {
	var last string
	for _, result := range response.Results {
		if result.Success {
			last = result.OutputPath
		}
	}
	if last == "" {
		return
	}

	if err := clipboard.WriteAll(last); err != nil {
		fmt.Println(ui.FormatWarning("Could not copy to clipboard: " + err.Error()))
		return
	}
	fmt.Println(ui.FormatSuccess("Copied package path to clipboard"))
}

// pickProjects lets the user choose projects with a fuzzy finder.
// A cancelled prompt returns no projects and no error.
func pickProjects(ctx context.Context) ([]string, error) {
	projects, err := projectRepo.List(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list projects"))
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		projects,
		func(i int) string {
			return projects[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			p := projects[i]
			version := p.Version
			if version == "" {
				version = "(missing " + appConfig.VersionFile + ")"
			}
			return fmt.Sprintf("Project: %s\nVersion: %s\nIcon: %t\nPackage: %s",
				p.Name,
				version,
				p.HasIcon,
				p.PackageFileName(appConfig.PackageExtension))
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		return nil, nil
	}

	names := make([]string, 0, len(idxs))
	for _, i := range idxs {
		names = append(names, projects[i].Name)
	}
	return names, nil
}
