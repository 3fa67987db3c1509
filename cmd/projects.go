package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/pkg/ui"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "List the projects under the assets root",
	Aliases: []string{"ls"},
	RunE:    runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireAssetsRoot(); err != nil {
		return err
	}

	projects, err := projectRepo.List(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list projects"))
		return err
	}

	if len(projects) == 0 {
		fmt.Println(ui.FormatWarning("No projects found under " + relativeToRoot(appWorkspace.AssetsPath)))
		return nil
	}

	tbl := ui.NewTable([]ui.TableColumn{
		{Header: "Project"},
		{Header: "Version"},
		{Header: "Icon"},
		{Header: "Package"},
	})

	for _, p := range projects {
		version, pkg := p.Version, p.PackageFileName(appConfig.PackageExtension)
		if version == "" {
			version = ui.StyleWarning.Render("missing")
			pkg = "-"
		}
		icon := "yes"
		if !p.HasIcon {
			icon = ui.StyleWarning.Render("missing")
		}
		tbl.AddRow(p.Name, version, icon, pkg)
	}

	fmt.Println(tbl.Render())
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d project(s)", len(projects))))
	return nil
}
