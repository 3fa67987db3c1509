package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/internal/adapters/archive"
	"github.com/kamal-hamza/upkg/pkg/ui"
)

var (
	inspectSort string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <package>",
	Short: "List the contents of a built package",
	Long: `Decode a .unitypackage and list every asset it carries: the GUID, the
logical path and the size of the stored blobs.

Examples:
  upkg inspect Builds/MyProject.0.1.0.unitypackage
  upkg inspect Builds/MyProject.0.1.0.unitypackage --sort path`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSort, "sort", "archive", "Order of rows: archive, path, guid")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		fmt.Println(ui.FormatError("Cannot open package: " + path))
		return err
	}
	defer f.Close()

	reader, err := archive.NewReader(f)
	if err != nil {
		fmt.Println(ui.FormatError("Not a gzip-compressed package: " + path))
		return err
	}
	defer reader.Close()

	var members []archive.Member
	for {
		m, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		members = append(members, *m)
	}

	contents := archive.Inventory(members)
	if err := sortAssets(contents.Assets, inspectSort); err != nil {
		return err
	}

	fmt.Println(ui.FormatTitle(path))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Stream name", reader.GzipName()))
	fmt.Println(ui.RenderKeyValue("Members", fmt.Sprintf("%d", len(members))))
	fmt.Println(ui.RenderKeyValue("Assets", fmt.Sprintf("%d", len(contents.Assets))))
	fmt.Println()

	tbl := ui.NewTable([]ui.TableColumn{
		{Header: "GUID"},
		{Header: "Path"},
		{Header: "Kind"},
		{Header: "Size", Align: ui.AlignRight},
		{Header: "Meta", Align: ui.AlignRight},
	})
	for _, a := range contents.Assets {
		kind, size := "dir", "-"
		if a.HasContent {
			kind, size = "file", ui.FormatBytes(int64(len(a.Content)))
		}
		tbl.AddRow(a.Identifier, a.Pathname, kind, size, ui.FormatBytes(int64(len(a.Meta))))
	}
	for _, m := range contents.Loose {
		tbl.AddRow("", m.Name, "root", ui.FormatBytes(int64(len(m.Data))), "-")
	}
	fmt.Println(tbl.Render())

	return nil
}

func sortAssets(assets []archive.Asset, order string) error {
	switch order {
	case "", "archive":
	case "path":
		sort.SliceStable(assets, func(i, j int) bool { return assets[i].Pathname < assets[j].Pathname })
	case "guid":
		sort.SliceStable(assets, func(i, j int) bool { return assets[i].Identifier < assets[j].Identifier })
	default:
		return fmt.Errorf("invalid sort order %q (want archive, path or guid)", order)
	}
	return nil
}
