package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/pkg/config"
	"github.com/kamal-hamza/upkg/pkg/ui"
)

var (
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the config file",
	RunE:  runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appWorkspace.ConfigPath)
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	source := appWorkspace.ConfigPath
	if _, err := os.Stat(source); os.IsNotExist(err) {
		source += " (not found, using defaults)"
	}

	fmt.Println(ui.RenderKeyValue("Config", source))
	fmt.Println(ui.RenderKeyValue("Root", appWorkspace.RootPath))
	fmt.Println()

	c := appConfig
	fmt.Println(ui.RenderKeyValue("assets_root", c.AssetsRoot))
	fmt.Println(ui.RenderKeyValue("builds_dir", c.BuildsDir))
	pathRoot := c.PathRoot
	if pathRoot == "" {
		pathRoot = ui.FormatMuted("(project root)")
	}
	fmt.Println(ui.RenderKeyValue("path_root", pathRoot))
	fmt.Println(ui.RenderKeyValue("meta_suffix", c.MetaSuffix))
	fmt.Println(ui.RenderKeyValue("icon_name", c.IconName))
	fmt.Println(ui.RenderKeyValue("version_file", c.VersionFile))
	fmt.Println(ui.RenderKeyValue("package_extension", c.PackageExtension))
	fmt.Println(ui.RenderKeyValue("max_workers", fmt.Sprintf("%d", c.MaxWorkers)))
	fmt.Println(ui.RenderKeyValue("compression_level", c.CompressionLevel))
	fmt.Println(ui.RenderKeyValue("color_theme", c.ColorTheme))
	fmt.Println(ui.RenderKeyValue("log_level", c.LogLevel))
	fmt.Println(ui.RenderKeyValue("log_format", c.LogFormat))
	fmt.Println(ui.RenderKeyValue("watch_debounce_ms", fmt.Sprintf("%d", c.WatchDebounceMS)))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := appWorkspace.ConfigPath
	if _, err := os.Stat(path); err == nil && !configInitForce {
		fmt.Println(ui.FormatWarning("Config file already exists: " + path))
		fmt.Println(ui.FormatInfo("Use --force to overwrite it"))
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		fmt.Println(ui.FormatError("Failed to write config"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Wrote " + relativeToRoot(path)))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := appWorkspace.ConfigPath

	// Ensure it exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s (run 'upkg config init')", path)
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
