package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/upkg/internal/adapters/archive"
	"github.com/kamal-hamza/upkg/internal/adapters/repository"
	"github.com/kamal-hamza/upkg/internal/core/ports"
	"github.com/kamal-hamza/upkg/internal/core/services"
	"github.com/kamal-hamza/upkg/internal/logging"
	"github.com/kamal-hamza/upkg/pkg/config"
	"github.com/kamal-hamza/upkg/pkg/ui"
	"github.com/kamal-hamza/upkg/pkg/workspace"
)

var (
	// Global flags
	rootFlag     string
	configFlag   string
	logLevelFlag string
	verboseFlag  bool

	// Global workspace and configuration
	appWorkspace *workspace.Workspace
	appConfig    *config.Config
	appLogger    *slog.Logger

	// Services
	buildService   *services.BuildService
	revisionSource ports.RevisionSource

	// Repositories
	projectRepo *repository.FileProjectRepository
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "upkg",
	Short: "upkg - Unity package builder",
	Long: ui.StyleTitle.Render("upkg") + " - Unity Package Builder\n\n" +
		"Turns versioned asset directories into .unitypackage archives.\n" +
		"Every asset is keyed by the GUID in its .meta sidecar, so packages import cleanly\n" +
		"no matter where the project lives.",
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Repository root (default $"+workspace.EnvRoot+" or the working directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default <root>/"+workspace.ConfigFileName+")")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print every entry as it is added")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version needs nothing from the repository
	if cmd.Name() == "version" {
		return nil
	}

	ws, err := workspace.New(rootFlag)
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	ws.UseConfigFile(configFlag)
	appWorkspace = ws

	cfg, err := config.Load(appWorkspace.ConfigPath)
	if err != nil {
		fmt.Println(ui.FormatError("Invalid configuration: " + appWorkspace.ConfigPath))
		return err
	}
	appConfig = cfg
	appWorkspace.Configure(cfg.AssetsRoot, cfg.BuildsDir)

	ui.Configure(cfg.ColorTheme, os.Stdout)

	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger, err := logging.New(os.Stderr, logging.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	appLogger = logger

	compression, err := archive.ParseLevel(cfg.CompressionLevel)
	if err != nil {
		return err
	}

	// Initialize repositories
	projectRepo = repository.NewFileProjectRepository(appWorkspace.AssetsPath, cfg.VersionFile, cfg.IconName)

	// Initialize services
	revisionSource = services.NewGitService(appWorkspace.RootPath)

	var reporter ports.Reporter
	if verboseFlag {
		reporter = ui.NewConsoleReporter(os.Stdout, true)
	}
	buildService = services.NewBuildService(projectRepo, reporter, appLogger, services.BuildOptions{
		MetaSuffix:  cfg.MetaSuffix,
		IconName:    cfg.IconName,
		VersionFile: cfg.VersionFile,
		Extension:   cfg.PackageExtension,
		PathRoot:    resolvePathRoot(cfg.PathRoot),
		Compression: compression,
	})

	return nil
}

// requireAssetsRoot stops commands that need projects when the assets root is missing
func requireAssetsRoot() error {
	if appWorkspace.Exists() {
		return nil
	}
	fmt.Println(ui.FormatError("Assets root not found: " + appWorkspace.AssetsPath))
	fmt.Println(ui.FormatInfo("Set assets_root in " + appWorkspace.ConfigPath + " or pass --root"))
	return fmt.Errorf("assets root %s does not exist", appWorkspace.AssetsPath)
}
