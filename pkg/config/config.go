package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Layout
	AssetsRoot string `yaml:"assets_root"`
	BuildsDir  string `yaml:"builds_dir"`
	PathRoot   string `yaml:"path_root"`

	// Package conventions
	MetaSuffix       string `yaml:"meta_suffix"`
	IconName         string `yaml:"icon_name"`
	VersionFile      string `yaml:"version_file"`
	PackageExtension string `yaml:"package_extension"`

	// Build
	MaxWorkers       int    `yaml:"max_workers"`
	CompressionLevel string `yaml:"compression_level"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	// Watch
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		AssetsRoot:       filepath.Join("Assets", "Gorialis"),
		BuildsDir:        "Builds",
		PathRoot:         "",
		MetaSuffix:       ".meta",
		IconName:         ".icon.png",
		VersionFile:      "version.txt",
		PackageExtension: "unitypackage",
		MaxWorkers:       1,
		CompressionLevel: "default",
		ColorTheme:       "auto",
		LogLevel:         "warn",
		LogFormat:        "text",
		WatchDebounceMS:  500,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Try to read the file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	defaults := DefaultConfig()
	if cfg.AssetsRoot == "" {
		cfg.AssetsRoot = defaults.AssetsRoot
	}
	if cfg.BuildsDir == "" {
		cfg.BuildsDir = defaults.BuildsDir
	}
	if cfg.MetaSuffix == "" {
		cfg.MetaSuffix = defaults.MetaSuffix
	}
	if cfg.IconName == "" {
		cfg.IconName = defaults.IconName
	}
	if cfg.VersionFile == "" {
		cfg.VersionFile = defaults.VersionFile
	}
	if cfg.PackageExtension == "" {
		cfg.PackageExtension = defaults.PackageExtension
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaults.MaxWorkers
	}
	if cfg.CompressionLevel == "" {
		cfg.CompressionLevel = defaults.CompressionLevel
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = defaults.ColorTheme
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = defaults.WatchDebounceMS
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would produce broken packages
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.MetaSuffix, ".") || len(c.MetaSuffix) < 2 {
		return fmt.Errorf("invalid meta_suffix %q: must start with a dot", c.MetaSuffix)
	}
	for field, name := range map[string]string{"icon_name": c.IconName, "version_file": c.VersionFile} {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("invalid %s %q: must be a bare file name", field, name)
		}
	}
	if strings.HasSuffix(c.IconName, c.MetaSuffix) || strings.HasSuffix(c.VersionFile, c.MetaSuffix) {
		return fmt.Errorf("icon_name and version_file must not end in %s", c.MetaSuffix)
	}
	if !isValidTheme(c.ColorTheme) {
		return fmt.Errorf("invalid color_theme %q", c.ColorTheme)
	}
	return nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidTheme checks if the color theme is valid
func isValidTheme(theme string) bool {
	validThemes := []string{"auto", "dark", "light", "none"}
	for _, valid := range validThemes {
		if theme == valid {
			return true
		}
	}
	return false
}
