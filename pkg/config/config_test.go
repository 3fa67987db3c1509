package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.MetaSuffix != ".meta" {
		t.Errorf("expected default MetaSuffix='.meta', got %q", cfg.MetaSuffix)
	}

	if cfg.IconName != ".icon.png" {
		t.Errorf("expected default IconName='.icon.png', got %q", cfg.IconName)
	}

	if cfg.PackageExtension != "unitypackage" {
		t.Errorf("expected default PackageExtension='unitypackage', got %q", cfg.PackageExtension)
	}

	if cfg.MaxWorkers != 1 {
		t.Errorf("expected default MaxWorkers=1, got %d", cfg.MaxWorkers)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/.upkg.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.BuildsDir != "Builds" {
		t.Errorf("expected default BuildsDir='Builds', got %q", cfg.BuildsDir)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".upkg.yaml")

	cfg := DefaultConfig()
	cfg.AssetsRoot = "Assets/Vendor"
	cfg.PathRoot = "."
	cfg.MaxWorkers = 4
	cfg.CompressionLevel = "best"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.AssetsRoot != cfg.AssetsRoot {
		t.Errorf("AssetsRoot: expected %q, got %q", cfg.AssetsRoot, loadedCfg.AssetsRoot)
	}

	if loadedCfg.PathRoot != cfg.PathRoot {
		t.Errorf("PathRoot: expected %q, got %q", cfg.PathRoot, loadedCfg.PathRoot)
	}

	if loadedCfg.MaxWorkers != cfg.MaxWorkers {
		t.Errorf("MaxWorkers: expected %d, got %d", cfg.MaxWorkers, loadedCfg.MaxWorkers)
	}

	if loadedCfg.CompressionLevel != "best" {
		t.Errorf("CompressionLevel: expected best, got %q", loadedCfg.CompressionLevel)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".upkg.yaml")

	yamlContent := `assets_root: Assets/Other
max_workers: 0
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.AssetsRoot != "Assets/Other" {
		t.Errorf("expected AssetsRoot='Assets/Other', got %q", cfg.AssetsRoot)
	}

	if cfg.MaxWorkers != 1 {
		t.Errorf("expected MaxWorkers to default to 1, got %d", cfg.MaxWorkers)
	}

	if cfg.VersionFile != "version.txt" {
		t.Errorf("expected VersionFile default, got %q", cfg.VersionFile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "assets_root: [oops\n"},
		{"suffix without dot", "meta_suffix: meta\n"},
		{"icon with path", "icon_name: sub/.icon.png\n"},
		{"version file is a sidecar", "version_file: version.meta\n"},
		{"unknown theme", "color_theme: neon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".upkg.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
