package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 640 {
		t.Errorf("expected width 640, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 400 {
		t.Errorf("expected height 400, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test asset defaults
	if len(cfg.Assets.Dirs) != 1 || cfg.Assets.Dirs[0] != "data" {
		t.Errorf("expected asset dirs [data], got %v", cfg.Assets.Dirs)
	}
	if cfg.Assets.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Assets.Timeout)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestDefaultGfxSetup(t *testing.T) {
	s, err := Default().GfxSetup()
	if err != nil {
		t.Fatalf("GfxSetup: %v", err)
	}
	want := gfx.DefaultSetup()
	if s.Width != want.Width || s.Height != want.Height {
		t.Errorf("expected %dx%d, got %dx%d", want.Width, want.Height, s.Width, s.Height)
	}
	if s.ColorFormat != gfx.RGB8 || s.DepthFormat != gfx.D24S8 {
		t.Errorf("expected rgb8/d24s8, got %s/%s", s.ColorFormat, s.DepthFormat)
	}
	if !s.Windowed || s.SwapInterval != 1 {
		t.Errorf("expected windowed with vsync, got windowed=%v interval=%d", s.Windowed, s.SwapInterval)
	}
	if s.PoolSize(gfx.MeshResource) != gfx.DefaultPoolSize {
		t.Errorf("expected default mesh pool size, got %d", s.PoolSize(gfx.MeshResource))
	}
}

func TestGfxSetup(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Fullscreen = true
	cfg.Graphics.VSync = false
	cfg.Graphics.ColorFormat = "rgba8"
	cfg.Graphics.DepthFormat = "none"
	cfg.Resources.MeshPoolSize = 32
	cfg.Resources.RegistryCapacity = 1024

	s, err := cfg.GfxSetup()
	if err != nil {
		t.Fatalf("GfxSetup: %v", err)
	}
	if s.Windowed || s.SwapInterval != 0 {
		t.Errorf("expected fullscreen without vsync, got windowed=%v interval=%d", s.Windowed, s.SwapInterval)
	}
	if s.ColorFormat != gfx.RGBA8 || s.DepthFormat != gfx.PixelFormatNone {
		t.Errorf("expected rgba8/none, got %s/%s", s.ColorFormat, s.DepthFormat)
	}
	if s.PoolSize(gfx.MeshResource) != 32 {
		t.Errorf("expected mesh pool 32, got %d", s.PoolSize(gfx.MeshResource))
	}
	if s.PoolSize(gfx.TextureResource) != gfx.DefaultPoolSize {
		t.Errorf("expected default texture pool, got %d", s.PoolSize(gfx.TextureResource))
	}
	if s.ResourceRegistryCapacity != 1024 {
		t.Errorf("expected registry capacity 1024, got %d", s.ResourceRegistryCapacity)
	}
}

func TestGfxSetupInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"unknown color format", func(c *Config) { c.Graphics.ColorFormat = "rgb9" }},
		{"depth as color", func(c *Config) { c.Graphics.ColorFormat = "d16" }},
		{"color as depth", func(c *Config) { c.Graphics.DepthFormat = "rgba8" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if _, err := cfg.GfxSetup(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144
  color_format: rgba8

resources:
  mesh_pool_size: 16
  draw_state_pool_size: 64

assets:
  dirs: ["base", "mods"]
  base_url: "https://cdn.example.com/assets"
  workers: 8
  timeout: 5s
  cache_mb: 32
  watch: true

demo:
  headless: true
  frames: 120

logging:
  level: "debug"
  log_file: "gfx.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Graphics.FPSLimit)
	}
	if cfg.Graphics.ColorFormat != "rgba8" {
		t.Errorf("expected color format rgba8, got %s", cfg.Graphics.ColorFormat)
	}
	// Unset keys keep their defaults.
	if cfg.Graphics.DepthFormat != "d24s8" {
		t.Errorf("expected default depth format, got %s", cfg.Graphics.DepthFormat)
	}

	if cfg.Resources.MeshPoolSize != 16 || cfg.Resources.DrawStatePoolSize != 64 {
		t.Errorf("unexpected pool sizes %+v", cfg.Resources)
	}

	if strings.Join(cfg.Assets.Dirs, ",") != "base,mods" {
		t.Errorf("expected dirs base,mods, got %v", cfg.Assets.Dirs)
	}
	if cfg.Assets.BaseURL != "https://cdn.example.com/assets" {
		t.Errorf("unexpected base url %s", cfg.Assets.BaseURL)
	}
	if cfg.Assets.Workers != 8 || cfg.Assets.Timeout != 5*time.Second || cfg.Assets.CacheMB != 32 || !cfg.Assets.Watch {
		t.Errorf("unexpected assets config %+v", cfg.Assets)
	}

	if !cfg.Demo.Headless || cfg.Demo.Frames != 120 {
		t.Errorf("unexpected demo config %+v", cfg.Demo)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "gfx.log" {
		t.Errorf("expected log file 'gfx.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"GFX_WIDTH":          "800",
		"GFX_VSYNC":          "false",
		"GFX_ASSETS_TIMEOUT": "250ms",
		"GFX_ASSETS_DIRS":    "a" + string(os.PathListSeparator) + "b",
		"GFX_HEADLESS":       "1",
		"GFX_LOG_LEVEL":      "warn",
		"GFX_UNKNOWN":        "ignored",
	}
	if err := applyEnv(cfg, env); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}

	if cfg.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync off")
	}
	if cfg.Assets.Timeout != 250*time.Millisecond {
		t.Errorf("expected 250ms timeout, got %v", cfg.Assets.Timeout)
	}
	if strings.Join(cfg.Assets.Dirs, ",") != "a,b" {
		t.Errorf("expected dirs a,b, got %v", cfg.Assets.Dirs)
	}
	if !cfg.Demo.Headless {
		t.Error("expected headless")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, map[string]string{"GFX_WIDTH": "wide", "GFX_VSYNC": "maybe"})
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	if !strings.Contains(err.Error(), "GFX_WIDTH") || !strings.Contains(err.Error(), "GFX_VSYNC") {
		t.Errorf("expected both variables in error, got %v", err)
	}
	if cfg.Graphics.Width != 640 {
		t.Errorf("expected width unchanged, got %d", cfg.Graphics.Width)
	}
}

func TestReadEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "GFX_WIDTH=1024\nGFX_HEIGHT=768\nOTHER=skip\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GFX_HEIGHT", "600")

	env, err := readEnv(envPath)
	if err != nil {
		t.Fatalf("readEnv: %v", err)
	}
	if env["GFX_WIDTH"] != "1024" {
		t.Errorf("expected width from .env, got %q", env["GFX_WIDTH"])
	}
	// The process environment wins over .env.
	if env["GFX_HEIGHT"] != "600" {
		t.Errorf("expected height from environment, got %q", env["GFX_HEIGHT"])
	}
	if _, ok := env["OTHER"]; ok {
		t.Error("expected non GFX_ variables to be skipped")
	}

	if _, err := readEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "headless and frames flags",
			setup: func() {
				*flagHeadless = true
				*flagFrames = 3
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Demo.Headless || cfg.Demo.Frames != 3 {
					t.Errorf("expected headless for 3 frames, got %+v", cfg.Demo)
				}
			},
			teardown: func() {
				*flagHeadless = false
				*flagFrames = -1
			},
		},
		{
			name:  "assets flag",
			setup: func() { *flagAssets = "extra" },
			verify: func(t *testing.T, cfg *Config) {
				if got := cfg.Assets.Dirs[len(cfg.Assets.Dirs)-1]; got != "extra" {
					t.Errorf("expected extra as highest priority dir, got %s", got)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
  samples: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte("GFX_WIDTH=1700\nGFX_HEIGHT=1000\n"), 0644); err != nil {
		t.Fatalf("failed to write test env: %v", err)
	}

	*flagConfig = configPath
	*flagEnv = envPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagEnv = ".env"
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not .env (1700) or file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from .env (1000) since no flag override
	if cfg.Graphics.Height != 1000 {
		t.Errorf("expected height 1000 from .env, got %d", cfg.Graphics.Height)
	}

	// Samples should be from file
	if cfg.Graphics.Samples != 2 {
		t.Errorf("expected samples 2 from file, got %d", cfg.Graphics.Samples)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Graphics.Width = 1234
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Graphics.Width != 1234 {
		t.Errorf("expected width 1234, got %d", loaded.Graphics.Width)
	}
}
