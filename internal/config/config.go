// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Config holds all settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Resources ResourcesConfig `yaml:"resources"`
	Assets    AssetsConfig    `yaml:"assets"`
	Demo      DemoConfig      `yaml:"demo"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Title       string `yaml:"title"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Fullscreen  bool   `yaml:"fullscreen"`
	VSync       bool   `yaml:"vsync"`
	FPSLimit    int    `yaml:"fps_limit"`
	Samples     int    `yaml:"samples"`
	ColorFormat string `yaml:"color_format"`
	DepthFormat string `yaml:"depth_format"`
}

// ResourcesConfig holds resource pool sizing. Zero pool sizes use
// gfx.DefaultPoolSize.
type ResourcesConfig struct {
	MeshPoolSize          int `yaml:"mesh_pool_size"`
	TexturePoolSize       int `yaml:"texture_pool_size"`
	ShaderPoolSize        int `yaml:"shader_pool_size"`
	ProgramBundlePoolSize int `yaml:"program_bundle_pool_size"`
	DrawStatePoolSize     int `yaml:"draw_state_pool_size"`
	LabelStackCapacity    int `yaml:"label_stack_capacity"`
	RegistryCapacity      int `yaml:"registry_capacity"`
}

// AssetsConfig holds asset source settings.
type AssetsConfig struct {
	Dirs    []string      `yaml:"dirs"`     // Searched last to first
	BaseURL string        `yaml:"base_url"` // Searched before Dirs when set
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
	CacheMB int           `yaml:"cache_mb"`
	Watch   bool          `yaml:"watch"`
}

// DemoConfig holds settings of the demo application.
type DemoConfig struct {
	Headless      bool   `yaml:"headless"`
	Frames        int    `yaml:"frames"` // 0 runs until quit
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Title:       "midgard-gfx",
			Width:       640,
			Height:      400,
			Fullscreen:  false,
			VSync:       true,
			FPSLimit:    0,
			Samples:     1,
			ColorFormat: "rgb8",
			DepthFormat: "d24s8",
		},
		Resources: ResourcesConfig{
			LabelStackCapacity: 256,
			RegistryCapacity:   256,
		},
		Assets: AssetsConfig{
			Dirs:    []string{"data"},
			Workers: 4,
			Timeout: 10 * time.Second,
			CacheMB: 64,
		},
		Demo: DemoConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// GfxSetup converts the graphics and resources sections to a gfx.Setup.
func (c *Config) GfxSetup() (gfx.Setup, error) {
	s := gfx.DefaultSetup()
	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		return s, fmt.Errorf("invalid display size %dx%d", g.Width, g.Height)
	}

	color, err := gfx.ParsePixelFormat(g.ColorFormat)
	if err != nil {
		return s, fmt.Errorf("graphics.color_format: %w", err)
	}
	if !color.IsColorRenderTarget() {
		return s, fmt.Errorf("graphics.color_format: %s is not a color format", color)
	}
	depth := gfx.PixelFormatNone
	if g.DepthFormat != "" && g.DepthFormat != "none" {
		if depth, err = gfx.ParsePixelFormat(g.DepthFormat); err != nil {
			return s, fmt.Errorf("graphics.depth_format: %w", err)
		}
		if !depth.IsDepth() {
			return s, fmt.Errorf("graphics.depth_format: %s is not a depth format", depth)
		}
	}

	s.Title = g.Title
	s.Width, s.Height = g.Width, g.Height
	s.Windowed = !g.Fullscreen
	s.SwapInterval = 0
	if g.VSync {
		s.SwapInterval = 1
	}
	s.ColorFormat, s.DepthFormat = color, depth
	s.Samples = max(g.Samples, 1)

	r := c.Resources
	pools := []struct {
		typ  resource.Type
		size int
	}{
		{gfx.MeshResource, r.MeshPoolSize},
		{gfx.TextureResource, r.TexturePoolSize},
		{gfx.ShaderResource, r.ShaderPoolSize},
		{gfx.ProgramBundleResource, r.ProgramBundlePoolSize},
		{gfx.DrawStateResource, r.DrawStatePoolSize},
	}
	for _, p := range pools {
		if p.size > 0 {
			s.SetPoolSize(p.typ, p.size)
		}
	}
	if r.LabelStackCapacity > 0 {
		s.ResourceLabelStackCapacity = r.LabelStackCapacity
	}
	if r.RegistryCapacity > 0 {
		s.ResourceRegistryCapacity = r.RegistryCapacity
	}
	return s, nil
}
