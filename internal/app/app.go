// Package app implements the demo application: a scene rendered to an
// offscreen canvas and shown through a CRT filter.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/assets"
	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/engine/debug"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/glbackend"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/internal/engine/input"
	"github.com/Faultbox/midgard-gfx/internal/engine/runloop"
	"github.com/Faultbox/midgard-gfx/internal/engine/window"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// App is the demo application instance.
type App struct {
	cfg     *config.Config
	running bool
	frame   int
	log     *zap.Logger

	window *window.Window // nil when headless
	input  *input.Input
	dev    gfx.Device
	loop   *runloop.RunLoop
	gfx    *gfx.Gfx
	scene  *scene

	assets  *assets.Manager
	queue   *assets.Queue
	watcher *assets.Watcher
	shots   *debug.ScreenshotCapture
}

// New creates the application. Headless mode records device calls
// instead of opening a window.
func New(cfg *config.Config) (*App, error) {
	setup, err := cfg.GfxSetup()
	if err != nil {
		return nil, fmt.Errorf("invalid graphics config: %w", err)
	}

	a := &App{
		cfg:   cfg,
		log:   logger.Named("app"),
		loop:  runloop.New(),
		shots: debug.NewScreenshotCapture(cfg.Demo.ScreenshotDir, "gfxdemo"),
	}
	a.log.Info("initializing",
		zap.Int("width", setup.Width),
		zap.Int("height", setup.Height),
		zap.Bool("headless", cfg.Demo.Headless),
	)

	var display gfx.Display
	if cfg.Demo.Headless {
		a.dev = recorder.New()
		display = gfx.StaticDisplay{Attrs: setup.DisplayAttrs()}
	} else {
		// Window first, the GL context must exist before the device.
		a.window, err = window.New(setup)
		if err != nil {
			return nil, fmt.Errorf("failed to create window: %w", err)
		}
		a.dev, err = glbackend.New()
		if err != nil {
			a.window.Close()
			return nil, fmt.Errorf("failed to create device: %w", err)
		}
		a.input = input.New(sdl.BUTTON_LEFT)
		display = a.window
	}

	if err := a.initAssets(); err != nil {
		a.closeWindow()
		return nil, err
	}

	a.gfx = gfx.New(setup, a.dev, display, a.loop)
	a.scene = newScene(a.gfx, a.queue)

	a.log.Info("initialized")
	return a, nil
}

func (a *App) initAssets() error {
	ac := a.cfg.Assets
	a.assets = assets.NewManager(int64(ac.CacheMB) << 20)

	var watchDirs []string
	for _, dir := range ac.Dirs {
		if _, err := os.Stat(dir); err != nil {
			a.log.Warn("skipping asset dir", zap.String("dir", dir), zap.Error(err))
			continue
		}
		a.assets.AddSource(assets.NewDirSource(dir))
		watchDirs = append(watchDirs, dir)
	}
	if ac.BaseURL != "" {
		src, err := assets.NewHTTPSource(ac.BaseURL, nil)
		if err != nil {
			return fmt.Errorf("assets.base_url: %w", err)
		}
		a.assets.AddSource(src)
	}

	a.queue = assets.NewQueue(a.assets, ac.Workers, ac.Timeout)
	a.loop.Add(a.queue.Update)

	if ac.Watch && len(watchDirs) > 0 {
		w, err := assets.NewWatcher(watchDirs...)
		if err != nil {
			a.log.Warn("asset watching disabled", zap.Error(err))
		} else {
			a.watcher = w
			a.loop.Add(a.reloadChanged)
		}
	}
	return nil
}

// reloadChanged drops changed files from the asset cache and reloads the
// logo when it changed.
func (a *App) reloadChanged() {
	for _, path := range a.watcher.Drain() {
		a.assets.Invalidate(path)
		a.log.Info("asset changed", zap.String("path", path))
		if path == LogoPath {
			a.scene.loadLogo(a.gfx, a.queue)
		}
	}
}

// Run runs the frame loop until quit, or for the configured number of
// frames.
func (a *App) Run() error {
	a.running = true
	start := time.Now()
	lastTime := start
	frameCount := 0
	fpsTimer := start

	var frameBudget time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	a.log.Info("starting frame loop", zap.Int("frames", a.cfg.Demo.Frames))

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		capture := a.handleInput()

		a.scene.draw(a.gfx, float32(now.Sub(start).Seconds()))
		lastFrame := a.cfg.Demo.Frames > 0 && a.frame+1 >= a.cfg.Demo.Frames
		if capture || (lastFrame && a.cfg.Demo.ScreenshotDir != "") {
			if name, err := a.shots.Capture(a.gfx); err != nil {
				a.log.Warn("screenshot failed", zap.Error(err))
			} else {
				a.log.Info("screenshot saved", zap.String("file", name))
			}
		}
		a.gfx.CommitFrame()
		a.loop.Run()

		if a.window != nil {
			a.window.SwapBuffers()
		}

		a.frame++
		if lastFrame {
			a.running = false
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameBudget > 0 {
			if rest := frameBudget - time.Since(now); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	a.log.Info("frame loop finished", zap.Int("frames", a.frame))
	return nil
}

// handleInput processes window events and reports whether a screenshot
// was requested.
func (a *App) handleInput() bool {
	if a.input == nil {
		return false
	}
	if a.input.Update() {
		a.running = false
		return false
	}
	if w, h, ok := a.input.Resized(); ok {
		a.log.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
	}
	if dx, dy, ok := a.input.Drag(); ok {
		a.scene.cam.HandleDrag(float32(dx), float32(dy))
	}
	if w := a.input.Wheel(); w != 0 {
		a.scene.cam.HandleZoom(float32(w))
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		a.running = false
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_F11) {
		a.toggleDebugLog()
	}
	return a.input.IsKeyPressed(sdl.SCANCODE_F12)
}

func (a *App) toggleDebugLog() {
	lvl := "debug"
	if logger.Level() == "debug" {
		lvl = a.cfg.Logging.Level
		if lvl == "debug" {
			lvl = "info"
		}
	}
	if err := logger.SetLevel(lvl); err != nil {
		a.log.Warn("set log level", zap.Error(err))
		return
	}
	a.log.Info("log level changed", zap.String("level", lvl))
}

// Frames returns the number of frames rendered.
func (a *App) Frames() int {
	return a.frame
}

// Gfx returns the gfx instance.
func (a *App) Gfx() *gfx.Gfx {
	return a.gfx
}

// Device returns the device the app renders with.
func (a *App) Device() gfx.Device {
	return a.dev
}

// Close releases all resources.
func (a *App) Close() {
	a.log.Info("closing")

	if a.scene != nil {
		a.scene.destroy(a.gfx)
	}
	if a.gfx != nil {
		a.gfx.Discard()
	}
	if a.queue != nil {
		a.queue.Close()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if a.assets != nil {
		a.assets.Close()
	}
	a.closeWindow()
}

func (a *App) closeWindow() {
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}
