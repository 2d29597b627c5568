// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Window wraps SDL2 window and OpenGL context. It implements gfx.Display
// with the live window and drawable sizes.
type Window struct {
	setup     gfx.Setup
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	log       *zap.Logger
}

var _ gfx.Display = (*Window)(nil)

// New creates a window with an OpenGL 4.1 core context as described by
// setup.
func New(setup gfx.Setup) (*Window, error) {
	w := &Window{
		setup: setup,
		log:   logger.Named("window"),
	}

	w.log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	switch setup.DepthFormat {
	case gfx.D16:
		sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 16)
	case gfx.D32:
		sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 32)
	case gfx.D24S8:
		sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
		sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 8)
	default:
		sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 0)
	}
	if setup.Samples > 1 {
		sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, 1)
		sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, setup.Samples)
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if !setup.Windowed {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		setup.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(setup.Width),
		int32(setup.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := sdl.GLSetSwapInterval(setup.SwapInterval); err != nil {
		w.log.Warn("failed to set swap interval", zap.Int("interval", setup.SwapInterval), zap.Error(err))
	}

	fbw, fbh := w.sdlWindow.GLGetDrawableSize()
	w.log.Info("window created",
		zap.String("title", setup.Title),
		zap.Int("width", setup.Width),
		zap.Int("height", setup.Height),
		zap.Int32("drawable_width", fbw),
		zap.Int32("drawable_height", fbh),
		zap.Bool("windowed", setup.Windowed),
		zap.Int("swap_interval", setup.SwapInterval),
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// SwapBuffers presents the default framebuffer.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// GetSize returns the current window size.
func (w *Window) GetSize() (int, int) {
	width, height := w.sdlWindow.GetSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// DisplayAttrs implements gfx.Display. The framebuffer size differs from
// the window size on high-DPI displays.
func (w *Window) DisplayAttrs() gfx.DisplayAttrs {
	attrs := w.setup.DisplayAttrs()
	ww, wh := w.sdlWindow.GetSize()
	fbw, fbh := w.sdlWindow.GLGetDrawableSize()
	x, y := w.sdlWindow.GetPosition()
	attrs.WindowWidth, attrs.WindowHeight = int(ww), int(wh)
	attrs.FramebufferWidth, attrs.FramebufferHeight = int(fbw), int(fbh)
	attrs.WindowPosX, attrs.WindowPosY = int(x), int(y)
	return attrs
}
