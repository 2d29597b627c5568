package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
)

// PixelReader reads back the render target in use. *gfx.Gfx implements it.
type PixelReader interface {
	RenderTargetAttrs() gfx.DisplayAttrs
	ReadPixels(buf []byte)
}

// ScreenshotCapture handles screenshot capture functionality.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	seq       atomic.Uint32
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// Capture reads back the current render target and writes it as PNG. It
// stalls the GPU and should not run every frame.
func (sc *ScreenshotCapture) Capture(r PixelReader) (string, error) {
	attrs := r.RenderTargetAttrs()
	w, h := attrs.FramebufferWidth, attrs.FramebufferHeight
	format := attrs.ColorPixelFormat
	if format != gfx.RGBA8 && format != gfx.RGB8 {
		return "", fmt.Errorf("cannot capture %s render target", format)
	}

	pixels := make([]byte, w*h*format.ByteSize())
	r.ReadPixels(pixels)
	return sc.CaptureFromPixels(pixels, w, h, format)
}

// CaptureFromPixels captures a screenshot from raw RGBA8 or RGB8 pixel
// data. The image is flipped vertically since OpenGL has origin at
// bottom-left.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int, format gfx.PixelFormat) (string, error) {
	bpp := format.ByteSize()
	if len(pixels) != width*height*bpp {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*bpp, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	switch format {
	case gfx.RGBA8:
		copy(img.Pix, pixels)
	case gfx.RGB8:
		for i := 0; i < width*height; i++ {
			copy(img.Pix[i*4:i*4+3], pixels[i*3:i*3+3])
			img.Pix[i*4+3] = 0xFF
		}
	default:
		return "", fmt.Errorf("unsupported pixel format %s", format)
	}
	texture.FlipVertical(img)

	return sc.CaptureFromImage(img)
}

// CaptureFromImage captures a screenshot from an existing image.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving. A
// sequence number keeps captures within the same second apart.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%03d.png", sc.prefix, timestamp, sc.seq.Add(1))
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
