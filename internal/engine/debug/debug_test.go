package debug

import (
	"image/png"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

func TestWireBox(t *testing.T) {
	s, data := WireBox(resource.NonShared(), mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	if s.NumVertices != BBoxWireframeVertexCount {
		t.Errorf("expected %d vertices, got %d", BBoxWireframeVertexCount, s.NumVertices)
	}
	if len(data) != s.VertexDataSize() {
		t.Errorf("expected %d bytes, got %d", s.VertexDataSize(), len(data))
	}
	if len(s.PrimGroups) != 1 || s.PrimGroups[0].PrimType != gfx.Lines {
		t.Errorf("expected one line group, got %+v", s.PrimGroups)
	}
}

type fakeReader struct {
	attrs gfx.DisplayAttrs
}

func (f fakeReader) RenderTargetAttrs() gfx.DisplayAttrs { return f.attrs }

// ReadPixels fills the bottom row red and everything else blue.
func (f fakeReader) ReadPixels(buf []byte) {
	w := f.attrs.FramebufferWidth
	for i := 0; i < len(buf); i += 3 {
		if i/3 < w {
			buf[i] = 0xFF
		} else {
			buf[i+2] = 0xFF
		}
	}
}

func TestCapture(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "shot")
	r := fakeReader{attrs: gfx.DisplayAttrs{FramebufferWidth: 4, FramebufferHeight: 3, ColorPixelFormat: gfx.RGB8}}

	name, err := sc.Capture(r)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	// The bottom GL row ends up at the bottom of the image.
	if r, _, b, _ := img.At(0, 2).RGBA(); r != 0xFFFF || b != 0 {
		t.Errorf("expected red bottom row, got r=%x b=%x", r, b)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b != 0xFFFF {
		t.Errorf("expected blue top row, got r=%x b=%x", r, b)
	}
}

func TestCaptureRejectsFloatTargets(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "shot")
	r := fakeReader{attrs: gfx.DisplayAttrs{FramebufferWidth: 1, FramebufferHeight: 1, ColorPixelFormat: gfx.RGBA32F}}
	if _, err := sc.Capture(r); err == nil {
		t.Error("expected error for float render target")
	}
}

func TestFilenamesAreUnique(t *testing.T) {
	sc := NewScreenshotCapture("", "shot")
	if a, b := sc.GenerateFilename(), sc.GenerateFilename(); a == b {
		t.Errorf("expected distinct names, got %s twice", a)
	}
}
