package app

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-gfx/internal/config"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

func headlessConfig(t *testing.T, frames int) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "textures"), 0o755); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(LogoPath)), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Demo.Headless = true
	cfg.Demo.Frames = frames
	cfg.Demo.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	cfg.Assets.Dirs = []string{dir}
	return cfg
}

func TestHeadlessRun(t *testing.T) {
	a, err := New(headlessConfig(t, 3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", a.Frames())
	}

	dev := a.Device().(*recorder.Device)
	// Box and CRT pass every frame; the sprite only once the logo loaded.
	if n := dev.Count("DrawArrays"); n != 3 {
		t.Errorf("expected 3 box draws, got %d", n)
	}
	if n := dev.Count("DrawElements"); n < 3 {
		t.Errorf("expected at least 3 quad draws, got %d", n)
	}

	shots, err := filepath.Glob(filepath.Join(a.cfg.Demo.ScreenshotDir, "*.png"))
	if err != nil || len(shots) != 1 {
		t.Errorf("expected one screenshot, got %v (%v)", shots, err)
	}
}

func TestSceneResourcesAreValid(t *testing.T) {
	a, err := New(headlessConfig(t, 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	g := a.Gfx()
	ids := map[string]resource.Id{
		"canvas": a.scene.canvas,
		"box":    a.scene.box,
		"sprite": a.scene.sprite,
		"crt":    a.scene.crt,
	}
	for name, id := range ids {
		if s := g.QueryResourceInfo(id).State; s != resource.Valid {
			t.Errorf("%s: expected Valid, got %s", name, s)
		}
	}
	if g.QueryFreeResourceSlots(gfx.MeshResource) != g.Setup().PoolSize(gfx.MeshResource)-2 {
		t.Errorf("expected box and quad meshes, got %d free", g.QueryFreeResourceSlots(gfx.MeshResource))
	}
}

func TestCloseReleasesDeviceObjects(t *testing.T) {
	a, err := New(headlessConfig(t, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	dev := a.Device().(*recorder.Device)
	a.Close()

	if n := dev.NumLive(""); n != 0 {
		t.Errorf("expected all device objects released, %d live", n)
	}
}

func TestInvalidGraphicsConfig(t *testing.T) {
	cfg := headlessConfig(t, 1)
	cfg.Graphics.ColorFormat = "bogus"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for bad color format")
	}
}
