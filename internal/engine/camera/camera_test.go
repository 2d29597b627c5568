package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX, c.RotationY = 0, 0
	c.Distance = 5

	if p := c.Position(); !p.ApproxEqual(mgl32.Vec3{0, 0, 5}) {
		t.Errorf("expected camera on +Z, got %v", p)
	}

	// The center projects to the origin of view space, in front of the camera.
	v := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !v.Vec3().ApproxEqual(mgl32.Vec3{0, 0, -5}) {
		t.Errorf("expected center 5 units ahead, got %v", v)
	}
}

func TestOrbitClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", c.MaxPitch, c.RotationX)
	}
	c.HandleZoom(100)
	if c.Distance != c.MinDistance {
		t.Errorf("expected distance clamped to %v, got %v", c.MinDistance, c.Distance)
	}
	c.HandleZoom(-1000)
	if c.Distance != c.MaxDistance {
		t.Errorf("expected distance clamped to %v, got %v", c.MaxDistance, c.Distance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{3, 2, 1})
	if !c.Center.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Errorf("expected center (1,1,0), got %v", c.Center)
	}
	if c.Distance != 6 {
		t.Errorf("expected distance 6, got %v", c.Distance)
	}
}
