package gfx_test

import (
	"testing"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/internal/engine/runloop"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

type fixture struct {
	g    *gfx.Gfx
	dev  *recorder.Device
	loop *runloop.RunLoop

	// meshes counts factory calls when the fixture was built with
	// countMeshes.
	meshes *countingMeshFactory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, false)
}

func newCountingFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, true)
}

func buildFixture(t *testing.T, countMeshes bool) *fixture {
	setup := gfx.DefaultSetup()
	setup.SetPoolSize(gfx.MeshResource, 8)
	dev := recorder.New()
	display := gfx.StaticDisplay{Attrs: setup.DisplayAttrs()}
	loop := runloop.New()

	pools := gfx.NewPools(setup)
	r := gfx.NewRenderer(dev, display, pools)
	factories := gfx.NewFactories(dev, r, pools)

	f := &fixture{dev: dev, loop: loop}
	if countMeshes {
		f.meshes = &countingMeshFactory{inner: factories.Mesh}
		factories.Mesh = f.meshes
	}
	f.g = gfx.NewWithFactories(setup, dev, display, loop, pools, r, factories)
	t.Cleanup(f.g.Discard)
	return f
}

type countingMeshFactory struct {
	inner    gfx.MeshDataFactory
	setups   int
	destroys int
	updates  int
}

func (f *countingMeshFactory) SetupResource(slot *gfx.MeshSlot, data []byte) resource.State {
	f.setups++
	return f.inner.SetupResource(slot, data)
}

func (f *countingMeshFactory) DestroyResource(slot *gfx.MeshSlot) {
	f.destroys++
	f.inner.DestroyResource(slot)
}

func (f *countingMeshFactory) UpdateData(slot *gfx.MeshSlot, data []byte) {
	f.updates++
	f.inner.UpdateData(slot, data)
}

func positionLayout() gfx.VertexLayout {
	return gfx.NewVertexLayout(gfx.VertexComponent{Attr: gfx.AttrPosition, Format: gfx.Float3})
}

// triangle returns a non-indexed triangle mesh and its vertex data.
func triangle(loc resource.Locator) (gfx.MeshSetup, []byte) {
	s := gfx.MeshFromData(gfx.Static, gfx.Static)
	s.Locator = loc
	s.Layout = positionLayout()
	s.NumVertices = 3
	return s, make([]byte, 3*12)
}

// indexedQuad returns an indexed quad with two primitive groups.
func indexedQuad() (gfx.MeshSetup, []byte) {
	s := gfx.MeshFromData(gfx.Static, gfx.Static)
	s.Layout = positionLayout()
	s.NumVertices = 4
	s.IndexType = gfx.Index16
	s.NumIndices = 6
	s.PrimGroups = []gfx.PrimitiveGroup{
		{PrimType: gfx.Triangles, BaseElement: 0, NumElements: 3},
		{PrimType: gfx.Triangles, BaseElement: 3, NumElements: 3},
	}
	return s, make([]byte, 4*12+6*2)
}

func mvpLayout() gfx.UniformLayout {
	return gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "mvp", Type: gfx.UniformMat4},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)
}

func program(loc resource.Locator) gfx.ProgramBundleSetup {
	s := gfx.ProgramBundleSetup{Locator: loc}
	s.AddProgram(0, "void main() {}", "void main() {}")
	s.AddUniformBlock("vsParams", mvpLayout(), gfx.VertexShader)
	return s
}

// drawable creates a mesh, a program and a draw state over both.
func (f *fixture) drawable(t *testing.T, mesh gfx.MeshSetup, data []byte) (resource.Id, resource.Id) {
	t.Helper()
	msh := f.g.CreateMesh(mesh, data)
	prog := f.g.CreateProgramBundle(program(resource.NonShared()))
	ds := f.g.CreateDrawState(gfx.DrawStateFromMeshAndProg(msh, prog))
	if state := f.g.QueryResourceInfo(ds).State; state != resource.Valid {
		t.Fatalf("draw state is %s, want Valid", state)
	}
	return msh, ds
}

func (f *fixture) state(id resource.Id) resource.State {
	return f.g.QueryResourceInfo(id).State
}
