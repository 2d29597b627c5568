package loaders_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gfx/internal/assets"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/loaders"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/recorder"
	"github.com/Faultbox/midgard-gfx/internal/engine/runloop"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

type fixture struct {
	g     *gfx.Gfx
	dev   *recorder.Device
	loop  *runloop.RunLoop
	queue *assets.Queue
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	m := assets.NewManager(1 << 20)
	m.AddSource(assets.NewDirSource(dir))
	q := assets.NewQueue(m, 2, 5*time.Second)

	setup := gfx.DefaultSetup()
	dev := recorder.New()
	loop := runloop.New()
	g := gfx.New(setup, dev, gfx.StaticDisplay{Attrs: setup.DisplayAttrs()}, loop)
	t.Cleanup(func() {
		g.Discard()
		q.Close()
		m.Close()
	})
	return &fixture{g: g, dev: dev, loop: loop, queue: q, dir: dir}
}

func (f *fixture) write(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), data, 0o644))
}

// settle runs frames until id leaves Pending.
func (f *fixture) settle(t *testing.T, id resource.Id) resource.State {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.loop.Run()
		if s := f.g.QueryResourceInfo(id).State; s != resource.Pending {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("%s still pending", id)
	return resource.Pending
}

func meshBlueprint() gfx.MeshSetup {
	s := gfx.MeshFromData(gfx.Static, gfx.Static)
	s.Layout = gfx.NewVertexLayout(gfx.VertexComponent{Attr: gfx.AttrPosition, Format: gfx.Float3})
	s.NumVertices = 3
	s.IndexType = gfx.Index16
	s.NumIndices = 3
	return s
}

func TestMeshLoader(t *testing.T) {
	f := newFixture(t)
	f.write(t, "tri.bin", make([]byte, 3*12+3*2))

	var loadedId resource.Id
	var loadedState resource.State
	setup := gfx.MeshFromFile(resource.NewLocator("tri.bin"), meshBlueprint())
	id := f.g.Load(loaders.NewMeshLoader(f.queue, setup, func(id resource.Id, s resource.State) {
		loadedId, loadedState = id, s
	}))
	require.True(t, id.IsValid())
	assert.Equal(t, resource.Pending, f.g.QueryResourceInfo(id).State)

	// Loading the same locator again returns the same resource.
	again := f.g.Load(loaders.NewMeshLoader(f.queue, setup, nil))
	assert.Equal(t, id, again)

	assert.Equal(t, resource.Valid, f.settle(t, id))
	assert.Equal(t, id, loadedId)
	assert.Equal(t, resource.Valid, loadedState)
	assert.Zero(t, f.g.Resources().NumPendingLoaders())
}

func TestMeshLoaderMissingFile(t *testing.T) {
	f := newFixture(t)

	var loadedState resource.State
	setup := gfx.MeshFromFile(resource.NewLocator("missing.bin"), meshBlueprint())
	id := f.g.Load(loaders.NewMeshLoader(f.queue, setup, func(_ resource.Id, s resource.State) {
		loadedState = s
	}))

	assert.Equal(t, resource.Failed, f.settle(t, id))
	assert.Equal(t, resource.Failed, loadedState)
}

func TestMeshLoaderShortFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "short.bin", make([]byte, 10))

	setup := gfx.MeshFromFile(resource.NewLocator("short.bin"), meshBlueprint())
	id := f.g.Load(loaders.NewMeshLoader(f.queue, setup, nil))
	assert.Equal(t, resource.Failed, f.settle(t, id))
}

func TestMeshLoaderCompressed(t *testing.T) {
	f := newFixture(t)
	packed, err := assets.Compress(make([]byte, 3*12+3*2))
	require.NoError(t, err)
	f.write(t, "tri.bin.lz4", packed)

	setup := gfx.MeshFromFile(resource.NewLocator("tri.bin"), meshBlueprint())
	id := f.g.Load(loaders.NewMeshLoader(f.queue, setup, nil))
	assert.Equal(t, resource.Valid, f.settle(t, id))
}

func TestTextureLoader(t *testing.T) {
	f := newFixture(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	f.write(t, "red.png", buf.Bytes())

	id := f.g.Load(loaders.NewTextureLoader(f.queue, gfx.TextureFromFile(resource.NewLocator("red.png")), nil))
	assert.Equal(t, resource.Valid, f.settle(t, id))

	call, ok := f.dev.Last("CreateTexture")
	require.True(t, ok)
	desc := call.Args[1].(gfx.TextureDesc)
	assert.Equal(t, 4, desc.Width)
	assert.Equal(t, 2, desc.Height)
	assert.Equal(t, gfx.RGBA8, desc.Format)
}

func TestTextureLoaderBadImage(t *testing.T) {
	f := newFixture(t)
	f.write(t, "junk.png", []byte("definitely not an image"))

	id := f.g.Load(loaders.NewTextureLoader(f.queue, gfx.TextureFromFile(resource.NewLocator("junk.png")), nil))
	assert.Equal(t, resource.Failed, f.settle(t, id))
}

func TestLoaderDestroyedWhileLoading(t *testing.T) {
	f := newFixture(t)
	f.write(t, "tri.bin", make([]byte, 3*12+3*2))

	called := false
	label := f.g.PushResourceLabel()
	setup := gfx.MeshFromFile(resource.NewLocator("tri.bin"), meshBlueprint())
	id := f.g.Load(loaders.NewMeshLoader(f.queue, setup, func(resource.Id, resource.State) { called = true }))
	f.g.PopResourceLabel()
	f.g.DestroyResources(label)

	deadline := time.Now().Add(5 * time.Second)
	for f.g.Resources().NumPendingLoaders() > 0 && time.Now().Before(deadline) {
		f.loop.Run()
		time.Sleep(time.Millisecond)
	}
	assert.Zero(t, f.g.Resources().NumPendingLoaders())
	assert.Equal(t, resource.InvalidState, f.g.QueryResourceInfo(id).State)
	assert.False(t, called)
}
