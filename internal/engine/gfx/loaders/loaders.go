// Package loaders implements gfx.Loader on top of the asset queue. The
// locator's location is the asset path.
package loaders

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/assets"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// OnLoaded is called on the frame thread once a resource finished loading,
// with the final state.
type OnLoaded func(id resource.Id, state resource.State)

// fetch tracks the request shared by all loaders.
type fetch struct {
	queue    *assets.Queue
	req      *assets.Request
	id       resource.Id
	onLoaded OnLoaded
	log      *zap.Logger
}

func (f *fetch) start(loc resource.Locator, id resource.Id) {
	f.id = id
	f.req = f.queue.Add(loc.Location)
}

// poll returns the fetched bytes once the request completed.
func (f *fetch) poll() (data []byte, done bool, err error) {
	if !f.req.Done() {
		return nil, false, nil
	}
	data, err = f.req.Result()
	return data, true, err
}

func (f *fetch) finish(loc resource.Locator, state resource.State) resource.State {
	switch state {
	case resource.InvalidState:
		f.log.Debug("resource destroyed while loading", zap.Stringer("locator", loc))
	case resource.Failed:
		f.log.Warn("resource load failed", zap.Stringer("locator", loc), zap.Stringer("id", f.id))
	default:
		f.log.Debug("resource loaded", zap.Stringer("locator", loc), zap.Stringer("id", f.id))
	}
	if f.onLoaded != nil && state != resource.InvalidState {
		f.onLoaded(f.id, state)
	}
	return state
}

func (f *fetch) cancel() {
	if f.req != nil {
		f.req.Cancel()
	}
}

// MeshLoader loads the vertex and index data of a mesh. The setup provides
// layout and counts; the fetched file holds vertices followed by indices.
type MeshLoader struct {
	setup gfx.MeshSetup
	c     *gfx.ResourceContainer
	fetch
}

// NewMeshLoader creates a loader for setup, which should come from
// gfx.MeshFromFile.
func NewMeshLoader(q *assets.Queue, setup gfx.MeshSetup, onLoaded OnLoaded) *MeshLoader {
	return &MeshLoader{
		setup: setup,
		fetch: fetch{queue: q, onLoaded: onLoaded, log: logger.Named("gfx.loader")},
	}
}

func (l *MeshLoader) Locator() resource.Locator { return l.setup.Locator }

func (l *MeshLoader) Start(c *gfx.ResourceContainer) resource.Id {
	l.c = c
	l.start(l.setup.Locator, c.PrepareMeshAsync(l.setup))
	return l.id
}

func (l *MeshLoader) Continue() resource.State {
	data, done, err := l.poll()
	if !done {
		return resource.Pending
	}
	if err != nil {
		l.log.Warn("fetch mesh", zap.Stringer("locator", l.setup.Locator), zap.Error(err))
		return l.finish(l.setup.Locator, l.c.FailedAsync(l.id))
	}
	return l.finish(l.setup.Locator, l.c.InitMeshAsync(l.id, l.setup, data))
}

func (l *MeshLoader) Cancel() { l.cancel() }

// TextureLoader loads and decodes an image file into a 2D texture.
type TextureLoader struct {
	setup gfx.TextureSetup
	c     *gfx.ResourceContainer
	fetch
}

// NewTextureLoader creates a loader for setup, which should come from
// gfx.TextureFromFile.
func NewTextureLoader(q *assets.Queue, setup gfx.TextureSetup, onLoaded OnLoaded) *TextureLoader {
	return &TextureLoader{
		setup: setup,
		fetch: fetch{queue: q, onLoaded: onLoaded, log: logger.Named("gfx.loader")},
	}
}

func (l *TextureLoader) Locator() resource.Locator { return l.setup.Locator }

func (l *TextureLoader) Start(c *gfx.ResourceContainer) resource.Id {
	l.c = c
	l.start(l.setup.Locator, c.PrepareTextureAsync(l.setup))
	return l.id
}

func (l *TextureLoader) Continue() resource.State {
	data, done, err := l.poll()
	if !done {
		return resource.Pending
	}
	if err != nil {
		l.log.Warn("fetch texture", zap.Stringer("locator", l.setup.Locator), zap.Error(err))
		return l.finish(l.setup.Locator, l.c.FailedAsync(l.id))
	}
	return l.finish(l.setup.Locator, l.c.InitTextureAsync(l.id, l.setup, data))
}

func (l *TextureLoader) Cancel() { l.cancel() }
