package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/runloop"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Gfx is the Id-based entry point: it owns pools, factories, the resource
// container and the renderer for one device.
type Gfx struct {
	setup     Setup
	dev       Device
	display   Display
	loop      *runloop.RunLoop
	runLoopId runloop.Id

	pools     *Pools
	renderer  *Renderer
	container *ResourceContainer
	log       *zap.Logger
}

// New wires a Gfx for dev and registers its per-frame update with loop.
func New(setup Setup, dev Device, display Display, loop *runloop.RunLoop) *Gfx {
	pools := NewPools(setup)
	r := NewRenderer(dev, display, pools)
	return NewWithFactories(setup, dev, display, loop, pools, r, NewFactories(dev, r, pools))
}

// NewWithFactories is New with caller-provided factories, for backends or
// tests that replace how device objects are built.
func NewWithFactories(setup Setup, dev Device, display Display, loop *runloop.RunLoop,
	pools *Pools, r *Renderer, factories Factories) *Gfx {
	g := &Gfx{
		setup:     setup,
		dev:       dev,
		display:   display,
		loop:      loop,
		pools:     pools,
		renderer:  r,
		container: NewResourceContainer(setup, pools, factories),
		log:       logger.Named("gfx"),
	}
	g.runLoopId = loop.Add(g.container.Update)

	attrs := display.DisplayAttrs()
	g.log.Info("gfx ready",
		zap.Int("width", attrs.FramebufferWidth),
		zap.Int("height", attrs.FramebufferHeight),
		zap.Stringer("color_format", attrs.ColorPixelFormat))
	return g
}

// Discard unregisters the update, destroys all resources and releases the
// renderer. The Gfx must not be used afterwards.
func (g *Gfx) Discard() {
	g.loop.Remove(g.runLoopId)
	g.runLoopId = runloop.InvalidId
	g.container.Discard()
	g.renderer.Discard()
	g.log.Info("gfx discarded")
}

// Setup returns the setup Gfx was created with.
func (g *Gfx) Setup() Setup {
	return g.setup
}

// Resources returns the resource container, used by loaders and tools.
func (g *Gfx) Resources() *ResourceContainer {
	return g.container
}

// DisplayAttrs returns the attributes of the default framebuffer.
func (g *Gfx) DisplayAttrs() DisplayAttrs {
	return g.display.DisplayAttrs()
}

// RenderTargetAttrs returns the attributes of the render target in use.
func (g *Gfx) RenderTargetAttrs() DisplayAttrs {
	return g.renderer.RenderTargetAttrs()
}

// Supports reports an optional device feature.
func (g *Gfx) Supports(f Feature) bool {
	return g.renderer.Supports(f)
}

// CreateMesh creates a mesh. See ResourceContainer.CreateMesh.
func (g *Gfx) CreateMesh(setup MeshSetup, data []byte) resource.Id {
	return g.container.CreateMesh(setup, data)
}

// CreateTexture creates a texture or render target.
func (g *Gfx) CreateTexture(setup TextureSetup, data []byte) resource.Id {
	return g.container.CreateTexture(setup, data)
}

// CreateShader compiles a shader.
func (g *Gfx) CreateShader(setup ShaderSetup) resource.Id {
	return g.container.CreateShader(setup)
}

// CreateProgramBundle links a program bundle.
func (g *Gfx) CreateProgramBundle(setup ProgramBundleSetup) resource.Id {
	return g.container.CreateProgramBundle(setup)
}

// CreateDrawState creates a draw state.
func (g *Gfx) CreateDrawState(setup DrawStateSetup) resource.Id {
	return g.container.CreateDrawState(setup)
}

// Load starts an asynchronous load.
func (g *Gfx) Load(loader Loader) resource.Id {
	return g.container.Load(loader)
}

// PushResourceLabel pushes a fresh resource label.
func (g *Gfx) PushResourceLabel() resource.Label {
	return g.container.PushLabel()
}

// PopResourceLabel pops the top resource label.
func (g *Gfx) PopResourceLabel() resource.Label {
	return g.container.PopLabel()
}

// DestroyResources destroys everything created under label or later.
func (g *Gfx) DestroyResources(label resource.Label) {
	g.container.Destroy(label)
}

// QueryResourceInfo returns the state of a resource.
func (g *Gfx) QueryResourceInfo(id resource.Id) resource.Info {
	return g.container.QueryResourceInfo(id)
}

// QueryResourcePoolInfo returns pool diagnostics. Not for hot paths.
func (g *Gfx) QueryResourcePoolInfo(t resource.Type) resource.PoolInfo {
	return g.container.QueryPoolInfo(t)
}

// QueryFreeResourceSlots returns the number of free pool slots for t.
func (g *Gfx) QueryFreeResourceSlots(t resource.Type) int {
	return g.container.QueryFreeSlots(t)
}

// ApplyDefaultRenderTarget renders to the default framebuffer.
func (g *Gfx) ApplyDefaultRenderTarget() {
	g.renderer.ApplyRenderTarget(nil)
}

// ApplyOffscreenRenderTarget renders to a render target texture, which
// must be Valid.
func (g *Gfx) ApplyOffscreenRenderTarget(id resource.Id) {
	tex := g.pools.Textures.Lookup(id)
	if tex == nil {
		panic(fmt.Sprintf("gfx: render target %s is not valid", id))
	}
	g.renderer.ApplyRenderTarget(tex)
}

// ApplyViewPort sets the viewport.
func (g *Gfx) ApplyViewPort(x, y, width, height int) {
	g.renderer.ApplyViewPort(x, y, width, height)
}

// ApplyScissorRect sets the scissor rectangle.
func (g *Gfx) ApplyScissorRect(x, y, width, height int) {
	g.renderer.ApplyScissorRect(x, y, width, height)
}

// ApplyDrawState makes a draw state current. Ids that are not Valid, for
// instance because the draw state is still loading, disable drawing until
// the next ApplyDrawState.
func (g *Gfx) ApplyDrawState(id resource.Id) {
	g.renderer.ApplyDrawState(g.pools.DrawStates.Lookup(id))
}

// ApplyUniformBlock uploads block as uniform block blockIndex of the
// current program.
func (g *Gfx) ApplyUniformBlock(blockIndex int, block *UniformBlock) {
	g.renderer.ApplyUniformBlock(blockIndex, block.TypeHash(), block.Bytes())
}

// Clear clears the current render target.
func (g *Gfx) Clear(targets ClearTarget, color mgl32.Vec4, depth float32, stencil uint8) {
	g.renderer.Clear(targets, color, depth, stencil)
}

// Draw draws a primitive group of the current draw state.
func (g *Gfx) Draw(primGroupIndex int) {
	g.renderer.Draw(primGroupIndex)
}

// DrawGroup draws an explicit primitive group.
func (g *Gfx) DrawGroup(pg PrimitiveGroup) {
	g.renderer.DrawGroup(pg)
}

// DrawInstanced draws numInstances instances of a primitive group.
func (g *Gfx) DrawInstanced(primGroupIndex, numInstances int) {
	g.renderer.DrawInstanced(primGroupIndex, numInstances)
}

// UpdateVertices replaces vertex data of a Valid mesh.
func (g *Gfx) UpdateVertices(id resource.Id, data []byte) {
	g.container.UpdateVertices(id, data)
}

// ReadPixels reads back the current render target. It stalls the GPU.
func (g *Gfx) ReadPixels(buf []byte) {
	g.renderer.ReadPixels(buf)
}

// CommitFrame ends the frame.
func (g *Gfx) CommitFrame() {
	g.renderer.CommitFrame()
}

// ResetStateCache resets device state and the renderer's mirror of it.
func (g *Gfx) ResetStateCache() {
	g.renderer.ResetStateCache()
}
