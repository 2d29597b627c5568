package gfx

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// ResourceContainer owns the pools, factories and locator registry and
// drives synchronous and two-phase asynchronous resource creation. It is
// not safe for concurrent use: everything happens on the frame thread.
type ResourceContainer struct {
	pools     *Pools
	factories Factories
	registry  *resource.Registry
	labels    *resource.LabelStack
	log       *zap.Logger

	pendingLoaders    []Loader
	pendingDrawStates []resource.Id
}

// NewResourceContainer creates a container over pools that builds
// resources with factories.
func NewResourceContainer(setup Setup, pools *Pools, factories Factories) *ResourceContainer {
	return &ResourceContainer{
		pools:     pools,
		factories: factories,
		registry:  resource.NewRegistry(setup.ResourceRegistryCapacity),
		labels:    resource.NewLabelStack(setup.ResourceLabelStackCapacity),
		log:       logger.Named("gfx.resources"),
	}
}

// Pools returns the pools the container manages.
func (c *ResourceContainer) Pools() *Pools {
	return c.pools
}

// CreateMesh creates a mesh synchronously. data holds vertex then index
// data and may be nil for empty meshes and full-screen quads.
func (c *ResourceContainer) CreateMesh(setup MeshSetup, data []byte) resource.Id {
	if setup.ShouldSetupFromFile() {
		panic("gfx: mesh from file must be loaded with Load")
	}
	return createResource(c, c.pools.Meshes, c.factories.Mesh, setup.Locator, setup, data)
}

// CreateTexture creates a texture synchronously.
func (c *ResourceContainer) CreateTexture(setup TextureSetup, data []byte) resource.Id {
	if setup.ShouldSetupFromFile() && len(data) == 0 {
		panic("gfx: texture from file must be loaded with Load")
	}
	return createResource(c, c.pools.Textures, c.factories.Texture, setup.Locator, setup, data)
}

// CreateShader compiles a shader synchronously.
func (c *ResourceContainer) CreateShader(setup ShaderSetup) resource.Id {
	return createResource(c, c.pools.Shaders, c.factories.Shader, setup.Locator, setup, nil)
}

// CreateProgramBundle links a program bundle synchronously.
func (c *ResourceContainer) CreateProgramBundle(setup ProgramBundleSetup) resource.Id {
	return createResource(c, c.pools.Programs, c.factories.ProgramBundle, setup.Locator, setup, nil)
}

// CreateDrawState creates a draw state. While a referenced mesh is still
// Pending the draw state stays Pending and is finished by Update.
func (c *ResourceContainer) CreateDrawState(setup DrawStateSetup) resource.Id {
	if id := c.registry.Lookup(setup.Locator); id.IsValid() {
		return id
	}

	pool := c.pools.DrawStates
	id := pool.AllocId()
	c.registry.Add(setup.Locator, id, c.labels.Peek())
	slot := pool.Assign(id, setup, resource.Setup)

	switch c.drawStateDependencies(&slot.Setup) {
	case resource.Pending:
		c.pendingDrawStates = append(c.pendingDrawStates, id)
		pool.UpdateState(id, resource.Pending)
	case resource.Failed:
		c.log.Warn("draw state mesh failed or missing", zap.Stringer("id", id))
		pool.UpdateState(id, resource.Failed)
	default:
		pool.UpdateState(id, checkedState(c.factories.DrawState.SetupResource(slot, nil)))
	}
	return id
}

// PrepareMeshAsync reserves a Pending mesh whose data arrives later. The
// locator is registered right away so repeated loads dedupe against it.
func (c *ResourceContainer) PrepareMeshAsync(setup MeshSetup) resource.Id {
	return prepareAsync(c, c.pools.Meshes, setup.Locator, setup)
}

// InitMeshAsync finishes a prepared mesh. It returns InvalidState when the
// mesh was destroyed while its data was in flight.
func (c *ResourceContainer) InitMeshAsync(id resource.Id, setup MeshSetup, data []byte) resource.State {
	return initAsync(c, c.pools.Meshes, c.factories.Mesh, id, setup, data)
}

// PrepareTextureAsync is PrepareMeshAsync for textures.
func (c *ResourceContainer) PrepareTextureAsync(setup TextureSetup) resource.Id {
	return prepareAsync(c, c.pools.Textures, setup.Locator, setup)
}

// InitTextureAsync is InitMeshAsync for textures.
func (c *ResourceContainer) InitTextureAsync(id resource.Id, setup TextureSetup, data []byte) resource.State {
	return initAsync(c, c.pools.Textures, c.factories.Texture, id, setup, data)
}

// FailedAsync marks a prepared mesh or texture as Failed after its load
// failed. It returns InvalidState when the resource is already gone. Other
// resource types cannot be created asynchronously.
func (c *ResourceContainer) FailedAsync(id resource.Id) resource.State {
	switch id.Type {
	case MeshResource:
		if c.pools.Meshes.Contains(id) {
			c.pools.Meshes.UpdateState(id, resource.Failed)
			return resource.Failed
		}
	case TextureResource:
		if c.pools.Textures.Contains(id) {
			c.pools.Textures.UpdateState(id, resource.Failed)
			return resource.Failed
		}
	default:
		panic(fmt.Sprintf("gfx: %s cannot be created asynchronously", ResourceTypeName(id.Type)))
	}
	return resource.InvalidState
}

// UpdateVertices hands new vertex data for a Valid mesh to the mesh
// factory. Any other id panics.
func (c *ResourceContainer) UpdateVertices(id resource.Id, data []byte) {
	msh := c.pools.Meshes.Lookup(id)
	if msh == nil {
		panic(fmt.Sprintf("gfx: update vertices of invalid mesh %s", id))
	}
	c.factories.Mesh.UpdateData(msh, data)
}

// Load starts an asynchronous load, unless a resource with the loader's
// locator already exists.
func (c *ResourceContainer) Load(loader Loader) resource.Id {
	if id := c.registry.Lookup(loader.Locator()); id.IsValid() {
		return id
	}
	c.pendingLoaders = append(c.pendingLoaders, loader)
	return loader.Start(c)
}

// Destroy releases every resource created under label or any label pushed
// after it. Device objects are only released for Valid resources.
func (c *ResourceContainer) Destroy(label resource.Label) {
	for _, id := range c.registry.Remove(label) {
		switch id.Type {
		case MeshResource:
			destroyResource(c.pools.Meshes, c.factories.Mesh, id)
		case TextureResource:
			destroyResource(c.pools.Textures, c.factories.Texture, id)
		case ShaderResource:
			destroyResource(c.pools.Shaders, c.factories.Shader, id)
		case ProgramBundleResource:
			destroyResource(c.pools.Programs, c.factories.ProgramBundle, id)
		case DrawStateResource:
			destroyResource(c.pools.DrawStates, c.factories.DrawState, id)
		default:
			panic(fmt.Sprintf("gfx: invalid resource type %d", id.Type))
		}
	}
}

// Update is the per-frame step: pool housekeeping, then one step of every
// loader, then pending draw states. A mesh and a draw state waiting on it
// can therefore both become Valid in the same frame.
func (c *ResourceContainer) Update() {
	c.pools.Update()

	for i := len(c.pendingLoaders) - 1; i >= 0; i-- {
		if c.pendingLoaders[i].Continue() != resource.Pending {
			c.pendingLoaders = slices.Delete(c.pendingLoaders, i, i+1)
		}
	}

	c.handlePendingDrawStates()
}

// NumPendingLoaders returns the number of loaders still running.
func (c *ResourceContainer) NumPendingLoaders() int {
	return len(c.pendingLoaders)
}

// Discard cancels running loaders and destroys every resource.
func (c *ResourceContainer) Discard() {
	for _, l := range c.pendingLoaders {
		l.Cancel()
	}
	c.pendingLoaders = nil
	c.Destroy(resource.DefaultLabel)
	c.pendingDrawStates = nil
}

// PushLabel pushes a fresh label and returns it.
func (c *ResourceContainer) PushLabel() resource.Label {
	return c.labels.Push()
}

// PushExistingLabel pushes a label returned by an earlier PushLabel.
func (c *ResourceContainer) PushExistingLabel(l resource.Label) {
	c.labels.PushLabel(l)
}

// PopLabel pops the top label.
func (c *ResourceContainer) PopLabel() resource.Label {
	return c.labels.Pop()
}

// PeekLabel returns the label new resources are tagged with.
func (c *ResourceContainer) PeekLabel() resource.Label {
	return c.labels.Peek()
}

// QueryResourceInfo returns the state of id.
func (c *ResourceContainer) QueryResourceInfo(id resource.Id) resource.Info {
	if !id.IsValid() {
		return resource.Info{Id: id, State: resource.InvalidState}
	}
	return resource.Info{Id: id, State: c.pools.QueryState(id)}
}

// QueryPoolInfo returns the diagnostics of the pool for t. Its cost grows
// with the pool size.
func (c *ResourceContainer) QueryPoolInfo(t resource.Type) resource.PoolInfo {
	return c.pools.PoolInfo(t)
}

// QueryFreeSlots returns the number of free slots in the pool for t.
func (c *ResourceContainer) QueryFreeSlots(t resource.Type) int {
	return c.pools.NumFreeSlots(t)
}

// drawStateDependencies aggregates the states of the meshes a draw state
// uses: Failed if any is Failed or gone, else Pending if any is Pending,
// else Valid.
func (c *ResourceContainer) drawStateDependencies(setup *DrawStateSetup) resource.State {
	state := resource.Valid
	for _, id := range setup.Meshes {
		if !id.IsValid() {
			continue
		}
		msh := c.pools.Meshes.Get(id)
		if msh == nil {
			return resource.Failed
		}
		switch msh.State {
		case resource.Failed:
			return resource.Failed
		case resource.Pending:
			state = resource.Pending
		case resource.Initial, resource.Setup:
			// Meshes leave these states before Create or Prepare returns.
			panic(fmt.Sprintf("gfx: mesh %s used by a draw state is in state %s", id, msh.State))
		}
	}
	return state
}

func (c *ResourceContainer) handlePendingDrawStates() {
	pool := c.pools.DrawStates
	for i := len(c.pendingDrawStates) - 1; i >= 0; i-- {
		id := c.pendingDrawStates[i]
		slot := pool.Get(id)
		if slot == nil {
			c.log.Warn("draw state destroyed before its meshes loaded", zap.Stringer("id", id))
			c.pendingDrawStates = slices.Delete(c.pendingDrawStates, i, i+1)
			continue
		}

		state := c.drawStateDependencies(&slot.Setup)
		if state == resource.Pending {
			continue
		}
		c.pendingDrawStates = slices.Delete(c.pendingDrawStates, i, i+1)
		if state == resource.Valid {
			state = checkedState(c.factories.DrawState.SetupResource(slot, nil))
		} else {
			c.log.Warn("draw state mesh failed or missing", zap.Stringer("id", id))
		}
		pool.UpdateState(id, state)
	}
}

func createResource[S any, P any](c *ResourceContainer, pool *resource.Pool[S, P], f Factory[S, P],
	loc resource.Locator, setup S, data []byte) resource.Id {
	if id := c.registry.Lookup(loc); id.IsValid() {
		return id
	}
	id := pool.AllocId()
	c.registry.Add(loc, id, c.labels.Peek())
	slot := pool.Assign(id, setup, resource.Setup)
	pool.UpdateState(id, checkedState(f.SetupResource(slot, data)))
	return id
}

func prepareAsync[S any, P any](c *ResourceContainer, pool *resource.Pool[S, P], loc resource.Locator, setup S) resource.Id {
	id := pool.AllocId()
	c.registry.Add(loc, id, c.labels.Peek())
	pool.Assign(id, setup, resource.Pending)
	return id
}

func initAsync[S any, P any](c *ResourceContainer, pool *resource.Pool[S, P], f Factory[S, P],
	id resource.Id, setup S, data []byte) resource.State {
	if !pool.Contains(id) {
		c.log.Warn("resource destroyed before its data arrived",
			zap.String("type", ResourceTypeName(id.Type)),
			zap.Uint16("slot", id.SlotIndex))
		return resource.InvalidState
	}
	slot := pool.Assign(id, setup, resource.Pending)
	state := checkedState(f.SetupResource(slot, data))
	pool.UpdateState(id, state)
	return state
}

func destroyResource[S any, P any](pool *resource.Pool[S, P], f Factory[S, P], id resource.Id) {
	if slot := pool.Lookup(id); slot != nil {
		f.DestroyResource(slot)
	}
	pool.Unassign(id)
}

func checkedState(s resource.State) resource.State {
	if s != resource.Valid && s != resource.Failed {
		panic(fmt.Sprintf("gfx: factory returned state %s", s))
	}
	return s
}
