package gfx

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Mesh is the backend payload of a mesh slot.
type Mesh struct {
	VertexBuffers          [StreamBufferSlots]uint32
	NumVertexBufferSlots   int
	ActiveVertexBufferSlot int
	IndexBuffer            uint32
	PrimGroups             []PrimitiveGroup
}

// ActiveVertexBuffer returns the vertex buffer draws read from.
func (m *Mesh) ActiveVertexBuffer() uint32 {
	return m.VertexBuffers[m.ActiveVertexBufferSlot]
}

// Texture is the backend payload of a texture slot.
type Texture struct {
	Handle       uint32
	RenderTarget RenderTarget
}

// Shader is the backend payload of a shader slot.
type Shader struct {
	Handle uint32
}

// Program is one linked variant of a program bundle.
type Program struct {
	Mask   uint32
	Handle uint32

	// Indexed by uniform block, then component.
	UniformLocations [][]int32
	SamplerIndices   [][]int
}

// ProgramBundle is the backend payload of a program bundle slot.
type ProgramBundle struct {
	Programs []Program
}

// Select returns the variant for mask. An unknown mask is a programming
// error.
func (p *ProgramBundle) Select(mask uint32) *Program {
	for i := range p.Programs {
		if p.Programs[i].Mask == mask {
			return &p.Programs[i]
		}
	}
	panic(fmt.Sprintf("gfx: program bundle has no variant for mask %#x", mask))
}

// VertexAttrBinding is the resolved vertex fetch for one attribute slot.
type VertexAttrBinding struct {
	Enabled bool
	VBIndex int
	Format  VertexFormat
	Stride  int
	Offset  int
	Divisor int
}

// DrawState is the backend payload of a draw state slot.
type DrawState struct {
	Attrs [NumVertexAttrs]VertexAttrBinding
}

// Slot and pool instantiations, one per resource kind.
type (
	MeshSlot          = resource.Slot[MeshSetup, Mesh]
	TextureSlot       = resource.Slot[TextureSetup, Texture]
	ShaderSlot        = resource.Slot[ShaderSetup, Shader]
	ProgramBundleSlot = resource.Slot[ProgramBundleSetup, ProgramBundle]
	DrawStateSlot     = resource.Slot[DrawStateSetup, DrawState]

	MeshPool          = resource.Pool[MeshSetup, Mesh]
	TexturePool       = resource.Pool[TextureSetup, Texture]
	ShaderPool        = resource.Pool[ShaderSetup, Shader]
	ProgramBundlePool = resource.Pool[ProgramBundleSetup, ProgramBundle]
	DrawStatePool     = resource.Pool[DrawStateSetup, DrawState]
)

// Pools holds one pool per resource kind.
type Pools struct {
	Meshes     *MeshPool
	Textures   *TexturePool
	Shaders    *ShaderPool
	Programs   *ProgramBundlePool
	DrawStates *DrawStatePool
}

// NewPools creates pools sized by setup.
func NewPools(setup Setup) *Pools {
	return &Pools{
		Meshes:     resource.NewPool[MeshSetup, Mesh](MeshResource, setup.PoolSize(MeshResource)),
		Textures:   resource.NewPool[TextureSetup, Texture](TextureResource, setup.PoolSize(TextureResource)),
		Shaders:    resource.NewPool[ShaderSetup, Shader](ShaderResource, setup.PoolSize(ShaderResource)),
		Programs:   resource.NewPool[ProgramBundleSetup, ProgramBundle](ProgramBundleResource, setup.PoolSize(ProgramBundleResource)),
		DrawStates: resource.NewPool[DrawStateSetup, DrawState](DrawStateResource, setup.PoolSize(DrawStateResource)),
	}
}

// Update runs per-frame housekeeping on every pool.
func (p *Pools) Update() {
	p.Meshes.Update()
	p.Shaders.Update()
	p.Programs.Update()
	p.Textures.Update()
	p.DrawStates.Update()
}

// QueryState returns the state of id in its pool.
func (p *Pools) QueryState(id resource.Id) resource.State {
	switch id.Type {
	case MeshResource:
		return p.Meshes.QueryState(id)
	case TextureResource:
		return p.Textures.QueryState(id)
	case ShaderResource:
		return p.Shaders.QueryState(id)
	case ProgramBundleResource:
		return p.Programs.QueryState(id)
	case DrawStateResource:
		return p.DrawStates.QueryState(id)
	default:
		panic(fmt.Sprintf("gfx: invalid resource type %d", id.Type))
	}
}

// PoolInfo returns the pool diagnostics for t.
func (p *Pools) PoolInfo(t resource.Type) resource.PoolInfo {
	switch t {
	case MeshResource:
		return p.Meshes.QueryPoolInfo()
	case TextureResource:
		return p.Textures.QueryPoolInfo()
	case ShaderResource:
		return p.Shaders.QueryPoolInfo()
	case ProgramBundleResource:
		return p.Programs.QueryPoolInfo()
	case DrawStateResource:
		return p.DrawStates.QueryPoolInfo()
	default:
		panic(fmt.Sprintf("gfx: invalid resource type %d", t))
	}
}

// NumFreeSlots returns the number of free slots for t.
func (p *Pools) NumFreeSlots(t resource.Type) int {
	switch t {
	case MeshResource:
		return p.Meshes.NumFreeSlots()
	case TextureResource:
		return p.Textures.NumFreeSlots()
	case ShaderResource:
		return p.Shaders.NumFreeSlots()
	case ProgramBundleResource:
		return p.Programs.NumFreeSlots()
	case DrawStateResource:
		return p.DrawStates.NumFreeSlots()
	default:
		panic(fmt.Sprintf("gfx: invalid resource type %d", t))
	}
}
