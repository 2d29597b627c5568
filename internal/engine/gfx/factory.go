package gfx

import (
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Factory turns a slot's setup, plus optional data, into device objects.
// SetupResource returns Valid or Failed and never panics on bad content.
// DestroyResource is only called for slots that reached Valid.
type Factory[S any, P any] interface {
	SetupResource(slot *resource.Slot[S, P], data []byte) resource.State
	DestroyResource(slot *resource.Slot[S, P])
}

// MeshDataFactory is a mesh factory that can also replace the vertex data
// of a Valid mesh.
type MeshDataFactory interface {
	Factory[MeshSetup, Mesh]
	UpdateData(slot *MeshSlot, data []byte)
}

// Factories bundles one factory per resource kind.
type Factories struct {
	Mesh          MeshDataFactory
	Texture       Factory[TextureSetup, Texture]
	Shader        Factory[ShaderSetup, Shader]
	ProgramBundle Factory[ProgramBundleSetup, ProgramBundle]
	DrawState     Factory[DrawStateSetup, DrawState]
}

// NewFactories creates the device-backed factories.
func NewFactories(dev Device, r *Renderer, pools *Pools) Factories {
	return Factories{
		Mesh:          NewMeshFactory(dev, r),
		Texture:       NewTextureFactory(dev, r),
		Shader:        NewShaderFactory(dev),
		ProgramBundle: NewProgramBundleFactory(dev, r, pools.Shaders),
		DrawState:     NewDrawStateFactory(r, pools),
	}
}
