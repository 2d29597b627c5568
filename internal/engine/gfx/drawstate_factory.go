package gfx

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// DrawStateFactory resolves the vertex attribute bindings of a draw state
// from its meshes.
type DrawStateFactory struct {
	r     *Renderer
	pools *Pools
	log   *zap.Logger
}

// NewDrawStateFactory creates a draw state factory.
func NewDrawStateFactory(r *Renderer, pools *Pools) *DrawStateFactory {
	return &DrawStateFactory{r: r, pools: pools, log: logger.Named("gfx.drawstate")}
}

// SetupResource implements Factory. Referenced meshes and the program
// bundle must be Valid.
func (f *DrawStateFactory) SetupResource(slot *DrawStateSlot, _ []byte) resource.State {
	s := &slot.Setup
	fields := []zap.Field{zap.Stringer("id", slot.Id), zap.Stringer("locator", s.Locator)}

	prog := f.pools.Programs.Lookup(s.Program)
	if prog == nil {
		f.log.Warn("draw state program is not valid", append(fields, zap.Stringer("program", s.Program))...)
		return resource.Failed
	}
	if !hasVariant(&prog.Payload, s.ProgramSelectionMask) {
		f.log.Warn("draw state selects unknown program variant",
			append(fields, zap.Uint32("mask", s.ProgramSelectionMask))...)
		return resource.Failed
	}
	if !s.Meshes[0].IsValid() {
		f.log.Warn("draw state has no mesh", fields...)
		return resource.Failed
	}

	var meshes [MaxInputMeshes]*MeshSlot
	for i, id := range s.Meshes {
		if !id.IsValid() {
			continue
		}
		if meshes[i] = f.pools.Meshes.Lookup(id); meshes[i] == nil {
			f.log.Warn("draw state mesh is not valid", append(fields, zap.Stringer("mesh", id))...)
			return resource.Failed
		}
	}

	var attrs [NumVertexAttrs]VertexAttrBinding
	for attr := 0; attr < NumVertexAttrs; attr++ {
		for i, m := range meshes {
			if m == nil {
				continue
			}
			layout := m.Setup.Layout
			ci := layout.ComponentIndexByAttr(VertexAttr(attr))
			if ci < 0 {
				continue
			}
			if attrs[attr].Enabled {
				f.log.Warn("vertex attribute provided by more than one mesh",
					append(fields, zap.Stringer("attr", VertexAttr(attr)))...)
				return resource.Failed
			}
			attrs[attr] = VertexAttrBinding{
				Enabled: true,
				VBIndex: i,
				Format:  layout.Components[ci].Format,
				Stride:  layout.ByteSize(),
				Offset:  layout.ComponentByteOffset(ci),
				Divisor: layout.Divisor(),
			}
		}
	}
	slot.Payload.Attrs = attrs
	return resource.Valid
}

// DestroyResource implements Factory.
func (f *DrawStateFactory) DestroyResource(slot *DrawStateSlot) {
	f.r.invalidateDrawState(slot)
	slot.Payload = DrawState{}
}

func hasVariant(pb *ProgramBundle, mask uint32) bool {
	for i := range pb.Programs {
		if pb.Programs[i].Mask == mask {
			return true
		}
	}
	return false
}
