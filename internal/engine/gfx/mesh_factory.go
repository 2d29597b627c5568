package gfx

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// MeshFactory creates vertex and index buffers.
type MeshFactory struct {
	dev Device
	r   *Renderer
	log *zap.Logger
}

// NewMeshFactory creates a mesh factory.
func NewMeshFactory(dev Device, r *Renderer) *MeshFactory {
	return &MeshFactory{dev: dev, r: r, log: logger.Named("gfx.mesh")}
}

// SetupResource implements Factory.
func (f *MeshFactory) SetupResource(slot *MeshSlot, data []byte) resource.State {
	s := &slot.Setup
	fields := []zap.Field{zap.Stringer("id", slot.Id), zap.Stringer("locator", s.Locator)}

	switch {
	case s.ShouldSetupFullScreenQuad():
		data = fullScreenQuadData(s.FlipV)
	case s.ShouldSetupEmpty():
		if s.VertexUsage == Static {
			f.log.Warn("empty mesh needs dynamic or stream usage", fields...)
			return resource.Failed
		}
		data = nil
	default:
		if len(data) == 0 {
			f.log.Warn("mesh has no data", fields...)
			return resource.Failed
		}
	}

	if s.Layout.Empty() || s.NumVertices <= 0 {
		f.log.Warn("mesh has no vertices", fields...)
		return resource.Failed
	}
	if s.IndexType != IndexNone && s.NumIndices <= 0 {
		f.log.Warn("indexed mesh has no indices", fields...)
		return resource.Failed
	}

	vbSize := s.VertexDataSize()
	ibSize := s.IndexDataSize()
	var vbData, ibData []byte
	if data != nil {
		if len(data) < vbSize+ibSize {
			f.log.Warn("mesh data too short",
				append(fields, zap.Int("have", len(data)), zap.Int("need", vbSize+ibSize))...)
			return resource.Failed
		}
		vbData = data[:vbSize]
		if ibSize > 0 {
			ibData = data[vbSize : vbSize+ibSize]
		}
	}

	m := &slot.Payload
	m.NumVertexBufferSlots = 1
	if s.VertexUsage == Stream {
		m.NumVertexBufferSlots = StreamBufferSlots
	}
	for i := 0; i < m.NumVertexBufferSlots; i++ {
		vb := f.dev.GenBuffer()
		f.r.bindVertexBuffer(vb)
		f.dev.BufferData(VertexBufferTarget, vbSize, vbData, s.VertexUsage)
		m.VertexBuffers[i] = vb
	}
	m.ActiveVertexBufferSlot = 0

	if s.IndexType != IndexNone {
		ib := f.dev.GenBuffer()
		f.r.bindIndexBuffer(ib)
		f.dev.BufferData(IndexBufferTarget, ibSize, ibData, s.IndexUsage)
		m.IndexBuffer = ib
	}

	if len(s.PrimGroups) > 0 {
		m.PrimGroups = append([]PrimitiveGroup(nil), s.PrimGroups...)
	} else {
		n := s.NumVertices
		if s.IndexType != IndexNone {
			n = s.NumIndices
		}
		m.PrimGroups = []PrimitiveGroup{{PrimType: Triangles, BaseElement: 0, NumElements: n}}
	}

	f.log.Debug("mesh created", append(fields,
		zap.Stringer("usage", s.VertexUsage),
		zap.Int("vertices", s.NumVertices),
		zap.Int("indices", s.NumIndices))...)
	return resource.Valid
}

// UpdateData replaces the start of the vertex data of a Valid mesh. Stream
// meshes advance to their next buffer first so the GPU may still read the
// previous one.
func (f *MeshFactory) UpdateData(slot *MeshSlot, data []byte) {
	if size := slot.Setup.VertexDataSize(); len(data) == 0 || len(data) > size {
		panic(fmt.Sprintf("gfx: vertex update of %d bytes for mesh of %d bytes", len(data), size))
	}

	m := &slot.Payload
	if slot.Setup.VertexUsage == Stream {
		m.ActiveVertexBufferSlot = (m.ActiveVertexBufferSlot + 1) % m.NumVertexBufferSlots
	}
	f.r.bindVertexBuffer(m.ActiveVertexBuffer())
	f.dev.BufferSubData(VertexBufferTarget, 0, data)
}

// DestroyResource implements Factory.
func (f *MeshFactory) DestroyResource(slot *MeshSlot) {
	f.r.invalidateMesh(slot)

	m := &slot.Payload
	for i := 0; i < m.NumVertexBufferSlots; i++ {
		if m.VertexBuffers[i] != 0 {
			f.dev.DeleteBuffer(m.VertexBuffers[i])
		}
	}
	if m.IndexBuffer != 0 {
		f.dev.DeleteBuffer(m.IndexBuffer)
	}
	slot.Payload = Mesh{}
}

// fullScreenQuadData returns 4 vertices (position xyz, texcoord uv) and 6
// 16-bit indices.
func fullScreenQuadData(flipV bool) []byte {
	topV, botV := float32(1), float32(0)
	if flipV {
		topV, botV = 0, 1
	}
	vertices := []float32{
		-1, +1, 0, 0, topV,
		+1, +1, 0, 1, topV,
		+1, -1, 0, 1, botV,
		-1, -1, 0, 0, botV,
	}
	indices := []uint16{0, 2, 1, 0, 3, 2}

	data := make([]byte, len(vertices)*4+len(indices)*2)
	putFloats(data, vertices...)
	off := len(vertices) * 4
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(data[off+i*2:], idx)
	}
	return data
}
