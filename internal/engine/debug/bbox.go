// Package debug provides debug visualization and capture utilities.
package debug

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(lo, hi mgl32.Vec3) []float32 {
	minX, minY, minZ := lo.Elem()
	maxX, maxY, maxZ := hi.Elem()
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// WireBox describes a static line mesh outlining the box between lo and hi,
// ready for gfx.CreateMesh.
func WireBox(loc resource.Locator, lo, hi mgl32.Vec3) (gfx.MeshSetup, []byte) {
	verts := GenerateBBoxWireframeVertices(lo, hi)
	data := make([]byte, len(verts)*4)
	for i, v := range verts {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}

	s := gfx.MeshFromData(gfx.Static, gfx.Static)
	s.Locator = loc
	s.Layout = gfx.NewVertexLayout(gfx.VertexComponent{Attr: gfx.AttrPosition, Format: gfx.Float3})
	s.NumVertices = BBoxWireframeVertexCount
	s.PrimGroups = []gfx.PrimitiveGroup{{PrimType: gfx.Lines, NumElements: BBoxWireframeVertexCount}}
	return s, data
}
