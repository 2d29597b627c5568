package gfx_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

func TestVertexLayout(t *testing.T) {
	l := gfx.NewVertexLayout(
		gfx.VertexComponent{Attr: gfx.AttrPosition, Format: gfx.Float3},
		gfx.VertexComponent{Attr: gfx.AttrNormal, Format: gfx.Byte4N},
	)
	l.Add(gfx.AttrTexCoord0, gfx.Float2)

	assert.Equal(t, 3, l.NumComponents())
	assert.Equal(t, 12+4+8, l.ByteSize())
	assert.Equal(t, 16, l.ComponentByteOffset(2))
	assert.Equal(t, 1, l.ComponentIndexByAttr(gfx.AttrNormal))
	assert.Equal(t, -1, l.ComponentIndexByAttr(gfx.AttrColor0))
	assert.Zero(t, l.Divisor())

	assert.Panics(t, func() { l.Add(gfx.AttrPosition, gfx.Float4) })
}

func TestVertexLayoutDivisor(t *testing.T) {
	l := positionLayout()
	l.StepFunction = gfx.PerInstance
	assert.Equal(t, 1, l.Divisor())
	l.StepRate = 3
	assert.Equal(t, 3, l.Divisor())
}

func TestUniformLayout(t *testing.T) {
	l := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "color", Type: gfx.UniformVec4},
		gfx.UniformComponent{Name: "flag", Type: gfx.UniformBool},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)

	assert.Equal(t, 16+4+8, l.ByteSize())
	assert.Equal(t, 20, l.ComponentByteOffset(2))
	assert.Equal(t, 1, l.ComponentIndex("flag"))
	assert.Equal(t, -1, l.ComponentIndex("missing"))

	same := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "color", Type: gfx.UniformVec4},
		gfx.UniformComponent{Name: "flag", Type: gfx.UniformBool},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)
	assert.Equal(t, l.TypeHash(), same.TypeHash())

	retyped := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "color", Type: gfx.UniformVec3},
		gfx.UniformComponent{Name: "flag", Type: gfx.UniformBool},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)
	assert.NotEqual(t, l.TypeHash(), retyped.TypeHash())

	assert.Panics(t, func() {
		gfx.NewUniformLayout(
			gfx.UniformComponent{Name: "a", Type: gfx.UniformFloat},
			gfx.UniformComponent{Name: "a", Type: gfx.UniformFloat},
		)
	})
}

func TestUniformBlockSetters(t *testing.T) {
	l := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "scale", Type: gfx.UniformFloat},
		gfx.UniformComponent{Name: "flag", Type: gfx.UniformBool},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)
	tex := resource.Id{Stamp: 9, SlotIndex: 3, Type: gfx.TextureResource}

	b := gfx.NewUniformBlock(l).
		SetFloat("scale", 2.5).
		SetBool("flag", true).
		SetTexture("tex", tex)
	data := b.Bytes()
	require.Len(t, data, l.ByteSize())

	assert.Equal(t, float32(2.5), math.Float32frombits(binary.LittleEndian.Uint32(data[0:])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, tex, resource.UnpackId(binary.LittleEndian.Uint64(data[8:])))
	assert.Equal(t, l.TypeHash(), b.TypeHash())

	assert.Panics(t, func() { b.SetVec4("scale", mgl32.Vec4{}) }, "type mismatch")
	assert.Panics(t, func() { b.SetFloat("missing", 1) })
}

func TestPixelFormat(t *testing.T) {
	assert.Equal(t, 4, gfx.RGBA8.ByteSize())
	assert.Equal(t, 3, gfx.RGB8.ByteSize())
	assert.Equal(t, 64*32*4, gfx.RGBA8.ImageSize(64, 32))
	assert.True(t, gfx.DXT1.IsCompressed())
	assert.True(t, gfx.D24S8.IsDepth())
	assert.False(t, gfx.RGBA8.IsDepth())
	assert.True(t, gfx.RGBA8.IsColorRenderTarget())
	assert.False(t, gfx.DXT5.IsColorRenderTarget())

	f, err := gfx.ParsePixelFormat(gfx.RGBA8.String())
	require.NoError(t, err)
	assert.Equal(t, gfx.RGBA8, f)
	_, err = gfx.ParsePixelFormat("bogus")
	assert.Error(t, err)
}

func TestSetupPoolSizes(t *testing.T) {
	s := gfx.DefaultSetup()
	assert.Equal(t, gfx.DefaultPoolSize, s.PoolSize(gfx.MeshResource))
	s.SetPoolSize(gfx.MeshResource, 12)
	assert.Equal(t, 12, s.PoolSize(gfx.MeshResource))
	assert.Panics(t, func() { s.PoolSize(resource.InvalidType) })
}
