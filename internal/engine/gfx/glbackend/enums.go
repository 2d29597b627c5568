package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
)

// S3TC formats are an extension and not part of the core profile bindings.
const (
	compressedRGBAS3TCDXT1 = 0x83F1
	compressedRGBAS3TCDXT3 = 0x83F2
	compressedRGBAS3TCDXT5 = 0x83F3
)

var capabilities = [...]uint32{
	gfx.CapDepthTest:         gl.DEPTH_TEST,
	gfx.CapStencilTest:       gl.STENCIL_TEST,
	gfx.CapBlend:             gl.BLEND,
	gfx.CapCullFace:          gl.CULL_FACE,
	gfx.CapPolygonOffsetFill: gl.POLYGON_OFFSET_FILL,
	gfx.CapScissorTest:       gl.SCISSOR_TEST,
	gfx.CapDither:            gl.DITHER,
	gfx.CapMultisample:       gl.MULTISAMPLE,
}

var compareFuncs = [...]uint32{
	gfx.CompareNever:        gl.NEVER,
	gfx.CompareLess:         gl.LESS,
	gfx.CompareEqual:        gl.EQUAL,
	gfx.CompareLessEqual:    gl.LEQUAL,
	gfx.CompareGreater:      gl.GREATER,
	gfx.CompareNotEqual:     gl.NOTEQUAL,
	gfx.CompareGreaterEqual: gl.GEQUAL,
	gfx.CompareAlways:       gl.ALWAYS,
}

var stencilOps = [...]uint32{
	gfx.StencilKeep:      gl.KEEP,
	gfx.StencilZero:      gl.ZERO,
	gfx.StencilReplace:   gl.REPLACE,
	gfx.StencilIncrClamp: gl.INCR,
	gfx.StencilDecrClamp: gl.DECR,
	gfx.StencilInvert:    gl.INVERT,
	gfx.StencilIncrWrap:  gl.INCR_WRAP,
	gfx.StencilDecrWrap:  gl.DECR_WRAP,
}

var blendFactors = [...]uint32{
	gfx.BlendZero:                  gl.ZERO,
	gfx.BlendOne:                   gl.ONE,
	gfx.BlendSrcColor:              gl.SRC_COLOR,
	gfx.BlendOneMinusSrcColor:      gl.ONE_MINUS_SRC_COLOR,
	gfx.BlendSrcAlpha:              gl.SRC_ALPHA,
	gfx.BlendOneMinusSrcAlpha:      gl.ONE_MINUS_SRC_ALPHA,
	gfx.BlendDstColor:              gl.DST_COLOR,
	gfx.BlendOneMinusDstColor:      gl.ONE_MINUS_DST_COLOR,
	gfx.BlendDstAlpha:              gl.DST_ALPHA,
	gfx.BlendOneMinusDstAlpha:      gl.ONE_MINUS_DST_ALPHA,
	gfx.BlendSrcAlphaSaturated:     gl.SRC_ALPHA_SATURATE,
	gfx.BlendConstantColor:         gl.CONSTANT_COLOR,
	gfx.BlendOneMinusConstantColor: gl.ONE_MINUS_CONSTANT_COLOR,
	gfx.BlendConstantAlpha:         gl.CONSTANT_ALPHA,
	gfx.BlendOneMinusConstantAlpha: gl.ONE_MINUS_CONSTANT_ALPHA,
}

var blendOps = [...]uint32{
	gfx.BlendOpAdd:             gl.FUNC_ADD,
	gfx.BlendOpSubtract:        gl.FUNC_SUBTRACT,
	gfx.BlendOpReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
}

var faces = [...]uint32{
	gfx.FaceFront: gl.FRONT,
	gfx.FaceBack:  gl.BACK,
	gfx.FaceBoth:  gl.FRONT_AND_BACK,
}

var bufferTargets = [...]uint32{
	gfx.VertexBufferTarget: gl.ARRAY_BUFFER,
	gfx.IndexBufferTarget:  gl.ELEMENT_ARRAY_BUFFER,
}

var usages = [...]uint32{
	gfx.Static:  gl.STATIC_DRAW,
	gfx.Dynamic: gl.DYNAMIC_DRAW,
	gfx.Stream:  gl.STREAM_DRAW,
}

var primitiveTypes = [...]uint32{
	gfx.Points:        gl.POINTS,
	gfx.Lines:         gl.LINES,
	gfx.LineStrip:     gl.LINE_STRIP,
	gfx.Triangles:     gl.TRIANGLES,
	gfx.TriangleStrip: gl.TRIANGLE_STRIP,
}

var indexTypes = [...]uint32{
	gfx.IndexNone: 0,
	gfx.Index16:   gl.UNSIGNED_SHORT,
	gfx.Index32:   gl.UNSIGNED_INT,
}

var textureTargets = [...]uint32{
	gfx.Texture2D:   gl.TEXTURE_2D,
	gfx.TextureCube: gl.TEXTURE_CUBE_MAP,
}

var filterModes = [...]int32{
	gfx.FilterNearest:              gl.NEAREST,
	gfx.FilterLinear:               gl.LINEAR,
	gfx.FilterNearestMipmapNearest: gl.NEAREST_MIPMAP_NEAREST,
	gfx.FilterNearestMipmapLinear:  gl.NEAREST_MIPMAP_LINEAR,
	gfx.FilterLinearMipmapNearest:  gl.LINEAR_MIPMAP_NEAREST,
	gfx.FilterLinearMipmapLinear:   gl.LINEAR_MIPMAP_LINEAR,
}

var wrapModes = [...]int32{
	gfx.WrapRepeat:         gl.REPEAT,
	gfx.WrapClampToEdge:    gl.CLAMP_TO_EDGE,
	gfx.WrapMirroredRepeat: gl.MIRRORED_REPEAT,
}

var shaderStages = [...]uint32{
	gfx.VertexShader:   gl.VERTEX_SHADER,
	gfx.FragmentShader: gl.FRAGMENT_SHADER,
}

type vertexFormat struct {
	size       int32
	xtype      uint32
	normalized bool
}

var vertexFormats = [...]vertexFormat{
	gfx.Float:   {1, gl.FLOAT, false},
	gfx.Float2:  {2, gl.FLOAT, false},
	gfx.Float3:  {3, gl.FLOAT, false},
	gfx.Float4:  {4, gl.FLOAT, false},
	gfx.Byte4:   {4, gl.BYTE, false},
	gfx.Byte4N:  {4, gl.BYTE, true},
	gfx.UByte4:  {4, gl.UNSIGNED_BYTE, false},
	gfx.UByte4N: {4, gl.UNSIGNED_BYTE, true},
	gfx.Short2:  {2, gl.SHORT, false},
	gfx.Short2N: {2, gl.SHORT, true},
	gfx.Short4:  {4, gl.SHORT, false},
	gfx.Short4N: {4, gl.SHORT, true},
}

// pixelFormat holds the GL parameters for uploading and reading a format.
// Compressed formats only use internal.
type pixelFormat struct {
	internal uint32
	format   uint32
	xtype    uint32
}

var pixelFormats = [...]pixelFormat{
	gfx.PixelFormatNone: {},
	gfx.RGBA8:           {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	gfx.RGB8:            {gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE},
	gfx.RGBA4:           {gl.RGBA4, gl.RGBA, gl.UNSIGNED_SHORT_4_4_4_4},
	gfx.R5G6B5:          {gl.RGB565, gl.RGB, gl.UNSIGNED_SHORT_5_6_5},
	gfx.R5G5B5A1:        {gl.RGB5_A1, gl.RGBA, gl.UNSIGNED_SHORT_5_5_5_1},
	gfx.RGBA32F:         {gl.RGBA32F, gl.RGBA, gl.FLOAT},
	gfx.RGBA16F:         {gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT},
	gfx.L8:              {gl.R8, gl.RED, gl.UNSIGNED_BYTE},
	gfx.DXT1:            {internal: compressedRGBAS3TCDXT1},
	gfx.DXT3:            {internal: compressedRGBAS3TCDXT3},
	gfx.DXT5:            {internal: compressedRGBAS3TCDXT5},
	gfx.D16:             {gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT},
	gfx.D32:             {gl.DEPTH_COMPONENT32, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT},
	gfx.D24S8:           {gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8},
}

func clearMask(t gfx.ClearTarget) uint32 {
	var mask uint32
	if t&gfx.ClearColor != 0 {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if t&gfx.ClearDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if t&gfx.ClearStencil != 0 {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	return mask
}

func lookup[E ~uint8, V any](table []V, e E, what string) V {
	if int(e) >= len(table) {
		panic(fmt.Sprintf("glbackend: invalid %s %d", what, e))
	}
	return table[e]
}
