// Package gfx implements the pooled GPU resource lifecycle and the
// state-caching renderer on top of a backend-neutral Device.
package gfx

import (
	"fmt"

	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Resource type tags used in resource.Id.Type.
const (
	MeshResource resource.Type = iota + 1
	TextureResource
	ShaderResource
	ProgramBundleResource
	DrawStateResource

	// NumResourceTypes counts the gfx resource types.
	NumResourceTypes = int(DrawStateResource)
)

// ResourceTypeName returns a readable name for a gfx resource type.
func ResourceTypeName(t resource.Type) string {
	switch t {
	case MeshResource:
		return "mesh"
	case TextureResource:
		return "texture"
	case ShaderResource:
		return "shader"
	case ProgramBundleResource:
		return "program_bundle"
	case DrawStateResource:
		return "draw_state"
	default:
		return fmt.Sprintf("type(%d)", t)
	}
}

// Limits.
const (
	MaxInputMeshes     = 4
	MaxTextureSamplers = 16
	MaxUniformBlocks   = 4
	StreamBufferSlots  = 2
)

// Usage describes how often buffer contents change.
type Usage uint8

const (
	Static Usage = iota
	Dynamic
	Stream
)

func (u Usage) String() string {
	switch u {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Stream:
		return "stream"
	default:
		return fmt.Sprintf("usage(%d)", u)
	}
}

// IndexType is the element type of an index buffer.
type IndexType uint8

const (
	IndexNone IndexType = iota
	Index16
	Index32
)

// ByteSize returns the size of one index.
func (t IndexType) ByteSize() int {
	switch t {
	case Index16:
		return 2
	case Index32:
		return 4
	default:
		return 0
	}
}

// PrimitiveType is the topology of a primitive group.
type PrimitiveType uint8

const (
	Points PrimitiveType = iota
	Lines
	LineStrip
	Triangles
	TriangleStrip
)

// VertexAttr names a vertex attribute slot.
type VertexAttr uint8

const (
	AttrPosition VertexAttr = iota
	AttrNormal
	AttrTexCoord0
	AttrTexCoord1
	AttrTexCoord2
	AttrTexCoord3
	AttrTangent
	AttrBinormal
	AttrWeights
	AttrIndices
	AttrColor0
	AttrColor1
	AttrInstance0
	AttrInstance1
	AttrInstance2
	AttrInstance3

	NumVertexAttrs = int(AttrInstance3) + 1
)

var vertexAttrNames = [NumVertexAttrs]string{
	"position", "normal",
	"texcoord0", "texcoord1", "texcoord2", "texcoord3",
	"tangent", "binormal", "weights", "indices",
	"color0", "color1",
	"instance0", "instance1", "instance2", "instance3",
}

// String returns the default shader attribute name of the slot.
func (a VertexAttr) String() string {
	if int(a) < NumVertexAttrs {
		return vertexAttrNames[a]
	}
	return fmt.Sprintf("attr(%d)", a)
}

// VertexFormat is the data format of one vertex component.
type VertexFormat uint8

const (
	Float VertexFormat = iota
	Float2
	Float3
	Float4
	Byte4
	Byte4N
	UByte4
	UByte4N
	Short2
	Short2N
	Short4
	Short4N
)

// ByteSize returns the size of one component of this format.
func (f VertexFormat) ByteSize() int {
	switch f {
	case Float:
		return 4
	case Float2:
		return 8
	case Float3:
		return 12
	case Float4:
		return 16
	case Byte4, Byte4N, UByte4, UByte4N, Short2, Short2N:
		return 4
	case Short4, Short4N:
		return 8
	default:
		panic(fmt.Sprintf("gfx: invalid vertex format %d", f))
	}
}

// StepFunction selects per-vertex or per-instance vertex fetching.
type StepFunction uint8

const (
	PerVertex StepFunction = iota
	PerInstance
)

// CompareFunc is a depth or stencil comparison function.
type CompareFunc uint8

const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// StencilOp is a stencil buffer operation.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrClamp
	StencilDecrClamp
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

// BlendFactor is a blend source or destination factor.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcAlphaSaturated
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
)

// BlendOperation combines source and destination.
type BlendOperation uint8

const (
	BlendOpAdd BlendOperation = iota
	BlendOpSubtract
	BlendOpReverseSubtract
)

// Face selects polygon faces for culling and stencil state.
type Face uint8

const (
	FaceFront Face = iota
	FaceBack
	FaceBoth
)

// PixelChannel is a bit mask of color channels.
type PixelChannel uint8

const (
	ChannelR PixelChannel = 1 << iota
	ChannelG
	ChannelB
	ChannelA

	ChannelNone PixelChannel = 0
	ChannelRGB               = ChannelR | ChannelG | ChannelB
	ChannelRGBA              = ChannelRGB | ChannelA
)

// PixelFormat is the format of texture and framebuffer pixels.
type PixelFormat uint8

const (
	PixelFormatNone PixelFormat = iota
	RGBA8
	RGB8
	RGBA4
	R5G6B5
	R5G5B5A1
	RGBA32F
	RGBA16F
	L8
	DXT1
	DXT3
	DXT5
	D16
	D32
	D24S8
)

var pixelFormatNames = [...]string{
	"none", "rgba8", "rgb8", "rgba4", "r5g6b5", "r5g5b5a1", "rgba32f", "rgba16f",
	"l8", "dxt1", "dxt3", "dxt5", "d16", "d32", "d24s8",
}

func (f PixelFormat) String() string {
	if int(f) < len(pixelFormatNames) {
		return pixelFormatNames[f]
	}
	return fmt.Sprintf("pixelformat(%d)", f)
}

// ParsePixelFormat is the inverse of String.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for i, name := range pixelFormatNames {
		if name == s {
			return PixelFormat(i), nil
		}
	}
	return PixelFormatNone, fmt.Errorf("unknown pixel format %q", s)
}

// ByteSize returns bytes per pixel, or 0 for block compressed formats.
func (f PixelFormat) ByteSize() int {
	switch f {
	case RGBA32F:
		return 16
	case RGBA16F:
		return 8
	case RGBA8, D32, D24S8:
		return 4
	case RGB8:
		return 3
	case RGBA4, R5G6B5, R5G5B5A1, D16:
		return 2
	case L8:
		return 1
	default:
		return 0
	}
}

// IsCompressed reports block compressed formats.
func (f PixelFormat) IsCompressed() bool {
	return f == DXT1 || f == DXT3 || f == DXT5
}

// IsDepth reports depth and depth-stencil formats.
func (f PixelFormat) IsDepth() bool {
	return f == D16 || f == D32 || f == D24S8
}

// IsColorRenderTarget reports formats usable as render target color.
func (f PixelFormat) IsColorRenderTarget() bool {
	switch f {
	case RGBA8, RGB8, RGBA4, R5G6B5, R5G5B5A1, RGBA32F, RGBA16F:
		return true
	default:
		return false
	}
}

// ImageSize returns the byte size of one width x height image.
func (f PixelFormat) ImageSize(width, height int) int {
	switch f {
	case DXT1:
		return max(1, (width+3)/4) * max(1, (height+3)/4) * 8
	case DXT3, DXT5:
		return max(1, (width+3)/4) * max(1, (height+3)/4) * 16
	default:
		return width * height * f.ByteSize()
	}
}

// TextureType is the dimensionality of a texture.
type TextureType uint8

const (
	Texture2D TextureType = iota
	TextureCube
)

// NumFaces returns 6 for cube maps and 1 otherwise.
func (t TextureType) NumFaces() int {
	if t == TextureCube {
		return 6
	}
	return 1
}

// TextureFilterMode is a texture sampling filter.
type TextureFilterMode uint8

const (
	FilterNearest TextureFilterMode = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapNearest
	FilterLinearMipmapLinear
)

// TextureWrapMode is a texture addressing mode.
type TextureWrapMode uint8

const (
	WrapRepeat TextureWrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// UniformType is the type of one uniform block component.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat2
	UniformMat3
	UniformMat4
	UniformBool
	UniformTexture
)

var uniformTypeNames = [...]string{
	"float", "vec2", "vec3", "vec4", "mat2", "mat3", "mat4", "bool", "texture",
}

func (t UniformType) String() string {
	if int(t) < len(uniformTypeNames) {
		return uniformTypeNames[t]
	}
	return fmt.Sprintf("uniformtype(%d)", t)
}

// ByteSize returns the size of the type inside a uniform block. Bools are
// stored as int32, textures as a packed resource.Id.
func (t UniformType) ByteSize() int {
	switch t {
	case UniformFloat, UniformBool:
		return 4
	case UniformVec2, UniformTexture:
		return 8
	case UniformVec3:
		return 12
	case UniformVec4, UniformMat2:
		return 16
	case UniformMat3:
		return 36
	case UniformMat4:
		return 64
	default:
		panic(fmt.Sprintf("gfx: invalid uniform type %d", t))
	}
}

// ClearTarget is a bit mask of the buffers Clear touches.
type ClearTarget uint8

const (
	ClearColor ClearTarget = 1 << iota
	ClearDepth
	ClearStencil

	ClearDepthStencil = ClearDepth | ClearStencil
	ClearAll          = ClearColor | ClearDepth | ClearStencil
)

// Feature is an optional backend capability.
type Feature uint8

const (
	FeatureTextureCompressionDXT Feature = iota
	FeatureTextureCompressionPVRTC
	FeatureTextureCompressionATC
	FeatureTextureCompressionETC2
	FeatureTextureFloat
	FeatureTextureHalfFloat
	FeatureInstancing
)

// ShaderStage selects the pipeline stage of a shader.
type ShaderStage uint8

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

func (s ShaderStage) String() string {
	if s == VertexShader {
		return "vertex"
	}
	return "fragment"
}

// BufferTarget is the binding point of a buffer.
type BufferTarget uint8

const (
	VertexBufferTarget BufferTarget = iota
	IndexBufferTarget
)

// Capability is a toggleable fixed-function pipeline feature.
type Capability uint8

const (
	CapDepthTest Capability = iota
	CapStencilTest
	CapBlend
	CapCullFace
	CapPolygonOffsetFill
	CapScissorTest
	CapDither
	CapMultisample
)
