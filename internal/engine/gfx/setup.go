package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

type setupSource uint8

const (
	fromData setupSource = iota
	fromFile
	fromEmpty
	fromFullScreenQuad
	asRenderTarget
)

// MeshSetup describes a mesh. Data passed along with the setup holds the
// vertex data immediately followed by the index data.
type MeshSetup struct {
	Locator     resource.Locator
	VertexUsage Usage
	IndexUsage  Usage
	Layout      VertexLayout
	NumVertices int
	IndexType   IndexType
	NumIndices  int
	PrimGroups  []PrimitiveGroup

	// FlipV flips texture coordinates of a full-screen quad.
	FlipV bool

	source setupSource
}

// MeshFromData describes a mesh whose vertex and index data is passed to
// Create. Fill in Layout, NumVertices, IndexType and NumIndices.
func MeshFromData(vertexUsage, indexUsage Usage) MeshSetup {
	return MeshSetup{VertexUsage: vertexUsage, IndexUsage: indexUsage, source: fromData}
}

// MeshFromFile describes a mesh loaded asynchronously from loc. The
// blueprint provides layout and counts for the fetched bytes.
func MeshFromFile(loc resource.Locator, blueprint MeshSetup) MeshSetup {
	s := blueprint
	s.Locator = loc
	s.source = fromFile
	return s
}

// MeshEmpty describes a mesh with uninitialized buffers that are filled
// later with UpdateVertices. Usage must be Dynamic or Stream.
func MeshEmpty(numVertices int, vertexUsage Usage, indexType IndexType, numIndices int, indexUsage Usage) MeshSetup {
	return MeshSetup{
		VertexUsage: vertexUsage,
		IndexUsage:  indexUsage,
		NumVertices: numVertices,
		IndexType:   indexType,
		NumIndices:  numIndices,
		source:      fromEmpty,
	}
}

// FullScreenQuad describes a quad covering clip space with position and
// texcoord0 components.
func FullScreenQuad(flipV bool) MeshSetup {
	return MeshSetup{
		VertexUsage: Static,
		IndexUsage:  Static,
		Layout: NewVertexLayout(
			VertexComponent{Attr: AttrPosition, Format: Float3},
			VertexComponent{Attr: AttrTexCoord0, Format: Float2},
		),
		NumVertices: 4,
		IndexType:   Index16,
		NumIndices:  6,
		FlipV:       flipV,
		source:      fromFullScreenQuad,
	}
}

// ShouldSetupFromFile reports setups that can only be created by a loader.
func (s MeshSetup) ShouldSetupFromFile() bool { return s.source == fromFile }

// ShouldSetupEmpty reports setups without initial data.
func (s MeshSetup) ShouldSetupEmpty() bool { return s.source == fromEmpty }

// ShouldSetupFullScreenQuad reports generated full-screen quads.
func (s MeshSetup) ShouldSetupFullScreenQuad() bool { return s.source == fromFullScreenQuad }

// VertexDataSize returns the byte size of the vertex data.
func (s MeshSetup) VertexDataSize() int {
	return s.NumVertices * s.Layout.ByteSize()
}

// IndexDataSize returns the byte size of the index data.
func (s MeshSetup) IndexDataSize() int {
	return s.NumIndices * s.IndexType.ByteSize()
}

// TextureSetup describes a texture or a render target.
type TextureSetup struct {
	Locator     resource.Locator
	Type        TextureType
	Width       int
	Height      int
	NumMipMaps  int
	ColorFormat PixelFormat
	DepthFormat PixelFormat
	MinFilter   TextureFilterMode
	MagFilter   TextureFilterMode
	WrapU       TextureWrapMode
	WrapV       TextureWrapMode

	source setupSource
}

// TextureFromPixelData describes a texture created from raw pixels. The
// data holds every face, each with all mipmaps from largest to smallest.
func TextureFromPixelData(width, height, numMipMaps int, typ TextureType, format PixelFormat) TextureSetup {
	return TextureSetup{
		Type:        typ,
		Width:       width,
		Height:      height,
		NumMipMaps:  max(1, numMipMaps),
		ColorFormat: format,
		MinFilter:   FilterNearest,
		MagFilter:   FilterNearest,
		source:      fromData,
	}
}

// TextureFromFile describes a 2D texture decoded from an encoded image
// (PNG, JPEG, TGA, ...). Size and format are taken from the image.
func TextureFromFile(loc resource.Locator) TextureSetup {
	return TextureSetup{
		Locator:     loc,
		Type:        Texture2D,
		NumMipMaps:  1,
		ColorFormat: RGBA8,
		MinFilter:   FilterLinear,
		MagFilter:   FilterLinear,
		WrapU:       WrapClampToEdge,
		WrapV:       WrapClampToEdge,
		source:      fromFile,
	}
}

// TextureRenderTarget describes an offscreen render target. Use
// PixelFormatNone as depthFormat for a color-only target.
func TextureRenderTarget(width, height int, colorFormat, depthFormat PixelFormat) TextureSetup {
	return TextureSetup{
		Type:        Texture2D,
		Width:       width,
		Height:      height,
		NumMipMaps:  1,
		ColorFormat: colorFormat,
		DepthFormat: depthFormat,
		MinFilter:   FilterLinear,
		MagFilter:   FilterLinear,
		WrapU:       WrapClampToEdge,
		WrapV:       WrapClampToEdge,
		source:      asRenderTarget,
	}
}

// ShouldSetupFromFile reports setups decoded from encoded image bytes.
func (s TextureSetup) ShouldSetupFromFile() bool { return s.source == fromFile }

// IsRenderTarget reports render target setups.
func (s TextureSetup) IsRenderTarget() bool { return s.source == asRenderTarget }

// HasDepth reports render targets with a depth buffer.
func (s TextureSetup) HasDepth() bool { return s.DepthFormat != PixelFormatNone }

// PixelDataSize returns the byte size pixel data for this setup must have.
func (s TextureSetup) PixelDataSize() int {
	size := 0
	for mip := 0; mip < s.NumMipMaps; mip++ {
		size += s.ColorFormat.ImageSize(max(1, s.Width>>mip), max(1, s.Height>>mip))
	}
	return size * s.Type.NumFaces()
}

// ShaderSetup describes a single shader stage.
type ShaderSetup struct {
	Locator resource.Locator
	Stage   ShaderStage
	Source  string
}

// ProgramSource is one program variant of a bundle, selected by Mask.
// Either the sources or the shader Ids are used.
type ProgramSource struct {
	Mask           uint32
	VertexSource   string
	FragmentSource string
	VertexShader   resource.Id
	FragmentShader resource.Id
}

// UniformBlockSetup declares a uniform block of a program bundle.
type UniformBlockSetup struct {
	Name   string
	Layout UniformLayout
	Stage  ShaderStage
}

// ProgramBundleSetup describes a set of program variants that share
// uniform blocks and vertex attribute bindings.
type ProgramBundleSetup struct {
	Locator       resource.Locator
	Programs      []ProgramSource
	UniformBlocks []UniformBlockSetup

	// AttribNames overrides the shader name bound to a vertex attribute.
	// Attributes not listed are bound to VertexAttr.String().
	AttribNames map[VertexAttr]string
}

// AddProgram adds a variant compiled from source.
func (s *ProgramBundleSetup) AddProgram(mask uint32, vertexSrc, fragmentSrc string) {
	s.Programs = append(s.Programs, ProgramSource{Mask: mask, VertexSource: vertexSrc, FragmentSource: fragmentSrc})
}

// AddProgramFromShaders adds a variant linked from existing shaders.
func (s *ProgramBundleSetup) AddProgramFromShaders(mask uint32, vs, fs resource.Id) {
	s.Programs = append(s.Programs, ProgramSource{Mask: mask, VertexShader: vs, FragmentShader: fs})
}

// AddUniformBlock declares a uniform block and returns its index.
func (s *ProgramBundleSetup) AddUniformBlock(name string, layout UniformLayout, stage ShaderStage) int {
	if len(s.UniformBlocks) >= MaxUniformBlocks {
		panic("gfx: too many uniform blocks")
	}
	s.UniformBlocks = append(s.UniformBlocks, UniformBlockSetup{Name: name, Layout: layout, Stage: stage})
	return len(s.UniformBlocks) - 1
}

// AttribName returns the shader attribute name bound to attr.
func (s ProgramBundleSetup) AttribName(attr VertexAttr) string {
	if name, ok := s.AttribNames[attr]; ok {
		return name
	}
	return attr.String()
}

// UniformBlockLayout returns the layout of block i.
func (s ProgramBundleSetup) UniformBlockLayout(i int) UniformLayout {
	if i < 0 || i >= len(s.UniformBlocks) {
		panic(fmt.Sprintf("gfx: uniform block index %d out of range", i))
	}
	return s.UniformBlocks[i].Layout
}

// DrawStateSetup combines meshes, a program bundle and pipeline state.
type DrawStateSetup struct {
	Locator              resource.Locator
	Meshes               [MaxInputMeshes]resource.Id
	Program              resource.Id
	ProgramSelectionMask uint32
	DepthStencilState    DepthStencilState
	BlendState           BlendState
	BlendColor           mgl32.Vec4
	RasterizerState      RasterizerState
}

// DrawStateFromMeshAndProg describes a draw state for one mesh with
// default pipeline state.
func DrawStateFromMeshAndProg(mesh, prog resource.Id) DrawStateSetup {
	s := DrawStateSetup{
		Program:           prog,
		DepthStencilState: DefaultDepthStencilState(),
		BlendState:        DefaultBlendState(),
		BlendColor:        DefaultBlendColor(),
		RasterizerState:   DefaultRasterizerState(),
	}
	s.Meshes[0] = mesh
	return s
}

// Setup configures the gfx module.
type Setup struct {
	Width        int
	Height       int
	Title        string
	Windowed     bool
	SwapInterval int
	ColorFormat  PixelFormat
	DepthFormat  PixelFormat
	Samples      int

	ResourceLabelStackCapacity int
	ResourceRegistryCapacity   int

	poolSizes [NumResourceTypes + 1]int
}

// DefaultPoolSize is the slot count of pools not configured explicitly.
const DefaultPoolSize = 128

// DefaultSetup returns a windowed 640x400 setup.
func DefaultSetup() Setup {
	return Setup{
		Width:                      640,
		Height:                     400,
		Title:                      "midgard-gfx",
		Windowed:                   true,
		SwapInterval:               1,
		ColorFormat:                RGB8,
		DepthFormat:                D24S8,
		Samples:                    1,
		ResourceLabelStackCapacity: 256,
		ResourceRegistryCapacity:   256,
	}
}

// SetPoolSize sets the slot count of the pool for t.
func (s *Setup) SetPoolSize(t resource.Type, size int) {
	if t == resource.InvalidType || int(t) > NumResourceTypes {
		panic(fmt.Sprintf("gfx: invalid resource type %d", t))
	}
	s.poolSizes[t] = size
}

// PoolSize returns the slot count of the pool for t.
func (s Setup) PoolSize(t resource.Type) int {
	if t == resource.InvalidType || int(t) > NumResourceTypes {
		panic(fmt.Sprintf("gfx: invalid resource type %d", t))
	}
	if s.poolSizes[t] > 0 {
		return s.poolSizes[t]
	}
	return DefaultPoolSize
}

// DisplayAttrs returns the display attributes the setup asks for.
func (s Setup) DisplayAttrs() DisplayAttrs {
	return DisplayAttrs{
		WindowWidth:       s.Width,
		WindowHeight:      s.Height,
		FramebufferWidth:  s.Width,
		FramebufferHeight: s.Height,
		ColorPixelFormat:  s.ColorFormat,
		DepthPixelFormat:  s.DepthFormat,
		Samples:           s.Samples,
		Windowed:          s.Windowed,
		SwapInterval:      s.SwapInterval,
		Title:             s.Title,
	}
}

// DisplayAttrs describes the default framebuffer or the bound render target.
type DisplayAttrs struct {
	WindowWidth       int
	WindowHeight      int
	WindowPosX        int
	WindowPosY        int
	FramebufferWidth  int
	FramebufferHeight int
	ColorPixelFormat  PixelFormat
	DepthPixelFormat  PixelFormat
	Samples           int
	Windowed          bool
	SwapInterval      int
	Title             string
}

// Display reports the attributes of the default framebuffer.
type Display interface {
	DisplayAttrs() DisplayAttrs
}

// StaticDisplay is a Display with fixed attributes, used without a window.
type StaticDisplay struct {
	Attrs DisplayAttrs
}

// DisplayAttrs implements Display.
func (d StaticDisplay) DisplayAttrs() DisplayAttrs {
	return d.Attrs
}
