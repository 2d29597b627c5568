package gfx

import "github.com/go-gl/mathgl/mgl32"

// TextureDesc describes the storage of a texture for Device.CreateTexture.
type TextureDesc struct {
	Type       TextureType
	Width      int
	Height     int
	NumMipMaps int
	Format     PixelFormat
	MinFilter  TextureFilterMode
	MagFilter  TextureFilterMode
	WrapU      TextureWrapMode
	WrapV      TextureWrapMode
}

// TextureImage is the pixel data of one face and mip level. Nil Data
// allocates uninitialized storage.
type TextureImage struct {
	Face   int
	Mip    int
	Width  int
	Height int
	Data   []byte
}

// AttribBinding binds a vertex attribute slot to a shader input name.
type AttribBinding struct {
	Attr VertexAttr
	Name string
}

// RenderTarget holds the native objects of an offscreen render target.
type RenderTarget struct {
	Framebuffer       uint32
	DepthRenderbuffer uint32
}

// Device is the native call surface used by factories and the renderer.
// Handles are backend object names; 0 means no object. Calls that bind
// state leave it bound; the renderer tracks it. Only the methods
// returning an error can fail.
type Device interface {
	// Fixed-function state.
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f CompareFunc)
	DepthMask(write bool)
	StencilFuncSeparate(face Face, f CompareFunc, ref uint8, readMask uint8)
	StencilOpSeparate(face Face, fail, depthFail, pass StencilOp)
	StencilMaskSeparate(face Face, writeMask uint8)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	BlendEquationSeparate(opRGB, opAlpha BlendOperation)
	BlendColor(c mgl32.Vec4)
	ColorMask(mask PixelChannel)
	CullFace(f Face)
	FrontFaceClockwise(cw bool)

	// Binding.
	BindBuffer(target BufferTarget, buf uint32)
	BindVertexArray(vao uint32)
	UseProgram(prog uint32)
	BindTexture(unit int, typ TextureType, tex uint32)
	BindFramebuffer(fb uint32)

	// Vertex attributes.
	VertexAttribPointer(index int, format VertexFormat, stride, offset int)
	EnableVertexAttribArray(index int)
	DisableVertexAttribArray(index int)
	VertexAttribDivisor(index int, divisor int)

	// Resources. Buffer data calls act on the buffer bound to target.
	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BufferData(target BufferTarget, size int, data []byte, usage Usage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	DeleteBuffer(buf uint32)
	CreateTexture(desc TextureDesc, images []TextureImage) (uint32, error)
	DeleteTexture(tex uint32)
	CreateRenderTarget(colorTex uint32, width, height int, depth PixelFormat) (RenderTarget, error)
	DeleteRenderTarget(rt RenderTarget)
	CompileShader(stage ShaderStage, source string) (uint32, error)
	DeleteShader(sh uint32)
	LinkProgram(vs, fs uint32, attribs []AttribBinding) (uint32, error)
	DeleteProgram(prog uint32)
	UniformLocation(prog uint32, name string) int32

	// Uniform uploads to the program in use.
	Uniform1f(loc int32, v float32)
	UniformVec2(loc int32, v mgl32.Vec2)
	UniformVec3(loc int32, v mgl32.Vec3)
	UniformVec4(loc int32, v mgl32.Vec4)
	UniformMat2(loc int32, m mgl32.Mat2)
	UniformMat3(loc int32, m mgl32.Mat3)
	UniformMat4(loc int32, m mgl32.Mat4)
	Uniform1i(loc int32, v int32)

	// Frame.
	Clear(targets ClearTarget, color mgl32.Vec4, depth float32, stencil uint8)
	DrawArrays(prim PrimitiveType, first, count int)
	DrawElements(prim PrimitiveType, count int, indexType IndexType, byteOffset int)
	DrawArraysInstanced(prim PrimitiveType, first, count, instances int)
	DrawElementsInstanced(prim PrimitiveType, count int, indexType IndexType, byteOffset, instances int)
	ReadPixels(x, y, width, height int, format PixelFormat, buf []byte)
	Supports(f Feature) bool
}
