// Package glbackend implements gfx.Device on OpenGL 4.1 core profile. All
// methods must be called from the thread that owns the GL context.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Device issues gfx.Device calls to the current GL context.
type Device struct {
	log        *zap.Logger
	extensions map[string]bool
}

var _ gfx.Device = (*Device)(nil)

// New loads the GL function pointers. It must be called after the GL
// context was created and made current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		log:        logger.Named("gfx.gl"),
		extensions: make(map[string]bool),
	}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := uint32(0); i < uint32(n); i++ {
		d.extensions[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i))] = true
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int("extensions", len(d.extensions)),
	)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	return d, nil
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Scissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Enable(c gfx.Capability) {
	gl.Enable(lookup(capabilities[:], c, "capability"))
}

func (d *Device) Disable(c gfx.Capability) {
	gl.Disable(lookup(capabilities[:], c, "capability"))
}

func (d *Device) DepthFunc(f gfx.CompareFunc) {
	gl.DepthFunc(lookup(compareFuncs[:], f, "compare func"))
}

func (d *Device) DepthMask(write bool) {
	gl.DepthMask(write)
}

func (d *Device) StencilFuncSeparate(face gfx.Face, f gfx.CompareFunc, ref, readMask uint8) {
	gl.StencilFuncSeparate(lookup(faces[:], face, "face"), lookup(compareFuncs[:], f, "compare func"),
		int32(ref), uint32(readMask))
}

func (d *Device) StencilOpSeparate(face gfx.Face, fail, depthFail, pass gfx.StencilOp) {
	gl.StencilOpSeparate(lookup(faces[:], face, "face"),
		lookup(stencilOps[:], fail, "stencil op"),
		lookup(stencilOps[:], depthFail, "stencil op"),
		lookup(stencilOps[:], pass, "stencil op"))
}

func (d *Device) StencilMaskSeparate(face gfx.Face, writeMask uint8) {
	gl.StencilMaskSeparate(lookup(faces[:], face, "face"), uint32(writeMask))
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gfx.BlendFactor) {
	gl.BlendFuncSeparate(
		lookup(blendFactors[:], srcRGB, "blend factor"),
		lookup(blendFactors[:], dstRGB, "blend factor"),
		lookup(blendFactors[:], srcAlpha, "blend factor"),
		lookup(blendFactors[:], dstAlpha, "blend factor"))
}

func (d *Device) BlendEquationSeparate(opRGB, opAlpha gfx.BlendOperation) {
	gl.BlendEquationSeparate(lookup(blendOps[:], opRGB, "blend op"), lookup(blendOps[:], opAlpha, "blend op"))
}

func (d *Device) BlendColor(c mgl32.Vec4) {
	gl.BlendColor(c[0], c[1], c[2], c[3])
}

func (d *Device) ColorMask(m gfx.PixelChannel) {
	gl.ColorMask(m&gfx.ChannelR != 0, m&gfx.ChannelG != 0, m&gfx.ChannelB != 0, m&gfx.ChannelA != 0)
}

func (d *Device) CullFace(f gfx.Face) {
	gl.CullFace(lookup(faces[:], f, "face"))
}

func (d *Device) FrontFaceClockwise(cw bool) {
	if cw {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
}

func (d *Device) BindBuffer(target gfx.BufferTarget, buf uint32) {
	gl.BindBuffer(lookup(bufferTargets[:], target, "buffer target"), buf)
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *Device) UseProgram(prog uint32) {
	gl.UseProgram(prog)
}

func (d *Device) BindTexture(unit int, typ gfx.TextureType, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(lookup(textureTargets[:], typ, "texture type"), tex)
}

func (d *Device) BindFramebuffer(fb uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
}

func (d *Device) VertexAttribPointer(index int, format gfx.VertexFormat, stride, offset int) {
	vf := lookup(vertexFormats[:], format, "vertex format")
	gl.VertexAttribPointerWithOffset(uint32(index), vf.size, vf.xtype, vf.normalized, int32(stride), uintptr(offset))
}

func (d *Device) EnableVertexAttribArray(index int) {
	gl.EnableVertexAttribArray(uint32(index))
}

func (d *Device) DisableVertexAttribArray(index int) {
	gl.DisableVertexAttribArray(uint32(index))
}

func (d *Device) VertexAttribDivisor(index, divisor int) {
	gl.VertexAttribDivisor(uint32(index), uint32(divisor))
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) DeleteVertexArray(vao uint32) {
	if vao != 0 {
		gl.DeleteVertexArrays(1, &vao)
	}
}

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) BufferData(target gfx.BufferTarget, size int, data []byte, usage gfx.Usage) {
	gl.BufferData(lookup(bufferTargets[:], target, "buffer target"), size, ptr(data), lookup(usages[:], usage, "usage"))
}

func (d *Device) BufferSubData(target gfx.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(lookup(bufferTargets[:], target, "buffer target"), offset, len(data), gl.Ptr(data))
}

func (d *Device) DeleteBuffer(buf uint32) {
	gl.DeleteBuffers(1, &buf)
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) UniformVec2(loc int32, v mgl32.Vec2) {
	gl.Uniform2fv(loc, 1, &v[0])
}

func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3fv(loc, 1, &v[0])
}

func (d *Device) UniformVec4(loc int32, v mgl32.Vec4) {
	gl.Uniform4fv(loc, 1, &v[0])
}

func (d *Device) UniformMat2(loc int32, m mgl32.Mat2) {
	gl.UniformMatrix2fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMat3(loc int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) Clear(targets gfx.ClearTarget, color mgl32.Vec4, depth float32, stencil uint8) {
	if targets&gfx.ClearColor != 0 {
		gl.ClearColor(color[0], color[1], color[2], color[3])
	}
	if targets&gfx.ClearDepth != 0 {
		gl.ClearDepth(float64(depth))
	}
	if targets&gfx.ClearStencil != 0 {
		gl.ClearStencil(int32(stencil))
	}
	gl.Clear(clearMask(targets))
}

func (d *Device) DrawArrays(prim gfx.PrimitiveType, first, count int) {
	gl.DrawArrays(lookup(primitiveTypes[:], prim, "primitive type"), int32(first), int32(count))
}

func (d *Device) DrawElements(prim gfx.PrimitiveType, count int, indexType gfx.IndexType, byteOffset int) {
	gl.DrawElements(lookup(primitiveTypes[:], prim, "primitive type"), int32(count),
		lookup(indexTypes[:], indexType, "index type"), gl.PtrOffset(byteOffset))
}

func (d *Device) DrawArraysInstanced(prim gfx.PrimitiveType, first, count, instances int) {
	gl.DrawArraysInstanced(lookup(primitiveTypes[:], prim, "primitive type"), int32(first), int32(count), int32(instances))
}

func (d *Device) DrawElementsInstanced(prim gfx.PrimitiveType, count int, indexType gfx.IndexType, byteOffset, instances int) {
	gl.DrawElementsInstanced(lookup(primitiveTypes[:], prim, "primitive type"), int32(count),
		lookup(indexTypes[:], indexType, "index type"), gl.PtrOffset(byteOffset), int32(instances))
}

func (d *Device) ReadPixels(x, y, width, height int, format gfx.PixelFormat, buf []byte) {
	pf := lookup(pixelFormats[:], format, "pixel format")
	if pf.format == 0 {
		panic(fmt.Sprintf("glbackend: cannot read back %s pixels", format))
	}
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), pf.format, pf.xtype, gl.Ptr(buf))
}

// Supports reports optional features. Instancing and float textures are
// core in 4.1; texture compression depends on extensions.
func (d *Device) Supports(f gfx.Feature) bool {
	switch f {
	case gfx.FeatureInstancing, gfx.FeatureTextureFloat, gfx.FeatureTextureHalfFloat:
		return true
	case gfx.FeatureTextureCompressionDXT:
		return d.extensions["GL_EXT_texture_compression_s3tc"]
	case gfx.FeatureTextureCompressionETC2:
		return d.extensions["GL_ARB_ES3_compatibility"]
	default:
		return false
	}
}

// HasExtension reports whether the context advertises ext.
func (d *Device) HasExtension(ext string) bool {
	return d.extensions[ext]
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func infoLog(length int32, get func(int32, *int32, *uint8)) string {
	if length <= 0 {
		return ""
	}
	log := make([]byte, length)
	get(length, nil, &log[0])
	return strings.TrimRight(string(log), "\x00\n")
}
