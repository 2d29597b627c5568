// Package recorder implements gfx.Device without a GPU. Every call is
// recorded so tests and headless runs can inspect what the renderer and
// factories asked the device to do.
package recorder

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Device is a recording gfx.Device. Object names are handed out from a
// counter and tracked until deleted.
type Device struct {
	mu    sync.Mutex
	calls []Call

	nextHandle uint32
	live       map[uint32]string

	clearColor mgl32.Vec4

	// ShaderError, when set, is consulted by CompileShader. A non-nil
	// result fails the compile.
	ShaderError func(stage gfx.ShaderStage, source string) error
	// LinkError, when set, is consulted by LinkProgram.
	LinkError func(vs, fs uint32) error
	// Features lists the optional features Supports reports.
	Features map[gfx.Feature]bool
}

var _ gfx.Device = (*Device)(nil)

// New returns an empty recorder.
func New() *Device {
	return &Device{
		live:     make(map[uint32]string),
		Features: make(map[gfx.Feature]bool),
	}
}

// Calls returns a copy of the recorded calls.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Count returns how many times name was called.
func (d *Device) Count(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent call named name.
func (d *Device) Last(name string) (Call, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.calls) - 1; i >= 0; i-- {
		if d.calls[i].Name == name {
			return d.calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets the recorded calls. Live objects are kept.
func (d *Device) Reset() {
	d.mu.Lock()
	d.calls = d.calls[:0]
	d.mu.Unlock()
}

// NumLive returns the number of objects of kind ("buffer", "texture",
// "shader", "program", "vertexarray", "framebuffer", "renderbuffer") that
// were created and not deleted. An empty kind counts all objects.
func (d *Device) NumLive(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

func (d *Device) record(name string, args ...any) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Name: name, Args: args})
	d.mu.Unlock()
}

func (d *Device) alloc(kind string) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextHandle++
	d.live[d.nextHandle] = kind
	return d.nextHandle
}

func (d *Device) free(h uint32) {
	if h == 0 {
		return
	}
	d.mu.Lock()
	delete(d.live, h)
	d.mu.Unlock()
}

func (d *Device) Viewport(x, y, width, height int) { d.record("Viewport", x, y, width, height) }
func (d *Device) Scissor(x, y, width, height int)  { d.record("Scissor", x, y, width, height) }
func (d *Device) Enable(c gfx.Capability)          { d.record("Enable", c) }
func (d *Device) Disable(c gfx.Capability)         { d.record("Disable", c) }
func (d *Device) DepthFunc(f gfx.CompareFunc)      { d.record("DepthFunc", f) }
func (d *Device) DepthMask(write bool)             { d.record("DepthMask", write) }

func (d *Device) StencilFuncSeparate(face gfx.Face, f gfx.CompareFunc, ref, readMask uint8) {
	d.record("StencilFuncSeparate", face, f, ref, readMask)
}

func (d *Device) StencilOpSeparate(face gfx.Face, fail, depthFail, pass gfx.StencilOp) {
	d.record("StencilOpSeparate", face, fail, depthFail, pass)
}

func (d *Device) StencilMaskSeparate(face gfx.Face, writeMask uint8) {
	d.record("StencilMaskSeparate", face, writeMask)
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gfx.BlendFactor) {
	d.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (d *Device) BlendEquationSeparate(opRGB, opAlpha gfx.BlendOperation) {
	d.record("BlendEquationSeparate", opRGB, opAlpha)
}

func (d *Device) BlendColor(c mgl32.Vec4)      { d.record("BlendColor", c) }
func (d *Device) ColorMask(m gfx.PixelChannel) { d.record("ColorMask", m) }
func (d *Device) CullFace(f gfx.Face)          { d.record("CullFace", f) }
func (d *Device) FrontFaceClockwise(cw bool)   { d.record("FrontFaceClockwise", cw) }

func (d *Device) BindBuffer(target gfx.BufferTarget, buf uint32) { d.record("BindBuffer", target, buf) }
func (d *Device) BindVertexArray(vao uint32)                     { d.record("BindVertexArray", vao) }
func (d *Device) UseProgram(prog uint32)                         { d.record("UseProgram", prog) }
func (d *Device) BindFramebuffer(fb uint32)                      { d.record("BindFramebuffer", fb) }

func (d *Device) BindTexture(unit int, typ gfx.TextureType, tex uint32) {
	d.record("BindTexture", unit, typ, tex)
}

func (d *Device) VertexAttribPointer(index int, format gfx.VertexFormat, stride, offset int) {
	d.record("VertexAttribPointer", index, format, stride, offset)
}

func (d *Device) EnableVertexAttribArray(index int)  { d.record("EnableVertexAttribArray", index) }
func (d *Device) DisableVertexAttribArray(index int) { d.record("DisableVertexAttribArray", index) }

func (d *Device) VertexAttribDivisor(index, divisor int) {
	d.record("VertexAttribDivisor", index, divisor)
}

func (d *Device) GenVertexArray() uint32 {
	h := d.alloc("vertexarray")
	d.record("GenVertexArray", h)
	return h
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.free(vao)
	d.record("DeleteVertexArray", vao)
}

func (d *Device) GenBuffer() uint32 {
	h := d.alloc("buffer")
	d.record("GenBuffer", h)
	return h
}

func (d *Device) BufferData(target gfx.BufferTarget, size int, data []byte, usage gfx.Usage) {
	d.record("BufferData", target, size, len(data), usage)
}

func (d *Device) BufferSubData(target gfx.BufferTarget, offset int, data []byte) {
	d.record("BufferSubData", target, offset, len(data))
}

func (d *Device) DeleteBuffer(buf uint32) {
	d.free(buf)
	d.record("DeleteBuffer", buf)
}

func (d *Device) CreateTexture(desc gfx.TextureDesc, images []gfx.TextureImage) (uint32, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("recorder: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	h := d.alloc("texture")
	d.record("CreateTexture", h, desc, len(images))
	return h, nil
}

func (d *Device) DeleteTexture(tex uint32) {
	d.free(tex)
	d.record("DeleteTexture", tex)
}

func (d *Device) CreateRenderTarget(colorTex uint32, width, height int, depth gfx.PixelFormat) (gfx.RenderTarget, error) {
	rt := gfx.RenderTarget{Framebuffer: d.alloc("framebuffer")}
	if depth != gfx.PixelFormatNone {
		rt.DepthRenderbuffer = d.alloc("renderbuffer")
	}
	d.record("CreateRenderTarget", colorTex, width, height, depth, rt)
	return rt, nil
}

func (d *Device) DeleteRenderTarget(rt gfx.RenderTarget) {
	d.free(rt.Framebuffer)
	d.free(rt.DepthRenderbuffer)
	d.record("DeleteRenderTarget", rt)
}

func (d *Device) CompileShader(stage gfx.ShaderStage, source string) (uint32, error) {
	if d.ShaderError != nil {
		if err := d.ShaderError(stage, source); err != nil {
			d.record("CompileShader", stage, err)
			return 0, err
		}
	}
	h := d.alloc("shader")
	d.record("CompileShader", stage, h)
	return h, nil
}

func (d *Device) DeleteShader(sh uint32) {
	d.free(sh)
	d.record("DeleteShader", sh)
}

func (d *Device) LinkProgram(vs, fs uint32, attribs []gfx.AttribBinding) (uint32, error) {
	if d.LinkError != nil {
		if err := d.LinkError(vs, fs); err != nil {
			d.record("LinkProgram", vs, fs, err)
			return 0, err
		}
	}
	h := d.alloc("program")
	d.record("LinkProgram", vs, fs, h)
	return h, nil
}

func (d *Device) DeleteProgram(prog uint32) {
	d.free(prog)
	d.record("DeleteProgram", prog)
}

// UniformLocation hands out a location for every name.
func (d *Device) UniformLocation(prog uint32, name string) int32 {
	d.mu.Lock()
	d.nextHandle++
	loc := int32(d.nextHandle)
	d.mu.Unlock()
	d.record("UniformLocation", prog, name, loc)
	return loc
}

func (d *Device) Uniform1f(loc int32, v float32)      { d.record("Uniform1f", loc, v) }
func (d *Device) UniformVec2(loc int32, v mgl32.Vec2) { d.record("UniformVec2", loc, v) }
func (d *Device) UniformVec3(loc int32, v mgl32.Vec3) { d.record("UniformVec3", loc, v) }
func (d *Device) UniformVec4(loc int32, v mgl32.Vec4) { d.record("UniformVec4", loc, v) }
func (d *Device) UniformMat2(loc int32, m mgl32.Mat2) { d.record("UniformMat2", loc, m) }
func (d *Device) UniformMat3(loc int32, m mgl32.Mat3) { d.record("UniformMat3", loc, m) }
func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) { d.record("UniformMat4", loc, m) }
func (d *Device) Uniform1i(loc int32, v int32)        { d.record("Uniform1i", loc, v) }

func (d *Device) Clear(targets gfx.ClearTarget, color mgl32.Vec4, depth float32, stencil uint8) {
	if targets&gfx.ClearColor != 0 {
		d.mu.Lock()
		d.clearColor = color
		d.mu.Unlock()
	}
	d.record("Clear", targets, color, depth, stencil)
}

func (d *Device) DrawArrays(prim gfx.PrimitiveType, first, count int) {
	d.record("DrawArrays", prim, first, count)
}

func (d *Device) DrawElements(prim gfx.PrimitiveType, count int, indexType gfx.IndexType, byteOffset int) {
	d.record("DrawElements", prim, count, indexType, byteOffset)
}

func (d *Device) DrawArraysInstanced(prim gfx.PrimitiveType, first, count, instances int) {
	d.record("DrawArraysInstanced", prim, first, count, instances)
}

func (d *Device) DrawElementsInstanced(prim gfx.PrimitiveType, count int, indexType gfx.IndexType, byteOffset, instances int) {
	d.record("DrawElementsInstanced", prim, count, indexType, byteOffset, instances)
}

// ReadPixels fills buf with the last clear color in format.
func (d *Device) ReadPixels(x, y, width, height int, format gfx.PixelFormat, buf []byte) {
	d.mu.Lock()
	c := d.clearColor
	d.mu.Unlock()

	px := []byte{unorm(c[0]), unorm(c[1]), unorm(c[2]), unorm(c[3])}
	size := format.ByteSize()
	if size > len(px) || size == 0 {
		size = len(px)
	}
	for i := 0; i+size <= len(buf) && i < width*height*size; i += size {
		copy(buf[i:i+size], px[:size])
	}
	d.record("ReadPixels", x, y, width, height, format)
}

func (d *Device) Supports(f gfx.Feature) bool {
	return d.Features[f]
}

func unorm(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
