package gfx

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

type rect struct {
	x, y, width, height int
}

// Renderer mirrors the state currently set on the Device and only issues
// the calls needed to reach a requested state. It must only be used from
// the thread that owns the Device.
type Renderer struct {
	dev     Device
	display Display
	pools   *Pools
	log     *zap.Logger

	vao uint32

	rtValid         bool
	rtDirty         bool
	curRenderTarget *TextureSlot
	rtAttrs         DisplayAttrs

	curDrawState     *DrawStateSlot
	curMeshes        [MaxInputMeshes]*MeshSlot
	curProgramBundle *ProgramBundleSlot
	curProgram       *Program

	viewport     rect
	scissor      rect
	depthStencil DepthStencilState
	blend        BlendState
	blendColor   mgl32.Vec4
	rasterizer   RasterizerState

	vertexBuffer uint32
	indexBuffer  uint32
	program      uint32
	samplers2D   [MaxTextureSamplers]uint32
	samplersCube [MaxTextureSamplers]uint32
	attrs        [NumVertexAttrs]VertexAttrBinding
	attrVBs      [NumVertexAttrs]uint32
}

// NewRenderer creates a renderer and puts the device into the reset state.
func NewRenderer(dev Device, display Display, pools *Pools) *Renderer {
	r := &Renderer{
		dev:     dev,
		display: display,
		pools:   pools,
		log:     logger.Named("gfx.renderer"),
		rtDirty: true,
	}

	// Core profiles need a bound vertex array object.
	r.vao = dev.GenVertexArray()
	dev.BindVertexArray(r.vao)

	r.setupDepthStencilState()
	r.setupBlendState()
	r.setupRasterizerState()
	r.invalidateMeshState()
	return r
}

// Discard releases the renderer's own device objects.
func (r *Renderer) Discard() {
	r.invalidateMeshState()
	r.invalidateProgramState()
	r.invalidateTextureState()
	r.curRenderTarget = nil
	r.curDrawState = nil
	r.dev.BindVertexArray(0)
	r.dev.DeleteVertexArray(r.vao)
	r.vao = 0
}

// ResetStateCache puts the device back into the reset state. Call it after
// foreign code has touched the device behind the renderer's back.
func (r *Renderer) ResetStateCache() {
	r.setupDepthStencilState()
	r.setupBlendState()
	r.setupRasterizerState()
	r.invalidateMeshState()
	r.invalidateProgramState()
	r.invalidateTextureState()
	r.curDrawState = nil
	r.rtDirty = true
}

// Supports reports an optional device feature.
func (r *Renderer) Supports(f Feature) bool {
	return r.dev.Supports(f)
}

// CommitFrame ends the frame. A render target must be applied again
// before the next clear or draw.
func (r *Renderer) CommitFrame() {
	r.rtValid = false
}

// RenderTargetAttrs describes the render target applied last.
func (r *Renderer) RenderTargetAttrs() DisplayAttrs {
	return r.rtAttrs
}

// ApplyViewPort sets the viewport.
func (r *Renderer) ApplyViewPort(x, y, width, height int) {
	vp := rect{x, y, width, height}
	if vp != r.viewport {
		r.viewport = vp
		r.dev.Viewport(x, y, width, height)
	}
}

// ApplyScissorRect sets the scissor rectangle.
func (r *Renderer) ApplyScissorRect(x, y, width, height int) {
	sc := rect{x, y, width, height}
	if sc != r.scissor {
		r.scissor = sc
		r.dev.Scissor(x, y, width, height)
	}
}

// ApplyRenderTarget binds rt, or the default framebuffer for nil, resets
// the viewport to cover it and turns the scissor test off.
func (r *Renderer) ApplyRenderTarget(rt *TextureSlot) {
	if rt == nil {
		r.rtAttrs = r.display.DisplayAttrs()
	} else {
		if !rt.Setup.IsRenderTarget() {
			panic(fmt.Sprintf("gfx: texture %s is not a render target", rt.Id))
		}
		s := &rt.Setup
		r.rtAttrs = DisplayAttrs{
			WindowWidth:       s.Width,
			WindowHeight:      s.Height,
			FramebufferWidth:  s.Width,
			FramebufferHeight: s.Height,
			ColorPixelFormat:  s.ColorFormat,
			DepthPixelFormat:  s.DepthFormat,
			Samples:           1,
			SwapInterval:      1,
		}
	}

	if rt != r.curRenderTarget || r.rtDirty {
		if rt == nil {
			r.dev.BindFramebuffer(0)
		} else {
			r.dev.BindFramebuffer(rt.Payload.RenderTarget.Framebuffer)
		}
		r.rtDirty = false
	}
	r.curRenderTarget = rt
	r.rtValid = true

	r.ApplyViewPort(0, 0, r.rtAttrs.FramebufferWidth, r.rtAttrs.FramebufferHeight)

	if r.rasterizer.ScissorTestEnabled {
		r.rasterizer.ScissorTestEnabled = false
		r.dev.Disable(CapScissorTest)
	}
}

// ApplyDrawState makes ds current. A nil draw state, or one whose meshes or
// program have gone away, turns subsequent draws into no-ops.
func (r *Renderer) ApplyDrawState(ds *DrawStateSlot) {
	if ds == nil {
		r.curDrawState = nil
		return
	}

	prog := r.pools.Programs.Lookup(ds.Setup.Program)
	if prog == nil {
		r.log.Warn("draw state program is gone", zap.Stringer("draw_state", ds.Id))
		r.curDrawState = nil
		return
	}
	var meshes [MaxInputMeshes]*MeshSlot
	for i, id := range ds.Setup.Meshes {
		if !id.IsValid() {
			continue
		}
		if meshes[i] = r.pools.Meshes.Lookup(id); meshes[i] == nil {
			r.log.Warn("draw state mesh is gone",
				zap.Stringer("draw_state", ds.Id),
				zap.Stringer("mesh", id))
			r.curDrawState = nil
			return
		}
	}

	r.curDrawState = ds
	r.curMeshes = meshes
	r.curProgramBundle = prog

	setup := &ds.Setup
	if setup.DepthStencilState != r.depthStencil {
		r.applyDepthStencilState(setup.DepthStencilState)
	}
	if setup.BlendState != r.blend {
		r.applyBlendState(setup.BlendState)
	}
	if setup.BlendColor != r.blendColor {
		r.blendColor = setup.BlendColor
		r.dev.BlendColor(r.blendColor)
	}
	if setup.RasterizerState != r.rasterizer {
		r.applyRasterizerState(setup.RasterizerState)
	}

	r.curProgram = prog.Payload.Select(setup.ProgramSelectionMask)
	r.useProgram(r.curProgram.Handle)
	r.applyMeshState(ds)
}

func (r *Renderer) applyMeshState(ds *DrawStateSlot) {
	r.bindIndexBuffer(r.curMeshes[0].Payload.IndexBuffer)

	for i := 0; i < NumVertexAttrs; i++ {
		attr := ds.Payload.Attrs[i]
		cur := &r.attrs[i]

		var vb uint32
		if attr.Enabled {
			vb = r.curMeshes[attr.VBIndex].Payload.ActiveVertexBuffer()
		}
		if vb == r.attrVBs[i] && attr == *cur {
			continue
		}

		if attr.Enabled {
			r.attrVBs[i] = vb
			r.bindVertexBuffer(vb)
			r.dev.VertexAttribPointer(i, attr.Format, attr.Stride, attr.Offset)
			if !cur.Enabled {
				r.dev.EnableVertexAttribArray(i)
			}
			if cur.Divisor != attr.Divisor {
				r.dev.VertexAttribDivisor(i, attr.Divisor)
			}
			*cur = attr
		} else {
			if cur.Enabled {
				r.dev.DisableVertexAttribArray(i)
			}
			// The divisor stays set on the device while the array is off.
			divisor := cur.Divisor
			*cur = attr
			cur.Divisor = divisor
			r.attrVBs[i] = 0
		}
	}
}

// ApplyUniformBlock uploads a uniform block of the current program. The
// layout hash must match the block layout the program bundle declared.
func (r *Renderer) ApplyUniformBlock(blockIndex int, layoutHash uint64, data []byte) {
	if r.curDrawState == nil {
		return
	}

	layout := r.curProgramBundle.Setup.UniformBlockLayout(blockIndex)
	if layout.TypeHash() != layoutHash {
		panic(fmt.Sprintf("gfx: incompatible uniform block %d (hash %#x, program expects %#x)",
			blockIndex, layoutHash, layout.TypeHash()))
	}
	if len(data) != layout.ByteSize() {
		panic(fmt.Sprintf("gfx: uniform block %d has %d bytes, layout needs %d", blockIndex, len(data), layout.ByteSize()))
	}

	locs := r.curProgram.UniformLocations[blockIndex]
	for ci := 0; ci < layout.NumComponents(); ci++ {
		comp := layout.ComponentAt(ci)
		val := data[layout.ComponentByteOffset(ci):]
		loc := locs[ci]

		switch comp.Type {
		case UniformFloat:
			var v [1]float32
			getFloats(val, v[:])
			r.dev.Uniform1f(loc, v[0])
		case UniformVec2:
			var v mgl32.Vec2
			getFloats(val, v[:])
			r.dev.UniformVec2(loc, v)
		case UniformVec3:
			var v mgl32.Vec3
			getFloats(val, v[:])
			r.dev.UniformVec3(loc, v)
		case UniformVec4:
			var v mgl32.Vec4
			getFloats(val, v[:])
			r.dev.UniformVec4(loc, v)
		case UniformMat2:
			var m mgl32.Mat2
			getFloats(val, m[:])
			r.dev.UniformMat2(loc, m)
		case UniformMat3:
			var m mgl32.Mat3
			getFloats(val, m[:])
			r.dev.UniformMat3(loc, m)
		case UniformMat4:
			var m mgl32.Mat4
			getFloats(val, m[:])
			r.dev.UniformMat4(loc, m)
		case UniformBool:
			r.dev.Uniform1i(loc, int32(binary.LittleEndian.Uint32(val)))
		case UniformTexture:
			texId := resource.UnpackId(binary.LittleEndian.Uint64(val))
			tex := r.pools.Textures.Lookup(texId)
			if tex == nil {
				// Still loading or failed; the sampler keeps its old binding.
				continue
			}
			sampler := r.curProgram.SamplerIndices[blockIndex][ci]
			r.bindTexture(sampler, tex.Setup.Type, tex.Payload.Handle)
		default:
			panic(fmt.Sprintf("gfx: invalid uniform type %d", comp.Type))
		}
	}
}

// Clear clears the current render target. Write masks that would block
// the clear are switched on first.
func (r *Renderer) Clear(targets ClearTarget, color mgl32.Vec4, depth float32, stencil uint8) {
	r.checkRenderTarget()
	if targets&ClearAll == 0 {
		panic("gfx: clear without targets")
	}

	if targets&ClearColor != 0 && r.blend.ColorWriteMask != ChannelRGBA {
		r.blend.ColorWriteMask = ChannelRGBA
		r.dev.ColorMask(ChannelRGBA)
	}
	if targets&ClearDepth != 0 && !r.depthStencil.DepthWriteEnabled {
		r.depthStencil.DepthWriteEnabled = true
		r.dev.DepthMask(true)
	}
	if targets&ClearStencil != 0 && r.depthStencil.StencilWriteMask != 0xFF {
		r.depthStencil.StencilWriteMask = 0xFF
		r.dev.StencilMaskSeparate(FaceBoth, 0xFF)
	}
	r.dev.Clear(targets, color, depth, stencil)
}

// Draw draws primitive group index of the current draw state's first mesh.
// An index the mesh does not have is ignored.
func (r *Renderer) Draw(index int) {
	r.checkRenderTarget()
	if r.curDrawState == nil {
		return
	}
	groups := r.curMeshes[0].Payload.PrimGroups
	if index < 0 || index >= len(groups) {
		return
	}
	r.DrawGroup(groups[index])
}

// DrawGroup draws an explicit primitive group.
func (r *Renderer) DrawGroup(pg PrimitiveGroup) {
	r.checkRenderTarget()
	if r.curDrawState == nil {
		return
	}
	indexType := r.curMeshes[0].Setup.IndexType
	if indexType != IndexNone {
		r.dev.DrawElements(pg.PrimType, pg.NumElements, indexType, pg.BaseElement*indexType.ByteSize())
	} else {
		r.dev.DrawArrays(pg.PrimType, pg.BaseElement, pg.NumElements)
	}
}

// DrawInstanced is the instanced variant of Draw.
func (r *Renderer) DrawInstanced(index, numInstances int) {
	r.checkRenderTarget()
	if r.curDrawState == nil {
		return
	}
	groups := r.curMeshes[0].Payload.PrimGroups
	if index < 0 || index >= len(groups) {
		return
	}
	r.DrawGroupInstanced(groups[index], numInstances)
}

// DrawGroupInstanced is the instanced variant of DrawGroup.
func (r *Renderer) DrawGroupInstanced(pg PrimitiveGroup, numInstances int) {
	r.checkRenderTarget()
	if r.curDrawState == nil {
		return
	}
	indexType := r.curMeshes[0].Setup.IndexType
	if indexType != IndexNone {
		r.dev.DrawElementsInstanced(pg.PrimType, pg.NumElements, indexType, pg.BaseElement*indexType.ByteSize(), numInstances)
	} else {
		r.dev.DrawArraysInstanced(pg.PrimType, pg.BaseElement, pg.NumElements, numInstances)
	}
}

// ReadPixels copies the current render target's color buffer into buf.
// It stalls the pipeline; never call it on a hot path.
func (r *Renderer) ReadPixels(buf []byte) {
	attrs := r.display.DisplayAttrs()
	if r.curRenderTarget != nil {
		attrs = r.rtAttrs
	}
	need := attrs.ColorPixelFormat.ImageSize(attrs.FramebufferWidth, attrs.FramebufferHeight)
	if len(buf) < need {
		panic(fmt.Sprintf("gfx: read pixels needs %d bytes, buffer has %d", need, len(buf)))
	}
	r.dev.ReadPixels(0, 0, attrs.FramebufferWidth, attrs.FramebufferHeight, attrs.ColorPixelFormat, buf)
}

func (r *Renderer) checkRenderTarget() {
	if !r.rtValid {
		panic("gfx: no render target set")
	}
}

func (r *Renderer) bindVertexBuffer(vb uint32) {
	if vb != r.vertexBuffer {
		r.vertexBuffer = vb
		r.dev.BindBuffer(VertexBufferTarget, vb)
	}
}

func (r *Renderer) bindIndexBuffer(ib uint32) {
	if ib != r.indexBuffer {
		r.indexBuffer = ib
		r.dev.BindBuffer(IndexBufferTarget, ib)
	}
}

func (r *Renderer) useProgram(prog uint32) {
	if prog != r.program {
		r.program = prog
		r.dev.UseProgram(prog)
	}
}

func (r *Renderer) bindTexture(sampler int, typ TextureType, tex uint32) {
	if sampler < 0 || sampler >= MaxTextureSamplers {
		panic(fmt.Sprintf("gfx: sampler index %d out of range", sampler))
	}
	samplers := &r.samplers2D
	if typ == TextureCube {
		samplers = &r.samplersCube
	}
	if tex != samplers[sampler] {
		samplers[sampler] = tex
		r.dev.BindTexture(sampler, typ, tex)
	}
}

func (r *Renderer) invalidateMeshState() {
	r.dev.BindBuffer(VertexBufferTarget, 0)
	r.dev.BindBuffer(IndexBufferTarget, 0)
	r.vertexBuffer = 0
	r.indexBuffer = 0
	for i := range r.attrs {
		if r.attrs[i].Enabled {
			r.dev.DisableVertexAttribArray(i)
		}
		divisor := r.attrs[i].Divisor
		r.attrs[i] = VertexAttrBinding{Divisor: divisor}
		r.attrVBs[i] = 0
	}
}

func (r *Renderer) invalidateProgramState() {
	r.dev.UseProgram(0)
	r.program = 0
}

func (r *Renderer) invalidateTextureState() {
	r.samplers2D = [MaxTextureSamplers]uint32{}
	r.samplersCube = [MaxTextureSamplers]uint32{}
}

// The invalidate* hooks below are called by factories right before the
// device objects of a slot are deleted.

func (r *Renderer) invalidateMesh(msh *MeshSlot) {
	r.invalidateMeshState()
	for _, m := range r.curMeshes {
		if m == msh {
			r.dropDrawState()
			return
		}
	}
}

func (r *Renderer) invalidateTexture(tex *TextureSlot) {
	r.invalidateTextureState()
	if tex == r.curRenderTarget {
		r.curRenderTarget = nil
		r.rtDirty = true
	}
}

func (r *Renderer) invalidateProgramBundle(prog *ProgramBundleSlot) {
	r.invalidateProgramState()
	if prog == r.curProgramBundle {
		r.dropDrawState()
	}
}

func (r *Renderer) invalidateDrawState(ds *DrawStateSlot) {
	if ds == r.curDrawState {
		r.dropDrawState()
	}
}

// invalidateRenderTarget forces the next ApplyRenderTarget to rebind.
func (r *Renderer) invalidateRenderTarget() {
	r.rtDirty = true
}

func (r *Renderer) dropDrawState() {
	r.curDrawState = nil
	r.curMeshes = [MaxInputMeshes]*MeshSlot{}
	r.curProgramBundle = nil
	r.curProgram = nil
}

func (r *Renderer) setupDepthStencilState() {
	r.depthStencil = DefaultDepthStencilState()

	r.dev.Enable(CapDepthTest)
	r.dev.DepthFunc(CompareAlways)
	r.dev.DepthMask(false)
	r.dev.Disable(CapStencilTest)
	r.dev.StencilFuncSeparate(FaceBoth, CompareAlways, 0, 0xFF)
	r.dev.StencilOpSeparate(FaceBoth, StencilKeep, StencilKeep, StencilKeep)
	r.dev.StencilMaskSeparate(FaceBoth, 0xFF)
}

func (r *Renderer) applyStencilState(newState, curState DepthStencilState, face Face) {
	newStencil, curStencil := newState.StencilFront, curState.StencilFront
	if face == FaceBack {
		newStencil, curStencil = newState.StencilBack, curState.StencilBack
	}

	if newStencil.CmpFunc != curStencil.CmpFunc ||
		newState.StencilReadMask != curState.StencilReadMask ||
		newState.StencilRef != curState.StencilRef {
		r.dev.StencilFuncSeparate(face, newStencil.CmpFunc, newState.StencilRef, newState.StencilReadMask)
	}
	if newStencil.FailOp != curStencil.FailOp ||
		newStencil.DepthFailOp != curStencil.DepthFailOp ||
		newStencil.PassOp != curStencil.PassOp {
		r.dev.StencilOpSeparate(face, newStencil.FailOp, newStencil.DepthFailOp, newStencil.PassOp)
	}
	if newState.StencilWriteMask != curState.StencilWriteMask {
		r.dev.StencilMaskSeparate(face, newState.StencilWriteMask)
	}
}

func (r *Renderer) applyDepthStencilState(newState DepthStencilState) {
	cur := r.depthStencil

	if newState.DepthCmpFunc != cur.DepthCmpFunc {
		r.dev.DepthFunc(newState.DepthCmpFunc)
	}
	if newState.DepthWriteEnabled != cur.DepthWriteEnabled {
		r.dev.DepthMask(newState.DepthWriteEnabled)
	}
	if newState.StencilEnabled != cur.StencilEnabled {
		if newState.StencilEnabled {
			r.dev.Enable(CapStencilTest)
		} else {
			r.dev.Disable(CapStencilTest)
		}
	}

	// Read mask, ref and write mask are shared by both faces, so a change
	// there is pushed to both.
	shared := newState.StencilReadMask != cur.StencilReadMask ||
		newState.StencilRef != cur.StencilRef ||
		newState.StencilWriteMask != cur.StencilWriteMask
	if shared || newState.StencilFront != cur.StencilFront {
		r.applyStencilState(newState, cur, FaceFront)
	}
	if shared || newState.StencilBack != cur.StencilBack {
		r.applyStencilState(newState, cur, FaceBack)
	}

	r.depthStencil = newState
}

func (r *Renderer) setupBlendState() {
	r.blend = DefaultBlendState()
	r.dev.Disable(CapBlend)
	r.dev.BlendFuncSeparate(BlendOne, BlendZero, BlendOne, BlendZero)
	r.dev.BlendEquationSeparate(BlendOpAdd, BlendOpAdd)
	r.dev.ColorMask(ChannelRGBA)
	r.blendColor = DefaultBlendColor()
	r.dev.BlendColor(r.blendColor)
}

func (r *Renderer) applyBlendState(bs BlendState) {
	cur := r.blend

	if bs.BlendEnabled != cur.BlendEnabled {
		if bs.BlendEnabled {
			r.dev.Enable(CapBlend)
		} else {
			r.dev.Disable(CapBlend)
		}
	}
	if bs.SrcFactorRGB != cur.SrcFactorRGB ||
		bs.DstFactorRGB != cur.DstFactorRGB ||
		bs.SrcFactorAlpha != cur.SrcFactorAlpha ||
		bs.DstFactorAlpha != cur.DstFactorAlpha {
		r.dev.BlendFuncSeparate(bs.SrcFactorRGB, bs.DstFactorRGB, bs.SrcFactorAlpha, bs.DstFactorAlpha)
	}
	if bs.OpRGB != cur.OpRGB || bs.OpAlpha != cur.OpAlpha {
		r.dev.BlendEquationSeparate(bs.OpRGB, bs.OpAlpha)
	}
	if bs.ColorWriteMask != cur.ColorWriteMask {
		r.dev.ColorMask(bs.ColorWriteMask)
	}
	r.blend = bs
}

func (r *Renderer) setupRasterizerState() {
	r.rasterizer = DefaultRasterizerState()
	r.dev.Disable(CapCullFace)
	r.dev.FrontFaceClockwise(true)
	r.dev.CullFace(FaceBack)
	r.dev.Disable(CapPolygonOffsetFill)
	r.dev.Disable(CapScissorTest)
	r.dev.Enable(CapDither)
	r.dev.Enable(CapMultisample)
}

func (r *Renderer) applyRasterizerState(rs RasterizerState) {
	cur := r.rasterizer

	r.toggle(CapCullFace, rs.CullFaceEnabled, cur.CullFaceEnabled)
	if rs.CullFace != cur.CullFace {
		r.dev.CullFace(rs.CullFace)
	}
	r.toggle(CapPolygonOffsetFill, rs.DepthOffsetEnabled, cur.DepthOffsetEnabled)
	r.toggle(CapScissorTest, rs.ScissorTestEnabled, cur.ScissorTestEnabled)
	r.toggle(CapDither, rs.DitherEnabled, cur.DitherEnabled)
	r.toggle(CapMultisample, rs.MultisampleEnabled, cur.MultisampleEnabled)
	r.rasterizer = rs
}

func (r *Renderer) toggle(c Capability, want, have bool) {
	if want == have {
		return
	}
	if want {
		r.dev.Enable(c)
	} else {
		r.dev.Disable(c)
	}
}
