package gfx

import "github.com/go-gl/mathgl/mgl32"

// StencilState is the stencil configuration of one polygon face.
type StencilState struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	CmpFunc     CompareFunc
}

// DefaultStencilState keeps the stencil buffer untouched.
func DefaultStencilState() StencilState {
	return StencilState{
		FailOp:      StencilKeep,
		DepthFailOp: StencilKeep,
		PassOp:      StencilKeep,
		CmpFunc:     CompareAlways,
	}
}

// DepthStencilState holds depth test and per-face stencil state.
type DepthStencilState struct {
	StencilFront      StencilState
	StencilBack       StencilState
	DepthCmpFunc      CompareFunc
	DepthWriteEnabled bool
	StencilEnabled    bool
	StencilReadMask   uint8
	StencilWriteMask  uint8
	StencilRef        uint8
}

// DefaultDepthStencilState matches the state the renderer resets to.
func DefaultDepthStencilState() DepthStencilState {
	return DepthStencilState{
		StencilFront:     DefaultStencilState(),
		StencilBack:      DefaultStencilState(),
		DepthCmpFunc:     CompareAlways,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
	}
}

// BlendState holds color blending state.
type BlendState struct {
	BlendEnabled   bool
	SrcFactorRGB   BlendFactor
	DstFactorRGB   BlendFactor
	OpRGB          BlendOperation
	SrcFactorAlpha BlendFactor
	DstFactorAlpha BlendFactor
	OpAlpha        BlendOperation
	ColorWriteMask PixelChannel
}

// DefaultBlendState disables blending and writes all channels.
func DefaultBlendState() BlendState {
	return BlendState{
		SrcFactorRGB:   BlendOne,
		DstFactorRGB:   BlendZero,
		OpRGB:          BlendOpAdd,
		SrcFactorAlpha: BlendOne,
		DstFactorAlpha: BlendZero,
		OpAlpha:        BlendOpAdd,
		ColorWriteMask: ChannelRGBA,
	}
}

// AlphaBlendState returns straight (non-premultiplied) alpha blending.
func AlphaBlendState() BlendState {
	bs := DefaultBlendState()
	bs.BlendEnabled = true
	bs.SrcFactorRGB = BlendSrcAlpha
	bs.DstFactorRGB = BlendOneMinusSrcAlpha
	return bs
}

// DefaultBlendColor is the constant blend color after a reset.
func DefaultBlendColor() mgl32.Vec4 {
	return mgl32.Vec4{1, 1, 1, 1}
}

// RasterizerState holds culling and the remaining fixed-function toggles.
type RasterizerState struct {
	CullFaceEnabled    bool
	CullFace           Face
	DepthOffsetEnabled bool
	ScissorTestEnabled bool
	DitherEnabled      bool
	MultisampleEnabled bool
}

// DefaultRasterizerState disables culling and keeps dither and MSAA on.
func DefaultRasterizerState() RasterizerState {
	return RasterizerState{
		CullFace:           FaceBack,
		DitherEnabled:      true,
		MultisampleEnabled: true,
	}
}
