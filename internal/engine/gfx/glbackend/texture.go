package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
)

// CreateTexture allocates a texture and uploads images. The texture is left
// bound to unit 0.
func (d *Device) CreateTexture(desc gfx.TextureDesc, images []gfx.TextureImage) (uint32, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	pf := lookup(pixelFormats[:], desc.Format, "pixel format")
	if pf.internal == 0 {
		return 0, fmt.Errorf("pixel format %s cannot back a texture", desc.Format)
	}
	target := lookup(textureTargets[:], desc.Type, "texture type")

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(target, tex)

	numMips := max(desc.NumMipMaps, 1)
	gl.TexParameteri(target, gl.TEXTURE_MAX_LEVEL, int32(numMips-1))
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, lookup(filterModes[:], desc.MinFilter, "filter"))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, lookup(filterModes[:], desc.MagFilter, "filter"))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, lookup(wrapModes[:], desc.WrapU, "wrap mode"))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, lookup(wrapModes[:], desc.WrapV, "wrap mode"))

	for _, img := range images {
		imgTarget := target
		if desc.Type == gfx.TextureCube {
			imgTarget = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(img.Face)
		}
		w, h := int32(img.Width), int32(img.Height)
		if desc.Format.IsCompressed() {
			gl.CompressedTexImage2D(imgTarget, int32(img.Mip), pf.internal, w, h, 0, int32(len(img.Data)), ptr(img.Data))
		} else {
			gl.TexImage2D(imgTarget, int32(img.Mip), int32(pf.internal), w, h, 0, pf.format, pf.xtype, ptr(img.Data))
		}
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("texture upload failed: GL error 0x%x", code)
	}
	return tex, nil
}

func (d *Device) DeleteTexture(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

// CreateRenderTarget attaches colorTex to a new framebuffer, plus a depth
// renderbuffer unless depth is PixelFormatNone. The framebuffer is left
// bound.
func (d *Device) CreateRenderTarget(colorTex uint32, width, height int, depth gfx.PixelFormat) (gfx.RenderTarget, error) {
	var rt gfx.RenderTarget
	gl.GenFramebuffers(1, &rt.Framebuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.Framebuffer)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, colorTex, 0)

	if depth != gfx.PixelFormatNone {
		pf := lookup(pixelFormats[:], depth, "depth format")
		attachment := uint32(gl.DEPTH_ATTACHMENT)
		if depth == gfx.D24S8 {
			attachment = gl.DEPTH_STENCIL_ATTACHMENT
		}
		gl.GenRenderbuffers(1, &rt.DepthRenderbuffer)
		gl.BindRenderbuffer(gl.RENDERBUFFER, rt.DepthRenderbuffer)
		gl.RenderbufferStorage(gl.RENDERBUFFER, pf.internal, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, rt.DepthRenderbuffer)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteRenderTarget(rt)
		return gfx.RenderTarget{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return rt, nil
}

func (d *Device) DeleteRenderTarget(rt gfx.RenderTarget) {
	if rt.Framebuffer != 0 {
		gl.DeleteFramebuffers(1, &rt.Framebuffer)
	}
	if rt.DepthRenderbuffer != 0 {
		gl.DeleteRenderbuffers(1, &rt.DepthRenderbuffer)
	}
}
