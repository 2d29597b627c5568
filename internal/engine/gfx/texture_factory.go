package gfx

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/engine/texture"
	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// TextureFactory creates textures and offscreen render targets.
type TextureFactory struct {
	dev Device
	r   *Renderer
	log *zap.Logger
}

// NewTextureFactory creates a texture factory.
func NewTextureFactory(dev Device, r *Renderer) *TextureFactory {
	return &TextureFactory{dev: dev, r: r, log: logger.Named("gfx.texture")}
}

// SetupResource implements Factory.
func (f *TextureFactory) SetupResource(slot *TextureSlot, data []byte) resource.State {
	s := &slot.Setup
	fields := []zap.Field{zap.Stringer("id", slot.Id), zap.Stringer("locator", s.Locator)}

	if s.IsRenderTarget() {
		return f.setupRenderTarget(slot, fields)
	}

	if s.ShouldSetupFromFile() {
		if len(data) == 0 {
			f.log.Warn("texture file is empty", fields...)
			return resource.Failed
		}
		img, err := texture.Decode(data)
		if err != nil {
			f.log.Warn("decode texture", append(fields, zap.Error(err))...)
			return resource.Failed
		}
		b := img.Bounds()
		s.Type = Texture2D
		s.Width, s.Height = b.Dx(), b.Dy()
		s.NumMipMaps = 1
		s.ColorFormat = RGBA8
		data = img.Pix
	}

	if s.Width <= 0 || s.Height <= 0 {
		f.log.Warn("texture has no size", fields...)
		return resource.Failed
	}
	if s.ColorFormat == PixelFormatNone || s.ColorFormat.IsDepth() {
		f.log.Warn("invalid texture format", append(fields, zap.Stringer("format", s.ColorFormat))...)
		return resource.Failed
	}
	if need := s.PixelDataSize(); len(data) < need {
		f.log.Warn("texture data too short",
			append(fields, zap.Int("have", len(data)), zap.Int("need", need))...)
		return resource.Failed
	}

	images := make([]TextureImage, 0, s.Type.NumFaces()*s.NumMipMaps)
	off := 0
	for face := 0; face < s.Type.NumFaces(); face++ {
		for mip := 0; mip < s.NumMipMaps; mip++ {
			w, h := max(1, s.Width>>mip), max(1, s.Height>>mip)
			size := s.ColorFormat.ImageSize(w, h)
			images = append(images, TextureImage{Face: face, Mip: mip, Width: w, Height: h, Data: data[off : off+size]})
			off += size
		}
	}

	tex, err := f.dev.CreateTexture(f.desc(s), images)
	f.r.invalidateTextureState()
	if err != nil {
		f.log.Warn("create texture", append(fields, zap.Error(err))...)
		return resource.Failed
	}
	slot.Payload.Handle = tex

	f.log.Debug("texture created", append(fields,
		zap.Int("width", s.Width),
		zap.Int("height", s.Height),
		zap.Stringer("format", s.ColorFormat))...)
	return resource.Valid
}

func (f *TextureFactory) setupRenderTarget(slot *TextureSlot, fields []zap.Field) resource.State {
	s := &slot.Setup
	if s.Width <= 0 || s.Height <= 0 {
		f.log.Warn("render target has no size", fields...)
		return resource.Failed
	}
	if !s.ColorFormat.IsColorRenderTarget() {
		f.log.Warn("invalid render target color format", append(fields, zap.Stringer("format", s.ColorFormat))...)
		return resource.Failed
	}
	if s.HasDepth() && !s.DepthFormat.IsDepth() {
		f.log.Warn("invalid render target depth format", append(fields, zap.Stringer("format", s.DepthFormat))...)
		return resource.Failed
	}

	tex, err := f.dev.CreateTexture(f.desc(s), []TextureImage{{Width: s.Width, Height: s.Height}})
	f.r.invalidateTextureState()
	if err != nil {
		f.log.Warn("create render target texture", append(fields, zap.Error(err))...)
		return resource.Failed
	}

	rt, err := f.dev.CreateRenderTarget(tex, s.Width, s.Height, s.DepthFormat)
	f.r.invalidateRenderTarget()
	if err != nil {
		f.dev.DeleteTexture(tex)
		f.log.Warn("create render target", append(fields, zap.Error(err))...)
		return resource.Failed
	}

	slot.Payload = Texture{Handle: tex, RenderTarget: rt}
	f.log.Debug("render target created", append(fields, zap.Int("width", s.Width), zap.Int("height", s.Height))...)
	return resource.Valid
}

// DestroyResource implements Factory.
func (f *TextureFactory) DestroyResource(slot *TextureSlot) {
	f.r.invalidateTexture(slot)

	t := &slot.Payload
	if t.RenderTarget.Framebuffer != 0 {
		f.dev.DeleteRenderTarget(t.RenderTarget)
	}
	if t.Handle != 0 {
		f.dev.DeleteTexture(t.Handle)
	}
	slot.Payload = Texture{}
}

func (f *TextureFactory) desc(s *TextureSetup) TextureDesc {
	return TextureDesc{
		Type:       s.Type,
		Width:      s.Width,
		Height:     s.Height,
		NumMipMaps: s.NumMipMaps,
		Format:     s.ColorFormat,
		MinFilter:  s.MinFilter,
		MagFilter:  s.MagFilter,
		WrapU:      s.WrapU,
		WrapV:      s.WrapV,
	}
}
