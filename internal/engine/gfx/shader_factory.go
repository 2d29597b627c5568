package gfx

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// ShaderFactory compiles single shader stages.
type ShaderFactory struct {
	dev Device
	log *zap.Logger
}

// NewShaderFactory creates a shader factory.
func NewShaderFactory(dev Device) *ShaderFactory {
	return &ShaderFactory{dev: dev, log: logger.Named("gfx.shader")}
}

// SetupResource implements Factory.
func (f *ShaderFactory) SetupResource(slot *ShaderSlot, _ []byte) resource.State {
	sh, err := f.dev.CompileShader(slot.Setup.Stage, slot.Setup.Source)
	if err != nil {
		f.log.Warn("compile shader",
			zap.Stringer("id", slot.Id),
			zap.Stringer("stage", slot.Setup.Stage),
			zap.Error(err))
		return resource.Failed
	}
	slot.Payload.Handle = sh
	return resource.Valid
}

// DestroyResource implements Factory.
func (f *ShaderFactory) DestroyResource(slot *ShaderSlot) {
	if slot.Payload.Handle != 0 {
		f.dev.DeleteShader(slot.Payload.Handle)
	}
	slot.Payload = Shader{}
}
