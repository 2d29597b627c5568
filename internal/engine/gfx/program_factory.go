package gfx

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// ProgramBundleFactory links program variants and resolves their uniform
// locations and texture sampler slots.
type ProgramBundleFactory struct {
	dev     Device
	r       *Renderer
	shaders *ShaderPool
	log     *zap.Logger
}

// NewProgramBundleFactory creates a program bundle factory. Variants built
// from shader Ids look them up in shaders.
func NewProgramBundleFactory(dev Device, r *Renderer, shaders *ShaderPool) *ProgramBundleFactory {
	return &ProgramBundleFactory{dev: dev, r: r, shaders: shaders, log: logger.Named("gfx.program")}
}

// SetupResource implements Factory.
func (f *ProgramBundleFactory) SetupResource(slot *ProgramBundleSlot, _ []byte) resource.State {
	s := &slot.Setup
	fields := []zap.Field{zap.Stringer("id", slot.Id), zap.Stringer("locator", s.Locator)}

	if len(s.Programs) == 0 {
		f.log.Warn("program bundle has no programs", fields...)
		return resource.Failed
	}

	attribs := make([]AttribBinding, NumVertexAttrs)
	for i := range attribs {
		attribs[i] = AttribBinding{Attr: VertexAttr(i), Name: s.AttribName(VertexAttr(i))}
	}

	programs := make([]Program, 0, len(s.Programs))
	for _, src := range s.Programs {
		prog, err := f.link(src, attribs)
		if err == nil {
			var p Program
			p, err = f.resolveUniforms(s, src.Mask, prog)
			if err != nil {
				f.dev.DeleteProgram(prog)
			} else {
				programs = append(programs, p)
			}
		}
		if err != nil {
			f.log.Warn("program bundle setup failed",
				append(fields, zap.Uint32("mask", src.Mask), zap.Error(err))...)
			for _, p := range programs {
				f.dev.DeleteProgram(p.Handle)
			}
			f.r.invalidateProgramState()
			return resource.Failed
		}
	}
	f.r.invalidateProgramState()

	slot.Payload.Programs = programs
	f.log.Debug("program bundle created", append(fields, zap.Int("variants", len(programs)))...)
	return resource.Valid
}

func (f *ProgramBundleFactory) link(src ProgramSource, attribs []AttribBinding) (uint32, error) {
	if src.VertexShader.IsValid() || src.FragmentShader.IsValid() {
		vs, err := f.lookupShader(src.VertexShader, VertexShader)
		if err != nil {
			return 0, err
		}
		fs, err := f.lookupShader(src.FragmentShader, FragmentShader)
		if err != nil {
			return 0, err
		}
		return f.dev.LinkProgram(vs, fs, attribs)
	}

	vs, err := f.dev.CompileShader(VertexShader, src.VertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer f.dev.DeleteShader(vs)
	fs, err := f.dev.CompileShader(FragmentShader, src.FragmentSource)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer f.dev.DeleteShader(fs)

	return f.dev.LinkProgram(vs, fs, attribs)
}

func (f *ProgramBundleFactory) lookupShader(id resource.Id, stage ShaderStage) (uint32, error) {
	sh := f.shaders.Lookup(id)
	if sh == nil {
		return 0, fmt.Errorf("%s shader %s is not valid", stage, id)
	}
	if sh.Setup.Stage != stage {
		return 0, fmt.Errorf("shader %s is a %s shader, want %s", id, sh.Setup.Stage, stage)
	}
	return sh.Payload.Handle, nil
}

func (f *ProgramBundleFactory) resolveUniforms(s *ProgramBundleSetup, mask uint32, prog uint32) (Program, error) {
	p := Program{
		Mask:             mask,
		Handle:           prog,
		UniformLocations: make([][]int32, len(s.UniformBlocks)),
		SamplerIndices:   make([][]int, len(s.UniformBlocks)),
	}

	// Sampler uniforms are set once; they need the program in use.
	f.r.useProgram(prog)
	sampler := 0
	for bi, block := range s.UniformBlocks {
		n := block.Layout.NumComponents()
		locs := make([]int32, n)
		samplers := make([]int, n)
		for ci := 0; ci < n; ci++ {
			comp := block.Layout.ComponentAt(ci)
			locs[ci] = f.dev.UniformLocation(prog, comp.Name)
			samplers[ci] = -1
			if comp.Type != UniformTexture {
				continue
			}
			if sampler >= MaxTextureSamplers {
				return Program{}, errors.New("too many texture samplers")
			}
			samplers[ci] = sampler
			if locs[ci] >= 0 {
				f.dev.Uniform1i(locs[ci], int32(sampler))
			}
			sampler++
		}
		p.UniformLocations[bi] = locs
		p.SamplerIndices[bi] = samplers
	}
	return p, nil
}

// DestroyResource implements Factory.
func (f *ProgramBundleFactory) DestroyResource(slot *ProgramBundleSlot) {
	f.r.invalidateProgramBundle(slot)
	for _, p := range slot.Payload.Programs {
		if p.Handle != 0 {
			f.dev.DeleteProgram(p.Handle)
		}
	}
	slot.Payload = ProgramBundle{}
}
