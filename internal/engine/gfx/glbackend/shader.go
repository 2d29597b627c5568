package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
)

// CompileShader compiles a single shader stage.
func (d *Device) CompileShader(stage gfx.ShaderStage, source string) (uint32, error) {
	shader := gl.CreateShader(lookup(shaderStages[:], stage, "shader stage"))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(n int32, l *int32, buf *uint8) {
			gl.GetShaderInfoLog(shader, n, l, buf)
		})
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile %s shader: %s", stage, log)
	}
	return shader, nil
}

func (d *Device) DeleteShader(sh uint32) {
	if sh != 0 {
		gl.DeleteShader(sh)
	}
}

// LinkProgram links vs and fs. Attribute locations are bound before
// linking so every program shares the vertex attribute slot layout.
func (d *Device) LinkProgram(vs, fs uint32, attribs []gfx.AttribBinding) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	for _, a := range attribs {
		gl.BindAttribLocation(program, uint32(a.Attr), gl.Str(a.Name+"\x00"))
	}
	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(n int32, l *int32, buf *uint8) {
			gl.GetProgramInfoLog(program, n, l, buf)
		})
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}
	return program, nil
}

func (d *Device) DeleteProgram(prog uint32) {
	if prog != 0 {
		gl.DeleteProgram(prog)
	}
}
