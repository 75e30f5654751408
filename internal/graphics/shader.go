package graphics

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders
var shaderFS embed.FS

// Shader represents an OpenGL shader program
type Shader struct {
	ID uint32
}

// LoadShader compiles shaders/<name>.vert and shaders/<name>.frag.
func LoadShader(name string) (*Shader, error) {
	vs, err := shaderFS.ReadFile("shaders/" + name + ".vert")
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader: %v", err)
	}
	fs, err := shaderFS.ReadFile("shaders/" + name + ".frag")
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader: %v", err)
	}
	program, err := compileProgram(string(vs), string(fs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Shader{ID: program}, nil
}

func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

func (s *Shader) SetVector3(name string, v mgl32.Vec3) {
	gl.Uniform3f(s.location(name), v.X(), v.Y(), v.Z())
}

func (s *Shader) SetVector4(name string, v mgl32.Vec4) {
	gl.Uniform4f(s.location(name), v.X(), v.Y(), v.Z(), v.W())
}

func (s *Shader) SetMatrix4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(s.location(name), 1, false, &m[0])
}

func (s *Shader) Delete() {
	gl.DeleteProgram(s.ID)
}

func (s *Shader) location(name string) int32 {
	return gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", msg)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", msg)
	}
	return shader, nil
}
