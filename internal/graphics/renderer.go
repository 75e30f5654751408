package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/profiling"
	"voxelview/internal/scene"
)

// Renderer draws block batches, then the transparent chunk hulls.
type Renderer struct {
	dev    *Device
	blocks *Shader
	lines  *Shader

	SunDir mgl32.Vec3
	Sky    mgl32.Vec4

	hulls []*scene.LineBox
}

func NewRenderer(dev *Device) (*Renderer, error) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	blocks, err := LoadShader("blocks")
	if err != nil {
		return nil, err
	}
	lines, err := LoadShader("lines")
	if err != nil {
		blocks.Delete()
		return nil, err
	}
	return &Renderer{
		dev:    dev,
		blocks: blocks,
		lines:  lines,
		SunDir: mgl32.Vec3{-0.4, -1, -0.3},
		Sky:    mgl32.Vec4{0.53, 0.81, 0.92, 1},
	}, nil
}

func (r *Renderer) Render(root *scene.Group, view, projection mgl32.Mat4) {
	defer profiling.Track("graphics.Render")()

	gl.ClearColor(r.Sky.X(), r.Sky.Y(), r.Sky.Z(), r.Sky.W())
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.blocks.Use()
	r.blocks.SetMatrix4("view", view)
	r.blocks.SetMatrix4("projection", projection)
	r.blocks.SetVector3("sunDir", r.SunDir)

	r.hulls = r.hulls[:0]
	root.Walk(func(n scene.Node) {
		switch v := n.(type) {
		case *scene.InstancedMesh:
			r.blocks.SetMatrix4("model", translation(v.Parent()))
			r.blocks.SetVector4("color", v.Material.Color)
			r.dev.drawInstances(v.Handle)
		case *scene.LineBox:
			r.hulls = append(r.hulls, v)
		}
	})

	if len(r.hulls) == 0 {
		return
	}
	r.lines.Use()
	r.lines.SetMatrix4("view", view)
	r.lines.SetMatrix4("projection", projection)
	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	for _, l := range r.hulls {
		if l.Material == nil {
			continue
		}
		r.lines.SetMatrix4("model", translation(l.Parent()).Mul4(l.Model()))
		r.lines.SetVector4("color", l.Material.Color)
		r.dev.drawLines(l.Handle)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func translation(g *scene.Group) mgl32.Mat4 {
	if g == nil {
		return mgl32.Ident4()
	}
	p := g.WorldPosition()
	return mgl32.Translate3D(p.X(), p.Y(), p.Z())
}

func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) Dispose() {
	r.blocks.Delete()
	r.lines.Delete()
}
