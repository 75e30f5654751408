// Package graphics is the OpenGL backend: a scene.Device that owns GPU
// buffers, and a renderer that draws the scene graph.
package graphics

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelview/internal/scene"
)

type glObject struct {
	vao, vbo uint32 // zero when borrowed from the geometry
	count    int32
	mode     uint32
	geometry *glObject
}

// Device is the OpenGL scene.Device. It must be used on the thread that
// owns the GL context.
type Device struct {
	next    scene.Handle
	objects map[scene.Handle]*glObject
}

// NewDevice loads the GL function pointers for the current context.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}
	return &Device{objects: make(map[scene.Handle]*glObject)}, nil
}

func (d *Device) add(o *glObject) scene.Handle {
	d.next++
	d.objects[d.next] = o
	return d.next
}

func (d *Device) UploadGeometry(g *scene.Geometry) (scene.Handle, error) {
	if g.Stride != 3 && g.Stride != 6 {
		return 0, fmt.Errorf("geometry %s: unsupported stride %d", g.Name, g.Stride)
	}
	o := &glObject{count: int32(g.VertexCount()), mode: gl.TRIANGLES}
	if g.Mode == scene.Lines {
		o.mode = gl.LINES
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Vertices)*4, gl.Ptr(g.Vertices), gl.STATIC_DRAW)
	vertexAttribs(g.Stride)
	gl.BindVertexArray(0)

	return d.add(o), nil
}

// vertexAttribs describes the bound vertex buffer: position, then normal when present.
func vertexAttribs(stride int) {
	bytes := int32(stride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, bytes, 0)
	if stride == 6 {
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, bytes, 3*4)
	}
}

func (d *Device) UploadInstances(m *scene.InstancedMesh) (scene.Handle, error) {
	geo, ok := d.objects[m.Geometry.Handle]
	if !ok {
		return 0, fmt.Errorf("instances of %v: geometry %s not uploaded", m.Block, m.Geometry.Name)
	}
	o := &glObject{count: int32(len(m.Transforms)), mode: geo.mode, geometry: geo}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, geo.vbo)
	vertexAttribs(m.Geometry.Stride)

	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	if len(m.Transforms) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(m.Transforms)*16*4, gl.Ptr(&m.Transforms[0][0]), gl.STATIC_DRAW)
	}
	// A mat4 attribute takes four vec4 slots.
	for i := uint32(0); i < 4; i++ {
		gl.EnableVertexAttribArray(2 + i)
		gl.VertexAttribPointerWithOffset(2+i, 4, gl.FLOAT, false, 16*4, uintptr(i*4*4))
		gl.VertexAttribDivisor(2+i, 1)
	}
	gl.BindVertexArray(0)

	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		d.release(o)
		return 0, fmt.Errorf("instances of %v: out of GPU memory", m.Block)
	}
	return d.add(o), nil
}

// UploadLines shares the wireframe geometry's buffers; the box is placed
// with a model matrix at draw time.
func (d *Device) UploadLines(l *scene.LineBox) (scene.Handle, error) {
	geo, ok := d.objects[l.Geometry.Handle]
	if !ok {
		return 0, fmt.Errorf("line box: geometry %s not uploaded", l.Geometry.Name)
	}
	return d.add(&glObject{count: geo.count, mode: gl.LINES, geometry: geo}), nil
}

func (d *Device) Free(h scene.Handle) {
	o, ok := d.objects[h]
	if !ok {
		return
	}
	delete(d.objects, h)
	d.release(o)
}

func (d *Device) release(o *glObject) {
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
}

// Live returns the number of allocated handles.
func (d *Device) Live() int { return len(d.objects) }

func (d *Device) drawInstances(h scene.Handle) {
	o, ok := d.objects[h]
	if !ok || o.count == 0 {
		return
	}
	gl.BindVertexArray(o.vao)
	gl.DrawArraysInstanced(o.mode, 0, o.geometry.count, o.count)
}

func (d *Device) drawLines(h scene.Handle) {
	o, ok := d.objects[h]
	if !ok {
		return
	}
	gl.BindVertexArray(o.geometry.vao)
	gl.DrawArrays(o.mode, 0, o.count)
}
