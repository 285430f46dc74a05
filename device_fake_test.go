package quadblur

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeCall is one recorded Device call.
type fakeCall struct {
	Op   string
	Args string
}

// fakeDevice records every call and keeps CPU mirrors of buffers so tests
// can inspect what was uploaded.
type fakeDevice struct {
	calls    []fakeCall
	next     uint32
	buffers  map[BufferID][]byte
	textures map[TextureID]image.Point
	targets  map[TargetID]RenderTarget
	programs map[ProgramKind]ProgramID
	failLoad map[ProgramKind]error

	bound    TargetID
	program  ProgramID
	texture  TextureID
	uniforms map[string]any
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		buffers:  make(map[BufferID][]byte),
		textures: make(map[TextureID]image.Point),
		targets:  make(map[TargetID]RenderTarget),
		programs: make(map[ProgramKind]ProgramID),
		failLoad: make(map[ProgramKind]error),
		uniforms: make(map[string]any),
	}
}

func (d *fakeDevice) record(op, format string, args ...any) {
	d.calls = append(d.calls, fakeCall{Op: op, Args: fmt.Sprintf(format, args...)})
}

func (d *fakeDevice) id() uint32 {
	d.next++
	return d.next
}

// count returns how many calls of op were recorded.
func (d *fakeDevice) count(op string) int {
	n := 0
	for _, c := range d.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ops returns the recorded op names filtered to the given set.
func (d *fakeDevice) ops(keep ...string) []string {
	var out []string
	for _, c := range d.calls {
		for _, k := range keep {
			if c.Op == k {
				out = append(out, c.Op+"("+c.Args+")")
				break
			}
		}
	}
	return out
}

func (d *fakeDevice) reset() { d.calls = d.calls[:0] }

func (d *fakeDevice) NewBuffer(kind BufferKind, size int, usage BufferUsage) BufferID {
	id := BufferID(d.id())
	d.buffers[id] = make([]byte, size)
	d.record("NewBuffer", "%d,%d", kind, size)
	return id
}

func (d *fakeDevice) UploadBuffer(id BufferID, offset int, data []byte) {
	copy(d.buffers[id][offset:], data)
	d.record("UploadBuffer", "%d,%d,%d", id, offset, len(data))
}

func (d *fakeDevice) DeleteBuffer(id BufferID) {
	delete(d.buffers, id)
	d.record("DeleteBuffer", "%d", id)
}

func (d *fakeDevice) NewTexture(img *image.RGBA) TextureID {
	id := TextureID(d.id())
	d.textures[id] = img.Bounds().Size()
	d.record("NewTexture", "%dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	return id
}

func (d *fakeDevice) DeleteTexture(id TextureID) {
	delete(d.textures, id)
	d.record("DeleteTexture", "%d", id)
}

func (d *fakeDevice) NewRenderTarget(width, height int) RenderTarget {
	rt := RenderTarget{
		ID:     TargetID(d.id()),
		Color:  TextureID(d.id()),
		Width:  width,
		Height: height,
	}
	d.targets[rt.ID] = rt
	d.textures[rt.Color] = image.Pt(width, height)
	d.record("NewRenderTarget", "%dx%d", width, height)
	return rt
}

func (d *fakeDevice) DeleteRenderTarget(rt RenderTarget) {
	delete(d.targets, rt.ID)
	delete(d.textures, rt.Color)
	d.record("DeleteRenderTarget", "%d", rt.ID)
}

func (d *fakeDevice) BindTarget(id TargetID) {
	d.bound = id
	d.record("BindTarget", "%d", id)
}

func (d *fakeDevice) SetViewport(width, height int) {
	d.record("SetViewport", "%dx%d", width, height)
}

func (d *fakeDevice) Clear(c Color) {
	d.record("Clear", "%v", c)
}

func (d *fakeDevice) LoadProgram(kind ProgramKind) (ProgramID, error) {
	if err := d.failLoad[kind]; err != nil {
		return 0, err
	}
	if id, ok := d.programs[kind]; ok {
		return id, nil
	}
	id := ProgramID(d.id())
	d.programs[kind] = id
	d.record("LoadProgram", "%s", kind)
	return id, nil
}

func (d *fakeDevice) UseProgram(id ProgramID) {
	d.program = id
	d.record("UseProgram", "%d", id)
}

func (d *fakeDevice) SetUniformMat4(name string, m mgl32.Mat4) {
	d.uniforms[name] = m
	d.record("SetUniform", "%s", name)
}

func (d *fakeDevice) SetUniformFloat(name string, v float32) {
	d.uniforms[name] = v
	d.record("SetUniform", "%s=%g", name, v)
}

func (d *fakeDevice) SetUniformVec2(name string, v Vec2) {
	d.uniforms[name] = v
	d.record("SetUniform", "%s=%v", name, v)
}

func (d *fakeDevice) SetUniformInt(name string, v int32) {
	d.uniforms[name] = v
	d.record("SetUniform", "%s=%d", name, v)
}

func (d *fakeDevice) BindTexture(id TextureID) {
	d.texture = id
	d.record("BindTexture", "%d", id)
}

func (d *fakeDevice) DrawIndexed(vb, ib BufferID, count int) {
	d.record("DrawIndexed", "%d,%d,%d", vb, ib, count)
}

func (d *fakeDevice) DrawFullscreen() {
	d.record("DrawFullscreen", "target=%d tex=%d", d.bound, d.texture)
}

// kindOf returns the program kind for a loaded program id.
func (d *fakeDevice) kindOf(id ProgramID) (ProgramKind, bool) {
	for k, v := range d.programs {
		if v == id {
			return k, true
		}
	}
	return 0, false
}
