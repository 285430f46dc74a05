package quadblur

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render target pool ---

// maxPooledTargets bounds the images a renderTargetPool holds. Past it the
// oldest released image is deallocated, so sizes passed through during a
// window drag are not kept.
const maxPooledTargets = 8

type pooledTarget struct {
	key uint64
	img *ebiten.Image
}

// renderTargetPool keeps recently released offscreen images so a chain
// rebuilt at a size seen just before allocates nothing.
type renderTargetPool struct {
	free []pooledTarget
}

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared w x h image, reusing the most recently released
// image of that size.
func (p *renderTargetPool) Acquire(w, h int) *ebiten.Image {
	key := poolKey(w, h)
	for i := len(p.free) - 1; i >= 0; i-- {
		if p.free[i].key != key {
			continue
		}
		img := p.free[i].img
		p.free = append(p.free[:i], p.free[i+1:]...)
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
}

// Release returns an image for reuse. It is cleared on the next Acquire.
func (p *renderTargetPool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	p.free = append(p.free, pooledTarget{key: poolKey(b.Dx(), b.Dy()), img: img})
	if over := len(p.free) - maxPooledTargets; over > 0 {
		for _, e := range p.free[:over] {
			e.img.Deallocate()
		}
		p.free = append(p.free[:0], p.free[over:]...)
	}
}

// Len returns the number of pooled images.
func (p *renderTargetPool) Len() int { return len(p.free) }

// Drain deallocates every pooled image.
func (p *renderTargetPool) Drain() {
	for _, e := range p.free {
		e.img.Deallocate()
	}
	p.free = p.free[:0]
}

// --- Device ---

// maxChunkVertices bounds the vertices of one draw so uint16 indices can
// address them.
const maxChunkVertices = 65532

// Fixed-point scales for attributes packed into custom vertex floats.
const (
	packBase        = 1024
	packLengthScale = 32
)

type deviceBuffer struct {
	kind    BufferKind
	data    []byte
	indices []uint32
	dirty   bool
}

type deviceProgram struct {
	kind     ProgramKind
	shader   *ebiten.Shader
	mvp      mgl32.Mat4
	uniforms map[string]any
}

// EbitenDevice implements Device on top of Ebitengine. Buffers are CPU
// byte mirrors, textures and render targets are ebiten.Images, and programs
// are Kage shaders. The vertex stage runs on the CPU at draw time.
type EbitenDevice struct {
	screen *ebiten.Image
	next   uint32

	buffers  map[BufferID]*deviceBuffer
	textures map[TextureID]*ebiten.Image
	targets  map[TargetID]*ebiten.Image
	programs map[ProgramID]*deviceProgram
	byKind   map[ProgramKind]ProgramID
	pool     renderTargetPool

	bound    TargetID
	viewport Vec2
	program  ProgramID
	texture  TextureID

	verts []ebiten.Vertex
	inds  []uint16
	op    ebiten.DrawTrianglesShaderOptions

	drawCalls int
}

// NewEbitenDevice creates an empty device. Call BeginFrame before drawing
// to ScreenTarget.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{
		buffers:  make(map[BufferID]*deviceBuffer),
		textures: make(map[TextureID]*ebiten.Image),
		targets:  make(map[TargetID]*ebiten.Image),
		programs: make(map[ProgramID]*deviceProgram),
		byKind:   make(map[ProgramKind]ProgramID),
	}
}

// BeginFrame sets the image ScreenTarget draws to for this frame.
func (d *EbitenDevice) BeginFrame(screen *ebiten.Image) {
	d.screen = screen
	d.drawCalls = 0
}

// DrawCalls returns the number of Ebitengine draw calls since BeginFrame.
func (d *EbitenDevice) DrawCalls() int { return d.drawCalls }

func (d *EbitenDevice) id() uint32 {
	d.next++
	return d.next
}

// NewBuffer implements Device.
func (d *EbitenDevice) NewBuffer(kind BufferKind, size int, _ BufferUsage) BufferID {
	id := BufferID(d.id())
	d.buffers[id] = &deviceBuffer{kind: kind, data: make([]byte, size), dirty: true}
	return id
}

// UploadBuffer implements Device.
func (d *EbitenDevice) UploadBuffer(id BufferID, offset int, data []byte) {
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	if end := offset + len(data); end > len(b.data) {
		panic(fmt.Sprintf("quadblur: upload [%d,%d) past buffer size %d", offset, end, len(b.data)))
	}
	copy(b.data[offset:], data)
	b.dirty = true
}

// DeleteBuffer implements Device.
func (d *EbitenDevice) DeleteBuffer(id BufferID) {
	delete(d.buffers, id)
}

// NewTexture implements Device.
func (d *EbitenDevice) NewTexture(img *image.RGBA) TextureID {
	id := TextureID(d.id())
	d.textures[id] = ebiten.NewImageFromImage(img)
	return id
}

// DeleteTexture implements Device.
func (d *EbitenDevice) DeleteTexture(id TextureID) {
	if img, ok := d.textures[id]; ok {
		img.Deallocate()
		delete(d.textures, id)
	}
}

// NewRenderTarget implements Device. The target and its color texture are
// the same image.
func (d *EbitenDevice) NewRenderTarget(width, height int) RenderTarget {
	img := d.pool.Acquire(width, height)
	rt := RenderTarget{
		ID:     TargetID(d.id()),
		Color:  TextureID(d.id()),
		Width:  width,
		Height: height,
	}
	d.targets[rt.ID] = img
	d.textures[rt.Color] = img
	return rt
}

// DeleteRenderTarget implements Device.
func (d *EbitenDevice) DeleteRenderTarget(rt RenderTarget) {
	img, ok := d.targets[rt.ID]
	if !ok {
		return
	}
	delete(d.targets, rt.ID)
	delete(d.textures, rt.Color)
	d.pool.Release(img)
}

// BindTarget implements Device.
func (d *EbitenDevice) BindTarget(id TargetID) { d.bound = id }

// SetViewport implements Device.
func (d *EbitenDevice) SetViewport(width, height int) {
	d.viewport = Vec2{float32(width), float32(height)}
}

func (d *EbitenDevice) target() *ebiten.Image {
	if d.bound == ScreenTarget {
		return d.screen
	}
	return d.targets[d.bound]
}

// Clear implements Device.
func (d *EbitenDevice) Clear(c Color) {
	dst := d.target()
	if dst == nil {
		return
	}
	if c == ColorTransparent {
		dst.Clear()
		return
	}
	dst.Fill(color.NRGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: unitToByte(c.A),
	})
}

func unitToByte(v float32) uint8 {
	return uint8(clampf(v, 0, 1)*255 + 0.5)
}

// LoadProgram implements Device. Shaders compile once per kind.
func (d *EbitenDevice) LoadProgram(kind ProgramKind) (ProgramID, error) {
	if id, ok := d.byKind[kind]; ok {
		return id, nil
	}
	shader, err := ensureShader(kind)
	if err != nil {
		return 0, err
	}
	id := ProgramID(d.id())
	d.programs[id] = &deviceProgram{
		kind:     kind,
		shader:   shader,
		mvp:      mgl32.Ident4(),
		uniforms: make(map[string]any),
	}
	d.byKind[kind] = id
	return id, nil
}

// UseProgram implements Device.
func (d *EbitenDevice) UseProgram(id ProgramID) { d.program = id }

func (d *EbitenDevice) setUniform(name string, v any) {
	p, ok := d.programs[d.program]
	if !ok {
		return
	}
	if kname, ok := kageUniformNames[name]; ok {
		p.uniforms[kname] = v
	}
}

// SetUniformMat4 implements Device. Only u_mvp is recognized.
func (d *EbitenDevice) SetUniformMat4(name string, m mgl32.Mat4) {
	if p, ok := d.programs[d.program]; ok && name == UniformMVP {
		p.mvp = m
	}
}

// SetUniformFloat implements Device.
func (d *EbitenDevice) SetUniformFloat(name string, v float32) { d.setUniform(name, v) }

// SetUniformVec2 implements Device.
func (d *EbitenDevice) SetUniformVec2(name string, v Vec2) {
	d.setUniform(name, []float32{v.X, v.Y})
}

// SetUniformInt implements Device. Kage uniforms are floats, so the value
// is converted.
func (d *EbitenDevice) SetUniformInt(name string, v int32) { d.setUniform(name, float32(v)) }

// BindTexture implements Device.
func (d *EbitenDevice) BindTexture(id TextureID) { d.texture = id }

// DrawIndexed implements Device.
func (d *EbitenDevice) DrawIndexed(vb, ib BufferID, count int) {
	dst, p := d.target(), d.programs[d.program]
	vbuf, ibuf := d.buffers[vb], d.buffers[ib]
	if dst == nil || p == nil || vbuf == nil || ibuf == nil {
		return
	}
	indices := ibuf.decodedIndices()
	count = min(count, len(indices))

	var tex *ebiten.Image
	var texSize Vec2
	if p.kind != ProgramRoundRect {
		tex = d.textures[d.texture]
		if tex == nil {
			return
		}
		texSize = imageSize(tex)
	}

	chunkTriangles(indices[:count], maxChunkVertices, func(base, last uint32, tris []uint32) {
		d.verts = d.verts[:0]
		for v := base; v <= last; v++ {
			d.verts = append(d.verts, d.vertex(p, vbuf.data, int(v), texSize))
		}
		d.inds = d.inds[:0]
		for _, idx := range tris {
			d.inds = append(d.inds, uint16(idx-base))
		}
		d.submit(dst, p, tex)
	})
}

// DrawFullscreen implements Device.
func (d *EbitenDevice) DrawFullscreen() {
	dst, p := d.target(), d.programs[d.program]
	tex := d.textures[d.texture]
	if dst == nil || p == nil || tex == nil {
		return
	}
	vw, vh := d.viewport.X, d.viewport.Y
	s := imageSize(tex)
	d.verts = append(d.verts[:0],
		ebiten.Vertex{DstX: 0, DstY: 0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: vw, DstY: 0, SrcX: s.X, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: 0, DstY: vh, SrcX: 0, SrcY: s.Y, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		ebiten.Vertex{DstX: vw, DstY: vh, SrcX: s.X, SrcY: s.Y, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	)
	d.inds = append(d.inds[:0], 0, 1, 2, 1, 3, 2)
	d.submit(dst, p, tex)
}

func (d *EbitenDevice) submit(dst *ebiten.Image, p *deviceProgram, tex *ebiten.Image) {
	d.op.Uniforms = p.uniforms
	d.op.Images[0] = tex
	dst.DrawTrianglesShader(d.verts, d.inds, p.shader, &d.op)
	d.op.Images[0] = nil
	d.drawCalls++
}

// vertex runs the CPU vertex stage for vertex v of the bound program.
func (d *EbitenDevice) vertex(p *deviceProgram, data []byte, v int, texSize Vec2) ebiten.Vertex {
	if p.kind == ProgramRoundRect {
		qv := readQuadVertex(data[v*QuadVertexSize:])
		dst := transformToTarget(p.mvp, qv.Position, d.viewport)
		return roundRectVertex(qv, v%4, dst)
	}
	off := v * TexturedVertexSize
	pos := Vec2{getFloat(data[off:]), getFloat(data[off+4:])}
	uv := Vec2{getFloat(data[off+8:]), getFloat(data[off+12:])}
	dst := transformToTarget(p.mvp, pos, d.viewport)
	src := uv.Mul(texSize)
	return ebiten.Vertex{
		DstX: dst.X, DstY: dst.Y,
		SrcX: src.X, SrcY: src.Y,
		ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
	}
}

// Close releases every image the device owns.
func (d *EbitenDevice) Close() {
	owned := make(map[*ebiten.Image]bool, len(d.textures)+len(d.targets))
	for _, img := range d.textures {
		owned[img] = true
	}
	for _, img := range d.targets {
		owned[img] = true
	}
	for img := range owned {
		img.Deallocate()
	}
	d.pool.Drain()
	clear(d.textures)
	clear(d.targets)
	clear(d.buffers)
}

func (b *deviceBuffer) decodedIndices() []uint32 {
	if b.dirty || b.indices == nil {
		n := len(b.data) / 4
		b.indices = b.indices[:0]
		for i := range n {
			b.indices = append(b.indices, binary.LittleEndian.Uint32(b.data[i*4:]))
		}
		b.dirty = false
	}
	return b.indices
}

func imageSize(img *ebiten.Image) Vec2 {
	b := img.Bounds()
	return Vec2{float32(b.Dx()), float32(b.Dy())}
}

// transformToTarget applies mvp to a 2D point and maps the clip result to
// viewport pixels.
func transformToTarget(mvp mgl32.Mat4, p Vec2, viewport Vec2) Vec2 {
	clip := mvp.Mul4x1(mgl32.Vec4{p.X, p.Y, 0, 1})
	w := clip.W()
	if w == 0 {
		w = 1
	}
	return clipToPixel(clip.X()/w, clip.Y()/w, viewport)
}

// roundRectVertex packs a quad vertex for the round-rect shader. Src holds
// the local position in [0, size]; fill color is scaled by intensity.
func roundRectVertex(v QuadVertex, corner int, dst Vec2) ebiten.Vertex {
	local := quadCorners[corner].Add(Splat(0.5)).Mul(v.Size)
	half := v.Size.Scale(0.5)
	return ebiten.Vertex{
		DstX: dst.X, DstY: dst.Y,
		SrcX: local.X, SrcY: local.Y,
		ColorR:  v.Fill[0] * v.Intensity,
		ColorG:  v.Fill[1] * v.Intensity,
		ColorB:  v.Fill[2] * v.Intensity,
		ColorA:  v.Fill[3],
		Custom0: packPair(half.X, half.Y, packLengthScale),
		Custom1: packPair(v.BorderRadius, v.BorderWidth, packLengthScale),
		Custom2: packPair(v.Stroke[0], v.Stroke[1], 255),
		Custom3: packPair(v.Stroke[2], v.Stroke[3], 255),
	}
}

// packPair quantizes a and b by scale and packs them into one float32 as
// hi*packBase + lo. The result is an integer below 2^20, exact in float32.
func packPair(a, b, scale float32) float32 {
	q := func(v float32) float32 {
		return float32(math.Round(float64(clampf(v*scale, 0, packBase-1))))
	}
	return q(a)*packBase + q(b)
}

// unpackPair is the inverse of packPair.
func unpackPair(v, scale float32) (a, b float32) {
	hi := float32(math.Floor(float64(v) / packBase))
	return hi / scale, (v - hi*packBase) / scale
}

// chunkTriangles splits an index list into runs whose referenced vertices
// span at most maxVerts. fn receives the lowest and highest vertex of the
// run and the run's indices.
func chunkTriangles(indices []uint32, maxVerts int, fn func(base, last uint32, tris []uint32)) {
	start := 0
	var lo, hi uint32
	for i := 0; i+2 < len(indices); i += 3 {
		tlo := min(indices[i], indices[i+1], indices[i+2])
		thi := max(indices[i], indices[i+1], indices[i+2])
		if i == start {
			lo, hi = tlo, thi
			continue
		}
		nlo, nhi := min(lo, tlo), max(hi, thi)
		if int(nhi-nlo)+1 > maxVerts {
			fn(lo, hi, indices[start:i])
			start = i
			lo, hi = tlo, thi
			continue
		}
		lo, hi = nlo, nhi
	}
	if end := len(indices) - len(indices)%3; start < end {
		fn(lo, hi, indices[start:end])
	}
}
