package quadblur

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CompositorState tracks how far a frame has progressed through the pass
// list. States only move forward within a frame.
type CompositorState uint8

const (
	StateIdle CompositorState = iota
	StateSeeded
	StateDownsampling
	StateUpsampling
	StateComposited
)

// String returns the state name.
func (s CompositorState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSeeded:
		return "Seeded"
	case StateDownsampling:
		return "Downsampling"
	case StateUpsampling:
		return "Upsampling"
	case StateComposited:
		return "Composited"
	}
	return "Unknown"
}

// BlurSpace selects where the blur chain lives.
type BlurSpace uint8

const (
	// ContentSpace blurs the source image at its own resolution; the result
	// is drawn through the camera as the content quad.
	ContentSpace BlurSpace = iota
	// ScreenSpace draws the content through the camera into the chain and
	// blurs the screen image; the result covers the screen.
	ScreenSpace
)

// TexturedVertexSize is the byte size of one vertex consumed by
// ProgramTexture and ProgramDither: position.xy, uv.xy as float32.
const TexturedVertexSize = 16

// ContentQuad is an indexed textured quad centered on the world origin.
type ContentQuad struct {
	VB    BufferID
	IB    BufferID
	Count int
	Size  Vec2
}

// NewContentQuad uploads a width x height quad whose UVs span the full
// texture.
func NewContentQuad(dev Device, width, height int) ContentQuad {
	half := Vec2{float32(width), float32(height)}.Scale(0.5)
	verts := [4][4]float32{
		{-half.X, -half.Y, 0, 0},
		{-half.X, half.Y, 0, 1},
		{half.X, half.Y, 1, 1},
		{half.X, -half.Y, 1, 0},
	}
	vb := make([]byte, 0, 4*TexturedVertexSize)
	for _, v := range verts {
		for _, f := range v {
			vb = binary.LittleEndian.AppendUint32(vb, math.Float32bits(f))
		}
	}
	ib := make([]byte, 0, 6*4)
	for _, idx := range QuadIndices(0) {
		ib = binary.LittleEndian.AppendUint32(ib, idx)
	}

	q := ContentQuad{
		VB:    dev.NewBuffer(VertexBuffer, len(vb), StaticDraw),
		IB:    dev.NewBuffer(IndexBuffer, len(ib), StaticDraw),
		Count: 6,
		Size:  Vec2{float32(width), float32(height)},
	}
	dev.UploadBuffer(q.VB, 0, vb)
	dev.UploadBuffer(q.IB, 0, ib)
	return q
}

// Release deletes the quad's buffers.
func (q ContentQuad) Release(dev Device) {
	dev.DeleteBuffer(q.VB)
	dev.DeleteBuffer(q.IB)
}

// BlurSource is everything a strategy needs to know about the frame being
// blurred.
type BlurSource struct {
	Texture    TextureID
	Quad       ContentQuad
	MVP        mgl32.Mat4
	Width      int
	Height     int
	Background Color
}

// Pass is one draw into one target, reading one texture.
type Pass struct {
	Label   string
	Stage   CompositorState
	Program ProgramKind
	Read    TextureID
	Target  TargetID
	Width   int
	Height  int
	Clear   Color
	// Content draws the content quad under the source MVP instead of a
	// full-target quad.
	Content bool

	Distance   float32
	Upsample   bool
	Direction  Vec2
	KernelSize int
}

// BlurStrategy produces the pass list for one frame.
type BlurStrategy interface {
	// Plan appends the frame's passes to dst and returns it.
	Plan(dst []Pass, params BlurParameters, src BlurSource) []Pass
	// MaxLayers is the largest layer count Plan accepts.
	MaxLayers() int
}

// KawaseStrategy is the dual-filter blur: L downsampling passes at the
// full radius, then L upsampling passes at half the radius.
type KawaseStrategy struct {
	Chain *TargetChain
	Space BlurSpace
}

// MaxLayers implements BlurStrategy.
func (s *KawaseStrategy) MaxLayers() int { return s.Chain.MaxLayers() }

// Plan implements BlurStrategy.
func (s *KawaseStrategy) Plan(dst []Pass, params BlurParameters, src BlurSource) []Pass {
	layers := clampi(params.Layers, 0, s.MaxLayers())
	if layers == 0 {
		return append(dst, compositePass(params, src, src.Texture, true))
	}

	dst = append(dst, seedPass(s.Space, src, s.Chain.Level(0)))
	for k := 1; k <= layers; k++ {
		dst = append(dst, kawasePass(StateDownsampling, s.Chain.Level(k-1), s.Chain.Level(k), params.Radius, false))
	}
	for k := layers - 1; k >= 0; k-- {
		dst = append(dst, kawasePass(StateUpsampling, s.Chain.Level(k+1), s.Chain.Level(k), params.Radius*0.5, true))
	}
	return append(dst, compositePass(params, src, s.Chain.Level(0).Color, s.Space == ContentSpace))
}

func kawasePass(stage CompositorState, from, to RenderTarget, distance float32, upsample bool) Pass {
	label := "Kawase downsampling"
	if upsample {
		label = "Kawase upsampling"
	}
	return Pass{
		Label:    label,
		Stage:    stage,
		Program:  ProgramKawase,
		Read:     from.Color,
		Target:   to.ID,
		Width:    to.Width,
		Height:   to.Height,
		Distance: distance,
		Upsample: upsample,
	}
}

// SeparableStrategy runs each chain step as an X pass into a scratch level
// followed by a perpendicular Y pass back into the chain. Scratch must
// have the same level sizes as Chain.
type SeparableStrategy struct {
	Chain   *TargetChain
	Scratch *TargetChain
	Space   BlurSpace
}

// MaxLayers implements BlurStrategy.
func (s *SeparableStrategy) MaxLayers() int { return s.Chain.MaxLayers() }

// Plan implements BlurStrategy.
func (s *SeparableStrategy) Plan(dst []Pass, params BlurParameters, src BlurSource) []Pass {
	layers := clampi(params.Layers, 0, s.MaxLayers())
	if layers == 0 {
		return append(dst, compositePass(params, src, src.Texture, true))
	}

	angle := params.Angle()
	dirX := Vec2{1, 0}.Rotate(angle).Scale(params.Radius)
	dirY := Vec2{1, 0}.Rotate(angle + math.Pi/2).Scale(params.Radius)

	step := func(stage CompositorState, from RenderTarget, k int) {
		mid, to := s.Scratch.Level(k), s.Chain.Level(k)
		dst = append(dst,
			separablePass(stage, "X", from, mid, dirX, params.KernelSize),
			separablePass(stage, "Y", mid, to, dirY, params.KernelSize),
		)
	}

	dst = append(dst, seedPass(s.Space, src, s.Chain.Level(0)))
	for k := 1; k <= layers; k++ {
		step(StateDownsampling, s.Chain.Level(k-1), k)
	}
	for k := layers - 1; k >= 0; k-- {
		step(StateUpsampling, s.Chain.Level(k+1), k)
	}
	return append(dst, compositePass(params, src, s.Chain.Level(0).Color, s.Space == ContentSpace))
}

func separablePass(stage CompositorState, axis string, from, to RenderTarget, dir Vec2, kernel int) Pass {
	return Pass{
		Label:      "Separable " + axis,
		Stage:      stage,
		Program:    ProgramSeparable,
		Read:       from.Color,
		Target:     to.ID,
		Width:      to.Width,
		Height:     to.Height,
		Direction:  dir,
		KernelSize: kernel,
	}
}

// seedPass draws the source into the first chain level. In screen space the
// content is drawn through the camera; in content space the image is
// copied edge to edge.
func seedPass(space BlurSpace, src BlurSource, to RenderTarget) Pass {
	return Pass{
		Label:   "Seed",
		Stage:   StateSeeded,
		Program: ProgramTexture,
		Read:    src.Texture,
		Target:  to.ID,
		Width:   to.Width,
		Height:  to.Height,
		Content: space == ScreenSpace,
	}
}

func compositePass(params BlurParameters, src BlurSource, read TextureID, content bool) Pass {
	prog := ProgramTexture
	if params.Dither {
		prog = ProgramDither
	}
	return Pass{
		Label:   "Final draw",
		Stage:   StateComposited,
		Program: prog,
		Read:    read,
		Target:  ScreenTarget,
		Width:   src.Width,
		Height:  src.Height,
		Clear:   src.Background,
		Content: content,
	}
}

// compositorPrograms are loaded by NewCompositor.
var compositorPrograms = []ProgramKind{ProgramTexture, ProgramDither, ProgramKawase, ProgramSeparable}

// Compositor executes pass lists against a Device.
type Compositor struct {
	dev      Device
	programs map[ProgramKind]ProgramID
	state    CompositorState
	passes   []Pass

	passCount int
	drawCount int
}

// NewCompositor loads the blur programs.
func NewCompositor(dev Device) (*Compositor, error) {
	c := &Compositor{
		dev:      dev,
		programs: make(map[ProgramKind]ProgramID, len(compositorPrograms)),
	}
	for _, kind := range compositorPrograms {
		id, err := dev.LoadProgram(kind)
		if err != nil {
			return nil, fmt.Errorf("load %s program: %w", kind, err)
		}
		c.programs[kind] = id
	}
	return c, nil
}

// State returns the state reached by the last Execute.
func (c *Compositor) State() CompositorState { return c.state }

// Render plans and executes one frame with the given strategy.
func (c *Compositor) Render(strategy BlurStrategy, params BlurParameters, src BlurSource) {
	c.passes = strategy.Plan(c.passes[:0], params, src)
	c.Execute(c.passes, src)
}

// Execute runs passes in order. Panics if a pass would move the state
// backwards.
func (c *Compositor) Execute(passes []Pass, src BlurSource) {
	c.state = StateIdle
	c.passCount, c.drawCount = 0, 0
	for i := range passes {
		c.run(&passes[i], src)
	}
}

func (c *Compositor) run(p *Pass, src BlurSource) {
	if p.Stage < c.state {
		panic(fmt.Sprintf("quadblur: pass %q (%s) after %s", p.Label, p.Stage, c.state))
	}
	c.state = p.Stage

	done := pushDebugGroup(p.Label)
	defer done()

	d := c.dev
	d.BindTarget(p.Target)
	d.SetViewport(p.Width, p.Height)
	d.Clear(p.Clear)
	d.UseProgram(c.programs[p.Program])

	switch p.Program {
	case ProgramKawase:
		d.SetUniformFloat(UniformDistance, p.Distance)
		upsample := int32(0)
		if p.Upsample {
			upsample = 1
		}
		d.SetUniformInt(UniformUpsample, upsample)
	case ProgramSeparable:
		d.SetUniformVec2(UniformDirection, p.Direction)
		d.SetUniformInt(UniformKernelSize, int32(p.KernelSize))
	default:
		mvp := mgl32.Ident4()
		if p.Content {
			mvp = src.MVP
		}
		d.SetUniformMat4(UniformMVP, mvp)
	}

	d.BindTexture(p.Read)
	if p.Content {
		d.DrawIndexed(src.Quad.VB, src.Quad.IB, src.Quad.Count)
	} else {
		d.DrawFullscreen()
	}
	c.passCount++
	c.drawCount++
}

// Stats returns the passes and draw calls issued by the last Execute.
func (c *Compositor) Stats() (passes, draws int) { return c.passCount, c.drawCount }
