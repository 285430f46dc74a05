package quadblur

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferID, TextureID, TargetID and ProgramID are opaque device handles.
// Zero is never a valid buffer, texture, or program.
type (
	BufferID  uint32
	TextureID uint32
	TargetID  uint32
	ProgramID uint32
)

// ScreenTarget is the default framebuffer.
const ScreenTarget TargetID = 0

// BufferKind selects what a buffer holds.
type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

// BufferUsage hints how often a buffer is rewritten.
type BufferUsage uint8

const (
	StaticDraw BufferUsage = iota
	DynamicDraw
)

// ProgramKind names one of the fixed shader programs.
type ProgramKind uint8

const (
	// ProgramRoundRect draws bordered rounded rectangles from quad vertices.
	ProgramRoundRect ProgramKind = iota
	// ProgramTexture copies a texture through a full-screen or content quad.
	ProgramTexture
	// ProgramDither is ProgramTexture with ordered noise added to hide banding.
	ProgramDither
	// ProgramKawase is one dual-filter downsample or upsample step.
	ProgramKawase
	// ProgramSeparable is one directional Gaussian pass.
	ProgramSeparable
)

// String returns the program name used in logs and errors.
func (k ProgramKind) String() string {
	switch k {
	case ProgramRoundRect:
		return "round_rect"
	case ProgramTexture:
		return "texture"
	case ProgramDither:
		return "dither"
	case ProgramKawase:
		return "kawase"
	case ProgramSeparable:
		return "separable"
	}
	return "unknown"
}

// Uniform names shared by every Device implementation.
const (
	UniformMVP        = "u_mvp"
	UniformDirection  = "u_direction"
	UniformDistance   = "u_distance"
	UniformKernelSize = "u_kernel_size"
	UniformUpsample   = "u_upsample"
)

// RenderTarget is an offscreen framebuffer with one color texture.
type RenderTarget struct {
	ID     TargetID
	Color  TextureID
	Width  int
	Height int
}

// Device is the graphics context the rendering core draws through. Calls
// are made from the frame goroutine only. Uniforms apply to the program
// bound by the latest UseProgram.
type Device interface {
	NewBuffer(kind BufferKind, size int, usage BufferUsage) BufferID
	UploadBuffer(id BufferID, offset int, data []byte)
	DeleteBuffer(id BufferID)

	NewTexture(img *image.RGBA) TextureID
	DeleteTexture(id TextureID)

	NewRenderTarget(width, height int) RenderTarget
	DeleteRenderTarget(rt RenderTarget)

	BindTarget(id TargetID)
	SetViewport(width, height int)
	Clear(c Color)

	LoadProgram(kind ProgramKind) (ProgramID, error)
	UseProgram(id ProgramID)
	SetUniformMat4(name string, m mgl32.Mat4)
	SetUniformFloat(name string, v float32)
	SetUniformVec2(name string, v Vec2)
	SetUniformInt(name string, v int32)
	BindTexture(id TextureID)

	// DrawIndexed draws count indices from ib as triangles over vb.
	DrawIndexed(vb, ib BufferID, count int)
	// DrawFullscreen draws a quad covering the bound target, sampling the
	// bound texture over its full extent.
	DrawFullscreen()
}
