package quadblur

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// depthRange is the orthographic depth extent. Content at z=0 is pushed to
// the middle of the range so that it always lands inside the clip volume.
const (
	depthRange = float32(math.MaxUint16)
	halfDepth  = depthRange / 2
)

// Camera controls the view into the world: position, rotation, and scale.
//
// The camera stores no derived state. Matrix and PointerToWorld are both
// recomputed from the current fields on every call, so drawing and hit
// testing always agree.
type Camera struct {
	// Position is the world-space offset applied before rotation.
	Position Vec2
	// Rotation is the camera rotation in radians.
	Rotation float32
	// Scale is the zoom factor per axis (pixels per world unit).
	// Components must never be zero.
	Scale Vec2
}

// NewCamera creates a camera at the origin with a uniform scale.
func NewCamera(scale float32) *Camera {
	return &Camera{Scale: Splat(scale)}
}

// RealSize returns the size of the viewport in world units.
func (c *Camera) RealSize(viewport Vec2) Vec2 {
	return viewport.Div(c.Scale)
}

// CenterOffset returns half of RealSize: the world-unit offset from the
// top-left corner of the viewport to its center.
func (c *Camera) CenterOffset(viewport Vec2) Vec2 {
	return c.RealSize(viewport).Scale(0.5)
}

// Matrix returns the world-to-clip matrix for the given viewport size.
//
//	Ortho(0, w, h, 0, 0, 65535) * Translate(center) * RotateZ(rotation) * Translate(position, -32767.5)
func (c *Camera) Matrix(viewport Vec2) mgl32.Mat4 {
	realSize := c.RealSize(viewport)
	origin := realSize.Scale(0.5)

	return mgl32.Ortho(0, realSize.X, realSize.Y, 0, 0, depthRange).
		Mul4(mgl32.Translate3D(origin.X, origin.Y, 0)).
		Mul4(mgl32.HomogRotate3DZ(c.Rotation)).
		Mul4(mgl32.Translate3D(c.Position.X, c.Position.Y, -halfDepth))
}

// PointerToWorld converts a pointer position in viewport pixels to world
// coordinates. It is the exact inverse of Matrix followed by the clip to
// pixel mapping.
func (c *Camera) PointerToWorld(pointer, viewport Vec2) Vec2 {
	origin := c.CenterOffset(viewport)
	return pointer.Div(c.Scale).Sub(origin).Rotate(-c.Rotation).Sub(c.Position)
}

// WorldToScreen converts a world-space point to viewport pixels by running
// it through Matrix.
func (c *Camera) WorldToScreen(world, viewport Vec2) Vec2 {
	clip := c.Matrix(viewport).Mul4x1(mgl32.Vec4{world.X, world.Y, 0, 1})
	return clipToPixel(clip.X(), clip.Y(), viewport)
}

// clipToPixel maps normalized device coordinates to pixels in a viewport
// whose origin is the top-left corner.
func clipToPixel(x, y float32, viewport Vec2) Vec2 {
	return Vec2{
		X: (x + 1) * 0.5 * viewport.X,
		Y: (1 - y) * 0.5 * viewport.Y,
	}
}
