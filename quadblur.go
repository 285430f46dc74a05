package quadblur

import "math"

// Vec2 is a 2D vector used for positions, sizes, and pointer coordinates.
// Components are float32 to match the GPU vertex layout.
type Vec2 struct {
	X, Y float32
}

// Splat returns a Vec2 with both components set to v.
func Splat(v float32) Vec2 {
	return Vec2{v, v}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Div returns the component-wise quotient of v and o.
func (v Vec2) Div(o Vec2) Vec2 { return Vec2{v.X / o.X, v.Y / o.Y} }

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float32 {
	return v.Sub(o).Len()
}

// Rotate rotates v counter-clockwise (in a Y-up frame) by angle radians.
func (v Vec2) Rotate(angle float32) Vec2 {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Vec2{c*v.X - s*v.Y, s*v.X + c*v.Y}
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorTransparent is the clear color used for offscreen targets.
var ColorTransparent = Color{}

// RGBA8 is a color packed as four bytes in little-endian R, G, B, A order.
type RGBA8 uint32

// PackRGBA8 packs four 8-bit channels into an RGBA8.
func PackRGBA8(r, g, b, a uint8) RGBA8 {
	return RGBA8(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24)
}

// Bytes returns the four channels in R, G, B, A order.
func (c RGBA8) Bytes() [4]uint8 {
	return [4]uint8{uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)}
}

// Floats returns the channels normalized to [0, 1].
func (c RGBA8) Floats() [4]float32 {
	b := c.Bytes()
	return [4]float32{
		float32(b[0]) / 255,
		float32(b[1]) / 255,
		float32(b[2]) / 255,
		float32(b[3]) / 255,
	}
}

// clampf restricts v to [lo, hi].
func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampi restricts v to [lo, hi].
func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
