package quadblur

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

const (
	// DefaultQuadCount is the number of quads in the RoundQuads scene.
	DefaultQuadCount = 100_000
	// GridSpacing is the lattice distance between quad centers in world units.
	GridSpacing = 16
	// SurroundRadius is the world-space radius around the pointer in which
	// quads react.
	SurroundRadius = 320

	// baseIntensity is the resting intensity written for every quad.
	baseIntensity = 0.5
)

// Vertex layout: position.xy, size.xy, fill.rgba, stroke.rgba,
// border_radius, border_width, intensity. All little-endian float32.
const (
	QuadVertexFloats = 15
	QuadVertexSize   = QuadVertexFloats * 4
	QuadStride       = 4 * QuadVertexSize

	offsetIntensity = 14 * 4
)

// GridCoord addresses a cell of the quad lattice.
type GridCoord struct {
	X, Y int
}

// GridRange is an inclusive rectangle of lattice cells.
type GridRange struct {
	XBeg, XEnd int
	YBeg, YEnd int
}

// Quad is one rounded rectangle. Only Rotation changes after creation.
type Quad struct {
	Position     Vec2
	Size         Vec2
	Rotation     float32
	BorderRadius float32
	BorderWidth  float32
	FillColor    RGBA8
	StrokeColor  RGBA8
}

// QuadVertex is the decoded form of one GPU vertex.
type QuadVertex struct {
	Position     Vec2
	Size         Vec2
	Fill         [4]float32
	Stroke       [4]float32
	BorderRadius float32
	BorderWidth  float32
	Intensity    float32
}

// quadCorners lists the local corners in vertex order.
var quadCorners = [4]Vec2{
	{-0.5, -0.5},
	{-0.5, 0.5},
	{0.5, 0.5},
	{0.5, -0.5},
}

// Vertices returns the four rotated and translated corners of q, all
// carrying the given intensity.
func (q Quad) Vertices(intensity float32) [4]QuadVertex {
	fill := q.FillColor.Floats()
	stroke := q.StrokeColor.Floats()
	var out [4]QuadVertex
	for k, c := range quadCorners {
		out[k] = QuadVertex{
			Position:     c.Mul(q.Size).Rotate(q.Rotation).Add(q.Position),
			Size:         q.Size,
			Fill:         fill,
			Stroke:       stroke,
			BorderRadius: q.BorderRadius,
			BorderWidth:  q.BorderWidth,
			Intensity:    intensity,
		}
	}
	return out
}

// QuadIndices returns the two triangles of quad i.
func QuadIndices(i int) [6]uint32 {
	b := uint32(4 * i)
	return [6]uint32{b, b + 1, b + 2, b, b + 2, b + 3}
}

// QuadGrid owns a square-ish lattice of quads and the packed vertex bytes
// that mirror them on the GPU. Quad identity is the row-major index.
type QuadGrid struct {
	quads     []Quad
	vertices  []byte
	areaWidth int
}

// NewQuadGrid creates n quads with deterministic random attributes.
// Panics if n is not positive.
func NewQuadGrid(n int, seed uint64) *QuadGrid {
	if n <= 0 {
		panic("quadblur: quad count must be positive")
	}
	aw := int(math.Sqrt(float64(n)))
	g := &QuadGrid{
		quads:     make([]Quad, n),
		vertices:  make([]byte, n*QuadStride),
		areaWidth: aw,
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range g.quads {
		g.quads[i] = randomQuad(rng, g.BasePosition(g.GridCoordFromIndex(i)))
		g.writeQuad(i, baseIntensity)
	}
	return g
}

func randomQuad(rng *rand.Rand, pos Vec2) Quad {
	between := func(lo, hi float32) float32 { return lo + rng.Float32()*(hi-lo) }
	byteIn := func(lo, hi int) uint8 { return uint8(lo + rng.IntN(hi-lo+1)) }

	return Quad{
		Position:     pos,
		Size:         Vec2{between(10, 20), between(10, 20)},
		Rotation:     between(0, 2*math.Pi),
		BorderRadius: between(1, 5),
		BorderWidth:  between(1, 5),
		FillColor:    PackRGBA8(byteIn(128, 255), byteIn(128, 255), byteIn(128, 255), byteIn(128, 255)),
		StrokeColor:  PackRGBA8(byteIn(24, 128), byteIn(24, 128), byteIn(24, 128), byteIn(128, 255)),
	}
}

// Len returns the number of quads.
func (g *QuadGrid) Len() int { return len(g.quads) }

// AreaWidth returns the lattice width, floor(sqrt(n)).
func (g *QuadGrid) AreaWidth() int { return g.areaWidth }

// Quad returns a copy of quad i.
func (g *QuadGrid) Quad(i int) Quad { return g.quads[i] }

// IndexFromGridCoord returns the row-major index of c.
func (g *QuadGrid) IndexFromGridCoord(c GridCoord) int {
	return c.Y*g.areaWidth + c.X
}

// GridCoordFromIndex is the inverse of IndexFromGridCoord.
func (g *QuadGrid) GridCoordFromIndex(i int) GridCoord {
	return GridCoord{X: i % g.areaWidth, Y: i / g.areaWidth}
}

// BasePosition returns the world position of a lattice cell. The lattice is
// centered on the world origin.
func (g *QuadGrid) BasePosition(c GridCoord) Vec2 {
	half := float32(g.areaWidth) * 0.5
	return Vec2{float32(c.X) - half, float32(c.Y) - half}.Scale(GridSpacing)
}

// ClosestGridCoord returns the lattice cell nearest to a world position,
// clamped to [0, AreaWidth-1] on both axes.
func (g *QuadGrid) ClosestGridCoord(pos Vec2) GridCoord {
	half := float32(g.areaWidth) * 0.5
	upper := float32(g.areaWidth - 1)
	p := pos.Scale(1.0 / GridSpacing).Add(Splat(half))
	round := func(v float32) int {
		return int(clampf(float32(math.Round(float64(v))), 0, upper))
	}
	return GridCoord{X: round(p.X), Y: round(p.Y)}
}

// RangeAround returns the lattice rectangle covering a square of the given
// radius around pos.
func (g *QuadGrid) RangeAround(pos Vec2, radius float32) GridRange {
	area := Splat(radius)
	beg := g.ClosestGridCoord(pos.Sub(area))
	end := g.ClosestGridCoord(pos.Add(area))
	return GridRange{XBeg: beg.X, XEnd: end.X, YBeg: beg.Y, YEnd: end.Y}
}

// React spins and brightens the quads near pointer, a world position, and
// rewrites their vertices. It returns the range that was touched so the
// caller can upload and later reset it.
func (g *QuadGrid) React(pointer Vec2, radius, dt float32) GridRange {
	r := g.RangeAround(pointer, radius)
	g.eachInRange(r, func(i int) {
		q := &g.quads[i]
		var intensity float32
		if radius > 0 {
			intensity = max(0, radius-q.Position.Distance(pointer)) / radius
		}
		q.Rotation += dt * math.Pi * 2 * intensity
		g.writeQuad(i, 2*intensity+baseIntensity)
	})
	return r
}

// Reset rewrites the vertices of r at the resting intensity.
func (g *QuadGrid) Reset(r GridRange) {
	g.eachInRange(r, func(i int) {
		g.writeQuad(i, baseIntensity)
	})
}

// eachInRange calls fn for every valid quad index in r. Cells past the last
// quad are skipped.
func (g *QuadGrid) eachInRange(r GridRange, fn func(i int)) {
	for y := r.YBeg; y <= r.YEnd; y++ {
		for x := r.XBeg; x <= r.XEnd; x++ {
			i := g.IndexFromGridCoord(GridCoord{x, y})
			if i < 0 || i >= len(g.quads) {
				continue
			}
			fn(i)
		}
	}
}

// writeQuad rebuilds the packed vertices of quad i.
func (g *QuadGrid) writeQuad(i int, intensity float32) {
	dst := g.vertices[i*QuadStride : (i+1)*QuadStride]
	for k, v := range g.quads[i].Vertices(intensity) {
		putQuadVertex(dst[k*QuadVertexSize:], v)
	}
}

// VertexBytes returns the packed vertices of quads [beg, end). The slice
// aliases the grid's storage.
func (g *QuadGrid) VertexBytes(beg, end int) []byte {
	return g.vertices[beg*QuadStride : end*QuadStride]
}

// Vertex decodes corner k of quad i.
func (g *QuadGrid) Vertex(i, k int) QuadVertex {
	return readQuadVertex(g.vertices[i*QuadStride+k*QuadVertexSize:])
}

// VertexIntensity returns the intensity currently written for quad i.
func (g *QuadGrid) VertexIntensity(i int) float32 {
	return getFloat(g.vertices[i*QuadStride+offsetIntensity:])
}

// IndexCount returns the number of indices needed to draw every quad.
func (g *QuadGrid) IndexCount() int { return 6 * len(g.quads) }

// IndexBytes returns the packed uint32 index buffer for every quad.
func (g *QuadGrid) IndexBytes() []byte {
	out := make([]byte, 0, g.IndexCount()*4)
	for i := range g.quads {
		for _, idx := range QuadIndices(i) {
			out = binary.LittleEndian.AppendUint32(out, idx)
		}
	}
	return out
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func putQuadVertex(b []byte, v QuadVertex) {
	fs := [QuadVertexFloats]float32{
		v.Position.X, v.Position.Y,
		v.Size.X, v.Size.Y,
		v.Fill[0], v.Fill[1], v.Fill[2], v.Fill[3],
		v.Stroke[0], v.Stroke[1], v.Stroke[2], v.Stroke[3],
		v.BorderRadius, v.BorderWidth, v.Intensity,
	}
	for j, f := range fs {
		putFloat(b[j*4:], f)
	}
}

func readQuadVertex(b []byte) QuadVertex {
	var fs [QuadVertexFloats]float32
	for j := range fs {
		fs[j] = getFloat(b[j*4:])
	}
	return QuadVertex{
		Position:     Vec2{fs[0], fs[1]},
		Size:         Vec2{fs[2], fs[3]},
		Fill:         [4]float32{fs[4], fs[5], fs[6], fs[7]},
		Stroke:       [4]float32{fs[8], fs[9], fs[10], fs[11]},
		BorderRadius: fs[12],
		BorderWidth:  fs[13],
		Intensity:    fs[14],
	}
}
