package quadblur

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestQuadGridDefaultLayout(t *testing.T) {
	g := NewQuadGrid(DefaultQuadCount, 1)
	if got := g.AreaWidth(); got != 316 {
		t.Fatalf("AreaWidth() = %d, want 316", got)
	}
	if got := g.BasePosition(GridCoord{0, 0}); got != (Vec2{-158 * 16, -158 * 16}) {
		t.Errorf("BasePosition(0,0) = %v, want (%d,%d)", got, -158*16, -158*16)
	}
	if got := g.IndexFromGridCoord(GridCoord{g.AreaWidth() - 1, 0}); got != g.AreaWidth()-1 {
		t.Errorf("IndexFromGridCoord(aw-1,0) = %d, want %d", got, g.AreaWidth()-1)
	}
	if got := g.Quad(0).Position; got != g.BasePosition(GridCoord{0, 0}) {
		t.Errorf("Quad(0).Position = %v, want base position", got)
	}
}

func TestQuadGridIndexBijection(t *testing.T) {
	g := NewQuadGrid(1000, 1)
	for i := 0; i < g.Len(); i++ {
		c := g.GridCoordFromIndex(i)
		if c.X < 0 || c.X >= g.AreaWidth() {
			t.Fatalf("GridCoordFromIndex(%d) = %v, X out of range", i, c)
		}
		if back := g.IndexFromGridCoord(c); back != i {
			t.Fatalf("IndexFromGridCoord(GridCoordFromIndex(%d)) = %d", i, back)
		}
	}
}

func TestClosestGridCoordClamps(t *testing.T) {
	g := NewQuadGrid(100, 1) // 10x10
	tests := []struct {
		name string
		pos  Vec2
		want GridCoord
	}{
		{"origin", Vec2{0, 0}, GridCoord{5, 5}},
		{"exact cell", g.BasePosition(GridCoord{2, 7}), GridCoord{2, 7}},
		{"rounds", Vec2{-5 * 16, 0}.Add(Vec2{9, -7}), GridCoord{1, 5}},
		{"far negative", Vec2{-1e6, -1e6}, GridCoord{0, 0}},
		{"far positive", Vec2{1e6, 1e6}, GridCoord{9, 9}},
		{"mixed", Vec2{1e6, -1e6}, GridCoord{9, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ClosestGridCoord(tt.pos); got != tt.want {
				t.Errorf("ClosestGridCoord(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestQuadGridDeterministic(t *testing.T) {
	a := NewQuadGrid(500, 42)
	b := NewQuadGrid(500, 42)
	c := NewQuadGrid(500, 43)
	if !bytes.Equal(a.VertexBytes(0, a.Len()), b.VertexBytes(0, b.Len())) {
		t.Error("same seed produced different vertices")
	}
	if bytes.Equal(a.VertexBytes(0, a.Len()), c.VertexBytes(0, c.Len())) {
		t.Error("different seeds produced identical vertices")
	}
}

func TestQuadAttributeRanges(t *testing.T) {
	g := NewQuadGrid(2000, 7)
	for i := 0; i < g.Len(); i++ {
		q := g.Quad(i)
		if q.Size.X < 10 || q.Size.X > 20 || q.Size.Y < 10 || q.Size.Y > 20 {
			t.Fatalf("quad %d size %v out of [10,20]", i, q.Size)
		}
		if q.Rotation < 0 || q.Rotation >= 2*math.Pi {
			t.Fatalf("quad %d rotation %v out of [0,2π)", i, q.Rotation)
		}
		if q.BorderRadius < 1 || q.BorderRadius > 5 || q.BorderWidth < 1 || q.BorderWidth > 5 {
			t.Fatalf("quad %d border %v/%v out of [1,5]", i, q.BorderRadius, q.BorderWidth)
		}
		for _, b := range q.FillColor.Bytes() {
			if b < 128 {
				t.Fatalf("quad %d fill %v below 128", i, q.FillColor.Bytes())
			}
		}
		s := q.StrokeColor.Bytes()
		for _, b := range s[:3] {
			if b < 24 || b > 128 {
				t.Fatalf("quad %d stroke %v rgb out of [24,128]", i, s)
			}
		}
		if s[3] < 128 {
			t.Fatalf("quad %d stroke alpha %d below 128", i, s[3])
		}
	}
}

func TestQuadVertices(t *testing.T) {
	q := Quad{
		Position:    Vec2{100, 50},
		Size:        Vec2{10, 20},
		Rotation:    0,
		FillColor:   PackRGBA8(255, 0, 0, 255),
		StrokeColor: PackRGBA8(0, 0, 255, 128),
	}
	v := q.Vertices(0.75)
	want := [4]Vec2{{95, 40}, {95, 60}, {105, 60}, {105, 40}}
	for k := range v {
		if !approxVec(v[k].Position, want[k], epsilon) {
			t.Errorf("corner %d = %v, want %v", k, v[k].Position, want[k])
		}
		if v[k].Intensity != 0.75 {
			t.Errorf("corner %d intensity = %v, want 0.75", k, v[k].Intensity)
		}
	}
	if v[0].Fill != [4]float32{1, 0, 0, 1} {
		t.Errorf("fill = %v, want red", v[0].Fill)
	}

	q.Rotation = math.Pi / 2
	v = q.Vertices(0.5)
	// (-5,-10) rotated a quarter turn is (10,-5).
	if !approxVec(v[0].Position, Vec2{110, 45}, epsilon) {
		t.Errorf("rotated corner 0 = %v, want (110,45)", v[0].Position)
	}
}

func TestQuadIndices(t *testing.T) {
	if got := QuadIndices(3); got != [6]uint32{12, 13, 14, 12, 14, 15} {
		t.Errorf("QuadIndices(3) = %v", got)
	}
	g := NewQuadGrid(4, 1)
	b := g.IndexBytes()
	if len(b) != g.IndexCount()*4 {
		t.Fatalf("IndexBytes len = %d, want %d", len(b), g.IndexCount()*4)
	}
	if got := binary.LittleEndian.Uint32(b[6*4+5*4:]); got != 7 {
		t.Errorf("index[11] = %d, want 7", got)
	}
}

func TestVertexEncodingLayout(t *testing.T) {
	g := NewQuadGrid(9, 3)
	q := g.Quad(4)
	want := q.Vertices(baseIntensity)
	for k := range 4 {
		if got := g.Vertex(4, k); got != want[k] {
			t.Errorf("Vertex(4,%d) = %+v, want %+v", k, got, want[k])
		}
	}
	raw := g.VertexBytes(4, 5)
	if len(raw) != QuadStride {
		t.Fatalf("VertexBytes len = %d, want %d", len(raw), QuadStride)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw[2*4:])); got != q.Size.X {
		t.Errorf("size.x at float 2 = %v, want %v", got, q.Size.X)
	}
}

func TestReactAndReset(t *testing.T) {
	g := NewQuadGrid(10000, 9) // 100x100
	center := GridCoord{50, 50}
	ci := g.IndexFromGridCoord(center)
	pointer := g.Quad(ci).Position
	before := g.Quad(ci).Rotation

	r := g.React(pointer, 64, 0.1)
	if r.XBeg != 46 || r.XEnd != 54 || r.YBeg != 46 || r.YEnd != 54 {
		t.Fatalf("React range = %+v, want 46..54 on both axes", r)
	}
	if got := g.VertexIntensity(ci); !approxEqual(got, 2.5, epsilon) {
		t.Errorf("center intensity = %v, want 2.5", got)
	}
	wantRot := before + 0.1*math.Pi*2
	if got := g.Quad(ci).Rotation; !approxEqual(got, wantRot, epsilon) {
		t.Errorf("center rotation = %v, want %v", got, wantRot)
	}
	// Corner of the range is farther than the radius.
	corner := g.IndexFromGridCoord(GridCoord{46, 46})
	if got := g.VertexIntensity(corner); got != baseIntensity {
		t.Errorf("corner intensity = %v, want %v", got, baseIntensity)
	}
	outside := g.IndexFromGridCoord(GridCoord{10, 10})
	if got := g.VertexIntensity(outside); got != baseIntensity {
		t.Errorf("outside intensity = %v, want %v", got, baseIntensity)
	}

	g.Reset(r)
	for y := r.YBeg; y <= r.YEnd; y++ {
		for x := r.XBeg; x <= r.XEnd; x++ {
			i := g.IndexFromGridCoord(GridCoord{x, y})
			if got := g.VertexIntensity(i); got != baseIntensity {
				t.Fatalf("intensity at (%d,%d) after Reset = %v, want %v", x, y, got, baseIntensity)
			}
		}
	}
	// Rotation persists across Reset.
	if got := g.Quad(ci).Rotation; !approxEqual(got, wantRot, epsilon) {
		t.Errorf("rotation after Reset = %v, want %v", got, wantRot)
	}
}

func TestReactBrightensEveryQuadWithinRadius(t *testing.T) {
	g := NewQuadGrid(10000, 3) // 100x100
	tests := []struct {
		name    string
		pointer Vec2
		radius  float32
	}{
		{"lattice point", Vec2{0, 0}, 64},
		{"between cells", Vec2{37.5, -21.25}, 64},
		{"surround radius", Vec2{-100, 80}, SurroundRadius},
		{"near edge", Vec2{-790, 790}, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := g.React(tt.pointer, tt.radius, 0)
			defer g.Reset(r)
			for i := 0; i < g.Len(); i++ {
				c := g.GridCoordFromIndex(i)
				inside := c.X >= r.XBeg && c.X <= r.XEnd && c.Y >= r.YBeg && c.Y <= r.YEnd
				d := g.Quad(i).Position.Distance(tt.pointer)
				got := g.VertexIntensity(i)
				switch {
				case d < tt.radius && !inside:
					t.Fatalf("quad %d at distance %v lies outside range %+v", i, d, r)
				case d < tt.radius:
					want := 2*(tt.radius-d)/tt.radius + baseIntensity
					if got <= baseIntensity || !approxEqual(got, want, 1e-4) {
						t.Fatalf("quad %d at distance %v: intensity = %v, want %v", i, d, got, want)
					}
				case got != baseIntensity:
					t.Fatalf("quad %d at distance %v: intensity = %v, want %v", i, d, got, baseIntensity)
				}
			}
		})
	}
}

func TestReactLeavesOutsideBytesUntouched(t *testing.T) {
	g := NewQuadGrid(2500, 5) // 50x50
	snapshot := bytes.Clone(g.VertexBytes(0, g.Len()))

	r := g.React(Vec2{0, 0}, 48, 0.5)
	for i := 0; i < g.Len(); i++ {
		c := g.GridCoordFromIndex(i)
		inside := c.X >= r.XBeg && c.X <= r.XEnd && c.Y >= r.YBeg && c.Y <= r.YEnd
		if inside {
			continue
		}
		if !bytes.Equal(g.VertexBytes(i, i+1), snapshot[i*QuadStride:(i+1)*QuadStride]) {
			t.Fatalf("quad %d outside %+v changed", i, r)
		}
	}
}

func TestReactSkipsPartialRow(t *testing.T) {
	g := NewQuadGrid(12, 1) // aw=3, last row partial: indices 9..11 fill row 3
	// A pointer far away clamps to the last lattice row (y=2), never beyond.
	r := g.React(Vec2{1e6, 1e6}, 10, 1)
	if r.YEnd != 2 {
		t.Errorf("YEnd = %d, want 2", r.YEnd)
	}
}

func TestNewQuadGridPanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewQuadGrid(0) did not panic")
		}
	}()
	NewQuadGrid(0, 1)
}
