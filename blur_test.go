package quadblur

import (
	"math"
	"testing"
)

func TestBlurParametersKawaseKeys(t *testing.T) {
	p := DefaultKawaseParameters()
	l := KawaseLimits

	if !p.Apply(KeyArrowRight, l) || !approxEqual(p.Radius, 1.1, 1e-5) {
		t.Errorf("Radius after ArrowRight = %v, want 1.1", p.Radius)
	}
	if !p.Apply("d", l) || !p.Dither {
		t.Error("d did not enable dither")
	}
	if !p.Apply("l", l) || p.Layers != 2 {
		t.Errorf("Layers after l = %d, want 2", p.Layers)
	}
	if !p.Apply("L", l) || p.Layers != 1 {
		t.Errorf("Layers after L = %d, want 1", p.Layers)
	}
	if p.Apply("k", l) {
		t.Error("k bound in Kawase limits")
	}
	if p.Apply(KeyArrowUp, l) {
		t.Error("ArrowUp bound in Kawase limits")
	}
	if p.Apply("x", l) {
		t.Error("unbound key reported true")
	}
}

func TestBlurParametersClampAtMutation(t *testing.T) {
	p := DefaultKawaseParameters()
	l := KawaseLimits
	for range 50 {
		p.Apply(KeyArrowLeft, l)
		p.Apply("L", l)
	}
	if !approxEqual(p.Radius, 0.2, 1e-5) {
		t.Errorf("Radius floor = %v, want 0.2", p.Radius)
	}
	if p.Layers != 0 {
		t.Errorf("Layers floor = %d, want 0", p.Layers)
	}

	for range 1000 {
		p.Apply(KeyArrowRight, l)
		p.Apply("l", l)
	}
	if p.Radius != 32 {
		t.Errorf("Radius ceiling = %v, want 32", p.Radius)
	}
	if p.Layers != 5 {
		t.Errorf("Layers ceiling = %d, want 5", p.Layers)
	}
}

func TestBlurParametersNoDrift(t *testing.T) {
	p := BlurParameters{Radius: 1}
	l := SeparableLimits
	for range 20 {
		p.Apply(KeyArrowRight, l)
	}
	for range 20 {
		p.Apply(KeyArrowLeft, l)
	}
	if p.Radius != 1 {
		t.Errorf("Radius after +20/-20 = %v, want exactly 1", p.Radius)
	}
}

func TestBlurParametersSeparableKeys(t *testing.T) {
	p := DefaultSeparableParameters()
	l := SeparableLimits

	if !p.Apply(KeyArrowUp, l) || p.KernelSize != 17 {
		t.Errorf("KernelSize after ArrowUp = %d, want 17", p.KernelSize)
	}
	for range 100 {
		p.Apply(KeyArrowUp, l)
	}
	if p.KernelSize != 64 {
		t.Errorf("KernelSize ceiling = %d, want 64", p.KernelSize)
	}
	for range 100 {
		p.Apply(KeyArrowDown, l)
	}
	if p.KernelSize != 0 {
		t.Errorf("KernelSize floor = %d, want 0", p.KernelSize)
	}
	for range 100 {
		p.Apply(KeyArrowRight, l)
	}
	if p.Radius != 4.5 {
		t.Errorf("Radius ceiling = %v, want 4.5", p.Radius)
	}
	if !p.Apply("K", l) || !p.Diagonal {
		t.Error("K did not enable diagonal")
	}
	if p.Apply("d", l) {
		t.Error("d bound in separable limits")
	}
}

func TestBlurParametersLayersFollowLimits(t *testing.T) {
	l := SeparableLimits
	l.MaxLayers = 2
	p := BlurParameters{Layers: 2}
	p.Apply("l", l)
	if p.Layers != 2 {
		t.Errorf("Layers = %d, want 2", p.Layers)
	}
}

func TestBlurParametersAngle(t *testing.T) {
	p := BlurParameters{}
	if p.Angle() != 0 {
		t.Errorf("Angle() = %v, want 0", p.Angle())
	}
	p.Diagonal = true
	if !approxEqual(p.Angle(), math.Pi/4, 1e-6) {
		t.Errorf("Angle() = %v, want π/4", p.Angle())
	}
}

func TestBlurParametersString(t *testing.T) {
	tests := []struct {
		p    BlurParameters
		want string
	}{
		{BlurParameters{Radius: 1, Layers: 1}, "r=1.00 l=1"},
		{BlurParameters{Radius: 2.5, Layers: 3, Dither: true}, "r=2.50 l=3 dithering"},
		{BlurParameters{Radius: 1, Layers: 1, KernelSize: 16, Diagonal: true}, "r=1.00 l=1 k=16 diagonal"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
