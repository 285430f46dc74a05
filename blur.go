package quadblur

import (
	"fmt"
	"math"
)

// BlurLimits bounds the values BlurParameters.Apply may produce and selects
// which keys a scene reacts to.
type BlurLimits struct {
	MinRadius  float32
	MaxRadius  float32
	RadiusStep float32
	MaxLayers  int
	// MaxKernel enables the kernel keys when positive.
	MaxKernel     int
	AllowDither   bool
	AllowDiagonal bool
}

// KawaseLimits are the bounds used by the Kawase scene. MaxLayers is
// lowered further to the chain's MaxLayers.
var KawaseLimits = BlurLimits{
	MinRadius:   0.2,
	MaxRadius:   32,
	RadiusStep:  0.1,
	MaxLayers:   5,
	AllowDither: true,
}

// SeparableLimits are the bounds used by the Blurring scene.
var SeparableLimits = BlurLimits{
	MinRadius:     0,
	MaxRadius:     4.5,
	RadiusStep:    0.1,
	MaxLayers:     5,
	MaxKernel:     64,
	AllowDiagonal: true,
}

// BlurParameters are the user-tunable blur settings.
type BlurParameters struct {
	Radius     float32
	Layers     int
	Diagonal   bool
	Dither     bool
	KernelSize int
}

// DefaultKawaseParameters returns the Kawase scene's starting settings.
func DefaultKawaseParameters() BlurParameters {
	return BlurParameters{Radius: 1, Layers: 1}
}

// DefaultSeparableParameters returns the Blurring scene's starting settings.
func DefaultSeparableParameters() BlurParameters {
	return BlurParameters{Radius: 1, Layers: 1, KernelSize: 16}
}

// Apply mutates p for one key press and clamps the result to l. It reports
// whether the key was bound.
//
//	ArrowRight / ArrowLeft  radius +/- step
//	ArrowUp / ArrowDown     kernel size +/- 1
//	l / L                   layers +/- 1
//	d                       toggle dither
//	k                       toggle diagonal
func (p *BlurParameters) Apply(key Key, l BlurLimits) bool {
	switch key {
	case KeyArrowRight:
		p.Radius += l.RadiusStep
	case KeyArrowLeft:
		p.Radius -= l.RadiusStep
	case KeyArrowUp, KeyArrowDown:
		if l.MaxKernel <= 0 {
			return false
		}
		if key == KeyArrowUp {
			p.KernelSize++
		} else {
			p.KernelSize--
		}
	case "l":
		p.Layers++
	case "L":
		p.Layers--
	case "d", "D":
		if !l.AllowDither {
			return false
		}
		p.Dither = !p.Dither
	case "k", "K":
		if !l.AllowDiagonal {
			return false
		}
		p.Diagonal = !p.Diagonal
	default:
		return false
	}
	p.Clamp(l)
	return true
}

// Clamp restricts every field to l.
func (p *BlurParameters) Clamp(l BlurLimits) {
	// Snap to the step grid so repeated presses do not drift.
	if l.RadiusStep > 0 {
		steps := math.Round(float64(p.Radius / l.RadiusStep))
		p.Radius = float32(steps) * l.RadiusStep
	}
	p.Radius = clampf(p.Radius, l.MinRadius, l.MaxRadius)
	p.Layers = clampi(p.Layers, 0, l.MaxLayers)
	p.KernelSize = clampi(p.KernelSize, 0, max(l.MaxKernel, 0))
}

// Angle returns the direction of the first separable pass in radians.
func (p BlurParameters) Angle() float32 {
	if p.Diagonal {
		return math.Pi / 4
	}
	return 0
}

// String formats the parameters for logs and the HUD.
func (p BlurParameters) String() string {
	s := fmt.Sprintf("r=%.2f l=%d", p.Radius, p.Layers)
	if p.KernelSize > 0 {
		s += fmt.Sprintf(" k=%d", p.KernelSize)
	}
	if p.Diagonal {
		s += " diagonal"
	}
	if p.Dither {
		s += " dithering"
	}
	return s
}
