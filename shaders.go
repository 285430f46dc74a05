package quadblur

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Kage samples with nearest filtering, so
// sampleLinear does bilinear filtering by hand. Ebitengine uses
// premultiplied alpha throughout.

// sampleLinearSrc is shared by every texture-reading shader.
const sampleLinearSrc = `
func sampleLinear(p vec2) vec4 {
	o := imageSrc0Origin()
	s := imageSrc0Size()
	p = clamp(p, o+0.5, o+s-0.5)
	q := p - 0.5
	f := fract(q)
	b := floor(q) + 0.5
	c00 := imageSrc0At(b)
	c10 := imageSrc0At(b + vec2(1, 0))
	c01 := imageSrc0At(b + vec2(0, 1))
	c11 := imageSrc0At(b + vec2(1, 1))
	return mix(mix(c00, c10, f.x), mix(c01, c11, f.x), f.y)
}
`

const textureShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return sampleLinear(src)
}
` + sampleLinearSrc

// The dither shader adds one step of hash noise per channel so 8-bit output
// of a wide blur does not band.
const ditherShaderSrc = `//kage:unit pixels
package main

func hash(p vec2) float {
	p = fract(p * vec2(443.897, 441.423))
	p += dot(p, p.yx+19.19)
	return fract((p.x + p.y) * p.x)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := sampleLinear(src)
	n := (hash(dst.xy) - 0.5) / 255.0
	return vec4(clamp(c.rgb+n*c.a, vec3(0), vec3(c.a)), c.a)
}
` + sampleLinearSrc

// Dual-filter Kawase. Downsampling takes the center and four diagonal taps;
// upsampling takes eight taps on a diamond.
const kawaseShaderSrc = `//kage:unit pixels
package main

var Distance float
var Upsample float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	d := Distance
	if Upsample > 0.5 {
		sum := sampleLinear(src + vec2(-2*d, 0))
		sum += sampleLinear(src + vec2(-d, d)) * 2
		sum += sampleLinear(src + vec2(0, 2*d))
		sum += sampleLinear(src + vec2(d, d)) * 2
		sum += sampleLinear(src + vec2(2*d, 0))
		sum += sampleLinear(src + vec2(d, -d)) * 2
		sum += sampleLinear(src + vec2(0, -2*d))
		sum += sampleLinear(src + vec2(-d, -d)) * 2
		return sum / 12
	}
	sum := sampleLinear(src) * 4
	sum += sampleLinear(src + vec2(-d, -d))
	sum += sampleLinear(src + vec2(d, d))
	sum += sampleLinear(src + vec2(d, -d))
	sum += sampleLinear(src + vec2(-d, d))
	return sum / 8
}
` + sampleLinearSrc

// One directional Gaussian pass. Direction is the tap step in source pixels;
// KernelSize taps are taken on each side of the center.
const separableShaderSrc = `//kage:unit pixels
package main

var Direction vec2
var KernelSize float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	n := KernelSize
	if n < 1 {
		return sampleLinear(src)
	}
	sigma := max(n/3, 0.5)
	k := 1 / (2 * sigma * sigma)
	sum := vec4(0)
	wsum := 0.0
	for i := -64; i <= 64; i++ {
		fi := float(i)
		if abs(fi) <= n {
			w := exp(-fi * fi * k)
			sum += sampleLinear(src+Direction*fi) * w
			wsum += w
		}
	}
	return sum / wsum
}
` + sampleLinearSrc

// Rounded rectangles. src carries the local position in [0, size]; custom
// carries the packed half size, radius and width, and stroke color.
const roundRectShaderSrc = `//kage:unit pixels
package main

func unpack(v float) vec2 {
	v = floor(v + 0.5)
	hi := floor(v / 1024)
	return vec2(hi, v-hi*1024)
}

func sdRoundBox(p vec2, b vec2, r float) float {
	q := abs(p) - b + r
	return length(max(q, vec2(0))) + min(max(q.x, q.y), 0) - r
}

func Fragment(dst vec4, src vec2, color vec4, custom vec4) vec4 {
	half := unpack(custom.x) / 32
	rw := unpack(custom.y) / 32
	srg := unpack(custom.z) / 255
	sba := unpack(custom.w) / 255
	stroke := vec4(srg, sba)

	d := sdRoundBox(src-half, half, min(rw.x, min(half.x, half.y)))
	aa := max(fwidth(d), 0.0001)
	outer := 1 - smoothstep(-aa, aa, d)
	inner := 1 - smoothstep(-aa, aa, d+rw.y)

	c := mix(stroke, clamp(color, vec4(0), vec4(1)), inner)
	a := c.a * outer
	return vec4(c.rgb*a, a)
}
`

var shaderSources = map[ProgramKind]string{
	ProgramRoundRect: roundRectShaderSrc,
	ProgramTexture:   textureShaderSrc,
	ProgramDither:    ditherShaderSrc,
	ProgramKawase:    kawaseShaderSrc,
	ProgramSeparable: separableShaderSrc,
}

// Uniform names on the Kage side. u_mvp has no entry: it is applied to
// vertices on the CPU.
var kageUniformNames = map[string]string{
	UniformDistance:   "Distance",
	UniformUpsample:   "Upsample",
	UniformDirection:  "Direction",
	UniformKernelSize: "KernelSize",
}

// shaderCache holds compiled shaders. Each kind is compiled once per
// process.
var shaderCache = map[ProgramKind]*ebiten.Shader{}

// ensureShader compiles the shader for kind on first use.
func ensureShader(kind ProgramKind) (*ebiten.Shader, error) {
	if s, ok := shaderCache[kind]; ok {
		return s, nil
	}
	src, ok := shaderSources[kind]
	if !ok {
		return nil, fmt.Errorf("no shader source for program %d", kind)
	}
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", kind, err)
	}
	shaderCache[kind] = s
	return s, nil
}
