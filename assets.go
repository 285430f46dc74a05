package quadblur

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes a PNG, JPEG, BMP or WebP file into an RGBA image whose
// bounds start at the origin.
func LoadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	Logger().Debug("image loaded", "path", path, "format", format, "size", src.Bounds().Size())
	return toRGBA(src), nil
}

// toRGBA returns img as an origin-based *image.RGBA, copying only when
// needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FitImage scales img down so neither side exceeds maxSide, keeping the
// aspect ratio. Smaller images are returned unchanged.
func FitImage(img *image.RGBA, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	s := float64(maxSide) / float64(max(w, h))
	nw, nh := max(1, int(float64(w)*s)), max(1, int(float64(h)*s))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Checker colors used when no source image is configured.
var (
	checkerLight = color.RGBA{R: 0xe8, G: 0x9f, B: 0x3a, A: 0xff}
	checkerDark  = color.RGBA{R: 0x1d, G: 0x3b, B: 0x57, A: 0xff}
)

// CheckerImage returns a w x h checkerboard with square cells of the given
// size. Panics if any argument is not positive.
func CheckerImage(w, h, cell int) *image.RGBA {
	if w <= 0 || h <= 0 || cell <= 0 {
		panic(fmt.Sprintf("quadblur: CheckerImage(%d, %d, %d) needs positive arguments", w, h, cell))
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := checkerDark
			if (x/cell+y/cell)%2 == 0 {
				c = checkerLight
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
