package quadblur

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where screenshots go when RunConfig names none.
const DefaultScreenshotDir = "screenshots"

// ScreenshotQueue collects labels during a frame and writes one PNG per
// label from the finished frame.
type ScreenshotQueue struct {
	Dir    string
	labels []string
	now    func() time.Time
}

// NewScreenshotQueue returns a queue writing into dir.
func NewScreenshotQueue(dir string) *ScreenshotQueue {
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	return &ScreenshotQueue{Dir: dir, now: time.Now}
}

// Queue asks for a screenshot of the current frame. Safe to call from
// Update or Draw.
func (q *ScreenshotQueue) Queue(label string) {
	q.labels = append(q.labels, label)
}

// Len returns the number of queued labels.
func (q *ScreenshotQueue) Len() int { return len(q.labels) }

// Flush captures screen for every queued label. Called at the end of Draw.
func (q *ScreenshotQueue) Flush(screen *ebiten.Image) {
	if len(q.labels) == 0 {
		return
	}
	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	q.write(unpremultiply(pixels, b.Dx(), b.Dy()))
}

// write encodes img once per queued label and empties the queue. Failures
// are reported on stderr and do not stop the frame.
func (q *ScreenshotQueue) write(img *image.NRGBA) []string {
	defer func() { q.labels = q.labels[:0] }()

	if err := os.MkdirAll(q.Dir, 0o755); err != nil {
		warnf("screenshot: mkdir %s: %v", q.Dir, err)
		return nil
	}
	stamp := q.now().Format("20060102_150405")
	var written []string
	for _, label := range q.labels {
		path := filepath.Join(q.Dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			warnf("screenshot: %v", err)
			continue
		}
		Logger().Info("screenshot written", "path", path)
		written = append(written, path)
	}
	return written
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything else
// with '_', and falls back to "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
