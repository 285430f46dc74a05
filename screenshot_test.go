package quadblur

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"kawase", "kawase"},
		{"after-drag", "after-drag"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"r=1.5 l=3", "r_1.5_l_3"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half alpha
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // transparent
		200, 200, 200, 100, // over-bright input clamps
	}
	img := unpremultiply(pixels, 2, 2)
	want := []byte{
		255, 127, 0, 128,
		10, 20, 30, 255,
		0, 0, 0, 0,
		255, 255, 255, 100,
	}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], want[i])
		}
	}
}

func TestScreenshotQueueWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	q := NewScreenshotQueue(dir)
	q.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	q.Queue("initial")
	q.Queue("after drag")
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}

	img := unpremultiply([]byte{1, 2, 3, 255, 4, 5, 6, 255}, 2, 1)
	written := q.write(img)

	want := []string{
		filepath.Join(dir, "20240506_070809_initial.png"),
		filepath.Join(dir, "20240506_070809_after_drag.png"),
	}
	if len(written) != len(want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	for i, path := range want {
		if written[i] != path {
			t.Errorf("written[%d] = %q, want %q", i, written[i], path)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		got, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if b := got.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
			t.Errorf("%s bounds = %v, want 2x1", path, b)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() after write = %d, want 0", q.Len())
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	if q := NewScreenshotQueue(""); q.Dir != DefaultScreenshotDir {
		t.Errorf("Dir = %q, want %q", q.Dir, DefaultScreenshotDir)
	}
}
