package quadblur

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	debugOnce    sync.Once
	debugEnabled atomic.Bool
)

// InitDebug records whether the graphics backend supports debug output.
// Only the first call has any effect. It must run before the frame loop
// starts.
func InitDebug(supported bool) {
	debugOnce.Do(func() {
		debugEnabled.Store(supported)
	})
}

// DebugEnabled reports the value recorded by InitDebug.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// pushDebugGroup opens a named span around a group of device calls and
// returns the function that closes it. When debug output is disabled both
// are no-ops.
func pushDebugGroup(label string) func() {
	if !DebugEnabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		Logger().Debug("debug group", "label", label, "elapsed", time.Since(start))
	}
}

// FrameStats holds per-frame counters reported by the active scene.
type FrameStats struct {
	Scene       string
	Passes      int
	DrawCalls   int
	Uploads     int
	UploadBytes int
	Frame       time.Duration
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("scene", s.Scene),
		slog.Int("passes", s.Passes),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("uploads", s.Uploads),
		slog.Int("upload_bytes", s.UploadBytes),
		slog.Duration("frame", s.Frame),
	)
}

// String formats the stats on one line for the HUD.
func (s FrameStats) String() string {
	return fmt.Sprintf("passes: %d | draws: %d | uploads: %d (%d B)",
		s.Passes, s.DrawCalls, s.Uploads, s.UploadBytes)
}

// debugLog writes frame stats at debug level when debug output is enabled.
func debugLog(stats FrameStats) {
	if !DebugEnabled() {
		return
	}
	Logger().Debug("frame", "stats", stats)
}

// warnf prints a one-off warning to stderr.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[quadblur] "+format+"\n", args...)
}
