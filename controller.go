package quadblur

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// DefaultScrollSpeed is the zoom exponent per wheel line.
	DefaultScrollSpeed = 0.5
	// pixelsPerLine converts pixel-unit wheel deltas to lines.
	pixelsPerLine = 100
	// minScale and maxScale bound the zoom target.
	minScale = 1.0 / 1024
	maxScale = 1024
	// homeDuration is the length of the Home key scroll in seconds.
	homeDuration = 0.4
)

// scrollAnim holds active scroll-to tweens for the camera position.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// SceneController turns input events into camera motion: wheel zoom with
// exponential easing and joystick-style drag panning.
//
// The clock is injected so frame timing can be driven from tests.
type SceneController struct {
	// Camera is the camera being driven. It is mutated by Update.
	Camera *Camera
	// ScrollSpeed scales wheel deltas before they are applied as a power
	// of two to the zoom target.
	ScrollSpeed float32

	now       func() time.Time
	start     time.Time
	prev      time.Time
	dt        float32
	homeScale float32
	hardScale float32
	pointer   Vec2
	anchor    Vec2
	dragging  bool
	scroll    *scrollAnim
}

// NewSceneController creates a controller for cam. The camera's current X
// scale becomes both the zoom target and the scale restored by Home. If now
// is nil, time.Now is used.
func NewSceneController(cam *Camera, now func() time.Time) *SceneController {
	if now == nil {
		now = time.Now
	}
	t := now()
	scale := clampf(cam.Scale.X, minScale, maxScale)
	cam.Scale = Splat(scale)
	return &SceneController{
		Camera:      cam,
		ScrollSpeed: DefaultScrollSpeed,
		now:         now,
		start:       t,
		prev:        t,
		homeScale:   scale,
		hardScale:   scale,
	}
}

// HandleEvent updates pointer, drag, and zoom state from one input event.
// Events the controller does not use are ignored.
func (c *SceneController) HandleEvent(ev InputEvent) {
	switch ev.Kind {
	case EventPointerMoved:
		c.pointer = ev.Pos
	case EventPointerButton:
		if ev.Pressed {
			c.anchor = c.pointer
			c.dragging = true
			c.scroll = nil
		} else {
			c.dragging = false
		}
	case EventScroll:
		dy := ev.Delta.Y
		if ev.Pixels {
			dy /= pixelsPerLine
		}
		c.zoomBy(dy)
	case EventKeyPressed:
		if ev.Key == KeyHome {
			c.hardScale = c.homeScale
			c.ScrollTo(Vec2{}, homeDuration, ease.OutCubic)
		}
	}
}

// zoomBy multiplies the zoom target by 2^(ScrollSpeed*lines).
func (c *SceneController) zoomBy(lines float32) {
	f := float32(math.Exp2(float64(c.ScrollSpeed * lines)))
	c.hardScale = clampf(c.hardScale*f, minScale, maxScale)
}

// ScrollTo animates the camera position to target over seconds using the
// given easing function. A drag started before it finishes cancels it.
func (c *SceneController) ScrollTo(target Vec2, seconds float32, easeFn ease.TweenFunc) {
	pos := c.Camera.Position
	c.scroll = &scrollAnim{
		tweenX: gween.New(pos.X, target.X, seconds, easeFn),
		tweenY: gween.New(pos.Y, target.Y, seconds, easeFn),
	}
}

// Update advances the frame clock, eases the scale toward the zoom target,
// and applies drag and scroll motion.
func (c *SceneController) Update() {
	t := c.now()
	dt := float32(t.Sub(c.prev).Seconds())
	c.prev = t
	if dt < 0 {
		dt = 0
	}
	c.dt = dt

	// Framerate-independent approach toward hardScale.
	f := min(1, float32(math.Pow(float64(dt), 0.6)))
	scale := c.Camera.Scale.X
	scale += f * (c.hardScale - scale)
	c.Camera.Scale = Splat(scale)

	if c.dragging {
		c.Camera.Position = c.Camera.Position.Add(c.pointer.Sub(c.anchor).Scale(1 / scale))
	}

	if c.scroll != nil {
		if !c.scroll.doneX {
			c.Camera.Position.X, c.scroll.doneX = c.scroll.tweenX.Update(dt)
		}
		if !c.scroll.doneY {
			c.Camera.Position.Y, c.scroll.doneY = c.scroll.tweenY.Update(dt)
		}
		if c.scroll.doneX && c.scroll.doneY {
			c.scroll = nil
		}
	}
}

// Pointer returns the last pointer position in viewport pixels.
func (c *SceneController) Pointer() Vec2 { return c.pointer }

// Dragging reports whether a drag is active.
func (c *SceneController) Dragging() bool { return c.dragging }

// Scrolling reports whether a ScrollTo animation is running.
func (c *SceneController) Scrolling() bool { return c.scroll != nil }

// HardScale returns the zoom target the scale eases toward.
func (c *SceneController) HardScale() float32 { return c.hardScale }

// DT returns the seconds elapsed between the last two Update calls.
func (c *SceneController) DT() float32 { return c.dt }

// Elapsed returns the time since the controller was created, as of the
// last Update.
func (c *SceneController) Elapsed() time.Duration { return c.prev.Sub(c.start) }
