package quadblur

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EventKind identifies the variant of an InputEvent.
type EventKind uint8

const (
	// EventPointerMoved reports a new pointer position in viewport pixels.
	EventPointerMoved EventKind = iota
	// EventPointerButton reports a button press or release.
	EventPointerButton
	// EventScroll reports a wheel delta.
	EventScroll
	// EventKeyPressed reports a key going down.
	EventKeyPressed
	// EventResize reports a new viewport size.
	EventResize
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventPointerMoved:
		return "PointerMoved"
	case EventPointerButton:
		return "PointerButton"
	case EventScroll:
		return "Scroll"
	case EventKeyPressed:
		return "KeyPressed"
	case EventResize:
		return "Resize"
	}
	return "Unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Key is a normalized key name. Character keys use the character itself,
// with case following the shift modifier.
type Key string

const (
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyF1         Key = "F1"
	KeyF2         Key = "F2"
	KeyF3         Key = "F3"
	KeyHome       Key = "Home"
	KeyEscape     Key = "Escape"
)

// InputEvent is a window-system event already translated out of the
// backend's types. Only the fields relevant to Kind are set.
type InputEvent struct {
	Kind EventKind
	// Pos is the pointer position in viewport pixels (PointerMoved).
	Pos Vec2
	// Button and Pressed describe a PointerButton event.
	Button  MouseButton
	Pressed bool
	// Delta is the wheel offset. Pixels reports whether it is measured in
	// pixels rather than lines.
	Delta  Vec2
	Pixels bool
	// Key is set for KeyPressed.
	Key Key
	// Width and Height are set for Resize.
	Width, Height int
}

// InputPoller turns Ebitengine's polled input state into InputEvents.
// Queued synthetic input takes precedence over the real pointer for the
// frame in which it is consumed.
type InputPoller struct {
	pos      Vec2
	hasPos   bool
	pressed  bool
	button   MouseButton
	width    int
	height   int
	keyBuf   []ebiten.Key
	events   []InputEvent
	injected []syntheticPointerEvent
	pending  []InputEvent
}

// NewInputPoller creates a poller with no pointer state.
func NewInputPoller() *InputPoller {
	return &InputPoller{}
}

// Poll returns the events for this frame. The returned slice is reused by
// the next call.
func (p *InputPoller) Poll(width, height int) []InputEvent {
	p.events = p.events[:0]
	p.resize(width, height)

	if !p.processInjectedInput() {
		mx, my := ebiten.CursorPosition()
		p.pointerState(Vec2{float32(mx), float32(my)}, readButton())
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		p.events = append(p.events, InputEvent{
			Kind:  EventScroll,
			Delta: Vec2{float32(dx), float32(dy)},
		})
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift) ||
		ebiten.IsKeyPressed(ebiten.KeyShiftLeft) ||
		ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	p.keyBuf = inpututil.AppendJustPressedKeys(p.keyBuf[:0])
	for _, k := range p.keyBuf {
		if key, ok := translateKey(k, shift); ok {
			p.events = append(p.events, InputEvent{Kind: EventKeyPressed, Key: key})
		}
	}
	return p.events
}

// resize emits a Resize event when the viewport size changed.
func (p *InputPoller) resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	p.events = append(p.events, InputEvent{Kind: EventResize, Width: width, Height: height})
}

// pointerState diffs the pointer against the previous frame and emits a move
// and/or a button transition.
func (p *InputPoller) pointerState(pos Vec2, pressed *MouseButton) {
	if !p.hasPos || pos != p.pos {
		p.pos, p.hasPos = pos, true
		p.events = append(p.events, InputEvent{Kind: EventPointerMoved, Pos: pos})
	}

	down := pressed != nil
	if down == p.pressed {
		return
	}
	if down {
		// Keep the button that started the interaction until release.
		p.button = *pressed
	}
	p.pressed = down
	p.events = append(p.events, InputEvent{
		Kind:    EventPointerButton,
		Button:  p.button,
		Pressed: down,
	})
}

// readButton returns the highest-priority pressed mouse button, or nil.
func readButton() *MouseButton {
	var b MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		b = MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		b = MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		b = MouseButtonMiddle
	default:
		return nil
	}
	return &b
}

// translateKey maps an Ebitengine key to a normalized Key. Keys the
// playground does not react to report false.
func translateKey(k ebiten.Key, shift bool) (Key, bool) {
	switch k {
	case ebiten.KeyArrowLeft:
		return KeyArrowLeft, true
	case ebiten.KeyArrowRight:
		return KeyArrowRight, true
	case ebiten.KeyArrowUp:
		return KeyArrowUp, true
	case ebiten.KeyArrowDown:
		return KeyArrowDown, true
	case ebiten.KeyF1:
		return KeyF1, true
	case ebiten.KeyF2:
		return KeyF2, true
	case ebiten.KeyF3:
		return KeyF3, true
	case ebiten.KeyHome:
		return KeyHome, true
	case ebiten.KeyEscape:
		return KeyEscape, true
	}
	name := k.String()
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
		return "", false
	}
	if shift {
		return Key(name), true
	}
	return Key(strings.ToLower(name)), true
}
