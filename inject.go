package quadblur

// syntheticPointerEvent represents a single injected pointer sample.
// Coordinates are viewport pixels, the same space real cursor input uses.
type syntheticPointerEvent struct {
	pos     Vec2
	pressed bool
}

// InjectPress queues a left-button press at the given viewport position.
// It is consumed on the next Poll.
func (p *InputPoller) InjectPress(x, y float32) {
	p.injected = append(p.injected, syntheticPointerEvent{pos: Vec2{x, y}, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (p *InputPoller) InjectMove(x, y float32) {
	p.injected = append(p.injected, syntheticPointerEvent{pos: Vec2{x, y}, pressed: true})
}

// InjectRelease queues a pointer release at the given viewport position.
func (p *InputPoller) InjectRelease(x, y float32) {
	p.injected = append(p.injected, syntheticPointerEvent{pos: Vec2{x, y}})
}

// InjectHover queues a pointer move with no button held.
func (p *InputPoller) InjectHover(x, y float32) {
	p.InjectRelease(x, y)
}

// InjectClick queues a press followed by a release at the same position.
// Consumes two frames.
func (p *InputPoller) InjectClick(x, y float32) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectDrag queues a press at from, frames-2 interpolated moves, and a
// release at to. The sequence consumes frames frames, minimum 2.
func (p *InputPoller) InjectDrag(from, to Vec2, frames int) {
	if frames < 2 {
		frames = 2
	}
	p.InjectPress(from.X, from.Y)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		at := from.Add(to.Sub(from).Scale(t))
		p.InjectMove(at.X, at.Y)
	}
	p.InjectRelease(to.X, to.Y)
}

// InjectKey queues a key press delivered on the next Poll.
func (p *InputPoller) InjectKey(key Key) {
	p.pending = append(p.pending, InputEvent{Kind: EventKeyPressed, Key: key})
}

// InjectScroll queues a wheel delta in lines delivered on the next Poll.
func (p *InputPoller) InjectScroll(dx, dy float32) {
	p.pending = append(p.pending, InputEvent{Kind: EventScroll, Delta: Vec2{dx, dy}})
}

// Pending returns the number of injected events not yet delivered.
func (p *InputPoller) Pending() int {
	return len(p.injected) + len(p.pending)
}

// processInjectedInput flushes queued key and scroll events and pops one
// pointer sample. It reports whether a pointer sample was consumed, in which
// case the real cursor is ignored for this frame.
func (p *InputPoller) processInjectedInput() bool {
	if len(p.pending) > 0 {
		p.events = append(p.events, p.pending...)
		p.pending = p.pending[:0]
	}
	if len(p.injected) == 0 {
		return false
	}
	evt := p.injected[0]
	copy(p.injected, p.injected[1:])
	p.injected = p.injected[:len(p.injected)-1]

	var button *MouseButton
	if evt.pressed {
		b := MouseButtonLeft
		button = &b
	}
	p.pointerState(evt.pos, button)
	return true
}
