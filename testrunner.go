package quadblur

import (
	"encoding/json"
	"fmt"
	"os"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	FromX  float32 `json:"fromX,omitempty"`
	FromY  float32 `json:"fromY,omitempty"`
	ToX    float32 `json:"toX,omitempty"`
	ToY    float32 `json:"toY,omitempty"`
	DY     float32 `json:"dy,omitempty"`
	Key    string  `json:"key,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// inputScript is the top-level JSON structure of a script.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"screenshot": true,
	"click":      true,
	"drag":       true,
	"hover":      true,
	"key":        true,
	"scroll":     true,
	"wait":       true,
}

// ScriptRunner replays scripted input and screenshots across frames, for
// unattended visual checks of the scenes.
//
//	{"steps": [
//	  {"action": "key", "key": "F2"},
//	  {"action": "drag", "fromX": 400, "fromY": 300, "toX": 200, "toY": 300, "frames": 10},
//	  {"action": "scroll", "dy": 2},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "zoomed"}
//	]}
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script. Unknown actions are rejected up front.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var script inputScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range script.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "key" && st.Key == "" {
			return nil, fmt.Errorf("parse input script: step %d: key action without key", i)
		}
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// LoadScriptFile reads and parses a script file.
func LoadScriptFile(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input script: %w", err)
	}
	return LoadScript(data)
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool { return r.done }

// Step advances the script by one frame. Called from Game.Update before the
// input poller runs.
func (r *ScriptRunner) Step(in *InputPoller, shots *ScreenshotQueue) {
	if r.done {
		return
	}
	// Let queued injections drain before the next step.
	if in.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		shots.Queue(st.Label)
	case "click":
		in.InjectClick(st.X, st.Y)
	case "hover":
		in.InjectHover(st.X, st.Y)
	case "drag":
		in.InjectDrag(Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}, st.Frames)
	case "key":
		in.InjectKey(Key(st.Key))
	case "scroll":
		in.InjectScroll(0, st.DY)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && in.Pending() == 0 {
		r.done = true
	}
}
