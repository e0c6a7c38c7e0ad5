package delin

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Key    string  `json:"key,omitempty"`
	Mods   string  `json:"mods,omitempty"` // e.g. "ctrl", "ctrl+shift"
	Tool   string  `json:"tool,omitempty"`
	Slice  int     `json:"slice,omitempty"`
}

// gestureScriptFile is the top-level JSON structure.
type gestureScriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// GestureScript sequences injected input events across frames for scripted
// demos and automated interaction tests. Attach to an Editor via SetScript.
type GestureScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadGestureScript parses a JSON gesture script.
func LoadGestureScript(jsonData []byte) (*GestureScript, error) {
	var file gestureScriptFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	return &GestureScript{steps: file.Steps}, nil
}

// SetScript attaches a gesture script. The script's step method runs from
// Update before input processing each frame.
func (e *Editor) SetScript(script *GestureScript) {
	e.script = script
}

// Done reports whether all steps have been executed.
func (r *GestureScript) Done() bool {
	return r.done
}

// step advances the script by one frame.
func (r *GestureScript) step(e *Editor) {
	if r.done {
		return
	}
	// Let pending injections drain before advancing.
	if len(e.injectQueue) > 0 {
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
	case "click":
		e.InjectClick(st.X, st.Y)
	case "rightclick":
		e.InjectRightClick(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "key":
		e.InjectKey(parseScriptKey(st.Key), parseScriptMods(st.Mods))
	case "tool":
		e.SetTool(toolForName(e, st.Tool))
	case "slice":
		if vp := e.focusedViewport(); vp != nil {
			vp.SetSlice(st.Slice)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}

func parseScriptKey(name string) Key {
	switch name {
	case "c":
		return KeyC
	case "x":
		return KeyX
	case "v":
		return KeyV
	case "delete":
		return KeyDelete
	case "escape":
		return KeyEscape
	default:
		return KeyNone
	}
}

func parseScriptMods(s string) KeyModifiers {
	var mods KeyModifiers
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j] != '+' {
			j++
		}
		switch s[i:j] {
		case "shift":
			mods |= ModShift
		case "ctrl":
			mods |= ModCtrl
		case "alt":
			mods |= ModAlt
		case "meta":
			mods |= ModMeta
		}
		i = j + 1
	}
	return mods
}

func toolForName(e *Editor, name string) Tool {
	switch name {
	case "brush":
		return NewBrushTool(e)
	case "smart_brush":
		return NewSmartBrushTool(e)
	case "erase":
		return NewEraseTool(e)
	case "pen":
		return NewPenTool(e)
	default:
		return nil
	}
}
