package delin

import "testing"

// --- parsing ---

func TestLoadGestureScript(t *testing.T) {
	script, err := LoadGestureScript([]byte(`{
		"steps": [
			{"action": "tool", "tool": "brush"},
			{"action": "drag", "fromX": 20, "fromY": 50, "toX": 120, "toY": 50, "frames": 5},
			{"action": "wait", "frames": 2}
		]
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if script.Done() {
		t.Error("fresh script is not done")
	}
}

func TestLoadGestureScriptErrors(t *testing.T) {
	if _, err := LoadGestureScript([]byte(`{`)); err == nil {
		t.Error("malformed JSON must error")
	}
	if _, err := LoadGestureScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("empty script must error")
	}
}

func TestParseScriptKey(t *testing.T) {
	cases := map[string]Key{
		"c": KeyC, "x": KeyX, "v": KeyV,
		"delete": KeyDelete, "escape": KeyEscape, "f12": KeyNone,
	}
	for name, want := range cases {
		if got := parseScriptKey(name); got != want {
			t.Errorf("parseScriptKey(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseScriptMods(t *testing.T) {
	if got := parseScriptMods("ctrl"); got != ModCtrl {
		t.Errorf("ctrl = %v", got)
	}
	if got := parseScriptMods("ctrl+shift"); got != ModCtrl|ModShift {
		t.Errorf("ctrl+shift = %v", got)
	}
	if got := parseScriptMods("alt+meta"); got != ModAlt|ModMeta {
		t.Errorf("alt+meta = %v", got)
	}
	if got := parseScriptMods(""); got != 0 {
		t.Errorf("empty = %v", got)
	}
	if got := parseScriptMods("bogus"); got != 0 {
		t.Errorf("bogus = %v", got)
	}
}

func TestToolForName(t *testing.T) {
	ed := NewEditor(Config{})
	cases := map[string]ToolType{
		"brush": ToolBrush, "smart_brush": ToolSmartBrush,
		"erase": ToolErase, "pen": ToolPen,
	}
	for name, want := range cases {
		tool := toolForName(ed, name)
		if tool == nil || tool.Type() != want {
			t.Errorf("toolForName(%q) = %v", name, tool)
		}
	}
	if toolForName(ed, "laser") != nil {
		t.Error("unknown tool must be nil")
	}
}

// --- execution ---

func runScript(t *testing.T, ed *Editor, script *GestureScript) {
	t.Helper()
	ed.SetScript(script)
	for i := 0; i < 200 && !script.Done(); i++ {
		ed.Update()
	}
	if !script.Done() {
		t.Fatal("script did not finish within 200 frames")
	}
}

func TestScriptDrivesBrushStroke(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	script, err := LoadGestureScript([]byte(`{
		"steps": [
			{"action": "tool", "tool": "brush"},
			{"action": "drag", "fromX": 20, "fromY": 50, "toX": 150, "toY": 50, "frames": 6}
		]
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	runScript(t, ed, script)

	if len(rec.actions) != 1 || rec.actions[0].Kind != ActionBrushStroke {
		t.Fatalf("actions = %v", rec.kinds())
	}
}

func TestScriptPenWithKeysAndSliceStep(t *testing.T) {
	ed, vp, rec, _ := newTestEditor(t)
	vp.SetSeries([]SlicePlane{IdentityPlane(), IdentityPlane()}, nil, 1)
	script, err := LoadGestureScript([]byte(`{
		"steps": [
			{"action": "tool", "tool": "pen"},
			{"action": "slice", "slice": 1},
			{"action": "click", "x": 100, "y": 100},
			{"action": "click", "x": 150, "y": 100},
			{"action": "click", "x": 150, "y": 150},
			{"action": "rightclick", "x": 120, "y": 120},
			{"action": "key", "key": "delete"},
			{"action": "wait", "frames": 2}
		]
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	runScript(t, ed, script)

	kinds := rec.kinds()
	if len(kinds) != 2 || kinds[0] != ActionAddContour || kinds[1] != ActionClearAllContours {
		t.Fatalf("kinds = %v", kinds)
	}
	if rec.actions[0].SliceIndex != 1 {
		t.Errorf("sliceIndex = %d, want 1 after the slice step", rec.actions[0].SliceIndex)
	}
}

func TestScriptWaitDelaysSteps(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	script, err := LoadGestureScript([]byte(`{
		"steps": [
			{"action": "wait", "frames": 5},
			{"action": "tool", "tool": "pen"}
		]
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ed.SetScript(script)
	runUpdates(ed, 4)
	if ed.Tool() != nil {
		t.Error("tool set before the wait elapsed")
	}
	runUpdates(ed, 3)
	if ed.Tool() == nil || ed.Tool().Type() != ToolPen {
		t.Error("tool not set after the wait")
	}
}
