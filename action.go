package delin

import (
	"encoding/json"
	"fmt"
)

// ActionKind discriminates contour edit actions. The set is closed;
// DecodeAction rejects anything else.
type ActionKind string

const (
	ActionBrushStroke      ActionKind = "brush_stroke"
	ActionEraseStroke      ActionKind = "erase_stroke"
	ActionSmartBrushStroke ActionKind = "smart_brush_stroke"
	ActionAddContour       ActionKind = "add_contour"
	ActionAddSegment       ActionKind = "add_segment"
	ActionRemoveSegment    ActionKind = "remove_segment"
	ActionClearAllContours ActionKind = "clear_all_contours"
	ActionAcceptPredictions ActionKind = "accept_predictions"
	ActionRejectPredictions ActionKind = "reject_predictions"
	ActionTriggerPrediction ActionKind = "trigger_prediction"
	ActionPreviewGrow       ActionKind = "preview_grow_structure"
	ActionApplyGrow         ActionKind = "apply_grow_structure"
)

var actionKinds = map[ActionKind]bool{
	ActionBrushStroke:       true,
	ActionEraseStroke:       true,
	ActionSmartBrushStroke:  true,
	ActionAddContour:        true,
	ActionAddSegment:        true,
	ActionRemoveSegment:     true,
	ActionClearAllContours:  true,
	ActionAcceptPredictions: true,
	ActionRejectPredictions: true,
	ActionTriggerPrediction: true,
	ActionPreviewGrow:       true,
	ActionApplyGrow:         true,
}

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool { return actionKinds[k] }

// isStroke reports whether k carries gesture point data.
func (k ActionKind) isStroke() bool {
	switch k {
	case ActionBrushStroke, ActionEraseStroke, ActionSmartBrushStroke,
		ActionAddContour, ActionAddSegment:
		return true
	}
	return false
}

// Action is one contour edit request delivered to the sink. Which fields
// are populated depends on Kind; Validate enforces the per-kind minimum.
type Action struct {
	Kind        ActionKind `json:"kind"`
	StructureID string     `json:"structureId,omitempty"`
	SliceIndex  int        `json:"sliceIndex"`
	SliceZ      float64    `json:"sliceZ"`
	// Points are patient-space mm, populated for stroke/contour kinds.
	Points []Vec3 `json:"points,omitempty"`
	Closed bool   `json:"closed,omitempty"`
	// Mode is "add" or "subtract" on brush-family kinds.
	Mode Mode `json:"mode"`
	// BrushRadius is the screen-pixel radius at gesture end (brush family).
	BrushRadius float64 `json:"brushRadius,omitempty"`
	// SegmentID identifies the segment for remove_segment.
	SegmentID string `json:"segmentId,omitempty"`
	// MarginMM is the grow/shrink margin for the grow kinds. Negative
	// shrinks.
	MarginMM float64 `json:"marginMm,omitempty"`
}

// Validate checks the per-kind required fields.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.StructureID == "" {
		return fmt.Errorf("%s: missing structure id", a.Kind)
	}
	if a.Kind.isStroke() && len(a.Points) == 0 {
		return fmt.Errorf("%s: no points", a.Kind)
	}
	return nil
}

// EncodeAction serializes an action to JSON with a lowercase kind
// discriminator.
func EncodeAction(a Action) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

// DecodeAction parses a JSON action, rejecting unknown kinds and payloads
// missing their kind's required fields.
func DecodeAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	return a, nil
}

// ActionSink receives finalized contour edits. It is the sole boundary
// between the tools and the rest of the application: persistence, undo, and
// prediction triggering all live behind it. Delivery is synchronous on the
// UI goroutine.
type ActionSink interface {
	HandleAction(Action)
}

// ActionSinkFunc adapts a function to the ActionSink interface.
type ActionSinkFunc func(Action)

// HandleAction calls f(a).
func (f ActionSinkFunc) HandleAction(a Action) { f(a) }
