// Package delin is the contour delineation core of a multi-viewport DICOM
// radiotherapy viewer: coordinate transforms, stroke capture, cross-viewport
// ghost previews, and finalize/commit of contour edits.
//
// # Coordinate stack
//
// Three spaces are involved: screen pixels, image pixels, and patient-space
// millimeters. [ViewTransform] maps screen to image (zoom/pan), and
// [SlicePlane] maps image to patient space using the DICOM position,
// spacing, and orientation tags parsed by [ParsePlane]. [Viewport] composes
// the two. The composition round-trips within floating-point tolerance.
//
// # Editor and tools
//
// An [Editor] owns viewports and routes pointer and keyboard input to the
// active [Tool]:
//
//	editor := delin.NewEditor(delin.Config{
//		Sink: delin.ActionSinkFunc(func(a delin.Action) {
//			// persist, push to undo stack, trigger predictions ...
//		}),
//	})
//	vp := editor.AddViewport(delin.Rect{Width: 512, Height: 512})
//	editor.SelectStructure("ptv", delin.Color{R: 1, A: 1})
//	editor.SetTool(delin.NewBrushTool(editor))
//
// Tools hold no authoritative contour state. Every finalized gesture leaves
// through the editor's [ActionSink] as one [Action] with a closed set of
// kinds; the surrounding application owns persistence and undo.
//
// # Ghost strokes
//
// While a stroke is in progress, its shape is broadcast on the editor's
// [GhostFeed] so sibling viewports on a matching slice render a dashed,
// semi-transparent preview. Ghosts are a UX affordance only and never carry
// authoritative state.
//
// # Determinism
//
// Input can be injected ([Editor.InjectDrag] and friends, or a JSON
// [GestureScript]), the clock and frame scheduler are injectable
// ([ManualClock], [ManualScheduler]), and overlay output is plain command
// data, so the whole interaction pipeline runs headless under test. The
// ebiten-facing code is confined to input reading and [SubmitOverlay].
package delin
