package ecs

import (
	"testing"

	"github.com/axialview/delin"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_HandleAction(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []delin.Action
	ActionEventType.Subscribe(world, func(w donburi.World, a delin.Action) {
		received = append(received, a)
	})

	sink.HandleAction(delin.Action{
		Kind:        delin.ActionBrushStroke,
		StructureID: "ptv",
		SliceIndex:  4,
		SliceZ:      12.5,
		Points:      []delin.Vec3{{X: 1, Y: 2, Z: 12.5}},
	})
	sink.HandleAction(delin.Action{
		Kind:        delin.ActionClearAllContours,
		StructureID: "ptv",
	})

	// Events are queued until processed.
	ActionEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(received))
	}
	a0 := received[0]
	if a0.Kind != delin.ActionBrushStroke || a0.StructureID != "ptv" {
		t.Errorf("action 0: %+v", a0)
	}
	if a0.SliceIndex != 4 || len(a0.Points) != 1 {
		t.Errorf("action 0 payload: %+v", a0)
	}
	if received[1].Kind != delin.ActionClearAllContours {
		t.Errorf("action 1: %+v", received[1])
	}
}

func TestDonburiSink_ImplementsActionSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink delin.ActionSink = NewDonburiSink(world)
	_ = sink // compile-time interface check
}

func TestPublishGhosts(t *testing.T) {
	world := donburi.NewWorld()
	feed := delin.NewGhostFeed(nil)
	handle := PublishGhosts(world, feed)

	var kinds []delin.GhostEventKind
	GhostEventType.Subscribe(world, func(w donburi.World, ev delin.GhostEvent) {
		kinds = append(kinds, ev.Kind)
	})

	feed.Begin(delin.GhostStroke{SourceViewport: "vp-a", SliceZ: 3})
	feed.Update(delin.GhostStroke{SourceViewport: "vp-a", SliceZ: 3})
	feed.End("vp-a")
	events.ProcessAllEvents(world)

	want := []delin.GhostEventKind{delin.GhostBegin, delin.GhostUpdate, delin.GhostEnd}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	handle.Remove()
	feed.Begin(delin.GhostStroke{SourceViewport: "vp-b"})
	events.ProcessAllEvents(world)
	if len(kinds) != len(want) {
		t.Errorf("expected no events after Remove, got %d extra", len(kinds)-len(want))
	}
}
