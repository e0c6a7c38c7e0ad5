package ecs

import (
	"github.com/axialview/delin"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ActionEventType is the Donburi event type for finalized contour edits.
// Subscribe to this in your ECS systems to receive brush, pen, and
// prediction actions.
var ActionEventType = events.NewEventType[delin.Action]()

// GhostEventType is the Donburi event type for ghost-stroke notifications.
var GhostEventType = events.NewEventType[delin.GhostEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an ActionSink backed by a Donburi world. Actions
// are published to ActionEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) delin.ActionSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) HandleAction(a delin.Action) {
	ActionEventType.Publish(s.world, a)
}

// PublishGhosts forwards all ghost feed notifications into the world as
// GhostEventType events. Returns the feed handle for unsubscribing.
func PublishGhosts(world donburi.World, feed *delin.GhostFeed) delin.GhostHandle {
	return feed.OnGhost(func(ev delin.GhostEvent) {
		GhostEventType.Publish(world, ev)
	})
}
