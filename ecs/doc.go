// Package ecs provides ECS adapters for delin's contour edit pipeline.
//
// The primary adapter is [NewDonburiSink], which publishes finalized contour
// edit actions into a [Donburi] world as typed events. Subscribe to
// [ActionEventType] in your ECS systems to receive them. [PublishGhosts]
// additionally forwards ghost-stroke begin/update/end notifications as
// [GhostEventType] events.
//
// Usage:
//
//	editor := delin.NewEditor(delin.Config{Sink: ecs.NewDonburiSink(world)})
//	ecs.PublishGhosts(world, editor.Ghosts())
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
