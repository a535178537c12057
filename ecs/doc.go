// Package ecs bridges grove scene graphs into a Donburi world.
//
// A [Bridge] is a grove.Service wrapping a donburi.World. Entities carrying
// a [Relay] component are mirrored into the world as ECS entities with a
// [SceneEntity] component, and the actions they receive are published as
// typed [ActionEventType] events. Subscribe to ActionEventType in your ECS
// systems and call [Bridge.Flush] once per frame to deliver them.
//
// Usage:
//
//	bridge := ecs.NewBridge(donburi.NewWorld())
//	services.Register(bridge)
//	g := grove.New(grove.WithServices(services))
//	ecs.Register(g)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
