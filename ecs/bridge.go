package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/grove"
)

// ServiceName is the name a Bridge registers under.
const ServiceName = "ecs"

// ActionEvent is published for every action a Relay forwards.
type ActionEvent struct {
	// EntityID is the scene graph id of the entity that received the action.
	EntityID uint32
	// Entity is the mirrored ECS entity.
	Entity donburi.Entity
	Action grove.Action
}

// ActionEventType is the Donburi event type for relayed scene graph actions.
var ActionEventType = events.NewEventType[ActionEvent]()

// SceneEntityData links an ECS entity back to its scene graph entity.
type SceneEntityData struct {
	Entity *grove.Entity
}

// SceneEntity is the Donburi component carried by every mirrored entity.
var SceneEntity = donburi.NewComponentType[SceneEntityData]()

// Bridge mirrors scene graph entities into a Donburi world.
type Bridge struct {
	world    donburi.World
	mirrored map[*grove.Entity]donburi.Entity
}

// NewBridge creates a bridge publishing into world.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{
		world:    world,
		mirrored: make(map[*grove.Entity]donburi.Entity),
	}
}

// Name implements grove.Service.
func (b *Bridge) Name() string { return ServiceName }

// World returns the wrapped Donburi world.
func (b *Bridge) World() donburi.World { return b.world }

// Mirror returns the ECS entity for e, creating it on first use.
func (b *Bridge) Mirror(e *grove.Entity) donburi.Entity {
	if de, ok := b.mirrored[e]; ok {
		return de
	}
	de := b.world.Create(SceneEntity)
	SceneEntity.Set(b.world.Entry(de), &SceneEntityData{Entity: e})
	b.mirrored[e] = de
	return de
}

// Unmirror removes the ECS entity for e. It reports whether one existed.
func (b *Bridge) Unmirror(e *grove.Entity) bool {
	de, ok := b.mirrored[e]
	if !ok {
		return false
	}
	if b.world.Valid(de) {
		b.world.Remove(de)
	}
	delete(b.mirrored, e)
	return true
}

// Mirrored returns the number of mirrored entities.
func (b *Bridge) Mirrored() int { return len(b.mirrored) }

// Lookup returns the scene graph entity behind an ECS entity, or nil.
func (b *Bridge) Lookup(de donburi.Entity) *grove.Entity {
	if !b.world.Valid(de) {
		return nil
	}
	entry := b.world.Entry(de)
	if !entry.HasComponent(SceneEntity) {
		return nil
	}
	return SceneEntity.Get(entry).Entity
}

// Publish queues an ActionEvent for e. Events are delivered by Flush.
func (b *Bridge) Publish(e *grove.Entity, a grove.Action) {
	ActionEventType.Publish(b.world, ActionEvent{
		EntityID: e.ID,
		Entity:   b.Mirror(e),
		Action:   a,
	})
}

// Flush delivers queued action events to subscribers.
func (b *Bridge) Flush() {
	ActionEventType.ProcessEvents(b.world)
}

// Close removes every mirrored entity from the world.
func (b *Bridge) Close() error {
	for e := range b.mirrored {
		b.Unmirror(e)
	}
	return nil
}
