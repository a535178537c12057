package ecs

import (
	"slices"

	"github.com/phanxgames/grove"
)

// RelayType is the component type name Relay registers under.
const RelayType = "Relay"

// Relay forwards the actions its entity receives to the Bridge found in the
// owner's services. An empty Actions list forwards everything.
type Relay struct {
	grove.BaseComponent
	Actions []string `prop:"actions"`

	bridge *Bridge
}

// Schema implements grove.Schemer.
func (r *Relay) Schema() grove.Schema {
	return grove.Schema{"actions": grove.ArrayOf(grove.String)}
}

// OnAttach resolves the bridge and mirrors the entity.
func (r *Relay) OnAttach() {
	b, err := grove.Lookup[*Bridge](r.Services(), ServiceName)
	if err != nil {
		if g := r.Entity().Owner(); g != nil {
			g.Logger().Warn("relay without bridge", "entity", r.Entity().Name, "error", err)
		}
		return
	}
	r.bridge = b
	b.Mirror(r.Entity())
}

// OnDetach drops the mirrored entity.
func (r *Relay) OnDetach() {
	if r.bridge != nil {
		r.bridge.Unmirror(r.Entity())
		r.bridge = nil
	}
}

// HandleAction publishes matching actions and never consumes them.
func (r *Relay) HandleAction(a grove.Action) grove.Outcome {
	if r.bridge == nil {
		return grove.Pass
	}
	if len(r.Actions) == 0 || slices.Contains(r.Actions, a.Name()) {
		r.bridge.Publish(r.Entity(), a)
	}
	return grove.Pass
}

// Register adds the Relay factory to g.
func Register(g *grove.SceneGraph) error {
	return g.RegisterComponent(RelayType, func() grove.Component { return &Relay{} })
}
