package components

import "github.com/phanxgames/grove"

// Layers splits the Render pass into one RenderLayer pass per listed layer,
// in list order, over the entity's children. The original pass is consumed.
type Layers struct {
	grove.BaseComponent
	Layers []int `prop:"layers"`
}

// Schema implements grove.Schemer.
func (l *Layers) Schema() grove.Schema {
	return grove.Schema{"layers": grove.ArrayOf(grove.Integer)}
}

// HandleAction replays a Render as one RenderLayer pass per layer.
func (l *Layers) HandleAction(a grove.Action) grove.Outcome {
	r, ok := a.(grove.Render)
	if !ok {
		return grove.Pass
	}
	children := l.Entity().Children()
	for _, layer := range l.Layers {
		pass := grove.RenderLayer{Layer: layer, Queue: r.Queue, View: r.View}
		for _, child := range children {
			child.PerformAction(pass)
		}
	}
	return grove.Consumed
}
