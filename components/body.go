package components

import (
	"github.com/jakecoffman/cp"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/physics"
)

// Body binds its entity to the physics.Space registered in the owner's
// services. The body is created when the component attaches to a scene
// graph and removed when it detaches. Without a physics service the
// component stays inert.
type Body struct {
	grove.BaseComponent
	Mass          float64 `prop:"mass"`
	Width         float64 `prop:"width"`
	Height        float64 `prop:"height"`
	Static        bool    `prop:"static"`
	FixedRotation bool    `prop:"fixed_rotation"`
	Friction      float64 `prop:"friction"`

	space *physics.Space
}

// NewBody returns a unit-mass, unit-size dynamic body with a friction of 0.8.
func NewBody() *Body {
	return &Body{Mass: 1, Width: 1, Height: 1, Friction: 0.8}
}

// Schema implements grove.Schemer.
func (b *Body) Schema() grove.Schema {
	return grove.Schema{
		"mass":           grove.Number,
		"width":          grove.Number,
		"height":         grove.Number,
		"static":         grove.Boolean,
		"fixed_rotation": grove.Boolean,
		"friction":       grove.Number,
	}
}

// OnAttach adds a box body to the physics service, if one is registered.
func (b *Body) OnAttach() {
	e := b.Entity()
	space, err := grove.Lookup[*physics.Space](b.Services(), physics.ServiceName)
	if err != nil {
		e.Owner().Logger().Warn("body without physics space", "entity", e.Path(), "error", err)
		return
	}
	_, err = space.Add(e, physics.BodyDef{
		Mass:          b.Mass,
		Width:         b.Width,
		Height:        b.Height,
		Static:        b.Static,
		Friction:      b.Friction,
		FixedRotation: b.FixedRotation,
	})
	if err != nil {
		e.Owner().Logger().Warn("body not added", "entity", e.Path(), "error", err)
		return
	}
	b.space = space
}

// OnDetach removes the body from its space.
func (b *Body) OnDetach() {
	if b.space != nil {
		b.space.Remove(b.Entity())
		b.space = nil
	}
}

// CP returns the Chipmunk body while attached, or nil.
func (b *Body) CP() *cp.Body {
	if b.space == nil {
		return nil
	}
	return b.space.Body(b.Entity())
}
