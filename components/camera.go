package components

import "github.com/phanxgames/grove"

// Camera takes over the Render pass for a target subtree. It records the
// output size from View actions, announces its view matrix to the other
// components of its entity with CameraChanged, then renders the target with
// that view applied and consumes the original pass.
//
// An empty Target renders the camera's own children. A target outside the
// camera's subtree still receives the regular pass from its own parent.
type Camera struct {
	grove.BaseComponent
	Target   string     `prop:"target"`
	Zoom     float64    `prop:"zoom"`
	Viewport grove.Vec2 `prop:"viewport"`

	rendering bool
}

// NewCamera returns a camera with zoom 1.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// Schema implements grove.Schemer.
func (c *Camera) Schema() grove.Schema {
	return grove.Schema{
		"target":   grove.StringNull,
		"zoom":     grove.Number,
		"viewport": grove.Vec2Type,
	}
}

// EncodeProperty omits an empty target and an unset viewport.
func (c *Camera) EncodeProperty(name string, value any) any {
	switch {
	case name == "target" && c.Target == "":
		return nil
	case name == "viewport" && c.Viewport == (grove.Vec2{}):
		return nil
	}
	return value
}

// ViewMatrix maps world coordinates to screen coordinates: the camera's
// position lands on the viewport center and the world is scaled by Zoom.
//
//	view = Translate(viewport/2) * Scale(zoom) * inverse(cameraWorld)
func (c *Camera) ViewMatrix() grove.Matrix {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	center := grove.Translate(c.Viewport.X/2, c.Viewport.Y/2)
	return center.Mul(grove.Scale(zoom, zoom)).Mul(c.Entity().InverseWorld())
}

// HandleAction records the viewport on View and renders the target on Render.
func (c *Camera) HandleAction(a grove.Action) grove.Outcome {
	switch a := a.(type) {
	case grove.View:
		c.Viewport = grove.Vec2{X: a.Width, Y: a.Height}
	case grove.Render:
		c.render(a)
		return grove.Consumed
	}
	return grove.Pass
}

func (c *Camera) render(a grove.Render) {
	// A target that contains the camera would re-enter this pass.
	if c.rendering {
		return
	}
	c.rendering = true
	defer func() { c.rendering = false }()

	e := c.Entity()
	view := c.ViewMatrix()
	e.PerformActionOnComponents(grove.CameraChanged{Camera: e, View: view})

	next := grove.Render{Queue: a.Queue, View: a.View.Mul(view)}
	if c.Target == "" {
		for _, child := range e.Children() {
			child.PerformAction(next)
		}
		return
	}
	target := e.FindEntity(c.Target)
	if target == nil {
		if g := e.Owner(); g != nil {
			g.Logger().Warn("camera target not found", "camera", e.Path(), "target", c.Target)
		}
		return
	}
	target.PerformAction(next)
}
