package components

import "github.com/phanxgames/grove"

// Sprite emits one render command per Render pass, or per RenderLayer pass
// whose layer matches its own.
type Sprite struct {
	grove.BaseComponent
	Texture string      `prop:"texture"`
	Color   grove.Color `prop:"color"`
	Layer   int         `prop:"layer"`
	Order   int         `prop:"order"`
	Visible bool        `prop:"visible"`
}

// NewSprite returns a visible, untinted sprite.
func NewSprite() *Sprite {
	return &Sprite{Color: grove.ColorWhite, Visible: true}
}

// Schema implements grove.Schemer.
func (s *Sprite) Schema() grove.Schema {
	return grove.Schema{
		"texture": grove.Asset("image", "*.png"),
		"color":   grove.RGBA,
		"layer":   grove.Integer,
		"order":   grove.Integer,
		"visible": grove.Boolean,
	}
}

// EncodeProperty omits an empty texture.
func (s *Sprite) EncodeProperty(name string, value any) any {
	if name == "texture" && s.Texture == "" {
		return nil
	}
	return value
}

// HandleAction implements grove.ActionHandler.
func (s *Sprite) HandleAction(a grove.Action) grove.Outcome {
	if !s.Visible {
		return grove.Pass
	}
	switch a := a.(type) {
	case grove.Render:
		s.push(a.Queue, a.View)
	case grove.RenderLayer:
		if a.Layer == s.Layer {
			s.push(a.Queue, a.View)
		}
	}
	return grove.Pass
}

func (s *Sprite) push(q *grove.RenderQueue, view grove.Matrix) {
	if q == nil {
		return
	}
	e := s.Entity()
	q.Push(grove.RenderCommand{
		Entity:    e,
		Transform: view.Mul(e.World()),
		Texture:   s.Texture,
		Color:     s.Color,
		Layer:     s.Layer,
		Order:     s.Order,
	})
}
