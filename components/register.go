package components

import "github.com/phanxgames/grove"

// Type names used by RegisterAll.
const (
	SpriteType = "Sprite"
	CameraType = "Camera"
	SorterType = "Sorter"
	LayersType = "Layers"
	TweenType  = "Tween"
	BodyType   = "Body"
	ScriptType = "Script"
	ProbeType  = "Probe"
)

var factories = []struct {
	name    string
	factory grove.ComponentFactory
}{
	{SpriteType, func() grove.Component { return NewSprite() }},
	{CameraType, func() grove.Component { return NewCamera() }},
	{SorterType, func() grove.Component { return &Sorter{} }},
	{LayersType, func() grove.Component { return &Layers{} }},
	{TweenType, func() grove.Component { return NewTween() }},
	{BodyType, func() grove.Component { return NewBody() }},
	{ScriptType, func() grove.Component { return &Script{} }},
	{ProbeType, func() grove.Component { return NewProbe() }},
}

// RegisterAll registers every component variant with g. It stops at the
// first registration error.
func RegisterAll(g *grove.SceneGraph) error {
	for _, f := range factories {
		if err := g.RegisterComponent(f.name, f.factory); err != nil {
			return err
		}
	}
	return nil
}
