// Package components provides the stock grove component variants: drawing,
// cameras, ordering, layering, tweening, physics bodies, scripting and a
// probe for tests and diagnostics.
//
// RegisterAll makes every variant available to a scene graph under its
// type name so subtree descriptions can refer to them:
//
//	g := grove.New()
//	if err := components.RegisterAll(g); err != nil {
//		return err
//	}
//	g.Instantiate(&grove.EntityData{
//		Name: "hero",
//		Components: grove.ComponentList{
//			{Type: components.SpriteType, Properties: map[string]any{"texture": "hero.png"}},
//		},
//	}, nil)
package components
