// Package grove is an entity-component scene graph.
//
// A [SceneGraph] owns a tree of [Entity] values. Each entity has a local
// transform, an ordered list of children and a set of components keyed by
// type name. Every other subsystem (rendering, physics, input, animation)
// is expressed as components reacting to dispatched actions and reading the
// propagated world transforms.
//
// # Frame flow
//
// The frame loop is owned by the caller. Each frame recomputes transforms
// top-down, then dispatches a sequence of actions:
//
//	g := grove.New()
//	g.UpdateTransforms()
//	g.PerformAction(grove.Update{DT: dt})
//	q := grove.NewRenderQueue(0)
//	g.PerformAction(grove.Render{Queue: q, View: grove.Identity})
//
// A component handling an action may return [Consumed] to keep it from
// reaching the entity's children; cameras and ordering components use this
// to take over delivery for their subtree.
//
// # Components
//
// Components embed [BaseComponent] and opt into capabilities by implementing
// [ActionHandler], [ActionRewriter], [Attacher], [Detacher], [Schemer] and
// friends. Factories registered with [SceneGraph.RegisterComponent] let
// [SceneGraph.BuildEntity] construct whole subtrees from an [EntityData]
// description:
//
//	root, err := g.Instantiate(&grove.EntityData{
//		Name:      "hero",
//		Transform: &grove.TransformData{Position: &grove.Vec2{X: 10, Y: 20}},
//	}, nil)
//
// # Services
//
// Subsystems find each other through an explicit [Services] registry handed
// to the graph with [WithServices]. The graph itself is a [Service].
//
// The core performs no I/O. Loading descriptions lives in grove/prefab,
// drawing in grove/render and physics in grove/physics.
package grove
