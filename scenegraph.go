package grove

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/phanxgames/grove/internal/logging"
)

// ServiceName is the name a SceneGraph registers under in a Services registry.
const ServiceName = "scenegraph"

// ComponentFactory creates a fresh, detached component.
type ComponentFactory func() Component

// SceneGraph owns the entity tree: a single root, a table of component
// factories and the tree-wide transform and dispatch entry points.
type SceneGraph struct {
	root      *Entity
	factories map[string]ComponentFactory
	entities  map[uint32]*Entity
	services  *Services
	logger    *slog.Logger

	lifecycleEvents bool
	debug           bool
}

// Option configures a SceneGraph.
type Option func(*SceneGraph)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *SceneGraph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithServices gives components access to a service registry through their
// owner. The scene graph does not register itself; see Services.Register.
func WithServices(s *Services) Option {
	return func(g *SceneGraph) {
		g.services = s
	}
}

// WithLifecycleEvents controls whether attach and detach callbacks fire for
// entities owned by this graph. Enabled by default.
func WithLifecycleEvents(enabled bool) Option {
	return func(g *SceneGraph) {
		g.lifecycleEvents = enabled
	}
}

// WithDebug enables structural warnings (tree depth, child count) on every
// reparent under this graph.
func WithDebug(enabled bool) Option {
	return func(g *SceneGraph) {
		g.debug = enabled
	}
}

// New creates a scene graph with an empty root entity named "root".
func New(opts ...Option) *SceneGraph {
	g := &SceneGraph{
		factories:       make(map[string]ComponentFactory),
		entities:        make(map[uint32]*Entity),
		logger:          logging.NewNop(),
		lifecycleEvents: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.SetRoot(NewEntity("root"))
	return g
}

// Name implements Service.
func (g *SceneGraph) Name() string { return ServiceName }

// Logger returns the graph's logger.
func (g *SceneGraph) Logger() *slog.Logger { return g.logger }

// Services returns the injected service registry, or nil.
func (g *SceneGraph) Services() *Services { return g.services }

// LifecycleEvents reports whether attach/detach callbacks fire under this graph.
func (g *SceneGraph) LifecycleEvents() bool { return g.lifecycleEvents }

// Root returns the root entity.
func (g *SceneGraph) Root() *Entity { return g.root }

// SetRoot replaces the root. The previous root's subtree is detached (firing
// detach callbacks) and disposed first; then root is unlinked from any parent,
// or released by the graph it was the root of, and adopted, firing attach
// callbacks on its subtree.
func (g *SceneGraph) SetRoot(root *Entity) {
	if root == g.root {
		return
	}
	if root != nil {
		root.Reparent(nil, -1)
		if prev := root.owner; prev != nil && prev != g && prev.root == root {
			if prev.lifecycleEvents {
				root.notifyDetach()
			}
			root.propagateOwner(nil)
			prev.root = nil
			prev.logger.Debug("root moved to another graph", "root", root.Name)
		}
	}
	if old := g.root; old != nil && old != root {
		if g.lifecycleEvents {
			old.notifyDetach()
		}
		old.propagateOwner(nil)
		old.Dispose()
		g.logger.Debug("root replaced", "old", old.Name)
	}
	g.root = root
	if root == nil {
		return
	}
	root.dirty = true
	root.propagateOwner(g)
	if g.lifecycleEvents {
		root.notifyAttach()
	}
}

// --- Component factories ---

// RegisterComponent adds a factory under typeName.
func (g *SceneGraph) RegisterComponent(typeName string, factory ComponentFactory) error {
	if typeName == "" {
		return fmt.Errorf("register: %w", ErrEmptyComponentType)
	}
	if factory == nil {
		return fmt.Errorf("register %q: nil factory", typeName)
	}
	if _, exists := g.factories[typeName]; exists {
		return fmt.Errorf("register %q: %w", typeName, ErrDuplicateComponentType)
	}
	g.factories[typeName] = factory
	g.logger.Debug("component registered", "type", typeName)
	return nil
}

// UnregisterComponent removes the factory registered under typeName.
func (g *SceneGraph) UnregisterComponent(typeName string) error {
	if _, exists := g.factories[typeName]; !exists {
		return fmt.Errorf("unregister %q: %w", typeName, ErrUnknownComponentType)
	}
	delete(g.factories, typeName)
	g.logger.Debug("component unregistered", "type", typeName)
	return nil
}

// ComponentTypes returns the registered type names in sorted order.
func (g *SceneGraph) ComponentTypes() []string {
	names := make([]string, 0, len(g.factories))
	for name := range g.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateComponent instantiates typeName and applies props one property at a
// time through the component's setup hook.
func (g *SceneGraph) CreateComponent(typeName string, props map[string]any) (Component, error) {
	factory, ok := g.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("create %q: %w", typeName, ErrUnknownComponentType)
	}
	c := factory()
	if c == nil {
		return nil, fmt.Errorf("create %q: %w", typeName, ErrNilComponent)
	}
	if err := DeserializeComponent(c, props); err != nil {
		return nil, fmt.Errorf("create %q: %w", typeName, err)
	}
	return c, nil
}

// BuildEntity constructs a complete subtree from d without linking it under
// any parent. Identity and transform are applied first, then components are
// created and attached, then children are built recursively. Since the
// subtree has no owner yet, no lifecycle callbacks fire until the caller
// links it.
func (g *SceneGraph) BuildEntity(d *EntityData) (*Entity, error) {
	e := NewEntity("")
	if d == nil {
		return e, nil
	}
	if err := e.applyData(d); err != nil {
		return nil, err
	}
	for _, ce := range d.Components {
		c, err := g.CreateComponent(ce.Type, ce.Properties)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", e.Name, err)
		}
		if err := e.AttachComponent(ce.Type, c); err != nil {
			return nil, err
		}
	}
	for _, cd := range d.Children {
		child, err := g.BuildEntity(cd)
		if err != nil {
			return nil, err
		}
		child.Reparent(e, -1)
	}
	return e, nil
}

// Instantiate builds d and links the result under parent (the root when
// parent is nil) with a single reparent.
func (g *SceneGraph) Instantiate(d *EntityData, parent *Entity) (*Entity, error) {
	e, err := g.BuildEntity(d)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		parent = g.root
	}
	e.Reparent(parent, -1)
	entities, components := d.Count()
	g.logger.Debug("subtree instantiated", "name", e.Name, "entities", entities, "components", components)
	return e, nil
}

// --- Tree-wide operations ---

// PerformAction dispatches a from the root.
func (g *SceneGraph) PerformAction(a Action) Outcome {
	if g.root == nil {
		return Pass
	}
	return g.root.PerformAction(a)
}

// UpdateTransforms recomputes world matrices from the root with an identity
// parent transform.
func (g *SceneGraph) UpdateTransforms() {
	if g.root == nil {
		return
	}
	g.root.UpdateTransforms(Identity, false)
}

// Find resolves path from the root.
func (g *SceneGraph) Find(path string) *Entity {
	if g.root == nil {
		return nil
	}
	return g.root.FindEntity(path)
}

// Entity returns the owned entity with the given id, or nil.
func (g *SceneGraph) Entity(id uint32) *Entity {
	return g.entities[id]
}

// NumEntities returns the number of entities owned by the graph.
func (g *SceneGraph) NumEntities() int {
	return len(g.entities)
}

func (g *SceneGraph) index(e *Entity) {
	g.entities[e.ID] = e
}

func (g *SceneGraph) unindex(e *Entity) {
	delete(g.entities, e.ID)
}
