package grove

import (
	"fmt"
	"slices"
	"strings"
)

// entityIDCounter is a plain counter; the scene graph is single-threaded.
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// attachedComponent pairs a component with the type name it is attached under.
type attachedComponent struct {
	name      string
	component Component
}

// Entity is a scene graph node: identity, a local transform, an ordered list
// of children and a set of components keyed by type name.
//
// An entity starts detached. It gains an owner when it, or an ancestor, is
// linked under the root of a SceneGraph.
type Entity struct {
	// Identity
	ID   uint32
	Name string
	Tag  string
	Meta map[string]any

	// Hierarchy
	parent     *Entity
	children   []*Entity
	childOrder func(a, b *Entity) int

	// Transform (local)
	position Vec2
	rotation float64
	scale    Vec2

	// Computed during UpdateTransforms
	local        Matrix
	world        Matrix
	inverseWorld Matrix
	dirty        bool

	active     bool
	components []attachedComponent
	owner      *SceneGraph
	disposed   bool
}

// NewEntity creates a detached, active entity with an identity transform.
func NewEntity(name string) *Entity {
	return &Entity{
		ID:           nextEntityID(),
		Name:         name,
		Meta:         make(map[string]any),
		scale:        Vec2{1, 1},
		local:        Identity,
		world:        Identity,
		inverseWorld: Identity,
		dirty:        true,
		active:       true,
	}
}

// Active reports whether the entity takes part in transform and action passes.
func (e *Entity) Active() bool { return e.active }

// SetActive enables or disables the entity and, implicitly, its subtree.
func (e *Entity) SetActive(active bool) { e.active = active }

// Owner returns the scene graph this entity belongs to, or nil when detached.
func (e *Entity) Owner() *SceneGraph { return e.owner }

// IsDisposed reports whether Dispose has been called.
func (e *Entity) IsDisposed() bool { return e.disposed }

// --- Hierarchy ---

// Parent returns the parent entity, or nil for a root or detached entity.
func (e *Entity) Parent() *Entity { return e.parent }

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (e *Entity) Children() []*Entity { return e.children }

// NumChildren returns the number of children.
func (e *Entity) NumChildren() int { return len(e.children) }

// ChildAt returns the child at the given index.
func (e *Entity) ChildAt(index int) *Entity { return e.children[index] }

// ChildIndex returns the index of child among e's children, or -1.
func (e *Entity) ChildIndex(child *Entity) int {
	return slices.Index(e.children, child)
}

// Root returns the topmost ancestor of e (e itself when it has no parent).
func (e *Entity) Root() *Entity {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Reparent moves e under newParent. A negative index appends; otherwise e is
// inserted at index (clamped to the end). A nil parent detaches e.
//
// Detach callbacks fire on the whole subtree when the outgoing owner triggers
// lifecycle events, and attach callbacks fire symmetrically for the new owner.
// Panics if e is disposed or if the move would create a cycle.
func (e *Entity) Reparent(newParent *Entity, index int) {
	if newParent == e.parent {
		return
	}
	if e.disposed {
		panic(fmt.Sprintf("grove: reparent of disposed entity %q", e.Name))
	}
	if newParent != nil && isAncestor(e, newParent) {
		panic("grove: reparenting would create a cycle")
	}

	if e.parent != nil {
		e.parent.removeChildByPtr(e)
		e.parent = nil
	}
	if old := e.owner; old != nil {
		if old.lifecycleEvents {
			e.notifyDetach()
		}
		e.propagateOwner(nil)
	}

	if newParent == nil {
		e.dirty = true
		return
	}

	e.parent = newParent
	newParent.insertChild(e, index)
	e.dirty = true

	if owner := newParent.owner; owner != nil {
		e.propagateOwner(owner)
		if owner.debug {
			owner.debugCheckTreeDepth(e)
			owner.debugCheckChildCount(newParent)
		}
		if owner.lifecycleEvents {
			e.notifyAttach()
		}
	}
}

// AddChild appends child to e's children. Same semantics as child.Reparent(e, -1).
func (e *Entity) AddChild(child *Entity) {
	if child == nil {
		panic("grove: cannot add nil child")
	}
	child.Reparent(e, -1)
}

// AddChildAt inserts child at index. Same semantics as child.Reparent(e, index).
func (e *Entity) AddChildAt(child *Entity, index int) {
	if child == nil {
		panic("grove: cannot add nil child")
	}
	child.Reparent(e, index)
}

// RemoveFromParent detaches e. No-op if e has no parent.
func (e *Entity) RemoveFromParent() {
	e.Reparent(nil, -1)
}

// SetChildOrder installs a comparator that keeps the children stably sorted
// after every insertion. The children are re-sorted immediately. A nil
// comparator restores plain insertion order from now on.
func (e *Entity) SetChildOrder(cmp func(a, b *Entity) int) {
	e.childOrder = cmp
	if cmp != nil {
		slices.SortStableFunc(e.children, cmp)
	}
}

func (e *Entity) insertChild(child *Entity, index int) {
	if index < 0 || index >= len(e.children) {
		e.children = append(e.children, child)
	} else {
		e.children = slices.Insert(e.children, index, child)
	}
	if e.childOrder != nil {
		slices.SortStableFunc(e.children, e.childOrder)
	}
}

// removeChildByPtr removes child from e.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (e *Entity) removeChildByPtr(child *Entity) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// isAncestor reports whether candidate is node or one of node's ancestors.
func isAncestor(candidate, node *Entity) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// propagateOwner sets the owner on e's whole subtree and keeps the owners'
// id indexes in step.
func (e *Entity) propagateOwner(g *SceneGraph) {
	if e.owner != nil {
		e.owner.unindex(e)
	}
	e.owner = g
	if g != nil {
		g.index(e)
	}
	for _, child := range e.children {
		child.propagateOwner(g)
	}
}

func (e *Entity) notifyAttach() {
	for _, ac := range e.components {
		if a, ok := ac.component.(Attacher); ok {
			a.OnAttach()
		}
	}
	for _, child := range e.children {
		child.notifyAttach()
	}
}

func (e *Entity) notifyDetach() {
	for _, ac := range e.components {
		if d, ok := ac.component.(Detacher); ok {
			d.OnDetach()
		}
	}
	for _, child := range e.children {
		child.notifyDetach()
	}
}

// triggersEvents reports whether component lifecycle callbacks fire for e.
func (e *Entity) triggersEvents() bool {
	return e.owner != nil && e.owner.lifecycleEvents
}

// --- Path lookup ---

// FindEntity resolves a slash-delimited path relative to e. A leading "/"
// starts from the absolute root, "." stays put, ".." moves to the parent and
// any other segment must exactly match the name of a direct child (first
// match wins). Returns nil as soon as a segment cannot be resolved,
// including ".." past the root.
func (e *Entity) FindEntity(path string) *Entity {
	cur := e
	if strings.HasPrefix(path, "/") {
		cur = e.Root()
		path = path[1:]
	}
	if path == "" {
		return cur
	}
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			cur = cur.parent
		default:
			cur = cur.childNamed(seg)
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (e *Entity) childNamed(name string) *Entity {
	for _, c := range e.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Path returns the absolute path of e, suitable for FindEntity. The root's
// path is "/". Paths are only unambiguous while sibling names are unique.
func (e *Entity) Path() string {
	var segs []string
	for p := e; p.parent != nil; p = p.parent {
		segs = append(segs, p.Name)
	}
	slices.Reverse(segs)
	return "/" + strings.Join(segs, "/")
}

// --- Components ---

// AttachComponent attaches c under typeName. Fails if typeName is empty, if
// a component is already attached under that name, or if c belongs to
// another entity. OnAttach fires when e's owner triggers lifecycle events.
func (e *Entity) AttachComponent(typeName string, c Component) error {
	if typeName == "" {
		return fmt.Errorf("attach to %q: %w", e.Name, ErrEmptyComponentType)
	}
	if c == nil {
		return fmt.Errorf("attach %q to %q: %w", typeName, e.Name, ErrNilComponent)
	}
	if e.componentIndex(typeName) >= 0 {
		return fmt.Errorf("attach %q to %q: %w", typeName, e.Name, ErrDuplicateComponent)
	}
	b := c.base()
	if b.entity != nil {
		return fmt.Errorf("attach %q to %q: %w", typeName, e.Name, ErrComponentOwned)
	}
	b.entity = e
	b.typeName = typeName
	e.components = append(e.components, attachedComponent{name: typeName, component: c})
	if e.triggersEvents() {
		if a, ok := c.(Attacher); ok {
			a.OnAttach()
		}
	}
	return nil
}

// DetachComponent detaches the component attached under typeName. OnDetach
// fires before the back-reference is cleared, so the component can still
// reach its entity and owner.
func (e *Entity) DetachComponent(typeName string) error {
	i := e.componentIndex(typeName)
	if i < 0 {
		return fmt.Errorf("detach %q from %q: %w", typeName, e.Name, ErrComponentNotFound)
	}
	e.detachAt(i)
	return nil
}

// DetachComponentInstance detaches c, whatever name it is attached under.
func (e *Entity) DetachComponentInstance(c Component) error {
	for i, ac := range e.components {
		if ac.component == c {
			e.detachAt(i)
			return nil
		}
	}
	return fmt.Errorf("detach %T from %q: %w", c, e.Name, ErrComponentNotFound)
}

func (e *Entity) detachAt(i int) {
	c := e.components[i].component
	if e.triggersEvents() {
		if d, ok := c.(Detacher); ok {
			d.OnDetach()
		}
	}
	e.components = slices.Delete(e.components, i, i+1)
	b := c.base()
	b.entity = nil
	b.typeName = ""
}

func (e *Entity) componentIndex(typeName string) int {
	for i, ac := range e.components {
		if ac.name == typeName {
			return i
		}
	}
	return -1
}

// Component returns the component attached under typeName, or nil. Only e is
// searched, never its ancestors or descendants.
func (e *Entity) Component(typeName string) Component {
	if i := e.componentIndex(typeName); i >= 0 {
		return e.components[i].component
	}
	return nil
}

// HasComponent reports whether a component is attached under typeName.
func (e *Entity) HasComponent(typeName string) bool {
	return e.componentIndex(typeName) >= 0
}

// ComponentTypes returns the attached type names in attachment order.
func (e *Entity) ComponentTypes() []string {
	names := make([]string, len(e.components))
	for i, ac := range e.components {
		names[i] = ac.name
	}
	return names
}

// NumComponents returns the number of attached components.
func (e *Entity) NumComponents() int { return len(e.components) }

// ComponentOf returns the component attached under typeName as a T.
func ComponentOf[T Component](e *Entity, typeName string) (T, bool) {
	var zero T
	c := e.Component(typeName)
	if c == nil {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// --- Action dispatch ---

// PerformAction delivers a to e's components and then, unless one of them
// consumed it, to every child in order. Inactive entities are skipped along
// with their subtree.
//
// Each component may rewrite the action; the rewritten action is what the
// following components and all of e's children receive. Rewrites made inside
// a child's subtree never leak to that child's siblings.
func (e *Entity) PerformAction(a Action) Outcome {
	if !e.active {
		return Pass
	}
	outcome, a := e.PerformActionOnComponents(a)
	if outcome == Consumed {
		return Consumed
	}
	for _, child := range e.children {
		child.PerformAction(a)
	}
	return Pass
}

// PerformActionOnComponents runs the per-component part of PerformAction
// without recursing into children. It returns the combined outcome and the
// action as rewritten by the components, so a caller can drive recursion
// itself.
//
// Components are iterated live: a component attaching or detaching
// components on its own entity during dispatch is not guarded against.
func (e *Entity) PerformActionOnComponents(a Action) (Outcome, Action) {
	if !e.active {
		return Pass, a
	}
	outcome := Pass
	for i := 0; i < len(e.components); i++ {
		c := e.components[i].component
		if h, ok := c.(ActionHandler); ok {
			if h.HandleAction(a) == Consumed {
				outcome = Consumed
			}
		}
		if r, ok := c.(ActionRewriter); ok {
			if next := r.RewriteAction(a); next != nil {
				a = next
			}
		}
	}
	return outcome, a
}

// --- Disposal ---

// Dispose detaches e, disposes its children and components and clears its
// state. Disposal is terminal: calling Dispose twice panics.
func (e *Entity) Dispose() {
	if e.disposed {
		panic(fmt.Sprintf("grove: Dispose called twice on entity %q", e.Name))
	}
	e.Reparent(nil, -1)
	for len(e.children) > 0 {
		e.children[0].Dispose()
	}
	comps := slices.Clone(e.components)
	for _, ac := range comps {
		DisposeComponent(ac.component)
	}
	if e.owner != nil {
		e.owner.unindex(e)
	}
	e.disposed = true
	e.ID = 0
	e.Meta = nil
	e.children = nil
	e.childOrder = nil
	e.components = nil
	e.parent = nil
	e.owner = nil
}
