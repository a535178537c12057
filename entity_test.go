package grove

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

// --- Construction ---

func TestNewEntityDefaults(t *testing.T) {
	e := NewEntity("test")
	if e.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if e.Name != "test" {
		t.Errorf("Name = %q, want %q", e.Name, "test")
	}
	if !e.Active() {
		t.Error("Active should be true")
	}
	if e.ScaleXY() != (Vec2{1, 1}) {
		t.Errorf("Scale = %v, want (1, 1)", e.ScaleXY())
	}
	if !e.Dirty() {
		t.Error("new entity should be dirty")
	}
	if e.Parent() != nil || e.Owner() != nil {
		t.Error("new entity should be detached")
	}
	if e.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewEntity("a")
	b := NewEntity("b")
	if a.ID == b.ID {
		t.Errorf("IDs should be unique: %d, %d", a.ID, b.ID)
	}
}

// --- Reparent ---

func TestReparentBasic(t *testing.T) {
	parent := NewEntity("parent")
	child := NewEntity("child")
	child.Reparent(parent, -1)

	if child.Parent() != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("parent should contain child")
	}
}

func TestReparentMovesBetweenParents(t *testing.T) {
	p1 := NewEntity("p1")
	p2 := NewEntity("p2")
	child := NewEntity("child")

	p1.AddChild(child)
	p2.AddChild(child)

	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if p2.NumChildren() != 1 || child.Parent() != p2 {
		t.Error("child should belong to p2")
	}
}

func TestReparentNilDetaches(t *testing.T) {
	parent := NewEntity("parent")
	child := NewEntity("child")
	parent.AddChild(child)

	child.Reparent(nil, -1)
	if child.Parent() != nil {
		t.Error("child.Parent should be nil")
	}
	if parent.ChildIndex(child) != -1 {
		t.Error("parent should no longer contain child")
	}
}

func TestReparentSameParentNoop(t *testing.T) {
	parent := NewEntity("parent")
	a := NewEntity("a")
	b := NewEntity("b")
	parent.AddChild(a)
	parent.AddChild(b)

	a.Reparent(parent, 5)
	if parent.ChildAt(0) != a {
		t.Error("reparenting to the same parent must not reorder")
	}
}

func TestReparentInsertIndex(t *testing.T) {
	parent := NewEntity("parent")
	a := NewEntity("a")
	b := NewEntity("b")
	c := NewEntity("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChildAt(c, 1)

	got := names(parent.Children())
	want := []string{"a", "c", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}

	d := NewEntity("d")
	parent.AddChildAt(d, 99)
	if parent.ChildAt(3) != d {
		t.Error("out-of-range index should append")
	}
}

func TestReparentCyclePanics(t *testing.T) {
	a, _, c := chain()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	a.Reparent(c, -1)
}

func TestReparentSelfPanics(t *testing.T) {
	a := NewEntity("a")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-parenting, got none")
		}
	}()
	a.Reparent(a, -1)
}

func TestParentChildConsistency(t *testing.T) {
	g := New()
	a := NewEntity("a")
	b := NewEntity("b")
	c := NewEntity("c")
	g.Root().AddChild(a)
	g.Root().AddChild(b)
	a.AddChild(c)
	b.AddChild(c)
	c.AddChildAt(NewEntity("d"), 0)

	var check func(e *Entity)
	check = func(e *Entity) {
		for _, child := range e.Children() {
			if child.Parent() != e {
				t.Errorf("%s.Parent = %v, want %s", child.Name, child.Parent(), e.Name)
			}
			check(child)
		}
	}
	check(g.Root())
	if a.NumChildren() != 0 {
		t.Errorf("a should have no children, has %d", a.NumChildren())
	}
}

func TestChildOrderComparator(t *testing.T) {
	parent := NewEntity("parent")
	for _, n := range []string{"c", "a", "b"} {
		parent.AddChild(NewEntity(n))
	}
	parent.SetChildOrder(func(x, y *Entity) int { return strings.Compare(x.Name, y.Name) })
	if got := names(parent.Children()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("sorted children = %v", got)
	}
	parent.AddChildAt(NewEntity("0"), 2)
	if got := names(parent.Children()); !slices.Equal(got, []string{"0", "a", "b", "c"}) {
		t.Errorf("children after insert = %v", got)
	}
}

// --- Owner propagation and lifecycle ---

func TestOwnerPropagation(t *testing.T) {
	g := New()
	a, b, c := chain()
	if c.Owner() != nil {
		t.Fatal("detached chain should have no owner")
	}
	g.Root().AddChild(a)
	for _, e := range []*Entity{a, b, c} {
		if e.Owner() != g {
			t.Errorf("%s.Owner = %v, want graph", e.Name, e.Owner())
		}
		if g.Entity(e.ID) != e {
			t.Errorf("graph index missing %s", e.Name)
		}
	}
	b.RemoveFromParent()
	if b.Owner() != nil || c.Owner() != nil {
		t.Error("detached subtree should lose its owner")
	}
	if g.Entity(c.ID) != nil {
		t.Error("graph index should drop detached entities")
	}
}

func TestLifecycleOnLink(t *testing.T) {
	g := New()
	a, _, c := chain()
	pa := attachProbe(t, a)
	pc := attachProbe(t, c)
	if pa.attached != 0 || pc.attached != 0 {
		t.Fatal("no attach callbacks before linking")
	}

	g.Root().AddChild(a)
	if pa.attached != 1 || pc.attached != 1 {
		t.Errorf("attached = %d/%d, want 1/1", pa.attached, pc.attached)
	}

	a.RemoveFromParent()
	if pa.detached != 1 || pc.detached != 1 {
		t.Errorf("detached = %d/%d, want 1/1", pa.detached, pc.detached)
	}
}

func TestLifecycleMoveWithinGraph(t *testing.T) {
	g := New()
	p1 := NewEntity("p1")
	p2 := NewEntity("p2")
	g.Root().AddChild(p1)
	g.Root().AddChild(p2)
	child := NewEntity("child")
	p := attachProbe(t, child)
	p1.AddChild(child)

	p2.AddChild(child)
	if p.attached != 2 || p.detached != 1 {
		t.Errorf("attached/detached = %d/%d, want 2/1", p.attached, p.detached)
	}
}

func TestLifecycleDisabled(t *testing.T) {
	g := New(WithLifecycleEvents(false))
	e := NewEntity("e")
	p := attachProbe(t, e)
	g.Root().AddChild(e)
	e.RemoveFromParent()
	if p.attached != 0 || p.detached != 0 {
		t.Errorf("callbacks fired with events disabled: %d/%d", p.attached, p.detached)
	}
}

func TestAttachComponentOnOwnedEntityFires(t *testing.T) {
	g := New()
	e := NewEntity("e")
	g.Root().AddChild(e)

	p := attachProbe(t, e)
	if p.attached != 1 {
		t.Errorf("attached = %d, want 1", p.attached)
	}
	if err := e.DetachComponent("probe"); err != nil {
		t.Fatalf("DetachComponent: %v", err)
	}
	if p.detached != 1 {
		t.Errorf("detached = %d, want 1", p.detached)
	}
}

// --- FindEntity ---

func buildFindTree() (root *Entity) {
	// root
	// ├── a
	// │   └── b
	// │       └── c
	// └── sibling
	root = NewEntity("root")
	a, _, _ := chain()
	root.AddChild(a)
	root.AddChild(NewEntity("sibling"))
	return root
}

func TestFindEntity(t *testing.T) {
	root := buildFindTree()
	c := root.FindEntity("a/b/c")
	if c == nil || c.Name != "c" {
		t.Fatalf("a/b/c = %v", c)
	}

	tests := []struct {
		name string
		from *Entity
		path string
		want string // "" means nil
	}{
		{"empty returns self", c, "", "c"},
		{"dot", c, ".", "c"},
		{"parent", c, "..", "b"},
		{"absolute", c, "/a/b", "b"},
		{"absolute root", c, "/", "root"},
		{"dot segments", root, "./a/./b", "b"},
		{"up and over", c, "../../../sibling", "sibling"},
		{"missing child", root, "a/x", ""},
		{"past root", root, "..", ""},
		{"past root deep", c, "../../../../sibling", ""},
		{"no partial result", root, "a/b/missing/c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.FindEntity(tt.path)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("FindEntity(%q) = %q, want nil", tt.path, got.Name)
			case tt.want != "" && (got == nil || got.Name != tt.want):
				t.Errorf("FindEntity(%q) = %v, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFindEntityScenarioC(t *testing.T) {
	// From three levels deep, ../../sibling resolves to a sibling two levels up.
	root := NewEntity("root")
	l1 := NewEntity("l1")
	l2 := NewEntity("l2")
	l3 := NewEntity("l3")
	sibling := NewEntity("sibling")
	root.AddChild(l1)
	l1.AddChild(l2)
	l1.AddChild(sibling)
	l2.AddChild(l3)

	if got := l3.FindEntity("../../sibling"); got != sibling {
		t.Errorf("../../sibling = %v, want sibling", got)
	}
	if got := l3.FindEntity("../../../../sibling"); got != nil {
		t.Errorf("climbing past root = %v, want nil", got)
	}
}

func TestFindEntityDuplicateNamesFirstWins(t *testing.T) {
	root := NewEntity("root")
	first := NewEntity("dup")
	root.AddChild(first)
	root.AddChild(NewEntity("dup"))
	if got := root.FindEntity("dup"); got != first {
		t.Error("first matching child should win")
	}
}

func TestPathRoundTrip(t *testing.T) {
	root := buildFindTree()
	var walk func(e *Entity)
	walk = func(e *Entity) {
		if got := root.FindEntity(e.Path()); got != e {
			t.Errorf("FindEntity(%q) = %v, want %s", e.Path(), got, e.Name)
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	walk(root)
}

// --- Components ---

func TestAttachGetDetach(t *testing.T) {
	e := NewEntity("e")
	p := &probe{}
	if err := e.AttachComponent("Probe", p); err != nil {
		t.Fatalf("AttachComponent: %v", err)
	}
	if e.Component("Probe") != p {
		t.Error("Component should return the attached instance")
	}
	if p.Entity() != e || p.TypeName() != "Probe" {
		t.Error("component back-reference not set")
	}
	if got, ok := ComponentOf[*probe](e, "Probe"); !ok || got != p {
		t.Error("ComponentOf should return the probe")
	}
	if err := e.DetachComponent("Probe"); err != nil {
		t.Fatalf("DetachComponent: %v", err)
	}
	if e.Component("Probe") != nil {
		t.Error("Component should be nil after detach")
	}
	if p.Entity() != nil {
		t.Error("back-reference should be cleared after detach")
	}
}

func TestAttachDuplicateTypeFails(t *testing.T) {
	e := NewEntity("e")
	if err := e.AttachComponent("Sprite", &probe{}); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	err := e.AttachComponent("Sprite", &probe{})
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("second attach err = %v, want ErrDuplicateComponent", err)
	}
	if e.NumComponents() != 1 {
		t.Errorf("NumComponents = %d, want 1", e.NumComponents())
	}
}

func TestAttachOwnedComponentFails(t *testing.T) {
	a := NewEntity("a")
	b := NewEntity("b")
	p := &probe{}
	if err := a.AttachComponent("probe", p); err != nil {
		t.Fatal(err)
	}
	if err := b.AttachComponent("probe", p); !errors.Is(err, ErrComponentOwned) {
		t.Errorf("err = %v, want ErrComponentOwned", err)
	}
}

func TestAttachValidation(t *testing.T) {
	e := NewEntity("e")
	if err := e.AttachComponent("", &probe{}); !errors.Is(err, ErrEmptyComponentType) {
		t.Errorf("empty name err = %v", err)
	}
	if err := e.AttachComponent("x", nil); !errors.Is(err, ErrNilComponent) {
		t.Errorf("nil component err = %v", err)
	}
}

func TestDetachUnknownFails(t *testing.T) {
	e := NewEntity("e")
	if err := e.DetachComponent("Nope"); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("err = %v, want ErrComponentNotFound", err)
	}
	if err := e.DetachComponentInstance(&probe{}); !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("instance err = %v, want ErrComponentNotFound", err)
	}
}

func TestComponentLookupIsLocal(t *testing.T) {
	a, b, _ := chain()
	attachProbe(t, a)
	if b.Component("probe") != nil {
		t.Error("lookup must not search ancestors")
	}
	if a.FindEntity("b").Component("probe") != nil {
		t.Error("lookup must not search descendants")
	}
}

// --- Dispatch ---

func TestPerformActionOrder(t *testing.T) {
	var journal []string
	a, b, c := chain()
	sib := NewEntity("sib")
	a.AddChild(sib)
	for _, e := range []*Entity{a, b, c, sib} {
		p := attachProbe(t, e)
		p.journal = &journal
	}

	a.PerformAction(Update{DT: 1})

	want := []string{"a:update", "b:update", "c:update", "sib:update"}
	if !slices.Equal(journal, want) {
		t.Errorf("journal = %v, want %v", journal, want)
	}
}

func TestPerformActionShortCircuit(t *testing.T) {
	a, b, c := chain()
	pa := attachProbe(t, a)
	pb := attachProbe(t, b)
	pc := attachProbe(t, c)
	pb.consume = true

	outcome := a.PerformAction(Update{})
	if outcome != Pass {
		t.Errorf("outcome at a = %v, want Pass", outcome)
	}
	if len(pa.seen) != 1 || len(pb.seen) != 1 {
		t.Error("a and b should both see the action")
	}
	if len(pc.seen) != 0 {
		t.Errorf("leaf saw %d actions, want 0", len(pc.seen))
	}
	if b.PerformAction(Update{}) != Consumed {
		t.Error("b should report Consumed")
	}
}

func TestPerformActionAllComponentsRunBeforeStop(t *testing.T) {
	e := NewEntity("e")
	child := NewEntity("child")
	e.AddChild(child)
	first := &probe{consume: true}
	second := &probe{}
	leaf := attachProbe(t, child)
	if err := e.AttachComponent("first", first); err != nil {
		t.Fatal(err)
	}
	if err := e.AttachComponent("second", second); err != nil {
		t.Fatal(err)
	}

	e.PerformAction(Update{})
	if len(second.seen) != 1 {
		t.Error("components after the consuming one still run")
	}
	if len(leaf.seen) != 0 {
		t.Error("children must not run")
	}
}

func TestPerformActionInactiveScenarioD(t *testing.T) {
	a, b, c := chain()
	pa := attachProbe(t, a)
	pb := attachProbe(t, b)
	pc := attachProbe(t, c)
	b.SetActive(false)

	a.PerformAction(Update{})
	if len(pa.seen) != 1 {
		t.Error("a should see the action")
	}
	if len(pb.seen) != 0 || len(pc.seen) != 0 {
		t.Errorf("inactive subtree saw actions: b=%d c=%d", len(pb.seen), len(pc.seen))
	}
	if !c.Active() {
		t.Error("descendant flags must be untouched")
	}
}

func TestRewriteChaining(t *testing.T) {
	e := NewEntity("e")
	child := NewEntity("child")
	e.AddChild(child)

	double := func(a Action) Action {
		if u, ok := a.(Update); ok {
			return Update{DT: u.DT * 2}
		}
		return nil
	}
	before := &probe{}
	after := &probe{}
	leaf := attachProbe(t, child)
	must(t, e.AttachComponent("before", before))
	must(t, e.AttachComponent("x2", &rewriter{fn: double}))
	must(t, e.AttachComponent("x2again", &rewriter{fn: double}))
	must(t, e.AttachComponent("after", after))

	e.PerformAction(Update{DT: 1})

	if got := before.seen[0].(Update).DT; got != 1 {
		t.Errorf("before saw DT %v, want 1", got)
	}
	if got := after.seen[0].(Update).DT; got != 4 {
		t.Errorf("after saw DT %v, want 4", got)
	}
	if got := leaf.seen[0].(Update).DT; got != 4 {
		t.Errorf("child saw DT %v, want 4", got)
	}
}

func TestRewriteNilKeepsAction(t *testing.T) {
	e := NewEntity("e")
	p := &probe{}
	must(t, e.AttachComponent("nop", &rewriter{fn: func(Action) Action { return nil }}))
	must(t, e.AttachComponent("probe", p))
	e.PerformAction(Message{Kind: "ping", Args: []any{1}})
	m, ok := p.seen[0].(Message)
	if !ok || m.Kind != "ping" || m.Args[0] != 1 {
		t.Errorf("seen = %#v", p.seen[0])
	}
}

func TestRewriteDoesNotLeakAcrossSiblings(t *testing.T) {
	parent := NewEntity("parent")
	first := NewEntity("first")
	second := NewEntity("second")
	parent.AddChild(first)
	parent.AddChild(second)

	must(t, first.AttachComponent("rw", &rewriter{fn: func(Action) Action {
		return Message{Kind: "rewritten"}
	}}))
	p := attachProbe(t, second)

	parent.PerformAction(Message{Kind: "original"})
	if got := p.seen[0].Name(); got != "original" {
		t.Errorf("second sibling saw %q, want %q", got, "original")
	}
}

func TestPerformActionOnComponentsDoesNotRecurse(t *testing.T) {
	a, b, _ := chain()
	pa := attachProbe(t, a)
	pb := attachProbe(t, b)
	must(t, a.AttachComponent("rw", &rewriter{fn: func(Action) Action {
		return Message{Kind: "next"}
	}}))

	outcome, next := a.PerformActionOnComponents(Update{})
	if outcome != Pass {
		t.Errorf("outcome = %v, want Pass", outcome)
	}
	if next.Name() != "next" {
		t.Errorf("returned action = %q, want %q", next.Name(), "next")
	}
	if len(pa.seen) != 1 || len(pb.seen) != 0 {
		t.Errorf("seen a=%d b=%d, want 1/0", len(pa.seen), len(pb.seen))
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	g := New()
	a, b, c := chain()
	pa := attachProbe(t, a)
	pc := attachProbe(t, c)
	g.Root().AddChild(a)

	a.Dispose()

	if g.Root().NumChildren() != 0 {
		t.Error("disposed entity should be removed from its parent")
	}
	for _, e := range []*Entity{a, b, c} {
		if !e.IsDisposed() {
			t.Errorf("%s should be disposed", e.Name)
		}
		if e.Parent() != nil || e.NumChildren() != 0 || e.NumComponents() != 0 {
			t.Errorf("%s should have cleared state", e.Name)
		}
	}
	if pa.detached != 1 || pc.detached != 1 {
		t.Errorf("detached = %d/%d, want 1/1", pa.detached, pc.detached)
	}
	if pa.Entity() != nil || pc.Entity() != nil {
		t.Error("components should be detached")
	}
}

func TestDisposeTwicePanics(t *testing.T) {
	e := NewEntity("e")
	e.Dispose()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on second Dispose")
		}
	}()
	e.Dispose()
}

func TestReparentDisposedPanics(t *testing.T) {
	e := NewEntity("e")
	e.Dispose()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic reparenting a disposed entity")
		}
	}()
	e.Reparent(NewEntity("p"), -1)
}

func names(es []*Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
