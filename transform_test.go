package grove

import (
	"math"
	"testing"
)

// --- ComposeMatrix ---

func TestComposeIdentity(t *testing.T) {
	got := ComposeMatrix(Vec2{}, 0, Vec2{1, 1})
	assertMatrix(t, "identity", got, Identity)
}

func TestComposeTranslation(t *testing.T) {
	got := ComposeMatrix(Vec2{10, 20}, 0, Vec2{1, 1})
	assertMatrix(t, "translation", got, Matrix{1, 0, 0, 1, 10, 20})
}

func TestComposeScale(t *testing.T) {
	got := ComposeMatrix(Vec2{}, 0, Vec2{2, 3})
	assertMatrix(t, "scale", got, Matrix{2, 0, 0, 3, 0, 0})
}

func TestComposeRotation90(t *testing.T) {
	got := ComposeMatrix(Vec2{}, math.Pi/2, Vec2{1, 1})
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", got, Matrix{0, 1, -1, 0, 0, 0})
}

func TestComposeCombined(t *testing.T) {
	got := ComposeMatrix(Vec2{50, 100}, math.Pi/2, Vec2{2, 2})
	assertMatrix(t, "combined", got, Matrix{0, 2, -2, 0, 50, 100})
}

// --- Mul / Invert ---

func TestMulIdentity(t *testing.T) {
	m := Matrix{2, 1, -1, 3, 5, 7}
	assertMatrix(t, "I*m", Identity.Mul(m), m)
	assertMatrix(t, "m*I", m.Mul(Identity), m)
}

func TestMulTranslations(t *testing.T) {
	got := Translate(1, 2).Mul(Translate(3, 4))
	assertMatrix(t, "t*t", got, Translate(4, 6))
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate: point (1,0) -> (2,0) -> (12,0)
	m := Translate(10, 0).Mul(Scale(2, 2))
	x, y := m.Apply(1, 0)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 0)
}

func TestInvertRoundTrip(t *testing.T) {
	m := ComposeMatrix(Vec2{13, -4}, 0.7, Vec2{2, 0.5})
	assertMatrix(t, "m*inv", m.Mul(m.Invert()), Identity)
	assertMatrix(t, "inv*m", m.Invert().Mul(m), Identity)
}

func TestInvertSingular(t *testing.T) {
	m := Scale(0, 1)
	assertMatrix(t, "singular", m.Invert(), Identity)
}

// --- UpdateTransforms ---

func TestUpdateTransformsChain(t *testing.T) {
	a, b, c := chain()
	a.SetPosition(1, 2)
	a.SetRotation(0.3)
	b.SetScale(2, 3)
	b.SetPosition(-5, 4)
	c.SetRotation(-1.1)
	c.SetPosition(7, 0)

	a.UpdateTransforms(Identity, false)

	want := a.Local().Mul(b.Local()).Mul(c.Local())
	assertMatrix(t, "c.world", c.World(), want)
	assertMatrix(t, "c.inverse", c.World().Mul(c.InverseWorld()), Identity)
}

func TestUpdateTransformsScenarioA(t *testing.T) {
	g := New()
	root, err := g.BuildEntity(&EntityData{
		Name:      "root",
		Transform: &TransformData{Position: &Vec2{1, 2}},
		Children: []*EntityData{
			{Name: "child", Transform: &TransformData{Position: &Vec2{3, 4}}},
		},
	})
	if err != nil {
		t.Fatalf("BuildEntity: %v", err)
	}
	root.UpdateTransforms(Identity, false)

	child := root.FindEntity("child")
	if child == nil {
		t.Fatal("child not found")
	}
	origin := child.World().Origin()
	assertNear(t, "origin.X", origin.X, 4)
	assertNear(t, "origin.Y", origin.Y, 6)
}

func TestUpdateTransformsClearsDirty(t *testing.T) {
	a, b, c := chain()
	a.UpdateTransforms(Identity, false)
	for _, e := range []*Entity{a, b, c} {
		if e.Dirty() {
			t.Errorf("%s should not be dirty", e.Name)
		}
	}
}

func TestUpdateTransformsForcesDescendants(t *testing.T) {
	a, b, c := chain()
	a.UpdateTransforms(Identity, false)

	// Moving only the top of the chain must move the leaf even though the
	// leaf itself is clean.
	a.SetPosition(100, 0)
	if c.Dirty() {
		t.Fatal("c should be clean before the pass")
	}
	a.UpdateTransforms(Identity, false)
	assertNear(t, "c.world.tx", c.World()[4], 100)
	assertNear(t, "b.world.tx", b.World()[4], 100)
}

func TestUpdateTransformsSkipsCleanSubtree(t *testing.T) {
	a, b, _ := chain()
	a.UpdateTransforms(Identity, false)

	// Changing the parent transform passed in has no effect on clean nodes
	// unless forced.
	a.UpdateTransforms(Translate(50, 0), false)
	assertNear(t, "b.world.tx", b.World()[4], 0)

	a.UpdateTransforms(Translate(50, 0), true)
	assertNear(t, "b.world.tx forced", b.World()[4], 50)
}

func TestUpdateTransformsInactiveFrozen(t *testing.T) {
	a, b, c := chain()
	a.UpdateTransforms(Identity, false)

	b.SetActive(false)
	c.SetPosition(9, 9)
	a.SetPosition(5, 5)
	a.UpdateTransforms(Identity, false)

	assertNear(t, "a.world.tx", a.World()[4], 5)
	assertNear(t, "b.world.tx", b.World()[4], 0)
	assertNear(t, "c.world.tx", c.World()[4], 0)
	if !c.Dirty() {
		t.Error("c should keep its dirty flag while frozen")
	}
}

func TestReparentMarksDirty(t *testing.T) {
	p1 := NewEntity("p1")
	p2 := NewEntity("p2")
	p2.SetPosition(10, 0)
	child := NewEntity("child")
	p1.AddChild(child)
	p1.UpdateTransforms(Identity, false)
	p2.UpdateTransforms(Identity, false)

	p2.AddChild(child)
	if !child.Dirty() {
		t.Fatal("reparented child should be dirty")
	}
	p2.UpdateTransforms(Identity, false)
	assertNear(t, "child.world.tx", child.World()[4], 10)
}

func TestRotationDegrees(t *testing.T) {
	e := NewEntity("e")
	e.SetRotationDegrees(90)
	assertNear(t, "radians", e.Rotation(), math.Pi/2)
	assertNear(t, "degrees", e.RotationDegrees(), 90)
}

func TestLocalWorldConversion(t *testing.T) {
	a, b, _ := chain()
	a.SetPosition(10, 20)
	b.SetScale(2, 2)
	a.UpdateTransforms(Identity, false)

	wx, wy := b.LocalToWorld(1, 1)
	assertNear(t, "wx", wx, 12)
	assertNear(t, "wy", wy, 22)
	lx, ly := b.WorldToLocal(wx, wy)
	assertNear(t, "lx", lx, 1)
	assertNear(t, "ly", ly, 1)
}
