package grove

import (
	"math"
	"testing"
)

// benchSprite pushes one render command per Render, like a minimal sprite.
type benchSprite struct {
	BaseComponent
}

func (s *benchSprite) HandleAction(a Action) Outcome {
	if r, ok := a.(Render); ok {
		e := s.Entity()
		r.Queue.Push(RenderCommand{Entity: e, Transform: r.View.Mul(e.World()), Color: ColorWhite, Order: int(e.ID % 7)})
	}
	return Pass
}

// setupBenchGraph creates a graph with n sprite entities in a grid under
// groups of 100.
func setupBenchGraph(b *testing.B, n int) *SceneGraph {
	b.Helper()
	g := New()
	var group *Entity
	for i := 0; i < n; i++ {
		if i%100 == 0 {
			group = NewEntity("group")
			g.Root().AddChild(group)
		}
		e := NewEntity("sprite")
		e.SetPosition(float64(i%100)*40, float64(i/100)*40)
		if err := e.AttachComponent("Sprite", &benchSprite{}); err != nil {
			b.Fatal(err)
		}
		group.AddChild(e)
	}
	g.UpdateTransforms()
	return g
}

func BenchmarkTransform_10000Dirty(b *testing.B) {
	g := setupBenchGraph(b, 10000)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.Root().MarkDirty()
		g.UpdateTransforms()
	}
}

func BenchmarkTransform_10000Clean(b *testing.B) {
	g := setupBenchGraph(b, 10000)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.UpdateTransforms()
	}
}

func BenchmarkTransform_10000Rotating(b *testing.B) {
	g := setupBenchGraph(b, 10000)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, group := range g.Root().Children() {
			for _, e := range group.Children() {
				e.SetRotation(math.Mod(e.Rotation()+0.01, 2*math.Pi))
			}
		}
		g.UpdateTransforms()
	}
}

func BenchmarkDispatch_10000Update(b *testing.B) {
	g := setupBenchGraph(b, 10000)
	a := Update{DT: 1.0 / 60}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.PerformAction(a)
	}
}

func BenchmarkRender_10000Sprites(b *testing.B) {
	g := setupBenchGraph(b, 10000)
	q := NewRenderQueue(10000)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q.Reset()
		g.PerformAction(Render{Queue: q, View: Identity})
		q.Sort()
	}
}

func BenchmarkFindEntity_Deep(b *testing.B) {
	g := New()
	parent := g.Root()
	for i := 0; i < 32; i++ {
		e := NewEntity("level")
		parent.AddChild(e)
		parent = e
	}
	path := parent.Path()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if g.Find(path) != parent {
			b.Fatal("lookup failed")
		}
	}
}
