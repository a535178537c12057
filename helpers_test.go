package grove

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Matrix) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// probe counts lifecycle callbacks and records every action it handles.
type probe struct {
	BaseComponent
	Label  string `prop:"label"`
	Count  int    `prop:"count"`
	Offset Vec2   `prop:"offset"`

	consume  bool
	seen     []Action
	attached int
	detached int
	journal  *[]string
}

func (p *probe) Schema() Schema {
	return Schema{"label": String, "count": Integer, "offset": Vec2Type}
}

func (p *probe) HandleAction(a Action) Outcome {
	p.seen = append(p.seen, a)
	if p.journal != nil {
		owner := ""
		if p.Entity() != nil {
			owner = p.Entity().Name
		}
		*p.journal = append(*p.journal, owner+":"+a.Name())
	}
	if p.consume {
		return Consumed
	}
	return Pass
}

func (p *probe) OnAttach() { p.attached++ }
func (p *probe) OnDetach() { p.detached++ }

// rewriter replaces the action through fn.
type rewriter struct {
	BaseComponent
	fn func(Action) Action
}

func (r *rewriter) RewriteAction(a Action) Action { return r.fn(a) }

// attachProbe attaches a fresh probe under "probe" and returns it.
func attachProbe(t *testing.T, e *Entity) *probe {
	t.Helper()
	p := &probe{}
	if err := e.AttachComponent("probe", p); err != nil {
		t.Fatalf("AttachComponent: %v", err)
	}
	return p
}

// chain builds root -> a -> b -> c (all detached from any graph).
func chain() (a, b, c *Entity) {
	a = NewEntity("a")
	b = NewEntity("b")
	c = NewEntity("c")
	a.AddChild(b)
	b.AddChild(c)
	return a, b, c
}
