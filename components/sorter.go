package components

import (
	"cmp"
	"slices"

	"github.com/phanxgames/grove"
)

// Sorter delivers every action to its entity's children ordered by the
// child's Meta[Key] instead of child order, and consumes the action.
// Numbers sort before strings, and children without a usable value come
// last. Ties keep child order.
//
// The children receive the action as the Sorter saw it; attach the Sorter
// after any rewriting components on the same entity.
type Sorter struct {
	grove.BaseComponent
	Key        string `prop:"key"`
	Descending bool   `prop:"descending"`
}

// Schema implements grove.Schemer.
func (s *Sorter) Schema() grove.Schema {
	return grove.Schema{"key": grove.String, "descending": grove.Boolean}
}

// HandleAction forwards a to the children in sorted order.
func (s *Sorter) HandleAction(a grove.Action) grove.Outcome {
	for _, child := range s.Sorted() {
		child.PerformAction(a)
	}
	return grove.Consumed
}

// Sorted returns the entity's children in delivery order.
func (s *Sorter) Sorted() []*grove.Entity {
	children := slices.Clone(s.Entity().Children())
	slices.SortStableFunc(children, func(a, b *grove.Entity) int {
		return s.compare(a.Meta[s.Key], b.Meta[s.Key])
	})
	return children
}

const (
	rankNumber = iota
	rankString
	rankMissing
)

func (s *Sorter) compare(a, b any) int {
	ra, fa, sa := rank(a)
	rb, fb, sb := rank(b)
	if ra != rb {
		return ra - rb
	}
	var c int
	switch ra {
	case rankNumber:
		c = cmp.Compare(fa, fb)
	case rankString:
		c = cmp.Compare(sa, sb)
	default:
		return 0
	}
	if s.Descending {
		return -c
	}
	return c
}

func rank(v any) (int, float64, string) {
	switch t := v.(type) {
	case string:
		return rankString, 0, t
	case float64:
		return rankNumber, t, ""
	case float32:
		return rankNumber, float64(t), ""
	case int:
		return rankNumber, float64(t), ""
	case int64:
		return rankNumber, float64(t), ""
	case int32:
		return rankNumber, float64(t), ""
	case uint32:
		return rankNumber, float64(t), ""
	}
	return rankMissing, 0, ""
}
