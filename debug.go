package grove

// debugMaxTreeDepth is the depth past which debug mode warns.
const debugMaxTreeDepth = 32

// debugMaxChildCount is the child count past which debug mode warns.
const debugMaxChildCount = 1000

func (g *SceneGraph) debugCheckTreeDepth(e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		g.logger.Warn("tree depth exceeds threshold",
			"entity", e.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

func (g *SceneGraph) debugCheckChildCount(e *Entity) {
	if len(e.children) > debugMaxChildCount {
		g.logger.Warn("child count exceeds threshold",
			"entity", e.Name, "children", len(e.children), "threshold", debugMaxChildCount)
	}
}

// Stats summarizes the tree owned by a scene graph.
type Stats struct {
	Entities   int
	Active     int
	Components int
	MaxDepth   int
}

// Stats walks the tree and counts entities, active entities (those reached
// by a dispatch pass), components and the maximum depth.
func (g *SceneGraph) Stats() Stats {
	var s Stats
	if g.root != nil {
		collectStats(g.root, 1, true, &s)
	}
	return s
}

func collectStats(e *Entity, depth int, reachable bool, s *Stats) {
	s.Entities++
	s.Components += len(e.components)
	reachable = reachable && e.active
	if reachable {
		s.Active++
	}
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	for _, c := range e.children {
		collectStats(c, depth+1, reachable, s)
	}
}
