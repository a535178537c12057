package components

import (
	"maps"

	"github.com/phanxgames/grove"
)

// Probe counts the actions it receives by name. With Consume set it also
// stops them from reaching its entity's children.
type Probe struct {
	grove.BaseComponent
	Consume bool `prop:"consume"`

	counts map[string]int
	total  int
}

// NewProbe returns a passive probe.
func NewProbe() *Probe {
	return &Probe{counts: make(map[string]int)}
}

// Schema implements grove.Schemer.
func (p *Probe) Schema() grove.Schema {
	return grove.Schema{"consume": grove.Boolean}
}

// HandleAction counts a by name.
func (p *Probe) HandleAction(a grove.Action) grove.Outcome {
	if p.counts == nil {
		p.counts = make(map[string]int)
	}
	p.counts[a.Name()]++
	p.total++
	if p.Consume {
		return grove.Consumed
	}
	return grove.Pass
}

// Count returns how many actions named name were received.
func (p *Probe) Count(name string) int { return p.counts[name] }

// Total returns the number of actions received.
func (p *Probe) Total() int { return p.total }

// Counts returns a copy of the per-name counters.
func (p *Probe) Counts() map[string]int { return maps.Clone(p.counts) }

// Reset clears the counters.
func (p *Probe) Reset() {
	clear(p.counts)
	p.total = 0
}
