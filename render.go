package grove

import "slices"

// RenderCommand is a single draw instruction emitted during a Render pass.
// The core never draws; a rendering backend consumes the queue.
type RenderCommand struct {
	Entity    *Entity
	Transform Matrix
	Texture   string
	Color     Color
	Layer     int
	Order     int
	treeOrder int // assigned on Push for stable sort
}

const defaultCommandCap = 256

// RenderQueue collects render commands for one frame.
type RenderQueue struct {
	commands []RenderCommand
}

// NewRenderQueue returns an empty queue with room for capacity commands.
func NewRenderQueue(capacity int) *RenderQueue {
	if capacity <= 0 {
		capacity = defaultCommandCap
	}
	return &RenderQueue{commands: make([]RenderCommand, 0, capacity)}
}

// Push appends cmd, remembering its submission order.
func (q *RenderQueue) Push(cmd RenderCommand) {
	cmd.treeOrder = len(q.commands)
	q.commands = append(q.commands, cmd)
}

// Commands returns the queued commands. The returned slice MUST NOT be mutated.
func (q *RenderQueue) Commands() []RenderCommand { return q.commands }

// Len returns the number of queued commands.
func (q *RenderQueue) Len() int { return len(q.commands) }

// Reset empties the queue, keeping its storage.
func (q *RenderQueue) Reset() {
	clear(q.commands)
	q.commands = q.commands[:0]
}

// Sort orders commands by Layer, then Order, then submission order.
func (q *RenderQueue) Sort() {
	slices.SortStableFunc(q.commands, func(a, b RenderCommand) int {
		if a.Layer != b.Layer {
			return a.Layer - b.Layer
		}
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.treeOrder - b.treeOrder
	})
}
