// Package frame drives a scene graph one frame at a time: simulation steps,
// transform propagation, the Update pass and the Render pass.
package frame

import (
	"context"
	"log/slog"
	"time"

	"github.com/phanxgames/grove"
)

// Stepper is advanced once per frame before transforms are propagated.
// physics.Space satisfies it.
type Stepper interface {
	Step(dt float64)
}

// StepFunc adapts a function to Stepper.
type StepFunc func(dt float64)

// Step calls f(dt).
func (f StepFunc) Step(dt float64) { f(dt) }

// Runner owns the per-frame sequence for one scene graph:
//
//  1. steppers advance
//  2. transforms propagate
//  3. Update is dispatched from the root
//  4. after-update hooks run
//  5. transforms propagate again, picking up changes made during Update
//  6. Render is dispatched into the queue, which is then sorted
type Runner struct {
	g        *grove.SceneGraph
	queue    *grove.RenderQueue
	view     grove.Matrix
	steppers []Stepper
	after    []func()
	metrics  *Metrics
	logger   *slog.Logger
	frame    uint64
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records per-frame instruments.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithView sets the root view matrix passed in every Render.
func WithView(view grove.Matrix) Option {
	return func(r *Runner) { r.view = view }
}

// WithStepper adds a Stepper, run in registration order.
func WithStepper(s Stepper) Option {
	return func(r *Runner) { r.steppers = append(r.steppers, s) }
}

// WithAfterUpdate adds a hook run after the Update pass.
func WithAfterUpdate(fn func()) Option {
	return func(r *Runner) { r.after = append(r.after, fn) }
}

// WithQueueCapacity sets the initial render queue capacity.
func WithQueueCapacity(n int) Option {
	return func(r *Runner) { r.queue = grove.NewRenderQueue(n) }
}

// WithLogger sets the structured logger. Defaults to the graph's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner for g.
func NewRunner(g *grove.SceneGraph, opts ...Option) *Runner {
	r := &Runner{
		g:      g,
		queue:  grove.NewRenderQueue(0),
		view:   grove.Identity,
		logger: g.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Frame returns the number of completed steps.
func (r *Runner) Frame() uint64 { return r.frame }

// Queue returns the render queue filled by the last Step.
func (r *Runner) Queue() *grove.RenderQueue { return r.queue }

// SetView replaces the root view matrix.
func (r *Runner) SetView(view grove.Matrix) { r.view = view }

// Resize dispatches a View action announcing the output size.
func (r *Runner) Resize(width, height float64) {
	r.dispatch(grove.View{Width: width, Height: height})
}

// Send dispatches an arbitrary action from the root.
func (r *Runner) Send(a grove.Action) grove.Outcome {
	return r.dispatch(a)
}

// Step runs one frame of dt seconds and returns the sorted render queue.
// The queue is reused by the next Step.
func (r *Runner) Step(dt float64) *grove.RenderQueue {
	start := time.Now()

	for _, s := range r.steppers {
		s.Step(dt)
	}
	r.g.UpdateTransforms()
	r.dispatch(grove.Update{DT: dt})
	for _, fn := range r.after {
		fn()
	}
	r.g.UpdateTransforms()

	r.queue.Reset()
	r.dispatch(grove.Render{Queue: r.queue, View: r.view})
	r.queue.Sort()

	r.frame++
	if m := r.metrics; m != nil {
		m.Frames.Inc()
		m.FrameDuration.Observe(time.Since(start).Seconds())
		m.RenderCommands.Set(float64(r.queue.Len()))
		m.Entities.Set(float64(r.g.NumEntities()))
	}
	return r.queue
}

// Run steps n frames of dt seconds each and returns the last queue.
func (r *Runner) Run(n int, dt float64) *grove.RenderQueue {
	for i := 0; i < n; i++ {
		r.Step(dt)
	}
	r.logger.Debug("frames run", "frames", n, "total", r.frame, "commands", r.queue.Len())
	return r.queue
}

// Loop steps at the given interval until ctx is done, calling onFrame with
// each queue. The elapsed wall time is passed as dt.
func (r *Runner) Loop(ctx context.Context, interval time.Duration, onFrame func(*grove.RenderQueue)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			q := r.Step(now.Sub(last).Seconds())
			last = now
			if onFrame != nil {
				onFrame(q)
			}
		}
	}
}

func (r *Runner) dispatch(a grove.Action) grove.Outcome {
	if r.metrics != nil {
		r.metrics.Actions.WithLabelValues(a.Name()).Inc()
	}
	return r.g.PerformAction(a)
}
