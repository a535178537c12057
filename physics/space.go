// Package physics binds scene graph entities to a Chipmunk space.
//
// A Space is registered as a grove.Service under ServiceName. Body
// components look it up through their entity's owner and register a body
// when they attach. After each Step the space writes body positions and
// angles back onto the bound entities.
package physics

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/internal/logging"
)

// ServiceName is the name a Space registers under.
const ServiceName = "physics"

const defaultIterations = 10

var (
	ErrAlreadyBound = errors.New("physics: entity already has a body")
	ErrInvalidShape = errors.New("physics: body size must be positive")
)

// BodyDef describes the box body created for an entity.
type BodyDef struct {
	Mass     float64
	Width    float64
	Height   float64
	Static   bool
	Friction float64
	// FixedRotation keeps the body from rotating.
	FixedRotation bool
}

// binding pairs an entity with its body and shape.
type binding struct {
	entity *grove.Entity
	body   *cp.Body
	shape  *cp.Shape
}

// Space owns the Chipmunk space and the entity/body bindings.
type Space struct {
	space    *cp.Space
	gravity  grove.Vec2
	bindings []*binding
	byEntity map[*grove.Entity]*binding
	logger   *slog.Logger
}

// Option configures a Space.
type Option func(*Space)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Space) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a space with the given gravity.
func New(gravity grove.Vec2, opts ...Option) *Space {
	space := cp.NewSpace()
	space.Iterations = defaultIterations
	space.SetGravity(cp.Vector{X: gravity.X, Y: gravity.Y})

	s := &Space{
		space:    space,
		gravity:  gravity,
		byEntity: make(map[*grove.Entity]*binding),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements grove.Service.
func (s *Space) Name() string { return ServiceName }

// Space returns the underlying Chipmunk space.
func (s *Space) Space() *cp.Space { return s.space }

// Gravity returns the current gravity.
func (s *Space) Gravity() grove.Vec2 { return s.gravity }

// SetGravity changes the gravity applied to dynamic bodies.
func (s *Space) SetGravity(g grove.Vec2) {
	s.gravity = g
	s.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

// Add creates a box body for e, posed at e's world origin and world angle.
// The pose is composed from the local transforms, so a freshly
// instantiated entity is placed correctly before its first transform pass.
func (s *Space) Add(e *grove.Entity, def BodyDef) (*cp.Body, error) {
	if _, ok := s.byEntity[e]; ok {
		return nil, fmt.Errorf("add %q: %w", e.Name, ErrAlreadyBound)
	}
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("add %q: %w: %vx%v", e.Name, ErrInvalidShape, def.Width, def.Height)
	}

	var body *cp.Body
	if def.Static {
		body = cp.NewStaticBody()
	} else {
		mass := def.Mass
		if mass <= 0 {
			mass = 1
		}
		moment := cp.MomentForBox(mass, def.Width, def.Height)
		if def.FixedRotation {
			moment = math.Inf(1)
		}
		body = cp.NewBody(mass, moment)
	}
	world := worldMatrix(e)
	origin := world.Origin()
	body.SetPosition(cp.Vector{X: origin.X, Y: origin.Y})
	body.SetAngle(angleOf(world))

	shape := cp.NewBox(body, def.Width, def.Height, 0)
	shape.SetFriction(def.Friction)

	s.space.AddBody(body)
	s.space.AddShape(shape)

	b := &binding{entity: e, body: body, shape: shape}
	s.bindings = append(s.bindings, b)
	s.byEntity[e] = b
	s.logger.Debug("body added", "entity", e.Name, "static", def.Static)
	return body, nil
}

// Remove removes the body bound to e. It reports whether one existed.
func (s *Space) Remove(e *grove.Entity) bool {
	b, ok := s.byEntity[e]
	if !ok {
		return false
	}
	s.detach(b)
	delete(s.byEntity, e)
	for i, other := range s.bindings {
		if other == b {
			s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
			break
		}
	}
	s.logger.Debug("body removed", "entity", e.Name)
	return true
}

func (s *Space) detach(b *binding) {
	s.space.RemoveShape(b.shape)
	s.space.RemoveBody(b.body)
}

// Body returns the body bound to e, or nil.
func (s *Space) Body(e *grove.Entity) *cp.Body {
	if b, ok := s.byEntity[e]; ok {
		return b.body
	}
	return nil
}

// Bodies returns the number of bound bodies.
func (s *Space) Bodies() int { return len(s.bindings) }

// Step advances the simulation by dt seconds and writes dynamic body poses
// back to their entities. Positions and angles are converted into the
// parent's space.
func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.space.Step(dt)
	for _, b := range s.bindings {
		if b.body.GetType() == cp.BODY_STATIC {
			continue
		}
		pos := b.body.Position()
		x, y := pos.X, pos.Y
		angle := b.body.Angle()
		if p := b.entity.Parent(); p != nil {
			pm := worldMatrix(p)
			x, y = pm.Invert().Apply(x, y)
			angle -= angleOf(pm)
		}
		b.entity.SetPosition(x, y)
		b.entity.SetRotation(angle)
	}
}

// worldMatrix composes e's local transforms up to its root. Unlike
// Entity.World it does not depend on a transform pass having run.
func worldMatrix(e *grove.Entity) grove.Matrix {
	m := grove.Identity
	for p := e; p != nil; p = p.Parent() {
		m = grove.ComposeMatrix(p.Position(), p.Rotation(), p.ScaleXY()).Mul(m)
	}
	return m
}

// angleOf returns the rotation of m's x axis.
func angleOf(m grove.Matrix) float64 {
	return math.Atan2(m[1], m[0])
}

// Close removes every body.
func (s *Space) Close() error {
	for _, b := range s.bindings {
		s.detach(b)
	}
	s.bindings = nil
	clear(s.byEntity)
	return nil
}
