package components

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/phanxgames/grove"
)

// Script runs a tengo program on every Update. The program sees the
// globals dt, x, y, rotation (degrees) and handled; x, y and rotation are
// written back to the entity afterwards, and setting handled to true
// consumes the update.
//
// The source is compiled on the first Update. A compile or runtime error
// disables the script until its source changes.
type Script struct {
	grove.BaseComponent
	Source string `prop:"source"`

	compiled *tengo.Compiled
	err      error
}

// Schema implements grove.Schemer.
func (s *Script) Schema() grove.Schema {
	return grove.Schema{"source": grove.String}
}

// SetProperty recompiles on the next Update when the source changes.
func (s *Script) SetProperty(name string, value any) error {
	if err := grove.AssignProperty(s, name, value); err != nil {
		return err
	}
	if name == "source" {
		s.compiled = nil
		s.err = nil
	}
	return nil
}

// Err returns the error that disabled the script, if any.
func (s *Script) Err() error { return s.err }

func (s *Script) compile() error {
	script := tengo.NewScript([]byte(s.Source))
	_ = script.Add("dt", 0.0)
	_ = script.Add("x", 0.0)
	_ = script.Add("y", 0.0)
	_ = script.Add("rotation", 0.0)
	_ = script.Add("handled", false)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("script compile: %w", err)
	}
	s.compiled = compiled
	return nil
}

// HandleAction runs the script on Update.
func (s *Script) HandleAction(a grove.Action) grove.Outcome {
	u, ok := a.(grove.Update)
	if !ok || s.err != nil || s.Source == "" {
		return grove.Pass
	}
	if s.compiled == nil {
		if err := s.compile(); err != nil {
			s.fail(err)
			return grove.Pass
		}
	}
	handled, err := s.run(u.DT)
	if err != nil {
		s.fail(err)
		return grove.Pass
	}
	if handled {
		return grove.Consumed
	}
	return grove.Pass
}

func (s *Script) run(dt float64) (bool, error) {
	e := s.Entity()
	pos := e.Position()
	c := s.compiled
	for name, v := range map[string]any{
		"dt":       dt,
		"x":        pos.X,
		"y":        pos.Y,
		"rotation": e.RotationDegrees(),
		"handled":  false,
	} {
		if err := c.Set(name, v); err != nil {
			return false, fmt.Errorf("script set %s: %w", name, err)
		}
	}
	if err := c.Run(); err != nil {
		return false, fmt.Errorf("script run: %w", err)
	}

	x, y := c.Get("x").Float(), c.Get("y").Float()
	if x != pos.X || y != pos.Y {
		e.SetPosition(x, y)
	}
	if rot := c.Get("rotation").Float(); rot != e.RotationDegrees() {
		e.SetRotationDegrees(rot)
	}
	return c.Get("handled").Bool(), nil
}

func (s *Script) fail(err error) {
	s.err = err
	e := s.Entity()
	if g := e.Owner(); g != nil {
		g.Logger().Error("script disabled", "entity", e.Path(), "error", err)
	}
}
