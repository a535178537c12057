package components

import (
	"fmt"
	"math"
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/grove"
)

// Animated properties.
const (
	TweenPosition = "position"
	TweenScale    = "scale"
	TweenRotation = "rotation"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

func easingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Tween animates one transform property of its entity on Update. The start
// value is captured on the first Update. For rotation only To.X is used, in
// degrees. A looping tween restarts from the captured start value.
type Tween struct {
	grove.BaseComponent
	Property string     `prop:"property"`
	To       grove.Vec2 `prop:"to"`
	Duration float64    `prop:"duration"`
	Ease     string     `prop:"ease"`
	Loop     bool       `prop:"loop"`

	tweens [2]*gween.Tween
	count  int
	done   bool
}

// NewTween returns a linear position tween.
func NewTween() *Tween {
	return &Tween{Property: TweenPosition, Ease: "linear", Duration: 1}
}

// Schema implements grove.Schemer.
func (t *Tween) Schema() grove.Schema {
	return grove.Schema{
		"property": grove.Enum(TweenPosition, TweenScale, TweenRotation),
		"to":       grove.Vec2Type,
		"duration": grove.Number,
		"ease":     grove.Enum(easingNames()...),
		"loop":     grove.Boolean,
	}
}

// SetProperty validates the enumerated properties and restarts the tween.
func (t *Tween) SetProperty(name string, value any) error {
	switch name {
	case "property":
		s, _ := value.(string)
		if s != TweenPosition && s != TweenScale && s != TweenRotation {
			return fmt.Errorf("tween property %v: %w", value, grove.ErrInvalidProperty)
		}
	case "ease":
		s, _ := value.(string)
		if _, ok := easings[s]; !ok {
			return fmt.Errorf("tween ease %v: %w", value, grove.ErrInvalidProperty)
		}
	}
	if err := grove.AssignProperty(t, name, value); err != nil {
		return err
	}
	t.Restart()
	return nil
}

// Restart discards progress; the next Update captures a new start value.
func (t *Tween) Restart() {
	t.tweens = [2]*gween.Tween{}
	t.count = 0
	t.done = false
}

// Done reports whether a non-looping tween has finished.
func (t *Tween) Done() bool { return t.done }

// HandleAction advances the tween on Update.
func (t *Tween) HandleAction(a grove.Action) grove.Outcome {
	u, ok := a.(grove.Update)
	if !ok || t.done {
		return grove.Pass
	}
	if t.count == 0 {
		t.start()
	}

	var vals [2]float64
	finished := true
	for i := 0; i < t.count; i++ {
		v, fin := t.tweens[i].Update(float32(u.DT))
		vals[i] = float64(v)
		if !fin {
			finished = false
		}
	}
	t.apply(vals)

	if finished {
		if t.Loop {
			for i := 0; i < t.count; i++ {
				t.tweens[i].Reset()
			}
		} else {
			t.done = true
		}
	}
	return grove.Pass
}

func (t *Tween) start() {
	e := t.Entity()
	fn := easings[t.Ease]
	if fn == nil {
		fn = ease.Linear
	}
	d := float32(t.Duration)
	switch t.Property {
	case TweenScale:
		s := e.ScaleXY()
		t.tweens[0] = gween.New(float32(s.X), float32(t.To.X), d, fn)
		t.tweens[1] = gween.New(float32(s.Y), float32(t.To.Y), d, fn)
		t.count = 2
	case TweenRotation:
		t.tweens[0] = gween.New(float32(e.Rotation()), float32(t.To.X*math.Pi/180), d, fn)
		t.count = 1
	default:
		p := e.Position()
		t.tweens[0] = gween.New(float32(p.X), float32(t.To.X), d, fn)
		t.tweens[1] = gween.New(float32(p.Y), float32(t.To.Y), d, fn)
		t.count = 2
	}
}

func (t *Tween) apply(vals [2]float64) {
	e := t.Entity()
	switch t.Property {
	case TweenScale:
		e.SetScale(vals[0], vals[1])
	case TweenRotation:
		e.SetRotation(vals[0])
	default:
		e.SetPosition(vals[0], vals[1])
	}
}
