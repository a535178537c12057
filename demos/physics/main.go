// physics drops a pile of crates into a walled box. Each crate carries a
// Body component backed by the shared physics space and a blast component
// that reacts to "explode" messages. Click to explode at the cursor.
package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/components"
	"github.com/phanxgames/grove/frame"
	"github.com/phanxgames/grove/internal/logging"
	"github.com/phanxgames/grove/physics"
	"github.com/phanxgames/grove/render"
)

const (
	screenW    = 1280
	screenH    = 720
	crateCount = 100
	gravity    = 500
	wall       = 20

	blastType   = "Blast"
	blastRadius = 350.0
	blastForce  = 900.0
)

// blast applies a radial impulse to its entity's body when an explode
// message arrives. Args carry the blast origin.
type blast struct {
	grove.BaseComponent
}

func (b *blast) HandleAction(a grove.Action) grove.Outcome {
	m, ok := a.(grove.Message)
	if !ok || m.Kind != "explode" || len(m.Args) != 2 {
		return grove.Pass
	}
	body, ok := grove.ComponentOf[*components.Body](b.Entity(), components.BodyType)
	if !ok || body.CP() == nil {
		return grove.Pass
	}
	x, y := m.Args[0].(float64), m.Args[1].(float64)
	p := body.CP().Position()
	dx, dy := p.X-x, p.Y-y
	dist := math.Hypot(dx, dy)
	if dist > blastRadius || dist < 0.1 {
		return grove.Pass
	}
	strength := blastForce * (1 - dist/blastRadius)
	body.CP().ApplyImpulseAtWorldPoint(cp.Vector{X: dx / dist * strength, Y: dy / dist * strength}, p)
	return grove.Pass
}

func wallData(name string, x, y, w, h float64) *grove.EntityData {
	return &grove.EntityData{
		Name:      name,
		Transform: &grove.TransformData{Position: &grove.Vec2{X: x, Y: y}},
		Components: grove.ComponentList{{Type: components.BodyType, Properties: map[string]any{
			"static": true, "width": w, "height": h,
		}}},
		Children: []*grove.EntityData{visual(w, h, "#303048", 0)},
	}
}

func visual(w, h float64, c string, layer int) *grove.EntityData {
	return &grove.EntityData{
		Name: "visual",
		Transform: &grove.TransformData{
			Position: &grove.Vec2{X: -w / 2, Y: -h / 2},
			Scale:    &grove.Vec2{X: w, Y: h},
		},
		Components: grove.ComponentList{{Type: components.SpriteType, Properties: map[string]any{
			"texture": "box.png", "color": c, "layer": layer,
		}}},
	}
}

func buildScene() *grove.EntityData {
	root := &grove.EntityData{Name: "box", Children: []*grove.EntityData{
		wallData("floor", screenW/2, screenH-wall/2, screenW, wall),
		wallData("left", wall/2, screenH/2, wall, screenH),
		wallData("right", screenW-wall/2, screenH/2, wall, screenH),
	}}
	for i := range crateCount {
		size := 20 + rand.Float64()*30
		c := fmt.Sprintf("#%02x%02x%02x", 80+rand.IntN(176), 80+rand.IntN(176), 80+rand.IntN(176))
		root.Children = append(root.Children, &grove.EntityData{
			Name: fmt.Sprintf("crate-%d", i),
			Transform: &grove.TransformData{Position: &grove.Vec2{
				X: 100 + rand.Float64()*(screenW-200),
				Y: -rand.Float64() * screenH,
			}},
			Components: grove.ComponentList{
				{Type: components.BodyType, Properties: map[string]any{"mass": size / 20, "width": size, "height": size}},
				{Type: blastType},
			},
			Children: []*grove.EntityData{visual(size, size, c, 1)},
		})
	}
	return root
}

type demo struct {
	runner   *frame.Runner
	renderer *render.Renderer
	space    *physics.Space
	queue    *grove.RenderQueue
}

func (d *demo) Update() error {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		d.runner.Send(grove.Message{Kind: "explode", Args: []any{float64(x), float64(y)}})
	}
	d.queue = d.runner.Step(1.0 / float64(ebiten.TPS()))
	return nil
}

func (d *demo) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 15, G: 15, B: 23, A: 255})
	if d.queue != nil {
		d.renderer.Draw(screen, d.queue)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.0f  bodies: %d  click to explode", ebiten.ActualFPS(), d.space.Bodies()))
}

func (d *demo) Layout(w, h int) (int, int) { return screenW, screenH }

func main() {
	logger := logging.New(slog.LevelInfo)
	services := grove.NewServices()
	space := physics.New(grove.Vec2{Y: gravity}, physics.WithLogger(logger))
	if err := services.Register(space); err != nil {
		log.Fatal(err)
	}
	defer services.Close()

	g := grove.New(grove.WithLogger(logger), grove.WithServices(services))
	if err := components.RegisterAll(g); err != nil {
		log.Fatal(err)
	}
	if err := g.RegisterComponent(blastType, func() grove.Component { return &blast{} }); err != nil {
		log.Fatal(err)
	}
	if err := services.Init(); err != nil {
		log.Fatal(err)
	}
	if _, err := g.Instantiate(buildScene(), nil); err != nil {
		log.Fatal(err)
	}

	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	r := render.New(render.WithLogger(logger))
	r.SetTexture("box.png", img)

	d := &demo{runner: frame.NewRunner(g, frame.WithStepper(space)), renderer: r, space: space}
	ebiten.SetWindowTitle("Grove - Physics Demo")
	ebiten.SetWindowSize(screenW, screenH)
	if err := ebiten.RunGame(d); err != nil {
		log.Fatal(err)
	}
}
