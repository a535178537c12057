// Package render draws a grove render queue onto an ebiten image.
package render

import (
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/internal/logging"
)

// ServiceName is the name a Renderer registers under.
const ServiceName = "render"

// Renderer resolves texture names to images and draws queued commands.
// Standalone textures take precedence over atlas regions. Missing textures
// draw as a 1x1 magenta placeholder and are logged once per name.
type Renderer struct {
	textures map[string]*ebiten.Image
	atlases  []*Atlas
	missing  map[string]bool
	logger   *slog.Logger
	op       ebiten.DrawImageOptions
	drawn    int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		textures: make(map[string]*ebiten.Image),
		missing:  make(map[string]bool),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements grove.Service.
func (r *Renderer) Name() string { return ServiceName }

// Close drops every texture and atlas.
func (r *Renderer) Close() error {
	clear(r.textures)
	r.atlases = nil
	return nil
}

// SetTexture registers img under name, replacing any previous image.
func (r *Renderer) SetTexture(name string, img *ebiten.Image) {
	r.textures[name] = img
	delete(r.missing, name)
}

// AddAtlas makes the atlas regions available by name.
func (r *Renderer) AddAtlas(a *Atlas) {
	r.atlases = append(r.atlases, a)
}

// LoadTextures decodes each named image file from fsys and registers it
// under its file name.
func (r *Renderer) LoadTextures(fsys fs.FS, names ...string) error {
	for _, name := range names {
		img, _, err := ebitenutil.NewImageFromFileSystem(fsys, name)
		if err != nil {
			return fmt.Errorf("render: load texture %s: %w", name, err)
		}
		r.SetTexture(name, img)
	}
	return nil
}

// Drawn returns the number of commands drawn by the last Draw.
func (r *Renderer) Drawn() int { return r.drawn }

// Draw submits every command in q, in queue order, to target.
func (r *Renderer) Draw(target *ebiten.Image, q *grove.RenderQueue) {
	r.drawn = 0
	for _, cmd := range q.Commands() {
		img, local := r.resolve(cmd.Texture)
		op := &r.op
		op.GeoM = local
		op.GeoM.Concat(GeoM(cmd.Transform))
		op.ColorScale = ColorScale(cmd.Color)
		target.DrawImage(img, op)
		r.drawn++
	}
}

func (r *Renderer) resolve(name string) (*ebiten.Image, ebiten.GeoM) {
	if img, ok := r.textures[name]; ok && img != nil {
		return img, ebiten.GeoM{}
	}
	for _, a := range r.atlases {
		if region, ok := a.Region(name); ok {
			if img, geo := a.image(region); img != nil {
				return img, geo
			}
		}
	}
	if !r.missing[name] {
		r.missing[name] = true
		r.logger.Warn("texture not found, using placeholder", "texture", name)
	}
	return placeholder(), ebiten.GeoM{}
}

var magenta *ebiten.Image

func placeholder() *ebiten.Image {
	if magenta == nil {
		magenta = ebiten.NewImage(1, 1)
		magenta.Fill(color.RGBA{R: 255, B: 255, A: 255})
	}
	return magenta
}

// GeoM converts an affine matrix to ebiten's representation.
func GeoM(m grove.Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// ColorScale converts a straight-alpha tint to ebiten's premultiplied scale.
func ColorScale(c grove.Color) ebiten.ColorScale {
	var s ebiten.ColorScale
	a := float32(c.A)
	s.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	return s
}
