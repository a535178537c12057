package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Region is a named sub-rectangle of an atlas page.
type Region struct {
	Page          int
	X, Y          int
	Width, Height int
	SourceW       int // untrimmed size as authored
	SourceH       int
	OffsetX       int // trim offset
	OffsetY       int
	Rotated       bool // stored 90 degrees clockwise
}

// Atlas maps texture names to regions of one or more page images.
type Atlas struct {
	Pages   []*ebiten.Image
	regions map[string]Region
}

var ErrInvalidAtlas = errors.New("render: invalid atlas")

type atlasRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type atlasFrame struct {
	Frame            atlasRect `json:"frame"`
	Rotated          bool      `json:"rotated"`
	SpriteSourceSize atlasRect `json:"spriteSourceSize"`
	SourceSize       struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"sourceSize"`
}

// LoadAtlas parses TexturePacker JSON in either the single-page hash format
// ("frames") or the multi-page array format ("textures").
func LoadAtlas(data []byte, pages []*ebiten.Image) (*Atlas, error) {
	var doc struct {
		Frames   map[string]atlasFrame `json:"frames"`
		Textures []struct {
			Frames map[string]atlasFrame `json:"frames"`
		} `json:"textures"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAtlas, err)
	}

	a := &Atlas{Pages: pages, regions: make(map[string]Region)}
	switch {
	case doc.Textures != nil:
		for page, tex := range doc.Textures {
			for name, f := range tex.Frames {
				a.regions[name] = f.region(page)
			}
		}
	case doc.Frames != nil:
		for name, f := range doc.Frames {
			a.regions[name] = f.region(0)
		}
	default:
		return nil, fmt.Errorf("%w: neither \"frames\" nor \"textures\" present", ErrInvalidAtlas)
	}
	return a, nil
}

func (f atlasFrame) region(page int) Region {
	return Region{
		Page:    page,
		X:       f.Frame.X,
		Y:       f.Frame.Y,
		Width:   f.Frame.W,
		Height:  f.Frame.H,
		SourceW: f.SourceSize.W,
		SourceH: f.SourceSize.H,
		OffsetX: f.SpriteSourceSize.X,
		OffsetY: f.SpriteSourceSize.Y,
		Rotated: f.Rotated,
	}
}

// Region looks up a texture by name.
func (a *Atlas) Region(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// image resolves r to a sub-image and the local transform that undoes
// rotation and trimming. It returns nil when the page is missing.
func (a *Atlas) image(r Region) (*ebiten.Image, ebiten.GeoM) {
	var geo ebiten.GeoM
	if r.Page < 0 || r.Page >= len(a.Pages) || a.Pages[r.Page] == nil {
		return nil, geo
	}
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	if r.Rotated {
		rect = image.Rect(r.X, r.Y, r.X+r.Height, r.Y+r.Width)
		geo.Rotate(-1.5707963267948966)
		geo.Translate(0, float64(r.Width))
	}
	if r.OffsetX != 0 || r.OffsetY != 0 {
		geo.Translate(float64(r.OffsetX), float64(r.OffsetY))
	}
	return a.Pages[r.Page].SubImage(rect).(*ebiten.Image), geo
}
