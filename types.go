package grove

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec2 is a 2D vector used for positions, scales, offsets and sizes
// throughout the API.
//
// In subtree descriptions a Vec2 is written either as a single number
// (uniform on both axes) or as a two-element sequence.
type Vec2 struct {
	X, Y float64
}

// Uniform returns a Vec2 with both components set to v.
func Uniform(v float64) Vec2 {
	return Vec2{v, v}
}

// MarshalJSON encodes the vector as [x, y].
func (v Vec2) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{v.X, v.Y})
}

// UnmarshalJSON accepts a number or a two-element array.
func (v *Vec2) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVec2, err)
	}
	parsed, err := ParseVec2(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the vector as a flow sequence.
func (v Vec2) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	n.Content = []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.X, 'g', -1, 64)},
		{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Y, 'g', -1, 64)},
	}
	return n, nil
}

// UnmarshalYAML accepts a number or a two-element sequence.
func (v *Vec2) UnmarshalYAML(n *yaml.Node) error {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVec2, err)
	}
	parsed, err := ParseVec2(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVec2 converts a loosely typed value into a Vec2. A number is applied
// uniformly to both axes; a sequence must hold exactly two numbers. Anything
// else fails with ErrInvalidVec2.
func ParseVec2(v any) (Vec2, error) {
	if f, ok := toFloat(v); ok {
		return Vec2{f, f}, nil
	}
	switch t := v.(type) {
	case Vec2:
		return t, nil
	case *Vec2:
		if t != nil {
			return *t, nil
		}
	case [2]float64:
		return Vec2{t[0], t[1]}, nil
	case []float64:
		if len(t) == 2 {
			return Vec2{t[0], t[1]}, nil
		}
		return Vec2{}, fmt.Errorf("%w: sequence of length %d", ErrInvalidVec2, len(t))
	case []any:
		if len(t) != 2 {
			return Vec2{}, fmt.Errorf("%w: sequence of length %d", ErrInvalidVec2, len(t))
		}
		x, okX := toFloat(t[0])
		y, okY := toFloat(t[1])
		if !okX || !okY {
			return Vec2{}, fmt.Errorf("%w: non-numeric element in %v", ErrInvalidVec2, t)
		}
		return Vec2{x, y}, nil
	}
	return Vec2{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidVec2, v)
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// MarshalJSON encodes the color as [r, g, b, a].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON accepts the forms understood by ParseColor.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	parsed, err := ParseColor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color as a flow sequence [r, g, b, a].
func (c Color) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, ch := range [4]float64{c.R, c.G, c.B, c.A} {
		n.Content = append(n.Content, &yaml.Node{
			Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(ch, 'g', -1, 64),
		})
	}
	return n, nil
}

// UnmarshalYAML accepts the forms understood by ParseColor.
func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	parsed, err := ParseColor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor converts a loosely typed value into a Color. Accepted forms are
// a Color, a sequence of three or four numbers in [0, 1], and a hex string
// "#rrggbb" or "#rrggbbaa".
func ParseColor(v any) (Color, error) {
	switch t := v.(type) {
	case Color:
		return t, nil
	case *Color:
		if t != nil {
			return *t, nil
		}
	case string:
		return parseHexColor(t)
	case []float64:
		anys := make([]any, len(t))
		for i, f := range t {
			anys[i] = f
		}
		return ParseColor(anys)
	case []any:
		if len(t) != 3 && len(t) != 4 {
			return Color{}, fmt.Errorf("%w: sequence of length %d", ErrInvalidColor, len(t))
		}
		var ch [4]float64
		ch[3] = 1
		for i, e := range t {
			f, ok := toFloat(e)
			if !ok {
				return Color{}, fmt.Errorf("%w: non-numeric element in %v", ErrInvalidColor, t)
			}
			ch[i] = f
		}
		return Color{ch[0], ch[1], ch[2], ch[3]}, nil
	}
	return Color{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidColor, v)
}

func parseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{
		R: float64(n>>24&0xff) / 255,
		G: float64(n>>16&0xff) / 255,
		B: float64(n>>8&0xff) / 255,
		A: float64(n&0xff) / 255,
	}, nil
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// toFloat reports the numeric value of v for every Go numeric kind that JSON,
// YAML and hand-built property bags produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
