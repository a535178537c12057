package grove

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseVec2(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Vec2
		wantErr bool
	}{
		{"float", 2.5, Vec2{2.5, 2.5}, false},
		{"int", 3, Vec2{3, 3}, false},
		{"json number", json.Number("4"), Vec2{4, 4}, false},
		{"pair", []any{1, 2.5}, Vec2{1, 2.5}, false},
		{"array", [2]float64{7, 8}, Vec2{7, 8}, false},
		{"pointer", &Vec2{1, 1}, Vec2{1, 1}, false},
		{"short", []any{1}, Vec2{}, true},
		{"long", []float64{1, 2, 3}, Vec2{}, true},
		{"non numeric", []any{"a", 1}, Vec2{}, true},
		{"string", "1,2", Vec2{}, true},
		{"nil", nil, Vec2{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVec2(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVec2) {
					t.Errorf("err = %v, want ErrInvalidVec2", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec2JSON(t *testing.T) {
	var v Vec2
	must(t, json.Unmarshal([]byte(`5`), &v))
	if v != (Vec2{5, 5}) {
		t.Errorf("uniform = %v", v)
	}
	must(t, json.Unmarshal([]byte(`[1, -2]`), &v))
	if v != (Vec2{1, -2}) {
		t.Errorf("pair = %v", v)
	}
	out, err := json.Marshal(Vec2{1.5, 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[1.5,2]" {
		t.Errorf("marshal = %s", out)
	}
}

func TestVec2YAML(t *testing.T) {
	var holder struct {
		V Vec2 `yaml:"v"`
	}
	must(t, yaml.Unmarshal([]byte("v: 3"), &holder))
	if holder.V != (Vec2{3, 3}) {
		t.Errorf("uniform = %v", holder.V)
	}
	must(t, yaml.Unmarshal([]byte("v: [4, 5]"), &holder))
	if holder.V != (Vec2{4, 5}) {
		t.Errorf("pair = %v", holder.V)
	}
	if err := yaml.Unmarshal([]byte("v: [1, 2, 3]"), &holder); !errors.Is(err, ErrInvalidVec2) {
		t.Errorf("err = %v, want ErrInvalidVec2", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Color
		wantErr bool
	}{
		{"rgb", []any{1, 0.5, 0}, Color{1, 0.5, 0, 1}, false},
		{"rgba", []float64{0, 0, 0, 0.5}, Color{0, 0, 0, 0.5}, false},
		{"hex", "#ff0000", Color{1, 0, 0, 1}, false},
		{"hex alpha", "00ff0000", Color{0, 1, 0, 0}, false},
		{"bad hex", "#zzzzzz", Color{}, true},
		{"short", []any{1, 1}, Color{}, true},
		{"number", 1.0, Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("err = %v, want ErrInvalidColor", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	if !r.Contains(10, 10) || !r.Contains(15, 15) || !r.Contains(12, 13) {
		t.Error("points inside or on the edge should be contained")
	}
	if r.Contains(9.9, 12) || r.Contains(12, 15.1) {
		t.Error("points outside should not be contained")
	}
}
