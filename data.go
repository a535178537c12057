package grove

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EntityData describes an entity subtree. It is what Serialize produces and
// what Deserialize and SceneGraph.BuildEntity consume.
type EntityData struct {
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Tag        string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Active     *bool          `json:"active,omitempty" yaml:"active,omitempty"`
	Meta       map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
	Transform  *TransformData `json:"transform,omitempty" yaml:"transform,omitempty"`
	Components ComponentList  `json:"components,omitempty" yaml:"components,omitempty"`
	Children   []*EntityData  `json:"children,omitempty" yaml:"children,omitempty"`
}

// TransformData holds the local transform of an EntityData. Rotation is in
// degrees. Nil fields leave the entity's current value untouched.
type TransformData struct {
	Position *Vec2    `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation *float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    *Vec2    `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ComponentEntry is one component of an EntityData.
type ComponentEntry struct {
	Type       string
	Properties map[string]any
}

// ComponentList is an ordered set of components. It is written as a mapping
// from type name to properties and keeps document order, which becomes
// attachment order.
type ComponentList []ComponentEntry

// Get returns the properties stored for typeName.
func (l ComponentList) Get(typeName string) (map[string]any, bool) {
	for _, ce := range l {
		if ce.Type == typeName {
			return ce.Properties, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the list as a JSON object in list order.
func (l ComponentList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ce := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ce.Type)
		if err != nil {
			return nil, err
		}
		props := ce.Properties
		if props == nil {
			props = map[string]any{}
		}
		val, err := json.Marshal(props)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", ce.Type, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (l *ComponentList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("components: expected object, got %v", tok)
	}
	var out ComponentList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("components: expected type name, got %v", tok)
		}
		var props map[string]any
		if err := dec.Decode(&props); err != nil {
			return fmt.Errorf("components: %q: %w", name, err)
		}
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, ComponentEntry{Type: name, Properties: props})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// MarshalYAML encodes the list as a YAML mapping in list order.
func (l ComponentList) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, ce := range l {
		props := ce.Properties
		if props == nil {
			props = map[string]any{}
		}
		val := &yaml.Node{}
		if err := val.Encode(props); err != nil {
			return nil, fmt.Errorf("component %q: %w", ce.Type, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: ce.Type}, val)
	}
	return n, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping key order.
func (l *ComponentList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("components: line %d: expected mapping", n.Line)
	}
	out := make(ComponentList, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		var props map[string]any
		if err := n.Content[i+1].Decode(&props); err != nil {
			return fmt.Errorf("components: %q: %w", name, err)
		}
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, ComponentEntry{Type: name, Properties: props})
	}
	*l = out
	return nil
}

// Count returns the number of entities and components in the subtree.
func (d *EntityData) Count() (entities, components int) {
	if d == nil {
		return 0, 0
	}
	entities, components = 1, len(d.Components)
	for _, c := range d.Children {
		ce, cc := c.Count()
		entities += ce
		components += cc
	}
	return entities, components
}

// --- Entity (de)serialization ---

// Serialize captures e and its subtree. Rotation is written in degrees and
// components in attachment order.
func (e *Entity) Serialize() *EntityData {
	active := e.active
	rot := e.RotationDegrees()
	pos := e.position
	scale := e.scale
	d := &EntityData{
		Name:   e.Name,
		Tag:    e.Tag,
		Active: &active,
		Meta:   maps.Clone(e.Meta),
		Transform: &TransformData{
			Position: &pos,
			Rotation: &rot,
			Scale:    &scale,
		},
	}
	for _, ac := range e.components {
		d.Components = append(d.Components, ComponentEntry{
			Type:       ac.name,
			Properties: SerializeComponent(ac.component),
		})
	}
	for _, child := range e.children {
		d.Children = append(d.Children, child.Serialize())
	}
	return d
}

// Deserialize applies d to e using e's owner to create components that are
// not attached yet. See DeserializeWith.
func (e *Entity) Deserialize(d *EntityData) error {
	return e.DeserializeWith(e.owner, d)
}

// DeserializeWith applies d to e. Identity and transform fields present in d
// overwrite e's. Components already attached under an entry's type name are
// updated in place; others are created through g's factories and attached.
// Children are matched by index: existing children are deserialized in
// place, extra entries are built with g and appended.
func (e *Entity) DeserializeWith(g *SceneGraph, d *EntityData) error {
	if d == nil {
		return nil
	}
	if err := e.applyData(d); err != nil {
		return err
	}
	for _, ce := range d.Components {
		if c := e.Component(ce.Type); c != nil {
			if err := DeserializeComponent(c, ce.Properties); err != nil {
				return fmt.Errorf("entity %q: component %q: %w", e.Name, ce.Type, err)
			}
			continue
		}
		if g == nil {
			return fmt.Errorf("entity %q: component %q: %w", e.Name, ce.Type, ErrUnknownComponentType)
		}
		c, err := g.CreateComponent(ce.Type, ce.Properties)
		if err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
		if err := e.AttachComponent(ce.Type, c); err != nil {
			return err
		}
	}
	for i, cd := range d.Children {
		if i < len(e.children) {
			if err := e.children[i].DeserializeWith(g, cd); err != nil {
				return err
			}
			continue
		}
		if g == nil {
			return fmt.Errorf("entity %q: child %d: no scene graph to build with", e.Name, i)
		}
		child, err := g.BuildEntity(cd)
		if err != nil {
			return err
		}
		child.Reparent(e, -1)
	}
	return nil
}

// applyData copies identity, activity and transform fields from d.
func (e *Entity) applyData(d *EntityData) error {
	if d.Name != "" {
		e.Name = d.Name
	}
	if d.Tag != "" {
		e.Tag = d.Tag
	}
	if d.Active != nil {
		e.active = *d.Active
	}
	if d.Meta != nil {
		e.Meta = maps.Clone(d.Meta)
	}
	if t := d.Transform; t != nil {
		if t.Position != nil {
			if !finiteVec(*t.Position) {
				return fmt.Errorf("entity %q: position: %w: %v", e.Name, ErrInvalidVec2, *t.Position)
			}
			e.SetPosition(t.Position.X, t.Position.Y)
		}
		if t.Rotation != nil {
			if math.IsNaN(*t.Rotation) || math.IsInf(*t.Rotation, 0) {
				return fmt.Errorf("entity %q: rotation: %w: %v", e.Name, ErrInvalidProperty, *t.Rotation)
			}
			e.SetRotationDegrees(*t.Rotation)
		}
		if t.Scale != nil {
			if !finiteVec(*t.Scale) {
				return fmt.Errorf("entity %q: scale: %w: %v", e.Name, ErrInvalidVec2, *t.Scale)
			}
			e.SetScale(t.Scale.X, t.Scale.Y)
		}
	}
	return nil
}

func finiteVec(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

var componentListType = reflect.TypeOf(ComponentList{})

// DecodeEntityData converts a generic bag, such as one produced by another
// decoder, into an EntityData. Components may be a mapping (applied in sorted
// type order, since a Go map has none) or a sequence of one-key mappings
// (applied in sequence order).
func DecodeEntityData(m map[string]any) (*EntityData, error) {
	var d EntityData
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &d,
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  entityDataDecodeHook,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode entity data: %w", err)
	}
	return &d, nil
}

func entityDataDecodeHook(from, to reflect.Type, data any) (any, error) {
	if to == componentListType {
		return decodeComponentList(data)
	}
	return propertyDecodeHook(from, to, data)
}

func decodeComponentList(data any) (ComponentList, error) {
	switch v := data.(type) {
	case ComponentList:
		return v, nil
	case map[string]any:
		out := make(ComponentList, 0, len(v))
		for _, name := range slices.Sorted(maps.Keys(v)) {
			props, err := componentProps(name, v[name])
			if err != nil {
				return nil, err
			}
			out = append(out, ComponentEntry{Type: name, Properties: props})
		}
		return out, nil
	case []any:
		out := make(ComponentList, 0, len(v))
		for i, item := range v {
			entry, ok := item.(map[string]any)
			if !ok || len(entry) != 1 {
				return nil, fmt.Errorf("components[%d]: expected a single-key mapping", i)
			}
			for name, raw := range entry {
				props, err := componentProps(name, raw)
				if err != nil {
					return nil, err
				}
				out = append(out, ComponentEntry{Type: name, Properties: props})
			}
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("components: unexpected %T", data)
}

func componentProps(name string, raw any) (map[string]any, error) {
	switch p := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return p, nil
	}
	return nil, fmt.Errorf("components: %q: expected mapping, got %T", name, raw)
}
