package grove

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Component is a behavior unit owned by at most one entity at a time.
//
// Implementations embed BaseComponent, which carries the owner
// back-reference, and opt into capabilities by implementing any of
// ActionHandler, ActionRewriter, Attacher, Detacher, Disposer, Schemer,
// PropertyEncoder and PropertySetter.
type Component interface {
	Entity() *Entity
	TypeName() string
	base() *BaseComponent
}

// BaseComponent is embedded by every component.
type BaseComponent struct {
	entity   *Entity
	typeName string
	extra    map[string]any
}

// Entity returns the owning entity, or nil when detached.
func (b *BaseComponent) Entity() *Entity { return b.entity }

// TypeName returns the name the component is attached under, or "" when detached.
func (b *BaseComponent) TypeName() string { return b.typeName }

// Extra returns the properties that were set on the component but matched
// no field. They are kept but never serialized.
func (b *BaseComponent) Extra() map[string]any { return b.extra }

func (b *BaseComponent) base() *BaseComponent { return b }

// Services returns the service registry of the owning scene graph, or nil.
func (b *BaseComponent) Services() *Services {
	if b.entity == nil || b.entity.owner == nil {
		return nil
	}
	return b.entity.owner.services
}

// --- Capabilities ---

// ActionHandler receives dispatched actions. Returning Consumed stops the
// action from reaching the entity's children.
type ActionHandler interface {
	HandleAction(a Action) Outcome
}

// ActionRewriter may replace the action seen by the remaining components of
// the entity and by its children. A nil result keeps the current action.
type ActionRewriter interface {
	RewriteAction(a Action) Action
}

// Attacher is notified when the component becomes connected to a scene graph
// that triggers lifecycle events.
type Attacher interface {
	OnAttach()
}

// Detacher is notified before the component is disconnected from such a
// scene graph.
type Detacher interface {
	OnDetach()
}

// Disposer releases resources held by the component.
type Disposer interface {
	Dispose()
}

// Schemer declares the serialized properties of a component.
type Schemer interface {
	Schema() Schema
}

// PropertyEncoder is the per-property serialization hook. It receives the
// default value (see PropertyValue) and returns what gets serialized; a nil
// result omits the property.
type PropertyEncoder interface {
	EncodeProperty(name string, value any) any
}

// PropertySetter is the per-property setup hook. Implementations that only
// special-case some properties delegate the rest to AssignProperty.
type PropertySetter interface {
	SetProperty(name string, value any) error
}

// --- Serialization ---

// SerializeComponent returns the component's schema-declared properties.
// Properties whose encoded value is nil are omitted. Components without a
// schema serialize to an empty map.
func SerializeComponent(c Component) map[string]any {
	out := make(map[string]any)
	s, ok := c.(Schemer)
	if !ok {
		return out
	}
	enc, hasEnc := c.(PropertyEncoder)
	for _, name := range s.Schema().Names() {
		v := PropertyValue(c, name)
		if hasEnc {
			v = enc.EncodeProperty(name, v)
		}
		if isNil(v) {
			continue
		}
		out[name] = v
	}
	return out
}

// DeserializeComponent applies every key of props, in sorted key order,
// through the component's setup hook. Keys are not limited to the schema.
func DeserializeComponent(c Component, props map[string]any) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	setter, hasSetter := c.(PropertySetter)
	for _, k := range keys {
		var err error
		if hasSetter {
			err = setter.SetProperty(k, props[k])
		} else {
			err = AssignProperty(c, k, props[k])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DisposeComponent detaches c from its entity, if any, then calls Dispose
// when c implements Disposer.
func DisposeComponent(c Component) {
	if e := c.Entity(); e != nil {
		_ = e.DetachComponentInstance(c)
	}
	if d, ok := c.(Disposer); ok {
		d.Dispose()
	}
}

// AssignProperty is the default setup hook. It assigns value to the exported
// field tagged `prop:"name"` (or whose name matches case-insensitively).
// Numeric conversions follow mapstructure, so integer fields truncate.
// Values for names that match no field are kept in the extra bag.
func AssignProperty(c Component, name string, value any) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     c,
		TagName:    "prop",
		Metadata:   &md,
		DecodeHook: propertyDecodeHook,
	})
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}
	if err := dec.Decode(map[string]any{name: value}); err != nil {
		return fmt.Errorf("property %q: %w: %v", name, ErrInvalidProperty, err)
	}
	if slices.Contains(md.Unused, name) {
		b := c.base()
		if b.extra == nil {
			b.extra = make(map[string]any)
		}
		b.extra[name] = value
	}
	return nil
}

// PropertyValue is the default read side of serialization: the value of the
// field backing name, falling back to the extra bag.
func PropertyValue(c Component, name string) any {
	if f, ok := propertyField(c, name); ok {
		return f.Interface()
	}
	return c.base().extra[name]
}

var (
	vec2Type  = reflect.TypeOf(Vec2{})
	colorType = reflect.TypeOf(Color{})
)

func propertyDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case vec2Type:
		return ParseVec2(data)
	case colorType:
		return ParseColor(data)
	}
	return data, nil
}

// propertyField finds the exported field backing a property, using the same
// matching rules as the mapstructure decoder in AssignProperty.
func propertyField(c Component, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(c)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := v.Type()
	var fallback reflect.Value
	found := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("prop"), ",")
		if tag == "-" {
			continue
		}
		if tag == name {
			return v.Field(i), true
		}
		if tag == "" && !found && strings.EqualFold(f.Name, name) {
			fallback = v.Field(i)
			found = true
		}
	}
	return fallback, found
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
