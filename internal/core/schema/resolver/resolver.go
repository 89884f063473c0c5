// Package resolver merges a component's field values across three layers:
// the entity's own override, its prototype's default, and the schema default.
// Each field is merged on its own, so overriding one field never hides the
// prototype's value for another.
package resolver

import (
	"sort"
	"strconv"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

// Layer names where a resolved value came from, highest priority first.
type Layer uint8

const (
	LayerInstance Layer = iota
	LayerPrototype
	LayerSchema
)

func (l Layer) String() string {
	switch l {
	case LayerInstance:
		return "instance"
	case LayerPrototype:
		return "prototype"
	default:
		return "schema"
	}
}

// Optional is a layer's value for one field; Set is false when the layer does
// not mention the field.
type Optional struct {
	Value any
	Set   bool
}

func Some(v any) Optional { return Optional{Value: v, Set: true} }

var None = Optional{}

func lookup(m *document.Map, name string) Optional {
	if v, ok := m.Get(name); ok {
		return Some(v)
	}
	return None
}

// Resolve picks the value of one field: instance, then prototype, then the
// schema default. The chosen value is checked and coerced to the declared type.
func Resolve(component string, field schema.Field, proto, inst Optional) (any, Layer, error) {
	switch {
	case inst.Set:
		v, err := coerce(component, field.Name, field, inst.Value, LayerInstance)
		return v, LayerInstance, err
	case proto.Set:
		v, err := coerce(component, field.Name, field, proto.Value, LayerPrototype)
		return v, LayerPrototype, err
	case field.Required:
		return nil, LayerSchema, &FieldError{
			Component: component,
			Field:     field.Name,
			Expected:  field.Type,
			Layer:     LayerSchema,
			Err:       ErrMissingRequiredField,
		}
	default:
		v, err := schemaDefault(component, field.Name, field)
		return v, LayerSchema, err
	}
}

// ResolveComponent resolves every declared field of c. Either layer may be
// nil. Keys that are not declared fields are rejected; the "type" key naming
// the component is ignored.
func ResolveComponent(c *schema.Component, proto, inst *document.Map) (schema.Values, error) {
	if err := checkKnown(c, proto, LayerPrototype); err != nil {
		return nil, err
	}
	if err := checkKnown(c, inst, LayerInstance); err != nil {
		return nil, err
	}
	fields := c.Fields()
	out := make(schema.Values, len(fields))
	for _, f := range fields {
		v, _, err := Resolve(c.Name(), f, lookup(proto, f.Name), lookup(inst, f.Name))
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func checkKnown(c *schema.Component, m *document.Map, layer Layer) error {
	unknown := make([]string, 0)
	for _, k := range m.Keys() {
		if k == schema.ReservedKey {
			continue
		}
		if _, ok := c.Field(k); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &FieldError{Component: c.Name(), Field: unknown[0], Layer: layer, Err: ErrUnknownField}
}

func resolveStruct(component, path string, fields []schema.Field, m *document.Map, layer Layer) (schema.Values, error) {
	for _, k := range m.Keys() {
		known := false
		for _, f := range fields {
			if f.Name == k {
				known = true
				break
			}
		}
		if !known {
			return nil, &FieldError{Component: component, Field: path + "." + k, Layer: layer, Err: ErrUnknownField}
		}
	}
	out := make(schema.Values, len(fields))
	for _, f := range fields {
		sub := f
		sub.Name = path + "." + f.Name
		var (
			v   any
			err error
		)
		if raw, ok := m.Get(f.Name); ok {
			v, err = coerce(component, sub.Name, f, raw, layer)
		} else if f.Required {
			err = &FieldError{Component: component, Field: sub.Name, Expected: f.Type, Layer: layer, Err: ErrMissingRequiredField}
		} else {
			v, err = schemaDefault(component, sub.Name, f)
		}
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func schemaDefault(component, path string, f schema.Field) (any, error) {
	if f.Default != nil {
		return coerce(component, path, f, f.Default, LayerSchema)
	}
	switch f.Type {
	case schema.TypeStruct:
		return resolveStruct(component, path, f.Fields, nil, LayerSchema)
	case schema.TypeList:
		return []any{}, nil
	case schema.TypeInt:
		return int64(0), nil
	case schema.TypeFloat:
		return float64(0), nil
	case schema.TypeBool:
		return false, nil
	case schema.TypeString:
		return "", nil
	case schema.TypeVec2:
		return physics.Vec2{}, nil
	case schema.TypeBox2:
		return physics.Box2{}, nil
	default:
		return nil, nil
	}
}

func coerce(component, path string, f schema.Field, v any, layer Layer) (any, error) {
	mismatch := func() error {
		return &FieldError{
			Component: component,
			Field:     path,
			Expected:  f.Type,
			Got:       document.TypeName(v),
			Layer:     layer,
			Err:       ErrFieldTypeMismatch,
		}
	}

	if v == nil {
		if f.Nullable || f.Type == schema.TypeAny {
			return nil, nil
		}
		return nil, mismatch()
	}

	switch f.Type {
	case schema.TypeAny:
		return v, nil

	case schema.TypeInt:
		switch t := v.(type) {
		case int64:
			return t, nil
		case int:
			return int64(t), nil
		case float64:
			if t == float64(int64(t)) {
				return int64(t), nil
			}
		}

	case schema.TypeFloat:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int64:
			return float64(t), nil
		case int:
			return float64(t), nil
		}

	case schema.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case schema.TypeString:
		// YAML types bare scalars eagerly; a string field takes any scalar.
		switch t := v.(type) {
		case string:
			return t, nil
		case int64:
			return strconv.FormatInt(t, 10), nil
		case float64:
			return strconv.FormatFloat(t, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(t), nil
		}

	case schema.TypeUid:
		switch t := v.(type) {
		case int64:
			return t, nil
		case int:
			return int64(t), nil
		case string:
			if (t == "invalid" || t == "null") && f.Nullable {
				return nil, nil
			}
			if n, ok := document.Int(t); ok {
				return n, nil
			}
		}

	case schema.TypeVec2:
		switch t := v.(type) {
		case physics.Vec2:
			return t, nil
		case string:
			if vec, err := physics.ParseVec2(t); err == nil {
				return vec, nil
			}
		case []any:
			if nums, ok := floats(t, 2); ok {
				return physics.Vec2{X: nums[0], Y: nums[1]}, nil
			}
		}

	case schema.TypeBox2:
		switch t := v.(type) {
		case physics.Box2:
			return t, nil
		case string:
			if box, err := physics.ParseBox2(t); err == nil {
				return box, nil
			}
		case []any:
			if nums, ok := floats(t, 4); ok && nums[2] >= nums[0] && nums[3] >= nums[1] {
				return physics.Box2{Left: nums[0], Bottom: nums[1], Right: nums[2], Top: nums[3]}, nil
			}
		}

	case schema.TypeList:
		if items, ok := v.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				c, err := coerce(component, path+"["+strconv.Itoa(i)+"]", *f.Elem, item, layer)
				if err != nil {
					return nil, err
				}
				out[i] = c
			}
			return out, nil
		}

	case schema.TypeStruct:
		switch t := v.(type) {
		case *document.Map:
			return resolveStruct(component, path, f.Fields, t, layer)
		case schema.Values:
			return t, nil
		}

	case schema.TypeVariant:
		if t, ok := v.(*document.Tagged); ok {
			return t, nil
		}

	case schema.TypeMap:
		if t, ok := v.(*document.Map); ok {
			return t, nil
		}
	}
	return nil, mismatch()
}

func floats(items []any, n int) ([]float64, bool) {
	if len(items) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, item := range items {
		switch t := item.(type) {
		case float64:
			out[i] = t
		case int64:
			out[i] = float64(t)
		default:
			return nil, false
		}
	}
	return out, true
}
