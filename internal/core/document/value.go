// Package document holds the typed value tree the loader consumes. Parsing
// text into the tree happens at the edge (see ParseYAML); everything past that
// point works on these values only.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// VariantPrefix marks a tagged variant, either as a YAML node tag
// (!type:PhysShapeGrid) or as the single key of a mapping.
const VariantPrefix = "!type:"

// Value is one node of the tree. Concrete values are nil, bool, int64,
// float64, string, []any, *Map and *Tagged.
type Value = any

// Map is a mapping that keeps document key order.
type Map struct {
	keys   []string
	values map[string]any
}

func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores v under key. A repeated key keeps its original position.
func (m *Map) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Without returns a shallow copy of m minus the named keys.
func (m *Map) Without(keys ...string) *Map {
	out := NewMap()
	for _, k := range m.Keys() {
		skip := false
		for _, drop := range keys {
			if k == drop {
				skip = true
				break
			}
		}
		if !skip {
			out.Set(k, m.values[k])
		}
	}
	return out
}

// ToGo flattens the map into a plain map[string]any. Nested maps are
// flattened too; tagged values are kept as *Tagged.
func (m *Map) ToGo() map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.keys {
		out[k] = toGo(m.values[k])
	}
	return out
}

func toGo(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.ToGo()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toGo(e)
		}
		return out
	default:
		return v
	}
}

// Tagged is a value carrying a variant discriminator.
type Tagged struct {
	Tag   string
	Value any
}

func (t *Tagged) String() string {
	return VariantPrefix + t.Tag
}

// Fields returns the variant body as a map. A scalar or empty body yields an
// empty map.
func (t *Tagged) Fields() *Map {
	if m, ok := t.Value.(*Map); ok {
		return m
	}
	return NewMap()
}

// FromGo converts plain Go values (as produced by encoding/json or literal
// test fixtures) into the tree. A map with a single "!type:X" key becomes a
// *Tagged.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil, bool, string, float64, int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			c, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			c, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		if len(t) == 1 {
			for k, inner := range t {
				if tag, ok := strings.CutPrefix(k, VariantPrefix); ok {
					body, err := FromGo(inner)
					if err != nil {
						return nil, err
					}
					return &Tagged{Tag: tag, Value: body}, nil
				}
			}
		}
		m := NewMap()
		for _, k := range sortedKeys(t) {
			c, err := FromGo(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, c)
		}
		return m, nil
	case *Map, *Tagged:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrMalformedDocument, v)
	}
}

// MustFromGo is FromGo for fixtures known to be valid.
func MustFromGo(v any) Value {
	out, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return out
}

// TypeName names the dynamic kind of v for error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case []any:
		return "sequence"
	case *Map:
		return "mapping"
	case *Tagged:
		return "variant"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Int reads an integer, accepting integral floats and numeric strings.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func Seq(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func Mapping(v any) (*Map, bool) {
	m, ok := v.(*Map)
	return m, ok
}
