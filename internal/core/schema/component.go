package schema

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateField = errors.New("duplicate field")
	ErrInvalidField   = errors.New("invalid field declaration")
)

// ReservedKey is the document key naming the component type. It cannot be a
// field name.
const ReservedKey = "type"

// Component is the declared field set of one component or variant type.
type Component struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewComponent validates the declaration. Defaults are not type checked here;
// the resolver reports a bad default against the schema layer.
func NewComponent(name string, fields ...Field) (*Component, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrInvalidField)
	}
	c := &Component{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if err := checkField(name, f); err != nil {
			return nil, err
		}
		if _, ok := c.index[f.Name]; ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, f.Name)
		}
		c.index[f.Name] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	return c, nil
}

// MustComponent is NewComponent for package-level declarations.
func MustComponent(name string, fields ...Field) *Component {
	c, err := NewComponent(name, fields...)
	if err != nil {
		panic(err)
	}
	return c
}

func checkField(owner string, f Field) error {
	switch {
	case f.Name == "":
		return fmt.Errorf("%w: %s has an unnamed field", ErrInvalidField, owner)
	case f.Name == ReservedKey:
		return fmt.Errorf("%w: %s.%s is reserved", ErrInvalidField, owner, f.Name)
	case f.Type == TypeList && f.Elem == nil:
		return fmt.Errorf("%w: %s.%s list without element", ErrInvalidField, owner, f.Name)
	}
	if f.Type == TypeStruct {
		seen := make(map[string]struct{}, len(f.Fields))
		for _, sub := range f.Fields {
			if _, ok := seen[sub.Name]; ok {
				return fmt.Errorf("%w: %s.%s.%s", ErrDuplicateField, owner, f.Name, sub.Name)
			}
			seen[sub.Name] = struct{}{}
			if err := checkField(owner+"."+f.Name, sub); err != nil {
				return err
			}
		}
	}
	if f.Type == TypeList {
		return checkField(owner+"."+f.Name, *f.Elem)
	}
	return nil
}

func (c *Component) Name() string { return c.name }

// Fields returns the declared fields in declaration order.
func (c *Component) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

func (c *Component) Field(name string) (Field, bool) {
	i, ok := c.index[name]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// Values is a resolved field set: every declared field has an entry.
type Values map[string]any

func (v Values) Int(name string) int64 {
	i, _ := v[name].(int64)
	return i
}

func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Uid returns the referenced uid and whether it is set.
func (v Values) Uid(name string) (int64, bool) {
	i, ok := v[name].(int64)
	return i, ok
}

func (v Values) List(name string) []any {
	l, _ := v[name].([]any)
	return l
}

func (v Values) Struct(name string) Values {
	s, _ := v[name].(Values)
	return s
}
