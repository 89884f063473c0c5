package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

var sample = schema.MustComponent("MapDeserializeTest",
	schema.Int("foo", -1),
	schema.Int("bar", -1),
	schema.Int("baz", -1),
)

func docMap(t *testing.T, v map[string]any) *document.Map {
	t.Helper()
	out, err := document.FromGo(v)
	require.NoError(t, err)
	return out.(*document.Map)
}

func TestResolveComponent_LayerPriority(t *testing.T) {
	proto := docMap(t, map[string]any{"foo": 1, "bar": 2})
	inst := docMap(t, map[string]any{"foo": 3})

	values, err := ResolveComponent(sample, proto, inst)
	require.NoError(t, err)
	assert.Equal(t, schema.Values{"foo": int64(3), "bar": int64(2), "baz": int64(-1)}, values)
}

func TestResolveComponent_NoLayers(t *testing.T) {
	values, err := ResolveComponent(sample, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Values{"foo": int64(-1), "bar": int64(-1), "baz": int64(-1)}, values)
}

func TestResolveComponent_Deterministic(t *testing.T) {
	proto := docMap(t, map[string]any{"foo": 1, "bar": 2})
	inst := docMap(t, map[string]any{"foo": 3})

	first, err := ResolveComponent(sample, proto, inst)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ResolveComponent(sample, proto, inst)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, Fingerprint(first), Fingerprint(again))
	}
}

func TestResolveComponent_UnknownField(t *testing.T) {
	_, err := ResolveComponent(sample, nil, docMap(t, map[string]any{"qux": 1}))
	require.ErrorIs(t, err, ErrUnknownField)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "qux", fe.Field)
	assert.Equal(t, LayerInstance, fe.Layer)

	_, err = ResolveComponent(sample, docMap(t, map[string]any{"qux": 1}), nil)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, LayerPrototype, fe.Layer)
}

func TestResolveComponent_IgnoresTypeKey(t *testing.T) {
	_, err := ResolveComponent(sample, nil, docMap(t, map[string]any{"type": "MapDeserializeTest", "foo": 2}))
	require.NoError(t, err)
}

func TestResolve_TypeMismatch(t *testing.T) {
	_, _, err := Resolve("C", schema.Int("foo", 0), None, Some("three"))
	require.ErrorIs(t, err, ErrFieldTypeMismatch)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "C", fe.Component)
	assert.Equal(t, "foo", fe.Field)
	assert.Equal(t, schema.TypeInt, fe.Expected)
	assert.Equal(t, "string", fe.Got)
	assert.Contains(t, fe.Error(), "expected int, got string")
}

func TestResolve_MismatchInPrototypeLayer(t *testing.T) {
	_, layer, err := Resolve("C", schema.Bool("on", false), Some(int64(1)), None)
	require.ErrorIs(t, err, ErrFieldTypeMismatch)
	assert.Equal(t, LayerPrototype, layer)
}

func TestResolve_Required(t *testing.T) {
	f := schema.Int("index", 0).AsRequired()
	_, _, err := Resolve("MapGrid", f, None, None)
	require.ErrorIs(t, err, ErrMissingRequiredField)

	v, layer, err := Resolve("MapGrid", f, Some(int64(2)), None)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, LayerPrototype, layer)
}

func TestResolve_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		field schema.Field
		in    any
		want  any
	}{
		{name: "int from integral float", field: schema.Int("x", 0), in: 4.0, want: int64(4)},
		{name: "float from int", field: schema.Float("x", 0), in: int64(2), want: 2.0},
		{name: "string from int", field: schema.String("x", ""), in: int64(7), want: "7"},
		{name: "string from bool", field: schema.String("x", ""), in: true, want: "true"},
		{name: "uid", field: schema.Uid("parent"), in: int64(5), want: int64(5)},
		{name: "uid null", field: schema.Uid("parent"), in: nil, want: nil},
		{name: "uid invalid", field: schema.Uid("parent"), in: "invalid", want: nil},
		{name: "vec2 string", field: schema.Vec2("pos"), in: "1.5,-2", want: physics.Vec2{X: 1.5, Y: -2}},
		{name: "vec2 list", field: schema.Vec2("pos"), in: []any{int64(1), 2.5}, want: physics.Vec2{X: 1, Y: 2.5}},
		{name: "box2 string", field: schema.Box2("b"), in: "-1,-1,1,1", want: physics.Box2{Left: -1, Bottom: -1, Right: 1, Top: 1}},
		{name: "list", field: schema.ListOf("l", schema.Int("e", 0)), in: []any{int64(1), 2.0}, want: []any{int64(1), int64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Resolve("C", tt.field, None, Some(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_CoercionRejects(t *testing.T) {
	tests := []struct {
		name  string
		field schema.Field
		in    any
	}{
		{name: "fractional int", field: schema.Int("x", 0), in: 1.5},
		{name: "null int", field: schema.Int("x", 0), in: nil},
		{name: "bool from string", field: schema.Bool("x", false), in: "yes"},
		{name: "string from list", field: schema.String("x", ""), in: []any{}},
		{name: "bad vec2", field: schema.Vec2("pos"), in: "1"},
		{name: "short vec2 list", field: schema.Vec2("pos"), in: []any{int64(1)}},
		{name: "inverted box", field: schema.Box2("b"), in: []any{int64(1), int64(1), int64(0), int64(0)}},
		{name: "variant from map", field: schema.Variant("shape"), in: document.NewMap()},
		{name: "list element", field: schema.ListOf("l", schema.Int("e", 0)), in: []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Resolve("C", tt.field, None, Some(tt.in))
			require.ErrorIs(t, err, ErrFieldTypeMismatch)
		})
	}
}

func TestResolve_Struct(t *testing.T) {
	fixture := schema.Struct("fixture",
		schema.Variant("shape").AsRequired(),
		schema.Int("mask", 0),
		schema.Bool("hard", true),
	)
	shape := &document.Tagged{Tag: "PhysShapeAabb"}
	in := document.NewMap()
	in.Set("shape", shape)
	in.Set("mask", int64(3))

	got, _, err := Resolve("Physics", fixture, None, Some(in))
	require.NoError(t, err)
	assert.Equal(t, schema.Values{"shape": shape, "mask": int64(3), "hard": true}, got)

	_, _, err = Resolve("Physics", fixture, None, Some(document.NewMap()))
	require.ErrorIs(t, err, ErrMissingRequiredField)

	bad := document.NewMap()
	bad.Set("shape", shape)
	bad.Set("weight", int64(1))
	_, _, err = Resolve("Physics", fixture, None, Some(bad))
	require.ErrorIs(t, err, ErrUnknownField)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "fixture.weight", fe.Field)
}

func TestResolve_SchemaDefaults(t *testing.T) {
	tests := []struct {
		field schema.Field
		want  any
	}{
		{field: schema.Vec2("pos"), want: physics.Vec2{}},
		{field: schema.ListOf("l", schema.Int("e", 0)), want: []any{}},
		{field: schema.Variant("shape"), want: nil},
		{field: schema.Struct("s", schema.Int("x", 4)), want: schema.Values{"x": int64(4)}},
		{field: schema.Field{Name: "f", Type: schema.TypeFloat}, want: 0.0},
	}
	for _, tt := range tests {
		got, layer, err := Resolve("C", tt.field, None, None)
		require.NoError(t, err, tt.field.Name)
		assert.Equal(t, LayerSchema, layer)
		assert.Equal(t, tt.want, got, tt.field.Name)
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	a := Fingerprint(schema.Values{"x": int64(1)})
	b := Fingerprint(schema.Values{"x": "1"})
	c := Fingerprint(schema.Values{"y": int64(1)})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Fingerprint(schema.Values{"x": int64(1)}))
}
