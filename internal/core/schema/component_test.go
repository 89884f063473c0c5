package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComponent(t *testing.T) {
	c, err := NewComponent("Sample",
		Int("foo", -1),
		Float("speed", 1.5).Describe("tiles per second"),
		ListOf("tags", String("tag", "")),
	)
	require.NoError(t, err)
	assert.Equal(t, "Sample", c.Name())
	require.Len(t, c.Fields(), 3)

	f, ok := c.Field("speed")
	require.True(t, ok)
	assert.Equal(t, TypeFloat, f.Type)
	assert.Equal(t, "tiles per second", f.Description)
	_, ok = c.Field("missing")
	assert.False(t, ok)
}

func TestNewComponent_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		err    error
	}{
		{name: "duplicate", fields: []Field{Int("a", 0), Bool("a", false)}, err: ErrDuplicateField},
		{name: "reserved", fields: []Field{String("type", "")}, err: ErrInvalidField},
		{name: "unnamed", fields: []Field{{Type: TypeInt}}, err: ErrInvalidField},
		{name: "list without element", fields: []Field{{Name: "l", Type: TypeList}}, err: ErrInvalidField},
		{name: "struct duplicate", fields: []Field{Struct("s", Int("x", 0), Int("x", 1))}, err: ErrDuplicateField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComponent("Bad", tt.fields...)
			require.ErrorIs(t, err, tt.err)
		})
	}
	_, err := NewComponent("")
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestAsRequired_DropsDefault(t *testing.T) {
	f := Int("index", 7).AsRequired()
	assert.True(t, f.Required)
	assert.Nil(t, f.Default)
}

func TestValues_Accessors(t *testing.T) {
	v := Values{
		"i":   int64(3),
		"f":   2.5,
		"b":   true,
		"s":   "x",
		"uid": int64(9),
		"nil": nil,
		"l":   []any{int64(1)},
		"st":  Values{"x": int64(1)},
	}
	assert.Equal(t, int64(3), v.Int("i"))
	assert.Equal(t, 2.5, v.Float("f"))
	assert.True(t, v.Bool("b"))
	assert.Equal(t, "x", v.String("s"))
	uid, ok := v.Uid("uid")
	assert.True(t, ok)
	assert.Equal(t, int64(9), uid)
	_, ok = v.Uid("nil")
	assert.False(t, ok)
	assert.Len(t, v.List("l"), 1)
	assert.Equal(t, int64(1), v.Struct("st").Int("x"))
	assert.Zero(t, v.Int("missing"))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "vec2", TypeVec2.String())
	assert.Equal(t, "type(99)", Type(99).String())
}
