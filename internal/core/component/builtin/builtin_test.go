package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/schema/resolver"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

func build(t *testing.T, r *component.Registry, ctx component.BuildContext, tag, text string) (models.Component, error) {
	t.Helper()
	var inst *document.Map
	if text != "" {
		v, err := document.ParseYAML([]byte(text))
		require.NoError(t, err)
		inst = v.(*document.Map)
	}
	s, err := r.Schema(tag)
	require.NoError(t, err)
	values, err := resolver.ResolveComponent(s, nil, inst)
	if err != nil {
		return nil, err
	}
	return r.Build(ctx, tag, values)
}

func TestRegister(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{MapGridName, MetaDataName, PhysicsName, TransformName}, r.Names())
	for _, tag := range []string{ShapeGridTag, ShapeAabbTag, ShapeCircleTag} {
		assert.True(t, r.HasVariant(tag), tag)
	}
	require.ErrorIs(t, Register(r), component.ErrAlreadyRegistered)
}

func TestTransform(t *testing.T) {
	r, _ := NewRegistry()
	c, err := build(t, r, component.BuildContext{}, TransformName, "parent: 4\npos: 1.5,2\nrot: 0.25\n")
	require.NoError(t, err)
	tr := c.(*Transform)
	uid, ok := tr.ParentUid()
	assert.True(t, ok)
	assert.Equal(t, int64(4), uid)
	assert.Equal(t, physics.Vec2{X: 1.5, Y: 2}, tr.LocalPosition)
	assert.Equal(t, 0.25, tr.LocalRotation)

	c, err = build(t, r, component.BuildContext{}, TransformName, "parent: null\n")
	require.NoError(t, err)
	_, ok = c.(*Transform).ParentUid()
	assert.False(t, ok)

	e := models.NewEntity(9, 0, "")
	require.NoError(t, e.AddComponent(c))
	assert.Equal(t, models.EntityID(9), c.(*Transform).Owner())
}

func TestMapGrid(t *testing.T) {
	r, _ := NewRegistry()
	c, err := build(t, r, component.BuildContext{Grids: 2}, MapGridName, "index: 1\n")
	require.NoError(t, err)
	assert.Equal(t, 1, c.(*MapGrid).Index)

	_, err = build(t, r, component.BuildContext{Grids: 1}, MapGridName, "index: 1\n")
	require.ErrorIs(t, err, document.ErrMalformedDocument)

	_, err = build(t, r, component.BuildContext{Grids: 1}, MapGridName, "")
	require.ErrorIs(t, err, resolver.ErrMissingRequiredField)
}

func TestPhysics_Fixtures(t *testing.T) {
	r, _ := NewRegistry()
	c, err := build(t, r, component.BuildContext{Grids: 1}, PhysicsName, `
fixtures:
- shape:
    !type:PhysShapeGrid
    grid: 0
- shape: !type:PhysShapeAabb
  mask: 2
  hard: false
- shape:
    !type:PhysShapeCircle
    radius: 2
    position: 1,1
`)
	require.NoError(t, err)
	p := c.(*Physics)
	assert.Equal(t, "Static", p.BodyType)
	require.Len(t, p.Fixtures, 3)

	gs, ok := p.Fixtures[0].Shape.(*ShapeGrid)
	require.True(t, ok)
	assert.Equal(t, 0, gs.GridIndex())
	assert.False(t, gs.Bound())
	assert.True(t, p.Fixtures[0].Hard)
	assert.Len(t, p.GridShapes(), 1)

	aabb := p.Fixtures[1].Shape.(*ShapeAabb)
	assert.Equal(t, physics.Box2{Left: -0.5, Bottom: -0.5, Right: 0.5, Top: 0.5}, aabb.LocalBounds())
	assert.Equal(t, int64(2), p.Fixtures[1].Mask)
	assert.False(t, p.Fixtures[1].Hard)

	circle := p.Fixtures[2].Shape.(*ShapeCircle)
	assert.Equal(t, physics.Box2{Left: -1, Bottom: -1, Right: 3, Top: 3}, circle.LocalBounds())

	e := models.NewEntity(5, 0, "")
	require.NoError(t, e.AddComponent(p))
	gs.BindGrid(func() physics.Box2 { return physics.Box2{Right: 4, Top: 2} })
	body := p.Body()
	assert.Equal(t, models.EntityID(5), body.Entity)
	assert.True(t, body.Static)
	assert.Equal(t, physics.Box2{Left: -1, Bottom: -1, Right: 4, Top: 3}, body.Bounds())
}

func TestPhysics_Rejects(t *testing.T) {
	r, _ := NewRegistry()
	tests := []struct {
		name string
		ctx  component.BuildContext
		body string
		err  error
	}{
		{name: "grid out of range", body: "fixtures:\n- shape: !type:PhysShapeGrid {grid: 1}\n", ctx: component.BuildContext{Grids: 1}, err: document.ErrMalformedDocument},
		{name: "unknown shape", body: "fixtures:\n- shape: !type:PhysShapeStar\n", err: component.ErrUnknownVariantTag},
		{name: "missing shape", body: "fixtures:\n- mask: 1\n", err: resolver.ErrMissingRequiredField},
		{name: "bad body type", body: "bodyType: Floating\n", err: document.ErrMalformedDocument},
		{name: "bad radius", body: "fixtures:\n- shape: !type:PhysShapeCircle {radius: 0}\n", err: document.ErrMalformedDocument},
		{name: "shape not tagged", body: "fixtures:\n- shape: {grid: 0}\n", err: resolver.ErrFieldTypeMismatch},
		{name: "scalar shape body", body: "fixtures:\n- shape: !type:PhysShapeCircle 3\n", err: document.ErrMalformedDocument},
		{name: "sequence shape body", body: "fixtures:\n- shape: !type:PhysShapeAabb [0, 0, 1, 1]\n", err: document.ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, r, tt.ctx, PhysicsName, tt.body)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPhysics_VariantBodyIsNotDropped(t *testing.T) {
	r, _ := NewRegistry()
	_, err := build(t, r, component.BuildContext{}, PhysicsName, "fixtures:\n- shape: !type:PhysShapeCircle 3\n")
	var be *component.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, PhysicsName, be.Component)
	assert.Equal(t, "fixtures[0].shape", be.Field)

	// An empty body still means all defaults.
	c, err := build(t, r, component.BuildContext{}, PhysicsName, "fixtures:\n- shape: !type:PhysShapeCircle\n")
	require.NoError(t, err)
	circle := c.(*Physics).Fixtures[0].Shape.(*ShapeCircle)
	assert.Equal(t, 0.5, circle.Radius)
}

func TestMetaData(t *testing.T) {
	r, _ := NewRegistry()
	c, err := build(t, r, component.BuildContext{}, MetaDataName, "name: airlock\n")
	require.NoError(t, err)
	m := c.(*MetaData)
	assert.Equal(t, "airlock", m.Name)
	assert.Empty(t, m.Description)
	assert.Equal(t, MetaDataName, m.TypeName())
}

func TestSchemasDeclareTypes(t *testing.T) {
	f, ok := transformSchema.Field("parent")
	require.True(t, ok)
	assert.Equal(t, schema.TypeUid, f.Type)
	f, ok = physicsSchema.Field("fixtures")
	require.True(t, ok)
	assert.Equal(t, schema.TypeList, f.Type)
	assert.Equal(t, schema.TypeStruct, f.Elem.Type)
}
