package builtin

import (
	"fmt"

	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

const (
	PhysicsName    = "Physics"
	ShapeGridTag   = "PhysShapeGrid"
	ShapeAabbTag   = "PhysShapeAabb"
	ShapeCircleTag = "PhysShapeCircle"
)

var physicsSchema = schema.MustComponent(PhysicsName,
	schema.String("bodyType", "Static"),
	schema.ListOf("fixtures", schema.Struct("fixture",
		schema.Variant("shape").AsRequired(),
		schema.Int("mask", 0),
		schema.Int("layer", 0),
		schema.Bool("hard", true),
	)),
)

// Physics is the load-time description of a body. The loader hands it to the
// broadphase once the map is ready.
type Physics struct {
	owner    models.EntityID
	BodyType string
	Fixtures []physics.Fixture
}

func (p *Physics) TypeName() string { return PhysicsName }

func (p *Physics) OnAttach(owner models.EntityID) { p.owner = owner }

// Body returns the broadphase view of this component.
func (p *Physics) Body() physics.Body {
	fixtures := make([]physics.Fixture, len(p.Fixtures))
	copy(fixtures, p.Fixtures)
	return physics.Body{Entity: p.owner, Static: p.BodyType == "Static", Fixtures: fixtures}
}

// GridShapes returns fixtures whose shape is bound to a grid.
func (p *Physics) GridShapes() []physics.GridShape {
	var out []physics.GridShape
	for _, f := range p.Fixtures {
		if gs, ok := f.Shape.(physics.GridShape); ok {
			out = append(out, gs)
		}
	}
	return out
}

func newPhysics(_ component.BuildContext, v schema.Values) (models.Component, error) {
	bodyType := v.String("bodyType")
	switch bodyType {
	case "Static", "Dynamic", "Kinematic":
	default:
		return nil, fmt.Errorf("%w: body type %q", document.ErrMalformedDocument, bodyType)
	}
	p := &Physics{BodyType: bodyType}
	for i, raw := range v.List("fixtures") {
		fv := raw.(schema.Values)
		shape, ok := fv["shape"].(physics.Shape)
		if !ok {
			return nil, fmt.Errorf("fixtures[%d].shape: %T is not a shape", i, fv["shape"])
		}
		p.Fixtures = append(p.Fixtures, physics.Fixture{
			Shape: shape,
			Mask:  fv.Int("mask"),
			Layer: fv.Int("layer"),
			Hard:  fv.Bool("hard"),
		})
	}
	return p, nil
}

var shapeGridSchema = schema.MustComponent(ShapeGridTag,
	schema.Int("grid", 0).AsRequired(),
)

// ShapeGrid covers the tiles of one grid. Its bounds are unknown until the
// loader binds it to the grid it names.
type ShapeGrid struct {
	Grid   int
	bounds func() physics.Box2
}

var _ physics.GridShape = (*ShapeGrid)(nil)

func (s *ShapeGrid) ShapeType() string { return ShapeGridTag }

func (s *ShapeGrid) GridIndex() int { return s.Grid }

func (s *ShapeGrid) BindGrid(bounds func() physics.Box2) { s.bounds = bounds }

func (s *ShapeGrid) Bound() bool { return s.bounds != nil }

func (s *ShapeGrid) LocalBounds() physics.Box2 {
	if s.bounds == nil {
		return physics.Box2{}
	}
	return s.bounds()
}

func newShapeGrid(ctx component.BuildContext, v schema.Values) (any, error) {
	i := v.Int("grid")
	if i < 0 || int(i) >= ctx.Grids {
		return nil, fmt.Errorf("%w: shape grid %d, document declares %d grids", document.ErrMalformedDocument, i, ctx.Grids)
	}
	return &ShapeGrid{Grid: int(i)}, nil
}

var shapeAabbSchema = schema.MustComponent(ShapeAabbTag,
	schema.Field{Name: "bounds", Type: schema.TypeBox2, Default: physics.Box2{Left: -0.5, Bottom: -0.5, Right: 0.5, Top: 0.5}},
)

type ShapeAabb struct {
	Bounds physics.Box2
}

func (s *ShapeAabb) ShapeType() string         { return ShapeAabbTag }
func (s *ShapeAabb) LocalBounds() physics.Box2 { return s.Bounds }

func newShapeAabb(_ component.BuildContext, v schema.Values) (any, error) {
	return &ShapeAabb{Bounds: v["bounds"].(physics.Box2)}, nil
}

var shapeCircleSchema = schema.MustComponent(ShapeCircleTag,
	schema.Float("radius", 0.5),
	schema.Vec2("position"),
)

type ShapeCircle struct {
	Radius   float64
	Position physics.Vec2
}

func (s *ShapeCircle) ShapeType() string { return ShapeCircleTag }

func (s *ShapeCircle) LocalBounds() physics.Box2 {
	return physics.Box2{
		Left:   s.Position.X - s.Radius,
		Bottom: s.Position.Y - s.Radius,
		Right:  s.Position.X + s.Radius,
		Top:    s.Position.Y + s.Radius,
	}
}

func newShapeCircle(_ component.BuildContext, v schema.Values) (any, error) {
	r := v.Float("radius")
	if r <= 0 {
		return nil, fmt.Errorf("%w: circle radius %g", document.ErrMalformedDocument, r)
	}
	return &ShapeCircle{Radius: r, Position: v["position"].(physics.Vec2)}, nil
}
