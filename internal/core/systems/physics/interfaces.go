package physics

import "github.com/zeusync/blueprint/internal/core/models"

// Shape is the geometry of one fixture. Concrete shapes are built from
// tagged document values by the component factory.
type Shape interface {
	ShapeType() string
	LocalBounds() Box2
}

// GridShape is implemented by shapes whose geometry is the tile set of a grid.
// The loader binds them once the grid exists.
type GridShape interface {
	Shape
	GridIndex() int
	BindGrid(bounds func() Box2)
}

// Fixture attaches a shape to a body with collision filtering.
type Fixture struct {
	Shape Shape
	Mask  int64
	Layer int64
	Hard  bool
}

// Body is what the broadphase sees of a loaded entity.
type Body struct {
	Entity   models.EntityID
	Static   bool
	Fixtures []Fixture
}

// Bounds returns the union of all fixture bounds.
func (b Body) Bounds() Box2 {
	var out Box2
	for i, f := range b.Fixtures {
		if i == 0 {
			out = f.Shape.LocalBounds()
			continue
		}
		out = out.Union(f.Shape.LocalBounds())
	}
	return out
}

// Broadphase is the registration target for physics bodies. The loader only
// registers bodies of maps that finished loading.
type Broadphase interface {
	AddBody(mapID uint32, body Body) error
	RemoveMap(mapID uint32)
	Bodies(mapID uint32) []Body
}
