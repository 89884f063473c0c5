package maps

import (
	"fmt"

	"github.com/zeusync/blueprint/internal/core/component/builtin"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/grid"
	"github.com/zeusync/blueprint/internal/core/models"
)

// linkParents is the second pass over built entities: every Transform parent
// uid is resolved against the load's uid table. Forward references work
// because every entity exists before any link is made.
func linkParents(mapID MapID, entities []*models.Entity, byUid map[int64]*models.Entity) error {
	for _, e := range entities {
		tr, ok := models.Get[*builtin.Transform](e)
		if !ok {
			continue
		}
		puid, ok := tr.ParentUid()
		if !ok {
			continue
		}
		fail := func(err error) error {
			le := newLoadError(mapID, StageHierarchyLinked, err).withUid(e.Uid())
			le.Component, le.Field = builtin.TransformName, "parent"
			return le
		}
		parent, ok := byUid[puid]
		if !ok {
			return fail(fmt.Errorf("%w: %d", ErrDanglingParentReference, puid))
		}
		if !parent.HasComponent(builtin.TransformName) {
			return fail(document.Malformed(fmt.Sprintf("uid %d", puid), "parent has no %s", builtin.TransformName))
		}
		if err := e.SetParent(parent); err != nil {
			return fail(err)
		}
	}
	return nil
}

// attachGrids builds the declared grids, finds each grid's owner and attaches
// the owner's subtree. Direct children of an owner are anchored to the chunk
// under their local position.
func attachGrids(mapID MapID, doc *Document, entities []*models.Entity) ([]*grid.Grid, error) {
	grids := make([]*grid.Grid, len(doc.Grids))
	for i, decl := range doc.Grids {
		g, err := grid.New(i, decl.Settings)
		if err != nil {
			return nil, gridError(mapID, i, err)
		}
		for _, cd := range decl.Chunks {
			c, err := grid.DecodeChunk(cd.Index, decl.Settings.ChunkSize, cd.Tiles, doc.TileMap)
			if err != nil {
				return nil, gridError(mapID, i, err)
			}
			if err := g.AddChunk(c); err != nil {
				return nil, gridError(mapID, i, err)
			}
		}
		grids[i] = g
	}

	owners := make([]*models.Entity, len(grids))
	for _, e := range entities {
		mg, ok := models.Get[*builtin.MapGrid](e)
		if !ok {
			continue
		}
		if prev := owners[mg.Index]; prev != nil {
			err := document.Malformed(fmt.Sprintf("grids[%d]", mg.Index), "claimed by uid %d and uid %d", prev.Uid(), e.Uid())
			return nil, newLoadError(mapID, StageGridsAttached, err).withUid(e.Uid())
		}
		if !e.HasComponent(builtin.TransformName) {
			err := fmt.Errorf("%w: uid %d owns grid %d without a %s", ErrGridOwnerMissing, e.Uid(), mg.Index, builtin.TransformName)
			return nil, newLoadError(mapID, StageGridsAttached, err).withUid(e.Uid())
		}
		owners[mg.Index] = e
	}

	for i, g := range grids {
		owner := owners[i]
		if owner == nil {
			return nil, gridError(mapID, i, ErrGridOwnerMissing)
		}
		if err := g.SetOwner(owner.ID()); err != nil {
			return nil, gridError(mapID, i, err)
		}
		attachSubtree(g, owner, true)
	}

	// Roots may stand alone, but a parented entity must sit under a grid owner.
	for _, e := range entities {
		if parent := e.Parent(); parent != nil && e.GridIndex() < 0 {
			err := fmt.Errorf("%w: uid %d under uid %d", ErrEntityOffGrid, e.Uid(), parent.Uid())
			le := newLoadError(mapID, StageGridsAttached, err).withUid(e.Uid())
			le.Component, le.Field = builtin.TransformName, "parent"
			return nil, le
		}
	}

	if err := bindGridShapes(mapID, entities, grids); err != nil {
		return nil, err
	}
	return grids, nil
}

func attachSubtree(g *grid.Grid, e *models.Entity, owner bool) {
	e.SetGridIndex(g.Index())
	for _, child := range e.Children() {
		if child.HasComponent(builtin.MapGridName) {
			// A nested grid owner carries its own subtree.
			continue
		}
		if owner {
			tr, _ := models.Get[*builtin.Transform](child)
			g.Anchor(child.ID(), tr.LocalPosition)
		} else {
			g.Attach(child.ID())
		}
		attachSubtree(g, child, false)
	}
}

// bindGridShapes points every grid-bound physics shape at the grid it names.
// The shape must sit on that grid.
func bindGridShapes(mapID MapID, entities []*models.Entity, grids []*grid.Grid) error {
	for _, e := range entities {
		p, ok := models.Get[*builtin.Physics](e)
		if !ok {
			continue
		}
		for _, shape := range p.GridShapes() {
			idx := shape.GridIndex()
			if idx != e.GridIndex() {
				err := document.Malformed(fmt.Sprintf("uid %d", e.Uid()), "%s names grid %d but the entity is on grid %d", shape.ShapeType(), idx, e.GridIndex())
				le := newLoadError(mapID, StageGridsAttached, err).withUid(e.Uid())
				le.Component = builtin.PhysicsName
				return le
			}
			shape.BindGrid(grids[idx].LocalBounds)
		}
	}
	return nil
}

func gridError(mapID MapID, index int, err error) error {
	return newLoadError(mapID, StageGridsAttached, fmt.Errorf("grid %d: %w", index, err))
}
