package maps

import (
	"github.com/google/uuid"
	"github.com/zeusync/blueprint/internal/core/grid"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/pkg/sequence"
)

// MapID names a map created by a Loader. Zero is never used.
type MapID uint32

// Map is the content of a loaded map. It is immutable once published.
type Map struct {
	ID     MapID
	Name   string
	Author string

	entities []*models.Entity
	byUid    map[int64]*models.Entity
	grids    []*grid.Grid
	handle   *GridHandle
}

// Entities returns the map's entities in document order.
func (m *Map) Entities() []*models.Entity {
	out := make([]*models.Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// ByUid finds an entity by its document uid.
func (m *Map) ByUid(uid int64) (*models.Entity, bool) {
	e, ok := m.byUid[uid]
	return e, ok
}

func (m *Map) Grids() []*grid.Grid {
	out := make([]*grid.Grid, len(m.grids))
	copy(out, m.grids)
	return out
}

// Roots returns unparented entities in document order.
func (m *Map) Roots() []*models.Entity {
	return sequence.From(m.entities).
		Filter(func(e *models.Entity) bool { return e.Parent() == nil }).
		Collect()
}

func (m *Map) Handle() *GridHandle { return m.handle }

// GridHandle summarizes a successful load.
type GridHandle struct {
	MapID  MapID
	LoadID uuid.UUID
	Grids  []*grid.Grid
	// Entities is the number of entities the load created.
	Entities int
	// MapInitialized is true when the load ran map init on the components.
	MapInitialized bool
	// Checksum digests uids, resolved component values, hierarchy and grid
	// placement. Loading the same document twice yields the same checksum.
	Checksum uint64
}

// GridEntity returns the owner of the grid at index, InvalidEntity if out of range.
func (h *GridHandle) GridEntity(index int) models.EntityID {
	if index < 0 || index >= len(h.Grids) {
		return models.InvalidEntity
	}
	return h.Grids[index].Owner()
}
