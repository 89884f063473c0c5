// Package grid holds tile grids and their chunks as built by a map load.
package grid

import (
	"math"

	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
	"github.com/zeusync/blueprint/pkg/sequence"
)

// MaxChunkSize is the largest chunk edge, in tiles.
const MaxChunkSize = 256

// Settings are fixed when the grid is created.
type Settings struct {
	ChunkSize int
	TileSize  int
	SnapSize  float64
}

func DefaultSettings() Settings {
	return Settings{ChunkSize: 16, TileSize: 1, SnapSize: 1}
}

func (s Settings) Validate() error {
	switch {
	case s.ChunkSize <= 0 || s.ChunkSize > MaxChunkSize:
		return malformed(ErrInvalidSettings, "chunksize %d out of range 1..%d", s.ChunkSize, MaxChunkSize)
	case s.TileSize <= 0:
		return malformed(ErrInvalidSettings, "tilesize %d must be positive", s.TileSize)
	case s.SnapSize <= 0 || math.IsNaN(s.SnapSize) || math.IsInf(s.SnapSize, 0):
		return malformed(ErrInvalidSettings, "snapsize %g must be positive", s.SnapSize)
	}
	return nil
}

// Grid is a sparse set of chunks owned by one entity.
type Grid struct {
	index    int
	settings Settings
	owner    models.EntityID
	chunks   map[ChunkCoord]*Chunk
	entities []models.EntityID
	attached map[models.EntityID]struct{}
}

func New(index int, settings Settings) (*Grid, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Grid{
		index:    index,
		settings: settings,
		chunks:   make(map[ChunkCoord]*Chunk),
		attached: make(map[models.EntityID]struct{}),
	}, nil
}

// Index is the position of the grid in its map document.
func (g *Grid) Index() int { return g.index }

func (g *Grid) Settings() Settings { return g.settings }

// Owner is the entity carrying the grid, InvalidEntity until set.
func (g *Grid) Owner() models.EntityID { return g.owner }

func (g *Grid) SetOwner(id models.EntityID) error {
	if g.owner != models.InvalidEntity && g.owner != id {
		return ErrGridOwned
	}
	g.owner = id
	g.Attach(id)
	return nil
}

// AddChunk takes ownership of c.
func (g *Grid) AddChunk(c *Chunk) error {
	if c.size != g.settings.ChunkSize {
		return malformed(ErrChunkPayload, "chunk %s has size %d, grid uses %d", c.coord, c.size, g.settings.ChunkSize)
	}
	if _, ok := g.chunks[c.coord]; ok {
		return malformed(ErrDuplicateChunk, "chunk %s", c.coord)
	}
	g.chunks[c.coord] = c
	return nil
}

func (g *Grid) Chunk(coord ChunkCoord) (*Chunk, bool) {
	c, ok := g.chunks[coord]
	return c, ok
}

// Chunks returns the chunks ordered by y, then x.
func (g *Grid) Chunks() []*Chunk {
	return sequence.FromMap(g.chunks).Sort(func(a, b *Chunk) bool {
		if a.coord.Y != b.coord.Y {
			return a.coord.Y < b.coord.Y
		}
		return a.coord.X < b.coord.X
	}).Collect()
}

func (g *Grid) ChunkCount() int { return len(g.chunks) }

// ChunkAt returns the coordinate of the chunk holding a grid-local position.
func (g *Grid) ChunkAt(pos physics.Vec2) ChunkCoord {
	edge := float64(g.settings.ChunkSize * g.settings.TileSize)
	return ChunkCoord{
		X: int(math.Floor(pos.X / edge)),
		Y: int(math.Floor(pos.Y / edge)),
	}
}

// Attach records id as living on the grid. Attaching twice is a no-op.
func (g *Grid) Attach(id models.EntityID) {
	if _, ok := g.attached[id]; ok {
		return
	}
	g.attached[id] = struct{}{}
	g.entities = append(g.entities, id)
}

// Anchor attaches id and pins it to the chunk under pos, creating an empty
// chunk there if none was declared.
func (g *Grid) Anchor(id models.EntityID, pos physics.Vec2) ChunkCoord {
	g.Attach(id)
	coord := g.ChunkAt(pos)
	c, ok := g.chunks[coord]
	if !ok {
		c = newChunk(coord, g.settings.ChunkSize)
		g.chunks[coord] = c
	}
	c.anchored = append(c.anchored, id)
	return coord
}

func (g *Grid) IsAttached(id models.EntityID) bool {
	_, ok := g.attached[id]
	return ok
}

// Entities lists attached entities in attach order.
func (g *Grid) Entities() []models.EntityID {
	out := make([]models.EntityID, len(g.entities))
	copy(out, g.entities)
	return out
}

// LocalBounds covers every filled tile. An empty grid has zero bounds.
func (g *Grid) LocalBounds() physics.Box2 {
	var (
		bounds physics.Box2
		found  bool
	)
	for _, c := range g.Chunks() {
		b, ok := c.localBounds(float64(g.settings.TileSize))
		if !ok {
			continue
		}
		if !found {
			bounds, found = b, true
			continue
		}
		bounds = bounds.Union(b)
	}
	return bounds
}
