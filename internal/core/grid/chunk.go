package grid

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

// TileBytes is the encoded size of one tile: uint16 id, flags, variant.
const TileBytes = 4

// ChunkCoord indexes a chunk within its grid, in chunks.
type ChunkCoord struct {
	X, Y int
}

func (c ChunkCoord) String() string { return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) }

// ParseChunkCoord reads the "x,y" form chunk documents use.
func ParseChunkCoord(s string) (ChunkCoord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return ChunkCoord{}, fmt.Errorf("chunk index %q: want \"x,y\"", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return ChunkCoord{}, fmt.Errorf("chunk index %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return ChunkCoord{}, fmt.Errorf("chunk index %q: %w", s, err)
	}
	return ChunkCoord{X: x, Y: y}, nil
}

// Tile is one cell. Id 0 is empty space.
type Tile struct {
	ID      uint16
	Flags   uint8
	Variant uint8
}

func (t Tile) Empty() bool { return t.ID == 0 }

// TileMap names the tile definitions a document's tile ids refer to.
type TileMap map[uint16]string

// Chunk is a square block of tiles plus the entities anchored on it. It is
// owned by its grid.
type Chunk struct {
	coord    ChunkCoord
	size     int
	tiles    []Tile
	anchored []models.EntityID
}

func newChunk(coord ChunkCoord, size int) *Chunk {
	return &Chunk{coord: coord, size: size, tiles: make([]Tile, size*size)}
}

// DecodeChunk reads a base64 tile payload of size*size tiles, row by row.
// Every non-empty tile id must be named by tiles.
func DecodeChunk(coord ChunkCoord, size int, payload string, tiles TileMap) (*Chunk, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, malformed(ErrChunkPayload, "chunk %s: %v", coord, err)
	}
	if want := size * size * TileBytes; len(raw) != want {
		return nil, malformed(ErrChunkPayload, "chunk %s: %d bytes, want %d", coord, len(raw), want)
	}
	c := newChunk(coord, size)
	for i := range c.tiles {
		b := raw[i*TileBytes:]
		t := Tile{ID: binary.LittleEndian.Uint16(b), Flags: b[2], Variant: b[3]}
		if !t.Empty() {
			if _, ok := tiles[t.ID]; !ok {
				return nil, malformed(ErrUnknownTile, "chunk %s tile %d: id %d", coord, i, t.ID)
			}
		}
		c.tiles[i] = t
	}
	return c, nil
}

// EncodeChunk is the inverse of DecodeChunk.
func EncodeChunk(c *Chunk) string {
	raw := make([]byte, len(c.tiles)*TileBytes)
	for i, t := range c.tiles {
		b := raw[i*TileBytes:]
		binary.LittleEndian.PutUint16(b, t.ID)
		b[2] = t.Flags
		b[3] = t.Variant
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func (c *Chunk) Coord() ChunkCoord { return c.coord }
func (c *Chunk) Size() int         { return c.size }

// Tile returns the tile at local x, y. Out of range reads are empty.
func (c *Chunk) Tile(x, y int) Tile {
	if x < 0 || y < 0 || x >= c.size || y >= c.size {
		return Tile{}
	}
	return c.tiles[y*c.size+x]
}

// SetTile writes the tile at local x, y.
func (c *Chunk) SetTile(x, y int, t Tile) {
	if x < 0 || y < 0 || x >= c.size || y >= c.size {
		return
	}
	c.tiles[y*c.size+x] = t
}

// FilledTiles counts non-empty tiles.
func (c *Chunk) FilledTiles() int {
	n := 0
	for _, t := range c.tiles {
		if !t.Empty() {
			n++
		}
	}
	return n
}

func (c *Chunk) Anchored() []models.EntityID {
	out := make([]models.EntityID, len(c.anchored))
	copy(out, c.anchored)
	return out
}

// localBounds covers the filled tiles of c in grid space, ok is false when
// the chunk is empty.
func (c *Chunk) localBounds(tileSize float64) (b physics.Box2, ok bool) {
	origin := physics.Vec2{X: float64(c.coord.X * c.size), Y: float64(c.coord.Y * c.size)}
	for y := 0; y < c.size; y++ {
		for x := 0; x < c.size; x++ {
			if c.tiles[y*c.size+x].Empty() {
				continue
			}
			cell := physics.Box2{
				Left:   (origin.X + float64(x)) * tileSize,
				Bottom: (origin.Y + float64(y)) * tileSize,
				Right:  (origin.X + float64(x+1)) * tileSize,
				Top:    (origin.Y + float64(y+1)) * tileSize,
			}
			if !ok {
				b, ok = cell, true
				continue
			}
			b = b.Union(cell)
		}
	}
	return b, ok
}
