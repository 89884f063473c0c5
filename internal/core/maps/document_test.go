package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/grid"
)

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument(parse(t, testMap))
	require.NoError(t, err)

	assert.Equal(t, Meta{Format: 2, Name: "DemoStation", Author: "Space-Wizards"}, doc.Meta)
	require.Len(t, doc.Grids, 1)
	assert.Equal(t, grid.Settings{ChunkSize: 16, TileSize: 1, SnapSize: 1}, doc.Grids[0].Settings)
	assert.Empty(t, doc.Grids[0].Chunks)
	assert.Empty(t, doc.TileMap)

	require.Len(t, doc.Entities, 2)
	assert.Equal(t, int64(0), doc.Entities[0].Uid)
	assert.Equal(t, "", doc.Entities[0].Prototype)
	assert.Len(t, doc.Entities[0].Components, 3)
	assert.Equal(t, "MapDeserializeTest", doc.Entities[1].Prototype)
	assert.Equal(t, "MapDeserializeTest", doc.Entities[1].Components[0].Tag)
}

func TestDecodeDocument_Defaults(t *testing.T) {
	doc, err := DecodeDocument(parse(t, "meta: {format: 2}\ngrids:\n- {}\n"))
	require.NoError(t, err)
	assert.True(t, doc.Meta.PostMapInit)
	assert.Equal(t, grid.DefaultSettings(), doc.Grids[0].Settings)
	assert.Empty(t, doc.Entities)
}

func TestDecodeDocument_Chunks(t *testing.T) {
	doc, err := DecodeDocument(parse(t, `
meta: {format: 2}
grids:
- settings: {chunksize: 4}
  chunks:
  - ind: "-1,2"
    tiles: AAAA
tilemap:
  0: space
  7: floor
`))
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Grids[0].Settings.ChunkSize)
	assert.Equal(t, []ChunkDecl{{Index: grid.ChunkCoord{X: -1, Y: 2}, Tiles: "AAAA"}}, doc.Grids[0].Chunks)
	assert.Equal(t, grid.TileMap{0: "space", 7: "floor"}, doc.TileMap)
}

func TestDecodeDocument_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not a mapping", "- 1\n"},
		{"missing meta", "entities: []\n"},
		{"unknown root key", "meta: {format: 2}\nextra: 1\n"},
		{"unknown meta key", "meta: {format: 2, owner: me}\n"},
		{"format not int", "meta: {format: two}\n"},
		{"postmapinit not bool", "meta: {format: 2, postmapinit: yes please}\n"},
		{"grids not a sequence", "meta: {format: 2}\ngrids: {}\n"},
		{"bad chunk index", "meta: {format: 2}\ngrids:\n- chunks:\n  - {ind: nowhere, tiles: AAAA}\n"},
		{"bad tile id", "meta: {format: 2}\ntilemap: {70000: floor}\n"},
		{"entity without uid", "meta: {format: 2}\nentities:\n- type: Thing\n"},
		{"unknown entity key", "meta: {format: 2}\nentities:\n- uid: 1\n  name: thing\n"},
		{"empty prototype id", "meta: {format: 2}\nentities:\n- uid: 1\n  type: \"\"\n"},
		{"component without type", "meta: {format: 2}\nentities:\n- uid: 1\n  components:\n  - foo: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument(parse(t, tt.text))
			require.ErrorIs(t, err, document.ErrMalformedDocument)
		})
	}
}

func TestDecodeDocument_UnsupportedFormat(t *testing.T) {
	_, err := DecodeDocument(parse(t, "meta: {format: 1}\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.ErrorIs(t, err, document.ErrMalformedDocument)
}
