package builtin

import (
	"fmt"

	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/schema"
)

const MapGridName = "MapGrid"

var mapGridSchema = schema.MustComponent(MapGridName,
	schema.Int("index", 0).AsRequired().Describe("position of the grid in the document's grid list"),
)

// MapGrid marks the entity owning a grid.
type MapGrid struct {
	Index int
}

func (g *MapGrid) TypeName() string { return MapGridName }

func newMapGrid(ctx component.BuildContext, v schema.Values) (models.Component, error) {
	i := v.Int("index")
	if i < 0 || int(i) >= ctx.Grids {
		return nil, fmt.Errorf("%w: grid index %d, document declares %d grids", document.ErrMalformedDocument, i, ctx.Grids)
	}
	return &MapGrid{Index: int(i)}, nil
}

const MetaDataName = "MetaData"

var metaDataSchema = schema.MustComponent(MetaDataName,
	schema.String("name", ""),
	schema.String("description", ""),
)

// MetaData carries display text.
type MetaData struct {
	Name        string
	Description string
}

func (m *MetaData) TypeName() string { return MetaDataName }

func newMetaData(_ component.BuildContext, v schema.Values) (models.Component, error) {
	return &MetaData{Name: v.String("name"), Description: v.String("description")}, nil
}
