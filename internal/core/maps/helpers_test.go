package maps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/component/builtin"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/prototype"
	"github.com/zeusync/blueprint/internal/core/schema"
)

const testMap = `
meta:
  format: 2
  name: DemoStation
  author: Space-Wizards
  postmapinit: false
grids:
- settings:
    chunksize: 16
    tilesize: 1
    snapsize: 1
  chunks: []
tilemap: {}
entities:
- uid: 0
  components:
  - parent: null
    type: Transform
  - index: 0
    type: MapGrid
  - fixtures:
    - shape:
        !type:PhysShapeGrid
          grid: 0
    type: Physics
- uid: 1
  type: MapDeserializeTest
  components:
  - type: MapDeserializeTest
    foo: 3
  - parent: 0
    type: Transform
`

const testPrototypes = `
- type: entity
  id: MapDeserializeTest
  components:
  - type: MapDeserializeTest
    foo: 1
    bar: 2
`

// deserializeTest carries three ints defaulting to -1.
type deserializeTest struct {
	Foo, Bar, Baz int64
}

func (d *deserializeTest) TypeName() string { return "MapDeserializeTest" }

// initCounter counts MapInit calls.
type initCounter struct {
	calls *int
	fail  bool
}

func (c *initCounter) TypeName() string { return "InitCounter" }

func (c *initCounter) MapInit() error {
	*c.calls++
	if c.fail {
		return errors.New("init refused")
	}
	return nil
}

type fixture struct {
	loader    *Loader
	initCalls int
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{}
	registry, err := builtin.NewRegistry()
	require.NoError(t, err)
	require.NoError(t, registry.Register(component.Definition{
		Schema: schema.MustComponent("MapDeserializeTest",
			schema.Int("foo", -1),
			schema.Int("bar", -1),
			schema.Int("baz", -1),
		),
		New: func(_ component.BuildContext, v schema.Values) (models.Component, error) {
			return &deserializeTest{Foo: v.Int("foo"), Bar: v.Int("bar"), Baz: v.Int("baz")}, nil
		},
	}))
	require.NoError(t, registry.Register(component.Definition{
		Schema: schema.MustComponent("InitCounter", schema.Bool("fail", false)),
		New: func(_ component.BuildContext, v schema.Values) (models.Component, error) {
			return &initCounter{calls: &f.initCalls, fail: v.Bool("fail")}, nil
		},
	}))
	f.loader = NewLoader(prototype.NewStore(), registry, opts)
	require.NoError(t, f.loader.LoadPrototypes(parse(t, testPrototypes)))
	return f
}

func parse(t *testing.T, text string) document.Value {
	t.Helper()
	v, err := document.ParseYAML([]byte(text))
	require.NoError(t, err)
	return v
}

// mapDoc builds a format 2 document with one empty grid owned by uid 0 and the
// given extra entity records.
func mapDoc(t *testing.T, entities string) document.Value {
	t.Helper()
	return parse(t, `
meta:
  format: 2
  name: test
grids:
- chunks: []
entities:
- uid: 0
  components:
  - type: Transform
  - type: MapGrid
    index: 0
`+entities)
}
