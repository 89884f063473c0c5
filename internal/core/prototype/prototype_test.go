package prototype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/document"
)

const testPrototypes = `
- type: entity
  id: MapDeserializeTest
  name: test entity
  components:
  - type: MapDeserializeTest
    foo: 1
    bar: 2
- type: sound
  id: ignored
- type: entity
  id: Child
  parent: MapDeserializeTest
  components:
  - type: MapDeserializeTest
    bar: 5
  - type: MetaData
    name: child
`

func parse(t *testing.T, text string) document.Value {
	t.Helper()
	v, err := document.ParseYAML([]byte(text))
	require.NoError(t, err)
	return v
}

func TestDecode(t *testing.T) {
	protos, err := Decode(parse(t, testPrototypes))
	require.NoError(t, err)
	require.Len(t, protos, 2)

	p := protos[0]
	assert.Equal(t, "MapDeserializeTest", p.ID)
	assert.Equal(t, "test entity", p.Name)
	require.Len(t, p.Components, 1)
	assert.Equal(t, "MapDeserializeTest", p.Components[0].Tag)
	assert.Equal(t, []string{"foo", "bar"}, p.Components[0].Fields.Keys())

	assert.Equal(t, "MapDeserializeTest", protos[1].Parent)
	fields, ok := protos[1].Component("MetaData")
	require.True(t, ok)
	name, _ := fields.Get("name")
	assert.Equal(t, "child", name)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "not a sequence", body: "id: x", err: document.ErrMalformedDocument},
		{name: "missing id", body: "- type: entity\n", err: document.ErrMalformedDocument},
		{name: "unknown key", body: "- type: entity\n  id: a\n  colour: red\n", err: document.ErrMalformedDocument},
		{name: "component without type", body: "- type: entity\n  id: a\n  components:\n  - foo: 1\n", err: document.ErrMalformedDocument},
		{name: "duplicate component", body: "- type: entity\n  id: a\n  components:\n  - type: A\n  - type: A\n", err: document.ErrMalformedDocument},
		{name: "duplicate id", body: "- type: entity\n  id: a\n- type: entity\n  id: a\n", err: ErrDuplicatePrototype},
		{name: "abstract not bool", body: "- type: entity\n  id: a\n  abstract: 1\n", err: document.ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(parse(t, tt.body))
			require.ErrorIs(t, err, tt.err)
		})
	}
}
