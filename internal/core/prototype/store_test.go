package prototype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blueprint/internal/core/document"
)

func proto(id, parent string, comps ...ComponentData) *Prototype {
	return &Prototype{ID: id, Parent: parent, Components: comps}
}

func comp(tag string, fields map[string]any) ComponentData {
	return ComponentData{Tag: tag, Fields: document.MustFromGo(fields).(*document.Map)}
}

func TestStore_RegisterAndGet(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Register(proto("a", "")))
	require.ErrorIs(t, s.Register(proto("a", "")), ErrDuplicatePrototype)

	p, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)
	_, err = s.Get("b")
	require.ErrorIs(t, err, ErrPrototypeNotFound)
	assert.True(t, s.Has("a"))
	assert.Equal(t, 1, s.Len())
}

func TestStore_Lookup(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Register(proto("a", "", comp("C", map[string]any{"foo": 1, "bar": 2}))))

	fields, ok, err := s.Lookup("a", "C")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"foo": int64(1), "bar": int64(2)}, fields.ToGo())

	_, ok, err = s.Lookup("a", "Other")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Lookup("missing", "C")
	require.ErrorIs(t, err, ErrPrototypeNotFound)
}

func TestStore_LookupMergesParentChain(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.RegisterAll([]*Prototype{
		proto("child", "base", comp("C", map[string]any{"bar": 5}), comp("D", nil)),
		proto("base", "", comp("C", map[string]any{"foo": 1, "bar": 2}), comp("E", nil)),
	}))

	fields, ok, err := s.Lookup("child", "C")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"foo": int64(1), "bar": int64(5)}, fields.ToGo())

	tags, err := s.Tags("child")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "E", "D"}, tags)

	// The parent's own defaults are untouched by the merge.
	fields, _, err = s.Lookup("base", "C")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": int64(1), "bar": int64(2)}, fields.ToGo())
}

func TestStore_RegisterAllIsAtomic(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Register(proto("a", "")))

	err := s.RegisterAll([]*Prototype{proto("b", ""), proto("a", "")})
	require.ErrorIs(t, err, ErrDuplicatePrototype)
	assert.False(t, s.Has("b"))

	err = s.RegisterAll([]*Prototype{proto("c", ""), proto("d", "nowhere")})
	require.ErrorIs(t, err, ErrPrototypeNotFound)
	assert.False(t, s.Has("c"))
	assert.False(t, s.Has("d"))
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestStore_RejectsCycles(t *testing.T) {
	s := NewStore()
	err := s.RegisterAll([]*Prototype{proto("x", "y"), proto("y", "x")})
	require.ErrorIs(t, err, ErrPrototypeCycle)
	assert.Equal(t, 0, s.Len())
	require.NoError(t, s.Validate())
}

func TestStore_AcquireBlocksRegistration(t *testing.T) {
	s := NewStore()
	release := s.Acquire()
	require.ErrorIs(t, s.Register(proto("a", "")), ErrStoreInUse)

	second := s.Acquire()
	release()
	release()
	require.ErrorIs(t, s.Register(proto("a", "")), ErrStoreInUse)

	second()
	require.NoError(t, s.Register(proto("a", "")))
}
