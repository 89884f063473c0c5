package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	var seen []Stage
	p := &progress{hook: func(_, to Stage) { seen = append(seen, to) }}

	require.NoError(t, p.advance(StagePrototypesLoaded))
	require.ErrorIs(t, p.advance(StageHierarchyLinked), ErrInvalidTransition)
	require.ErrorIs(t, p.advance(StagePrototypesLoaded), ErrInvalidTransition)
	assert.Equal(t, StagePrototypesLoaded, p.stage)

	for _, s := range []Stage{StageEntitiesInstantiated, StageHierarchyLinked, StageGridsAttached, StageReady} {
		require.NoError(t, p.advance(s))
	}
	require.ErrorIs(t, p.advance(StageReady+1), ErrInvalidTransition)
	assert.Equal(t, []Stage{
		StagePrototypesLoaded,
		StageEntitiesInstantiated,
		StageHierarchyLinked,
		StageGridsAttached,
		StageReady,
	}, seen)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "empty", StageEmpty.String())
	assert.Equal(t, "hierarchy_linked", StageHierarchyLinked.String())
	assert.Equal(t, "ready", StageReady.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}

func TestLoadError(t *testing.T) {
	err := newLoadError(3, StageHierarchyLinked, ErrDanglingParentReference).withUid(12)
	err.Component, err.Field = "Transform", "parent"
	assert.Equal(t, "load map 3 (hierarchy_linked) uid 12 component Transform.parent: parent uid not in document", err.Error())
	assert.ErrorIs(t, err, ErrDanglingParentReference)

	plain := newLoadError(1, StagePrototypesLoaded, ErrUnsupportedFormat)
	assert.Equal(t, "load map 1 (prototypes_loaded): unsupported map format", plain.Error())
}
