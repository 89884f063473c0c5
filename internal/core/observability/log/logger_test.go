package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"loud":    LevelInfo,
	} {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLevelIsSharedWithDerivedLoggers(t *testing.T) {
	l := build(LevelWarn)
	child := l.With(MapID(3), Uid(7), Prototype("Wall"), Stage("ready"))
	assert.Equal(t, LevelWarn, child.GetLevel())

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, child.GetLevel())

	child.SetLevel(LevelSilent)
	assert.Equal(t, LevelSilent, l.GetLevel())
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("loaded", Int("entities", 2), Error(errors.New("x")))
		l.Log(LevelError, "failed", Bool("map_init", false))
	})
	assert.Equal(t, LevelSilent, l.GetLevel())
}
