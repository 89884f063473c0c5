package component

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownComponentType = errors.New("unknown component type")
	ErrUnknownVariantTag    = errors.New("unknown variant tag")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrInvalidDefinition    = errors.New("invalid definition")
)

// BuildError places a construction failure on a field of a component.
type BuildError struct {
	Component string
	Field     string
	Err       error
}

func (e *BuildError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("build %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("build %s.%s: %v", e.Component, e.Field, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
