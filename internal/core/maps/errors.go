package maps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/schema/resolver"
)

var (
	ErrDuplicateComponentOverride = errors.New("component declared twice on one entity")
	ErrDanglingParentReference    = errors.New("parent uid not in document")
	ErrDuplicateUid               = errors.New("duplicate entity uid")
	ErrGridOwnerMissing           = errors.New("grid has no owner entity")
	ErrEntityOffGrid              = errors.New("parented entity is on no grid")
	ErrMapAlreadyLoaded           = errors.New("map already loaded")
	ErrMapNotFound                = errors.New("map not found")
	ErrInvalidTransition          = errors.New("invalid load stage transition")
	ErrUnsupportedFormat          = errors.New("unsupported map format")
)

// LoadError places a failed map load: the stage it died in and, where known,
// the entity, component and field involved.
type LoadError struct {
	MapID MapID
	// Stage is the stage the load failed to reach.
	Stage     Stage
	Uid       int64
	HasUid    bool
	Component string
	Field     string
	Err       error
}

func newLoadError(mapID MapID, stage Stage, err error) *LoadError {
	le := &LoadError{MapID: mapID, Stage: stage, Err: err}
	var fe *resolver.FieldError
	if errors.As(err, &fe) {
		le.Component, le.Field = fe.Component, fe.Field
	}
	var be *component.BuildError
	if le.Component == "" && errors.As(err, &be) {
		le.Component, le.Field = be.Component, be.Field
	}
	return le
}

func (e *LoadError) withUid(uid int64) *LoadError {
	e.Uid, e.HasUid = uid, true
	return e
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load map %d (%s)", e.MapID, e.Stage)
	if e.HasUid {
		fmt.Fprintf(&b, " uid %d", e.Uid)
	}
	if e.Component != "" {
		b.WriteString(" component " + e.Component)
		if e.Field != "" {
			b.WriteString("." + e.Field)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
