package resolver

import (
	"errors"
	"fmt"

	"github.com/zeusync/blueprint/internal/core/schema"
)

var (
	ErrFieldTypeMismatch    = errors.New("field type mismatch")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnknownField         = errors.New("unknown field")
)

// FieldError localizes a resolution failure to one field of one component.
type FieldError struct {
	Component string
	Field     string
	Expected  schema.Type
	Got       string
	Layer     Layer
	Err       error
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrFieldTypeMismatch):
		return fmt.Sprintf("%s.%s: %v: expected %s, got %s in %s layer",
			e.Component, e.Field, e.Err, e.Expected, e.Got, e.Layer)
	case errors.Is(e.Err, ErrUnknownField):
		return fmt.Sprintf("%s.%s: %v in %s layer", e.Component, e.Field, e.Err, e.Layer)
	default:
		return fmt.Sprintf("%s.%s: %v", e.Component, e.Field, e.Err)
	}
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
