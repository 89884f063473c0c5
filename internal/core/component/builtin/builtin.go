// Package builtin registers the component and variant kinds every map needs:
// transforms, grid ownership, physics bodies and their shapes.
package builtin

import (
	"github.com/zeusync/blueprint/internal/core/component"
)

// Register adds the built-in kinds to r.
func Register(r *component.Registry) error {
	for _, def := range []component.Definition{
		{Schema: transformSchema, New: newTransform},
		{Schema: mapGridSchema, New: newMapGrid},
		{Schema: physicsSchema, New: newPhysics},
		{Schema: metaDataSchema, New: newMetaData},
	} {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	for _, def := range []component.VariantDefinition{
		{Schema: shapeGridSchema, New: newShapeGrid},
		{Schema: shapeAabbSchema, New: newShapeAabb},
		{Schema: shapeCircleSchema, New: newShapeCircle},
	} {
		if err := r.RegisterVariant(def); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() (*component.Registry, error) {
	r := component.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
