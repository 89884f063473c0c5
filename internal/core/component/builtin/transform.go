package builtin

import (
	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
)

const TransformName = "Transform"

var transformSchema = schema.MustComponent(TransformName,
	schema.Uid("parent").Describe("document uid of the parent entity, null for roots"),
	schema.Vec2("pos"),
	schema.Float("rot", 0),
	schema.Bool("noRot", false),
)

// Transform places an entity relative to its parent.
type Transform struct {
	owner models.EntityID

	parentUid int64
	hasParent bool

	LocalPosition   physics.Vec2
	LocalRotation   float64
	NoLocalRotation bool
}

func (t *Transform) TypeName() string { return TransformName }

func (t *Transform) OnAttach(owner models.EntityID) { t.owner = owner }

func (t *Transform) Owner() models.EntityID { return t.owner }

// ParentUid is the document uid this transform is parented to.
func (t *Transform) ParentUid() (int64, bool) { return t.parentUid, t.hasParent }

func newTransform(_ component.BuildContext, v schema.Values) (models.Component, error) {
	t := &Transform{
		LocalPosition:   v["pos"].(physics.Vec2),
		LocalRotation:   v.Float("rot"),
		NoLocalRotation: v.Bool("noRot"),
	}
	t.parentUid, t.hasParent = v.Uid("parent")
	return t, nil
}
