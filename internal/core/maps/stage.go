package maps

import "fmt"

// Stage is a step of a map load. A load moves through every stage in order.
type Stage uint8

const (
	StageEmpty Stage = iota
	// StagePrototypesLoaded: the document is decoded and the load holds the
	// prototype store.
	StagePrototypesLoaded
	StageEntitiesInstantiated
	StageHierarchyLinked
	StageGridsAttached
	StageReady
)

var stageNames = [...]string{
	StageEmpty:                "empty",
	StagePrototypesLoaded:     "prototypes_loaded",
	StageEntitiesInstantiated: "entities_instantiated",
	StageHierarchyLinked:      "hierarchy_linked",
	StageGridsAttached:        "grids_attached",
	StageReady:                "ready",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", s)
}

// progress tracks one load's stage.
type progress struct {
	stage Stage
	// hook observes every transition.
	hook func(from, to Stage)
}

func (p *progress) advance(to Stage) error {
	if to != p.stage+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.stage, to)
	}
	from := p.stage
	p.stage = to
	if p.hook != nil {
		p.hook(from, to)
	}
	return nil
}
