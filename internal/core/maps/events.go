package maps

import "github.com/google/uuid"

// Event types published on the loader's bus.
const (
	EventMapLoaded        = "map.loaded"
	EventMapLoadFailed    = "map.load_failed"
	EventPrototypesLoaded = "prototypes.loaded"

	eventSource = "maps.loader"
)

// LoadFailed is the payload of EventMapLoadFailed.
type LoadFailed struct {
	MapID  MapID
	LoadID uuid.UUID
	Err    error
}

// PrototypesLoaded is the payload of EventPrototypesLoaded.
type PrototypesLoaded struct {
	Documents int
	IDs       []string
}
