package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/blueprint/internal/core/models"
)

var ErrBodyExists = errors.New("body already registered")

var _ Broadphase = (*MemoryBroadphase)(nil)

// MemoryBroadphase keeps bodies per map in memory.
type MemoryBroadphase struct {
	mu     sync.RWMutex
	bodies map[uint32]map[models.EntityID]Body
	order  map[uint32][]models.EntityID
}

func NewMemoryBroadphase() *MemoryBroadphase {
	return &MemoryBroadphase{
		bodies: make(map[uint32]map[models.EntityID]Body),
		order:  make(map[uint32][]models.EntityID),
	}
}

func (b *MemoryBroadphase) AddBody(mapID uint32, body Body) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bodies[mapID] == nil {
		b.bodies[mapID] = make(map[models.EntityID]Body)
	}
	if _, ok := b.bodies[mapID][body.Entity]; ok {
		return fmt.Errorf("%w: entity %d", ErrBodyExists, body.Entity)
	}
	b.bodies[mapID][body.Entity] = body
	b.order[mapID] = append(b.order[mapID], body.Entity)
	return nil
}

func (b *MemoryBroadphase) RemoveMap(mapID uint32) {
	b.mu.Lock()
	delete(b.bodies, mapID)
	delete(b.order, mapID)
	b.mu.Unlock()
}

func (b *MemoryBroadphase) Bodies(mapID uint32) []Body {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Body, 0, len(b.order[mapID]))
	for _, id := range b.order[mapID] {
		out = append(out, b.bodies[mapID][id])
	}
	return out
}
