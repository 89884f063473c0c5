package models

import (
	"fmt"
	"sync/atomic"
)

type EntityID uint64

// InvalidEntity is never handed out by an Allocator.
const InvalidEntity EntityID = 0

// Component is a typed bundle of resolved fields attached to one entity.
type Component interface {
	TypeName() string
}

// Attachable components learn their owner when added to an entity.
type Attachable interface {
	OnAttach(owner EntityID)
}

// Allocator hands out entity identifiers. One allocator is shared by every
// load of a loader so identifier spaces never overlap.
type Allocator struct {
	last atomic.Uint64
}

func (a *Allocator) Next() EntityID {
	return EntityID(a.last.Add(1))
}

// Entity is a loaded game object: a component set plus its place in the
// transform hierarchy.
type Entity struct {
	id        EntityID
	uid       int64
	prototype string
	grid      int

	components map[string]Component
	order      []string

	parent   *Entity
	children []*Entity
}

// NewEntity creates an unparented entity with no grid.
func NewEntity(id EntityID, uid int64, prototype string) *Entity {
	return &Entity{
		id:         id,
		uid:        uid,
		prototype:  prototype,
		grid:       -1,
		components: make(map[string]Component),
	}
}

func (e *Entity) ID() EntityID { return e.id }

// Uid is the identifier the entity had in its source document.
func (e *Entity) Uid() int64 { return e.uid }

// Prototype returns the id of the prototype the entity was built from, or "".
func (e *Entity) Prototype() string { return e.prototype }

// GridIndex returns the grid the entity is attached to, or -1.
func (e *Entity) GridIndex() int { return e.grid }

func (e *Entity) SetGridIndex(i int) { e.grid = i }

func (e *Entity) AddComponent(c Component) error {
	name := c.TypeName()
	if _, ok := e.components[name]; ok {
		return fmt.Errorf("%w: %s on entity %d", ErrComponentExists, name, e.id)
	}
	e.components[name] = c
	e.order = append(e.order, name)
	if a, ok := c.(Attachable); ok {
		a.OnAttach(e.id)
	}
	return nil
}

func (e *Entity) GetComponent(name string) (Component, bool) {
	c, ok := e.components[name]
	return c, ok
}

func (e *Entity) HasComponent(name string) bool {
	_, ok := e.components[name]
	return ok
}

// Components returns the components in the order they were added.
func (e *Entity) Components() []Component {
	out := make([]Component, len(e.order))
	for i, name := range e.order {
		out[i] = e.components[name]
	}
	return out
}

func (e *Entity) ComponentNames() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Entity) Parent() *Entity { return e.parent }

func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

// SetParent links e under p. An entity is parented once; relinking and
// cycles are rejected.
func (e *Entity) SetParent(p *Entity) error {
	if p == nil {
		return nil
	}
	if e.parent != nil {
		return fmt.Errorf("%w: entity %d already has parent %d", ErrAlreadyParented, e.id, e.parent.id)
	}
	for a := p; a != nil; a = a.parent {
		if a == e {
			return fmt.Errorf("%w: entity %d under %d", ErrParentCycle, e.id, p.id)
		}
	}
	e.parent = p
	p.children = append(p.children, e)
	return nil
}

// Root walks up the parent chain.
func (e *Entity) Root() *Entity {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Walk visits e and every descendant depth-first, parents before children.
func (e *Entity) Walk(fn func(*Entity) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Get returns the first component of type T on e.
func Get[T Component](e *Entity) (T, bool) {
	for _, name := range e.order {
		if c, ok := e.components[name].(T); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}
