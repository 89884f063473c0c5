package prototype

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/blueprint/internal/core/document"
)

// Store holds registered prototypes. It is filled before any map load and
// only read while loads hold it.
type Store struct {
	mu     sync.RWMutex
	protos map[string]*Prototype
	order  []string
	active int
}

func NewStore() *Store {
	return &Store{
		protos: make(map[string]*Prototype),
	}
}

// Register adds one prototype.
func (s *Store) Register(p *Prototype) error {
	return s.RegisterAll([]*Prototype{p})
}

// RegisterAll adds a batch of prototypes. Either every prototype is added or
// none is. A parent may appear anywhere in the batch, but every parent chain
// must resolve once the batch is in.
func (s *Store) RegisterAll(ps []*Prototype) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		return ErrStoreInUse
	}
	batch := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if p == nil || p.ID == "" {
			return fmt.Errorf("%w: prototype without id", document.ErrMalformedDocument)
		}
		if _, ok := s.protos[p.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicatePrototype, p.ID)
		}
		if _, ok := batch[p.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicatePrototype, p.ID)
		}
		batch[p.ID] = struct{}{}
	}
	for _, p := range ps {
		s.protos[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	for _, p := range ps {
		if _, err := s.chainLocked(p.ID); err != nil {
			for _, added := range ps {
				delete(s.protos, added.ID)
			}
			s.order = s.order[:len(s.order)-len(ps)]
			return err
		}
	}
	return nil
}

// Acquire marks the store as read by a load until the returned release is
// called. Registration fails while any load holds the store.
func (s *Store) Acquire() (release func()) {
	s.mu.Lock()
	s.active++
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.active--
			s.mu.Unlock()
		})
	}
}

func (s *Store) Get(id string) (*Prototype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.protos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPrototypeNotFound, id)
	}
	return p, nil
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	_, ok := s.protos[id]
	s.mu.RUnlock()
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.protos)
}

// IDs returns prototype ids in registration order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup returns the default fields prototype id gives component tag, merged
// field by field along the parent chain (nearest prototype wins). ok is false
// when no prototype in the chain mentions tag.
func (s *Store) Lookup(id, tag string) (fields *document.Map, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain, err := s.chainLocked(id)
	if err != nil {
		return nil, false, err
	}
	merged := document.NewMap()
	for i := len(chain) - 1; i >= 0; i-- {
		own, has := chain[i].Component(tag)
		if !has {
			continue
		}
		ok = true
		for _, k := range own.Keys() {
			v, _ := own.Get(k)
			merged.Set(k, v)
		}
	}
	if !ok {
		return nil, false, nil
	}
	return merged, true, nil
}

// Tags returns every component tag prototype id carries, ancestors' tags
// first.
func (s *Store) Tags(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain, err := s.chainLocked(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, c := range chain[i].Components {
			if _, ok := seen[c.Tag]; ok {
				continue
			}
			seen[c.Tag] = struct{}{}
			out = append(out, c.Tag)
		}
	}
	return out, nil
}

// Validate checks that every parent reference resolves and that no parent
// chain loops.
func (s *Store) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.protos))
	for id := range s.protos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := s.chainLocked(id); err != nil {
			return err
		}
	}
	return nil
}

// chainLocked returns id followed by its ancestors.
func (s *Store) chainLocked(id string) ([]*Prototype, error) {
	var chain []*Prototype
	visited := make(map[string]struct{})
	for cur := id; cur != ""; {
		if _, ok := visited[cur]; ok {
			return nil, fmt.Errorf("%w: %q", ErrPrototypeCycle, id)
		}
		visited[cur] = struct{}{}
		p, ok := s.protos[cur]
		if !ok {
			if cur == id {
				return nil, fmt.Errorf("%w: %q", ErrPrototypeNotFound, id)
			}
			return nil, fmt.Errorf("%w: %q (parent of %q)", ErrPrototypeNotFound, cur, chain[len(chain)-1].ID)
		}
		chain = append(chain, p)
		cur = p.Parent
	}
	return chain, nil
}
