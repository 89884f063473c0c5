package maps

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/component/builtin"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/events/bus"
	"github.com/zeusync/blueprint/internal/core/grid"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/observability/log"
	"github.com/zeusync/blueprint/internal/core/prototype"
	"github.com/zeusync/blueprint/internal/core/systems/physics"
	"github.com/zeusync/blueprint/pkg/concurrent"
	"github.com/zeusync/blueprint/pkg/sequence"
)

type Options struct {
	// RunMapInit runs map init on documents saved before map init
	// (meta.postmapinit: false).
	RunMapInit bool
	// DecodeWorkers bounds parallel prototype decoding. Zero means GOMAXPROCS.
	DecodeWorkers int

	Logger log.Log
	// Bus receives load lifecycle events when set.
	Bus bus.EventBus
	// Broadphase receives the physics bodies of every committed map when set.
	Broadphase physics.Broadphase
}

type mapSlot struct {
	content *Map
	loading bool
	loaded  bool
}

// Loader owns the maps it creates. Loads run synchronously in the caller's
// goroutine; different maps may load concurrently.
type Loader struct {
	store    *prototype.Store
	registry *component.Registry
	alloc    models.Allocator
	opts     Options
	log      log.Log

	nextMap atomic.Uint32

	mu       sync.RWMutex
	maps     map[MapID]*mapSlot
	entities map[models.EntityID]*models.Entity
}

func NewLoader(store *prototype.Store, registry *component.Registry, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loader{
		store:    store,
		registry: registry,
		opts:     opts,
		log:      logger.With(log.String("component", "maps.loader")),
		maps:     make(map[MapID]*mapSlot),
		entities: make(map[models.EntityID]*models.Entity),
	}
}

func (l *Loader) Store() *prototype.Store { return l.store }

func (l *Loader) Registry() *component.Registry { return l.registry }

// LoadPrototypes decodes prototype documents in parallel and registers the
// result as one batch, in document order. Nothing is registered on error.
func (l *Loader) LoadPrototypes(docs ...document.Value) error {
	start := time.Now()
	decoded, err := concurrent.MapErr(context.Background(), docs, l.opts.DecodeWorkers,
		func(_ context.Context, doc document.Value) ([]*prototype.Prototype, error) {
			return prototype.Decode(doc)
		})
	if err != nil {
		l.log.Warn("prototype decode failed", log.Error(err))
		return err
	}

	var batch []*prototype.Prototype
	for _, ps := range decoded {
		batch = append(batch, ps...)
	}
	if err := l.store.RegisterAll(batch); err != nil {
		l.log.Warn("prototype registration failed", log.Error(err))
		return err
	}

	ids := sequence.ToArray(sequence.From(batch), func(p *prototype.Prototype) string { return p.ID })
	l.log.Info("prototypes loaded",
		log.Int("documents", len(docs)),
		log.Int("prototypes", len(batch)),
		log.Duration("duration", time.Since(start)),
	)
	l.publish(l.log, EventPrototypesLoaded, PrototypesLoaded{Documents: len(docs), IDs: ids})
	return nil
}

// CreateMap reserves a new empty map.
func (l *Loader) CreateMap() MapID {
	id := MapID(l.nextMap.Add(1))
	l.mu.Lock()
	l.maps[id] = &mapSlot{content: &Map{ID: id, byUid: map[int64]*models.Entity{}}}
	l.mu.Unlock()
	l.log.Debug("map created", log.MapID(uint32(id)))
	return id
}

// LoadMap loads doc into a created, still empty map. The load is atomic: on
// error the map stays empty and no entity becomes visible.
func (l *Loader) LoadMap(mapID MapID, doc document.Value) (*GridHandle, error) {
	return l.loadMap(mapID, doc, false)
}

// LoadBlueprint loads a document declaring exactly one grid and returns it.
func (l *Loader) LoadBlueprint(mapID MapID, doc document.Value) (*grid.Grid, error) {
	handle, err := l.loadMap(mapID, doc, true)
	if err != nil {
		return nil, err
	}
	return handle.Grids[0], nil
}

func (l *Loader) loadMap(mapID MapID, doc document.Value, blueprint bool) (*GridHandle, error) {
	if err := l.claim(mapID); err != nil {
		return nil, err
	}
	loadID := uuid.New()
	logger := l.log.With(log.MapID(uint32(mapID)), log.String("load_id", loadID.String()))
	start := time.Now()

	m, err := l.build(mapID, loadID, doc, blueprint, logger)
	if err == nil {
		err = l.commit(m)
	}
	if err != nil {
		l.release(mapID)
		logger.Warn("map load failed", log.Error(err))
		l.publish(logger, EventMapLoadFailed, LoadFailed{MapID: mapID, LoadID: loadID, Err: err})
		return nil, err
	}

	logger.Info("map loaded",
		log.String("name", m.Name),
		log.Int("entities", len(m.entities)),
		log.Int("grids", len(m.grids)),
		log.Bool("map_init", m.handle.MapInitialized),
		log.Duration("duration", time.Since(start)),
	)
	l.publish(logger, EventMapLoaded, m.handle)
	return m.handle, nil
}

// build runs every stage of a load without touching loader state.
func (l *Loader) build(mapID MapID, loadID uuid.UUID, doc document.Value, blueprint bool, logger log.Log) (*Map, error) {
	p := &progress{hook: func(_, to Stage) {
		logger.Debug("load stage", log.Stage(to.String()))
	}}
	fail := func(err error) error {
		return newLoadError(mapID, p.stage+1, err)
	}

	parsed, err := DecodeDocument(doc)
	if err != nil {
		return nil, fail(err)
	}
	if blueprint && len(parsed.Grids) != 1 {
		return nil, fail(document.Malformed("$.grids", "blueprint declares %d grids, want 1", len(parsed.Grids)))
	}
	release := l.store.Acquire()
	defer release()
	if err := p.advance(StagePrototypesLoaded); err != nil {
		return nil, err
	}

	b := newBuilder(mapID, l.store, l.registry, &l.alloc, len(parsed.Grids))
	if err := b.buildAll(parsed.Entities); err != nil {
		return nil, err
	}
	if err := p.advance(StageEntitiesInstantiated); err != nil {
		return nil, err
	}

	if err := linkParents(mapID, b.entities, b.byUid); err != nil {
		return nil, err
	}
	if err := p.advance(StageHierarchyLinked); err != nil {
		return nil, err
	}

	grids, err := attachGrids(mapID, parsed, b.entities)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageGridsAttached); err != nil {
		return nil, err
	}

	mapInit := !parsed.Meta.PostMapInit && l.opts.RunMapInit
	if mapInit {
		if err := runMapInit(mapID, b.entities); err != nil {
			return nil, err
		}
	}
	if err := p.advance(StageReady); err != nil {
		return nil, err
	}

	m := &Map{
		ID:       mapID,
		Name:     parsed.Meta.Name,
		Author:   parsed.Meta.Author,
		entities: b.entities,
		byUid:    b.byUid,
		grids:    grids,
	}
	m.handle = &GridHandle{
		MapID:          mapID,
		LoadID:         loadID,
		Grids:          grids,
		Entities:       len(b.entities),
		MapInitialized: mapInit,
		Checksum:       checksum(b.entities, b.prints),
	}
	return m, nil
}

func runMapInit(mapID MapID, entities []*models.Entity) error {
	for _, e := range entities {
		for _, c := range e.Components() {
			mi, ok := c.(component.MapInitializer)
			if !ok {
				continue
			}
			if err := mi.MapInit(); err != nil {
				le := newLoadError(mapID, StageReady, err).withUid(e.Uid())
				le.Component = c.TypeName()
				return le
			}
		}
	}
	return nil
}

func checksum(entities []*models.Entity, prints map[int64]uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	for _, e := range entities {
		put(uint64(e.Uid()))
		put(prints[e.Uid()])
		if parent := e.Parent(); parent != nil {
			put(1)
			put(uint64(parent.Uid()))
		} else {
			put(0)
		}
		put(uint64(int64(e.GridIndex())))
	}
	return d.Sum64()
}

func (l *Loader) claim(mapID MapID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.maps[mapID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrMapNotFound, mapID)
	}
	if slot.loading || slot.loaded {
		return fmt.Errorf("%w: %d", ErrMapAlreadyLoaded, mapID)
	}
	slot.loading = true
	return nil
}

func (l *Loader) release(mapID MapID) {
	l.mu.Lock()
	if slot, ok := l.maps[mapID]; ok {
		slot.loading = false
	}
	l.mu.Unlock()
}

// commit publishes a built map. Physics bodies go to the broadphase first so
// a rejected body leaves the map unloaded.
func (l *Loader) commit(m *Map) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.maps[m.ID]
	if !ok || !slot.loading {
		return newLoadError(m.ID, StageReady, fmt.Errorf("%w: %d was unloaded during the load", ErrMapNotFound, m.ID))
	}

	if bp := l.opts.Broadphase; bp != nil {
		for _, e := range m.entities {
			p, ok := models.Get[*builtin.Physics](e)
			if !ok {
				continue
			}
			if err := bp.AddBody(uint32(m.ID), p.Body()); err != nil {
				bp.RemoveMap(uint32(m.ID))
				le := newLoadError(m.ID, StageReady, err).withUid(e.Uid())
				le.Component = builtin.PhysicsName
				return le
			}
		}
	}

	slot.content = m
	slot.loading = false
	slot.loaded = true
	for _, e := range m.entities {
		l.entities[e.ID()] = e
	}
	return nil
}

// UnloadMap drops a map and its entities. A load in progress on the map fails
// at commit.
func (l *Loader) UnloadMap(mapID MapID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.maps[mapID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrMapNotFound, mapID)
	}
	for _, e := range slot.content.entities {
		delete(l.entities, e.ID())
	}
	delete(l.maps, mapID)
	if bp := l.opts.Broadphase; bp != nil && slot.loaded {
		bp.RemoveMap(uint32(mapID))
	}
	l.log.Debug("map unloaded", log.MapID(uint32(mapID)))
	return nil
}

// Map returns a created map. It is empty until a load commits.
func (l *Loader) Map(mapID MapID) (*Map, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	slot, ok := l.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMapNotFound, mapID)
	}
	return slot.content, nil
}

// Maps lists created maps in id order.
func (l *Loader) Maps() []MapID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]MapID, 0, len(l.maps))
	for id := range l.maps {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Entity finds a committed entity of any map.
func (l *Loader) Entity(id models.EntityID) (*models.Entity, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entities[id]
	return e, ok
}

func (l *Loader) publish(logger log.Log, eventType string, data any) {
	if l.opts.Bus == nil {
		return
	}
	if err := l.opts.Bus.Publish(bus.NewEvent(eventType, eventSource, data, nil)); err != nil {
		logger.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
