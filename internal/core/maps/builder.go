package maps

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/blueprint/internal/core/component"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/prototype"
	"github.com/zeusync/blueprint/internal/core/schema/resolver"
)

// builder turns entity records into entities. It owns the load-scoped uid
// table and touches nothing outside the load until commit.
type builder struct {
	mapID    MapID
	store    *prototype.Store
	registry *component.Registry
	alloc    *models.Allocator
	grids    int

	entities []*models.Entity
	byUid    map[int64]*models.Entity
	// prints holds a digest of each entity's resolved components, by uid.
	prints map[int64]uint64
}

func newBuilder(mapID MapID, store *prototype.Store, registry *component.Registry, alloc *models.Allocator, grids int) *builder {
	return &builder{
		mapID:    mapID,
		store:    store,
		registry: registry,
		alloc:    alloc,
		grids:    grids,
		byUid:    make(map[int64]*models.Entity),
		prints:   make(map[int64]uint64),
	}
}

func (b *builder) buildAll(records []EntityRecord) error {
	for _, rec := range records {
		if err := b.build(rec); err != nil {
			return newLoadError(b.mapID, StageEntitiesInstantiated, err).withUid(rec.Uid)
		}
	}
	return nil
}

func (b *builder) build(rec EntityRecord) error {
	if _, dup := b.byUid[rec.Uid]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateUid, rec.Uid)
	}

	overrides := make(map[string]*document.Map, len(rec.Components))
	for _, c := range rec.Components {
		if _, dup := overrides[c.Tag]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateComponentOverride, c.Tag)
		}
		overrides[c.Tag] = c.Fields
	}

	tags, err := b.tags(rec)
	if err != nil {
		return err
	}

	entity := models.NewEntity(b.alloc.Next(), rec.Uid, rec.Prototype)
	ctx := component.BuildContext{MapID: uint32(b.mapID), Uid: rec.Uid, Grids: b.grids}
	digest := xxhash.New()
	for _, tag := range tags {
		def, err := b.registry.Definition(tag)
		if err != nil {
			return &component.BuildError{Component: tag, Err: err}
		}
		var defaults *document.Map
		if rec.Prototype != "" {
			if defaults, _, err = b.store.Lookup(rec.Prototype, tag); err != nil {
				return err
			}
		}
		values, err := resolver.ResolveComponent(def.Schema, defaults, overrides[tag])
		if err != nil {
			return err
		}
		built, err := b.registry.Build(ctx, tag, values)
		if err != nil {
			return err
		}
		if err := entity.AddComponent(built); err != nil {
			return err
		}
		_, _ = digest.WriteString(tag)
		var sum [8]byte
		binary.LittleEndian.PutUint64(sum[:], resolver.Fingerprint(values))
		_, _ = digest.Write(sum[:])
	}

	b.entities = append(b.entities, entity)
	b.byUid[rec.Uid] = entity
	b.prints[rec.Uid] = digest.Sum64()
	return nil
}

// tags lists the components an entity gets: the prototype's first, then the
// ones only the record names, each in declaration order.
func (b *builder) tags(rec EntityRecord) ([]string, error) {
	var tags []string
	seen := make(map[string]struct{})
	if rec.Prototype != "" {
		p, err := b.store.Get(rec.Prototype)
		if err != nil {
			return nil, err
		}
		if p.Abstract {
			return nil, fmt.Errorf("%w: %q", prototype.ErrAbstractPrototype, p.ID)
		}
		protoTags, err := b.store.Tags(rec.Prototype)
		if err != nil {
			return nil, err
		}
		for _, t := range protoTags {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	for _, c := range rec.Components {
		if _, ok := seen[c.Tag]; ok {
			continue
		}
		seen[c.Tag] = struct{}{}
		tags = append(tags, c.Tag)
	}
	return tags, nil
}
