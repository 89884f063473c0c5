package maps

import (
	"fmt"
	"strconv"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/grid"
	"github.com/zeusync/blueprint/internal/core/prototype"
)

// FormatVersion is the only map format the loader reads.
const FormatVersion = 2

// Document is a decoded map document. Component fields are still raw.
type Document struct {
	Meta     Meta
	Grids    []GridDecl
	TileMap  grid.TileMap
	Entities []EntityRecord
}

type Meta struct {
	Format int
	Name   string
	Author string
	// PostMapInit is true when the saved map was already map-initialized.
	PostMapInit bool
}

type GridDecl struct {
	Settings grid.Settings
	Chunks   []ChunkDecl
}

type ChunkDecl struct {
	Index grid.ChunkCoord
	Tiles string
}

// EntityRecord is one entity instance. Prototype is empty for entities
// described by their components alone.
type EntityRecord struct {
	Uid        int64
	Prototype  string
	Components []prototype.ComponentData
}

// DecodeDocument checks the structure of a map document. Uid uniqueness,
// component tags and field values are checked later by the load.
func DecodeDocument(v document.Value) (*Document, error) {
	root, ok := document.Mapping(v)
	if !ok {
		return nil, document.Malformed("$", "map document must be a mapping, got %s", document.TypeName(v))
	}
	if err := onlyKeys(root, "$", "meta", "grids", "tilemap", "entities"); err != nil {
		return nil, err
	}

	doc := &Document{TileMap: grid.TileMap{}}
	var err error
	if doc.Meta, err = decodeMeta(root); err != nil {
		return nil, err
	}

	rawGrids, _ := root.Get("grids")
	grids, ok := seqOrEmpty(rawGrids)
	if !ok {
		return nil, document.Malformed("$.grids", "must be a sequence")
	}
	for i, g := range grids {
		decl, err := decodeGrid(g, fmt.Sprintf("$.grids[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Grids = append(doc.Grids, decl)
	}

	if raw, has := root.Get("tilemap"); has && raw != nil {
		tm, ok := document.Mapping(raw)
		if !ok {
			return nil, document.Malformed("$.tilemap", "must be a mapping")
		}
		for _, k := range tm.Keys() {
			id, err := strconv.ParseUint(k, 10, 16)
			if err != nil {
				return nil, document.Malformed("$.tilemap", "tile id %q is not a uint16", k)
			}
			name, _ := tm.Get(k)
			s, ok := document.String(name)
			if !ok {
				return nil, document.Malformed("$.tilemap."+k, "tile name must be a string")
			}
			doc.TileMap[uint16(id)] = s
		}
	}

	rawEntities, _ := root.Get("entities")
	entities, ok := seqOrEmpty(rawEntities)
	if !ok {
		return nil, document.Malformed("$.entities", "must be a sequence")
	}
	for i, e := range entities {
		rec, err := decodeEntity(e, fmt.Sprintf("$.entities[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, rec)
	}
	return doc, nil
}

func decodeMeta(root *document.Map) (Meta, error) {
	meta := Meta{PostMapInit: true}
	raw, ok := root.Get("meta")
	if !ok {
		return meta, document.Malformed("$.meta", "missing")
	}
	m, ok := document.Mapping(raw)
	if !ok {
		return meta, document.Malformed("$.meta", "must be a mapping")
	}
	if err := onlyKeys(m, "$.meta", "format", "name", "author", "postmapinit"); err != nil {
		return meta, err
	}
	rawFormat, _ := m.Get("format")
	format, ok := document.Int(rawFormat)
	if !ok {
		return meta, document.Malformed("$.meta.format", "must be an integer")
	}
	if format != FormatVersion {
		return meta, fmt.Errorf("%w: %w: format %d, want %d", document.ErrMalformedDocument, ErrUnsupportedFormat, format, FormatVersion)
	}
	meta.Format = int(format)
	if raw, has := m.Get("name"); has && raw != nil {
		meta.Name, _ = document.String(raw)
	}
	if raw, has := m.Get("author"); has && raw != nil {
		meta.Author, _ = document.String(raw)
	}
	if raw, has := m.Get("postmapinit"); has {
		b, ok := raw.(bool)
		if !ok {
			return meta, document.Malformed("$.meta.postmapinit", "must be a bool")
		}
		meta.PostMapInit = b
	}
	return meta, nil
}

func decodeGrid(v document.Value, path string) (GridDecl, error) {
	decl := GridDecl{Settings: grid.DefaultSettings()}
	m, ok := document.Mapping(v)
	if !ok {
		return decl, document.Malformed(path, "grid must be a mapping")
	}
	if err := onlyKeys(m, path, "settings", "chunks"); err != nil {
		return decl, err
	}
	if raw, has := m.Get("settings"); has && raw != nil {
		s, ok := document.Mapping(raw)
		if !ok {
			return decl, document.Malformed(path+".settings", "must be a mapping")
		}
		if err := onlyKeys(s, path+".settings", "chunksize", "tilesize", "snapsize"); err != nil {
			return decl, err
		}
		for key, dst := range map[string]*int{"chunksize": &decl.Settings.ChunkSize, "tilesize": &decl.Settings.TileSize} {
			if raw, has := s.Get(key); has {
				n, ok := document.Int(raw)
				if !ok {
					return decl, document.Malformed(path+".settings."+key, "must be an integer")
				}
				*dst = int(n)
			}
		}
		if raw, has := s.Get("snapsize"); has {
			f, ok := number(raw)
			if !ok {
				return decl, document.Malformed(path+".settings.snapsize", "must be a number")
			}
			decl.Settings.SnapSize = f
		}
	}

	rawChunks, _ := m.Get("chunks")
	chunks, ok := seqOrEmpty(rawChunks)
	if !ok {
		return decl, document.Malformed(path+".chunks", "must be a sequence")
	}
	for i, c := range chunks {
		cpath := fmt.Sprintf("%s.chunks[%d]", path, i)
		cm, ok := document.Mapping(c)
		if !ok {
			return decl, document.Malformed(cpath, "chunk must be a mapping")
		}
		if err := onlyKeys(cm, cpath, "ind", "tiles"); err != nil {
			return decl, err
		}
		rawInd, _ := cm.Get("ind")
		ind, ok := document.String(rawInd)
		if !ok {
			return decl, document.Malformed(cpath+".ind", "must be an \"x,y\" string")
		}
		coord, err := grid.ParseChunkCoord(ind)
		if err != nil {
			return decl, document.Malformed(cpath+".ind", "%v", err)
		}
		rawTiles, _ := cm.Get("tiles")
		tiles, ok := document.String(rawTiles)
		if !ok {
			return decl, document.Malformed(cpath+".tiles", "must be a base64 string")
		}
		decl.Chunks = append(decl.Chunks, ChunkDecl{Index: coord, Tiles: tiles})
	}
	return decl, nil
}

func decodeEntity(v document.Value, path string) (EntityRecord, error) {
	var rec EntityRecord
	m, ok := document.Mapping(v)
	if !ok {
		return rec, document.Malformed(path, "entity must be a mapping")
	}
	if err := onlyKeys(m, path, "uid", "type", "components"); err != nil {
		return rec, err
	}
	rawUid, has := m.Get("uid")
	if !has {
		return rec, document.Malformed(path, "entity without uid")
	}
	if rec.Uid, ok = document.Int(rawUid); !ok {
		return rec, document.Malformed(path+".uid", "must be an integer")
	}
	path = fmt.Sprintf("%s(uid %d)", path, rec.Uid)
	if raw, has := m.Get("type"); has && raw != nil {
		if rec.Prototype, ok = document.String(raw); !ok || rec.Prototype == "" {
			return rec, document.Malformed(path+".type", "prototype id must be a non-empty string")
		}
	}
	rawComps, _ := m.Get("components")
	comps, err := prototype.DecodeComponents(rawComps, path+".components")
	if err != nil {
		return rec, err
	}
	rec.Components = comps
	return rec, nil
}

func onlyKeys(m *document.Map, path string, allowed ...string) error {
	for _, k := range m.Keys() {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return document.Malformed(path, "unknown key %q", k)
		}
	}
	return nil
}

func seqOrEmpty(v document.Value) ([]any, bool) {
	if v == nil {
		return nil, true
	}
	return document.Seq(v)
}

func number(v document.Value) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	}
	return 0, false
}
