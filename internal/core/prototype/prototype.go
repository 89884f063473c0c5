package prototype

import (
	"fmt"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/schema"
)

// KindEntity is the only prototype kind the store holds.
const KindEntity = "entity"

// ComponentData is one component block of a document: the type tag plus the
// raw field values (the "type" key removed).
type ComponentData struct {
	Tag    string
	Fields *document.Map
}

// Prototype is a named entity template. It is immutable once registered.
type Prototype struct {
	ID          string
	Name        string
	Description string
	Parent      string
	Abstract    bool
	Components  []ComponentData
}

// Component returns the raw defaults this prototype itself declares for tag,
// without inheritance.
func (p *Prototype) Component(tag string) (*document.Map, bool) {
	for _, c := range p.Components {
		if c.Tag == tag {
			return c.Fields, true
		}
	}
	return nil, false
}

// DecodeComponents reads a "components" sequence. Duplicate tags are left to
// the caller, which decides how to report them.
func DecodeComponents(v document.Value, path string) ([]ComponentData, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := document.Seq(v)
	if !ok {
		return nil, document.Malformed(path, "components must be a sequence, got %s", document.TypeName(v))
	}
	out := make([]ComponentData, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		m, ok := document.Mapping(item)
		if !ok {
			return nil, document.Malformed(itemPath, "component must be a mapping, got %s", document.TypeName(item))
		}
		rawTag, ok := m.Get(schema.ReservedKey)
		if !ok {
			return nil, document.Malformed(itemPath, "component without type")
		}
		tag, ok := document.String(rawTag)
		if !ok || tag == "" {
			return nil, document.Malformed(itemPath, "component type must be a non-empty string")
		}
		out = append(out, ComponentData{Tag: tag, Fields: m.Without(schema.ReservedKey)})
	}
	return out, nil
}

var prototypeKeys = map[string]struct{}{
	"type": {}, "id": {}, "name": {}, "description": {}, "parent": {}, "abstract": {}, "components": {},
}

// Decode reads a prototype document: a sequence of prototype mappings. Entries
// of kinds other than "entity" are skipped.
func Decode(v document.Value) ([]*Prototype, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := document.Seq(v)
	if !ok {
		return nil, document.Malformed("$", "prototype document must be a sequence, got %s", document.TypeName(v))
	}
	out := make([]*Prototype, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		path := fmt.Sprintf("$[%d]", i)
		m, ok := document.Mapping(item)
		if !ok {
			return nil, document.Malformed(path, "prototype must be a mapping")
		}
		kind, _ := m.Get("type")
		if s, _ := document.String(kind); s != KindEntity {
			continue
		}
		p, err := decodeOne(m, path)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q declared twice in one document", ErrDuplicatePrototype, p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func decodeOne(m *document.Map, path string) (*Prototype, error) {
	for _, k := range m.Keys() {
		if _, ok := prototypeKeys[k]; !ok {
			return nil, document.Malformed(path, "unknown prototype key %q", k)
		}
	}
	p := &Prototype{}
	var ok bool
	rawID, _ := m.Get("id")
	if p.ID, ok = document.String(rawID); !ok || p.ID == "" {
		return nil, document.Malformed(path, "prototype id must be a non-empty string")
	}
	path = path + "(" + p.ID + ")"
	for key, dst := range map[string]*string{"name": &p.Name, "description": &p.Description, "parent": &p.Parent} {
		if raw, has := m.Get(key); has && raw != nil {
			if *dst, ok = document.String(raw); !ok {
				return nil, document.Malformed(path+"."+key, "must be a string")
			}
		}
	}
	if raw, has := m.Get("abstract"); has {
		if p.Abstract, ok = raw.(bool); !ok {
			return nil, document.Malformed(path+".abstract", "must be a bool")
		}
	}
	rawComps, _ := m.Get("components")
	comps, err := DecodeComponents(rawComps, path+".components")
	if err != nil {
		return nil, err
	}
	tags := make(map[string]struct{}, len(comps))
	for _, c := range comps {
		if _, dup := tags[c.Tag]; dup {
			return nil, document.Malformed(path+".components", "component %q declared twice", c.Tag)
		}
		tags[c.Tag] = struct{}{}
	}
	p.Components = comps
	return p, nil
}
