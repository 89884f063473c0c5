package component

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/core/schema"
	"github.com/zeusync/blueprint/internal/core/schema/resolver"
)

// BuildContext is what a constructor may know about where it is being built.
// It is passed explicitly; constructors never look anything up globally.
type BuildContext struct {
	MapID uint32
	Uid   int64
	// Grids is the number of grids declared by the document being loaded.
	Grids int
}

// Constructor turns resolved values into a live component. Variant-typed
// values have already been built when it runs.
type Constructor func(ctx BuildContext, values schema.Values) (models.Component, error)

// VariantConstructor builds the value of a tagged field.
type VariantConstructor func(ctx BuildContext, values schema.Values) (any, error)

type Definition struct {
	Schema *schema.Component
	New    Constructor
}

type VariantDefinition struct {
	Schema *schema.Component
	New    VariantConstructor
}

// MapInitializer is implemented by components with work to do when a map
// that has not been map-initialized finishes loading.
type MapInitializer interface {
	MapInit() error
}

// Registry maps component and variant tags to their schemas and constructors.
type Registry struct {
	mu       sync.RWMutex
	comps    map[string]Definition
	variants map[string]VariantDefinition
}

func NewRegistry() *Registry {
	return &Registry{
		comps:    make(map[string]Definition),
		variants: make(map[string]VariantDefinition),
	}
}

func (r *Registry) Register(def Definition) error {
	if def.Schema == nil || def.New == nil {
		return fmt.Errorf("%w: component needs a schema and a constructor", ErrInvalidDefinition)
	}
	name := def.Schema.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comps[name]; ok {
		return fmt.Errorf("%w: component %s", ErrAlreadyRegistered, name)
	}
	r.comps[name] = def
	return nil
}

func (r *Registry) RegisterVariant(def VariantDefinition) error {
	if def.Schema == nil || def.New == nil {
		return fmt.Errorf("%w: variant needs a schema and a constructor", ErrInvalidDefinition)
	}
	name := def.Schema.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.variants[name]; ok {
		return fmt.Errorf("%w: variant %s", ErrAlreadyRegistered, name)
	}
	r.variants[name] = def
	return nil
}

func (r *Registry) Definition(tag string) (Definition, error) {
	r.mu.RLock()
	def, ok := r.comps[tag]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownComponentType, tag)
	}
	return def, nil
}

func (r *Registry) Schema(tag string) (*schema.Component, error) {
	def, err := r.Definition(tag)
	if err != nil {
		return nil, err
	}
	return def.Schema, nil
}

func (r *Registry) HasVariant(tag string) bool {
	r.mu.RLock()
	_, ok := r.variants[tag]
	r.mu.RUnlock()
	return ok
}

// Names lists registered component tags, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.comps))
	for name := range r.comps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build constructs component tag from resolved values. The component is bound
// to no entity yet.
func (r *Registry) Build(ctx BuildContext, tag string, values schema.Values) (models.Component, error) {
	def, err := r.Definition(tag)
	if err != nil {
		return nil, err
	}
	built, err := r.buildFields(ctx, tag, "", def.Schema.Fields(), values)
	if err != nil {
		return nil, err
	}
	c, err := def.New(ctx, built)
	if err != nil {
		return nil, &BuildError{Component: tag, Err: err}
	}
	return c, nil
}

// BuildVariant constructs a tagged value by its own tag. Its fields are
// resolved against the variant schema (given values, then schema defaults).
// The body must be a mapping or empty.
func (r *Registry) BuildVariant(ctx BuildContext, t *document.Tagged) (any, error) {
	r.mu.RLock()
	def, ok := r.variants[t.Tag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariantTag, t.Tag)
	}
	switch t.Value.(type) {
	case nil, *document.Map:
	default:
		return nil, document.Malformed(t.Tag, "variant body must be a mapping, got %s", document.TypeName(t.Value))
	}
	values, err := resolver.ResolveComponent(def.Schema, nil, t.Fields())
	if err != nil {
		return nil, err
	}
	built, err := r.buildFields(ctx, t.Tag, "", def.Schema.Fields(), values)
	if err != nil {
		return nil, err
	}
	v, err := def.New(ctx, built)
	if err != nil {
		return nil, &BuildError{Component: t.Tag, Err: err}
	}
	return v, nil
}

// buildFields returns a copy of values with every tagged value replaced by the
// variant it builds into.
func (r *Registry) buildFields(ctx BuildContext, owner, prefix string, fields []schema.Field, values schema.Values) (schema.Values, error) {
	out := make(schema.Values, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range fields {
		v, err := r.buildValue(ctx, owner, prefix+f.Name, f, values[f.Name])
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func (r *Registry) buildValue(ctx BuildContext, owner, path string, f schema.Field, v any) (any, error) {
	switch f.Type {
	case schema.TypeVariant:
		t, ok := v.(*document.Tagged)
		if !ok {
			return v, nil
		}
		built, err := r.BuildVariant(ctx, t)
		if err != nil {
			return nil, &BuildError{Component: owner, Field: path, Err: err}
		}
		return built, nil
	case schema.TypeList:
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			built, err := r.buildValue(ctx, owner, path+"["+strconv.Itoa(i)+"]", *f.Elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = built
		}
		return out, nil
	case schema.TypeStruct:
		sv, ok := v.(schema.Values)
		if !ok {
			return v, nil
		}
		return r.buildFields(ctx, owner, path+".", f.Fields, sv)
	default:
		return v, nil
	}
}
