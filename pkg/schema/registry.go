package schema

import (
	"sort"
	"sync"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Entity describes one searchable collection: its table, the fields the
// engine may filter/sort/aggregate on, the fields eligible for free-text
// search, and the relations that can be eager-loaded (bun field names).
type Entity struct {
	Name           string
	Table          string
	Fields         map[string]spectypes.DataType
	FullText       []string
	Relations      []string
	RelationFields []string
}

// HasField reports whether the entity has a searchable field with this name.
func (e Entity) HasField(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// CanSearchText reports whether free-text search may run against field:
// either a declared full-text field or a string-typed searchable field.
func (e Entity) CanSearchText(field string) bool {
	for _, f := range e.FullText {
		if f == field {
			return true
		}
	}
	return e.Fields[field] == spectypes.TypeString
}

// Registry is the static entity catalogue. It is populated once at startup
// and never mutated afterwards, so concurrent reads need no coordination;
// the mutex only guards registration.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]Entity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]Entity)}
}

// Register adds an entity definition. Re-registering a name replaces it.
func (r *Registry) Register(e Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Table == "" {
		e.Table = e.Name
	}
	r.entities[e.Name] = e
}

// Entity returns the definition for name, or an UnknownEntityError.
func (r *Registry) Entity(name string) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[name]
	if !ok {
		return Entity{}, &spectypes.UnknownEntityError{Entity: name}
	}
	return e, nil
}

// Names returns all registered entity names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldType returns the data type of a field on an entity. The second
// return is false when either the entity or the field is unknown.
func (r *Registry) FieldType(entity, field string) (spectypes.DataType, bool) {
	e, err := r.Entity(entity)
	if err != nil {
		return "", false
	}
	dt, ok := e.Fields[field]
	return dt, ok
}

// Describe builds the schema descriptor served to clients.
func (r *Registry) Describe(name string) (*spectypes.EntitySchema, error) {
	e, err := r.Entity(name)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]spectypes.DataType, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v
	}

	return &spectypes.EntitySchema{
		Entity:             e.Name,
		SearchableFields:   fields,
		FullTextFields:     append([]string(nil), e.FullText...),
		SupportedOperators: spectypes.Operators(),
		SupportedDataTypes: spectypes.DataTypes(),
		RelationFields:     append([]string(nil), e.RelationFields...),
	}, nil
}
