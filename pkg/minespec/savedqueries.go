package minespec

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// SavedQuery is a named search query kept for reuse.
type SavedQuery struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Query       spectypes.SearchQuery `json:"query"`
	CreatedAt   time.Time             `json:"created_at"`
}

// SavedQueryStore is an in-memory saved query collection. Queries do not
// survive a restart; a host application wanting persistence can project
// the store into its own tables.
type SavedQueryStore struct {
	mu      sync.RWMutex
	queries map[string]SavedQuery
}

func NewSavedQueryStore() *SavedQueryStore {
	return &SavedQueryStore{queries: make(map[string]SavedQuery)}
}

// Save stores the query under a fresh id and returns the saved record.
func (s *SavedQueryStore) Save(name, description string, query spectypes.SearchQuery) SavedQuery {
	saved := SavedQuery{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Query:       query,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.queries[saved.ID] = saved
	s.mu.Unlock()

	return saved
}

// Get returns the saved query with the given id.
func (s *SavedQueryStore) Get(id string) (SavedQuery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.queries[id]
	return q, ok
}

// Delete removes a saved query. It reports whether the id existed.
func (s *SavedQueryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queries[id]; !ok {
		return false
	}
	delete(s.queries, id)
	return true
}

// List returns all saved queries, newest first.
func (s *SavedQueryStore) List() []SavedQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SavedQuery, 0, len(s.queries))
	for _, q := range s.queries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
