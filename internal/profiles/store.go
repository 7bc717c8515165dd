package profiles

import (
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
)

// Store is an immutable, ordered mapping template_id -> Profile. Iteration
// order is insertion order. A Store is loaded once and shared read-only; use
// With to derive a modified copy.
type Store struct {
	schema fingerprint.Schema
	order  []string
	byID   map[string]Profile
}

// NewStore builds a store. A repeated template ID replaces the earlier
// profile but keeps its position.
func NewStore(schema fingerprint.Schema, ps ...Profile) *Store {
	s := &Store{schema: schema, byID: make(map[string]Profile, len(ps))}
	for _, p := range ps {
		s.put(p)
	}
	return s
}

func (s *Store) put(p Profile) {
	if _, ok := s.byID[p.TemplateID]; !ok {
		s.order = append(s.order, p.TemplateID)
	}
	s.byID[p.TemplateID] = p.clone()
}

// With returns a new store holding the profiles of s plus p.
func (s *Store) With(p Profile) *Store {
	out := NewStore(s.schema, s.Profiles()...)
	out.put(p)
	return out
}

// Schema is the fingerprint layout the profiles were built with.
func (s *Store) Schema() fingerprint.Schema { return s.schema }

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns a copy of the profile for id.
func (s *Store) Get(id string) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	p, ok := s.byID[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// IDs returns template IDs in store order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Profiles returns copies of every profile in store order.
func (s *Store) Profiles() []Profile {
	if s == nil {
		return nil
	}
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].clone())
	}
	return out
}

// Each calls fn for every profile in store order without copying. fn must
// not modify the profile.
func (s *Store) Each(fn func(Profile)) {
	if s == nil {
		return
	}
	for _, id := range s.order {
		fn(s.byID[id])
	}
}
