package store

import "github.com/credohq/credo/internal/domain"

// ContradictionStore accumulates detector output. Ids are derived from the
// conflicting items, so Put reports whether a scan actually found something
// new; resolution status is the only mutable field.
type ContradictionStore struct {
	contradictions *index[*domain.Contradiction]
}

func NewContradictionStore() *ContradictionStore {
	return &ContradictionStore{contradictions: newIndex[*domain.Contradiction]()}
}

func (s *ContradictionStore) Put(c *domain.Contradiction) bool {
	if _, exists := s.contradictions.get(c.ID); exists {
		return false
	}
	s.contradictions.put(c.ID, c)
	return true
}

func (s *ContradictionStore) GetByID(id string) (*domain.Contradiction, error) {
	c, ok := s.contradictions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *ContradictionStore) List() []*domain.Contradiction {
	return s.contradictions.list()
}

func (s *ContradictionStore) SetResolution(id string, status domain.ResolutionStatus) error {
	c, ok := s.contradictions.get(id)
	if !ok {
		return ErrNotFound
	}
	c.ResolutionStatus = status
	return nil
}
