package store

import "github.com/credohq/credo/internal/domain"

type OverrideStore struct {
	overrides *index[*domain.HumanOverride]
}

func NewOverrideStore() *OverrideStore {
	return &OverrideStore{overrides: newIndex[*domain.HumanOverride]()}
}

func (s *OverrideStore) Put(o *domain.HumanOverride) {
	s.overrides.put(o.ID, o)
}

func (s *OverrideStore) GetByID(id string) (*domain.HumanOverride, error) {
	o, ok := s.overrides.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *OverrideStore) List() []*domain.HumanOverride {
	return s.overrides.list()
}
