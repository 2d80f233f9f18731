package store

import "github.com/credohq/credo/internal/domain"

type PolicyStore struct {
	policies *index[*domain.Policy]
}

func NewPolicyStore() *PolicyStore {
	return &PolicyStore{policies: newIndex[*domain.Policy]()}
}

func (s *PolicyStore) Put(p *domain.Policy) {
	s.policies.put(p.ID, p)
}

func (s *PolicyStore) GetByID(id string) (*domain.Policy, error) {
	p, ok := s.policies.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *PolicyStore) List() []*domain.Policy {
	return s.policies.list()
}
