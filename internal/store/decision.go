package store

import "github.com/credohq/credo/internal/domain"

type DecisionStore struct {
	decisions *index[*domain.Decision]
}

func NewDecisionStore() *DecisionStore {
	return &DecisionStore{decisions: newIndex[*domain.Decision]()}
}

func (s *DecisionStore) Put(d *domain.Decision) {
	s.decisions.put(d.ID, d)
}

func (s *DecisionStore) GetByID(id string) (*domain.Decision, error) {
	d, ok := s.decisions.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *DecisionStore) List() []*domain.Decision {
	return s.decisions.list()
}
