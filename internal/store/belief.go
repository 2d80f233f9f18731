package store

import "github.com/credohq/credo/internal/domain"

// BeliefStore indexes beliefs by id and by assertion id. Updates replace the
// record under the same id (copy-on-write at the service layer).
type BeliefStore struct {
	beliefs     *index[*domain.Belief]
	byAssertion map[string][]string
}

func NewBeliefStore() *BeliefStore {
	return &BeliefStore{
		beliefs:     newIndex[*domain.Belief](),
		byAssertion: make(map[string][]string),
	}
}

func (s *BeliefStore) Put(b *domain.Belief) {
	if _, exists := s.beliefs.get(b.ID); !exists {
		s.byAssertion[b.AssertionID] = append(s.byAssertion[b.AssertionID], b.ID)
	}
	s.beliefs.put(b.ID, b)
}

func (s *BeliefStore) GetByID(id string) (*domain.Belief, error) {
	b, ok := s.beliefs.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *BeliefStore) ListByAssertion(assertionID string) []*domain.Belief {
	ids := s.byAssertion[assertionID]
	out := make([]*domain.Belief, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.beliefs.get(id); ok {
			out = append(out, b)
		}
	}
	return out
}

func (s *BeliefStore) List() []*domain.Belief {
	return s.beliefs.list()
}

func (s *BeliefStore) Delete(id string) {
	b, ok := s.beliefs.get(id)
	if !ok {
		return
	}
	s.beliefs.delete(id)
	ids := s.byAssertion[b.AssertionID]
	for i, bid := range ids {
		if bid == id {
			s.byAssertion[b.AssertionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (s *BeliefStore) Clear() {
	s.beliefs.clear()
	s.byAssertion = make(map[string][]string)
}
