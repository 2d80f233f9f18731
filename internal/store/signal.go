package store

import "github.com/credohq/credo/internal/domain"

// SignalStore indexes economic signals by id with a secondary index on the
// target they apply to.
type SignalStore struct {
	signals  *index[*domain.EconomicSignal]
	byTarget map[string][]string
}

func NewSignalStore() *SignalStore {
	return &SignalStore{
		signals:  newIndex[*domain.EconomicSignal](),
		byTarget: make(map[string][]string),
	}
}

func (s *SignalStore) Put(sig *domain.EconomicSignal) {
	if _, exists := s.signals.get(sig.ID); !exists {
		s.byTarget[sig.AppliesTo] = append(s.byTarget[sig.AppliesTo], sig.ID)
	}
	s.signals.put(sig.ID, sig)
}

func (s *SignalStore) GetByID(id string) (*domain.EconomicSignal, error) {
	sig, ok := s.signals.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sig, nil
}

func (s *SignalStore) List() []*domain.EconomicSignal {
	return s.signals.list()
}

func (s *SignalStore) ListByTarget(appliesTo string) []*domain.EconomicSignal {
	ids := s.byTarget[appliesTo]
	out := make([]*domain.EconomicSignal, 0, len(ids))
	for _, id := range ids {
		if sig, ok := s.signals.get(id); ok {
			out = append(out, sig)
		}
	}
	return out
}
