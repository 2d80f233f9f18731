package store

import "github.com/credohq/credo/internal/domain"

// MeaningStore keys versions by meaning_id + version string and groups them
// per meaning for drift scans.
type MeaningStore struct {
	versions  *index[*domain.MeaningVersion]
	byMeaning map[string][]string
	meanings  []string
}

func NewMeaningStore() *MeaningStore {
	return &MeaningStore{
		versions:  newIndex[*domain.MeaningVersion](),
		byMeaning: make(map[string][]string),
	}
}

func (s *MeaningStore) Put(m *domain.MeaningVersion) {
	key := m.MeaningID + "@" + m.Version
	if _, exists := s.versions.get(key); !exists {
		if len(s.byMeaning[m.MeaningID]) == 0 {
			s.meanings = append(s.meanings, m.MeaningID)
		}
		s.byMeaning[m.MeaningID] = append(s.byMeaning[m.MeaningID], key)
	}
	s.versions.put(key, m)
}

func (s *MeaningStore) MeaningIDs() []string {
	return append([]string(nil), s.meanings...)
}

func (s *MeaningStore) ListByMeaning(meaningID string) []*domain.MeaningVersion {
	keys := s.byMeaning[meaningID]
	out := make([]*domain.MeaningVersion, 0, len(keys))
	for _, key := range keys {
		if m, ok := s.versions.get(key); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *MeaningStore) List() []*domain.MeaningVersion {
	return s.versions.list()
}
