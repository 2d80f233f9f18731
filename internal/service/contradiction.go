package service

import (
	"fmt"
	"time"

	"github.com/credohq/credo/internal/domain"
	"go.uber.org/zap"
)

const (
	divergenceFlagThreshold = 0.8
	divergenceHighThreshold = 0.9
)

// ContradictionService scans recorded state for the four contradiction
// classes. Contradiction ids are content-derived, so every detection method
// is an idempotent re-scan that returns only newly created items.
type ContradictionService struct {
	graph          domain.AssertionGraph
	beliefs        domain.BeliefStore
	decisions      domain.DecisionStore
	policies       domain.PolicyStore
	meanings       domain.MeaningStore
	contradictions domain.ContradictionStore
	logger         *zap.Logger
}

func NewContradictionService(
	graph domain.AssertionGraph,
	beliefs domain.BeliefStore,
	decisions domain.DecisionStore,
	policies domain.PolicyStore,
	meanings domain.MeaningStore,
	contradictions domain.ContradictionStore,
	logger *zap.Logger,
) *ContradictionService {
	return &ContradictionService{
		graph:          graph,
		beliefs:        beliefs,
		decisions:      decisions,
		policies:       policies,
		meanings:       meanings,
		contradictions: contradictions,
		logger:         logger,
	}
}

// DetectAssertionConflicts groups assertions by normalized claim text. A
// group of two or more containing at least one cross-source pair yields one
// HIGH contradiction over the whole group.
func (s *ContradictionService) DetectAssertionConflicts(now time.Time) []*domain.Contradiction {
	groups := make(map[string][]*domain.Assertion)
	var order []string
	for _, a := range s.graph.ListAssertions() {
		key := domain.NormalizeClaim(a.Claim)
		if len(groups[key]) == 0 {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	var created []*domain.Contradiction
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 || !hasCrossSourcePair(group) {
			continue
		}
		ids := make([]string, len(group))
		for i, a := range group {
			ids[i] = a.ID
		}
		c := domain.NewContradiction(
			domain.ContradictionAssertionConflict,
			ids,
			domain.SeverityHigh,
			fmt.Sprintf("%d assertions from different sources state %q", len(group), key),
			now,
			map[string]any{"normalized_claim": key},
		)
		created = s.record(c, created)
	}
	return created
}

func hasCrossSourcePair(group []*domain.Assertion) bool {
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if group[i].Source != group[j].Source {
				return true
			}
		}
	}
	return false
}

// DetectBeliefDivergence flags every (belief, human-override decision) pair
// where the belief's current confidence is at or above 0.8: HIGH at 0.9+,
// MEDIUM below.
func (s *ContradictionService) DetectBeliefDivergence(now time.Time) []*domain.Contradiction {
	var overrides []*domain.Decision
	for _, d := range s.decisions.List() {
		if d.Type == domain.DecisionHumanOverride {
			overrides = append(overrides, d)
		}
	}

	var created []*domain.Contradiction
	for _, b := range s.beliefs.List() {
		confidence := b.CurrentConfidence(now)
		if confidence < divergenceFlagThreshold {
			continue
		}
		severity := domain.SeverityMedium
		if confidence >= divergenceHighThreshold {
			severity = domain.SeverityHigh
		}
		for _, d := range overrides {
			c := domain.NewContradiction(
				domain.ContradictionBeliefDivergence,
				[]string{b.ID, d.ID},
				severity,
				fmt.Sprintf("belief holds %.2f confidence while a human override chose %q", confidence, d.Action),
				now,
				map[string]any{"confidence": confidence},
			)
			created = s.record(c, created)
		}
	}
	return created
}

// DetectPolicyConflicts compares all policy pairs: overlapping targets with
// the same policy type but different enforcement conflict at MEDIUM.
func (s *ContradictionService) DetectPolicyConflicts(now time.Time) []*domain.Contradiction {
	policies := s.policies.List()
	var created []*domain.Contradiction
	for i := 0; i < len(policies); i++ {
		for j := i + 1; j < len(policies); j++ {
			a, b := policies[i], policies[j]
			if !a.Overlaps(b) || a.Type != b.Type || a.Enforcement == b.Enforcement {
				continue
			}
			c := domain.NewContradiction(
				domain.ContradictionPolicyConflict,
				[]string{a.ID, b.ID},
				domain.SeverityMedium,
				fmt.Sprintf("policies %q and %q govern the same target with %s vs %s enforcement", a.Name, b.Name, a.Enforcement, b.Enforcement),
				now,
				nil,
			)
			created = s.record(c, created)
		}
	}
	return created
}

// DetectSemanticDrift flags, per meaning id, every major-incompatible pair
// among the non-deprecated versions, MEDIUM.
func (s *ContradictionService) DetectSemanticDrift(now time.Time) []*domain.Contradiction {
	var created []*domain.Contradiction
	for _, meaningID := range s.meanings.MeaningIDs() {
		var active []*domain.MeaningVersion
		for _, v := range s.meanings.ListByMeaning(meaningID) {
			if !v.Deprecated {
				active = append(active, v)
			}
		}
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				a, b := active[i], active[j]
				if a.CompatibleWith(b) {
					continue
				}
				c := domain.NewContradiction(
					domain.ContradictionSemanticDrift,
					[]string{meaningID + "@" + a.Version, meaningID + "@" + b.Version},
					domain.SeverityMedium,
					fmt.Sprintf("meaning %q has incompatible active versions %s and %s", meaningID, a.Version, b.Version),
					now,
					map[string]any{"meaning_id": meaningID},
				)
				created = s.record(c, created)
			}
		}
	}
	return created
}

// ScanAll runs every detector and returns the union of new findings.
func (s *ContradictionService) ScanAll(now time.Time) []*domain.Contradiction {
	var created []*domain.Contradiction
	created = append(created, s.DetectAssertionConflicts(now)...)
	created = append(created, s.DetectBeliefDivergence(now)...)
	created = append(created, s.DetectPolicyConflicts(now)...)
	created = append(created, s.DetectSemanticDrift(now)...)
	return created
}

// Resolve mutates the contradiction's resolution status, the one mutable
// field on the record.
func (s *ContradictionService) Resolve(id string, status domain.ResolutionStatus) error {
	if err := s.contradictions.SetResolution(id, status); err != nil {
		return fmt.Errorf("resolve contradiction %s: %w", id, err)
	}
	s.logger.Info("contradiction resolved",
		zap.String("contradiction_id", id),
		zap.String("status", string(status)))
	return nil
}

func (s *ContradictionService) List() []*domain.Contradiction {
	return s.contradictions.List()
}

func (s *ContradictionService) record(c *domain.Contradiction, created []*domain.Contradiction) []*domain.Contradiction {
	if !s.contradictions.Put(c) {
		return created
	}
	s.logger.Info("contradiction detected",
		zap.String("contradiction_id", c.ID),
		zap.String("type", string(c.Type)),
		zap.String("severity", string(c.Severity)),
		zap.Int("items", len(c.ConflictingItems)))
	return append(created, c)
}
