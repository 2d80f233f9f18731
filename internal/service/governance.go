package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/identity"
	"go.uber.org/zap"
)

// ErrOverrideNotRenewable is returned when renewing an override that was
// not created with requires_renewal.
var ErrOverrideNotRenewable = errors.New("override is not renewable")

const (
	// Confidence bands for inferring the system's action from a belief.
	// Fields, not hard-wired logic: the divergence formula is a policy
	// choice and stays swappable.
	DefaultApproveThreshold = 0.8
	DefaultRejectThreshold  = 0.3
)

// ReconciliationResult compares what the system would have done against
// what a human decided.
type ReconciliationResult struct {
	BeliefID         string   `json:"belief_id"`
	OverrideID       string   `json:"override_id"`
	SystemAction     string   `json:"system_action"`
	HumanAction      string   `json:"human_action"`
	Confidence       float64  `json:"confidence"`
	Aligned          bool     `json:"aligned"`
	DivergenceScore  float64  `json:"divergence_score"`
	SuggestedActions []string `json:"suggested_actions"`
}

// GovernanceService records human overrides of system decisions, checks
// alignment between beliefs and human judgment, and mines systematic
// divergence from the decision history.
type GovernanceService struct {
	overrides  domain.OverrideStore
	decisions  domain.DecisionStore
	beliefs    domain.BeliefStore
	logger     *zap.Logger
	divergence []*domain.DivergencePattern
	seen       map[string]struct{}

	ApproveThreshold float64
	RejectThreshold  float64
}

func NewGovernanceService(overrides domain.OverrideStore, decisions domain.DecisionStore, beliefs domain.BeliefStore, logger *zap.Logger) *GovernanceService {
	return &GovernanceService{
		overrides:        overrides,
		decisions:        decisions,
		beliefs:          beliefs,
		logger:           logger,
		seen:             make(map[string]struct{}),
		ApproveThreshold: DefaultApproveThreshold,
		RejectThreshold:  DefaultRejectThreshold,
	}
}

func (s *GovernanceService) CreateOverride(originalDecision, overrideDecision, authority, scope, rationale string, expiresAt time.Time, requiresRenewal bool, now time.Time) *domain.HumanOverride {
	o := domain.NewHumanOverride(originalDecision, overrideDecision, authority, scope, rationale, expiresAt, requiresRenewal, now)
	s.overrides.Put(o)
	s.logger.Info("override recorded",
		zap.String("override_id", o.ID),
		zap.String("authority", authority),
		zap.String("scope", scope),
		zap.Time("expires_at", expiresAt))
	return o
}

func (s *GovernanceService) GetOverride(id string) (*domain.HumanOverride, error) {
	return s.overrides.GetByID(id)
}

// RenewOverride appends the renewal decision to the override's history and
// replaces its expiry. Unknown ids and non-renewable overrides fail with no
// mutation.
func (s *GovernanceService) RenewOverride(id, renewalDecisionID string, newExpiresAt time.Time) (*domain.HumanOverride, error) {
	o, err := s.overrides.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("renew override %s: %w", id, err)
	}
	if !o.RequiresRenewal {
		return nil, fmt.Errorf("renew override %s: %w", id, ErrOverrideNotRenewable)
	}
	o.RenewalHistory = append(o.RenewalHistory, renewalDecisionID)
	o.ExpiresAt = newExpiresAt
	s.logger.Info("override renewed",
		zap.String("override_id", id),
		zap.Time("expires_at", newExpiresAt),
		zap.Int("renewals", len(o.RenewalHistory)))
	return o, nil
}

func (s *GovernanceService) ActiveOverrides(now time.Time) []*domain.HumanOverride {
	var active []*domain.HumanOverride
	for _, o := range s.overrides.List() {
		if !o.IsExpired(now) {
			active = append(active, o)
		}
	}
	return active
}

func (s *GovernanceService) ExpiredOverrides(now time.Time) []*domain.HumanOverride {
	var expired []*domain.HumanOverride
	for _, o := range s.overrides.List() {
		if o.IsExpired(now) {
			expired = append(expired, o)
		}
	}
	return expired
}

func (s *GovernanceService) ListOverrides() []*domain.HumanOverride {
	return s.overrides.List()
}

// Reconcile infers the system's action from the belief's current confidence
// and scores the disagreement with the human's choice. Confident
// disagreement scores higher than uncertain disagreement.
func (s *GovernanceService) Reconcile(belief *domain.Belief, override *domain.HumanOverride, now time.Time) *ReconciliationResult {
	confidence := belief.CurrentConfidence(now)
	systemAction := s.inferAction(confidence)
	humanAction := s.resolveAction(override.OverrideDecision)

	aligned := systemAction == humanAction
	score := 0.0
	if !aligned {
		score = abs(confidence - 0.5)
	}

	return &ReconciliationResult{
		BeliefID:         belief.ID,
		OverrideID:       override.ID,
		SystemAction:     systemAction,
		HumanAction:      humanAction,
		Confidence:       confidence,
		Aligned:          aligned,
		DivergenceScore:  score,
		SuggestedActions: s.suggestActions(confidence),
	}
}

func (s *GovernanceService) inferAction(confidence float64) string {
	switch {
	case confidence >= s.ApproveThreshold:
		return "approve"
	case confidence <= s.RejectThreshold:
		return "reject"
	default:
		return "review"
	}
}

// resolveAction treats the override's decision reference as a decision id
// when it resolves in the store, and as a literal action otherwise.
func (s *GovernanceService) resolveAction(decisionRef string) string {
	if d, err := s.decisions.GetByID(decisionRef); err == nil {
		return d.Action
	}
	return decisionRef
}

func (s *GovernanceService) suggestActions(confidence float64) []string {
	switch {
	case confidence >= s.ApproveThreshold:
		return []string{
			"review how this confidence was calculated",
			"document the context that justified the override",
			"adjust evidence weighting if the system was wrong",
		}
	case confidence <= s.RejectThreshold:
		return []string{
			"improve evidence quality for this assertion",
		}
	default:
		return []string{
			"borderline confidence, human judgment appropriate",
		}
	}
}

// DetectDivergence mines the belief/decision history for systematic
// mismatches: confident beliefs overridden by humans, low-confidence
// beliefs whose linked decision still approved, and override decisions
// contradicting another decision on the same scope. Findings are stored
// and returned; re-running over unchanged state adds nothing.
func (s *GovernanceService) DetectDivergence(now time.Time) []*domain.DivergencePattern {
	var found []*domain.DivergencePattern
	decisions := s.decisions.List()
	for _, d := range decisions {
		for _, beliefID := range d.BeliefIDs {
			b, err := s.beliefs.GetByID(beliefID)
			if err != nil {
				continue
			}
			confidence := b.CurrentConfidence(now)

			if d.Type == domain.DecisionHumanOverride && confidence >= s.ApproveThreshold {
				found = s.recordDivergence(domain.PatternHighConfidenceOverride, b.ID, d.ID, confidence, now, found)
			}
			if confidence <= s.RejectThreshold && d.Action == "approve" {
				found = s.recordDivergence(domain.PatternLowConfidenceAcceptance, b.ID, d.ID, 1-confidence, now, found)
			}
		}
	}

	for _, o := range decisions {
		if o.Type != domain.DecisionHumanOverride {
			continue
		}
		for _, d := range decisions {
			if d.Type == domain.DecisionHumanOverride || !o.ConflictsWith(d) {
				continue
			}
			found = s.recordConflict(o, d, now, found)
		}
	}
	return found
}

func (s *GovernanceService) recordConflict(o, d *domain.Decision, now time.Time, found []*domain.DivergencePattern) []*domain.DivergencePattern {
	id := identity.Hash("divergence", string(domain.PatternConflictingDecisions), o.ID, d.ID)
	if _, exists := s.seen[id]; exists {
		return found
	}
	p := &domain.DivergencePattern{
		ID:            id,
		Type:          domain.PatternConflictingDecisions,
		DecisionID:    o.ID,
		ConflictsWith: d.ID,
		Magnitude:     1.0,
		DetectedAt:    now,
	}
	s.seen[id] = struct{}{}
	s.divergence = append(s.divergence, p)
	s.logger.Info("divergence detected",
		zap.String("type", string(domain.PatternConflictingDecisions)),
		zap.String("decision_id", o.ID),
		zap.String("conflicts_with", d.ID))
	return append(found, p)
}

func (s *GovernanceService) recordDivergence(typ domain.PatternType, beliefID, decisionID string, magnitude float64, now time.Time, found []*domain.DivergencePattern) []*domain.DivergencePattern {
	id := identity.Hash("divergence", string(typ), beliefID, decisionID)
	if _, exists := s.seen[id]; exists {
		return found
	}
	p := &domain.DivergencePattern{
		ID:         id,
		Type:       typ,
		BeliefID:   beliefID,
		DecisionID: decisionID,
		Magnitude:  magnitude,
		DetectedAt: now,
	}
	s.seen[id] = struct{}{}
	s.divergence = append(s.divergence, p)
	s.logger.Info("divergence detected",
		zap.String("type", string(typ)),
		zap.String("belief_id", beliefID),
		zap.String("decision_id", decisionID),
		zap.Float64("magnitude", magnitude))
	return append(found, p)
}

// DivergenceHistory returns every divergence pattern recorded so far.
func (s *GovernanceService) DivergenceHistory() []*domain.DivergencePattern {
	return append([]*domain.DivergencePattern(nil), s.divergence...)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
