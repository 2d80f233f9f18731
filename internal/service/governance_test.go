package service

import (
	"errors"
	"testing"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type governanceFixture struct {
	svc       *GovernanceService
	overrides *store.OverrideStore
	decisions *store.DecisionStore
	beliefs   *store.BeliefStore
}

func newGovernanceFixture() *governanceFixture {
	overrides := store.NewOverrideStore()
	decisions := store.NewDecisionStore()
	beliefs := store.NewBeliefStore()
	return &governanceFixture{
		svc:       NewGovernanceService(overrides, decisions, beliefs, zap.NewNop()),
		overrides: overrides,
		decisions: decisions,
		beliefs:   beliefs,
	}
}

func TestOverride_ExpiryBoundary(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)

	o := f.svc.CreateOverride("decision-1", "reject", "alice", "repo:x", "too risky", expiry, false, now)

	if got := f.svc.ActiveOverrides(expiry.Add(-time.Second)); len(got) != 1 {
		t.Errorf("one second before expiry: %d active, want 1", len(got))
	}
	// Authority ends exactly at expires_at.
	if got := f.svc.ActiveOverrides(expiry); len(got) != 0 {
		t.Errorf("at expiry: %d active, want 0", len(got))
	}
	if !o.IsExpired(expiry.Add(time.Second)) {
		t.Error("override should be expired past expires_at")
	}
}

func TestRenewOverride(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()

	renewable := f.svc.CreateOverride("d1", "reject", "alice", "repo:x", "risk", now.Add(time.Hour), true, now)
	fixed := f.svc.CreateOverride("d2", "reject", "bob", "repo:y", "risk", now.Add(time.Hour), false, now)

	newExpiry := now.Add(48 * time.Hour)
	got, err := f.svc.RenewOverride(renewable.ID, "renewal-decision-1", newExpiry)
	if err != nil {
		t.Fatalf("RenewOverride failed: %v", err)
	}
	if !got.ExpiresAt.Equal(newExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, newExpiry)
	}
	if len(got.RenewalHistory) != 1 || got.RenewalHistory[0] != "renewal-decision-1" {
		t.Errorf("RenewalHistory = %v", got.RenewalHistory)
	}

	if _, err := f.svc.RenewOverride(fixed.ID, "renewal-decision-2", newExpiry); !errors.Is(err, ErrOverrideNotRenewable) {
		t.Errorf("expected ErrOverrideNotRenewable, got %v", err)
	}
	if _, err := f.svc.RenewOverride("missing", "r", newExpiry); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReconcile_Bands(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()

	tests := []struct {
		name          string
		confidence    float64
		humanDecision string
		wantSystem    string
		wantAligned   bool
		wantScore     float64
		wantHint      string
	}{
		{
			name:          "confident system overridden",
			confidence:    0.9,
			humanDecision: "reject",
			wantSystem:    "approve",
			wantAligned:   false,
			wantScore:     0.4,
			wantHint:      "review how this confidence was calculated",
		},
		{
			name:          "uncertain system",
			confidence:    0.5,
			humanDecision: "reject",
			wantSystem:    "review",
			wantAligned:   false,
			wantScore:     0.0,
			wantHint:      "borderline confidence, human judgment appropriate",
		},
		{
			name:          "low confidence agreement",
			confidence:    0.2,
			humanDecision: "reject",
			wantSystem:    "reject",
			wantAligned:   true,
			wantScore:     0.0,
			wantHint:      "improve evidence quality for this assertion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := domain.NewBelief("a1", tt.confidence, 0, nil, nil, nil, now)
			f.beliefs.Put(b)
			o := domain.NewHumanOverride("d1", tt.humanDecision, "alice", "repo:x", "reasons", now.Add(time.Hour), false, now)

			got := f.svc.Reconcile(b, o, now)
			assert.Equal(t, tt.wantSystem, got.SystemAction)
			assert.Equal(t, tt.humanDecision, got.HumanAction)
			assert.Equal(t, tt.wantAligned, got.Aligned)
			assert.InDelta(t, tt.wantScore, got.DivergenceScore, 1e-9)
			assert.Contains(t, got.SuggestedActions, tt.wantHint)
		})
	}
}

func TestReconcile_ResolvesDecisionReference(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()

	d := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, nil, "credo", "repo:x", nil, now, nil)
	f.decisions.Put(d)

	b, _ := domain.NewBelief("a1", 0.9, 0, nil, nil, nil, now)
	// Override points at the decision id, not a literal action.
	o := domain.NewHumanOverride("orig", d.ID, "alice", "repo:x", "agree", now.Add(time.Hour), false, now)

	got := f.svc.Reconcile(b, o, now)
	if got.HumanAction != "approve" {
		t.Errorf("HumanAction = %q, want the referenced decision's action", got.HumanAction)
	}
	if !got.Aligned || got.DivergenceScore != 0 {
		t.Errorf("agreement should score 0 divergence, got %+v", got)
	}
}

func TestDetectDivergence(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()

	confident, _ := domain.NewBelief("a1", 0.9, 0, nil, nil, nil, now)
	doubtful, _ := domain.NewBelief("a2", 0.2, 0, nil, nil, nil, now)
	f.beliefs.Put(confident)
	f.beliefs.Put(doubtful)

	f.decisions.Put(domain.NewDecision(domain.DecisionHumanOverride, "reject", nil, []string{confident.ID}, nil, "alice", "repo:x", nil, now, nil))
	f.decisions.Put(domain.NewDecision(domain.DecisionSystem, "approve", nil, []string{doubtful.ID}, nil, "credo", "repo:y", nil, now, nil))

	found := f.svc.DetectDivergence(now)
	if len(found) != 2 {
		t.Fatalf("found %d divergences, want 2", len(found))
	}

	byType := map[domain.PatternType]*domain.DivergencePattern{}
	for _, p := range found {
		byType[p.Type] = p
	}
	if p := byType[domain.PatternHighConfidenceOverride]; p == nil || p.Magnitude != 0.9 {
		t.Errorf("high-confidence override pattern = %+v", p)
	}
	if p := byType[domain.PatternLowConfidenceAcceptance]; p == nil || p.Magnitude != 0.8 {
		t.Errorf("low-confidence acceptance pattern = %+v", p)
	}

	// Re-running over unchanged history adds nothing.
	if again := f.svc.DetectDivergence(now); len(again) != 0 {
		t.Errorf("re-run found %d, want 0", len(again))
	}
	if len(f.svc.DivergenceHistory()) != 2 {
		t.Errorf("history holds %d, want 2", len(f.svc.DivergenceHistory()))
	}
}

func TestDetectDivergence_ConflictingDecisions(t *testing.T) {
	f := newGovernanceFixture()
	now := time.Now().UTC()

	system := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, nil, "credo", "repo:x", nil, now, nil)
	override := domain.NewDecision(domain.DecisionHumanOverride, "reject", nil, nil, nil, "alice", "repo:x", nil, now, nil)
	// Same action and a different scope never conflict.
	agreeing := domain.NewDecision(domain.DecisionSystem, "reject", nil, nil, nil, "credo", "repo:x", nil, now.Add(time.Minute), nil)
	elsewhere := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, nil, "credo", "repo:y", nil, now, nil)
	f.decisions.Put(system)
	f.decisions.Put(override)
	f.decisions.Put(agreeing)
	f.decisions.Put(elsewhere)

	found := f.svc.DetectDivergence(now)
	if len(found) != 1 {
		t.Fatalf("found %d divergences, want 1", len(found))
	}
	p := found[0]
	if p.Type != domain.PatternConflictingDecisions {
		t.Errorf("Type = %s, want CONFLICTING_DECISIONS", p.Type)
	}
	if p.DecisionID != override.ID || p.ConflictsWith != system.ID {
		t.Errorf("pattern links %s vs %s, want override vs system decision", p.DecisionID, p.ConflictsWith)
	}
	if p.Magnitude != 1.0 {
		t.Errorf("Magnitude = %v, want 1.0", p.Magnitude)
	}

	if again := f.svc.DetectDivergence(now); len(again) != 0 {
		t.Errorf("re-run found %d, want 0", len(again))
	}
}
