package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/store"
	"go.uber.org/zap"
)

func newPatternFixture() (*PatternService, *store.DecisionStore, *store.OverrideStore) {
	decisions := store.NewDecisionStore()
	overrides := store.NewOverrideStore()
	return NewPatternService(decisions, overrides, zap.NewNop()), decisions, overrides
}

func TestDetectPatterns_FrequentOverride(t *testing.T) {
	svc, decisions, overrides := newPatternFixture()
	now := time.Now().UTC()

	policyID := "policy-coverage-floor"
	d := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, []string{policyID}, "credo", "repo:x", nil, now.AddDate(0, 0, -10), nil)
	decisions.Put(d)

	// Five overrides in the window, all against the same originating policy.
	for i := 0; i < 5; i++ {
		created := now.AddDate(0, 0, -i)
		overrides.Put(domain.NewHumanOverride(d.ID, "reject", fmt.Sprintf("user-%d", i), "repo:x", "risk", now.Add(time.Hour), false, created))
	}

	patterns := svc.DetectPatterns(now)
	if len(patterns) != 1 {
		t.Fatalf("detected %d patterns, want 1", len(patterns))
	}
	p := patterns[0]
	if p.Type != domain.PatternFrequentOverride {
		t.Errorf("Type = %s, want FREQUENT_OVERRIDE", p.Type)
	}
	if p.Occurrences != 5 {
		t.Errorf("Occurrences = %d, want 5", p.Occurrences)
	}
	if p.Frequency != domain.FrequencyDaily {
		t.Errorf("Frequency = %s, want daily (mean gap one day)", p.Frequency)
	}
}

func TestDetectPatterns_TooFewOverrides(t *testing.T) {
	svc, decisions, overrides := newPatternFixture()
	now := time.Now().UTC()

	d := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, []string{"p1"}, "credo", "repo:x", nil, now, nil)
	decisions.Put(d)
	for i := 0; i < 4; i++ {
		overrides.Put(domain.NewHumanOverride(d.ID, "reject", "alice", "repo:x", "risk", now.Add(time.Hour), false, now.AddDate(0, 0, -i)))
	}

	if patterns := svc.DetectPatterns(now); len(patterns) != 0 {
		t.Errorf("4 overrides should not trip the 5-override minimum, got %v", patterns)
	}
}

func TestDetectPatterns_OldHistoryIgnored(t *testing.T) {
	svc, decisions, overrides := newPatternFixture()
	now := time.Now().UTC()

	d := domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, []string{"p1"}, "credo", "repo:x", nil, now.AddDate(0, 0, -90), nil)
	decisions.Put(d)
	// All outside the 30-day lookback.
	for i := 0; i < 5; i++ {
		overrides.Put(domain.NewHumanOverride(d.ID, "reject", "alice", "repo:x", "risk", now, false, now.AddDate(0, 0, -40-i)))
	}

	if patterns := svc.DetectPatterns(now); len(patterns) != 0 {
		t.Errorf("overrides outside the lookback window counted: %v", patterns)
	}
}

func TestDetectPatterns_ConsistentApproval(t *testing.T) {
	svc, decisions, _ := newPatternFixture()
	now := time.Now().UTC()

	for i := 0; i < 9; i++ {
		decisions.Put(domain.NewDecision(domain.DecisionSystem, "approve", nil, nil, nil, "credo", fmt.Sprintf("repo:%d", i), nil, now.AddDate(0, 0, -i), nil))
	}
	decisions.Put(domain.NewDecision(domain.DecisionSystem, "reject", nil, nil, nil, "credo", "repo:z", nil, now, nil))

	patterns := svc.DetectPatterns(now)
	if len(patterns) != 1 || patterns[0].Type != domain.PatternConsistentApproval {
		t.Fatalf("patterns = %v, want one CONSISTENT_APPROVAL", patterns)
	}
	if patterns[0].Occurrences != 9 {
		t.Errorf("Occurrences = %d, want 9", patterns[0].Occurrences)
	}
}

func TestDetectPatterns_RiskAversion(t *testing.T) {
	svc, decisions, _ := newPatternFixture()
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		decisions.Put(domain.NewDecision(domain.DecisionSystem, "reject", []string{"risk too high for this change"}, nil, nil, "credo", fmt.Sprintf("repo:%d", i), nil, now.AddDate(0, 0, -i), nil))
	}
	decisions.Put(domain.NewDecision(domain.DecisionSystem, "approve", []string{"risk acceptable"}, nil, nil, "credo", "repo:ok", nil, now, nil))

	patterns := svc.DetectPatterns(now)
	if len(patterns) != 1 || patterns[0].Type != domain.PatternRiskAversion {
		t.Fatalf("patterns = %v, want one RISK_AVERSION", patterns)
	}
	// 4 of 5 risk-mentioning decisions rejected.
	if patterns[0].Occurrences != 4 {
		t.Errorf("Occurrences = %d, want 4", patterns[0].Occurrences)
	}
}

func TestFrequencyLabel(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		gaps []time.Duration
		want domain.PatternFrequency
	}{
		{"single event", nil, domain.FrequencyRare},
		{"daily", []time.Duration{24 * time.Hour, 24 * time.Hour}, domain.FrequencyDaily},
		{"weekly", []time.Duration{5 * 24 * time.Hour, 5 * 24 * time.Hour}, domain.FrequencyWeekly},
		{"monthly", []time.Duration{20 * 24 * time.Hour}, domain.FrequencyMonthly},
		{"rare", []time.Duration{90 * 24 * time.Hour}, domain.FrequencyRare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := []time.Time{base}
			for _, gap := range tt.gaps {
				times = append(times, times[len(times)-1].Add(gap))
			}
			if got := frequencyLabel(times); got != tt.want {
				t.Errorf("frequencyLabel = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectStageGate(t *testing.T) {
	svc, _, _ := newPatternFixture()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		profile domain.OrgProfile
		want    domain.OrgStage
	}{
		{
			name:    "early startup",
			profile: domain.OrgProfile{TeamSize: 5, PolicyCount: 3, OverrideRate: 0.4, DeploysPerWeek: 15},
			want:    domain.StageEarly,
		},
		{
			name:    "scaling org",
			profile: domain.OrgProfile{TeamSize: 30, PolicyCount: 20, OverrideRate: 0.2, DeploysPerWeek: 5},
			want:    domain.StageScaling,
		},
		{
			name:    "mature org",
			profile: domain.OrgProfile{TeamSize: 200, PolicyCount: 50, OverrideRate: 0.05, DeploysPerWeek: 1},
			want:    domain.StageMature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := svc.DetectStageGate(tt.profile, nil, now)
			if gate.Stage != tt.want {
				t.Errorf("Stage = %s, want %s (scores %v)", gate.Stage, tt.want, gate.Scores)
			}
			if gate.Confidence != 1.0 {
				t.Errorf("unanimous indicators should score confidence 1.0, got %v", gate.Confidence)
			}
			if len(gate.MatchedIndicators) != 4 {
				t.Errorf("MatchedIndicators = %v, want all four profile indicators", gate.MatchedIndicators)
			}
		})
	}
}

func TestDetectStageGate_TiedScores(t *testing.T) {
	svc, _, _ := newPatternFixture()
	now := time.Now().UTC()

	// Mature team size (2.0) against scaling override rate plus deploy
	// frequency (1.0 + 1.0): a dead heat between mature and scaling.
	// The earlier stage wins, on every run.
	profile := domain.OrgProfile{TeamSize: 60, PolicyCount: 5, OverrideRate: 0.2, DeploysPerWeek: 5}
	for i := 0; i < 50; i++ {
		gate := svc.DetectStageGate(profile, nil, now)
		if gate.Scores[domain.StageScaling] != gate.Scores[domain.StageMature] {
			t.Fatalf("fixture no longer ties: scores %v", gate.Scores)
		}
		if gate.Stage != domain.StageScaling {
			t.Fatalf("run %d: Stage = %s, want scaling", i, gate.Stage)
		}
	}
}

func TestDetectStageGate_PatternsShiftScore(t *testing.T) {
	svc, _, _ := newPatternFixture()
	now := time.Now().UTC()

	profile := domain.OrgProfile{TeamSize: 30, PolicyCount: 20, OverrideRate: 0.2, DeploysPerWeek: 5}
	patterns := []*domain.UsagePattern{{Type: domain.PatternRiskAversion}}

	gate := svc.DetectStageGate(profile, patterns, now)
	if gate.Scores[domain.StageMature] != weightPattern {
		t.Errorf("risk aversion should vote mature, scores %v", gate.Scores)
	}
	if gate.Confidence >= 1.0 {
		t.Errorf("split vote should lower confidence below 1.0, got %v", gate.Confidence)
	}
}

func TestDetectToolingMismatch(t *testing.T) {
	svc, _, _ := newPatternFixture()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		stage   domain.OrgStage
		profile domain.OrgProfile
		want    domain.MismatchType
		wantNil bool
	}{
		{"over-engineered early org", domain.StageEarly, domain.OrgProfile{PolicyCount: 25}, domain.MismatchOverEngineered, false},
		{"early org with light tooling", domain.StageEarly, domain.OrgProfile{PolicyCount: 5}, "", true},
		{"under-governed mature org", domain.StageMature, domain.OrgProfile{PolicyCount: 5}, domain.MismatchUnderGoverned, false},
		{"mature org chasing velocity", domain.StageMature, domain.OrgProfile{PolicyCount: 15, DeploysPerWeek: 12}, domain.MismatchWrongFocus, false},
		{"scaling org fits", domain.StageScaling, domain.OrgProfile{PolicyCount: 25}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.DetectToolingMismatch(tt.stage, tt.profile, now)
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected no mismatch, got %+v", got)
				}
				return
			}
			if got == nil || got.Type != tt.want {
				t.Errorf("mismatch = %+v, want %s", got, tt.want)
			}
		})
	}
}
