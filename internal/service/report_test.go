package service

import (
	"strings"
	"testing"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReportFixture() (*ReportService, *store.BeliefStore, *store.ContradictionStore, *store.OverrideStore, *store.SignalStore) {
	beliefs := store.NewBeliefStore()
	contradictions := store.NewContradictionStore()
	overrides := store.NewOverrideStore()
	signals := store.NewSignalStore()
	decisions := store.NewDecisionStore()

	patterns := NewPatternService(decisions, overrides, zap.NewNop())
	governance := NewGovernanceService(overrides, decisions, beliefs, zap.NewNop())
	svc := NewReportService(beliefs, contradictions, overrides, signals, patterns, governance)
	return svc, beliefs, contradictions, overrides, signals
}

func TestBuildSummary(t *testing.T) {
	svc, beliefs, contradictions, overrides, signals := newReportFixture()
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	healthy, _ := domain.NewBelief("a1", 0.8, 0, nil, nil, nil, now)
	decaying, _ := domain.NewBelief("a2", 0.6, 0.05, nil, nil, nil, now)
	expired, _ := domain.NewBelief("a3", 0.9, 0, &past, nil, nil, now.Add(-2*time.Hour))
	beliefs.Put(healthy)
	beliefs.Put(decaying)
	beliefs.Put(expired)

	c := domain.NewContradiction(domain.ContradictionAssertionConflict, []string{"x", "y"}, domain.SeverityHigh, "conflict", now, nil)
	contradictions.Put(c)
	resolved := domain.NewContradiction(domain.ContradictionPolicyConflict, []string{"p", "q"}, domain.SeverityMedium, "conflict", now, nil)
	contradictions.Put(resolved)
	resolved.ResolutionStatus = domain.ResolutionIgnored

	overrides.Put(domain.NewHumanOverride("d1", "reject", "alice", "repo:x", "risk", now.Add(time.Hour), false, now))
	overrides.Put(domain.NewHumanOverride("d2", "reject", "bob", "repo:y", "risk", now.Add(-time.Minute), false, now.Add(-time.Hour)))

	sig, _ := domain.NewEconomicSignal(domain.SignalCost, 12.5, "usd", "billing", "org:acme", 1.0, now, nil)
	signals.Put(sig)

	summary := svc.BuildSummary(now)
	require.NotNil(t, summary)

	require.Equal(t, 3, summary.BeliefHealth.Total)
	require.Equal(t, 1, summary.BeliefHealth.Decaying)
	require.Equal(t, 1, summary.BeliefHealth.Expired)
	// (0.8 + 0.6 + 0) / 3, the decaying belief evaluated at creation time.
	require.InDelta(t, 1.4/3, summary.BeliefHealth.AverageConfidence, 1e-9)

	require.Equal(t, 2, summary.Contradictions.Total)
	require.Equal(t, 1, summary.Contradictions.Unresolved)
	require.Equal(t, 1, summary.Contradictions.BySeverity[domain.SeverityHigh])

	require.Equal(t, 2, summary.Overrides.Total)
	require.Equal(t, 1, summary.Overrides.Active)
	require.Equal(t, 1, summary.Overrides.Expired)

	require.Equal(t, 1, summary.Economic.SignalCount)
	require.Equal(t, 12.5, summary.Economic.TotalCost)
}

func TestRenderText_SectionOrder(t *testing.T) {
	svc, beliefs, _, _, signals := newReportFixture()
	now := time.Now().UTC()

	b, _ := domain.NewBelief("a1", 0.8, 0, nil, nil, nil, now)
	beliefs.Put(b)
	sig, _ := domain.NewEconomicSignal(domain.SignalCost, 12.5, "usd", "billing", "org:acme", 1.0, now, nil)
	signals.Put(sig)

	text := svc.RenderText(svc.BuildSummary(now))

	sections := []string{
		"Belief Health",
		"Contradictions",
		"Human Overrides",
		"Economic Signals",
		"Organizational Patterns",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(text, section)
		if idx < 0 {
			t.Fatalf("section %q missing from rendering:\n%s", section, text)
		}
		if idx < last {
			t.Errorf("section %q out of order", section)
		}
		last = idx
	}

	if !strings.Contains(text, "average confidence: 80.0%") {
		t.Errorf("confidence should render as a one-decimal percentage:\n%s", text)
	}
	if !strings.Contains(text, "cost: 12.50") {
		t.Errorf("currency should render to two decimals:\n%s", text)
	}
	if !strings.Contains(text, "none detected") {
		t.Errorf("empty pattern section should say so:\n%s", text)
	}
}
