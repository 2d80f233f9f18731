package service

import (
	"errors"
	"testing"
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/store"
	"go.uber.org/zap"
)

type contradictionFixture struct {
	svc       *ContradictionService
	graph     *store.AssertionGraph
	beliefs   *store.BeliefStore
	decisions *store.DecisionStore
	policies  *store.PolicyStore
	meanings  *store.MeaningStore
}

func newContradictionFixture() *contradictionFixture {
	graph := store.NewAssertionGraph()
	beliefs := store.NewBeliefStore()
	decisions := store.NewDecisionStore()
	policies := store.NewPolicyStore()
	meanings := store.NewMeaningStore()
	contradictions := store.NewContradictionStore()
	svc := NewContradictionService(graph, beliefs, decisions, policies, meanings, contradictions, zap.NewNop())
	return &contradictionFixture{
		svc:       svc,
		graph:     graph,
		beliefs:   beliefs,
		decisions: decisions,
		policies:  policies,
		meanings:  meanings,
	}
}

func TestDetectAssertionConflicts_CrossSourceSameClaim(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	a1 := domain.NewAssertion("Coverage is 85%", nil, "", "ci-pipeline", now, nil)
	a2 := domain.NewAssertion("coverage is 85%  ", nil, "", "coverage-bot", now, nil)
	f.graph.PutAssertion(a1)
	f.graph.PutAssertion(a2)

	found := f.svc.DetectAssertionConflicts(now)
	if len(found) != 1 {
		t.Fatalf("found %d contradictions, want exactly 1", len(found))
	}
	c := found[0]
	if c.Type != domain.ContradictionAssertionConflict || c.Severity != domain.SeverityHigh {
		t.Errorf("contradiction = %s/%s, want assertion_conflict/high", c.Type, c.Severity)
	}
	if len(c.ConflictingItems) != 2 {
		t.Errorf("ConflictingItems = %v, want both assertion ids", c.ConflictingItems)
	}
	if c.ResolutionStatus != domain.ResolutionUnresolved {
		t.Errorf("new contradiction starts %s, want unresolved", c.ResolutionStatus)
	}

	// Idempotent re-scan over unchanged state yields nothing new.
	if again := f.svc.DetectAssertionConflicts(now); len(again) != 0 {
		t.Errorf("re-scan found %d, want 0", len(again))
	}
	if len(f.svc.List()) != 1 {
		t.Errorf("store holds %d contradictions, want 1", len(f.svc.List()))
	}
}

func TestDetectAssertionConflicts_SameSourceIgnored(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	f.graph.PutAssertion(domain.NewAssertion("deploy is frozen", nil, "", "ci", now, nil))
	f.graph.PutAssertion(domain.NewAssertion("Deploy is frozen", nil, "", "ci", now.Add(time.Minute), nil))

	if found := f.svc.DetectAssertionConflicts(now); len(found) != 0 {
		t.Errorf("same-source restatement flagged as conflict: %v", found)
	}
}

func TestDetectBeliefDivergence_SeverityBands(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	override := domain.NewDecision(domain.DecisionHumanOverride, "reject", nil, nil, nil, "alice", "repo:x", nil, now, nil)
	f.decisions.Put(override)

	high, _ := domain.NewBelief("a1", 0.95, 0, nil, nil, nil, now)
	medium, _ := domain.NewBelief("a2", 0.85, 0, nil, nil, nil, now)
	low, _ := domain.NewBelief("a3", 0.5, 0, nil, nil, nil, now)
	f.beliefs.Put(high)
	f.beliefs.Put(medium)
	f.beliefs.Put(low)

	found := f.svc.DetectBeliefDivergence(now)
	if len(found) != 2 {
		t.Fatalf("found %d divergences, want 2 (low-confidence belief exempt)", len(found))
	}

	severities := map[string]domain.Severity{}
	for _, c := range found {
		severities[c.ConflictingItems[0]] = c.Severity
	}
	if severities[high.ID] != domain.SeverityHigh {
		t.Errorf("0.95 belief severity = %s, want high", severities[high.ID])
	}
	if severities[medium.ID] != domain.SeverityMedium {
		t.Errorf("0.85 belief severity = %s, want medium", severities[medium.ID])
	}
}

func TestDetectPolicyConflicts(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	f.policies.Put(domain.NewPolicy("strict-coverage", "quality", "repo:payments", "block_below_90", now, nil))
	f.policies.Put(domain.NewPolicy("lenient-coverage", "quality", domain.PolicyWildcard, "warn_below_70", now, nil))
	// Same enforcement as the wildcard policy, and disjoint from the
	// strict one: conflicts with neither.
	f.policies.Put(domain.NewPolicy("mirror", "quality", "repo:billing", "warn_below_70", now, nil))
	// Different type never conflicts regardless of overlap.
	f.policies.Put(domain.NewPolicy("retention", "data", domain.PolicyWildcard, "delete_after_90d", now, nil))

	found := f.svc.DetectPolicyConflicts(now)
	if len(found) != 1 {
		t.Fatalf("found %d policy conflicts, want 1 (strict vs wildcard)", len(found))
	}
	for _, c := range found {
		if c.Severity != domain.SeverityMedium {
			t.Errorf("policy conflict severity = %s, want medium", c.Severity)
		}
	}
}

func TestDetectSemanticDrift(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	f.meanings.Put(&domain.MeaningVersion{MeaningID: "coverage", Version: "1.0.0", Definition: "line coverage"})
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "coverage", Version: "2.0.0", Definition: "branch coverage"})
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "coverage", Version: "2.1.0", Definition: "branch coverage, changed files"})
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "latency", Version: "1.0.0", Definition: "p99"})

	found := f.svc.DetectSemanticDrift(now)
	if len(found) != 2 {
		t.Fatalf("found %d drifts, want 2 (1.0.0 vs each 2.x)", len(found))
	}
	if found[0].ConflictingItems[0] != "coverage@1.0.0" {
		t.Errorf("items = %v, want meaning@version references", found[0].ConflictingItems)
	}
}

func TestDetectSemanticDrift_DeprecatedExcluded(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	f.meanings.Put(&domain.MeaningVersion{MeaningID: "coverage", Version: "1.0.0", Deprecated: true})
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "coverage", Version: "2.0.0"})

	if found := f.svc.DetectSemanticDrift(now); len(found) != 0 {
		t.Errorf("deprecated version should not drift, got %v", found)
	}
}

func TestScanAll_UnionAndResolve(t *testing.T) {
	f := newContradictionFixture()
	now := time.Now().UTC()

	f.graph.PutAssertion(domain.NewAssertion("x is true", nil, "", "s1", now, nil))
	f.graph.PutAssertion(domain.NewAssertion("X is true", nil, "", "s2", now, nil))
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "x", Version: "1.0.0"})
	f.meanings.Put(&domain.MeaningVersion{MeaningID: "x", Version: "2.0.0"})

	found := f.svc.ScanAll(now)
	if len(found) != 2 {
		t.Fatalf("ScanAll found %d, want 2", len(found))
	}

	if err := f.svc.Resolve(found[0].ID, domain.ResolutionIgnored); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := f.svc.Resolve("missing", domain.ResolutionIgnored); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
