// Package runtime is the substrate's composition root. It wires the
// in-memory stores and services together and gates every operation behind
// feature flags, so a disabled substrate costs nothing and returns defined
// empty results instead of errors.
package runtime

import (
	"time"

	"github.com/credohq/credo/internal/domain"
	"github.com/credohq/credo/internal/service"
	"github.com/credohq/credo/internal/store"
	"go.uber.org/zap"
)

// EnforcementMode is an informational label only; the substrate never
// blocks or mutates caller behavior.
type EnforcementMode string

const (
	EnforceObserve EnforcementMode = "observe"
	EnforceWarn    EnforcementMode = "warn"
	EnforceBlock   EnforcementMode = "block"
)

// Flags is the substrate's configuration surface. Gated methods check
// Enabled AND the subsystem flag before doing anything.
type Flags struct {
	Enabled                bool
	AssertionGraph         bool
	BeliefEngine           bool
	ContradictionDetection bool
	HumanGovernance        bool
	EconomicSignals        bool
	PatternDetection       bool
	EnforcementMode        EnforcementMode
	TelemetrySamplingRate  float64
}

// DefaultFlags enables everything, observes, and samples all telemetry.
func DefaultFlags() Flags {
	return Flags{
		Enabled:                true,
		AssertionGraph:         true,
		BeliefEngine:           true,
		ContradictionDetection: true,
		HumanGovernance:        true,
		EconomicSignals:        true,
		PatternDetection:       true,
		EnforcementMode:        EnforceObserve,
		TelemetrySamplingRate:  1.0,
	}
}

// Stats counts operations that actually ran. Every counter stays zero
// while the relevant flag is off.
type Stats struct {
	EvidenceRecorded   int                    `json:"evidence_recorded"`
	AssertionsRecorded int                    `json:"assertions_recorded"`
	BeliefsFormed      int                    `json:"beliefs_formed"`
	BeliefUpdates      int                    `json:"belief_updates"`
	DecisionsRecorded  int                    `json:"decisions_recorded"`
	OverridesCreated   int                    `json:"overrides_created"`
	SignalsRecorded    int                    `json:"signals_recorded"`
	ContradictionScans int                    `json:"contradiction_scans"`
	PatternScans       int                    `json:"pattern_scans"`
	Telemetry          service.TelemetryStats `json:"telemetry"`
}

// Runtime composes the always-on inner services behind the flag guard.
// The inner services carry no flag logic of their own, which keeps the
// core independently testable.
type Runtime struct {
	flags Flags

	graph          *store.AssertionGraph
	beliefStore    *store.BeliefStore
	decisionStore  *store.DecisionStore
	policyStore    *store.PolicyStore
	meaningStore   *store.MeaningStore
	signalStore    *store.SignalStore
	overrideStore  *store.OverrideStore
	contradictions *store.ContradictionStore

	beliefs        *service.BeliefService
	detector       *service.ContradictionService
	governance     *service.GovernanceService
	economic       *service.EconomicService
	patterns       *service.PatternService
	reports        *service.ReportService
	telemetry      *service.Telemetry

	stats  Stats
	logger *zap.Logger
}

func New(flags Flags, logger *zap.Logger) *Runtime {
	graph := store.NewAssertionGraph()
	beliefStore := store.NewBeliefStore()
	decisionStore := store.NewDecisionStore()
	policyStore := store.NewPolicyStore()
	meaningStore := store.NewMeaningStore()
	signalStore := store.NewSignalStore()
	overrideStore := store.NewOverrideStore()
	contradictionStore := store.NewContradictionStore()

	beliefs := service.NewBeliefService(beliefStore, logger)
	detector := service.NewContradictionService(graph, beliefStore, decisionStore, policyStore, meaningStore, contradictionStore, logger)
	governance := service.NewGovernanceService(overrideStore, decisionStore, beliefStore, logger)
	economic := service.NewEconomicService(signalStore, beliefStore, logger)
	patterns := service.NewPatternService(decisionStore, overrideStore, logger)
	telemetry := service.NewTelemetry(flags.TelemetrySamplingRate, logger)

	r := &Runtime{
		flags:          flags,
		graph:          graph,
		beliefStore:    beliefStore,
		decisionStore:  decisionStore,
		policyStore:    policyStore,
		meaningStore:   meaningStore,
		signalStore:    signalStore,
		overrideStore:  overrideStore,
		contradictions: contradictionStore,
		beliefs:        beliefs,
		detector:       detector,
		governance:     governance,
		economic:       economic,
		patterns:       patterns,
		telemetry:      telemetry,
		logger:         logger,
	}
	// The runtime feeds the summary's pattern section through its own
	// gated methods, so subsystem flags apply inside the report too.
	r.reports = service.NewReportService(beliefStore, contradictionStore, overrideStore, signalStore, r, r)
	return r
}

func (r *Runtime) Flags() Flags {
	return r.flags
}

// Telemetry exposes the sampled event log for subscription.
func (r *Runtime) Telemetry() *service.Telemetry {
	return r.telemetry
}

func (r *Runtime) Stats() Stats {
	stats := r.stats
	stats.Telemetry = r.telemetry.Stats()
	return stats
}

func (r *Runtime) gated(subsystem bool) bool {
	return r.flags.Enabled && subsystem
}

func (r *Runtime) emit(name string, fields map[string]any, now time.Time) {
	r.telemetry.Emit(name, fields, now)
}

// --- Assertion graph ---

func (r *Runtime) RecordEvidence(typ domain.EvidenceType, contentHash, source string, timestamp time.Time, validityPeriod *time.Duration) *domain.Evidence {
	if !r.gated(r.flags.AssertionGraph) {
		return nil
	}
	e := domain.NewEvidence(typ, contentHash, source, timestamp, validityPeriod)
	r.graph.PutEvidence(e)
	r.stats.EvidenceRecorded++
	r.emit("evidence.recorded", map[string]any{"id": e.ID, "type": string(typ)}, timestamp)
	return e
}

func (r *Runtime) RecordAssertion(claim string, evidenceIDs []string, transformation, source string, timestamp time.Time, metadata map[string]any) *domain.Assertion {
	if !r.gated(r.flags.AssertionGraph) {
		return nil
	}
	a := domain.NewAssertion(claim, evidenceIDs, transformation, source, timestamp, metadata)
	r.graph.PutAssertion(a)
	r.stats.AssertionsRecorded++
	r.emit("assertion.recorded", map[string]any{"id": a.ID, "evidence": len(a.EvidenceIDs)}, timestamp)
	return a
}

// Lineage returns everything reachable from the assertion, nil when the
// subsystem is off or the id is unknown.
func (r *Runtime) Lineage(assertionID string) *domain.Lineage {
	if !r.gated(r.flags.AssertionGraph) {
		return nil
	}
	lineage, err := r.graph.Lineage(assertionID)
	if err != nil {
		return nil
	}
	return lineage
}

func (r *Runtime) ListAssertions() []*domain.Assertion {
	if !r.gated(r.flags.AssertionGraph) {
		return nil
	}
	return r.graph.ListAssertions()
}

// --- Belief engine ---

func (r *Runtime) FormBelief(assertionID string, confidence float64, opts service.FormBeliefOpts, now time.Time) (*domain.Belief, error) {
	if !r.gated(r.flags.BeliefEngine) {
		return nil, nil
	}
	b, err := r.beliefs.Form(assertionID, confidence, opts, now)
	if err != nil {
		return nil, err
	}
	r.stats.BeliefsFormed++
	r.emit("belief.formed", map[string]any{"id": b.ID, "confidence": confidence}, now)
	return b, nil
}

func (r *Runtime) UpdateBeliefConfidence(beliefID string, confidence float64, now time.Time) (*domain.Belief, error) {
	if !r.gated(r.flags.BeliefEngine) {
		return nil, nil
	}
	b, err := r.beliefs.UpdateConfidence(beliefID, confidence, now)
	if err != nil {
		return nil, err
	}
	r.stats.BeliefUpdates++
	r.emit("belief.updated", map[string]any{"id": beliefID, "version": b.Version}, now)
	return b, nil
}

func (r *Runtime) GetBelief(beliefID string) (*domain.Belief, error) {
	if !r.gated(r.flags.BeliefEngine) {
		return nil, nil
	}
	return r.beliefs.Get(beliefID)
}

func (r *Runtime) CurrentConfidence(beliefID string, now time.Time) (float64, error) {
	if !r.gated(r.flags.BeliefEngine) {
		return 0, nil
	}
	return r.beliefs.CurrentConfidence(beliefID, now)
}

func (r *Runtime) ComposeConfidence(assertionID string, strategy service.CompositionStrategy, weights []float64, now time.Time) float64 {
	if !r.gated(r.flags.BeliefEngine) {
		return 0
	}
	return r.beliefs.Compose(assertionID, strategy, weights, now)
}

func (r *Runtime) PropagateDecay(upstreamID string, threshold float64, now time.Time) ([]*domain.Belief, error) {
	if !r.gated(r.flags.BeliefEngine) {
		return nil, nil
	}
	return r.beliefs.PropagateDecay(upstreamID, threshold, now)
}

func (r *Runtime) PruneExpiredBeliefs(now time.Time) []string {
	if !r.gated(r.flags.BeliefEngine) {
		return nil
	}
	return r.beliefs.PruneExpired(now)
}

// --- Governance ---

func (r *Runtime) RecordDecision(typ domain.DecisionType, action string, rationale []string, beliefIDs, policyIDs []string, authority, scope string, expiresAt *time.Time, now time.Time, metadata map[string]any) *domain.Decision {
	if !r.gated(r.flags.HumanGovernance) {
		return nil
	}
	d := domain.NewDecision(typ, action, rationale, beliefIDs, policyIDs, authority, scope, expiresAt, now, metadata)
	r.decisionStore.Put(d)
	r.stats.DecisionsRecorded++
	r.emit("decision.recorded", map[string]any{"id": d.ID, "type": string(typ), "action": action}, now)
	return d
}

func (r *Runtime) CreateOverride(originalDecision, overrideDecision, authority, scope, rationale string, expiresAt time.Time, requiresRenewal bool, now time.Time) *domain.HumanOverride {
	if !r.gated(r.flags.HumanGovernance) {
		return nil
	}
	o := r.governance.CreateOverride(originalDecision, overrideDecision, authority, scope, rationale, expiresAt, requiresRenewal, now)
	r.stats.OverridesCreated++
	r.emit("override.created", map[string]any{"id": o.ID, "scope": scope}, now)
	return o
}

func (r *Runtime) RenewOverride(id, renewalDecisionID string, newExpiresAt time.Time) (*domain.HumanOverride, error) {
	if !r.gated(r.flags.HumanGovernance) {
		return nil, nil
	}
	return r.governance.RenewOverride(id, renewalDecisionID, newExpiresAt)
}

func (r *Runtime) ActiveOverrides(now time.Time) []*domain.HumanOverride {
	if !r.gated(r.flags.HumanGovernance) {
		return nil
	}
	return r.governance.ActiveOverrides(now)
}

func (r *Runtime) Reconcile(beliefID, overrideID string, now time.Time) (*service.ReconciliationResult, error) {
	if !r.gated(r.flags.HumanGovernance) {
		return nil, nil
	}
	b, err := r.beliefStore.GetByID(beliefID)
	if err != nil {
		return nil, err
	}
	o, err := r.overrideStore.GetByID(overrideID)
	if err != nil {
		return nil, err
	}
	return r.governance.Reconcile(b, o, now), nil
}

func (r *Runtime) DetectDivergence(now time.Time) []*domain.DivergencePattern {
	if !r.gated(r.flags.HumanGovernance) {
		return nil
	}
	return r.governance.DetectDivergence(now)
}

func (r *Runtime) DivergenceHistory() []*domain.DivergencePattern {
	if !r.gated(r.flags.HumanGovernance) {
		return nil
	}
	return r.governance.DivergenceHistory()
}

// --- Contradiction detection ---

func (r *Runtime) RecordPolicy(name, typ, appliesTo, enforcement string, now time.Time, metadata map[string]any) *domain.Policy {
	if !r.gated(r.flags.ContradictionDetection) {
		return nil
	}
	p := domain.NewPolicy(name, typ, appliesTo, enforcement, now, metadata)
	r.policyStore.Put(p)
	return p
}

func (r *Runtime) RecordMeaningVersion(m *domain.MeaningVersion) {
	if !r.gated(r.flags.ContradictionDetection) {
		return
	}
	r.meaningStore.Put(m)
}

// ScanContradictions runs all four detectors and returns only newly
// detected items.
func (r *Runtime) ScanContradictions(now time.Time) []*domain.Contradiction {
	if !r.gated(r.flags.ContradictionDetection) {
		return nil
	}
	created := r.detector.ScanAll(now)
	r.stats.ContradictionScans++
	r.emit("contradictions.scanned", map[string]any{"new": len(created)}, now)
	return created
}

func (r *Runtime) ListContradictions() []*domain.Contradiction {
	if !r.gated(r.flags.ContradictionDetection) {
		return nil
	}
	return r.detector.List()
}

func (r *Runtime) ResolveContradiction(id string, status domain.ResolutionStatus) error {
	if !r.gated(r.flags.ContradictionDetection) {
		return nil
	}
	return r.detector.Resolve(id, status)
}

// --- Economic signals ---

func (r *Runtime) RecordSignal(typ domain.SignalType, amount float64, unit, source, appliesTo string, confidence float64, timestamp time.Time, metadata map[string]any) (*domain.EconomicSignal, error) {
	if !r.gated(r.flags.EconomicSignals) {
		return nil, nil
	}
	sig, err := r.economic.Record(typ, amount, unit, source, appliesTo, confidence, timestamp, metadata)
	if err != nil {
		return nil, err
	}
	r.stats.SignalsRecorded++
	r.emit("signal.recorded", map[string]any{"id": sig.ID, "type": string(typ)}, timestamp)
	return sig, nil
}

func (r *Runtime) TotalCost(target string) float64 {
	if !r.gated(r.flags.EconomicSignals) {
		return 0
	}
	return r.economic.TotalCost(target)
}

func (r *Runtime) TotalRisk(target string) float64 {
	if !r.gated(r.flags.EconomicSignals) {
		return 0
	}
	return r.economic.TotalRisk(target)
}

func (r *Runtime) TotalValue(target string) float64 {
	if !r.gated(r.flags.EconomicSignals) {
		return 0
	}
	return r.economic.TotalValue(target)
}

func (r *Runtime) EvaluateBudgetPressure(org string, limit float64, now time.Time) *service.BudgetPressure {
	if !r.gated(r.flags.EconomicSignals) {
		return nil
	}
	return r.economic.EvaluateBudgetPressure(org, limit, now)
}

func (r *Runtime) InfluenceBelief(beliefID, target string, now time.Time) (*domain.Belief, error) {
	if !r.gated(r.flags.EconomicSignals) {
		return nil, nil
	}
	return r.economic.InfluenceBelief(beliefID, target, now)
}

// --- Pattern detection ---

func (r *Runtime) DetectPatterns(now time.Time) []*domain.UsagePattern {
	if !r.gated(r.flags.PatternDetection) {
		return nil
	}
	r.stats.PatternScans++
	return r.patterns.DetectPatterns(now)
}

func (r *Runtime) DetectStageGate(profile domain.OrgProfile, now time.Time) *domain.StageGate {
	if !r.gated(r.flags.PatternDetection) {
		return nil
	}
	return r.patterns.DetectStageGate(profile, r.patterns.DetectPatterns(now), now)
}

func (r *Runtime) DetectToolingMismatch(stage domain.OrgStage, profile domain.OrgProfile, now time.Time) *domain.ToolingMismatch {
	if !r.gated(r.flags.PatternDetection) {
		return nil
	}
	return r.patterns.DetectToolingMismatch(stage, profile, now)
}

// --- Reporting ---

func (r *Runtime) Summary(now time.Time) *service.CognitiveSummary {
	if !r.flags.Enabled {
		return nil
	}
	return r.reports.BuildSummary(now)
}

func (r *Runtime) SummaryText(now time.Time) string {
	if !r.flags.Enabled {
		return ""
	}
	return r.reports.RenderText(r.reports.BuildSummary(now))
}
