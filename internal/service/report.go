package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/credohq/credo/internal/domain"
)

// CognitiveSummary is the structured rendering of accumulated substrate
// state. Field names are stable for machine consumption; RenderText
// produces the human-readable form with a fixed section order.
type CognitiveSummary struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	BeliefHealth   BeliefHealth         `json:"belief_health"`
	Contradictions ContradictionSummary `json:"contradictions"`
	Overrides      OverrideSummary      `json:"human_overrides"`
	Economic       EconomicSummary      `json:"economic_signals"`
	Patterns       PatternSummary       `json:"organizational_patterns"`
}

type BeliefHealth struct {
	Total             int     `json:"total"`
	AverageConfidence float64 `json:"average_confidence"`
	Decaying          int     `json:"decaying"`
	Expired           int     `json:"expired"`
}

type ContradictionSummary struct {
	Total      int                     `json:"total"`
	Unresolved int                     `json:"unresolved"`
	BySeverity map[domain.Severity]int `json:"by_severity"`
}

type OverrideSummary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

type EconomicSummary struct {
	SignalCount int     `json:"signal_count"`
	TotalCost   float64 `json:"total_cost"`
	TotalRisk   float64 `json:"total_risk"`
	TotalValue  float64 `json:"total_value"`
}

type PatternSummary struct {
	Patterns    []*domain.UsagePattern `json:"patterns"`
	Divergences int                    `json:"divergences"`
}

// PatternSource feeds the pattern section of the summary. The runtime
// passes itself here, so a disabled pattern subsystem contributes an
// empty section instead of a fresh mining run.
type PatternSource interface {
	DetectPatterns(now time.Time) []*domain.UsagePattern
}

// DivergenceSource feeds the divergence count of the summary.
type DivergenceSource interface {
	DivergenceHistory() []*domain.DivergencePattern
}

// ReportService assembles the Cognitive Summary from accumulated state.
type ReportService struct {
	beliefs        domain.BeliefStore
	contradictions domain.ContradictionStore
	overrides      domain.OverrideStore
	signals        domain.SignalStore
	patterns       PatternSource
	governance     DivergenceSource
}

func NewReportService(
	beliefs domain.BeliefStore,
	contradictions domain.ContradictionStore,
	overrides domain.OverrideStore,
	signals domain.SignalStore,
	patterns PatternSource,
	governance DivergenceSource,
) *ReportService {
	return &ReportService{
		beliefs:        beliefs,
		contradictions: contradictions,
		overrides:      overrides,
		signals:        signals,
		patterns:       patterns,
		governance:     governance,
	}
}

func (s *ReportService) BuildSummary(now time.Time) *CognitiveSummary {
	summary := &CognitiveSummary{
		GeneratedAt: now,
		Contradictions: ContradictionSummary{
			BySeverity: make(map[domain.Severity]int),
		},
	}

	beliefs := s.beliefs.List()
	summary.BeliefHealth.Total = len(beliefs)
	confidenceSum := 0.0
	for _, b := range beliefs {
		current := b.CurrentConfidence(now)
		confidenceSum += current
		if b.DecayRate > 0 {
			summary.BeliefHealth.Decaying++
		}
		if current == 0 {
			summary.BeliefHealth.Expired++
		}
	}
	if len(beliefs) > 0 {
		summary.BeliefHealth.AverageConfidence = confidenceSum / float64(len(beliefs))
	}

	for _, c := range s.contradictions.List() {
		summary.Contradictions.Total++
		summary.Contradictions.BySeverity[c.Severity]++
		if c.ResolutionStatus == domain.ResolutionUnresolved {
			summary.Contradictions.Unresolved++
		}
	}

	for _, o := range s.overrides.List() {
		summary.Overrides.Total++
		if o.IsExpired(now) {
			summary.Overrides.Expired++
		} else {
			summary.Overrides.Active++
		}
	}

	for _, sig := range s.signals.List() {
		summary.Economic.SignalCount++
		switch sig.Type {
		case domain.SignalCost:
			summary.Economic.TotalCost += sig.Amount
		case domain.SignalRisk:
			summary.Economic.TotalRisk += sig.Amount
		case domain.SignalValue:
			summary.Economic.TotalValue += sig.Amount
		}
	}

	summary.Patterns.Patterns = s.patterns.DetectPatterns(now)
	summary.Patterns.Divergences = len(s.governance.DivergenceHistory())
	return summary
}

// RenderText writes the human-readable summary. Section order is fixed:
// Belief Health, Contradictions, Human Overrides, Economic Signals,
// Organizational Patterns. Currency prints to 2 decimals, percentages to 1.
func (s *ReportService) RenderText(summary *CognitiveSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cognitive Summary - %s\n\n", summary.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "Belief Health\n")
	fmt.Fprintf(&b, "  beliefs: %d (decaying %d, expired %d)\n", summary.BeliefHealth.Total, summary.BeliefHealth.Decaying, summary.BeliefHealth.Expired)
	fmt.Fprintf(&b, "  average confidence: %.1f%%\n\n", summary.BeliefHealth.AverageConfidence*100)

	fmt.Fprintf(&b, "Contradictions\n")
	fmt.Fprintf(&b, "  total: %d, unresolved: %d\n", summary.Contradictions.Total, summary.Contradictions.Unresolved)
	for _, severity := range []domain.Severity{domain.SeverityBlocker, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow, domain.SeverityInfo} {
		if n := summary.Contradictions.BySeverity[severity]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", severity, n)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Human Overrides\n")
	fmt.Fprintf(&b, "  total: %d, active: %d, expired: %d\n\n", summary.Overrides.Total, summary.Overrides.Active, summary.Overrides.Expired)

	fmt.Fprintf(&b, "Economic Signals\n")
	fmt.Fprintf(&b, "  signals: %d\n", summary.Economic.SignalCount)
	fmt.Fprintf(&b, "  cost: %.2f, risk: %.2f, value: %.2f\n\n", summary.Economic.TotalCost, summary.Economic.TotalRisk, summary.Economic.TotalValue)

	fmt.Fprintf(&b, "Organizational Patterns\n")
	if len(summary.Patterns.Patterns) == 0 {
		fmt.Fprintf(&b, "  none detected\n")
	}
	for _, p := range summary.Patterns.Patterns {
		fmt.Fprintf(&b, "  %s (%s): %s\n", p.Type, p.Frequency, p.Description)
	}
	fmt.Fprintf(&b, "  divergences recorded: %d\n", summary.Patterns.Divergences)

	return b.String()
}
