package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/credohq/credo/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultLookbackDays bounds the history window for pattern mining.
	DefaultLookbackDays = 30

	frequentOverrideMinOnPolicy    = 3
	frequentOverrideMinTotal       = 5
	consistentApprovalMinDecisions = 10
	consistentApprovalRatio        = 0.9
	riskAversionMinDecisions       = 5
	riskAversionRejectRatio        = 0.7

	// Mean inter-event gap bands for the frequency label.
	dailyGap   = 36 * time.Hour
	weeklyGap  = 7 * 24 * time.Hour
	monthlyGap = 30 * 24 * time.Hour
)

// Stage indicator weights. Matched behavioral patterns weigh 1.0 each.
const (
	weightTeamSize     = 2.0
	weightPolicyCount  = 1.5
	weightOverrideRate = 1.0
	weightDeployFreq   = 1.0
	weightPattern      = 1.0
)

// PatternService mines recorded decisions and overrides for behavioral
// patterns and scores organizational maturity. Everything it produces is a
// derived summary, recomputed on demand and never persisted.
type PatternService struct {
	decisions domain.DecisionStore
	overrides domain.OverrideStore
	logger    *zap.Logger

	LookbackDays int
}

func NewPatternService(decisions domain.DecisionStore, overrides domain.OverrideStore, logger *zap.Logger) *PatternService {
	return &PatternService{
		decisions:    decisions,
		overrides:    overrides,
		logger:       logger,
		LookbackDays: DefaultLookbackDays,
	}
}

// DetectPatterns windows history to the lookback period and runs three
// independent heuristics. Any subset of them may match.
func (s *PatternService) DetectPatterns(now time.Time) []*domain.UsagePattern {
	cutoff := now.AddDate(0, 0, -s.LookbackDays)

	var recentDecisions []*domain.Decision
	for _, d := range s.decisions.List() {
		if !d.CreatedAt.Before(cutoff) {
			recentDecisions = append(recentDecisions, d)
		}
	}
	var recentOverrides []*domain.HumanOverride
	for _, o := range s.overrides.List() {
		if !o.CreatedAt.Before(cutoff) {
			recentOverrides = append(recentOverrides, o)
		}
	}

	var patterns []*domain.UsagePattern
	if p := s.detectFrequentOverride(recentOverrides, now); p != nil {
		patterns = append(patterns, p)
	}
	if p := s.detectConsistentApproval(recentDecisions, now); p != nil {
		patterns = append(patterns, p)
	}
	if p := s.detectRiskAversion(recentDecisions, now); p != nil {
		patterns = append(patterns, p)
	}

	s.logger.Debug("usage patterns detected",
		zap.Int("patterns", len(patterns)),
		zap.Int("recent_decisions", len(recentDecisions)),
		zap.Int("recent_overrides", len(recentOverrides)))
	return patterns
}

// detectFrequentOverride looks for one originating policy drawing 3+ of 5+
// recent overrides. The originating policy comes from the overridden
// decision's policy links.
func (s *PatternService) detectFrequentOverride(overrides []*domain.HumanOverride, now time.Time) *domain.UsagePattern {
	if len(overrides) < frequentOverrideMinTotal {
		return nil
	}

	byPolicy := make(map[string][]*domain.HumanOverride)
	for _, o := range overrides {
		d, err := s.decisions.GetByID(o.OriginalDecision)
		if err != nil {
			continue
		}
		for _, policyID := range d.PolicyIDs {
			byPolicy[policyID] = append(byPolicy[policyID], o)
		}
	}

	var topPolicy string
	var topOverrides []*domain.HumanOverride
	for policyID, group := range byPolicy {
		if len(group) > len(topOverrides) || (len(group) == len(topOverrides) && policyID < topPolicy) {
			topPolicy = policyID
			topOverrides = group
		}
	}
	if len(topOverrides) < frequentOverrideMinOnPolicy {
		return nil
	}

	times := make([]time.Time, len(topOverrides))
	ids := make([]string, len(topOverrides))
	for i, o := range topOverrides {
		times[i] = o.CreatedAt
		ids[i] = o.ID
	}
	return &domain.UsagePattern{
		Type:        domain.PatternFrequentOverride,
		Description: fmt.Sprintf("policy %s overridden %d times in the last %d days", topPolicy, len(topOverrides), s.LookbackDays),
		Frequency:   frequencyLabel(times),
		Occurrences: len(topOverrides),
		ItemIDs:     ids,
		DetectedAt:  now,
	}
}

func (s *PatternService) detectConsistentApproval(decisions []*domain.Decision, now time.Time) *domain.UsagePattern {
	if len(decisions) < consistentApprovalMinDecisions {
		return nil
	}
	var approvals []*domain.Decision
	for _, d := range decisions {
		if d.Action == "approve" || d.Action == "ship" {
			approvals = append(approvals, d)
		}
	}
	if float64(len(approvals))/float64(len(decisions)) < consistentApprovalRatio {
		return nil
	}

	times := make([]time.Time, len(approvals))
	for i, d := range approvals {
		times[i] = d.CreatedAt
	}
	return &domain.UsagePattern{
		Type:        domain.PatternConsistentApproval,
		Description: fmt.Sprintf("%d of %d recent decisions approved or shipped", len(approvals), len(decisions)),
		Frequency:   frequencyLabel(times),
		Occurrences: len(approvals),
		DetectedAt:  now,
	}
}

func (s *PatternService) detectRiskAversion(decisions []*domain.Decision, now time.Time) *domain.UsagePattern {
	var riskMentioning []*domain.Decision
	for _, d := range decisions {
		if mentionsRisk(d) {
			riskMentioning = append(riskMentioning, d)
		}
	}
	if len(riskMentioning) < riskAversionMinDecisions {
		return nil
	}
	var rejected []*domain.Decision
	for _, d := range riskMentioning {
		if d.Action == "reject" || d.Action == "block" {
			rejected = append(rejected, d)
		}
	}
	if float64(len(rejected))/float64(len(riskMentioning)) < riskAversionRejectRatio {
		return nil
	}

	times := make([]time.Time, len(rejected))
	for i, d := range rejected {
		times[i] = d.CreatedAt
	}
	return &domain.UsagePattern{
		Type:        domain.PatternRiskAversion,
		Description: fmt.Sprintf("%d of %d risk-mentioning decisions rejected or blocked", len(rejected), len(riskMentioning)),
		Frequency:   frequencyLabel(times),
		Occurrences: len(rejected),
		DetectedAt:  now,
	}
}

func mentionsRisk(d *domain.Decision) bool {
	if strings.Contains(strings.ToLower(d.Action), "risk") {
		return true
	}
	for _, r := range d.Rationale {
		if strings.Contains(strings.ToLower(r), "risk") {
			return true
		}
	}
	return false
}

// frequencyLabel grades the mean inter-event gap.
func frequencyLabel(times []time.Time) domain.PatternFrequency {
	if len(times) < 2 {
		return domain.FrequencyRare
	}
	sorted := append([]time.Time(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	total := sorted[len(sorted)-1].Sub(sorted[0])
	mean := total / time.Duration(len(sorted)-1)
	switch {
	case mean <= dailyGap:
		return domain.FrequencyDaily
	case mean <= weeklyGap:
		return domain.FrequencyWeekly
	case mean <= monthlyGap:
		return domain.FrequencyMonthly
	default:
		return domain.FrequencyRare
	}
}

// DetectStageGate scores early/scaling/mature additively across five
// weighted indicators and returns the top stage with normalized confidence.
func (s *PatternService) DetectStageGate(profile domain.OrgProfile, patterns []*domain.UsagePattern, now time.Time) *domain.StageGate {
	scores := map[domain.OrgStage]float64{
		domain.StageEarly:   0,
		domain.StageScaling: 0,
		domain.StageMature:  0,
	}
	var matched []string

	vote := func(stage domain.OrgStage, weight float64, indicator string) {
		scores[stage] += weight
		matched = append(matched, indicator)
	}

	switch {
	case profile.TeamSize < 10:
		vote(domain.StageEarly, weightTeamSize, "team_size")
	case profile.TeamSize <= 50:
		vote(domain.StageScaling, weightTeamSize, "team_size")
	default:
		vote(domain.StageMature, weightTeamSize, "team_size")
	}

	switch {
	case profile.PolicyCount < 10:
		vote(domain.StageEarly, weightPolicyCount, "policy_count")
	case profile.PolicyCount <= 30:
		vote(domain.StageScaling, weightPolicyCount, "policy_count")
	default:
		vote(domain.StageMature, weightPolicyCount, "policy_count")
	}

	switch {
	case profile.OverrideRate > 0.3:
		vote(domain.StageEarly, weightOverrideRate, "override_rate")
	case profile.OverrideRate >= 0.1:
		vote(domain.StageScaling, weightOverrideRate, "override_rate")
	default:
		vote(domain.StageMature, weightOverrideRate, "override_rate")
	}

	switch {
	case profile.DeploysPerWeek > 10:
		vote(domain.StageEarly, weightDeployFreq, "deploy_frequency")
	case profile.DeploysPerWeek >= 3:
		vote(domain.StageScaling, weightDeployFreq, "deploy_frequency")
	default:
		vote(domain.StageMature, weightDeployFreq, "deploy_frequency")
	}

	for _, p := range patterns {
		switch p.Type {
		case domain.PatternConsistentApproval:
			vote(domain.StageEarly, weightPattern, "velocity_pattern")
		case domain.PatternRiskAversion:
			vote(domain.StageMature, weightPattern, "risk_pattern")
		}
	}

	// Stages are visited in a fixed order; a tie keeps the earlier stage.
	stageOrder := []domain.OrgStage{domain.StageEarly, domain.StageScaling, domain.StageMature}
	top := stageOrder[0]
	total := 0.0
	for _, stage := range stageOrder {
		total += scores[stage]
		if scores[stage] > scores[top] {
			top = stage
		}
	}
	confidence := 0.0
	if total > 0 {
		confidence = scores[top] / total
	}

	return &domain.StageGate{
		Stage:             top,
		Confidence:        confidence,
		MatchedIndicators: matched,
		Scores:            scores,
		EvaluatedAt:       now,
	}
}

// DetectToolingMismatch flags governance tooling out of step with the
// detected stage. Nil means the tooling fits.
func (s *PatternService) DetectToolingMismatch(stage domain.OrgStage, profile domain.OrgProfile, now time.Time) *domain.ToolingMismatch {
	switch {
	case stage == domain.StageEarly && profile.PolicyCount > 20:
		return &domain.ToolingMismatch{
			Type:        domain.MismatchOverEngineered,
			Description: fmt.Sprintf("early-stage org carrying %d policies", profile.PolicyCount),
			DetectedAt:  now,
		}
	case stage == domain.StageMature && profile.PolicyCount < 10:
		return &domain.ToolingMismatch{
			Type:        domain.MismatchUnderGoverned,
			Description: fmt.Sprintf("mature org with only %d policies", profile.PolicyCount),
			DetectedAt:  now,
		}
	case stage == domain.StageMature && profile.DeploysPerWeek > 10:
		return &domain.ToolingMismatch{
			Type:        domain.MismatchWrongFocus,
			Description: fmt.Sprintf("mature org deploying %.0f times per week", profile.DeploysPerWeek),
			DetectedAt:  now,
		}
	}
	return nil
}
