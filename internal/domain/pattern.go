package domain

import "time"

// Pattern, stage, and mismatch results are derived summaries: recomputed on
// demand from recorded decisions and overrides, never persisted.

type PatternType string

const (
	PatternFrequentOverride        PatternType = "FREQUENT_OVERRIDE"
	PatternConsistentApproval      PatternType = "CONSISTENT_APPROVAL"
	PatternRiskAversion            PatternType = "RISK_AVERSION"
	PatternHighConfidenceOverride  PatternType = "HIGH_CONFIDENCE_OVERRIDE"
	PatternLowConfidenceAcceptance PatternType = "LOW_CONFIDENCE_ACCEPTANCE"
	PatternConflictingDecisions    PatternType = "CONFLICTING_DECISIONS"
)

type PatternFrequency string

const (
	FrequencyDaily   PatternFrequency = "daily"
	FrequencyWeekly  PatternFrequency = "weekly"
	FrequencyMonthly PatternFrequency = "monthly"
	FrequencyRare    PatternFrequency = "rare"
)

// UsagePattern is one behavioral signal mined from recent history.
type UsagePattern struct {
	Type        PatternType      `json:"type"`
	Description string           `json:"description"`
	Frequency   PatternFrequency `json:"frequency"`
	Occurrences int              `json:"occurrences"`
	ItemIDs     []string         `json:"item_ids,omitempty"`
	DetectedAt  time.Time        `json:"detected_at"`
}

// DivergencePattern records a single mismatch found by governance
// divergence mining: a belief at odds with a decision, or a pair of
// decisions contradicting each other on the same scope.
type DivergencePattern struct {
	ID            string      `json:"id"`
	Type          PatternType `json:"type"`
	BeliefID      string      `json:"belief_id,omitempty"`
	DecisionID    string      `json:"decision_id"`
	ConflictsWith string      `json:"conflicts_with,omitempty"`
	Magnitude     float64     `json:"magnitude"`
	DetectedAt    time.Time   `json:"detected_at"`
}

type OrgStage string

const (
	StageEarly   OrgStage = "early"
	StageScaling OrgStage = "scaling"
	StageMature  OrgStage = "mature"
)

// OrgProfile is the caller-supplied snapshot of organizational shape used
// by stage detection.
type OrgProfile struct {
	TeamSize       int     `json:"team_size"`
	PolicyCount    int     `json:"policy_count"`
	OverrideRate   float64 `json:"override_rate"`
	DeploysPerWeek float64 `json:"deploys_per_week"`
}

// StageGate is the outcome of organizational maturity scoring.
type StageGate struct {
	Stage             OrgStage            `json:"stage"`
	Confidence        float64             `json:"confidence"`
	MatchedIndicators []string            `json:"matched_indicators"`
	Scores            map[OrgStage]float64 `json:"scores"`
	EvaluatedAt       time.Time           `json:"evaluated_at"`
}

type MismatchType string

const (
	MismatchOverEngineered MismatchType = "OVER_ENGINEERED"
	MismatchUnderGoverned  MismatchType = "UNDER_GOVERNED"
	MismatchWrongFocus     MismatchType = "WRONG_FOCUS"
)

// ToolingMismatch flags governance tooling that does not fit the detected
// stage. Absence of a mismatch is represented by a nil result.
type ToolingMismatch struct {
	Type        MismatchType `json:"type"`
	Description string       `json:"description"`
	DetectedAt  time.Time    `json:"detected_at"`
}
