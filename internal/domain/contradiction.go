package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

type ContradictionType string

const (
	ContradictionAssertionConflict ContradictionType = "assertion_conflict"
	ContradictionBeliefDivergence  ContradictionType = "belief_divergence"
	ContradictionPolicyConflict    ContradictionType = "policy_conflict"
	ContradictionSemanticDrift     ContradictionType = "semantic_drift"
	ContradictionEconomicViolation ContradictionType = "economic_violation"
)

type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityHigh    Severity = "high"
	SeverityMedium  Severity = "medium"
	SeverityLow     Severity = "low"
	SeverityInfo    Severity = "info"
)

type ResolutionStatus string

const (
	ResolutionUnresolved    ResolutionStatus = "unresolved"
	ResolutionHumanOverride ResolutionStatus = "human_override"
	ResolutionPolicyRuled   ResolutionStatus = "policy_ruled"
	ResolutionIgnored       ResolutionStatus = "ignored"
)

func ValidResolutionStatus(s string) bool {
	switch ResolutionStatus(s) {
	case ResolutionUnresolved, ResolutionHumanOverride, ResolutionPolicyRuled, ResolutionIgnored:
		return true
	}
	return false
}

// Contradiction is a detected conflict among recorded state. Everything is
// immutable after detection except ResolutionStatus. The id is derived from
// the type and the conflicting item ids, so re-scanning the same state
// produces the same id and detection stays idempotent.
type Contradiction struct {
	ID               string            `json:"id"`
	Type             ContradictionType `json:"type"`
	ConflictingItems []string          `json:"conflicting_items"`
	Severity         Severity          `json:"severity"`
	Explanation      string            `json:"explanation"`
	DetectedAt       time.Time         `json:"detected_at"`
	ResolutionStatus ResolutionStatus  `json:"resolution_status"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}

func NewContradiction(typ ContradictionType, conflictingItems []string, severity Severity, explanation string, detectedAt time.Time, metadata map[string]any) *Contradiction {
	items := dedupeOrdered(conflictingItems)
	return &Contradiction{
		ID:               identity.Hash("contradiction", string(typ), identity.HashList(items)),
		Type:             typ,
		ConflictingItems: items,
		Severity:         severity,
		Explanation:      explanation,
		DetectedAt:       detectedAt,
		ResolutionStatus: ResolutionUnresolved,
		Metadata:         metadata,
	}
}
