package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

// HumanOverride is a time-bounded human decision that supersedes a system
// decision. Authority expires; renewable overrides extend their window and
// keep an ordered trail of renewal decision ids.
type HumanOverride struct {
	ID               string    `json:"id"`
	OriginalDecision string    `json:"original_decision"`
	OverrideDecision string    `json:"override_decision"`
	Authority        string    `json:"authority"`
	Scope            string    `json:"scope"`
	Rationale        string    `json:"rationale"`
	ExpiresAt        time.Time `json:"expires_at"`
	RequiresRenewal  bool      `json:"requires_renewal"`
	RenewalHistory   []string  `json:"renewal_history,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewHumanOverride(originalDecision, overrideDecision, authority, scope, rationale string, expiresAt time.Time, requiresRenewal bool, createdAt time.Time) *HumanOverride {
	return &HumanOverride{
		ID:               identity.Hash("override", originalDecision, overrideDecision, authority, scope, identity.TimePart(createdAt)),
		OriginalDecision: originalDecision,
		OverrideDecision: overrideDecision,
		Authority:        authority,
		Scope:            scope,
		Rationale:        rationale,
		ExpiresAt:        expiresAt,
		RequiresRenewal:  requiresRenewal,
		CreatedAt:        createdAt,
	}
}

// IsExpired reports whether the override's authority window has closed.
func (o *HumanOverride) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
