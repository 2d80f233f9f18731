package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

type DecisionType string

const (
	DecisionSystem         DecisionType = "system"
	DecisionHumanOverride  DecisionType = "human_override"
	DecisionPolicyEnforced DecisionType = "policy_enforced"
	DecisionEconomic       DecisionType = "economic"
)

func ValidDecisionType(t string) bool {
	switch DecisionType(t) {
	case DecisionSystem, DecisionHumanOverride, DecisionPolicyEnforced, DecisionEconomic:
		return true
	}
	return false
}

// Decision records an action taken by the caller together with the beliefs
// and policies that informed it.
type Decision struct {
	ID        string         `json:"id"`
	Type      DecisionType   `json:"type"`
	Action    string         `json:"action"`
	Rationale []string       `json:"rationale"`
	BeliefIDs []string       `json:"belief_ids,omitempty"`
	PolicyIDs []string       `json:"policy_ids,omitempty"`
	Authority string         `json:"authority,omitempty"`
	Scope     string         `json:"scope,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewDecision(typ DecisionType, action string, rationale []string, beliefIDs, policyIDs []string, authority, scope string, expiresAt *time.Time, createdAt time.Time, metadata map[string]any) *Decision {
	return &Decision{
		ID:        identity.Hash(string(typ), action, identity.HashList(rationale), identity.HashList(beliefIDs), identity.HashList(policyIDs), authority, scope, identity.TimePart(createdAt)),
		Type:      typ,
		Action:    action,
		Rationale: rationale,
		BeliefIDs: dedupeOrdered(beliefIDs),
		PolicyIDs: dedupeOrdered(policyIDs),
		Authority: authority,
		Scope:     scope,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
		Metadata:  metadata,
	}
}

// ConflictsWith reports whether two decisions target the same non-empty
// scope with different actions.
func (d *Decision) ConflictsWith(other *Decision) bool {
	if d.Scope == "" || other.Scope == "" {
		return false
	}
	return d.Scope == other.Scope && d.Action != other.Action
}
