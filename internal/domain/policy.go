package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

// PolicyWildcard in applies_to matches any target.
const PolicyWildcard = "*"

// Policy is a snapshot of one governance rule from the caller's registry.
// The substrate only inspects policies for conflicts; it never enforces them.
type Policy struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	AppliesTo   string         `json:"applies_to"`
	Enforcement string         `json:"enforcement"`
	CreatedAt   time.Time      `json:"created_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewPolicy(name, typ, appliesTo, enforcement string, createdAt time.Time, metadata map[string]any) *Policy {
	return &Policy{
		ID:          identity.Hash("policy", name, typ, appliesTo, enforcement, identity.TimePart(createdAt)),
		Name:        name,
		Type:        typ,
		AppliesTo:   appliesTo,
		Enforcement: enforcement,
		CreatedAt:   createdAt,
		Metadata:    metadata,
	}
}

// Overlaps reports whether two policies govern an overlapping target set.
// A wildcard on either side overlaps everything.
func (p *Policy) Overlaps(other *Policy) bool {
	if p.AppliesTo == PolicyWildcard || other.AppliesTo == PolicyWildcard {
		return true
	}
	return p.AppliesTo == other.AppliesTo
}
