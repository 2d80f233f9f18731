package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

type EvidenceType string

const (
	EvidenceRaw        EvidenceType = "raw"
	EvidenceDerived    EvidenceType = "derived"
	EvidenceHumanInput EvidenceType = "human_input"
	EvidenceExternal   EvidenceType = "external"
)

func ValidEvidenceType(e string) bool {
	switch EvidenceType(e) {
	case EvidenceRaw, EvidenceDerived, EvidenceHumanInput, EvidenceExternal:
		return true
	}
	return false
}

// Evidence is an immutable record of observed input. The id is derived from
// the record's content, so re-submitting the same evidence is idempotent.
type Evidence struct {
	ID             string         `json:"id"`
	Type           EvidenceType   `json:"type"`
	ContentHash    string         `json:"content_hash"`
	Source         string         `json:"source"`
	Timestamp      time.Time      `json:"timestamp"`
	ValidityPeriod *time.Duration `json:"validity_period,omitempty"`
}

func NewEvidence(typ EvidenceType, contentHash, source string, timestamp time.Time, validityPeriod *time.Duration) *Evidence {
	return &Evidence{
		ID:             identity.Hash(string(typ), contentHash, source, identity.TimePart(timestamp)),
		Type:           typ,
		ContentHash:    contentHash,
		Source:         source,
		Timestamp:      timestamp,
		ValidityPeriod: validityPeriod,
	}
}

// IsStale reports whether the validity period has elapsed. Evidence without
// a validity period never goes stale.
func (e *Evidence) IsStale(now time.Time) bool {
	if e.ValidityPeriod == nil {
		return false
	}
	return !now.Before(e.Timestamp.Add(*e.ValidityPeriod))
}
