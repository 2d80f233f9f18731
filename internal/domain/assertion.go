package domain

import (
	"strings"
	"time"

	"github.com/credohq/credo/internal/identity"
)

// Assertion is a claim backed by evidence ids. Evidence ids may reference
// items not yet present in the graph; missing references resolve as absent
// during traversal rather than erroring.
type Assertion struct {
	ID             string         `json:"id"`
	Claim          string         `json:"claim"`
	EvidenceIDs    []string       `json:"evidence_ids"`
	Transformation string         `json:"transformation,omitempty"`
	Source         string         `json:"source"`
	Timestamp      time.Time      `json:"timestamp"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

func NewAssertion(claim string, evidenceIDs []string, transformation, source string, timestamp time.Time, metadata map[string]any) *Assertion {
	ids := dedupeOrdered(evidenceIDs)
	return &Assertion{
		ID:             identity.Hash(claim, identity.HashList(ids), transformation, source, identity.TimePart(timestamp)),
		Claim:          claim,
		EvidenceIDs:    ids,
		Transformation: transformation,
		Source:         source,
		Timestamp:      timestamp,
		Metadata:       metadata,
	}
}

// NormalizeClaim lowercases, trims, and collapses internal whitespace. Two
// claims with the same normal form are treated as the same statement; no
// semantic equivalence is attempted.
func NormalizeClaim(claim string) string {
	return strings.Join(strings.Fields(strings.ToLower(claim)), " ")
}

func dedupeOrdered(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
