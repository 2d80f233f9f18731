package domain

import (
	"errors"
	"math"
	"time"

	"github.com/credohq/credo/internal/identity"
)

// ErrConfidenceOutOfRange is returned when a confidence value falls outside
// [0,1] on create or update. Out-of-range values are rejected, never clamped.
var ErrConfidenceOutOfRange = errors.New("confidence must be in [0,1]")

// ErrNegativeDecayRate is returned for decay rates below zero.
var ErrNegativeDecayRate = errors.New("decay rate must be >= 0")

const hoursPerDay = 24.0

// Belief is a time-varying confidence estimate about one assertion. The id
// is fixed at creation; every update replaces the record with version+1
// under the same id (copy-on-write, so history stays reconstructable).
type Belief struct {
	ID                   string         `json:"id"`
	AssertionID          string         `json:"assertion_id"`
	Confidence           float64        `json:"confidence"`
	Version              int            `json:"version"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DecayRate            float64        `json:"decay_rate"`
	ValidityUntil        *time.Time     `json:"validity_until,omitempty"`
	UpstreamDependencies []string       `json:"upstream_dependencies,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

func ValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

func NewBelief(assertionID string, confidence, decayRate float64, validityUntil *time.Time, upstream []string, metadata map[string]any, now time.Time) (*Belief, error) {
	if !ValidConfidence(confidence) {
		return nil, ErrConfidenceOutOfRange
	}
	if decayRate < 0 {
		return nil, ErrNegativeDecayRate
	}
	return &Belief{
		ID:                   identity.Hash("belief", assertionID, identity.FloatPart(confidence), identity.TimePart(now)),
		AssertionID:          assertionID,
		Confidence:           confidence,
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
		DecayRate:            decayRate,
		ValidityUntil:        validityUntil,
		UpstreamDependencies: dedupeOrdered(upstream),
		Metadata:             metadata,
	}, nil
}

// WithConfidence returns the next version of the belief carrying the new
// confidence. The id is preserved; version increments by exactly one.
func (b *Belief) WithConfidence(confidence float64, now time.Time) (*Belief, error) {
	if !ValidConfidence(confidence) {
		return nil, ErrConfidenceOutOfRange
	}
	next := *b
	next.Confidence = confidence
	next.Version = b.Version + 1
	next.UpdatedAt = now
	return &next, nil
}

// CurrentConfidence applies exponential decay at the given instant. Past
// validity_until the belief is worth exactly 0 regardless of decay rate.
// A zero decay rate yields the stored confidence unchanged.
func (b *Belief) CurrentConfidence(now time.Time) float64 {
	if b.ValidityUntil != nil && !now.Before(*b.ValidityUntil) {
		return 0
	}
	if b.DecayRate == 0 {
		return b.Confidence
	}
	days := now.Sub(b.CreatedAt).Hours() / hoursPerDay
	if days < 0 {
		days = 0
	}
	decayed := b.Confidence * math.Exp(-b.DecayRate*days)
	return clamp01(decayed)
}

// DependsOn reports whether beliefID appears in the upstream dependency set.
func (b *Belief) DependsOn(beliefID string) bool {
	for _, id := range b.UpstreamDependencies {
		if id == beliefID {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
