package domain

import (
	"time"

	"github.com/credohq/credo/internal/identity"
)

type SignalType string

const (
	SignalCost           SignalType = "cost"
	SignalRisk           SignalType = "risk"
	SignalValue          SignalType = "value"
	SignalBudgetPressure SignalType = "budget_pressure"
)

func ValidSignalType(t string) bool {
	switch SignalType(t) {
	case SignalCost, SignalRisk, SignalValue, SignalBudgetPressure:
		return true
	}
	return false
}

// EconomicSignal carries a cost/risk/value observation about a target,
// weighted by how much the emitter trusts it.
type EconomicSignal struct {
	ID         string         `json:"id"`
	Type       SignalType     `json:"type"`
	Amount     float64        `json:"amount"`
	Unit       string         `json:"unit"`
	Source     string         `json:"source"`
	AppliesTo  string         `json:"applies_to"`
	Confidence float64        `json:"confidence"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewEconomicSignal(typ SignalType, amount float64, unit, source, appliesTo string, confidence float64, timestamp time.Time, metadata map[string]any) (*EconomicSignal, error) {
	if !ValidConfidence(confidence) {
		return nil, ErrConfidenceOutOfRange
	}
	return &EconomicSignal{
		ID:         identity.Hash("signal", string(typ), identity.FloatPart(amount), unit, source, appliesTo, identity.TimePart(timestamp)),
		Type:       typ,
		Amount:     amount,
		Unit:       unit,
		Source:     source,
		AppliesTo:  appliesTo,
		Confidence: confidence,
		Timestamp:  timestamp,
		Metadata:   metadata,
	}, nil
}
