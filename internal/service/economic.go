package service

import (
	"fmt"
	"time"

	"github.com/credohq/credo/internal/domain"
	"go.uber.org/zap"
)

type PressureLevel string

const (
	PressureCritical PressureLevel = "CRITICAL"
	PressureHigh     PressureLevel = "HIGH"
	PressureMedium   PressureLevel = "MEDIUM"
	PressureLow      PressureLevel = "LOW"
)

const (
	pressureCriticalRatio = 0.95
	pressureHighRatio     = 0.80
	pressureMediumRatio   = 0.60

	burnRateWindow = 10

	hoursPerDay = 24.0
)

// Per-type trust weights and confidence adjustments for belief influence.
var (
	signalTypeWeights = map[domain.SignalType]float64{
		domain.SignalCost:           0.8,
		domain.SignalRisk:           1.0,
		domain.SignalValue:          0.6,
		domain.SignalBudgetPressure: 0.9,
	}
	signalAdjustments = map[domain.SignalType]float64{
		domain.SignalCost:           -0.10,
		domain.SignalRisk:           -0.15,
		domain.SignalBudgetPressure: -0.20,
		domain.SignalValue:          +0.10,
	}
)

// BudgetPressure summarizes spend against a limit for one organization.
type BudgetPressure struct {
	Org            string        `json:"org"`
	Limit          float64       `json:"limit"`
	CurrentSpend   float64       `json:"current_spend"`
	PressureLevel  PressureLevel `json:"pressure_level"`
	BurnRatePerDay float64       `json:"burn_rate_per_day"`
	DaysToLimit    float64       `json:"days_to_limit"`
	EvaluatedAt    time.Time     `json:"evaluated_at"`
}

// EconomicService tracks cost/risk/value signals, evaluates budget
// pressure, and adjusts belief confidence from economic reality.
type EconomicService struct {
	signals domain.SignalStore
	beliefs domain.BeliefStore
	logger  *zap.Logger
}

func NewEconomicService(signals domain.SignalStore, beliefs domain.BeliefStore, logger *zap.Logger) *EconomicService {
	return &EconomicService{signals: signals, beliefs: beliefs, logger: logger}
}

func (s *EconomicService) Record(typ domain.SignalType, amount float64, unit, source, appliesTo string, confidence float64, timestamp time.Time, metadata map[string]any) (*domain.EconomicSignal, error) {
	sig, err := domain.NewEconomicSignal(typ, amount, unit, source, appliesTo, confidence, timestamp, metadata)
	if err != nil {
		return nil, fmt.Errorf("record signal: %w", err)
	}
	s.signals.Put(sig)
	s.logger.Debug("economic signal recorded",
		zap.String("signal_id", sig.ID),
		zap.String("type", string(typ)),
		zap.Float64("amount", amount),
		zap.String("applies_to", appliesTo))
	return sig, nil
}

func (s *EconomicService) SignalsFor(target string) []*domain.EconomicSignal {
	return s.signals.ListByTarget(target)
}

// TotalByType sums the amounts of matching-typed signals for the target.
func (s *EconomicService) TotalByType(target string, typ domain.SignalType) float64 {
	total := 0.0
	for _, sig := range s.signals.ListByTarget(target) {
		if sig.Type == typ {
			total += sig.Amount
		}
	}
	return total
}

func (s *EconomicService) TotalCost(target string) float64 {
	return s.TotalByType(target, domain.SignalCost)
}

func (s *EconomicService) TotalRisk(target string) float64 {
	return s.TotalByType(target, domain.SignalRisk)
}

func (s *EconomicService) TotalValue(target string) float64 {
	return s.TotalByType(target, domain.SignalValue)
}

// EvaluateBudgetPressure grades accumulated cost against the limit and
// estimates days until the limit at the recent burn rate.
func (s *EconomicService) EvaluateBudgetPressure(org string, limit float64, now time.Time) *BudgetPressure {
	spend := s.TotalCost(org)

	level := PressureLow
	if limit > 0 {
		switch ratio := spend / limit; {
		case ratio >= pressureCriticalRatio:
			level = PressureCritical
		case ratio >= pressureHighRatio:
			level = PressureHigh
		case ratio >= pressureMediumRatio:
			level = PressureMedium
		}
	}

	burnRate := s.burnRate(org)
	daysToLimit := 0.0
	if burnRate > 0 && limit > spend {
		daysToLimit = (limit - spend) / burnRate
	}

	return &BudgetPressure{
		Org:            org,
		Limit:          limit,
		CurrentSpend:   spend,
		PressureLevel:  level,
		BurnRatePerDay: burnRate,
		DaysToLimit:    daysToLimit,
		EvaluatedAt:    now,
	}
}

// burnRate averages the last 10 cost signals over the day span between the
// first and last of them. Fewer than two signals, or a zero span, yields 0.
func (s *EconomicService) burnRate(org string) float64 {
	var costs []*domain.EconomicSignal
	for _, sig := range s.signals.ListByTarget(org) {
		if sig.Type == domain.SignalCost {
			costs = append(costs, sig)
		}
	}
	if len(costs) > burnRateWindow {
		costs = costs[len(costs)-burnRateWindow:]
	}
	if len(costs) < 2 {
		return 0
	}

	total := 0.0
	for _, sig := range costs {
		total += sig.Amount
	}
	span := costs[len(costs)-1].Timestamp.Sub(costs[0].Timestamp).Hours() / hoursPerDay
	if span <= 0 {
		return 0
	}
	return total / span
}

// InfluenceBelief applies every signal recorded for the target to the
// belief's confidence, one multiplicative adjustment per signal weighted by
// the signal's own confidence. The result clamps to [0,1] and the belief
// versions up.
func (s *EconomicService) InfluenceBelief(beliefID, target string, now time.Time) (*domain.Belief, error) {
	b, err := s.beliefs.GetByID(beliefID)
	if err != nil {
		return nil, fmt.Errorf("influence belief %s: %w", beliefID, err)
	}

	confidence := b.Confidence
	applied := 0
	for _, sig := range s.signals.ListByTarget(target) {
		adjustment, ok := signalAdjustments[sig.Type]
		if !ok {
			continue
		}
		w := signalTypeWeights[sig.Type] * sig.Confidence
		confidence *= 1 + w*adjustment
		applied++
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	next, err := b.WithConfidence(confidence, now)
	if err != nil {
		return nil, fmt.Errorf("influence belief %s: %w", beliefID, err)
	}
	s.beliefs.Put(next)
	s.logger.Info("belief influenced by economic signals",
		zap.String("belief_id", beliefID),
		zap.String("target", target),
		zap.Int("signals_applied", applied),
		zap.Float64("old_confidence", b.Confidence),
		zap.Float64("new_confidence", confidence))
	return next, nil
}
