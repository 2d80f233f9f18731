package service

import (
	"fmt"
	"time"

	"github.com/credohq/credo/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultPropagationThreshold is the upstream confidence below which
	// decay propagates to dependent beliefs.
	DefaultPropagationThreshold = 0.5
)

// BeliefService forms and updates beliefs, computes decayed confidence,
// composes multiple beliefs about one assertion, and propagates decay to
// downstream dependents.
type BeliefService struct {
	beliefs domain.BeliefStore
	logger  *zap.Logger
}

func NewBeliefService(beliefs domain.BeliefStore, logger *zap.Logger) *BeliefService {
	return &BeliefService{beliefs: beliefs, logger: logger}
}

// FormBeliefOpts carries the optional belief parameters.
type FormBeliefOpts struct {
	DecayRate     float64
	ValidityUntil *time.Time
	Upstream      []string
	Metadata      map[string]any
}

func (s *BeliefService) Form(assertionID string, confidence float64, opts FormBeliefOpts, now time.Time) (*domain.Belief, error) {
	b, err := domain.NewBelief(assertionID, confidence, opts.DecayRate, opts.ValidityUntil, opts.Upstream, opts.Metadata, now)
	if err != nil {
		return nil, fmt.Errorf("form belief: %w", err)
	}
	s.beliefs.Put(b)
	s.logger.Debug("belief formed",
		zap.String("belief_id", b.ID),
		zap.String("assertion_id", assertionID),
		zap.Float64("confidence", confidence),
		zap.Float64("decay_rate", opts.DecayRate))
	return b, nil
}

// UpdateConfidence replaces the belief with version+1 under the same id.
// Unknown ids and out-of-range confidences fail with no state change.
func (s *BeliefService) UpdateConfidence(beliefID string, confidence float64, now time.Time) (*domain.Belief, error) {
	b, err := s.beliefs.GetByID(beliefID)
	if err != nil {
		return nil, fmt.Errorf("update belief %s: %w", beliefID, err)
	}
	next, err := b.WithConfidence(confidence, now)
	if err != nil {
		return nil, fmt.Errorf("update belief %s: %w", beliefID, err)
	}
	s.beliefs.Put(next)
	s.logger.Debug("belief updated",
		zap.String("belief_id", beliefID),
		zap.Float64("old_confidence", b.Confidence),
		zap.Float64("new_confidence", confidence),
		zap.Int("version", next.Version))
	return next, nil
}

func (s *BeliefService) Get(beliefID string) (*domain.Belief, error) {
	return s.beliefs.GetByID(beliefID)
}

// CurrentConfidence evaluates the belief's decayed confidence at now.
func (s *BeliefService) CurrentConfidence(beliefID string, now time.Time) (float64, error) {
	b, err := s.beliefs.GetByID(beliefID)
	if err != nil {
		return 0, err
	}
	return b.CurrentConfidence(now), nil
}

// Compose combines every belief held about the assertion into one
// confidence. Weights apply only to the weighted-average strategy; an
// assertion without beliefs composes to 0.0 under every strategy.
func (s *BeliefService) Compose(assertionID string, strategy CompositionStrategy, weights []float64, now time.Time) float64 {
	beliefs := s.beliefs.ListByAssertion(assertionID)
	confidences := make([]float64, len(beliefs))
	for i, b := range beliefs {
		confidences[i] = b.CurrentConfidence(now)
	}
	return ComposeConfidences(strategy, confidences, weights)
}

// PropagateDecay scales every belief that depends on the upstream belief by
// upstream_confidence/threshold, but only once the upstream has fallen
// below the threshold. Affected beliefs version up with decay metadata.
func (s *BeliefService) PropagateDecay(upstreamID string, threshold float64, now time.Time) ([]*domain.Belief, error) {
	if threshold <= 0 {
		threshold = DefaultPropagationThreshold
	}
	upstream, err := s.beliefs.GetByID(upstreamID)
	if err != nil {
		return nil, fmt.Errorf("propagate decay from %s: %w", upstreamID, err)
	}

	upstreamConfidence := upstream.CurrentConfidence(now)
	if upstreamConfidence >= threshold {
		return nil, nil
	}
	factor := upstreamConfidence / threshold

	var affected []*domain.Belief
	for _, b := range s.beliefs.List() {
		if b.ID == upstreamID || !b.DependsOn(upstreamID) {
			continue
		}
		next, err := b.WithConfidence(b.Confidence*factor, now)
		if err != nil {
			// Scaling down a valid confidence cannot leave [0,1].
			continue
		}
		next.Metadata = cloneMetadata(b.Metadata)
		next.Metadata["decay_propagated_from"] = upstreamID
		next.Metadata["decay_factor"] = factor
		s.beliefs.Put(next)
		affected = append(affected, next)
	}

	s.logger.Info("decay propagated",
		zap.String("upstream_id", upstreamID),
		zap.Float64("upstream_confidence", upstreamConfidence),
		zap.Float64("factor", factor),
		zap.Int("affected", len(affected)))
	return affected, nil
}

// PruneExpired removes every belief whose current confidence computes to
// exactly 0 and returns the removed ids.
func (s *BeliefService) PruneExpired(now time.Time) []string {
	var pruned []string
	for _, b := range s.beliefs.List() {
		if b.CurrentConfidence(now) == 0 {
			s.beliefs.Delete(b.ID)
			pruned = append(pruned, b.ID)
		}
	}
	if len(pruned) > 0 {
		s.logger.Info("expired beliefs pruned", zap.Int("count", len(pruned)))
	}
	return pruned
}

func (s *BeliefService) List() []*domain.Belief {
	return s.beliefs.List()
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
