package service

// Composition strategies combine N belief confidences about one assertion
// into a single value. All strategies compose an empty input to 0.0.

type CompositionStrategy string

const (
	CompositionAverage         CompositionStrategy = "average"
	CompositionMax             CompositionStrategy = "max"
	CompositionMin             CompositionStrategy = "min"
	CompositionWeightedAverage CompositionStrategy = "weighted_average"
	CompositionBayesian        CompositionStrategy = "bayesian"
)

// DefaultCompositionStrategy is used when the caller does not name one.
const DefaultCompositionStrategy = CompositionWeightedAverage

func ValidCompositionStrategy(s string) bool {
	switch CompositionStrategy(s) {
	case CompositionAverage, CompositionMax, CompositionMin, CompositionWeightedAverage, CompositionBayesian:
		return true
	}
	return false
}

// ComposeConfidences folds the given confidences under the strategy.
// Explicit weights apply only to weighted_average and only when they cover
// every confidence; otherwise each confidence weighs 1/(1-c+0.1), which
// favors more certain beliefs without letting certainty dominate outright.
func ComposeConfidences(strategy CompositionStrategy, confidences, weights []float64) float64 {
	if len(confidences) == 0 {
		return 0.0
	}
	switch strategy {
	case CompositionAverage:
		sum := 0.0
		for _, c := range confidences {
			sum += c
		}
		return sum / float64(len(confidences))
	case CompositionMax:
		best := confidences[0]
		for _, c := range confidences[1:] {
			if c > best {
				best = c
			}
		}
		return best
	case CompositionMin:
		worst := confidences[0]
		for _, c := range confidences[1:] {
			if c < worst {
				worst = c
			}
		}
		return worst
	case CompositionBayesian:
		posterior := confidences[0]
		for _, likelihood := range confidences[1:] {
			num := posterior * likelihood
			den := num + (1-posterior)*(1-likelihood)
			if den == 0 {
				continue
			}
			posterior = num / den
		}
		return posterior
	default: // weighted average
		var weightedSum, weightSum float64
		for i, c := range confidences {
			w := 1 / (1 - c + 0.1)
			if len(weights) == len(confidences) {
				w = weights[i]
			}
			weightedSum += w * c
			weightSum += w
		}
		if weightSum == 0 {
			return 0.0
		}
		return weightedSum / weightSum
	}
}
