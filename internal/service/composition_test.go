package service

import (
	"math"
	"testing"
)

func TestComposeConfidences_EmptyInput(t *testing.T) {
	strategies := []CompositionStrategy{
		CompositionAverage, CompositionMax, CompositionMin,
		CompositionWeightedAverage, CompositionBayesian,
	}
	for _, s := range strategies {
		if got := ComposeConfidences(s, nil, nil); got != 0.0 {
			t.Errorf("%s over empty input = %v, want 0.0", s, got)
		}
	}
}

func TestComposeConfidences_SingleBeliefIdentity(t *testing.T) {
	strategies := []CompositionStrategy{
		CompositionAverage, CompositionMax, CompositionMin,
		CompositionWeightedAverage, CompositionBayesian,
	}
	for _, s := range strategies {
		if got := ComposeConfidences(s, []float64{0.8}, nil); math.Abs(got-0.8) > 1e-9 {
			t.Errorf("%s over single confidence = %v, want 0.8", s, got)
		}
	}
}

func TestComposeConfidences_Strategies(t *testing.T) {
	confidences := []float64{0.9, 0.7, 0.85}

	tests := []struct {
		strategy CompositionStrategy
		want     float64
	}{
		{CompositionAverage, (0.9 + 0.7 + 0.85) / 3},
		{CompositionMax, 0.9},
		{CompositionMin, 0.7},
	}
	for _, tt := range tests {
		if got := ComposeConfidences(tt.strategy, confidences, nil); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.strategy, got, tt.want)
		}
	}
}

func TestComposeConfidences_WeightedAverageBounds(t *testing.T) {
	confidences := []float64{0.9, 0.7, 0.85}
	got := ComposeConfidences(CompositionWeightedAverage, confidences, nil)

	if got <= 0.7 || got >= 0.9 {
		t.Errorf("weighted average = %v, want strictly between 0.7 and 0.9", got)
	}
	// Default weights favor certainty, pulling above the plain mean.
	mean := ComposeConfidences(CompositionAverage, confidences, nil)
	if got <= mean {
		t.Errorf("weighted average %v should exceed plain mean %v", got, mean)
	}
}

func TestComposeConfidences_ExplicitWeights(t *testing.T) {
	confidences := []float64{0.2, 0.8}

	// Full weight on the second confidence.
	got := ComposeConfidences(CompositionWeightedAverage, confidences, []float64{0, 1})
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("explicit weights [0,1] = %v, want 0.8", got)
	}

	// Mismatched weight count falls back to default weighting.
	short := ComposeConfidences(CompositionWeightedAverage, confidences, []float64{1})
	def := ComposeConfidences(CompositionWeightedAverage, confidences, nil)
	if math.Abs(short-def) > 1e-9 {
		t.Errorf("mismatched weights = %v, want default-weight result %v", short, def)
	}
}

func TestComposeConfidences_Bayesian(t *testing.T) {
	// Two agreeing 0.8 observations reinforce past either alone.
	got := ComposeConfidences(CompositionBayesian, []float64{0.8, 0.8}, nil)
	want := 0.64 / (0.64 + 0.04)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("bayesian [0.8 0.8] = %v, want %v", got, want)
	}
	if got <= 0.8 {
		t.Errorf("agreeing evidence should reinforce: %v", got)
	}
}
