package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DelaySampler draws non-negative durations in days.
type DelaySampler interface {
	// Sample returns a finite value >= 0.
	Sample(rng *rand.Rand) float64
	// Mean returns the configured mean.
	Mean() float64
}

// CountSampler draws non-negative event counts.
type CountSampler interface {
	Sample(rng *rand.Rand) int
}

// ExponentialDelay draws Exponential(1/mean) durations.
type ExponentialDelay struct {
	mean float64
}

// NewExponentialDelay validates mean at construction time.
func NewExponentialDelay(mean float64) (*ExponentialDelay, error) {
	if !positive(mean) {
		return nil, InvalidParameterf("exponential mean must be positive and finite, got %v", mean)
	}
	return &ExponentialDelay{mean: mean}, nil
}

func (s *ExponentialDelay) Sample(rng *rand.Rand) float64 {
	return distuv.Exponential{Rate: 1 / s.mean, Src: rng}.Rand()
}

func (s *ExponentialDelay) Mean() float64 { return s.mean }

// FixedDelay always returns the same duration. Used for deterministic
// schedules such as upgrade cycles and for tests.
type FixedDelay struct {
	value float64
}

// NewFixedDelay accepts any finite value >= 0.
func NewFixedDelay(value float64) (*FixedDelay, error) {
	if !validDelay(value) {
		return nil, InvalidParameterf("fixed delay must be finite and non-negative, got %v", value)
	}
	return &FixedDelay{value: value}, nil
}

func (s *FixedDelay) Sample(*rand.Rand) float64 { return s.value }

func (s *FixedDelay) Mean() float64 { return s.value }

// PoissonCount draws Poisson(mean) counts.
type PoissonCount struct {
	mean float64
}

// NewPoissonCount validates mean at construction time.
func NewPoissonCount(mean float64) (*PoissonCount, error) {
	if !positive(mean) {
		return nil, InvalidParameterf("poisson mean must be positive and finite, got %v", mean)
	}
	return &PoissonCount{mean: mean}, nil
}

func (s *PoissonCount) Sample(rng *rand.Rand) int {
	return int(distuv.Poisson{Lambda: s.mean, Src: rng}.Rand())
}

// FixedCount always returns n.
type FixedCount int

func (n FixedCount) Sample(*rand.Rand) int { return int(n) }

// Categorical draws an index with probability proportional to its weight.
type Categorical struct {
	weights []float64
}

// NewCategorical requires at least one weight, all finite and >= 0, with a
// positive sum.
func NewCategorical(weights []float64) (*Categorical, error) {
	if len(weights) == 0 {
		return nil, InvalidParameterf("categorical needs at least one weight")
	}
	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, InvalidParameterf("categorical weight %d must be finite and non-negative, got %v", i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, InvalidParameterf("categorical weights must not all be zero")
	}
	return &Categorical{weights: append([]float64(nil), weights...)}, nil
}

// Sample returns an index into the weights slice.
func (c *Categorical) Sample(rng *rand.Rand) int {
	return int(distuv.NewCategorical(c.weights, rng).Rand())
}

// ValidateProbability returns ErrInvalidParameter unless p is in [0, 1].
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return InvalidParameterf("%s must be in [0, 1], got %v", name, p)
	}
	return nil
}

// ValidatePositive returns ErrInvalidParameter unless v is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if !positive(v) {
		return InvalidParameterf("%s must be positive and finite, got %v", name, v)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
