// Package rng is the single seedable randomness source threaded through
// every component that draws a random number: the Simulator, and every
// Agent it constructs. An explicit, passed-in source in place of ambient
// global random state is what makes a run reproducible given the same
// seed, agent-population config, and event schedule.
package rng

import (
	"math"
	"math/rand"
)

// Source wraps a single math/rand.Rand and exposes exactly the
// distributions the agent strategies need.
type Source struct {
	r *rand.Rand
}

// New creates a Source seeded deterministically.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Uniform01 draws u ~ U(0,1).
func (s *Source) Uniform01() float64 {
	return s.r.Float64()
}

// UniformRange draws u ~ U(lo, hi).
func (s *Source) UniformRange(lo, hi float64) float64 {
	return lo + s.r.Float64()*(hi-lo)
}

// UniformInt draws an integer uniformly from [lo, hi] inclusive.
func (s *Source) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// Exponential draws from Exp(rate): mean 1/rate.
func (s *Source) Exponential(rate float64) float64 {
	return s.r.ExpFloat64() / rate
}

// Normal draws from N(mean, std).
func (s *Source) Normal(mean, std float64) float64 {
	return mean + s.r.NormFloat64()*std
}

// LogNormalMultiplier draws exp(N(mean, std)), used by the dividend
// evolution process.
func (s *Source) LogNormalMultiplier(mean, std float64) float64 {
	return math.Exp(s.Normal(mean, std))
}

// Shuffle randomizes the order of n items in place via swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
