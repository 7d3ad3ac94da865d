package agent

import "math"

// SentimentStats is the population-level snapshot change_sentiment needs;
// the simulator computes it once per cadence tick and passes it to every
// Chartist (or Universalist currently acting as one).
type SentimentStats struct {
	TotalTraders          int
	Chartists             int
	OptimisticChartists   int
	PessimisticChartists  int
	DeltaPrice            float64 // price_t - price_{t-1}, 0 if unavailable
	A1, A2, V1            float64
	ReferencePrice        float64 // the price used to normalize DeltaPrice
}

// ChangeSentiment evaluates whether a a Chartist (or Universalist acting
// as one) flips its sentiment this tick. v1 guards against division by
// zero by substituting 1 when the configured value is 0.
func ChangeSentiment(a *Agent, stats SentimentStats) {
	if stats.Chartists == 0 {
		return
	}
	v1 := stats.V1
	if v1 == 0 {
		v1 = 1
	}
	p := stats.ReferencePrice
	if p == 0 {
		p = 1
	}
	x := float64(stats.OptimisticChartists-stats.PessimisticChartists) / float64(stats.Chartists)
	u := stats.A1*x + (stats.A2/v1)*(stats.DeltaPrice/p)
	share := float64(stats.Chartists) / float64(stats.TotalTraders)

	switch a.Sentiment {
	case Optimistic:
		prob := clip(0, 1, v1*share*math.Exp(u))
		if a.rng.Uniform01() < prob {
			a.Sentiment = Pessimistic
		}
	case Pessimistic:
		prob := clip(0, 1, v1*share*math.Exp(-u))
		if a.rng.Uniform01() < prob {
			a.Sentiment = Optimistic
		}
	}
}
