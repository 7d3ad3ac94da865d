// Universalist agents are a single Agent value that alternates, at a
// slower cadence than sentiment switching, between acting as a
// Fundamentalist and acting as a Chartist. Modeling this as an agent that
// inherits from both strategy types doesn't translate to Go, which has
// no multiple inheritance; ActingAs plus the shared Agent fields (see
// agent.go) stand in for it instead — composition, same behavior.
package agent

import "math"

// StrategyStats is the population-level snapshot change_strategy needs.
type StrategyStats struct {
	TotalTraders          int
	OptimisticChartists   int
	PessimisticChartists  int
	Fundamentalists       int
	MeanReturn            float64 // R, mean agent return over the last tick
	DeltaPrice            float64 // dp
	A3, V2, S             float64
}

// ChangeStrategy evaluates whether a Universalist switches which strategy
// it currently acts as. Only Universalist agents are affected.
//
// A Fundamentalist-acting agent only re-evaluates the branch matching its
// PrevSentiment (the sentiment it held the last time it acted as a
// Chartist), so a switch back to Chartist always lands on the branch
// opposite the one that sent it to Fundamentalist in the first place.
func ChangeStrategy(a *Agent, stats StrategyStats) {
	if a.Kind != KindUniversalist {
		return
	}
	venue := a.Venues[0]
	p, err := venue.Price()
	if err != nil || p == 0 {
		return
	}
	divs := venue.DividendWindow(a.Access)
	pf := fundamentalPrice(divs, venue.RiskFree)
	r := pf * venue.RiskFree

	v2 := stats.V2
	if v2 == 0 {
		v2 = 1
	}
	expTerm := (r + stats.DeltaPrice/v2) / p
	mispricing := stats.S * math.Abs(pf-p) / p
	u1 := clip(-100, 100, stats.A3*(expTerm-stats.MeanReturn-mispricing))
	u2 := clip(-100, 100, stats.A3*(stats.MeanReturn-expTerm-mispricing))
	n := float64(stats.TotalTraders)

	switch a.ActingAs {
	case KindChartist:
		if a.Sentiment == Optimistic {
			prob := clip(0, 1, v2*float64(stats.OptimisticChartists)/(n*math.Exp(u1)))
			if a.rng.Uniform01() < prob {
				a.PrevSentiment = a.Sentiment
				a.ActingAs = KindFundamentalist
			}
			return
		}
		prob := clip(0, 1, v2*float64(stats.PessimisticChartists)/(n*math.Exp(u2)))
		if a.rng.Uniform01() < prob {
			a.PrevSentiment = a.Sentiment
			a.ActingAs = KindFundamentalist
		}
	case KindFundamentalist:
		if a.PrevSentiment == Pessimistic {
			prob := clip(0, 1, v2*float64(stats.Fundamentalists)/(n*math.Exp(-u1)))
			if a.rng.Uniform01() < prob {
				a.ActingAs = KindChartist
				a.Sentiment = Optimistic
			}
			return
		}
		prob := clip(0, 1, v2*float64(stats.Fundamentalists)/(n*math.Exp(-u2)))
		if a.rng.Uniform01() < prob {
			a.ActingAs = KindChartist
			a.Sentiment = Pessimistic
		}
	}
}
