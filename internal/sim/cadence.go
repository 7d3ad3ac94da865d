package sim

import "abmarket/internal/agent"

// isActingAsChartist reports whether a currently behaves like a Chartist
// for sentiment/population-statistics purposes: a pure Chartist always
// does, a Universalist only while ActingAs is Chartist.
func isActingAsChartist(a *agent.Agent) bool {
	if a.Kind == agent.KindChartist {
		return true
	}
	return a.Kind == agent.KindUniversalist && a.ActingAs == agent.KindChartist
}

func isActingAsFundamentalist(a *agent.Agent) bool {
	if a.Kind == agent.KindFundamentalist {
		return true
	}
	return a.Kind == agent.KindUniversalist && a.ActingAs == agent.KindFundamentalist
}

// runChangeSentiment evaluates sentiment switching for every Chartist
// (pure or Universalist-acting-as-Chartist), using the population
// statistics as they stand at this point in the tick.
func (s *Simulator) runChangeSentiment() {
	total := len(s.agents)
	var chartists, optimistic, pessimistic int
	for _, a := range s.agents {
		if !isActingAsChartist(a) {
			continue
		}
		chartists++
		if a.Sentiment == agent.Optimistic {
			optimistic++
		} else {
			pessimistic++
		}
	}
	if chartists == 0 {
		return
	}

	for _, a := range s.agents {
		if !isActingAsChartist(a) {
			continue
		}
		p, venueID, ok := agent.ReferenceVenuePrice(a)
		if !ok {
			continue
		}
		dp := 0.0
		if prev, ok := s.prevVenuePrice[venueID]; ok {
			dp = p - prev
		}
		agent.ChangeSentiment(a, agent.SentimentStats{
			TotalTraders:         total,
			Chartists:            chartists,
			OptimisticChartists:  optimistic,
			PessimisticChartists: pessimistic,
			DeltaPrice:           dp,
			A1:                   s.cadence.A1,
			A2:                   s.cadence.A2,
			V1:                   s.cadence.V1,
			ReferencePrice:       p,
		})
	}
}

// runChangeStrategy evaluates strategy switching for every Universalist.
func (s *Simulator) runChangeStrategy() {
	total := len(s.agents)
	var optimistic, pessimistic, fundamentalists int
	for _, a := range s.agents {
		if isActingAsChartist(a) {
			if a.Sentiment == agent.Optimistic {
				optimistic++
			} else {
				pessimistic++
			}
		}
		if isActingAsFundamentalist(a) {
			fundamentalists++
		}
	}

	meanReturn := 0.0
	if len(s.lastReturns) > 0 {
		var sum float64
		for _, r := range s.lastReturns {
			sum += r
		}
		meanReturn = sum / float64(len(s.lastReturns))
	}

	for _, a := range s.agents {
		if a.Kind != agent.KindUniversalist {
			continue
		}
		venue := a.Venues[0]
		p, err := venue.Price()
		if err != nil {
			continue
		}
		dp := 0.0
		if prev, ok := s.prevVenuePrice[venue.ID]; ok {
			dp = p - prev
		}
		agent.ChangeStrategy(a, agent.StrategyStats{
			TotalTraders:         total,
			OptimisticChartists:  optimistic,
			PessimisticChartists: pessimistic,
			Fundamentalists:      fundamentalists,
			MeanReturn:           meanReturn,
			DeltaPrice:           dp,
			A3:                   s.cadence.A3,
			V2:                   s.cadence.V2,
			S:                    s.cadence.S,
		})
	}
}
