package agent

import "abmarket/internal/common"

// selectChartistVenue picks the cheapest venue when Optimistic (buying the
// dip) and the most expensive venue when Pessimistic (selling the peak),
// skipping venues with no readable price.
func selectChartistVenue(a *Agent) (int, bool) {
	best := -1
	var bestPrice float64
	for i, v := range a.Venues {
		p, err := v.Price()
		if err != nil {
			continue
		}
		if best == -1 {
			best, bestPrice = i, p
			continue
		}
		if a.Sentiment == Optimistic && p < bestPrice {
			best, bestPrice = i, p
		}
		if a.Sentiment == Pessimistic && p > bestPrice {
			best, bestPrice = i, p
		}
	}
	return best, best != -1
}

// ReferenceVenuePrice resolves the same venue selectChartistVenue would
// pick for this agent's current sentiment and returns its price and
// venue id. Shared by callers computing the "min_venue.price() if
// Optimistic else max_venue.price()" reference for the sentiment and
// strategy-switching formulas.
func ReferenceVenuePrice(a *Agent) (price float64, venueID int, ok bool) {
	idx, found := selectChartistVenue(a)
	if !found {
		return 0, 0, false
	}
	p, err := a.Venues[idx].Price()
	if err != nil {
		return 0, 0, false
	}
	return p, a.Venues[idx].ID, true
}

// callChartist implements the Chartist strategy: trade in the direction of
// its current sentiment, via a market order (auto-routed to the
// worst-priced venue, same as Random), a limit order at its sentiment-chosen
// venue (priced by draw_price and adjusted for transaction cost), a cancel
// of its most recent resting order, or nothing.
func callChartist(a *Agent) {
	idx, ok := selectChartistVenue(a)
	if !ok {
		return
	}
	venue := a.Venues[idx]
	side := common.Bid
	if a.Sentiment == Pessimistic {
		side = common.Ask
	}

	v := a.rng.Uniform01()
	switch {
	case v > 0.85:
		qty := uint64(a.rng.UniformInt(1, 5))
		if side == common.Bid {
			a.BuyMarket(qty, -1)
		} else {
			a.SellMarket(qty, -1)
		}
	case v > 0.5:
		spread, err := venue.Spread()
		if err != nil {
			return
		}
		qty := uint64(a.rng.UniformInt(1, 5))
		price := drawPrice(a.rng, side, spread.Bid, spread.Ask)
		tcost := venue.TransactionCost
		if side == common.Bid {
			a.BuyLimit(qty, common.RoundPrice(price*(1-tcost)), idx)
		} else {
			a.SellLimit(qty, common.RoundPrice(price*(1+tcost)), idx)
		}
	case v < 0.35:
		a.CancelNewestOrder()
	}
}
