package agent

import (
	"math"

	"abmarket/internal/common"
	"abmarket/internal/exchange"
)

// fundamentalPrice discounts a dividend window of length n at rate rf:
// the sum of the n-1 known dividends beyond the current one, plus a
// Gordon-growth perpetuity on the final known dividend. Shared by
// Fundamentalist and by Universalist's change_strategy calculation.
func fundamentalPrice(divs []float64, rf float64) float64 {
	n := len(divs)
	if n == 0 {
		return 0
	}
	pf := 0.0
	for i := 1; i <= n-1; i++ {
		pf += divs[i] / math.Pow(1+rf, float64(i))
	}
	if rf > 0 {
		pf += divs[n-1] / (rf * math.Pow(1+rf, float64(n-1)))
	}
	return pf
}

// callFundamentalist implements the Fundamentalist strategy. It only ever
// trades venues[0] — the hidden single-venue coupling is carried over
// deliberately.
func callFundamentalist(a *Agent) {
	venue := a.Venues[0]
	divs := venue.DividendWindow(a.Access)
	if len(divs) == 0 {
		return
	}
	p, err := venue.Price()
	if err != nil || p == 0 {
		return
	}
	pf := common.RoundPrice(fundamentalPrice(divs, venue.RiskFree))

	q := uint64(math.Round(math.Abs(pf-p) / p / 5e-3))
	if q > 5 {
		q = 5
	}
	if q == 0 {
		return
	}

	if a.rng.Uniform01() > 0.45 {
		a.tradeOnMispricing(venue, pf, q, 0)
		return
	}
	a.CancelOldestOrder()
}

// tradeOnMispricing is the shared Fundamentalist/Universalist-as-Fundamentalist
// decision: buy when the fundamental price sits above the ask net of
// transaction cost, sell when it sits below the bid net of transaction
// cost, otherwise place a limit order straddling the fundamental price.
// The buy and sell branches each coin-flip between a market order and a
// limit order offset by an Exp(1/2.5) draw, including the two
// contrarian-looking cases (selling into an underpriced market, buying
// into an overpriced one) implemented exactly as stated rather than
// inverted; the straddle branch coin-flips between a buy limit below and
// a sell limit above the fundamental price, offset by the same draw.
func (a *Agent) tradeOnMispricing(venue *exchange.Exchange, pf float64, q uint64, venueIdx int) {
	spread, err := venue.Spread()
	if err != nil {
		return
	}
	tcost := venue.TransactionCost
	delta := a.rng.Exponential(1.0 / 2.5)
	askT := common.RoundPrice(spread.Ask * (1 + tcost))
	bidT := common.RoundPrice(spread.Bid * (1 - tcost))

	switch {
	case pf >= askT:
		if a.rng.Uniform01() < 0.5 {
			a.BuyMarket(q, venueIdx)
		} else {
			a.SellLimit(q, common.RoundPrice((pf+delta)*(1+tcost)), venueIdx)
		}
	case pf <= bidT:
		if a.rng.Uniform01() < 0.5 {
			a.SellMarket(q, venueIdx)
		} else {
			a.BuyLimit(q, common.RoundPrice((pf-delta)*(1-tcost)), venueIdx)
		}
	default:
		if a.rng.Uniform01() < 0.5 {
			a.BuyLimit(q, common.RoundPrice(pf-delta), venueIdx)
		} else {
			a.SellLimit(q, common.RoundPrice(pf+delta), venueIdx)
		}
	}
}
