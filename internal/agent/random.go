package agent

import "abmarket/internal/common"

// callRandom implements the Random strategy: every tick, pick a side by
// coin flip, then pick an action by a second uniform draw — market order,
// limit order, cancel, or nothing. Market orders auto-route to the
// worst-priced venue (selectBuyVenue/selectSellVenue); limit orders always
// go to venue 0; the narrowest-spread venue across this agent's venues
// supplies the reference band for draw_price.
func callRandom(a *Agent) {
	const venueIdx = 0

	side := common.Bid
	if a.rng.Uniform01() <= 0.5 {
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
		spread, ok := narrowestSpread(a)
		if !ok {
			return
		}
		qty := uint64(a.rng.UniformInt(1, 5))
		price := drawPrice(a.rng, side, spread.Bid, spread.Ask)
		if side == common.Bid {
			a.BuyLimit(qty, price, venueIdx)
		} else {
			a.SellLimit(qty, price, venueIdx)
		}
	case v < 0.35:
		a.CancelRandomOrder()
	}
}
