package agent

import (
	"math"

	"github.com/google/uuid"

	"abmarket/internal/common"
)

// callMarketMaker implements the MarketMaker strategy: cancel everything
// resting, then at every venue quote both sides around the spread,
// skewed toward reducing inventory, with widths scaled down as the
// position approaches its soft limit. Panic latches true the first time
// this agent acts and is never cleared afterward.
func callMarketMaker(a *Agent) {
	ids := make([]uuid.UUID, 0, len(a.RestingOrders))
	for id := range a.RestingOrders {
		ids = append(ids, id)
	}
	for _, id := range ids {
		if o, ok := a.RestingOrders[id]; ok {
			a.CancelOrder(o)
		}
	}

	for i, venue := range a.Venues {
		spread, err := venue.Spread()
		if err != nil {
			continue
		}
		upper := a.Upper[i]
		lower := a.Lower[i]
		assets := float64(a.Assets[i])

		offset := math.Min(1, (spread.Ask-spread.Bid)*(assets/lower))
		bidVolume := uint64(math.Max(0, math.Floor((upper-1-assets)/2)))
		askVolume := uint64(math.Max(0, math.Floor((assets-1-lower)/2)))

		if bidVolume > 0 {
			a.BuyLimit(bidVolume, common.RoundPrice(spread.Bid+offset), i)
		}
		if askVolume > 0 {
			a.SellLimit(askVolume, common.RoundPrice(spread.Ask-offset), i)
		}
	}

	a.Panic = true
}
