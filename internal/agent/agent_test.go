package agent

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abmarket/internal/common"
	"abmarket/internal/exchange"
	"abmarket/internal/orderbook"
	"abmarket/internal/rng"
)

func newTestVenue(t *testing.T, seed int64) *exchange.Exchange {
	t.Helper()
	return exchange.New(0, 100, 2, 20, 5e-4, 0.001, rng.New(seed))
}

func TestEquity_SumsCashAndMarkToMarket(t *testing.T) {
	venue := newTestVenue(t, 1)
	a := New(KindRandom, []*exchange.Exchange{venue}, 1000, []int64{10}, rng.New(2))

	p, err := venue.Price()
	require.NoError(t, err)
	assert.InDelta(t, 1000+10*p, a.Equity(), 1e-9)
}

func TestBuyLimit_RestsAndTracksOrder(t *testing.T) {
	ex := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(3))
	a := New(KindRandom, []*exchange.Exchange{ex}, 1000, []int64{0}, rng.New(4))

	a.BuyLimit(5, 90, 0)
	assert.Len(t, a.RestingOrders, 1)

	levels := ex.BidLevels()
	require.Len(t, levels, 1)
	assert.Equal(t, 90.0, levels[0].Price)
}

func TestBuyLimit_ImmediateFillIsNotTrackedAsResting(t *testing.T) {
	ex := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(5))
	seller := New(KindRandom, []*exchange.Exchange{ex}, 1000, []int64{10}, rng.New(6))
	seller.SellLimit(3, 100, 0)
	require.Len(t, seller.RestingOrders, 1)

	buyer := New(KindRandom, []*exchange.Exchange{ex}, 1000, []int64{0}, rng.New(7))
	buyer.BuyLimit(3, 100, 0)

	assert.Len(t, buyer.RestingOrders, 0)
	assert.Len(t, seller.RestingOrders, 0)
	assert.Equal(t, int64(3), buyer.Assets[0])
	assert.Equal(t, int64(7), seller.Assets[0])
}

func TestCancelOldestAndNewestOrder(t *testing.T) {
	ex := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(8))
	a := New(KindRandom, []*exchange.Exchange{ex}, 1000, []int64{0}, rng.New(9))

	a.BuyLimit(1, 90, 0)
	a.BuyLimit(1, 89, 0)
	require.Len(t, a.RestingOrders, 2)

	oldestIDs := append([]uuid.UUID(nil), a.orderSeq...)
	a.CancelOldestOrder()
	assert.Len(t, a.RestingOrders, 1)
	_, stillResting := a.RestingOrders[oldestIDs[0]]
	assert.False(t, stillResting)

	a.BuyLimit(1, 88, 0)
	a.CancelNewestOrder()
	assert.Len(t, a.RestingOrders, 1)
}

func TestSettle_BidDebitsCashCreditsAssets(t *testing.T) {
	a := New(KindRandom, []*exchange.Exchange{exchange.New(0, 100, 1, 0, 0, 0, rng.New(10))}, 1000, []int64{0}, rng.New(11))
	a.Settle(0, common.Bid, 2, 50, 0.01)
	assert.InDelta(t, 1000-2*50*1.01, a.Cash, 1e-9)
	assert.Equal(t, int64(2), a.Assets[0])
}

func TestMarketMaker_QuotesBothSidesWithinSoftLimits(t *testing.T) {
	venue := exchange.New(0, 100, 0.01, 0, 0, 0, rng.New(12))
	a := New(KindMarketMaker, []*exchange.Exchange{venue}, 0, []int64{90}, rng.New(13))
	a.Upper = []float64{100}
	a.Lower = []float64{-100}

	// Seed resting liquidity so the venue has a real spread to quote from.
	bidOrder := orderbook.NewOrder(common.Bid, common.LimitOrder, 99, 5, 0, nil)
	askOrder := orderbook.NewOrder(common.Ask, common.LimitOrder, 101, 5, 0, nil)
	venue.LimitOrder(bidOrder)
	venue.LimitOrder(askOrder)

	callMarketMaker(a)

	assert.True(t, a.Panic)
	assert.NotEmpty(t, a.RestingOrders)

	// offset = min(1, 2*(90/-100)) = -1.8: 4 bid at 97.2, 94 offered at 102.8.
	require.Len(t, a.RestingOrders, 2)
	for _, o := range a.RestingOrders {
		if o.Side == common.Bid {
			assert.Equal(t, uint64(4), o.Qty)
			assert.InDelta(t, 97.2, o.Price, 1e-9)
		} else {
			assert.Equal(t, uint64(94), o.Qty)
			assert.InDelta(t, 102.8, o.Price, 1e-9)
		}
	}
}

func TestChangeSentiment_NoChartistsIsNoop(t *testing.T) {
	a := New(KindChartist, []*exchange.Exchange{exchange.New(0, 100, 1, 0, 0, 0, rng.New(14))}, 0, []int64{0}, rng.New(15))
	a.Sentiment = Optimistic
	ChangeSentiment(a, SentimentStats{TotalTraders: 10, Chartists: 0})
	assert.Equal(t, Optimistic, a.Sentiment)
}

func TestChangeStrategy_IgnoresNonUniversalist(t *testing.T) {
	venue := exchange.New(0, 100, 1, 20, 5e-4, 0, rng.New(16))
	a := New(KindFundamentalist, []*exchange.Exchange{venue}, 0, []int64{0}, rng.New(17))
	a.ActingAs = KindFundamentalist
	ChangeStrategy(a, StrategyStats{TotalTraders: 10, Fundamentalists: 5})
	assert.Equal(t, KindFundamentalist, a.ActingAs)
}
