package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abmarket/internal/common"
	"abmarket/internal/orderbook"
	"abmarket/internal/rng"
)

func TestNew_DividendBookLength(t *testing.T) {
	ex := New(0, 100, 5, 20, 5e-4, 0.001, rng.New(1))
	assert.Len(t, ex.DividendWindow(100), 100)
	for _, d := range ex.DividendWindow(100) {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestGenerateDividend_KeepsWindowLength(t *testing.T) {
	ex := New(0, 100, 5, 20, 5e-4, 0.001, rng.New(2))
	before := ex.Dividend()
	ex.GenerateDividend()
	assert.Len(t, ex.DividendWindow(100), 100)
	_ = before
}

func TestSpreadAndPrice_EmptyBookError(t *testing.T) {
	ex := &Exchange{
		ID:  1,
		bid: orderbook.NewOrderList(common.Bid),
		ask: orderbook.NewOrderList(common.Ask),
		rng: rng.New(3),
	}
	_, err := ex.Spread()
	assert.ErrorIs(t, err, ErrEmptyBook)
	_, err = ex.Price()
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestLimitOrder_CrossesAndRests(t *testing.T) {
	ex := &Exchange{
		ID:              1,
		bid:             orderbook.NewOrderList(common.Bid),
		ask:             orderbook.NewOrderList(common.Ask),
		TransactionCost: 0,
		rng:             rng.New(4),
	}
	ex.ask.Insert(orderbook.NewOrder(common.Ask, common.LimitOrder, 100, 3, 1, nil))

	bid := orderbook.NewOrder(common.Bid, common.LimitOrder, 101, 2, 1, nil)
	ex.LimitOrder(bid)

	ask, err := ex.ask.BestPrice()
	require.NoError(t, err)
	assert.Equal(t, 100.0, ask)
	assert.True(t, ex.bid.Empty())
	require.NoError(t, ex.Validate())
}

func TestHaltResume(t *testing.T) {
	ex := New(0, 100, 1, 10, 5e-4, 0.001, rng.New(5))
	assert.False(t, ex.TradingStopped)
	ex.Halt()
	assert.True(t, ex.TradingStopped)
	ex.Resume()
	assert.False(t, ex.TradingStopped)
}

func TestShiftAllPrices(t *testing.T) {
	ex := &Exchange{
		ID:  1,
		bid: orderbook.NewOrderList(common.Bid),
		ask: orderbook.NewOrderList(common.Ask),
		rng: rng.New(6),
	}
	ex.bid.Insert(orderbook.NewOrder(common.Bid, common.LimitOrder, 99, 1, 1, nil))
	ex.ask.Insert(orderbook.NewOrder(common.Ask, common.LimitOrder, 101, 1, 1, nil))

	ex.ShiftAllPrices(10)
	s, err := ex.Spread()
	require.NoError(t, err)
	assert.Equal(t, 109.0, s.Bid)
	assert.Equal(t, 111.0, s.Ask)
	require.NoError(t, ex.Validate())
}
