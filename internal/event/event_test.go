package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abmarket/internal/common"
	"abmarket/internal/exchange"
	"abmarket/internal/orderbook"
	"abmarket/internal/rng"
)

type fakeSim struct {
	exchanges []*exchange.Exchange
}

func (s *fakeSim) Exchanges() []*exchange.Exchange { return s.exchanges }

func TestMarketPriceShock_OnlyFiresAtItsIteration(t *testing.T) {
	ex := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(1))
	ex.LimitOrder(orderbook.NewOrder(common.Bid, common.LimitOrder, 99, 1, 0, nil))
	ex.LimitOrder(orderbook.NewOrder(common.Ask, common.LimitOrder, 101, 1, 0, nil))
	sim := &fakeSim{exchanges: []*exchange.Exchange{ex}}

	shock := NewMarketPriceShock(5, 0, 10)
	shock.Call(4, sim)

	s, err := ex.Spread()
	require.NoError(t, err)
	assert.Equal(t, 99.0, s.Bid)

	shock.Call(5, sim)
	s, err = ex.Spread()
	require.NoError(t, err)
	assert.Equal(t, 109.0, s.Bid)
}

func TestStopTrading_HaltsTargetAndResumesPrevious(t *testing.T) {
	ex0 := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(2))
	ex1 := exchange.New(1, 100, 0.01, 0, 5e-4, 0, rng.New(3))
	sim := &fakeSim{exchanges: []*exchange.Exchange{ex0, ex1}}

	NewStopTrading(50, 0).Call(50, sim)
	assert.True(t, ex0.TradingStopped)
	assert.False(t, ex1.TradingStopped)

	NewStopTrading(100, 1).Call(100, sim)
	assert.False(t, ex0.TradingStopped)
	assert.True(t, ex1.TradingStopped)
}

func TestQueue_TicksEveryEvent(t *testing.T) {
	ex := exchange.New(0, 100, 0.01, 0, 5e-4, 0, rng.New(4))
	sim := &fakeSim{exchanges: []*exchange.Exchange{ex}}

	q := NewQueue(NewStopTrading(10, 0))
	q.Tick(5, sim)
	assert.False(t, ex.TradingStopped)
	q.Tick(10, sim)
	assert.True(t, ex.TradingStopped)
	assert.Len(t, q.Events(), 1)
}
