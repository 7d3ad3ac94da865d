package orderbook

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abmarket/internal/common"
)

// fakeSettler records every Settle/Release call so tests can assert on the
// exact cash/asset transfer a trade produced.
type fakeSettler struct {
	name     string
	cash     float64
	assets   map[int]int64
	released []uuid.UUID
}

func newFakeSettler(name string) *fakeSettler {
	return &fakeSettler{name: name, assets: make(map[int]int64)}
}

func (f *fakeSettler) Settle(venueID int, side common.Side, qty uint64, price, tcost float64) {
	notional := float64(qty) * price
	if side == common.Bid {
		f.cash -= notional * (1 + tcost)
		f.assets[venueID] += int64(qty)
	} else {
		f.cash += notional * (1 - tcost)
		f.assets[venueID] -= int64(qty)
	}
}

func (f *fakeSettler) Release(id uuid.UUID) {
	f.released = append(f.released, id)
}

func TestFulfill_SingleFill(t *testing.T) {
	asks := NewOrderList(common.Ask)
	a, b := newFakeSettler("A"), newFakeSettler("B")

	askOrder := NewOrder(common.Ask, common.LimitOrder, 100, 3, 0, b)
	asks.Insert(askOrder)

	bid := NewOrder(common.Bid, common.LimitOrder, 101, 2, 0, a)
	remainder := asks.Fulfill(bid, 0.01)

	assert.Equal(t, uint64(0), remainder.Qty)
	assert.Equal(t, -200*1.01, a.cash)
	assert.Equal(t, int64(2), a.assets[0])
	assert.Equal(t, 200*0.99, b.cash)
	assert.Equal(t, int64(-2), b.assets[0])

	rest, ok := asks.First()
	require.True(t, ok)
	assert.Equal(t, uint64(1), rest.Qty)
}

func TestFulfill_WalkTheBook(t *testing.T) {
	asks := NewOrderList(common.Ask)
	b := newFakeSettler("B")

	asks.Insert(NewOrder(common.Ask, common.LimitOrder, 100, 1, 0, b))
	asks.Insert(NewOrder(common.Ask, common.LimitOrder, 101, 2, 0, b))
	asks.Insert(NewOrder(common.Ask, common.LimitOrder, 103, 1, 0, b))

	a := newFakeSettler("A")
	market := NewOrder(common.Bid, common.MarketOrder, 0, 4, 0, a)
	remainder := asks.Fulfill(market, 0.0)

	assert.Equal(t, uint64(0), remainder.Qty)
	want := -(100 + 202 + 103.0)
	assert.InDelta(t, want, a.cash, 1e-9)
	assert.True(t, asks.Empty())
}

func TestInsert_PriceTimePriority(t *testing.T) {
	bids := NewOrderList(common.Bid)
	s := newFakeSettler("S")

	bids.Insert(NewOrder(common.Bid, common.LimitOrder, 99, 1, 0, s))
	bids.Insert(NewOrder(common.Bid, common.LimitOrder, 101, 1, 0, s))
	bids.Insert(NewOrder(common.Bid, common.LimitOrder, 100, 1, 0, s))

	first, ok := bids.First()
	require.True(t, ok)
	assert.Equal(t, 101.0, first.Price)

	last, ok := bids.Last()
	require.True(t, ok)
	assert.Equal(t, 99.0, last.Price)

	require.NoError(t, bids.Validate())
}

func TestRemove_RoundTrip(t *testing.T) {
	bids := NewOrderList(common.Bid)
	s := newFakeSettler("S")

	o := NewOrder(common.Bid, common.LimitOrder, 100, 5, 0, s)
	bids.Insert(o)
	require.False(t, bids.Empty())

	bids.Remove(o)
	assert.True(t, bids.Empty())

	// Removing again, or removing an order never inserted, is a silent no-op.
	bids.Remove(o)
	bids.Remove(NewOrder(common.Bid, common.LimitOrder, 100, 1, 0, s))
}

func TestFulfill_MarketableLimitRestsRemainder(t *testing.T) {
	asks := NewOrderList(common.Ask)
	s := newFakeSettler("S")
	asks.Insert(NewOrder(common.Ask, common.LimitOrder, 100, 2, 0, s))

	bid := NewOrder(common.Bid, common.LimitOrder, 100, 5, 0, s)
	remainder := asks.Fulfill(bid, 0)
	assert.Equal(t, uint64(3), remainder.Qty)
	assert.True(t, asks.Empty())
}

func TestShiftPrices_PreservesInvariants(t *testing.T) {
	bids := NewOrderList(common.Bid)
	s := newFakeSettler("S")
	bids.Insert(NewOrder(common.Bid, common.LimitOrder, 99, 1, 0, s))
	bids.Insert(NewOrder(common.Bid, common.LimitOrder, 101, 1, 0, s))

	bids.ShiftPrices(5)

	require.NoError(t, bids.Validate())
	first, ok := bids.First()
	require.True(t, ok)
	assert.Equal(t, 106.0, first.Price)
}
