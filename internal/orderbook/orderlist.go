package orderbook

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"abmarket/internal/common"
)

// ErrInvariantViolation is fatal: an OrderList ordering or resting-quantity
// invariant broke. The simulator halts and reports the offending tick.
var ErrInvariantViolation = errors.New("orderbook: invariant violation")

// priceLevel groups every resting order at one price, in arrival (FIFO)
// order.
type priceLevel struct {
	price  float64
	orders []*Order
}

// OrderList is one side (bid or ask) of a single venue's book, held in
// strict price-time priority. Levels are indexed by a btree keyed on the
// side's price ordering (bids descending, asks ascending); within a level,
// orders are a FIFO slice, so the earliest arrival at a price is always
// index 0 — the book's "first" element.
type OrderList struct {
	side   common.Side
	less   func(a, b *priceLevel) bool
	levels *btree.BTreeG[*priceLevel]
	byID   map[uuid.UUID]*priceLevel
}

// NewOrderList creates an empty list for the given side.
func NewOrderList(side common.Side) *OrderList {
	less := func(a, b *priceLevel) bool { return a.price < b.price }
	if side == common.Bid {
		// Bids sort highest-first: the "least" level by this comparator is
		// the highest price, so Min() still returns the best bid.
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	}
	return &OrderList{
		side:   side,
		less:   less,
		levels: btree.NewBTreeG(less),
		byID:   make(map[uuid.UUID]*priceLevel),
	}
}

// Empty reports whether the side has no resting quantity.
func (ol *OrderList) Empty() bool {
	return ol.levels.Len() == 0
}

// First returns the most aggressive resting order: the highest bid or the
// lowest ask.
func (ol *OrderList) First() (*Order, bool) {
	lvl, ok := ol.levels.Min()
	if !ok || len(lvl.orders) == 0 {
		return nil, false
	}
	return lvl.orders[0], true
}

// Last returns the least aggressive resting order: the lowest bid or the
// highest ask. Used only as a fallback price reference by multi-venue
// market order routing (see agent package).
func (ol *OrderList) Last() (*Order, bool) {
	lvl, ok := ol.levels.Max()
	if !ok || len(lvl.orders) == 0 {
		return nil, false
	}
	return lvl.orders[len(lvl.orders)-1], true
}

// BestPrice returns the price of First(), the EmptyBook sentinel error if
// the side is empty.
func (ol *OrderList) BestPrice() (float64, error) {
	o, ok := ol.First()
	if !ok {
		return 0, ErrEmptyBook
	}
	return o.Price, nil
}

// insert places o in price-time priority. push, append and Insert all
// route through this: with levels indexed by price, the correct position
// is always determined by price plus arrival order within the level, so
// there is no distinct "head of the whole list" concept left once a book
// is no longer a single flat sequence. push/append are kept as named entry
// points only because book-initialization callers (Exchange's constructor)
// reach for them by those names, mirroring how the original book treated
// whole-side prepend/append as the initialization primitive.
func (ol *OrderList) insert(o *Order) {
	lvl, ok := ol.levels.Get(&priceLevel{price: o.Price})
	if !ok {
		lvl = &priceLevel{price: o.Price}
		ol.levels.Set(lvl)
	}
	lvl.orders = append(lvl.orders, o)
	ol.byID[o.ID] = lvl
}

// Push inserts o, used by book initialization for the side whose resting
// orders are supplied nearest-to-center first.
func (ol *OrderList) Push(o *Order) { ol.insert(o) }

// Append inserts o, used by book initialization for the side whose resting
// orders are supplied furthest-from-center first.
func (ol *OrderList) Append(o *Order) { ol.insert(o) }

// Insert places a new resting order preserving price-time priority.
func (ol *OrderList) Insert(o *Order) { ol.insert(o) }

// Remove deletes a specific resting order by identity. A no-op if the
// order is not currently resting (UnknownVenueInCancel is silently
// ignored per the error-handling design).
func (ol *OrderList) Remove(o *Order) {
	lvl, ok := ol.byID[o.ID]
	if !ok {
		return
	}
	idx := -1
	for i, ord := range lvl.orders {
		if ord.ID == o.ID {
			idx = i
			break
		}
	}
	delete(ol.byID, o.ID)
	if idx == -1 {
		return
	}
	lvl.orders = append(lvl.orders[:idx], lvl.orders[idx+1:]...)
	if len(lvl.orders) == 0 {
		ol.levels.Delete(lvl)
	}
}

// priceCompatible reports whether incoming (resting on the opposite side)
// may trade against a resting order at restingPrice.
func priceCompatible(incoming *Order, restingPrice float64) bool {
	if incoming.Type == common.MarketOrder {
		return true
	}
	if incoming.Side == common.Bid {
		return incoming.Price >= restingPrice
	}
	return incoming.Price <= restingPrice
}

// Fulfill matches incoming (resting on the opposite side from ol) against
// this list until either incoming is fully filled or no further
// price-compatible resting order exists. It returns incoming, possibly
// partially filled, possibly untouched.
func (ol *OrderList) Fulfill(incoming *Order, transactionCost float64) *Order {
	for incoming.Qty > 0 {
		lvl, ok := ol.levels.Min()
		if !ok || !priceCompatible(incoming, lvl.price) {
			break
		}
		for len(lvl.orders) > 0 && incoming.Qty > 0 {
			resting := lvl.orders[0]
			qty := min(incoming.Qty, resting.Qty)

			settle(incoming, resting, lvl.price, transactionCost)

			incoming.Qty -= qty
			resting.Qty -= qty

			if resting.Qty == 0 {
				lvl.orders = lvl.orders[1:]
				delete(ol.byID, resting.ID)
				if resting.Agent != nil {
					resting.Agent.Release(resting.ID)
				}
			}
		}
		if len(lvl.orders) == 0 {
			ol.levels.Delete(lvl)
		}
	}
	return incoming
}

// settle applies the cash/asset transfer for one trade of qty at price
// between incoming and resting. Orders with no Agent back-reference
// (book-initialization orders) skip settlement.
func settle(incoming, resting *Order, price, transactionCost float64) {
	qty := min(incoming.Qty, resting.Qty)
	if incoming.Agent != nil {
		incoming.Agent.Settle(incoming.VenueID, incoming.Side, qty, price, transactionCost)
	}
	if resting.Agent != nil {
		resting.Agent.Settle(resting.VenueID, resting.Side, qty, price, transactionCost)
	}
}

// Validate checks that no level is out of its side's price order (bids
// descending, asks ascending; enforced structurally by the btree, checked
// here defensively) and that no resting order has drained to zero quantity.
func (ol *OrderList) Validate() error {
	var prev *float64
	var violation error
	ol.levels.Scan(func(lvl *priceLevel) bool {
		if len(lvl.orders) == 0 {
			violation = ErrInvariantViolation
			return false
		}
		if prev != nil {
			if ol.side == common.Bid && lvl.price > *prev {
				violation = ErrInvariantViolation
				return false
			}
			if ol.side == common.Ask && lvl.price < *prev {
				violation = ErrInvariantViolation
				return false
			}
		}
		p := lvl.price
		prev = &p
		for _, o := range lvl.orders {
			if o.Qty == 0 {
				violation = ErrInvariantViolation
				return false
			}
		}
		return true
	})
	return violation
}

// Levels returns a snapshot of (price, total quantity) pairs in priority
// order, best first. Used for book-state snapshots in SimulatorInfo.
func (ol *OrderList) Levels() []LevelSnapshot {
	var out []LevelSnapshot
	ol.levels.Scan(func(lvl *priceLevel) bool {
		var qty uint64
		for _, o := range lvl.orders {
			qty += o.Qty
		}
		out = append(out, LevelSnapshot{Price: lvl.price, Qty: qty, NumOrders: len(lvl.orders)})
		return true
	})
	return out
}

// LevelSnapshot is a read-only view of one price level, for observers.
type LevelSnapshot struct {
	Price     float64
	Qty       uint64
	NumOrders int
}

// ShiftPrices adds delta to every resting order's price on this side and
// re-establishes price-time ordering. Used by MarketPriceShock.
func (ol *OrderList) ShiftPrices(delta float64) {
	var all []*Order
	ol.levels.Scan(func(lvl *priceLevel) bool {
		all = append(all, lvl.orders...)
		return true
	})
	ol.levels = btree.NewBTreeG(ol.less)
	ol.byID = make(map[uuid.UUID]*priceLevel)
	for _, o := range all {
		o.Price = common.RoundPrice(o.Price + delta)
		ol.insert(o)
	}
}
