// Package agent implements the common trading-agent state shared by every
// strategy (Random, Fundamentalist, Chartist, Universalist, MarketMaker)
// plus the order-placement primitives every strategy builds on.
package agent

import (
	"github.com/google/uuid"

	"abmarket/internal/common"
	"abmarket/internal/exchange"
	"abmarket/internal/orderbook"
	"abmarket/internal/rng"
)

// Kind identifies an agent's strategy. Universalist agents additionally
// carry an ActingAs kind (Chartist or Fundamentalist) selecting which
// call() actually runs this tick.
type Kind int

const (
	KindRandom Kind = iota
	KindFundamentalist
	KindChartist
	KindUniversalist
	KindMarketMaker
)

func (k Kind) String() string {
	switch k {
	case KindRandom:
		return "random"
	case KindFundamentalist:
		return "fundamentalist"
	case KindChartist:
		return "chartist"
	case KindUniversalist:
		return "universalist"
	case KindMarketMaker:
		return "marketmaker"
	default:
		return "unknown"
	}
}

// Sentiment is a Chartist's (or a Universalist acting as one) categorical
// belief about short-term price direction.
type Sentiment int

const (
	Optimistic Sentiment = iota
	Pessimistic
)

func (s Sentiment) String() string {
	if s == Optimistic {
		return "optimistic"
	}
	return "pessimistic"
}

// Agent holds every field any strategy needs. Rather than modeling
// Universalist as inheriting from both Fundamentalist and Chartist, every
// agent carries the union of fields and Kind/ActingAs select behavior.
type Agent struct {
	ID     uuid.UUID
	Kind   Kind
	Venues []*exchange.Exchange

	Cash          float64
	Assets        []int64 // indexed the same ordinal as Venues
	RestingOrders map[uuid.UUID]*orderbook.Order

	// orderSeq is insertion order of resting orders, oldest first, used by
	// CancelOldestOrder/CancelNewestOrder. Entries may lag RestingOrders
	// (a filled or cancelled order isn't eagerly pruned here) — both
	// cancel helpers skip stale entries lazily.
	orderSeq []uuid.UUID

	rng *rng.Source

	// Fundamentalist / Universalist
	Access int

	// Chartist / Universalist
	Sentiment Sentiment

	// Universalist only
	ActingAs      Kind
	PrevSentiment Sentiment

	// MarketMaker only
	Upper []float64 // per venue, positive soft limit
	Lower []float64 // per venue, negative soft limit
	Panic bool
}

// New constructs an agent holding initialAssets at its venues (by venue
// ordinal; venues beyond len(initialAssets) start at zero).
func New(kind Kind, venues []*exchange.Exchange, cash float64, initialAssets []int64, source *rng.Source) *Agent {
	assets := make([]int64, len(venues))
	copy(assets, initialAssets)
	return &Agent{
		ID:            uuid.New(),
		Kind:          kind,
		Venues:        venues,
		Cash:          cash,
		Assets:        assets,
		RestingOrders: make(map[uuid.UUID]*orderbook.Order),
		rng:           source,
	}
}

// Equity is cash plus the mark-to-market value of every position,
// treating a venue with no readable price as contributing zero.
func (a *Agent) Equity() float64 {
	eq := a.Cash
	for i, v := range a.Venues {
		p, err := v.Price()
		if err != nil {
			continue
		}
		eq += float64(a.Assets[i]) * p
	}
	return eq
}

// Call dispatches to this agent's strategy.
func (a *Agent) Call() {
	switch a.Kind {
	case KindRandom:
		callRandom(a)
	case KindFundamentalist:
		callFundamentalist(a)
	case KindChartist:
		callChartist(a)
	case KindUniversalist:
		if a.ActingAs == KindFundamentalist {
			callFundamentalist(a)
		} else {
			callChartist(a)
		}
	case KindMarketMaker:
		callMarketMaker(a)
	}
}

// --- Order placement primitives ---

func (a *Agent) buyLimit(qty uint64, price float64, venueIdx int) {
	if qty == 0 {
		return
	}
	o := orderbook.NewOrder(common.Bid, common.LimitOrder, price, qty, venueIdx, a)
	a.RestingOrders[o.ID] = o
	a.orderSeq = append(a.orderSeq, o.ID)
	a.Venues[venueIdx].LimitOrder(o)
	if o.Qty == 0 {
		delete(a.RestingOrders, o.ID)
	}
}

func (a *Agent) sellLimit(qty uint64, price float64, venueIdx int) {
	if qty == 0 {
		return
	}
	o := orderbook.NewOrder(common.Ask, common.LimitOrder, price, qty, venueIdx, a)
	a.RestingOrders[o.ID] = o
	a.orderSeq = append(a.orderSeq, o.ID)
	a.Venues[venueIdx].LimitOrder(o)
	if o.Qty == 0 {
		delete(a.RestingOrders, o.ID)
	}
}

// BuyLimit is the exported form, used by strategies in this package and by
// tests.
func (a *Agent) BuyLimit(qty uint64, price float64, venueIdx int) { a.buyLimit(qty, price, venueIdx) }

// SellLimit is the exported form.
func (a *Agent) SellLimit(qty uint64, price float64, venueIdx int) {
	a.sellLimit(qty, price, venueIdx)
}

// buyMarket issues a market bid. If venueIdx is negative, the venue whose
// ask side has the lowest "last" (least aggressive / worst) ask among
// venues with a non-empty ask side is selected; if none qualify, the full
// quantity is returned unfilled. The worst resting price is used as the
// selection scalar because it is the only value available without
// walking the whole book.
func (a *Agent) buyMarket(qty uint64, venueIdx int) uint64 {
	idx := venueIdx
	if idx < 0 {
		idx = a.selectBuyVenue()
		if idx < 0 {
			return qty
		}
	}
	price, _ := a.Venues[idx].AskLast()
	o := orderbook.NewOrder(common.Bid, common.MarketOrder, price, qty, idx, a)
	filled := a.Venues[idx].MarketOrder(o)
	return filled.Qty
}

func (a *Agent) sellMarket(qty uint64, venueIdx int) uint64 {
	idx := venueIdx
	if idx < 0 {
		idx = a.selectSellVenue()
		if idx < 0 {
			return qty
		}
	}
	price, _ := a.Venues[idx].BidLast()
	o := orderbook.NewOrder(common.Ask, common.MarketOrder, price, qty, idx, a)
	filled := a.Venues[idx].MarketOrder(o)
	return filled.Qty
}

// BuyMarket is the exported form.
func (a *Agent) BuyMarket(qty uint64, venueIdx int) uint64 { return a.buyMarket(qty, venueIdx) }

// SellMarket is the exported form.
func (a *Agent) SellMarket(qty uint64, venueIdx int) uint64 { return a.sellMarket(qty, venueIdx) }

func (a *Agent) selectBuyVenue() int {
	best := -1
	var bestPrice float64
	for i, v := range a.Venues {
		p, ok := v.AskLast()
		if !ok {
			continue
		}
		if best == -1 || p < bestPrice {
			best, bestPrice = i, p
		}
	}
	return best
}

func (a *Agent) selectSellVenue() int {
	best := -1
	var bestPrice float64
	for i, v := range a.Venues {
		p, ok := v.BidLast()
		if !ok {
			continue
		}
		if best == -1 || p > bestPrice {
			best, bestPrice = i, p
		}
	}
	return best
}

// CancelOrder removes o from its venue and from this agent's bookkeeping.
func (a *Agent) CancelOrder(o *orderbook.Order) {
	delete(a.RestingOrders, o.ID)
	a.Venues[o.VenueID].CancelOrder(o)
}

// CancelOldestOrder cancels the longest-resting order this agent still has
// on any book, if any.
func (a *Agent) CancelOldestOrder() {
	for len(a.orderSeq) > 0 {
		id := a.orderSeq[0]
		a.orderSeq = a.orderSeq[1:]
		if o, ok := a.RestingOrders[id]; ok {
			a.CancelOrder(o)
			return
		}
	}
}

// CancelNewestOrder cancels the most recently placed resting order, if any.
func (a *Agent) CancelNewestOrder() {
	for len(a.orderSeq) > 0 {
		n := len(a.orderSeq) - 1
		id := a.orderSeq[n]
		a.orderSeq = a.orderSeq[:n]
		if o, ok := a.RestingOrders[id]; ok {
			a.CancelOrder(o)
			return
		}
	}
}

// CancelRandomOrder cancels a uniformly chosen resting order, if any.
// Candidates are taken in placement order (orderSeq) so the choice depends
// only on the rng draw, not on Go's randomized map iteration order or on
// the random order ids.
func (a *Agent) CancelRandomOrder() {
	ids := make([]uuid.UUID, 0, len(a.RestingOrders))
	for _, id := range a.orderSeq {
		if _, ok := a.RestingOrders[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	idx := a.rng.UniformInt(0, len(ids)-1)
	a.CancelOrder(a.RestingOrders[ids[idx]])
}

// --- orderbook.Settler implementation ---

// Settle applies the cash/asset transfer for a trade this agent was a
// party to. side is the side THIS agent traded on.
func (a *Agent) Settle(venueID int, side common.Side, qty uint64, price, transactionCost float64) {
	notional := float64(qty) * price
	if side == common.Bid {
		a.Cash -= notional * (1 + transactionCost)
		a.Assets[venueID] += int64(qty)
		return
	}
	a.Cash += notional * (1 - transactionCost)
	a.Assets[venueID] -= int64(qty)
}

// Release drops a resting order this agent no longer has a stake in
// (fully filled or cancelled).
func (a *Agent) Release(orderID uuid.UUID) {
	delete(a.RestingOrders, orderID)
}

// narrowestSpread returns the spread of the venue with the smallest
// ask-bid width among this agent's venues, and whether any venue
// qualified.
func narrowestSpread(a *Agent) (exchange.Spread, bool) {
	found := false
	var best exchange.Spread
	var bestWidth float64
	for _, v := range a.Venues {
		s, err := v.Spread()
		if err != nil {
			continue
		}
		w := s.Ask - s.Bid
		if !found || w < bestWidth {
			best, bestWidth, found = s, w, true
		}
	}
	return best, found
}

// drawPrice implements the shared draw_price rule used by Random,
// Chartist and Fundamentalist: with probability 0.35 the price lands
// inside the spread; otherwise it is offset from the relevant best price
// by an Exp(1/2.5) draw.
func drawPrice(source *rng.Source, side common.Side, bid, ask float64) float64 {
	if source.Uniform01() < 0.35 {
		return common.RoundPrice(source.UniformRange(bid, ask))
	}
	delta := source.Exponential(1.0 / 2.5)
	if side == common.Bid {
		return common.RoundPrice(bid - delta)
	}
	return common.RoundPrice(ask + delta)
}

func clip(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
