// Package exchange implements one tradable instrument: a two-sided
// order book, a rolling dividend stream, a risk-free rate, a proportional
// transaction cost, and a trading-halt flag.
package exchange

import (
	"github.com/rs/zerolog/log"

	"abmarket/internal/common"
	"abmarket/internal/orderbook"
	"abmarket/internal/rng"
)

// dividendWindow is the fixed length of the forward-looking dividend
// queue every Exchange maintains.
const dividendWindow = 100

// divMultiplierMean/Std parameterize the log-normal multiplier applied to
// the tail dividend on every generate_dividend() call.
const (
	divMultiplierMean = 0
	divMultiplierStd  = 5e-3
)

var (
	// ErrEmptyBook mirrors orderbook.ErrEmptyBook at the exchange boundary.
	ErrEmptyBook = orderbook.ErrEmptyBook
)

// Spread is the best bid/ask pair.
type Spread struct {
	Bid float64
	Ask float64
}

// Exchange owns one venue's book end to end.
type Exchange struct {
	ID     int
	Volume uint64 // not set by New and not updated by trades; stays zero unless a caller sets it

	bid *orderbook.OrderList
	ask *orderbook.OrderList

	dividendBook []float64 // length dividendWindow always; index 0 is current

	RiskFree        float64
	TransactionCost float64
	TradingStopped  bool

	rng *rng.Source
}

// New constructs an Exchange and seeds its book: volume/2 prices are
// drawn from N(price-std, std) and the remaining volume-volume/2 from
// N(price+std, std), each paired with a uniform integer quantity in [1,5].
// Whichever distribution it came from, a seeded order priced above price
// becomes an ask (appended) and any other becomes a bid (pushed). The
// dividend book is seeded by iterated
// multiplication starting at div0 = rf*price, clamped at 0.
func New(id int, price, std float64, volume uint64, rf, transactionCost float64, source *rng.Source) *Exchange {
	ex := &Exchange{
		ID:              id,
		bid:             orderbook.NewOrderList(common.Bid),
		ask:             orderbook.NewOrderList(common.Ask),
		RiskFree:        rf,
		TransactionCost: transactionCost,
		rng:             source,
	}
	ex.seedBook(price, std, volume)
	ex.seedDividends(price)
	return ex
}

func (ex *Exchange) seedBook(center, std float64, volume uint64) {
	half := volume / 2
	place := func(p float64, qty uint64) {
		if p > center {
			o := orderbook.NewOrder(common.Ask, common.LimitOrder, p, qty, ex.ID, nil)
			ex.ask.Append(o)
			return
		}
		o := orderbook.NewOrder(common.Bid, common.LimitOrder, p, qty, ex.ID, nil)
		ex.bid.Push(o)
	}
	for i := uint64(0); i < half; i++ {
		p := common.RoundPrice(ex.rng.Normal(center-std, std))
		qty := uint64(ex.rng.UniformInt(1, 5))
		place(p, qty)
	}
	for i := uint64(0); i < volume-half; i++ {
		p := common.RoundPrice(ex.rng.Normal(center+std, std))
		qty := uint64(ex.rng.UniformInt(1, 5))
		place(p, qty)
	}
}

func (ex *Exchange) seedDividends(price float64) {
	ex.dividendBook = make([]float64, dividendWindow)
	d := ex.RiskFree * price
	if d < 0 {
		d = 0
	}
	for i := range ex.dividendBook {
		ex.dividendBook[i] = d
		d *= ex.rng.LogNormalMultiplier(divMultiplierMean, divMultiplierStd)
		if d < 0 {
			d = 0
		}
	}
}

// Spread returns the best bid and ask. Fails with ErrEmptyBook if either
// side is empty.
func (ex *Exchange) Spread() (Spread, error) {
	bid, err := ex.bid.BestPrice()
	if err != nil {
		return Spread{}, ErrEmptyBook
	}
	ask, err := ex.ask.BestPrice()
	if err != nil {
		return Spread{}, ErrEmptyBook
	}
	return Spread{Bid: bid, Ask: ask}, nil
}

// Price returns the mid-price, rounded to 1 decimal.
func (ex *Exchange) Price() (float64, error) {
	s, err := ex.Spread()
	if err != nil {
		return 0, err
	}
	return common.RoundPrice((s.Bid + s.Ask) / 2), nil
}

// Dividend with no access window returns the current dividend.
func (ex *Exchange) Dividend() float64 {
	return ex.dividendBook[0]
}

// DividendWindow returns the first n known future dividends, current
// dividend first.
func (ex *Exchange) DividendWindow(access int) []float64 {
	if access > len(ex.dividendBook) {
		access = len(ex.dividendBook)
	}
	out := make([]float64, access)
	copy(out, ex.dividendBook[:access])
	return out
}

// GenerateDividend pops the current dividend and appends a new tail value
// drawn by multiplying the previous tail by a log-normal shock, clamped at
// zero: a dividend can never go negative.
func (ex *Exchange) GenerateDividend() {
	ex.dividendBook = ex.dividendBook[1:]
	tail := ex.dividendBook[len(ex.dividendBook)-1]
	next := tail * ex.rng.LogNormalMultiplier(divMultiplierMean, divMultiplierStd)
	if next < 0 {
		next = 0
	}
	ex.dividendBook = append(ex.dividendBook, next)
}

// LimitOrder routes a limit order: if it crosses the book it is matched
// first, any remainder rests on its own side. If the opposite side is
// empty there is nothing to cross against, so the order simply rests. A
// no-op for a zero-quantity order or while trading is halted.
func (ex *Exchange) LimitOrder(o *orderbook.Order) {
	if o.Qty == 0 || ex.TradingStopped {
		return
	}
	if o.Side == common.Bid {
		if ask, err := ex.ask.BestPrice(); err == nil && o.Price >= ask {
			ex.ask.Fulfill(o, ex.TransactionCost)
		}
		if o.Qty > 0 {
			ex.bid.Insert(o)
		}
		return
	}
	if bid, err := ex.bid.BestPrice(); err == nil && o.Price <= bid {
		ex.bid.Fulfill(o, ex.TransactionCost)
	}
	if o.Qty > 0 {
		ex.ask.Insert(o)
	}
}

// MarketOrder fulfills immediately against the opposite side with no
// price constraint and returns the (possibly unfilled) order.
func (ex *Exchange) MarketOrder(o *orderbook.Order) *orderbook.Order {
	if ex.TradingStopped {
		return o
	}
	if o.Side == common.Bid {
		return ex.ask.Fulfill(o, ex.TransactionCost)
	}
	return ex.bid.Fulfill(o, ex.TransactionCost)
}

// CancelOrder removes o from its resting side. A no-op if it is not
// currently resting.
func (ex *Exchange) CancelOrder(o *orderbook.Order) {
	if o.Side == common.Bid {
		ex.bid.Remove(o)
		return
	}
	ex.ask.Remove(o)
}

// Halt transitions this venue Trading -> Halted.
func (ex *Exchange) Halt() {
	if !ex.TradingStopped {
		log.Info().Int("exchange", ex.ID).Msg("trading halted")
	}
	ex.TradingStopped = true
}

// Resume transitions this venue Halted -> Trading.
func (ex *Exchange) Resume() {
	if ex.TradingStopped {
		log.Info().Int("exchange", ex.ID).Msg("trading resumed")
	}
	ex.TradingStopped = false
}

// ShiftAllPrices adds delta to every resting order on both sides,
// re-establishes price-time ordering, and settles any trades the shift
// causes by crossing the book (MarketPriceShock).
func (ex *Exchange) ShiftAllPrices(delta float64) {
	ex.bid.ShiftPrices(delta)
	ex.ask.ShiftPrices(delta)
	orderbook.CrossMatch(ex.bid, ex.ask, ex.TransactionCost)
}

// Validate checks this venue's book for internal ordering/quantity
// defects and for a crossed spread surviving matching.
func (ex *Exchange) Validate() error {
	if err := ex.bid.Validate(); err != nil {
		return err
	}
	if err := ex.ask.Validate(); err != nil {
		return err
	}
	s, err := ex.Spread()
	if err == nil && s.Bid >= s.Ask {
		log.Error().Int("exchange", ex.ID).Float64("bid", s.Bid).Float64("ask", s.Ask).Msg("crossed book survived matching")
		return orderbook.ErrInvariantViolation
	}
	return nil
}

// AskLast returns the price of the least aggressive (worst) resting ask,
// used by multi-venue market-order routing as a cheap liquidity signal.
func (ex *Exchange) AskLast() (float64, bool) {
	o, ok := ex.ask.Last()
	if !ok {
		return 0, false
	}
	return o.Price, true
}

// BidLast returns the price of the least aggressive (worst) resting bid.
func (ex *Exchange) BidLast() (float64, bool) {
	o, ok := ex.bid.Last()
	if !ok {
		return 0, false
	}
	return o.Price, true
}

// BidLevels/AskLevels expose a read-only snapshot for SimulatorInfo.
func (ex *Exchange) BidLevels() []orderbook.LevelSnapshot { return ex.bid.Levels() }
func (ex *Exchange) AskLevels() []orderbook.LevelSnapshot { return ex.ask.Levels() }
