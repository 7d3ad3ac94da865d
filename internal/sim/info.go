package sim

import (
	"math"

	"abmarket/internal/agent"
	"abmarket/internal/config"
	"abmarket/internal/exchange"
)

// Regime is a windowed volatility classification.
type Regime int

const (
	RegimeStable Regime = iota
	RegimePanic
	RegimeDisaster
)

func (r Regime) String() string {
	switch r {
	case RegimeStable:
		return "stable"
	case RegimePanic:
		return "panic"
	case RegimeDisaster:
		return "disaster"
	default:
		return "unknown"
	}
}

// OrderBookSummary is one tick's per-venue book snapshot.
type OrderBookSummary struct {
	ExchangeID int
	Bid        []float64 // level prices, best first
	Ask        []float64
	Traders    []string // agent ids with at least one resting order this tick
}

// Info is the append-only observable record a run produces: parallel
// time series indexed by iteration.
type Info struct {
	cfg *config.Config

	Prices     []map[int]float64    // iteration -> exchange id -> mid price
	Dividends  []map[int]float64    // iteration -> exchange id -> current dividend
	Returns    []map[string]float64 // iteration -> agent id -> return
	Types      []map[string]string  // iteration -> agent id -> kind string
	Sentiments []map[string]string  // iteration -> agent id -> sentiment string
	Orders     []map[int]OrderBookSummary
	States     []Regime

	windowReturns []float64 // rolling buffer for regime detection
	lastRegime    Regime    // carried forward between Size-gated recomputations
}

func newInfo(cfg *config.Config) *Info {
	return &Info{cfg: cfg}
}

// StockReturns returns the simple-return series for exchange id lagged by
// lag iterations (return_t = price_t/price_{t-lag} - 1).
func (info *Info) StockReturns(exchangeID, lag int) []float64 {
	if lag <= 0 {
		lag = 1
	}
	var out []float64
	for t := lag; t < len(info.Prices); t++ {
		prev, okPrev := info.Prices[t-lag][exchangeID]
		cur, okCur := info.Prices[t][exchangeID]
		if !okPrev || !okCur || prev == 0 {
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// ToDict projects Info into the structured record external collaborators
// expect: prices, dividends, returns, orders, states, available_traders,
// plus an events section echoing the schedule with dispatched iterations.
func (s *Simulator) ToDict() map[string]any {
	info := s.info
	traders := make([]string, len(s.agents))
	for i, a := range s.agents {
		traders[i] = a.ID.String()
	}
	events := make([]map[string]any, 0, len(s.queue.Events()))
	for _, e := range s.queue.Events() {
		events = append(events, e.ToDict())
	}
	return map[string]any{
		"prices":             info.Prices,
		"dividends":          info.Dividends,
		"returns":            info.Returns,
		"orders":             info.Orders,
		"states":             info.States,
		"available_traders":  traders,
		"events":             events,
	}
}

// snapshot appends this tick's observable state and slides the regime
// detection window.
func (s *Simulator) snapshot() {
	info := s.info

	prices := make(map[int]float64, len(s.exchanges))
	dividends := make(map[int]float64, len(s.exchanges))
	orders := make(map[int]OrderBookSummary, len(s.exchanges))
	for _, ex := range s.exchanges {
		if p, err := ex.Price(); err == nil {
			prices[ex.ID] = p
		}
		dividends[ex.ID] = ex.Dividend()
		orders[ex.ID] = summarizeBook(ex, s.agents)
	}

	returns := make(map[string]float64, len(s.agents))
	types := make(map[string]string, len(s.agents))
	sentiments := make(map[string]string, len(s.agents))
	var totalReturn float64
	for i, a := range s.agents {
		eq := a.Equity()
		ret := 0.0
		if s.prevEquity[i] != 0 {
			ret = (eq - s.prevEquity[i]) / s.prevEquity[i]
		}
		returns[a.ID.String()] = ret
		totalReturn += ret
		types[a.ID.String()] = a.Kind.String()
		if a.Kind == agent.KindChartist || a.Kind == agent.KindUniversalist {
			sentiments[a.ID.String()] = a.Sentiment.String()
		}
		s.prevEquity[i] = eq
	}

	info.Prices = append(info.Prices, prices)
	info.Dividends = append(info.Dividends, dividends)
	info.Returns = append(info.Returns, returns)
	info.Types = append(info.Types, types)
	info.Sentiments = append(info.Sentiments, sentiments)
	info.Orders = append(info.Orders, orders)

	for id, p := range prices {
		s.prevVenuePrice[id] = p
	}
	s.lastReturns = returns

	meanReturn := 0.0
	if len(s.agents) > 0 {
		meanReturn = totalReturn / float64(len(s.agents))
	}
	info.windowReturns = append(info.windowReturns, meanReturn)
	if s.cfg().Window > 0 && len(info.windowReturns) > s.cfg().Window {
		info.windowReturns = info.windowReturns[len(info.windowReturns)-s.cfg().Window:]
	}

	// A regime label covers Size iterations: classification only re-runs
	// every Size ticks, repeating the previous label in between. Size <= 0
	// falls back to reclassifying every tick.
	size := s.cfg().Size
	if size <= 0 {
		size = 1
	}
	if len(info.States)%size == 0 {
		info.lastRegime = classifyRegime(info.windowReturns, s.cfg().StabilityThreshold)
	}
	info.States = append(info.States, info.lastRegime)
}

func (s *Simulator) cfg() *config.Config { return s.info.cfg }

func summarizeBook(ex *exchange.Exchange, agents []*agent.Agent) OrderBookSummary {
	bidLevels := ex.BidLevels()
	askLevels := ex.AskLevels()
	bid := make([]float64, len(bidLevels))
	for i, lvl := range bidLevels {
		bid[i] = lvl.Price
	}
	ask := make([]float64, len(askLevels))
	for i, lvl := range askLevels {
		ask[i] = lvl.Price
	}

	var traders []string
	for _, a := range agents {
		for _, o := range a.RestingOrders {
			if a.Venues[o.VenueID] == ex {
				traders = append(traders, a.ID.String())
				break
			}
		}
	}

	return OrderBookSummary{ExchangeID: ex.ID, Bid: bid, Ask: ask, Traders: traders}
}

// classifyRegime labels the current window as stable, panic, or disaster
// by the population standard deviation of the window's returns: above 3x
// stabilityThreshold is disaster, above 1x is panic, otherwise stable (a
// non-positive threshold counts as 1).
func classifyRegime(window []float64, stabilityThreshold int) Regime {
	if len(window) < 2 {
		return RegimeStable
	}
	mean := 0.0
	for _, r := range window {
		mean += r
	}
	mean /= float64(len(window))

	var variance float64
	for _, r := range window {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(window))
	vol := math.Sqrt(variance)

	threshold := float64(stabilityThreshold)
	if threshold <= 0 {
		threshold = 1
	}
	switch {
	case vol > threshold*3:
		return RegimeDisaster
	case vol > threshold:
		return RegimePanic
	default:
		return RegimeStable
	}
}
