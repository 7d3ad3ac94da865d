// Package sim orchestrates a full run: it owns every Exchange and Agent,
// drives the per-iteration loop (events, dividends, shuffled agent
// activation, sentiment/strategy cadence, snapshot, regime detection),
// and builds the append-only time series external collaborators consume.
package sim

import (
	"github.com/rs/zerolog/log"

	"abmarket/internal/agent"
	"abmarket/internal/config"
	"abmarket/internal/event"
	"abmarket/internal/exchange"
	"abmarket/internal/rng"
)

// Simulator drives a single deterministic run.
type Simulator struct {
	exchanges []*exchange.Exchange
	agents    []*agent.Agent

	queue *event.Queue
	rng   *rng.Source

	cadence config.Cadence

	prevEquity     []float64
	prevVenuePrice map[int]float64
	lastReturns    map[string]float64

	info *Info
}

// New builds every Exchange and Agent the config describes and wires
// trader Markets ordinals to the corresponding Exchange handles.
func New(cfg *config.Config) *Simulator {
	source := rng.New(cfg.Seed)

	exchanges := make([]*exchange.Exchange, len(cfg.Exchanges))
	for i, ec := range cfg.Exchanges {
		exchanges[i] = exchange.New(i, ec.Price, ec.Std, ec.Volume, ec.RiskFree, ec.TransactionCost, source)
	}

	var agents []*agent.Agent
	for _, tc := range cfg.Traders {
		venues := make([]*exchange.Exchange, len(tc.Markets))
		for i, m := range tc.Markets {
			venues[i] = exchanges[m]
		}
		for i := 0; i < tc.Count; i++ {
			agents = append(agents, buildAgent(tc, venues, source))
		}
	}

	queue := event.NewQueue()
	for _, ec := range cfg.Events {
		switch ec.Type {
		case "market_price_shock":
			queue.Add(event.NewMarketPriceShock(ec.It, ec.StockID, ec.PriceChange))
		case "stop_trading":
			queue.Add(event.NewStopTrading(ec.It, ec.ExchangeID))
		}
	}

	s := &Simulator{
		exchanges:      exchanges,
		agents:         agents,
		queue:          queue,
		rng:            source,
		cadence:        cfg.Cadence,
		prevVenuePrice: make(map[int]float64),
		lastReturns:    make(map[string]float64),
		info:           newInfo(cfg),
	}
	s.prevEquity = make([]float64, len(agents))
	for i, a := range agents {
		s.prevEquity[i] = a.Equity()
	}
	for _, ex := range exchanges {
		if p, err := ex.Price(); err == nil {
			s.prevVenuePrice[ex.ID] = p
		}
	}
	return s
}

func buildAgent(tc config.TraderConfig, venues []*exchange.Exchange, source *rng.Source) *agent.Agent {
	kind := kindFromString(tc.Type)
	a := agent.New(kind, venues, tc.Cash, tc.Assets, source)
	a.Access = tc.Access
	if tc.Sentiment == "pessimistic" {
		a.Sentiment = agent.Pessimistic
	}
	a.PrevSentiment = a.Sentiment
	if kind == agent.KindUniversalist {
		a.ActingAs = agent.KindFundamentalist
		if tc.ActingAs == "chartist" {
			a.ActingAs = agent.KindChartist
		}
	}
	if kind == agent.KindMarketMaker {
		a.Upper = append([]float64(nil), tc.Upper...)
		a.Lower = append([]float64(nil), tc.Lower...)
	}
	return a
}

func kindFromString(s string) agent.Kind {
	switch s {
	case "fundamentalist":
		return agent.KindFundamentalist
	case "chartist":
		return agent.KindChartist
	case "universalist":
		return agent.KindUniversalist
	case "marketmaker":
		return agent.KindMarketMaker
	default:
		return agent.KindRandom
	}
}

// Exchanges implements event.Simulator.
func (s *Simulator) Exchanges() []*exchange.Exchange { return s.exchanges }

// Info returns the time series accumulated so far, usable mid-run (e.g.
// after a signal interrupts Step-by-step driving) as well as after Run.
func (s *Simulator) Info() *Info { return s.info }

// Run drives every iteration and returns the accumulated SimulatorInfo. A
// non-nil error means an invariant violation halted the run at the
// returned Info's last recorded iteration.
func (s *Simulator) Run(iterations int) (*Info, error) {
	for t := 1; t <= iterations; t++ {
		if err := s.Step(t); err != nil {
			return s.info, err
		}
	}
	return s.info, nil
}

// Step runs one iteration: events, dividends, shuffled agent activation,
// sentiment/strategy cadence, snapshot, regime detection. It returns a
// non-nil error only on a fatal invariant violation.
func (s *Simulator) Step(t int) error {
	s.queue.Tick(t, s)

	for _, ex := range s.exchanges {
		if !ex.TradingStopped {
			ex.GenerateDividend()
		}
	}

	perm := make([]int, len(s.agents))
	for i := range perm {
		perm[i] = i
	}
	s.rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	for _, idx := range perm {
		s.agents[idx].Call()
	}

	if s.rng.Uniform01() < s.cadence.V1 {
		s.runChangeSentiment()
	}
	if s.rng.Uniform01() < s.cadence.V2 {
		s.runChangeStrategy()
	}

	s.snapshot()

	if err := s.validate(); err != nil {
		log.Error().Int("iteration", t).Err(err).Msg("invariant violation, halting run")
		return err
	}
	return nil
}

func (s *Simulator) validate() error {
	for _, ex := range s.exchanges {
		if err := ex.Validate(); err != nil {
			return err
		}
	}
	return nil
}
