package main

import (
	"context"
	"os"
	"syscall"

	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"abmarket/internal/config"
	"abmarket/internal/sim"
)

// defaultConfig assembles a sample multi-strategy, two-venue run. A real
// deployment would load this from file; wiring that up is left to callers
// embedding the sim package directly.
func defaultConfig() *config.Config {
	return &config.Config{
		Exchanges: []config.ExchangeConfig{
			{Price: 100, Std: 2, Volume: 20, RiskFree: 5e-4, TransactionCost: 0.001},
			{Price: 100, Std: 2, Volume: 20, RiskFree: 5e-4, TransactionCost: 0.001},
		},
		Traders: []config.TraderConfig{
			{Type: "random", Count: 30, Cash: 10000, Assets: []int64{10, 10}, Markets: []int{0, 1}},
			{Type: "fundamentalist", Count: 15, Cash: 10000, Assets: []int64{10, 10}, Markets: []int{0, 1}, Access: 5},
			{Type: "chartist", Count: 15, Cash: 10000, Assets: []int64{10, 10}, Markets: []int{0, 1}},
			{Type: "universalist", Count: 10, Cash: 10000, Assets: []int64{10, 10}, Markets: []int{0, 1}, ActingAs: "fundamentalist"},
			{Type: "marketmaker", Count: 2, Cash: 100000, Assets: []int64{1000, 1000}, Markets: []int{0, 1},
				Upper: []float64{0.05, 0.05}, Lower: []float64{-0.05, -0.05}},
		},
		Events: []config.EventConfig{
			{Type: "market_price_shock", It: 250, StockID: 0, PriceChange: -15},
			{Type: "stop_trading", It: 251, ExchangeID: 0},
			{Type: "stop_trading", It: 280, ExchangeID: -1},
		},
		Iterations:         500,
		Window:             20,
		StabilityThreshold: 1,
		Cadence:            config.Cadence{A1: 1, A2: 1, V1: 0.1, A3: 1, V2: 0.05, S: 1},
		Seed:               1,
	}
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := defaultConfig()
	simulator := sim.New(cfg)

	t, ctx := tomb.WithContext(ctx)
	t.Go(func() error {
		if err := runWithContext(ctx, simulator, cfg.Iterations); err != nil {
			return err
		}
		info := simulator.Info()
		log.Info().
			Int("iterations", cfg.Iterations).
			Int("exchanges", len(cfg.Exchanges)).
			Msg("run complete")
		if len(info.Prices) > 0 {
			final := info.Prices[len(info.Prices)-1]
			for id, p := range final {
				log.Info().Int("exchange", id).Float64("price", p).Msg("closing price")
			}
		}
		return nil
	})

	select {
	case <-ctx.Done():
		t.Kill(ctx.Err())
	case <-t.Dead():
	}

	if err := t.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("run terminated with error")
		os.Exit(1)
	}
}

// runWithContext drives the simulator iteration by iteration so a signal on
// ctx stops the run between ticks rather than only at the end.
func runWithContext(ctx context.Context, s *sim.Simulator, iterations int) error {
	for it := 1; it <= iterations; it++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(it); err != nil {
			return err
		}
	}
	return nil
}
