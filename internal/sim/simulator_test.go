package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abmarket/internal/config"
)

func basicConfig() *config.Config {
	return &config.Config{
		Exchanges: []config.ExchangeConfig{
			{Price: 100, Std: 2, Volume: 20, RiskFree: 5e-4, TransactionCost: 0.001},
		},
		Traders: []config.TraderConfig{
			{Type: "random", Count: 5, Cash: 10000, Assets: []int64{10}, Markets: []int{0}},
			{Type: "fundamentalist", Count: 2, Cash: 10000, Assets: []int64{10}, Markets: []int{0}, Access: 5},
			{Type: "chartist", Count: 3, Cash: 10000, Assets: []int64{10}, Markets: []int{0}},
		},
		Iterations:         20,
		Window:             10,
		StabilityThreshold: 1,
		Cadence:            config.Cadence{A1: 1, A2: 1, V1: 0.3, A3: 1, V2: 0.1, S: 1},
		Seed:               42,
	}
}

func TestRun_AppendsOneSnapshotPerIteration(t *testing.T) {
	s := New(basicConfig())
	info, err := s.Run(20)
	require.NoError(t, err)
	assert.Len(t, info.Prices, 20)
	assert.Len(t, info.Returns, 20)
	assert.Len(t, info.States, 20)
}

func TestRun_TwoVenueHaltIsolatesDividends(t *testing.T) {
	cfg := basicConfig()
	cfg.Exchanges = append(cfg.Exchanges, config.ExchangeConfig{Price: 50, Std: 1, Volume: 10, RiskFree: 5e-4, TransactionCost: 0.001})
	cfg.Events = []config.EventConfig{{Type: "stop_trading", It: 5, ExchangeID: 0}}
	s := New(cfg)

	for it := 1; it <= 4; it++ {
		require.NoError(t, s.Step(it))
	}
	div0 := s.exchanges[0].DividendWindow(100)
	div1 := s.exchanges[1].DividendWindow(100)
	require.NoError(t, s.Step(5))
	assert.True(t, s.exchanges[0].TradingStopped)
	assert.False(t, s.exchanges[1].TradingStopped)
	assert.Equal(t, div0, s.exchanges[0].DividendWindow(100))
	assert.Equal(t, div1[1:], s.exchanges[1].DividendWindow(100)[:99])
}

func TestStockReturns_SkipsMissingIterations(t *testing.T) {
	info := newInfo(basicConfig())
	info.Prices = []map[int]float64{
		{0: 100},
		{0: 102},
		{0: 101},
		{}, // no price for exchange 0 this iteration
	}
	rets := info.StockReturns(0, 1)
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.02, rets[0], 1e-9)
}

func TestToDict_ProjectsExpectedKeys(t *testing.T) {
	s := New(basicConfig())
	_, err := s.Run(3)
	require.NoError(t, err)
	d := s.ToDict()
	for _, key := range []string{"prices", "dividends", "returns", "orders", "states", "available_traders", "events"} {
		_, ok := d[key]
		assert.True(t, ok, "missing key %s", key)
	}
}
