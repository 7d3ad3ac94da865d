// Package config defines the consumed configuration record a run is
// built from: exchange definitions, trader population definitions,
// scheduled events, and run-length/regime parameters. Parsing a file
// into this shape is an external collaborator's job; this package only
// defines the shape.
package config

// ExchangeConfig seeds one venue.
type ExchangeConfig struct {
	Price           float64
	Std             float64
	Volume          uint64
	RiskFree        float64
	TransactionCost float64
}

// TraderConfig expands to Count identical agents of Type, each wired to
// the venues named by Markets (ordinals into the run's Exchanges list).
// Unknown/inapplicable fields for a given Type are ignored.
type TraderConfig struct {
	Type    string
	Count   int
	Cash    float64
	Assets  []int64 // per-venue starting position, same length as Markets
	Markets []int

	// Fundamentalist / Universalist
	Access int

	// Chartist / Universalist
	Sentiment string // "optimistic" | "pessimistic"

	// Universalist only — starting acting-as kind
	ActingAs string // "fundamentalist" | "chartist"

	// MarketMaker only, per-venue, same length as Markets
	Upper []float64
	Lower []float64
}

// EventConfig schedules one perturbation.
type EventConfig struct {
	Type        string // "market_price_shock" | "stop_trading"
	It          int
	StockID     int
	PriceChange float64
	ExchangeID  int
}

// Cadence carries the coefficients the Chartist sentiment and
// Universalist strategy-switching formulas need, plus the tick-level
// probabilities that gate when those formulas are evaluated at all.
type Cadence struct {
	A1, A2, A3 float64
	S          float64
	V1, V2     float64
}

// Config is one full run definition.
type Config struct {
	Exchanges []ExchangeConfig
	Traders   []TraderConfig
	Events    []EventConfig

	Iterations int

	// Size is how many iterations a regime label covers: classification
	// only re-runs every Size ticks, repeating the previous label in
	// between. Window is the lookback length (in past ticks' mean
	// returns) the volatility classification itself is computed over.
	Size               int
	Window             int
	StabilityThreshold int

	Cadence Cadence
	Seed    int64
}
