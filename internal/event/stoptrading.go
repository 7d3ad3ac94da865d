package event

// StopTrading halts its target exchange and resumes every exchange that
// was previously halted by a different StopTrading event — at most one
// venue is ever halted at a time, and a new target switches which one.
type StopTrading struct {
	it         int
	ExchangeID int
}

// NewStopTrading schedules a halt of exchangeID at iteration it.
func NewStopTrading(it, exchangeID int) *StopTrading {
	return &StopTrading{it: it, ExchangeID: exchangeID}
}

func (e *StopTrading) At() int { return e.it }

func (e *StopTrading) Call(t int, sim Simulator) {
	if t != e.it {
		return
	}
	for _, ex := range sim.Exchanges() {
		if ex.ID == e.ExchangeID {
			ex.Halt()
			continue
		}
		if ex.TradingStopped {
			ex.Resume()
		}
	}
}

func (e *StopTrading) ToDict() map[string]any {
	return map[string]any{
		"type":        "stop_trading",
		"it":          e.it,
		"exchange_id": e.ExchangeID,
	}
}
