package backtest

const (
	// BUY represents "Buy" signal
	BUY = "BUY"
	// SELL represents "Sell" signal
	SELL = "SELL"
	// HOLD represents "no action" signal
	HOLD = "HOLD"
)

// Signal is one buy/sell/hold decision of a strategy at a bar
type Signal struct {
	Time   int64   `json:"time"`
	Kind   string  `json:"kind"`
	Price  float64 `json:"price"`
	Reason string  `json:"reason,omitempty"`
}

// Signals stores signals of one strategy run. Buy and Sell gate on the last
// appended signal, so the sequence always alternates and a strategy can
// never pyramid into a second entry without an intervening exit.
type Signals struct {
	Signals []Signal `json:"signals"`
}

// Buy appends buy-signal to Signals, if can not buy, return false
func (sg *Signals) Buy(time int64, price float64, reason string) bool {
	if !(sg.CanBuy()) {
		return false
	}
	sg.Signals = append(sg.Signals, Signal{Time: time, Kind: BUY, Price: price, Reason: reason})
	return true
}

// CanBuy judges whether buy or not
func (sg *Signals) CanBuy() bool {
	lenSignals := len(sg.Signals)
	// not buy or sell
	if lenSignals == 0 {
		return true
	}

	if sg.Signals[lenSignals-1].Kind == SELL {
		return true
	}

	return false
}

// Sell appends sell-signal to Signals, if can not sell, return false
func (sg *Signals) Sell(time int64, price float64, reason string) bool {
	if !(sg.CanSell()) {
		return false
	}
	sg.Signals = append(sg.Signals, Signal{Time: time, Kind: SELL, Price: price, Reason: reason})
	return true
}

// CanSell judges whether sell or not
func (sg *Signals) CanSell() bool {
	lenSignals := len(sg.Signals)
	// not buy or sell
	if lenSignals == 0 {
		return false
	}

	if sg.Signals[lenSignals-1].Kind == BUY {
		return true
	}

	return false
}

// Last returns the last appended signal, nil when empty
func (sg *Signals) Last() *Signal {
	if len(sg.Signals) == 0 {
		return nil
	}
	return &sg.Signals[len(sg.Signals)-1]
}
