package backtest

// BuyAndHold is the baseline strategy: enter at the first bar and exit at
// the last bar
type BuyAndHold struct{}

// NewBuyAndHold creates the strategy, it takes no parameters
func NewBuyAndHold(params Params) (Strategy, error) {
	if err := params.ensureKnown(); err != nil {
		return nil, err
	}
	return &BuyAndHold{}, nil
}

// Name returns "buy_hold"
func (bh *BuyAndHold) Name() string {
	return "buy_hold"
}

// Params returns the resolved parameters
func (bh *BuyAndHold) Params() Params {
	return Params{}
}

// Generate emits a buy at the first bar close and a sell at the last
func (bh *BuyAndHold) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	if len(bars) == 0 {
		return signals, nil
	}

	signals.Buy(bars[0].Time, bars[0].Close, "buy and hold - initial purchase")
	if len(bars) > 1 {
		last := bars[len(bars)-1]
		signals.Sell(last.Time, last.Close, "buy and hold - final exit")
	}

	return signals, nil
}
