package backtest

import (
	"github.com/sirupsen/logrus"
)

// EquityPoint is the portfolio value at one bar close
type EquityPoint struct {
	Time      int64   `json:"time"`
	Equity    float64 `json:"equity"`
	Cash      float64 `json:"cash"`
	Return    float64 `json:"return"`
	ReturnPct float64 `json:"return_pct"`
}

// Result is the exported outcome of one engine run
type Result struct {
	Symbol         string        `json:"symbol"`
	Strategy       string        `json:"strategy"`
	StrategyParams Params        `json:"strategy_params"`
	StartTime      int64         `json:"start_time"`
	EndTime        int64         `json:"end_time"`
	InitialCapital float64       `json:"initial_capital"`
	FinalCapital   float64       `json:"final_capital"`
	Curve          []EquityPoint `json:"equity_curve"`
	Positions      []Position    `json:"positions"`
	Signals        []Signal      `json:"signals"`
	Metrics        Metrics       `json:"metrics"`
}

// Engine executes one backtest over a price series: it walks bars in
// chronological order, holds at most one open position, applies commission
// and slippage against the trader and records an equity point per bar.
// An Engine is single use, create one per run.
type Engine struct {
	config RunConfig

	cash   float64
	open   *Position
	closed []Position
	curve  []EquityPoint
}

// NewEngine is constructor of Engine
func NewEngine(config RunConfig) *Engine {
	return &Engine{config: config}
}

// Run generates signals with the strategy and replays them over the series
func (e *Engine) Run(series *Series, strategy Strategy) (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if series == nil || len(series.Bars) == 0 {
		return nil, dataErrorf("no bars to backtest")
	}

	signals, err := strategy.Generate(series)
	if err != nil {
		return nil, err
	}
	logrus.Infof("backtest start: %v, strategy -> %v, signals -> %v", series.Symbol, strategy.Name(), len(signals.Signals))

	result, err := e.RunSignals(series, signals.Signals)
	if err != nil {
		return nil, err
	}
	result.Strategy = strategy.Name()
	result.StrategyParams = strategy.Params()
	return result, nil
}

// RunSignals replays an already generated signal sequence over the series.
// Signals must be in chronological order and dated to bars of the series,
// otherwise the run aborts with a data integrity error and no partial
// equity curve is returned.
func (e *Engine) RunSignals(series *Series, signals []Signal) (*Result, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if series == nil || len(series.Bars) == 0 {
		return nil, dataErrorf("no bars to backtest")
	}

	byTime, err := indexSignals(series, signals)
	if err != nil {
		return nil, err
	}

	e.cash = e.config.InitialCapital
	e.open = nil
	e.closed = nil
	e.curve = make([]EquityPoint, 0, len(series.Bars))

	bars := series.Bars
	for i, bar := range bars {
		for _, signal := range byTime[bar.Time] {
			switch signal.Kind {
			case BUY:
				e.openPosition(signal)
			case SELL:
				e.closePosition(signal)
			}
		}

		// every run ends fully liquidated
		if i == len(bars)-1 && e.open != nil {
			e.closePosition(Signal{
				Time:   bar.Time,
				Kind:   SELL,
				Price:  bar.Close,
				Reason: "end of series - forced liquidation",
			})
		}

		e.record(bar)
	}

	result := &Result{
		Symbol:         series.Symbol,
		StartTime:      bars[0].Time,
		EndTime:        bars[len(bars)-1].Time,
		InitialCapital: e.config.InitialCapital,
		FinalCapital:   e.cash,
		Curve:          e.curve,
		Positions:      e.closed,
		Signals:        signals,
		Metrics:        ComputeMetrics(e.curve, e.closed, e.config),
	}
	return result, nil
}

// indexSignals validates the sequence against the series and groups it by
// bar time
func indexSignals(series *Series, signals []Signal) (map[int64][]Signal, error) {
	barTimes := make(map[int64]bool, len(series.Bars))
	for _, bar := range series.Bars {
		barTimes[bar.Time] = true
	}

	byTime := make(map[int64][]Signal, len(signals))
	var lastTime int64
	for i, signal := range signals {
		if i > 0 && signal.Time < lastTime {
			return nil, dataErrorf("signal %d at %d is out of order, previous signal at %d", i, signal.Time, lastTime)
		}
		lastTime = signal.Time

		if !barTimes[signal.Time] {
			return nil, dataErrorf("signal %d at %d is dated outside the series", i, signal.Time)
		}

		switch signal.Kind {
		case BUY, SELL:
			byTime[signal.Time] = append(byTime[signal.Time], signal)
		case HOLD:
			// no action
		default:
			return nil, dataErrorf("signal %d has unknown kind %q", i, signal.Kind)
		}
	}
	return byTime, nil
}

// openPosition opens a long position with a slippage-adjusted fill. A buy
// while in position, or one the cash cannot honor, is skipped - never fatal.
func (e *Engine) openPosition(signal Signal) {
	if e.open != nil {
		logrus.Warnf("already in position, skipping buy signal at %v", signal.Time)
		return
	}

	// slippage works against the trader, the buy fills above the signal price
	entryPrice := signal.Price*(1+e.config.SlippagePct) + e.config.Slippage
	if entryPrice <= 0 {
		logrus.Warnf("non-positive entry price, skipping buy signal at %v", signal.Time)
		return
	}

	// size the entry so value plus commission fits the committed cash
	available := e.cash * e.config.PositionSizePct
	var quantity int
	if e.config.CommissionPct > 0 {
		quantity = int(available / (entryPrice * (1 + e.config.CommissionPct)))
	} else {
		quantity = int((available - e.config.Commission) / entryPrice)
	}
	if quantity <= 0 {
		logrus.Warnf("insufficient capital to buy at %v", signal.Time)
		return
	}

	entryValue := float64(quantity) * entryPrice
	commission := e.config.commissionFor(entryValue)
	if entryValue+commission > e.cash {
		logrus.Warnf("insufficient capital for trade at %v", signal.Time)
		return
	}

	e.cash -= entryValue + commission
	e.open = &Position{
		EntryTime:      signal.Time,
		EntryPrice:     entryPrice,
		Quantity:       quantity,
		Side:           LONG,
		Status:         OPEN,
		EntryValue:     entryValue,
		CommissionPaid: commission,
	}

	logrus.Infof("opened position: %v shares at %.2f, cash -> %.2f", quantity, entryPrice, e.cash)
}

// closePosition exits the open position with a slippage-adjusted fill,
// a sell while flat is skipped
func (e *Engine) closePosition(signal Signal) {
	if e.open == nil {
		logrus.Warnf("no open position to close at %v", signal.Time)
		return
	}

	// slippage works against the trader, the sell fills below the signal price
	exitPrice := signal.Price*(1-e.config.SlippagePct) - e.config.Slippage
	if exitPrice < 0 {
		exitPrice = 0
	}

	exitValue := float64(e.open.Quantity) * exitPrice
	commission := e.config.commissionFor(exitValue)

	e.cash += exitValue - commission
	e.open.close(signal.Time, exitPrice, commission)

	logrus.Infof("closed position: %v shares at %.2f, pnl -> %.2f, cash -> %.2f",
		e.open.Quantity, exitPrice, *e.open.Pnl, e.cash)

	e.closed = append(e.closed, *e.open)
	e.open = nil
}

// record appends the equity point of one bar, open positions are marked
// to market at the bar close
func (e *Engine) record(bar Bar) {
	equity := e.cash
	if e.open != nil {
		equity += float64(e.open.Quantity) * bar.Close
	}

	e.curve = append(e.curve, EquityPoint{
		Time:      bar.Time,
		Equity:    equity,
		Cash:      e.cash,
		Return:    equity - e.config.InitialCapital,
		ReturnPct: (equity - e.config.InitialCapital) / e.config.InitialCapital * 100,
	})
}
