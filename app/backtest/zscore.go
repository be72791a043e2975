package backtest

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// ZScore is a mean-reversion strategy on the rolling z-score of the close:
// it buys when the z-score falls below the entry threshold and sells when
// the z-score recovers to the exit threshold
type ZScore struct {
	period int
	entry  float64
	exit   float64
}

// NewZScore creates the strategy from period, entry_threshold and
// exit_threshold
func NewZScore(params Params) (Strategy, error) {
	if err := params.ensureKnown("period", "entry_threshold", "exit_threshold"); err != nil {
		return nil, err
	}
	period, err := params.intValue("period", 20)
	if err != nil {
		return nil, err
	}
	entry, err := params.floatValue("entry_threshold", -2.0)
	if err != nil {
		return nil, err
	}
	exit, err := params.floatValue("exit_threshold", 0.0)
	if err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, configErrorf("period must be at least 2, got %d", period)
	}
	if entry >= exit {
		return nil, configErrorf("entry_threshold (%v) must be below exit_threshold (%v)", entry, exit)
	}
	return &ZScore{period: period, entry: entry, exit: exit}, nil
}

// Name returns "zscore"
func (zs *ZScore) Name() string {
	return "zscore"
}

// Params returns the resolved parameters
func (zs *ZScore) Params() Params {
	return Params{"period": zs.period, "entry_threshold": zs.entry, "exit_threshold": zs.exit}
}

// Generate emits signals at z-score threshold crossings
func (zs *ZScore) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	if len(bars) <= zs.period {
		return signals, nil
	}

	closes := series.Closes()
	mean := talib.Sma(closes, zs.period)
	stddev := talib.StdDev(closes, zs.period, 1.0)

	zscore := make([]float64, len(bars))
	for i := range bars {
		if stddev[i] > 0 {
			zscore[i] = (closes[i] - mean[i]) / stddev[i]
		}
	}

	for day := 1; day < len(bars); day++ {
		if day < zs.period || stddev[day] == 0 || stddev[day-1] == 0 {
			continue
		}

		if zscore[day-1] >= zs.entry && zscore[day] < zs.entry {
			signals.Buy(bars[day].Time, bars[day].Close,
				fmt.Sprintf("z-score(%d) fell below %v", zs.period, zs.entry))
		}

		if zscore[day-1] < zs.exit && zscore[day] >= zs.exit {
			signals.Sell(bars[day].Time, bars[day].Close,
				fmt.Sprintf("z-score(%d) recovered to %v", zs.period, zs.exit))
		}
	}

	return signals, nil
}
