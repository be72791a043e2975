package backtest

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// MACDCross trades crossings of the MACD line and its signal line
type MACDCross struct {
	fast   int
	slow   int
	signal int
}

// NewMACDCross creates the strategy from fast_period, slow_period and
// signal_period
func NewMACDCross(params Params) (Strategy, error) {
	if err := params.ensureKnown("fast_period", "slow_period", "signal_period"); err != nil {
		return nil, err
	}
	fast, err := params.intValue("fast_period", 12)
	if err != nil {
		return nil, err
	}
	slow, err := params.intValue("slow_period", 26)
	if err != nil {
		return nil, err
	}
	signal, err := params.intValue("signal_period", 9)
	if err != nil {
		return nil, err
	}
	if fast < 1 || signal < 1 {
		return nil, configErrorf("fast_period and signal_period must be at least 1, got %d and %d", fast, signal)
	}
	if fast >= slow {
		return nil, configErrorf("fast_period (%d) must be shorter than slow_period (%d)", fast, slow)
	}
	return &MACDCross{fast: fast, slow: slow, signal: signal}, nil
}

// Name returns "macd"
func (md *MACDCross) Name() string {
	return "macd"
}

// Params returns the resolved parameters
func (md *MACDCross) Params() Params {
	return Params{"fast_period": md.fast, "slow_period": md.slow, "signal_period": md.signal}
}

// Generate emits signals when the MACD line crosses its signal line
func (md *MACDCross) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	warmup := md.slow + md.signal
	if len(bars) <= warmup {
		return signals, nil
	}

	macd, macdSignal, _ := talib.Macd(series.Closes(), md.fast, md.slow, md.signal)

	for day := 1; day < len(bars); day++ {
		if day <= warmup {
			continue
		}

		if macd[day-1] <= macdSignal[day-1] && macd[day] > macdSignal[day] {
			signals.Buy(bars[day].Time, bars[day].Close,
				fmt.Sprintf("MACD(%d,%d) crossed above signal(%d)", md.fast, md.slow, md.signal))
		}

		if macd[day-1] >= macdSignal[day-1] && macd[day] < macdSignal[day] {
			signals.Sell(bars[day].Time, bars[day].Close,
				fmt.Sprintf("MACD(%d,%d) crossed below signal(%d)", md.fast, md.slow, md.signal))
		}
	}

	return signals, nil
}
