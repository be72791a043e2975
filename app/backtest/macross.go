package backtest

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// MACross trades simple moving average crossovers: a golden cross buys,
// a death cross sells
type MACross struct {
	fast int
	slow int
}

// NewMACross creates the strategy from fast_period and slow_period
func NewMACross(params Params) (Strategy, error) {
	if err := params.ensureKnown("fast_period", "slow_period"); err != nil {
		return nil, err
	}
	fast, err := params.intValue("fast_period", 20)
	if err != nil {
		return nil, err
	}
	slow, err := params.intValue("slow_period", 50)
	if err != nil {
		return nil, err
	}
	if fast < 1 {
		return nil, configErrorf("fast_period must be at least 1, got %d", fast)
	}
	if fast >= slow {
		return nil, configErrorf("fast_period (%d) must be shorter than slow_period (%d)", fast, slow)
	}
	return &MACross{fast: fast, slow: slow}, nil
}

// Name returns "ma_cross"
func (ma *MACross) Name() string {
	return "ma_cross"
}

// Params returns the resolved parameters
func (ma *MACross) Params() Params {
	return Params{"fast_period": ma.fast, "slow_period": ma.slow}
}

// Generate emits signals at moving average crossovers
func (ma *MACross) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	if len(bars) <= ma.slow {
		return signals, nil
	}

	fastMA := talib.Sma(series.Closes(), ma.fast)
	slowMA := talib.Sma(series.Closes(), ma.slow)

	for day := 1; day < len(bars); day++ {
		if day < ma.slow {
			continue
		}

		if fastMA[day-1] <= slowMA[day-1] && fastMA[day] > slowMA[day] {
			signals.Buy(bars[day].Time, bars[day].Close,
				fmt.Sprintf("golden cross: SMA%d crossed above SMA%d", ma.fast, ma.slow))
		}

		if fastMA[day-1] >= slowMA[day-1] && fastMA[day] < slowMA[day] {
			signals.Sell(bars[day].Time, bars[day].Close,
				fmt.Sprintf("death cross: SMA%d crossed below SMA%d", ma.fast, ma.slow))
		}
	}

	return signals, nil
}
