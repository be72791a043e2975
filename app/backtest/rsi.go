package backtest

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// RSIThreshold trades RSI threshold crossings: it buys when RSI drops
// below the oversold level and sells when RSI rises above the overbought
// level
type RSIThreshold struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIThreshold creates the strategy from period, oversold and overbought
func NewRSIThreshold(params Params) (Strategy, error) {
	if err := params.ensureKnown("period", "oversold", "overbought"); err != nil {
		return nil, err
	}
	period, err := params.intValue("period", 14)
	if err != nil {
		return nil, err
	}
	oversold, err := params.floatValue("oversold", 30)
	if err != nil {
		return nil, err
	}
	overbought, err := params.floatValue("overbought", 70)
	if err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, configErrorf("period must be at least 2, got %d", period)
	}
	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, configErrorf(
			"thresholds must satisfy 0 <= oversold < overbought <= 100, got %v and %v", oversold, overbought)
	}
	return &RSIThreshold{period: period, oversold: oversold, overbought: overbought}, nil
}

// Name returns "rsi"
func (rs *RSIThreshold) Name() string {
	return "rsi"
}

// Params returns the resolved parameters
func (rs *RSIThreshold) Params() Params {
	return Params{"period": rs.period, "oversold": rs.oversold, "overbought": rs.overbought}
}

// Generate emits signals at RSI threshold crossings
func (rs *RSIThreshold) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	if len(bars) <= rs.period+1 {
		return signals, nil
	}

	rsi := talib.Rsi(series.Closes(), rs.period)

	for day := 1; day < len(bars); day++ {
		// rsi[period] is the first computed value
		if day <= rs.period {
			continue
		}

		if rsi[day-1] >= rs.oversold && rsi[day] < rs.oversold {
			signals.Buy(bars[day].Time, bars[day].Close,
				fmt.Sprintf("RSI(%d) dropped below %v", rs.period, rs.oversold))
		}

		if rsi[day-1] <= rs.overbought && rsi[day] > rs.overbought {
			signals.Sell(bars[day].Time, bars[day].Close,
				fmt.Sprintf("RSI(%d) rose above %v", rs.period, rs.overbought))
		}
	}

	return signals, nil
}
