package backtest

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// BollingerBounce is a mean-reversion strategy on Bollinger bands: it buys
// when the close touches or crosses below the lower band and sells when
// the close touches or crosses above the upper band
type BollingerBounce struct {
	period int
	stdDev float64
}

// NewBollingerBounce creates the strategy from period and std_dev
func NewBollingerBounce(params Params) (Strategy, error) {
	if err := params.ensureKnown("period", "std_dev"); err != nil {
		return nil, err
	}
	period, err := params.intValue("period", 20)
	if err != nil {
		return nil, err
	}
	stdDev, err := params.floatValue("std_dev", 2.0)
	if err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, configErrorf("period must be at least 2, got %d", period)
	}
	if stdDev <= 0 {
		return nil, configErrorf("std_dev must be positive, got %v", stdDev)
	}
	return &BollingerBounce{period: period, stdDev: stdDev}, nil
}

// Name returns "bollinger"
func (bb *BollingerBounce) Name() string {
	return "bollinger"
}

// Params returns the resolved parameters
func (bb *BollingerBounce) Params() Params {
	return Params{"period": bb.period, "std_dev": bb.stdDev}
}

// Generate emits signals when the close reaches a band
func (bb *BollingerBounce) Generate(series *Series) (*Signals, error) {
	signals := &Signals{}
	bars := series.Bars
	if len(bars) <= bb.period {
		return signals, nil
	}

	upBand, _, lowBand := talib.BBands(series.Closes(), bb.period, bb.stdDev, bb.stdDev, 0)

	for day := 1; day < len(bars); day++ {
		if day < bb.period {
			continue
		}

		if bars[day-1].Close > lowBand[day-1] && bars[day].Close <= lowBand[day] {
			signals.Buy(bars[day].Time, bars[day].Close,
				fmt.Sprintf("close reached lower band BB(%d, %v)", bb.period, bb.stdDev))
		}

		if bars[day-1].Close < upBand[day-1] && bars[day].Close >= upBand[day] {
			signals.Sell(bars[day].Time, bars[day].Close,
				fmt.Sprintf("close reached upper band BB(%d, %v)", bb.period, bb.stdDev))
		}
	}

	return signals, nil
}
