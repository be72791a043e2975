package models

import (
	"github.com/jumpei00/gobacktest/app/backtest"
)

// DataFrame is data frame including candles, backtest results, strategy definitions
type DataFrame struct {
	*CandleFrame
	*ResultFrame
	*StrategyFrame
}

// NewDataFrame is constructor of DataFrame
func NewDataFrame() *DataFrame {
	return &DataFrame{}
}

// AddCandleFrame adds CandleFrame in DataFrame
func (dframe *DataFrame) AddCandleFrame(symbol string, limit int) {
	dframe.CandleFrame = GetCandleFrame(symbol, limit)
}

// AddResultFrame adds ResultFrame in DataFrame
func (dframe *DataFrame) AddResultFrame(symbol string, limit int) {
	dframe.ResultFrame = GetResultFrame(symbol, limit)
}

// AddStrategyFrame adds StrategyFrame in DataFrame
func (dframe *DataFrame) AddStrategyFrame() {
	dframe.StrategyFrame = GetStrategyFrame()
}

// ResultFrame is stored backtest results data frame
type ResultFrame struct {
	Results []BacktestRecord `json:"results,omitempty"`
}

// StrategyFrame is saved strategy definitions data frame
type StrategyFrame struct {
	Strategies []StrategyDef `json:"strategies,omitempty"`
}

// CandleFrame is candle data frame
type CandleFrame struct {
	Symbol  string   `json:"symbol,omitempty"`
	Candles []Candle `json:"candles,omitempty"`
}

// Opens is open prices of candles
func (cframe *CandleFrame) Opens() []float64 {
	open := make([]float64, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		open[i] = candle.Open
	}
	return open
}

// Highs is high prices of candles
func (cframe *CandleFrame) Highs() []float64 {
	high := make([]float64, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		high[i] = candle.High
	}
	return high
}

// Lows is low prices of candles
func (cframe *CandleFrame) Lows() []float64 {
	low := make([]float64, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		low[i] = candle.Low
	}
	return low
}

// Closes is close prices of candles
func (cframe *CandleFrame) Closes() []float64 {
	close := make([]float64, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		close[i] = candle.Close
	}
	return close
}

// Volumes is volume prices of candles
func (cframe *CandleFrame) Volumes() []float64 {
	volume := make([]float64, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		volume[i] = candle.Volume
	}
	return volume
}

// Series converts the frame to a backtest price series
func (cframe *CandleFrame) Series() (*backtest.Series, error) {
	bars := make([]backtest.Bar, len(cframe.Candles))
	for i, candle := range cframe.Candles {
		bars[i] = backtest.Bar{
			Time:   candle.Time,
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		}
	}
	return backtest.NewSeries(cframe.Symbol, bars)
}
