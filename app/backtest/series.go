package backtest

// Bar is one daily OHLCV record, time is Unixtime in milliseconds
// the same as the frontend chart expects
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Series is the ordered price history of one symbol, read-only to the
// engine and the strategies
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewSeries is constructor of Series, bar times must be strictly increasing,
// otherwise a data integrity error is returned
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time <= bars[i-1].Time {
			return nil, dataErrorf(
				"bar times must be strictly increasing: bar %d (%d) is not after %d", i, bars[i].Time, bars[i-1].Time)
		}
	}
	return &Series{Symbol: symbol, Bars: bars}, nil
}

// Len is the number of bars
func (s *Series) Len() int {
	return len(s.Bars)
}

// Closes is close prices of bars
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}
	return closes
}

// Times is bar times
func (s *Series) Times() []int64 {
	times := make([]int64, len(s.Bars))
	for i, bar := range s.Bars {
		times[i] = bar.Time
	}
	return times
}
