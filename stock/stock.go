package stock

import (
	"fmt"
	"time"

	"github.com/markcheno/go-quote"
	"github.com/oarkflow/search"

	"github.com/jumpei00/gobacktest/marketdata"
)

const timeFormat = "2006-01-02"

// GetStockData assembles daily stockdata for symbol(VOO, SPY...etc) during today ~ before dayPeriod
// from the indexed market data. dayPeriod must be day(1day, 30days...etc).
// A symbol without indexed rows returns an empty quote, not an error.
func GetStockData(symbol string, dayPeriod int) (*quote.Quote, error) {
	endDay := time.Now()
	startDay := endDay.AddDate(0, 0, -dayPeriod)
	engine, err := search.GetEngine[map[string]any](marketdata.EngineName)
	if err != nil {
		return nil, err
	}
	result, err := engine.Search(&search.Params{
		Query:      symbol,
		Properties: []string{"Symbol"},
		Condition:  fmt.Sprintf("Date BETWEEN '%s' AND '%s'", startDay.Format(timeFormat), endDay.Format(timeFormat)),
	})
	if err != nil {
		return nil, err
	}
	return GetQuote[map[string]any](symbol, result), nil
}

// GetQuote converts a search result to a quote
func GetQuote[T any](symbol string, result search.Result[T]) *quote.Quote {
	numrows := result.FilteredTotal
	qt := quote.NewQuote(symbol, numrows)
	for i, row := range result.Hits {
		switch row := any(row.Data).(type) {
		case map[string]any:
			// Parse row of data
			d, _ := time.Parse(timeFormat, row["Date"].(string))
			o, _ := row["Open"].(float64)
			h, _ := row["High"].(float64)
			l, _ := row["Low"].(float64)
			c, _ := row["Close"].(float64)
			v, _ := row["Volume"].(float64)

			qt.Date[i] = d
			qt.Open[i] = o
			qt.High[i] = h
			qt.Low[i] = l
			qt.Close[i] = c
			qt.Volume[i] = v
		}
	}
	return &qt
}
