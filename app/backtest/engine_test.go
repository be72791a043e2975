package backtest_test

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/jumpei00/gobacktest/app/backtest"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

// zeroCost keeps commission and slippage out of the arithmetic
func zeroCost(capital float64) backtest.RunConfig {
	return backtest.RunConfig{
		InitialCapital:  capital,
		PositionSizePct: 1.0,
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	assert := assert.New(t)
	series := seriesFromCloses(100, 110)

	for _, config := range []backtest.RunConfig{
		{InitialCapital: 0, PositionSizePct: 1},
		{InitialCapital: -100, PositionSizePct: 1},
		{InitialCapital: 1000, PositionSizePct: 0},
		{InitialCapital: 1000, PositionSizePct: 1.5},
		{InitialCapital: 1000, PositionSizePct: 1, Commission: -1},
		{InitialCapital: 1000, PositionSizePct: 1, CommissionPct: 1.5},
		{InitialCapital: 1000, PositionSizePct: 1, Slippage: -0.5},
		{InitialCapital: 1000, PositionSizePct: 1, SlippagePct: -0.1},
	} {
		_, err := backtest.NewEngine(config).RunSignals(series, nil)
		assert.NotNil(err)
		assert.True(backtest.IsConfigError(err))
	}
}

func TestRunRejectsBadSignals(t *testing.T) {
	assert := assert.New(t)
	series := seriesFromCloses(100, 110, 120)

	// dated outside the series
	_, err := backtest.NewEngine(zeroCost(1000)).RunSignals(series, []backtest.Signal{
		{Time: 42, Kind: backtest.BUY, Price: 100},
	})
	assert.NotNil(err)
	assert.True(backtest.IsDataError(err))

	// out of chronological order
	_, err = backtest.NewEngine(zeroCost(1000)).RunSignals(series, []backtest.Signal{
		{Time: dayMillis, Kind: backtest.BUY, Price: 110},
		{Time: 0, Kind: backtest.SELL, Price: 100},
	})
	assert.NotNil(err)
	assert.True(backtest.IsDataError(err))

	// unknown kind
	_, err = backtest.NewEngine(zeroCost(1000)).RunSignals(series, []backtest.Signal{
		{Time: 0, Kind: "SHRUG", Price: 100},
	})
	assert.NotNil(err)
	assert.True(backtest.IsDataError(err))

	// empty series
	empty := &backtest.Series{Symbol: "VOO"}
	_, err = backtest.NewEngine(zeroCost(1000)).RunSignals(empty, nil)
	assert.NotNil(err)
	assert.True(backtest.IsDataError(err))
}

func TestRunWithoutSignalsStaysFlat(t *testing.T) {
	assert := assert.New(t)
	series := seriesFromCloses(100, 110, 120, 130)

	result, err := backtest.NewEngine(zeroCost(5000)).RunSignals(series, nil)
	assert.Nil(err)

	assert.Len(result.Curve, 4)
	for _, point := range result.Curve {
		assert.Equal(5000.0, point.Equity)
		assert.Equal(5000.0, point.Cash)
		assert.Equal(0.0, point.ReturnPct)
	}

	assert.Empty(result.Positions)
	assert.Equal(5000.0, result.FinalCapital)
	assert.Equal(0, result.Metrics.TotalTrades)
	assert.Equal(0.0, result.Metrics.WinRate)
	assert.Nil(result.Metrics.ProfitFactor)
	assert.Nil(result.Metrics.SharpeRatio)
	assert.Equal(0.0, result.Metrics.MaxDrawdownPct)
}

func TestRunLosingRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// buy at 100 on the first bar, sell at 90 on the last: ten shares,
	// a 100 loss and 900 final equity
	series := seriesFromCloses(100, 110, 90)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
		{Time: 2 * dayMillis, Kind: backtest.SELL, Price: 90},
	}

	result, err := backtest.NewEngine(zeroCost(1000)).RunSignals(series, signals)
	assert.Nil(err)

	assert.Len(result.Positions, 1)
	position := result.Positions[0]
	assert.Equal(100.0, position.EntryPrice)
	assert.Equal(10, position.Quantity)
	assert.Equal(backtest.CLOSED, position.Status)
	assert.Equal(90.0, *position.ExitPrice)
	assert.Equal(-100.0, *position.Pnl)
	assert.Equal(-10.0, *position.PnlPct)

	assert.Equal(900.0, result.FinalCapital)
	assert.Equal([]float64{1000, 1100, 900}, equities(result.Curve))
	assert.Equal(-100.0, result.Metrics.TotalReturn)
	assert.Equal(-10.0, result.Metrics.TotalReturnPct)
	assert.Equal(200.0, result.Metrics.MaxDrawdown)
	assert.InDelta(200.0/1100.0*100, result.Metrics.MaxDrawdownPct, 1e-9)
}

func equities(curve []backtest.EquityPoint) []float64 {
	out := make([]float64, len(curve))
	for i, point := range curve {
		out[i] = point.Equity
	}
	return out
}

func TestRunBuyAndHoldRoundTrip(t *testing.T) {
	assert := assert.New(t)

	series := seriesFromCloses(100, 105, 110, 115, 120)
	strategy, err := backtest.NewStrategy("buy_hold", nil)
	assert.Nil(err)

	result, err := backtest.NewEngine(zeroCost(1000)).Run(series, strategy)
	assert.Nil(err)

	assert.Len(result.Positions, 1)
	position := result.Positions[0]
	assert.Equal(int64(0), position.EntryTime)
	assert.Equal(4*dayMillis, *position.ExitTime)
	assert.Equal(backtest.CLOSED, position.Status)
	assert.True(result.Metrics.TotalReturnPct > 0)
	assert.Equal("buy_hold", result.Strategy)
}

func TestRunSkipsUnaffordableBuy(t *testing.T) {
	assert := assert.New(t)

	// fifty of capital cannot buy one 100 share, the signal is skipped
	// and the run completes
	series := seriesFromCloses(100, 110, 120)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
	}

	result, err := backtest.NewEngine(zeroCost(50)).RunSignals(series, signals)
	assert.Nil(err)
	assert.Empty(result.Positions)
	assert.Equal(50.0, result.FinalCapital)
	assert.Equal(0, result.Metrics.TotalTrades)
}

func TestRunSkipsDoubledBuyAndStraySell(t *testing.T) {
	assert := assert.New(t)

	series := seriesFromCloses(100, 100, 100, 100)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.SELL, Price: 100}, // flat, skipped
		{Time: dayMillis, Kind: backtest.BUY, Price: 100},
		{Time: 2 * dayMillis, Kind: backtest.BUY, Price: 100}, // in position, skipped
		{Time: 3 * dayMillis, Kind: backtest.SELL, Price: 100},
	}

	result, err := backtest.NewEngine(zeroCost(1000)).RunSignals(series, signals)
	assert.Nil(err)
	assert.Len(result.Positions, 1)
	assert.Equal(dayMillis, result.Positions[0].EntryTime)
}

func TestRunForcesLiquidationAtSeriesEnd(t *testing.T) {
	assert := assert.New(t)

	series := seriesFromCloses(100, 110, 120)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
	}

	result, err := backtest.NewEngine(zeroCost(1000)).RunSignals(series, signals)
	assert.Nil(err)

	assert.Len(result.Positions, 1)
	position := result.Positions[0]
	assert.Equal(backtest.CLOSED, position.Status)
	assert.Equal(2*dayMillis, *position.ExitTime)
	assert.Equal(120.0, *position.ExitPrice)
	assert.Equal(200.0, *position.Pnl)

	// the final equity point reflects the liquidation
	last := result.Curve[len(result.Curve)-1]
	assert.Equal(result.FinalCapital, last.Equity)
	assert.Equal(result.FinalCapital, last.Cash)
	assert.Equal(1200.0, result.FinalCapital)
}

func TestRunPercentageCommissionOverridesFlat(t *testing.T) {
	assert := assert.New(t)

	config := backtest.RunConfig{
		InitialCapital:  1000,
		Commission:      5,
		CommissionPct:   0.01,
		PositionSizePct: 1.0,
	}
	series := seriesFromCloses(100, 100)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
		{Time: dayMillis, Kind: backtest.SELL, Price: 100},
	}

	result, err := backtest.NewEngine(config).RunSignals(series, signals)
	assert.Nil(err)

	// sizing solves nine shares under the one percent fee, the five flat
	// fee is ignored on both fills
	assert.Len(result.Positions, 1)
	position := result.Positions[0]
	assert.Equal(9, position.Quantity)
	assert.InDelta(18.0, position.CommissionPaid, 1e-9)
	assert.InDelta(-18.0, *position.Pnl, 1e-9)
	assert.InDelta(982.0, result.FinalCapital, 1e-9)
	assert.InDelta(18.0, result.Metrics.TotalCommission, 1e-9)
}

func TestRunFlatCommissionCharged(t *testing.T) {
	assert := assert.New(t)

	config := backtest.RunConfig{
		InitialCapital:  1010,
		Commission:      5,
		PositionSizePct: 1.0,
	}
	series := seriesFromCloses(100, 100)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
		{Time: dayMillis, Kind: backtest.SELL, Price: 100},
	}

	result, err := backtest.NewEngine(config).RunSignals(series, signals)
	assert.Nil(err)

	position := result.Positions[0]
	assert.Equal(10, position.Quantity)
	assert.InDelta(10.0, position.CommissionPaid, 1e-9)
	assert.InDelta(-10.0, *position.Pnl, 1e-9)
	assert.InDelta(1000.0, result.FinalCapital, 1e-9)
}

func TestRunSlippageWorksAgainstTrader(t *testing.T) {
	assert := assert.New(t)

	config := backtest.RunConfig{
		InitialCapital:  1100,
		SlippagePct:     0.1,
		PositionSizePct: 1.0,
	}
	series := seriesFromCloses(100, 100)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
		{Time: dayMillis, Kind: backtest.SELL, Price: 100},
	}

	result, err := backtest.NewEngine(config).RunSignals(series, signals)
	assert.Nil(err)

	position := result.Positions[0]
	assert.InDelta(110.0, position.EntryPrice, 1e-9) // fill above the signal price
	assert.InDelta(90.0, *position.ExitPrice, 1e-9)  // fill below the signal price
	assert.Equal(10, position.Quantity)
	assert.InDelta(-200.0, *position.Pnl, 1e-9)
}

func TestRunPositionSizeFraction(t *testing.T) {
	assert := assert.New(t)

	config := backtest.RunConfig{
		InitialCapital:  1000,
		PositionSizePct: 0.5,
	}
	series := seriesFromCloses(100, 100)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 100},
	}

	result, err := backtest.NewEngine(config).RunSignals(series, signals)
	assert.Nil(err)

	// half the cash buys five whole shares
	assert.Equal(5, result.Positions[0].Quantity)
	assert.Equal(1000.0, result.FinalCapital)
}

func TestRunPnlIdentity(t *testing.T) {
	assert := assert.New(t)

	config := backtest.RunConfig{
		InitialCapital:  10000,
		CommissionPct:   0.001,
		SlippagePct:     0.002,
		PositionSizePct: 0.8,
	}
	series := seriesFromCloses(50, 55, 60, 52, 58, 61)
	signals := []backtest.Signal{
		{Time: 0, Kind: backtest.BUY, Price: 50},
		{Time: 3 * dayMillis, Kind: backtest.SELL, Price: 52},
		{Time: 4 * dayMillis, Kind: backtest.BUY, Price: 58},
	}

	result, err := backtest.NewEngine(config).RunSignals(series, signals)
	assert.Nil(err)
	assert.Len(result.Positions, 2)

	for _, position := range result.Positions {
		assert.Equal(backtest.CLOSED, position.Status)
		expected := *position.ExitValue - position.EntryValue - position.CommissionPaid
		assert.InDelta(expected, *position.Pnl, 1e-9)
		assert.InDelta(*position.Pnl/position.EntryValue*100, *position.PnlPct, 1e-9)
	}
}
