package backtest

import "math"

const (
	millisPerDay = 24 * 60 * 60 * 1000
	tradingDays  = 252
	daysPerYear  = 365.25
)

// Metrics is the performance aggregate of one run, derived entirely from
// the equity curve and the closed positions. Pointer fields are nil when
// the statistic is undefined: Sharpe with fewer than two daily returns or
// zero variance, profit factor without losing trades, annual return over
// zero elapsed days. Drawdowns are reported as positive magnitudes.
type Metrics struct {
	TotalReturn     float64  `json:"total_return"`
	TotalReturnPct  float64  `json:"total_return_pct"`
	AnnualReturnPct *float64 `json:"annual_return_pct"`
	SharpeRatio     *float64 `json:"sharpe_ratio"`
	MaxDrawdown     float64  `json:"max_drawdown"`
	MaxDrawdownPct  float64  `json:"max_drawdown_pct"`
	WinRate         float64  `json:"win_rate"`
	TotalTrades     int      `json:"total_trades"`
	WinningTrades   int      `json:"winning_trades"`
	LosingTrades    int      `json:"losing_trades"`
	AvgWin          float64  `json:"avg_win"`
	AvgLoss         float64  `json:"avg_loss"`
	ProfitFactor    *float64 `json:"profit_factor"`
	TotalCommission float64  `json:"total_commission"`
}

// ComputeMetrics derives the performance aggregate of one run
func ComputeMetrics(curve []EquityPoint, positions []Position, config RunConfig) Metrics {
	final := config.InitialCapital
	if len(curve) > 0 {
		final = curve[len(curve)-1].Equity
	}

	metrics := Metrics{
		TotalReturn:    final - config.InitialCapital,
		TotalReturnPct: (final - config.InitialCapital) / config.InitialCapital * 100,
	}

	if len(curve) > 1 {
		days := float64(curve[len(curve)-1].Time-curve[0].Time) / millisPerDay
		if days > 0 {
			annual := (math.Pow(final/config.InitialCapital, daysPerYear/days) - 1) * 100
			metrics.AnnualReturnPct = &annual
		}
	}

	var winSum, lossSum float64
	for _, position := range positions {
		metrics.TotalCommission += position.CommissionPaid
		if position.Status != CLOSED || position.Pnl == nil {
			continue
		}
		metrics.TotalTrades++
		switch {
		case *position.Pnl > 0:
			metrics.WinningTrades++
			winSum += *position.Pnl
		case *position.Pnl < 0:
			metrics.LosingTrades++
			lossSum += *position.Pnl
		}
	}

	if metrics.TotalTrades > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	}
	if metrics.WinningTrades > 0 {
		metrics.AvgWin = winSum / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AvgLoss = lossSum / float64(metrics.LosingTrades)
	}
	if lossSum < 0 {
		profitFactor := winSum / math.Abs(lossSum)
		metrics.ProfitFactor = &profitFactor
	}

	metrics.MaxDrawdown, metrics.MaxDrawdownPct = maxDrawdown(curve)
	metrics.SharpeRatio = sharpeRatio(dailyReturns(curve))

	return metrics
}

// maxDrawdown is the largest peak-to-trough decline of the equity curve,
// the percentage is relative to the peak at the time
func maxDrawdown(curve []EquityPoint) (float64, float64) {
	if len(curve) == 0 {
		return 0, 0
	}

	peak := curve[0].Equity
	maxDD := 0.0
	maxDDPct := 0.0

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}

		dd := peak - point.Equity
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}

	return maxDD, maxDDPct
}

// dailyReturns is the bar-to-bar relative change of the equity curve
func dailyReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].Equity == 0 {
			continue
		}
		returns = append(returns, curve[i].Equity/curve[i-1].Equity-1)
	}
	return returns
}

// sharpeRatio annualizes mean over standard deviation of daily returns,
// nil when fewer than two returns or zero variance
func sharpeRatio(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	if variance == 0 {
		return nil
	}

	sharpe := mean / math.Sqrt(variance) * math.Sqrt(tradingDays)
	return &sharpe
}
