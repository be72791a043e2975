package backtest

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// MaxCompareEntries bounds the strategies of one comparison
const MaxCompareEntries = 10

// CompareEntry names one strategy configuration of a comparison
type CompareEntry struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy"`
	Params   Params `json:"params"`
}

// ComparisonResult fans in the independent runs of a comparison: the
// per-strategy results, the per-metric rankings and the pairwise equity
// curve correlations
type ComparisonResult struct {
	Names        []string            `json:"names"`
	Results      []*Result           `json:"results"`
	Rankings     map[string][]string `json:"rankings"`
	Correlations map[string]float64  `json:"correlations"`
}

// Compare runs every entry through its own engine on the same series.
// Runs share nothing and execute in parallel, so the outcome is
// independent of entry order.
func Compare(series *Series, entries []CompareEntry, config RunConfig) (*ComparisonResult, error) {
	if len(entries) == 0 {
		return nil, configErrorf("no strategies to compare")
	}
	if len(entries) > MaxCompareEntries {
		return nil, configErrorf("at most %d strategies per comparison, got %d", MaxCompareEntries, len(entries))
	}

	// build all strategies first, a bad entry fails before any run starts
	strategies := make([]Strategy, len(entries))
	names := make([]string, len(entries))
	for i, entry := range entries {
		strategy, err := NewStrategy(entry.Strategy, entry.Params)
		if err != nil {
			return nil, err
		}
		strategies[i] = strategy
		names[i] = entry.Name
		if names[i] == "" {
			names[i] = strategy.Name()
		}
	}

	logrus.Infof("comparison start: %v, strategies -> %v", series.Symbol, names)

	results := make([]*Result, len(entries))
	errs := make([]error, len(entries))

	var wg sync.WaitGroup
	for i := range strategies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = NewEngine(config).Run(series, strategies[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &ComparisonResult{
		Names:        names,
		Results:      results,
		Rankings:     rankings(names, results),
		Correlations: correlations(names, results),
	}, nil
}

// rankings orders strategy names best-first per metric, nil metrics rank
// as zero
func rankings(names []string, results []*Result) map[string][]string {
	higherBetter := map[string]func(m Metrics) float64{
		"total_return_pct":  func(m Metrics) float64 { return m.TotalReturnPct },
		"annual_return_pct": func(m Metrics) float64 { return deref(m.AnnualReturnPct) },
		"sharpe_ratio":      func(m Metrics) float64 { return deref(m.SharpeRatio) },
		"win_rate":          func(m Metrics) float64 { return m.WinRate },
		"profit_factor":     func(m Metrics) float64 { return deref(m.ProfitFactor) },
	}

	ranked := make(map[string][]string, len(higherBetter)+1)
	for metric, value := range higherBetter {
		ranked[metric] = rankBy(names, results, func(m Metrics) float64 { return value(m) }, true)
	}
	// smaller drawdown magnitude is better
	ranked["max_drawdown_pct"] = rankBy(names, results, func(m Metrics) float64 { return math.Abs(m.MaxDrawdownPct) }, false)
	return ranked
}

func rankBy(names []string, results []*Result, value func(m Metrics) float64, descending bool) []string {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := value(results[order[a]].Metrics), value(results[order[b]].Metrics)
		if descending {
			return va > vb
		}
		return va < vb
	})

	out := make([]string, len(order))
	for rank, i := range order {
		out[rank] = names[i]
	}
	return out
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// correlations is the pairwise Pearson correlation of equity curves,
// pairs with undefined correlation are omitted
func correlations(names []string, results []*Result) map[string]float64 {
	out := map[string]float64{}
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			corr, ok := pearson(equityValues(results[i].Curve), equityValues(results[j].Curve))
			if !ok {
				continue
			}
			out[fmt.Sprintf("%s_vs_%s", names[i], names[j])] = math.Round(corr*10000) / 10000
		}
	}
	return out
}

func equityValues(curve []EquityPoint) []float64 {
	values := make([]float64, len(curve))
	for i, point := range curve {
		values[i] = point.Equity
	}
	return values
}

// pearson returns false when the series differ in length, are too short,
// or either has zero variance
func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}

	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
