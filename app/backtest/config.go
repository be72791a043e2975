package backtest

// RunConfig is the immutable input of one engine run
type RunConfig struct {
	InitialCapital float64 `json:"initial_capital"`
	// Commission is a flat fee charged on entry and again on exit.
	// CommissionPct overrides the flat fee when both are configured.
	Commission    float64 `json:"commission"`
	CommissionPct float64 `json:"commission_pct"`
	// Slippage always works against the trader: it raises the buy fill
	// and lowers the sell fill.
	Slippage    float64 `json:"slippage"`
	SlippagePct float64 `json:"slippage_pct"`
	// PositionSizePct is the fraction of cash committed per entry, (0, 1]
	PositionSizePct float64 `json:"position_size_pct"`
}

// DefaultRunConfig returns the configuration used when a request omits one
func DefaultRunConfig() RunConfig {
	return RunConfig{
		InitialCapital:  10000.0,
		Commission:      0.0,
		CommissionPct:   0.001,
		Slippage:        0.0,
		SlippagePct:     0.0,
		PositionSizePct: 1.0,
	}
}

// Validate checks the configuration before a run starts
func (c RunConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return configErrorf("initial_capital must be positive, got %v", c.InitialCapital)
	}
	if c.PositionSizePct <= 0 || c.PositionSizePct > 1 {
		return configErrorf("position_size_pct must be in (0, 1], got %v", c.PositionSizePct)
	}
	if c.Commission < 0 {
		return configErrorf("commission must not be negative, got %v", c.Commission)
	}
	if c.CommissionPct < 0 || c.CommissionPct > 1 {
		return configErrorf("commission_pct must be in [0, 1], got %v", c.CommissionPct)
	}
	if c.Slippage < 0 {
		return configErrorf("slippage must not be negative, got %v", c.Slippage)
	}
	if c.SlippagePct < 0 || c.SlippagePct > 1 {
		return configErrorf("slippage_pct must be in [0, 1], got %v", c.SlippagePct)
	}
	return nil
}

// commissionFor is the commission charged on a fill of the given value,
// the percentage model takes precedence over the flat fee
func (c RunConfig) commissionFor(value float64) float64 {
	if c.CommissionPct > 0 {
		return value * c.CommissionPct
	}
	return c.Commission
}
