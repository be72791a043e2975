package backtest

import (
	"sort"
	"strings"

	"github.com/oarkflow/convert"
)

// Strategy turns a price series into an alternating buy/sell signal
// sequence. Implementations are pure: the same series and parameters
// always produce the same signals.
type Strategy interface {
	Name() string
	Params() Params
	Generate(series *Series) (*Signals, error)
}

// Params are the named numeric parameters of one strategy
type Params map[string]interface{}

func (p Params) intValue(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	i, ok := convert.ToInt(v)
	if !ok {
		return 0, configErrorf("parameter %q must be an integer, got %v", key, v)
	}
	return i, nil
}

func (p Params) floatValue(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := convert.ToFloat64(v)
	if !ok {
		return 0, configErrorf("parameter %q must be numeric, got %v", key, v)
	}
	return f, nil
}

func (p Params) ensureKnown(keys ...string) error {
	for key := range p {
		known := false
		for _, k := range keys {
			if key == k {
				known = true
				break
			}
		}
		if !known {
			return configErrorf("unknown parameter %q, valid parameters: %s", key, strings.Join(keys, ", "))
		}
	}
	return nil
}

// Builder constructs a Strategy from raw request parameters
type Builder func(params Params) (Strategy, error)

// registry is an explicit table of every available strategy
var registry = map[string]Builder{
	"buy_hold":  NewBuyAndHold,
	"ma_cross":  NewMACross,
	"rsi":       NewRSIThreshold,
	"macd":      NewMACDCross,
	"bollinger": NewBollingerBounce,
	"zscore":    NewZScore,
}

// NewStrategy creates the named strategy, the name is case-insensitive
func NewStrategy(name string, params Params) (Strategy, error) {
	builder, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, configErrorf("unknown strategy %q, available: %s", name, strings.Join(StrategyNames(), ", "))
	}
	if params == nil {
		params = Params{}
	}
	return builder(params)
}

// StrategyNames returns the sorted names of all registered strategies
func StrategyNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultParams returns the resolved default parameters of the named
// strategy, used by the strategy listing endpoint
func DefaultParams(name string) (Params, error) {
	strategy, err := NewStrategy(name, nil)
	if err != nil {
		return nil, err
	}
	return strategy.Params(), nil
}
