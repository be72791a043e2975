package models

import (
	"encoding/json"
	"time"

	"github.com/jumpei00/gobacktest/app/backtest"
)

// StrategyDef is a saved strategy configuration: a named strategy plus its
// parameters, reusable across backtests and comparisons
type StrategyDef struct {
	ID          int    `gorm:"primary_key" json:"-"`
	Timestamp   int64  `json:"timestamp"`
	Name        string `gorm:"uniqueIndex" json:"name"`
	Strategy    string `json:"strategy"`
	Params      string `json:"params"`
	Description string `json:"description,omitempty"`
}

// NewStrategyDef validates the configuration against the strategy registry
// and returns the storable definition
func NewStrategyDef(name, strategy string, params backtest.Params, description string) (*StrategyDef, error) {
	if name == "" {
		name = strategy
	}

	// building the strategy validates name and parameter ranges
	built, err := backtest.NewStrategy(strategy, params)
	if err != nil {
		return nil, err
	}

	resolved, err := json.Marshal(built.Params())
	if err != nil {
		return nil, err
	}

	return &StrategyDef{
		Timestamp:   time.Now().Unix() * 1000,
		Name:        name,
		Strategy:    built.Name(),
		Params:      string(resolved),
		Description: description,
	}, nil
}

// CreateStrategyDef creates the definition, an existing definition of the
// same name is replaced
func (sd *StrategyDef) CreateStrategyDef() error {
	DB.Delete(StrategyDef{}, "Name = ?", sd.Name)
	if err := DB.Create(sd).Error; err != nil {
		return err
	}
	return nil
}

// Build constructs the runnable strategy of the definition
func (sd *StrategyDef) Build() (backtest.Strategy, error) {
	params := backtest.Params{}
	if sd.Params != "" {
		if err := json.Unmarshal([]byte(sd.Params), &params); err != nil {
			return nil, err
		}
	}
	return backtest.NewStrategy(sd.Strategy, params)
}

// GetStrategyFrame returns StrategyFrame including every saved definition
func GetStrategyFrame() *StrategyFrame {
	var defs []StrategyDef
	DB.Order("name").Find(&defs)
	return &StrategyFrame{Strategies: defs}
}

// GetStrategyDef returns the saved definition for name, nil when not found
func GetStrategyDef(name string) *StrategyDef {
	var def StrategyDef
	if err := DB.Where("Name = ?", name).First(&def).Error; err != nil {
		// Not Found
		return nil
	}
	return &def
}

// DeleteStrategyDef deletes the saved definition for name
func DeleteStrategyDef(name string) {
	DB.Delete(StrategyDef{}, "Name = ?", name)
}
