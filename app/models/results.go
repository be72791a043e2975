package models

import (
	"encoding/json"
	"time"

	"github.com/oarkflow/xid"

	"github.com/jumpei00/gobacktest/app/backtest"
	"github.com/jumpei00/gobacktest/utils"
)

// BacktestRecord is one persisted backtest run. The metric columns are kept
// flat for listing and ranking queries, the equity curve is large so it is
// stored as a gzip compressed blob, positions and parameters as json.
type BacktestRecord struct {
	ID              int      `gorm:"primary_key" json:"-"`
	RunID           string   `gorm:"uniqueIndex" json:"run_id"`
	Timestamp       int64    `json:"timestamp"`
	Symbol          string   `json:"symbol"`
	Strategy        string   `json:"strategy"`
	Params          string   `json:"params"`
	StartTime       int64    `json:"start_time"`
	EndTime         int64    `json:"end_time"`
	InitialCapital  float64  `json:"initial_capital"`
	FinalCapital    float64  `json:"final_capital"`
	TotalReturnPct  float64  `json:"total_return_pct"`
	AnnualReturnPct *float64 `json:"annual_return_pct"`
	SharpeRatio     *float64 `json:"sharpe_ratio"`
	MaxDrawdownPct  float64  `json:"max_drawdown_pct"`
	WinRate         float64  `json:"win_rate"`
	TotalTrades     int      `json:"total_trades"`
	ProfitFactor    *float64 `json:"profit_factor"`
	TotalCommission float64  `json:"total_commission"`
	Positions       string   `json:"positions"`
	CurveBlob       string   `json:"-"`
}

// NewBacktestRecord converts an engine result to its stored form
func NewBacktestRecord(result *backtest.Result) (*BacktestRecord, error) {
	params, err := json.Marshal(result.StrategyParams)
	if err != nil {
		return nil, err
	}
	positions, err := json.Marshal(result.Positions)
	if err != nil {
		return nil, err
	}
	curve, err := json.Marshal(result.Curve)
	if err != nil {
		return nil, err
	}

	return &BacktestRecord{
		RunID:           xid.New().String(),
		Timestamp:       time.Now().Unix() * 1000,
		Symbol:          result.Symbol,
		Strategy:        result.Strategy,
		Params:          string(params),
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		InitialCapital:  result.InitialCapital,
		FinalCapital:    result.FinalCapital,
		TotalReturnPct:  result.Metrics.TotalReturnPct,
		AnnualReturnPct: result.Metrics.AnnualReturnPct,
		SharpeRatio:     result.Metrics.SharpeRatio,
		MaxDrawdownPct:  result.Metrics.MaxDrawdownPct,
		WinRate:         result.Metrics.WinRate,
		TotalTrades:     result.Metrics.TotalTrades,
		ProfitFactor:    result.Metrics.ProfitFactor,
		TotalCommission: result.Metrics.TotalCommission,
		Positions:       string(positions),
		CurveBlob:       utils.ToCompressedString(curve),
	}, nil
}

// CreateBacktestRecord creates a new stored run
func (br *BacktestRecord) CreateBacktestRecord() error {
	if err := DB.Create(br).Error; err != nil {
		return err
	}
	return nil
}

// Curve decodes the compressed equity curve of a stored run
func (br *BacktestRecord) Curve() ([]backtest.EquityPoint, error) {
	raw, err := utils.FromCompressedString(br.CurveBlob)
	if err != nil {
		return nil, err
	}

	var curve []backtest.EquityPoint
	if err := json.Unmarshal(raw, &curve); err != nil {
		return nil, err
	}
	return curve, nil
}

// DecodedPositions decodes the stored positions of a run
func (br *BacktestRecord) DecodedPositions() ([]backtest.Position, error) {
	var positions []backtest.Position
	if err := json.Unmarshal([]byte(br.Positions), &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetResultFrame returns ResultFrame including stored runs for symbol,
// newest first, an empty symbol returns every run
func GetResultFrame(symbol string, limit int) *ResultFrame {
	var records []BacktestRecord

	query := DB.Order("timestamp desc").Limit(limit)
	if symbol != "" {
		query = query.Where("Symbol = ?", symbol)
	}
	query.Find(&records)

	return &ResultFrame{Results: records}
}

// GetBacktestRecord returns the stored run for run id, nil when not found
func GetBacktestRecord(runID string) *BacktestRecord {
	var record BacktestRecord
	if err := DB.Where("run_id = ?", runID).First(&record).Error; err != nil {
		// Not Found
		return nil
	}
	return &record
}

// DeleteBacktestRecords deletes all stored runs for symbol
func DeleteBacktestRecords(symbol string) {
	DB.Delete(BacktestRecord{}, "Symbol = ?", symbol)
}
