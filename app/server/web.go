package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"github.com/jumpei00/gobacktest/app/backtest"
	"github.com/jumpei00/gobacktest/app/models"
	"github.com/jumpei00/gobacktest/config"
	"github.com/jumpei00/gobacktest/marketdata"
	"github.com/jumpei00/gobacktest/stock"
)

// JSONError is json error massage
type JSONError struct {
	Error string `json:"error"`
}

func errorAPI(w http.ResponseWriter, message string, code int) {
	jsonMessage, err := json.Marshal(JSONError{Error: message})
	if err != nil {
		logrus.Warnf("error message create error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(code)
	w.Write(jsonMessage)
}

// backtestErrorAPI maps the engine error taxonomy to status codes,
// bad configuration or bad data is the caller's fault
func backtestErrorAPI(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if backtest.IsConfigError(err) || backtest.IsDataError(err) {
		code = http.StatusBadRequest
	}
	errorAPI(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	js, err := json.Marshal(v)
	if err != nil {
		logrus.Warnf("response json error: %v", err)
		errorAPI(w, "response json error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

// IndexAPIHandler returns index.html contents,
// when path is "/"
func IndexAPIHandler(w http.ResponseWriter, req *http.Request) {
	temp := template.Must(template.ParseFiles("templates/index.html"))
	temp.ExecuteTemplate(w, "index.html", nil)
}

// timeRange parses optional start/end query parameters, zero means unbounded
func timeRange(req *http.Request) (int64, int64, error) {
	var start, end int64

	if raw := req.URL.Query().Get("start"); raw != "" {
		parsed, err := dateparse.ParseAny(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("bad parameter(start): %v", raw)
		}
		start = parsed.Unix() * 1000
	}
	if raw := req.URL.Query().Get("end"); raw != "" {
		parsed, err := dateparse.ParseAny(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("bad parameter(end): %v", raw)
		}
		end = parsed.Unix() * 1000
	}
	return start, end, nil
}

func filterCandles(cframe *models.CandleFrame, start, end int64) {
	if start == 0 && end == 0 {
		return
	}
	filtered := make([]models.Candle, 0, len(cframe.Candles))
	for _, candle := range cframe.Candles {
		if start != 0 && candle.Time < start {
			continue
		}
		if end != 0 && candle.Time > end {
			continue
		}
		filtered = append(filtered, candle)
	}
	cframe.Candles = filtered
}

// CandleGetAPIHandler gets stock candle data, optionally downloading and
// storing it first, when path is "/candles"
func CandleGetAPIHandler(w http.ResponseWriter, req *http.Request) {
	logrus.Infof("candle get request: url -> %s", req.URL)

	get, _ := strconv.ParseBool(req.URL.Query().Get("get"))
	symbol := req.URL.Query().Get("symbol")
	period, err := strconv.Atoi(req.URL.Query().Get("period"))

	if symbol == "" {
		errorAPI(w, "bad parameter(symbol)", http.StatusBadRequest)
		return
	}

	if err != nil {
		errorAPI(w, "bad parameter(period)", http.StatusBadRequest)
		return
	}

	start, end, err := timeRange(req)
	if err != nil {
		errorAPI(w, err.Error(), http.StatusBadRequest)
		return
	}

	dframe := models.NewDataFrame()

	// Assembles stock data from the index
	if get {
		quote, _ := stock.GetStockData(symbol, period)
		if quote == nil || len(quote.Date) == 0 {
			logrus.Warnf("stock get error, symbol: %v", symbol)
			errorAPI(w, fmt.Sprintf("stock get error, symbol: %v", symbol), http.StatusBadRequest)
			return
		}
		// After delete existing data, store stock data in DB
		models.AllDeleteCandles()
		models.NewCandlesFromQuote(quote).CreateCandles()
		marketdata.DefaultCache.Invalidate(symbol)
	}

	dframe.AddCandleFrame(symbol, period)

	// cache the unfiltered frame for subsequent backtests
	if series, err := dframe.CandleFrame.Series(); err == nil {
		marketdata.DefaultCache.Put(symbol, series.Bars)
	}

	filterCandles(dframe.CandleFrame, start, end)

	if results, _ := strconv.ParseBool(req.URL.Query().Get("results")); results {
		dframe.AddResultFrame(symbol, 50)
	}

	writeJSON(w, dframe)
}

// BacktestRequest receives some parameters used for backtest at json,
// Definition refers to a saved strategy definition instead of Strategy/Params
type BacktestRequest struct {
	Symbol     string              `json:"symbol"`
	Period     int                 `json:"period"`
	Strategy   string              `json:"strategy"`
	Params     backtest.Params     `json:"params"`
	Definition string              `json:"definition"`
	Config     *backtest.RunConfig `json:"config"`
}

func (br *BacktestRequest) runConfig() backtest.RunConfig {
	if br.Config == nil {
		return defaultRunConfig()
	}
	return *br.Config
}

// defaultRunConfig overlays the configured backtest defaults on the
// engine's built-in ones
func defaultRunConfig() backtest.RunConfig {
	rc := backtest.DefaultRunConfig()
	if config.Config.InitialCapital > 0 {
		rc.InitialCapital = config.Config.InitialCapital
		rc.CommissionPct = config.Config.CommissionPct
		rc.SlippagePct = config.Config.SlippagePct
		rc.PositionSizePct = config.Config.PositionSizePct
	}
	return rc
}

// candleSeries reads the bars of one run through the process-wide cache,
// a miss falls back to the stored candles and fills the cache
func candleSeries(symbol string, period int) (*backtest.Series, error) {
	if period > 0 {
		if bars := marketdata.DefaultCache.Bars(symbol, period); len(bars) == period {
			return backtest.NewSeries(symbol, bars)
		}
	}

	series, err := models.GetCandleFrame(symbol, period).Series()
	if err != nil {
		return nil, err
	}
	marketdata.DefaultCache.Put(symbol, series.Bars)
	return series, nil
}

func (br *BacktestRequest) strategy() (backtest.Strategy, error) {
	if br.Definition != "" {
		def := models.GetStrategyDef(br.Definition)
		if def == nil {
			return nil, fmt.Errorf("unknown strategy definition: %v", br.Definition)
		}
		return def.Build()
	}
	return backtest.NewStrategy(br.Strategy, br.Params)
}

// BacktestResponse is the stored run id together with the engine result
type BacktestResponse struct {
	RunID string `json:"run_id"`
	*backtest.Result
}

// BacktestAPIHandler executes one backtest, persists and returns the result,
// when path is "/backtest"
func BacktestAPIHandler(w http.ResponseWriter, req *http.Request) {
	logrus.Info("backtest request")
	dec := json.NewDecoder(req.Body)

	var request BacktestRequest
	if err := dec.Decode(&request); err != nil {
		logrus.Warnf("backtest params error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest params error: %v", err), http.StatusBadRequest)
		return
	}

	if request.Symbol == "" {
		errorAPI(w, "bad parameter(symbol)", http.StatusBadRequest)
		return
	}

	strategy, err := request.strategy()
	if err != nil {
		logrus.Warnf("backtest strategy error: %v", err)
		backtestErrorAPI(w, err)
		return
	}

	series, err := candleSeries(request.Symbol, request.Period)
	if err != nil {
		logrus.Warnf("backtest series error: %v", err)
		backtestErrorAPI(w, err)
		return
	}

	result, err := backtest.NewEngine(request.runConfig()).Run(series, strategy)
	if err != nil {
		logrus.Warnf("backtest error: %v", err)
		backtestErrorAPI(w, err)
		return
	}

	record, err := models.NewBacktestRecord(result)
	if err != nil {
		logrus.Warnf("backtest record error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest record error: %v", err), http.StatusInternalServerError)
		return
	}
	if err := record.CreateBacktestRecord(); err != nil {
		logrus.Warnf("backtest store error: %v", err)
		errorAPI(w, fmt.Sprintf("backtest store error: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, BacktestResponse{RunID: record.RunID, Result: result})
}

// CompareRequest receives the strategies of one comparison at json
type CompareRequest struct {
	Symbol     string                  `json:"symbol"`
	Period     int                     `json:"period"`
	Strategies []backtest.CompareEntry `json:"strategies"`
	Config     *backtest.RunConfig     `json:"config"`
}

// CompareAPIHandler runs several strategies over the same candles and
// returns rankings and correlations, when path is "/compare"
func CompareAPIHandler(w http.ResponseWriter, req *http.Request) {
	logrus.Info("compare request")
	dec := json.NewDecoder(req.Body)

	var request CompareRequest
	if err := dec.Decode(&request); err != nil {
		logrus.Warnf("compare params error: %v", err)
		errorAPI(w, fmt.Sprintf("compare params error: %v", err), http.StatusBadRequest)
		return
	}

	if request.Symbol == "" {
		errorAPI(w, "bad parameter(symbol)", http.StatusBadRequest)
		return
	}

	series, err := candleSeries(request.Symbol, request.Period)
	if err != nil {
		logrus.Warnf("compare series error: %v", err)
		backtestErrorAPI(w, err)
		return
	}

	runConfig := defaultRunConfig()
	if request.Config != nil {
		runConfig = *request.Config
	}

	comparison, err := backtest.Compare(series, request.Strategies, runConfig)
	if err != nil {
		logrus.Warnf("compare error: %v", err)
		backtestErrorAPI(w, err)
		return
	}

	writeJSON(w, comparison)
}

// StrategyInfo is one registry entry of the strategy listing
type StrategyInfo struct {
	Name   string          `json:"name"`
	Params backtest.Params `json:"params"`
}

// StrategyListAPIHandler lists the available strategies with their default
// parameters, when path is "/backtest/strategies"
func StrategyListAPIHandler(w http.ResponseWriter, req *http.Request) {
	infos := []StrategyInfo{}
	for _, name := range backtest.StrategyNames() {
		params, err := backtest.DefaultParams(name)
		if err != nil {
			continue
		}
		infos = append(infos, StrategyInfo{Name: name, Params: params})
	}

	writeJSON(w, infos)
}

// StrategyDefRequest receives a saved strategy definition at json
type StrategyDefRequest struct {
	Name        string          `json:"name"`
	Strategy    string          `json:"strategy"`
	Params      backtest.Params `json:"params"`
	Description string          `json:"description"`
}

// StrategyDefAPIHandler manages saved strategy definitions,
// when path is "/strategies"
func StrategyDefAPIHandler(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		writeJSON(w, models.GetStrategyFrame())

	case http.MethodPost:
		var request StrategyDefRequest
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			errorAPI(w, fmt.Sprintf("strategy params error: %v", err), http.StatusBadRequest)
			return
		}

		def, err := models.NewStrategyDef(request.Name, request.Strategy, request.Params, request.Description)
		if err != nil {
			backtestErrorAPI(w, err)
			return
		}
		if err := def.CreateStrategyDef(); err != nil {
			errorAPI(w, fmt.Sprintf("strategy store error: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, def)

	case http.MethodDelete:
		name := req.URL.Query().Get("name")
		if name == "" {
			errorAPI(w, "bad parameter(name)", http.StatusBadRequest)
			return
		}
		models.DeleteStrategyDef(name)
		w.WriteHeader(http.StatusNoContent)

	default:
		errorAPI(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ResultsAPIHandler lists stored backtest runs, when path is "/results"
func ResultsAPIHandler(w http.ResponseWriter, req *http.Request) {
	symbol := req.URL.Query().Get("symbol")
	limit, err := strconv.Atoi(req.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	writeJSON(w, models.GetResultFrame(symbol, limit))
}

// Run starts webserver
func Run() {
	logrus.Info("server start")
	fs := http.FileServer(http.Dir("./static"))
	http.Handle("/static/", http.StripPrefix("/static/", fs))
	http.HandleFunc("/", IndexAPIHandler)
	http.HandleFunc("/candles", CandleGetAPIHandler)
	http.HandleFunc("/backtest", BacktestAPIHandler)
	http.HandleFunc("/backtest/strategies", StrategyListAPIHandler)
	http.HandleFunc("/compare", CompareAPIHandler)
	http.HandleFunc("/strategies", StrategyDefAPIHandler)
	http.HandleFunc("/results", ResultsAPIHandler)
	logrus.Fatalln(http.ListenAndServe(fmt.Sprintf(":%d", config.Config.Port), nil))
}
