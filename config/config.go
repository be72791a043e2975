package config

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config represents config info
var Config ConfList

// ConfList has contents of config.ini
type ConfList struct {
	DBdriver string
	DBname   string
	Port     int
	IP       string
	DataDir  string
	LogLevel string

	// backtest defaults applied when a request omits its run configuration
	InitialCapital  float64
	CommissionPct   float64
	SlippagePct     float64
	PositionSizePct float64
}

// InitConfig initializes config settings
func InitConfig() {
	conf, err := ini.Load("config.ini")
	if err != nil {
		logrus.Warnf("init file open error: %v", err)
	}

	Config = ConfList{
		DBdriver:        conf.Section("db").Key("driver").String(),
		DBname:          conf.Section("db").Key("name").String(),
		Port:            conf.Section("web").Key("port").MustInt(),
		IP:              conf.Section("web").Key("ip").String(),
		DataDir:         conf.Section("data").Key("dir").MustString("./data/date"),
		LogLevel:        conf.Section("log").Key("level").MustString("info"),
		InitialCapital:  conf.Section("backtest").Key("initial_capital").MustFloat64(10000),
		CommissionPct:   conf.Section("backtest").Key("commission_pct").MustFloat64(0.001),
		SlippagePct:     conf.Section("backtest").Key("slippage_pct").MustFloat64(0),
		PositionSizePct: conf.Section("backtest").Key("position_size_pct").MustFloat64(1.0),
	}
}
