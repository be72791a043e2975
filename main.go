package main

import (
	"github.com/jumpei00/gobacktest/app/models"
	"github.com/jumpei00/gobacktest/app/server"
	"github.com/jumpei00/gobacktest/config"
	"github.com/jumpei00/gobacktest/log"
	"github.com/jumpei00/gobacktest/marketdata"
	"github.com/jumpei00/gobacktest/scrape"
	"github.com/sirupsen/logrus"
)

func main() {
	config.InitConfig()
	log.SetLogging()
	if err := scrape.NormalizeDataDir(config.Config.DataDir,
		"<year>_<month>_<date>.csv", "<year>-<month>-<date>.csv"); err != nil {
		logrus.Warnf("data dir normalize error: %v", err)
	}
	if err := marketdata.Init(config.Config.DataDir); err != nil {
		logrus.Fatalf("market data index error: %v", err)
	}
	if fetched, err := scrape.DownloadDailyCSV(config.Config.DataDir); err != nil {
		logrus.Warnf("daily csv download error: %v", err)
	} else if fetched {
		logrus.Infof("daily csv downloaded, rows are indexed on next start")
	}
	models.InitDB()
	server.Run()
}
