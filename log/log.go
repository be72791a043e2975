package log

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jumpei00/gobacktest/config"
)

// SetLogging sets log using in this application
func SetLogging() {
	level, err := logrus.ParseLevel(config.Config.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stdout)
}
