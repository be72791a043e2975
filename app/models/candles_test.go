package models_test

import (
	"github.com/jumpei00/gobacktest/app/models"
)

func (suite *ModelsTestSuite) TestCreateCandles() {
	candles := models.NewCandlesFromQuote(testQuote("VOO", 10))

	suite.NotEmpty(candles)

	models.AllDeleteCandles()
	candles.CreateCandles()
}

func (suite *ModelsTestSuite) TestGetCandleFrame() {
	cframe := models.GetCandleFrame("VOO", 120)
	time := []int64{}
	for _, t := range cframe.Candles {
		time = append(time, t.Time)
	}

	suite.Equal("VOO", cframe.Symbol)
	suite.IsIncreasing(time)
}

func (suite *ModelsTestSuite) TestLastCandleTime() {
	cframe := models.GetCandleFrame("VOO", 120)
	lastTime := cframe.Candles[len(cframe.Candles)-1].Time
	lastCandleTime, err := models.LastCandleTime()

	suite.Equal(lastTime, lastCandleTime)
	suite.Nil(err)
}

func (suite *ModelsTestSuite) TestCandleFrameSeries() {
	cframe := models.GetCandleFrame("VOO", 120)
	series, err := cframe.Series()

	suite.Nil(err)
	suite.Equal("VOO", series.Symbol)
	suite.Equal(len(cframe.Candles), series.Len())
	suite.Equal(cframe.Closes(), series.Closes())
}

func (suite *ModelsTestSuite) TestAllDeleteCandles() {
	models.AllDeleteCandles()
	cframe := models.GetCandleFrame("VOO", 10)

	suite.Empty(cframe.Candles)
}
