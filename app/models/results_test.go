package models_test

import (
	"github.com/jumpei00/gobacktest/app/models"
)

func (suite *ModelsTestSuite) TestCreateBacktestRecord() {
	suite.Nil(suite.Record.CreateBacktestRecord())

	models.DeleteBacktestRecords("VOO")
}

func (suite *ModelsTestSuite) TestGetResultFrame() {
	// initializing
	suite.Record.CreateBacktestRecord()

	rframe := models.GetResultFrame("VOO", 10)
	suite.Len(rframe.Results, 1)
	suite.Equal("buy_hold", rframe.Results[0].Strategy)
	suite.Equal(suite.Record.RunID, rframe.Results[0].RunID)

	rframe = models.GetResultFrame("TEST", 10)
	suite.Empty(rframe.Results)

	// an empty symbol lists every run
	rframe = models.GetResultFrame("", 10)
	suite.Len(rframe.Results, 1)

	models.DeleteBacktestRecords("VOO")
	rframe = models.GetResultFrame("VOO", 10)
	suite.Empty(rframe.Results)
}

func (suite *ModelsTestSuite) TestGetBacktestRecord() {
	suite.Record.CreateBacktestRecord()

	record := models.GetBacktestRecord(suite.Record.RunID)
	suite.NotNil(record)
	suite.Equal("VOO", record.Symbol)

	suite.Nil(models.GetBacktestRecord("missing"))

	models.DeleteBacktestRecords("VOO")
}

func (suite *ModelsTestSuite) TestBacktestRecordCurveRoundTrip() {
	suite.Record.CreateBacktestRecord()

	record := models.GetBacktestRecord(suite.Record.RunID)
	suite.Require().NotNil(record)

	curve, err := record.Curve()
	suite.Nil(err)
	suite.Len(curve, 120)
	suite.Equal(record.StartTime, curve[0].Time)
	suite.Equal(record.EndTime, curve[len(curve)-1].Time)
	suite.Equal(record.FinalCapital, curve[len(curve)-1].Equity)

	positions, err := record.DecodedPositions()
	suite.Nil(err)
	suite.Len(positions, 1)
	suite.NotNil(positions[0].Pnl)

	models.DeleteBacktestRecords("VOO")
}
