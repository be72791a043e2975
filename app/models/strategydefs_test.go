package models_test

import (
	"github.com/jumpei00/gobacktest/app/backtest"
	"github.com/jumpei00/gobacktest/app/models"
)

func (suite *ModelsTestSuite) TestNewStrategyDef() {
	def, err := models.NewStrategyDef("fast cross", "ma_cross", backtest.Params{
		"fast_period": 5,
		"slow_period": 10,
	}, "short horizon crossover")
	suite.Nil(err)
	suite.Equal("fast cross", def.Name)
	suite.Equal("ma_cross", def.Strategy)

	// an empty name falls back to the strategy name
	def, err = models.NewStrategyDef("", "buy_hold", nil, "")
	suite.Nil(err)
	suite.Equal("buy_hold", def.Name)

	_, err = models.NewStrategyDef("broken", "momentum", nil, "")
	suite.NotNil(err)
	suite.True(backtest.IsConfigError(err))

	_, err = models.NewStrategyDef("broken", "ma_cross", backtest.Params{"fast_period": 99}, "")
	suite.NotNil(err)
	suite.True(backtest.IsConfigError(err))
}

func (suite *ModelsTestSuite) TestStrategyDefCRUD() {
	def, err := models.NewStrategyDef("fast cross", "ma_cross", backtest.Params{
		"fast_period": 5,
		"slow_period": 10,
	}, "")
	suite.Require().Nil(err)
	suite.Nil(def.CreateStrategyDef())

	stored := models.GetStrategyDef("fast cross")
	suite.NotNil(stored)
	suite.Equal("ma_cross", stored.Strategy)

	// creating under the same name replaces the definition
	replacement, err := models.NewStrategyDef("fast cross", "rsi", nil, "")
	suite.Require().Nil(err)
	suite.Nil(replacement.CreateStrategyDef())

	sframe := models.GetStrategyFrame()
	suite.Len(sframe.Strategies, 1)
	suite.Equal("rsi", sframe.Strategies[0].Strategy)

	models.DeleteStrategyDef("fast cross")
	suite.Nil(models.GetStrategyDef("fast cross"))
}

func (suite *ModelsTestSuite) TestStrategyDefBuild() {
	def, err := models.NewStrategyDef("fast cross", "ma_cross", backtest.Params{
		"fast_period": 5,
		"slow_period": 10,
	}, "")
	suite.Require().Nil(err)

	strategy, err := def.Build()
	suite.Nil(err)
	suite.Equal("ma_cross", strategy.Name())
	suite.Equal(backtest.Params{"fast_period": 5, "slow_period": 10}, strategy.Params())
}
