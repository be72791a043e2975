package backtest

import (
	stderrors "errors"
	"fmt"

	"github.com/oarkflow/errors"
)

// Error categories. Both are fatal: a run that hits one returns no partial
// equity curve. Insufficient funds on a buy signal is not an error, the
// signal is skipped and the run continues.
var (
	// ErrConfig marks an invalid run configuration or strategy parameter.
	ErrConfig = stderrors.New("invalid configuration")
	// ErrData marks a violated data requirement: non-monotonic bar times,
	// or a signal dated outside or out of order with the series.
	ErrData = stderrors.New("data integrity violation")
)

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrap(ErrConfig, fmt.Sprintf(format, args...), "CONFIG")
}

func dataErrorf(format string, args ...interface{}) error {
	return errors.Wrap(ErrData, fmt.Sprintf(format, args...), "DATA")
}

// IsConfigError reports whether err originated from run or strategy configuration.
func IsConfigError(err error) bool {
	return stderrors.Is(err, ErrConfig)
}

// IsDataError reports whether err originated from a data-integrity check.
func IsDataError(err error) bool {
	return stderrors.Is(err, ErrData)
}
