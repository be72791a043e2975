package backtest

const (
	// LONG represents a long position
	LONG = "LONG"
	// SHORT represents a short position
	SHORT = "SHORT"
	// OPEN represents a position still held
	OPEN = "OPEN"
	// CLOSED represents a fully exited position
	CLOSED = "CLOSED"
)

// Position is one open-to-close trade lifecycle. Quantity is whole shares,
// fractional sizing is not supported. Exit fields and P&L stay nil until
// the position is closed.
type Position struct {
	EntryTime      int64    `json:"entry_time"`
	EntryPrice     float64  `json:"entry_price"`
	Quantity       int      `json:"quantity"`
	Side           string   `json:"side"`
	Status         string   `json:"status"`
	EntryValue     float64  `json:"entry_value"`
	ExitTime       *int64   `json:"exit_time,omitempty"`
	ExitPrice      *float64 `json:"exit_price,omitempty"`
	ExitValue      *float64 `json:"exit_value,omitempty"`
	Pnl            *float64 `json:"pnl,omitempty"`
	PnlPct         *float64 `json:"pnl_pct,omitempty"`
	CommissionPaid float64  `json:"commission_paid"`
}

// close marks the position as exited at the given fill and realizes P&L,
// commission is the exit-side fee
func (p *Position) close(time int64, price, commission float64) {
	exitValue := float64(p.Quantity) * price
	p.CommissionPaid += commission

	pnl := exitValue - p.EntryValue - p.CommissionPaid
	pnlPct := (pnl / p.EntryValue) * 100

	p.ExitTime = &time
	p.ExitPrice = &price
	p.ExitValue = &exitValue
	p.Pnl = &pnl
	p.PnlPct = &pnlPct
	p.Status = CLOSED
}
