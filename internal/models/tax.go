package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a discrete acquisition awaiting FIFO consumption in the tax engine.
type Lot struct {
	Remaining  decimal.Decimal
	UnitCost   decimal.Decimal
	AcquiredAt time.Time
}

// TaxEvent is a taxable disposal recorded for the requested year.
type TaxEvent struct {
	Date   time.Time       `json:"date"`
	Symbol string          `json:"symbol"`
	Type   TxKind          `json:"type"`
	Amount decimal.Decimal `json:"amount"` // quantity actually matched against lots
	PnL    decimal.Decimal `json:"pnl"`
}

// TaxReport is the year-scoped realized-gain report.
type TaxReport struct {
	Year             int             `json:"year"`
	TotalRealizedPnL decimal.Decimal `json:"total_realized_pnl"`
	Events           []TaxEvent      `json:"events"`
}
