package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetStats is the per-symbol accumulator of the cost-basis fold. Transient:
// rebuilt from the full transaction history on every cold computation, never
// persisted.
type AssetStats struct {
	AvgBuyPrice decimal.Decimal
	Balance     decimal.Decimal // floored at zero
	RealizedPnL decimal.Decimal
}

// SummaryRow is one asset line of the portfolio summary.
type SummaryRow struct {
	Symbol        string          `json:"symbol"`
	Amount        decimal.Decimal `json:"amount"`
	Price         decimal.Decimal `json:"price"`
	Value         decimal.Decimal `json:"value"`
	AvgBuyPrice   decimal.Decimal `json:"avg_buy_price"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"` // unrealized, relative to avg buy price
}

// PortfolioSnapshot captures total portfolio value at a point in time,
// written by the background snapshot job and read by the performance view.
type PortfolioSnapshot struct {
	ID            string          `json:"id" badgerhold:"key"`
	UserID        string          `json:"user_id"`
	Timestamp     time.Time       `json:"timestamp"`
	TotalValueUSD decimal.Decimal `json:"total_value_usd"`
	AssetCount    int             `json:"asset_count"`
}

// Performance is the 24-hour portfolio change view.
type Performance struct {
	TotalValue    decimal.Decimal `json:"total_value"`
	ChangeValue   decimal.Decimal `json:"change_value"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}
