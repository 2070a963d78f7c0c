// Package interfaces defines service contracts for Coinfolio
package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// PortfolioService merges transaction sources into the unified ledger and
// derives per-asset cost basis, P&L, and portfolio history.
type PortfolioService interface {
	// GetSummary returns the per-asset portfolio summary. Results are cached
	// per user with a short TTL; concurrent callers for the same user share
	// a single recomputation.
	GetSummary(ctx context.Context, userID string) ([]models.SummaryRow, error)

	// UnifiedTransactions merges manual and exchange transactions into one
	// unordered sequence, plus a report of any sources that failed.
	UnifiedTransactions(ctx context.Context, userID string) ([]models.UnifiedTransaction, []models.SourceError, error)

	// GetTransactions returns the merged transaction list, newest first.
	GetTransactions(ctx context.Context, userID string) ([]models.TransactionView, error)

	// GetPerformance returns current total value and its change against the
	// snapshot taken at least 24 hours ago.
	GetPerformance(ctx context.Context, userID string) (*models.Performance, error)

	// GetHistory returns stored portfolio snapshots, oldest first.
	GetHistory(ctx context.Context, userID string) ([]models.PortfolioSnapshot, error)

	// SnapshotAll computes and persists a value snapshot for every user.
	// Used by the background scheduler.
	SnapshotAll(ctx context.Context) error
}

// TransactionSource yields the full unified transaction history for a user.
// Satisfied by PortfolioService; consumed by the tax engine.
type TransactionSource interface {
	UnifiedTransactions(ctx context.Context, userID string) ([]models.UnifiedTransaction, []models.SourceError, error)
}

// TaxService computes year-scoped realized gains with FIFO lot matching.
type TaxService interface {
	Report(ctx context.Context, userID string, year int) (*models.TaxReport, error)
}

// ManualService manages the manual transaction ledger.
type ManualService interface {
	Add(ctx context.Context, userID string, input models.ManualTransactionInput) (*models.ManualTransaction, error)
	List(ctx context.Context, userID string) ([]*models.ManualTransaction, error)
	Update(ctx context.Context, userID, id string, input models.ManualTransactionInput) (*models.ManualTransaction, error)
	Delete(ctx context.Context, userID, id string) error
}

// ExchangeService manages exchange connections and aggregates account data
// across them.
type ExchangeService interface {
	ListKeys(ctx context.Context, userID string) ([]*models.ExchangeKey, error)
	AddKey(ctx context.Context, userID, exchange, apiKey, apiSecret, label string) (*models.ExchangeKey, error)
	DeleteKey(ctx context.Context, userID, keyID string) error

	// GetBalances merges balances across every connected exchange account.
	// Failing accounts are reported, not fatal.
	GetBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, []models.SourceError)

	// GetTrades fetches trade history across every connected exchange
	// account and supported pair. Failing sources are reported, not fatal.
	GetTrades(ctx context.Context, userID string) ([]models.TradeFill, []models.SourceError)
}

// PriceFeed supplies a point-in-time snapshot of current asset prices.
type PriceFeed interface {
	GetPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// MarketService serves cached market overview data.
type MarketService interface {
	TopCoins(ctx context.Context) ([]models.Coin, error)
	MarketChart(ctx context.Context, coinID, days string) ([]models.ChartPoint, error)
	MarketOHLC(ctx context.Context, coinID, days string) ([]models.OHLCPoint, error)
	Candles(ctx context.Context, symbol, interval string) ([]models.Candle, error)
}

// AlertService manages price alerts and their periodic evaluation.
type AlertService interface {
	Create(ctx context.Context, userID, symbol string, target decimal.Decimal, condition models.AlertCondition) (*models.PriceAlert, error)
	List(ctx context.Context, userID string) ([]*models.PriceAlert, error)
	Delete(ctx context.Context, userID, alertID string) error

	// CheckAll evaluates every active alert against current prices,
	// triggering notifications and deactivating fired alerts.
	CheckAll(ctx context.Context) error
}

// NotificationService records and serves per-user notifications.
type NotificationService interface {
	Notify(ctx context.Context, userID string, level models.NotificationLevel, message string) error
	List(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// Clock abstracts time for cache-freshness logic in tests.
type Clock func() time.Time
