// Package models defines data structures for Coinfolio
package models

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TxKind classifies a ledger event.
type TxKind string

const (
	TxBuy      TxKind = "BUY"
	TxSell     TxKind = "SELL"
	TxDeposit  TxKind = "DEPOSIT"
	TxWithdraw TxKind = "WITHDRAW"
)

// IsAcquisition reports whether the kind adds to a holding.
func (k TxKind) IsAcquisition() bool {
	return k == TxBuy || k == TxDeposit
}

// IsDisposal reports whether the kind removes from a holding.
func (k TxKind) IsDisposal() bool {
	return k == TxSell || k == TxWithdraw
}

// ParseTxKind validates and normalizes a transaction kind string.
func ParseTxKind(s string) (TxKind, bool) {
	switch TxKind(strings.ToUpper(s)) {
	case TxBuy:
		return TxBuy, true
	case TxSell:
		return TxSell, true
	case TxDeposit:
		return TxDeposit, true
	case TxWithdraw:
		return TxWithdraw, true
	}
	return "", false
}

// TxSource identifies which adapter produced a unified transaction.
type TxSource string

const (
	SourceManual   TxSource = "manual"
	SourceExchange TxSource = "exchange"
)

// sourceRank orders sources for timestamp tie-breaking: manual entries sort
// before exchange fills at the same instant.
func sourceRank(s TxSource) int {
	if s == SourceManual {
		return 0
	}
	return 1
}

// UnifiedTransaction is the canonical ledger event both accounting engines
// consume, regardless of whether it originated from the manual ledger or an
// exchange trade history.
type UnifiedTransaction struct {
	Symbol     string          `json:"symbol"` // uppercase asset code, quote suffix stripped
	Kind       TxKind          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"` // non-negative quantity
	Price      decimal.Decimal `json:"price"`  // quote currency per unit; may be zero for withdrawals
	Timestamp  time.Time       `json:"timestamp"`
	Source     TxSource        `json:"source"`
	OriginalID string          `json:"original_id"` // opaque, unique within its source
}

// SortChronological orders transactions ascending by timestamp, the ordering
// both the cost-basis fold and the FIFO tax engine require. Ties are broken
// deterministically: manual before exchange, then original ID.
func SortChronological(txs []UnifiedTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.Before(txs[j].Timestamp)
		}
		if ri, rj := sourceRank(txs[i].Source), sourceRank(txs[j].Source); ri != rj {
			return ri < rj
		}
		return txs[i].OriginalID < txs[j].OriginalID
	})
}

// ManualTransaction is a user-entered ledger record.
type ManualTransaction struct {
	ID        string          `json:"id" badgerhold:"key"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Kind      TxKind          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Unified converts the manual record to the canonical event shape.
func (m *ManualTransaction) Unified() UnifiedTransaction {
	return UnifiedTransaction{
		Symbol:     strings.ToUpper(m.Symbol),
		Kind:       m.Kind,
		Amount:     m.Amount,
		Price:      m.Price,
		Timestamp:  m.Date,
		Source:     SourceManual,
		OriginalID: m.ID,
	}
}

// ManualTransactionInput carries the user-editable fields of a manual
// transaction. A zero Date means "now" on add; updates replace all fields.
type ManualTransactionInput struct {
	Symbol string          `json:"symbol"`
	Kind   TxKind          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Date   time.Time       `json:"date,omitzero"`
}

// SourceError reports a transaction source that failed during unification.
// The unified result is best-effort; these let callers log or expose which
// sources were degraded rather than silently swallowing the failures.
type SourceError struct {
	Source string `json:"source"` // e.g. "binance", "binance/BTCUSDT"
	Err    error  `json:"-"`
	Detail string `json:"detail"`
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Detail
}

// TransactionView is the display shape for the merged transaction list.
type TransactionView struct {
	ID     string          `json:"id"` // "man-<id>" for manual entries, raw trade ID otherwise
	Kind   TxKind          `json:"type"`
	Symbol string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
	Date   time.Time       `json:"date"`
	Status string          `json:"status"`
	Source TxSource        `json:"source"`
}

// BaseAsset strips the USDT quote suffix from a trading pair, yielding the
// asset code ("BTCUSDT" → "BTC"). Pairs without the suffix pass through.
func BaseAsset(pair string) string {
	return strings.TrimSuffix(strings.ToUpper(pair), "USDT")
}
