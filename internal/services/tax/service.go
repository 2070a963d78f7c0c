// Package tax computes year-scoped realized gains with FIFO lot matching.
package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Service implements TaxService
type Service struct {
	source interfaces.TransactionSource
	logger *common.Logger
}

// NewService creates a new tax service
func NewService(source interfaces.TransactionSource, logger *common.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
	}
}

// Report replays the full transaction history through per-symbol FIFO lot
// queues and reports disposals realized in the requested year.
//
// The whole history is always replayed, not just the requested year: a sale
// in the report year may consume lots acquired years earlier, so lot state
// must be built from the beginning. Acquisitions open lots; SELL consumes the
// oldest lots first and realizes (sale price - lot cost) per unit matched;
// WITHDRAW consumes lots with no P&L, since moving coins off exchange is not
// a disposal. Disposals beyond what the lots hold are dropped.
func (s *Service) Report(ctx context.Context, userID string, year int) (*models.TaxReport, error) {
	txs, srcErrs, err := s.source.UnifiedTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}
	for _, se := range srcErrs {
		s.logger.Warn().Str("user_id", userID).Str("source", se.Source).Msg("Tax history source degraded")
	}

	models.SortChronological(txs)

	lots := make(map[string][]models.Lot)
	report := &models.TaxReport{Year: year, Events: []models.TaxEvent{}}

	for _, tx := range txs {
		switch {
		case tx.Kind.IsAcquisition():
			lots[tx.Symbol] = append(lots[tx.Symbol], models.Lot{
				Remaining:  tx.Amount,
				UnitCost:   tx.Price,
				AcquiredAt: tx.Timestamp,
			})

		case tx.Kind.IsDisposal():
			matched, pnl := consume(lots, tx)
			// An in-year sale is reported even when no lots matched; the
			// event then carries zero amount and zero P&L.
			if tx.Kind == models.TxSell && tx.Timestamp.Year() == year {
				report.Events = append(report.Events, models.TaxEvent{
					Date:   tx.Timestamp,
					Symbol: tx.Symbol,
					Type:   tx.Kind,
					Amount: matched,
					PnL:    pnl,
				})
				report.TotalRealizedPnL = report.TotalRealizedPnL.Add(pnl)
			}
		}
	}

	s.logger.Debug().
		Str("user_id", userID).
		Int("year", year).
		Int("events", len(report.Events)).
		Msg("Tax report computed")
	return report, nil
}

// consume matches a disposal against the symbol's lot queue, oldest first.
// It returns the quantity matched and, for sales, the realized P&L.
// Withdrawals consume lots but realize nothing.
func consume(lots map[string][]models.Lot, tx models.UnifiedTransaction) (decimal.Decimal, decimal.Decimal) {
	queue := lots[tx.Symbol]
	remaining := tx.Amount
	matched := decimal.Zero
	pnl := decimal.Zero

	for len(queue) > 0 && remaining.IsPositive() {
		lot := &queue[0]
		take := decimal.Min(remaining, lot.Remaining)

		if tx.Kind == models.TxSell {
			pnl = pnl.Add(tx.Price.Sub(lot.UnitCost).Mul(take))
		}
		matched = matched.Add(take)
		remaining = remaining.Sub(take)
		lot.Remaining = lot.Remaining.Sub(take)

		if lot.Remaining.IsZero() {
			queue = queue[1:]
		}
	}

	lots[tx.Symbol] = queue
	return matched, pnl
}

// Compile-time check
var _ interfaces.TaxService = (*Service)(nil)
