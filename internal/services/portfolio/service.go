// Package portfolio merges transaction sources into a unified ledger and
// derives holdings, cost basis, and P&L from it.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// performanceWindow is the lookback for the portfolio change view.
const performanceWindow = 24 * time.Hour

// Service implements PortfolioService
type Service struct {
	storage   interfaces.StorageManager
	exchange  interfaces.ExchangeService
	priceFeed interfaces.PriceFeed
	cache     *summaryCache
	logger    *common.Logger
	now       interfaces.Clock
}

// NewService creates a new portfolio service
func NewService(
	storage interfaces.StorageManager,
	exchange interfaces.ExchangeService,
	priceFeed interfaces.PriceFeed,
	logger *common.Logger,
) *Service {
	s := &Service{
		storage:   storage,
		exchange:  exchange,
		priceFeed: priceFeed,
		logger:    logger,
		now:       time.Now,
	}
	s.cache = newSummaryCache(func() time.Time { return s.now() })
	return s
}

// computeSummary is the cold path behind GetSummary.
func (s *Service) computeSummary(ctx context.Context, userID string) ([]models.SummaryRow, error) {
	txs, srcErrs, err := s.UnifiedTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, se := range srcErrs {
		s.logger.Warn().Str("user_id", userID).Str("source", se.Source).Msg("Transaction source degraded")
	}

	stats := ComputeCostBasis(txs)

	balances, balErrs := s.exchange.GetBalances(ctx, userID)
	for _, se := range balErrs {
		s.logger.Warn().Str("user_id", userID).Str("source", se.Source).Msg("Balance source degraded")
	}
	reconciled := reconcileBalances(balances, txs)

	prices, err := s.priceFeed.GetPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	return buildSummary(reconciled, prices, stats), nil
}

// GetSummary returns the per-asset summary, cached per user with a short
// TTL. Concurrent callers for the same user share one recomputation.
func (s *Service) GetSummary(ctx context.Context, userID string) ([]models.SummaryRow, error) {
	return s.cache.getOrCompute(userID, func() ([]models.SummaryRow, error) {
		return s.computeSummary(ctx, userID)
	})
}

// InvalidateSummary drops the cached summary, forcing the next read to
// recompute. Called after ledger mutations.
func (s *Service) InvalidateSummary(userID string) {
	s.cache.invalidate(userID)
}

// GetTransactions returns the merged transaction list for display, newest
// first. Manual entries carry a "man-" ID prefix so the frontend can route
// edits back to the manual ledger.
func (s *Service) GetTransactions(ctx context.Context, userID string) ([]models.TransactionView, error) {
	txs, srcErrs, err := s.UnifiedTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, se := range srcErrs {
		s.logger.Warn().Str("user_id", userID).Str("source", se.Source).Msg("Transaction source degraded")
	}

	models.SortChronological(txs)
	views := make([]models.TransactionView, 0, len(txs))
	for _, tx := range txs {
		id := tx.OriginalID
		if tx.Source == models.SourceManual {
			id = "man-" + tx.OriginalID
		}
		views = append(views, models.TransactionView{
			ID:     id,
			Kind:   tx.Kind,
			Symbol: tx.Symbol,
			Amount: tx.Amount,
			Price:  tx.Price,
			Value:  tx.Amount.Mul(tx.Price),
			Date:   tx.Timestamp,
			Status: "Completed",
			Source: tx.Source,
		})
	}

	// Newest first for display.
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Date.After(views[j].Date)
	})
	return views, nil
}

// GetPerformance returns the current total value and its change against the
// snapshot taken at least 24 hours ago. Without an old enough snapshot the
// change reads as zero.
func (s *Service) GetPerformance(ctx context.Context, userID string) (*models.Performance, error) {
	rows, err := s.GetSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	current := totalValue(rows)

	perf := &models.Performance{TotalValue: current}
	cutoff := s.now().Add(-performanceWindow)
	snap, err := s.storage.UserDataStore().LatestSnapshotBefore(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference snapshot: %w", err)
	}
	if snap == nil {
		return perf, nil
	}

	perf.ChangeValue = current.Sub(snap.TotalValueUSD)
	if snap.TotalValueUSD.IsPositive() {
		perf.ChangePercent = perf.ChangeValue.Div(snap.TotalValueUSD).Mul(decimal.NewFromInt(100))
	}
	return perf, nil
}

// GetHistory returns stored snapshots, oldest first.
func (s *Service) GetHistory(ctx context.Context, userID string) ([]models.PortfolioSnapshot, error) {
	snaps, err := s.storage.UserDataStore().ListPortfolioSnapshots(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := make([]models.PortfolioSnapshot, len(snaps))
	for i, snap := range snaps {
		history[i] = *snap
	}
	return history, nil
}

// SnapshotAll computes and persists a value snapshot for every user. A
// failure for one user is logged and skipped so the sweep still covers the
// rest.
func (s *Service) SnapshotAll(ctx context.Context) error {
	userIDs, err := s.storage.InternalStore().ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	for _, userID := range userIDs {
		rows, err := s.GetSummary(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Snapshot skipped")
			continue
		}
		total := totalValue(rows)
		if !total.IsPositive() {
			continue
		}
		snap := &models.PortfolioSnapshot{
			ID:            uuid.NewString(),
			UserID:        userID,
			Timestamp:     s.now(),
			TotalValueUSD: total,
			AssetCount:    len(rows),
		}
		if err := s.storage.UserDataStore().SavePortfolioSnapshot(ctx, snap); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Snapshot save failed")
			continue
		}
	}
	s.logger.Debug().Int("users", len(userIDs)).Msg("Snapshot sweep complete")
	return nil
}

// Compile-time checks
var (
	_ interfaces.PortfolioService  = (*Service)(nil)
	_ interfaces.TransactionSource = (*Service)(nil)
)
