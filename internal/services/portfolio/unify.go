package portfolio

import (
	"context"
	"fmt"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// UnifiedTransactions merges the manual ledger with exchange trade history
// into one sequence of canonical events. Exchange sources that fail are
// reported alongside the best-effort result rather than failing the merge;
// only a manual ledger read error is fatal, since without it the result
// would be silently wrong rather than partially degraded.
//
// The returned slice carries no ordering guarantee; consumers sort.
func (s *Service) UnifiedTransactions(ctx context.Context, userID string) ([]models.UnifiedTransaction, []models.SourceError, error) {
	manual, err := s.storage.UserDataStore().ListManualTransactions(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manual ledger: %w", err)
	}

	txs := make([]models.UnifiedTransaction, 0, len(manual))
	for _, m := range manual {
		txs = append(txs, m.Unified())
	}

	fills, srcErrs := s.exchange.GetTrades(ctx, userID)
	for i := range fills {
		txs = append(txs, fills[i].Unified())
	}
	return txs, srcErrs, nil
}
