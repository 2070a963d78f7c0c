package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// ComputeCostBasis folds the full transaction history into per-symbol
// average cost, running balance, and realized P&L. The fold is
// order-sensitive: transactions are processed in ascending timestamp order,
// so rerunning it over the same history always yields the same result.
//
// BUY blends the fill price into a weighted average cost. DEPOSIT adds to
// the balance without touching the average, since an inbound transfer
// carries no cost-basis information. Disposals (SELL, WITHDRAW) realize
// (price - avg cost) against the disposed quantity without moving the
// average; a withdrawal carries its recorded price, so a zero-priced
// withdrawal realizes a loss of the cost basis. Balance never goes negative.
func ComputeCostBasis(txs []models.UnifiedTransaction) map[string]*models.AssetStats {
	sorted := make([]models.UnifiedTransaction, len(txs))
	copy(sorted, txs)
	models.SortChronological(sorted)

	stats := make(map[string]*models.AssetStats)
	for _, tx := range sorted {
		st, ok := stats[tx.Symbol]
		if !ok {
			st = &models.AssetStats{}
			stats[tx.Symbol] = st
		}

		switch {
		case tx.Kind == models.TxBuy:
			newBalance := st.Balance.Add(tx.Amount)
			if newBalance.IsPositive() {
				cost := st.AvgBuyPrice.Mul(st.Balance).Add(tx.Price.Mul(tx.Amount))
				st.AvgBuyPrice = cost.Div(newBalance)
			}
			st.Balance = newBalance

		case tx.Kind == models.TxDeposit:
			st.Balance = st.Balance.Add(tx.Amount)

		case tx.Kind.IsDisposal():
			if st.AvgBuyPrice.IsPositive() {
				st.RealizedPnL = st.RealizedPnL.Add(tx.Price.Sub(st.AvgBuyPrice).Mul(tx.Amount))
			}
			st.Balance = st.Balance.Sub(tx.Amount)
			if st.Balance.IsNegative() {
				st.Balance = decimal.Zero
			}
		}
	}
	return stats
}
