package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// dustThreshold is the smallest balance worth reporting. Exchange accounts
// accumulate residue below this from fee rounding.
var dustThreshold = decimal.RequireFromString("0.000001")

// reconcileBalances merges live exchange balances with the net effect of the
// manual ledger. Exchange balances are authoritative for exchange-held
// assets; manual transactions shift the totals for assets tracked off
// exchange.
func reconcileBalances(exchangeBalances map[string]decimal.Decimal, manual []models.UnifiedTransaction) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(exchangeBalances))
	for asset, amount := range exchangeBalances {
		balances[asset] = amount
	}

	for _, tx := range manual {
		if tx.Source != models.SourceManual {
			continue
		}
		if tx.Kind.IsAcquisition() {
			balances[tx.Symbol] = balances[tx.Symbol].Add(tx.Amount)
		} else {
			balances[tx.Symbol] = balances[tx.Symbol].Sub(tx.Amount)
		}
	}

	for asset, amount := range balances {
		if amount.LessThanOrEqual(dustThreshold) {
			delete(balances, asset)
		}
	}
	return balances
}

// buildSummary turns reconciled balances, current prices, and cost-basis
// stats into the per-asset summary. Assets without a quote are valued with a
// zero price except USDT, which is pinned at 1. Rows are ordered by value
// descending, then symbol, so repeated reads render identically.
func buildSummary(
	balances map[string]decimal.Decimal,
	prices map[string]decimal.Decimal,
	stats map[string]*models.AssetStats,
) []models.SummaryRow {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	rows := make([]models.SummaryRow, 0, len(balances))
	for symbol, amount := range balances {
		price, ok := prices[symbol]
		if !ok && symbol == "USDT" {
			price = one
		}

		row := models.SummaryRow{
			Symbol: symbol,
			Amount: amount,
			Price:  price,
			Value:  amount.Mul(price),
		}
		if st, ok := stats[symbol]; ok {
			row.AvgBuyPrice = st.AvgBuyPrice
			row.RealizedPnL = st.RealizedPnL
			if st.AvgBuyPrice.IsPositive() {
				row.UnrealizedPnL = price.Sub(st.AvgBuyPrice).Mul(amount)
				row.PnLPercent = price.Sub(st.AvgBuyPrice).Div(st.AvgBuyPrice).Mul(hundred)
			}
		}
		row.TotalPnL = row.RealizedPnL.Add(row.UnrealizedPnL)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Value.Equal(rows[j].Value) {
			return rows[i].Value.GreaterThan(rows[j].Value)
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}

// totalValue sums the value column of a summary.
func totalValue(rows []models.SummaryRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Value)
	}
	return total
}
