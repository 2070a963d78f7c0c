package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcileBalances_ManualDeltas(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exchange := map[string]decimal.Decimal{
		"BTC": d("0.5"),
	}
	manual := []models.UnifiedTransaction{
		tx("BTC", models.TxBuy, "0.25", "10000", base, "m1"),
		tx("ETH", models.TxDeposit, "2", "2000", base, "m2"),
		tx("ETH", models.TxSell, "0.5", "3000", base.Add(time.Hour), "m3"),
	}

	balances := reconcileBalances(exchange, manual)

	if got := balances["BTC"].String(); got != "0.75" {
		t.Errorf("BTC = %s, want 0.75", got)
	}
	if got := balances["ETH"].String(); got != "1.5" {
		t.Errorf("ETH = %s, want 1.5", got)
	}
}

func TestReconcileBalances_IgnoresExchangeSourcedTransactions(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exchangeTx := tx("BTC", models.TxBuy, "1", "10000", base, "e1")
	exchangeTx.Source = models.SourceExchange

	// The exchange balance already reflects its own fills; applying them
	// again would double count.
	balances := reconcileBalances(map[string]decimal.Decimal{"BTC": d("1")}, []models.UnifiedTransaction{exchangeTx})
	if got := balances["BTC"].String(); got != "1" {
		t.Errorf("BTC = %s, want 1", got)
	}
}

func TestReconcileBalances_DropsDust(t *testing.T) {
	balances := reconcileBalances(map[string]decimal.Decimal{
		"BTC":  d("0.5"),
		"DUST": d("0.0000009"),
	}, nil)

	if _, ok := balances["DUST"]; ok {
		t.Error("dust balance should be dropped")
	}
	if _, ok := balances["BTC"]; !ok {
		t.Error("real balance should survive")
	}
}

func TestReconcileBalances_NegativeNetDropped(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	manual := []models.UnifiedTransaction{
		tx("XRP", models.TxWithdraw, "5", "0", base, "m1"),
	}

	balances := reconcileBalances(nil, manual)
	if _, ok := balances["XRP"]; ok {
		t.Error("negative net balance should be dropped")
	}
}

func TestBuildSummary_ValuesAndPnL(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"BTC":  d("0.5"),
		"USDT": d("100"),
	}
	prices := map[string]decimal.Decimal{
		"BTC": d("20000"),
	}
	stats := map[string]*models.AssetStats{
		"BTC": {AvgBuyPrice: d("10000"), Balance: d("0.5"), RealizedPnL: d("5000")},
	}

	rows := buildSummary(balances, prices, stats)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Ordered by value descending: BTC (10000) before USDT (100).
	btc := rows[0]
	if btc.Symbol != "BTC" {
		t.Fatalf("expected BTC first, got %s", btc.Symbol)
	}
	if got := btc.Value.String(); got != "10000" {
		t.Errorf("Value = %s, want 10000", got)
	}
	if got := btc.UnrealizedPnL.String(); got != "5000" {
		t.Errorf("UnrealizedPnL = %s, want 5000", got)
	}
	if got := btc.TotalPnL.String(); got != "10000" {
		t.Errorf("TotalPnL = %s, want 10000", got)
	}
	if got := btc.PnLPercent.String(); got != "100" {
		t.Errorf("PnLPercent = %s, want 100", got)
	}

	// USDT has no quote in the price map and falls back to 1.
	usdt := rows[1]
	if got := usdt.Price.String(); got != "1" {
		t.Errorf("USDT price = %s, want 1", got)
	}
	if got := usdt.Value.String(); got != "100" {
		t.Errorf("USDT value = %s, want 100", got)
	}
}

func TestBuildSummary_UnpricedAssetValuedZero(t *testing.T) {
	rows := buildSummary(
		map[string]decimal.Decimal{"OBSCURE": d("10")},
		map[string]decimal.Decimal{},
		nil,
	)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Value.IsZero() {
		t.Errorf("Value = %s, want 0 without a quote", rows[0].Value)
	}
}

func TestBuildSummary_DeterministicOrder(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"AAA": d("1"),
		"BBB": d("1"),
		"CCC": d("1"),
	}
	prices := map[string]decimal.Decimal{"AAA": d("5"), "BBB": d("5"), "CCC": d("5")}

	first := buildSummary(balances, prices, nil)
	for i := 0; i < 10; i++ {
		again := buildSummary(balances, prices, nil)
		for j := range first {
			if first[j].Symbol != again[j].Symbol {
				t.Fatalf("row order not deterministic: %v vs %v", first, again)
			}
		}
	}
	// Equal values tie-break on symbol.
	if first[0].Symbol != "AAA" || first[2].Symbol != "CCC" {
		t.Errorf("tie-break order wrong: %v", []string{first[0].Symbol, first[1].Symbol, first[2].Symbol})
	}
}
