package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSortChronological_Ascending(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	txs := []UnifiedTransaction{
		{Symbol: "BTC", Timestamp: base.Add(2 * time.Hour), OriginalID: "c"},
		{Symbol: "BTC", Timestamp: base, OriginalID: "a"},
		{Symbol: "BTC", Timestamp: base.Add(time.Hour), OriginalID: "b"},
	}

	SortChronological(txs)

	for i, want := range []string{"a", "b", "c"} {
		if txs[i].OriginalID != want {
			t.Errorf("txs[%d].OriginalID = %s, want %s", i, txs[i].OriginalID, want)
		}
	}
}

func TestSortChronological_TieBreak_ManualBeforeExchange(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	txs := []UnifiedTransaction{
		{Symbol: "BTC", Timestamp: ts, Source: SourceExchange, OriginalID: "1001"},
		{Symbol: "BTC", Timestamp: ts, Source: SourceManual, OriginalID: "m2"},
		{Symbol: "BTC", Timestamp: ts, Source: SourceManual, OriginalID: "m1"},
	}

	SortChronological(txs)

	if txs[0].Source != SourceManual || txs[0].OriginalID != "m1" {
		t.Errorf("txs[0] = %s/%s, want manual/m1", txs[0].Source, txs[0].OriginalID)
	}
	if txs[1].Source != SourceManual || txs[1].OriginalID != "m2" {
		t.Errorf("txs[1] = %s/%s, want manual/m2", txs[1].Source, txs[1].OriginalID)
	}
	if txs[2].Source != SourceExchange {
		t.Errorf("txs[2].Source = %s, want exchange", txs[2].Source)
	}
}

func TestBaseAsset(t *testing.T) {
	cases := map[string]string{
		"BTCUSDT": "BTC",
		"ethusdt": "ETH",
		"SOL":     "SOL",
		"USDT":    "", // degenerate but consistent: the pair is pure quote currency
	}
	for pair, want := range cases {
		if got := BaseAsset(pair); got != want {
			t.Errorf("BaseAsset(%q) = %q, want %q", pair, got, want)
		}
	}
}

func TestTradeFill_Unified(t *testing.T) {
	ts := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	fill := TradeFill{
		ID:       "1001",
		Pair:     "BTCUSDT",
		Price:    decimal.NewFromInt(60000),
		Quantity: decimal.RequireFromString("0.1"),
		Time:     ts,
		IsBuyer:  true,
	}

	tx := fill.Unified()
	if tx.Symbol != "BTC" {
		t.Errorf("Symbol = %s, want BTC", tx.Symbol)
	}
	if tx.Kind != TxBuy {
		t.Errorf("Kind = %s, want BUY", tx.Kind)
	}
	if tx.Source != SourceExchange {
		t.Errorf("Source = %s, want exchange", tx.Source)
	}

	fill.IsBuyer = false
	if got := fill.Unified().Kind; got != TxSell {
		t.Errorf("Kind = %s for seller fill, want SELL", got)
	}
}

func TestParseTxKind(t *testing.T) {
	if k, ok := ParseTxKind("buy"); !ok || k != TxBuy {
		t.Errorf("ParseTxKind(buy) = %s/%v", k, ok)
	}
	if _, ok := ParseTxKind("TRANSFER"); ok {
		t.Error("ParseTxKind(TRANSFER) should fail")
	}
}
