package userdb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
)

func newUnitTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewSilentLogger()
	store, err := NewStore(logger, dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestManualTransactionCRUD(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	tx := &models.ManualTransaction{
		ID:     "tx-1",
		UserID: "alice",
		Symbol: "BTC",
		Kind:   models.TxBuy,
		Amount: decimal.NewFromInt(1),
		Price:  decimal.NewFromInt(50000),
		Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.SaveManualTransaction(ctx, tx); err != nil {
		t.Fatalf("SaveManualTransaction: %v", err)
	}

	got, err := store.GetManualTransaction(ctx, "alice", "tx-1")
	if err != nil {
		t.Fatalf("GetManualTransaction: %v", err)
	}
	if got.Symbol != "BTC" || !got.Price.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("unexpected transaction: %+v", got)
	}

	// Another user cannot read it through the ID.
	if _, err := store.GetManualTransaction(ctx, "bob", "tx-1"); err == nil {
		t.Error("cross-user read should fail")
	}
	if err := store.DeleteManualTransaction(ctx, "bob", "tx-1"); err == nil {
		t.Error("cross-user delete should fail")
	}

	if err := store.DeleteManualTransaction(ctx, "alice", "tx-1"); err != nil {
		t.Fatalf("DeleteManualTransaction: %v", err)
	}
	if _, err := store.GetManualTransaction(ctx, "alice", "tx-1"); err == nil {
		t.Error("Get after delete should fail")
	}
}

func TestListManualTransactions_SortedByDate(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SaveManualTransaction(ctx, &models.ManualTransaction{ID: "t2", UserID: "alice", Symbol: "ETH", Date: base.AddDate(0, 1, 0)})
	store.SaveManualTransaction(ctx, &models.ManualTransaction{ID: "t1", UserID: "alice", Symbol: "BTC", Date: base})
	store.SaveManualTransaction(ctx, &models.ManualTransaction{ID: "t3", UserID: "bob", Symbol: "SOL", Date: base})

	txs, err := store.ListManualTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListManualTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ID != "t1" || txs[1].ID != "t2" {
		t.Errorf("transactions out of date order: %s, %s", txs[0].ID, txs[1].ID)
	}
}

func TestExchangeKeyCRUD(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	key := &models.ExchangeKey{
		ID:              "k-1",
		UserID:          "alice",
		Exchange:        "binance",
		Label:           "main",
		APIKey:          "pub",
		EncryptedSecret: "enc",
		CreatedAt:       time.Now(),
	}
	if err := store.SaveExchangeKey(ctx, key); err != nil {
		t.Fatalf("SaveExchangeKey: %v", err)
	}

	keys, err := store.ListExchangeKeys(ctx, "alice")
	if err != nil {
		t.Fatalf("ListExchangeKeys: %v", err)
	}
	if len(keys) != 1 || keys[0].EncryptedSecret != "enc" {
		t.Errorf("unexpected keys: %+v", keys)
	}

	if err := store.DeleteExchangeKey(ctx, "bob", "k-1"); err == nil {
		t.Error("cross-user delete should fail")
	}
	if err := store.DeleteExchangeKey(ctx, "alice", "k-1"); err != nil {
		t.Fatalf("DeleteExchangeKey: %v", err)
	}
}

func TestSnapshots_LatestBefore(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, hours := range []int{0, 12, 24, 36} {
		store.SavePortfolioSnapshot(ctx, &models.PortfolioSnapshot{
			ID:            string(rune('a' + i)),
			UserID:        "alice",
			Timestamp:     base.Add(time.Duration(hours) * time.Hour),
			TotalValueUSD: decimal.NewFromInt(int64(1000 + i)),
		})
	}

	// Cutoff between the second and third snapshots.
	snap, err := store.LatestSnapshotBefore(ctx, "alice", base.Add(20*time.Hour))
	if err != nil {
		t.Fatalf("LatestSnapshotBefore: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	if !snap.Timestamp.Equal(base.Add(12 * time.Hour)) {
		t.Errorf("unexpected snapshot time: %v", snap.Timestamp)
	}

	// Cutoff before the first snapshot.
	snap, err = store.LatestSnapshotBefore(ctx, "alice", base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("LatestSnapshotBefore: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot, got %+v", snap)
	}
}

func TestAlerts_ActiveListing(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	store.SaveAlert(ctx, &models.PriceAlert{ID: "a1", UserID: "alice", Symbol: "BTC", Active: true, CreatedAt: time.Now()})
	store.SaveAlert(ctx, &models.PriceAlert{ID: "a2", UserID: "alice", Symbol: "ETH", Active: false, CreatedAt: time.Now()})
	store.SaveAlert(ctx, &models.PriceAlert{ID: "a3", UserID: "bob", Symbol: "SOL", Active: true, CreatedAt: time.Now()})

	active, err := store.ListActiveAlerts(ctx)
	if err != nil {
		t.Fatalf("ListActiveAlerts: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active alerts, got %d", len(active))
	}

	mine, err := store.ListAlerts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 alerts for alice, got %d", len(mine))
	}

	if err := store.DeleteAlert(ctx, "bob", "a1"); err == nil {
		t.Error("cross-user delete should fail")
	}
	if err := store.DeleteAlert(ctx, "alice", "a1"); err != nil {
		t.Fatalf("DeleteAlert: %v", err)
	}
}

func TestNotifications_MarkRead(t *testing.T) {
	store := newUnitTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store.SaveNotification(ctx, &models.Notification{ID: "n1", UserID: "alice", Message: "older", CreatedAt: base})
	store.SaveNotification(ctx, &models.Notification{ID: "n2", UserID: "alice", Message: "newer", CreatedAt: base.Add(time.Hour)})

	list, err := store.ListNotifications(ctx, "alice")
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n2" {
		t.Errorf("expected newest first, got %+v", list)
	}

	if err := store.MarkNotificationsRead(ctx, "alice"); err != nil {
		t.Fatalf("MarkNotificationsRead: %v", err)
	}
	list, _ = store.ListNotifications(ctx, "alice")
	for _, n := range list {
		if !n.Read {
			t.Errorf("notification %s still unread", n.ID)
		}
	}
}
