// Package userdb implements UserDataStore using BadgerHold.
// It stores per-user domain data: the manual ledger, exchange credentials,
// portfolio snapshots, price alerts, and notifications.
package userdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Store implements interfaces.UserDataStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new UserDataStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create userdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open userdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("UserDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- Manual ledger ---

func (s *Store) GetManualTransaction(_ context.Context, userID, id string) (*models.ManualTransaction, error) {
	var tx models.ManualTransaction
	if err := s.db.Get(id, &tx); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("transaction '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction '%s': %w", id, err)
	}
	// Records are keyed by ID alone; the owner check keeps one user from
	// reading another's ledger through a guessed ID.
	if tx.UserID != userID {
		return nil, fmt.Errorf("transaction '%s' not found", id)
	}
	return &tx, nil
}

func (s *Store) SaveManualTransaction(_ context.Context, tx *models.ManualTransaction) error {
	if err := s.db.Upsert(tx.ID, tx); err != nil {
		return fmt.Errorf("failed to save transaction '%s': %w", tx.ID, err)
	}
	s.logger.Debug().Str("user_id", tx.UserID).Str("tx_id", tx.ID).Msg("Manual transaction saved")
	return nil
}

func (s *Store) DeleteManualTransaction(ctx context.Context, userID, id string) error {
	if _, err := s.GetManualTransaction(ctx, userID, id); err != nil {
		return err
	}
	if err := s.db.Delete(id, models.ManualTransaction{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete transaction '%s': %w", id, err)
	}
	return nil
}

func (s *Store) ListManualTransactions(_ context.Context, userID string) ([]*models.ManualTransaction, error) {
	var txs []models.ManualTransaction
	if err := s.db.Find(&txs, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list transactions for user '%s': %w", userID, err)
	}
	result := make([]*models.ManualTransaction, len(txs))
	for i := range txs {
		result[i] = &txs[i]
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// --- Exchange credentials ---

func (s *Store) GetExchangeKey(_ context.Context, userID, id string) (*models.ExchangeKey, error) {
	var key models.ExchangeKey
	if err := s.db.Get(id, &key); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("exchange key '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get exchange key '%s': %w", id, err)
	}
	if key.UserID != userID {
		return nil, fmt.Errorf("exchange key '%s' not found", id)
	}
	return &key, nil
}

func (s *Store) SaveExchangeKey(_ context.Context, key *models.ExchangeKey) error {
	if err := s.db.Upsert(key.ID, key); err != nil {
		return fmt.Errorf("failed to save exchange key '%s': %w", key.ID, err)
	}
	s.logger.Debug().Str("user_id", key.UserID).Str("exchange", key.Exchange).Msg("Exchange key saved")
	return nil
}

func (s *Store) DeleteExchangeKey(ctx context.Context, userID, id string) error {
	if _, err := s.GetExchangeKey(ctx, userID, id); err != nil {
		return err
	}
	if err := s.db.Delete(id, models.ExchangeKey{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete exchange key '%s': %w", id, err)
	}
	return nil
}

func (s *Store) ListExchangeKeys(_ context.Context, userID string) ([]*models.ExchangeKey, error) {
	var keys []models.ExchangeKey
	if err := s.db.Find(&keys, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list exchange keys for user '%s': %w", userID, err)
	}
	result := make([]*models.ExchangeKey, len(keys))
	for i := range keys {
		result[i] = &keys[i]
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// --- Portfolio snapshots ---

func (s *Store) SavePortfolioSnapshot(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	if err := s.db.Upsert(snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", snapshot.ID, err)
	}
	return nil
}

func (s *Store) ListPortfolioSnapshots(_ context.Context, userID string) ([]*models.PortfolioSnapshot, error) {
	var snaps []models.PortfolioSnapshot
	if err := s.db.Find(&snaps, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for user '%s': %w", userID, err)
	}
	result := make([]*models.PortfolioSnapshot, len(snaps))
	for i := range snaps {
		result[i] = &snaps[i]
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// LatestSnapshotBefore returns the newest snapshot at or before the cutoff,
// or nil when the user has none that old.
func (s *Store) LatestSnapshotBefore(ctx context.Context, userID string, cutoff time.Time) (*models.PortfolioSnapshot, error) {
	snaps, err := s.ListPortfolioSnapshots(ctx, userID)
	if err != nil {
		return nil, err
	}
	var latest *models.PortfolioSnapshot
	for _, snap := range snaps {
		if snap.Timestamp.After(cutoff) {
			break
		}
		latest = snap
	}
	return latest, nil
}

// --- Price alerts ---

func (s *Store) GetAlert(_ context.Context, userID, id string) (*models.PriceAlert, error) {
	var alert models.PriceAlert
	if err := s.db.Get(id, &alert); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("alert '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get alert '%s': %w", id, err)
	}
	if alert.UserID != userID {
		return nil, fmt.Errorf("alert '%s' not found", id)
	}
	return &alert, nil
}

func (s *Store) SaveAlert(_ context.Context, alert *models.PriceAlert) error {
	if err := s.db.Upsert(alert.ID, alert); err != nil {
		return fmt.Errorf("failed to save alert '%s': %w", alert.ID, err)
	}
	return nil
}

func (s *Store) DeleteAlert(ctx context.Context, userID, id string) error {
	if _, err := s.GetAlert(ctx, userID, id); err != nil {
		return err
	}
	if err := s.db.Delete(id, models.PriceAlert{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete alert '%s': %w", id, err)
	}
	return nil
}

func (s *Store) ListAlerts(_ context.Context, userID string) ([]*models.PriceAlert, error) {
	var alerts []models.PriceAlert
	if err := s.db.Find(&alerts, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list alerts for user '%s': %w", userID, err)
	}
	result := make([]*models.PriceAlert, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListActiveAlerts returns all active alerts across users, for the
// background checker.
func (s *Store) ListActiveAlerts(_ context.Context) ([]*models.PriceAlert, error) {
	var alerts []models.PriceAlert
	if err := s.db.Find(&alerts, badgerhold.Where("Active").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	result := make([]*models.PriceAlert, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	return result, nil
}

// --- Notifications ---

func (s *Store) SaveNotification(_ context.Context, n *models.Notification) error {
	if err := s.db.Upsert(n.ID, n); err != nil {
		return fmt.Errorf("failed to save notification '%s': %w", n.ID, err)
	}
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string) ([]*models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Find(&notifications, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list notifications for user '%s': %w", userID, err)
	}
	result := make([]*models.Notification, len(notifications))
	for i := range notifications {
		result[i] = &notifications[i]
	}
	// Newest first for display.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) error {
	notifications, err := s.ListNotifications(ctx, userID)
	if err != nil {
		return err
	}
	for _, n := range notifications {
		if n.Read {
			continue
		}
		n.Read = true
		if err := s.db.Upsert(n.ID, n); err != nil {
			return fmt.Errorf("failed to mark notification '%s' read: %w", n.ID, err)
		}
	}
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
