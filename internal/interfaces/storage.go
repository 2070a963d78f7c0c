// Package interfaces defines service contracts for Coinfolio
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore
	Close() error
}

// InternalStore manages user accounts and system-level KV.
type InternalStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUserIDs(ctx context.Context) ([]string, error)

	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// UserDataStore manages per-user domain data: the manual ledger, exchange
// credentials, portfolio snapshots, alerts, and notifications.
type UserDataStore interface {
	// Manual ledger
	GetManualTransaction(ctx context.Context, userID, id string) (*models.ManualTransaction, error)
	SaveManualTransaction(ctx context.Context, tx *models.ManualTransaction) error
	DeleteManualTransaction(ctx context.Context, userID, id string) error
	ListManualTransactions(ctx context.Context, userID string) ([]*models.ManualTransaction, error)

	// Exchange credentials
	GetExchangeKey(ctx context.Context, userID, id string) (*models.ExchangeKey, error)
	SaveExchangeKey(ctx context.Context, key *models.ExchangeKey) error
	DeleteExchangeKey(ctx context.Context, userID, id string) error
	ListExchangeKeys(ctx context.Context, userID string) ([]*models.ExchangeKey, error)

	// Portfolio snapshots
	SavePortfolioSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	ListPortfolioSnapshots(ctx context.Context, userID string) ([]*models.PortfolioSnapshot, error)
	LatestSnapshotBefore(ctx context.Context, userID string, cutoff time.Time) (*models.PortfolioSnapshot, error)

	// Price alerts
	GetAlert(ctx context.Context, userID, id string) (*models.PriceAlert, error)
	SaveAlert(ctx context.Context, alert *models.PriceAlert) error
	DeleteAlert(ctx context.Context, userID, id string) error
	ListAlerts(ctx context.Context, userID string) ([]*models.PriceAlert, error)
	ListActiveAlerts(ctx context.Context) ([]*models.PriceAlert, error)

	// Notifications
	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string) error

	Close() error
}
