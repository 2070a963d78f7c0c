// Package notify persists and serves per-user notifications.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Service implements NotificationService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     interfaces.Clock
}

// NewService creates a new notification service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Notify records a notification for the user.
func (s *Service) Notify(ctx context.Context, userID string, level models.NotificationLevel, message string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Level:     level,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.storage.UserDataStore().SaveNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("level", string(level)).
		Msg("Notification recorded")
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.storage.UserDataStore().ListNotifications(ctx, userID)
}

// MarkAllRead marks every notification for the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.storage.UserDataStore().MarkNotificationsRead(ctx, userID)
}

// Compile-time check
var _ interfaces.NotificationService = (*Service)(nil)
