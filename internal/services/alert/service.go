// Package alert manages price alerts and their periodic evaluation.
package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Service implements AlertService
type Service struct {
	storage   interfaces.StorageManager
	priceFeed interfaces.PriceFeed
	notifier  interfaces.NotificationService
	logger    *common.Logger
	now       interfaces.Clock
}

// NewService creates a new alert service
func NewService(
	storage interfaces.StorageManager,
	priceFeed interfaces.PriceFeed,
	notifier interfaces.NotificationService,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:   storage,
		priceFeed: priceFeed,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers a new active price alert.
func (s *Service) Create(ctx context.Context, userID, symbol string, target decimal.Decimal, condition models.AlertCondition) (*models.PriceAlert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !target.IsPositive() {
		return nil, fmt.Errorf("target price must be positive")
	}
	if _, ok := models.ParseAlertCondition(string(condition)); !ok {
		return nil, fmt.Errorf("invalid alert condition '%s'", condition)
	}

	alert := &models.PriceAlert{
		ID:          uuid.NewString(),
		UserID:      userID,
		Symbol:      symbol,
		TargetPrice: target,
		Condition:   condition,
		Active:      true,
		CreatedAt:   s.now(),
	}
	if err := s.storage.UserDataStore().SaveAlert(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Str("condition", string(condition)).
		Msg("Price alert created")
	return alert, nil
}

// List returns the user's alerts.
func (s *Service) List(ctx context.Context, userID string) ([]*models.PriceAlert, error) {
	return s.storage.UserDataStore().ListAlerts(ctx, userID)
}

// Delete removes an alert after an ownership check.
func (s *Service) Delete(ctx context.Context, userID, alertID string) error {
	return s.storage.UserDataStore().DeleteAlert(ctx, userID, alertID)
}

// CheckAll evaluates every active alert against current prices. Fired alerts
// notify their owner and deactivate, so each alert triggers at most once.
func (s *Service) CheckAll(ctx context.Context) error {
	alerts, err := s.storage.UserDataStore().ListActiveAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	prices, err := s.priceFeed.GetPrices(ctx)
	if err != nil {
		return fmt.Errorf("failed to load prices for alert check: %w", err)
	}

	fired := 0
	for _, alert := range alerts {
		price, ok := prices[alert.Symbol]
		if !ok || !alert.ShouldTrigger(price) {
			continue
		}

		alert.Active = false
		alert.TriggeredAt = s.now()
		if err := s.storage.UserDataStore().SaveAlert(ctx, alert); err != nil {
			s.logger.Warn().Err(err).Str("alert_id", alert.ID).Msg("Failed to deactivate fired alert")
			continue
		}

		direction := "above"
		if alert.Condition == models.AlertBelow {
			direction = "below"
		}
		msg := fmt.Sprintf("%s is %s your target of %s (now %s)",
			alert.Symbol, direction, alert.TargetPrice.String(), price.String())
		if err := s.notifier.Notify(ctx, alert.UserID, models.NotifyAlert, msg); err != nil {
			s.logger.Warn().Err(err).Str("alert_id", alert.ID).Msg("Failed to notify fired alert")
		}
		fired++
	}

	if fired > 0 {
		s.logger.Info().Int("fired", fired).Int("checked", len(alerts)).Msg("Price alerts fired")
	}
	return nil
}

// Compile-time check
var _ interfaces.AlertService = (*Service)(nil)
