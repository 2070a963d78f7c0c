// Package manual manages the user-entered transaction ledger.
package manual

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Service implements ManualService
type Service struct {
	storage  interfaces.StorageManager
	notifier interfaces.NotificationService
	logger   *common.Logger
	now      interfaces.Clock
}

// NewService creates a new manual ledger service
func NewService(storage interfaces.StorageManager, notifier interfaces.NotificationService, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// validate normalizes and checks user input. The returned input has the
// symbol uppercased and a zero date resolved to now.
func (s *Service) validate(input models.ManualTransactionInput) (models.ManualTransactionInput, error) {
	input.Symbol = strings.ToUpper(strings.TrimSpace(input.Symbol))
	if input.Symbol == "" {
		return input, fmt.Errorf("symbol is required")
	}
	if _, ok := models.ParseTxKind(string(input.Kind)); !ok {
		return input, fmt.Errorf("invalid transaction kind '%s'", input.Kind)
	}
	if !input.Amount.IsPositive() {
		return input, fmt.Errorf("amount must be positive")
	}
	if input.Price.IsNegative() {
		return input, fmt.Errorf("price cannot be negative")
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	return input, nil
}

// Add records a new manual transaction.
func (s *Service) Add(ctx context.Context, userID string, input models.ManualTransactionInput) (*models.ManualTransaction, error) {
	input, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx := &models.ManualTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symbol:    input.Symbol,
		Kind:      input.Kind,
		Amount:    input.Amount,
		Price:     input.Price,
		Date:      input.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.UserDataStore().SaveManualTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("symbol", tx.Symbol).
		Str("kind", string(tx.Kind)).
		Msg("Manual transaction added")

	if s.notifier != nil {
		msg := fmt.Sprintf("Recorded %s of %s %s", strings.ToLower(string(tx.Kind)), tx.Amount.String(), tx.Symbol)
		if err := s.notifier.Notify(ctx, userID, models.NotifySuccess, msg); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record transaction notification")
		}
	}
	return tx, nil
}

// List returns the user's manual transactions, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]*models.ManualTransaction, error) {
	return s.storage.UserDataStore().ListManualTransactions(ctx, userID)
}

// Update replaces the editable fields of an existing transaction.
func (s *Service) Update(ctx context.Context, userID, id string, input models.ManualTransactionInput) (*models.ManualTransaction, error) {
	tx, err := s.storage.UserDataStore().GetManualTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	input, err = s.validate(input)
	if err != nil {
		return nil, err
	}

	tx.Symbol = input.Symbol
	tx.Kind = input.Kind
	tx.Amount = input.Amount
	tx.Price = input.Price
	tx.Date = input.Date
	tx.UpdatedAt = s.now()

	if err := s.storage.UserDataStore().SaveManualTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("tx_id", id).Msg("Manual transaction updated")
	return tx, nil
}

// Delete removes a transaction after an ownership check.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.storage.UserDataStore().DeleteManualTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("tx_id", id).Msg("Manual transaction deleted")
	return nil
}

// Compile-time check
var _ interfaces.ManualService = (*Service)(nil)
