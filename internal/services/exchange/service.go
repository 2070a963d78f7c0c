// Package exchange manages exchange API credentials and aggregates account
// data across connected accounts.
package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// Service implements ExchangeService
type Service struct {
	storage       interfaces.StorageManager
	client        interfaces.ExchangeClient
	pairs         []string
	encryptionKey string
	logger        *common.Logger
	now           interfaces.Clock
}

// NewService creates a new exchange service
func NewService(
	storage interfaces.StorageManager,
	client interfaces.ExchangeClient,
	pairs []string,
	encryptionKey string,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:       storage,
		client:        client,
		pairs:         pairs,
		encryptionKey: encryptionKey,
		logger:        logger,
		now:           time.Now,
	}
}

// ListKeys returns the user's stored exchange credentials.
func (s *Service) ListKeys(ctx context.Context, userID string) ([]*models.ExchangeKey, error) {
	return s.storage.UserDataStore().ListExchangeKeys(ctx, userID)
}

// AddKey stores a new exchange credential. The secret is encrypted at rest
// and never returned.
func (s *Service) AddKey(ctx context.Context, userID, exchange, apiKey, apiSecret, label string) (*models.ExchangeKey, error) {
	exchange = strings.ToLower(strings.TrimSpace(exchange))
	if exchange == "" {
		exchange = s.client.Name()
	}
	if exchange != s.client.Name() {
		return nil, fmt.Errorf("unsupported exchange '%s'", exchange)
	}
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("api key and secret are required")
	}

	encrypted, err := common.EncryptSecret([]byte(s.encryptionKey), apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api secret: %w", err)
	}

	key := &models.ExchangeKey{
		ID:              uuid.NewString(),
		UserID:          userID,
		Exchange:        exchange,
		Label:           label,
		APIKey:          apiKey,
		EncryptedSecret: encrypted,
		CreatedAt:       s.now(),
	}
	if err := s.storage.UserDataStore().SaveExchangeKey(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("exchange", exchange).
		Str("label", label).
		Msg("Exchange key added")
	return key, nil
}

// DeleteKey removes a credential after an ownership check.
func (s *Service) DeleteKey(ctx context.Context, userID, keyID string) error {
	if err := s.storage.UserDataStore().DeleteExchangeKey(ctx, userID, keyID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("key_id", keyID).Msg("Exchange key deleted")
	return nil
}

// credentials resolves the stored keys and decrypts their secrets.
func (s *Service) credentials(ctx context.Context, userID string) ([]*models.ExchangeKey, []string, error) {
	keys, err := s.storage.UserDataStore().ListExchangeKeys(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	secrets := make([]string, len(keys))
	for i, key := range keys {
		secret, err := common.DecryptSecret([]byte(s.encryptionKey), key.EncryptedSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt secret for key '%s': %w", key.ID, err)
		}
		secrets[i] = secret
	}
	return keys, secrets, nil
}

// GetBalances merges balances across every connected account. A failing
// account contributes a SourceError instead of failing the whole call.
func (s *Service) GetBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, []models.SourceError) {
	keys, secrets, err := s.credentials(ctx, userID)
	if err != nil {
		return map[string]decimal.Decimal{}, []models.SourceError{{
			Source: s.client.Name(),
			Err:    err,
			Detail: err.Error(),
		}}
	}

	merged := make(map[string]decimal.Decimal)
	var srcErrs []models.SourceError
	for i, key := range keys {
		balances, err := s.client.GetBalances(ctx, key.APIKey, secrets[i])
		if err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", userID).
				Str("key_id", key.ID).
				Msg("Exchange balance fetch failed")
			srcErrs = append(srcErrs, models.SourceError{
				Source: key.Exchange,
				Err:    err,
				Detail: err.Error(),
			})
			continue
		}
		for asset, amount := range balances {
			merged[asset] = merged[asset].Add(amount)
		}
	}
	return merged, srcErrs
}

// GetTrades fetches trade history for every connected account across the
// supported pairs, fanning the per-pair requests out concurrently. Each
// failing (account, pair) is reported as its own SourceError.
func (s *Service) GetTrades(ctx context.Context, userID string) ([]models.TradeFill, []models.SourceError) {
	keys, secrets, err := s.credentials(ctx, userID)
	if err != nil {
		return nil, []models.SourceError{{
			Source: s.client.Name(),
			Err:    err,
			Detail: err.Error(),
		}}
	}

	var (
		mu      sync.Mutex
		fills   []models.TradeFill
		srcErrs []models.SourceError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, key := range keys {
		for _, pair := range s.pairs {
			key, secret, pair := key, secrets[i], pair
			g.Go(func() error {
				trades, err := s.client.GetMyTrades(gctx, pair, key.APIKey, secret)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					srcErrs = append(srcErrs, models.SourceError{
						Source: key.Exchange + "/" + pair,
						Err:    err,
						Detail: err.Error(),
					})
					return nil // degraded, not fatal
				}
				fills = append(fills, trades...)
				return nil
			})
		}
	}
	g.Wait()

	if len(srcErrs) > 0 {
		s.logger.Warn().
			Str("user_id", userID).
			Int("failed_sources", len(srcErrs)).
			Msg("Trade history partially degraded")
	}
	return fills, srcErrs
}

// Compile-time check
var _ interfaces.ExchangeService = (*Service)(nil)
