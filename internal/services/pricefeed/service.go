// Package pricefeed serves current prices and market overview data with
// short-lived caches in front of the exchange and market-data APIs.
package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

const (
	pricesTTL   = 30 * time.Second
	topCoinsTTL = 60 * time.Second
	shortTTL    = 5 * time.Minute // intraday chart ranges
	longTTL     = time.Hour       // multi-day chart ranges
	candlesTTL  = 5 * time.Minute

	pricesKey   = "prices"
	topCoinsKey = "topcoins"
)

// Service implements PriceFeed and MarketService
type Service struct {
	exchange interfaces.ExchangeClient
	market   interfaces.MarketDataClient
	cache    *gocache.Cache
	logger   *common.Logger
}

// NewService creates a new price feed service
func NewService(exchange interfaces.ExchangeClient, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		exchange: exchange,
		market:   market,
		cache:    gocache.New(gocache.NoExpiration, 10*time.Minute),
		logger:   logger,
	}
}

// GetPrices returns the current asset price map, cached for 30 seconds.
func (s *Service) GetPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	if cached, ok := s.cache.Get(pricesKey); ok {
		return cached.(map[string]decimal.Decimal), nil
	}

	prices, err := s.exchange.GetTickerPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker prices: %w", err)
	}
	s.cache.Set(pricesKey, prices, pricesTTL)
	s.logger.Debug().Int("assets", len(prices)).Msg("Price map refreshed")
	return prices, nil
}

// TopCoins returns the market overview list, cached for 60 seconds.
func (s *Service) TopCoins(ctx context.Context) ([]models.Coin, error) {
	if cached, ok := s.cache.Get(topCoinsKey); ok {
		return cached.([]models.Coin), nil
	}

	coins, err := s.market.GetTopCoins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top coins: %w", err)
	}
	s.cache.Set(topCoinsKey, coins, topCoinsTTL)
	return coins, nil
}

// chartTTL picks the cache lifetime for a chart range: intraday data moves,
// longer ranges barely change within the hour.
func chartTTL(days string) time.Duration {
	if days == "1" {
		return shortTTL
	}
	return longTTL
}

// MarketChart returns a price series for a coin, cached per (coin, range).
func (s *Service) MarketChart(ctx context.Context, coinID, days string) ([]models.ChartPoint, error) {
	key := "chart:" + coinID + ":" + days
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.ChartPoint), nil
	}

	points, err := s.market.GetMarketChart(ctx, coinID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market chart for '%s': %w", coinID, err)
	}
	s.cache.Set(key, points, chartTTL(days))
	return points, nil
}

// MarketOHLC returns an OHLC series for a coin, cached per (coin, range).
func (s *Service) MarketOHLC(ctx context.Context, coinID, days string) ([]models.OHLCPoint, error) {
	key := "ohlc:" + coinID + ":" + days
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.OHLCPoint), nil
	}

	points, err := s.market.GetMarketOHLC(ctx, coinID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market OHLC for '%s': %w", coinID, err)
	}
	s.cache.Set(key, points, chartTTL(days))
	return points, nil
}

// Candles returns exchange OHLCV bars for a symbol. Bare asset codes are
// expanded to their USDT pair.
func (s *Service) Candles(ctx context.Context, symbol, interval string) ([]models.Candle, error) {
	pair := strings.ToUpper(strings.TrimSpace(symbol))
	if !strings.HasSuffix(pair, "USDT") {
		pair += "USDT"
	}
	if interval == "" {
		interval = "1d"
	}

	key := "candles:" + pair + ":" + interval
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.Candle), nil
	}

	candles, err := s.exchange.GetKlines(ctx, pair, interval, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for '%s': %w", pair, err)
	}
	s.cache.Set(key, candles, candlesTTL)
	return candles, nil
}

// Compile-time checks
var (
	_ interfaces.PriceFeed     = (*Service)(nil)
	_ interfaces.MarketService = (*Service)(nil)
)
