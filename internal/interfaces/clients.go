// Package interfaces defines service contracts for Coinfolio
package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/coinfolio/internal/models"
)

// ExchangeClient provides access to a trading exchange account API.
// Credentials are passed per call: one client instance serves every stored
// credential set for its exchange.
type ExchangeClient interface {
	// Name returns the exchange identifier (e.g. "binance").
	Name() string

	// GetBalances retrieves current account balances (free + locked) keyed
	// by asset code. Zero balances are omitted.
	GetBalances(ctx context.Context, apiKey, apiSecret string) (map[string]decimal.Decimal, error)

	// GetMyTrades retrieves the account's fills for one trading pair.
	GetMyTrades(ctx context.Context, pair, apiKey, apiSecret string) ([]models.TradeFill, error)

	// GetKlines retrieves OHLCV candles for a pair (public endpoint).
	GetKlines(ctx context.Context, pair, interval string, limit int) ([]models.Candle, error)

	// GetTickerPrices retrieves the full current-price map keyed by asset
	// code (USDT-quoted pairs, quote suffix stripped).
	GetTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

// MarketDataClient provides market overview data (CoinGecko).
type MarketDataClient interface {
	// GetTopCoins retrieves the top coins by market cap with 7-day sparklines.
	GetTopCoins(ctx context.Context) ([]models.Coin, error)

	// GetMarketChart retrieves a (timestamp, price) series for a coin ID.
	GetMarketChart(ctx context.Context, coinID, days string) ([]models.ChartPoint, error)

	// GetMarketOHLC retrieves an OHLC series for a coin ID.
	GetMarketOHLC(ctx context.Context, coinID, days string) ([]models.OHLCPoint, error)
}
