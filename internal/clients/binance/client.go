// Package binance provides a client for the Binance spot account API
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.binance.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the ExchangeClient interface for Binance spot accounts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time // injectable clock for deterministic signing in tests
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Binance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the exchange identifier.
func (c *Client) Name() string {
	return "binance"
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Binance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// sign computes the HMAC-SHA256 hex signature Binance requires on account
// endpoints.
func sign(query, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// get performs a rate-limited GET request. When apiKey is non-empty the
// request is signed: a timestamp is appended and the query string is
// HMAC-signed with the secret.
func (c *Client) get(ctx context.Context, path string, params url.Values, apiKey, apiSecret string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}

	query := params.Encode()
	if apiKey != "" {
		if query != "" {
			query += "&"
		}
		query += "timestamp=" + strconv.FormatInt(c.now().UnixMilli(), 10)
		query += "&signature=" + sign(query, apiSecret)
	}

	reqURL := c.baseURL + path
	if query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", apiKey)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Binance API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}

	return nil
}

// accountResponse is the /api/v3/account shape.
type accountResponse struct {
	Balances []struct {
		Asset  string          `json:"asset"`
		Free   decimal.Decimal `json:"free"`
		Locked decimal.Decimal `json:"locked"`
	} `json:"balances"`
}

// GetBalances retrieves current account balances (free + locked). Assets
// with zero balance are omitted.
func (c *Client) GetBalances(ctx context.Context, apiKey, apiSecret string) (map[string]decimal.Decimal, error) {
	var account accountResponse
	if err := c.get(ctx, "/api/v3/account", nil, apiKey, apiSecret, &account); err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal)
	for _, b := range account.Balances {
		total := b.Free.Add(b.Locked)
		if total.IsPositive() {
			balances[b.Asset] = total
		}
	}
	return balances, nil
}

// tradeResponse is one /api/v3/myTrades entry.
type tradeResponse struct {
	ID       int64           `json:"id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Qty      decimal.Decimal `json:"qty"`
	QuoteQty decimal.Decimal `json:"quoteQty"`
	Time     int64           `json:"time"`
	IsBuyer  bool            `json:"isBuyer"`
}

// GetMyTrades retrieves the account's fills for one trading pair.
func (c *Client) GetMyTrades(ctx context.Context, pair, apiKey, apiSecret string) ([]models.TradeFill, error) {
	params := url.Values{}
	params.Set("symbol", pair)

	var trades []tradeResponse
	if err := c.get(ctx, "/api/v3/myTrades", params, apiKey, apiSecret, &trades); err != nil {
		return nil, err
	}

	fills := make([]models.TradeFill, 0, len(trades))
	for _, t := range trades {
		fills = append(fills, models.TradeFill{
			ID:       strconv.FormatInt(t.ID, 10),
			Pair:     t.Symbol,
			Price:    t.Price,
			Quantity: t.Qty,
			QuoteQty: t.QuoteQty,
			Time:     time.UnixMilli(t.Time).UTC(),
			IsBuyer:  t.IsBuyer,
		})
	}
	return fills, nil
}

// GetKlines retrieves OHLCV candles for a pair. Public endpoint, no signing.
func (c *Client) GetKlines(ctx context.Context, pair, interval string, limit int) ([]models.Candle, error) {
	if interval == "" {
		interval = "1d"
	}
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("symbol", pair)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	// Klines come back as heterogeneous arrays:
	// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
	var raw [][]json.RawMessage
	if err := c.get(ctx, "/api/v3/klines", params, "", "", &raw); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			continue
		}
		candle := models.Candle{Time: time.UnixMilli(openTime).UTC()}
		fields := []*float64{&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume}
		ok := true
		for i, dst := range fields {
			var s string
			if err := json.Unmarshal(k[i+1], &s); err != nil {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if ok {
			candles = append(candles, candle)
		}
	}
	return candles, nil
}

// tickerResponse is one /api/v3/ticker/price entry.
type tickerResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// GetTickerPrices retrieves the full current-price map. Only USDT-quoted
// pairs are kept; keys are base asset codes, with USDT itself pinned at 1.
func (c *Client) GetTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	var tickers []tickerResponse
	if err := c.get(ctx, "/api/v3/ticker/price", nil, "", "", &tickers); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal)
	for _, t := range tickers {
		asset := models.BaseAsset(t.Symbol)
		if asset == "" || asset == t.Symbol {
			// Not a USDT pair; cross rates are out of scope.
			continue
		}
		prices[asset] = t.Price
	}
	prices["USDT"] = decimal.NewFromInt(1)
	return prices, nil
}
