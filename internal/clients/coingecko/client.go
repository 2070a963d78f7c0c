// Package coingecko provides a client for the CoinGecko market-data API
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second; the free tier is strict
)

// Client implements the MarketDataClient interface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// NewClient creates a new CoinGecko client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("CoinGecko API request")

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
		return fmt.Errorf("CoinGecko API error: status %d on %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}

	return nil
}

// marketEntry is one /coins/markets entry.
type marketEntry struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         int64   `json:"market_cap"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	Image             string  `json:"image"`
	SparklineIn7d     *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// GetTopCoins retrieves the top 50 coins by market cap with 7-day sparklines.
func (c *Client) GetTopCoins(ctx context.Context) ([]models.Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", "50")
	params.Set("page", "1")
	params.Set("sparkline", "true")

	var entries []marketEntry
	if err := c.get(ctx, "/coins/markets", params, &entries); err != nil {
		return nil, err
	}

	coins := make([]models.Coin, 0, len(entries))
	for _, e := range entries {
		coin := models.Coin{
			ID:                e.ID,
			Symbol:            models.BaseAsset(e.Symbol),
			Name:              e.Name,
			CurrentPrice:      e.CurrentPrice,
			MarketCap:         e.MarketCap,
			PriceChangePct24h: e.PriceChangePct24h,
			Image:             e.Image,
		}
		if e.SparklineIn7d != nil {
			coin.Sparkline = e.SparklineIn7d.Price
		}
		coins = append(coins, coin)
	}
	return coins, nil
}

// GetMarketChart retrieves a (timestamp, price) series for a coin ID.
func (c *Client) GetMarketChart(ctx context.Context, coinID, days string) ([]models.ChartPoint, error) {
	if days == "" {
		days = "7"
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)

	// Series come back as [[timestampMillis, price], ...]
	var resp struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", params, &resp); err != nil {
		return nil, err
	}

	points := make([]models.ChartPoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, models.ChartPoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Value: p[1],
		})
	}
	return points, nil
}

// GetMarketOHLC retrieves an OHLC series for a coin ID.
func (c *Client) GetMarketOHLC(ctx context.Context, coinID, days string) ([]models.OHLCPoint, error) {
	if days == "" {
		days = "7"
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)

	// [[timestampMillis, open, high, low, close], ...]
	var raw [][]float64
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/ohlc", params, &raw); err != nil {
		return nil, err
	}

	points := make([]models.OHLCPoint, 0, len(raw))
	for _, p := range raw {
		if len(p) < 5 {
			continue
		}
		points = append(points, models.OHLCPoint{
			Time:  time.UnixMilli(int64(p[0])).UTC(),
			Open:  p[1],
			High:  p[2],
			Low:   p[3],
			Close: p[4],
		})
	}
	return points, nil
}
