package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/coinfolio/internal/app"
	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/models"
	"github.com/bobmcallan/coinfolio/internal/services/alert"
	"github.com/bobmcallan/coinfolio/internal/services/exchange"
	"github.com/bobmcallan/coinfolio/internal/services/manual"
	"github.com/bobmcallan/coinfolio/internal/services/notify"
	"github.com/bobmcallan/coinfolio/internal/services/portfolio"
	"github.com/bobmcallan/coinfolio/internal/services/tax"
	"github.com/bobmcallan/coinfolio/internal/storage"
)

// stubExchangeClient returns fixed data for handler tests.
type stubExchangeClient struct{}

func (c *stubExchangeClient) Name() string { return "binance" }

func (c *stubExchangeClient) GetBalances(_ context.Context, _, _ string) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

func (c *stubExchangeClient) GetMyTrades(_ context.Context, _, _, _ string) ([]models.TradeFill, error) {
	return nil, nil
}

func (c *stubExchangeClient) GetKlines(_ context.Context, _, _ string, _ int) ([]models.Candle, error) {
	return []models.Candle{{Open: 1, Close: 2}}, nil
}

func (c *stubExchangeClient) GetTickerPrices(_ context.Context) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{"BTC": decimal.NewFromInt(60000)}, nil
}

// stubMarket implements PriceFeed and MarketService without remote calls.
type stubMarket struct{}

func (m *stubMarket) GetPrices(_ context.Context) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{"BTC": decimal.NewFromInt(60000)}, nil
}

func (m *stubMarket) TopCoins(_ context.Context) ([]models.Coin, error) {
	return []models.Coin{{ID: "bitcoin", Symbol: "BTC"}}, nil
}

func (m *stubMarket) MarketChart(_ context.Context, _, _ string) ([]models.ChartPoint, error) {
	return []models.ChartPoint{{Value: 100}}, nil
}

func (m *stubMarket) MarketOHLC(_ context.Context, _, _ string) ([]models.OHLCPoint, error) {
	return []models.OHLCPoint{{Open: 1}}, nil
}

func (m *stubMarket) Candles(_ context.Context, _, _ string) ([]models.Candle, error) {
	return []models.Candle{{Open: 1}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := common.NewSilentLogger()
	config := common.NewDefaultConfig()
	config.Storage.Internal.Path = t.TempDir()
	config.Storage.User.Path = t.TempDir()
	config.Auth.JWTSecret = "unit-test-jwt-secret"
	config.Auth.EncryptionKey = "0123456789abcdef0123456789abcdef"

	mgr, err := storage.NewManager(logger, config)
	require.NoError(t, err, "storage manager should start on temp dirs")
	t.Cleanup(func() { mgr.Close() })

	market := &stubMarket{}
	notifier := notify.NewService(mgr, logger)
	exchangeSvc := exchange.NewService(mgr, &stubExchangeClient{}, config.Clients.Binance.Pairs, config.Auth.EncryptionKey, logger)
	portfolioSvc := portfolio.NewService(mgr, exchangeSvc, market, logger)

	a := &app.App{
		Config:              config,
		Logger:              logger,
		Storage:             mgr,
		PortfolioService:    portfolioSvc,
		TaxService:          tax.NewService(portfolioSvc, logger),
		ManualService:       manual.NewService(mgr, notifier, logger),
		ExchangeService:     exchangeSvc,
		PriceFeed:           market,
		MarketService:       market,
		AlertService:        alert.NewService(mgr, market, notifier, logger),
		NotificationService: notifier,
	}
	return NewServer(a)
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register should succeed: %s", rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token, "register must return a token")
	return resp.Token
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/version", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "POST to health should be rejected")
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate email should be rejected")

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, "login should succeed: %s", rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@example.com", resp.Email)

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong password should be rejected")
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed email should be rejected")

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ok@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "short password should be rejected")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	paths := []string{
		"/api/portfolio/summary",
		"/api/portfolio/transactions",
		"/api/tax/report",
		"/api/reports/csv",
		"/api/user/profile",
		"/api/manual/transactions",
		"/api/exchange/keys",
		"/api/alerts",
		"/api/notifications",
	}
	for _, path := range paths {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s should require auth", path)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/portfolio/summary", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "invalid token should be rejected")
}

func TestManualLedgerFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "btc",
		"kind":   "BUY",
		"amount": "1",
		"price":  "30000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "add should succeed: %s", rec.Body.String())

	var tx models.ManualTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, "BTC", tx.Symbol, "symbol should be normalized to upper case")

	rec = doJSON(t, srv, http.MethodGet, "/api/manual/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []models.ManualTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)

	rec = doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "BTC",
		"kind":   "STAKE",
		"amount": "1",
		"price":  "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown kind should be rejected")

	rec = doJSON(t, srv, http.MethodDelete, "/api/manual/transactions/"+tx.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPortfolioSummaryReflectsLedger(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "BTC",
		"kind":   "BUY",
		"amount": "0.5",
		"price":  "30000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/portfolio/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "summary should succeed: %s", rec.Body.String())

	var rows []models.SummaryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "BTC", rows[0].Symbol)
	assert.Equal(t, "30000", rows[0].Value.String(), "0.5 BTC at 60000 should be worth 30000")
}

func TestTaxReportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "BTC", "kind": "BUY", "amount": "1", "price": "10000",
		"date": "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "BTC", "kind": "SELL", "amount": "0.5", "price": "20000",
		"date": "2024-06-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tax/report?year=2024", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "tax report should succeed: %s", rec.Body.String())

	var report models.TaxReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, "5000", report.TotalRealizedPnL.String())
	assert.Len(t, report.Events, 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/tax/report?year=banana", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-numeric year should be rejected")
}

func TestExchangeKeyEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/exchange/keys", token, map[string]string{
		"exchange":   "binance",
		"api_key":    "pub",
		"api_secret": "hunter2-secret",
		"label":      "main",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "add key should succeed: %s", rec.Body.String())

	var key models.ExchangeKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &key))
	assert.NotContains(t, rec.Body.String(), "hunter2-secret", "the api secret must never leave the server")

	rec = doJSON(t, srv, http.MethodGet, "/api/exchange/keys", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []*models.ExchangeKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	require.Len(t, keys, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/api/exchange/keys/"+key.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/alerts", token, map[string]interface{}{
		"symbol":       "BTC",
		"target_price": "70000",
		"condition":    "ABOVE",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create alert should succeed: %s", rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/alerts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []*models.PriceAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/api/alerts/"+alerts[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarketEndpointsArePublic(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/market/coins", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/market/chart/bitcoin?days=7", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/market/candles?symbol=BTC", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/market/candles", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "candles without symbol should be rejected")
}

func TestReportCSVExport(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/manual/transactions", token, map[string]interface{}{
		"symbol": "BTC", "kind": "BUY", "amount": "1", "price": "30000",
		"date": "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/reports/csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "export should succeed: %s", rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transactions.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2, "header plus one data row")
	assert.Equal(t, "Date,Type,Asset,Amount,Price,Value,Status", lines[0])
	assert.Contains(t, lines[1], "2024-01-10T00:00:00Z,BUY,BTC,1,30000,30000,Completed")
}

func TestUserProfileReadAndUpdate(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "profile should succeed: %s", rec.Body.String())
	var profile profileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Empty(t, profile.Name)

	rec = doJSON(t, srv, http.MethodPut, "/api/user/profile", token, map[string]string{
		"name": "Alice", "email": "evil@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "alice@example.com", profile.Email, "email is the login identity and must not change")

	rec = doJSON(t, srv, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Alice", profile.Name, "update must persist")
}
