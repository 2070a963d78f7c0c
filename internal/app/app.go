// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/coinfolio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/coinfolio/internal/clients/binance"
	"github.com/bobmcallan/coinfolio/internal/clients/coingecko"
	"github.com/bobmcallan/coinfolio/internal/common"
	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/services/alert"
	"github.com/bobmcallan/coinfolio/internal/services/exchange"
	"github.com/bobmcallan/coinfolio/internal/services/manual"
	"github.com/bobmcallan/coinfolio/internal/services/notify"
	"github.com/bobmcallan/coinfolio/internal/services/portfolio"
	"github.com/bobmcallan/coinfolio/internal/services/pricefeed"
	"github.com/bobmcallan/coinfolio/internal/services/tax"
	"github.com/bobmcallan/coinfolio/internal/storage"
)

// App holds all initialized services and clients. It is the shared core
// behind the HTTP server and the background jobs.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	BinanceClient   *binance.Client
	CoinGeckoClient *coingecko.Client

	PortfolioService    *portfolio.Service
	TaxService          interfaces.TaxService
	ManualService       interfaces.ManualService
	ExchangeService     interfaces.ExchangeService
	PriceFeed           interfaces.PriceFeed
	MarketService       interfaces.MarketService
	AlertService        interfaces.AlertService
	NotificationService interfaces.NotificationService

	StartupTime time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, COINFOLIO_CONFIG, binary dir, then
	// the development fallback.
	if configPath == "" {
		configPath = os.Getenv("COINFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "coinfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/coinfolio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Resolve relative storage paths to the binary directory.
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.User.Path != "" && !filepath.IsAbs(config.Storage.User.Path) {
		config.Storage.User.Path = filepath.Join(binDir, config.Storage.User.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	binanceClient := binance.NewClient(
		binance.WithBaseURL(config.Clients.Binance.BaseURL),
		binance.WithLogger(logger),
		binance.WithRateLimit(config.Clients.Binance.RateLimit),
		binance.WithTimeout(config.Clients.Binance.GetTimeout()),
	)
	coingeckoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	notificationService := notify.NewService(storageManager, logger)
	manualService := manual.NewService(storageManager, notificationService, logger)
	exchangeService := exchange.NewService(
		storageManager,
		binanceClient,
		config.Clients.Binance.Pairs,
		config.Auth.EncryptionKey,
		logger,
	)
	priceFeed := pricefeed.NewService(binanceClient, coingeckoClient, logger)
	portfolioService := portfolio.NewService(storageManager, exchangeService, priceFeed, logger)
	taxService := tax.NewService(portfolioService, logger)
	alertService := alert.NewService(storageManager, priceFeed, notificationService, logger)

	a := &App{
		Config:              config,
		Logger:              logger,
		Storage:             storageManager,
		BinanceClient:       binanceClient,
		CoinGeckoClient:     coingeckoClient,
		PortfolioService:    portfolioService,
		TaxService:          taxService,
		ManualService:       manualService,
		ExchangeService:     exchangeService,
		PriceFeed:           priceFeed,
		MarketService:       priceFeed,
		AlertService:        alertService,
		NotificationService: notificationService,
		StartupTime:         startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
