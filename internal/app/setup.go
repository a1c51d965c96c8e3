package app

import (
	"context"
	"fmt"

	"github.com/antonk9218/skinflip/internal/marketplace"
	"github.com/antonk9218/skinflip/internal/notify"
	"github.com/antonk9218/skinflip/internal/scanner"
	"github.com/antonk9218/skinflip/internal/storage"
	"github.com/antonk9218/skinflip/internal/trader"
	"github.com/antonk9218/skinflip/pkg/cache"
	"github.com/antonk9218/skinflip/pkg/config"
	"github.com/antonk9218/skinflip/pkg/healthprobe"
	"github.com/antonk9218/skinflip/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates the application with all components wired.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:    cfg,
		logger: logger,
		probe:  healthprobe.New(),
		ctx:    ctx,
		cancel: cancel,
	}

	scanCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger.Named("cache"),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create scan cache: %w", err)
	}
	a.scanCache = scanCache

	a.client = marketplace.NewHTTPClient(&marketplace.HTTPConfig{
		BaseURL:           cfg.MarketplaceBaseURL,
		APIKey:            cfg.MarketplaceAPIKey,
		RequestTimeout:    cfg.MarketplaceTimeout,
		RequestsPerSecond: cfg.MarketplaceRPS,
		Logger:            logger.Named("marketplace"),
	})

	store, err := storage.NewPostgresStore(&storage.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger.Named("storage"),
	})
	if err != nil {
		cancel()
		scanCache.Close()
		return nil, fmt.Errorf("create trade store: %w", err)
	}
	a.store = store

	baseScanner := scanner.New(scanner.Config{
		Marketplace:      cfg.MarketplaceName,
		MaxOpportunities: cfg.MaxOpportunities,
		Logger:           logger.Named("scanner"),
	})
	a.scanner = scanner.NewCachedScanner(baseScanner, a.client, a.scanCache, cfg.ScanTTL, logger.Named("scanner"))

	a.backoff = trader.NewErrorBackoffController(trader.BackoffConfig{
		PauseThreshold:     cfg.ErrorPauseThreshold,
		LongPauseThreshold: cfg.ErrorLongPauseThreshold,
		PauseDuration:      cfg.ErrorPauseDuration,
		LongPauseDuration:  cfg.ErrorLongPauseDuration,
		Logger:             logger.Named("backoff"),
	})

	a.notifier = notify.NewLogNotifier(logger.Named("notify"))

	a.trader = trader.New(trader.Config{
		Marketplace:       cfg.MarketplaceName,
		StaleQuotePercent: cfg.StaleQuotePercent,
		PacingDelay:       cfg.TradePacing,
		MinMarginPercent:  cfg.MinMarginPercent,
		FeePercent:        cfg.FeePercent,
		Notifier:          a.notifier,
		Logger:            logger.Named("trader"),
	}, a.client, a.store, a.backoff)

	a.reconciler = storage.NewReconciler(a.store, a.client, a.notifier, logger.Named("recovery"))

	a.httpServer = httpserver.New(&httpserver.Config{
		Port:   cfg.HTTPPort,
		Logger: logger.Named("http"),
		Probe:  a.probe,
		Store:  a.store,
	})

	return a, nil
}
