package app

import (
	"context"
	"sync"

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

// App wires the trading engine together and owns its lifecycle. All long
// running loops are cooperative: they suspend on marketplace calls, store
// calls and fixed sleeps, and observe the app context at the top of each
// cycle.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	probe      *healthprobe.Probe
	httpServer *httpserver.Server
	scanCache  cache.Cache
	client     marketplace.Client
	store      storage.Store
	scanner    *scanner.CachedScanner
	trader     *trader.Trader
	backoff    *trader.ErrorBackoffController
	reconciler *storage.Reconciler
	notifier   notify.Notifier
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}
