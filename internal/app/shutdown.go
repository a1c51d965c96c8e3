package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully stops the engine. Loops observe the cancelled context
// at the top of their next cycle; already-recorded pending trades are left
// untouched for the next recovery pass. There is no hard-kill path.
func (a *App) Shutdown() error {
	a.logger.Info("engine-shutting-down")

	a.probe.SetReady(false)
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	a.wg.Wait()

	err = a.store.Close()
	if err != nil {
		a.logger.Error("store-close-error", zap.Error(err))
	}

	a.scanCache.Close()

	a.logger.Info("engine-shutdown-complete")
	_ = a.logger.Sync()

	return nil
}
