package trader

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backoff defaults. Thresholds are policy, not physics; they are kept
// configurable with these observed defaults.
const (
	DefaultPauseThreshold     = 3
	DefaultLongPauseThreshold = 10
	DefaultPauseDuration      = 15 * time.Minute
	DefaultLongPauseDuration  = time.Hour
	dailyResetInterval        = 24 * time.Hour
)

// BackoffConfig holds error backoff configuration.
type BackoffConfig struct {
	PauseThreshold     int
	LongPauseThreshold int
	PauseDuration      time.Duration
	LongPauseDuration  time.Duration
	Logger             *zap.Logger
}

// ErrorBackoffController tracks consecutive trading failures and enforces
// escalating cool-down pauses. It also owns the daily traded-value counter,
// which resets 24 hours from its last reset, independent of the error count.
type ErrorBackoffController struct {
	cfg    BackoffConfig
	logger *zap.Logger

	mu          sync.Mutex
	consecutive int
	pausedUntil time.Time
	dailySpent  float64
	dailyReset  time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewErrorBackoffController creates a backoff controller with defaults for
// any unset threshold.
func NewErrorBackoffController(cfg BackoffConfig) *ErrorBackoffController {
	if cfg.PauseThreshold <= 0 {
		cfg.PauseThreshold = DefaultPauseThreshold
	}
	if cfg.LongPauseThreshold <= 0 {
		cfg.LongPauseThreshold = DefaultLongPauseThreshold
	}
	if cfg.PauseDuration <= 0 {
		cfg.PauseDuration = DefaultPauseDuration
	}
	if cfg.LongPauseDuration <= 0 {
		cfg.LongPauseDuration = DefaultLongPauseDuration
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ErrorBackoffController{
		cfg:        cfg,
		logger:     logger,
		dailyReset: time.Now(),
		now:        time.Now,
	}
}

// RecordFailure increments the consecutive-error counter and starts a pause
// when a threshold is reached. Reaching the long threshold resets the counter.
func (c *ErrorBackoffController) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutive++
	ConsecutiveErrors.Set(float64(c.consecutive))

	switch {
	case c.consecutive >= c.cfg.LongPauseThreshold:
		c.pausedUntil = c.now().Add(c.cfg.LongPauseDuration)
		c.consecutive = 0
		ConsecutiveErrors.Set(0)
		PausesTotal.WithLabelValues("long").Inc()
		c.logger.Warn("trading-paused",
			zap.Duration("duration", c.cfg.LongPauseDuration),
			zap.String("reason", "error-threshold-long"))

	case c.consecutive >= c.cfg.PauseThreshold:
		c.pausedUntil = c.now().Add(c.cfg.PauseDuration)
		PausesTotal.WithLabelValues("short").Inc()
		c.logger.Warn("trading-paused",
			zap.Duration("duration", c.cfg.PauseDuration),
			zap.String("reason", "error-threshold"))
	}
}

// RecordSuccess resets the consecutive-error counter immediately.
func (c *ErrorBackoffController) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutive = 0
	ConsecutiveErrors.Set(0)
}

// IsPaused reports whether trading is currently cooled down. An expired pause
// clears itself and resets the error counter.
func (c *ErrorBackoffController) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pausedUntil.IsZero() {
		return false
	}
	if c.now().Before(c.pausedUntil) {
		return true
	}

	// Pause expired.
	c.pausedUntil = time.Time{}
	c.consecutive = 0
	ConsecutiveErrors.Set(0)
	c.logger.Info("trading-pause-expired")
	return false
}

// PauseRemaining returns how long the current pause has left, or zero when
// trading is not paused.
func (c *ErrorBackoffController) PauseRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pausedUntil.IsZero() {
		return 0
	}
	remaining := c.pausedUntil.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ConsecutiveFailures returns the current consecutive-error count.
func (c *ErrorBackoffController) ConsecutiveFailures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutive
}

// AddDailySpend adds a confirmed purchase value to the daily traded counter.
func (c *ErrorBackoffController) AddDailySpend(value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDailyLocked()
	c.dailySpent += value
	DailyTradedUSD.Set(c.dailySpent)
}

// DailySpent returns the value traded in the current 24h window.
func (c *ErrorBackoffController) DailySpent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDailyLocked()
	return c.dailySpent
}

func (c *ErrorBackoffController) rollDailyLocked() {
	if c.now().Sub(c.dailyReset) >= dailyResetInterval {
		c.dailySpent = 0
		c.dailyReset = c.now()
		DailyTradedUSD.Set(0)
		c.logger.Info("daily-traded-counter-reset")
	}
}
