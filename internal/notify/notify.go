package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is a one-way sink for operator-facing summary text. Failures are
// the caller's to tolerate; notification is never load-bearing.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no external channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification text.
func (n *LogNotifier) Send(_ context.Context, text string) error {
	n.logger.Info("operator-notification", zap.String("text", text))
	return nil
}
