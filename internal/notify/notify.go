package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a message to a user over the external messaging
// transport. Implementations are fire-and-forget from the caller's
// point of view: a returned error means the send did not happen.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// LogNotifier implements Notifier by logging the message. Used when no
// transport is configured (local development, tests).
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, userID int64, text string) error {
	n.log.Info("notification", "user_id", userID, "text", text)
	return nil
}
