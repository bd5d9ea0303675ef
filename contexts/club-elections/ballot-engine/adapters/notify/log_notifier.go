package notify

import (
	"context"
	"log/slog"

	"clubvote/contexts/club-elections/ballot-engine/ports"
)

// LogNotifier records notifications in the structured log. It stands in for
// the mail gateway, which lives outside this service.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, notification ports.Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ballot notification queued for delivery",
		"event", "ballot_notification_queued",
		"module", "club-elections/ballot-engine",
		"layer", "adapter",
		"event_id", notification.EventID,
		"kind", notification.Kind,
		"recipient_user_id", notification.RecipientUserID,
		"subject", notification.Subject,
	)
	return nil
}

var _ ports.Notifier = LogNotifier{}
