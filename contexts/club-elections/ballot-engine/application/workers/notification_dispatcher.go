package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const (
	topicVoteCast              = "vote.cast"
	topicBallotCast            = "ballot.cast"
	topicCandidatePromoted     = "candidate.promoted"
	topicCandidateDisqualified = "candidate.disqualified"
	topicCandidateWithdrawn    = "candidate.withdrawn"
	defaultNotificationCG      = "ballot-engine-notification-cg"
)

type ballotEventPayload struct {
	VoterID      string   `json:"voter_id"`
	UserID       string   `json:"user_id"`
	ElectionID   string   `json:"election_id"`
	PositionID   string   `json:"position_id"`
	Receipt      string   `json:"receipt"`
	Receipts     []string `json:"receipts"`
	BallotNumber int      `json:"ballot_number"`
	Reason       string   `json:"reason"`
}

// NotificationDispatcher sends member confirmations for committed ballot
// events. A failed delivery is logged and dropped; it never reaches the ledger.
type NotificationDispatcher struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Notifier      ports.Notifier
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (d NotificationDispatcher) Start(ctx context.Context) error {
	logger := application.ResolveLogger(d.Logger)
	if d.Disabled {
		logger.Info("ballot notification dispatcher disabled by feature flag",
			"event", "ballot_notifications_disabled",
			"module", application.ModuleName,
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(d.ConsumerGroup)
	if group == "" {
		group = defaultNotificationCG
	}
	for _, topic := range []string{
		topicVoteCast,
		topicBallotCast,
		topicCandidatePromoted,
		topicCandidateDisqualified,
		topicCandidateWithdrawn,
	} {
		if err := d.Subscriber.Subscribe(ctx, topic, group, d.Handle); err != nil {
			logger.Error("ballot notification subscribe failed",
				"event", "ballot_notifications_subscribe_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("ballot notification dispatcher subscriptions active",
		"event", "ballot_notifications_started",
		"module", application.ModuleName,
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// Handle turns one ballot event into at most one notification.
func (d NotificationDispatcher) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(d.Logger)
	var payload ballotEventPayload
	if err := decodeEvent(event, &payload); err != nil {
		logger.Error("ballot notification payload decode failed",
			"event", "ballot_notification_decode_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	notification, ok := composeNotification(event, payload)
	if !ok {
		return nil
	}

	seen, err := reserve(ctx, d.Dedup, d.Clock, d.DedupTTL, event)
	if err != nil {
		return err
	}
	if seen {
		logger.Debug("ballot notification replay skipped",
			"event", "ballot_notification_replayed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}
	if err := d.Notifier.Notify(ctx, notification); err != nil {
		logger.Error("ballot notification delivery failed",
			"event", "ballot_notification_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return nil
	}
	logger.Info("ballot notification delivered",
		"event", "ballot_notification_delivered",
		"module", application.ModuleName,
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func composeNotification(event ports.EventEnvelope, payload ballotEventPayload) (ports.Notification, bool) {
	notification := ports.Notification{
		EventID: event.EventID,
		Kind:    event.EventType,
	}
	switch event.EventType {
	case topicVoteCast:
		notification.RecipientUserID = payload.VoterID
		notification.Subject = "Your vote has been recorded"
		notification.Body = "Keep this verification receipt to confirm your vote was counted: " + payload.Receipt
	case topicBallotCast:
		notification.RecipientUserID = payload.VoterID
		notification.Subject = "Your ballot has been recorded"
		notification.Body = "Verification receipts:\n" + strings.Join(payload.Receipts, "\n")
	case topicCandidatePromoted:
		notification.RecipientUserID = payload.UserID
		notification.Subject = "You are on the ballot"
		notification.Body = fmt.Sprintf("Your application was approved. Your ballot number is %d.", payload.BallotNumber)
	case topicCandidateDisqualified:
		notification.RecipientUserID = payload.UserID
		notification.Subject = "Your candidacy was disqualified"
		notification.Body = "Reason: " + payload.Reason
	case topicCandidateWithdrawn:
		notification.RecipientUserID = payload.UserID
		notification.Subject = "Your candidacy has been withdrawn"
		notification.Body = "Your withdrawal has been processed."
	default:
		return ports.Notification{}, false
	}
	if strings.TrimSpace(notification.RecipientUserID) == "" {
		return ports.Notification{}, false
	}
	return notification, true
}
