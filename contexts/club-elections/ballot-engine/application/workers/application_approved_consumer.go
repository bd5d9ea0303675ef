package workers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const (
	topicApplicationApproved = "application.approved"
	defaultApprovalCG        = "ballot-engine-approval-cg"
	systemActor              = "system:auto-promotion"
)

// ApplicationApprovedConsumer promotes applications as soon as the review
// service approves them. Promotion is idempotent, so redelivery is harmless.
type ApplicationApprovedConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Roster        commands.RosterUseCase
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c ApplicationApprovedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("application approval consumer disabled by feature flag",
			"event", "ballot_approval_consumer_disabled",
			"module", application.ModuleName,
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultApprovalCG
	}
	if err := c.Subscriber.Subscribe(ctx, topicApplicationApproved, group, c.Handle); err != nil {
		logger.Error("application approval subscribe failed",
			"event", "ballot_approval_consumer_subscribe_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"topic", topicApplicationApproved,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("application approval consumer subscription active",
		"event", "ballot_approval_consumer_started",
		"module", application.ModuleName,
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ApplicationApprovedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var payload struct {
		ApplicationID string `json:"application_id"`
		ReviewedBy    string `json:"reviewed_by"`
	}
	if err := decodeEvent(event, &payload); err != nil {
		logger.Error("application.approved payload decode failed",
			"event", "ballot_approval_decode_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	seen, err := reserve(ctx, c.Dedup, c.Clock, c.DedupTTL, event)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	actor := strings.TrimSpace(payload.ReviewedBy)
	if actor == "" {
		actor = systemActor
	}
	result, err := c.Roster.Promote(ctx, commands.PromoteCommand{
		ApplicationID: payload.ApplicationID,
		ActorID:       actor,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrApplicationNotApproved) || errors.Is(err, domainerrors.ErrApplicationNotFound) {
			logger.Warn("application.approved skipped",
				"event", "ballot_approval_skipped",
				"module", application.ModuleName,
				"layer", "worker",
				"event_id", event.EventID,
				"application_id", strings.TrimSpace(payload.ApplicationID),
				"reason", err.Error(),
			)
			return nil
		}
		return err
	}
	logger.Info("application.approved consumed",
		"event", "ballot_approval_consumed",
		"module", application.ModuleName,
		"layer", "worker",
		"event_id", event.EventID,
		"candidate_id", result.Candidate.CandidateID,
		"already_promoted", result.AlreadyPromoted,
	)
	return nil
}
