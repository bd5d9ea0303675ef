package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const defaultRelayBatch = 100

// OutboxRelay moves committed ballot and roster events from the ledger outbox
// onto the bus. Rows go out in commit order; a row is marked only after the
// bus accepted it.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce drains at most one batch. The first row that cannot be relayed
// halts the batch so later events never overtake it.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultRelayBatch
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("ballot outbox list failed",
			"event", "ballot_outbox_list_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	byType := make(map[string]int)
	for _, row := range pending {
		if err := r.relayRow(ctx, row); err != nil {
			logger.Error("ballot outbox relay halted",
				"event", "ballot_outbox_relay_halted",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", row.EventType,
				"election_id", row.PartitionKey,
				"relayed_before_halt", sum(byType),
				"error", err.Error(),
			)
			return err
		}
		byType[row.EventType]++
	}

	logger.Info("ballot outbox batch relayed",
		"event", "ballot_outbox_batch_relayed",
		"module", application.ModuleName,
		"layer", "worker",
		"published_count", len(pending),
		"published_by_type", byType,
		"batch_full", len(pending) == limit,
	)
	return nil
}

var errRowMismatch = errors.New("outbox row does not match its envelope")

// relayRow publishes one row under the topic recorded in the row itself. The
// envelope must satisfy the consumer contract; anything consumers would
// reject stays pending.
func (r OutboxRelay) relayRow(ctx context.Context, row ports.OutboxMessage) error {
	var event ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return fmt.Errorf("decode outbox row: %w", err)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	if event.EventType != row.EventType {
		return fmt.Errorf("%w: row type %q, envelope type %q", errRowMismatch, row.EventType, event.EventType)
	}
	if event.PartitionKey == "" {
		event.PartitionKey = row.PartitionKey
	}
	if err := r.Publisher.Publish(ctx, row.EventType, event); err != nil {
		return fmt.Errorf("publish %s: %w", row.EventType, err)
	}
	return r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now())
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
