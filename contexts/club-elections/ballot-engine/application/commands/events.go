package commands

import (
	"context"
	"encoding/json"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/ports"
	contractsv1 "clubvote/contracts/gen/events/v1"
)

const (
	EventVoteCast              = "vote.cast"
	EventBallotCast            = "ballot.cast"
	EventCandidatePromoted     = "candidate.promoted"
	EventCandidateDisqualified = "candidate.disqualified"
	EventCandidateWithdrawn    = "candidate.withdrawn"
)

// newBallotEnvelope builds outbox envelopes. Every command-side event is
// partitioned by election so consumers see one election's history in order.
func newBallotEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-engine",
		TraceID:          eventID,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}

func appendEvent(
	ctx context.Context,
	tx ports.LedgerTx,
	idGen ports.IDGenerator,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newBallotEnvelope(eventID, eventType, electionID, occurredAt, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
