package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/adapters/memory"
	"clubvote/contexts/club-elections/ballot-engine/adapters/receipts"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	"clubvote/contexts/club-elections/ballot-engine/application/workers"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
	contractsv1 "clubvote/contracts/gen/events/v1"

	"github.com/stretchr/testify/require"
)

type published struct {
	topic string
	event ports.EventEnvelope
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, event: event})
	return nil
}

type recordingSubscriber struct {
	topics []string
	groups []string
}

func (s *recordingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	_ func(context.Context, ports.EventEnvelope) error,
) error {
	s.topics = append(s.topics, topic)
	s.groups = append(s.groups, consumerGroup)
	return nil
}

type recordingNotifier struct {
	sent []ports.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification ports.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore() *memory.Store {
	store := memory.NewStore()
	store.SetElection(entities.Election{ElectionID: "el-1", Title: "Council", Status: entities.ElectionStatusVoting})
	store.SetPosition(entities.Position{PositionID: "pos-1", ElectionID: "el-1", Title: "Chair"})
	store.SetCandidate(entities.Candidate{
		CandidateID:  "cand-1",
		ElectionID:   "el-1",
		PositionID:   "pos-1",
		UserID:       "user-cand-1",
		FullName:     "Ama",
		BallotNumber: 1,
	})
	return store
}

func castOne(t *testing.T, store *memory.Store, voterID string) commands.CastVoteResult {
	t.Helper()
	uc := commands.AdmissionUseCase{
		Ledger:   store,
		Receipts: receipts.Issuer{},
		Clock:    store,
		IDGen:    store,
		Logger:   discardLogger(),
	}
	result, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID:     voterID,
		ElectionID:  "el-1",
		PositionID:  "pos-1",
		CandidateID: "cand-1",
	})
	require.NoError(t, err)
	return result
}

func envelope(t *testing.T, eventID string, eventType string, data map[string]any) ports.EventEnvelope {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		SourceService: "test",
		SchemaVersion: 1,
		Data:          payload,
	}
}

func TestOutboxRelayPublishesAndMarksRows(t *testing.T) {
	store := newStore()
	result := castOne(t, store, "voter-1")
	castOne(t, store, "voter-2")

	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, Logger: discardLogger()}
	require.NoError(t, relay.RunOnce(context.Background()))

	require.Len(t, publisher.events, 2)
	for _, item := range publisher.events {
		require.Equal(t, commands.EventVoteCast, item.topic)
		require.Equal(t, "el-1", item.event.PartitionKey)
	}
	var first map[string]any
	require.NoError(t, json.Unmarshal(publisher.events[0].event.Data, &first))
	receiptsSeen := []any{first["receipt"]}
	var second map[string]any
	require.NoError(t, json.Unmarshal(publisher.events[1].event.Data, &second))
	receiptsSeen = append(receiptsSeen, second["receipt"])
	require.Contains(t, receiptsSeen, result.Receipt)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	require.NoError(t, relay.RunOnce(context.Background()))
	require.Len(t, publisher.events, 2)
}

func TestOutboxRelayLeavesRowPendingWhenPublishFails(t *testing.T) {
	store := newStore()
	castOne(t, store, "voter-1")

	publisher := &recordingPublisher{err: errors.New("bus down")}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 5, Logger: discardLogger()}
	require.Error(t, relay.RunOnce(context.Background()))

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestOutboxRelayHaltsOnEnvelopeConsumersWouldReject(t *testing.T) {
	store := newStore()
	castOne(t, store, "voter-1")

	unnamed := envelope(t, "", commands.EventVoteCast, map[string]any{"voter_id": "voter-2"})
	unnamed.OccurredAt = time.Now().UTC().Add(time.Hour)
	require.NoError(t, store.InTx(context.Background(), func(tx ports.LedgerTx) error {
		return tx.AppendOutbox(context.Background(), unnamed)
	}))

	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, Logger: discardLogger()}
	require.ErrorIs(t, relay.RunOnce(context.Background()), contractsv1.ErrMalformedEnvelope)

	require.Len(t, publisher.events, 1)
	require.Equal(t, commands.EventVoteCast, publisher.events[0].topic)
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestNotificationDispatcherDeliversOncePerEvent(t *testing.T) {
	store := newStore()
	notifier := &recordingNotifier{}
	dispatcher := workers.NotificationDispatcher{
		Dedup:    store,
		Notifier: notifier,
		Clock:    store,
		Logger:   discardLogger(),
	}
	event := envelope(t, "evt-1", commands.EventVoteCast, map[string]any{
		"voter_id": "voter-1",
		"receipt":  "VR-00000000000000AA-1",
	})

	require.NoError(t, dispatcher.Handle(context.Background(), event))
	require.NoError(t, dispatcher.Handle(context.Background(), event))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "voter-1", notifier.sent[0].RecipientUserID)
	require.Contains(t, notifier.sent[0].Body, "VR-00000000000000AA-1")

	forged := envelope(t, "evt-1", commands.EventVoteCast, map[string]any{"voter_id": "voter-9"})
	err := dispatcher.Handle(context.Background(), forged)
	require.ErrorIs(t, err, domainerrors.ErrEventPayloadConflict)
	require.Len(t, notifier.sent, 1)
}

func TestNotificationDispatcherUndecodableEventStaysRedeliverable(t *testing.T) {
	store := newStore()
	notifier := &recordingNotifier{}
	dispatcher := workers.NotificationDispatcher{Dedup: store, Notifier: notifier, Logger: discardLogger()}

	broken := envelope(t, "evt-5", commands.EventVoteCast, nil)
	broken.Data = json.RawMessage(`"oops"`)
	require.Error(t, dispatcher.Handle(context.Background(), broken))
	require.Empty(t, notifier.sent)

	redelivered := envelope(t, "evt-5", commands.EventVoteCast, map[string]any{
		"voter_id": "voter-5",
		"receipt":  "VR-00000000000000BB-1",
	})
	require.NoError(t, dispatcher.Handle(context.Background(), redelivered))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "voter-5", notifier.sent[0].RecipientUserID)
}

func TestNotificationDispatcherComposesRosterMessages(t *testing.T) {
	store := newStore()
	notifier := &recordingNotifier{}
	dispatcher := workers.NotificationDispatcher{Dedup: store, Notifier: notifier, Logger: discardLogger()}

	require.NoError(t, dispatcher.Handle(context.Background(), envelope(t, "evt-p", commands.EventCandidatePromoted, map[string]any{
		"user_id":       "user-7",
		"ballot_number": 3,
	})))
	require.NoError(t, dispatcher.Handle(context.Background(), envelope(t, "evt-d", commands.EventCandidateDisqualified, map[string]any{
		"user_id": "user-8",
		"reason":  "campaign violation",
	})))
	require.NoError(t, dispatcher.Handle(context.Background(), envelope(t, "evt-x", "election.archived", map[string]any{
		"user_id": "user-9",
	})))

	require.Len(t, notifier.sent, 2)
	require.Contains(t, notifier.sent[0].Body, "ballot number is 3")
	require.Equal(t, "Reason: campaign violation", notifier.sent[1].Body)
}

func TestNotificationDispatcherSwallowsDeliveryFailure(t *testing.T) {
	store := newStore()
	dispatcher := workers.NotificationDispatcher{
		Dedup:    store,
		Notifier: &recordingNotifier{err: errors.New("smtp unavailable")},
		Logger:   discardLogger(),
	}
	event := envelope(t, "evt-1", commands.EventCandidateWithdrawn, map[string]any{"user_id": "user-1"})
	require.NoError(t, dispatcher.Handle(context.Background(), event))
}

func TestNotificationDispatcherSubscribesToBallotTopics(t *testing.T) {
	subscriber := &recordingSubscriber{}
	dispatcher := workers.NotificationDispatcher{Subscriber: subscriber, Logger: discardLogger()}
	require.NoError(t, dispatcher.Start(context.Background()))
	require.ElementsMatch(t, []string{
		commands.EventVoteCast,
		commands.EventBallotCast,
		commands.EventCandidatePromoted,
		commands.EventCandidateDisqualified,
		commands.EventCandidateWithdrawn,
	}, subscriber.topics)
	require.Equal(t, "ballot-engine-notification-cg", subscriber.groups[0])

	disabled := &recordingSubscriber{}
	require.NoError(t, workers.NotificationDispatcher{Subscriber: disabled, Disabled: true, Logger: discardLogger()}.Start(context.Background()))
	require.Empty(t, disabled.topics)
}

func TestApplicationApprovedConsumerPromotes(t *testing.T) {
	store := newStore()
	store.SetApplication(entities.Application{
		ApplicationID: "app-1",
		ElectionID:    "el-1",
		PositionID:    "pos-1",
		UserID:        "user-2",
		ApplicantName: "Kofi",
		Status:        entities.ApplicationStatusApproved,
	})
	consumer := workers.ApplicationApprovedConsumer{
		Dedup: store,
		Roster: commands.RosterUseCase{
			Ledger: store,
			Clock:  store,
			IDGen:  store,
			Logger: discardLogger(),
		},
		Clock:  store,
		Logger: discardLogger(),
	}
	event := envelope(t, "evt-approve", "application.approved", map[string]any{
		"application_id": "app-1",
		"reviewed_by":    "admin-1",
	})
	require.NoError(t, consumer.Handle(context.Background(), event))
	require.NoError(t, consumer.Handle(context.Background(), event))

	ballot, err := store.ListCandidatesByPosition(context.Background(), "pos-1")
	require.NoError(t, err)
	require.Len(t, ballot, 2)
	require.Equal(t, "Kofi", ballot[1].FullName)
	require.Equal(t, 2, ballot[1].BallotNumber)
}

func TestApplicationApprovedConsumerSkipsUnapproved(t *testing.T) {
	store := newStore()
	store.SetApplication(entities.Application{
		ApplicationID: "app-2",
		ElectionID:    "el-1",
		PositionID:    "pos-1",
		UserID:        "user-3",
		Status:        entities.ApplicationStatusPending,
	})
	consumer := workers.ApplicationApprovedConsumer{
		Dedup:  store,
		Roster: commands.RosterUseCase{Ledger: store, Clock: store, IDGen: store, Logger: discardLogger()},
		Logger: discardLogger(),
	}
	require.NoError(t, consumer.Handle(context.Background(), envelope(t, "evt-2", "application.approved", map[string]any{
		"application_id": "app-2",
	})))
	require.NoError(t, consumer.Handle(context.Background(), envelope(t, "evt-3", "application.approved", map[string]any{
		"application_id": "app-missing",
	})))

	ballot, err := store.ListCandidatesByPosition(context.Background(), "pos-1")
	require.NoError(t, err)
	require.Len(t, ballot, 1)

	bad := ports.EventEnvelope{EventID: "evt-4", EventType: "application.approved", Data: json.RawMessage(`"oops"`)}
	require.Error(t, consumer.Handle(context.Background(), bad))
	seen, err := store.ReserveEvent(context.Background(), "evt-4", "x", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, seen)
}

func TestConsumersRejectMalformedEnvelopes(t *testing.T) {
	store := newStore()
	notifier := &recordingNotifier{}
	dispatcher := workers.NotificationDispatcher{Dedup: store, Notifier: notifier, Logger: discardLogger()}

	missingID := envelope(t, "", commands.EventVoteCast, map[string]any{"voter_id": "voter-1"})
	require.ErrorIs(t, dispatcher.Handle(context.Background(), missingID), contractsv1.ErrMalformedEnvelope)

	future := envelope(t, "evt-future", commands.EventVoteCast, map[string]any{"voter_id": "voter-1"})
	future.SchemaVersion = contractsv1.SchemaVersion + 1
	require.ErrorIs(t, dispatcher.Handle(context.Background(), future), contractsv1.ErrMalformedEnvelope)
	require.Empty(t, notifier.sent)

	seen, err := store.ReserveEvent(context.Background(), "evt-future", "x", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.False(t, seen)
}
