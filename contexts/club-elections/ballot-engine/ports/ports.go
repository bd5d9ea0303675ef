package ports

import (
	"context"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	contractsv1 "clubvote/contracts/gen/events/v1"
)

type EventEnvelope = contractsv1.Envelope

// Ledger runs fn as one atomic unit of work. Implementations return
// domainerrors.ErrTransientConflict for serialization failures, deadlocks and
// lock timeouts so callers can retry the whole unit.
type Ledger interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the write-side view of the ledger inside one transaction.
type LedgerTx interface {
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	GetApplication(ctx context.Context, applicationID string) (entities.Application, error)
	// LockPosition serialises roster changes for one (election, position).
	LockPosition(ctx context.Context, electionID string, positionID string) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	FindCandidateByApplication(ctx context.Context, applicationID string) (entities.Candidate, bool, error)
	MaxBallotNumber(ctx context.Context, electionID string, positionID string) (int, error)
	InsertCandidate(ctx context.Context, candidate entities.Candidate) error
	DeleteCandidate(ctx context.Context, candidateID string) error
	// CloseBallotGap decrements every ballot number above removedNumber and
	// returns how many candidates moved.
	CloseBallotGap(ctx context.Context, electionID string, positionID string, removedNumber int) (int, error)
	ReviewApplication(ctx context.Context, review ApplicationReview) error
	HasVote(ctx context.Context, voterID string, positionID string) (bool, error)
	// InsertVote returns false when a vote for (voter, position) already exists.
	InsertVote(ctx context.Context, vote entities.Vote) (bool, error)
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type ApplicationReview struct {
	ApplicationID string
	Status        entities.ApplicationStatus
	Remarks       string
	ReviewedBy    string
	ReviewedAt    time.Time
}

// LedgerReader serves committed state to tallies, verification and ballots.
type LedgerReader interface {
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	GetPosition(ctx context.Context, positionID string) (entities.Position, error)
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error)
	ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error)
	ListCandidatesByElection(ctx context.Context, electionID string) ([]entities.Candidate, error)
	ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error)
	CountVotesByPosition(ctx context.Context, positionID string) (map[string]int, error)
	CountVotesByElection(ctx context.Context, electionID string) (map[string]int, error)
	GetVoteByReceipt(ctx context.Context, receipt string) (entities.Vote, error)
	ListVotedPositions(ctx context.Context, voterID string, electionID string) ([]string, error)
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Notification struct {
	EventID         string
	RecipientUserID string
	Kind            string
	Subject         string
	Body            string
}

// Notifier delivers member-facing messages. Delivery never touches the ledger.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type Telemetry interface {
	RecordOutcome(operation string, outcome string)
	RecordRetry(operation string)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ReceiptIssuer mints opaque verification receipts.
type ReceiptIssuer interface {
	NewReceipt(ctx context.Context, issuedAt time.Time) (string, error)
}
