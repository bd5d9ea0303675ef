package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// ledgerState is copied at the start of every transaction and swapped in on
// commit, so a failed unit of work leaves no trace.
type ledgerState struct {
	elections    map[string]entities.Election
	positions    map[string]entities.Position
	applications map[string]entities.Application
	candidates   map[string]entities.Candidate
	votes        map[string]entities.Vote
	voteKeys     map[string]string
	receipts     map[string]string
	outbox       map[string]outboxRecord
}

func newLedgerState() ledgerState {
	return ledgerState{
		elections:    make(map[string]entities.Election),
		positions:    make(map[string]entities.Position),
		applications: make(map[string]entities.Application),
		candidates:   make(map[string]entities.Candidate),
		votes:        make(map[string]entities.Vote),
		voteKeys:     make(map[string]string),
		receipts:     make(map[string]string),
		outbox:       make(map[string]outboxRecord),
	}
}

func (st ledgerState) clone() ledgerState {
	return ledgerState{
		elections:    maps.Clone(st.elections),
		positions:    maps.Clone(st.positions),
		applications: maps.Clone(st.applications),
		candidates:   maps.Clone(st.candidates),
		votes:        maps.Clone(st.votes),
		voteKeys:     maps.Clone(st.voteKeys),
		receipts:     maps.Clone(st.receipts),
		outbox:       maps.Clone(st.outbox),
	}
}

// Store is the in-process ledger used by tests and local runs. Transactions
// are serialised store-wide; reads see only committed state.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	state      ledgerState
	eventDedup map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		state:      newLedgerState(),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) SetElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetPosition(position entities.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.positions[strings.TrimSpace(position.PositionID)] = position
}

func (s *Store) SetApplication(application entities.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.applications[strings.TrimSpace(application.ApplicationID)] = application
}

func (s *Store) SetCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
}

func (s *Store) InTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.state.clone()
	s.mu.RUnlock()

	if err := fn(&memoryTx{state: &staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = staged
	s.mu.Unlock()
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.election(electionID)
}

func (s *Store) GetPosition(_ context.Context, positionID string) (entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	position, ok := s.state.positions[strings.TrimSpace(positionID)]
	if !ok {
		return entities.Position{}, domainerrors.ErrPositionNotFound
	}
	return position, nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.candidate(candidateID)
}

func (s *Store) GetApplication(_ context.Context, applicationID string) (entities.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.application(applicationID)
}

func (s *Store) ListPositionsByElection(_ context.Context, electionID string) ([]entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Position, 0)
	for _, position := range s.state.positions {
		if position.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PositionID < items[j].PositionID
	})
	return items, nil
}

func (s *Store) ListCandidatesByPosition(_ context.Context, positionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.state.candidates {
		if candidate.PositionID == strings.TrimSpace(positionID) {
			items = append(items, candidate)
		}
	}
	sortBallot(items)
	return items, nil
}

func (s *Store) ListCandidatesByElection(_ context.Context, electionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.state.candidates {
		if candidate.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, candidate)
		}
	}
	sortBallot(items)
	return items, nil
}

func (s *Store) ListVotesByElection(_ context.Context, electionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.state.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) CountVotesByPosition(_ context.Context, positionID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, vote := range s.state.votes {
		if vote.PositionID == strings.TrimSpace(positionID) {
			counts[vote.CandidateID]++
		}
	}
	return counts, nil
}

func (s *Store) CountVotesByElection(_ context.Context, electionID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, vote := range s.state.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			counts[vote.CandidateID]++
		}
	}
	return counts, nil
}

func (s *Store) GetVoteByReceipt(_ context.Context, receipt string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.state.receipts[strings.TrimSpace(receipt)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrReceiptNotFound
	}
	return s.state.votes[voteID], nil
}

func (s *Store) ListVotedPositions(_ context.Context, voterID string, electionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := make([]entities.Vote, 0)
	for _, vote := range s.state.votes {
		if vote.VoterID == strings.TrimSpace(voterID) && vote.ElectionID == strings.TrimSpace(electionID) {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].CastAt.Before(votes[j].CastAt)
	})
	positions := make([]string, 0, len(votes))
	for _, vote := range votes {
		positions = append(positions, vote.PositionID)
	}
	return positions, nil
}

// VoteCount is a test helper reporting every stored vote row.
func (s *Store) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.votes)
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.state.outbox))
	for _, row := range s.state.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.state.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConsistency
	}
	row.published = true
	s.state.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrEventPayloadConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// memoryTx mutates a private copy of the ledger state.
type memoryTx struct {
	state *ledgerState
}

func (t *memoryTx) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	return t.state.election(electionID)
}

func (t *memoryTx) GetApplication(_ context.Context, applicationID string) (entities.Application, error) {
	return t.state.application(applicationID)
}

// LockPosition only checks existence; the store-wide transaction mutex already
// serialises every writer.
func (t *memoryTx) LockPosition(_ context.Context, electionID string, positionID string) error {
	position, ok := t.state.positions[strings.TrimSpace(positionID)]
	if !ok || position.ElectionID != strings.TrimSpace(electionID) {
		return domainerrors.ErrPositionNotFound
	}
	return nil
}

func (t *memoryTx) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	return t.state.candidate(candidateID)
}

func (t *memoryTx) FindCandidateByApplication(_ context.Context, applicationID string) (entities.Candidate, bool, error) {
	for _, candidate := range t.state.candidates {
		if candidate.ApplicationID != "" && candidate.ApplicationID == strings.TrimSpace(applicationID) {
			return candidate, true, nil
		}
	}
	return entities.Candidate{}, false, nil
}

func (t *memoryTx) MaxBallotNumber(_ context.Context, electionID string, positionID string) (int, error) {
	highest := 0
	for _, candidate := range t.state.candidates {
		if candidate.ElectionID == electionID && candidate.PositionID == positionID && candidate.BallotNumber > highest {
			highest = candidate.BallotNumber
		}
	}
	return highest, nil
}

func (t *memoryTx) InsertCandidate(_ context.Context, candidate entities.Candidate) error {
	if _, exists := t.state.candidates[candidate.CandidateID]; exists {
		return domainerrors.ErrConsistency
	}
	for _, existing := range t.state.candidates {
		if candidate.ApplicationID != "" && existing.ApplicationID == candidate.ApplicationID {
			return domainerrors.ErrTransientConflict
		}
		if existing.ElectionID == candidate.ElectionID &&
			existing.PositionID == candidate.PositionID &&
			existing.BallotNumber == candidate.BallotNumber {
			return domainerrors.ErrTransientConflict
		}
	}
	t.state.candidates[candidate.CandidateID] = candidate
	return nil
}

func (t *memoryTx) DeleteCandidate(_ context.Context, candidateID string) error {
	if _, ok := t.state.candidates[candidateID]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	delete(t.state.candidates, candidateID)
	return nil
}

func (t *memoryTx) CloseBallotGap(_ context.Context, electionID string, positionID string, removedNumber int) (int, error) {
	moved := 0
	for id, candidate := range t.state.candidates {
		if candidate.ElectionID == electionID && candidate.PositionID == positionID && candidate.BallotNumber > removedNumber {
			candidate.BallotNumber--
			t.state.candidates[id] = candidate
			moved++
		}
	}
	return moved, nil
}

func (t *memoryTx) ReviewApplication(_ context.Context, review ports.ApplicationReview) error {
	application, ok := t.state.applications[review.ApplicationID]
	if !ok {
		return domainerrors.ErrApplicationNotFound
	}
	reviewedAt := review.ReviewedAt.UTC()
	application.Status = review.Status
	application.AdminRemarks = review.Remarks
	application.ReviewedBy = review.ReviewedBy
	application.ReviewedAt = &reviewedAt
	t.state.applications[review.ApplicationID] = application
	return nil
}

func (t *memoryTx) HasVote(_ context.Context, voterID string, positionID string) (bool, error) {
	_, ok := t.state.voteKeys[voteKey(voterID, positionID)]
	return ok, nil
}

func (t *memoryTx) InsertVote(_ context.Context, vote entities.Vote) (bool, error) {
	key := voteKey(vote.VoterID, vote.PositionID)
	if _, ok := t.state.voteKeys[key]; ok {
		return false, nil
	}
	if _, ok := t.state.receipts[vote.VerificationReceipt]; ok {
		return false, domainerrors.ErrTransientConflict
	}
	t.state.votes[vote.VoteID] = vote
	t.state.voteKeys[key] = vote.VoteID
	t.state.receipts[vote.VerificationReceipt] = vote.VoteID
	return true, nil
}

func (t *memoryTx) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := t.state.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrEventPayloadConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	t.state.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (st ledgerState) election(electionID string) (entities.Election, error) {
	election, ok := st.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (st ledgerState) application(applicationID string) (entities.Application, error) {
	application, ok := st.applications[strings.TrimSpace(applicationID)]
	if !ok {
		return entities.Application{}, domainerrors.ErrApplicationNotFound
	}
	return application, nil
}

func (st ledgerState) candidate(candidateID string) (entities.Candidate, error) {
	candidate, ok := st.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func voteKey(voterID string, positionID string) string {
	return voterID + "\x00" + positionID
}

func sortBallot(items []entities.Candidate) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].PositionID != items[j].PositionID {
			return items[i].PositionID < items[j].PositionID
		}
		return items[i].BallotNumber < items[j].BallotNumber
	})
}

var (
	_ ports.Ledger           = (*Store)(nil)
	_ ports.LedgerReader     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.EventDedupStore  = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
	_ ports.LedgerTx         = (*memoryTx)(nil)
)
