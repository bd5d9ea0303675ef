package commands_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"clubvote/contexts/club-elections/ballot-engine/adapters/memory"
	"clubvote/contexts/club-elections/ballot-engine/adapters/receipts"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const (
	electionOpen   = "el-open"
	electionClosed = "el-closed"
	positionChair  = "pos-chair"
	positionSec    = "pos-sec"
	positionOld    = "pos-old"
)

type recordingTelemetry struct {
	mu       sync.Mutex
	outcomes map[string]int
	retries  map[string]int
}

func newRecordingTelemetry() *recordingTelemetry {
	return &recordingTelemetry{outcomes: map[string]int{}, retries: map[string]int{}}
}

func (r *recordingTelemetry) RecordOutcome(operation string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[operation+"/"+outcome]++
}

func (r *recordingTelemetry) RecordRetry(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries[operation]++
}

// flakyLedger fails the first n transactions with a transient conflict
// before delegating to the wrapped ledger.
type flakyLedger struct {
	mu    sync.Mutex
	inner ports.Ledger
	fails int
	calls int
}

func (f *flakyLedger) InTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()
	if fail {
		return domainerrors.ErrTransientConflict
	}
	return f.inner.InTx(ctx, fn)
}

// uncheckedLedger hides existing votes from HasVote so only the store's
// (voter, position) uniqueness can stop a second vote.
type uncheckedLedger struct {
	inner ports.Ledger
}

type uncheckedTx struct {
	ports.LedgerTx
}

func (uncheckedTx) HasVote(context.Context, string, string) (bool, error) {
	return false, nil
}

func (u uncheckedLedger) InTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	return u.inner.InTx(ctx, func(tx ports.LedgerTx) error {
		return fn(uncheckedTx{LedgerTx: tx})
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedgerStore() *memory.Store {
	store := memory.NewStore()
	store.SetElection(entities.Election{ElectionID: electionOpen, Title: "Council 2025", Status: entities.ElectionStatusVoting})
	store.SetElection(entities.Election{ElectionID: electionClosed, Title: "Council 2024", Status: entities.ElectionStatusCompleted})
	store.SetPosition(entities.Position{PositionID: positionChair, ElectionID: electionOpen, Title: "Chair", SlotsAvailable: 1})
	store.SetPosition(entities.Position{PositionID: positionSec, ElectionID: electionOpen, Title: "Secretary", SlotsAvailable: 1})
	store.SetPosition(entities.Position{PositionID: positionOld, ElectionID: electionClosed, Title: "Chair", SlotsAvailable: 1})
	return store
}

func seedCandidate(store *memory.Store, id string, electionID string, positionID string, number int) {
	store.SetCandidate(entities.Candidate{
		CandidateID:  id,
		ElectionID:   electionID,
		PositionID:   positionID,
		UserID:       "user-" + id,
		FullName:     "Name " + id,
		BallotNumber: number,
	})
}

func seedApprovedApplication(store *memory.Store, id string, positionID string, userID string) {
	store.SetApplication(entities.Application{
		ApplicationID: id,
		ElectionID:    electionOpen,
		PositionID:    positionID,
		UserID:        userID,
		ApplicantName: "Applicant " + id,
		Status:        entities.ApplicationStatusApproved,
	})
}

func newAdmission(ledger ports.Ledger, store *memory.Store, telemetry ports.Telemetry) commands.AdmissionUseCase {
	return commands.AdmissionUseCase{
		Ledger:    ledger,
		Receipts:  receipts.Issuer{},
		Clock:     store,
		IDGen:     store,
		Telemetry: telemetry,
		Logger:    discardLogger(),
	}
}

func newRoster(ledger ports.Ledger, store *memory.Store) commands.RosterUseCase {
	return commands.RosterUseCase{
		Ledger: ledger,
		Clock:  store,
		IDGen:  store,
		Logger: discardLogger(),
	}
}

func pendingEventTypes(t *testing.T, store *memory.Store) []string {
	t.Helper()
	rows, err := store.ListPendingOutbox(context.Background(), 1000)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	sort.Strings(types)
	return types
}

// requireDenseBallot asserts ballot numbers for a position are exactly 1..N.
func requireDenseBallot(t *testing.T, store *memory.Store, positionID string) []entities.Candidate {
	t.Helper()
	items, err := store.ListCandidatesByPosition(context.Background(), positionID)
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	numbers := make([]int, 0, len(items))
	for _, item := range items {
		numbers = append(numbers, item.BallotNumber)
	}
	sort.Ints(numbers)
	for i, number := range numbers {
		if number != i+1 {
			t.Fatalf("ballot numbers not dense for %s: %v", positionID, numbers)
		}
	}
	return items
}

func applicationIDs(prefix string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("%s-%02d", prefix, i))
	}
	return ids
}
