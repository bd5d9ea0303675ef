package commands_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCastVoteAdmitsAndQueuesEvent(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	telemetry := newRecordingTelemetry()
	uc := newAdmission(store, store, telemetry)

	result, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID:        "voter-1",
		ElectionID:     electionOpen,
		PositionID:     positionChair,
		CandidateID:    "cand-a",
		VoterYearGroup: "3",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Receipt, "VR-"))
	require.Equal(t, positionChair, result.PositionID)
	require.Equal(t, 1, store.VoteCount())
	require.Equal(t, []string{commands.EventVoteCast}, pendingEventTypes(t, store))
	require.Equal(t, 1, telemetry.outcomes["cast_vote/accepted"])
}

func TestCastVoteRejectsSecondVoteForPosition(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	seedCandidate(store, "cand-b", electionOpen, positionChair, 2)
	uc := newAdmission(store, store, nil)
	ctx := context.Background()

	_, err := uc.CastVote(ctx, commands.CastVoteCommand{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a"})
	require.NoError(t, err)

	_, err = uc.CastVote(ctx, commands.CastVoteCommand{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-b"})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateVote)
	require.Equal(t, 1, store.VoteCount())
}

func TestCastVoteRequiresOpenElection(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-old", electionClosed, positionOld, 1)
	uc := newAdmission(store, store, nil)

	_, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: electionClosed, PositionID: positionOld, CandidateID: "cand-old",
	})
	require.ErrorIs(t, err, domainerrors.ErrElectionNotOpen)

	_, err = uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: "el-missing", PositionID: positionOld, CandidateID: "cand-old",
	})
	require.ErrorIs(t, err, domainerrors.ErrElectionNotOpen)
	require.Equal(t, 0, store.VoteCount())
}

func TestCastVoteRejectsCandidateFromAnotherPosition(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-sec", electionOpen, positionSec, 1)
	uc := newAdmission(store, store, nil)

	_, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-sec",
	})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotOnBallot)

	_, err = uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-ghost",
	})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotOnBallot)
	require.Equal(t, 0, store.VoteCount())
}

func TestCastVoteValidatesInput(t *testing.T) {
	store := newLedgerStore()
	uc := newAdmission(store, store, nil)

	cases := []commands.CastVoteCommand{
		{ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a"},
		{VoterID: "voter-1", PositionID: positionChair, CandidateID: "cand-a"},
		{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a", VoterYearGroup: "5"},
	}
	for i, cmd := range cases {
		_, err := uc.CastVote(context.Background(), cmd)
		if !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestConcurrentCastVoteAdmitsExactlyOne(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	uc := newAdmission(store, store, nil)

	const attempts = 50
	var admitted, duplicates atomic.Int32
	var group errgroup.Group
	for i := 0; i < attempts; i++ {
		group.Go(func() error {
			_, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
				VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a",
			})
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, domainerrors.ErrDuplicateVote):
				duplicates.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, int32(1), admitted.Load())
	require.Equal(t, int32(attempts-1), duplicates.Load())
	require.Equal(t, 1, store.VoteCount())
}

func TestCastBulkBallotSkipsVotedPositionsAndReplaysCleanly(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	seedCandidate(store, "cand-s", electionOpen, positionSec, 1)
	uc := newAdmission(store, store, nil)
	ctx := context.Background()

	_, err := uc.CastVote(ctx, commands.CastVoteCommand{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a"})
	require.NoError(t, err)

	ballot := commands.CastBulkBallotCommand{
		VoterID:    "voter-1",
		ElectionID: electionOpen,
		Selections: []commands.BallotSelection{
			{PositionID: positionChair, CandidateID: "cand-a"},
			{PositionID: positionSec, CandidateID: "cand-s"},
		},
	}
	first, err := uc.CastBulkBallot(ctx, ballot)
	require.NoError(t, err)
	require.Equal(t, 1, first.Count)
	require.Len(t, first.Receipts, 1)
	require.Equal(t, []string{positionChair}, first.SkippedPositions)

	replay, err := uc.CastBulkBallot(ctx, ballot)
	require.NoError(t, err)
	require.Equal(t, 0, replay.Count)
	require.Empty(t, replay.Receipts)
	require.Equal(t, 2, store.VoteCount())
	require.Equal(t, []string{commands.EventBallotCast, commands.EventVoteCast}, pendingEventTypes(t, store))
}

func TestCastBulkBallotForgedSelectionRejectsWholeBatch(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	seedCandidate(store, "cand-s", electionOpen, positionSec, 1)
	uc := newAdmission(store, store, nil)

	_, err := uc.CastBulkBallot(context.Background(), commands.CastBulkBallotCommand{
		VoterID:    "voter-1",
		ElectionID: electionOpen,
		Selections: []commands.BallotSelection{
			{PositionID: positionChair, CandidateID: "cand-a"},
			{PositionID: positionSec, CandidateID: "cand-a"},
		},
	})
	require.ErrorIs(t, err, domainerrors.ErrCandidateNotOnBallot)
	require.Equal(t, 0, store.VoteCount())
	require.Empty(t, pendingEventTypes(t, store))
}

func TestCastBulkBallotRequiresSelections(t *testing.T) {
	store := newLedgerStore()
	uc := newAdmission(store, store, nil)
	_, err := uc.CastBulkBallot(context.Background(), commands.CastBulkBallotCommand{VoterID: "voter-1", ElectionID: electionOpen})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestTransientConflictIsRetriedOnce(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	telemetry := newRecordingTelemetry()
	ledger := &flakyLedger{inner: store, fails: 1}
	uc := newAdmission(ledger, store, telemetry)

	_, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a",
	})
	require.NoError(t, err)
	require.Equal(t, 2, ledger.calls)
	require.Equal(t, 1, telemetry.retries["cast_vote"])
	require.Equal(t, 1, store.VoteCount())
}

func TestPersistentConflictBecomesConsistencyError(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	telemetry := newRecordingTelemetry()
	ledger := &flakyLedger{inner: store, fails: 2}
	uc := newAdmission(ledger, store, telemetry)

	_, err := uc.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a",
	})
	require.ErrorIs(t, err, domainerrors.ErrConsistency)
	require.Equal(t, domainerrors.KindConsistency, domainerrors.KindOf(err))
	require.Equal(t, 2, ledger.calls)
	require.Equal(t, 0, store.VoteCount())
	require.Equal(t, 1, telemetry.outcomes[fmt.Sprintf("cast_vote/%s", domainerrors.KindConsistency)])
}

func TestStoreUniquenessStopsVoteThePreCheckMissed(t *testing.T) {
	store := newLedgerStore()
	seedCandidate(store, "cand-a", electionOpen, positionChair, 1)
	seedCandidate(store, "cand-b", electionOpen, positionChair, 2)
	seedCandidate(store, "cand-s", electionOpen, positionSec, 1)
	uc := newAdmission(uncheckedLedger{inner: store}, store, nil)
	ctx := context.Background()

	_, err := uc.CastVote(ctx, commands.CastVoteCommand{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-a"})
	require.NoError(t, err)

	_, err = uc.CastVote(ctx, commands.CastVoteCommand{VoterID: "voter-1", ElectionID: electionOpen, PositionID: positionChair, CandidateID: "cand-b"})
	require.ErrorIs(t, err, domainerrors.ErrDuplicateVote)
	require.Equal(t, 1, store.VoteCount())

	ballot := commands.CastBulkBallotCommand{
		VoterID:    "voter-1",
		ElectionID: electionOpen,
		Selections: []commands.BallotSelection{
			{PositionID: positionChair, CandidateID: "cand-b"},
			{PositionID: positionSec, CandidateID: "cand-s"},
		},
	}
	first, err := uc.CastBulkBallot(ctx, ballot)
	require.NoError(t, err)
	require.Equal(t, 1, first.Count)
	require.Equal(t, []string{positionChair}, first.SkippedPositions)

	replay, err := uc.CastBulkBallot(ctx, ballot)
	require.NoError(t, err)
	require.Equal(t, 0, replay.Count)
	require.Empty(t, replay.Receipts)
	require.Equal(t, []string{positionChair, positionSec}, replay.SkippedPositions)
	require.Equal(t, 2, store.VoteCount())
}
