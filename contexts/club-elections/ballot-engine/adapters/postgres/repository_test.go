package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func newTestRepository(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ballot_ledger_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, repo.Migrate(context.Background()))

	require.NoError(t, db.Create(&electionModel{ElectionID: "el-1", Title: "Council", Status: "voting"}).Error)
	require.NoError(t, db.Create(&positionModel{PositionID: "pos-1", ElectionID: "el-1", Title: "Chair", EligibleYears: "3, 4"}).Error)
	require.NoError(t, db.Create(&positionModel{PositionID: "pos-2", ElectionID: "el-1", Title: "Secretary"}).Error)
	require.NoError(t, db.Create(&userModel{UserID: "user-1", FullName: "Ama Mensah"}).Error)
	require.NoError(t, db.Create(&applicationModel{
		ApplicationID: "app-1",
		ElectionID:    "el-1",
		PositionID:    "pos-1",
		UserID:        "user-1",
		Status:        "approved",
	}).Error)
	return repo, db
}

func testVote(id string, voterID string, positionID string, castAt time.Time) entities.Vote {
	return entities.Vote{
		VoteID:              id,
		VoterID:             voterID,
		ElectionID:          "el-1",
		PositionID:          positionID,
		CandidateID:         "cand-" + positionID,
		VoterYearGroup:      "2",
		VerificationReceipt: "VR-" + strings.ToUpper(id),
		CastAt:              castAt,
	}
}

func TestRepositoryReadsSeededRows(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	position, err := repo.GetPosition(ctx, "pos-1")
	require.NoError(t, err)
	require.Equal(t, []string{"3", "4"}, position.EligibleYears)

	_, err = repo.GetPosition(ctx, "pos-missing")
	require.ErrorIs(t, err, domainerrors.ErrPositionNotFound)
	_, err = repo.GetElection(ctx, "el-missing")
	require.ErrorIs(t, err, domainerrors.ErrElectionNotFound)

	application, err := repo.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	require.Equal(t, "Ama Mensah", application.ApplicantName)
	require.Equal(t, entities.ApplicationStatusApproved, application.Status)
	require.Nil(t, application.ReviewedAt)

	_, err = repo.GetApplication(ctx, "app-missing")
	require.ErrorIs(t, err, domainerrors.ErrApplicationNotFound)

	positions, err := repo.ListPositionsByElection(ctx, "el-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)
}

func TestInsertVoteKeepsOneVotePerPosition(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	castAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	err := repo.InTx(ctx, func(tx ports.LedgerTx) error {
		inserted, err := tx.InsertVote(ctx, testVote("v1", "voter-1", "pos-1", castAt))
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = tx.InsertVote(ctx, testVote("v2", "voter-1", "pos-1", castAt))
		require.NoError(t, err)
		require.False(t, inserted)

		inserted, err = tx.InsertVote(ctx, testVote("v3", "voter-1", "pos-2", castAt.Add(time.Minute)))
		require.NoError(t, err)
		require.True(t, inserted)

		has, err := tx.HasVote(ctx, "voter-1", "pos-2")
		require.NoError(t, err)
		require.True(t, has)
		return nil
	})
	require.NoError(t, err)

	counts, err := repo.CountVotesByElection(ctx, "el-1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"cand-pos-1": 1, "cand-pos-2": 1}, counts)

	voted, err := repo.ListVotedPositions(ctx, "voter-1", "el-1")
	require.NoError(t, err)
	require.Equal(t, []string{"pos-1", "pos-2"}, voted)

	none, err := repo.ListVotedPositions(ctx, "voter-9", "el-1")
	require.NoError(t, err)
	require.Empty(t, none)

	vote, err := repo.GetVoteByReceipt(ctx, "VR-V1")
	require.NoError(t, err)
	require.Equal(t, "voter-1", vote.VoterID)
	require.True(t, castAt.Equal(vote.CastAt))

	_, err = repo.GetVoteByReceipt(ctx, "VR-NONE")
	require.ErrorIs(t, err, domainerrors.ErrReceiptNotFound)
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(tx ports.LedgerTx) error {
		if _, err := tx.InsertVote(ctx, testVote("v1", "voter-1", "pos-1", time.Now())); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	votes, err := repo.ListVotesByElection(ctx, "el-1")
	require.NoError(t, err)
	require.Empty(t, votes)
}

func TestCandidateRosterLifecycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	promotedAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	err := repo.InTx(ctx, func(tx ports.LedgerTx) error {
		require.NoError(t, tx.LockPosition(ctx, "el-1", "pos-1"))
		require.ErrorIs(t, tx.LockPosition(ctx, "el-other", "pos-1"), domainerrors.ErrPositionNotFound)

		for i := 1; i <= 3; i++ {
			highest, err := tx.MaxBallotNumber(ctx, "el-1", "pos-1")
			require.NoError(t, err)
			require.Equal(t, i-1, highest)
			candidate := entities.Candidate{
				CandidateID:  fmt.Sprintf("cand-%d", i),
				ElectionID:   "el-1",
				PositionID:   "pos-1",
				UserID:       fmt.Sprintf("user-%d", i),
				FullName:     fmt.Sprintf("Candidate %d", i),
				BallotNumber: highest + 1,
				PromotedAt:   promotedAt,
			}
			if i == 1 {
				candidate.ApplicationID = "app-1"
			}
			require.NoError(t, tx.InsertCandidate(ctx, candidate))
		}

		found, ok, err := tx.FindCandidateByApplication(ctx, "app-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "cand-1", found.CandidateID)

		_, ok, err = tx.FindCandidateByApplication(ctx, "app-none")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, tx.DeleteCandidate(ctx, "cand-1"))
		require.ErrorIs(t, tx.DeleteCandidate(ctx, "cand-1"), domainerrors.ErrCandidateNotFound)
		moved, err := tx.CloseBallotGap(ctx, "el-1", "pos-1", 1)
		require.NoError(t, err)
		require.Equal(t, 2, moved)
		return nil
	})
	require.NoError(t, err)

	ballot, err := repo.ListCandidatesByPosition(ctx, "pos-1")
	require.NoError(t, err)
	require.Len(t, ballot, 2)
	require.Equal(t, "cand-2", ballot[0].CandidateID)
	require.Equal(t, 1, ballot[0].BallotNumber)
	require.Equal(t, "cand-3", ballot[1].CandidateID)
	require.Equal(t, 2, ballot[1].BallotNumber)
	require.Empty(t, ballot[0].ApplicationID)

	all, err := repo.ListCandidatesByElection(ctx, "el-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestReviewApplicationRecordsDecision(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	reviewedAt := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)

	err := repo.InTx(ctx, func(tx ports.LedgerTx) error {
		require.ErrorIs(t, tx.ReviewApplication(ctx, ports.ApplicationReview{ApplicationID: "app-none"}), domainerrors.ErrApplicationNotFound)
		return tx.ReviewApplication(ctx, ports.ApplicationReview{
			ApplicationID: "app-1",
			Status:        entities.ApplicationStatusRejected,
			Remarks:       "DISQUALIFIED: late filing",
			ReviewedBy:    "admin-1",
			ReviewedAt:    reviewedAt,
		})
	})
	require.NoError(t, err)

	application, err := repo.GetApplication(ctx, "app-1")
	require.NoError(t, err)
	require.Equal(t, entities.ApplicationStatusRejected, application.Status)
	require.Equal(t, "DISQUALIFIED: late filing", application.AdminRemarks)
	require.Equal(t, "admin-1", application.ReviewedBy)
	require.NotNil(t, application.ReviewedAt)
}

func TestOutboxPublishCycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	err := repo.InTx(ctx, func(tx ports.LedgerTx) error {
		for i, id := range []string{"evt-2", "evt-1"} {
			if err := tx.AppendOutbox(ctx, ports.EventEnvelope{
				EventID:      id,
				EventType:    "vote.cast",
				OccurredAt:   base.Add(time.Duration(i) * time.Second),
				PartitionKey: "el-1",
				Data:         []byte(`{"receipt":"VR-1"}`),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	pending, err := repo.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "evt-2", pending[0].OutboxID)
	require.Equal(t, "vote.cast", pending[0].EventType)
	require.Contains(t, string(pending[0].Payload), `"event_id":"evt-2"`)

	require.NoError(t, repo.MarkOutboxPublished(ctx, "evt-2", base))
	require.ErrorIs(t, repo.MarkOutboxPublished(ctx, "evt-none", base), domainerrors.ErrConsistency)

	pending, err = repo.ListPendingOutbox(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "evt-1", pending[0].OutboxID)
}

func TestReserveEventDeduplicates(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	seen, err := repo.ReserveEvent(ctx, "evt-1", "hash-a", expires)
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = repo.ReserveEvent(ctx, "evt-1", "hash-a", expires)
	require.NoError(t, err)
	require.True(t, seen)

	_, err = repo.ReserveEvent(ctx, "evt-1", "hash-b", expires)
	require.ErrorIs(t, err, domainerrors.ErrEventPayloadConflict)
}

func TestClassifyTxError(t *testing.T) {
	for _, code := range []string{sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable, sqlstateUniqueViolation} {
		err := classifyTxError(fmt.Errorf("commit: %w", &pgconn.PgError{Code: code}))
		require.ErrorIs(t, err, domainerrors.ErrTransientConflict, code)
	}
	require.ErrorIs(t, classifyTxError(gorm.ErrDuplicatedKey), domainerrors.ErrTransientConflict)

	plain := errors.New("connection reset")
	require.Equal(t, plain, classifyTxError(plain))
	require.NoError(t, classifyTxError(nil))
	require.False(t, isTransient(&pgconn.PgError{Code: "42P01"}))
}
