package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	ballotengine "clubvote/contexts/club-elections/ballot-engine"
	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	httptransport "clubvote/contexts/club-elections/ballot-engine/transport/http"

	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	module    ballotengine.Module
	migrated  bool
	closed    bool
	gotDSN    string
	gotLockTO time.Duration
}

func (f *fakeLedger) open(dsn string, lockTimeout time.Duration) (ledger, error) {
	f.gotDSN = dsn
	f.gotLockTO = lockTimeout
	return ledger{
		Module: f.module,
		Migrate: func(context.Context) error {
			f.migrated = true
			return nil
		},
		Close: func() error {
			f.closed = true
			return nil
		},
	}, nil
}

func newSeededLedger(t *testing.T) (*fakeLedger, string) {
	t.Helper()
	module := ballotengine.NewInMemoryModule(nil)
	module.Store.SetElection(entities.Election{ElectionID: "el-1", Title: "Council", Status: entities.ElectionStatusVoting})
	module.Store.SetPosition(entities.Position{PositionID: "pos-1", ElectionID: "el-1", Title: "Chair"})
	module.Store.SetCandidate(entities.Candidate{
		CandidateID: "cand-1", ElectionID: "el-1", PositionID: "pos-1", FullName: "Ada", BallotNumber: 1,
	})
	cast, err := module.Handler.Admission.CastVote(context.Background(), commands.CastVoteCommand{
		VoterID: "voter-1", ElectionID: "el-1", PositionID: "pos-1", CandidateID: "cand-1",
	})
	require.NoError(t, err)
	return &fakeLedger{module: module}, cast.Receipt
}

func runCLI(t *testing.T, fake *fakeLedger, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(fake.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateUsesFlagsAndCloses(t *testing.T) {
	fake, _ := newSeededLedger(t)
	out, err := runCLI(t, fake, "migrate", "--postgres-dsn", "postgres://ledger", "--ledger-lock-timeout", "250ms")
	require.NoError(t, err)
	require.True(t, fake.migrated)
	require.True(t, fake.closed)
	require.Equal(t, "postgres://ledger", fake.gotDSN)
	require.Equal(t, 250*time.Millisecond, fake.gotLockTO)
	require.Contains(t, out, "up to date")
}

func TestDSNFallsBackToEnvironment(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://from-env")
	fake, _ := newSeededLedger(t)
	_, err := runCLI(t, fake, "migrate")
	require.NoError(t, err)
	require.Equal(t, "postgres://from-env", fake.gotDSN)
}

func TestVerifyReceiptPrintsVerification(t *testing.T) {
	fake, receipt := newSeededLedger(t)
	out, err := runCLI(t, fake, "verify-receipt", receipt)
	require.NoError(t, err)

	var resp httptransport.VerifyReceiptResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "Ada", resp.Candidate)
	require.Equal(t, entities.ReceiptStatusPassed, resp.Status)
}

func TestVerifyReceiptUnknown(t *testing.T) {
	fake, _ := newSeededLedger(t)
	_, err := runCLI(t, fake, "verify-receipt", "VR-FFFFFFFFFFFFFFFF-1")
	require.ErrorIs(t, err, domainerrors.ErrReceiptNotFound)
}

func TestWinnersAndLeaderboard(t *testing.T) {
	fake, _ := newSeededLedger(t)

	out, err := runCLI(t, fake, "winners", "el-1")
	require.NoError(t, err)
	var winners httptransport.WinnersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &winners))
	require.Len(t, winners.Items, 1)
	require.Equal(t, "Ada", winners.Items[0].Winner)
	require.Equal(t, 1, winners.Items[0].Margin)

	out, err = runCLI(t, fake, "leaderboard", "pos-1")
	require.NoError(t, err)
	var board httptransport.LeaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Items, 1)
	require.Equal(t, "100.0", board.Items[0].Percentage)
}

func TestWinnersRequiresElectionArg(t *testing.T) {
	fake, _ := newSeededLedger(t)
	_, err := runCLI(t, fake, "winners")
	require.Error(t, err)
}
