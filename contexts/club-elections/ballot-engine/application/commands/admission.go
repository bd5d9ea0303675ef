package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const (
	operationCastVote   = "cast_vote"
	operationCastBallot = "cast_bulk_ballot"
)

type CastVoteCommand struct {
	VoterID        string
	ElectionID     string
	PositionID     string
	CandidateID    string
	VoterYearGroup string
}

type CastVoteResult struct {
	Receipt    string
	ElectionID string
	PositionID string
	CastAt     time.Time
}

type BallotSelection struct {
	PositionID  string
	CandidateID string
}

type CastBulkBallotCommand struct {
	VoterID        string
	ElectionID     string
	VoterYearGroup string
	Selections     []BallotSelection
}

// BulkBallotResult lists receipts for the votes written by this call only.
// Positions the voter had already voted for are reported in SkippedPositions.
type BulkBallotResult struct {
	Receipts         []string
	Count            int
	SkippedPositions []string
}

// AdmissionUseCase is the only writer of votes. It guarantees at most one
// vote per (voter, position) and never admits a vote for a closed election or
// for a candidate outside the position's current ballot.
type AdmissionUseCase struct {
	Ledger    ports.Ledger
	Receipts  ports.ReceiptIssuer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Telemetry ports.Telemetry
	Logger    *slog.Logger
}

type admission struct {
	voterID        string
	electionID     string
	voterYearGroup string
	selection      BallotSelection
	castAt         time.Time
}

// CastVote records a single vote and returns its verification receipt.
func (uc AdmissionUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd = CastVoteCommand{
		VoterID:        strings.TrimSpace(cmd.VoterID),
		ElectionID:     strings.TrimSpace(cmd.ElectionID),
		PositionID:     strings.TrimSpace(cmd.PositionID),
		CandidateID:    strings.TrimSpace(cmd.CandidateID),
		VoterYearGroup: strings.TrimSpace(cmd.VoterYearGroup),
	}
	if cmd.VoterID == "" || cmd.ElectionID == "" || cmd.PositionID == "" || cmd.CandidateID == "" ||
		!entities.ValidYearGroup(cmd.VoterYearGroup) {
		logger.Warn("vote cast validation failed",
			"event", "ballot_vote_cast_validation_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", cmd.ElectionID,
			"position_id", cmd.PositionID,
		)
		application.RecordOutcome(uc.Telemetry, operationCastVote, application.OutcomeLabel(domainerrors.ErrInvalidInput))
		return CastVoteResult{}, domainerrors.ErrInvalidInput
	}

	var result CastVoteResult
	err := runInTx(ctx, uc.Ledger, uc.Telemetry, logger, operationCastVote, func(tx ports.LedgerTx) error {
		result = CastVoteResult{}
		if err := requireOpenElection(ctx, tx, cmd.ElectionID); err != nil {
			return err
		}
		vote, admitted, err := uc.admit(ctx, tx, admission{
			voterID:        cmd.VoterID,
			electionID:     cmd.ElectionID,
			voterYearGroup: cmd.VoterYearGroup,
			selection:      BallotSelection{PositionID: cmd.PositionID, CandidateID: cmd.CandidateID},
			castAt:         resolveNow(uc.Clock),
		})
		if err != nil {
			return err
		}
		if !admitted {
			return domainerrors.ErrDuplicateVote
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventVoteCast, vote.ElectionID, vote.CastAt, map[string]any{
			"vote_id":     vote.VoteID,
			"voter_id":    vote.VoterID,
			"election_id": vote.ElectionID,
			"position_id": vote.PositionID,
			"receipt":     vote.VerificationReceipt,
			"cast_at":     vote.CastAt,
		}); err != nil {
			return err
		}
		result = CastVoteResult{
			Receipt:    vote.VerificationReceipt,
			ElectionID: vote.ElectionID,
			PositionID: vote.PositionID,
			CastAt:     vote.CastAt,
		}
		return nil
	})
	application.RecordOutcome(uc.Telemetry, operationCastVote, application.OutcomeLabel(err))
	if err != nil {
		logCastRejected(logger, "ballot_vote_cast_rejected", cmd.ElectionID, cmd.PositionID, err)
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "ballot_vote_cast",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", result.ElectionID,
		"position_id", result.PositionID,
	)
	logger.Debug("vote cast voter detail",
		"event", "ballot_vote_cast_voter",
		"module", application.ModuleName,
		"layer", "application",
		"voter_id", cmd.VoterID,
		"position_id", result.PositionID,
	)
	return result, nil
}

// CastBulkBallot admits several selections in one transaction. Selections for
// positions the voter already voted on are skipped, so replaying the same
// ballot is harmless and yields no new receipts. A selection naming a
// candidate that is not on the ballot aborts the whole batch.
func (uc AdmissionUseCase) CastBulkBallot(ctx context.Context, cmd CastBulkBallotCommand) (BulkBallotResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	electionID := strings.TrimSpace(cmd.ElectionID)
	yearGroup := strings.TrimSpace(cmd.VoterYearGroup)
	selections := make([]BallotSelection, 0, len(cmd.Selections))
	valid := voterID != "" && electionID != "" && entities.ValidYearGroup(yearGroup) && len(cmd.Selections) > 0
	for _, selection := range cmd.Selections {
		item := BallotSelection{
			PositionID:  strings.TrimSpace(selection.PositionID),
			CandidateID: strings.TrimSpace(selection.CandidateID),
		}
		if item.PositionID == "" || item.CandidateID == "" {
			valid = false
		}
		selections = append(selections, item)
	}
	if !valid {
		logger.Warn("bulk ballot validation failed",
			"event", "ballot_bulk_cast_validation_failed",
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"selection_count", len(cmd.Selections),
		)
		application.RecordOutcome(uc.Telemetry, operationCastBallot, application.OutcomeLabel(domainerrors.ErrInvalidInput))
		return BulkBallotResult{}, domainerrors.ErrInvalidInput
	}

	var result BulkBallotResult
	err := runInTx(ctx, uc.Ledger, uc.Telemetry, logger, operationCastBallot, func(tx ports.LedgerTx) error {
		result = BulkBallotResult{Receipts: []string{}}
		if err := requireOpenElection(ctx, tx, electionID); err != nil {
			return err
		}
		castAt := resolveNow(uc.Clock)
		positions := make([]string, 0, len(selections))
		for _, selection := range selections {
			vote, admitted, err := uc.admit(ctx, tx, admission{
				voterID:        voterID,
				electionID:     electionID,
				voterYearGroup: yearGroup,
				selection:      selection,
				castAt:         castAt,
			})
			if err != nil {
				return err
			}
			if !admitted {
				result.SkippedPositions = append(result.SkippedPositions, selection.PositionID)
				continue
			}
			result.Receipts = append(result.Receipts, vote.VerificationReceipt)
			positions = append(positions, vote.PositionID)
		}
		result.Count = len(result.Receipts)
		if result.Count == 0 {
			return nil
		}
		return appendEvent(ctx, tx, uc.IDGen, EventBallotCast, electionID, castAt, map[string]any{
			"voter_id":     voterID,
			"election_id":  electionID,
			"position_ids": positions,
			"receipts":     result.Receipts,
			"cast_at":      castAt,
		})
	})
	application.RecordOutcome(uc.Telemetry, operationCastBallot, application.OutcomeLabel(err))
	if err != nil {
		logCastRejected(logger, "ballot_bulk_cast_rejected", electionID, "", err)
		return BulkBallotResult{}, err
	}

	logger.Info("bulk ballot cast",
		"event", "ballot_bulk_cast",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"admitted_count", result.Count,
		"skipped_count", len(result.SkippedPositions),
	)
	return result, nil
}

// admit validates one selection and writes the vote. It reports false when the
// voter already holds a vote for the position, either from the pre-check or
// from the store's uniqueness guard.
func (uc AdmissionUseCase) admit(ctx context.Context, tx ports.LedgerTx, in admission) (entities.Vote, bool, error) {
	voted, err := tx.HasVote(ctx, in.voterID, in.selection.PositionID)
	if err != nil {
		return entities.Vote{}, false, err
	}
	if voted {
		return entities.Vote{}, false, nil
	}

	candidate, err := tx.GetCandidate(ctx, in.selection.CandidateID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrCandidateNotFound) {
			return entities.Vote{}, false, domainerrors.ErrCandidateNotOnBallot
		}
		return entities.Vote{}, false, err
	}
	if candidate.PositionID != in.selection.PositionID || candidate.ElectionID != in.electionID {
		return entities.Vote{}, false, domainerrors.ErrCandidateNotOnBallot
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, false, err
	}
	receipt, err := uc.Receipts.NewReceipt(ctx, in.castAt)
	if err != nil {
		return entities.Vote{}, false, err
	}
	vote := entities.Vote{
		VoteID:              voteID,
		VoterID:             in.voterID,
		ElectionID:          in.electionID,
		PositionID:          candidate.PositionID,
		CandidateID:         candidate.CandidateID,
		VoterYearGroup:      in.voterYearGroup,
		VerificationReceipt: receipt,
		CastAt:              in.castAt,
	}
	inserted, err := tx.InsertVote(ctx, vote)
	if err != nil {
		return entities.Vote{}, false, err
	}
	return vote, inserted, nil
}

func requireOpenElection(ctx context.Context, tx ports.LedgerTx, electionID string) error {
	election, err := tx.GetElection(ctx, electionID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrElectionNotFound) {
			return domainerrors.ErrElectionNotOpen
		}
		return err
	}
	if !election.AcceptsVotes() {
		return domainerrors.ErrElectionNotOpen
	}
	return nil
}

func logCastRejected(logger *slog.Logger, event string, electionID string, positionID string, err error) {
	kind := domainerrors.KindOf(err)
	if kind == domainerrors.KindConsistency {
		logger.Error("ballot admission failed",
			"event", event,
			"module", application.ModuleName,
			"layer", "application",
			"election_id", electionID,
			"position_id", positionID,
			"error", err.Error(),
		)
		return
	}
	logger.Warn("ballot admission rejected",
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		"election_id", electionID,
		"position_id", positionID,
		"reason", string(kind),
	)
}
