package queries

import (
	"context"
	"strings"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

// BallotUseCase serves the printed ballot and a voter's own progress.
type BallotUseCase struct {
	Ledger ports.LedgerReader
	Clock  ports.Clock
}

func (uc BallotUseCase) ElectionBallot(ctx context.Context, electionID string) ([]entities.Candidate, error) {
	electionID = strings.TrimSpace(electionID)
	if _, err := uc.Ledger.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	return uc.Ledger.ListCandidatesByElection(ctx, electionID)
}

func (uc BallotUseCase) PositionBallot(ctx context.Context, electionID string, positionID string) ([]entities.Candidate, error) {
	position, err := uc.Ledger.GetPosition(ctx, strings.TrimSpace(positionID))
	if err != nil {
		return nil, err
	}
	if position.ElectionID != strings.TrimSpace(electionID) {
		return nil, domainerrors.ErrPositionNotFound
	}
	return uc.Ledger.ListCandidatesByPosition(ctx, position.PositionID)
}

func (uc BallotUseCase) CandidateProfile(ctx context.Context, candidateID string) (entities.Candidate, error) {
	return uc.Ledger.GetCandidate(ctx, strings.TrimSpace(candidateID))
}

// VotedPositions lists the positions the voter has already voted for.
func (uc BallotUseCase) VotedPositions(ctx context.Context, voterID string, electionID string) ([]string, error) {
	voterID = strings.TrimSpace(voterID)
	electionID = strings.TrimSpace(electionID)
	if voterID == "" || electionID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return uc.Ledger.ListVotedPositions(ctx, voterID, electionID)
}

// ElectionTurnout lists who took part in an election, ordered by first vote.
func (uc BallotUseCase) ElectionTurnout(ctx context.Context, electionID string) (entities.ElectionTurnout, error) {
	electionID = strings.TrimSpace(electionID)
	if _, err := uc.Ledger.GetElection(ctx, electionID); err != nil {
		return entities.ElectionTurnout{}, err
	}
	votes, err := uc.Ledger.ListVotesByElection(ctx, electionID)
	if err != nil {
		return entities.ElectionTurnout{}, err
	}

	// votes arrive oldest first, so the first row per voter is their earliest.
	participants := make([]entities.Participant, 0)
	seen := make(map[string]struct{}, len(votes))
	for _, vote := range votes {
		if _, ok := seen[vote.VoterID]; ok {
			continue
		}
		seen[vote.VoterID] = struct{}{}
		participants = append(participants, entities.Participant{VoterID: vote.VoterID, FirstVotedAt: vote.CastAt})
	}
	return entities.ElectionTurnout{
		ElectionID:   electionID,
		TotalVoters:  len(participants),
		TotalVotes:   len(votes),
		Participants: participants,
		ComputedAt:   uc.now(),
	}, nil
}

// VoterStatus reports whether the voter has cast anything in the election and
// when their first vote landed.
func (uc BallotUseCase) VoterStatus(ctx context.Context, voterID string, electionID string) (entities.VoterStatus, error) {
	voterID = strings.TrimSpace(voterID)
	electionID = strings.TrimSpace(electionID)
	if voterID == "" || electionID == "" {
		return entities.VoterStatus{}, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Ledger.GetElection(ctx, electionID); err != nil {
		return entities.VoterStatus{}, err
	}
	votes, err := uc.Ledger.ListVotesByElection(ctx, electionID)
	if err != nil {
		return entities.VoterStatus{}, err
	}
	status := entities.VoterStatus{ElectionID: electionID, VoterID: voterID}
	for _, vote := range votes {
		if vote.VoterID != voterID {
			continue
		}
		if !status.HasVoted {
			status.HasVoted = true
			status.VotedAt = vote.CastAt
		}
		status.PositionsVoted++
	}
	return status, nil
}

func (uc BallotUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
