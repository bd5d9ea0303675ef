package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

// TallyUseCase computes results from committed ledger state on every call.
type TallyUseCase struct {
	Ledger ports.LedgerReader
	Logger *slog.Logger
}

type rankedCandidate struct {
	candidate entities.Candidate
	tally     int
}

func (uc TallyUseCase) PositionLeaderboard(ctx context.Context, positionID string) ([]entities.LeaderboardRow, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return nil, domainerrors.ErrPositionNotFound
	}
	position, err := uc.Ledger.GetPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	candidates, err := uc.Ledger.ListCandidatesByPosition(ctx, positionID)
	if err != nil {
		uc.logReadFailure("ballot_leaderboard_read_failed", "position_id", positionID, err)
		return nil, err
	}
	counts, err := uc.Ledger.CountVotesByPosition(ctx, positionID)
	if err != nil {
		uc.logReadFailure("ballot_leaderboard_read_failed", "position_id", positionID, err)
		return nil, err
	}

	ranked := rank(candidates, counts)
	total := 0
	for _, item := range ranked {
		total += item.tally
	}
	rows := make([]entities.LeaderboardRow, 0, len(ranked))
	for _, item := range ranked {
		rows = append(rows, entities.LeaderboardRow{
			CandidateID:   item.candidate.CandidateID,
			FullName:      item.candidate.FullName,
			BallotNumber:  item.candidate.BallotNumber,
			PositionTitle: position.Title,
			Tally:         item.tally,
			Percentage:    entities.LeaderboardPercentage(item.tally, total),
		})
	}
	return rows, nil
}

// ElectionAnalytics summarises turnout and exposes the receipt-level audit
// trail. Voter identities are never part of the result.
func (uc TallyUseCase) ElectionAnalytics(ctx context.Context, electionID string) (entities.ElectionAnalytics, error) {
	electionID = strings.TrimSpace(electionID)
	if _, err := uc.Ledger.GetElection(ctx, electionID); err != nil {
		return entities.ElectionAnalytics{}, err
	}
	votes, err := uc.Ledger.ListVotesByElection(ctx, electionID)
	if err != nil {
		uc.logReadFailure("ballot_analytics_read_failed", "election_id", electionID, err)
		return entities.ElectionAnalytics{}, err
	}
	positionTitles, candidateNames, err := uc.electionLabels(ctx, electionID)
	if err != nil {
		uc.logReadFailure("ballot_analytics_read_failed", "election_id", electionID, err)
		return entities.ElectionAnalytics{}, err
	}

	demographics := make(map[string]int)
	voters := make(map[string]struct{})
	trail := make([]entities.AuditEntry, 0, len(votes))
	for _, vote := range votes {
		demographics[entities.YearGroupBucket(vote.VoterYearGroup)]++
		voters[vote.VoterID] = struct{}{}
		name, ok := candidateNames[vote.CandidateID]
		if !ok {
			name = entities.RemovedCandidate
		}
		trail = append(trail, entities.AuditEntry{
			Receipt:       vote.VerificationReceipt,
			CandidateName: name,
			PositionTitle: positionTitles[vote.PositionID],
			CastAt:        vote.CastAt,
		})
	}
	return entities.ElectionAnalytics{
		ElectionID:       electionID,
		TotalBallotsCast: len(votes),
		UniqueVoters:     len(voters),
		Demographics:     demographics,
		AuditTrail:       trail,
	}, nil
}

// CandidateScorecard reports a candidate's share of every vote cast for the
// position, including votes for candidates no longer on the ballot.
func (uc TallyUseCase) CandidateScorecard(ctx context.Context, candidateID string) (entities.CandidateScorecard, error) {
	candidate, err := uc.Ledger.GetCandidate(ctx, strings.TrimSpace(candidateID))
	if err != nil {
		return entities.CandidateScorecard{}, err
	}
	position, err := uc.Ledger.GetPosition(ctx, candidate.PositionID)
	if err != nil {
		return entities.CandidateScorecard{}, err
	}
	counts, err := uc.Ledger.CountVotesByPosition(ctx, candidate.PositionID)
	if err != nil {
		uc.logReadFailure("ballot_scorecard_read_failed", "candidate_id", candidate.CandidateID, err)
		return entities.CandidateScorecard{}, err
	}
	total := 0
	for _, count := range counts {
		total += count
	}
	personal := counts[candidate.CandidateID]
	return entities.CandidateScorecard{
		CandidateID:      candidate.CandidateID,
		Name:             candidate.FullName,
		Position:         position.Title,
		PersonalTally:    personal,
		PositionTotal:    total,
		ShareOfVotes:     entities.ShareOfVotes(personal, total),
		PerformanceIndex: entities.PerformanceIndex(personal, total),
	}, nil
}

// OfficialWinners declares one result per position. Only candidates still on
// the ballot are counted; two or more sharing the top tally is a tie.
func (uc TallyUseCase) OfficialWinners(ctx context.Context, electionID string) ([]entities.PositionWinner, error) {
	electionID = strings.TrimSpace(electionID)
	if _, err := uc.Ledger.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	positions, err := uc.Ledger.ListPositionsByElection(ctx, electionID)
	if err != nil {
		uc.logReadFailure("ballot_winners_read_failed", "election_id", electionID, err)
		return nil, err
	}
	candidates, err := uc.Ledger.ListCandidatesByElection(ctx, electionID)
	if err != nil {
		uc.logReadFailure("ballot_winners_read_failed", "election_id", electionID, err)
		return nil, err
	}
	counts, err := uc.Ledger.CountVotesByElection(ctx, electionID)
	if err != nil {
		uc.logReadFailure("ballot_winners_read_failed", "election_id", electionID, err)
		return nil, err
	}

	byPosition := make(map[string][]entities.Candidate, len(positions))
	for _, candidate := range candidates {
		byPosition[candidate.PositionID] = append(byPosition[candidate.PositionID], candidate)
	}
	sort.SliceStable(positions, func(i, j int) bool {
		if positions[i].Title == positions[j].Title {
			return positions[i].PositionID < positions[j].PositionID
		}
		return positions[i].Title < positions[j].Title
	})

	results := make([]entities.PositionWinner, 0, len(positions))
	for _, position := range positions {
		results = append(results, declareWinner(position, rank(byPosition[position.PositionID], counts)))
	}
	return results, nil
}

func declareWinner(position entities.Position, ranked []rankedCandidate) entities.PositionWinner {
	result := entities.PositionWinner{
		PositionID: position.PositionID,
		Position:   position.Title,
	}
	if len(ranked) == 0 {
		result.Winner = entities.WinnerNoCandidates
		return result
	}
	for _, item := range ranked {
		result.TotalVotes += item.tally
	}

	top := ranked[0]
	var tied []string
	for _, item := range ranked {
		if item.tally != top.tally {
			break
		}
		tied = append(tied, item.candidate.FullName)
	}
	if len(tied) > 1 {
		result.Winner = entities.WinnerTie
		result.Tied = tied
		return result
	}

	second := 0
	if len(ranked) > 1 {
		second = ranked[1].tally
	}
	result.Winner = top.candidate.FullName
	result.WinnerCandidateID = top.candidate.CandidateID
	result.Margin = top.tally - second
	return result
}

// rank orders candidates by tally descending, keeping ballot order for ties.
func rank(candidates []entities.Candidate, counts map[string]int) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, rankedCandidate{candidate: candidate, tally: counts[candidate.CandidateID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].tally != ranked[j].tally {
			return ranked[i].tally > ranked[j].tally
		}
		return ranked[i].candidate.BallotNumber < ranked[j].candidate.BallotNumber
	})
	return ranked
}

func (uc TallyUseCase) electionLabels(ctx context.Context, electionID string) (map[string]string, map[string]string, error) {
	positions, err := uc.Ledger.ListPositionsByElection(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := uc.Ledger.ListCandidatesByElection(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	positionTitles := make(map[string]string, len(positions))
	for _, position := range positions {
		positionTitles[position.PositionID] = position.Title
	}
	candidateNames := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		candidateNames[candidate.CandidateID] = candidate.FullName
	}
	return positionTitles, candidateNames, nil
}

func (uc TallyUseCase) logReadFailure(event string, key string, value string, err error) {
	application.ResolveLogger(uc.Logger).Error("ballot tally read failed",
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		key, value,
		"error", err.Error(),
	)
}
