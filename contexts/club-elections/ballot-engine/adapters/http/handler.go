package httpadapter

import (
	"context"
	"log/slog"

	"clubvote/contexts/club-elections/ballot-engine/application/commands"
	"clubvote/contexts/club-elections/ballot-engine/application/queries"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	httptransport "clubvote/contexts/club-elections/ballot-engine/transport/http"
)

type Handler struct {
	Admission commands.AdmissionUseCase
	Roster    commands.RosterUseCase
	Tally     queries.TallyUseCase
	Receipts  queries.ReceiptUseCase
	Ballots   queries.BallotUseCase
	Logger    *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Admission.CastVote(ctx, commands.CastVoteCommand{
		VoterID:        voterID,
		ElectionID:     req.ElectionID,
		PositionID:     req.PositionID,
		CandidateID:    req.CandidateID,
		VoterYearGroup: req.VoterYearGroup,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Receipt:    result.Receipt,
		ElectionID: result.ElectionID,
		PositionID: result.PositionID,
		CastAt:     result.CastAt,
	}, nil
}

func (h Handler) CastBulkBallotHandler(
	ctx context.Context,
	voterID string,
	req httptransport.CastBulkBallotRequest,
) (httptransport.CastBulkBallotResponse, error) {
	selections := make([]commands.BallotSelection, 0, len(req.Selections))
	for _, item := range req.Selections {
		selections = append(selections, commands.BallotSelection{
			PositionID:  item.PositionID,
			CandidateID: item.CandidateID,
		})
	}
	result, err := h.Admission.CastBulkBallot(ctx, commands.CastBulkBallotCommand{
		VoterID:        voterID,
		ElectionID:     req.ElectionID,
		VoterYearGroup: req.VoterYearGroup,
		Selections:     selections,
	})
	if err != nil {
		return httptransport.CastBulkBallotResponse{}, err
	}
	return httptransport.CastBulkBallotResponse{
		Receipts:         result.Receipts,
		Count:            result.Count,
		SkippedPositions: result.SkippedPositions,
	}, nil
}

func (h Handler) VerifyReceiptHandler(ctx context.Context, req httptransport.VerifyReceiptRequest) (httptransport.VerifyReceiptResponse, error) {
	result, err := h.Receipts.VerifyReceipt(ctx, req.Receipt)
	if err != nil {
		return httptransport.VerifyReceiptResponse{}, err
	}
	return httptransport.VerifyReceiptResponse{
		Election:  result.Election,
		Position:  result.Position,
		Candidate: result.Candidate,
		CastAt:    result.CastAt,
		Status:    result.Status,
	}, nil
}

func (h Handler) VotingProgressHandler(ctx context.Context, voterID string, electionID string) (httptransport.VotingProgressResponse, error) {
	positions, err := h.Ballots.VotedPositions(ctx, voterID, electionID)
	if err != nil {
		return httptransport.VotingProgressResponse{}, err
	}
	return httptransport.VotingProgressResponse{
		ElectionID:     electionID,
		VotedPositions: positions,
	}, nil
}

func (h Handler) VoterStatusHandler(ctx context.Context, voterID string, electionID string) (httptransport.VoterStatusResponse, error) {
	status, err := h.Ballots.VoterStatus(ctx, voterID, electionID)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	resp := httptransport.VoterStatusResponse{
		ElectionID:     status.ElectionID,
		HasVoted:       status.HasVoted,
		PositionsVoted: status.PositionsVoted,
	}
	if status.HasVoted {
		votedAt := status.VotedAt
		resp.VotedAt = &votedAt
	}
	return resp, nil
}

func (h Handler) ElectionTurnoutHandler(ctx context.Context, electionID string) (httptransport.TurnoutResponse, error) {
	turnout, err := h.Ballots.ElectionTurnout(ctx, electionID)
	if err != nil {
		return httptransport.TurnoutResponse{}, err
	}
	participants := make([]httptransport.ParticipantItem, 0, len(turnout.Participants))
	for _, participant := range turnout.Participants {
		participants = append(participants, httptransport.ParticipantItem{
			VoterID:      participant.VoterID,
			FirstVotedAt: participant.FirstVotedAt,
		})
	}
	return httptransport.TurnoutResponse{
		ElectionID:   turnout.ElectionID,
		TotalVoters:  turnout.TotalVoters,
		TotalVotes:   turnout.TotalVotes,
		Participants: participants,
		ComputedAt:   turnout.ComputedAt,
	}, nil
}

func (h Handler) PositionLeaderboardHandler(ctx context.Context, positionID string) (httptransport.LeaderboardResponse, error) {
	rows, err := h.Tally.PositionLeaderboard(ctx, positionID)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, httptransport.LeaderboardItem{
			CandidateID:   row.CandidateID,
			FullName:      row.FullName,
			BallotNumber:  row.BallotNumber,
			PositionTitle: row.PositionTitle,
			Votes:         row.Tally,
			Percentage:    row.Percentage,
		})
	}
	return httptransport.LeaderboardResponse{PositionID: positionID, Items: items}, nil
}

func (h Handler) OfficialWinnersHandler(ctx context.Context, electionID string) (httptransport.WinnersResponse, error) {
	winners, err := h.Tally.OfficialWinners(ctx, electionID)
	if err != nil {
		return httptransport.WinnersResponse{}, err
	}
	items := make([]httptransport.WinnerItem, 0, len(winners))
	for _, winner := range winners {
		items = append(items, httptransport.WinnerItem{
			PositionID:        winner.PositionID,
			Position:          winner.Position,
			Winner:            winner.Winner,
			WinnerCandidateID: winner.WinnerCandidateID,
			TotalVotes:        winner.TotalVotes,
			Margin:            winner.Margin,
			Tied:              winner.Tied,
		})
	}
	return httptransport.WinnersResponse{ElectionID: electionID, Items: items}, nil
}

func (h Handler) ElectionAnalyticsHandler(ctx context.Context, electionID string) (httptransport.ElectionAnalyticsResponse, error) {
	analytics, err := h.Tally.ElectionAnalytics(ctx, electionID)
	if err != nil {
		return httptransport.ElectionAnalyticsResponse{}, err
	}
	trail := make([]httptransport.AuditEntry, 0, len(analytics.AuditTrail))
	for _, entry := range analytics.AuditTrail {
		trail = append(trail, httptransport.AuditEntry{
			Receipt:       entry.Receipt,
			CandidateName: entry.CandidateName,
			PositionTitle: entry.PositionTitle,
			CastAt:        entry.CastAt,
		})
	}
	return httptransport.ElectionAnalyticsResponse{
		ElectionID:       analytics.ElectionID,
		TotalBallotsCast: analytics.TotalBallotsCast,
		UniqueVoters:     analytics.UniqueVoters,
		Demographics:     analytics.Demographics,
		AuditTrail:       trail,
	}, nil
}

func (h Handler) CandidateScorecardHandler(ctx context.Context, candidateID string) (httptransport.CandidateScorecardResponse, error) {
	card, err := h.Tally.CandidateScorecard(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateScorecardResponse{}, err
	}
	return httptransport.CandidateScorecardResponse{
		CandidateID:      card.CandidateID,
		Name:             card.Name,
		Position:         card.Position,
		PersonalTally:    card.PersonalTally,
		PositionTotal:    card.PositionTotal,
		ShareOfVotes:     card.ShareOfVotes,
		PerformanceIndex: card.PerformanceIndex,
	}, nil
}

func (h Handler) PromoteHandler(ctx context.Context, actorID string, applicationID string) (httptransport.PromoteResponse, error) {
	result, err := h.Roster.Promote(ctx, commands.PromoteCommand{
		ApplicationID: applicationID,
		ActorID:       actorID,
	})
	if err != nil {
		return httptransport.PromoteResponse{}, err
	}
	return httptransport.PromoteResponse{
		Candidate:       mapCandidate(result.Candidate),
		AlreadyPromoted: result.AlreadyPromoted,
	}, nil
}

func (h Handler) DisqualifyHandler(
	ctx context.Context,
	actorID string,
	candidateID string,
	req httptransport.DisqualifyRequest,
) (httptransport.RemovalResponse, error) {
	result, err := h.Roster.Disqualify(ctx, commands.DisqualifyCommand{
		CandidateID: candidateID,
		ActorID:     actorID,
		Reason:      req.Reason,
	})
	if err != nil {
		return httptransport.RemovalResponse{}, err
	}
	return mapRemoval(result), nil
}

func (h Handler) WithdrawHandler(ctx context.Context, actorID string, req httptransport.WithdrawRequest) (httptransport.RemovalResponse, error) {
	result, err := h.Roster.Withdraw(ctx, commands.WithdrawCommand{
		ApplicationID: req.ApplicationID,
		CandidateID:   req.CandidateID,
		ActorID:       actorID,
	})
	if err != nil {
		return httptransport.RemovalResponse{}, err
	}
	return mapRemoval(result), nil
}

func (h Handler) ElectionBallotHandler(ctx context.Context, electionID string) (httptransport.BallotResponse, error) {
	candidates, err := h.Ballots.ElectionBallot(ctx, electionID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{ElectionID: electionID, Items: mapCandidates(candidates)}, nil
}

func (h Handler) PositionBallotHandler(ctx context.Context, electionID string, positionID string) (httptransport.BallotResponse, error) {
	candidates, err := h.Ballots.PositionBallot(ctx, electionID, positionID)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{
		ElectionID: electionID,
		PositionID: positionID,
		Items:      mapCandidates(candidates),
	}, nil
}

func (h Handler) CandidateProfileHandler(ctx context.Context, candidateID string) (httptransport.CandidateResponse, error) {
	candidate, err := h.Ballots.CandidateProfile(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func mapCandidates(items []entities.Candidate) []httptransport.CandidateResponse {
	out := make([]httptransport.CandidateResponse, 0, len(items))
	for _, item := range items {
		out = append(out, mapCandidate(item))
	}
	return out
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID:   candidate.CandidateID,
		ElectionID:    candidate.ElectionID,
		PositionID:    candidate.PositionID,
		UserID:        candidate.UserID,
		ApplicationID: candidate.ApplicationID,
		FullName:      candidate.FullName,
		Manifesto:     candidate.Manifesto,
		ImageURL:      candidate.ImageURL,
		BallotNumber:  candidate.BallotNumber,
		PromotedAt:    candidate.PromotedAt,
	}
}

func mapRemoval(result commands.RemovalResult) httptransport.RemovalResponse {
	return httptransport.RemovalResponse{
		CandidateID:         result.CandidateID,
		ApplicationID:       result.ApplicationID,
		ElectionID:          result.ElectionID,
		PositionID:          result.PositionID,
		RemovedBallotNumber: result.RemovedBallotNumber,
		Resequenced:         result.Resequenced,
		ApplicationStatus:   string(result.ApplicationStatus),
	}
}
