package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	ElectionID     string `json:"election_id"`
	PositionID     string `json:"position_id"`
	CandidateID    string `json:"candidate_id"`
	VoterYearGroup string `json:"voter_year_group,omitempty"`
}

type CastVoteResponse struct {
	Receipt    string    `json:"receipt"`
	ElectionID string    `json:"election_id"`
	PositionID string    `json:"position_id"`
	CastAt     time.Time `json:"cast_at"`
}

type BallotSelection struct {
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
}

type CastBulkBallotRequest struct {
	ElectionID     string            `json:"election_id"`
	VoterYearGroup string            `json:"voter_year_group,omitempty"`
	Selections     []BallotSelection `json:"selections"`
}

type CastBulkBallotResponse struct {
	Receipts         []string `json:"receipts"`
	Count            int      `json:"count"`
	SkippedPositions []string `json:"skipped_positions,omitempty"`
}

type VerifyReceiptRequest struct {
	Receipt string `json:"receipt"`
}

type VerifyReceiptResponse struct {
	Election  string    `json:"election"`
	Position  string    `json:"position"`
	Candidate string    `json:"candidate"`
	CastAt    time.Time `json:"cast_at"`
	Status    string    `json:"status"`
}

type VotingProgressResponse struct {
	ElectionID     string   `json:"election_id"`
	VotedPositions []string `json:"voted_positions"`
}

type VoterStatusResponse struct {
	ElectionID     string     `json:"election_id"`
	HasVoted       bool       `json:"has_voted"`
	VotedAt        *time.Time `json:"voted_at,omitempty"`
	PositionsVoted int        `json:"positions_voted"`
}

type ParticipantItem struct {
	VoterID      string    `json:"voter_id"`
	FirstVotedAt time.Time `json:"first_voted_at"`
}

type TurnoutResponse struct {
	ElectionID   string            `json:"election_id"`
	TotalVoters  int               `json:"total_voters"`
	TotalVotes   int               `json:"total_votes"`
	Participants []ParticipantItem `json:"participants"`
	ComputedAt   time.Time         `json:"computed_at"`
}

type LeaderboardItem struct {
	CandidateID   string `json:"candidate_id"`
	FullName      string `json:"full_name"`
	BallotNumber  int    `json:"ballot_number"`
	PositionTitle string `json:"position_title"`
	Votes         int    `json:"votes"`
	Percentage    string `json:"percentage"`
}

type LeaderboardResponse struct {
	PositionID string            `json:"position_id"`
	Items      []LeaderboardItem `json:"items"`
}

type WinnerItem struct {
	PositionID        string   `json:"position_id"`
	Position          string   `json:"position"`
	Winner            string   `json:"winner"`
	WinnerCandidateID string   `json:"winner_candidate_id,omitempty"`
	TotalVotes        int      `json:"total_votes"`
	Margin            int      `json:"margin"`
	Tied              []string `json:"tied,omitempty"`
}

type WinnersResponse struct {
	ElectionID string       `json:"election_id"`
	Items      []WinnerItem `json:"items"`
}

type AuditEntry struct {
	Receipt       string    `json:"receipt"`
	CandidateName string    `json:"candidate_name"`
	PositionTitle string    `json:"position_title"`
	CastAt        time.Time `json:"cast_at"`
}

type ElectionAnalyticsResponse struct {
	ElectionID       string         `json:"election_id"`
	TotalBallotsCast int            `json:"total_ballots_cast"`
	UniqueVoters     int            `json:"unique_voters"`
	Demographics     map[string]int `json:"demographics"`
	AuditTrail       []AuditEntry   `json:"audit_trail"`
}

type CandidateScorecardResponse struct {
	CandidateID      string  `json:"candidate_id"`
	Name             string  `json:"name"`
	Position         string  `json:"position"`
	PersonalTally    int     `json:"personal_tally"`
	PositionTotal    int     `json:"position_total"`
	ShareOfVotes     string  `json:"share_of_votes"`
	PerformanceIndex float64 `json:"performance_index"`
}

type CandidateResponse struct {
	CandidateID   string    `json:"candidate_id"`
	ElectionID    string    `json:"election_id"`
	PositionID    string    `json:"position_id"`
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id,omitempty"`
	FullName      string    `json:"full_name"`
	Manifesto     string    `json:"manifesto,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	BallotNumber  int       `json:"ballot_number"`
	PromotedAt    time.Time `json:"promoted_at"`
}

type PromoteResponse struct {
	Candidate       CandidateResponse `json:"candidate"`
	AlreadyPromoted bool              `json:"already_promoted"`
}

type BallotResponse struct {
	ElectionID string              `json:"election_id"`
	PositionID string              `json:"position_id,omitempty"`
	Items      []CandidateResponse `json:"items"`
}

type DisqualifyRequest struct {
	Reason string `json:"reason"`
}

type WithdrawRequest struct {
	ApplicationID string `json:"application_id,omitempty"`
	CandidateID   string `json:"candidate_id,omitempty"`
}

type RemovalResponse struct {
	CandidateID         string `json:"candidate_id,omitempty"`
	ApplicationID       string `json:"application_id,omitempty"`
	ElectionID          string `json:"election_id"`
	PositionID          string `json:"position_id"`
	RemovedBallotNumber int    `json:"removed_ballot_number,omitempty"`
	Resequenced         int    `json:"resequenced"`
	ApplicationStatus   string `json:"application_status,omitempty"`
}
