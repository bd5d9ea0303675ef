package entities

import (
	"fmt"
	"time"
)

const (
	WinnerTie           = "TIE (Runoff Needed)"
	WinnerNoCandidates  = "No Candidates"
	RemovedCandidate    = "Removed from ballot"
	YearGroupUnknown    = "Not Specified"
	ReceiptStatusPassed = "Verified & Counted"
)

var yearGroups = map[string]struct{}{"1": {}, "2": {}, "3": {}, "4": {}}

// ValidYearGroup accepts an empty value (not reported) or one of 1..4.
func ValidYearGroup(value string) bool {
	if value == "" {
		return true
	}
	_, ok := yearGroups[value]
	return ok
}

// YearGroupBucket maps an empty year group onto the reporting bucket.
func YearGroupBucket(value string) string {
	if value == "" {
		return YearGroupUnknown
	}
	return value
}

type LeaderboardRow struct {
	CandidateID   string
	FullName      string
	BallotNumber  int
	PositionTitle string
	Tally         int
	Percentage    string
}

type AuditEntry struct {
	Receipt       string
	CandidateName string
	PositionTitle string
	CastAt        time.Time
}

type ElectionAnalytics struct {
	ElectionID       string
	TotalBallotsCast int
	UniqueVoters     int
	Demographics     map[string]int
	AuditTrail       []AuditEntry
}

type CandidateScorecard struct {
	CandidateID      string
	Name             string
	Position         string
	PersonalTally    int
	PositionTotal    int
	ShareOfVotes     string
	PerformanceIndex float64
}

type PositionWinner struct {
	PositionID        string
	Position          string
	Winner            string
	WinnerCandidateID string
	TotalVotes        int
	Margin            int
	Tied              []string
}

type ReceiptVerification struct {
	Election  string
	Position  string
	Candidate string
	CastAt    time.Time
	Status    string
}

// Participant records that a member voted, never for whom.
type Participant struct {
	VoterID      string
	FirstVotedAt time.Time
}

type ElectionTurnout struct {
	ElectionID   string
	TotalVoters  int
	TotalVotes   int
	Participants []Participant
	ComputedAt   time.Time
}

// VoterStatus is the zero VotedAt when HasVoted is false.
type VoterStatus struct {
	ElectionID     string
	VoterID        string
	HasVoted       bool
	VotedAt        time.Time
	PositionsVoted int
}

// LeaderboardPercentage renders one decimal place; an empty pool yields "0.0".
func LeaderboardPercentage(tally int, total int) string {
	if total <= 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(tally)/float64(total)*100)
}

// ShareOfVotes renders two decimal places with a percent sign, or "0%" for an
// empty position.
func ShareOfVotes(personal int, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(personal)/float64(total)*100)
}

// PerformanceIndex is personal/total with the denominator floored at one.
func PerformanceIndex(personal int, total int) float64 {
	if total < 1 {
		total = 1
	}
	return float64(personal) / float64(total)
}
