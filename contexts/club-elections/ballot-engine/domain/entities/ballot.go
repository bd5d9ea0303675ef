package entities

import "time"

type ElectionStatus string

const (
	ElectionStatusUpcoming  ElectionStatus = "upcoming"
	ElectionStatusVoting    ElectionStatus = "voting"
	ElectionStatusCompleted ElectionStatus = "completed"
	ElectionStatusCancelled ElectionStatus = "cancelled"
)

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"
)

// Election is owned by election administration; the engine only reads status.
type Election struct {
	ElectionID string
	Title      string
	Status     ElectionStatus
}

// AcceptsVotes reports whether ballots may be admitted right now.
func (e Election) AcceptsVotes() bool {
	return e.Status == ElectionStatusVoting
}

type Position struct {
	PositionID     string
	ElectionID     string
	Title          string
	SlotsAvailable int
	EligibleYears  []string
}

type Application struct {
	ApplicationID string
	ElectionID    string
	PositionID    string
	UserID        string
	ApplicantName string
	Manifesto     string
	ImageURL      string
	Status        ApplicationStatus
	AdminRemarks  string
	ReviewedBy    string
	ReviewedAt    *time.Time
}

// Closed reports whether the application can no longer change hands.
func (a Application) Closed() bool {
	return a.Status == ApplicationStatusRejected || a.Status == ApplicationStatusWithdrawn
}

// Candidate is a promoted application with a position-scoped ballot number.
// Ballot numbers within one (election, position) always form 1..N.
type Candidate struct {
	CandidateID   string
	ElectionID    string
	PositionID    string
	UserID        string
	ApplicationID string
	FullName      string
	Manifesto     string
	ImageURL      string
	BallotNumber  int
	PromotedAt    time.Time
}

// Vote is immutable once written. CandidateID may point at a candidate that
// has since been removed from the ballot.
type Vote struct {
	VoteID              string
	VoterID             string
	ElectionID          string
	PositionID          string
	CandidateID         string
	VoterYearGroup      string
	VerificationReceipt string
	CastAt              time.Time
}
