package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid ballot input")
	ErrElectionNotOpen        = errors.New("election is not open for voting")
	ErrElectionNotFound       = errors.New("election not found")
	ErrPositionNotFound       = errors.New("position not found")
	ErrDuplicateVote          = errors.New("vote already cast for this position")
	ErrCandidateNotOnBallot   = errors.New("candidate is not on the ballot for this position")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrApplicationNotFound    = errors.New("application not found")
	ErrApplicationNotApproved = errors.New("application is not approved")
	ErrApplicationClosed      = errors.New("application is already closed")
	ErrNotOwner               = errors.New("actor does not own this candidacy")
	ErrReceiptNotFound        = errors.New("receipt not found")
	ErrEventPayloadConflict   = errors.New("event id reused with a different payload")
	ErrTransientConflict      = errors.New("transient ledger conflict")
	ErrConsistency            = errors.New("ledger consistency failure")
)

type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindElectionNotOpen Kind = "election_not_open"
	KindDuplicateVote   Kind = "duplicate_vote"
	KindInvalidState    Kind = "invalid_state"
	KindNotFound        Kind = "not_found"
	KindConsistency     Kind = "consistency"
)

// KindOf classifies an error for callers that map outcomes onto a transport.
// Anything unrecognised is reported as a consistency failure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrElectionNotOpen):
		return KindElectionNotOpen
	case errors.Is(err, ErrDuplicateVote):
		return KindDuplicateVote
	case errors.Is(err, ErrApplicationNotApproved),
		errors.Is(err, ErrApplicationClosed),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrEventPayloadConflict):
		return KindInvalidState
	case errors.Is(err, ErrElectionNotFound),
		errors.Is(err, ErrPositionNotFound),
		errors.Is(err, ErrCandidateNotOnBallot),
		errors.Is(err, ErrCandidateNotFound),
		errors.Is(err, ErrApplicationNotFound),
		errors.Is(err, ErrReceiptNotFound):
		return KindNotFound
	default:
		return KindConsistency
	}
}
