package application

import domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"

const OutcomeAccepted = "accepted"

// OutcomeLabel turns a use-case error into a low-cardinality metric label.
func OutcomeLabel(err error) string {
	if err == nil {
		return OutcomeAccepted
	}
	return string(domainerrors.KindOf(err))
}
