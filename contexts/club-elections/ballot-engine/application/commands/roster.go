package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

const (
	operationPromote    = "promote"
	operationDisqualify = "disqualify"
	operationWithdraw   = "withdraw"

	disqualifiedRemarkPrefix = "DISQUALIFIED: "
	withdrawnRemark          = "WITHDRAWN: requested by applicant"
)

type PromoteCommand struct {
	ApplicationID string
	ActorID       string
}

type PromoteResult struct {
	Candidate       entities.Candidate
	AlreadyPromoted bool
}

type DisqualifyCommand struct {
	CandidateID string
	ActorID     string
	Reason      string
}

// WithdrawCommand names exactly one of ApplicationID or CandidateID.
type WithdrawCommand struct {
	ApplicationID string
	CandidateID   string
	ActorID       string
}

type RemovalResult struct {
	CandidateID         string
	ApplicationID       string
	ElectionID          string
	PositionID          string
	RemovedBallotNumber int
	Resequenced         int
	ApplicationStatus   entities.ApplicationStatus
}

// RosterUseCase owns the candidate list. All roster writes for a position run
// under that position's lock so ballot numbers stay dense and unique.
type RosterUseCase struct {
	Ledger    ports.Ledger
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Telemetry ports.Telemetry
	Logger    *slog.Logger
}

// Promote places an approved application on the ballot with the next ballot
// number. Promoting the same application again returns the existing candidate.
func (uc RosterUseCase) Promote(ctx context.Context, cmd PromoteCommand) (PromoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	applicationID := strings.TrimSpace(cmd.ApplicationID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if applicationID == "" || actorID == "" {
		application.RecordOutcome(uc.Telemetry, operationPromote, application.OutcomeLabel(domainerrors.ErrInvalidInput))
		return PromoteResult{}, domainerrors.ErrInvalidInput
	}

	var result PromoteResult
	err := runInTx(ctx, uc.Ledger, uc.Telemetry, logger, operationPromote, func(tx ports.LedgerTx) error {
		result = PromoteResult{}
		app, err := tx.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := tx.LockPosition(ctx, app.ElectionID, app.PositionID); err != nil {
			return err
		}
		if app, err = tx.GetApplication(ctx, applicationID); err != nil {
			return err
		}
		if app.Status != entities.ApplicationStatusApproved {
			return domainerrors.ErrApplicationNotApproved
		}

		existing, found, err := tx.FindCandidateByApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if found {
			result = PromoteResult{Candidate: existing, AlreadyPromoted: true}
			return nil
		}

		highest, err := tx.MaxBallotNumber(ctx, app.ElectionID, app.PositionID)
		if err != nil {
			return err
		}
		candidateID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		now := resolveNow(uc.Clock)
		candidate := entities.Candidate{
			CandidateID:   candidateID,
			ElectionID:    app.ElectionID,
			PositionID:    app.PositionID,
			UserID:        app.UserID,
			ApplicationID: app.ApplicationID,
			FullName:      app.ApplicantName,
			Manifesto:     app.Manifesto,
			ImageURL:      app.ImageURL,
			BallotNumber:  highest + 1,
			PromotedAt:    now,
		}
		if err := tx.InsertCandidate(ctx, candidate); err != nil {
			return err
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventCandidatePromoted, candidate.ElectionID, now, map[string]any{
			"candidate_id":   candidate.CandidateID,
			"application_id": candidate.ApplicationID,
			"election_id":    candidate.ElectionID,
			"position_id":    candidate.PositionID,
			"user_id":        candidate.UserID,
			"ballot_number":  candidate.BallotNumber,
			"promoted_by":    actorID,
		}); err != nil {
			return err
		}
		result = PromoteResult{Candidate: candidate}
		return nil
	})
	application.RecordOutcome(uc.Telemetry, operationPromote, application.OutcomeLabel(err))
	if err != nil {
		logRosterFailure(logger, "ballot_candidate_promote_failed", applicationID, "", err)
		return PromoteResult{}, err
	}

	logger.Info("candidate promoted",
		"event", "ballot_candidate_promoted",
		"module", application.ModuleName,
		"layer", "application",
		"application_id", applicationID,
		"candidate_id", result.Candidate.CandidateID,
		"position_id", result.Candidate.PositionID,
		"ballot_number", result.Candidate.BallotNumber,
		"already_promoted", result.AlreadyPromoted,
		"actor_id", actorID,
	)
	return result, nil
}

// Disqualify removes a candidate, rejects the originating application and
// closes the gap in ballot numbering. Votes already cast are kept.
func (uc RosterUseCase) Disqualify(ctx context.Context, cmd DisqualifyCommand) (RemovalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	actorID := strings.TrimSpace(cmd.ActorID)
	reason := strings.TrimSpace(cmd.Reason)
	if candidateID == "" || actorID == "" || reason == "" {
		application.RecordOutcome(uc.Telemetry, operationDisqualify, application.OutcomeLabel(domainerrors.ErrInvalidInput))
		return RemovalResult{}, domainerrors.ErrInvalidInput
	}

	var result RemovalResult
	err := runInTx(ctx, uc.Ledger, uc.Telemetry, logger, operationDisqualify, func(tx ports.LedgerTx) error {
		result = RemovalResult{}
		candidate, err := lockCandidate(ctx, tx, candidateID)
		if err != nil {
			return err
		}
		now := resolveNow(uc.Clock)
		removal, err := removeFromBallot(ctx, tx, candidate)
		if err != nil {
			return err
		}
		if candidate.ApplicationID != "" {
			if err := tx.ReviewApplication(ctx, ports.ApplicationReview{
				ApplicationID: candidate.ApplicationID,
				Status:        entities.ApplicationStatusRejected,
				Remarks:       disqualifiedRemarkPrefix + reason,
				ReviewedBy:    actorID,
				ReviewedAt:    now,
			}); err != nil {
				return err
			}
			removal.ApplicationStatus = entities.ApplicationStatusRejected
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventCandidateDisqualified, candidate.ElectionID, now, map[string]any{
			"candidate_id":    candidate.CandidateID,
			"application_id":  candidate.ApplicationID,
			"election_id":     candidate.ElectionID,
			"position_id":     candidate.PositionID,
			"user_id":         candidate.UserID,
			"reason":          reason,
			"disqualified_by": actorID,
		}); err != nil {
			return err
		}
		result = removal
		return nil
	})
	application.RecordOutcome(uc.Telemetry, operationDisqualify, application.OutcomeLabel(err))
	if err != nil {
		logRosterFailure(logger, "ballot_candidate_disqualify_failed", "", candidateID, err)
		return RemovalResult{}, err
	}

	logger.Info("candidate disqualified",
		"event", "ballot_candidate_disqualified",
		"module", application.ModuleName,
		"layer", "application",
		"candidate_id", result.CandidateID,
		"position_id", result.PositionID,
		"removed_ballot_number", result.RemovedBallotNumber,
		"resequenced", result.Resequenced,
		"actor_id", actorID,
	)
	return result, nil
}

// Withdraw lets an applicant pull out, before or after promotion.
func (uc RosterUseCase) Withdraw(ctx context.Context, cmd WithdrawCommand) (RemovalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	applicationID := strings.TrimSpace(cmd.ApplicationID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" || (applicationID == "") == (candidateID == "") {
		application.RecordOutcome(uc.Telemetry, operationWithdraw, application.OutcomeLabel(domainerrors.ErrInvalidInput))
		return RemovalResult{}, domainerrors.ErrInvalidInput
	}

	var result RemovalResult
	err := runInTx(ctx, uc.Ledger, uc.Telemetry, logger, operationWithdraw, func(tx ports.LedgerTx) error {
		result = RemovalResult{}
		now := resolveNow(uc.Clock)
		appID := applicationID

		var (
			candidate entities.Candidate
			promoted  bool
		)
		if candidateID != "" {
			found, err := lockCandidate(ctx, tx, candidateID)
			if err != nil {
				return err
			}
			if found.UserID != actorID {
				return domainerrors.ErrNotOwner
			}
			candidate, promoted = found, true
			appID = found.ApplicationID
		}

		var removal RemovalResult
		if appID != "" {
			app, err := tx.GetApplication(ctx, appID)
			if err != nil {
				return err
			}
			if app.UserID != actorID {
				return domainerrors.ErrNotOwner
			}
			if !promoted {
				if err := tx.LockPosition(ctx, app.ElectionID, app.PositionID); err != nil {
					return err
				}
				if app, err = tx.GetApplication(ctx, appID); err != nil {
					return err
				}
				if candidate, promoted, err = tx.FindCandidateByApplication(ctx, appID); err != nil {
					return err
				}
			}
			if app.Closed() {
				return domainerrors.ErrApplicationClosed
			}
			removal = RemovalResult{
				ApplicationID: app.ApplicationID,
				ElectionID:    app.ElectionID,
				PositionID:    app.PositionID,
			}
		}

		if promoted {
			removed, err := removeFromBallot(ctx, tx, candidate)
			if err != nil {
				return err
			}
			removal = removed
		}
		if removal.ApplicationID != "" {
			if err := tx.ReviewApplication(ctx, ports.ApplicationReview{
				ApplicationID: removal.ApplicationID,
				Status:        entities.ApplicationStatusWithdrawn,
				Remarks:       withdrawnRemark,
				ReviewedBy:    actorID,
				ReviewedAt:    now,
			}); err != nil {
				return err
			}
			removal.ApplicationStatus = entities.ApplicationStatusWithdrawn
		}
		if err := appendEvent(ctx, tx, uc.IDGen, EventCandidateWithdrawn, removal.ElectionID, now, map[string]any{
			"candidate_id":   removal.CandidateID,
			"application_id": removal.ApplicationID,
			"election_id":    removal.ElectionID,
			"position_id":    removal.PositionID,
			"user_id":        actorID,
			"was_promoted":   promoted,
		}); err != nil {
			return err
		}
		result = removal
		return nil
	})
	application.RecordOutcome(uc.Telemetry, operationWithdraw, application.OutcomeLabel(err))
	if err != nil {
		logRosterFailure(logger, "ballot_candidacy_withdraw_failed", applicationID, candidateID, err)
		return RemovalResult{}, err
	}

	logger.Info("candidacy withdrawn",
		"event", "ballot_candidacy_withdrawn",
		"module", application.ModuleName,
		"layer", "application",
		"application_id", result.ApplicationID,
		"candidate_id", result.CandidateID,
		"position_id", result.PositionID,
		"resequenced", result.Resequenced,
		"actor_id", actorID,
	)
	return result, nil
}

// lockCandidate locks the candidate's position and re-reads the candidate so
// the ballot number reflects any resequencing committed before the lock.
func lockCandidate(ctx context.Context, tx ports.LedgerTx, candidateID string) (entities.Candidate, error) {
	candidate, err := tx.GetCandidate(ctx, candidateID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if err := tx.LockPosition(ctx, candidate.ElectionID, candidate.PositionID); err != nil {
		return entities.Candidate{}, err
	}
	return tx.GetCandidate(ctx, candidateID)
}

func removeFromBallot(ctx context.Context, tx ports.LedgerTx, candidate entities.Candidate) (RemovalResult, error) {
	if err := tx.DeleteCandidate(ctx, candidate.CandidateID); err != nil {
		return RemovalResult{}, err
	}
	moved, err := tx.CloseBallotGap(ctx, candidate.ElectionID, candidate.PositionID, candidate.BallotNumber)
	if err != nil {
		return RemovalResult{}, err
	}
	return RemovalResult{
		CandidateID:         candidate.CandidateID,
		ApplicationID:       candidate.ApplicationID,
		ElectionID:          candidate.ElectionID,
		PositionID:          candidate.PositionID,
		RemovedBallotNumber: candidate.BallotNumber,
		Resequenced:         moved,
	}, nil
}

func logRosterFailure(logger *slog.Logger, event string, applicationID string, candidateID string, err error) {
	attrs := []any{
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		"application_id", applicationID,
		"candidate_id", candidateID,
	}
	if domainerrors.KindOf(err) == domainerrors.KindConsistency && !errors.Is(err, context.Canceled) {
		logger.Error("roster change failed", append(attrs, "error", err.Error())...)
		return
	}
	logger.Warn("roster change rejected", append(attrs, "reason", string(domainerrors.KindOf(err)))...)
}
