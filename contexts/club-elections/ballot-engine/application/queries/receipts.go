package queries

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

// ReceiptUseCase lets a receipt holder confirm their vote was recorded.
// Possession of the receipt is the only authorisation.
type ReceiptUseCase struct {
	Ledger ports.LedgerReader
	Logger *slog.Logger
}

func (uc ReceiptUseCase) VerifyReceipt(ctx context.Context, receipt string) (entities.ReceiptVerification, error) {
	logger := application.ResolveLogger(uc.Logger)
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return entities.ReceiptVerification{}, domainerrors.ErrReceiptNotFound
	}
	vote, err := uc.Ledger.GetVoteByReceipt(ctx, receipt)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrReceiptNotFound) {
			logger.Error("receipt lookup failed",
				"event", "ballot_receipt_lookup_failed",
				"module", application.ModuleName,
				"layer", "application",
				"error", err.Error(),
			)
		}
		return entities.ReceiptVerification{}, err
	}

	election, err := uc.Ledger.GetElection(ctx, vote.ElectionID)
	if err != nil {
		return entities.ReceiptVerification{}, err
	}
	position, err := uc.Ledger.GetPosition(ctx, vote.PositionID)
	if err != nil {
		return entities.ReceiptVerification{}, err
	}
	candidateName := entities.RemovedCandidate
	candidate, err := uc.Ledger.GetCandidate(ctx, vote.CandidateID)
	switch {
	case err == nil:
		candidateName = candidate.FullName
	case !errors.Is(err, domainerrors.ErrCandidateNotFound):
		return entities.ReceiptVerification{}, err
	}

	logger.Info("receipt verified",
		"event", "ballot_receipt_verified",
		"module", application.ModuleName,
		"layer", "application",
		"election_id", vote.ElectionID,
		"position_id", vote.PositionID,
	)
	return entities.ReceiptVerification{
		Election:  election.Title,
		Position:  position.Title,
		Candidate: candidateName,
		CastAt:    vote.CastAt,
		Status:    entities.ReceiptStatusPassed,
	}, nil
}
