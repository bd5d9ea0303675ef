package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	application "clubvote/contexts/club-elections/ballot-engine/application"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

// runInTx executes fn in a ledger transaction and retries the whole unit once
// when the store reports a transient conflict. fn must reset any captured
// results at the top so a retried attempt starts clean.
func runInTx(
	ctx context.Context,
	ledger ports.Ledger,
	telemetry ports.Telemetry,
	logger *slog.Logger,
	operation string,
	fn func(tx ports.LedgerTx) error,
) error {
	err := ledger.InTx(ctx, fn)
	if !errors.Is(err, domainerrors.ErrTransientConflict) {
		return err
	}

	logger.Warn("ballot ledger transaction conflicted, retrying",
		"event", "ballot_tx_retry",
		"module", application.ModuleName,
		"layer", "application",
		"operation", operation,
		"error", err.Error(),
	)
	application.RecordRetry(telemetry, operation)

	err = ledger.InTx(ctx, fn)
	if errors.Is(err, domainerrors.ErrTransientConflict) {
		logger.Error("ballot ledger transaction conflicted after retry",
			"event", "ballot_tx_retry_exhausted",
			"module", application.ModuleName,
			"layer", "application",
			"operation", operation,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %s: %v", domainerrors.ErrConsistency, operation, err)
	}
	return err
}
