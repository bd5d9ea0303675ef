package postgresadapter

import (
	"context"
	"fmt"
)

// ballotNumberConstraintDDL keeps ballot numbers unique per position while
// letting a single UPDATE shift a block of numbers down.
const ballotNumberConstraintDDL = `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = 'uq_candidates_ballot_number'
	) THEN
		ALTER TABLE candidates
			ADD CONSTRAINT uq_candidates_ballot_number
			UNIQUE (election_id, position_id, ballot_number)
			DEFERRABLE INITIALLY DEFERRED;
	END IF;
END
$$;`

// Migrate creates the ledger tables. Election, position, member and
// application tables are owned by other services in production; creating them
// here keeps local databases and tests self-contained.
func (r *Repository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(
		&electionModel{},
		&positionModel{},
		&userModel{},
		&applicationModel{},
		&candidateModel{},
		&voteModel{},
		&outboxModel{},
		&eventDedupModel{},
	); err != nil {
		return fmt.Errorf("auto migrate ballot ledger: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(ballotNumberConstraintDDL).Error; err != nil {
			return fmt.Errorf("add ballot number constraint: %w", err)
		}
	}
	r.logger.Info("ballot ledger schema migrated",
		"event", "ballot_ledger_migrated",
		"module", "club-elections/ballot-engine",
		"layer", "adapter",
		"dialect", db.Dialector.Name(),
	)
	return nil
}
