package postgresadapter

import (
	"errors"
	"fmt"

	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlstateUniqueViolation      = "23505"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateLockNotAvailable     = "55P03"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return sqlstate(err) == sqlstateUniqueViolation
}

func isTransient(err error) bool {
	switch sqlstate(err) {
	case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable:
		return true
	default:
		return false
	}
}

func sqlstate(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classifyTxError maps store-level races onto ErrTransientConflict. Unique
// violations land here too: with votes inserted via ON CONFLICT DO NOTHING the
// only remaining sources are receipt collisions and deferred ballot-number
// checks at commit, both of which a fresh attempt resolves.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domainerrors.ErrTransientConflict, err)
	}
	return err
}
