package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledgerTx binds LedgerTx to one open gorm transaction.
type ledgerTx struct {
	db *gorm.DB
}

func (l *ledgerTx) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return findElection(ctx, l.db, electionID)
}

func (l *ledgerTx) GetApplication(ctx context.Context, applicationID string) (entities.Application, error) {
	return findApplication(ctx, l.db, applicationID)
}

func (l *ledgerTx) LockPosition(ctx context.Context, electionID string, positionID string) error {
	var row positionModel
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("position_id = ? AND election_id = ?", positionID, electionID).
		Take(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrPositionNotFound
	}
	return err
}

func (l *ledgerTx) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	return findCandidate(ctx, l.db, candidateID)
}

func (l *ledgerTx) FindCandidateByApplication(ctx context.Context, applicationID string) (entities.Candidate, bool, error) {
	var rows []candidateModel
	if err := l.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Limit(1).
		Find(&rows).
		Error; err != nil {
		return entities.Candidate{}, false, err
	}
	if len(rows) == 0 {
		return entities.Candidate{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (l *ledgerTx) MaxBallotNumber(ctx context.Context, electionID string, positionID string) (int, error) {
	var highest int
	if err := l.db.WithContext(ctx).
		Model(&candidateModel{}).
		Select("COALESCE(MAX(ballot_number), 0)").
		Where("election_id = ? AND position_id = ?", electionID, positionID).
		Scan(&highest).
		Error; err != nil {
		return 0, err
	}
	return highest, nil
}

func (l *ledgerTx) InsertCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	result := l.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConsistency
	}
	return nil
}

func (l *ledgerTx) DeleteCandidate(ctx context.Context, candidateID string) error {
	result := l.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Delete(&candidateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

// CloseBallotGap shifts every later candidate down by one in a single
// statement. The postgres ballot-number constraint is deferred to commit, so
// the transient overlap inside the statement is allowed.
func (l *ledgerTx) CloseBallotGap(ctx context.Context, electionID string, positionID string, removedNumber int) (int, error) {
	result := l.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("election_id = ? AND position_id = ? AND ballot_number > ?", electionID, positionID, removedNumber).
		UpdateColumn("ballot_number", gorm.Expr("ballot_number - ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (l *ledgerTx) ReviewApplication(ctx context.Context, review ports.ApplicationReview) error {
	result := l.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("application_id = ?", review.ApplicationID).
		Updates(map[string]any{
			"status":        string(review.Status),
			"admin_remarks": review.Remarks,
			"reviewed_by":   review.ReviewedBy,
			"reviewed_at":   review.ReviewedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrApplicationNotFound
	}
	return nil
}

func (l *ledgerTx) HasVote(ctx context.Context, voterID string, positionID string) (bool, error) {
	var count int64
	if err := l.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("voter_id = ? AND position_id = ?", voterID, positionID).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertVote relies on the (voter_id, position_id) unique index. A conflicting
// insert affects no row and leaves the transaction usable.
func (l *ledgerTx) InsertVote(ctx context.Context, vote entities.Vote) (bool, error) {
	row := voteModelFromEntity(vote)
	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "voter_id"}, {Name: "position_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (l *ledgerTx) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	row := outboxModel{
		OutboxID:     outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrEventPayloadConflict
		}
		return err
	}
	return nil
}

var _ ports.LedgerTx = (*ledgerTx)(nil)
