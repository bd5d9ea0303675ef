package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	domainerrors "clubvote/contexts/club-elections/ballot-engine/domain/errors"
	"clubvote/contexts/club-elections/ballot-engine/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	defaultLockTimeout = 5 * time.Second
)

type Repository struct {
	db          *gorm.DB
	logger      *slog.Logger
	lockTimeout time.Duration
}

type Option func(*Repository)

// WithLockTimeout bounds how long a ledger transaction waits on row locks.
// Zero disables the bound.
func WithLockTimeout(timeout time.Duration) Option {
	return func(r *Repository) {
		r.lockTimeout = timeout
	}
}

func NewRepository(db *gorm.DB, logger *slog.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	repo := &Repository{
		db:          db,
		logger:      logger,
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InTx runs fn inside a READ COMMITTED transaction. Races between concurrent
// writers surface as domainerrors.ErrTransientConflict.
func (r *Repository) InTx(ctx context.Context, fn func(tx ports.LedgerTx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())).Error; err != nil {
				return err
			}
		}
		return fn(&ledgerTx{db: tx})
	})
	if err == nil {
		return nil
	}
	classified := classifyTxError(err)
	if errors.Is(classified, domainerrors.ErrTransientConflict) {
		r.logError("ballot_ledger_tx_conflict", err)
	}
	return classified
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return findElection(ctx, r.db, electionID)
}

func (r *Repository) GetPosition(ctx context.Context, positionID string) (entities.Position, error) {
	var row positionModel
	err := r.db.WithContext(ctx).Where("position_id = ?", positionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Position{}, domainerrors.ErrPositionNotFound
	}
	if err != nil {
		r.logError("ballot_position_get_failed", err, "position_id", positionID)
		return entities.Position{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	return findCandidate(ctx, r.db, candidateID)
}

func (r *Repository) GetApplication(ctx context.Context, applicationID string) (entities.Application, error) {
	return findApplication(ctx, r.db, applicationID)
}

func (r *Repository) ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position_id ASC").
		Find(&rows).
		Error; err != nil {
		r.logError("ballot_positions_list_failed", err, "election_id", electionID)
		return nil, err
	}
	items := make([]entities.Position, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("ballot_number ASC").
		Find(&rows).
		Error; err != nil {
		r.logError("ballot_candidates_list_failed", err, "position_id", positionID)
		return nil, err
	}
	return candidatesToEntities(rows), nil
}

func (r *Repository) ListCandidatesByElection(ctx context.Context, electionID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position_id ASC").
		Order("ballot_number ASC").
		Find(&rows).
		Error; err != nil {
		r.logError("ballot_candidates_list_failed", err, "election_id", electionID)
		return nil, err
	}
	return candidatesToEntities(rows), nil
}

func (r *Repository) ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("cast_at ASC").
		Order("vote_id ASC").
		Find(&rows).
		Error; err != nil {
		r.logError("ballot_votes_list_failed", err, "election_id", electionID)
		return nil, err
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountVotesByPosition(ctx context.Context, positionID string) (map[string]int, error) {
	return r.countVotes(ctx, "position_id", positionID)
}

func (r *Repository) CountVotesByElection(ctx context.Context, electionID string) (map[string]int, error) {
	return r.countVotes(ctx, "election_id", electionID)
}

func (r *Repository) countVotes(ctx context.Context, column string, value string) (map[string]int, error) {
	var rows []tallyRow
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("candidate_id, COUNT(*) AS votes").
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Group("candidate_id").
		Scan(&rows).
		Error; err != nil {
		r.logError("ballot_votes_count_failed", err, column, value)
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CandidateID] = row.Votes
	}
	return counts, nil
}

func (r *Repository) GetVoteByReceipt(ctx context.Context, receipt string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).Where("verification_receipt = ?", receipt).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Vote{}, domainerrors.ErrReceiptNotFound
	}
	if err != nil {
		r.logError("ballot_receipt_get_failed", err)
		return entities.Vote{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListVotedPositions(ctx context.Context, voterID string, electionID string) ([]string, error) {
	var positions []string
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("voter_id = ? AND election_id = ?", voterID, electionID).
		Order("cast_at ASC").
		Pluck("position_id", &positions).
		Error; err != nil {
		r.logError("ballot_voted_positions_failed", err, "election_id", electionID)
		return nil, err
	}
	if positions == nil {
		positions = []string{}
	}
	return positions, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConsistency
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     eventID,
		PayloadHash: payloadHash,
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return false, createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", eventID).
		First(&existing).
		Error; err != nil {
		return false, err
	}
	if existing.PayloadHash != payloadHash {
		return false, domainerrors.ErrEventPayloadConflict
	}
	return true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) {
	base := []any{
		"event", event,
		"module", "club-elections/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	}
	r.logger.Error("ballot ledger operation failed", append(base, attrs...)...)
}

func findElection(ctx context.Context, db *gorm.DB, electionID string) (entities.Election, error) {
	var row electionModel
	err := db.WithContext(ctx).Where("election_id = ?", electionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	if err != nil {
		return entities.Election{}, err
	}
	return row.toEntity(), nil
}

func findCandidate(ctx context.Context, db *gorm.DB, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := db.WithContext(ctx).Where("candidate_id = ?", candidateID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	if err != nil {
		return entities.Candidate{}, err
	}
	return row.toEntity(), nil
}

func findApplication(ctx context.Context, db *gorm.DB, applicationID string) (entities.Application, error) {
	var row applicationRow
	result := db.WithContext(ctx).
		Table("candidate_applications AS a").
		Select("a.application_id, a.election_id, a.position_id, a.user_id, a.manifesto, a.image_url, "+
			"a.status, a.admin_remarks, a.reviewed_by, a.reviewed_at, COALESCE(u.full_name, '') AS full_name").
		Joins("LEFT JOIN users AS u ON u.user_id = a.user_id").
		Where("a.application_id = ?", applicationID).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return entities.Application{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Application{}, domainerrors.ErrApplicationNotFound
	}
	return row.toEntity(), nil
}

func candidatesToEntities(rows []candidateModel) []entities.Candidate {
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

var (
	_ ports.Ledger           = (*Repository)(nil)
	_ ports.LedgerReader     = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
	_ ports.EventDedupStore  = (*Repository)(nil)
)
