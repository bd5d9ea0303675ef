package postgresadapter

import (
	"strings"
	"time"

	"clubvote/contexts/club-elections/ballot-engine/domain/entities"
	"clubvote/contexts/club-elections/ballot-engine/ports"
)

type electionModel struct {
	ElectionID string `gorm:"column:election_id;primaryKey"`
	Title      string `gorm:"column:title"`
	Status     string `gorm:"column:status"`
}

func (electionModel) TableName() string {
	return "elections"
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID: m.ElectionID,
		Title:      m.Title,
		Status:     entities.ElectionStatus(m.Status),
	}
}

type positionModel struct {
	PositionID     string `gorm:"column:position_id;primaryKey"`
	ElectionID     string `gorm:"column:election_id;index"`
	Title          string `gorm:"column:title"`
	SlotsAvailable int    `gorm:"column:slots_available"`
	EligibleYears  string `gorm:"column:eligible_years"`
}

func (positionModel) TableName() string {
	return "positions"
}

func (m positionModel) toEntity() entities.Position {
	var years []string
	for _, year := range strings.Split(m.EligibleYears, ",") {
		if year = strings.TrimSpace(year); year != "" {
			years = append(years, year)
		}
	}
	return entities.Position{
		PositionID:     m.PositionID,
		ElectionID:     m.ElectionID,
		Title:          m.Title,
		SlotsAvailable: m.SlotsAvailable,
		EligibleYears:  years,
	}
}

// userModel is the slice of the member directory the ledger joins against.
type userModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	FullName string `gorm:"column:full_name"`
}

func (userModel) TableName() string {
	return "users"
}

type applicationModel struct {
	ApplicationID string     `gorm:"column:application_id;primaryKey"`
	ElectionID    string     `gorm:"column:election_id;index"`
	PositionID    string     `gorm:"column:position_id"`
	UserID        string     `gorm:"column:user_id"`
	Manifesto     string     `gorm:"column:manifesto"`
	ImageURL      string     `gorm:"column:image_url"`
	Status        string     `gorm:"column:status"`
	AdminRemarks  string     `gorm:"column:admin_remarks"`
	ReviewedBy    string     `gorm:"column:reviewed_by"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at"`
}

func (applicationModel) TableName() string {
	return "candidate_applications"
}

// applicationRow is an application joined with its applicant's name.
type applicationRow struct {
	ApplicationID string     `gorm:"column:application_id"`
	ElectionID    string     `gorm:"column:election_id"`
	PositionID    string     `gorm:"column:position_id"`
	UserID        string     `gorm:"column:user_id"`
	Manifesto     string     `gorm:"column:manifesto"`
	ImageURL      string     `gorm:"column:image_url"`
	Status        string     `gorm:"column:status"`
	AdminRemarks  string     `gorm:"column:admin_remarks"`
	ReviewedBy    string     `gorm:"column:reviewed_by"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at"`
	FullName      string     `gorm:"column:full_name"`
}

func (m applicationRow) toEntity() entities.Application {
	return entities.Application{
		ApplicationID: m.ApplicationID,
		ElectionID:    m.ElectionID,
		PositionID:    m.PositionID,
		UserID:        m.UserID,
		ApplicantName: m.FullName,
		Manifesto:     m.Manifesto,
		ImageURL:      m.ImageURL,
		Status:        entities.ApplicationStatus(m.Status),
		AdminRemarks:  m.AdminRemarks,
		ReviewedBy:    m.ReviewedBy,
		ReviewedAt:    m.ReviewedAt,
	}
}

type candidateModel struct {
	CandidateID   string    `gorm:"column:candidate_id;primaryKey"`
	ElectionID    string    `gorm:"column:election_id;index:idx_candidates_ballot,priority:1"`
	PositionID    string    `gorm:"column:position_id;index:idx_candidates_ballot,priority:2"`
	UserID        string    `gorm:"column:user_id"`
	ApplicationID *string   `gorm:"column:application_id;uniqueIndex:uq_candidates_application"`
	FullName      string    `gorm:"column:full_name"`
	Manifesto     string    `gorm:"column:manifesto"`
	ImageURL      string    `gorm:"column:image_url"`
	BallotNumber  int       `gorm:"column:ballot_number;index:idx_candidates_ballot,priority:3"`
	PromotedAt    time.Time `gorm:"column:promoted_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	var applicationID *string
	if value := strings.TrimSpace(candidate.ApplicationID); value != "" {
		applicationID = &value
	}
	return candidateModel{
		CandidateID:   candidate.CandidateID,
		ElectionID:    candidate.ElectionID,
		PositionID:    candidate.PositionID,
		UserID:        candidate.UserID,
		ApplicationID: applicationID,
		FullName:      candidate.FullName,
		Manifesto:     candidate.Manifesto,
		ImageURL:      candidate.ImageURL,
		BallotNumber:  candidate.BallotNumber,
		PromotedAt:    candidate.PromotedAt.UTC(),
	}
}

func (m candidateModel) toEntity() entities.Candidate {
	applicationID := ""
	if m.ApplicationID != nil {
		applicationID = *m.ApplicationID
	}
	return entities.Candidate{
		CandidateID:   m.CandidateID,
		ElectionID:    m.ElectionID,
		PositionID:    m.PositionID,
		UserID:        m.UserID,
		ApplicationID: applicationID,
		FullName:      m.FullName,
		Manifesto:     m.Manifesto,
		ImageURL:      m.ImageURL,
		BallotNumber:  m.BallotNumber,
		PromotedAt:    m.PromotedAt.UTC(),
	}
}

// voteModel has no foreign key to candidates; votes outlive a
// disqualified candidate.
type voteModel struct {
	VoteID              string    `gorm:"column:vote_id;primaryKey"`
	VoterID             string    `gorm:"column:voter_id;uniqueIndex:uq_votes_voter_position,priority:1"`
	PositionID          string    `gorm:"column:position_id;uniqueIndex:uq_votes_voter_position,priority:2;index"`
	ElectionID          string    `gorm:"column:election_id;index"`
	CandidateID         string    `gorm:"column:candidate_id;index"`
	VoterYearGroup      string    `gorm:"column:voter_year_group"`
	VerificationReceipt string    `gorm:"column:verification_receipt;uniqueIndex:uq_votes_receipt"`
	CastAt              time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		VoteID:              vote.VoteID,
		VoterID:             vote.VoterID,
		PositionID:          vote.PositionID,
		ElectionID:          vote.ElectionID,
		CandidateID:         vote.CandidateID,
		VoterYearGroup:      vote.VoterYearGroup,
		VerificationReceipt: vote.VerificationReceipt,
		CastAt:              vote.CastAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:              m.VoteID,
		VoterID:             m.VoterID,
		ElectionID:          m.ElectionID,
		PositionID:          m.PositionID,
		CandidateID:         m.CandidateID,
		VoterYearGroup:      m.VoterYearGroup,
		VerificationReceipt: m.VerificationReceipt,
		CastAt:              m.CastAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "ballot_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ballot_event_dedup"
}

type tallyRow struct {
	CandidateID string `gorm:"column:candidate_id"`
	Votes       int    `gorm:"column:votes"`
}
