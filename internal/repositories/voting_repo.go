package repositories

import (
	"context"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VotingRepository interface {
	CreateTopic(ctx context.Context, topic *models.VotingTopic) error
	GetTopic(ctx context.Context, associationID, id uuid.UUID) (*models.VotingTopic, error)
	ListTopics(ctx context.Context, associationID uuid.UUID, status *models.TopicStatus) ([]*models.VotingTopic, error)
	UpdateTopicStatus(ctx context.Context, associationID, id uuid.UUID, from, to models.TopicStatus, at time.Time) error
	DeleteTopic(ctx context.Context, associationID, id uuid.UUID) error

	CreateVote(ctx context.Context, vote *models.Vote) error
	GetVote(ctx context.Context, topicID, memberID uuid.UUID) (*models.Vote, error)
	ListVotes(ctx context.Context, topicID uuid.UUID) ([]*models.Vote, error)
}

type votingRepo struct {
	db DB
}

func NewVotingRepository(db DB) VotingRepository {
	return &votingRepo{db: db}
}

const topicColumns = `id, association_id, title, description, options, created_by, starts_at, ends_at, status,
		allow_multiple_votes, visibility, is_proposal, activated_at, closed_at, created_at, updated_at`

func scanTopic(row pgx.Row) (*models.VotingTopic, error) {
	t := &models.VotingTopic{}
	var visibility []byte
	err := row.Scan(&t.ID, &t.AssociationID, &t.Title, &t.Description, &t.Options, &t.CreatedBy, &t.StartsAt, &t.EndsAt,
		&t.Status, &t.AllowMultipleVotes, &visibility, &t.IsProposal, &t.ActivatedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if t.Visibility, err = decodeVisibility(visibility); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *votingRepo) CreateTopic(ctx context.Context, t *models.VotingTopic) error {
	visibility, err := marshalJSON(t.Visibility)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO voting_topics (id, association_id, title, description, options, created_by, starts_at, ends_at,
			status, allow_multiple_votes, visibility, is_proposal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, t.ID, t.AssociationID, t.Title, t.Description, t.Options, t.CreatedBy, t.StartsAt,
		t.EndsAt, t.Status, t.AllowMultipleVotes, visibility, t.IsProposal)
	return translate(err)
}

func (r *votingRepo) GetTopic(ctx context.Context, associationID, id uuid.UUID) (*models.VotingTopic, error) {
	query := `SELECT ` + topicColumns + ` FROM voting_topics WHERE association_id = $1 AND id = $2`
	return scanTopic(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *votingRepo) ListTopics(ctx context.Context, associationID uuid.UUID, status *models.TopicStatus) ([]*models.VotingTopic, error) {
	query := `
		SELECT ` + topicColumns + `
		FROM voting_topics
		WHERE association_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, associationID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*models.VotingTopic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// UpdateTopicStatus moves a topic from one status to another. It affects no
// rows when the topic is no longer in the expected status.
func (r *votingRepo) UpdateTopicStatus(ctx context.Context, associationID, id uuid.UUID, from, to models.TopicStatus, at time.Time) error {
	query := `
		UPDATE voting_topics
		SET status = $1,
			activated_at = CASE WHEN $1 = 'active' THEN $2 ELSE activated_at END,
			closed_at = CASE WHEN $1 = 'closed' THEN $2 ELSE closed_at END,
			updated_at = $2
		WHERE association_id = $3 AND id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, to, at, associationID, id, from)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *votingRepo) DeleteTopic(ctx context.Context, associationID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM voting_topics WHERE association_id = $1 AND id = $2`, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateVote inserts a ballot. The unique (topic_id, member_id) index turns a
// concurrent second ballot into ErrDuplicate.
func (r *votingRepo) CreateVote(ctx context.Context, v *models.Vote) error {
	query := `
		INSERT INTO votes (id, association_id, topic_id, member_id, options, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, v.ID, v.AssociationID, v.TopicID, v.MemberID, v.Options, v.CastAt)
	return translate(err)
}

func (r *votingRepo) GetVote(ctx context.Context, topicID, memberID uuid.UUID) (*models.Vote, error) {
	v := &models.Vote{}
	query := `SELECT id, association_id, topic_id, member_id, options, cast_at FROM votes WHERE topic_id = $1 AND member_id = $2`
	err := r.db.QueryRow(ctx, query, topicID, memberID).Scan(&v.ID, &v.AssociationID, &v.TopicID, &v.MemberID, &v.Options, &v.CastAt)
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

func (r *votingRepo) ListVotes(ctx context.Context, topicID uuid.UUID) ([]*models.Vote, error) {
	query := `SELECT id, association_id, topic_id, member_id, options, cast_at FROM votes WHERE topic_id = $1 ORDER BY cast_at`
	rows, err := r.db.Query(ctx, query, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		v := &models.Vote{}
		if err := rows.Scan(&v.ID, &v.AssociationID, &v.TopicID, &v.MemberID, &v.Options, &v.CastAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
