package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Membership, error)
	GetByUser(ctx context.Context, associationID uuid.UUID, userID string) (*models.Membership, error)
	List(ctx context.Context, associationID uuid.UUID) ([]*models.Membership, error)
	ListByRoles(ctx context.Context, associationID uuid.UUID, roles ...models.MembershipRole) ([]*models.Membership, error)
	UpdateRole(ctx context.Context, associationID, id uuid.UUID, role models.MembershipRole) error
	Delete(ctx context.Context, associationID, id uuid.UUID) error
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepository(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

const membershipColumns = `id, association_id, user_id, user_email, user_name, role, status, created_at, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.AssociationID, &m.UserID, &m.UserEmail, &m.UserName, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (r *membershipRepo) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (id, association_id, user_id, user_email, user_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.AssociationID, m.UserID, m.UserEmail, m.UserName, m.Role, m.Status)
	return translate(err)
}

func (r *membershipRepo) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE association_id = $1 AND id = $2`
	return scanMembership(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *membershipRepo) GetByUser(ctx context.Context, associationID uuid.UUID, userID string) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE association_id = $1 AND user_id = $2`
	return scanMembership(r.db.QueryRow(ctx, query, associationID, userID))
}

func (r *membershipRepo) List(ctx context.Context, associationID uuid.UUID) ([]*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE association_id = $1 ORDER BY created_at`
	return r.query(ctx, query, associationID)
}

func (r *membershipRepo) ListByRoles(ctx context.Context, associationID uuid.UUID, roles ...models.MembershipRole) ([]*models.Membership, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE association_id = $1 AND role = ANY($2) ORDER BY created_at`
	return r.query(ctx, query, associationID, names)
}

func (r *membershipRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Membership, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepo) UpdateRole(ctx context.Context, associationID, id uuid.UUID, role models.MembershipRole) error {
	query := `UPDATE memberships SET role = $1, updated_at = NOW() WHERE association_id = $2 AND id = $3 AND role <> 'owner'`
	tag, err := r.db.Exec(ctx, query, role, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *membershipRepo) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	query := `DELETE FROM memberships WHERE association_id = $1 AND id = $2 AND role <> 'owner'`
	tag, err := r.db.Exec(ctx, query, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
