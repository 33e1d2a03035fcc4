package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Member, error)
	GetByEmail(ctx context.Context, associationID uuid.UUID, email string) (*models.Member, error)
	List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Member, error)
	// ListAll returns every member of the association, unpaginated.
	ListAll(ctx context.Context, associationID uuid.UUID) ([]*models.Member, error)
	ListByIDs(ctx context.Context, associationID uuid.UUID, ids []uuid.UUID) ([]*models.Member, error)
	ListInvitedByEmail(ctx context.Context, email string) ([]*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	LinkUser(ctx context.Context, associationID, id uuid.UUID, userID string) error
	Delete(ctx context.Context, associationID, id uuid.UUID) error
	Count(ctx context.Context, associationID uuid.UUID) (int, error)
}

type memberRepo struct {
	db DB
}

func NewMemberRepository(db DB) MemberRepository {
	return &memberRepo{db: db}
}

const memberColumns = `id, association_id, user_id, email, first_name, last_name, phone, role, status, created_at, updated_at`

func scanMember(row pgx.Row) (*models.Member, error) {
	m := &models.Member{}
	err := row.Scan(&m.ID, &m.AssociationID, &m.UserID, &m.Email, &m.FirstName, &m.LastName, &m.Phone, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (r *memberRepo) Create(ctx context.Context, m *models.Member) error {
	query := `
		INSERT INTO members (id, association_id, user_id, email, first_name, last_name, phone, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.AssociationID, m.UserID, m.Email, m.FirstName, m.LastName, m.Phone, m.Role, m.Status)
	return translate(err)
}

func (r *memberRepo) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE association_id = $1 AND id = $2`
	return scanMember(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *memberRepo) GetByEmail(ctx context.Context, associationID uuid.UUID, email string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE association_id = $1 AND lower(email) = lower($2)`
	return scanMember(r.db.QueryRow(ctx, query, associationID, email))
}

func (r *memberRepo) List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE association_id = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`
	return r.query(ctx, query, associationID, limit, offset)
}

func (r *memberRepo) ListAll(ctx context.Context, associationID uuid.UUID) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE association_id = $1 ORDER BY last_name, first_name`
	return r.query(ctx, query, associationID)
}

func (r *memberRepo) ListByIDs(ctx context.Context, associationID uuid.UUID, ids []uuid.UUID) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE association_id = $1 AND id = ANY($2)`
	return r.query(ctx, query, associationID, ids)
}

func (r *memberRepo) ListInvitedByEmail(ctx context.Context, email string) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE lower(email) = lower($1) AND status = 'invited'`
	return r.query(ctx, query, email)
}

func (r *memberRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Member, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepo) Update(ctx context.Context, m *models.Member) error {
	query := `
		UPDATE members
		SET email = $1, first_name = $2, last_name = $3, phone = $4, role = $5, status = $6, updated_at = NOW()
		WHERE association_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, m.Email, m.FirstName, m.LastName, m.Phone, m.Role, m.Status, m.AssociationID, m.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) LinkUser(ctx context.Context, associationID, id uuid.UUID, userID string) error {
	query := `UPDATE members SET user_id = $1, status = 'active', updated_at = NOW() WHERE association_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, userID, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	query := `DELETE FROM members WHERE association_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) Count(ctx context.Context, associationID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE association_id = $1`, associationID).Scan(&count)
	return count, err
}
