package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PlatformAdminRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.PlatformAdmin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlatformAdmin, error)
	List(ctx context.Context) ([]*models.PlatformAdmin, error)
	Create(ctx context.Context, admin *models.PlatformAdmin) error
	Update(ctx context.Context, admin *models.PlatformAdmin) error
}

type platformAdminRepo struct {
	db DB
}

func NewPlatformAdminRepository(db DB) PlatformAdminRepository {
	return &platformAdminRepo{db: db}
}

const platformAdminColumns = `id, user_id, email, role, permissions, is_active, created_at, updated_at`

func scanPlatformAdmin(row pgx.Row) (*models.PlatformAdmin, error) {
	a := &models.PlatformAdmin{}
	err := row.Scan(&a.ID, &a.UserID, &a.Email, &a.Role, &a.Permissions, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *platformAdminRepo) GetByUserID(ctx context.Context, userID string) (*models.PlatformAdmin, error) {
	query := `SELECT ` + platformAdminColumns + ` FROM platform_admins WHERE user_id = $1`
	return scanPlatformAdmin(r.db.QueryRow(ctx, query, userID))
}

func (r *platformAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PlatformAdmin, error) {
	query := `SELECT ` + platformAdminColumns + ` FROM platform_admins WHERE id = $1`
	return scanPlatformAdmin(r.db.QueryRow(ctx, query, id))
}

func (r *platformAdminRepo) List(ctx context.Context) ([]*models.PlatformAdmin, error) {
	rows, err := r.db.Query(ctx, `SELECT `+platformAdminColumns+` FROM platform_admins ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*models.PlatformAdmin
	for rows.Next() {
		a, err := scanPlatformAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *platformAdminRepo) Create(ctx context.Context, a *models.PlatformAdmin) error {
	if a.Permissions == nil {
		a.Permissions = []string{}
	}
	query := `
		INSERT INTO platform_admins (id, user_id, email, role, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.Email, a.Role, a.Permissions, a.IsActive)
	return translate(err)
}

func (r *platformAdminRepo) Update(ctx context.Context, a *models.PlatformAdmin) error {
	if a.Permissions == nil {
		a.Permissions = []string{}
	}
	query := `
		UPDATE platform_admins
		SET role = $1, permissions = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, a.Role, a.Permissions, a.IsActive, a.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
