package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Unit, error)
	GetByName(ctx context.Context, associationID uuid.UUID, name string) (*models.Unit, error)
	List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, associationID, id uuid.UUID) error
	Count(ctx context.Context, associationID uuid.UUID) (int, error)

	Assign(ctx context.Context, assignment *models.MemberUnit) error
	Unassign(ctx context.Context, associationID, memberID, unitID uuid.UUID) error
	GetAssignment(ctx context.Context, associationID, unitID uuid.UUID) (*models.MemberUnit, error)
	ListAssignments(ctx context.Context, associationID uuid.UUID) ([]*models.MemberUnit, error)
	ListByMember(ctx context.Context, associationID, memberID uuid.UUID) ([]*models.Unit, error)
	ListMemberIDsByUnits(ctx context.Context, associationID uuid.UUID, unitIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteAssignmentsByMember(ctx context.Context, associationID, memberID uuid.UUID) error
}

type unitRepo struct {
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	return &unitRepo{db: db}
}

const unitColumns = `id, association_id, name, building, floor, type, size, status, created_at, updated_at`

func scanUnit(row pgx.Row) (*models.Unit, error) {
	u := &models.Unit{}
	err := row.Scan(&u.ID, &u.AssociationID, &u.Name, &u.Building, &u.Floor, &u.Type, &u.Size, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	query := `
		INSERT INTO units (id, association_id, name, building, floor, type, size, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.AssociationID, u.Name, u.Building, u.Floor, u.Type, u.Size, u.Status)
	return translate(err)
}

func (r *unitRepo) GetByID(ctx context.Context, associationID, id uuid.UUID) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE association_id = $1 AND id = $2`
	return scanUnit(r.db.QueryRow(ctx, query, associationID, id))
}

func (r *unitRepo) GetByName(ctx context.Context, associationID uuid.UUID, name string) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE association_id = $1 AND name = $2`
	return scanUnit(r.db.QueryRow(ctx, query, associationID, name))
}

func (r *unitRepo) List(ctx context.Context, associationID uuid.UUID, limit, offset int) ([]*models.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE association_id = $1 ORDER BY building NULLS FIRST, name LIMIT $2 OFFSET $3`
	return r.query(ctx, query, associationID, limit, offset)
}

func (r *unitRepo) ListByMember(ctx context.Context, associationID, memberID uuid.UUID) ([]*models.Unit, error) {
	query := `
		SELECT u.id, u.association_id, u.name, u.building, u.floor, u.type, u.size, u.status, u.created_at, u.updated_at
		FROM units u
		JOIN member_units mu ON mu.unit_id = u.id
		WHERE mu.association_id = $1 AND mu.member_id = $2
		ORDER BY u.name
	`
	return r.query(ctx, query, associationID, memberID)
}

func (r *unitRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	query := `
		UPDATE units
		SET name = $1, building = $2, floor = $3, type = $4, size = $5, status = $6, updated_at = NOW()
		WHERE association_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, u.Name, u.Building, u.Floor, u.Type, u.Size, u.Status, u.AssociationID, u.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the unit; its assignment goes with it through the foreign key.
func (r *unitRepo) Delete(ctx context.Context, associationID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE association_id = $1 AND id = $2`, associationID, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *unitRepo) Count(ctx context.Context, associationID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE association_id = $1`, associationID).Scan(&count)
	return count, err
}

// Assign inserts the assignment. The unique index on unit_id makes a second
// holder fail with ErrDuplicate.
func (r *unitRepo) Assign(ctx context.Context, a *models.MemberUnit) error {
	query := `
		INSERT INTO member_units (id, association_id, member_id, unit_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.AssociationID, a.MemberID, a.UnitID)
	return translate(err)
}

func (r *unitRepo) Unassign(ctx context.Context, associationID, memberID, unitID uuid.UUID) error {
	query := `DELETE FROM member_units WHERE association_id = $1 AND member_id = $2 AND unit_id = $3`
	tag, err := r.db.Exec(ctx, query, associationID, memberID, unitID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *unitRepo) GetAssignment(ctx context.Context, associationID, unitID uuid.UUID) (*models.MemberUnit, error) {
	a := &models.MemberUnit{}
	query := `SELECT id, association_id, member_id, unit_id, created_at FROM member_units WHERE association_id = $1 AND unit_id = $2`
	err := r.db.QueryRow(ctx, query, associationID, unitID).Scan(&a.ID, &a.AssociationID, &a.MemberID, &a.UnitID, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *unitRepo) ListAssignments(ctx context.Context, associationID uuid.UUID) ([]*models.MemberUnit, error) {
	query := `SELECT id, association_id, member_id, unit_id, created_at FROM member_units WHERE association_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, associationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.MemberUnit
	for rows.Next() {
		a := &models.MemberUnit{}
		if err := rows.Scan(&a.ID, &a.AssociationID, &a.MemberID, &a.UnitID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *unitRepo) ListMemberIDsByUnits(ctx context.Context, associationID uuid.UUID, unitIDs []uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT member_id FROM member_units WHERE association_id = $1 AND unit_id = ANY($2)`
	rows, err := r.db.Query(ctx, query, associationID, unitIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *unitRepo) DeleteAssignmentsByMember(ctx context.Context, associationID, memberID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM member_units WHERE association_id = $1 AND member_id = $2`, associationID, memberID)
	return translate(err)
}
