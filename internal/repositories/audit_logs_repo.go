package repositories

import (
	"context"
	"fmt"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AuditLogsRepository interface {
	// Create appends an audit entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// List audit entries of an association, newest first
	List(ctx context.Context, associationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepository(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now().UTC()
	}

	var metadata []byte
	if auditLog.Metadata != nil {
		var err error
		if metadata, err = marshalJSON(auditLog.Metadata); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_logs (id, association_id, user_id, member_id, action, entity_type, entity_id, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.AssociationID,
		auditLog.UserID,
		auditLog.MemberID,
		auditLog.Action,
		auditLog.EntityType,
		auditLog.EntityID,
		auditLog.Description,
		metadata,
		auditLog.CreatedAt,
	)
	return translate(err)
}

func (r *auditLogsRepo) List(ctx context.Context, associationID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, association_id, user_id, member_id, action, entity_type, entity_id, description, metadata, created_at
		FROM audit_logs
		WHERE association_id = $1
	`
	args := []interface{}{associationID}
	argIdx := 1

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, *filters.Action)
	}
	if filters.EntityType != nil {
		argIdx++
		query += fmt.Sprintf(" AND entity_type = $%d", argIdx)
		args = append(args, *filters.EntityType)
	}
	if filters.EntityID != nil {
		argIdx++
		query += fmt.Sprintf(" AND entity_id = $%d", argIdx)
		args = append(args, *filters.EntityID)
	}
	if filters.UserID != nil {
		argIdx++
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filters.UserID)
	}
	if filters.Since != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.Since)
	}
	if filters.Until != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.Until)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditLogs []*models.AuditLog
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}
	return auditLogs, rows.Err()
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var metadata []byte
	err := row.Scan(
		&auditLog.ID,
		&auditLog.AssociationID,
		&auditLog.UserID,
		&auditLog.MemberID,
		&auditLog.Action,
		&auditLog.EntityType,
		&auditLog.EntityID,
		&auditLog.Description,
		&metadata,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(metadata, &auditLog.Metadata); err != nil {
		return nil, err
	}
	return auditLog, nil
}
