package services

import (
	"context"
	"fmt"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditEntry is the input for one audit record.
type AuditEntry struct {
	AssociationID uuid.UUID
	UserID        string
	MemberID      *uuid.UUID
	Action        string
	EntityType    string
	EntityID      *string
	Description   string
	Metadata      models.JSONB
}

type AuditLogsService interface {
	// Log appends an entry. Write failures are logged, never returned.
	Log(ctx context.Context, entry AuditEntry)

	// List entries visible to the caller. Admins see the whole association.
	List(ctx context.Context, associationID uuid.UUID, caller *models.Identity, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	access        AccessService
	log           *logrus.Logger
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository, access AccessService, log *logrus.Logger) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
		access:        access,
		log:           log,
	}
}

func (s *auditLogsService) Log(ctx context.Context, entry AuditEntry) {
	auditLog := &models.AuditLog{
		ID:            uuid.New(),
		AssociationID: entry.AssociationID,
		UserID:        entry.UserID,
		MemberID:      entry.MemberID,
		Action:        entry.Action,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Description:   entry.Description,
		Metadata:      entry.Metadata,
	}
	if err := s.auditLogsRepo.Create(ctx, auditLog); err != nil {
		s.log.WithFields(logrus.Fields{
			"association_id": entry.AssociationID,
			"action":         entry.Action,
			"entity_type":    entry.EntityType,
		}).WithError(err).Error("failed to write audit log")
	}
}

func (s *auditLogsService) List(ctx context.Context, associationID uuid.UUID, caller *models.Identity, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	membership, err := s.access.RequireMembership(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if err := validateAuditFilters(filters); err != nil {
		return nil, err
	}
	if !membership.IsAdmin() {
		own := caller.UserID
		filters.UserID = &own
	}
	return s.auditLogsRepo.List(ctx, associationID, filters)
}

func validateAuditFilters(filters *models.AuditLogFilters) error {
	if filters.Limit < 0 || filters.Offset < 0 {
		return Validation("limit and offset must not be negative")
	}
	if filters.Limit == 0 {
		filters.Limit = 50
	}
	if filters.Limit > 500 {
		return Validation("limit cannot exceed %d", 500)
	}
	if filters.Since != nil && filters.Until != nil && filters.Until.Before(*filters.Since) {
		return Validation("until must not be before since")
	}
	return nil
}

// entityRef formats an id for the audit entity_id column.
func entityRef(id fmt.Stringer) *string {
	s := id.String()
	return &s
}
