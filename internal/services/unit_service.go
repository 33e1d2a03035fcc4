package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
)

type UnitService interface {
	ListUnits(ctx context.Context, associationID uuid.UUID, caller *models.Identity, limit, offset int) ([]*models.Unit, error)
	GetUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity) (*models.Unit, error)
	CreateUnit(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *UnitRequest) (*models.Unit, error)
	UpdateUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity, req *UnitRequest) (*models.Unit, error)
	DeleteUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity) error

	AssignUnit(ctx context.Context, associationID, unitID, memberID uuid.UUID, caller *models.Identity) (*models.MemberUnit, error)
	UnassignUnit(ctx context.Context, associationID, unitID, memberID uuid.UUID, caller *models.Identity) error
	ListAssignments(ctx context.Context, associationID uuid.UUID, caller *models.Identity) ([]*models.MemberUnit, error)
	ListMemberUnits(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) ([]*models.Unit, error)
}

type unitService struct {
	unitRepo        repositories.UnitRepository
	memberRepo      repositories.MemberRepository
	associationRepo repositories.AssociationRepository
	access          AccessService
	audit           AuditLogsService
	now             func() time.Time
}

func NewUnitService(
	unitRepo repositories.UnitRepository,
	memberRepo repositories.MemberRepository,
	associationRepo repositories.AssociationRepository,
	access AccessService,
	audit AuditLogsService,
) UnitService {
	return &unitService{
		unitRepo:        unitRepo,
		memberRepo:      memberRepo,
		associationRepo: associationRepo,
		access:          access,
		audit:           audit,
		now:             time.Now,
	}
}

type UnitRequest struct {
	Name     string            `json:"name" validate:"required,max=100"`
	Building *string           `json:"building"`
	Floor    *string           `json:"floor"`
	Type     *string           `json:"type"`
	Size     *float64          `json:"size" validate:"omitempty,gt=0"`
	Status   models.UnitStatus `json:"status"`
}

func normalizeUnit(req *UnitRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Validation("Unit name is required")
	}
	if req.Status == "" {
		req.Status = models.UnitStatusActive
	}
	switch req.Status {
	case models.UnitStatusActive, models.UnitStatusInactive, models.UnitStatusVacant:
	default:
		return Validation("Unit status must be one of: active, inactive, vacant")
	}
	if req.Size != nil && *req.Size <= 0 {
		return Validation("Unit size must be positive")
	}
	return nil
}

func (s *unitService) ListUnits(ctx context.Context, associationID uuid.UUID, caller *models.Identity, limit, offset int) ([]*models.Unit, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.unitRepo.List(ctx, associationID, limit, offset)
}

func (s *unitService) GetUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity) (*models.Unit, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.GetByID(ctx, associationID, unitID)
	if err != nil {
		return nil, notFound(err, "Unit")
	}
	return unit, nil
}

func (s *unitService) CreateUnit(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *UnitRequest) (*models.Unit, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	if err := normalizeUnit(req); err != nil {
		return nil, err
	}

	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}
	count, err := s.unitRepo.Count(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if association.MaxUnits > 0 && count >= association.MaxUnits {
		return nil, Validation("Unit limit of %d reached for the %s plan", association.MaxUnits, association.SubscriptionTier)
	}
	if _, err := s.unitRepo.GetByName(ctx, associationID, req.Name); err == nil {
		return nil, Validation("A unit named %q already exists", req.Name)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	unit := &models.Unit{
		ID:            uuid.New(),
		AssociationID: associationID,
		Name:          req.Name,
		Building:      req.Building,
		Floor:         req.Floor,
		Type:          req.Type,
		Size:          req.Size,
		Status:        req.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("A unit named %q already exists", req.Name)
		}
		return nil, err
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditUnitCreated,
		EntityType:    models.EntityUnit,
		EntityID:      entityRef(unit.ID),
		Description:   fmt.Sprintf("Created unit %s", unit.Name),
	})
	return unit, nil
}

func (s *unitService) UpdateUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity, req *UnitRequest) (*models.Unit, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	if err := normalizeUnit(req); err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.GetByID(ctx, associationID, unitID)
	if err != nil {
		return nil, notFound(err, "Unit")
	}
	if req.Name != unit.Name {
		if other, err := s.unitRepo.GetByName(ctx, associationID, req.Name); err == nil && other.ID != unit.ID {
			return nil, Validation("A unit named %q already exists", req.Name)
		} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	unit.Name = req.Name
	unit.Building = req.Building
	unit.Floor = req.Floor
	unit.Type = req.Type
	unit.Size = req.Size
	unit.Status = req.Status
	unit.UpdatedAt = s.now().UTC()
	if err := s.unitRepo.Update(ctx, unit); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("A unit named %q already exists", req.Name)
		}
		return nil, notFound(err, "Unit")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditUnitUpdated,
		EntityType:    models.EntityUnit,
		EntityID:      entityRef(unit.ID),
		Description:   fmt.Sprintf("Updated unit %s", unit.Name),
	})
	return unit, nil
}

func (s *unitService) DeleteUnit(ctx context.Context, associationID, unitID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	unit, err := s.unitRepo.GetByID(ctx, associationID, unitID)
	if err != nil {
		return notFound(err, "Unit")
	}
	if err := s.unitRepo.Delete(ctx, associationID, unitID); err != nil {
		return notFound(err, "Unit")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditUnitDeleted,
		EntityType:    models.EntityUnit,
		EntityID:      entityRef(unitID),
		Description:   fmt.Sprintf("Deleted unit %s", unit.Name),
	})
	return nil
}

// AssignUnit links a unit to a member. A unit already held by someone else is
// rejected and the existing assignment is left as it is.
func (s *unitService) AssignUnit(ctx context.Context, associationID, unitID, memberID uuid.UUID, caller *models.Identity) (*models.MemberUnit, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.GetByID(ctx, associationID, unitID)
	if err != nil {
		return nil, notFound(err, "Unit")
	}
	member, err := s.memberRepo.GetByID(ctx, associationID, memberID)
	if err != nil {
		return nil, notFound(err, "Member")
	}

	existing, err := s.unitRepo.GetAssignment(ctx, associationID, unitID)
	switch {
	case err == nil && existing.MemberID == memberID:
		return nil, Validation("Unit %s is already assigned to this member", unit.Name)
	case err == nil:
		return nil, Validation("Unit %s is already assigned to another member", unit.Name)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	assignment := &models.MemberUnit{
		ID:            uuid.New(),
		AssociationID: associationID,
		MemberID:      memberID,
		UnitID:        unitID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.unitRepo.Assign(ctx, assignment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("Unit %s is already assigned to another member", unit.Name)
		}
		return nil, err
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		MemberID:      &member.ID,
		Action:        models.AuditUnitAssigned,
		EntityType:    models.EntityUnit,
		EntityID:      entityRef(unitID),
		Description:   fmt.Sprintf("Assigned unit %s to %s", unit.Name, member.Email),
	})
	return assignment, nil
}

func (s *unitService) UnassignUnit(ctx context.Context, associationID, unitID, memberID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	if err := s.unitRepo.Unassign(ctx, associationID, memberID, unitID); err != nil {
		return notFound(err, "Unit assignment")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		MemberID:      &memberID,
		Action:        models.AuditUnitUnassigned,
		EntityType:    models.EntityUnit,
		EntityID:      entityRef(unitID),
		Description:   "Removed unit assignment",
	})
	return nil
}

func (s *unitService) ListAssignments(ctx context.Context, associationID uuid.UUID, caller *models.Identity) ([]*models.MemberUnit, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.unitRepo.ListAssignments(ctx, associationID)
}

func (s *unitService) ListMemberUnits(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) ([]*models.Unit, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.unitRepo.ListByMember(ctx, associationID, memberID)
}
