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

type MemberService interface {
	ListMembers(ctx context.Context, associationID uuid.UUID, caller *models.Identity, limit, offset int) ([]*models.Member, error)
	GetMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) (*models.Member, error)
	InviteMember(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *InviteMemberRequest) (*models.Member, error)
	UpdateMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity, req *UpdateMemberRequest) (*models.Member, error)
	RemoveMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) error
}

type memberService struct {
	memberRepo      repositories.MemberRepository
	membershipRepo  repositories.MembershipRepository
	associationRepo repositories.AssociationRepository
	unitRepo        repositories.UnitRepository
	access          AccessService
	audit           AuditLogsService
	notifier        NotificationService
	appURL          string
	now             func() time.Time
}

func NewMemberService(
	memberRepo repositories.MemberRepository,
	membershipRepo repositories.MembershipRepository,
	associationRepo repositories.AssociationRepository,
	unitRepo repositories.UnitRepository,
	access AccessService,
	audit AuditLogsService,
	notifier NotificationService,
	appURL string,
) MemberService {
	return &memberService{
		memberRepo:      memberRepo,
		membershipRepo:  membershipRepo,
		associationRepo: associationRepo,
		unitRepo:        unitRepo,
		access:          access,
		audit:           audit,
		notifier:        notifier,
		appURL:          strings.TrimRight(appURL, "/"),
		now:             time.Now,
	}
}

type InviteMemberRequest struct {
	Email     string            `json:"email" validate:"required,email"`
	FirstName string            `json:"first_name" validate:"required,max=100"`
	LastName  string            `json:"last_name" validate:"max=100"`
	Phone     *string           `json:"phone"`
	Role      models.MemberRole `json:"role"`
}

type UpdateMemberRequest struct {
	FirstName *string              `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string              `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string              `json:"phone"`
	Role      *models.MemberRole   `json:"role"`
	Status    *models.MemberStatus `json:"status"`
}

func validMemberRole(r models.MemberRole) bool {
	return r == models.MemberRoleAdmin || r == models.MemberRoleMember
}

func validMemberStatus(s models.MemberStatus) bool {
	switch s {
	case models.MemberStatusActive, models.MemberStatusInvited, models.MemberStatusInactive:
		return true
	}
	return false
}

func (s *memberService) ListMembers(ctx context.Context, associationID uuid.UUID, caller *models.Identity, limit, offset int) ([]*models.Member, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.memberRepo.List(ctx, associationID, limit, offset)
}

func (s *memberService) GetMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) (*models.Member, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(ctx, associationID, memberID)
	if err != nil {
		return nil, notFound(err, "Member")
	}
	return member, nil
}

func (s *memberService) InviteMember(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *InviteMemberRequest) (*models.Member, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, Validation("Email is required")
	}
	role := req.Role
	if role == "" {
		role = models.MemberRoleMember
	}
	if !validMemberRole(role) {
		return nil, Validation("Role must be admin or member")
	}

	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}
	count, err := s.memberRepo.Count(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if association.MaxMembers > 0 && count >= association.MaxMembers {
		return nil, Validation("Member limit of %d reached for the %s plan", association.MaxMembers, association.SubscriptionTier)
	}

	if _, err := s.memberRepo.GetByEmail(ctx, associationID, email); err == nil {
		return nil, Validation("A member with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	member := &models.Member{
		ID:            uuid.New(),
		AssociationID: associationID,
		Email:         email,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Phone:         req.Phone,
		Role:          role,
		Status:        models.MemberStatusInvited,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("A member with this email already exists")
		}
		return nil, err
	}

	s.notifier.EnqueueBestEffort(ctx, &EmailMessage{
		To:       member.Email,
		Subject:  fmt.Sprintf("You're invited to %s", association.Name),
		Template: TemplateMemberInvitation,
		Data: map[string]string{
			"Name":            member.FullName(),
			"AssociationName": association.Name,
			"Link":            s.appURL + "/invitations",
		},
	})

	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMemberInvited,
		EntityType:    models.EntityMember,
		EntityID:      entityRef(member.ID),
		Description:   fmt.Sprintf("Invited %s", member.Email),
		Metadata:      models.JSONB{"role": string(role)},
	})
	return member, nil
}

func (s *memberService) UpdateMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity, req *UpdateMemberRequest) (*models.Member, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(ctx, associationID, memberID)
	if err != nil {
		return nil, notFound(err, "Member")
	}

	if req.FirstName != nil {
		member.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		member.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		member.Phone = req.Phone
	}
	if req.Role != nil {
		if !validMemberRole(*req.Role) {
			return nil, Validation("Role must be admin or member")
		}
		member.Role = *req.Role
	}
	if req.Status != nil {
		if !validMemberStatus(*req.Status) {
			return nil, Validation("Status must be one of: active, invited, inactive")
		}
		member.Status = *req.Status
	}
	member.UpdatedAt = s.now().UTC()

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, notFound(err, "Member")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMemberUpdated,
		EntityType:    models.EntityMember,
		EntityID:      entityRef(member.ID),
		Description:   fmt.Sprintf("Updated member %s", member.Email),
	})
	return member, nil
}

func (s *memberService) RemoveMember(ctx context.Context, associationID, memberID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	member, err := s.memberRepo.GetByID(ctx, associationID, memberID)
	if err != nil {
		return notFound(err, "Member")
	}
	if member.UserID != nil {
		membership, err := s.membershipRepo.GetByUser(ctx, associationID, *member.UserID)
		if err == nil && membership.Role == models.MembershipRoleOwner {
			return Forbidden("The owner's member profile cannot be removed")
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
	}

	if err := s.unitRepo.DeleteAssignmentsByMember(ctx, associationID, memberID); err != nil {
		return err
	}
	if err := s.memberRepo.Delete(ctx, associationID, memberID); err != nil {
		return notFound(err, "Member")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMemberRemoved,
		EntityType:    models.EntityMember,
		EntityID:      entityRef(memberID),
		Description:   fmt.Sprintf("Removed member %s", member.Email),
	})
	return nil
}
