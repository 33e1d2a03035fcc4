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

const (
	DefaultTier = "free"
	TrialPeriod = 14 * 24 * time.Hour

	defaultMaxMembers = 25
	defaultMaxUnits   = 25
)

type AssociationService interface {
	CreateAssociation(ctx context.Context, caller *models.Identity, req *CreateAssociationRequest) (*models.Association, error)
	// GetAssociation returns nil without error when the caller is not a member.
	GetAssociation(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Association, error)
	ListMyAssociations(ctx context.Context, caller *models.Identity) ([]*models.Association, error)
	UpdateAssociation(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *UpdateAssociationRequest) (*models.Association, error)

	ListMemberships(ctx context.Context, associationID uuid.UUID, caller *models.Identity) ([]*models.Membership, error)
	UpdateMembershipRole(ctx context.Context, associationID, membershipID uuid.UUID, caller *models.Identity, role models.MembershipRole) (*models.Membership, error)
	RemoveMembership(ctx context.Context, associationID, membershipID uuid.UUID, caller *models.Identity) error

	// AcceptInvitations links every invited member record matching the
	// caller's verified email and returns the associations joined.
	AcceptInvitations(ctx context.Context, caller *models.Identity) ([]*models.Association, error)
}

type associationService struct {
	associationRepo  repositories.AssociationRepository
	membershipRepo   repositories.MembershipRepository
	memberRepo       repositories.MemberRepository
	subscriptionRepo repositories.SubscriptionRepository
	access           AccessService
	audit            AuditLogsService
	now              func() time.Time
}

func NewAssociationService(
	associationRepo repositories.AssociationRepository,
	membershipRepo repositories.MembershipRepository,
	memberRepo repositories.MemberRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	access AccessService,
	audit AuditLogsService,
) AssociationService {
	return &associationService{
		associationRepo:  associationRepo,
		membershipRepo:   membershipRepo,
		memberRepo:       memberRepo,
		subscriptionRepo: subscriptionRepo,
		access:           access,
		audit:            audit,
		now:              time.Now,
	}
}

type CreateAssociationRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
}

type UpdateAssociationRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
}

func (s *associationService) CreateAssociation(ctx context.Context, caller *models.Identity, req *CreateAssociationRequest) (*models.Association, error) {
	if caller == nil || caller.UserID == "" {
		return nil, Unauthenticated("Authentication required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, Validation("Association name is required")
	}

	maxMembers, maxUnits := defaultMaxMembers, defaultMaxUnits
	tier, err := s.subscriptionRepo.GetTier(ctx, DefaultTier)
	switch {
	case err == nil:
		maxMembers, maxUnits = tier.MaxMembers, tier.MaxUnits
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	now := s.now().UTC()
	trialEnds := now.Add(TrialPeriod)
	association := &models.Association{
		ID:                 uuid.New(),
		Name:               name,
		Address:            req.Address,
		City:               req.City,
		PostalCode:         req.PostalCode,
		Country:            req.Country,
		ContactEmail:       req.ContactEmail,
		ContactPhone:       req.ContactPhone,
		SubscriptionTier:   DefaultTier,
		SubscriptionStatus: models.SubscriptionStatusTrialing,
		TrialEndsAt:        &trialEnds,
		MaxMembers:         maxMembers,
		MaxUnits:           maxUnits,
		IsActive:           true,
		CreatedBy:          caller.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.associationRepo.Create(ctx, association); err != nil {
		return nil, err
	}

	owner := &models.Membership{
		ID:            uuid.New(),
		AssociationID: association.ID,
		UserID:        caller.UserID,
		UserEmail:     caller.Email,
		UserName:      caller.Name,
		Role:          models.MembershipRoleOwner,
		Status:        models.MembershipStatusActive,
	}
	if err := s.membershipRepo.Create(ctx, owner); err != nil {
		return nil, err
	}

	first, last := splitName(caller.Name)
	userID := caller.UserID
	profile := &models.Member{
		ID:            uuid.New(),
		AssociationID: association.ID,
		UserID:        &userID,
		Email:         caller.Email,
		FirstName:     first,
		LastName:      last,
		Role:          models.MemberRoleAdmin,
		Status:        models.MemberStatusActive,
	}
	if err := s.memberRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, AuditEntry{
		AssociationID: association.ID,
		UserID:        caller.UserID,
		MemberID:      &profile.ID,
		Action:        models.AuditAssociationCreated,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(association.ID),
		Description:   fmt.Sprintf("Created association %q", association.Name),
	})
	return association, nil
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *associationService) GetAssociation(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Association, error) {
	if _, err := s.access.RequireMembership(ctx, associationID, caller); err != nil {
		if IsKind(err, KindForbidden) || IsKind(err, KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	association, err := s.associationRepo.GetByID(ctx, associationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return association, err
}

func (s *associationService) ListMyAssociations(ctx context.Context, caller *models.Identity) ([]*models.Association, error) {
	if caller == nil || caller.UserID == "" {
		return nil, Unauthenticated("Authentication required")
	}
	return s.associationRepo.ListByUser(ctx, caller.UserID)
}

func (s *associationService) UpdateAssociation(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *UpdateAssociationRequest) (*models.Association, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, Validation("Association name is required")
		}
		association.Name = name
	}
	if req.Address != nil {
		association.Address = req.Address
	}
	if req.City != nil {
		association.City = req.City
	}
	if req.PostalCode != nil {
		association.PostalCode = req.PostalCode
	}
	if req.Country != nil {
		association.Country = req.Country
	}
	if req.ContactEmail != nil {
		association.ContactEmail = req.ContactEmail
	}
	if req.ContactPhone != nil {
		association.ContactPhone = req.ContactPhone
	}
	association.UpdatedAt = s.now().UTC()

	if err := s.associationRepo.Update(ctx, association); err != nil {
		return nil, notFound(err, "Association")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditAssociationUpdated,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(associationID),
		Description:   "Updated association details",
	})
	return association, nil
}

func (s *associationService) ListMemberships(ctx context.Context, associationID uuid.UUID, caller *models.Identity) ([]*models.Membership, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	return s.membershipRepo.List(ctx, associationID)
}

func (s *associationService) UpdateMembershipRole(ctx context.Context, associationID, membershipID uuid.UUID, caller *models.Identity, role models.MembershipRole) (*models.Membership, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	if role != models.MembershipRoleAdmin && role != models.MembershipRoleMember {
		return nil, Validation("Role must be admin or member")
	}
	membership, err := s.membershipRepo.GetByID(ctx, associationID, membershipID)
	if err != nil {
		return nil, notFound(err, "Membership")
	}
	if membership.Role == models.MembershipRoleOwner {
		return nil, Forbidden("The owner's role cannot be changed")
	}
	if err := s.membershipRepo.UpdateRole(ctx, associationID, membershipID, role); err != nil {
		return nil, notFound(err, "Membership")
	}
	previous := membership.Role
	membership.Role = role

	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMembershipUpdated,
		EntityType:    models.EntityMembership,
		EntityID:      entityRef(membershipID),
		Description:   fmt.Sprintf("Changed role of %s from %s to %s", membership.UserEmail, previous, role),
	})
	return membership, nil
}

func (s *associationService) RemoveMembership(ctx context.Context, associationID, membershipID uuid.UUID, caller *models.Identity) error {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return err
	}
	membership, err := s.membershipRepo.GetByID(ctx, associationID, membershipID)
	if err != nil {
		return notFound(err, "Membership")
	}
	if membership.Role == models.MembershipRoleOwner {
		return Forbidden("The owner cannot be removed")
	}
	if err := s.membershipRepo.Delete(ctx, associationID, membershipID); err != nil {
		return notFound(err, "Membership")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMembershipRemoved,
		EntityType:    models.EntityMembership,
		EntityID:      entityRef(membershipID),
		Description:   fmt.Sprintf("Removed %s from the association", membership.UserEmail),
	})
	return nil
}

func (s *associationService) AcceptInvitations(ctx context.Context, caller *models.Identity) ([]*models.Association, error) {
	if caller == nil || caller.UserID == "" {
		return nil, Unauthenticated("Authentication required")
	}
	if strings.TrimSpace(caller.Email) == "" {
		return nil, Validation("A verified email address is required")
	}
	invited, err := s.memberRepo.ListInvitedByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}

	joined := make([]*models.Association, 0, len(invited))
	for _, member := range invited {
		if err := s.memberRepo.LinkUser(ctx, member.AssociationID, member.ID, caller.UserID); err != nil {
			return nil, err
		}

		role := models.MembershipRoleMember
		if member.Role == models.MemberRoleAdmin {
			role = models.MembershipRoleAdmin
		}
		err := s.membershipRepo.Create(ctx, &models.Membership{
			ID:            uuid.New(),
			AssociationID: member.AssociationID,
			UserID:        caller.UserID,
			UserEmail:     caller.Email,
			UserName:      caller.Name,
			Role:          role,
			Status:        models.MembershipStatusActive,
		})
		if err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}

		association, err := s.associationRepo.GetByID(ctx, member.AssociationID)
		if err != nil {
			return nil, err
		}
		joined = append(joined, association)

		memberID := member.ID
		s.audit.Log(ctx, AuditEntry{
			AssociationID: member.AssociationID,
			UserID:        caller.UserID,
			MemberID:      &memberID,
			Action:        models.AuditMemberJoined,
			EntityType:    models.EntityMember,
			EntityID:      entityRef(member.ID),
			Description:   fmt.Sprintf("%s accepted the invitation", caller.Email),
		})
	}
	return joined, nil
}
