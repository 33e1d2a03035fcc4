package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"assochub/internal/caching"
	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const statsCacheTTL = 5 * time.Minute

// PlatformAdminService is the cross-tenant operator surface. Every call
// checks the caller's platform admin row and the permission it needs.
type PlatformAdminService interface {
	Authorize(ctx context.Context, caller *models.Identity, permission string) (*models.PlatformAdmin, error)

	ListAssociations(ctx context.Context, caller *models.Identity, limit, offset int) ([]*models.Association, error)
	GetAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID) (*models.Association, error)
	SuspendAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID, reason string) error
	ReactivateAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID) error
	UpdateAssociationSubscription(ctx context.Context, caller *models.Identity, associationID uuid.UUID, req *UpdateSubscriptionRequest) (*models.Association, error)

	ListAssociationAdmins(ctx context.Context, caller *models.Identity, associationID uuid.UUID) ([]*models.Membership, error)
	AddAssociationAdmin(ctx context.Context, caller *models.Identity, associationID uuid.UUID, email string) (*models.Member, error)
	RemoveAssociationAdmin(ctx context.Context, caller *models.Identity, associationID, membershipID uuid.UUID) error

	GetPlatformStats(ctx context.Context, caller *models.Identity) (*models.PlatformStats, error)

	ListPlatformAdmins(ctx context.Context, caller *models.Identity) ([]*models.PlatformAdmin, error)
	CreatePlatformAdmin(ctx context.Context, caller *models.Identity, req *CreatePlatformAdminRequest) (*models.PlatformAdmin, error)
	UpdatePlatformAdmin(ctx context.Context, caller *models.Identity, adminID uuid.UUID, req *UpdatePlatformAdminRequest) (*models.PlatformAdmin, error)

	ListAllTiers(ctx context.Context, caller *models.Identity) ([]*models.SubscriptionTier, error)
	CreateTier(ctx context.Context, caller *models.Identity, tier *models.SubscriptionTier) (*models.SubscriptionTier, error)
	UpdateTier(ctx context.Context, caller *models.Identity, tier *models.SubscriptionTier) (*models.SubscriptionTier, error)
}

type platformAdminService struct {
	adminRepo        repositories.PlatformAdminRepository
	associationRepo  repositories.AssociationRepository
	membershipRepo   repositories.MembershipRepository
	memberRepo       repositories.MemberRepository
	subscriptionRepo repositories.SubscriptionRepository
	cache            caching.CacheService
	audit            AuditLogsService
	log              *logrus.Logger
	now              func() time.Time
}

func NewPlatformAdminService(
	adminRepo repositories.PlatformAdminRepository,
	associationRepo repositories.AssociationRepository,
	membershipRepo repositories.MembershipRepository,
	memberRepo repositories.MemberRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	cache caching.CacheService,
	audit AuditLogsService,
	log *logrus.Logger,
) PlatformAdminService {
	return &platformAdminService{
		adminRepo:        adminRepo,
		associationRepo:  associationRepo,
		membershipRepo:   membershipRepo,
		memberRepo:       memberRepo,
		subscriptionRepo: subscriptionRepo,
		cache:            cache,
		audit:            audit,
		log:              log,
		now:              time.Now,
	}
}

type UpdateSubscriptionRequest struct {
	Tier        *string    `json:"tier"`
	Status      *string    `json:"status"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`
}

type CreatePlatformAdminRequest struct {
	UserID      string              `json:"user_id" validate:"required"`
	Email       string              `json:"email" validate:"required,email"`
	Role        models.PlatformRole `json:"role" validate:"required"`
	Permissions []string            `json:"permissions"`
}

type UpdatePlatformAdminRequest struct {
	Role        *models.PlatformRole `json:"role"`
	Permissions *[]string            `json:"permissions"`
	IsActive    *bool                `json:"is_active"`
}

var validSubscriptionStatuses = map[string]bool{
	models.SubscriptionStatusTrialing: true,
	models.SubscriptionStatusActive:   true,
	models.SubscriptionStatusPastDue:  true,
	models.SubscriptionStatusCanceled: true,
	models.SubscriptionStatusExpired:  true,
}

func (s *platformAdminService) Authorize(ctx context.Context, caller *models.Identity, permission string) (*models.PlatformAdmin, error) {
	if caller == nil || caller.UserID == "" {
		return nil, Unauthenticated("Authentication required")
	}
	admin, err := s.adminRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Forbidden("Platform admin access required")
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, Forbidden("Platform admin access required")
	}
	if permission != "" && !admin.HasPermission(permission) {
		return nil, Forbidden("Missing platform permission: %s", permission)
	}
	return admin, nil
}

func (s *platformAdminService) ListAssociations(ctx context.Context, caller *models.Identity, limit, offset int) ([]*models.Association, error) {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsRead); err != nil {
		return nil, err
	}
	return s.associationRepo.List(ctx, limit, offset)
}

func (s *platformAdminService) GetAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID) (*models.Association, error) {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsRead); err != nil {
		return nil, err
	}
	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}
	return association, nil
}

func (s *platformAdminService) SuspendAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID, reason string) error {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsManage); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Validation("A suspension reason is required")
	}
	if err := s.associationRepo.SetActive(ctx, associationID, false, &reason); err != nil {
		return notFound(err, "Association")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditAssociationSuspended,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(associationID),
		Description:   "Association suspended by platform admin",
		Metadata:      models.JSONB{"reason": reason},
	})
	return nil
}

func (s *platformAdminService) ReactivateAssociation(ctx context.Context, caller *models.Identity, associationID uuid.UUID) error {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsManage); err != nil {
		return err
	}
	if err := s.associationRepo.SetActive(ctx, associationID, true, nil); err != nil {
		return notFound(err, "Association")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditAssociationReactivated,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(associationID),
		Description:   "Association reactivated by platform admin",
	})
	return nil
}

func (s *platformAdminService) UpdateAssociationSubscription(ctx context.Context, caller *models.Identity, associationID uuid.UUID, req *UpdateSubscriptionRequest) (*models.Association, error) {
	if _, err := s.Authorize(ctx, caller, models.PermBillingManage); err != nil {
		return nil, err
	}
	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}

	if req.Tier != nil {
		tier, err := s.subscriptionRepo.GetTier(ctx, *req.Tier)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, Validation("Unknown subscription tier: %s", *req.Tier)
			}
			return nil, err
		}
		association.SubscriptionTier = tier.Name
		association.MaxMembers = tier.MaxMembers
		association.MaxUnits = tier.MaxUnits
	}
	if req.Status != nil {
		if !validSubscriptionStatuses[*req.Status] {
			return nil, Validation("Invalid subscription status: %s", *req.Status)
		}
		association.SubscriptionStatus = *req.Status
	}
	if req.TrialEndsAt != nil {
		association.TrialEndsAt = req.TrialEndsAt
	}
	association.UpdatedAt = s.now().UTC()

	if err := s.associationRepo.UpdateSubscription(ctx, association); err != nil {
		return nil, notFound(err, "Association")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditSubscriptionChanged,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(associationID),
		Description:   fmt.Sprintf("Subscription set to %s (%s) by platform admin", association.SubscriptionTier, association.SubscriptionStatus),
	})
	return association, nil
}

func (s *platformAdminService) ListAssociationAdmins(ctx context.Context, caller *models.Identity, associationID uuid.UUID) ([]*models.Membership, error) {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsRead); err != nil {
		return nil, err
	}
	return s.membershipRepo.ListByRoles(ctx, associationID, models.MembershipRoleOwner, models.MembershipRoleAdmin)
}

// AddAssociationAdmin promotes the member with email. When the member has
// signed up, their membership is created or raised to admin as well.
func (s *platformAdminService) AddAssociationAdmin(ctx context.Context, caller *models.Identity, associationID uuid.UUID, email string) (*models.Member, error) {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsManage); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByEmail(ctx, associationID, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "Member")
	}
	if member.Role != models.MemberRoleAdmin {
		member.Role = models.MemberRoleAdmin
		member.UpdatedAt = s.now().UTC()
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, err
		}
	}

	if member.UserID != nil {
		membership, err := s.membershipRepo.GetByUser(ctx, associationID, *member.UserID)
		switch {
		case err == nil && membership.Role == models.MembershipRoleMember:
			if err := s.membershipRepo.UpdateRole(ctx, associationID, membership.ID, models.MembershipRoleAdmin); err != nil {
				return nil, err
			}
		case errors.Is(err, repositories.ErrNotFound):
			err = s.membershipRepo.Create(ctx, &models.Membership{
				ID:            uuid.New(),
				AssociationID: associationID,
				UserID:        *member.UserID,
				UserEmail:     member.Email,
				UserName:      member.FullName(),
				Role:          models.MembershipRoleAdmin,
				Status:        models.MembershipStatusActive,
			})
			if err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		}
	}

	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMembershipUpdated,
		EntityType:    models.EntityMember,
		EntityID:      entityRef(member.ID),
		Description:   fmt.Sprintf("Platform admin made %s an association admin", member.Email),
	})
	return member, nil
}

func (s *platformAdminService) RemoveAssociationAdmin(ctx context.Context, caller *models.Identity, associationID, membershipID uuid.UUID) error {
	if _, err := s.Authorize(ctx, caller, models.PermAssociationsManage); err != nil {
		return err
	}
	membership, err := s.membershipRepo.GetByID(ctx, associationID, membershipID)
	if err != nil {
		return notFound(err, "Membership")
	}
	if membership.Role == models.MembershipRoleOwner {
		return Forbidden("The owner's role cannot be changed")
	}
	if membership.Role != models.MembershipRoleAdmin {
		return InvalidState("Membership is not an admin")
	}
	if err := s.membershipRepo.UpdateRole(ctx, associationID, membershipID, models.MembershipRoleMember); err != nil {
		return notFound(err, "Membership")
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: associationID,
		UserID:        caller.UserID,
		Action:        models.AuditMembershipUpdated,
		EntityType:    models.EntityMembership,
		EntityID:      entityRef(membershipID),
		Description:   fmt.Sprintf("Platform admin removed admin role from %s", membership.UserEmail),
	})
	return nil
}

func (s *platformAdminService) GetPlatformStats(ctx context.Context, caller *models.Identity) (*models.PlatformStats, error) {
	if _, err := s.Authorize(ctx, caller, models.PermStatsRead); err != nil {
		return nil, err
	}
	if stats, err := s.cache.GetPlatformStats(ctx); err != nil {
		s.log.WithError(err).Warn("stats cache read failed")
	} else if stats != nil {
		return stats, nil
	}

	stats, err := s.associationRepo.GetPlatformStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = s.now().UTC()
	if err := s.cache.SetPlatformStats(ctx, stats, statsCacheTTL); err != nil {
		s.log.WithError(err).Warn("stats cache write failed")
	}
	return stats, nil
}

func (s *platformAdminService) ListPlatformAdmins(ctx context.Context, caller *models.Identity) ([]*models.PlatformAdmin, error) {
	if _, err := s.Authorize(ctx, caller, models.PermAdminsManage); err != nil {
		return nil, err
	}
	return s.adminRepo.List(ctx)
}

func (s *platformAdminService) CreatePlatformAdmin(ctx context.Context, caller *models.Identity, req *CreatePlatformAdminRequest) (*models.PlatformAdmin, error) {
	actor, err := s.Authorize(ctx, caller, models.PermAdminsManage)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.PlatformRoleSuperAdmin {
		return nil, Forbidden("Only super admins can manage platform admins")
	}
	if !req.Role.Valid() {
		return nil, Validation("Role must be one of: super_admin, support, billing")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, Validation("User id is required")
	}

	now := s.now().UTC()
	admin := &models.PlatformAdmin{
		ID:          uuid.New(),
		UserID:      strings.TrimSpace(req.UserID),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Role:        req.Role,
		Permissions: req.Permissions,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("This user is already a platform admin")
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"admin_user_id": admin.UserID, "role": admin.Role, "by": caller.UserID}).Info("platform admin created")
	return admin, nil
}

func (s *platformAdminService) UpdatePlatformAdmin(ctx context.Context, caller *models.Identity, adminID uuid.UUID, req *UpdatePlatformAdminRequest) (*models.PlatformAdmin, error) {
	actor, err := s.Authorize(ctx, caller, models.PermAdminsManage)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.PlatformRoleSuperAdmin {
		return nil, Forbidden("Only super admins can manage platform admins")
	}
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, notFound(err, "Platform admin")
	}
	if admin.ID == actor.ID && req.IsActive != nil && !*req.IsActive {
		return nil, Validation("You cannot deactivate yourself")
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, Validation("Role must be one of: super_admin, support, billing")
		}
		admin.Role = *req.Role
	}
	if req.Permissions != nil {
		admin.Permissions = *req.Permissions
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	admin.UpdatedAt = s.now().UTC()
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, notFound(err, "Platform admin")
	}
	s.log.WithFields(logrus.Fields{"admin_user_id": admin.UserID, "role": admin.Role, "by": caller.UserID}).Info("platform admin updated")
	return admin, nil
}

func (s *platformAdminService) ListAllTiers(ctx context.Context, caller *models.Identity) ([]*models.SubscriptionTier, error) {
	if _, err := s.Authorize(ctx, caller, models.PermBillingManage); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.ListTiers(ctx, false)
}

func validateTier(tier *models.SubscriptionTier) error {
	tier.Name = strings.ToLower(strings.TrimSpace(tier.Name))
	if tier.Name == "" || strings.TrimSpace(tier.DisplayName) == "" {
		return Validation("Tier name and display name are required")
	}
	if tier.MaxMembers < 0 || tier.MaxUnits < 0 || tier.PriceMonthly < 0 || tier.PriceYearly < 0 {
		return Validation("Tier limits and prices cannot be negative")
	}
	if tier.Currency == "" {
		tier.Currency = "eur"
	}
	return nil
}

func (s *platformAdminService) CreateTier(ctx context.Context, caller *models.Identity, tier *models.SubscriptionTier) (*models.SubscriptionTier, error) {
	if _, err := s.Authorize(ctx, caller, models.PermBillingManage); err != nil {
		return nil, err
	}
	if err := validateTier(tier); err != nil {
		return nil, err
	}
	tier.ID = uuid.New()
	if err := s.subscriptionRepo.CreateTier(ctx, tier); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Validation("Tier %s already exists", tier.Name)
		}
		return nil, err
	}
	s.invalidateTiers(ctx)
	return tier, nil
}

func (s *platformAdminService) UpdateTier(ctx context.Context, caller *models.Identity, tier *models.SubscriptionTier) (*models.SubscriptionTier, error) {
	if _, err := s.Authorize(ctx, caller, models.PermBillingManage); err != nil {
		return nil, err
	}
	if err := validateTier(tier); err != nil {
		return nil, err
	}
	if err := s.subscriptionRepo.UpdateTier(ctx, tier); err != nil {
		return nil, notFound(err, "Subscription tier")
	}
	s.invalidateTiers(ctx)
	return s.subscriptionRepo.GetTier(ctx, tier.Name)
}

func (s *platformAdminService) invalidateTiers(ctx context.Context) {
	if err := s.cache.InvalidateTiers(ctx); err != nil {
		s.log.WithError(err).Warn("tier cache invalidation failed")
	}
}
