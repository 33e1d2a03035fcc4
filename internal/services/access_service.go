package services

import (
	"context"
	"errors"
	"strings"

	"assochub/internal/models"
	"assochub/internal/repositories"

	"github.com/google/uuid"
)

// Viewer is the caller resolved against one association. Member is nil when
// the caller has a membership but no member profile.
type Viewer struct {
	Identity   *models.Identity
	Membership *models.Membership
	Member     *models.Member
	UnitIDs    []uuid.UUID
}

func (v *Viewer) IsAdmin() bool {
	return v.Membership != nil && v.Membership.IsAdmin()
}

// CanSee applies the visibility rule shared by documents and voting topics.
func (v *Viewer) CanSee(visibility models.Visibility) bool {
	if v.IsAdmin() {
		return true
	}
	return visibility.AllowsMember(v.UnitIDs)
}

// AccessService resolves the caller's standing in an association. Nothing is
// cached: every call reads the current membership.
type AccessService interface {
	RequireMembership(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error)
	RequireAdmin(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error)
	ResolveMember(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Member, error)
	ResolveViewer(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*Viewer, error)
}

type accessService struct {
	associationRepo repositories.AssociationRepository
	membershipRepo  repositories.MembershipRepository
	memberRepo      repositories.MemberRepository
	unitRepo        repositories.UnitRepository
}

func NewAccessService(
	associationRepo repositories.AssociationRepository,
	membershipRepo repositories.MembershipRepository,
	memberRepo repositories.MemberRepository,
	unitRepo repositories.UnitRepository,
) AccessService {
	return &accessService{
		associationRepo: associationRepo,
		membershipRepo:  membershipRepo,
		memberRepo:      memberRepo,
		unitRepo:        unitRepo,
	}
}

func (s *accessService) RequireMembership(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error) {
	if caller == nil || caller.UserID == "" {
		return nil, Unauthenticated("Authentication required")
	}
	membership, err := s.membershipRepo.GetByUser(ctx, associationID, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Forbidden("You are not a member of this association")
		}
		return nil, err
	}
	if !membership.IsActive() {
		return nil, Forbidden("Your membership is not active")
	}

	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}
	if !association.IsActive {
		return nil, Forbidden("Association is suspended")
	}
	return membership, nil
}

func (s *accessService) RequireAdmin(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Membership, error) {
	membership, err := s.RequireMembership(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	if !membership.IsAdmin() {
		return nil, Forbidden("Only association admins can perform this action")
	}
	return membership, nil
}

// ResolveMember finds the caller's member profile by verified email. It does
// not check membership; callers run RequireMembership first.
func (s *accessService) ResolveMember(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*models.Member, error) {
	if caller == nil || strings.TrimSpace(caller.Email) == "" {
		return nil, NotFound("Member profile not found")
	}
	member, err := s.memberRepo.GetByEmail(ctx, associationID, caller.Email)
	if err != nil {
		return nil, notFound(err, "Member profile")
	}
	return member, nil
}

func (s *accessService) ResolveViewer(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (*Viewer, error) {
	membership, err := s.RequireMembership(ctx, associationID, caller)
	if err != nil {
		return nil, err
	}
	viewer := &Viewer{Identity: caller, Membership: membership}

	member, err := s.ResolveMember(ctx, associationID, caller)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return viewer, nil
		}
		return nil, err
	}
	viewer.Member = member

	units, err := s.unitRepo.ListByMember(ctx, associationID, member.ID)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		viewer.UnitIDs = append(viewer.UnitIDs, u.ID)
	}
	return viewer, nil
}
