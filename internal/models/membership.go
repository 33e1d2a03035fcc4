package models

import (
	"time"

	"github.com/google/uuid"
)

type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "owner"
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
)

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusInvited  MembershipStatus = "invited"
	MembershipStatusInactive MembershipStatus = "inactive"
)

// Membership links a platform user to an association and carries the role
// used for association-level authorization.
type Membership struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	AssociationID uuid.UUID        `json:"association_id" db:"association_id"`
	UserID        string           `json:"user_id" db:"user_id"`
	UserEmail     string           `json:"user_email" db:"user_email"`
	UserName      string           `json:"user_name" db:"user_name"`
	Role          MembershipRole   `json:"role" db:"role"`
	Status        MembershipStatus `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the membership may perform association admin work.
func (m *Membership) IsAdmin() bool {
	return m.Role == MembershipRoleOwner || m.Role == MembershipRoleAdmin
}

func (m *Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}
