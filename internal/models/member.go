package models

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInvited  MemberStatus = "invited"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member is the association-scoped profile. It may exist before the person
// signs up, in which case UserID is nil and Status is invited.
type Member struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	AssociationID uuid.UUID    `json:"association_id" db:"association_id"`
	UserID        *string      `json:"user_id" db:"user_id"`
	Email         string       `json:"email" db:"email"`
	FirstName     string       `json:"first_name" db:"first_name"`
	LastName      string       `json:"last_name" db:"last_name"`
	Phone         *string      `json:"phone" db:"phone"`
	Role          MemberRole   `json:"role" db:"role"`
	Status        MemberStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Member) FullName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// MemberUnit assigns a unit to a member. A unit has at most one row.
type MemberUnit struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AssociationID uuid.UUID `json:"association_id" db:"association_id"`
	MemberID      uuid.UUID `json:"member_id" db:"member_id"`
	UnitID        uuid.UUID `json:"unit_id" db:"unit_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
