package models

import (
	"time"

	"github.com/google/uuid"
)

type PlatformRole string

const (
	PlatformRoleSuperAdmin PlatformRole = "super_admin"
	PlatformRoleSupport    PlatformRole = "support"
	PlatformRoleBilling    PlatformRole = "billing"
)

func (r PlatformRole) Valid() bool {
	switch r {
	case PlatformRoleSuperAdmin, PlatformRoleSupport, PlatformRoleBilling:
		return true
	}
	return false
}

// Platform permissions
const (
	PermAssociationsRead   = "associations:read"
	PermAssociationsManage = "associations:manage"
	PermBillingManage      = "billing:manage"
	PermAdminsManage       = "admins:manage"
	PermStatsRead          = "stats:read"
)

// PlatformAdmin is an operator spanning every association.
type PlatformAdmin struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	Email       string       `json:"email" db:"email"`
	Role        PlatformRole `json:"role" db:"role"`
	Permissions []string     `json:"permissions" db:"permissions"`
	IsActive    bool         `json:"is_active" db:"is_active"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// HasPermission reports whether the admin may use permission. Super admins
// hold every permission.
func (a *PlatformAdmin) HasPermission(permission string) bool {
	if !a.IsActive {
		return false
	}
	if a.Role == PlatformRoleSuperAdmin {
		return true
	}
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

type PlatformStats struct {
	TotalAssociations     int            `json:"total_associations"`
	ActiveAssociations    int            `json:"active_associations"`
	SuspendedAssociations int            `json:"suspended_associations"`
	TotalMembers          int            `json:"total_members"`
	TotalUnits            int            `json:"total_units"`
	TotalMeetings         int            `json:"total_meetings"`
	TotalVotingTopics     int            `json:"total_voting_topics"`
	ByTier                map[string]int `json:"by_tier"`
	ByStatus              map[string]int `json:"by_status"`
	GeneratedAt           time.Time      `json:"generated_at"`
}
