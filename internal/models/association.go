package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses for an association.
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

type Association struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	Name                 string     `json:"name" db:"name"`
	Address              *string    `json:"address" db:"address"`
	City                 *string    `json:"city" db:"city"`
	PostalCode           *string    `json:"postal_code" db:"postal_code"`
	Country              *string    `json:"country" db:"country"`
	ContactEmail         *string    `json:"contact_email" db:"contact_email"`
	ContactPhone         *string    `json:"contact_phone" db:"contact_phone"`
	SubscriptionTier     string     `json:"subscription_tier" db:"subscription_tier"`
	SubscriptionStatus   string     `json:"subscription_status" db:"subscription_status"`
	TrialEndsAt          *time.Time `json:"trial_ends_at" db:"trial_ends_at"`
	MaxMembers           int        `json:"max_members" db:"max_members"`
	MaxUnits             int        `json:"max_units" db:"max_units"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	SuspendedReason      *string    `json:"suspended_reason,omitempty" db:"suspended_reason"`
	StripeCustomerID     *string    `json:"-" db:"stripe_customer_id"`
	StripeSubscriptionID *string    `json:"-" db:"stripe_subscription_id"`
	CreatedBy            string     `json:"created_by" db:"created_by"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
