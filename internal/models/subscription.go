package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionTier is an entry in the plan catalog. Prices are in minor units.
type SubscriptionTier struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	DisplayName          string    `json:"display_name" db:"display_name"`
	MaxMembers           int       `json:"max_members" db:"max_members"`
	MaxUnits             int       `json:"max_units" db:"max_units"`
	PriceMonthly         int64     `json:"price_monthly" db:"price_monthly"`
	PriceYearly          int64     `json:"price_yearly" db:"price_yearly"`
	Currency             string    `json:"currency" db:"currency"`
	Features             []string  `json:"features" db:"features"`
	StripePriceMonthlyID *string   `json:"-" db:"stripe_price_monthly_id"`
	StripePriceYearlyID  *string   `json:"-" db:"stripe_price_yearly_id"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	SortOrder            int       `json:"sort_order" db:"sort_order"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// BillingEvent records a processed payment-provider webhook event.
type BillingEvent struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	AssociationID        *uuid.UUID `json:"association_id" db:"association_id"`
	ProviderEventID      string     `json:"provider_event_id" db:"stripe_event_id"`
	Type                 string     `json:"type" db:"type"`
	SubscriptionTier     *string    `json:"subscription_tier" db:"subscription_tier"`
	SubscriptionStatus   *string    `json:"subscription_status" db:"subscription_status"`
	StripeCustomerID     *string    `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}
