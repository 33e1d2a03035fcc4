package repositories

import (
	"context"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubscriptionRepository stores the tier catalog and processed billing events.
type SubscriptionRepository interface {
	ListTiers(ctx context.Context, activeOnly bool) ([]*models.SubscriptionTier, error)
	GetTier(ctx context.Context, name string) (*models.SubscriptionTier, error)
	CreateTier(ctx context.Context, tier *models.SubscriptionTier) error
	UpdateTier(ctx context.Context, tier *models.SubscriptionTier) error

	HasEvent(ctx context.Context, providerEventID string) (bool, error)
	// RecordEvent stores a webhook event and reports false when the provider
	// event id was already recorded.
	RecordEvent(ctx context.Context, event *models.BillingEvent) (bool, error)
}

type subscriptionRepo struct {
	db DB
}

func NewSubscriptionRepository(db DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const tierColumns = `id, name, display_name, max_members, max_units, price_monthly, price_yearly, currency, features,
		stripe_price_monthly_id, stripe_price_yearly_id, is_active, sort_order, created_at, updated_at`

func scanTier(row pgx.Row) (*models.SubscriptionTier, error) {
	t := &models.SubscriptionTier{}
	err := row.Scan(&t.ID, &t.Name, &t.DisplayName, &t.MaxMembers, &t.MaxUnits, &t.PriceMonthly, &t.PriceYearly,
		&t.Currency, &t.Features, &t.StripePriceMonthlyID, &t.StripePriceYearlyID, &t.IsActive, &t.SortOrder,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (r *subscriptionRepo) ListTiers(ctx context.Context, activeOnly bool) ([]*models.SubscriptionTier, error) {
	query := `
		SELECT ` + tierColumns + `
		FROM subscription_tiers
		WHERE is_active OR NOT $1
		ORDER BY sort_order, name
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []*models.SubscriptionTier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *subscriptionRepo) GetTier(ctx context.Context, name string) (*models.SubscriptionTier, error) {
	query := `SELECT ` + tierColumns + ` FROM subscription_tiers WHERE name = $1`
	return scanTier(r.db.QueryRow(ctx, query, name))
}

func (r *subscriptionRepo) CreateTier(ctx context.Context, t *models.SubscriptionTier) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Features == nil {
		t.Features = []string{}
	}
	query := `
		INSERT INTO subscription_tiers (id, name, display_name, max_members, max_units, price_monthly, price_yearly,
			currency, features, stripe_price_monthly_id, stripe_price_yearly_id, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.Name, t.DisplayName, t.MaxMembers, t.MaxUnits, t.PriceMonthly,
		t.PriceYearly, t.Currency, t.Features, t.StripePriceMonthlyID, t.StripePriceYearlyID, t.IsActive, t.SortOrder)
	return translate(err)
}

func (r *subscriptionRepo) UpdateTier(ctx context.Context, t *models.SubscriptionTier) error {
	query := `
		UPDATE subscription_tiers
		SET display_name = $1, max_members = $2, max_units = $3, price_monthly = $4, price_yearly = $5, currency = $6,
			features = $7, stripe_price_monthly_id = $8, stripe_price_yearly_id = $9, is_active = $10, sort_order = $11,
			updated_at = NOW()
		WHERE name = $12
	`
	tag, err := r.db.Exec(ctx, query, t.DisplayName, t.MaxMembers, t.MaxUnits, t.PriceMonthly, t.PriceYearly,
		t.Currency, t.Features, t.StripePriceMonthlyID, t.StripePriceYearlyID, t.IsActive, t.SortOrder, t.Name)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) HasEvent(ctx context.Context, providerEventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM billing_events WHERE stripe_event_id = $1)`, providerEventID).Scan(&exists)
	return exists, err
}

func (r *subscriptionRepo) RecordEvent(ctx context.Context, e *models.BillingEvent) (bool, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	query := `
		INSERT INTO billing_events (id, association_id, stripe_event_id, type, subscription_tier, subscription_status,
			stripe_customer_id, stripe_subscription_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (stripe_event_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, e.ID, e.AssociationID, e.ProviderEventID, e.Type, e.SubscriptionTier,
		e.SubscriptionStatus, e.StripeCustomerID, e.StripeSubscriptionID)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}
