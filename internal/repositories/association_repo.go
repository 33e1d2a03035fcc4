package repositories

import (
	"context"
	"time"

	"assochub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AssociationRepository interface {
	Create(ctx context.Context, association *models.Association) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Association, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Association, error)
	Update(ctx context.Context, association *models.Association) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, reason *string) error
	UpdateSubscription(ctx context.Context, association *models.Association) error
	List(ctx context.Context, limit, offset int) ([]*models.Association, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Association, error)
	ListTrialsEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Association, error)
	GetPlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

type associationRepo struct {
	db DB
}

func NewAssociationRepository(db DB) AssociationRepository {
	return &associationRepo{db: db}
}

const associationColumns = `id, name, address, city, postal_code, country, contact_email, contact_phone,
		subscription_tier, subscription_status, trial_ends_at, max_members, max_units, is_active,
		suspended_reason, stripe_customer_id, stripe_subscription_id, created_by, created_at, updated_at`

func scanAssociation(row pgx.Row) (*models.Association, error) {
	a := &models.Association{}
	err := row.Scan(&a.ID, &a.Name, &a.Address, &a.City, &a.PostalCode, &a.Country, &a.ContactEmail, &a.ContactPhone,
		&a.SubscriptionTier, &a.SubscriptionStatus, &a.TrialEndsAt, &a.MaxMembers, &a.MaxUnits, &a.IsActive,
		&a.SuspendedReason, &a.StripeCustomerID, &a.StripeSubscriptionID, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *associationRepo) Create(ctx context.Context, a *models.Association) error {
	query := `
		INSERT INTO associations (id, name, address, city, postal_code, country, contact_email, contact_phone,
			subscription_tier, subscription_status, trial_ends_at, max_members, max_units, is_active, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, a.ID, a.Name, a.Address, a.City, a.PostalCode, a.Country, a.ContactEmail, a.ContactPhone,
		a.SubscriptionTier, a.SubscriptionStatus, a.TrialEndsAt, a.MaxMembers, a.MaxUnits, a.IsActive, a.CreatedBy)
	return translate(err)
}

func (r *associationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE id = $1`
	return scanAssociation(r.db.QueryRow(ctx, query, id))
}

func (r *associationRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE stripe_customer_id = $1`
	return scanAssociation(r.db.QueryRow(ctx, query, customerID))
}

func (r *associationRepo) Update(ctx context.Context, a *models.Association) error {
	query := `
		UPDATE associations
		SET name = $1, address = $2, city = $3, postal_code = $4, country = $5, contact_email = $6,
			contact_phone = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, a.Name, a.Address, a.City, a.PostalCode, a.Country, a.ContactEmail, a.ContactPhone, a.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *associationRepo) SetActive(ctx context.Context, id uuid.UUID, active bool, reason *string) error {
	query := `UPDATE associations SET is_active = $1, suspended_reason = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, active, reason, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *associationRepo) UpdateSubscription(ctx context.Context, a *models.Association) error {
	query := `
		UPDATE associations
		SET subscription_tier = $1, subscription_status = $2, trial_ends_at = $3, max_members = $4, max_units = $5,
			stripe_customer_id = $6, stripe_subscription_id = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, a.SubscriptionTier, a.SubscriptionStatus, a.TrialEndsAt, a.MaxMembers, a.MaxUnits,
		a.StripeCustomerID, a.StripeSubscriptionID, a.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *associationRepo) List(ctx context.Context, limit, offset int) ([]*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryAssociations(ctx, query, limit, offset)
}

func (r *associationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Association, error) {
	query := `
		SELECT a.id, a.name, a.address, a.city, a.postal_code, a.country, a.contact_email, a.contact_phone,
			a.subscription_tier, a.subscription_status, a.trial_ends_at, a.max_members, a.max_units, a.is_active,
			a.suspended_reason, a.stripe_customer_id, a.stripe_subscription_id, a.created_by, a.created_at, a.updated_at
		FROM associations a
		JOIN memberships m ON m.association_id = a.id
		WHERE m.user_id = $1 AND m.status = 'active'
		ORDER BY a.name
	`
	return r.queryAssociations(ctx, query, userID)
}

func (r *associationRepo) ListTrialsEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations
		WHERE subscription_status = 'trialing' AND trial_ends_at IS NOT NULL AND trial_ends_at < $1`
	return r.queryAssociations(ctx, query, cutoff)
}

func (r *associationRepo) queryAssociations(ctx context.Context, query string, args ...interface{}) ([]*models.Association, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var associations []*models.Association
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		associations = append(associations, a)
	}
	return associations, rows.Err()
}

func (r *associationRepo) GetPlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{
		ByTier:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	countsQuery := `
		SELECT
			(SELECT COUNT(*) FROM associations),
			(SELECT COUNT(*) FROM associations WHERE is_active),
			(SELECT COUNT(*) FROM associations WHERE NOT is_active),
			(SELECT COUNT(*) FROM members),
			(SELECT COUNT(*) FROM units),
			(SELECT COUNT(*) FROM meetings),
			(SELECT COUNT(*) FROM voting_topics)
	`
	err := r.db.QueryRow(ctx, countsQuery).Scan(&stats.TotalAssociations, &stats.ActiveAssociations,
		&stats.SuspendedAssociations, &stats.TotalMembers, &stats.TotalUnits, &stats.TotalMeetings, &stats.TotalVotingTopics)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT subscription_tier, subscription_status, COUNT(*) FROM associations GROUP BY subscription_tier, subscription_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tier, status string
		var count int
		if err := rows.Scan(&tier, &status, &count); err != nil {
			return nil, err
		}
		stats.ByTier[tier] += count
		stats.ByStatus[status] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.GeneratedAt = time.Now()
	return stats, nil
}
