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

const tierCacheTTL = 10 * time.Minute

// billingActor is the audit user id for changes driven by provider webhooks.
const billingActor = "system:billing"

type BillingService interface {
	ListTiers(ctx context.Context) ([]*models.SubscriptionTier, error)
	CreateCheckoutSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CheckoutRequest) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	// ExpireTrials moves trialing associations whose trial has ended to expired.
	ExpireTrials(ctx context.Context) (int, error)
}

type billingService struct {
	associationRepo  repositories.AssociationRepository
	subscriptionRepo repositories.SubscriptionRepository
	gateway          PaymentGateway
	cache            caching.CacheService
	access           AccessService
	audit            AuditLogsService
	log              *logrus.Logger
	appURL           string
	now              func() time.Time
}

func NewBillingService(
	associationRepo repositories.AssociationRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	gateway PaymentGateway,
	cache caching.CacheService,
	access AccessService,
	audit AuditLogsService,
	log *logrus.Logger,
	appURL string,
) BillingService {
	return &billingService{
		associationRepo:  associationRepo,
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		cache:            cache,
		access:           access,
		audit:            audit,
		log:              log,
		appURL:           strings.TrimRight(appURL, "/"),
		now:              time.Now,
	}
}

type CheckoutRequest struct {
	Tier     string `json:"tier" validate:"required"`
	Interval string `json:"interval" validate:"required,oneof=monthly yearly"`
}

func (s *billingService) ListTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	if tiers, err := s.cache.GetTiers(ctx); err != nil {
		s.log.WithError(err).Warn("tier cache read failed")
	} else if tiers != nil {
		return tiers, nil
	}

	tiers, err := s.subscriptionRepo.ListTiers(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetTiers(ctx, tiers, tierCacheTTL); err != nil {
		s.log.WithError(err).Warn("tier cache write failed")
	}
	return tiers, nil
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity, req *CheckoutRequest) (*CheckoutSession, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return nil, err
	}
	tier, err := s.subscriptionRepo.GetTier(ctx, req.Tier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Validation("Unknown subscription tier: %s", req.Tier)
		}
		return nil, err
	}
	if !tier.IsActive {
		return nil, Validation("Subscription tier %s is not available", tier.Name)
	}

	var priceID *string
	switch req.Interval {
	case "monthly":
		priceID = tier.StripePriceMonthlyID
	case "yearly":
		priceID = tier.StripePriceYearlyID
	default:
		return nil, Validation("Interval must be monthly or yearly")
	}
	if priceID == nil || *priceID == "" {
		return nil, Validation("Tier %s has no %s price", tier.Name, req.Interval)
	}

	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, notFound(err, "Association")
	}

	billingURL := fmt.Sprintf("%s/associations/%s/billing", s.appURL, associationID)
	session, err := s.gateway.CreateCheckoutSession(ctx, &CheckoutParams{
		AssociationID: associationID,
		Tier:          tier.Name,
		PriceID:       *priceID,
		CustomerID:    association.StripeCustomerID,
		CustomerEmail: caller.Email,
		SuccessURL:    billingURL + "?checkout=success",
		CancelURL:     billingURL + "?checkout=cancelled",
	})
	if err != nil {
		s.log.WithField("association_id", associationID).WithError(err).Error("checkout session failed")
		return nil, Upstream("Payment provider request failed")
	}
	return session, nil
}

func (s *billingService) CreatePortalSession(ctx context.Context, associationID uuid.UUID, caller *models.Identity) (string, error) {
	if _, err := s.access.RequireAdmin(ctx, associationID, caller); err != nil {
		return "", err
	}
	association, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return "", notFound(err, "Association")
	}
	if association.StripeCustomerID == nil || *association.StripeCustomerID == "" {
		return "", InvalidState("No billing account exists for this association yet")
	}
	url, err := s.gateway.CreatePortalSession(ctx, *association.StripeCustomerID,
		fmt.Sprintf("%s/associations/%s/billing", s.appURL, associationID))
	if err != nil {
		s.log.WithField("association_id", associationID).WithError(err).Error("portal session failed")
		return "", Upstream("Payment provider request failed")
	}
	return url, nil
}

// HandleWebhook verifies and applies one provider event. Events already
// recorded are acknowledged without being applied again.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return Validation("Missing Stripe-Signature header")
	}
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.log.WithError(err).Warn("rejected billing webhook")
		return Upstream("Invalid webhook signature")
	}

	seen, err := s.subscriptionRepo.HasEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		s.log.WithField("event_id", event.ID).Info("duplicate billing webhook ignored")
		return nil
	}

	var association *models.Association
	switch event.Type {
	case EventCheckoutCompleted:
		association, err = s.applyCheckoutCompleted(ctx, event)
	case EventSubscriptionUpdated:
		association, err = s.applyStatus(ctx, event, mapSubscriptionStatus(event.Status))
	case EventSubscriptionDeleted:
		association, err = s.applyStatus(ctx, event, models.SubscriptionStatusCanceled)
	case EventInvoicePaymentFail:
		association, err = s.applyStatus(ctx, event, models.SubscriptionStatusPastDue)
	default:
		s.log.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type}).Debug("unhandled billing event")
	}
	if err != nil {
		return err
	}

	record := &models.BillingEvent{
		ProviderEventID:      event.ID,
		Type:                 event.Type,
		StripeCustomerID:     optional(event.CustomerID),
		StripeSubscriptionID: optional(event.SubscriptionID),
	}
	if association != nil {
		record.AssociationID = &association.ID
		record.SubscriptionTier = &association.SubscriptionTier
		record.SubscriptionStatus = &association.SubscriptionStatus
	}
	if _, err := s.subscriptionRepo.RecordEvent(ctx, record); err != nil {
		return err
	}
	return nil
}

func (s *billingService) resolveAssociation(ctx context.Context, event *BillingWebhookEvent) (*models.Association, error) {
	if event.AssociationID != nil {
		association, err := s.associationRepo.GetByID(ctx, *event.AssociationID)
		if err == nil {
			return association, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	if event.CustomerID != "" {
		association, err := s.associationRepo.GetByStripeCustomerID(ctx, event.CustomerID)
		if err == nil {
			return association, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	return nil, Validation("No association matches billing event %s", event.ID)
}

func (s *billingService) applyCheckoutCompleted(ctx context.Context, event *BillingWebhookEvent) (*models.Association, error) {
	association, err := s.resolveAssociation(ctx, event)
	if err != nil {
		return nil, err
	}
	if event.Tier != "" {
		tier, err := s.subscriptionRepo.GetTier(ctx, event.Tier)
		if err != nil {
			return nil, notFound(err, "Subscription tier")
		}
		association.SubscriptionTier = tier.Name
		association.MaxMembers = tier.MaxMembers
		association.MaxUnits = tier.MaxUnits
	}
	association.SubscriptionStatus = models.SubscriptionStatusActive
	association.TrialEndsAt = nil
	if event.CustomerID != "" {
		association.StripeCustomerID = optional(event.CustomerID)
	}
	if event.SubscriptionID != "" {
		association.StripeSubscriptionID = optional(event.SubscriptionID)
	}
	return association, s.saveSubscription(ctx, association, event)
}

func (s *billingService) applyStatus(ctx context.Context, event *BillingWebhookEvent, status string) (*models.Association, error) {
	association, err := s.resolveAssociation(ctx, event)
	if err != nil {
		return nil, err
	}
	association.SubscriptionStatus = status
	if event.Type == EventSubscriptionDeleted {
		association.StripeSubscriptionID = nil
	}
	return association, s.saveSubscription(ctx, association, event)
}

func (s *billingService) saveSubscription(ctx context.Context, association *models.Association, event *BillingWebhookEvent) error {
	association.UpdatedAt = s.now().UTC()
	if err := s.associationRepo.UpdateSubscription(ctx, association); err != nil {
		return err
	}
	s.audit.Log(ctx, AuditEntry{
		AssociationID: association.ID,
		UserID:        billingActor,
		Action:        models.AuditSubscriptionChanged,
		EntityType:    models.EntityAssociation,
		EntityID:      entityRef(association.ID),
		Description:   fmt.Sprintf("Subscription is now %s on the %s plan", association.SubscriptionStatus, association.SubscriptionTier),
		Metadata:      models.JSONB{"event_id": event.ID, "event_type": event.Type},
	})
	return nil
}

func mapSubscriptionStatus(providerStatus string) string {
	switch providerStatus {
	case "active":
		return models.SubscriptionStatusActive
	case "trialing":
		return models.SubscriptionStatusTrialing
	case "canceled", "incomplete_expired":
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusPastDue
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *billingService) ExpireTrials(ctx context.Context) (int, error) {
	now := s.now().UTC()
	associations, err := s.associationRepo.ListTrialsEndedBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, a := range associations {
		a.SubscriptionStatus = models.SubscriptionStatusExpired
		a.UpdatedAt = now
		if err := s.associationRepo.UpdateSubscription(ctx, a); err != nil {
			s.log.WithField("association_id", a.ID).WithError(err).Error("failed to expire trial")
			continue
		}
		expired++
		s.audit.Log(ctx, AuditEntry{
			AssociationID: a.ID,
			UserID:        billingActor,
			Action:        models.AuditSubscriptionChanged,
			EntityType:    models.EntityAssociation,
			EntityID:      entityRef(a.ID),
			Description:   "Trial period ended",
		})
	}
	return expired, nil
}
