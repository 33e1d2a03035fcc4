package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe event types handled by billing.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaymentFail  = "invoice.payment_failed"
)

const webhookTolerance = 5 * time.Minute

type CheckoutParams struct {
	AssociationID uuid.UUID
	Tier          string
	PriceID       string
	CustomerID    *string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// BillingWebhookEvent is the subset of a verified provider event billing uses.
type BillingWebhookEvent struct {
	ID             string
	Type           string
	AssociationID  *uuid.UUID
	Tier           string
	CustomerID     string
	SubscriptionID string
	Status         string
}

// PaymentGateway is the narrow surface of the payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// ParseWebhook verifies the signature over the raw payload and decodes it.
	ParseWebhook(payload []byte, signature string) (*BillingWebhookEvent, error)
}

type stripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) PaymentGateway {
	stripe.Key = secretKey
	return &stripeGateway{webhookSecret: webhookSecret}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, p *CheckoutParams) (*CheckoutSession, error) {
	metadata := map[string]string{
		"association_id": p.AssociationID.String(),
		"tier":           p.Tier,
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(p.AssociationID.String()),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{Metadata: metadata},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if p.CustomerID != nil {
		params.Customer = p.CustomerID
	} else if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	s, err := portalsession.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signature string) (*BillingWebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	out := &BillingWebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("error parsing checkout session: %w", err)
		}
		out.AssociationID = parseAssociationRef(cs.ClientReferenceID, cs.Metadata)
		out.Tier = cs.Metadata["tier"]
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.SubscriptionID = cs.Subscription.ID
		}
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("error parsing subscription: %w", err)
		}
		out.AssociationID = parseAssociationRef("", sub.Metadata)
		out.Tier = sub.Metadata["tier"]
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	case EventInvoicePaymentFail:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("error parsing invoice: %w", err)
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
	}
	return out, nil
}

func parseAssociationRef(clientReference string, metadata map[string]string) *uuid.UUID {
	ref := clientReference
	if ref == "" {
		ref = metadata["association_id"]
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil
	}
	return &id
}
