package handlers

import (
	"net/http"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// BillingHandlers serves the tier catalog and hosted Stripe sessions
type BillingHandlers struct {
	billingService services.BillingService
}

// NewBillingHandlers creates a new billing handlers instance
func NewBillingHandlers(billingService services.BillingService) *BillingHandlers {
	return &BillingHandlers{billingService: billingService}
}

// ListTiers godoc
// @Summary Active subscription tiers
// @Tags billing
// @Success 200 {object} map[string]interface{}
// @Router /v1/billing/tiers [get]
func (h *BillingHandlers) ListTiers(c echo.Context) error {
	tiers, err := h.billingService.ListTiers(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tiers": tiers,
		"count": len(tiers),
	})
}

// CreateCheckoutSession godoc
// @Summary Start a Stripe checkout for a tier (owner/admin)
// @Tags billing
// @Param associationId path string true "Association ID"
// @Param request body services.CheckoutRequest true "Tier and interval"
// @Success 200 {object} services.CheckoutSession
// @Router /v1/associations/{associationId}/billing/checkout [post]
func (h *BillingHandlers) CreateCheckoutSession(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.CheckoutRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	session, err := h.billingService.CreateCheckoutSession(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, session)
}

// CreatePortalSession returns a Stripe customer portal URL
func (h *BillingHandlers) CreatePortalSession(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	url, err := h.billingService.CreatePortalSession(c.Request().Context(), assocID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
