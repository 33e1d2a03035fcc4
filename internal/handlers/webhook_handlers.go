package handlers

import (
	"errors"
	"io"
	"net/http"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// maxWebhookBody bounds the payload read from the payment provider
const maxWebhookBody = 1 << 16

// WebhookHandlers handles HTTP requests for payment provider webhooks
type WebhookHandlers struct {
	billingService services.BillingService
	log            *logrus.Logger
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(billingService services.BillingService, log *logrus.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		billingService: billingService,
		log:            log,
	}
}

// StripeWebhook godoc
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe-Signature header over the raw body. Any failure is a 400.
// @Tags billing
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /webhooks/stripe [post]
func (h *WebhookHandlers) StripeWebhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response().Writer, c.Request().Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.WithField("limit", tooLarge.Limit).Warn("stripe webhook body too large")
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.billingService.HandleWebhook(c.Request().Context(), body, signature); err != nil {
		h.log.WithError(err).Warn("stripe webhook rejected")
		message := "Webhook processing failed"
		if services.KindOf(err) != "" {
			message = err.Error()
		}
		return echo.NewHTTPError(http.StatusBadRequest, message)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
