package handlers

import (
	"net/http"
	"strings"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// PlatformAdminHandlers serves cross-tenant operator endpoints under /v1/platform
type PlatformAdminHandlers struct {
	platformAdminService services.PlatformAdminService
}

func NewPlatformAdminHandlers(platformAdminService services.PlatformAdminService) *PlatformAdminHandlers {
	return &PlatformAdminHandlers{platformAdminService: platformAdminService}
}

type SuspendAssociationRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type AddAssociationAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TierRequest creates or replaces a catalog tier. Prices are in minor units.
// On update the path name wins over the body.
type TierRequest struct {
	Name                 string   `json:"name" validate:"max=50"`
	DisplayName          string   `json:"display_name" validate:"max=100"`
	MaxMembers           int      `json:"max_members" validate:"min=0"`
	MaxUnits             int      `json:"max_units" validate:"min=0"`
	PriceMonthly         int64    `json:"price_monthly" validate:"min=0"`
	PriceYearly          int64    `json:"price_yearly" validate:"min=0"`
	Currency             string   `json:"currency"`
	Features             []string `json:"features"`
	StripePriceMonthlyID *string  `json:"stripe_price_monthly_id"`
	StripePriceYearlyID  *string  `json:"stripe_price_yearly_id"`
	IsActive             *bool    `json:"is_active"`
	SortOrder            int      `json:"sort_order"`
}

func (r *TierRequest) toModel() *models.SubscriptionTier {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.SubscriptionTier{
		Name:                 strings.ToLower(strings.TrimSpace(r.Name)),
		DisplayName:          r.DisplayName,
		MaxMembers:           r.MaxMembers,
		MaxUnits:             r.MaxUnits,
		PriceMonthly:         r.PriceMonthly,
		PriceYearly:          r.PriceYearly,
		Currency:             r.Currency,
		Features:             r.Features,
		StripePriceMonthlyID: r.StripePriceMonthlyID,
		StripePriceYearlyID:  r.StripePriceYearlyID,
		IsActive:             active,
		SortOrder:            r.SortOrder,
	}
}

func (h *PlatformAdminHandlers) ListAssociations(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	limit, offset, err := paginate(c)
	if err != nil {
		return err
	}

	associations, err := h.platformAdminService.ListAssociations(c.Request().Context(), identity, limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"associations": associations,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *PlatformAdminHandlers) GetAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	association, err := h.platformAdminService.GetAssociation(c.Request().Context(), identity, assocID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, association)
}

// SuspendAssociation godoc
// @Summary Suspend an association; all tenant operations are rejected afterwards
// @Tags platform
// @Param associationId path string true "Association ID"
// @Param request body SuspendAssociationRequest true "Reason"
// @Success 204
// @Router /v1/platform/associations/{associationId}/suspend [post]
func (h *PlatformAdminHandlers) SuspendAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req SuspendAssociationRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	if err := h.platformAdminService.SuspendAssociation(c.Request().Context(), identity, assocID, req.Reason); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlatformAdminHandlers) ReactivateAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	if err := h.platformAdminService.ReactivateAssociation(c.Request().Context(), identity, assocID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlatformAdminHandlers) UpdateAssociationSubscription(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.UpdateSubscriptionRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	association, err := h.platformAdminService.UpdateAssociationSubscription(c.Request().Context(), identity, assocID, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, association)
}

func (h *PlatformAdminHandlers) ListAssociationAdmins(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	admins, err := h.platformAdminService.ListAssociationAdmins(c.Request().Context(), identity, assocID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admins": admins,
		"count":  len(admins),
	})
}

func (h *PlatformAdminHandlers) AddAssociationAdmin(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req AddAssociationAdminRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	member, err := h.platformAdminService.AddAssociationAdmin(c.Request().Context(), identity, assocID, req.Email)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *PlatformAdminHandlers) RemoveAssociationAdmin(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	membershipID, err := pathID(c, "membershipId", "membership id")
	if err != nil {
		return err
	}

	if err := h.platformAdminService.RemoveAssociationAdmin(c.Request().Context(), identity, assocID, membershipID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlatformAdminHandlers) GetPlatformStats(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	stats, err := h.platformAdminService.GetPlatformStats(c.Request().Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *PlatformAdminHandlers) ListPlatformAdmins(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	admins, err := h.platformAdminService.ListPlatformAdmins(c.Request().Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admins": admins,
		"count":  len(admins),
	})
}

func (h *PlatformAdminHandlers) CreatePlatformAdmin(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req services.CreatePlatformAdminRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	admin, err := h.platformAdminService.CreatePlatformAdmin(c.Request().Context(), identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, admin)
}

func (h *PlatformAdminHandlers) UpdatePlatformAdmin(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	adminID, err := pathID(c, "adminId", "admin id")
	if err != nil {
		return err
	}

	var req services.UpdatePlatformAdminRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	admin, err := h.platformAdminService.UpdatePlatformAdmin(c.Request().Context(), identity, adminID, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, admin)
}

// ListAllTiers includes inactive tiers
func (h *PlatformAdminHandlers) ListAllTiers(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	tiers, err := h.platformAdminService.ListAllTiers(c.Request().Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tiers": tiers,
		"count": len(tiers),
	})
}

func (h *PlatformAdminHandlers) CreateTier(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req TierRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	tier, err := h.platformAdminService.CreateTier(c.Request().Context(), identity, req.toModel())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, tier)
}

// UpdateTier replaces the tier named in the path
func (h *PlatformAdminHandlers) UpdateTier(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req TierRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	tier := req.toModel()
	tier.Name = strings.ToLower(c.Param("name"))

	updated, err := h.platformAdminService.UpdateTier(c.Request().Context(), identity, tier)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, updated)
}
