package handlers

import (
	"net/http"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// AssociationHandlers serves associations and their memberships
type AssociationHandlers struct {
	associationService services.AssociationService
}

func NewAssociationHandlers(associationService services.AssociationService) *AssociationHandlers {
	return &AssociationHandlers{associationService: associationService}
}

// UpdateMembershipRoleRequest changes a membership's role. Owner cannot be granted.
type UpdateMembershipRoleRequest struct {
	Role models.MembershipRole `json:"role" validate:"required"`
}

// CreateAssociation godoc
// @Summary Create an association owned by the caller
// @Tags associations
// @Param request body services.CreateAssociationRequest true "Association"
// @Success 201 {object} models.Association
// @Router /v1/associations [post]
func (h *AssociationHandlers) CreateAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req services.CreateAssociationRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	association, err := h.associationService.CreateAssociation(c.Request().Context(), identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, association)
}

// ListMyAssociations returns every association the caller actively belongs to
func (h *AssociationHandlers) ListMyAssociations(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	associations, err := h.associationService.ListMyAssociations(c.Request().Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"associations": associations,
		"count":        len(associations),
	})
}

// GetAssociation responds with null when the caller is not a member
func (h *AssociationHandlers) GetAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	association, err := h.associationService.GetAssociation(c.Request().Context(), assocID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, association)
}

func (h *AssociationHandlers) UpdateAssociation(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.UpdateAssociationRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	association, err := h.associationService.UpdateAssociation(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, association)
}

func (h *AssociationHandlers) ListMemberships(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	memberships, err := h.associationService.ListMemberships(c.Request().Context(), assocID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"memberships": memberships,
		"count":       len(memberships),
	})
}

func (h *AssociationHandlers) UpdateMembershipRole(c echo.Context) error {
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

	var req UpdateMembershipRoleRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	membership, err := h.associationService.UpdateMembershipRole(c.Request().Context(), assocID, membershipID, identity, req.Role)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, membership)
}

func (h *AssociationHandlers) RemoveMembership(c echo.Context) error {
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

	if err := h.associationService.RemoveMembership(c.Request().Context(), assocID, membershipID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AcceptInvitations links pending member invitations to the caller's account
func (h *AssociationHandlers) AcceptInvitations(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	joined, err := h.associationService.AcceptInvitations(c.Request().Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"associations": joined,
		"count":        len(joined),
	})
}
