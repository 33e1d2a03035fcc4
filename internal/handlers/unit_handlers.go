package handlers

import (
	"net/http"

	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// UnitHandlers serves the unit registry and unit assignments
type UnitHandlers struct {
	unitService services.UnitService
}

func NewUnitHandlers(unitService services.UnitService) *UnitHandlers {
	return &UnitHandlers{unitService: unitService}
}

// AssignUnitRequest names the member who should hold the unit
type AssignUnitRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

func (h *UnitHandlers) ListUnits(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	limit, offset, err := paginate(c)
	if err != nil {
		return err
	}

	units, err := h.unitService.ListUnits(c.Request().Context(), assocID, identity, limit, offset)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units":  units,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *UnitHandlers) GetUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	unitID, err := pathID(c, "unitId", "unit id")
	if err != nil {
		return err
	}

	unit, err := h.unitService.GetUnit(c.Request().Context(), assocID, unitID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, unit)
}

func (h *UnitHandlers) CreateUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	var req services.UnitRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	unit, err := h.unitService.CreateUnit(c.Request().Context(), assocID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, unit)
}

func (h *UnitHandlers) UpdateUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	unitID, err := pathID(c, "unitId", "unit id")
	if err != nil {
		return err
	}

	var req services.UnitRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	unit, err := h.unitService.UpdateUnit(c.Request().Context(), assocID, unitID, identity, &req)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, unit)
}

func (h *UnitHandlers) DeleteUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	unitID, err := pathID(c, "unitId", "unit id")
	if err != nil {
		return err
	}

	if err := h.unitService.DeleteUnit(c.Request().Context(), assocID, unitID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignUnit godoc
// @Summary Assign a unit to a member (admin)
// @Description Fails when the unit is already held by another member.
// @Tags units
// @Param associationId path string true "Association ID"
// @Param unitId path string true "Unit ID"
// @Param request body AssignUnitRequest true "Assignment"
// @Success 201 {object} models.MemberUnit
// @Router /v1/associations/{associationId}/units/{unitId}/assignment [post]
func (h *UnitHandlers) AssignUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	unitID, err := pathID(c, "unitId", "unit id")
	if err != nil {
		return err
	}

	var req AssignUnitRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	memberID, err := parseBodyID(req.MemberID, "member_id")
	if err != nil {
		return err
	}

	assignment, err := h.unitService.AssignUnit(c.Request().Context(), assocID, unitID, memberID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

func (h *UnitHandlers) UnassignUnit(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}
	unitID, err := pathID(c, "unitId", "unit id")
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "memberId", "member id")
	if err != nil {
		return err
	}

	if err := h.unitService.UnassignUnit(c.Request().Context(), assocID, unitID, memberID, identity); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UnitHandlers) ListAssignments(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	assocID, err := associationID(c)
	if err != nil {
		return err
	}

	assignments, err := h.unitService.ListAssignments(c.Request().Context(), assocID, identity)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"assignments": assignments,
		"count":       len(assignments),
	})
}
