package handlers

import (
	"net/http"
	"time"

	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// ListAuditLogs godoc
// @Summary Audit trail of an association
// @Description Admins see every entry; other members see only their own.
// @Tags audit
// @Param associationId path string true "Association ID"
// @Param action query string false "Action"
// @Param entity_type query string false "Entity type"
// @Param entity_id query string false "Entity ID"
// @Param user_id query string false "Acting user"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Success 200 {object} map[string]interface{}
// @Router /v1/associations/{associationId}/audit-logs [get]
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
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

	filters := &models.AuditLogFilters{Limit: limit, Offset: offset}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if entityType := c.QueryParam("entity_type"); entityType != "" {
		filters.EntityType = &entityType
	}
	if entityID := c.QueryParam("entity_id"); entityID != "" {
		filters.EntityID = &entityID
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if since := c.QueryParam("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be an RFC3339 timestamp")
		}
		filters.Since = &t
	}
	if until := c.QueryParam("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "until must be an RFC3339 timestamp")
		}
		filters.Until = &t
	}

	logs, err := h.auditLogsService.List(c.Request().Context(), assocID, identity, filters)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   logs,
		"total":  len(logs),
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}
