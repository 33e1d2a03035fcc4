package handlers

import (
	"errors"
	"net/http"

	"assochub/internal/common"
	"assochub/internal/models"
	"assochub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindInvalidState:    http.StatusConflict,
	services.KindValidation:      http.StatusBadRequest,
	services.KindUpstream:        http.StatusBadGateway,
}

// serviceError converts a service failure into an HTTP error. Anything that is
// not a *services.Error is passed through so the global error handler reports
// it as a 500.
func serviceError(err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status, ok := kindStatus[svcErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		return echo.NewHTTPError(status, svcErr.Message)
	}
	return err
}

// caller returns the verified identity placed on the request by the JWT middleware
func caller(c echo.Context) (*models.Identity, error) {
	identity, ok := common.IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return identity, nil
}

func pathID(c echo.Context, param, field string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(param), field)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func parseBodyID(value, field string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(value, field)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func associationID(c echo.Context) (uuid.UUID, error) {
	return pathID(c, "associationId", "association id")
}

// bindRequest decodes the body into req and runs the registered validator
func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return nil
}

// pagination reads limit/offset query parameters
type pagination struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func paginate(c echo.Context) (int, int, error) {
	var p pagination
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &p); err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(p.Limit, p.Offset)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return limit, offset, nil
}
