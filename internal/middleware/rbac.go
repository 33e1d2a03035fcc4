package middleware

import (
	"errors"
	"net/http"

	"assochub/internal/common"
	"assochub/internal/services"

	"github.com/labstack/echo/v4"
)

// PlatformAdminKey holds the authorized *models.PlatformAdmin in the echo context
const PlatformAdminKey = "platform_admin"

type RBACMiddleware struct {
	platformAdminService services.PlatformAdminService
}

func NewRBACMiddleware(platformAdminService services.PlatformAdminService) *RBACMiddleware {
	return &RBACMiddleware{
		platformAdminService: platformAdminService,
	}
}

// RequirePlatformAdmin admits active platform admins. An empty permission
// admits any of them; services still check the permission per operation.
func (m *RBACMiddleware) RequirePlatformAdmin(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			identity, ok := common.IdentityFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			admin, err := m.platformAdminService.Authorize(ctx, identity, permission)
			if err != nil {
				var svcErr *services.Error
				if errors.As(err, &svcErr) {
					if svcErr.Kind == services.KindUnauthenticated {
						return echo.NewHTTPError(http.StatusUnauthorized, svcErr.Message)
					}
					return echo.NewHTTPError(http.StatusForbidden, svcErr.Message)
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Error checking permission")
			}

			c.Set(PlatformAdminKey, admin)
			return next(c)
		}
	}
}
