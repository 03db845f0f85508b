package middleware

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/logging"

	"github.com/labstack/echo/v4"
)

// RequireRole は context の role が allowed のどれかなら通す。
// role が無ければ401、合わなければ403。UserGuard の後に置くとDBのroleで判定される
func RequireRole(allowed ...model.Role) echo.MiddlewareFunc {
	set := make(map[model.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if _, ok := set[model.Role(role)]; !ok {
				logging.FromContext(c.Request().Context()).Warn("role denied",
					"user_id", c.Get(CtxUserIDKey),
					"role", role,
					"path", c.Path(),
				)
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}

// 管理画面API用
func AdminRoleGuard() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin)
}
