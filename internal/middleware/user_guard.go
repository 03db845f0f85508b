package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// トークンのユーザーがまだ存在するか確認する。
// 管理者権限はDBの値で上書きする（降格後の古いトークン対策）
func UserGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && user == nil) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if err != nil {
				logging.FromContext(c.Request().Context()).Error("load user failed", "user_id", userID, "error", err)
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			role := string(model.RoleUser)
			if user.IsAdmin() {
				role = string(model.RoleAdmin)
			}
			c.Set(CtxUserRoleKey, role)

			return next(c)
		}
	}
}
