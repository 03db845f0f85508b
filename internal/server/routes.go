package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Slideshow    *handler.SlideshowHandler
	Upload       *handler.UploadHandler
	Payment      *handler.PaymentHandler
	Audit        *handler.AuditHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e, cfg, userRepo)

	// /products/admin を /products/:id より先に登録しても echo は静的パスを優先する
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)

	h.Cart.RegisterRoutes(e, cfg, userRepo)

	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)

	h.Slideshow.RegisterRoutes(e, cfg, userRepo)
	h.Upload.RegisterRoutes(e, cfg, userRepo)
	h.Payment.RegisterRoutes(e)
	h.Audit.RegisterRoutes(e, cfg, userRepo)
}
