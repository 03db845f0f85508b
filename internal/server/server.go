package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/security"
	"storefront/internal/infra/storage"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// サーバーが外から受け取る部品
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Logger *slog.Logger
	Events usecase.EventPublisher
	Images *storage.LocalImageStore

	// nil なら Config の Razorpay 設定から作る
	Gateway  usecase.PaymentGateway
	Verifier usecase.SignatureVerifier
}

// App は組み立て済みの echo と、起動時に使う usecase
type App struct {
	Echo *echo.Echo
	Auth *usecase.AuthUsecase
}

func New(d Deps) (*App, error) {
	if d.DB == nil {
		return nil, errors.New("db is required")
	}
	if d.Images == nil {
		return nil, errors.New("image store is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	cfg := d.Config

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(d.DB)
	productRepo := infraRepo.NewProductGormRepository(d.DB)
	categoryRepo := infraRepo.NewCategoryGormRepository(d.DB)
	cartRepo := infraRepo.NewCartGormRepository(d.DB)
	slideRepo := infraRepo.NewSlideGormRepository(d.DB)
	auditRepo := infraRepo.NewAuditLogGormRepository(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	gateway := d.Gateway
	if gateway == nil {
		gateway = payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}
	verifier := d.Verifier
	if verifier == nil {
		verifier = payment.NewHMACVerifier(cfg.RazorpayKeySecret)
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo,
		validator.NewAuthValidator(),
		security.NewBcryptPasswordHasher(12),
		security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
	)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, txm)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, txm)
	orderUC := usecase.NewOrderUsecase(txm, d.Events)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, d.Events)
	slideUC := usecase.NewSlideshowUsecase(slideRepo, txm, d.Images)
	uploadUC := usecase.NewUploadUsecase(d.Images, cfg.UploadMaxBytes)
	paymentUC := usecase.NewPaymentUsecase(gateway, verifier, txm, d.Events, cfg.PaymentCurrency)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(corsMiddleware(cfg))
	// 画像アップロード分 + 1MiB
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", (cfg.UploadMaxBytes+1<<20)/1024)))

	e.Static(d.Images.PublicPath(), d.Images.Dir())

	RegisterRoutes(e, cfg, userRepo, Handlers{
		Health:       handler.NewHealthHandler(sqlDB),
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Slideshow:    handler.NewSlideshowHandler(slideUC),
		Upload:       handler.NewUploadHandler(uploadUC),
		Payment:      handler.NewPaymentHandler(paymentUC),
		Audit:        handler.NewAuditHandler(auditUC),
	})

	return &App{Echo: e, Auth: authUC}, nil
}

func corsMiddleware(cfg config.Config) echo.MiddlewareFunc {
	if len(cfg.CORSOrigins) == 0 {
		return echomw.CORS()
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	})
}

// echo の 404/405/413 なども {error} で返す
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, handler.ErrorResponse{Error: msg})
}

// ctx が終わるまで待って graceful shutdown する
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
