package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SlideshowHandler struct {
	uc *usecase.SlideshowUsecase
}

func NewSlideshowHandler(uc *usecase.SlideshowUsecase) *SlideshowHandler {
	return &SlideshowHandler{uc: uc}
}

// スライド系は {success, data} で返す
type slideshowResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type slideRequest struct {
	ImageURL     string `json:"image_url"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	DisplayOrder *int   `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

func (r slideRequest) toInput() usecase.SlideInput {
	return usecase.SlideInput{
		ImageURL:     r.ImageURL,
		Title:        r.Title,
		Subtitle:     r.Subtitle,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive,
	}
}

func (h *SlideshowHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/slideshow", h.listActive)

	g := e.Group("/slideshow/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.UserGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.adminList)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// GET /slideshow（有効なものだけ display_order 順）
func (h *SlideshowHandler) listActive(c echo.Context) error {
	slides, err := h.uc.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slideshowResponse{Success: true, Data: slides})
}

func (h *SlideshowHandler) adminList(c echo.Context) error {
	slides, err := h.uc.AdminList(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slideshowResponse{Success: true, Data: slides})
}

func (h *SlideshowHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req slideRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.uc.AdminCreate(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, slideshowResponse{Success: true, Data: s})
}

func (h *SlideshowHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req slideRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.uc.AdminUpdate(c.Request().Context(), adminID, slideID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slideshowResponse{Success: true, Data: s})
}

// 画像ファイルも消す（失敗はログだけ）
func (h *SlideshowHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	slideID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDelete(c.Request().Context(), adminID, slideID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Slide deleted successfully"})
}
