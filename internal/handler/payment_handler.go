package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type createPaymentOrderRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
	OrderID  *int64           `json:"order_id"`
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type verifyFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/payment")
	g.POST("/orders", h.createOrder)
	g.POST("/verify", h.verify)
}

// POST /payment/orders
func (h *PaymentHandler) createOrder(c echo.Context) error {
	var req createPaymentOrderRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreatePaymentOrder(c.Request().Context(), usecase.CreatePaymentOrderInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		OrderID:  req.OrderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /payment/verify
func (h *PaymentHandler) verify(c echo.Context) error {
	var req verifyPaymentRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.VerifyPayment(c.Request().Context(), usecase.VerifyPaymentInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		// 署名不一致は success:false で返す
		if he, ok := usecase.AsHTTPError(err); ok && he.Status == http.StatusBadRequest {
			return c.JSON(http.StatusBadRequest, verifyFailureResponse{Success: false, Error: he.Message})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
