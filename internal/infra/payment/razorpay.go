package payment

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/usecase"

	razorpay "github.com/razorpay/razorpay-go"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

// Razorpay の Orders API
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID string, keySecret string) *RazorpayGateway {
	if keyID == "" || keySecret == "" {
		return &RazorpayGateway{}
	}
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	if g.client == nil {
		return usecase.GatewayOrder{}, ErrGatewayNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return usecase.GatewayOrder{}, err
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return usecase.GatewayOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}

	return toGatewayOrder(body, req)
}

func toGatewayOrder(body map[string]interface{}, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return usecase.GatewayOrder{}, errors.New("razorpay create order: missing id")
	}

	out := usecase.GatewayOrder{
		ID:          id,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}
	//JSON の数値は float64 で返る
	if v, ok := body["amount"].(float64); ok {
		out.AmountMinor = int64(v)
	}
	if v, ok := body["currency"].(string); ok && v != "" {
		out.Currency = v
	}
	if v, ok := body["receipt"].(string); ok && v != "" {
		out.Receipt = v
	}
	if v, ok := body["status"].(string); ok {
		out.Status = v
	}
	return out, nil
}
