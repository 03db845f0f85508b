package payment

import (
	"context"
	"testing"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_KnownVector(t *testing.T) {
	got := Sign("k", "order_1", "pay_1")
	assert.Equal(t, "ed2f1a96a4d95f5f9ecc1725db65d7c58ac1b4e9dd5167d097f998af3db8bd3a", got)
	assert.Equal(t, "2eca4b560a74f49afb440a635194baf75b2d1be2242b2149764899bf1c462755",
		Sign("S", "order_abc", "pay_xyz"))
	assert.Equal(t, "e01c80ebc10d148518d17c33f3656de8f09959eb48a06865956b88966c127401",
		Sign("test_secret", "order_DBJOWzybf0sJbb", "pay_29QQoUBi66xm2f"))
	assert.NotEqual(t, got, Sign("k", "order_1", "pay_2"))
	assert.NotEqual(t, got, Sign("other", "order_1", "pay_1"))
}

func TestHMACVerifier_Verify(t *testing.T) {
	v := NewHMACVerifier("k")
	sig := Sign("k", "order_1", "pay_1")

	assert.True(t, v.Verify("order_1", "pay_1", sig))
	assert.False(t, v.Verify("order_1", "pay_1", sig[:63]+"0"))
	assert.False(t, v.Verify("order_1", "pay_2", sig))
	assert.False(t, v.Verify("order_1", "pay_1", ""))
}

func TestHMACVerifier_NoSecret(t *testing.T) {
	v := NewHMACVerifier("")
	assert.False(t, v.Verify("order_1", "pay_1", Sign("", "order_1", "pay_1")))
}

func TestRazorpayGateway_NotConfigured(t *testing.T) {
	g := NewRazorpayGateway("", "")
	_, err := g.CreateOrder(context.Background(), usecase.GatewayOrderRequest{AmountMinor: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestToGatewayOrder(t *testing.T) {
	req := usecase.GatewayOrderRequest{AmountMinor: 2550, Currency: "INR", Receipt: "receipt_1"}

	out, err := toGatewayOrder(map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(2550),
		"currency": "INR",
		"receipt":  "receipt_1",
		"status":   "created",
	}, req)
	require.NoError(t, err)
	assert.Equal(t, "order_abc", out.ID)
	assert.Equal(t, int64(2550), out.AmountMinor)
	assert.Equal(t, "created", out.Status)

	_, err = toGatewayOrder(map[string]interface{}{}, req)
	assert.Error(t, err)
}
