package usecase

import (
	"context"
	"strconv"
	"time"

	"storefront/internal/logging"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderPaid          = "order_paid"
	EventOrderStatusChanged = "order_status_changed"
)

// 注文イベントの送信先（Kafka など）
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaymentID   string          `json:"payment_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// commit 後に送る。失敗しても注文は成立しているのでログだけ
func publishOrderEvent(ctx context.Context, pub EventPublisher, ev OrderEvent) {
	if pub == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := pub.Publish(ctx, strconv.FormatInt(ev.OrderID, 10), ev); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed",
			"type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}
