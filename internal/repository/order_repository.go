package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//未紐付けの pending 注文にだけ決済オーダーIDを紐付ける。
	//注文が無ければ ErrNotFound、pending でない・紐付け済みなら ErrConflict
	LinkPaymentOrder(ctx context.Context, orderID int64, paymentOrderID string) error
	//pending → processing。更新できたら true
	MarkPaid(ctx context.Context, orderID int64, paymentID string, paidAt time.Time) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
