package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 注文明細（価格と商品名は注文時点のスナップショット）
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	// 一覧画面用。注文IDごとにまとめて1クエリで取る
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)
}
