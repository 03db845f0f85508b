package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 管理者の在庫変更。商品行の stock_quantity と履歴を同じTxで書く
type InventoryRepository interface {
	SetStock(ctx context.Context, productID int64, newStock int64) error
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error

	// 新しい順
	ListAdjustments(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error)
}
