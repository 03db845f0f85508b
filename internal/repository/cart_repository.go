package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カート行（user×product）の約束。更新・削除は必ず user_id で絞る。
type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	//行ロック付き（チェックアウト用）
	ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartLine, error)
	FindByID(ctx context.Context, userID int64, lineID int64) (model.CartLine, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, error)

	//同じ商品があれば数量を加算、無ければ作成
	AddQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	UpdateQuantity(ctx context.Context, userID int64, lineID int64, qty int64) error
	Delete(ctx context.Context, userID int64, lineID int64) error
	//指定IDだけ削除して件数を返す
	DeleteLines(ctx context.Context, userID int64, lineIDs []int64) (int64, error)
	ClearByUserID(ctx context.Context, userID int64) error
}
