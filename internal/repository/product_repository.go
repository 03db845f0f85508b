package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.ProductWithCategory, int64, error)
	FindDetail(ctx context.Context, id int64) (model.ProductWithCategory, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//行ロック付き（在庫チェックと書き込みを同じtxで行う）
	FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error)
	//削除済みも含めて取得（カート・注文で使う）
	FindByIDsUnscoped(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
