package repository

import (
	"context"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// products に categories.name を付けて返すベースクエリ
func (r *ProductGormRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.deleted_at IS NULL")
}

// 検索条件（件数と一覧で共通）
func applyProductFilters(tx *gorm.DB, q repo.ProductListQuery) *gorm.DB {
	// q nameを対象（大文字小文字は区別しない）
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.CategoryID != nil {
		tx = tx.Where("products.category_id = ?", *q.CategoryID)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.price <= ?", *q.MaxPrice)
	}
	return tx
}

// 削除されていない商品を、検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.ProductWithCategory, int64, error) {
	var products []model.ProductWithCategory
	var total int64

	//total（件数）
	countQ := applyProductFilters(r.db.WithContext(ctx).Model(&model.Product{}), q)
	if err := countQ.Count(&total).Error; err != nil {
		return []model.ProductWithCategory{}, 0, err
	}

	tx := applyProductFilters(r.withCategory(ctx), q)

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("products.price asc").Order("products.id asc")
	case "price_desc":
		tx = tx.Order("products.price desc").Order("products.id desc")
	case "name":
		tx = tx.Order("products.name asc").Order("products.id asc")
	default:
		tx = tx.Order("products.created_at desc").Order("products.id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Scan(&products).Error; err != nil {
		return []model.ProductWithCategory{}, 0, err
	}
	if products == nil {
		products = []model.ProductWithCategory{}
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindDetail(ctx context.Context, id int64) (model.ProductWithCategory, error) {
	var p model.ProductWithCategory
	res := r.withCategory(ctx).Where("products.id = ?", id).Limit(1).Scan(&p)
	if res.Error != nil {
		return model.ProductWithCategory{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.ProductWithCategory{}, repo.ErrNotFound
	}
	return p, nil
}

// IDで商品を取得（削除済みは ErrNotFound）
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDsUnscoped(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var ps []model.Product
	if err := r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return []model.Product{}, err
	}
	return ps, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新（在庫は InventoryRepository 経由）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category_id": p.CategoryID,
		"image_url":   p.ImageURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（注文履歴が参照するので論理削除）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
