package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// decimal(10,2) に入る上限
var maxPrice = decimal.RequireFromString("99999999.99")

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       string
}

type ProductListOutput struct {
	Items []model.ProductWithCategory `json:"items"`
	Total int64                       `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, validationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, validationError("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, validationError("q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, validationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, validationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, validationError("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name":
	default:
		return ProductListOutput{}, validationError("invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, persistenceError(err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// カテゴリが無ければ404、あれば ListProducts と同じ
func (u *ProductUsecase) ListByCategory(ctx context.Context, categoryID int64, in ListProductsInput) (ProductListOutput, error) {
	if categoryID <= 0 {
		return ProductListOutput{}, validationError("invalid category id")
	}
	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductListOutput{}, notFoundError()
		}
		return ProductListOutput{}, persistenceError(err)
	}
	in.CategoryID = &categoryID
	return u.ListProducts(ctx, in)
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.ProductWithCategory, error) {
	if productID <= 0 {
		return model.ProductWithCategory{}, validationError("invalid product id")
	}

	p, err := u.productRepo.FindDetail(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ProductWithCategory{}, productNotFoundError(productID)
	}
	if err != nil {
		return model.ProductWithCategory{}, persistenceError(err)
	}
	return p, nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cs, err := u.categoryRepo.ListAll(ctx)
	if err != nil {
		return []model.Category{}, persistenceError(err)
	}
	return cs, nil
}

// 管理者の商品作成・更新。StockQuantity は作成時だけ使う（更新は在庫APIで）
type AdminProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int64
	CategoryID    *int64
	ImageURL      string
}

func (u *ProductUsecase) validateProductInput(ctx context.Context, in *AdminProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if in.Name == "" {
		return validationError("name required")
	}
	if len(in.Name) > 200 {
		return validationError("name too long")
	}
	if in.Price.IsNegative() {
		return validationError("price must be >= 0")
	}
	if !in.Price.Equal(in.Price.Round(2)) || in.Price.GreaterThan(maxPrice) {
		return validationError("invalid price")
	}
	if in.StockQuantity < 0 {
		return validationError("stock must be >= 0")
	}
	if len(in.ImageURL) > 500 {
		return validationError("image_url too long")
	}
	if in.CategoryID != nil {
		if _, err := u.categoryRepo.FindByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return validationError("category not found")
			}
			return persistenceError(err)
		}
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, unauthorizedError()
	}
	if err := u.validateProductInput(ctx, &in); err != nil {
		return model.Product{}, err
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:          in.Name,
			Description:   in.Description,
			Price:         in.Price,
			StockQuantity: in.StockQuantity,
			CategoryID:    in.CategoryID,
			ImageURL:      in.ImageURL,
		})
		if err != nil {
			return persistenceError(err)
		}
		created = p

		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, p)
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminProductInput) error {
	if adminUserID <= 0 {
		return unauthorizedError()
	}
	if productID <= 0 {
		return validationError("invalid product id")
	}
	if err := u.validateProductInput(ctx, &in); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFoundError(productID)
		}
		if err != nil {
			return persistenceError(err)
		}

		after := before
		after.Name = in.Name
		after.Description = in.Description
		after.Price = in.Price
		after.CategoryID = in.CategoryID
		after.ImageURL = in.ImageURL

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return productNotFoundError(productID)
			}
			return persistenceError(err)
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, after)
	})
}

// 論理削除（注文明細のスナップショットは残る）
func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return unauthorizedError()
	}
	if productID <= 0 {
		return validationError("invalid product id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFoundError(productID)
		}
		if err != nil {
			return persistenceError(err)
		}

		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return productNotFoundError(productID)
			}
			return persistenceError(err)
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	})
}

func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return unauthorizedError()
	}
	if productID <= 0 {
		return validationError("invalid product id")
	}
	if newStock < 0 {
		return validationError("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationError("reason required")
	}
	if len(reason) > 255 {
		return validationError("reason too long")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFoundError(productID)
		}
		if err != nil {
			return persistenceError(err)
		}

		//在庫の現在値を更新
		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return productNotFoundError(productID)
			}
			return persistenceError(err)
		}

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			Delta:       newStock - p.StockQuantity,
			StockAfter:  newStock,
			Reason:      reason,
		}); err != nil {
			return persistenceError(err)
		}

		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateStock, model.AuditResourceProduct, productID,
			map[string]int64{"stock_quantity": p.StockQuantity},
			map[string]int64{"stock_quantity": newStock},
		)
	})
}

// 在庫調整の履歴（新しい順）
func (u *ProductUsecase) AdminStockHistory(ctx context.Context, productID int64, limit int) ([]model.InventoryAdjustment, error) {
	if productID <= 0 {
		return []model.InventoryAdjustment{}, validationError("invalid product id")
	}
	if limit < 1 || limit > 200 {
		return []model.InventoryAdjustment{}, validationError("invalid limit")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []model.InventoryAdjustment{}, productNotFoundError(productID)
		}
		return []model.InventoryAdjustment{}, persistenceError(err)
	}

	var out []model.InventoryAdjustment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		adjs, err := r.Inventory().ListAdjustments(ctx, productID, limit)
		if err != nil {
			return persistenceError(err)
		}
		out = adjs
		return nil
	})
	if err != nil {
		return []model.InventoryAdjustment{}, err
	}
	if out == nil {
		out = []model.InventoryAdjustment{}
	}
	return out, nil
}

// 監査ログ（before/after は JSON 文字列で保存）
func writeAudit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, resType model.AuditResourceType, resID int64, before interface{}, after interface{}) error {
	beforeJSON, err := toAuditJSON(before)
	if err != nil {
		return persistenceError(err)
	}
	afterJSON, err := toAuditJSON(after)
	if err != nil {
		return persistenceError(err)
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resType,
		ResourceID:   resID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return persistenceError(err)
	}
	return nil
}

func toAuditJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// 監査ログ一覧
type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

func (u *AuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Limit < 0 || f.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, persistenceError(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
