package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
}

func NewCartUsecase(cartRepo repo.CartRepository, productRepo repo.ProductRepository, tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		tx:          tx,
	}
}

// price は現在の商品価格。削除された商品の行は available=false で合計に入れない
type CartItemResponse struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	ImageURL      string          `json:"image_url"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	StockQuantity int64           `json:"stock_quantity"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Available     bool            `json:"available"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int64              `json:"item_count"`
	Total     decimal.Decimal    `json:"total_price"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  *int64 // 省略時は1
}

type UpdateCartItemInput struct {
	Quantity *int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorizedError()
	}

	lines, err := u.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, persistenceError(err)
	}

	productIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}
	products, err := u.productRepo.FindByIDsUnscoped(ctx, productIDs)
	if err != nil {
		return CartResponse{}, persistenceError(err)
	}

	return buildCartResponse(lines, indexProducts(products)), nil
}

// カートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorizedError()
	}
	if in.ProductID <= 0 {
		return CartResponse{}, validationError("invalid product_id")
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return CartResponse{}, validationError("quantity must be at least 1")
	}

	// 商品行をロックして在庫チェックと加算を同じtxで行う
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 削除済みは無い扱い
		p, err := r.Products().FindByIDForUpdate(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFoundError(in.ProductID)
		}
		if err != nil {
			return persistenceError(err)
		}

		var existingQty int64
		line, err := r.Cart().FindByUserAndProduct(ctx, userID, in.ProductID)
		switch {
		case err == nil:
			existingQty = line.Quantity
		case errors.Is(err, repo.ErrNotFound):
		default:
			return persistenceError(err)
		}

		if existingQty+qty > p.StockQuantity {
			return validationError("stock exceeded")
		}

		if err := r.Cart().AddQuantity(ctx, userID, in.ProductID, qty); err != nil {
			return persistenceError(err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.GetCart(ctx, userID)
}

// 数量変更（所有チェック＋在庫チェック）。0以下は削除ではなくエラー
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, lineID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorizedError()
	}
	if lineID <= 0 {
		return CartResponse{}, validationError("invalid id")
	}
	if in.Quantity == nil {
		return CartResponse{}, validationError("quantity required")
	}
	if *in.Quantity < 1 {
		return CartResponse{}, validationError("quantity must be at least 1")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.Cart().FindByID(ctx, userID, lineID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}

		//商品の在庫チェック
		p, err := r.Products().FindByIDForUpdate(ctx, line.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFoundError(line.ProductID)
		}
		if err != nil {
			return persistenceError(err)
		}
		if *in.Quantity > p.StockQuantity {
			return validationError("stock exceeded")
		}

		if err := r.Cart().UpdateQuantity(ctx, userID, lineID, *in.Quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError()
			}
			return persistenceError(err)
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.GetCart(ctx, userID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, lineID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorizedError()
	}
	if lineID <= 0 {
		return CartResponse{}, validationError("invalid id")
	}

	if err := u.cartRepo.Delete(ctx, userID, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, notFoundError()
		}
		return CartResponse{}, persistenceError(err)
	}

	return u.GetCart(ctx, userID)
}

// 自分のカートだけ空にする
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, unauthorizedError()
	}
	if err := u.cartRepo.ClearByUserID(ctx, userID); err != nil {
		return CartResponse{}, persistenceError(err)
	}
	return CartResponse{Items: []CartItemResponse{}, Total: decimal.Zero}, nil
}

func indexProducts(ps []model.Product) map[int64]model.Product {
	m := make(map[int64]model.Product, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return m
}

// 削除済み or 存在しない商品なら false
func productAvailable(products map[int64]model.Product, productID int64) (model.Product, bool) {
	p, ok := products[productID]
	if !ok || p.DeletedAt.Valid {
		return p, false
	}
	return p, true
}

func buildCartResponse(lines []model.CartLine, products map[int64]model.Product) CartResponse {
	resp := CartResponse{
		Items: make([]CartItemResponse, 0, len(lines)),
		Total: decimal.Zero,
	}

	for _, l := range lines {
		p, ok := productAvailable(products, l.ProductID)
		item := CartItemResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			Available: ok,
			Price:     decimal.Zero,
			LineTotal: decimal.Zero,
		}
		if ok {
			item.ImageURL = p.ImageURL
			item.Price = p.Price
			item.StockQuantity = p.StockQuantity
			item.LineTotal = p.Price.Mul(decimal.NewFromInt(l.Quantity))
			resp.Total = resp.Total.Add(item.LineTotal)
			resp.ItemCount += l.Quantity
		}
		resp.Items = append(resp.Items, item)
	}

	return resp
}
