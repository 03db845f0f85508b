package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
}

func NewOrderUsecase(tx repo.TransactionManager, events EventPublisher) *OrderUsecase {
	return &OrderUsecase{tx: tx, events: events}
}

type PlaceOrderInput struct {
	ShippingAddress string
}

type PlaceOrderOutput struct {
	Message     string          `json:"message"`
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentID       string            `json:"payment_id,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ItemCount       int               `json:"item_count"`
	Items           []OrderItemOutput `json:"items"`
}

// カート → 注文。全部成功するか、何も残らないか。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, unauthorizedError()
	}
	addr := strings.TrimSpace(in.ShippingAddress)
	if addr == "" {
		return PlaceOrderOutput{}, validationError("shipping_address required")
	}
	if utf8.RuneCountInString(addr) > 1000 {
		return PlaceOrderOutput{}, validationError("shipping_address too long")
	}

	var out PlaceOrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート行をロックして取得
		lines, err := r.Cart().ListByUserIDForUpdate(ctx, userID)
		if err != nil {
			return persistenceError(err)
		}
		if len(lines) == 0 {
			return emptyCartError()
		}

		lineIDs := make([]int64, 0, len(lines))
		productIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			lineIDs = append(lineIDs, l.ID)
			productIDs = append(productIDs, l.ProductID)
		}

		products, err := r.Products().FindByIDsUnscoped(ctx, productIDs)
		if err != nil {
			return persistenceError(err)
		}
		byID := indexProducts(products)

		//スナップショット（この時点の価格・商品名）
		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, l := range lines {
			p, ok := productAvailable(byID, l.ProductID)
			if !ok {
				return productNotFoundError(l.ProductID)
			}
			items = append(items, model.OrderItem{
				ProductID:   l.ProductID,
				ProductName: p.Name,
				Quantity:    l.Quantity,
				Price:       p.Price,
			})
			total = total.Add(p.Price.Mul(decimal.NewFromInt(l.Quantity)))
		}
		// total_amount は decimal(10,2)
		if total.GreaterThan(maxPrice) {
			return validationError("order total too large")
		}

		// 注文作成
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          model.OrderStatusPending,
			ShippingAddress: addr,
		})
		if err != nil {
			return persistenceError(err)
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return persistenceError(err)
		}

		//読んだ行だけ消す。件数が合わなければ別の注文に使われた
		deleted, err := r.Cart().DeleteLines(ctx, userID, lineIDs)
		if err != nil {
			return persistenceError(err)
		}
		if deleted != int64(len(lineIDs)) {
			return NewHTTPError(http.StatusConflict, "cart changed during checkout")
		}

		out = PlaceOrderOutput{
			Message:     "Order created successfully",
			OrderID:     orderID,
			TotalAmount: total,
		}
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	publishOrderEvent(ctx, u.events, OrderEvent{
		Type:        EventOrderPlaced,
		OrderID:     out.OrderID,
		UserID:      userID,
		Status:      string(model.OrderStatusPending),
		TotalAmount: out.TotalAmount,
	})

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, unauthorizedError()
	}
	if page < 1 {
		return []OrderOutput{}, validationError("invalid page")
	}
	if limit < 1 || limit > 100 {
		return []OrderOutput{}, validationError("invalid limit")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return persistenceError(err)
		}

		ids := make([]int64, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return persistenceError(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o, itemsByOrder[o.ID]))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, validationError("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return notFoundError()
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return persistenceError(err)
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Price.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PaymentID:       o.PaymentID,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		ItemCount:       len(outItems),
		Items:           outItems,
	}
}
