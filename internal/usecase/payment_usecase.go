package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
	Status      string
}

// 決済代行（Razorpay）の注文作成
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (GatewayOrder, error)
}

// 決済コールバックの署名検証
type SignatureVerifier interface {
	Verify(orderID string, paymentID string, signature string) bool
}

type PaymentUsecase struct {
	gateway         PaymentGateway
	verifier        SignatureVerifier
	tx              repo.TransactionManager
	events          EventPublisher
	defaultCurrency string
	now             func() time.Time
}

func NewPaymentUsecase(gateway PaymentGateway, verifier SignatureVerifier, tx repo.TransactionManager, events EventPublisher, defaultCurrency string) *PaymentUsecase {
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &PaymentUsecase{
		gateway:         gateway,
		verifier:        verifier,
		tx:              tx,
		events:          events,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

type CreatePaymentOrderInput struct {
	Amount   *decimal.Decimal
	Currency string
	OrderID  *int64
}

type PaymentOrderOutput struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status,omitempty"`
	OrderID  *int64          `json:"order_id,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type VerifyPaymentOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID *int64 `json:"order_id,omitempty"`
}

func (u *PaymentUsecase) CreatePaymentOrder(ctx context.Context, in CreatePaymentOrderInput) (PaymentOrderOutput, error) {
	if in.Amount == nil {
		return PaymentOrderOutput{}, validationError("amount required")
	}
	amount := *in.Amount
	if !amount.IsPositive() {
		return PaymentOrderOutput{}, validationError("amount must be > 0")
	}
	if !amount.Equal(amount.Round(2)) {
		return PaymentOrderOutput{}, validationError("amount must have at most 2 decimal places")
	}
	if amount.GreaterThan(maxPrice) {
		return PaymentOrderOutput{}, validationError("amount too large")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = u.defaultCurrency
	}
	if len(currency) != 3 {
		return PaymentOrderOutput{}, validationError("invalid currency")
	}

	//紐付ける注文があれば先に確認する
	if in.OrderID != nil {
		if err := u.checkLinkable(ctx, *in.OrderID, amount); err != nil {
			return PaymentOrderOutput{}, err
		}
	}

	req := GatewayOrderRequest{
		AmountMinor: amount.Mul(hundred).IntPart(),
		Currency:    currency,
		Receipt:     "receipt_" + uuid.NewString(),
	}
	gwOrder, err := u.gateway.CreateOrder(ctx, req)
	if err != nil {
		return PaymentOrderOutput{}, &HTTPError{
			Status:  http.StatusBadGateway,
			Message: "failed to create payment order",
			Kind:    ErrGateway,
			Cause:   err,
		}
	}

	if in.OrderID != nil {
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			if err := r.Orders().LinkPaymentOrder(ctx, *in.OrderID, gwOrder.ID); err != nil {
				switch {
				case errors.Is(err, repo.ErrNotFound):
					return notFoundError()
				case errors.Is(err, repo.ErrConflict):
					return NewHTTPError(http.StatusConflict, "order already has a payment order")
				}
				return persistenceError(err)
			}
			return nil
		})
		if err != nil {
			return PaymentOrderOutput{}, err
		}
	}

	return PaymentOrderOutput{
		ID:       gwOrder.ID,
		Amount:   gwOrder.AmountMinor,
		Currency: gwOrder.Currency,
		Receipt:  gwOrder.Receipt,
		Status:   gwOrder.Status,
		OrderID:  in.OrderID,
		Total:    amount,
	}, nil
}

func (u *PaymentUsecase) checkLinkable(ctx context.Context, orderID int64, amount decimal.Decimal) error {
	if orderID <= 0 {
		return validationError("invalid order_id")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "order is not pending")
		}
		if o.PaymentOrderID != nil {
			return NewHTTPError(http.StatusConflict, "order already has a payment order")
		}
		if !o.TotalAmount.Equal(amount) {
			return validationError("amount does not match order total")
		}
		return nil
	})
}

// 署名が合わなければ注文には触らない
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	in.GatewayOrderID = strings.TrimSpace(in.GatewayOrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return VerifyPaymentOutput{}, validationError("razorpay_order_id, razorpay_payment_id and razorpay_signature required")
	}

	if !u.verifier.Verify(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return VerifyPaymentOutput{Success: false}, NewHTTPError(http.StatusBadRequest, "payment verification failed")
	}

	var paid *model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPaymentOrderID(ctx, in.GatewayOrderID)
		if errors.Is(err, repo.ErrNotFound) {
			//紐付いた注文がない決済（注文とは独立に作られた）
			return nil
		}
		if err != nil {
			return persistenceError(err)
		}

		ok, err := r.Orders().MarkPaid(ctx, o.ID, in.PaymentID, u.now().UTC())
		if err != nil {
			return persistenceError(err)
		}
		if ok {
			o.Status = model.OrderStatusProcessing
			paid = &o
		}
		return nil
	})
	if err != nil {
		return VerifyPaymentOutput{}, err
	}

	out := VerifyPaymentOutput{Success: true, Message: "Payment verified successfully"}
	if paid != nil {
		out.OrderID = &paid.ID
		publishOrderEvent(ctx, u.events, OrderEvent{
			Type:        EventOrderPaid,
			OrderID:     paid.ID,
			UserID:      paid.UserID,
			Status:      string(paid.Status),
			TotalAmount: paid.TotalAmount,
			PaymentID:   in.PaymentID,
		})
	} else {
		logging.FromContext(ctx).Info("verified payment without pending order",
			"razorpay_order_id", in.GatewayOrderID)
	}
	return out, nil
}
