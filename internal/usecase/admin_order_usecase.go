package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, events EventPublisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, events: events}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, validationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, validationError("invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, validationError("invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
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

// ステータス更新（遷移は model.OrderStatus.CanTransitionTo）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return unauthorizedError()
	}
	if orderID <= 0 {
		return validationError("invalid id")
	}

	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !newStatus.Valid() {
		return validationError("invalid status")
	}

	var changed model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得（ロック）
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		if !o.Status.CanTransitionTo(newStatus) {
			return validationError("cannot change " + string(o.Status) + " order to " + string(newStatus))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError()
			}
			return persistenceError(err)
		}

		if err := writeAudit(ctx, r, actorAdminUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]string{"status": string(o.Status)},
			map[string]string{"status": string(newStatus)},
		); err != nil {
			return err
		}

		changed = o
		changed.Status = newStatus
		return nil
	})
	if err != nil {
		return err
	}

	if changed.ID != 0 {
		publishOrderEvent(ctx, u.events, OrderEvent{
			Type:        EventOrderStatusChanged,
			OrderID:     changed.ID,
			UserID:      changed.UserID,
			Status:      string(changed.Status),
			TotalAmount: changed.TotalAmount,
		})
	}
	return nil
}
