package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	//unique制約違反（username/email, payment_order_id など）
	ErrDuplicate = errors.New("duplicate")
	//条件付き更新が状態の不一致で0件だった
	ErrConflict = errors.New("conflict")
)
