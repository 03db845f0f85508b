package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類（errors.Is で判定する）
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = errors.New("product not found")
	ErrConflict        = errors.New("conflict")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPersistence     = errors.New("persistence error")
	ErrGateway         = errors.New("payment gateway error")
)

// handler がそのまま {"error": Message} で返すエラー。
// Cause はログ用でレスポンスには出さない。
type HTTPError struct {
	Status  int
	Message string
	Kind    error
	Cause   error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kindForStatus(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadGateway:
		return ErrGateway
	default:
		return ErrPersistence
	}
}

func validationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func notFoundError() error {
	return NewHTTPError(http.StatusNotFound, "not found")
}

func unauthorizedError() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

// 保存失敗（中身はログにだけ残す）
func persistenceError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "internal error",
		Kind:    ErrPersistence,
		Cause:   cause,
	}
}

func productNotFoundError(productID int64) error {
	return &HTTPError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("product %d not found", productID),
		Kind:    ErrProductNotFound,
	}
}

func emptyCartError() error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "cart is empty",
		Kind:    ErrEmptyCart,
	}
}
