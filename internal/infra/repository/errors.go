package repository

import (
	"errors"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// gormのエラーをrepositoryのエラーへ寄せる
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrDuplicate
	default:
		return err
	}
}
