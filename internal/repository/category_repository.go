package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	//名前順
	ListAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
}
