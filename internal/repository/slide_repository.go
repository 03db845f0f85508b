package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type SlideRepository interface {
	//is_active のみ、display_order 順
	ListActive(ctx context.Context) ([]model.Slide, error)
	ListAll(ctx context.Context) ([]model.Slide, error)
	FindByID(ctx context.Context, id int64) (model.Slide, error)
	Create(ctx context.Context, s model.Slide) (model.Slide, error)
	Update(ctx context.Context, s model.Slide) error
	Delete(ctx context.Context, id int64) error
}
