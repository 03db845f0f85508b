package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type SlideGormRepository struct {
	db *gorm.DB
}

func NewSlideGormRepository(db *gorm.DB) *SlideGormRepository {
	return &SlideGormRepository{db: db}
}

func (r *SlideGormRepository) ListActive(ctx context.Context) ([]model.Slide, error) {
	var ss []model.Slide
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order asc").Order("id asc").
		Find(&ss).Error
	if err != nil {
		return []model.Slide{}, err
	}
	return ss, nil
}

func (r *SlideGormRepository) ListAll(ctx context.Context) ([]model.Slide, error) {
	var ss []model.Slide
	if err := r.db.WithContext(ctx).Order("display_order asc").Order("id asc").Find(&ss).Error; err != nil {
		return []model.Slide{}, err
	}
	return ss, nil
}

func (r *SlideGormRepository) FindByID(ctx context.Context, id int64) (model.Slide, error) {
	var s model.Slide
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return model.Slide{}, translateError(err)
	}
	return s, nil
}

func (r *SlideGormRepository) Create(ctx context.Context, s model.Slide) (model.Slide, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Slide{}, err
	}
	return s, nil
}

// bool/0 も更新したいので map で渡す
func (r *SlideGormRepository) Update(ctx context.Context, s model.Slide) error {
	res := r.db.WithContext(ctx).Model(&model.Slide{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"image_url":     s.ImageURL,
		"title":         s.Title,
		"subtitle":      s.Subtitle,
		"display_order": s.DisplayOrder,
		"is_active":     s.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SlideGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Slide{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
