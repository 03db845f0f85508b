package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/logging"
	repo "storefront/internal/repository"
)

type SlideshowUsecase struct {
	slideRepo repo.SlideRepository
	tx        repo.TransactionManager
	images    ImageStore
}

func NewSlideshowUsecase(slideRepo repo.SlideRepository, tx repo.TransactionManager, images ImageStore) *SlideshowUsecase {
	return &SlideshowUsecase{slideRepo: slideRepo, tx: tx, images: images}
}

// 未指定の display_order は 1、is_active は true
type SlideInput struct {
	ImageURL     string
	Title        string
	Subtitle     string
	DisplayOrder *int
	IsActive     *bool
}

func (u *SlideshowUsecase) ListActive(ctx context.Context) ([]model.Slide, error) {
	ss, err := u.slideRepo.ListActive(ctx)
	if err != nil {
		return []model.Slide{}, persistenceError(err)
	}
	return ss, nil
}

func (u *SlideshowUsecase) AdminList(ctx context.Context) ([]model.Slide, error) {
	ss, err := u.slideRepo.ListAll(ctx)
	if err != nil {
		return []model.Slide{}, persistenceError(err)
	}
	return ss, nil
}

func (u *SlideshowUsecase) AdminCreate(ctx context.Context, adminUserID int64, in SlideInput) (model.Slide, error) {
	if adminUserID <= 0 {
		return model.Slide{}, unauthorizedError()
	}
	s, err := slideFromInput(in)
	if err != nil {
		return model.Slide{}, err
	}

	var created model.Slide
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Slides().Create(ctx, s)
		if err != nil {
			return persistenceError(err)
		}
		created = c
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateSlide, model.AuditResourceSlide, c.ID, nil, c)
	})
	if err != nil {
		return model.Slide{}, err
	}
	return created, nil
}

func (u *SlideshowUsecase) AdminUpdate(ctx context.Context, adminUserID int64, slideID int64, in SlideInput) (model.Slide, error) {
	if adminUserID <= 0 {
		return model.Slide{}, unauthorizedError()
	}
	if slideID <= 0 {
		return model.Slide{}, validationError("invalid id")
	}
	s, err := slideFromInput(in)
	if err != nil {
		return model.Slide{}, err
	}

	var updated model.Slide
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Slides().FindByID(ctx, slideID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}

		after := before
		after.ImageURL = s.ImageURL
		after.Title = s.Title
		after.Subtitle = s.Subtitle
		after.DisplayOrder = s.DisplayOrder
		after.IsActive = s.IsActive

		if err := r.Slides().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError()
			}
			return persistenceError(err)
		}
		updated = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateSlide, model.AuditResourceSlide, slideID, before, after)
	})
	if err != nil {
		return model.Slide{}, err
	}
	return updated, nil
}

// 行を消した後で画像ファイルも消す（失敗はログだけ）
func (u *SlideshowUsecase) AdminDelete(ctx context.Context, adminUserID int64, slideID int64) error {
	if adminUserID <= 0 {
		return unauthorizedError()
	}
	if slideID <= 0 {
		return validationError("invalid id")
	}

	var deleted model.Slide
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Slides().FindByID(ctx, slideID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		if err != nil {
			return persistenceError(err)
		}

		if err := r.Slides().Delete(ctx, slideID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundError()
			}
			return persistenceError(err)
		}
		deleted = before
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteSlide, model.AuditResourceSlide, slideID, before, nil)
	})
	if err != nil {
		return err
	}

	if u.images != nil && deleted.ImageURL != "" {
		if err := u.images.Delete(ctx, deleted.ImageURL); err != nil && !errors.Is(err, ErrImageNotStored) {
			logging.FromContext(ctx).Warn("delete slide image failed",
				"slide_id", slideID, "image_url", deleted.ImageURL, "error", err)
		}
	}
	return nil
}

func slideFromInput(in SlideInput) (model.Slide, error) {
	s := model.Slide{
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Title:        strings.TrimSpace(in.Title),
		Subtitle:     strings.TrimSpace(in.Subtitle),
		DisplayOrder: 1,
		IsActive:     true,
	}
	if s.ImageURL == "" {
		return model.Slide{}, validationError("image_url required")
	}
	if len(s.ImageURL) > 500 {
		return model.Slide{}, validationError("image_url too long")
	}
	if len(s.Title) > 200 {
		return model.Slide{}, validationError("title too long")
	}
	if len(s.Subtitle) > 300 {
		return model.Slide{}, validationError("subtitle too long")
	}
	if in.DisplayOrder != nil {
		if *in.DisplayOrder < 0 {
			return model.Slide{}, validationError("display_order must be >= 0")
		}
		s.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	return s, nil
}
