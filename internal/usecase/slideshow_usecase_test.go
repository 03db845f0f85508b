package usecase_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ImageStoreMock struct{ mock.Mock }

func (m *ImageStoreMock) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	args := m.Called(ctx, ext, r)
	return args.String(0), args.Error(1)
}

func (m *ImageStoreMock) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func newSlideshowFixture() (*usecase.SlideshowUsecase, *SlideRepoMock, *AuditRepoMock, *ImageStoreMock) {
	slides := new(SlideRepoMock)
	audit := new(AuditRepoMock)
	images := new(ImageStoreMock)
	tx := new(TxManagerMock)
	tx.Repos = &TxReposMock{slides: slides, auditLogs: audit}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return usecase.NewSlideshowUsecase(slides, tx, images), slides, audit, images
}

func TestSlideshowUsecase_ListActive(t *testing.T) {
	uc, slides, _, _ := newSlideshowFixture()
	slides.On("ListActive", mock.Anything).Return([]model.Slide{{ID: 1, IsActive: true}}, nil)

	ss, err := uc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, ss, 1)
}

func TestSlideshowUsecase_AdminCreate_Defaults(t *testing.T) {
	uc, slides, audit, _ := newSlideshowFixture()

	slides.On("Create", mock.Anything, mock.MatchedBy(func(s model.Slide) bool {
		return s.ImageURL == "/images/a.png" && s.DisplayOrder == 1 && s.IsActive
	})).Return(model.Slide{ID: 4, ImageURL: "/images/a.png", DisplayOrder: 1, IsActive: true}, nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateSlide && l.ResourceType == model.AuditResourceSlide && l.ResourceID == 4
	})).Return(nil)

	s, err := uc.AdminCreate(context.Background(), 1, usecase.SlideInput{ImageURL: " /images/a.png "})
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.ID)
	slides.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestSlideshowUsecase_AdminCreate_RequiresImage(t *testing.T) {
	uc, slides, _, _ := newSlideshowFixture()

	_, err := uc.AdminCreate(context.Background(), 1, usecase.SlideInput{Title: "Sale"})
	assertErrContains(t, err, "image_url required")
	slides.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSlideshowUsecase_AdminUpdate_CanDeactivate(t *testing.T) {
	uc, slides, audit, _ := newSlideshowFixture()
	off := false
	order := 0

	slides.On("FindByID", mock.Anything, int64(2)).Return(model.Slide{ID: 2, ImageURL: "/images/a.png", DisplayOrder: 3, IsActive: true}, nil)
	slides.On("Update", mock.Anything, mock.MatchedBy(func(s model.Slide) bool {
		return s.ID == 2 && !s.IsActive && s.DisplayOrder == 0
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	s, err := uc.AdminUpdate(context.Background(), 1, 2, usecase.SlideInput{ImageURL: "/images/a.png", IsActive: &off, DisplayOrder: &order})
	require.NoError(t, err)
	assert.False(t, s.IsActive)
	slides.AssertExpectations(t)
}

func TestSlideshowUsecase_AdminDelete_RemovesImage(t *testing.T) {
	uc, slides, audit, images := newSlideshowFixture()

	slides.On("FindByID", mock.Anything, int64(2)).Return(model.Slide{ID: 2, ImageURL: "/images/image-x.png"}, nil)
	slides.On("Delete", mock.Anything, int64(2)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	images.On("Delete", mock.Anything, "/images/image-x.png").Return(nil)

	require.NoError(t, uc.AdminDelete(context.Background(), 1, 2))
	images.AssertExpectations(t)
}

func TestSlideshowUsecase_AdminDelete_ImageFailureDoesNotFail(t *testing.T) {
	uc, slides, audit, images := newSlideshowFixture()

	slides.On("FindByID", mock.Anything, int64(2)).Return(model.Slide{ID: 2, ImageURL: "https://cdn.example.com/x.png"}, nil)
	slides.On("Delete", mock.Anything, int64(2)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	images.On("Delete", mock.Anything, "https://cdn.example.com/x.png").Return(usecase.ErrImageNotStored)

	assert.NoError(t, uc.AdminDelete(context.Background(), 1, 2))

	images2 := new(ImageStoreMock)
	images2.On("Delete", mock.Anything, mock.Anything).Return(errors.New("permission denied"))
	slides2 := new(SlideRepoMock)
	tx := new(TxManagerMock)
	tx.Repos = &TxReposMock{slides: slides2, auditLogs: audit}
	tx.On("WithinTx", mock.Anything).Return(nil)
	slides2.On("FindByID", mock.Anything, int64(3)).Return(model.Slide{ID: 3, ImageURL: "/images/y.png"}, nil)
	slides2.On("Delete", mock.Anything, int64(3)).Return(nil)

	uc2 := usecase.NewSlideshowUsecase(slides2, tx, images2)
	assert.NoError(t, uc2.AdminDelete(context.Background(), 1, 3))
}

func TestSlideshowUsecase_AdminDelete_NotFound(t *testing.T) {
	uc, slides, _, images := newSlideshowFixture()
	slides.On("FindByID", mock.Anything, int64(2)).Return(model.Slide{}, repo.ErrNotFound)

	err := uc.AdminDelete(context.Background(), 1, 2)
	assertStatus(t, err, http.StatusNotFound)
	images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
