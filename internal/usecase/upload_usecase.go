package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

var ErrImageNotStored = errors.New("url is not in image store")

// アップロード画像の保存先
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// 受け付ける画像形式（SVG はスクリプトを含めるので不可）
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var errImageTooLarge = errors.New("image too large")

type UploadUsecase struct {
	store    ImageStore
	maxBytes int64
}

func NewUploadUsecase(store ImageStore, maxBytes int64) *UploadUsecase {
	return &UploadUsecase{store: store, maxBytes: maxBytes}
}

type UploadImageOutput struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url"`
}

// 形式は拡張子ではなく先頭512バイトで判定する
func (u *UploadUsecase) UploadImage(ctx context.Context, r io.Reader) (UploadImageOutput, error) {
	if r == nil {
		return UploadImageOutput{}, validationError("image required")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return UploadImageOutput{}, validationError("invalid image")
	}
	head = head[:n]
	if n == 0 {
		return UploadImageOutput{}, validationError("image required")
	}
	if u.maxBytes > 0 && int64(n) > u.maxBytes {
		return UploadImageOutput{}, validationError("image too large")
	}

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return UploadImageOutput{}, validationError("only jpeg, png, gif and webp images are allowed")
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if u.maxBytes > 0 {
		body = &limitedReader{r: body, remaining: u.maxBytes}
	}

	url, err := u.store.Save(ctx, ext, body)
	if errors.Is(err, errImageTooLarge) {
		return UploadImageOutput{}, validationError("image too large")
	}
	if err != nil {
		return UploadImageOutput{}, persistenceError(err)
	}

	return UploadImageOutput{Success: true, ImageURL: url}, nil
}

// 上限を超えたら errImageTooLarge を返す
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errImageTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errImageTooLarge
	}
	return n, err
}
