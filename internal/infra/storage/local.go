package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storefront/internal/usecase"

	"github.com/google/uuid"
)

// usecase 側は errors.Is(err, usecase.ErrImageNotStored) で判定する
var ErrOutsideStore = usecase.ErrImageNotStored

// アップロード画像をローカルディスクに保存し、公開URLを返す
type LocalImageStore struct {
	dir        string
	publicPath string
}

func NewLocalImageStore(dir string, publicPath string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{
		dir:        dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) PublicPath() string {
	return s.publicPath
}

// 一時ファイルに書いて fsync → rename。失敗したら一時ファイルは消す
func (s *LocalImageStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	name := "image-" + uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod image: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("rename image: %w", err)
	}
	committed = true

	return path.Join(s.publicPath, name), nil
}

// 公開URLに対応するファイルを消す（ストア外のURLは ErrOutsideStore）
func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.publicPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return ErrOutsideStore
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrOutsideStore
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
