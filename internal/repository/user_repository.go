package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type UserRepository interface {
	//新規ユーザー作成（重複は ErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//username か email のどちらかが使用済みか
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
}
