package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, in LoginInput) error
}

// 平文パスワードのハッシュ化と照合
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// アクセストークン発行
type TokenIssuer interface {
	Issue(user model.User, now time.Time) (string, time.Time, error)
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	issuer    TokenIssuer
}

func NewAuthUsecase(
	users repository.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	issuer TokenIssuer,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		issuer:    issuer,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return AuthResponse{}, err
	}

	exists, err := u.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return AuthResponse{}, persistenceError(err)
	}
	if exists {
		return AuthResponse{}, NewHTTPError(http.StatusConflict, "username or email already exists")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthResponse{}, persistenceError(err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         model.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		//同時登録で unique 制約に当たった
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResponse{}, NewHTTPError(http.StatusConflict, "username or email already exists")
		}
		return AuthResponse{}, persistenceError(err)
	}

	return u.respond(*user, "User registered successfully")
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	in.Email = normalizeEmail(in.Email)

	if err := u.validator.ValidateLogin(ctx, in); err != nil {
		return AuthResponse{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthResponse{}, persistenceError(err)
	}

	//パスワード照合
	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return u.respond(*user, "Login successful")
}

// トークンのユーザーを返す（削除済みなら401）
func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, unauthorizedError()
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, unauthorizedError()
	}
	if err != nil {
		return UserDTO{}, persistenceError(err)
	}
	return toUserDTO(*user), nil
}

// 起動時の管理者作成（既にいれば何もしない）
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, username string, email string, password string) (bool, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	exists, err := u.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	pwHash, err := u.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	if err := u.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         model.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (u *AuthUsecase) respond(user model.User, message string) (AuthResponse, error) {
	token, expiresAt, err := u.issuer.Issue(user, time.Now())
	if err != nil {
		return AuthResponse{}, persistenceError(err)
	}
	return AuthResponse{
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserDTO(user),
	}, nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		IsAdmin:   u.IsAdmin(),
		CreatedAt: u.CreatedAt,
	}
}
