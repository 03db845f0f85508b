package validator

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"storefront/internal/usecase"
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// 会員登録の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	// 必須チェック
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return invalid("username, email and password are required")
	}

	n := utf8.RuneCountInString(in.Username)
	if n < 3 || n > 50 {
		return invalid("username must be 3-50 characters")
	}
	if strings.ContainsAny(in.Username, " \t\r\n") {
		return invalid("username must not contain spaces")
	}

	if !isEmailLike(in.Email) || len(in.Email) > 100 {
		return invalid("invalid email")
	}

	// パスワード最低文字数（8）、bcrypt の上限（72バイト）
	if len(in.Password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	if len(in.Password) > 72 {
		return invalid("password too long")
	}

	if utf8.RuneCountInString(in.FirstName) > 50 || utf8.RuneCountInString(in.LastName) > 50 {
		return invalid("name too long")
	}
	if len(in.Phone) > 15 {
		return invalid("phone too long")
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, in usecase.LoginInput) error {
	// 必須チェック
	if in.Email == "" || in.Password == "" {
		return invalid("email and password are required")
	}

	// email形式
	if !isEmailLike(in.Email) {
		return invalid("invalid email")
	}

	return nil
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// "name <a@b>" 形式は受け付けない
func isEmailLike(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s, "@")
}
