package ports

import (
	"context"

	"github.com/tsmart/voyage-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// TokenVerifier is the slice of AuthService the auth middleware needs.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}

type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, email string) error
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
}
