package ports

import (
	"context"

	"brokerage-backoffice/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, email string, password string, meta model.RequestMeta) (*model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, meta model.RequestMeta) (*model.AuthResult, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string, meta model.RequestMeta) error
}

type PasswordPolicyInterface interface {
	Validate(password string) error
}
