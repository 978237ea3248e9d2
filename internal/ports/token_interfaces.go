package ports

import (
	"context"
	"time"

	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/security"
)

type TokenServiceInterface interface {
	GenerateAccessToken(userID int64, email string, role string, extraClaims map[string]interface{}, now time.Time) (string, error)
	GenerateRefreshToken(userID int64, now time.Time) (token string, jti string, expiresAt time.Time, err error)
	ValidateAccessToken(token string) (*security.Claims, error)
	ValidateRefreshToken(token string) (*security.Claims, error)
}

// RefreshTokenRepositoryInterface : хранилище выданных refresh-токенов.
// Все операции ключуются SHA-256 хэшем токена (security.HashToken).
type RefreshTokenRepositoryInterface interface {
	Persist(ctx context.Context, userID int64, tokenHash string, jti string, expiresAt time.Time) error
	FindByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string, reason string, when time.Time) error
	// Rotate атомарно отзывает старую запись (reason="rotated", replaced_by=newHash)
	// и вставляет новую; проигравший гонку за один и тот же oldHash получает ошибку.
	Rotate(ctx context.Context, oldHash string, newHash string, newJTI string, when time.Time, newExpiry time.Time) error
	RevokeAllByUserID(ctx context.Context, userID int64, reason string, when time.Time) error
}
