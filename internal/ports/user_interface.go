package ports

import (
	"context"

	"brokerage-backoffice/internal/model"
)

// UserRepositoryInterface : учётные записи живут в модуле управления
// пользователями, ядру аутентификации нужен только этот срез.
type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, newPasswordHash string, mustChangePassword bool) error
}
