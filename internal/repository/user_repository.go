package repository

import (
	"context"
	"database/sql"
	"errors"

	"brokerage-backoffice/config"
	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/util"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByEmail : ищет учётную запись по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, role, active, must_change_password, created_at
				FROM users WHERE email = $1`

	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}

	return &user, nil
}

// FindByID : ищет учётную запись по идентификатору
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, name, email, password_hash, role, active, must_change_password, created_at
				FROM users WHERE id = $1`

	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}

	return &user, nil
}

// UpdatePassword : сохраняет новый хэш пароля и флаг обязательной смены
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, newPasswordHash string, mustChangePassword bool) error {
	query := `UPDATE users SET password_hash = $2, must_change_password = $3 WHERE id = $1`

	result, err := r.DB.ExecContext(ctx, query, id, newPasswordHash, mustChangePassword)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить, обновлён ли пароль", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
