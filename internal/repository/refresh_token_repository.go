package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"brokerage-backoffice/config"
	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/util"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound : запись не найдена (или уже изменена конкурентом)
var ErrNotFound = errors.New("запись не найдена")

const reasonRotated = "rotated"

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// Persist сохраняет новую запись о выданном refresh-токене
func (r *RefreshTokenRepository) Persist(ctx context.Context, userID int64, tokenHash string, jti string, expiresAt time.Time) error {
	query := `INSERT INTO refresh_tokens (user_id, token_hash, jti, issued_at, expires_at)
				VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query, userID, tokenHash, jti, time.Now().UTC(), expiresAt)
	if err != nil {
		return util.LogError("ошибка вставки refresh токена в БД", err)
	}

	return nil
}

// FindByHash ищет запись по хэшу токена.
// Отсутствие записи — это ErrNotFound: токен с валидной подписью,
// которого нет в хранилище, доверия не заслуживает.
func (r *RefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := `SELECT id, user_id, token_hash, jti, issued_at, expires_at, revoked_at, replaced_by, reason
				FROM refresh_tokens WHERE token_hash = $1`

	var refreshToken model.RefreshToken
	err := sqlx.GetContext(ctx, r.DB, &refreshToken, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("ошибка поиска refresh токена", err)
	}

	return &refreshToken, nil
}

// Revoke отзывает живую запись. Условие revoked_at IS NULL сохраняет
// монотонность: однажды выставленный revoked_at не переписывается.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, reason string, when time.Time) error {
	query := `UPDATE refresh_tokens SET revoked_at = $2, reason = $3 WHERE token_hash = $1 AND revoked_at IS NULL`

	result, err := r.DB.ExecContext(ctx, query, tokenHash, when, reason)
	if err != nil {
		return util.LogError("не удалось отозвать refresh токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("не удалось проверить, отозван ли токен", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Rotate в одной транзакции отзывает старую запись и вставляет новую.
// UPDATE с условием revoked_at IS NULL — это compare-and-set: из двух
// конкурентных ротаций одного oldHash выиграет ровно одна, проигравшая
// получит ErrNotFound и не оставит осиротевшей новой записи.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, newHash string, newJTI string, when time.Time, newExpiry time.Time) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return util.LogError("не удалось открыть транзакцию", err)
	}
	defer tx.Rollback()

	revokeQuery := `UPDATE refresh_tokens
				SET revoked_at = $2, reason = $3, replaced_by = $4
				WHERE token_hash = $1 AND revoked_at IS NULL
				RETURNING user_id`

	var userID int64
	err = tx.QueryRowxContext(ctx, revokeQuery, oldHash, when, reasonRotated, newHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return util.LogError("не удалось отозвать старый refresh токен", err)
	}

	insertQuery := `INSERT INTO refresh_tokens (user_id, token_hash, jti, issued_at, expires_at)
				VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, insertQuery, userID, newHash, newJTI, when, newExpiry); err != nil {
		return util.LogError("не удалось сохранить новый refresh токен", err)
	}

	if err := tx.Commit(); err != nil {
		return util.LogError("не удалось закоммитить ротацию", err)
	}

	return nil
}

// RevokeAllByUserID отзывает все живые токены пользователя.
// Идемпотентна: уже отозванные записи не трогаются, чужие — тем более.
func (r *RefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID int64, reason string, when time.Time) error {
	query := `UPDATE refresh_tokens SET revoked_at = $2, reason = $3 WHERE user_id = $1 AND revoked_at IS NULL`

	if _, err := r.DB.ExecContext(ctx, query, userID, when, reason); err != nil {
		return util.LogError("не удалось отозвать токены пользователя", err)
	}

	return nil
}
