package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"brokerage-backoffice/config"
	"brokerage-backoffice/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDatabase(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

// 1. Persist вставляет запись о выданном токене
func TestPersist(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	expiresAt := time.Now().Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(int64(42), "hash-1", "jti-1", sqlmock.AnyArg(), expiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Persist(context.Background(), 42, "hash-1", "jti-1", expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 2. FindByHash возвращает запись со всеми полями
func TestFindByHash(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	issuedAt := time.Now().Add(-time.Minute)
	expiresAt := time.Now().Add(time.Hour)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "jti", "issued_at", "expires_at", "revoked_at", "replaced_by", "reason"}).
		AddRow(int64(7), int64(42), "hash-1", "jti-1", issuedAt, expiresAt, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token_hash, jti, issued_at, expires_at, revoked_at, replaced_by, reason")).
		WithArgs("hash-1").
		WillReturnRows(rows)

	token, err := repo.FindByHash(context.Background(), "hash-1")

	require.NoError(t, err)
	assert.Equal(t, int64(42), token.UserID)
	assert.Equal(t, "jti-1", token.JTI)
	assert.Nil(t, token.RevokedAt)
	assert.True(t, token.Live(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 3. Неизвестный хэш — ErrNotFound
func TestFindByHash_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token_hash, jti, issued_at, expires_at, revoked_at, replaced_by, reason")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByHash(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// 4. Revoke уже отозванного (или чужого) токена — ErrNotFound
func TestRevoke_AlreadyRevoked(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = $2, reason = $3 WHERE token_hash = $1 AND revoked_at IS NULL")).
		WithArgs("hash-1", sqlmock.AnyArg(), "manual").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Revoke(context.Background(), "hash-1", "manual", time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 5. Rotate в одной транзакции отзывает старую запись и вставляет новую
func TestRotate(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	when := time.Now()
	newExpiry := when.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE refresh_tokens")).
		WithArgs("old-hash", when, "rotated", "new-hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(int64(42), "new-hash", "new-jti", when, newExpiry).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.Rotate(context.Background(), "old-hash", "new-hash", "new-jti", when, newExpiry)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 6. Проигравший гонку за старый хэш получает ErrNotFound,
// транзакция откатывается и новой записи не остаётся
func TestRotate_LostRace(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE refresh_tokens")).
		WithArgs("old-hash", sqlmock.AnyArg(), "rotated", "new-hash").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Rotate(context.Background(), "old-hash", "new-hash", "new-jti", time.Now(), time.Now().Add(time.Hour))

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 7. RevokeAllByUserID идемпотентна: ноль затронутых строк — не ошибка
func TestRevokeAllByUserID_NoLiveTokens(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewRefreshTokenRepository(database)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = $2, reason = $3 WHERE user_id = $1 AND revoked_at IS NULL")).
		WithArgs(int64(42), sqlmock.AnyArg(), "password_change").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RevokeAllByUserID(context.Background(), 42, "password_change", time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
