package model

import "time"

// RefreshToken : запись о выданном refresh-токене.
// В БД хранится только SHA-256 хэш токена, сам токен клиент держит у себя.
// ReplacedBy связывает запись с токеном, выданным при ротации вместо неё.
type RefreshToken struct {
	ID         int64      `db:"id"`
	UserID     int64      `db:"user_id"`
	TokenHash  string     `db:"token_hash"`
	JTI        string     `db:"jti"`
	IssuedAt   time.Time  `db:"issued_at"`
	ExpiresAt  time.Time  `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
	ReplacedBy *string    `db:"replaced_by"`
	Reason     *string    `db:"reason"`
}

// Live сообщает, можно ли ещё обменять токен: не отозван и не просрочен.
func (t *RefreshToken) Live(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

// AuthResult : результат успешного логина или обновления токенов
type AuthResult struct {
	UserID       int64
	Email        string
	Role         string
	AccessToken  string
	RefreshToken string
}
