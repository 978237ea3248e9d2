package model

import "time"

const (
	RoleAdmin        = "ADMIN"
	RoleBroker       = "BROKER"
	RoleStandardUser = "STANDARD_USER"
)

// User : учётная запись бэк-офиса (клиентский CRUD живёт в другом модуле,
// здесь нужны только данные для аутентификации).
type User struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	Role               string    `db:"role" json:"role"`
	Active             bool      `db:"active" json:"active"`
	MustChangePassword bool      `db:"must_change_password" json:"must_change_password"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
