package model

import "time"

// Действия, которые пишутся в журнал аудита.
const (
	AuditLoginSuccess          = "LOGIN_SUCCESS"
	AuditLoginFailed           = "LOGIN_FAILED"
	AuditLoginRateLimit        = "LOGIN_RATE_LIMIT"
	AuditRefreshSuccess        = "REFRESH_SUCCESS"
	AuditRefreshFailed         = "REFRESH_FAILED"
	AuditPasswordChangeSuccess = "PASSWORD_CHANGE_SUCCESS"
	AuditPasswordChangeFailed  = "PASSWORD_CHANGE_FAILED"
)

// AuditEntry : событие безопасности для журнала аудита.
// UserID == nil для неудачных попыток, когда пользователь неизвестен.
type AuditEntry struct {
	ID         int64                  `db:"id"`
	OccurredAt time.Time              `db:"occurred_at"`
	UserID     *int64                 `db:"user_id"`
	Action     string                 `db:"action"`
	Subject    string                 `db:"subject"`
	IP         string                 `db:"ip"`
	UserAgent  string                 `db:"user_agent"`
	Metadata   map[string]interface{} `db:"-"`
}
