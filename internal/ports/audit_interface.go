package ports

import (
	"context"

	"brokerage-backoffice/internal/model"
)

// AuditLogInterface : журнал событий безопасности.
// Record для ядра fire-and-forget: ошибка записи логируется и не валит операцию.
type AuditLogInterface interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}
