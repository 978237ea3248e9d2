package repository

import (
	"context"
	"encoding/json"
	"log"

	"brokerage-backoffice/config"
	"brokerage-backoffice/internal/model"
	"brokerage-backoffice/internal/util"
)

type AuditRepository struct {
	*config.Database
}

func NewAuditRepository(database *config.Database) *AuditRepository {
	return &AuditRepository{database}
}

// Record пишет событие в журнал аудита.
// Если metadata не сериализуется, пишем NULL вместо неё: кривые метаданные
// не должны ронять логин или refresh.
func (r *AuditRepository) Record(ctx context.Context, entry *model.AuditEntry) error {
	var metadata []byte
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			log.Printf("ошибка сериализации metadata аудита: %v", err)
		} else {
			metadata = data
		}
	}

	query := `INSERT INTO audit_log (occurred_at, user_id, action, subject, ip, user_agent, metadata)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctx, query,
		entry.OccurredAt,
		entry.UserID,
		entry.Action,
		entry.Subject,
		entry.IP,
		entry.UserAgent,
		metadata,
	)
	if err != nil {
		return util.LogError("ошибка записи в журнал аудита", err)
	}

	return nil
}

// ListRecent возвращает последние события журнала, новые первыми
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	query := `SELECT id, occurred_at, user_id, action, subject, ip, user_agent, metadata
				FROM audit_log ORDER BY occurred_at DESC, id DESC LIMIT $1`

	rows, err := r.DB.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, util.LogError("ошибка чтения журнала аудита", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var metadata []byte

		err := rows.Scan(
			&entry.ID,
			&entry.OccurredAt,
			&entry.UserID,
			&entry.Action,
			&entry.Subject,
			&entry.IP,
			&entry.UserAgent,
			&metadata,
		)
		if err != nil {
			return nil, util.LogError("ошибка сканирования записи аудита", err)
		}

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				log.Printf("ошибка десериализации metadata аудита: %v", err)
			}
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, util.LogError("ошибка обхода журнала аудита", err)
	}

	return entries, nil
}
