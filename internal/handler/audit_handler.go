package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"brokerage-backoffice/internal/model/requestresponse"
	"brokerage-backoffice/internal/ports"
	"brokerage-backoffice/internal/util"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type AuditHandler struct {
	auditLog ports.AuditLogInterface
}

func NewAuditHandler(auditLog ports.AuditLogInterface) *AuditHandler {
	return &AuditHandler{auditLog}
}

// ListAudit godoc
// @Summary Последние события журнала аудита
// @Description Доступно только роли ADMIN. Возвращает события безопасности, новые первыми
// @Tags Audit
// @Produce json
// @Param limit query int false "Максимум записей (по умолчанию 50, не больше 500)"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AuditListResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/audit [get]
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			util.HandleError(w, "limit должен быть положительным числом", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.auditLog.ListRecent(r.Context(), limit)
	if err != nil {
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	resp := requestresponse.AuditListResponse{
		Response: make([]requestresponse.AuditEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Response = append(resp.Response, requestresponse.AuditEntryResponse{
			OccurredAt: entry.OccurredAt,
			UserID:     entry.UserID,
			Action:     entry.Action,
			Subject:    entry.Subject,
			IP:         entry.IP,
			UserAgent:  entry.UserAgent,
			Metadata:   entry.Metadata,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
