package requestresponse

import "time"

// AuditEntryResponse : запись журнала аудита
type AuditEntryResponse struct {
	OccurredAt time.Time              `json:"occurredAt" example:"2025-11-03T10:15:00Z"`
	UserID     *int64                 `json:"userId,omitempty" example:"42"`
	Action     string                 `json:"action" example:"LOGIN_SUCCESS"`
	Subject    string                 `json:"subject" example:"admin@x.com"`
	IP         string                 `json:"ip" example:"10.0.0.7"`
	UserAgent  string                 `json:"userAgent" example:"PostmanRuntime/7.44.1"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// AuditListResponse : последние события журнала, новые первыми
type AuditListResponse struct {
	Response []AuditEntryResponse `json:"response"`
}
