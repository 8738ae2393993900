package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RequestReportRequest struct {
	From        string  `json:"from"         validate:"required"` // RFC 3339 date
	To          string  `json:"to"           validate:"required"`
	NotifyEmail *string `json:"notify_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReportResponse struct {
	ID          string  `json:"id"`
	PeriodFrom  string  `json:"period_from"`
	PeriodTo    string  `json:"period_to"`
	Status      string  `json:"status"`
	LastError   *string `json:"last_error,omitempty"`
	RequestedBy string  `json:"requested_by"`
	CreatedAt   string  `json:"created_at"`
}
