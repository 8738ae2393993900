package model

import (
	"time"

	"github.com/google/uuid"
)

// Report states. Generation is asynchronous: the API creates the row as
// pending and a worker moves it to ready or failed.
const (
	ReportPending = "pending"
	ReportReady   = "ready"
	ReportFailed  = "failed"
)

// Report is a commission report request. FilePath points at the rendered PDF
// once the report is ready.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PeriodFrom  time.Time  `gorm:"not null" json:"period_from"`
	PeriodTo    time.Time  `gorm:"not null" json:"period_to"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	FilePath    *string    `json:"-"`
	LastError   *string    `json:"last_error,omitempty"`
	RequestedBy uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by"`
	NotifyEmail *string    `json:"notify_email,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
