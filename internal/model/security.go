package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Security is a listed instrument shown on the market board. Prices come from
// the upstream feed and are refreshed by the feed cron.
type Security struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Symbol    string          `gorm:"uniqueIndex;not null" json:"symbol"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`
	Change    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"change"`
	Volume    int64           `gorm:"not null;default:0" json:"volume"`
	UpdatedAt time.Time       `json:"updated_at"`
	CreatedAt time.Time       `json:"created_at"`
}
