package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade is a brokerage operation recorded at the counter. Commission is
// computed at recording time from the configured rate and frozen here, so
// later rate changes do not rewrite history.
type Trade struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Symbol     string          `gorm:"not null;index" json:"symbol"`
	Side       string          `gorm:"type:varchar(10);not null" json:"side"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`
	Gross      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"gross"`
	Commission decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"commission"`
	Customer   string          `gorm:"not null" json:"customer"`
	TellerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"teller_id"`
	CreatedAt  time.Time       `json:"created_at"`
}
