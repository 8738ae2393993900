package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordTradeRequest struct {
	Symbol   string          `json:"symbol"   validate:"required,min=1,max=12"`
	Side     string          `json:"side"     validate:"required,oneof=buy sell"`
	Quantity int64           `json:"quantity" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price"    validate:"required"`
	Customer string          `json:"customer" validate:"required,min=2,max=100"`
}

// TradeFilter narrows trade listings. Zero values mean "no bound".
type TradeFilter struct {
	Symbol string `form:"symbol"`
	From   string `form:"from"` // RFC 3339 date
	To     string `form:"to"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TradeResponse struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Gross      decimal.Decimal `json:"gross"`
	Commission decimal.Decimal `json:"commission"`
	Customer   string          `json:"customer"`
	TellerID   string          `json:"teller_id"`
	CreatedAt  string          `json:"created_at"`
}
